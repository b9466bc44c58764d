package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingerrors "parkease/internal/bookings/errors"
	"parkease/internal/bookings/repository"
	"parkease/internal/bookings/validator"
	sloterrors "parkease/internal/slots/errors"
	slotrepository "parkease/internal/slots/repository"
	"parkease/pkg/config"
	apperrors "parkease/pkg/errors"
	"parkease/pkg/model"
)

type ReservationService interface {
	// Reserve atomically claims the slot and records the booking. Under
	// concurrent calls on the same slot exactly one caller wins; the
	// rest fail with a conflict and touch no state.
	Reserve(ctx context.Context, userID, slotID string, durationMinutes int) (*model.Booking, error)
	// Release completes the active booking and frees the slot. It is
	// idempotent with respect to the final state.
	Release(ctx context.Context, slotID string) (*model.Booking, error)
	Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingWithSlot, int64, error)
	ResolveSlot(ctx context.Context, slot *model.Slot) (*model.Slot, error)
}

type reservationService struct {
	bookings  repository.BookingRepository
	slots     slotrepository.SlotRepository
	validator *validator.BookingValidator
	publisher EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewReservationService(
	bookings repository.BookingRepository,
	slots slotrepository.SlotRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		bookings:  bookings,
		slots:     slots,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *reservationService) Reserve(ctx context.Context, userID, slotID string, durationMinutes int) (*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Missing user identity")
	}

	req := &model.ReserveRequest{SlotID: slotID, DurationMinutes: durationMinutes}
	if err := s.validator.ValidateReserve(req); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "slot_id", slotID, "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		return nil, s.mapSlotLookupError(err, slotID)
	}

	// A lapsed booking must not block a new reservation; reconcile
	// before attempting the claim.
	if _, err := s.ResolveSlot(ctx, slot); err != nil {
		return nil, apperrors.Internal("Failed to resolve slot state", err)
	}

	ok, err := s.slots.TransitionStatus(ctx, slotID, model.SlotAvailable, model.SlotOccupied)
	if err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", slotID)
		}
		return nil, apperrors.Internal("Failed to claim slot", err)
	}
	if !ok {
		// Lost the race or the slot was simply taken; either way no
		// state was touched.
		return nil, apperrors.Conflict("Slot is not available")
	}

	startTime := s.now().UTC().Truncate(time.Millisecond)
	booking := &model.Booking{
		UserID:    userID,
		SlotID:    slotID,
		Status:    model.BookingActive,
		StartTime: startTime,
		EndTime:   startTime.Add(time.Duration(durationMinutes) * time.Minute),
	}

	if err := s.recordBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Slot reserved",
		"booking_id", booking.ID,
		"slot_id", slotID,
		"user_id", userID,
		"end_time", booking.EndTime,
	)
	s.publishEvent(ctx, EventBookingReserved, booking)
	return booking, nil
}

// recordBooking writes the booking after the slot claim succeeded. The
// deferred compensation runs on every failure exit, detached from the
// caller's cancellation, so the slot can never stay occupied without a
// matching booking.
func (s *reservationService) recordBooking(ctx context.Context, booking *model.Booking) (err error) {
	defer func() {
		if err == nil {
			return
		}

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
		defer cancel()

		reverted, rbErr := s.slots.TransitionStatus(rctx, booking.SlotID, model.SlotOccupied, model.SlotAvailable)
		if rbErr != nil {
			s.cfg.Log.Error("Compensation failed, slot may be stuck occupied",
				"slot_id", booking.SlotID,
				"error", rbErr,
			)
			return
		}
		s.cfg.Log.Warn("Reservation rolled back",
			"slot_id", booking.SlotID,
			"reverted", reverted,
			"cause", err,
		)
	}()

	if err = s.bookings.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to record booking", "slot_id", booking.SlotID, "error", err)
		return apperrors.Internal("Failed to create booking", err)
	}
	return nil
}

func (s *reservationService) Release(ctx context.Context, slotID string) (*model.Booking, error) {
	if slotID == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	booking, err := s.bookings.FindActiveForSlot(ctx, slotID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNoActiveBooking) {
			return nil, apperrors.NotFound("Active booking")
		}
		return nil, apperrors.Internal("Failed to find active booking", err)
	}

	resolved, err := s.bookings.MarkResolved(ctx, booking.ID, model.BookingCompleted)
	if err != nil {
		// A concurrent release got there first; the end state is the
		// one the caller asked for.
		if errors.Is(err, bookingerrors.ErrAlreadyResolved) {
			s.freeSlot(ctx, slotID)
			return booking, nil
		}
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", booking.ID)
		}
		return nil, apperrors.Internal("Failed to complete booking", err)
	}

	s.freeSlot(ctx, slotID)

	s.cfg.Log.Info("Slot released",
		"booking_id", resolved.ID,
		"slot_id", slotID,
		"user_id", resolved.UserID,
	)
	s.publishEvent(ctx, EventBookingReleased, resolved)
	return resolved, nil
}

func (s *reservationService) Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("Missing user identity")
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, s.mapBookingLookupError(err, bookingID)
	}

	// Ownership is not enforced here: the identity collaborator decides
	// who may cancel on whose behalf.
	resolved, err := s.bookings.MarkResolved(ctx, booking.ID, model.BookingCancelled)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrAlreadyResolved) {
			return nil, apperrors.Conflict("Booking is already resolved")
		}
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	s.freeSlot(ctx, booking.SlotID)

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", resolved.ID,
		"slot_id", resolved.SlotID,
		"cancelled_by", userID,
	)
	s.publishEvent(ctx, EventBookingCancelled, resolved)
	return resolved, nil
}

func (s *reservationService) ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingWithSlot, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthorized("Missing user identity")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.bookings.CountByUser(ctx, userID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "user_id", userID, "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.bookings.FindByUser(ctx, userID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "user_id", userID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return s.embedSlots(ctx, bookings), count, nil
}

// embedSlots attaches display snapshots of the referenced slots. The
// reference is weak: a slot deleted after booking simply yields a nil
// snapshot.
func (s *reservationService) embedSlots(ctx context.Context, bookings []*model.Booking) []*model.BookingWithSlot {
	cache := make(map[string]*model.Slot)
	out := make([]*model.BookingWithSlot, 0, len(bookings))

	for _, booking := range bookings {
		if booking.Status == model.BookingActive && !booking.EndTime.After(s.now()) {
			if resolved, err := s.resolveLapsed(ctx, booking); err == nil {
				booking = resolved
			}
		}

		slot, ok := cache[booking.SlotID]
		if !ok {
			found, err := s.slots.FindByID(ctx, booking.SlotID)
			if err != nil {
				if !errors.Is(err, sloterrors.ErrNotFound) && !errors.Is(err, sloterrors.ErrInvalidID) {
					s.cfg.Log.Warn("Failed to load slot snapshot", "slot_id", booking.SlotID, "error", err)
				}
				found = nil
			}
			cache[booking.SlotID] = found
			slot = found
		}

		out = append(out, &model.BookingWithSlot{Booking: *booking, Slot: slot})
	}

	return out
}

// freeSlot flips the slot back to available. A failed precondition is
// fine: someone else already freed it, or an admin repurposed it.
func (s *reservationService) freeSlot(ctx context.Context, slotID string) {
	freed, err := s.slots.TransitionStatus(ctx, slotID, model.SlotOccupied, model.SlotAvailable)
	if err != nil {
		if errors.Is(err, sloterrors.ErrNotFound) {
			return
		}
		s.cfg.Log.Error("Failed to free slot", "slot_id", slotID, "error", err)
		return
	}
	if !freed {
		s.cfg.Log.Debug("Slot already released", "slot_id", slotID)
	}
}

func (s *reservationService) mapSlotLookupError(err error, id string) error {
	if errors.Is(err, sloterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Slot", id)
	}
	if errors.Is(err, sloterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid slot ID format")
	}
	return apperrors.Internal("Failed to retrieve slot", err)
}

func (s *reservationService) mapBookingLookupError(err error, id string) error {
	if errors.Is(err, bookingerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}
