package service

import (
	"context"
	"errors"
	"time"

	bookingerrors "parkease/internal/bookings/errors"
	"parkease/pkg/model"
)

// ResolveSlot reconciles an occupied slot whose active booking has
// lapsed. There is no background sweep; read paths call this so that
// expiry is observed at most one read after the deadline passes. The
// returned slot reflects the reconciled state.
func (s *reservationService) ResolveSlot(ctx context.Context, slot *model.Slot) (*model.Slot, error) {
	if slot == nil || slot.Status != model.SlotOccupied {
		return slot, nil
	}

	booking, err := s.bookings.FindActiveForSlot(ctx, slot.ID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNoActiveBooking) {
			// Occupied with no active booking. A reserve in flight
			// looks exactly like this between the slot claim and the
			// ledger write, so a fresh claim must be left alone.
			// Repair only once the claim has outlived the writer and
			// its rollback; that age means a crash or a manual edit.
			if s.now().Sub(slot.UpdatedAt) <= s.claimGrace() {
				return slot, nil
			}
			return s.reconcileSlot(ctx, slot)
		}
		return nil, err
	}

	if booking.EndTime.After(s.now()) {
		return slot, nil
	}

	if _, err := s.resolveLapsed(ctx, booking); err != nil {
		return nil, err
	}
	return s.reconcileSlot(ctx, slot)
}

// resolveLapsed completes a booking whose end time has passed. A
// concurrent resolver winning the conditional update is not an error.
func (s *reservationService) resolveLapsed(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	resolved, err := s.bookings.MarkResolved(ctx, booking.ID, model.BookingCompleted)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrAlreadyResolved) {
			return s.bookings.FindByID(ctx, booking.ID)
		}
		return nil, err
	}

	s.cfg.Log.Info("Booking expired",
		"booking_id", resolved.ID,
		"slot_id", resolved.SlotID,
		"end_time", resolved.EndTime,
	)
	s.publishEvent(ctx, EventBookingExpired, resolved)
	return resolved, nil
}

// claimGrace bounds how long a claimed slot may lack its ledger entry:
// one bounded write for the insert plus one for the rollback.
func (s *reservationService) claimGrace() time.Duration {
	return 2 * s.cfg.WriteTimeout
}

func (s *reservationService) reconcileSlot(ctx context.Context, slot *model.Slot) (*model.Slot, error) {
	freed, err := s.slots.TransitionStatus(ctx, slot.ID, model.SlotOccupied, model.SlotAvailable)
	if err != nil {
		return nil, err
	}
	if freed {
		updated := *slot
		updated.Status = model.SlotAvailable
		return &updated, nil
	}
	// Someone else moved the slot first; re-read for the current truth.
	return s.slots.FindByID(ctx, slot.ID)
}
