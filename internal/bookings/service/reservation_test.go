package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	bookingerrors "parkease/internal/bookings/errors"
	"parkease/internal/bookings/validator"
	sloterrors "parkease/internal/slots/errors"
	"parkease/pkg/config"
	apperrors "parkease/pkg/errors"
	"parkease/pkg/logger"
	"parkease/pkg/model"
)

// Mock repositories for testing

type mockBookingRepository struct {
	createFunc            func(ctx context.Context, booking *model.Booking) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Booking, error)
	findActiveForSlotFunc func(ctx context.Context, slotID string) (*model.Booking, error)
	findByUserFunc        func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error)
	countByUserFunc       func(ctx context.Context, userID string) (int64, error)
	markResolvedFunc      func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error)
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	booking.ID = "68b000000000000000000001"
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) FindActiveForSlot(ctx context.Context, slotID string) (*model.Booking, error) {
	if m.findActiveForSlotFunc != nil {
		return m.findActiveForSlotFunc(ctx, slotID)
	}
	return nil, bookingerrors.ErrNoActiveBooking
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	if m.findByUserFunc != nil {
		return m.findByUserFunc(ctx, userID, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	if m.countByUserFunc != nil {
		return m.countByUserFunc(ctx, userID)
	}
	return 0, nil
}

func (m *mockBookingRepository) MarkResolved(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
	if m.markResolvedFunc != nil {
		return m.markResolvedFunc(ctx, id, status)
	}
	return nil, bookingerrors.ErrNotFound
}

type mockSlotRepository struct {
	createFunc           func(ctx context.Context, slot *model.Slot) error
	findByIDFunc         func(ctx context.Context, id string) (*model.Slot, error)
	findAllFunc          func(ctx context.Context) ([]*model.Slot, error)
	countFunc            func(ctx context.Context) (int64, error)
	transitionStatusFunc func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error)
}

func (m *mockSlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, slot)
	}
	return nil
}

func (m *mockSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, sloterrors.ErrNotFound
}

func (m *mockSlotRepository) FindAll(ctx context.Context) ([]*model.Slot, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []*model.Slot{}, nil
}

func (m *mockSlotRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockSlotRepository) TransitionStatus(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
	if m.transitionStatusFunc != nil {
		return m.transitionStatusFunc(ctx, id, expected, next)
	}
	return true, nil
}

// slotStore is an in-memory slot state with the same atomicity
// guarantee the real store provides, used for concurrency tests.
type slotStore struct {
	mu     sync.Mutex
	status map[string]model.SlotStatus
}

func newSlotStore() *slotStore {
	return &slotStore{status: make(map[string]model.SlotStatus)}
}

func (s *slotStore) compareAndSet(id string, expected, next model.SlotStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.status[id]
	if !ok {
		return false, sloterrors.ErrNotFound
	}
	if current != expected {
		return false, nil
	}
	s.status[id] = next
	return true, nil
}

const (
	testSlotID  = "68a000000000000000000001"
	testUserID  = "user-42"
	testBooking = "68b000000000000000000001"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:           5 * time.Second,
		WriteTimeout:          5 * time.Second,
		MaxBookingDurationMin: 1440,
	}
}

func newTestService(bookings *mockBookingRepository, slots *mockSlotRepository, cfg *config.Config) *reservationService {
	v := validator.NewBookingValidator(cfg.Log, cfg.MaxBookingDurationMin)
	return NewReservationService(bookings, slots, v, nil, cfg).(*reservationService)
}

func availableSlot() *model.Slot {
	return &model.Slot{
		ID:         testSlotID,
		SlotNumber: "A-01",
		Status:     model.SlotAvailable,
	}
}

func TestReserve_Success(t *testing.T) {
	cfg := newTestConfig()

	var created *model.Booking
	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			booking.ID = testBooking
			created = booking
			return nil
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return availableSlot(), nil
		},
	}

	svc := newTestService(bookings, slots, cfg)
	booking, err := svc.Reserve(context.Background(), testUserID, testSlotID, 30)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if booking.ID != testBooking {
		t.Errorf("expected booking ID %s, got %s", testBooking, booking.ID)
	}
	if booking.Status != model.BookingActive {
		t.Errorf("expected status active, got %s", booking.Status)
	}
	if got := booking.EndTime.Sub(booking.StartTime); got != 30*time.Minute {
		t.Errorf("expected 30m duration, got %s", got)
	}
	if created == nil {
		t.Fatal("expected booking to be persisted")
	}
}

func TestReserve_ZeroDurationRejected(t *testing.T) {
	cfg := newTestConfig()

	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Error("booking must not be created for an invalid duration")
			return nil
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			t.Error("slot must not be read for an invalid duration")
			return availableSlot(), nil
		},
	}

	svc := newTestService(bookings, slots, cfg)
	_, err := svc.Reserve(context.Background(), testUserID, testSlotID, 0)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error for zero duration, got %v", err)
	}
}

func TestReserve_SlotOccupied(t *testing.T) {
	cfg := newTestConfig()

	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Error("booking must not be created when the claim fails")
			return nil
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			slot := availableSlot()
			slot.Status = model.SlotOccupied
			return slot, nil
		},
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return false, nil
		},
	}

	svc := newTestService(bookings, slots, cfg)
	_, err := svc.Reserve(context.Background(), testUserID, testSlotID, 30)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestReserve_UnknownSlot(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockBookingRepository{}, &mockSlotRepository{}, cfg)
	_, err := svc.Reserve(context.Background(), testUserID, testSlotID, 30)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestReserve_DurationTooLong(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockBookingRepository{}, &mockSlotRepository{}, cfg)
	_, err := svc.Reserve(context.Background(), testUserID, testSlotID, 2000)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestReserve_MissingUser(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockBookingRepository{}, &mockSlotRepository{}, cfg)
	_, err := svc.Reserve(context.Background(), "", testSlotID, 30)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestReserve_CompensatesWhenLedgerFails(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotAvailable

	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			return errors.New("write failed")
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return availableSlot(), nil
		},
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)
	_, err := svc.Reserve(context.Background(), testUserID, testSlotID, 30)
	if err == nil {
		t.Fatal("expected error when ledger write fails")
	}

	if got := store.status[testSlotID]; got != model.SlotAvailable {
		t.Errorf("expected slot rolled back to available, got %s", got)
	}
}

func TestReserve_CompensatesAfterCallerCancels(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotAvailable

	ctx, cancel := context.WithCancel(context.Background())

	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			cancel()
			return ctx.Err()
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return availableSlot(), nil
		},
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)
	_, err := svc.Reserve(ctx, testUserID, testSlotID, 30)
	if err == nil {
		t.Fatal("expected error when caller cancels mid-flight")
	}

	// The rollback runs on a detached context, so the cancelled caller
	// cannot leave the slot stuck occupied.
	if got := store.status[testSlotID]; got != model.SlotAvailable {
		t.Errorf("expected slot rolled back to available, got %s", got)
	}
}

func TestReserve_ConcurrentSingleWinner(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotAvailable

	var createMu sync.Mutex
	var createdCount int

	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			createMu.Lock()
			defer createMu.Unlock()
			createdCount++
			booking.ID = testBooking
			return nil
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return availableSlot(), nil
		},
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)

	const workers = 20
	results := make(chan error, workers)
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), testUserID, testSlotID, 30)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		if appErr := apperrors.AsAppError(err); appErr != nil && appErr.Code == apperrors.CodeConflict {
			conflicts++
			continue
		}
		t.Errorf("unexpected error: %v", err)
	}

	if wins != 1 {
		t.Errorf("expected exactly one winner, got %d", wins)
	}
	if conflicts != workers-1 {
		t.Errorf("expected %d conflicts, got %d", workers-1, conflicts)
	}
	if createdCount != 1 {
		t.Errorf("expected exactly one booking created, got %d", createdCount)
	}
	if got := store.status[testSlotID]; got != model.SlotOccupied {
		t.Errorf("expected slot occupied after the winner, got %s", got)
	}
}

func activeBooking(end time.Time) *model.Booking {
	return &model.Booking{
		ID:        testBooking,
		UserID:    testUserID,
		SlotID:    testSlotID,
		Status:    model.BookingActive,
		StartTime: end.Add(-30 * time.Minute),
		EndTime:   end,
	}
}

func TestRelease_Success(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotOccupied

	bookings := &mockBookingRepository{
		findActiveForSlotFunc: func(ctx context.Context, slotID string) (*model.Booking, error) {
			return activeBooking(time.Now().Add(10 * time.Minute)), nil
		},
		markResolvedFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			if status != model.BookingCompleted {
				t.Errorf("expected resolution to completed, got %s", status)
			}
			resolved := activeBooking(time.Now().Add(10 * time.Minute))
			resolved.Status = status
			return resolved, nil
		},
	}
	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)
	booking, err := svc.Release(context.Background(), testSlotID)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if booking.Status != model.BookingCompleted {
		t.Errorf("expected completed booking, got %s", booking.Status)
	}
	if got := store.status[testSlotID]; got != model.SlotAvailable {
		t.Errorf("expected slot freed, got %s", got)
	}
}

func TestRelease_NoActiveBooking(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockBookingRepository{}, &mockSlotRepository{}, cfg)
	_, err := svc.Release(context.Background(), testSlotID)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestRelease_ConcurrentResolutionTolerated(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotAvailable

	bookings := &mockBookingRepository{
		findActiveForSlotFunc: func(ctx context.Context, slotID string) (*model.Booking, error) {
			return activeBooking(time.Now().Add(10 * time.Minute)), nil
		},
		markResolvedFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			return nil, bookingerrors.ErrAlreadyResolved
		},
	}
	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)
	booking, err := svc.Release(context.Background(), testSlotID)
	if err != nil {
		t.Fatalf("expected idempotent success, got error: %v", err)
	}
	if booking == nil {
		t.Fatal("expected booking in response")
	}
}

func TestCancel_AlreadyResolved(t *testing.T) {
	cfg := newTestConfig()

	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			booking := activeBooking(time.Now().Add(10 * time.Minute))
			booking.Status = model.BookingCompleted
			return booking, nil
		},
		markResolvedFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			return nil, bookingerrors.ErrAlreadyResolved
		},
	}

	svc := newTestService(bookings, &mockSlotRepository{}, cfg)
	_, err := svc.Cancel(context.Background(), testUserID, testBooking)

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCancel_Success(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotOccupied

	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return activeBooking(time.Now().Add(10 * time.Minute)), nil
		},
		markResolvedFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			if status != model.BookingCancelled {
				t.Errorf("expected resolution to cancelled, got %s", status)
			}
			resolved := activeBooking(time.Now().Add(10 * time.Minute))
			resolved.Status = status
			return resolved, nil
		},
	}
	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)
	booking, err := svc.Cancel(context.Background(), testUserID, testBooking)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if booking.Status != model.BookingCancelled {
		t.Errorf("expected cancelled booking, got %s", booking.Status)
	}
	if got := store.status[testSlotID]; got != model.SlotAvailable {
		t.Errorf("expected slot freed, got %s", got)
	}
}

func TestResolveSlot_ExpiredBookingFreesSlot(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotOccupied

	var resolvedID string
	bookings := &mockBookingRepository{
		findActiveForSlotFunc: func(ctx context.Context, slotID string) (*model.Booking, error) {
			return activeBooking(time.Now().Add(-5 * time.Minute)), nil
		},
		markResolvedFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			resolvedID = id
			resolved := activeBooking(time.Now().Add(-5 * time.Minute))
			resolved.Status = status
			return resolved, nil
		},
	}
	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(bookings, slots, cfg)

	slot := availableSlot()
	slot.Status = model.SlotOccupied
	resolved, err := svc.ResolveSlot(context.Background(), slot)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if resolvedID != testBooking {
		t.Errorf("expected booking %s resolved, got %q", testBooking, resolvedID)
	}
	if resolved.Status != model.SlotAvailable {
		t.Errorf("expected resolved slot available, got %s", resolved.Status)
	}
	if got := store.status[testSlotID]; got != model.SlotAvailable {
		t.Errorf("expected slot freed in store, got %s", got)
	}
}

func TestResolveSlot_ActiveBookingKeepsSlot(t *testing.T) {
	cfg := newTestConfig()

	bookings := &mockBookingRepository{
		findActiveForSlotFunc: func(ctx context.Context, slotID string) (*model.Booking, error) {
			return activeBooking(time.Now().Add(20 * time.Minute)), nil
		},
		markResolvedFunc: func(ctx context.Context, id string, status model.BookingStatus) (*model.Booking, error) {
			t.Error("a live booking must not be resolved")
			return nil, bookingerrors.ErrNotFound
		},
	}
	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			t.Error("a live booking must not free the slot")
			return false, nil
		},
	}

	svc := newTestService(bookings, slots, cfg)

	slot := availableSlot()
	slot.Status = model.SlotOccupied
	resolved, err := svc.ResolveSlot(context.Background(), slot)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if resolved.Status != model.SlotOccupied {
		t.Errorf("expected slot still occupied, got %s", resolved.Status)
	}
}

func TestResolveSlot_OrphanOccupiedSlot(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotOccupied

	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			return store.compareAndSet(id, expected, next)
		},
	}

	svc := newTestService(&mockBookingRepository{}, slots, cfg)

	slot := availableSlot()
	slot.Status = model.SlotOccupied
	resolved, err := svc.ResolveSlot(context.Background(), slot)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if resolved.Status != model.SlotAvailable {
		t.Errorf("expected orphan slot reconciled to available, got %s", resolved.Status)
	}
}

func TestResolveSlot_FreshClaimKeptOccupied(t *testing.T) {
	cfg := newTestConfig()

	slots := &mockSlotRepository{
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			t.Error("a freshly claimed slot must not be freed")
			return false, nil
		},
	}

	svc := newTestService(&mockBookingRepository{}, slots, cfg)

	// An occupied slot with no ledger entry and a just-written
	// updated_at is a reserve still inside the claim-then-record
	// window, not an orphan.
	slot := availableSlot()
	slot.Status = model.SlotOccupied
	slot.UpdatedAt = time.Now()

	resolved, err := svc.ResolveSlot(context.Background(), slot)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if resolved.Status != model.SlotOccupied {
		t.Errorf("expected fresh claim left occupied, got %s", resolved.Status)
	}
}

func TestReserve_ReaderDuringLedgerWriteKeepsClaim(t *testing.T) {
	cfg := newTestConfig()
	store := newSlotStore()
	store.status[testSlotID] = model.SlotAvailable

	var svc *reservationService
	var claimedAt time.Time
	var created *model.Booking

	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return availableSlot(), nil
		},
		transitionStatusFunc: func(ctx context.Context, id string, expected, next model.SlotStatus) (bool, error) {
			ok, err := store.compareAndSet(id, expected, next)
			if ok && next == model.SlotOccupied {
				claimedAt = time.Now()
			}
			return ok, err
		},
	}
	bookings := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			// A reader lands between the claim and this write and
			// observes an occupied slot with no active booking yet.
			observed := availableSlot()
			observed.Status = store.status[testSlotID]
			observed.UpdatedAt = claimedAt
			resolved, err := svc.ResolveSlot(ctx, observed)
			if err != nil {
				t.Fatalf("reader resolve failed: %v", err)
			}
			if resolved.Status != model.SlotOccupied {
				t.Errorf("reader must observe the claim as occupied, got %s", resolved.Status)
			}

			booking.ID = testBooking
			created = booking
			return nil
		},
	}

	svc = newTestService(bookings, slots, cfg)

	booking, err := svc.Reserve(context.Background(), testUserID, testSlotID, 30)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if created == nil || booking.Status != model.BookingActive {
		t.Fatal("expected an active booking to be recorded")
	}
	if got := store.status[testSlotID]; got != model.SlotOccupied {
		t.Errorf("expected slot still occupied after the reserve, got %s", got)
	}
}

func TestListForUser_EmbedsSlotSnapshots(t *testing.T) {
	cfg := newTestConfig()

	end := time.Now().Add(30 * time.Minute)
	bookings := &mockBookingRepository{
		findByUserFunc: func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
			return []*model.Booking{activeBooking(end)}, nil
		},
		countByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			return 1, nil
		},
	}
	slots := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			slot := availableSlot()
			slot.Status = model.SlotOccupied
			return slot, nil
		},
	}

	svc := newTestService(bookings, slots, cfg)
	result, total, err := svc.ListForUser(context.Background(), testUserID, 10, 0)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
	if len(result) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(result))
	}
	if result[0].Slot == nil || result[0].Slot.SlotNumber != "A-01" {
		t.Errorf("expected slot snapshot A-01, got %+v", result[0].Slot)
	}
}

func TestListForUser_DeletedSlotYieldsNilSnapshot(t *testing.T) {
	cfg := newTestConfig()

	bookings := &mockBookingRepository{
		findByUserFunc: func(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
			booking := activeBooking(time.Now().Add(30 * time.Minute))
			booking.Status = model.BookingCompleted
			return []*model.Booking{booking}, nil
		},
		countByUserFunc: func(ctx context.Context, userID string) (int64, error) {
			return 1, nil
		},
	}

	svc := newTestService(bookings, &mockSlotRepository{}, cfg)
	result, _, err := svc.ListForUser(context.Background(), testUserID, 10, 0)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(result))
	}
	if result[0].Slot != nil {
		t.Errorf("expected nil slot snapshot, got %+v", result[0].Slot)
	}
}
