package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	sloterrors "parkease/internal/slots/errors"
	"parkease/internal/slots/validator"
	"parkease/pkg/config"
	apperrors "parkease/pkg/errors"
	"parkease/pkg/logger"
	"parkease/pkg/model"
)

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
	slot.ID = "68a000000000000000000001"
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

// passthroughResolver leaves every slot as it was read.
type passthroughResolver struct{}

func (passthroughResolver) ResolveSlot(_ context.Context, slot *model.Slot) (*model.Slot, error) {
	return slot, nil
}

// freeingResolver reconciles every occupied slot to available, standing
// in for expiry resolution.
type freeingResolver struct{}

func (freeingResolver) ResolveSlot(_ context.Context, slot *model.Slot) (*model.Slot, error) {
	if slot.Status == model.SlotOccupied {
		freed := *slot
		freed.Status = model.SlotAvailable
		return &freed, nil
	}
	return slot, nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func newTestService(repo *mockSlotRepository, resolver ExpiryResolver, cfg *config.Config) SlotService {
	return NewSlotService(repo, resolver, validator.NewSlotValidator(cfg.Log), cfg)
}

func TestCreate_SanitizesSlotNumber(t *testing.T) {
	cfg := newTestConfig()

	var persisted *model.Slot
	repo := &mockSlotRepository{
		createFunc: func(ctx context.Context, slot *model.Slot) error {
			slot.ID = "68a000000000000000000001"
			persisted = slot
			return nil
		},
	}

	svc := newTestService(repo, passthroughResolver{}, cfg)
	slot, err := svc.Create(context.Background(), &model.SlotCreate{
		SlotNumber:  "  a 12 ",
		Description: "  near the   entrance ",
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if slot.SlotNumber != "A-12" {
		t.Errorf("expected slot number A-12, got %q", slot.SlotNumber)
	}
	if slot.Status != model.SlotAvailable {
		t.Errorf("expected default status available, got %s", slot.Status)
	}
	if persisted == nil {
		t.Fatal("expected slot to be persisted")
	}
	if persisted.Description != "near the entrance" {
		t.Errorf("expected normalized description, got %q", persisted.Description)
	}
}

func TestCreate_DuplicateSlotNumber(t *testing.T) {
	cfg := newTestConfig()

	repo := &mockSlotRepository{
		createFunc: func(ctx context.Context, slot *model.Slot) error {
			return sloterrors.ErrDuplicateSlotNumber
		},
	}

	svc := newTestService(repo, passthroughResolver{}, cfg)
	_, err := svc.Create(context.Background(), &model.SlotCreate{SlotNumber: "A-01"})

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCreate_InvalidStatus(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockSlotRepository{}, passthroughResolver{}, cfg)
	_, err := svc.Create(context.Background(), &model.SlotCreate{
		SlotNumber: "A-01",
		Status:     "parked",
	})

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if appErr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", appErr.StatusCode())
	}
}

func TestCreate_MissingSlotNumber(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockSlotRepository{}, passthroughResolver{}, cfg)
	_, err := svc.Create(context.Background(), &model.SlotCreate{})

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if appErr.StatusCode() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", appErr.StatusCode())
	}
}

func TestGetByID_NotFound(t *testing.T) {
	cfg := newTestConfig()

	svc := newTestService(&mockSlotRepository{}, passthroughResolver{}, cfg)
	_, err := svc.GetByID(context.Background(), "68a000000000000000000099")

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestGetByID_ResolvesExpiry(t *testing.T) {
	cfg := newTestConfig()

	repo := &mockSlotRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Slot, error) {
			return &model.Slot{ID: id, SlotNumber: "A-01", Status: model.SlotOccupied}, nil
		},
	}

	svc := newTestService(repo, freeingResolver{}, cfg)
	slot, err := svc.GetByID(context.Background(), "68a000000000000000000001")
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if slot.Status != model.SlotAvailable {
		t.Errorf("expected resolved slot available, got %s", slot.Status)
	}
}

func TestSummary_TalliesResolvedStatuses(t *testing.T) {
	cfg := newTestConfig()

	repo := &mockSlotRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Slot, error) {
			return []*model.Slot{
				{ID: "68a000000000000000000001", SlotNumber: "A-01", Status: model.SlotAvailable},
				{ID: "68a000000000000000000002", SlotNumber: "A-02", Status: model.SlotOccupied},
				{ID: "68a000000000000000000003", SlotNumber: "A-03", Status: model.SlotOccupied},
				{ID: "68a000000000000000000004", SlotNumber: "B-01", Status: model.SlotReserved},
			}, nil
		},
	}

	svc := newTestService(repo, passthroughResolver{}, cfg)
	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if summary.Total != 4 {
		t.Errorf("expected total 4, got %d", summary.Total)
	}
	if summary.Available != 1 || summary.Occupied != 2 || summary.Reserved != 1 {
		t.Errorf("unexpected tally: %+v", summary)
	}
}

func TestSummary_CountsSlotsFreedByResolution(t *testing.T) {
	cfg := newTestConfig()

	repo := &mockSlotRepository{
		findAllFunc: func(ctx context.Context) ([]*model.Slot, error) {
			return []*model.Slot{
				{ID: "68a000000000000000000001", SlotNumber: "A-01", Status: model.SlotOccupied},
				{ID: "68a000000000000000000002", SlotNumber: "A-02", Status: model.SlotOccupied},
			}, nil
		},
	}

	svc := newTestService(repo, freeingResolver{}, cfg)
	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if summary.Available != 2 || summary.Occupied != 0 {
		t.Errorf("expected all slots freed by resolution, got %+v", summary)
	}
}
