package service

import (
	"context"
	"errors"

	sloterrors "parkease/internal/slots/errors"
	"parkease/internal/slots/repository"
	"parkease/internal/slots/validator"
	"parkease/pkg/config"
	apperrors "parkease/pkg/errors"
	"parkease/pkg/model"
	"parkease/pkg/sanitizer"
)

// ExpiryResolver reconciles a slot whose active booking has lapsed.
// The returned slot is the state the caller should observe; resolution
// happens lazily on read paths, there is no background sweep.
type ExpiryResolver interface {
	ResolveSlot(ctx context.Context, slot *model.Slot) (*model.Slot, error)
}

type SlotService interface {
	Create(ctx context.Context, create *model.SlotCreate) (*model.Slot, error)
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	GetAll(ctx context.Context) ([]*model.Slot, error)
	Summary(ctx context.Context) (*model.SlotSummary, error)
}

type slotService struct {
	repo      repository.SlotRepository
	resolver  ExpiryResolver
	validator *validator.SlotValidator
	cfg       *config.Config
}

func NewSlotService(
	repo repository.SlotRepository,
	resolver ExpiryResolver,
	validator *validator.SlotValidator,
	cfg *config.Config,
) SlotService {
	return &slotService{
		repo:      repo,
		resolver:  resolver,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *slotService) Create(ctx context.Context, create *model.SlotCreate) (*model.Slot, error) {
	create.SlotNumber = sanitizer.SanitizeSlotNumber(create.SlotNumber)
	create.Description = sanitizer.NormalizeDescription(create.Description)
	if create.Status == "" {
		create.Status = model.SlotAvailable
	}

	if err := s.validator.ValidateCreate(create); err != nil {
		s.cfg.Log.Warn("Slot validation failed", "error", err)
		return nil, apperrors.InvalidInput(err.Error())
	}

	slot := &model.Slot{
		SlotNumber:  create.SlotNumber,
		Status:      create.Status,
		Description: create.Description,
	}

	// Uniqueness of the slot number is enforced by the store's unique
	// index, not by a prior read, so two simultaneous creates cannot
	// both succeed.
	if err := s.repo.Create(ctx, slot); err != nil {
		if errors.Is(err, sloterrors.ErrDuplicateSlotNumber) {
			return nil, apperrors.Conflict("Slot with this slot number already exists")
		}
		s.cfg.Log.Error("Failed to create slot", "slot_number", create.SlotNumber, "error", err)
		return nil, apperrors.Internal("Failed to create slot", err)
	}

	s.cfg.Log.Info("Slot created successfully",
		"id", slot.ID,
		"slot_number", slot.SlotNumber,
		"status", slot.Status,
	)
	return slot, nil
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	return s.resolve(ctx, slot)
}

func (s *slotService) GetAll(ctx context.Context) ([]*model.Slot, error) {
	slots, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots", "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	for i, slot := range slots {
		resolved, err := s.resolve(ctx, slot)
		if err != nil {
			return nil, err
		}
		slots[i] = resolved
	}

	return slots, nil
}

func (s *slotService) Summary(ctx context.Context) (*model.SlotSummary, error) {
	slots, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &model.SlotSummary{Total: int64(len(slots))}
	for _, slot := range slots {
		switch slot.Status {
		case model.SlotAvailable:
			summary.Available++
		case model.SlotOccupied:
			summary.Occupied++
		case model.SlotReserved:
			summary.Reserved++
		}
	}

	return summary, nil
}

func (s *slotService) resolve(ctx context.Context, slot *model.Slot) (*model.Slot, error) {
	resolved, err := s.resolver.ResolveSlot(ctx, slot)
	if err != nil {
		s.cfg.Log.Error("Failed to resolve slot expiry", "slot_id", slot.ID, "error", err)
		return nil, apperrors.Internal("Failed to resolve slot state", err)
	}
	return resolved, nil
}

func (s *slotService) mapLookupError(err error, id string) error {
	if errors.Is(err, sloterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Slot", id)
	}
	if errors.Is(err, sloterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid slot ID format")
	}
	return apperrors.Internal("Failed to retrieve slot", err)
}
