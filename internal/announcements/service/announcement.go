package service

import (
	"context"
	"errors"
	"sync"

	announcementerrors "parkease/internal/announcements/errors"
	"parkease/internal/announcements/repository"
	"parkease/internal/announcements/validator"
	"parkease/pkg/config"
	apperrors "parkease/pkg/errors"
	"parkease/pkg/model"
	"parkease/pkg/sanitizer"
)

type AnnouncementService interface {
	Create(ctx context.Context, announcement *model.Announcement) (*model.Announcement, error)
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	GetAll(ctx context.Context, limit int, offset int64, sortAsc bool) ([]*model.Announcement, int64, error)
	Search(ctx context.Context, query string) ([]*model.Announcement, error)
	Update(ctx context.Context, id string, update *model.AnnouncementUpdate) (*model.Announcement, error)
	Delete(ctx context.Context, id string) error
}

type announcementService struct {
	repo      repository.AnnouncementRepository
	validator *validator.AnnouncementValidator
	cfg       *config.Config
}

func NewAnnouncementService(
	repo repository.AnnouncementRepository,
	validator *validator.AnnouncementValidator,
	cfg *config.Config,
) AnnouncementService {
	return &announcementService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *announcementService) Create(ctx context.Context, announcement *model.Announcement) (*model.Announcement, error) {
	announcement.Title = sanitizer.NormalizeTitle(announcement.Title)
	announcement.Description = sanitizer.NormalizeDescription(announcement.Description)

	if err := s.validator.ValidateCreate(announcement); err != nil {
		s.cfg.Log.Warn("Announcement validation failed", "error", err)
		return nil, apperrors.Validation("Announcement validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, announcement); err != nil {
		s.cfg.Log.Error("Failed to create announcement", "title", announcement.Title, "error", err)
		return nil, apperrors.Internal("Failed to create announcement", err)
	}

	s.cfg.Log.Info("Announcement created", "announcement_id", announcement.ID, "title", announcement.Title)
	return announcement, nil
}

func (s *announcementService) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Announcement ID cannot be empty")
	}

	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}
	return announcement, nil
}

func (s *announcementService) GetAll(ctx context.Context, limit int, offset int64, sortAsc bool) ([]*model.Announcement, int64, error) {
	var count int64
	var announcements []*model.Announcement
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count announcements", "error", errCount)
			errCount = apperrors.Internal("Failed to count announcements", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		announcements, errFind = s.repo.FindAll(ctx, limit, offset, sortAsc)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list announcements", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve announcements", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return announcements, count, nil
}

func (s *announcementService) Search(ctx context.Context, query string) ([]*model.Announcement, error) {
	query = sanitizer.TrimAndNormalize(query)
	if query == "" {
		return nil, apperrors.InvalidInput("Search query cannot be empty")
	}

	announcements, err := s.repo.Search(ctx, query)
	if err != nil {
		s.cfg.Log.Error("Failed to search announcements", "query", query, "error", err)
		return nil, apperrors.Internal("Failed to search announcements", err)
	}
	return announcements, nil
}

func (s *announcementService) Update(ctx context.Context, id string, update *model.AnnouncementUpdate) (*model.Announcement, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Announcement ID cannot be empty")
	}

	update.Title = sanitizer.NormalizeTitle(update.Title)
	if update.Description != nil {
		normalized := sanitizer.NormalizeDescription(*update.Description)
		update.Description = &normalized
	}

	if err := s.validator.ValidateUpdate(update); err != nil {
		s.cfg.Log.Warn("Announcement update validation failed", "announcement_id", id, "error", err)
		return nil, apperrors.Validation("Announcement validation failed", map[string]any{"error": err.Error()})
	}

	announcement, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Announcement updated", "announcement_id", id)
	return announcement, nil
}

func (s *announcementService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Announcement ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, id)
	}

	s.cfg.Log.Info("Announcement deleted", "announcement_id", id)
	return nil
}

func (s *announcementService) mapLookupError(err error, id string) error {
	if errors.Is(err, announcementerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Announcement", id)
	}
	if errors.Is(err, announcementerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid announcement ID format")
	}
	return apperrors.Internal("Failed to process announcement", err)
}
