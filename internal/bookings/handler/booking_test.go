package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "parkease/pkg/errors"
	"parkease/pkg/logger"
	"parkease/pkg/middleware"
	"parkease/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// Mock service for testing
type mockReservationService struct {
	reserveFunc     func(ctx context.Context, userID, slotID string, durationMinutes int) (*model.Booking, error)
	releaseFunc     func(ctx context.Context, slotID string) (*model.Booking, error)
	cancelFunc      func(ctx context.Context, userID, bookingID string) (*model.Booking, error)
	listForUserFunc func(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingWithSlot, int64, error)
}

func (m *mockReservationService) Reserve(ctx context.Context, userID, slotID string, durationMinutes int) (*model.Booking, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, userID, slotID, durationMinutes)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) Release(ctx context.Context, slotID string) (*model.Booking, error) {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, slotID)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) Cancel(ctx context.Context, userID, bookingID string) (*model.Booking, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, userID, bookingID)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingWithSlot, int64, error) {
	if m.listForUserFunc != nil {
		return m.listForUserFunc(ctx, userID, limit, offset)
	}
	return []*model.BookingWithSlot{}, 0, nil
}

func (m *mockReservationService) ResolveSlot(ctx context.Context, slot *model.Slot) (*model.Slot, error) {
	return slot, nil
}

func newTestRouter(svc *mockReservationService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	router := httprouter.New()
	NewBookingHandler(svc, log).RegisterRoutes(router)
	return router
}

func withUser(r *http.Request, userID string) *http.Request {
	if userID == "" {
		return r
	}
	return r.WithContext(context.WithValue(r.Context(), middleware.UserIDKey, userID))
}

func TestReserveEndpoint(t *testing.T) {
	booking := &model.Booking{
		ID:        "68b000000000000000000001",
		UserID:    "user-42",
		SlotID:    "68a000000000000000000001",
		Status:    model.BookingActive,
		StartTime: time.Now(),
		EndTime:   time.Now().Add(30 * time.Minute),
	}

	tests := []struct {
		name       string
		userID     string
		body       string
		reserveErr error
		wantStatus int
	}{
		{
			name:       "successful reservation",
			userID:     "user-42",
			body:       `{"slot_id":"68a000000000000000000001","duration_minutes":30}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing identity",
			userID:     "",
			body:       `{"slot_id":"68a000000000000000000001","duration_minutes":30}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed body",
			userID:     "user-42",
			body:       `{"slot_id":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "slot taken",
			userID:     "user-42",
			body:       `{"slot_id":"68a000000000000000000001","duration_minutes":30}`,
			reserveErr: apperrors.Conflict("Slot is not available"),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown slot",
			userID:     "user-42",
			body:       `{"slot_id":"68a000000000000000000099","duration_minutes":30}`,
			reserveErr: apperrors.NotFoundWithID("Slot", "68a000000000000000000099"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockReservationService{
				reserveFunc: func(ctx context.Context, userID, slotID string, durationMinutes int) (*model.Booking, error) {
					if tt.reserveErr != nil {
						return nil, tt.reserveErr
					}
					return booking, nil
				},
			}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body))
			req = withUser(req, tt.userID)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestReserveEndpoint_ReturnsBooking(t *testing.T) {
	svc := &mockReservationService{
		reserveFunc: func(ctx context.Context, userID, slotID string, durationMinutes int) (*model.Booking, error) {
			return &model.Booking{
				ID:     "68b000000000000000000001",
				UserID: userID,
				SlotID: slotID,
				Status: model.BookingActive,
			}, nil
		},
	}
	router := newTestRouter(svc)

	body := `{"slot_id":"68a000000000000000000001","duration_minutes":30}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body))
	req = withUser(req, "user-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.UserID != "user-42" || resp.Data.Status != model.BookingActive {
		t.Errorf("unexpected booking in response: %+v", resp.Data)
	}
}

func TestReleaseEndpoint(t *testing.T) {
	var releasedSlot string
	svc := &mockReservationService{
		releaseFunc: func(ctx context.Context, slotID string) (*model.Booking, error) {
			releasedSlot = slotID
			return &model.Booking{
				ID:     "68b000000000000000000001",
				SlotID: slotID,
				Status: model.BookingCompleted,
			}, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/slots/id/68a000000000000000000001/release", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if releasedSlot != "68a000000000000000000001" {
		t.Errorf("expected slot id from path, got %q", releasedSlot)
	}
}

func TestCancelEndpoint_RequiresIdentity(t *testing.T) {
	router := newTestRouter(&mockReservationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/68b000000000000000000001/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListMineEndpoint_Pagination(t *testing.T) {
	var receivedLimit int
	var receivedOffset int64
	svc := &mockReservationService{
		listForUserFunc: func(ctx context.Context, userID string, limit int, offset int64) ([]*model.BookingWithSlot, int64, error) {
			receivedLimit = limit
			receivedOffset = offset
			return []*model.BookingWithSlot{}, 0, nil
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/my?limit=25&offset=5", nil)
	req = withUser(req, "user-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	if receivedLimit != 25 || receivedOffset != 5 {
		t.Errorf("expected limit=25 offset=5, got limit=%d offset=%d", receivedLimit, receivedOffset)
	}
}
