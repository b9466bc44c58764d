package service

import (
	"context"

	"parkease/pkg/kafka"
	"parkease/pkg/middleware"
	"parkease/pkg/model"
)

// Booking lifecycle event types carried in the event-type header.
const (
	EventBookingReserved  = "booking.reserved"
	EventBookingReleased  = "booking.released"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
)

const eventSource = "parking-api"

// EventPublisher is the slice of the Kafka producer the coordinator
// needs. A nil publisher disables events.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// BookingEvent is the payload published for every lifecycle transition.
type BookingEvent struct {
	BookingID string `json:"booking_id"`
	UserID    string `json:"user_id"`
	SlotID    string `json:"slot_id"`
	Status    string `json:"status"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// publishEvent emits the transition keyed by slot id, so every event
// for one slot lands on the same partition in order. Publishing is
// best effort: the booking outcome does not depend on it.
func (s *reservationService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.publisher == nil {
		return
	}

	builder := kafka.NewMessage().
		WithKey(booking.SlotID).
		WithEventType(eventType).
		WithSource(eventSource).
		WithValue(BookingEvent{
			BookingID: booking.ID,
			UserID:    booking.UserID,
			SlotID:    booking.SlotID,
			Status:    string(booking.Status),
			StartTime: booking.StartTime.Format("2006-01-02T15:04:05.000Z07:00"),
			EndTime:   booking.EndTime.Format("2006-01-02T15:04:05.000Z07:00"),
		})

	if rid := ctx.Value(middleware.RequestIDKey); rid != nil {
		if correlationID, ok := rid.(string); ok {
			builder = builder.WithCorrelationID(correlationID)
		}
	}

	msg, err := builder.Build()
	if err != nil {
		s.cfg.Log.Error("Failed to build booking event", "event_type", eventType, "error", err)
		return
	}

	if err := s.publisher.Publish(context.WithoutCancel(ctx), msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
