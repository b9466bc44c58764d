package notifier

import (
	"context"
	"fmt"

	bookingservice "parkease/internal/bookings/service"
	"parkease/pkg/kafka"
	"parkease/pkg/logger"
)

// Dispatcher delivers a rendered notification to a user. The log
// dispatcher is the default; SMS or push transports plug in behind the
// same interface.
type Dispatcher interface {
	Dispatch(ctx context.Context, userID, message string) error
}

type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Dispatch(_ context.Context, userID, message string) error {
	d.log.Info("Notification dispatched", "user_id", userID, "message", message)
	return nil
}

// Handler consumes booking lifecycle events and turns them into user
// notifications.
type Handler struct {
	dispatcher Dispatcher
	log        *logger.Logger
}

func NewHandler(dispatcher Dispatcher, log *logger.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		log:        log,
	}
}

// Handle implements kafka.MessageHandler. Unknown event types are
// committed without action so the consumer never wedges on them.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event bookingservice.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("failed to decode booking event: %w", err)
	}

	eventType := msg.GetEventType()
	h.log.Debug("Booking event received",
		"event_id", msg.GetEventID(),
		"event_type", eventType,
		"slot_id", event.SlotID,
	)

	message, ok := h.render(eventType, event)
	if !ok {
		h.log.Warn("Unknown booking event type, skipping", "event_type", eventType)
		return nil
	}

	if event.UserID == "" {
		h.log.Warn("Booking event without user, skipping", "event_id", msg.GetEventID())
		return nil
	}

	return h.dispatcher.Dispatch(ctx, event.UserID, message)
}

func (h *Handler) render(eventType string, event bookingservice.BookingEvent) (string, bool) {
	switch eventType {
	case bookingservice.EventBookingReserved:
		return fmt.Sprintf("Your parking reservation is confirmed until %s.", event.EndTime), true
	case bookingservice.EventBookingReleased:
		return "Your parking session has ended. Thanks for parking with us.", true
	case bookingservice.EventBookingCancelled:
		return "Your parking reservation was cancelled.", true
	case bookingservice.EventBookingExpired:
		return "Your parking reservation expired and the slot was released.", true
	default:
		return "", false
	}
}
