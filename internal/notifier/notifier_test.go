package notifier

import (
	"context"
	"strings"
	"testing"

	bookingservice "parkease/internal/bookings/service"
	"parkease/pkg/kafka"
	"parkease/pkg/logger"
)

type recordingDispatcher struct {
	userID  string
	message string
	calls   int
}

func (d *recordingDispatcher) Dispatch(_ context.Context, userID, message string) error {
	d.userID = userID
	d.message = message
	d.calls++
	return nil
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func buildEventMessage(t *testing.T, eventType string, event bookingservice.BookingEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey(event.SlotID).
		WithEventType(eventType).
		WithValue(event).
		Build()
	if err != nil {
		t.Fatalf("failed to build message: %v", err)
	}
	return msg
}

func TestHandle_DispatchesReservedNotification(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := NewHandler(dispatcher, newTestLogger())

	msg := buildEventMessage(t, bookingservice.EventBookingReserved, bookingservice.BookingEvent{
		BookingID: "68b000000000000000000001",
		UserID:    "user-42",
		SlotID:    "68a000000000000000000001",
		Status:    "active",
		EndTime:   "2026-09-01T12:00:00.000Z",
	})

	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if dispatcher.userID != "user-42" {
		t.Errorf("expected dispatch to user-42, got %q", dispatcher.userID)
	}
	if !strings.Contains(dispatcher.message, "2026-09-01T12:00:00.000Z") {
		t.Errorf("expected end time in message, got %q", dispatcher.message)
	}
}

func TestHandle_UnknownEventTypeSkipped(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := NewHandler(dispatcher, newTestLogger())

	msg := buildEventMessage(t, "booking.migrated", bookingservice.BookingEvent{
		UserID: "user-42",
		SlotID: "68a000000000000000000001",
	})

	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("unknown event must commit without error, got: %v", err)
	}
	if dispatcher.calls != 0 {
		t.Errorf("expected no dispatch for unknown event type, got %d", dispatcher.calls)
	}
}

func TestHandle_MissingUserSkipped(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := NewHandler(dispatcher, newTestLogger())

	msg := buildEventMessage(t, bookingservice.EventBookingReleased, bookingservice.BookingEvent{
		SlotID: "68a000000000000000000001",
	})

	if err := handler.Handle(context.Background(), msg); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if dispatcher.calls != 0 {
		t.Errorf("expected no dispatch without a user, got %d", dispatcher.calls)
	}
}

func TestHandle_MalformedPayload(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	handler := NewHandler(dispatcher, newTestLogger())

	msg := kafka.Message{
		Value:   []byte("not json"),
		Headers: map[string]string{kafka.HeaderEventType: bookingservice.EventBookingReserved},
	}

	if err := handler.Handle(context.Background(), msg); err == nil {
		t.Fatal("expected decode error for malformed payload")
	}
	if dispatcher.calls != 0 {
		t.Errorf("expected no dispatch for malformed payload, got %d", dispatcher.calls)
	}
}
