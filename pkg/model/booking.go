package model

import "time"

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string        `json:"user_id" bson:"user_id" validate:"required,min=1,max=64"`
	SlotID    string        `json:"slot_id" bson:"slot_id" validate:"required,mongodb"`
	Status    BookingStatus `json:"status" bson:"status" validate:"required,oneof=active completed cancelled"`
	StartTime time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// ReserveRequest is the payload of a reservation attempt. The user id
// comes from the identity collaborator, never from the request body.
type ReserveRequest struct {
	SlotID          string `json:"slot_id" validate:"required,mongodb"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=1440"`
}

// BookingWithSlot embeds a display-only snapshot of the referenced
// slot. Slot is nil when the slot was removed after the booking was
// made; the booking record itself stays valid.
type BookingWithSlot struct {
	Booking
	Slot *Slot `json:"slot,omitempty"`
}
