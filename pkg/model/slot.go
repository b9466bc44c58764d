package model

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotOccupied  SlotStatus = "occupied"
	SlotReserved  SlotStatus = "reserved"
)

func (s SlotStatus) Valid() bool {
	switch s {
	case SlotAvailable, SlotOccupied, SlotReserved:
		return true
	}
	return false
}

type Slot struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SlotNumber  string     `json:"slot_number" bson:"slot_number" validate:"required,min=1,max=20"`
	Status      SlotStatus `json:"status" bson:"status" validate:"required,oneof=available occupied reserved"`
	Description string     `json:"description" bson:"description" validate:"omitempty,max=500"`
	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time  `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// SlotCreate is the admin-facing creation payload. Status defaults to
// available when omitted.
type SlotCreate struct {
	SlotNumber  string     `json:"slot_number" validate:"required,min=1,max=20"`
	Status      SlotStatus `json:"status,omitempty" validate:"omitempty,oneof=available occupied reserved"`
	Description string     `json:"description,omitempty" validate:"omitempty,max=500"`
}

type SlotSummary struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Occupied  int64 `json:"occupied"`
	Reserved  int64 `json:"reserved"`
}
