package model

import "time"

type Announcement struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title       string    `json:"title" bson:"title" validate:"required,min=2,max=150"`
	Description string    `json:"description" bson:"description" validate:"omitempty,max=2000"`
	Date        time.Time `json:"date" bson:"date" validate:"omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

type AnnouncementUpdate struct {
	Title       string     `json:"title,omitempty" validate:"omitempty,min=2,max=150"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Date        *time.Time `json:"date,omitempty" validate:"omitempty"`
}
