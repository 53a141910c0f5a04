// Package diary keeps site-visit notes and the follow-ups they promise.
package diary

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one diary note.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	EntryDate time.Time  `json:"entry_date"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Location  string     `json:"location"`
	FollowUp  *time.Time `json:"follow_up,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Input is the writable part of an entry. Dates are YYYY-MM-DD.
type Input struct {
	EntryDate string `json:"entry_date" validate:"required,datetime=2006-01-02"`
	Title     string `json:"title" validate:"required,max=200"`
	Body      string `json:"body" validate:"max=8000"`
	Location  string `json:"location" validate:"max=300"`
	FollowUp  string `json:"follow_up" validate:"omitempty,datetime=2006-01-02"`
}

// ListFilter narrows a diary listing. To is inclusive.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}
