// Package clients keeps the customer address book quotes are written for.
package clients

import (
	"time"

	"github.com/google/uuid"
)

// Client is a customer record.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the writable part of a client.
type Input struct {
	Name    string `json:"name" validate:"required,max=120"`
	Phone   string `json:"phone" validate:"max=40"`
	Email   string `json:"email" validate:"omitempty,email,max=160"`
	Address string `json:"address" validate:"max=300"`
	Notes   string `json:"notes" validate:"max=2000"`
}

// ListFilter narrows a client listing.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
