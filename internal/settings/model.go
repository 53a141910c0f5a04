// Package settings stores the business details and pricing profile the
// quotation engine reads from. The engine never writes to it.
package settings

import (
	"time"

	"github.com/tilequote/tilequote/internal/pricing"
)

// BusinessDetails appear on every exported quote or invoice.
type BusinessDetails struct {
	Name          string `json:"name" validate:"max=120"`
	Phone         string `json:"phone" validate:"max=40"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address" validate:"max=300"`
	BankName      string `json:"bank_name" validate:"max=120"`
	AccountName   string `json:"account_name" validate:"max=120"`
	AccountNumber string `json:"account_number" validate:"max=20"`
	Currency      string `json:"currency" validate:"omitempty,len=3"`
}

// Settings is the single stored configuration record.
type Settings struct {
	Business     BusinessDetails `json:"business"`
	Profile      pricing.Profile `json:"profile"`
	DefaultTerms string          `json:"default_terms" validate:"max=4000"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// DefaultCurrency is used when the business has not picked one.
const DefaultCurrency = "NGN"

// DefaultTerms is shown on new documents until the business edits it.
const DefaultTerms = "70% deposit before commencement; balance on completion. " +
	"Prices valid for 14 days. Materials remain property of the contractor until fully paid."

// Default returns the settings used before anything has been saved.
func Default() Settings {
	return Settings{
		Business:     BusinessDetails{Currency: DefaultCurrency},
		Profile:      pricing.DefaultProfile(),
		DefaultTerms: DefaultTerms,
	}
}
