// Package expenses records job costs so the dashboard can report net takings.
package expenses

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is money spent on a job or on the business.
type Expense struct {
	ID          uuid.UUID       `json:"id"`
	SpentOn     time.Time       `json:"spent_on"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	QuoteID     *uuid.UUID      `json:"quote_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Input is the writable part of an expense. SpentOn is YYYY-MM-DD.
type Input struct {
	SpentOn     string          `json:"spent_on" validate:"required,datetime=2006-01-02"`
	Category    string          `json:"category" validate:"required,max=80"`
	Description string          `json:"description" validate:"max=500"`
	Amount      decimal.Decimal `json:"amount"`
	QuoteID     *uuid.UUID      `json:"quote_id"`
}

// ListFilter narrows an expense listing. To is inclusive.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
	QuoteID  *uuid.UUID
	Limit    int
	Offset   int
}

// CategoryTotal is one row of a summary.
type CategoryTotal struct {
	Category string          `json:"category"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

// Summary totals expenses over a half-open date range.
type Summary struct {
	From       time.Time       `json:"from"`
	To         time.Time       `json:"to"`
	Total      decimal.Decimal `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// MonthTotal is the expense total for one calendar month, keyed YYYY-MM.
type MonthTotal struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
}
