// Package quotes stores quotation and invoice documents and recomputes their
// totals through the pricing engine on every read.
package quotes

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tilequote/tilequote/internal/pricing"
)

// Kind distinguishes quotations from invoices.
type Kind string

const (
	KindQuotation Kind = "quotation"
	KindInvoice   Kind = "invoice"
)

func (k Kind) prefix() string {
	if k == KindInvoice {
		return "INV"
	}
	return "QT"
}

// FormatNumber renders a document number such as QT-2026-0042.
func FormatNumber(kind Kind, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", kind.prefix(), year, seq)
}

// Status is the lifecycle state of a document.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSent      Status = "sent"
	StatusAccepted  Status = "accepted"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusAccepted, StatusCancelled},
	StatusSent:      {StatusDraft, StatusAccepted, StatusCancelled},
	StatusAccepted:  {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {StatusDraft},
}

// CanTransition reports whether a document of kind may move from s to next.
// Only invoices can be paid.
func (s Status) CanTransition(kind Kind, next Status) bool {
	if next == StatusPaid && kind != KindInvoice {
		return false
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Editable reports whether the document body may still change.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusSent
}

// Quote is a stored quotation or invoice. Totals are never stored.
type Quote struct {
	ID         uuid.UUID                 `json:"id"`
	Number     string                    `json:"number"`
	Kind       Kind                      `json:"kind"`
	Status     Status                    `json:"status"`
	ClientID   *uuid.UUID                `json:"client_id,omitempty"`
	ClientName string                    `json:"client_name"`
	Title      string                    `json:"title"`
	Document   pricing.QuotationDocument `json:"document"`
	Checklist  []string                  `json:"checklist"`
	Terms      string                    `json:"terms"`
	SourceText string                    `json:"source_text,omitempty"`
	SourceID   *uuid.UUID                `json:"source_id,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// QuoteView pairs a document with freshly computed totals.
type QuoteView struct {
	Quote
	Totals pricing.TotalsSummary `json:"totals"`
}

// Preview is an unsaved, prepared document with its totals.
type Preview struct {
	Document pricing.QuotationDocument `json:"document"`
	Totals   pricing.TotalsSummary     `json:"totals"`
}

// ListFilter narrows the history list.
type ListFilter struct {
	Kind     Kind
	Status   Status
	ClientID *uuid.UUID
	From     *time.Time
	To       *time.Time
	Search   string
	Limit    int
	Offset   int
}
