package quotes

import (
	"strings"

	"github.com/google/uuid"

	"github.com/tilequote/tilequote/internal/platform/httpx"
	"github.com/tilequote/tilequote/internal/pricing"
)

// CreateRequest creates a document from structured input.
type CreateRequest struct {
	Kind       Kind                      `json:"kind" validate:"omitempty,oneof=quotation invoice"`
	ClientID   *uuid.UUID                `json:"client_id"`
	ClientName string                    `json:"client_name" validate:"max=120"`
	Title      string                    `json:"title" validate:"max=200"`
	Document   pricing.QuotationDocument `json:"document"`
	Checklist  []string                  `json:"checklist" validate:"max=50,dive,max=300"`
	Terms      string                    `json:"terms" validate:"max=4000"`
}

// TextRequest creates a document from a free-text description.
type TextRequest struct {
	Text     string     `json:"text" validate:"required,max=8000"`
	Kind     Kind       `json:"kind" validate:"omitempty,oneof=quotation invoice"`
	ClientID *uuid.UUID `json:"client_id"`
}

// UpdateRequest replaces a document's body and header fields.
type UpdateRequest struct {
	ClientID   *uuid.UUID                `json:"client_id"`
	ClientName string                    `json:"client_name" validate:"max=120"`
	Title      string                    `json:"title" validate:"max=200"`
	Document   pricing.QuotationDocument `json:"document"`
	Checklist  []string                  `json:"checklist" validate:"max=50,dive,max=300"`
	Terms      string                    `json:"terms" validate:"max=4000"`
}

// LineEdit changes one tile line. Sqm or Cartons declares the driving field;
// sending both requires Basis to pick one.
type LineEdit struct {
	Category  *string         `json:"category" validate:"omitempty,max=120"`
	Group     *string         `json:"group" validate:"omitempty,max=120"`
	Size      *string         `json:"size" validate:"omitempty,max=40"`
	UnitPrice *pricing.Number `json:"unit_price"`
	Sqm       *pricing.Number `json:"sqm" validate:"omitempty,gte=0,lte=1000000"`
	Cartons   *pricing.Number `json:"cartons" validate:"omitempty,gte=0,lte=1000000"`
	Basis     pricing.Basis   `json:"basis" validate:"omitempty,oneof=area cartons"`
}

// WastageRequest toggles wastage on one line.
type WastageRequest struct {
	Direction pricing.WastageDirection `json:"direction" validate:"required,oneof=add remove"`
}

// StatusRequest moves a document through its lifecycle.
type StatusRequest struct {
	Status Status `json:"status" validate:"required,oneof=draft sent accepted paid cancelled"`
}

// drivingBasis reports which quantity field the edit declares, or
// BasisUnspecified when it leaves quantities alone.
func (e LineEdit) drivingBasis() (pricing.Basis, error) {
	switch {
	case e.Sqm != nil && e.Cartons != nil:
		if e.Basis == pricing.BasisUnspecified {
			return "", &httpx.ValidationError{Fields: map[string]string{"basis": "is required when both sqm and cartons are sent"}}
		}
		return e.Basis, nil
	case e.Sqm != nil:
		return pricing.BasisArea, nil
	case e.Cartons != nil:
		return pricing.BasisCartons, nil
	default:
		return pricing.BasisUnspecified, nil
	}
}

// apply copies the edited fields onto item and returns the quantity that
// should drive its reconciliation. A zero unit price clears the override.
func (e LineEdit) apply(item pricing.TileLineItem, basis pricing.Basis) (pricing.TileLineItem, pricing.Quantity) {
	if e.Category != nil {
		item.Category = strings.TrimSpace(*e.Category)
		item.TileType = ""
	}
	if e.Group != nil {
		item.Group = strings.TrimSpace(*e.Group)
	}
	if e.Size != nil {
		item.Size = pricing.NormalizeSize(*e.Size)
	}
	if e.UnitPrice != nil {
		if price := e.UnitPrice.Float64(); price > 0 {
			item.UnitPrice = *e.UnitPrice
			item.PriceSource = pricing.PriceSourceUser
		} else {
			item.UnitPrice = 0
			item.PriceSource = ""
		}
	}

	switch basis {
	case pricing.BasisArea:
		item.WastageApplied = false
		return item, pricing.FromArea(e.Sqm.Float64())
	case pricing.BasisCartons:
		item.WastageApplied = false
		item.Cartons = *e.Cartons
		return item, pricing.FromCartons(item.CartonCount())
	default:
		return item, item.Quantity()
	}
}
