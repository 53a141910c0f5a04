// Package interpret turns free-text job descriptions into draft quotation
// documents through an external interpretation service.
package interpret

import (
	"context"
	"strings"

	"github.com/tilequote/tilequote/internal/pricing"
)

// Request is the text submitted for interpretation.
type Request struct {
	Text string `json:"text"`
}

// Interpreter converts free text into a Draft.
type Interpreter interface {
	Interpret(ctx context.Context, req Request) (Draft, error)
}

// InterpreterFunc adapts a function to Interpreter.
type InterpreterFunc func(ctx context.Context, req Request) (Draft, error)

// Interpret calls f.
func (f InterpreterFunc) Interpret(ctx context.Context, req Request) (Draft, error) {
	return f(ctx, req)
}

// TileLine is one tile row as returned by the interpreter. Every number is
// untrusted and decoded leniently.
type TileLine struct {
	Category  string         `json:"category"`
	Group     string         `json:"group"`
	Size      string         `json:"size"`
	Sqm       pricing.Number `json:"sqm"`
	Cartons   pricing.Number `json:"cartons"`
	UnitPrice pricing.Number `json:"unit_price"`
	Basis     string         `json:"basis"`
}

// Draft is the interpreter payload.
type Draft struct {
	Title            string                     `json:"title"`
	ClientName       string                     `json:"client_name"`
	Tiles            []TileLine                 `json:"tiles"`
	Materials        []pricing.MaterialLineItem `json:"materials"`
	Adjustments      []pricing.Adjustment       `json:"adjustments"`
	Checklist        []string                   `json:"checklist"`
	Terms            string                     `json:"terms"`
	ProfitPercentage *pricing.Number            `json:"profit_percentage"`
	Maintenance      pricing.Number             `json:"maintenance"`
}

// DrivingBasis returns the driving field the line declares. Without a declaration the
// area wins when positive, then the carton count.
func (l TileLine) DrivingBasis() pricing.Basis {
	switch strings.ToLower(strings.TrimSpace(l.Basis)) {
	case "area", "sqm", "m2":
		return pricing.BasisArea
	case "cartons", "carton", "boxes":
		return pricing.BasisCartons
	case "none":
		return pricing.BasisUnspecified
	}
	switch {
	case l.Sqm.Float64() > 0:
		return pricing.BasisArea
	case l.Cartons.Float64() > 0:
		return pricing.BasisCartons
	default:
		return pricing.BasisUnspecified
	}
}

// Document converts the draft into an unprepared document plus the quantity
// that drives each tile line. Interpreter prices count as explicit.
func (d Draft) Document() (pricing.QuotationDocument, []pricing.Quantity) {
	doc := pricing.QuotationDocument{
		Tiles:            make([]pricing.TileLineItem, 0, len(d.Tiles)),
		Materials:        nonBlankMaterials(d.Materials),
		Adjustments:      nonBlankAdjustments(d.Adjustments),
		Maintenance:      d.Maintenance,
		ProfitPercentage: d.ProfitPercentage,
	}
	quantities := make([]pricing.Quantity, 0, len(d.Tiles))
	for _, line := range d.Tiles {
		if strings.TrimSpace(line.Category) == "" && strings.TrimSpace(line.Size) == "" {
			continue
		}
		item := pricing.TileLineItem{
			Category:  strings.TrimSpace(line.Category),
			Group:     strings.TrimSpace(line.Group),
			Size:      strings.TrimSpace(line.Size),
			Sqm:       line.Sqm,
			Cartons:   line.Cartons,
			UnitPrice: line.UnitPrice,
			Basis:     line.DrivingBasis(),
		}
		doc.Tiles = append(doc.Tiles, item)
		quantities = append(quantities, item.Quantity())
	}
	return doc, quantities
}

func nonBlankMaterials(in []pricing.MaterialLineItem) []pricing.MaterialLineItem {
	out := make([]pricing.MaterialLineItem, 0, len(in))
	for _, m := range in {
		if strings.TrimSpace(m.Item) == "" {
			continue
		}
		out = append(out, m)
	}
	return out
}

func nonBlankAdjustments(in []pricing.Adjustment) []pricing.Adjustment {
	out := make([]pricing.Adjustment, 0, len(in))
	for _, a := range in {
		if strings.TrimSpace(a.Description) == "" && a.Amount.Float64() == 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}
