// Package export renders priced quotation documents as CSV, XLSX, HTML and
// PDF. Every summary figure comes from the TotalsSummary handed in; nothing
// here recomputes totals.
package export

import (
	"strings"
	"time"

	"github.com/tilequote/tilequote/internal/pricing"
	"github.com/tilequote/tilequote/internal/settings"
)

// QuotePayload is everything a renderer needs for one document.
type QuotePayload struct {
	Number     string
	Kind       string
	Title      string
	ClientName string
	Date       time.Time
	Business   settings.BusinessDetails
	Document   pricing.QuotationDocument
	Totals     pricing.TotalsSummary
	Checklist  []string
	Terms      string
}

// Heading returns the document label printed at the top.
func (p QuotePayload) Heading() string {
	if strings.EqualFold(p.Kind, "invoice") {
		return "INVOICE"
	}
	return "QUOTATION"
}

type tileRow struct {
	Group     string
	Category  string
	Size      string
	Sqm       float64
	Cartons   int
	UnitPrice float64
	Cost      float64
}

type materialRow struct {
	Item      string
	Quantity  float64
	Unit      string
	UnitPrice float64
	Cost      float64
}

type summaryRow struct {
	Label  string
	Amount float64
	Area   bool
	Strong bool
}

func tileRows(doc pricing.QuotationDocument) []tileRow {
	rows := make([]tileRow, 0, len(doc.Tiles))
	for _, t := range doc.Tiles {
		rows = append(rows, tileRow{
			Group:     t.GroupName(),
			Category:  t.Category,
			Size:      t.Size,
			Sqm:       t.Sqm.Float64(),
			Cartons:   t.CartonCount(),
			UnitPrice: t.UnitPrice.Float64(),
			Cost:      pricing.LineCost(float64(t.CartonCount()), t.UnitPrice.Float64()),
		})
	}
	return rows
}

func materialRows(doc pricing.QuotationDocument) []materialRow {
	if !doc.MaterialsVisible() {
		return nil
	}
	rows := make([]materialRow, 0, len(doc.Materials))
	for _, m := range doc.Materials {
		rows = append(rows, materialRow{
			Item:      m.Item,
			Quantity:  m.Quantity.Float64(),
			Unit:      m.Unit,
			UnitPrice: m.UnitPrice.Float64(),
			Cost:      pricing.LineCost(m.Quantity.Float64(), m.UnitPrice.Float64()),
		})
	}
	return rows
}

func adjustments(doc pricing.QuotationDocument) []pricing.Adjustment {
	if !doc.AdjustmentsVisible() {
		return nil
	}
	return doc.Adjustments
}

// summaryRows lists the printed summary in order. Hidden sections drop their
// rows; with the cost summary hidden only the payable figures remain.
func summaryRows(doc pricing.QuotationDocument, t pricing.TotalsSummary) []summaryRow {
	payable := []summaryRow{
		{Label: "Grand Total", Amount: t.GrandTotal, Strong: true},
		{Label: "Deposit", Amount: t.DepositAmount},
		{Label: "Balance Due", Amount: t.BalanceDue, Strong: true},
	}
	if !doc.CostSummaryVisible() {
		return payable
	}
	rows := []summaryRow{
		{Label: "Total Area (m²)", Amount: t.TotalSqm, Area: true},
		{Label: "Tiles", Amount: t.TotalTileCost},
	}
	if doc.MaterialsVisible() {
		rows = append(rows, summaryRow{Label: "Materials", Amount: t.TotalMaterialCost})
	}
	if doc.WorkmanshipVisible() {
		rows = append(rows, summaryRow{Label: "Workmanship", Amount: t.WorkmanshipCost})
	}
	if doc.MaintenanceVisible() {
		rows = append(rows, summaryRow{Label: "Maintenance", Amount: t.MaintenanceCost})
	}
	if t.ProfitAmount != 0 {
		rows = append(rows, summaryRow{Label: "Profit", Amount: t.ProfitAmount})
	}
	rows = append(rows, summaryRow{Label: "Subtotal", Amount: t.Subtotal})
	if doc.AdjustmentsVisible() && t.TotalAdjustments != 0 {
		rows = append(rows,
			summaryRow{Label: "Adjustments", Amount: t.TotalAdjustments},
			summaryRow{Label: "Subtotal after adjustments", Amount: t.PostAdjustmentSubtotal},
		)
	}
	if doc.TaxVisible() {
		rows = append(rows, summaryRow{Label: "Tax", Amount: t.TaxAmount})
	}
	return append(rows, payable...)
}
