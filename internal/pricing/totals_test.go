package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() QuotationDocument {
	return QuotationDocument{
		Tiles: []TileLineItem{
			{Category: "Sitting Room", Sqm: 40, Cartons: 28, UnitPrice: 6800},
			{Category: "Kitchen Wall", Sqm: 12, Cartons: 8, UnitPrice: 5600},
		},
		Materials: []MaterialLineItem{
			{Item: "Cement", Quantity: 10, Unit: "bags", UnitPrice: 9500},
			{Item: "Tile gum", Quantity: 4, Unit: "bags", UnitPrice: 7000},
		},
		Adjustments: []Adjustment{
			{Description: "Discount", Amount: -5000},
			{Description: "Transport", Amount: 8000},
		},
		WorkmanshipRate:   1500,
		Maintenance:       10000,
		ProfitPercentage:  NumberPtr(10),
		DepositPercentage: NumberPtr(70),
		ShowTax:           Bool(true),
	}
}

func TestAggregatePipeline(t *testing.T) {
	profile := DefaultProfile()
	s := Aggregate(sampleDocument(), profile)

	assert.Equal(t, 52.0, s.TotalSqm)
	assert.Equal(t, 28*6800.0+8*5600.0, s.TotalTileCost)
	assert.Equal(t, 10*9500.0+4*7000.0, s.TotalMaterialCost)
	assert.Equal(t, 52*1500.0, s.WorkmanshipCost)
	assert.Equal(t, 10000.0, s.MaintenanceCost)

	preProfit := s.TotalTileCost + s.TotalMaterialCost + s.WorkmanshipCost + s.MaintenanceCost
	assert.InDelta(t, preProfit*0.10, s.ProfitAmount, 1e-6)
	assert.InDelta(t, preProfit*1.10, s.Subtotal, 1e-6)
	assert.Equal(t, 3000.0, s.TotalAdjustments)
	assert.InDelta(t, s.Subtotal+3000, s.PostAdjustmentSubtotal, 1e-6)
	assert.InDelta(t, s.PostAdjustmentSubtotal*0.075, s.TaxAmount, 1e-6)
	assert.InDelta(t, s.PostAdjustmentSubtotal+s.TaxAmount, s.GrandTotal, 1e-6)
	assert.InDelta(t, s.GrandTotal*0.70, s.DepositAmount, 1e-6)
	assert.InDelta(t, s.GrandTotal-s.DepositAmount, s.BalanceDue, 1e-6)
}

func TestAggregateIsDeterministic(t *testing.T) {
	doc := sampleDocument()
	profile := DefaultProfile()
	assert.Equal(t, Aggregate(doc, profile), Aggregate(doc, profile))
}

func TestAggregateDoesNotMutateDocument(t *testing.T) {
	doc := sampleDocument()
	before, err := json.Marshal(doc)
	require.NoError(t, err)
	_ = Aggregate(doc, DefaultProfile())
	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestAggregateVisibilityZeroing(t *testing.T) {
	profile := DefaultProfile()
	base := sampleDocument()
	original := Aggregate(base, profile)

	toggles := []struct {
		name  string
		set   func(*QuotationDocument, *bool)
		field func(TotalsSummary) float64
	}{
		{"materials", func(d *QuotationDocument, v *bool) { d.ShowMaterials = v }, func(s TotalsSummary) float64 { return s.TotalMaterialCost }},
		{"adjustments", func(d *QuotationDocument, v *bool) { d.ShowAdjustments = v }, func(s TotalsSummary) float64 { return s.TotalAdjustments }},
		{"workmanship", func(d *QuotationDocument, v *bool) { d.ShowWorkmanship = v }, func(s TotalsSummary) float64 { return s.WorkmanshipCost }},
		{"maintenance", func(d *QuotationDocument, v *bool) { d.ShowMaintenance = v }, func(s TotalsSummary) float64 { return s.MaintenanceCost }},
		{"tax", func(d *QuotationDocument, v *bool) { d.ShowTax = v }, func(s TotalsSummary) float64 { return s.TaxAmount }},
	}
	for _, tc := range toggles {
		doc := base.Clone()
		tc.set(&doc, Bool(false))
		hidden := Aggregate(doc, profile)
		assert.Zero(t, tc.field(hidden), tc.name)
		assert.NotEqual(t, original.GrandTotal, hidden.GrandTotal, tc.name)
		assert.Equal(t, 52.0, hidden.TotalSqm, tc.name)

		tc.set(&doc, Bool(true))
		assert.Equal(t, original.GrandTotal, Aggregate(doc, profile).GrandTotal, tc.name)
	}
}

func TestAggregateCostSummaryFlagIsPresentationOnly(t *testing.T) {
	doc := sampleDocument()
	doc.ShowCostSummary = Bool(false)
	assert.Equal(t, Aggregate(sampleDocument(), DefaultProfile()), Aggregate(doc, DefaultProfile()))
	assert.False(t, doc.CostSummaryVisible())
}

func TestAggregateDefaults(t *testing.T) {
	doc := QuotationDocument{
		Tiles:           []TileLineItem{{Category: "Bedroom", Sqm: 10, Cartons: 7, UnitPrice: 1000}},
		WorkmanshipRate: 100,
	}
	s := Aggregate(doc, DefaultProfile())
	assert.Zero(t, s.TaxAmount, "tax hidden by default")
	assert.Zero(t, s.ProfitAmount, "nil profit percentage")
	assert.Zero(t, s.DepositAmount, "nil deposit percentage")
	assert.Equal(t, 8000.0, s.GrandTotal)
	assert.Equal(t, 8000.0, s.BalanceDue)
}

func TestAggregateMalformedInputsDegradeToZero(t *testing.T) {
	var doc QuotationDocument
	payload := `{
		"tiles": [
			{"category": "Kitchen Wall", "sqm": 12, "cartons": 8, "unit_price": "abc"},
			{"category": "Bedroom", "sqm": "x", "cartons": 5},
			{"category": "Sitting Room", "sqm": 10, "cartons": 7, "unit_price": 6800}
		],
		"materials": [{"item": "Grout", "quantity": "lots", "unit_price": 500}],
		"adjustments": [{"description": "Odd", "amount": "??"}],
		"workmanship_rate": "n/a",
		"profit_percentage": "ten",
		"deposit_percentage": null
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &doc))

	s := Aggregate(doc, DefaultProfile())
	assertFinite(t, s)
	assert.Equal(t, 22.0, s.TotalSqm)
	assert.Equal(t, 7*6800.0, s.TotalTileCost)
	assert.Zero(t, s.TotalMaterialCost)
	assert.Zero(t, s.WorkmanshipCost)
	assert.Zero(t, s.TotalAdjustments)
	assert.Equal(t, 7*6800.0, s.GrandTotal)
}

func TestAggregateNonFiniteValues(t *testing.T) {
	doc := QuotationDocument{
		Tiles: []TileLineItem{
			{Category: "Bedroom", Sqm: Number(math.NaN()), Cartons: Number(math.Inf(1)), UnitPrice: 1000},
			{Category: "Bedroom", Sqm: 5, Cartons: 4, UnitPrice: Number(math.Inf(-1))},
		},
		Materials:        []MaterialLineItem{{Item: "x", Quantity: Number(math.MaxFloat64), UnitPrice: Number(math.MaxFloat64)}},
		ProfitPercentage: NumberPtr(math.NaN()),
		ShowTax:          Bool(true),
	}
	profile := DefaultProfile()
	profile.TaxPercentage = math.NaN()
	s := Aggregate(doc, profile)
	assertFinite(t, s)
	assert.Zero(t, s.TotalTileCost)
	assert.Zero(t, s.TotalMaterialCost)
}

func assertFinite(t *testing.T, s TotalsSummary) {
	t.Helper()
	for name, v := range map[string]float64{
		"TotalSqm":               s.TotalSqm,
		"TotalTileCost":          s.TotalTileCost,
		"TotalMaterialCost":      s.TotalMaterialCost,
		"WorkmanshipCost":        s.WorkmanshipCost,
		"MaintenanceCost":        s.MaintenanceCost,
		"ProfitAmount":           s.ProfitAmount,
		"Subtotal":               s.Subtotal,
		"TotalAdjustments":       s.TotalAdjustments,
		"PostAdjustmentSubtotal": s.PostAdjustmentSubtotal,
		"TaxAmount":              s.TaxAmount,
		"GrandTotal":             s.GrandTotal,
		"DepositAmount":          s.DepositAmount,
		"BalanceDue":             s.BalanceDue,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
	}
}

func TestLineCost(t *testing.T) {
	assert.Equal(t, 358400.0, LineCost(64, 5600))
	assert.Equal(t, 0.0, LineCost(-1, 5600))
	assert.Equal(t, 0.0, LineCost(math.NaN(), 5600))
	assert.Equal(t, 0.0, LineCost(math.MaxFloat64, math.MaxFloat64))
	assert.Equal(t, 45.5, LineCost(13, 3.5))
}
