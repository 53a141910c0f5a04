package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioKitchenWallFromArea(t *testing.T) {
	r := newTestResolver(t, func(p *Profile) {
		p.CategoryCoverageRate[CategoryKitchenWall] = 1.5
		p.CategoryUnitPrice[CategoryKitchenWall] = 5600
	})
	line := PrepareLine(TileLineItem{Category: "Kitchen Wall", Sqm: 95}, FromArea(95), r)

	assert.Equal(t, 5600.0, line.UnitPrice.Float64())
	assert.Equal(t, PriceSourceCategory, line.PriceSource)
	assert.Equal(t, 64, line.CartonCount())
	assert.Equal(t, 95.0, line.Sqm.Float64())
	assert.Equal(t, DefaultGroup, line.Group)
	assert.Equal(t, TileTypeWall, line.TileType)
	assert.Equal(t, 358400.0, LineCost(float64(line.CartonCount()), line.UnitPrice.Float64()))
}

func TestScenarioUnknownCategoryFallsBack(t *testing.T) {
	r := newTestResolver(t, nil)
	var line TileLineItem
	require.NotPanics(t, func() {
		line = PrepareLine(TileLineItem{Category: "Unrecognized Blob", Sqm: 10}, FromArea(10), r)
	})
	assert.Equal(t, PriceSourceFallback, line.PriceSource)
	assert.Equal(t, 6000.0, line.UnitPrice.Float64())
	assert.Equal(t, 7, line.CartonCount())
}

func TestScenarioSizeRuleWithoutQuantity(t *testing.T) {
	r := newTestResolver(t, func(p *Profile) {
		p.SizePriceRules = []SizePriceRule{{Size: "60x60", Price: 6500}}
		p.CategoryUnitPrice[CategorySittingRoom] = 6800
	})
	line := PrepareLine(TileLineItem{Category: "Sitting Room", Size: "60x60"}, Unspecified(), r)
	assert.Zero(t, line.Sqm.Float64())
	assert.Zero(t, line.CartonCount())
	assert.Equal(t, 6500.0, line.UnitPrice.Float64())
	assert.Zero(t, LineCost(float64(line.CartonCount()), line.UnitPrice.Float64()))
}

func TestScenarioExplicitPriceSurvivesSizeRule(t *testing.T) {
	r := newTestResolver(t, func(p *Profile) {
		p.SizePriceRules = []SizePriceRule{{Size: "60x60", Price: 6500}}
	})
	line := PrepareLine(TileLineItem{Category: "Sitting Room", Size: "60x60", UnitPrice: 9999}, FromCartons(3), r)
	assert.Equal(t, 9999.0, line.UnitPrice.Float64())
	assert.Equal(t, PriceSourceUser, line.PriceSource)

	again := PrepareLine(line, FromCartons(4), r)
	assert.Equal(t, 9999.0, again.UnitPrice.Float64())
}

func TestScenarioTaxToggle(t *testing.T) {
	doc := QuotationDocument{
		Tiles:   []TileLineItem{{Category: "Bedroom", Sqm: 14, Cartons: 10, UnitPrice: 10000}},
		ShowTax: Bool(false),
	}
	profile := DefaultProfile()
	profile.TaxPercentage = 7.5

	hidden := Aggregate(doc, profile)
	assert.Equal(t, 100000.0, hidden.PostAdjustmentSubtotal)
	assert.Zero(t, hidden.TaxAmount)
	assert.Equal(t, 100000.0, hidden.GrandTotal)

	doc.ShowTax = Bool(true)
	shown := Aggregate(doc, profile)
	assert.Equal(t, 7500.0, shown.TaxAmount)
	assert.Equal(t, 107500.0, shown.GrandTotal)
}

func TestScenarioSignedAdjustments(t *testing.T) {
	doc := QuotationDocument{
		Tiles: []TileLineItem{{Category: "Bedroom", Sqm: 14, Cartons: 10, UnitPrice: 10000}},
		Adjustments: []Adjustment{
			{Description: "Discount", Amount: -5000},
			{Description: "Extra Prep", Amount: 2000},
		},
	}
	s := Aggregate(doc, DefaultProfile())
	assert.Equal(t, 100000.0, s.Subtotal)
	assert.Equal(t, -3000.0, s.TotalAdjustments)
	assert.Equal(t, 97000.0, s.PostAdjustmentSubtotal)
}

func TestPrepareDocumentUsesDeclaredQuantities(t *testing.T) {
	r := newTestResolver(t, nil)
	doc := QuotationDocument{Tiles: []TileLineItem{
		{Category: "Kitchen Wall", Sqm: 95, Cartons: 12},
		{Category: "Bedroom", Sqm: 3, Cartons: 10},
		{Category: "Toilet floor", Sqm: 7.2, Basis: BasisArea},
	}}
	out := PrepareDocument(doc, []Quantity{FromArea(95), FromCartons(10)}, r)

	assert.Equal(t, 64, out.Tiles[0].CartonCount(), "stale cartons discarded")
	assert.Equal(t, 14.4, out.Tiles[1].Sqm.Float64())
	assert.Equal(t, 5, out.Tiles[2].CartonCount())
	assert.Equal(t, 12.0, doc.Tiles[0].Cartons.Float64(), "input document untouched")
}
