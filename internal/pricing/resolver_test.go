package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, mutate func(*Profile)) *Resolver {
	t.Helper()
	p := DefaultProfile()
	if mutate != nil {
		mutate(&p)
	}
	r, err := NewResolver(p)
	require.NoError(t, err)
	return r
}

func TestResolveExplicitPriceWins(t *testing.T) {
	r := newTestResolver(t, func(p *Profile) {
		p.SizePriceRules = []SizePriceRule{{Size: "60x60", Price: 6500}}
	})
	res := r.Resolve(TileLineItem{Category: "Sitting Room", Size: "60x60", UnitPrice: 9999})
	assert.Equal(t, 9999.0, res.UnitPrice)
	assert.Equal(t, PriceSourceUser, res.Source)
	assert.Equal(t, 1.44, res.CoverageRate)

	res = r.Resolve(TileLineItem{Category: "Sitting Room", Size: "60x60", UnitPrice: 9999, PriceSource: PriceSourceUser})
	assert.Equal(t, 9999.0, res.UnitPrice)
}

func TestResolveDerivedPriceIsReResolved(t *testing.T) {
	r := newTestResolver(t, nil)
	res := r.Resolve(TileLineItem{Category: "Kitchen Wall", UnitPrice: 6800, PriceSource: PriceSourceCategory})
	assert.Equal(t, 5600.0, res.UnitPrice)
	assert.Equal(t, PriceSourceCategory, res.Source)
}

func TestResolveSizeRuleFirstMatchInOrder(t *testing.T) {
	r := newTestResolver(t, func(p *Profile) {
		p.SizePriceRules = []SizePriceRule{
			{Size: "60 by 60", Price: 6500},
			{Size: "60x60", Price: 7100},
		}
	})
	res := r.Resolve(TileLineItem{Category: "Kitchen Wall", Size: "60X60"})
	assert.Equal(t, 6500.0, res.UnitPrice)
	assert.Equal(t, PriceSourceSizeRule, res.Source)
	assert.Equal(t, 1.5, res.CoverageRate, "coverage follows the category bucket")
	assert.Equal(t, CategoryKitchenWall, res.Category)
}

func TestResolveCategoryDefault(t *testing.T) {
	r := newTestResolver(t, nil)
	res := r.Resolve(TileLineItem{Category: "Toilet Floor", Size: "25x40"})
	assert.Equal(t, 5000.0, res.UnitPrice)
	assert.Equal(t, PriceSourceCategory, res.Source)
	assert.Equal(t, TileTypeFloor, res.TileType)
}

func TestResolveFallback(t *testing.T) {
	r := newTestResolver(t, nil)
	for _, category := range []string{"Unrecognized Blob", "", "   \t"} {
		res := r.Resolve(TileLineItem{Category: category})
		assert.Equal(t, 6000.0, res.UnitPrice, category)
		assert.Equal(t, 1.44, res.CoverageRate, category)
		assert.Equal(t, PriceSourceFallback, res.Source, category)
		assert.Equal(t, TileTypeUnknown, res.TileType, category)
	}
}

func TestResolveIgnoresMalformedExplicitPrice(t *testing.T) {
	r := newTestResolver(t, nil)
	res := r.Resolve(TileLineItem{Category: "Bedroom", UnitPrice: -20})
	assert.Equal(t, 6500.0, res.UnitPrice)
	assert.Equal(t, PriceSourceCategory, res.Source)
}
