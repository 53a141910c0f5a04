package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		input    string
		want     Category
		tileType TileType
		matched  bool
	}{
		{"Kitchen Wall", CategoryKitchenWall, TileTypeWall, true},
		{"kitchen-wall tiles", CategoryKitchenWall, TileTypeWall, true},
		{"Kitchen Floor", CategoryKitchenFloor, TileTypeFloor, true},
		{"Kitchen", CategoryKitchenFloor, TileTypeFloor, true},
		{"Toilet Wall", CategoryToiletWall, TileTypeWall, true},
		{"Bathroom walls", CategoryToiletWall, TileTypeWall, true},
		{"Toilet floor", CategoryToiletFloor, TileTypeFloor, true},
		{"Guest bathroom", CategoryToiletFloor, TileTypeFloor, true},
		{"External wall", CategoryExternalWall, TileTypeExternalWall, true},
		{"Outside fence wall", CategoryExternalWall, TileTypeExternalWall, true},
		{"Steps", CategoryStep, TileTypeStep, true},
		{"Staircase", CategoryStep, TileTypeStep, true},
		{"Passage wall", CategoryGeneralWall, TileTypeWall, true},
		{"Sitting Room", CategorySittingRoom, TileTypeFloor, true},
		{"living   room", CategorySittingRoom, TileTypeFloor, true},
		{"Master Bedroom", CategoryBedroom, TileTypeFloor, true},
		{"Bed room 2", CategoryBedroom, TileTypeFloor, true},
		{"Corridor floor", CategoryGeneralFloor, TileTypeFloor, true},
		{"Unrecognized Blob", CategoryGeneralFloor, TileTypeUnknown, false},
		{"", CategoryGeneralFloor, TileTypeUnknown, false},
		{"   ", CategoryGeneralFloor, TileTypeUnknown, false},
	}
	for _, tc := range cases {
		rule, matched := Classify(tc.input)
		assert.Equal(t, tc.want, rule.Category, tc.input)
		assert.Equal(t, tc.tileType, rule.TileType, tc.input)
		assert.Equal(t, tc.matched, matched, tc.input)
	}
}

func TestCategoryTableSpecificBeforeGeneric(t *testing.T) {
	index := make(map[Category]int, len(categoryTable))
	for i, rule := range categoryTable {
		index[rule.Category] = i
	}
	assert.Less(t, index[CategoryKitchenWall], index[CategoryKitchenFloor])
	assert.Less(t, index[CategoryKitchenWall], index[CategoryGeneralWall])
	assert.Less(t, index[CategoryToiletWall], index[CategoryToiletFloor])
	assert.Less(t, index[CategoryExternalWall], index[CategoryGeneralWall])
	assert.Less(t, index[CategoryGeneralWall], index[CategoryGeneralFloor])
	assert.Equal(t, len(categoryTable)-1, index[CategoryGeneralFloor])
}

func TestCategoryTableCoversEveryBucket(t *testing.T) {
	seen := map[Category]bool{}
	for _, rule := range categoryTable {
		seen[rule.Category] = true
	}
	for _, c := range Categories {
		assert.True(t, seen[c], c)
	}
}

func TestNormalizeSize(t *testing.T) {
	cases := map[string]string{
		"60x60":      "60x60",
		"60X60":      "60x60",
		" 60 x 60 ":  "60x60",
		"60 by 60":   "60x60",
		"60×60cm":    "60x60",
		"60.0*60":    "60x60",
		"30 x 60 mm": "30x60",
		"":           "",
		"Large Slab": "largeslab",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeSize(in), in)
	}
}
