package pricing

import "strings"

// TileType is the surface a tile line covers.
type TileType string

const (
	TileTypeWall         TileType = "Wall"
	TileTypeFloor        TileType = "Floor"
	TileTypeExternalWall TileType = "ExternalWall"
	TileTypeStep         TileType = "Step"
	TileTypeUnknown      TileType = "Unknown"
)

// CategoryRule maps free-text categories onto a bucket. A rule matches when every
// keyword group has at least one keyword contained in the normalized category.
type CategoryRule struct {
	Category Category
	Keywords [][]string
	TileType TileType
}

var (
	toiletWords   = []string{"toilet", "bath", "restroom", "washroom", "shower"}
	externalWords = []string{"external", "exterior", "outside", "outdoor", "fence", "facade"}
)

// categoryTable is evaluated top to bottom. Specific rows must stay above generic ones.
var categoryTable = []CategoryRule{
	{Category: CategoryKitchenWall, Keywords: [][]string{{"kitchen"}, {"wall"}}, TileType: TileTypeWall},
	{Category: CategoryKitchenFloor, Keywords: [][]string{{"kitchen"}}, TileType: TileTypeFloor},
	{Category: CategoryToiletWall, Keywords: [][]string{toiletWords, {"wall"}}, TileType: TileTypeWall},
	{Category: CategoryToiletFloor, Keywords: [][]string{toiletWords}, TileType: TileTypeFloor},
	{Category: CategoryExternalWall, Keywords: [][]string{externalWords, {"wall"}}, TileType: TileTypeExternalWall},
	{Category: CategoryStep, Keywords: [][]string{{"step", "stair"}}, TileType: TileTypeStep},
	{Category: CategoryGeneralWall, Keywords: [][]string{{"wall"}}, TileType: TileTypeWall},
	{Category: CategorySittingRoom, Keywords: [][]string{{"sitting", "living", "parlour", "parlor", "lounge"}}, TileType: TileTypeFloor},
	{Category: CategoryBedroom, Keywords: [][]string{{"bedroom", "bed room"}}, TileType: TileTypeFloor},
	{Category: CategoryGeneralFloor, Keywords: [][]string{{"floor"}}, TileType: TileTypeFloor},
}

var fallbackRule = CategoryRule{Category: CategoryGeneralFloor, TileType: TileTypeUnknown}

// Classify returns the first matching rule for category. When nothing matches it
// returns the general floor fallback and false.
func Classify(category string) (CategoryRule, bool) {
	normalized := normalizeCategory(category)
	if normalized == "" {
		return fallbackRule, false
	}
	for _, rule := range categoryTable {
		if rule.matches(normalized) {
			return rule, true
		}
	}
	return fallbackRule, false
}

func (r CategoryRule) matches(normalized string) bool {
	for _, group := range r.Keywords {
		if !containsAny(normalized, group) {
			return false
		}
	}
	return len(r.Keywords) > 0
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func normalizeCategory(category string) string {
	lowered := strings.ToLower(category)
	lowered = strings.NewReplacer("-", " ", "_", " ", "/", " ", ",", " ").Replace(lowered)
	return strings.Join(strings.Fields(lowered), " ")
}
