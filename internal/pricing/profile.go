package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Category identifies a pricing bucket.
type Category string

const (
	CategorySittingRoom  Category = "sitting_room"
	CategoryBedroom      Category = "bedroom"
	CategoryToiletWall   Category = "toilet_wall"
	CategoryToiletFloor  Category = "toilet_floor"
	CategoryKitchenWall  Category = "kitchen_wall"
	CategoryKitchenFloor Category = "kitchen_floor"
	CategoryExternalWall Category = "external_wall"
	CategoryStep         Category = "step"
	CategoryGeneralWall  Category = "general_wall"
	CategoryGeneralFloor Category = "general_floor"
)

// MinCoverageRate is the smallest coverage rate a profile may declare. Areas
// derived from cartons keep two decimals, so a carton must cover at least 0.01 m².
const MinCoverageRate = 0.01

// Categories lists every bucket a profile must price.
var Categories = []Category{
	CategorySittingRoom,
	CategoryBedroom,
	CategoryToiletWall,
	CategoryToiletFloor,
	CategoryKitchenWall,
	CategoryKitchenFloor,
	CategoryExternalWall,
	CategoryStep,
	CategoryGeneralWall,
	CategoryGeneralFloor,
}

// SizePriceRule prices a tile size token regardless of category.
type SizePriceRule struct {
	Size  string  `json:"size"`
	Price float64 `json:"price"`
}

// Profile is the read-only rule set a calculation run depends on.
type Profile struct {
	CategoryUnitPrice    map[Category]float64 `json:"category_unit_price"`
	CategoryCoverageRate map[Category]float64 `json:"category_coverage_rate"`
	SizePriceRules       []SizePriceRule      `json:"size_price_rules"`
	WastageFactor        float64              `json:"wastage_factor"`
	TaxPercentage        float64              `json:"tax_percentage"`
	DepositPercentage    float64              `json:"deposit_percentage"`
	WorkmanshipRate      float64              `json:"workmanship_rate"`
	Maintenance          float64              `json:"maintenance"`
}

// ErrInvalidProfile marks configuration errors detected before any calculation.
var ErrInvalidProfile = errors.New("pricing: invalid profile")

// ProfileError lists every problem found in a profile.
type ProfileError struct {
	Problems []string
}

func (e *ProfileError) Error() string {
	return ErrInvalidProfile.Error() + ": " + strings.Join(e.Problems, "; ")
}

func (e *ProfileError) Unwrap() error {
	return ErrInvalidProfile
}

// DefaultProfile returns the stock NGN profile used until settings are saved.
func DefaultProfile() Profile {
	return Profile{
		CategoryUnitPrice: map[Category]float64{
			CategorySittingRoom:  6800,
			CategoryBedroom:      6500,
			CategoryToiletWall:   5200,
			CategoryToiletFloor:  5000,
			CategoryKitchenWall:  5600,
			CategoryKitchenFloor: 5800,
			CategoryExternalWall: 6000,
			CategoryStep:         7000,
			CategoryGeneralWall:  5500,
			CategoryGeneralFloor: 6000,
		},
		CategoryCoverageRate: map[Category]float64{
			CategorySittingRoom:  1.44,
			CategoryBedroom:      1.44,
			CategoryToiletWall:   1.5,
			CategoryToiletFloor:  1.44,
			CategoryKitchenWall:  1.5,
			CategoryKitchenFloor: 1.44,
			CategoryExternalWall: 1.0,
			CategoryStep:         1.2,
			CategoryGeneralWall:  1.5,
			CategoryGeneralFloor: 1.44,
		},
		SizePriceRules: []SizePriceRule{
			{Size: "60x60", Price: 6500},
			{Size: "40x40", Price: 5000},
			{Size: "30x60", Price: 5600},
		},
		WastageFactor:     1.10,
		TaxPercentage:     7.5,
		DepositPercentage: 70,
		WorkmanshipRate:   1500,
	}
}

// Validate reports configuration errors that must stop the engine from running.
func (p Profile) Validate() error {
	var problems []string
	for _, category := range Categories {
		price, ok := p.CategoryUnitPrice[category]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("missing unit price for %s", category))
		case !isFinite(price) || price < 0:
			problems = append(problems, fmt.Sprintf("unit price for %s must be a non-negative number", category))
		}
		rate, ok := p.CategoryCoverageRate[category]
		switch {
		case !ok:
			problems = append(problems, fmt.Sprintf("missing coverage rate for %s", category))
		case !isFinite(rate) || rate < MinCoverageRate:
			problems = append(problems, fmt.Sprintf("coverage rate for %s must be at least %v", category, MinCoverageRate))
		}
	}
	for i, rule := range p.SizePriceRules {
		if NormalizeSize(rule.Size) == "" {
			problems = append(problems, fmt.Sprintf("size rule %d has no size", i+1))
		}
		if !isFinite(rule.Price) || rule.Price < 0 {
			problems = append(problems, fmt.Sprintf("size rule %d price must be a non-negative number", i+1))
		}
	}
	if !isFinite(p.WastageFactor) || p.WastageFactor <= 1 {
		problems = append(problems, "wastage factor must be greater than 1")
	}
	for name, v := range map[string]float64{
		"tax percentage":     p.TaxPercentage,
		"deposit percentage": p.DepositPercentage,
		"workmanship rate":   p.WorkmanshipRate,
		"maintenance":        p.Maintenance,
	} {
		if !isFinite(v) || v < 0 {
			problems = append(problems, name+" must be a non-negative number")
		}
	}
	if p.DepositPercentage > 100 {
		problems = append(problems, "deposit percentage cannot exceed 100")
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return &ProfileError{Problems: problems}
}

// Clone returns a deep copy so callers cannot mutate a resolver's snapshot.
func (p Profile) Clone() Profile {
	out := p
	out.CategoryUnitPrice = make(map[Category]float64, len(p.CategoryUnitPrice))
	for k, v := range p.CategoryUnitPrice {
		out.CategoryUnitPrice[k] = v
	}
	out.CategoryCoverageRate = make(map[Category]float64, len(p.CategoryCoverageRate))
	for k, v := range p.CategoryCoverageRate {
		out.CategoryCoverageRate[k] = v
	}
	out.SizePriceRules = append([]SizePriceRule(nil), p.SizePriceRules...)
	return out
}

// CoverageRate returns the area one carton covers for the bucket.
func (p Profile) CoverageRate(category Category) float64 {
	return p.CategoryCoverageRate[category]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
