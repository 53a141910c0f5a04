package pricing

// PriceSource records where a line's unit price came from.
type PriceSource string

const (
	PriceSourceUser     PriceSource = "user"
	PriceSourceSizeRule PriceSource = "size_rule"
	PriceSourceCategory PriceSource = "category"
	PriceSourceFallback PriceSource = "fallback"
)

// Derived reports whether the price was produced by a resolver and may be re-resolved.
func (s PriceSource) Derived() bool {
	switch s {
	case PriceSourceSizeRule, PriceSourceCategory, PriceSourceFallback:
		return true
	default:
		return false
	}
}

// Resolution is the price and coverage rate chosen for a tile line.
type Resolution struct {
	UnitPrice    float64     `json:"unit_price"`
	CoverageRate float64     `json:"coverage_rate"`
	Category     Category    `json:"category"`
	TileType     TileType    `json:"tile_type"`
	Source       PriceSource `json:"source"`
}

type priceRule struct {
	source PriceSource
	price  func(item TileLineItem, bucket CategoryRule, matched bool) (float64, bool)
}

// Resolver applies the price precedence chain against an immutable profile snapshot.
type Resolver struct {
	profile Profile
	chain   []priceRule
}

// NewResolver validates profile and returns a resolver bound to a copy of it.
func NewResolver(profile Profile) (*Resolver, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{profile: profile.Clone()}
	r.chain = []priceRule{
		{source: PriceSourceUser, price: r.explicitPrice},
		{source: PriceSourceSizeRule, price: r.sizePrice},
		{source: PriceSourceCategory, price: r.categoryPrice},
		{source: PriceSourceFallback, price: r.fallbackPrice},
	}
	return r, nil
}

// Profile returns a copy of the snapshot the resolver was built from.
func (r *Resolver) Profile() Profile {
	return r.profile.Clone()
}

// Resolve picks the unit price (first matching rule wins) and the coverage rate.
// The coverage rate always follows the category bucket, never a size rule.
func (r *Resolver) Resolve(item TileLineItem) Resolution {
	bucket, matched := Classify(item.Category)
	res := Resolution{
		CoverageRate: r.profile.CoverageRate(bucket.Category),
		Category:     bucket.Category,
		TileType:     bucket.TileType,
	}
	for _, rule := range r.chain {
		if price, ok := rule.price(item, bucket, matched); ok {
			res.UnitPrice = price
			res.Source = rule.source
			break
		}
	}
	return res
}

func (r *Resolver) explicitPrice(item TileLineItem, _ CategoryRule, _ bool) (float64, bool) {
	price := item.UnitPrice.Float64()
	if price <= 0 || item.PriceSource.Derived() {
		return 0, false
	}
	return price, true
}

func (r *Resolver) sizePrice(item TileLineItem, _ CategoryRule, _ bool) (float64, bool) {
	size := NormalizeSize(item.Size)
	if size == "" {
		return 0, false
	}
	for _, rule := range r.profile.SizePriceRules {
		if NormalizeSize(rule.Size) == size {
			return rule.Price, true
		}
	}
	return 0, false
}

func (r *Resolver) categoryPrice(_ TileLineItem, bucket CategoryRule, matched bool) (float64, bool) {
	if !matched {
		return 0, false
	}
	return r.profile.CategoryUnitPrice[bucket.Category], true
}

func (r *Resolver) fallbackPrice(TileLineItem, CategoryRule, bool) (float64, bool) {
	return r.profile.CategoryUnitPrice[CategoryGeneralFloor], true
}
