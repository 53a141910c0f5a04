package pricing

import "strings"

// DefaultGroup is used for tile lines that arrive without a group.
const DefaultGroup = "General"

// TileLineItem is a priced tile row. Basis records the field that last drove
// reconciliation for this line.
type TileLineItem struct {
	Category       string      `json:"category"`
	Group          string      `json:"group"`
	Size           string      `json:"size,omitempty"`
	TileType       TileType    `json:"tile_type,omitempty"`
	Sqm            Number      `json:"sqm"`
	Cartons        Number      `json:"cartons"`
	UnitPrice      Number      `json:"unit_price"`
	PriceSource    PriceSource `json:"price_source,omitempty"`
	Basis          Basis       `json:"basis,omitempty"`
	WastageApplied bool        `json:"wastage_applied,omitempty"`
}

// GroupName returns the line's group or DefaultGroup.
func (t TileLineItem) GroupName() string {
	if g := strings.TrimSpace(t.Group); g != "" {
		return g
	}
	return DefaultGroup
}

// CartonCount returns the whole number of cartons on the line. Fractions round up.
func (t TileLineItem) CartonCount() int {
	return cartonCount(t.Cartons.Float64())
}

// Quantity rebuilds the tagged quantity recorded on the line.
func (t TileLineItem) Quantity() Quantity {
	return QuantityFor(t.Basis, t.Sqm.Float64(), t.CartonCount())
}

// MaterialLineItem is a non-tile row priced as quantity × unit price.
type MaterialLineItem struct {
	Item      string `json:"item"`
	Quantity  Number `json:"quantity"`
	Unit      string `json:"unit"`
	UnitPrice Number `json:"unit_price"`
}

// Adjustment is a signed manual correction: negative for discounts.
type Adjustment struct {
	Description string `json:"description"`
	Amount      Number `json:"amount"`
}

// QuotationDocument is the aggregate the engine reads. The engine never mutates it.
type QuotationDocument struct {
	Tiles             []TileLineItem     `json:"tiles"`
	Materials         []MaterialLineItem `json:"materials"`
	Adjustments       []Adjustment       `json:"adjustments"`
	WorkmanshipRate   Number             `json:"workmanship_rate"`
	Maintenance       Number             `json:"maintenance"`
	ProfitPercentage  *Number            `json:"profit_percentage"`
	DepositPercentage *Number            `json:"deposit_percentage"`

	ShowMaterials   *bool `json:"show_materials,omitempty"`
	ShowAdjustments *bool `json:"show_adjustments,omitempty"`
	ShowWorkmanship *bool `json:"show_workmanship,omitempty"`
	ShowMaintenance *bool `json:"show_maintenance,omitempty"`
	ShowTax         *bool `json:"show_tax,omitempty"`
	ShowCostSummary *bool `json:"show_cost_summary,omitempty"`
}

// Visibility defaults applied when a flag is absent.
const (
	DefaultShowMaterials   = true
	DefaultShowAdjustments = true
	DefaultShowWorkmanship = true
	DefaultShowMaintenance = true
	DefaultShowTax         = false
	DefaultShowCostSummary = true
)

// MaterialsVisible reports whether material lines count toward the totals.
func (d QuotationDocument) MaterialsVisible() bool {
	return flag(d.ShowMaterials, DefaultShowMaterials)
}

// AdjustmentsVisible reports whether adjustments apply to the subtotal.
func (d QuotationDocument) AdjustmentsVisible() bool {
	return flag(d.ShowAdjustments, DefaultShowAdjustments)
}

// WorkmanshipVisible reports whether workmanship is charged.
func (d QuotationDocument) WorkmanshipVisible() bool {
	return flag(d.ShowWorkmanship, DefaultShowWorkmanship)
}

// MaintenanceVisible reports whether maintenance is charged.
func (d QuotationDocument) MaintenanceVisible() bool {
	return flag(d.ShowMaintenance, DefaultShowMaintenance)
}

// TaxVisible reports whether tax is charged. Tax is hidden unless enabled.
func (d QuotationDocument) TaxVisible() bool {
	return flag(d.ShowTax, DefaultShowTax)
}

// CostSummaryVisible only affects presentation; totals are computed either way.
func (d QuotationDocument) CostSummaryVisible() bool {
	return flag(d.ShowCostSummary, DefaultShowCostSummary)
}

// Clone returns a deep copy of d.
func (d QuotationDocument) Clone() QuotationDocument {
	out := d
	out.Tiles = append([]TileLineItem(nil), d.Tiles...)
	out.Materials = append([]MaterialLineItem(nil), d.Materials...)
	out.Adjustments = append([]Adjustment(nil), d.Adjustments...)
	out.ProfitPercentage = cloneNumber(d.ProfitPercentage)
	out.DepositPercentage = cloneNumber(d.DepositPercentage)
	out.ShowMaterials = cloneBool(d.ShowMaterials)
	out.ShowAdjustments = cloneBool(d.ShowAdjustments)
	out.ShowWorkmanship = cloneBool(d.ShowWorkmanship)
	out.ShowMaintenance = cloneBool(d.ShowMaintenance)
	out.ShowTax = cloneBool(d.ShowTax)
	out.ShowCostSummary = cloneBool(d.ShowCostSummary)
	return out
}

// Bool returns a pointer to v for visibility flags.
func Bool(v bool) *bool {
	return &v
}

func flag(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func cloneBool(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneNumber(v *Number) *Number {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
