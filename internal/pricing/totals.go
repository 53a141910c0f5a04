package pricing

// TotalsSummary is the single output shape every presentation surface consumes.
// It is created fresh on each Aggregate call and never persisted.
type TotalsSummary struct {
	TotalSqm               float64 `json:"total_sqm"`
	TotalTileCost          float64 `json:"total_tile_cost"`
	TotalMaterialCost      float64 `json:"total_material_cost"`
	WorkmanshipCost        float64 `json:"workmanship_cost"`
	MaintenanceCost        float64 `json:"maintenance_cost"`
	ProfitAmount           float64 `json:"profit_amount"`
	Subtotal               float64 `json:"subtotal"`
	TotalAdjustments       float64 `json:"total_adjustments"`
	PostAdjustmentSubtotal float64 `json:"post_adjustment_subtotal"`
	TaxAmount              float64 `json:"tax_amount"`
	GrandTotal             float64 `json:"grand_total"`
	DepositAmount          float64 `json:"deposit_amount"`
	BalanceDue             float64 `json:"balance_due"`
}

// Aggregate computes the totals for doc. It never fails: malformed numbers count as
// zero and hidden components contribute exactly zero.
func Aggregate(doc QuotationDocument, profile Profile) TotalsSummary {
	var s TotalsSummary

	for _, tile := range doc.Tiles {
		s.TotalSqm += lineArea(tile.Sqm.Float64())
		s.TotalTileCost += LineCost(float64(tile.CartonCount()), tile.UnitPrice.Float64())
	}
	s.TotalSqm = finite(s.TotalSqm)
	s.TotalTileCost = finite(s.TotalTileCost)

	if doc.MaterialsVisible() {
		for _, m := range doc.Materials {
			s.TotalMaterialCost += LineCost(m.Quantity.Float64(), m.UnitPrice.Float64())
		}
		s.TotalMaterialCost = finite(s.TotalMaterialCost)
	}

	if doc.WorkmanshipVisible() {
		s.WorkmanshipCost = finite(s.TotalSqm * nonNegative(doc.WorkmanshipRate.Float64()))
	}

	if doc.MaintenanceVisible() {
		s.MaintenanceCost = nonNegative(doc.Maintenance.Float64())
	}

	preProfit := finite(s.TotalTileCost + s.TotalMaterialCost + s.WorkmanshipCost + s.MaintenanceCost)

	if pct := percentage(doc.ProfitPercentage); pct != 0 {
		s.ProfitAmount = finite(preProfit * pct / 100)
	}
	s.Subtotal = finite(preProfit + s.ProfitAmount)

	if doc.AdjustmentsVisible() {
		for _, adj := range doc.Adjustments {
			s.TotalAdjustments += adj.Amount.Float64()
		}
		s.TotalAdjustments = finite(s.TotalAdjustments)
	}
	s.PostAdjustmentSubtotal = finite(s.Subtotal + s.TotalAdjustments)

	if doc.TaxVisible() {
		s.TaxAmount = finite(s.PostAdjustmentSubtotal * finite(profile.TaxPercentage) / 100)
	}
	s.GrandTotal = finite(s.PostAdjustmentSubtotal + s.TaxAmount)

	if pct := percentage(doc.DepositPercentage); pct != 0 {
		s.DepositAmount = finite(s.GrandTotal * pct / 100)
	}
	s.BalanceDue = finite(s.GrandTotal - s.DepositAmount)
	return s
}

func percentage(v *Number) float64 {
	if v == nil {
		return 0
	}
	return v.Float64()
}
