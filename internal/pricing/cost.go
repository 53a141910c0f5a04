package pricing

// LineCost is cartons × unit price for tiles and quantity × unit price for
// materials. Malformed or negative inputs contribute zero; nothing is rounded here.
func LineCost(quantity, unitPrice float64) float64 {
	return finite(nonNegative(quantity) * nonNegative(unitPrice))
}
