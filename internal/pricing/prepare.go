package pricing

import "strings"

// PrepareLine resolves the price and coverage rate for item and reconciles its
// quantities from q. The input item is left untouched.
func PrepareLine(item TileLineItem, q Quantity, resolver *Resolver) TileLineItem {
	res := resolver.Resolve(item)
	out := item
	if strings.TrimSpace(out.Group) == "" {
		out.Group = DefaultGroup
	}
	if out.TileType == "" || out.TileType == TileTypeUnknown {
		out.TileType = res.TileType
	}
	out.UnitPrice = Number(res.UnitPrice)
	out.PriceSource = res.Source
	rec := Reconcile(q, res.CoverageRate)
	out.Sqm = Number(rec.Sqm)
	out.Cartons = Number(rec.Cartons)
	out.Basis = q.Basis()
	return out
}

// PrepareDocument prepares every tile line. quantities[i] drives line i; lines
// without an entry reuse the basis recorded on the line.
func PrepareDocument(doc QuotationDocument, quantities []Quantity, resolver *Resolver) QuotationDocument {
	out := doc.Clone()
	for i, tile := range out.Tiles {
		q := tile.Quantity()
		if i < len(quantities) {
			q = quantities[i]
		}
		out.Tiles[i] = PrepareLine(tile, q, resolver)
	}
	return out
}

// ToggleWastage applies or removes the profile's wastage factor on one line and
// re-derives its cartons. The returned line is area-driven.
func ToggleWastage(item TileLineItem, direction WastageDirection, resolver *Resolver) (TileLineItem, error) {
	res := resolver.Resolve(item)
	rec, err := ApplyWastage(item.Sqm.Float64(), resolver.profile.WastageFactor, direction, res.CoverageRate)
	if err != nil {
		return item, err
	}
	out := item
	out.Sqm = Number(rec.Sqm)
	out.Cartons = Number(rec.Cartons)
	out.Basis = BasisArea
	out.WastageApplied = direction == WastageAdd
	return out, nil
}
