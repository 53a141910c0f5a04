package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// WastageDirection selects net-to-gross or gross-to-net conversion.
type WastageDirection string

const (
	WastageAdd    WastageDirection = "add"
	WastageRemove WastageDirection = "remove"
)

// ErrInvalidWastage is returned for an unknown direction or a non-positive factor.
var ErrInvalidWastage = errors.New("pricing: invalid wastage request")

// ApplyWastage converts sqm by factor in the given direction, rounds the new area to
// two decimals and re-derives cartons from it. Add followed by remove returns the
// original area to within 0.01 m².
func ApplyWastage(sqm, factor float64, direction WastageDirection, coverageRate float64) (Reconciled, error) {
	f := finite(factor)
	if f <= 0 {
		return Reconciled{}, fmt.Errorf("%w: factor %v", ErrInvalidWastage, factor)
	}
	base := decimal.NewFromFloat(nonNegative(sqm))
	var next decimal.Decimal
	switch direction {
	case WastageAdd:
		next = base.Mul(decimal.NewFromFloat(f))
	case WastageRemove:
		next = base.DivRound(decimal.NewFromFloat(f), 12)
	default:
		return Reconciled{}, fmt.Errorf("%w: direction %q", ErrInvalidWastage, direction)
	}
	return Reconcile(FromArea(next.Round(2).InexactFloat64()), coverageRate), nil
}
