package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Basis names the measurement a caller declares authoritative for a line.
type Basis string

const (
	BasisUnspecified Basis = ""
	BasisArea        Basis = "area"
	BasisCartons     Basis = "cartons"
)

// MaxQuantity caps both the area and the carton count of a single line. Larger
// inputs saturate here so derived carton counts always fit an int32.
const MaxQuantity = 1_000_000

const maxDerivedCartons = math.MaxInt32

// Quantity is the tagged input of a reconciliation: exactly one of area or cartons
// drives the result, or neither.
type Quantity struct {
	basis   Basis
	sqm     float64
	cartons int
}

// FromArea declares sqm as the driving field.
func FromArea(sqm float64) Quantity {
	return Quantity{basis: BasisArea, sqm: math.Min(nonNegative(sqm), MaxQuantity)}
}

// FromCartons declares the carton count as the driving field.
func FromCartons(cartons int) Quantity {
	return Quantity{basis: BasisCartons, cartons: min(max(cartons, 0), MaxQuantity)}
}

// Unspecified declares that no quantity was given.
func Unspecified() Quantity {
	return Quantity{}
}

// QuantityFor builds a Quantity from an untagged pair using an explicit basis.
func QuantityFor(basis Basis, sqm float64, cartons int) Quantity {
	switch basis {
	case BasisArea:
		return FromArea(sqm)
	case BasisCartons:
		return FromCartons(cartons)
	default:
		return Unspecified()
	}
}

// Basis reports which field drives q.
func (q Quantity) Basis() Basis {
	return q.basis
}

// Reconciled is the area and carton count after reconciliation.
type Reconciled struct {
	Sqm     float64 `json:"sqm"`
	Cartons int     `json:"cartons"`
}

// Reconcile derives the missing quantity from the driving one. Cartons are always
// rounded up; an area derived from cartons is truncated to two decimals so that it
// never claims more than the cartons cover.
func Reconcile(q Quantity, coverageRate float64) Reconciled {
	rate := finite(coverageRate)
	if rate <= 0 {
		return Reconciled{}
	}
	switch q.basis {
	case BasisArea:
		return Reconciled{Sqm: q.sqm, Cartons: cartonsFor(q.sqm, rate)}
	case BasisCartons:
		return Reconciled{Sqm: areaFor(q.cartons, rate), Cartons: q.cartons}
	default:
		return Reconciled{}
	}
}

func cartonsFor(sqm, rate float64) int {
	if sqm <= 0 {
		return 0
	}
	quotient := decimal.NewFromFloat(sqm).DivRound(decimal.NewFromFloat(rate), 12).Ceil()
	if quotient.GreaterThan(decimal.NewFromInt(maxDerivedCartons)) {
		return maxDerivedCartons
	}
	return int(quotient.IntPart())
}

func areaFor(cartons int, rate float64) float64 {
	if cartons <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(cartons)).Mul(decimal.NewFromFloat(rate)).Truncate(2).InexactFloat64()
}

// Round2 rounds half away from zero to two decimals. Presentation helpers use it;
// the totals pipeline does not.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(finite(v)).Round(2).InexactFloat64()
}

func lineArea(v float64) float64 {
	return math.Min(nonNegative(v), MaxQuantity)
}

func cartonCount(v float64) int {
	v = nonNegative(v)
	if v == 0 {
		return 0
	}
	if v >= MaxQuantity {
		return MaxQuantity
	}
	return int(math.Ceil(decimal.NewFromFloat(v).Round(6).InexactFloat64()))
}
