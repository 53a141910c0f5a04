package pricing

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Number is a float64 that tolerates untrusted JSON. Values that cannot be read as a
// finite number decode to zero instead of failing the surrounding payload.
type Number float64

// Float64 returns the value with NaN and infinities collapsed to zero.
func (n Number) Float64() float64 {
	return finite(float64(n))
}

// MarshalJSON always emits a finite number.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Float64())
}

// UnmarshalJSON accepts numbers, numeric strings ("5,600", "₦5600", "NGN 5600") and null.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	*n = Number(Coerce(raw))
	return nil
}

// NumberPtr returns a pointer to v, for the optional document percentages.
func NumberPtr(v float64) *Number {
	n := Number(v)
	return &n
}

// Coerce converts an arbitrary decoded value into a finite float64, defaulting to 0.
func Coerce(v any) float64 {
	switch t := v.(type) {
	case nil, bool:
		return 0
	case string:
		v = cleanNumeric(t)
	case Number:
		return t.Float64()
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return finite(f)
}

func cleanNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "₦", "", " ", "", "_", "").Replace(s)
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "NGN"):
		s = s[3:]
	case len(s) > 1 && (s[0] == 'N' || s[0] == 'n') && (s[1] >= '0' && s[1] <= '9' || s[1] == '.'):
		s = s[1:]
	}
	return s
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	v = finite(v)
	if v < 0 {
		return 0
	}
	return v
}
