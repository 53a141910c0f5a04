package pricing

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshalTolerant(t *testing.T) {
	cases := map[string]float64{
		`5600`:        5600,
		`"5,600"`:     5600,
		`"₦5,600.50"`: 5600.5,
		`"NGN 1200"`:  1200,
		`"N3500"`:     3500,
		`"abc"`:       0,
		`null`:        0,
		`true`:        0,
		`{"a":1}`:     0,
		`[1,2]`:       0,
		`"NaN"`:       0,
		`"-250"`:      -250,
		`" 12.75 "`:   12.75,
	}
	for raw, want := range cases {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(raw), &n), raw)
		assert.Equal(t, want, n.Float64(), raw)
	}
}

func TestNumberInsideStruct(t *testing.T) {
	var line TileLineItem
	err := json.Unmarshal([]byte(`{"category":"Kitchen Wall","sqm":"12.5","cartons":null,"unit_price":"abc"}`), &line)
	require.NoError(t, err)
	assert.Equal(t, 12.5, line.Sqm.Float64())
	assert.Zero(t, line.Cartons.Float64())
	assert.Zero(t, line.UnitPrice.Float64())
}

func TestNumberMarshalIsFinite(t *testing.T) {
	out, err := json.Marshal(struct {
		V Number `json:"v"`
	}{V: Number(math.Inf(1))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":0}`, string(out))
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 3.0, Coerce(3))
	assert.Equal(t, 2.5, Coerce("2.5"))
	assert.Zero(t, Coerce(math.NaN()))
	assert.Zero(t, Coerce(struct{}{}))
	assert.Equal(t, 4.0, Coerce(Number(4)))
}
