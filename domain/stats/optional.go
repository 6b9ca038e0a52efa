package stats

import (
	"bytes"
	"encoding/json"
	"math"
)

// Optional is a float64 that may be explicitly undefined. It is how every
// result type reports "no value" (n < 2 variance, zero-divisor ratios,
// constant-column correlations) instead of leaking NaN or Inf.
//
// The zero value is undefined.
type Optional struct {
	value   float64
	defined bool
}

// Value wraps v; NaN and ±Inf become undefined.
func Value(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{value: v, defined: true}
}

// Undefined returns the explicit undefined marker.
func Undefined() Optional {
	return Optional{}
}

// Defined reports whether the value is set.
func (o Optional) Defined() bool { return o.defined }

// Float returns the value and whether it is defined.
func (o Optional) Float() (float64, bool) { return o.value, o.defined }

// OrNaN returns the value, or NaN when undefined. Only for handing data to
// plotting code that understands NaN.
func (o Optional) OrNaN() float64 {
	if !o.defined {
		return math.NaN()
	}
	return o.value
}

// Or returns the value, or fallback when undefined.
func (o Optional) Or(fallback float64) float64 {
	if !o.defined {
		return fallback
	}
	return o.value
}

// MarshalJSON encodes undefined as null.
func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.defined {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON accepts null or a number.
func (o *Optional) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Value(v)
	return nil
}
