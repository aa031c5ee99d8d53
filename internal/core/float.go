package core

import (
	"encoding/json"
	"math"
)

// Float is a numeric field that is either known or unavailable.
// The zero value is unavailable.
type Float struct {
	value float64
	known bool
}

// NA is the unavailable Float.
var NA = Float{}

// Known wraps a value. NaN and infinities are treated as unavailable.
func Known(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA
	}
	return Float{value: v, known: true}
}

// Get returns the value and whether it is known.
func (f Float) Get() (float64, bool) {
	return f.value, f.known
}

// IsKnown reports whether the value is available.
func (f Float) IsKnown() bool {
	return f.known
}

// Or returns the value, or def when unavailable.
func (f Float) Or(def float64) float64 {
	if !f.known {
		return def
	}
	return f.value
}

// MarshalJSON encodes unavailable values as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if !f.known {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// UnmarshalJSON decodes null as unavailable.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = NA
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Known(v)
	return nil
}
