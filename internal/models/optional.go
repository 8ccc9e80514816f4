package models

import "math"

// Optional carries a numeric value that may be absent, such as a nullable
// simulator setting or a statistic computed over an empty sample.
type Optional struct {
	Value float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// None returns the absent value.
func None() Optional {
	return Optional{}
}

// OptionalFrom converts a nullable JSON number.
func OptionalFrom(p *float64) Optional {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Or returns the value, or fallback when absent.
func (o Optional) Or(fallback float64) float64 {
	if !o.Valid {
		return fallback
	}
	return o.Value
}

// Equal compares two optionals, treating NaN values as equal to each other.
func (o Optional) Equal(other Optional) bool {
	if o.Valid != other.Valid {
		return false
	}
	if !o.Valid {
		return true
	}
	if math.IsNaN(o.Value) && math.IsNaN(other.Value) {
		return true
	}
	return o.Value == other.Value
}
