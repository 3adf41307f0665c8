// Package value defines the typed scalar carried by keyword items. A Value is
// one of Int, Double or String; schemas use it for defaults and the deck uses
// it for parsed slots.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the declared type of an item.
type Type int

const (
	// Invalid is the zero Type. It never appears in a valid schema.
	Invalid Type = iota
	Int
	Double
	String
)

// String returns the lowercase name used in manifests and diagnostics.
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Double:
		return "double"
	case String:
		return "string"
	default:
		return "invalid"
	}
}

// ParseType maps a manifest type name to a Type. Matching ignores case so both
// the HCL style (`int`) and the JSON style (`INT`) are accepted.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return Int, nil
	case "double", "float", "number":
		return Double, nil
	case "string":
		return String, nil
	}
	return Invalid, fmt.Errorf("unknown value type %q", s)
}

// Numeric reports whether values of this type are numbers.
func (t Type) Numeric() bool {
	return t == Int || t == Double
}

// Value is an immutable tagged scalar.
type Value struct {
	typ Type
	i   int64
	d   float64
	s   string
}

func IntVal(i int64) Value      { return Value{typ: Int, i: i} }
func DoubleVal(d float64) Value { return Value{typ: Double, d: d} }
func StringVal(s string) Value  { return Value{typ: String, s: s} }

// Type returns the value's type. The zero Value has type Invalid.
func (v Value) Type() Type { return v.typ }

// IsValid reports whether v holds a value.
func (v Value) IsValid() bool { return v.typ != Invalid }

// Int returns the integer payload. Doubles holding an integral number are
// accepted as well, since record counts are sometimes declared as doubles.
func (v Value) Int() (int64, bool) {
	switch v.typ {
	case Int:
		return v.i, true
	case Double:
		if v.d == math.Trunc(v.d) && !math.IsInf(v.d, 0) {
			return int64(v.d), true
		}
	}
	return 0, false
}

// Double returns the numeric payload as float64.
func (v Value) Double() (float64, bool) {
	switch v.typ {
	case Double:
		return v.d, true
	case Int:
		return float64(v.i), true
	}
	return 0, false
}

// Str returns the string payload.
func (v Value) Str() (string, bool) {
	if v.typ == String {
		return v.s, true
	}
	return "", false
}

// Equal compares type and payload. Doubles compare bitwise-equal values, so
// NaN never equals anything.
func (v Value) Equal(o Value) bool {
	if v.typ != o.typ {
		return false
	}
	switch v.typ {
	case Int:
		return v.i == o.i
	case Double:
		return v.d == o.d
	case String:
		return v.s == o.s
	}
	return true
}

// Convert coerces v to t. Int converts to Double freely, Double converts to
// Int only when integral, and numbers never become strings implicitly.
func (v Value) Convert(t Type) (Value, error) {
	if v.typ == t {
		return v, nil
	}
	switch t {
	case Double:
		if d, ok := v.Double(); ok {
			return DoubleVal(d), nil
		}
	case Int:
		if i, ok := v.Int(); ok {
			return IntVal(i), nil
		}
	}
	return Value{}, fmt.Errorf("cannot convert %s value %s to %s", v.typ, v, t)
}

// String renders the value in deck syntax: strings are single-quoted and
// doubles use the shortest representation that round-trips.
func (v Value) String() string {
	switch v.typ {
	case Int:
		return strconv.FormatInt(v.i, 10)
	case Double:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case String:
		return "'" + v.s + "'"
	}
	return "<invalid>"
}
