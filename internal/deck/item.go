package deck

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/deckgo/internal/value"
)

// Item is one parsed field of a record: an ordered run of values, each with a
// flag telling whether it came from the schema default.
type Item struct {
	name       string
	typ        value.Type
	dimensions []string
	values     []value.Value
	defaulted  []bool
}

// NewItem copies its arguments into a new Item. values and defaulted must have
// the same length.
func NewItem(name string, typ value.Type, dimensions []string, values []value.Value, defaulted []bool) *Item {
	if len(values) != len(defaulted) {
		panic(fmt.Sprintf("deck: item %s has %d values but %d default flags", name, len(values), len(defaulted)))
	}
	return &Item{
		name:       name,
		typ:        typ,
		dimensions: slices.Clone(dimensions),
		values:     slices.Clone(values),
		defaulted:  slices.Clone(defaulted),
	}
}

func (it *Item) Name() string         { return it.name }
func (it *Item) Type() value.Type     { return it.typ }
func (it *Item) Len() int             { return len(it.values) }
func (it *Item) Dimensions() []string { return slices.Clone(it.dimensions) }

// Value returns the i-th value.
func (it *Item) Value(i int) value.Value { return it.values[i] }

// WasDefaulted reports whether the i-th value came from the schema default.
func (it *Item) WasDefaulted(i int) bool { return it.defaulted[i] }

// Values returns a copy of all values.
func (it *Item) Values() []value.Value { return slices.Clone(it.values) }

// AllDefaulted reports whether every value is a default. An empty item is not
// considered defaulted.
func (it *Item) AllDefaulted() bool {
	if len(it.defaulted) == 0 {
		return false
	}
	for _, d := range it.defaulted {
		if !d {
			return false
		}
	}
	return true
}

// Int returns the i-th value as an integer.
func (it *Item) Int(i int) (int64, error) {
	if err := it.check(i); err != nil {
		return 0, err
	}
	n, ok := it.values[i].Int()
	if !ok {
		return 0, fmt.Errorf("item %s: value %d is %s, not int", it.name, i, it.values[i].Type())
	}
	return n, nil
}

// Double returns the i-th value as a float64. Int items convert losslessly.
func (it *Item) Double(i int) (float64, error) {
	if err := it.check(i); err != nil {
		return 0, err
	}
	d, ok := it.values[i].Double()
	if !ok {
		return 0, fmt.Errorf("item %s: value %d is %s, not numeric", it.name, i, it.values[i].Type())
	}
	return d, nil
}

// String returns the i-th value as a string.
func (it *Item) String(i int) (string, error) {
	if err := it.check(i); err != nil {
		return "", err
	}
	s, ok := it.values[i].Str()
	if !ok {
		return "", fmt.Errorf("item %s: value %d is %s, not string", it.name, i, it.values[i].Type())
	}
	return s, nil
}

// Ints returns every value as an integer.
func (it *Item) Ints() ([]int64, error) {
	out := make([]int64, len(it.values))
	for i := range it.values {
		n, err := it.Int(i)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// Doubles returns every value as a float64.
func (it *Item) Doubles() ([]float64, error) {
	out := make([]float64, len(it.values))
	for i := range it.values {
		d, err := it.Double(i)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

// Strings returns every value as a string.
func (it *Item) Strings() ([]string, error) {
	out := make([]string, len(it.values))
	for i := range it.values {
		s, err := it.String(i)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (it *Item) check(i int) error {
	if i < 0 || i >= len(it.values) {
		return fmt.Errorf("item %s: index %d out of range [0,%d)", it.name, i, len(it.values))
	}
	return nil
}
