// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the keyword schema, the data-driven description that tells
// the parser how to read one keyword.
//
// Why are schemas data rather than code?
//
// A simulator deck language has on the order of a thousand keywords, and they
// differ only in shape: how many records, which items, which types, which
// defaults. Describing that shape as data keeps the parser a single
// interpreter. The concrete schemas live in manifest files and reach the parser
// through the Registry interface.
package schema

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/deckgo/internal/value"
)

// ItemSize says how many values an item holds.
type ItemSize int

const (
	// Single items hold exactly one value.
	Single ItemSize = iota
	// Repeated items consume values up to the record terminator.
	Repeated
)

func (s ItemSize) String() string {
	if s == Repeated {
		return "repeated"
	}
	return "single"
}

// Item describes one named field of a record.
type Item struct {
	Name string
	Type value.Type
	Size ItemSize

	// Default is the value used for defaulted slots. The zero Value means the
	// item has no default.
	Default value.Value

	// Dimensions are unit-of-measure tags, passed through to the deck untouched.
	Dimensions []string

	// Options restricts a string item to a fixed set of values, compared
	// case-sensitively. Empty means unrestricted.
	Options []string

	Description string
}

// HasDefault reports whether the item declares a default value.
func (it *Item) HasDefault() bool {
	return it.Default.IsValid()
}

// Allows reports whether s is an accepted option for the item.
func (it *Item) Allows(s string) bool {
	return len(it.Options) == 0 || slices.Contains(it.Options, s)
}

// Record is the ordered item layout of one record.
type Record struct {
	Items []Item

	// DataOnly marks grdecl style records: the record is one repeated numeric
	// item with no further structure.
	DataOnly bool
}

// SizePolicy selects how the number of records of a keyword is found.
type SizePolicy int

const (
	// Fixed keywords have a known number of records.
	Fixed SizePolicy = iota
	// UntilTerminator keywords read records until a record holding only '/'.
	UntilTerminator
	// DependsOn keywords take their record count from an item of an earlier keyword.
	DependsOn
)

func (p SizePolicy) String() string {
	switch p {
	case Fixed:
		return "fixed"
	case UntilTerminator:
		return "until_terminator"
	case DependsOn:
		return "depends_on"
	}
	return fmt.Sprintf("SizePolicy(%d)", int(p))
}

// KeywordSize is the keyword-level size policy with its parameters.
type KeywordSize struct {
	Policy SizePolicy

	// Count is the number of records of a Fixed keyword.
	Count int

	// Keyword and Item name the value a DependsOn keyword is sized by. Shift
	// is added to the resolved value.
	Keyword string
	Item    string
	Shift   int
}

// FixedSize returns a Fixed policy with n records.
func FixedSize(n int) KeywordSize {
	return KeywordSize{Policy: Fixed, Count: n}
}

// SlashTerminated returns an UntilTerminator policy.
func SlashTerminated() KeywordSize {
	return KeywordSize{Policy: UntilTerminator}
}

// SizedBy returns a DependsOn policy.
func SizedBy(keyword, item string, shift int) KeywordSize {
	return KeywordSize{Policy: DependsOn, Keyword: keyword, Item: item, Shift: shift}
}

func (s KeywordSize) String() string {
	switch s.Policy {
	case Fixed:
		return fmt.Sprintf("fixed(%d)", s.Count)
	case DependsOn:
		if s.Shift != 0 {
			return fmt.Sprintf("depends_on(%s.%s%+d)", s.Keyword, s.Item, s.Shift)
		}
		return fmt.Sprintf("depends_on(%s.%s)", s.Keyword, s.Item)
	}
	return s.Policy.String()
}

// Keyword is the full schema of one keyword.
type Keyword struct {
	Name        string
	Description string
	Records     []Record
	Size        KeywordSize

	// Sections lists the sections the keyword may appear in. Empty means any.
	Sections []string

	// Alternating keywords cycle through Records instead of reusing the last one.
	Alternating bool

	// RequireTerminator makes '/' mandatory after each record of a Fixed or
	// DependsOn keyword. UntilTerminator records always need one.
	RequireTerminator bool
}

// Record returns the record schema used for the i-th record. Records past the
// declared list reuse the last schema, or wrap around for alternating keywords.
func (k *Keyword) Record(i int) (*Record, bool) {
	if len(k.Records) == 0 || i < 0 {
		return nil, false
	}
	if i >= len(k.Records) {
		if k.Alternating {
			i %= len(k.Records)
		} else {
			i = len(k.Records) - 1
		}
	}
	return &k.Records[i], true
}

// ValidIn reports whether the keyword may appear in the given section.
func (k *Keyword) ValidIn(section string) bool {
	return len(k.Sections) == 0 || slices.Contains(k.Sections, section)
}

// IsDataKeyword reports whether the keyword is a single grdecl style array.
func (k *Keyword) IsDataKeyword() bool {
	return len(k.Records) == 1 && k.Records[0].DataOnly
}

// Registry is the read-only lookup the parser depends on.
type Registry interface {
	Lookup(name string) (*Keyword, bool)
}

// RegistryFunc adapts a function to the Registry interface.
type RegistryFunc func(name string) (*Keyword, bool)

func (f RegistryFunc) Lookup(name string) (*Keyword, bool) { return f(name) }
