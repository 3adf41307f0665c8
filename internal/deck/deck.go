// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the Deck, the ordered result of parsing one input document.
//
// Why is the Deck read-only?
//
// Many consumers read the same deck: table builders, well and segment
// builders, grid construction. None of them may see a keyword change under
// them, and they may read it from several goroutines at once. The Deck is
// therefore only assembled through a Builder, and every accessor hands out
// copies or immutable values. Merge and override semantics of repeated keywords
// belong to those consumers; the Deck keeps every occurrence in source order.
package deck

import (
	"iter"
	"slices"

	"github.com/specialistvlad/deckgo/internal/diag"
)

// Deck is the immutable, order-preserving parse result.
type Deck struct {
	keywords []*Keyword
	sections []string
	index    map[string][]int
	warnings []diag.Warning
}

// Len returns the number of keywords.
func (d *Deck) Len() int { return len(d.keywords) }

// At returns the i-th keyword in source order.
func (d *Deck) At(i int) *Keyword { return d.keywords[i] }

// Section returns the section that was active when the i-th keyword was parsed.
func (d *Deck) Section(i int) string { return d.sections[i] }

// KeywordCount returns how many times name occurs.
func (d *Deck) KeywordCount(name string) int { return len(d.index[name]) }

// HasKeyword reports whether name occurs at least once.
func (d *Deck) HasKeyword(name string) bool { return len(d.index[name]) > 0 }

// Keyword returns the occurrence-th keyword named name, counting from zero.
func (d *Deck) Keyword(name string, occurrence int) (*Keyword, bool) {
	idx := d.index[name]
	if occurrence < 0 || occurrence >= len(idx) {
		return nil, false
	}
	return d.keywords[idx[occurrence]], true
}

// Last returns the last occurrence of name.
func (d *Deck) Last(name string) (*Keyword, bool) {
	return d.Keyword(name, d.KeywordCount(name)-1)
}

// All iterates over all keywords in source order.
func (d *Deck) All() iter.Seq2[int, *Keyword] {
	return func(yield func(int, *Keyword) bool) {
		for i, kw := range d.keywords {
			if !yield(i, kw) {
				return
			}
		}
	}
}

// Occurrences iterates over every keyword named name in source order.
func (d *Deck) Occurrences(name string) iter.Seq[*Keyword] {
	return func(yield func(*Keyword) bool) {
		for _, i := range d.index[name] {
			if !yield(d.keywords[i]) {
				return
			}
		}
	}
}

// Names returns the distinct keyword names in order of first appearance.
func (d *Deck) Names() []string {
	seen := make(map[string]struct{}, len(d.index))
	var names []string
	for _, kw := range d.keywords {
		if _, ok := seen[kw.name]; ok {
			continue
		}
		seen[kw.name] = struct{}{}
		names = append(names, kw.name)
	}
	return names
}

// Warnings returns the recovered diagnostics gathered while parsing.
func (d *Deck) Warnings() []diag.Warning { return slices.Clone(d.warnings) }
