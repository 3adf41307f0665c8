package parser

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/schema"
)

// sectionSuccessors lists which section header may follow each section.
var sectionSuccessors = map[string][]string{
	schema.SectionRunspec:  {schema.SectionGrid},
	schema.SectionGrid:     {schema.SectionEdit, schema.SectionProps},
	schema.SectionEdit:     {schema.SectionProps},
	schema.SectionProps:    {schema.SectionRegions, schema.SectionSolution},
	schema.SectionRegions:  {schema.SectionSolution},
	schema.SectionSolution: {schema.SectionSummary, schema.SectionSchedule},
	schema.SectionSummary:  {schema.SectionSchedule},
	schema.SectionSchedule: nil,
}

// CheckSectionTopology checks that a complete simulation deck lists its
// sections in the required order, starting with RUNSPEC and ending in
// SCHEDULE. With a non-nil registry every keyword is also checked against the
// sections its schema allows. Problems are returned as warnings.
func CheckSectionTopology(d *deck.Deck, reg schema.Registry) []diag.Warning {
	if d.Len() == 0 {
		return []diag.Warning{{Kind: diag.KindSection, Msg: "deck is empty"}}
	}

	var out []diag.Warning
	warn := func(kw *deck.Keyword, format string, args ...any) {
		out = append(out, diag.Warning{
			Kind:    diag.KindSection,
			Keyword: kw.Name(),
			Pos:     kw.Pos(),
			Msg:     fmt.Sprintf(format, args...),
		})
	}

	first := d.At(0)
	if first.Name() != schema.SectionRunspec {
		warn(first, "the first keyword of a deck must be %s", schema.SectionRunspec)
	}

	current := ""
	for _, kw := range d.All() {
		name := kw.Name()
		if schema.IsSectionHeader(name) {
			if current != "" && !slices.Contains(sectionSuccessors[current], name) {
				next := sectionSuccessors[current]
				if len(next) == 0 {
					warn(kw, "no section may follow %s", current)
				} else {
					warn(kw, "section %s may not follow %s, expected one of %v", name, current, next)
				}
			}
			current = name
			continue
		}
		if reg == nil || current == "" {
			continue
		}
		if s, ok := reg.Lookup(name); ok && !s.ValidIn(current) {
			warn(kw, "keyword is not valid in the %s section", current)
		}
	}

	if current != schema.SectionSchedule {
		warn(d.At(d.Len()-1), "the last section of a deck must be %s", schema.SectionSchedule)
	}
	return out
}
