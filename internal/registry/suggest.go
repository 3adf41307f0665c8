package registry

import (
	"cmp"
	"slices"

	"github.com/agext/levenshtein"
)

const maxSuggestions = 3

// Suggest returns up to three registered names closest to name by edit
// distance, nearest first. Names further than a third of the length away
// (at least two edits) are not offered.
func (r *Registry) Suggest(name string) []string {
	limit := max(2, len(name)/3)

	type candidate struct {
		name string
		dist int
	}
	var found []candidate
	for known := range r.keywords {
		if d := levenshtein.Distance(name, known, nil); d > 0 && d <= limit {
			found = append(found, candidate{known, d})
		}
	}
	slices.SortFunc(found, func(a, b candidate) int {
		return cmp.Or(cmp.Compare(a.dist, b.dist), cmp.Compare(a.name, b.name))
	})

	out := make([]string, 0, min(len(found), maxSuggestions))
	for _, c := range found[:min(len(found), maxSuggestions)] {
		out = append(out, c.name)
	}
	return out
}
