package testutil

import (
	"testing"

	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/stretchr/testify/require"
)

// AssertKeywords checks that the deck holds exactly the given keyword names
// in source order.
func AssertKeywords(t *testing.T, d *deck.Deck, names ...string) {
	t.Helper()
	require.NotNil(t, d, "deck is nil")

	got := make([]string, 0, d.Len())
	for _, kw := range d.All() {
		got = append(got, kw.Name())
	}
	require.Equal(t, names, got, "keyword order mismatch")
}
