// Package deckfmt writes a deck back out as deck text.
//
// The output is normalised rather than a copy of the input: comments and
// layout are lost, runs of equal values are folded into `N*value`, runs of
// defaults into `N*` and trailing defaults are left to the record
// terminator. Parsing the output with the same schemas yields the same values
// and the same default flags.
package deckfmt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/value"
)

// tokensPerLine bounds how many values a data line holds.
const tokensPerLine = 8

// ErrUnquotable is returned for a string holding both quote characters, which
// no deck token can carry.
var ErrUnquotable = errors.New("string contains both quote characters")

// Write writes every keyword of d to w.
func Write(w io.Writer, d *deck.Deck) error {
	bw := bufio.NewWriter(w)
	for i, kw := range d.All() {
		if i > 0 {
			bw.WriteByte('\n')
		}
		if err := writeKeyword(bw, kw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteKeyword writes a single keyword to w.
func WriteKeyword(w io.Writer, kw *deck.Keyword) error {
	bw := bufio.NewWriter(w)
	if err := writeKeyword(bw, kw); err != nil {
		return err
	}
	return bw.Flush()
}

func writeKeyword(bw *bufio.Writer, kw *deck.Keyword) error {
	bw.WriteString(kw.Name())
	bw.WriteByte('\n')
	for i, rec := range kw.Records() {
		if err := writeRecord(bw, rec, kw.SlashTerminated()); err != nil {
			return fmt.Errorf("write %s record %d: %w", kw.Name(), i+1, err)
		}
	}
	if kw.SlashTerminated() {
		bw.WriteString("/\n")
	}
	return nil
}

func writeRecord(bw *bufio.Writer, rec *deck.Record, slashTerminated bool) error {
	items := rec.Items()
	n := len(items)
	for n > 0 && omittable(items[n-1]) {
		n--
	}
	// A lone '/' would end a slash terminated keyword.
	if slashTerminated && n == 0 && len(items) > 0 && items[0].Len() > 0 {
		n = 1
	}

	var tokens []string
	for _, it := range items[:n] {
		toks, err := itemTokens(it)
		if err != nil {
			return fmt.Errorf("item %s: %w", it.Name(), err)
		}
		tokens = append(tokens, toks...)
	}
	tokens = append(tokens, "/")

	bw.WriteString("  ")
	for i, tok := range tokens {
		if i > 0 {
			if i%tokensPerLine == 0 {
				bw.WriteString("\n  ")
			} else {
				bw.WriteByte(' ')
			}
		}
		bw.WriteString(tok)
	}
	bw.WriteByte('\n')
	return nil
}

// omittable reports whether an item can be left to the record terminator.
func omittable(it *deck.Item) bool {
	return it.Len() == 0 || (it.Len() == 1 && it.WasDefaulted(0))
}

// itemTokens renders an item with run-length compression.
func itemTokens(it *deck.Item) ([]string, error) {
	var out []string
	for i := 0; i < it.Len(); {
		j := i + 1
		for j < it.Len() && sameSlot(it, i, j) {
			j++
		}
		run := j - i
		if it.WasDefaulted(i) {
			out = append(out, strconv.Itoa(run)+"*")
			i = j
			continue
		}
		tok, err := Format(it.Value(i))
		if err != nil {
			return nil, err
		}
		if run > 1 {
			tok = strconv.Itoa(run) + "*" + tok
		}
		out = append(out, tok)
		i = j
	}
	return out, nil
}

func sameSlot(it *deck.Item, i, j int) bool {
	if it.WasDefaulted(i) != it.WasDefaulted(j) {
		return false
	}
	return it.WasDefaulted(i) || it.Value(i).Equal(it.Value(j))
}

// Format renders one value as a deck token. Strings are quoted with single
// quotes unless they contain one. A string with both quote characters fails
// with ErrUnquotable.
func Format(v value.Value) (string, error) {
	s, ok := v.Str()
	if !ok {
		return v.String(), nil
	}
	switch {
	case !strings.ContainsRune(s, '\''):
		return "'" + s + "'", nil
	case !strings.ContainsRune(s, '"'):
		return `"` + s + `"`, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnquotable, s)
}
