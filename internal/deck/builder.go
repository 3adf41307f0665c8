package deck

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/deckgo/internal/diag"
)

// ErrUnresolved is returned by ResolveSize when the referenced keyword or item
// is not available in the deck built so far.
var ErrUnresolved = errors.New("size reference not resolved")

// Builder assembles a Deck. It is owned by a single parse and must not be
// used after Build.
type Builder struct {
	d     *Deck
	built bool
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{d: &Deck{index: make(map[string][]int)}}
}

// Append adds a keyword parsed while section was active.
func (b *Builder) Append(kw *Keyword, section string) {
	b.mustBeOpen()
	b.d.index[kw.name] = append(b.d.index[kw.name], len(b.d.keywords))
	b.d.keywords = append(b.d.keywords, kw)
	b.d.sections = append(b.d.sections, section)
}

// Warn records a recovered diagnostic.
func (b *Builder) Warn(w diag.Warning) {
	b.mustBeOpen()
	b.d.warnings = append(b.d.warnings, w)
}

// Len returns the number of keywords appended so far.
func (b *Builder) Len() int { return len(b.d.keywords) }

// Last returns the most recent occurrence of name appended so far.
func (b *Builder) Last(name string) (*Keyword, bool) {
	return b.d.Last(name)
}

// ResolveSize returns the integer held by item in the first record of the
// latest keyword occurrence. Later keywords may only depend on earlier ones,
// so the lookup never sees keywords that follow in the source.
func (b *Builder) ResolveSize(keyword, item string) (int, error) {
	kw, ok := b.Last(keyword)
	if !ok {
		return 0, fmt.Errorf("%w: keyword %s has not been parsed", ErrUnresolved, keyword)
	}
	if kw.Len() == 0 {
		return 0, fmt.Errorf("%w: keyword %s has no records", ErrUnresolved, keyword)
	}
	it, ok := kw.Record(0).ItemByName(item)
	if !ok || it.Len() == 0 {
		return 0, fmt.Errorf("%w: keyword %s has no value for item %s", ErrUnresolved, keyword, item)
	}
	n, err := it.Int(0)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}
	return int(n), nil
}

// Build hands out the finished deck. The builder is closed afterwards.
func (b *Builder) Build() *Deck {
	b.mustBeOpen()
	b.built = true
	return b.d
}

func (b *Builder) mustBeOpen() {
	if b.built {
		panic("deck: builder used after Build")
	}
}
