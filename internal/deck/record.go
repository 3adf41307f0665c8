package deck

import (
	"slices"

	"github.com/specialistvlad/deckgo/internal/diag"
)

// Record is one parsed row of a keyword. Its items match the record schema
// one to one.
type Record struct {
	items []*Item
}

// NewRecord builds a record from parsed items.
func NewRecord(items ...*Item) *Record {
	return &Record{items: slices.Clone(items)}
}

func (r *Record) Len() int         { return len(r.items) }
func (r *Record) Item(i int) *Item { return r.items[i] }
func (r *Record) Items() []*Item   { return slices.Clone(r.items) }

// ItemByName returns the first item with the given name.
func (r *Record) ItemByName(name string) (*Item, bool) {
	for _, it := range r.items {
		if it.name == name {
			return it, true
		}
	}
	return nil, false
}

// Keyword is one parsed keyword occurrence.
type Keyword struct {
	name            string
	pos             diag.Position
	records         []*Record
	slashTerminated bool
}

// NewKeyword builds a keyword. slashTerminated records whether the keyword was
// closed by a lone '/' in the source.
func NewKeyword(name string, pos diag.Position, records []*Record, slashTerminated bool) *Keyword {
	return &Keyword{
		name:            name,
		pos:             pos,
		records:         slices.Clone(records),
		slashTerminated: slashTerminated,
	}
}

func (k *Keyword) Name() string          { return k.name }
func (k *Keyword) Pos() diag.Position    { return k.pos }
func (k *Keyword) Len() int              { return len(k.records) }
func (k *Keyword) Record(i int) *Record  { return k.records[i] }
func (k *Keyword) Records() []*Record    { return slices.Clone(k.records) }
func (k *Keyword) SlashTerminated() bool { return k.slashTerminated }
