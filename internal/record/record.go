package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/lexer"
	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/specialistvlad/deckgo/internal/value"
)

// MaxItemValues bounds how many values one repeated item may expand to,
// counting both explicit values and N* multiplier runs.
const MaxItemValues = 1 << 26

// Cursor is the token source the reader consumes. *lexer.Lexer satisfies it.
type Cursor interface {
	Next() (lexer.Token, error)
	Peek() (lexer.Token, error)
}

// Options tune how forgiving the reader is.
type Options struct {
	// Strict rejects stray words inside numeric data arrays. When false they
	// are skipped and reported through Warn.
	Strict bool

	// Warn receives recovered diagnostics. Nil drops them.
	Warn func(diag.Warning)
}

// Reader parses records from a cursor.
type Reader struct {
	cur  Cursor
	opts Options
}

// NewReader returns a Reader over cur.
func NewReader(cur Cursor, opts Options) *Reader {
	return &Reader{cur: cur, opts: opts}
}

// Target identifies the record being read, for diagnostics.
type Target struct {
	Keyword string
	Index   int
	Schema  *schema.Record

	// RequireTerminator makes a closing '/' mandatory.
	RequireTerminator bool
}

// Read parses one record. terminated reports whether the record was closed by
// a '/', which Read consumes.
func (r *Reader) Read(t Target) (rec *deck.Record, terminated bool, err error) {
	st := &readState{Reader: r, t: t}
	items := make([]*deck.Item, 0, len(t.Schema.Items))

	for i := range t.Schema.Items {
		it := &t.Schema.Items[i]
		st.item, st.itemSchema = i, it

		var parsed *deck.Item
		switch {
		case st.closed:
			parsed, err = st.defaultRest()
		case it.Size == schema.Repeated:
			parsed, err = st.repeated()
		default:
			parsed, err = st.single()
		}
		if err != nil {
			return nil, false, err
		}
		items = append(items, parsed)
	}

	if !st.closed {
		if err := st.finish(); err != nil {
			return nil, false, err
		}
	}
	return deck.NewRecord(items...), st.closed, nil
}

type readState struct {
	*Reader
	t Target

	item       int
	itemSchema *schema.Item

	// closed is set once the terminating '/' has been consumed.
	closed bool
	// lastPos is the position of the last consumed token.
	lastPos diag.Position
}

func (s *readState) next() (lexer.Token, error) {
	tok, err := s.cur.Next()
	if err != nil {
		return tok, s.wrap(err)
	}
	if tok.Kind != lexer.EOF {
		s.lastPos = tok.Pos
	}
	return tok, nil
}

func (s *readState) peek() (lexer.Token, error) {
	tok, err := s.cur.Peek()
	if err != nil {
		return tok, s.wrap(err)
	}
	return tok, nil
}

func (s *readState) single() (*deck.Item, error) {
	tok, err := s.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case lexer.Terminator:
		if _, err := s.next(); err != nil {
			return nil, err
		}
		s.closed = true
		return s.defaultRest()
	case lexer.EOF:
		return nil, s.errorf(diag.KindIncompleteKeyword, tok.Pos, "end of input inside record")
	}

	if _, err := s.next(); err != nil {
		return nil, err
	}
	if tok.Kind == lexer.Multiplier {
		if tok.Count > 1 {
			return nil, s.errorf(diag.KindSchema, tok.Pos, "multiplier %s spans %d values but the item holds one", tok.Raw, tok.Count)
		}
		if tok.Repeat == nil {
			v, err := s.defaultValue(tok.Pos)
			if err != nil {
				return nil, err
			}
			return s.build([]value.Value{v}, []bool{true}), nil
		}
		tok = *tok.Repeat
	}

	v, err := s.coerce(tok)
	if err != nil {
		return nil, err
	}
	return s.build([]value.Value{v}, []bool{false}), nil
}

func (s *readState) repeated() (*deck.Item, error) {
	var (
		values    []value.Value
		defaulted []bool
	)
	for {
		tok, err := s.peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case lexer.Terminator:
			return s.build(values, defaulted), nil
		case lexer.EOF:
			return nil, s.errorf(diag.KindIncompleteKeyword, tok.Pos, "end of input before '/'")
		}
		if _, err := s.next(); err != nil {
			return nil, err
		}

		if tok.Kind == lexer.Multiplier {
			v, wasDefault := value.Value{}, tok.Repeat == nil
			if wasDefault {
				v, err = s.defaultValue(tok.Pos)
			} else {
				v, err = s.coerce(*tok.Repeat)
			}
			if err != nil {
				return nil, err
			}
			if tok.Count > MaxItemValues-len(values) {
				return nil, s.errorf(diag.KindSchema, tok.Pos, "multiplier %s expands item past %d values", tok.Raw, MaxItemValues)
			}
			for range tok.Count {
				values = append(values, v)
				defaulted = append(defaulted, wasDefault)
			}
			continue
		}

		v, err := s.coerce(tok)
		if err != nil {
			if s.skippable(tok) {
				s.warnf(tok.Pos, "ignoring %s in numeric data", tok)
				continue
			}
			return nil, err
		}
		if len(values) >= MaxItemValues {
			return nil, s.errorf(diag.KindSchema, tok.Pos, "item holds more than %d values", MaxItemValues)
		}
		values = append(values, v)
		defaulted = append(defaulted, false)
	}
}

// skippable reports whether a bad token inside a data array may be dropped.
func (s *readState) skippable(tok lexer.Token) bool {
	return !s.opts.Strict && s.t.Schema.DataOnly && tok.Kind == lexer.BareWord
}

// defaultRest fills the current item after the record was closed early.
func (s *readState) defaultRest() (*deck.Item, error) {
	if s.itemSchema.Size == schema.Repeated {
		return s.build(nil, nil), nil
	}
	v, err := s.defaultValue(s.lastPos)
	if err != nil {
		return nil, err
	}
	return s.build([]value.Value{v}, []bool{true}), nil
}

// finish handles what follows the last item of a record.
func (s *readState) finish() error {
	tok, err := s.peek()
	if err != nil {
		return err
	}
	switch {
	case tok.Kind == lexer.Terminator:
		if _, err := s.next(); err != nil {
			return err
		}
		s.closed = true
		return nil
	case tok.Kind != lexer.EOF && !tok.LineStart:
		s.item = -1
		return s.errorf(diag.KindSchema, tok.Pos, "too many items: unexpected %s", tok)
	case s.t.RequireTerminator:
		s.item = -1
		return s.errorf(diag.KindSchema, tok.Pos, "missing record terminator '/', found %s", tok)
	}
	return nil
}

func (s *readState) defaultValue(pos diag.Position) (value.Value, error) {
	it := s.itemSchema
	if !it.HasDefault() {
		return value.Value{}, s.errorf(diag.KindSchema, pos, "item has no default value")
	}
	v, err := it.Default.Convert(it.Type)
	if err != nil {
		return value.Value{}, s.errorf(diag.KindSchema, pos, "default %s: %v", it.Default, err)
	}
	return v, nil
}

// coerce converts a scalar token to the item type.
func (s *readState) coerce(tok lexer.Token) (value.Value, error) {
	it := s.itemSchema
	switch it.Type {
	case value.String:
		if !it.Allows(tok.Text) {
			return value.Value{}, s.errorf(diag.KindSchema, tok.Pos, "%q is not one of %v", tok.Text, it.Options)
		}
		return value.StringVal(tok.Text), nil
	case value.Int:
		if tok.Kind != lexer.Number {
			break
		}
		if n, err := strconv.ParseInt(tok.Text, 10, 64); err == nil {
			return value.IntVal(n), nil
		}
		if f, ok := lexer.ParseNumber(tok.Text); ok && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return value.IntVal(int64(f)), nil
		}
	case value.Double:
		if tok.Kind != lexer.Number {
			break
		}
		if f, ok := lexer.ParseNumber(tok.Text); ok {
			return value.DoubleVal(f), nil
		}
	}
	return value.Value{}, s.errorf(diag.KindSchema, tok.Pos, "cannot read %s as %s", tok, it.Type)
}

func (s *readState) build(values []value.Value, defaulted []bool) *deck.Item {
	it := s.itemSchema
	return deck.NewItem(it.Name, it.Type, it.Dimensions, values, defaulted)
}

func (s *readState) errorf(kind diag.Kind, pos diag.Position, format string, args ...any) error {
	e := diag.Errorf(kind, pos, format, args...)
	e.Keyword = s.t.Keyword
	e.Record = s.t.Index
	e.Item = s.item
	if s.item >= 0 && s.itemSchema != nil {
		e.ItemName = s.itemSchema.Name
	}
	return e
}

// wrap attaches record context to lexer errors.
func (s *readState) wrap(err error) error {
	var de *diag.Error
	if errors.As(err, &de) {
		de.InKeyword(s.t.Keyword)
		if de.Record < 0 {
			de.Record = s.t.Index
		}
		return de
	}
	return err
}

func (s *readState) warnf(pos diag.Position, format string, args ...any) {
	if s.opts.Warn == nil {
		return
	}
	s.opts.Warn(diag.Warning{
		Kind:    diag.KindSchema,
		Keyword: s.t.Keyword,
		Pos:     pos,
		Msg:     fmt.Sprintf(format, args...),
	})
}
