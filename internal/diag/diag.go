// Package diag holds source positions and the parse error taxonomy shared by
// the lexer, the record parser and the deck builder.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Position locates a token in its source. Line and Column are 1-based.
type Position struct {
	File   string
	Line   int
	Column int
}

// String formats the position as file:line:col, omitting the file when unknown.
func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Kind classifies a diagnostic.
type Kind int

const (
	KindLex Kind = iota + 1
	KindSchema
	KindOrdering
	KindSection
	KindIncompleteKeyword
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "lex error"
	case KindSchema:
		return "schema error"
	case KindOrdering:
		return "ordering error"
	case KindSection:
		return "section error"
	case KindIncompleteKeyword:
		return "incomplete keyword"
	}
	return "unknown error"
}

// Sentinels for errors.Is. A *Error matches the sentinel of its Kind.
var (
	ErrLex               = errors.New("lex error")
	ErrSchema            = errors.New("schema error")
	ErrOrdering          = errors.New("ordering error")
	ErrSection           = errors.New("section error")
	ErrIncompleteKeyword = errors.New("incomplete keyword")
)

func (k Kind) sentinel() error {
	switch k {
	case KindLex:
		return ErrLex
	case KindSchema:
		return ErrSchema
	case KindOrdering:
		return ErrOrdering
	case KindSection:
		return ErrSection
	case KindIncompleteKeyword:
		return ErrIncompleteKeyword
	}
	return nil
}

// Error is a fatal parse diagnostic. Record and Item are zero-based indices,
// -1 when the error is not tied to one.
type Error struct {
	Kind     Kind
	Keyword  string
	Record   int
	Item     int
	ItemName string
	Pos      Position
	Msg      string
	Err      error
}

// Errorf builds an Error not yet attached to a keyword.
func Errorf(kind Kind, pos Position, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Record: -1,
		Item:   -1,
		Pos:    pos,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Kind.String())
	if e.Keyword != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Keyword)
	}
	if e.Record >= 0 {
		fmt.Fprintf(&sb, " record %d", e.Record+1)
	}
	if e.ItemName != "" {
		fmt.Fprintf(&sb, " item %s", e.ItemName)
	} else if e.Item >= 0 {
		fmt.Fprintf(&sb, " item %d", e.Item+1)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Msg)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// InKeyword fills in the keyword name if it is still empty and returns e.
func (e *Error) InKeyword(name string) *Error {
	if e.Keyword == "" {
		e.Keyword = name
	}
	return e
}

// Warning is a recovered, non-fatal diagnostic.
type Warning struct {
	Kind    Kind
	Keyword string
	Pos     Position
	Msg     string
}

func (w Warning) String() string {
	if w.Keyword == "" {
		return fmt.Sprintf("%s: %s", w.Pos, w.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", w.Pos, w.Keyword, w.Msg)
}
