package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/deckgo/internal/diag"
)

// Kind is the lexical class of a token.
type Kind int

const (
	EOF Kind = iota
	Number
	BareWord
	QuotedString
	Multiplier
	Terminator
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Number:
		return "number"
	case BareWord:
		return "word"
	case QuotedString:
		return "quoted string"
	case Multiplier:
		return "multiplier"
	case Terminator:
		return "'/'"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is one lexeme with its source position.
type Token struct {
	Kind Kind
	// Raw is the lexeme exactly as written, quotes included.
	Raw string
	// Text is the decoded payload: the content of a quoted string, otherwise Raw.
	Text string
	Pos  diag.Position
	// LineStart is set on the first token of a physical line.
	LineStart bool

	// Count and Repeat are only set on Multiplier tokens. Repeat is nil for a
	// bare `N*`, which stands for N defaulted slots.
	Count  int
	Repeat *Token
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Raw)
}

// IsDefault reports whether the token is a bare multiplier without a value.
func (t Token) IsDefault() bool {
	return t.Kind == Multiplier && t.Repeat == nil
}

var fortranExponent = strings.NewReplacer("D", "E", "d", "e")

// ParseNumber parses a deck number. Fortran style `D` exponents are accepted,
// named values such as "inf" or "nan" are not.
func ParseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '+', c == '-', c == '.':
	default:
		return 0, false
	}
	f, err := strconv.ParseFloat(fortranExponent.Replace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// classify builds a token from an unquoted lexeme.
func classify(lexeme string, pos diag.Position) (Token, error) {
	star := strings.IndexByte(lexeme, '*')
	if star < 0 {
		return scalar(lexeme, pos), nil
	}

	prefix := lexeme[:star]
	if _, numeric := ParseNumber(prefix); !numeric {
		// Patterns such as `PROD*` are names, not multipliers.
		return scalar(lexeme, pos), nil
	}

	count, err := multiplierCount(prefix)
	if err != nil {
		return Token{}, diag.Errorf(diag.KindLex, pos, "malformed multiplier %q: %v", lexeme, err)
	}

	tok := Token{Kind: Multiplier, Raw: lexeme, Text: lexeme, Pos: pos, Count: count}
	if rest := lexeme[star+1:]; rest != "" {
		if strings.IndexByte(rest, '*') >= 0 {
			return Token{}, diag.Errorf(diag.KindLex, pos, "malformed multiplier %q: nested '*'", lexeme)
		}
		inner := scalar(rest, pos)
		tok.Repeat = &inner
	}
	return tok, nil
}

func multiplierCount(prefix string) (int, error) {
	for _, c := range prefix {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("count %q is not a positive integer", prefix)
		}
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, fmt.Errorf("count %q is out of range", prefix)
	}
	if n <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", n)
	}
	return n, nil
}

func scalar(lexeme string, pos diag.Position) Token {
	kind := BareWord
	if _, ok := ParseNumber(lexeme); ok {
		kind = Number
	}
	return Token{Kind: kind, Raw: lexeme, Text: lexeme, Pos: pos}
}
