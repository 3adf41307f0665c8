package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specialistvlad/deckgo/internal/diag"
)

// CommentMarker starts a comment that runs to the end of the line.
const CommentMarker = "--"

// Lexer produces tokens from a deck source.
type Lexer struct {
	r    *bufio.Reader
	file string

	line     []rune
	lineNo   int
	col      int
	hasToken bool // a token was already emitted from the current line
	done     bool

	lastLine int // line of the last token returned by Next

	peeked  *Token
	peekErr error
}

// New creates a lexer reading from r. The file name only labels positions.
func New(r io.Reader, file string) *Lexer {
	return &Lexer{r: bufio.NewReader(r), file: file}
}

// File returns the name given to New.
func (l *Lexer) File() string { return l.file }

// Pos returns the position of the next unread character.
func (l *Lexer) Pos() diag.Position {
	if l.peeked != nil {
		return l.peeked.Pos
	}
	return diag.Position{File: l.file, Line: l.lineNo, Column: l.col + 1}
}

// Next consumes and returns the next token. At the end of input it keeps
// returning an EOF token.
func (l *Lexer) Next() (Token, error) {
	if l.peeked != nil || l.peekErr != nil {
		tok, err := l.takePeeked()
		if err == nil {
			l.lastLine = tok.Pos.Line
		}
		return tok, err
	}
	tok, err := l.scan()
	if err == nil {
		l.lastLine = tok.Pos.Line
	}
	return tok, err
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked == nil && l.peekErr == nil {
		tok, err := l.scan()
		if err != nil {
			l.peekErr = err
		} else {
			l.peeked = &tok
		}
	}
	if l.peekErr != nil {
		return Token{}, l.peekErr
	}
	return *l.peeked, nil
}

func (l *Lexer) takePeeked() (Token, error) {
	tok, err := l.peeked, l.peekErr
	l.peeked, l.peekErr = nil, nil
	if err != nil {
		return Token{}, err
	}
	return *tok, nil
}

// SkipToEndOfLine discards the rest of the line holding the most recently
// consumed token, including a buffered peek on that line.
func (l *Lexer) SkipToEndOfLine() {
	if l.peeked != nil || l.peekErr != nil {
		if l.peeked != nil && l.peeked.Pos.Line != l.lastLine {
			return
		}
		var de *diag.Error
		if errors.As(l.peekErr, &de) && de.Pos.Line != l.lastLine {
			return
		}
		l.peeked, l.peekErr = nil, nil
	}
	if l.lineNo == l.lastLine {
		l.col = len(l.line)
	}
}

func (l *Lexer) scan() (Token, error) {
	for {
		if l.col >= len(l.line) {
			if l.done {
				return Token{Kind: EOF, Pos: diag.Position{File: l.file, Line: l.lineNo, Column: l.col + 1}}, nil
			}
			if err := l.readLine(); err != nil {
				return Token{}, err
			}
			continue
		}

		for l.col < len(l.line) && isSpace(l.line[l.col]) {
			l.col++
		}
		if l.col >= len(l.line) {
			continue
		}

		pos := diag.Position{File: l.file, Line: l.lineNo, Column: l.col + 1}
		lineStart := !l.hasToken
		l.hasToken = true

		tok, err := l.lex(pos)
		if err != nil {
			return Token{}, err
		}
		tok.LineStart = lineStart
		return tok, nil
	}
}

func (l *Lexer) lex(pos diag.Position) (Token, error) {
	c := l.line[l.col]
	switch {
	case c == '/':
		l.col++
		return Token{Kind: Terminator, Raw: "/", Text: "/", Pos: pos}, nil
	case isQuote(c):
		text, raw, err := l.quoted(pos)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: QuotedString, Raw: raw, Text: text, Pos: pos}, nil
	}

	start := l.col
	for l.col < len(l.line) {
		c := l.line[l.col]
		if isSpace(c) || c == '/' {
			break
		}
		if isQuote(c) && l.col > start && l.line[l.col-1] == '*' {
			return l.quotedMultiplier(start, pos)
		}
		l.col++
	}
	return classify(string(l.line[start:l.col]), pos)
}

// quoted reads a quoted string starting at the cursor.
func (l *Lexer) quoted(pos diag.Position) (text, raw string, err error) {
	quote := l.line[l.col]
	start := l.col
	end := start + 1
	for end < len(l.line) && l.line[end] != quote {
		end++
	}
	if end >= len(l.line) {
		l.col = len(l.line)
		return "", "", diag.Errorf(diag.KindLex, pos, "unterminated %c quote", quote)
	}
	l.col = end + 1
	return string(l.line[start+1 : end]), string(l.line[start:l.col]), nil
}

// quotedMultiplier handles `N*'text'`, where the repeated value is quoted.
func (l *Lexer) quotedMultiplier(start int, pos diag.Position) (Token, error) {
	prefix := string(l.line[start:l.col])
	tok, err := classify(prefix, pos)
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != Multiplier {
		return Token{}, diag.Errorf(diag.KindLex, pos, "unexpected quote after %q", prefix)
	}
	valuePos := diag.Position{File: l.file, Line: l.lineNo, Column: l.col + 1}
	text, raw, err := l.quoted(valuePos)
	if err != nil {
		return Token{}, err
	}
	tok.Raw = prefix + raw
	tok.Text = tok.Raw
	tok.Repeat = &Token{Kind: QuotedString, Raw: raw, Text: text, Pos: valuePos}
	return tok, nil
}

func (l *Lexer) readLine() error {
	s, err := l.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read %s: %w", l.file, err)
	}
	if errors.Is(err, io.EOF) {
		l.done = true
		if s == "" {
			l.line, l.col = nil, 0
			return nil
		}
	}
	l.lineNo++
	s = strings.TrimRight(s, "\r\n")
	l.line = []rune(stripComment(s))
	l.col = 0
	l.hasToken = false
	return nil
}

// stripComment cuts the line at the first comment marker outside quotes. An
// unbalanced quote leaves the rest of the line untouched so that the quote is
// reported by the lexer.
func stripComment(s string) string {
	var quote rune
	for i, c := range s {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case isQuote(c):
			quote = c
		case strings.HasPrefix(s[i:], CommentMarker):
			return s[:i]
		}
	}
	return s
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\f' || c == '\v'
}

func isQuote(c rune) bool {
	return c == '\'' || c == '"'
}
