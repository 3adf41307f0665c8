package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/lexer"
	"github.com/specialistvlad/deckgo/internal/record"
	"github.com/specialistvlad/deckgo/internal/schema"
)

// Parser reads decks against a keyword registry. It holds no per-parse state
// and may be shared.
type Parser struct {
	reg  schema.Registry
	opts Options
}

// New creates a Parser.
func New(reg schema.Registry, opts Options) (*Parser, error) {
	if reg == nil {
		return nil, errors.New("parser: registry is required")
	}
	if opts.MaxIncludeDepth <= 0 {
		opts.MaxIncludeDepth = DefaultMaxIncludeDepth
	}
	return &Parser{reg: reg, opts: opts}, nil
}

// Parse reads a deck from r. name labels positions and anchors relative
// INCLUDE paths. r is not closed.
func (p *Parser) Parse(ctx context.Context, r io.Reader, name string) (*deck.Deck, error) {
	return p.parse(ctx, &input{lex: lexer.New(r, name), name: name})
}

// ParseFile opens name through the configured Opener and parses it.
func (p *Parser) ParseFile(ctx context.Context, name string) (*deck.Deck, error) {
	if p.opts.Opener == nil {
		return nil, errors.New("parser: no opener configured")
	}
	rc, err := p.opts.Opener.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open deck %s: %w", name, err)
	}
	return p.parse(ctx, &input{lex: lexer.New(rc, name), closer: rc, name: name})
}

func (p *Parser) parse(ctx context.Context, in *input) (d *deck.Deck, err error) {
	rn := &run{
		Parser:  p,
		ctx:     ctx,
		log:     ctxlog.FromContext(ctx),
		inputs:  []*input{in},
		b:       deck.NewBuilder(),
		section: p.opts.InitialSection,
		paths:   make(map[string]string),
	}
	rn.resolver = p.opts.SizeResolver
	if rn.resolver == nil {
		rn.resolver = rn.b
	}

	defer func() {
		if cerr := rn.closeAll(); cerr != nil && err == nil {
			d, err = nil, cerr
		}
	}()

	if err := rn.loop(); err != nil {
		rn.log.Debug("Deck parse failed.", "file", in.name, "error", err)
		return nil, err
	}
	d = rn.b.Build()
	rn.log.Debug("Deck parsed.", "file", in.name, "keywords", d.Len(), "warnings", len(d.Warnings()))
	return d, nil
}

type state int

const (
	stateIdle state = iota
	stateSeeking
	stateRecords
	stateEOF
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateSeeking:
		return "seeking_keyword"
	case stateRecords:
		return "parsing_records"
	case stateEOF:
		return "eof"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type input struct {
	lex    *lexer.Lexer
	closer io.Closer
	name   string
}

// run is the state of one Parse call.
type run struct {
	*Parser
	ctx      context.Context
	log      *slog.Logger
	inputs   []*input
	b        *deck.Builder
	resolver SizeResolver
	section  string
	paths    map[string]string

	state  state
	header lexer.Token
	kw     *schema.Keyword
}

func (rn *run) top() *input { return rn.inputs[len(rn.inputs)-1] }

func (rn *run) loop() error {
	for rn.state != stateEOF {
		var err error
		switch rn.state {
		case stateIdle:
			if err = rn.ctx.Err(); err != nil {
				err = fmt.Errorf("parse %s: %w", rn.top().name, err)
			}
			rn.state = stateSeeking
		case stateSeeking:
			err = rn.seek()
		case stateRecords:
			err = rn.records()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// seek finds the next keyword header.
func (rn *run) seek() error {
	lx := rn.top().lex
	tok, err := lx.Next()
	if err != nil {
		return err
	}

	switch {
	case tok.Kind == lexer.EOF:
		return rn.endOfInput()
	case tok.Kind != lexer.BareWord || !tok.LineStart:
		if rn.opts.Strict {
			return diag.Errorf(diag.KindSchema, tok.Pos, "expected a keyword, found %s", tok)
		}
		rn.warn(diag.Warning{Kind: diag.KindSchema, Pos: tok.Pos, Msg: fmt.Sprintf("ignoring %s outside any keyword", tok)})
		rn.skipToKeyword()
		return nil
	}

	kw, ok := rn.lookup(tok.Text)
	if !ok {
		return rn.unknown(tok)
	}
	rn.header, rn.kw = tok, kw
	rn.state = stateRecords

	// Anything after the name on the header line is commentary.
	if next, err := lx.Peek(); err == nil && next.Kind != lexer.EOF && !next.LineStart {
		rn.log.Debug("Ignoring text after keyword name.", "keyword", kw.Name, "pos", next.Pos.String())
	}
	lx.SkipToEndOfLine()
	return nil
}

func (rn *run) lookup(name string) (*schema.Keyword, bool) {
	if kw, ok := schema.Directive(name); ok {
		return kw, true
	}
	if kw, ok := rn.reg.Lookup(name); ok {
		return kw, true
	}
	return schema.SectionHeader(name)
}

func (rn *run) unknown(tok lexer.Token) error {
	msg := fmt.Sprintf("unknown keyword %s", tok.Text)
	if s, ok := rn.reg.(Suggester); ok {
		if names := s.Suggest(tok.Text); len(names) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(names, ", "))
		}
	}
	if rn.opts.Strict {
		return diag.Errorf(diag.KindSchema, tok.Pos, "%s", msg).InKeyword(tok.Text)
	}
	rn.warn(diag.Warning{Kind: diag.KindSchema, Keyword: tok.Text, Pos: tok.Pos, Msg: msg + ", skipped"})
	rn.skipToKeyword()
	return nil
}

// skipToKeyword discards lines until one starts with a known keyword.
func (rn *run) skipToKeyword() {
	lx := rn.top().lex
	lx.SkipToEndOfLine()
	for {
		tok, err := lx.Peek()
		if err != nil {
			_, _ = lx.Next()
			continue
		}
		if tok.Kind == lexer.EOF {
			return
		}
		if tok.LineStart && tok.Kind == lexer.BareWord {
			if _, ok := rn.lookup(tok.Text); ok {
				return
			}
		}
		_, _ = lx.Next()
		lx.SkipToEndOfLine()
	}
}

// records reads the records of the current keyword and files the result.
func (rn *run) records() error {
	kw, hdr := rn.kw, rn.header
	parsed, err := rn.readKeyword(kw, hdr)
	if err != nil {
		return err
	}
	rn.state = stateIdle

	if schema.IsDirective(kw.Name) {
		return rn.directive(parsed)
	}

	if schema.IsSectionHeader(kw.Name) {
		rn.section = kw.Name
	} else if rn.section != "" && !kw.ValidIn(rn.section) {
		rn.warn(diag.Warning{
			Kind:    diag.KindSection,
			Keyword: kw.Name,
			Pos:     hdr.Pos,
			Msg:     fmt.Sprintf("keyword is not valid in the %s section", rn.section),
		})
	}

	rn.b.Append(parsed, rn.section)
	rn.log.Debug("Keyword parsed.", "keyword", kw.Name, "pos", hdr.Pos.String(), "records", parsed.Len(), "section", rn.section)
	return nil
}

func (rn *run) readKeyword(kw *schema.Keyword, hdr lexer.Token) (*deck.Keyword, error) {
	rd := record.NewReader(rn.top().lex, record.Options{Strict: rn.opts.Strict, Warn: rn.warn})

	switch kw.Size.Policy {
	case schema.UntilTerminator:
		return rn.readUntilTerminator(kw, hdr, rd)
	case schema.DependsOn:
		n, err := rn.resolveSize(kw, hdr)
		if err != nil {
			return nil, err
		}
		return rn.readCounted(kw, hdr, rd, n)
	default:
		return rn.readCounted(kw, hdr, rd, kw.Size.Count)
	}
}

// recordCapHint bounds the preallocation for counted keywords, whose record
// count comes from deck data.
const recordCapHint = 1024

func (rn *run) readCounted(kw *schema.Keyword, hdr lexer.Token, rd *record.Reader, n int) (*deck.Keyword, error) {
	records := make([]*deck.Record, 0, min(n, recordCapHint))
	for i := range n {
		rs, ok := kw.Record(i)
		if !ok {
			return nil, diag.Errorf(diag.KindSchema, hdr.Pos, "schema declares no record layout").InKeyword(kw.Name)
		}
		rec, _, err := rd.Read(record.Target{
			Keyword:           kw.Name,
			Index:             i,
			Schema:            rs,
			RequireTerminator: kw.RequireTerminator,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return deck.NewKeyword(kw.Name, hdr.Pos, records, false), nil
}

func (rn *run) readUntilTerminator(kw *schema.Keyword, hdr lexer.Token, rd *record.Reader) (*deck.Keyword, error) {
	lx := rn.top().lex
	var records []*deck.Record
	for {
		tok, err := lx.Peek()
		if err != nil {
			return nil, inKeyword(err, kw.Name)
		}
		switch tok.Kind {
		case lexer.Terminator:
			_, _ = lx.Next()
			return deck.NewKeyword(kw.Name, hdr.Pos, records, true), nil
		case lexer.EOF:
			if rn.opts.Strict || len(records) == 0 {
				return nil, diag.Errorf(diag.KindIncompleteKeyword, tok.Pos, "end of input before the terminating '/'").InKeyword(kw.Name)
			}
			rn.warn(diag.Warning{
				Kind:    diag.KindIncompleteKeyword,
				Keyword: kw.Name,
				Pos:     tok.Pos,
				Msg:     "end of input before the terminating '/', keyword closed",
			})
			return deck.NewKeyword(kw.Name, hdr.Pos, records, false), nil
		}

		rs, ok := kw.Record(len(records))
		if !ok {
			return nil, diag.Errorf(diag.KindSchema, hdr.Pos, "schema declares no record layout").InKeyword(kw.Name)
		}
		rec, _, err := rd.Read(record.Target{
			Keyword:           kw.Name,
			Index:             len(records),
			Schema:            rs,
			RequireTerminator: true,
		})
		if err != nil {
			if rn.opts.Strict || !errors.Is(err, diag.ErrSchema) {
				return nil, err
			}
			rn.warnError(err)
			lx.SkipToEndOfLine()
			continue
		}
		records = append(records, rec)
	}
}

func (rn *run) resolveSize(kw *schema.Keyword, hdr lexer.Token) (int, error) {
	size := kw.Size
	n, err := rn.resolver.ResolveSize(size.Keyword, size.Item)
	if err != nil {
		e := diag.Errorf(diag.KindOrdering, hdr.Pos, "record count depends on %s.%s", size.Keyword, size.Item).InKeyword(kw.Name)
		e.Err = err
		return 0, e
	}
	n += size.Shift
	if n < 0 {
		return 0, diag.Errorf(diag.KindOrdering, hdr.Pos, "record count from %s is negative (%d)", size, n).InKeyword(kw.Name)
	}
	return n, nil
}

// endOfInput closes a finished include or ends the parse.
func (rn *run) endOfInput() error {
	if len(rn.inputs) == 1 {
		rn.state = stateEOF
		return nil
	}
	return rn.pop()
}

func (rn *run) pop() error {
	in := rn.top()
	rn.inputs = rn.inputs[:len(rn.inputs)-1]
	rn.log.Debug("Include finished.", "file", in.name)
	if in.closer != nil {
		if err := in.closer.Close(); err != nil {
			return fmt.Errorf("close %s: %w", in.name, err)
		}
	}
	return nil
}

// closeAll closes every source still open, innermost first.
func (rn *run) closeAll() error {
	var errs []error
	for i := len(rn.inputs) - 1; i >= 0; i-- {
		in := rn.inputs[i]
		if in.closer == nil {
			continue
		}
		if err := in.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", in.name, err))
		}
	}
	rn.inputs = nil
	return errors.Join(errs...)
}

func (rn *run) warn(w diag.Warning) {
	rn.b.Warn(w)
	rn.log.Warn("Deck warning.", "pos", w.Pos.String(), "keyword", w.Keyword, "kind", w.Kind.String(), "message", w.Msg)
}

func (rn *run) warnError(err error) {
	var de *diag.Error
	if !errors.As(err, &de) {
		rn.warn(diag.Warning{Kind: diag.KindSchema, Msg: err.Error()})
		return
	}
	rn.warn(diag.Warning{Kind: de.Kind, Keyword: de.Keyword, Pos: de.Pos, Msg: de.Msg + ", record skipped"})
}

func inKeyword(err error, name string) error {
	var de *diag.Error
	if errors.As(err, &de) {
		de.InKeyword(name)
	}
	return err
}
