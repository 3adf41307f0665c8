package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/lexer"
	"github.com/specialistvlad/deckgo/internal/schema"
)

func (rn *run) directive(kw *deck.Keyword) error {
	switch kw.Name() {
	case schema.Include:
		target, err := kw.Record(0).Item(0).String(0)
		if err != nil {
			return err
		}
		return rn.include(target, kw)
	case schema.Paths:
		for _, rec := range kw.Records() {
			alias, _ := rec.Item(0).String(0)
			dir, _ := rec.Item(1).String(0)
			rn.paths[alias] = dir
			rn.log.Debug("Include path alias defined.", "alias", alias, "dir", dir)
		}
	case schema.EndInc:
		if len(rn.inputs) == 1 {
			rn.warn(diag.Warning{Kind: diag.KindSchema, Keyword: kw.Name(), Pos: kw.Pos(), Msg: "not inside an included file, ignored"})
			return nil
		}
		return rn.pop()
	case schema.End:
		rn.log.Debug("END reached, remaining input ignored.", "pos", kw.Pos().String())
		rn.state = stateEOF
	}
	return nil
}

func (rn *run) include(target string, kw *deck.Keyword) error {
	if rn.opts.Opener == nil {
		return fmt.Errorf("%s: INCLUDE %q: no opener configured", kw.Pos(), target)
	}
	if len(rn.inputs) > rn.opts.MaxIncludeDepth {
		return fmt.Errorf("%s: INCLUDE %q: nesting deeper than %d", kw.Pos(), target, rn.opts.MaxIncludeDepth)
	}

	name, err := rn.resolveInclude(target, kw)
	if err != nil {
		return err
	}
	rc, err := rn.opts.Opener.Open(rn.ctx, name)
	if err != nil {
		return fmt.Errorf("%s: INCLUDE %q: %w", kw.Pos(), target, err)
	}
	rn.inputs = append(rn.inputs, &input{lex: lexer.New(rc, name), closer: rc, name: name})
	rn.log.Debug("Include opened.", "file", name, "depth", len(rn.inputs)-1)
	return nil
}

// resolveInclude expands $ALIAS prefixes defined by PATHS and makes relative
// paths relative to the including file.
func (rn *run) resolveInclude(target string, kw *deck.Keyword) (string, error) {
	if strings.Contains(target, `\`) {
		rn.warn(diag.Warning{
			Kind:    diag.KindSchema,
			Keyword: kw.Name(),
			Pos:     kw.Pos(),
			Msg:     fmt.Sprintf("backslashes in %q replaced with '/'", target),
		})
		target = strings.ReplaceAll(target, `\`, "/")
	}

	if rest, ok := strings.CutPrefix(target, "$"); ok {
		alias, tail, _ := strings.Cut(rest, "/")
		dir, ok := rn.paths[alias]
		if !ok {
			return "", fmt.Errorf("%s: INCLUDE %q: PATHS alias %s is not defined", kw.Pos(), target, alias)
		}
		target = dir + "/" + tail
	}

	target = filepath.FromSlash(target)
	if filepath.IsAbs(target) {
		return filepath.Clean(target), nil
	}
	return filepath.Join(filepath.Dir(rn.top().name), target), nil
}
