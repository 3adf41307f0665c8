package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/deckfmt"
	"github.com/specialistvlad/deckgo/internal/deckstore"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/parser"
	"github.com/specialistvlad/deckgo/internal/source"
)

// Parse reads the deck at path, following INCLUDE directives on the local
// file system. Recovered warnings are logged and kept on the deck.
func (a *App) Parse(ctx context.Context, path string) (*deck.Deck, error) {
	ctx = ctxlog.With(a.withLogger(ctx), "deck", path)
	p, err := parser.New(a.registry, parser.Options{
		Strict:         a.config.Strict,
		InitialSection: a.config.InitialSection,
		Opener:         source.Files{},
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Parsing deck...", "path", path, "strict", a.config.Strict)
	d, err := p.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Deck parsed.", "path", path, "keywords", d.Len(), "warnings", len(d.Warnings()))
	return d, nil
}

// Check runs the section ordering check and logs every finding.
func (a *App) Check(d *deck.Deck) []diag.Warning {
	ws := parser.CheckSectionTopology(d, a.registry)
	for _, w := range ws {
		a.logger.Warn("Section topology.", "warning", w.String())
	}
	return ws
}

// Summarize writes one line per keyword occurrence: position, section, name
// and record count, followed by the parse warnings.
func (a *App) Summarize(w io.Writer, d *deck.Deck) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POSITION\tSECTION\tKEYWORD\tRECORDS")
	for i, kw := range d.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", kw.Pos(), d.Section(i), kw.Name(), kw.Len())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return WriteWarnings(w, d.Warnings())
}

// WriteWarnings prints warnings one per line.
func WriteWarnings(w io.Writer, ws []diag.Warning) error {
	for _, warn := range ws {
		if _, err := fmt.Fprintf(w, "warning: %s\n", warn); err != nil {
			return err
		}
	}
	return nil
}

// Format writes d back in deck syntax.
func (a *App) Format(w io.Writer, d *deck.Deck) error {
	return deckfmt.Write(w, d)
}

// Export stores d in the SQLite database at dbPath.
func (a *App) Export(ctx context.Context, d *deck.Deck, dbPath string) error {
	ctx = a.withLogger(ctx)
	db, err := deckstore.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := deckstore.Save(ctx, db, d); err != nil {
		return fmt.Errorf("failed to export deck: %w", err)
	}
	a.logger.Info("Deck exported.", "db", dbPath, "keywords", d.Len())
	return nil
}

// ListSchemas writes the registered keywords with their size and origin.
func (a *App) ListSchemas(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEYWORD\tSIZE\tSECTIONS\tSOURCE")
	for _, name := range a.registry.Names() {
		kw, _ := a.registry.Lookup(name)
		sections := "any"
		if len(kw.Sections) > 0 {
			sections = fmt.Sprint(kw.Sections)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, kw.Size, sections, a.registry.Origin(name))
	}
	return tw.Flush()
}
