// Package deckstore saves parsed decks into an embedded SQLite database and
// loads them back. A database holds one deck; Save replaces what was there.
package deckstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/value"

	_ "modernc.org/sqlite"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS keywords (
		seq              INTEGER PRIMARY KEY,
		name             TEXT NOT NULL,
		section          TEXT NOT NULL,
		file             TEXT NOT NULL,
		line             INTEGER NOT NULL,
		col              INTEGER NOT NULL,
		slash_terminated INTEGER NOT NULL,
		records          INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS keywords_name ON keywords(name);`,
	`CREATE TABLE IF NOT EXISTS items (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword_seq INTEGER NOT NULL REFERENCES keywords(seq) ON DELETE CASCADE,
		record_idx  INTEGER NOT NULL,
		item_idx    INTEGER NOT NULL,
		name        TEXT NOT NULL,
		type        TEXT NOT NULL,
		dimensions  TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS item_values (
		item_id   INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		idx       INTEGER NOT NULL,
		int_val   INTEGER,
		real_val  REAL,
		text_val  TEXT,
		defaulted INTEGER NOT NULL,
		PRIMARY KEY (item_id, idx)
	);`,
	`CREATE TABLE IF NOT EXISTS warnings (
		seq     INTEGER PRIMARY KEY,
		kind    INTEGER NOT NULL,
		keyword TEXT NOT NULL,
		file    TEXT NOT NULL,
		line    INTEGER NOT NULL,
		col     INTEGER NOT NULL,
		msg     TEXT NOT NULL
	);`,
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return db, nil
}

// Save writes d into db inside one transaction, replacing any stored deck.
func Save(ctx context.Context, db *sql.DB, d *deck.Deck) (err error) {
	logger := ctxlog.FromContext(ctx)
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"item_values", "items", "keywords", "warnings"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insKeyword, err := tx.PrepareContext(ctx,
		`INSERT INTO keywords (seq, name, section, file, line, col, slash_terminated, records) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare keywords: %w", err)
	}
	defer insKeyword.Close()
	insItem, err := tx.PrepareContext(ctx,
		`INSERT INTO items (keyword_seq, record_idx, item_idx, name, type, dimensions) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare items: %w", err)
	}
	defer insItem.Close()
	insValue, err := tx.PrepareContext(ctx,
		`INSERT INTO item_values (item_id, idx, int_val, real_val, text_val, defaulted) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare item_values: %w", err)
	}
	defer insValue.Close()

	for seq, kw := range d.All() {
		pos := kw.Pos()
		if _, err = insKeyword.ExecContext(ctx, seq, kw.Name(), d.Section(seq), pos.File, pos.Line, pos.Column, kw.SlashTerminated(), kw.Len()); err != nil {
			return fmt.Errorf("insert keyword %s: %w", kw.Name(), err)
		}
		for ri, rec := range kw.Records() {
			for ii, it := range rec.Items() {
				var res sql.Result
				res, err = insItem.ExecContext(ctx, seq, ri, ii, it.Name(), it.Type().String(), strings.Join(it.Dimensions(), ","))
				if err != nil {
					return fmt.Errorf("insert item %s.%s: %w", kw.Name(), it.Name(), err)
				}
				var id int64
				if id, err = res.LastInsertId(); err != nil {
					return fmt.Errorf("item id: %w", err)
				}
				for vi := 0; vi < it.Len(); vi++ {
					iv, rv, tv := columns(it.Value(vi))
					if _, err = insValue.ExecContext(ctx, id, vi, iv, rv, tv, it.WasDefaulted(vi)); err != nil {
						return fmt.Errorf("insert value %s.%s[%d]: %w", kw.Name(), it.Name(), vi, err)
					}
				}
			}
		}
	}

	for i, w := range d.Warnings() {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO warnings (seq, kind, keyword, file, line, col, msg) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i, int(w.Kind), w.Keyword, w.Pos.File, w.Pos.Line, w.Pos.Column, w.Msg); err != nil {
			return fmt.Errorf("insert warning: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Debug("Deck saved.", "keywords", d.Len(), "warnings", len(d.Warnings()))
	return nil
}

func columns(v value.Value) (iv sql.NullInt64, rv sql.NullFloat64, tv sql.NullString) {
	switch v.Type() {
	case value.Int:
		n, _ := v.Int()
		iv = sql.NullInt64{Int64: n, Valid: true}
	case value.Double:
		f, _ := v.Double()
		rv = sql.NullFloat64{Float64: f, Valid: true}
	case value.String:
		s, _ := v.Str()
		tv = sql.NullString{String: s, Valid: true}
	}
	return iv, rv, tv
}

type storedKeyword struct {
	name    string
	section string
	pos     diag.Position
	slash   bool
	records [][]*deck.Item
}

// Load reads the stored deck back. An empty database yields an empty deck.
func Load(ctx context.Context, db *sql.DB) (*deck.Deck, error) {
	var keywords []*storedKeyword
	rows, err := db.QueryContext(ctx, `SELECT name, section, file, line, col, slash_terminated, records FROM keywords ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	for rows.Next() {
		k := &storedKeyword{}
		var n int
		if err := rows.Scan(&k.name, &k.section, &k.pos.File, &k.pos.Line, &k.pos.Column, &k.slash, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		k.records = make([][]*deck.Item, n)
		keywords = append(keywords, k)
	}
	if err := closeRows(rows); err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}

	for seq, k := range keywords {
		if err := loadItems(ctx, db, seq, k); err != nil {
			return nil, err
		}
	}

	b := deck.NewBuilder()
	for _, k := range keywords {
		recs := make([]*deck.Record, len(k.records))
		for i, items := range k.records {
			recs[i] = deck.NewRecord(items...)
		}
		b.Append(deck.NewKeyword(k.name, k.pos, recs, k.slash), k.section)
	}

	wrows, err := db.QueryContext(ctx, `SELECT kind, keyword, file, line, col, msg FROM warnings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	for wrows.Next() {
		var w diag.Warning
		var kind int
		if err := wrows.Scan(&kind, &w.Keyword, &w.Pos.File, &w.Pos.Line, &w.Pos.Column, &w.Msg); err != nil {
			wrows.Close()
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		w.Kind = diag.Kind(kind)
		b.Warn(w)
	}
	if err := closeRows(wrows); err != nil {
		return nil, fmt.Errorf("read warnings: %w", err)
	}

	d := b.Build()
	ctxlog.FromContext(ctx).Debug("Deck loaded.", slog.Int("keywords", d.Len()))
	return d, nil
}

type storedItem struct {
	id         int64
	record     int
	name       string
	typ        value.Type
	dimensions []string
}

func loadItems(ctx context.Context, db *sql.DB, seq int, k *storedKeyword) error {
	rows, err := db.QueryContext(ctx,
		`SELECT id, record_idx, name, type, dimensions FROM items WHERE keyword_seq = ? ORDER BY record_idx, item_idx`, seq)
	if err != nil {
		return fmt.Errorf("query items of %s: %w", k.name, err)
	}
	var items []storedItem
	for rows.Next() {
		var it storedItem
		var typ, dims string
		if err := rows.Scan(&it.id, &it.record, &it.name, &typ, &dims); err != nil {
			rows.Close()
			return fmt.Errorf("scan item of %s: %w", k.name, err)
		}
		if it.typ, err = value.ParseType(typ); err != nil {
			rows.Close()
			return fmt.Errorf("item %s.%s: %w", k.name, it.name, err)
		}
		if dims != "" {
			it.dimensions = strings.Split(dims, ",")
		}
		items = append(items, it)
	}
	if err := closeRows(rows); err != nil {
		return fmt.Errorf("read items of %s: %w", k.name, err)
	}

	for _, it := range items {
		if it.record >= len(k.records) {
			return fmt.Errorf("item %s.%s: record %d out of range", k.name, it.name, it.record)
		}
		vals, flags, err := loadValues(ctx, db, it)
		if err != nil {
			return fmt.Errorf("item %s.%s: %w", k.name, it.name, err)
		}
		k.records[it.record] = append(k.records[it.record], deck.NewItem(it.name, it.typ, it.dimensions, vals, flags))
	}
	return nil
}

func loadValues(ctx context.Context, db *sql.DB, it storedItem) ([]value.Value, []bool, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT int_val, real_val, text_val, defaulted FROM item_values WHERE item_id = ? ORDER BY idx`, it.id)
	if err != nil {
		return nil, nil, fmt.Errorf("query values: %w", err)
	}
	var vals []value.Value
	var flags []bool
	for rows.Next() {
		var iv sql.NullInt64
		var rv sql.NullFloat64
		var tv sql.NullString
		var defaulted bool
		if err := rows.Scan(&iv, &rv, &tv, &defaulted); err != nil {
			rows.Close()
			return nil, nil, fmt.Errorf("scan value: %w", err)
		}
		switch {
		case iv.Valid:
			vals = append(vals, value.IntVal(iv.Int64))
		case rv.Valid:
			vals = append(vals, value.DoubleVal(rv.Float64))
		case tv.Valid:
			vals = append(vals, value.StringVal(tv.String))
		default:
			rows.Close()
			return nil, nil, fmt.Errorf("value %d has no data", len(vals))
		}
		flags = append(flags, defaulted)
	}
	if err := closeRows(rows); err != nil {
		return nil, nil, err
	}
	return vals, flags, nil
}

func closeRows(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	return rows.Close()
}
