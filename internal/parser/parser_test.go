package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/deck"
	"github.com/specialistvlad/deckgo/internal/diag"
	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/specialistvlad/deckgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRegistry map[string]*schema.Keyword

func (r testRegistry) Lookup(name string) (*schema.Keyword, bool) {
	kw, ok := r[name]
	return kw, ok
}

func (r testRegistry) Suggest(name string) []string {
	var out []string
	for known := range r {
		if len(known) == len(name) && known[:2] == name[:2] {
			out = append(out, known)
		}
	}
	return out
}

func ints(names ...string) []schema.Item {
	items := make([]schema.Item, len(names))
	for i, n := range names {
		items[i] = schema.Item{Name: n, Type: value.Int}
	}
	return items
}

func newRegistry() testRegistry {
	reg := testRegistry{
		"FOO": {Name: "FOO", Records: []schema.Record{{Items: ints("A", "B", "C")}}, Size: schema.FixedSize(1)},
		"BAR": {Name: "BAR", Records: []schema.Record{{Items: []schema.Item{
			{Name: "V", Type: value.Double, Size: schema.Repeated},
		}}}, Size: schema.FixedSize(1)},
		"BAZ": {Name: "BAZ", Records: []schema.Record{{Items: []schema.Item{
			{Name: "V", Type: value.Int, Size: schema.Repeated, Default: value.IntVal(7)},
		}}}, Size: schema.FixedSize(1)},
		"DIMENS": {Name: "DIMENS", Records: []schema.Record{{Items: ints("NX", "NY", "NZ")}}, Size: schema.FixedSize(1), RequireTerminator: true},
		"NOSIM":  {Name: "NOSIM", Size: schema.FixedSize(0)},
		"TABDIMS": {Name: "TABDIMS", Records: []schema.Record{{Items: []schema.Item{
			{Name: "NTSFUN", Type: value.Int, Default: value.IntVal(1)},
			{Name: "NTPVT", Type: value.Int, Default: value.IntVal(1)},
		}}}, Size: schema.FixedSize(1)},
		"SWOF": {Name: "SWOF", Records: []schema.Record{{DataOnly: true, Items: []schema.Item{
			{Name: "DATA", Type: value.Double, Size: schema.Repeated},
		}}}, Size: schema.SizedBy("TABDIMS", "NTSFUN", 0)},
		"PVTW": {Name: "PVTW", Records: []schema.Record{{Items: ints("P")}}, Size: schema.SizedBy("TABDIMS", "NTPVT", 1)},
		"EQUIL": {Name: "EQUIL", Records: []schema.Record{{Items: []schema.Item{
			{Name: "DATUM", Type: value.Double},
			{Name: "PRESSURE", Type: value.Double},
		}}}, Size: schema.SizedBy("EQLDIMS", "NTEQUL", 0)},
		"PORO": {Name: "PORO", Records: []schema.Record{{DataOnly: true, Items: []schema.Item{
			{Name: "data", Type: value.Double, Size: schema.Repeated},
		}}}, Size: schema.FixedSize(1), Sections: []string{schema.SectionGrid}},
		"WELSPECS": {Name: "WELSPECS", Records: []schema.Record{{Items: []schema.Item{
			{Name: "WELL", Type: value.String},
			{Name: "GROUP", Type: value.String},
			{Name: "I", Type: value.Int},
			{Name: "J", Type: value.Int},
		}}}, Size: schema.SlashTerminated(), Sections: []string{schema.SectionSchedule}},
	}
	return reg
}

func parse(t *testing.T, input string, opts Options) (*deck.Deck, error) {
	t.Helper()
	p, err := New(newRegistry(), opts)
	require.NoError(t, err)
	return p.Parse(context.Background(), strings.NewReader(input), "CASE.DATA")
}

func mustParse(t *testing.T, input string, opts Options) *deck.Deck {
	t.Helper()
	d, err := parse(t, input, opts)
	require.NoError(t, err)
	return d
}

func names(d *deck.Deck) []string {
	var out []string
	for _, kw := range d.All() {
		out = append(out, kw.Name())
	}
	return out
}

func TestParse_SingleItems(t *testing.T) {
	d := mustParse(t, "FOO\n 1 2 3 /\n", Options{Strict: true})

	require.Equal(t, 1, d.Len())
	kw, ok := d.Keyword("FOO", 0)
	require.True(t, ok)
	require.Equal(t, 1, kw.Len())

	rec := kw.Record(0)
	require.Equal(t, 3, rec.Len())
	for i, want := range []int64{1, 2, 3} {
		got, err := rec.Item(i).Int(0)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.False(t, rec.Item(i).WasDefaulted(0))
	}
}

func TestParse_RepeatedItems(t *testing.T) {
	d := mustParse(t, "BAR\n 3*5 /\nBAZ\n 2* /\n", Options{Strict: true})

	bar, _ := d.Keyword("BAR", 0)
	got, err := bar.Record(0).Item(0).Doubles()
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5, 5}, got)

	baz, _ := d.Keyword("BAZ", 0)
	item := baz.Record(0).Item(0)
	vals, err := item.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 7}, vals)
	assert.True(t, item.WasDefaulted(0))
	assert.True(t, item.WasDefaulted(1))
}

func TestParse_CommentLines(t *testing.T) {
	reg := testRegistry{"FOO": {Name: "FOO", Records: []schema.Record{{Items: ints("A")}}, Size: schema.FixedSize(1)}}
	p, err := New(reg, Options{Strict: true})
	require.NoError(t, err)

	d, err := p.Parse(context.Background(), strings.NewReader("-- comment\nFOO\n1 /\n"), "CASE.DATA")
	require.NoError(t, err)
	assert.Equal(t, []string{"FOO"}, names(d))
	assert.Equal(t, 2, d.At(0).Pos().Line)
}

func TestParse_DependsOn(t *testing.T) {
	input := `TABDIMS
 2 /
SWOF
 0.1 0.0 1.0 0.0
 1.0 1.0 0.0 0.0 /
 0.2 0.0 1.0 0.0 /
PVTW
 100 /
 200 /
`
	d := mustParse(t, input, Options{Strict: true})

	swof, ok := d.Keyword("SWOF", 0)
	require.True(t, ok)
	assert.Equal(t, 2, swof.Len(), "NTSFUN")

	first, err := swof.Record(0).Item(0).Doubles()
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0, 1, 0, 1, 1, 0, 0}, first)

	pvtw, ok := d.Keyword("PVTW", 0)
	require.True(t, ok)
	assert.Equal(t, 2, pvtw.Len(), "defaulted NTPVT plus one")
}

func TestParse_DependsOnUnresolved(t *testing.T) {
	d, err := parse(t, "EQUIL\n 2000 250 /\n", Options{Strict: true})

	require.Error(t, err)
	assert.Nil(t, d)
	assert.ErrorIs(t, err, diag.ErrOrdering)
	assert.ErrorIs(t, err, deck.ErrUnresolved)

	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "EQUIL", de.Keyword)
	assert.Equal(t, 1, de.Pos.Line)
}

type fixedResolver int

func (r fixedResolver) ResolveSize(keyword, item string) (int, error) { return int(r), nil }

func TestParse_CustomSizeResolver(t *testing.T) {
	d := mustParse(t, "EQUIL\n 2000 250 /\n 2100 260 /\n", Options{Strict: true, SizeResolver: fixedResolver(2)})

	kw, _ := d.Keyword("EQUIL", 0)
	assert.Equal(t, 2, kw.Len())
}

func TestParse_FixedRecordCounts(t *testing.T) {
	d := mustParse(t, "NOSIM\nDIMENS\n 10 20 3 /\nFOO\n 1 2 3\n", Options{Strict: true})

	assert.Equal(t, []string{"NOSIM", "DIMENS", "FOO"}, names(d))
	for _, kw := range d.All() {
		s, _ := newRegistry().Lookup(kw.Name())
		assert.Equal(t, s.Size.Count, kw.Len(), kw.Name())
	}
}

func TestParse_SlashTerminated(t *testing.T) {
	input := `SCHEDULE
WELSPECS
 'P1' 'G1' 1 1 /
 'I1' 'G1' 5 5 / 'I2' 'G1' 6 6 /
/
`
	d := mustParse(t, input, Options{Strict: true})

	kw, ok := d.Keyword("WELSPECS", 0)
	require.True(t, ok)
	assert.True(t, kw.SlashTerminated())

	var wells []string
	for _, rec := range kw.Records() {
		w, err := rec.Item(0).String(0)
		require.NoError(t, err)
		wells = append(wells, w)
	}
	if diff := cmp.Diff([]string{"P1", "I1", "I2"}, wells); diff != "" {
		t.Errorf("wells mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_DuplicatesKeepOrder(t *testing.T) {
	d := mustParse(t, "FOO\n 1 2 3 /\nBAR\n 1 /\nFOO\n 4 5 6 /\n", Options{Strict: true})

	assert.Equal(t, []string{"FOO", "BAR", "FOO"}, names(d))
	assert.Equal(t, 2, d.KeywordCount("FOO"))

	second, _ := d.Keyword("FOO", 1)
	v, _ := second.Record(0).Item(0).Int(0)
	assert.Equal(t, int64(4), v)
}

func TestParse_UnknownKeyword(t *testing.T) {
	input := "FO0\n 1 2 3 /\n 4 5 /\nFOO\n 1 2 3 /\n"

	t.Run("strict", func(t *testing.T) {
		_, err := parse(t, input, Options{Strict: true})
		require.ErrorIs(t, err, diag.ErrSchema)
		assert.Contains(t, err.Error(), "unknown keyword FO0")
		assert.Contains(t, err.Error(), "did you mean FOO")
	})

	t.Run("lenient", func(t *testing.T) {
		var logs bytes.Buffer
		ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))
		p, err := New(newRegistry(), Options{})
		require.NoError(t, err)

		d, err := p.Parse(ctx, strings.NewReader(input), "CASE.DATA")
		require.NoError(t, err)
		assert.Equal(t, []string{"FOO"}, names(d))

		warnings := d.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "FO0", warnings[0].Keyword)
		assert.Equal(t, diag.KindSchema, warnings[0].Kind)
		assert.Contains(t, logs.String(), "Deck warning.")
	})
}

func TestParse_StrayTokens(t *testing.T) {
	input := "1 2 3 /\nFOO\n 1 2 3 /\n"

	_, err := parse(t, input, Options{Strict: true})
	require.ErrorIs(t, err, diag.ErrSchema)

	d := mustParse(t, input, Options{})
	assert.Equal(t, []string{"FOO"}, names(d))
	assert.Len(t, d.Warnings(), 1)
}

func TestParse_Sections(t *testing.T) {
	input := `GRID
PORO
 4*0.25 /
WELSPECS
 'P1' 'G1' 1 1 /
/
SCHEDULE
WELSPECS
 'P2' 'G1' 2 2 /
/
`
	d := mustParse(t, input, Options{Strict: true})

	assert.Equal(t, []string{"GRID", "GRID", "GRID", "SCHEDULE", "SCHEDULE"}, []string{
		d.Section(0), d.Section(1), d.Section(2), d.Section(3), d.Section(4),
	})

	warnings := d.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, diag.KindSection, warnings[0].Kind)
	assert.Equal(t, "WELSPECS", warnings[0].Keyword)
	assert.Equal(t, 4, warnings[0].Pos.Line)
}

func TestParse_InitialSection(t *testing.T) {
	d := mustParse(t, "PORO\n 1*0.2 /\n", Options{Strict: true, InitialSection: schema.SectionSchedule})

	require.Len(t, d.Warnings(), 1)
	assert.Equal(t, schema.SectionSchedule, d.Section(0))

	d = mustParse(t, "PORO\n 0.2 /\n", Options{Strict: true})
	assert.Empty(t, d.Warnings())
}

func TestParse_MalformedRecords(t *testing.T) {
	t.Run("slash terminated lenient", func(t *testing.T) {
		input := "WELSPECS\n 'P1' 'G1' x 1 /\n 'P2' 'G1' 2 2 /\n/\n"
		d := mustParse(t, input, Options{})

		kw, _ := d.Keyword("WELSPECS", 0)
		require.Equal(t, 1, kw.Len())
		w, _ := kw.Record(0).Item(0).String(0)
		assert.Equal(t, "P2", w)
		require.Len(t, d.Warnings(), 1)
		assert.Equal(t, 2, d.Warnings()[0].Pos.Line)
	})

	t.Run("slash terminated strict", func(t *testing.T) {
		_, err := parse(t, "WELSPECS\n 'P1' 'G1' x 1 /\n/\n", Options{Strict: true})
		require.ErrorIs(t, err, diag.ErrSchema)

		var de *diag.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "I", de.ItemName)
		assert.Equal(t, 0, de.Record)
	})

	t.Run("fixed is always fatal", func(t *testing.T) {
		d, err := parse(t, "DIMENS\n 10 x 3 /\n", Options{})
		require.ErrorIs(t, err, diag.ErrSchema)
		assert.Nil(t, d)
	})

	for _, strict := range []bool{true, false} {
		t.Run(fmt.Sprintf("oversized record count strict=%t", strict), func(t *testing.T) {
			d, err := parse(t, "TABDIMS\n 9000000000000000000 /\nSWOF\n 1 /\n", Options{Strict: strict})
			require.ErrorIs(t, err, diag.ErrIncompleteKeyword)
			assert.Nil(t, d)

			var de *diag.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "SWOF", de.Keyword)
		})

		t.Run(fmt.Sprintf("oversized multiplier strict=%t", strict), func(t *testing.T) {
			_, err := parse(t, "BAR\n 4000000000*1 /\n", Options{Strict: strict})
			require.ErrorIs(t, err, diag.ErrSchema)
			assert.Contains(t, err.Error(), "expands item past")
		})
	}
}

func TestParse_HeaderTrailingText(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []float64
	}{
		{
			name:  "free text",
			input: "PORO  Here comes some random gibberish\n 4*0.15 /\n",
			want:  []float64{0.15, 0.15, 0.15, 0.15},
		},
		{
			name:  "values on header line are dropped",
			input: "PORO 0.9 0.9 /\n 0.2 /\n",
			want:  []float64{0.2},
		},
		{
			name:  "unterminated quote",
			input: "PORO 'note\n 0.3 0.4 /\n",
			want:  []float64{0.3, 0.4},
		},
	}
	for _, tc := range testCases {
		for _, strict := range []bool{true, false} {
			t.Run(fmt.Sprintf("%s strict=%t", tc.name, strict), func(t *testing.T) {
				d := mustParse(t, tc.input, Options{Strict: strict})
				assert.Empty(t, d.Warnings())

				kw, ok := d.Keyword("PORO", 0)
				require.True(t, ok)
				got, err := kw.Record(0).Item(0).Doubles()
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			})
		}
	}
}

func TestParse_IncompleteKeyword(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		lenient bool
	}{
		{name: "slash terminated", input: "WELSPECS\n 'P1' 'G1' 1 1 /\n"},
		{name: "slash terminated without records", input: "WELSPECS\n", lenient: true},
		{name: "fixed", input: "FOO\n 1 2", lenient: true},
		{name: "data", input: "PORO\n 0.1 0.2\n", lenient: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(t, tc.input, Options{Strict: true})
			require.ErrorIs(t, err, diag.ErrIncompleteKeyword)

			if tc.lenient {
				_, err = parse(t, tc.input, Options{})
				require.ErrorIs(t, err, diag.ErrIncompleteKeyword)
			}
		})
	}
}

func TestParse_SlashTerminatedAtEndOfInput(t *testing.T) {
	reg := testRegistry{
		"BAR": {Name: "BAR", Records: []schema.Record{{Items: []schema.Item{
			{Name: "V", Type: value.Double, Size: schema.Repeated},
		}}}, Size: schema.SlashTerminated()},
	}
	const input = "BAR\n 3*5 /\n"

	t.Run("lenient closes the keyword", func(t *testing.T) {
		p, err := New(reg, Options{})
		require.NoError(t, err)
		d, err := p.Parse(context.Background(), strings.NewReader(input), "CASE.DATA")
		require.NoError(t, err)

		kw, ok := d.Keyword("BAR", 0)
		require.True(t, ok)
		assert.False(t, kw.SlashTerminated())
		require.Equal(t, 1, kw.Len())
		got, err := kw.Record(0).Item(0).Doubles()
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 5, 5}, got)

		require.Len(t, d.Warnings(), 1)
		assert.Equal(t, diag.KindIncompleteKeyword, d.Warnings()[0].Kind)
		assert.Equal(t, "BAR", d.Warnings()[0].Keyword)
	})

	t.Run("strict rejects", func(t *testing.T) {
		p, err := New(reg, Options{Strict: true})
		require.NoError(t, err)
		_, err = p.Parse(context.Background(), strings.NewReader(input), "CASE.DATA")
		require.ErrorIs(t, err, diag.ErrIncompleteKeyword)

		var de *diag.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "BAR", de.Keyword)
	})
}

func TestParse_LexErrorIsFatal(t *testing.T) {
	_, err := parse(t, "WELSPECS\n 'P1' 'G1 1 1 /\n/\n", Options{})
	require.ErrorIs(t, err, diag.ErrLex)

	_, err = parse(t, "BAR\n 0*3 /\n", Options{})
	require.ErrorIs(t, err, diag.ErrLex)
}

func TestParse_Cancelled(t *testing.T) {
	p, err := New(newRegistry(), Options{Strict: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Parse(ctx, strings.NewReader("FOO\n 1 2 3 /\n"), "CASE.DATA")
	require.ErrorIs(t, err, context.Canceled)
}

func TestNew_RequiresRegistry(t *testing.T) {
	_, err := New(nil, Options{})
	require.Error(t, err)
}

// memFS serves decks from memory and records which files were closed.
type memFS struct {
	files  map[string]string
	opened []string
	closed []string
}

type trackedFile struct {
	io.Reader
	close func()
}

func (f *trackedFile) Close() error {
	f.close()
	return nil
}

func (m *memFS) Open(_ context.Context, name string) (io.ReadCloser, error) {
	src, ok := m.files[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	m.opened = append(m.opened, name)
	return &trackedFile{Reader: strings.NewReader(src), close: func() { m.closed = append(m.closed, name) }}, nil
}

func TestParse_Includes(t *testing.T) {
	files := &memFS{files: map[string]string{
		"decks/CASE.DATA": `GRID
INCLUDE
 'grid/poro.inc' /
PATHS
 'SCH' 'sched' /
/
INCLUDE
 '$SCH/wells.inc' /
END
GARBAGE 1 2 3 /
`,
		"decks/grid/poro.inc": "PORO\n 4*0.25 /\n",
		"decks/sched/wells.inc": `SCHEDULE
WELSPECS
 'P1' 'G1' 1 1 /
/
ENDINC
NOT PARSED /
`,
	}}

	p, err := New(newRegistry(), Options{Strict: true, Opener: files})
	require.NoError(t, err)

	d, err := p.ParseFile(context.Background(), "decks/CASE.DATA")
	require.NoError(t, err)

	assert.Equal(t, []string{"GRID", "PORO", "SCHEDULE", "WELSPECS"}, names(d))
	assert.Equal(t, "decks/grid/poro.inc", d.At(1).Pos().File)
	assert.Equal(t, schema.SectionGrid, d.Section(1))
	assert.Equal(t, schema.SectionSchedule, d.Section(3))
	assert.Empty(t, d.Warnings())

	assert.ElementsMatch(t, files.opened, files.closed)
	assert.Len(t, files.opened, 3)
}

func TestParse_IncludeBackslashes(t *testing.T) {
	files := &memFS{files: map[string]string{
		"CASE.DATA":     "INCLUDE\n 'grid\\poro.inc' /\n",
		"grid/poro.inc": "PORO\n 0.3 /\n",
	}}
	p, err := New(newRegistry(), Options{Strict: true, Opener: files})
	require.NoError(t, err)

	d, err := p.ParseFile(context.Background(), "CASE.DATA")
	require.NoError(t, err)
	assert.Equal(t, []string{"PORO"}, names(d))
	require.Len(t, d.Warnings(), 1)
	assert.Contains(t, d.Warnings()[0].Msg, "backslashes")
}

func TestParse_IncludeErrorsCloseSources(t *testing.T) {
	testCases := map[string]map[string]string{
		"lex error in include": {
			"CASE.DATA": "INCLUDE\n 'a.inc' /\n",
			"a.inc":     "INCLUDE\n 'b.inc' /\n",
			"b.inc":     "WELSPECS\n 'P1 /\n",
		},
		"missing file": {
			"CASE.DATA": "INCLUDE\n 'a.inc' /\n",
			"a.inc":     "INCLUDE\n 'missing.inc' /\n",
		},
		"unknown alias": {
			"CASE.DATA": "INCLUDE\n '$NOPE/a.inc' /\n",
		},
	}

	for name, tree := range testCases {
		t.Run(name, func(t *testing.T) {
			files := &memFS{files: tree}
			p, err := New(newRegistry(), Options{Strict: true, Opener: files})
			require.NoError(t, err)

			d, err := p.ParseFile(context.Background(), "CASE.DATA")
			require.Error(t, err)
			assert.Nil(t, d)
			assert.ElementsMatch(t, files.opened, files.closed)
		})
	}
}

func TestParse_IncludeWithoutOpener(t *testing.T) {
	_, err := parse(t, "INCLUDE\n 'a.inc' /\n", Options{Strict: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no opener")
}

func TestParse_IncludeDepth(t *testing.T) {
	files := &memFS{files: map[string]string{"loop.inc": "INCLUDE\n 'loop.inc' /\n"}}
	p, err := New(newRegistry(), Options{Strict: true, Opener: files, MaxIncludeDepth: 3})
	require.NoError(t, err)

	_, err = p.ParseFile(context.Background(), "loop.inc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nesting deeper than 3")
	assert.ElementsMatch(t, files.opened, files.closed)
}
