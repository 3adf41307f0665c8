package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/specialistvlad/deckgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyword(name string, size schema.KeywordSize, items ...schema.Item) *schema.Keyword {
	kw := &schema.Keyword{Name: name, Size: size}
	if len(items) > 0 {
		kw.Records = []schema.Record{{Items: items}}
	}
	return kw
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(keyword("DIMENS", schema.FixedSize(1), schema.Item{Name: "NX", Type: value.Int})))
	require.NoError(t, r.Register(keyword("GRID", schema.FixedSize(0))))

	kw, ok := r.Lookup("DIMENS")
	require.True(t, ok)
	assert.Equal(t, "DIMENS", kw.Name)

	_, ok = r.Lookup("dimens")
	assert.False(t, ok, "names are case-sensitive")

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"DIMENS", "GRID"}, r.Names())

	err := r.Register(keyword("GRID", schema.FixedSize(0)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	require.Error(t, r.Register(&schema.Keyword{}))
}

func TestRegistry_Suggest(t *testing.T) {
	r := New()
	for _, name := range []string{"WELSPECS", "WELSEGS", "COMPDAT", "WCONPROD", "WCONINJE"} {
		require.NoError(t, r.Register(keyword(name, schema.FixedSize(0))))
	}

	assert.Equal(t, []string{"WELSPECS"}, r.Suggest("WELSPEC"))
	assert.Equal(t, []string{"WCONINJE"}, r.Suggest("WCONINJ"))
	assert.Empty(t, r.Suggest("TOTALLYDIFFERENT"))
	assert.Empty(t, r.Suggest("COMPDAT"), "exact names are not suggestions")
}

func TestRegistry_Validate(t *testing.T) {
	valid := func() *Registry {
		r := New()
		require.NoError(t, r.Register(keyword("TABDIMS", schema.FixedSize(1),
			schema.Item{Name: "NTSFUN", Type: value.Int, Default: value.IntVal(1)})))
		require.NoError(t, r.Register(&schema.Keyword{
			Name: "SWOF",
			Size: schema.SizedBy("TABDIMS", "NTSFUN", 0),
			Records: []schema.Record{{DataOnly: true, Items: []schema.Item{
				{Name: "DATA", Type: value.Double, Size: schema.Repeated},
			}}},
			Sections: []string{schema.SectionProps},
		}))
		return r
	}

	require.NoError(t, valid().Validate(context.Background()))

	testCases := []struct {
		name string
		kw   *schema.Keyword
		want string
	}{
		{
			name: "unknown size keyword",
			kw:   keyword("EQUIL", schema.SizedBy("EQLDIMS", "NTEQUL", 0), schema.Item{Name: "D", Type: value.Double}),
			want: "size refers to unknown keyword EQLDIMS",
		},
		{
			name: "unknown size item",
			kw:   keyword("SGOF", schema.SizedBy("TABDIMS", "NTPVT", 0), schema.Item{Name: "D", Type: value.Double}),
			want: "size refers to unknown item TABDIMS.NTPVT",
		},
		{
			name: "bad data record",
			kw: &schema.Keyword{Name: "PORO", Size: schema.FixedSize(1), Records: []schema.Record{{DataOnly: true, Items: []schema.Item{
				{Name: "data", Type: value.String, Size: schema.Repeated},
			}}}},
			want: "data record must hold exactly one repeated numeric item",
		},
		{
			name: "default type mismatch",
			kw:   keyword("X", schema.FixedSize(1), schema.Item{Name: "N", Type: value.Int, Default: value.StringVal("abc")}),
			want: "default 'abc' does not fit type int",
		},
		{
			name: "default outside options",
			kw: keyword("Y", schema.FixedSize(1), schema.Item{
				Name: "S", Type: value.String, Default: value.StringVal("SHUT"), Options: []string{"OPEN", "STOP"},
			}),
			want: `default "SHUT" is not one of its options`,
		},
		{
			name: "fixed without records",
			kw:   keyword("Z", schema.FixedSize(2)),
			want: "fixed(2) without a record layout",
		},
		{
			name: "unknown section",
			kw:   &schema.Keyword{Name: "W", Size: schema.FixedSize(0), Sections: []string{"NOWHERE"}},
			want: `unknown section "NOWHERE"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			require.NoError(t, r.Register(tc.kw))

			err := r.Validate(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "keyword "+tc.kw.Name+": ")
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRegistry_ValidateSizeCycle(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(keyword("AAA", schema.SizedBy("BBB", "N", 0), schema.Item{Name: "M", Type: value.Int})))
	require.NoError(t, r.Register(keyword("BBB", schema.SizedBy("AAA", "M", 0), schema.Item{Name: "N", Type: value.Int})))
	require.NoError(t, r.Register(keyword("SELF", schema.SizedBy("SELF", "K", 1), schema.Item{Name: "K", Type: value.Int})))

	err := r.Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size references form a cycle: AAA -> BBB -> AAA")

	g := newSizeGraph(map[string]*schema.Keyword{"SELF": {Name: "SELF", Size: schema.SizedBy("SELF", "K", 0)}})
	assert.EqualError(t, g.detectCycles(), "size references form a cycle: SELF -> SELF")
}

// lineLoader reads one keyword name per line, each a record-less Fixed(0) schema.
type lineLoader struct{}

func (lineLoader) Extensions() []string { return []string{".kw"} }

func (lineLoader) LoadFile(_ context.Context, path string) ([]*schema.Keyword, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []*schema.Keyword
	for _, name := range strings.Fields(string(data)) {
		out = append(out, keyword(name, schema.FixedSize(0)))
	}
	return out, nil
}

func TestRegistry_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.kw"), []byte("RUNSPEC\nGRID\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.kw"), []byte("PROPS"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("SCHEDULE"), 0o644))

	r := New()
	require.NoError(t, r.Load(context.Background(), lineLoader{}, dir))
	assert.Equal(t, []string{"GRID", "PROPS", "RUNSPEC"}, r.Names())
	assert.Equal(t, filepath.Join(dir, "nested", "b.kw"), r.Origin("PROPS"))

	err := r.Load(context.Background(), lineLoader{}, filepath.Join(dir, "a.kw"))
	require.Error(t, err, "loading the same file twice registers duplicates")

	err = New().Load(context.Background(), lineLoader{}, filepath.Join(dir, "missing"))
	require.Error(t, err)
}
