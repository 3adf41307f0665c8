package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/specialistvlad/deckgo/internal/value"
)

// Validate checks that the registered schemas are internally consistent:
// size references point at integer items of known keywords, data records hold
// a single numeric array, and defaults fit their items.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs []string

	for _, name := range r.Names() {
		kw := r.keywords[name]
		add := func(format string, args ...any) {
			errs = append(errs, fmt.Sprintf("keyword %s: ", name)+fmt.Sprintf(format, args...))
		}

		switch kw.Size.Policy {
		case schema.Fixed:
			if kw.Size.Count < 0 {
				add("negative record count %d", kw.Size.Count)
			}
			if kw.Size.Count > 0 && len(kw.Records) == 0 {
				add("%s without a record layout", kw.Size)
			}
		case schema.UntilTerminator:
			if len(kw.Records) == 0 {
				add("slash terminated keyword without a record layout")
			}
		case schema.DependsOn:
			if len(kw.Records) == 0 {
				add("%s without a record layout", kw.Size)
			}
			if msg := r.checkSizeReference(kw.Size); msg != "" {
				add("%s", msg)
			}
		}

		for _, s := range kw.Sections {
			if !schema.IsSectionHeader(s) {
				add("unknown section %q", s)
			}
		}

		for ri, rec := range kw.Records {
			for _, msg := range checkRecord(&rec) {
				add("record %d: %s", ri+1, msg)
			}
		}

		if kw.Alternating && len(kw.Records) < 2 {
			logger.Warn("Alternating keyword has a single record layout.", "keyword", name)
		}
	}

	if err := newSizeGraph(r.keywords).detectCycles(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	logger.Debug("Registry validated.", "keywords", r.Len())
	return nil
}

func (r *Registry) checkSizeReference(size schema.KeywordSize) string {
	target, ok := r.keywords[size.Keyword]
	if !ok {
		return fmt.Sprintf("size refers to unknown keyword %s", size.Keyword)
	}
	if len(target.Records) == 0 {
		return fmt.Sprintf("size refers to %s which has no records", size.Keyword)
	}
	for _, it := range target.Records[0].Items {
		if it.Name != size.Item {
			continue
		}
		if it.Type != value.Int || it.Size != schema.Single {
			return fmt.Sprintf("size refers to %s.%s which is not a single integer", size.Keyword, size.Item)
		}
		return ""
	}
	return fmt.Sprintf("size refers to unknown item %s.%s", size.Keyword, size.Item)
}

func checkRecord(rec *schema.Record) []string {
	var out []string
	if rec.DataOnly {
		if len(rec.Items) != 1 || rec.Items[0].Size != schema.Repeated || !rec.Items[0].Type.Numeric() {
			out = append(out, "data record must hold exactly one repeated numeric item")
		}
	}

	seen := make(map[string]bool, len(rec.Items))
	for i, it := range rec.Items {
		if it.Name == "" {
			out = append(out, fmt.Sprintf("item %d has no name", i+1))
		} else if seen[it.Name] {
			out = append(out, fmt.Sprintf("duplicate item %s", it.Name))
		}
		seen[it.Name] = true

		if it.Type == value.Invalid {
			out = append(out, fmt.Sprintf("item %s has no type", it.Name))
			continue
		}
		if len(it.Options) > 0 && it.Type != value.String {
			out = append(out, fmt.Sprintf("item %s: options are only allowed on string items", it.Name))
		}
		if !it.HasDefault() {
			continue
		}
		def, err := it.Default.Convert(it.Type)
		if err != nil {
			out = append(out, fmt.Sprintf("item %s: default %s does not fit type %s", it.Name, it.Default, it.Type))
			continue
		}
		if s, ok := def.Str(); ok && len(it.Options) > 0 && !slices.Contains(it.Options, s) {
			out = append(out, fmt.Sprintf("item %s: default %q is not one of its options", it.Name, s))
		}
	}
	return out
}
