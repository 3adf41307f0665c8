package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/deckgo/internal/schema"
)

// Registry maps keyword names to schemas. Names are matched case-sensitively.
type Registry struct {
	keywords map[string]*schema.Keyword
	origin   map[string]string
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		keywords: make(map[string]*schema.Keyword),
		origin:   make(map[string]string),
	}
}

// Register adds a keyword schema. Registering a name twice is an error.
func (r *Registry) Register(kw *schema.Keyword) error {
	return r.register(kw, "")
}

func (r *Registry) register(kw *schema.Keyword, origin string) error {
	if kw == nil || kw.Name == "" {
		return fmt.Errorf("keyword schema without a name (from %q)", origin)
	}
	if _, exists := r.keywords[kw.Name]; exists {
		return fmt.Errorf("keyword %s already registered from %q", kw.Name, r.origin[kw.Name])
	}
	slog.Debug("Registering keyword schema.", "keyword", kw.Name, "size", kw.Size.String(), "origin", origin)
	r.keywords[kw.Name] = kw
	r.origin[kw.Name] = origin
	return nil
}

// Lookup implements schema.Registry.
func (r *Registry) Lookup(name string) (*schema.Keyword, bool) {
	kw, ok := r.keywords[name]
	return kw, ok
}

// Origin returns the file a keyword was loaded from, empty for direct registrations.
func (r *Registry) Origin(name string) string { return r.origin[name] }

// Len returns the number of registered keywords.
func (r *Registry) Len() int { return len(r.keywords) }

// Names returns all registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.keywords))
	for name := range r.keywords {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
