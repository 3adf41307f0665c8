package hcldef

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/schema"
)

// Extension is the manifest file suffix.
const Extension = ".hcl"

// Loader reads HCL keyword manifests. It implements registry.Loader.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

func (l *Loader) Extensions() []string { return []string{Extension} }

// fileRoot decodes the top level of a manifest.
type fileRoot struct {
	Keywords []*keywordBlock `hcl:"keyword,block"`
	Remain   hcl.Body        `hcl:",remain"`
}

type keywordBlock struct {
	Name              string         `hcl:"name,label"`
	Description       string         `hcl:"description,optional"`
	Sections          []string       `hcl:"sections,optional"`
	Size              hcl.Expression `hcl:"size,optional"`
	SizeFrom          *sizeFromBlock `hcl:"size_from,block"`
	Alternating       bool           `hcl:"alternating,optional"`
	RequireTerminator bool           `hcl:"require_terminator,optional"`
	Records           []*recordBlock `hcl:"record,block"`
	Data              *dataBlock     `hcl:"data,block"`
}

type sizeFromBlock struct {
	Keyword string `hcl:"keyword"`
	Item    string `hcl:"item"`
	Shift   int    `hcl:"shift,optional"`
}

type recordBlock struct {
	Items []*itemBlock `hcl:"item,block"`
}

type itemBlock struct {
	Name        string         `hcl:"name,label"`
	Type        hcl.Expression `hcl:"type"`
	Repeated    bool           `hcl:"repeated,optional"`
	Default     hcl.Expression `hcl:"default,optional"`
	Dimensions  []string       `hcl:"dimensions,optional"`
	Options     []string       `hcl:"options,optional"`
	Description string         `hcl:"description,optional"`
}

type dataBlock struct {
	Type       hcl.Expression `hcl:"type"`
	Default    hcl.Expression `hcl:"default,optional"`
	Dimensions []string       `hcl:"dimensions,optional"`
}

// LoadFile parses one manifest file.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*schema.Keyword, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return l.decode(ctx, file.Body, path)
}

// Parse reads a manifest held in memory. filename only labels diagnostics.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) ([]*schema.Keyword, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return l.decode(ctx, file.Body, filename)
}

func (l *Loader) decode(ctx context.Context, body hcl.Body, filename string) ([]*schema.Keyword, error) {
	logger := ctxlog.FromContext(ctx)

	var root fileRoot
	if diags := gohcl.DecodeBody(body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	keywords := make([]*schema.Keyword, 0, len(root.Keywords))
	for _, block := range root.Keywords {
		kw, err := translateKeyword(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("%s: keyword %s: %w", filename, block.Name, err)
		}
		keywords = append(keywords, kw)
	}

	logger.Debug("HCL manifest decoded.", "file", filename, "keywords", len(keywords))
	return keywords, nil
}
