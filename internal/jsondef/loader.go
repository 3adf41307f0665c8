package jsondef

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-jsonnet"
	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Loader reads OPM style keyword documents. It implements registry.Loader.
type Loader struct {
	validator *gojsonschema.Schema
}

// NewLoader compiles the document schema and returns a Loader.
func NewLoader() (*Loader, error) {
	validator, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(documentSchema))
	if err != nil {
		return nil, fmt.Errorf("compile keyword document schema: %w", err)
	}
	return &Loader{validator: validator}, nil
}

func (l *Loader) Extensions() []string {
	return []string{".json", ".yaml", ".yml", ".jsonnet"}
}

// LoadFile reads one document, choosing the format from the file suffix.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*schema.Keyword, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonnet") {
		return l.ParseJsonnet(ctx, string(src), path)
	}
	return l.Parse(ctx, src, path)
}

// ParseJsonnet evaluates a Jsonnet snippet and parses the resulting document.
// Imports resolve against the directory of filename.
func (l *Loader) ParseJsonnet(ctx context.Context, snippet, filename string) ([]*schema.Keyword, error) {
	vm := jsonnet.MakeVM()
	vm.Importer(&jsonnet.FileImporter{JPaths: []string{filepath.Dir(filename)}})
	out, err := vm.EvaluateAnonymousSnippet(filename, snippet)
	if err != nil {
		return nil, fmt.Errorf("evaluate jsonnet %s: %w", filename, err)
	}
	return l.Parse(ctx, []byte(out), filename)
}

// Parse validates and translates a JSON or YAML document.
func (l *Loader) Parse(ctx context.Context, src []byte, filename string) ([]*schema.Keyword, error) {
	logger := ctxlog.FromContext(ctx)

	var generic any
	if err := yaml.Unmarshal(src, &generic); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	if err := l.validate(generic); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(src, &root); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	docs, err := splitDocuments(&root)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	var keywords []*schema.Keyword
	for _, doc := range docs {
		kws, err := translateKeyword(doc)
		if err != nil {
			return nil, fmt.Errorf("%s: keyword %s: %w", filename, doc.Name, err)
		}
		keywords = append(keywords, kws...)
	}

	logger.Debug("Keyword document decoded.", "file", filename, "keywords", len(keywords))
	return keywords, nil
}

func (l *Loader) validate(doc any) error {
	result, err := l.validator.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validate keyword document: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid keyword document:\n- %s", strings.Join(msgs, "\n- "))
}

// splitDocuments accepts either one keyword object or a list of them.
func splitDocuments(root *yaml.Node) ([]*keywordDoc, error) {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	if node.Kind == yaml.SequenceNode {
		var docs []*keywordDoc
		if err := node.Decode(&docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var doc keywordDoc
	if err := node.Decode(&doc); err != nil {
		return nil, err
	}
	return []*keywordDoc{&doc}, nil
}
