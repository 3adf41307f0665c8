package jsondef

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/specialistvlad/deckgo/internal/value"
	"gopkg.in/yaml.v3"
)

type keywordDoc struct {
	Name               string      `yaml:"name"`
	DeckNames          []string    `yaml:"deck_names"`
	Sections           []string    `yaml:"sections"`
	Description        string      `yaml:"description"`
	Comment            string      `yaml:"comment"`
	Size               yaml.Node   `yaml:"size"`
	NumTables          yaml.Node   `yaml:"num_tables"`
	Items              []itemDoc   `yaml:"items"`
	Records            [][]itemDoc `yaml:"records"`
	AlternatingRecords [][]itemDoc `yaml:"alternating_records"`
	Data               *dataDoc    `yaml:"data"`
}

type itemDoc struct {
	Name        string    `yaml:"name"`
	ValueType   string    `yaml:"value_type"`
	SizeType    string    `yaml:"size_type"`
	Default     yaml.Node `yaml:"default"`
	Dimension   yaml.Node `yaml:"dimension"`
	Description string    `yaml:"description"`
	Comment     string    `yaml:"comment"`
}

type dataDoc struct {
	ValueType string    `yaml:"value_type"`
	Default   yaml.Node `yaml:"default"`
	Dimension yaml.Node `yaml:"dimension"`
}

type sizeRef struct {
	Keyword string `yaml:"keyword"`
	Item    string `yaml:"item"`
	Shift   int    `yaml:"shift"`
}

// translateKeyword returns one schema per deck name of the document.
func translateKeyword(doc *keywordDoc) ([]*schema.Keyword, error) {
	kw := &schema.Keyword{
		Name:        doc.Name,
		Description: doc.Description,
		Sections:    doc.Sections,
	}
	if kw.Description == "" {
		kw.Description = doc.Comment
	}

	var err error
	switch {
	case doc.Data != nil:
		var rec schema.Record
		rec, err = translateData(doc.Data)
		kw.Records = []schema.Record{rec}
	case len(doc.Items) > 0:
		kw.Records, err = translateRecords([][]itemDoc{doc.Items})
	case len(doc.Records) > 0:
		kw.Records, err = translateRecords(doc.Records)
	case len(doc.AlternatingRecords) > 0:
		kw.Records, err = translateRecords(doc.AlternatingRecords)
		kw.Alternating = true
	}
	if err != nil {
		return nil, err
	}

	if kw.Size, err = translateSize(doc); err != nil {
		return nil, err
	}

	if len(doc.DeckNames) == 0 {
		return []*schema.Keyword{kw}, nil
	}
	out := make([]*schema.Keyword, 0, len(doc.DeckNames))
	for _, name := range doc.DeckNames {
		alias := *kw
		alias.Name = name
		out = append(out, &alias)
	}
	return out, nil
}

// translateSize follows the precedence of the keyword format: an explicit
// size, then num_tables, then the shape of the record description.
func translateSize(doc *keywordDoc) (schema.KeywordSize, error) {
	if doc.Size.Kind != 0 {
		return decodeSize(&doc.Size)
	}
	if doc.NumTables.Kind != 0 {
		var ref sizeRef
		if err := doc.NumTables.Decode(&ref); err != nil {
			return schema.KeywordSize{}, fmt.Errorf("num_tables: %w", err)
		}
		return schema.SizedBy(ref.Keyword, ref.Item, ref.Shift), nil
	}
	switch {
	case doc.Data != nil:
		return schema.FixedSize(1), nil
	case len(doc.Items) > 0, len(doc.Records) > 0, len(doc.AlternatingRecords) > 0:
		return schema.SlashTerminated(), nil
	}
	return schema.FixedSize(0), nil
}

func decodeSize(node *yaml.Node) (schema.KeywordSize, error) {
	switch node.Kind {
	case yaml.MappingNode:
		var ref sizeRef
		if err := node.Decode(&ref); err != nil {
			return schema.KeywordSize{}, fmt.Errorf("size: %w", err)
		}
		return schema.SizedBy(ref.Keyword, ref.Item, ref.Shift), nil
	case yaml.ScalarNode:
		var n int
		if err := node.Decode(&n); err == nil {
			return schema.FixedSize(n), nil
		}
		if node.Value == "SLASH_TERMINATED" {
			return schema.SlashTerminated(), nil
		}
		return schema.KeywordSize{}, fmt.Errorf("unsupported size type %q", node.Value)
	}
	return schema.KeywordSize{}, errors.New("size must be a number, a string or an object")
}

func translateRecords(records [][]itemDoc) ([]schema.Record, error) {
	out := make([]schema.Record, 0, len(records))
	for ri, items := range records {
		rec := schema.Record{Items: make([]schema.Item, 0, len(items))}
		for _, doc := range items {
			it, err := translateItem(&doc)
			if err != nil {
				return nil, fmt.Errorf("record %d item %s: %w", ri+1, doc.Name, err)
			}
			rec.Items = append(rec.Items, it)
		}
		out = append(out, rec)
	}
	return out, nil
}

func translateItem(doc *itemDoc) (schema.Item, error) {
	typ, err := valueType(doc.ValueType)
	if err != nil {
		return schema.Item{}, err
	}
	def, err := decodeDefault(&doc.Default, typ)
	if err != nil {
		return schema.Item{}, err
	}
	dims, err := decodeDimensions(&doc.Dimension)
	if err != nil {
		return schema.Item{}, err
	}

	size := schema.Single
	if doc.SizeType == "ALL" {
		size = schema.Repeated
	}
	desc := doc.Description
	if desc == "" {
		desc = doc.Comment
	}
	return schema.Item{
		Name:        doc.Name,
		Type:        typ,
		Size:        size,
		Default:     def,
		Dimensions:  dims,
		Description: desc,
	}, nil
}

func translateData(doc *dataDoc) (schema.Record, error) {
	typ, err := valueType(doc.ValueType)
	if err != nil {
		return schema.Record{}, fmt.Errorf("data: %w", err)
	}
	def, err := decodeDefault(&doc.Default, typ)
	if err != nil {
		return schema.Record{}, fmt.Errorf("data: %w", err)
	}
	dims, err := decodeDimensions(&doc.Dimension)
	if err != nil {
		return schema.Record{}, fmt.Errorf("data: %w", err)
	}
	return schema.Record{
		DataOnly: true,
		Items: []schema.Item{{
			Name:       "data",
			Type:       typ,
			Size:       schema.Repeated,
			Default:    def,
			Dimensions: dims,
		}},
	}, nil
}

// valueType maps the format's value types. RAW_STRING reads as a plain string
// and UDA items, which accept a number or a user defined quantity, as doubles.
func valueType(s string) (value.Type, error) {
	switch s {
	case "RAW_STRING":
		return value.String, nil
	case "UDA":
		return value.Double, nil
	}
	return value.ParseType(s)
}

func decodeDefault(node *yaml.Node, t value.Type) (value.Value, error) {
	if node.Kind == 0 {
		return value.Value{}, nil
	}
	switch t {
	case value.Int:
		var n int64
		if err := node.Decode(&n); err != nil {
			return value.Value{}, fmt.Errorf("default %q is not an integer", node.Value)
		}
		return value.IntVal(n), nil
	case value.Double:
		var f float64
		if err := node.Decode(&f); err != nil {
			return value.Value{}, fmt.Errorf("default %q is not a number", node.Value)
		}
		return value.DoubleVal(f), nil
	case value.String:
		var s string
		if err := node.Decode(&s); err != nil {
			return value.Value{}, fmt.Errorf("default: %w", err)
		}
		return value.StringVal(s), nil
	}
	return value.Value{}, fmt.Errorf("unsupported value type %s", t)
}

func decodeDimensions(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	}
	var dims []string
	if err := node.Decode(&dims); err != nil {
		return nil, fmt.Errorf("dimension: %w", err)
	}
	return dims, nil
}
