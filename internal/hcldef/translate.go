package hcldef

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// dataItemName names the single item of a data block.
const dataItemName = "data"

func translateKeyword(ctx context.Context, b *keywordBlock) (*schema.Keyword, error) {
	logger := ctxlog.FromContext(ctx).With("keyword", b.Name)

	kw := &schema.Keyword{
		Name:              b.Name,
		Description:       b.Description,
		Sections:          b.Sections,
		Alternating:       b.Alternating,
		RequireTerminator: b.RequireTerminator,
	}

	if b.Data != nil && len(b.Records) > 0 {
		return nil, errors.New("data and record blocks are mutually exclusive")
	}
	if b.Data != nil {
		rec, err := translateData(b.Data)
		if err != nil {
			return nil, fmt.Errorf("data: %w", err)
		}
		kw.Records = []schema.Record{rec}
	}
	for i, rb := range b.Records {
		rec, err := translateRecord(rb)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		kw.Records = append(kw.Records, rec)
	}

	size, err := translateSize(b, len(kw.Records))
	if err != nil {
		return nil, err
	}
	kw.Size = size

	logger.Debug("Translated keyword block.", "size", kw.Size.String(), "records", len(kw.Records))
	return kw, nil
}

func translateSize(b *keywordBlock, records int) (schema.KeywordSize, error) {
	val, diags := b.Size.Value(nil)
	if diags.HasErrors() {
		return schema.KeywordSize{}, fmt.Errorf("size: %w", diags)
	}

	if b.SizeFrom != nil {
		if !val.IsNull() {
			return schema.KeywordSize{}, errors.New("size and size_from are mutually exclusive")
		}
		return schema.SizedBy(b.SizeFrom.Keyword, b.SizeFrom.Item, b.SizeFrom.Shift), nil
	}

	if val.IsNull() {
		if records == 0 {
			return schema.FixedSize(0), nil
		}
		return schema.FixedSize(1), nil
	}

	switch val.Type() {
	case cty.Number:
		bf := val.AsBigFloat()
		n, acc := bf.Int64()
		if !bf.IsInt() || acc != 0 || n < 0 {
			return schema.KeywordSize{}, fmt.Errorf("size must be a non-negative whole number, got %s", bf.String())
		}
		return schema.FixedSize(int(n)), nil
	case cty.String:
		if s := val.AsString(); s == "/" || s == "until_terminator" {
			return schema.SlashTerminated(), nil
		}
		return schema.KeywordSize{}, fmt.Errorf("size must be a number or \"/\", got %q", val.AsString())
	}
	return schema.KeywordSize{}, fmt.Errorf("size must be a number or \"/\", got %s", val.Type().FriendlyName())
}

func translateRecord(rb *recordBlock) (schema.Record, error) {
	rec := schema.Record{Items: make([]schema.Item, 0, len(rb.Items))}
	for _, ib := range rb.Items {
		typ, err := typeExprToValueType(ib.Type)
		if err != nil {
			return schema.Record{}, fmt.Errorf("item %s: %w", ib.Name, err)
		}
		def, err := defaultValue(ib.Default, typ)
		if err != nil {
			return schema.Record{}, fmt.Errorf("item %s: %w", ib.Name, err)
		}

		size := schema.Single
		if ib.Repeated {
			size = schema.Repeated
		}
		rec.Items = append(rec.Items, schema.Item{
			Name:        ib.Name,
			Type:        typ,
			Size:        size,
			Default:     def,
			Dimensions:  ib.Dimensions,
			Options:     ib.Options,
			Description: ib.Description,
		})
	}
	return rec, nil
}

func translateData(db *dataBlock) (schema.Record, error) {
	typ, err := typeExprToValueType(db.Type)
	if err != nil {
		return schema.Record{}, err
	}
	if !typ.Numeric() {
		return schema.Record{}, fmt.Errorf("data type must be numeric, got %s", typ)
	}
	def, err := defaultValue(db.Default, typ)
	if err != nil {
		return schema.Record{}, err
	}
	return schema.Record{
		DataOnly: true,
		Items: []schema.Item{{
			Name:       dataItemName,
			Type:       typ,
			Size:       schema.Repeated,
			Default:    def,
			Dimensions: db.Dimensions,
		}},
	}, nil
}
