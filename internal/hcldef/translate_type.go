// This file turns HCL type keywords (`int`, `double`, `string`) and default
// expressions into the value model.

package hcldef

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/deckgo/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// typeExprToValueType reads a type keyword. Bare identifiers are preferred;
// quoted names are accepted too.
func typeExprToValueType(expr hcl.Expression) (value.Type, error) {
	if expr == nil {
		return value.Invalid, errors.New("type is required")
	}

	switch v := expr.(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(v.Traversal) != 1 {
			return value.Invalid, fmt.Errorf("invalid type keyword: traversal path is not a single identifier")
		}
		return value.ParseType(v.Traversal.RootName())
	default:
		val, diags := expr.Value(nil)
		if diags.HasErrors() {
			return value.Invalid, fmt.Errorf("invalid type expression: %w", diags)
		}
		if val.IsNull() || !val.Type().Equals(cty.String) {
			return value.Invalid, fmt.Errorf("type must be one of int, double or string")
		}
		return value.ParseType(val.AsString())
	}
}

// defaultValue evaluates a default expression for an item of type t. A missing
// default yields the zero Value.
func defaultValue(expr hcl.Expression, t value.Type) (value.Value, error) {
	if expr == nil {
		return value.Value{}, nil
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return value.Value{}, fmt.Errorf("default: %w", diags)
	}
	if val.IsNull() {
		return value.Value{}, nil
	}
	return ctyToValue(val, t)
}

// ctyToValue converts a known cty value to the value model.
func ctyToValue(val cty.Value, t value.Type) (value.Value, error) {
	if !val.IsKnown() {
		return value.Value{}, errors.New("default must be a known value")
	}

	switch t {
	case value.String:
		s, err := convert.Convert(val, cty.String)
		if err != nil {
			return value.Value{}, fmt.Errorf("default: %w", err)
		}
		return value.StringVal(s.AsString()), nil
	case value.Int, value.Double:
		n, err := convert.Convert(val, cty.Number)
		if err != nil {
			return value.Value{}, fmt.Errorf("default: %w", err)
		}
		bf := n.AsBigFloat()
		if t == value.Double {
			f, _ := bf.Float64()
			return value.DoubleVal(f), nil
		}
		i, acc := bf.Int64()
		if !bf.IsInt() || acc != 0 {
			return value.Value{}, fmt.Errorf("default %s is not a whole number", bf.String())
		}
		return value.IntVal(i), nil
	}
	return value.Value{}, fmt.Errorf("unsupported item type %s", t)
}
