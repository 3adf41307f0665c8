// Package jsondef loads keyword schemas written in the OPM keyword format.
//
// Each document describes one keyword, or a list of keywords:
//
//	{
//	  "name": "SWOF",
//	  "sections": ["PROPS"],
//	  "num_tables": {"keyword": "TABDIMS", "item": "NTSFUN"},
//	  "items": [
//	    {"name": "DATA", "value_type": "DOUBLE", "size_type": "ALL",
//	     "dimension": ["1", "1", "1", "Pressure"]}
//	  ]
//	}
//
// Documents may be JSON, YAML or Jsonnet. Every document is checked against a
// JSON Schema before it is translated.
package jsondef
