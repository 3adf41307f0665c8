package jsondef

// documentSchema is the JSON Schema every keyword document must satisfy.
const documentSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "definitions": {
    "dimension": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "item": {
      "type": "object",
      "required": ["name", "value_type"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "value_type": {"type": "string", "enum": ["INT", "DOUBLE", "STRING", "RAW_STRING", "UDA"]},
        "size_type": {"type": "string", "enum": ["SINGLE", "ALL"]},
        "dimension": {"$ref": "#/definitions/dimension"},
        "description": {"type": "string"},
        "comment": {"type": "string"}
      }
    },
    "items": {"type": "array", "items": {"$ref": "#/definitions/item"}},
    "sizeRef": {
      "type": "object",
      "required": ["keyword", "item"],
      "properties": {
        "keyword": {"type": "string"},
        "item": {"type": "string"},
        "shift": {"type": "integer"}
      }
    },
    "keyword": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "name": {"type": "string", "pattern": "^[A-Za-z][A-Za-z0-9_+-]*$"},
        "deck_names": {"type": "array", "items": {"type": "string"}},
        "sections": {"type": "array", "items": {"type": "string"}},
        "description": {"type": "string"},
        "comment": {"type": "string"},
        "size": {
          "oneOf": [
            {"type": "integer", "minimum": 0},
            {"type": "string"},
            {"$ref": "#/definitions/sizeRef"}
          ]
        },
        "num_tables": {"$ref": "#/definitions/sizeRef"},
        "items": {"$ref": "#/definitions/items"},
        "records": {"type": "array", "items": {"$ref": "#/definitions/items"}},
        "alternating_records": {"type": "array", "items": {"$ref": "#/definitions/items"}},
        "data": {
          "type": "object",
          "required": ["value_type"],
          "properties": {
            "value_type": {"type": "string", "enum": ["INT", "DOUBLE"]},
            "dimension": {"$ref": "#/definitions/dimension"}
          }
        }
      },
      "not": {
        "anyOf": [
          {"required": ["items", "records"]},
          {"required": ["items", "alternating_records"]},
          {"required": ["records", "alternating_records"]},
          {"required": ["data", "items"]},
          {"required": ["data", "records"]}
        ]
      }
    }
  },
  "oneOf": [
    {"$ref": "#/definitions/keyword"},
    {"type": "array", "items": {"$ref": "#/definitions/keyword"}}
  ]
}`
