// Package record reads one record of a keyword from the token stream.
//
// The reader is driven by a schema.Record: it walks the item layout, reads
// one token per Single item and everything up to the terminator for a
// Repeated item, expands `N*value` and `N*` multipliers and fills defaulted
// slots from the schema. It never decides where a keyword ends; that belongs
// to the parser package.
package record
