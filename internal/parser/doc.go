// Package parser turns deck text into a deck.Deck.
//
// The parser is a small state machine. It looks for a keyword header at the
// start of a line, resolves the keyword schema through a schema.Registry,
// works out how many records to read from the schema's size policy and hands
// each record to the record package. Finished keywords are appended to a
// deck.Builder together with the section that was active at the time.
//
// The INCLUDE, PATHS, ENDINC and END directives are interpreted here and never
// appear in the resulting deck. Included files are read through an Opener and
// every file opened during a parse is closed before Parse returns.
package parser
