package parser

import (
	"context"
	"io"
)

// DefaultMaxIncludeDepth bounds nested INCLUDE directives.
const DefaultMaxIncludeDepth = 32

// SizeResolver answers the record count of a DependsOn keyword. The
// deck.Builder of the running parse is used when Options.SizeResolver is nil.
type SizeResolver interface {
	ResolveSize(keyword, item string) (int, error)
}

// Opener opens deck sources by name, both the main file and INCLUDE targets.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, name string) (io.ReadCloser, error)

func (f OpenerFunc) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return f(ctx, name)
}

// Suggester is implemented by registries that can propose names close to an
// unknown keyword.
type Suggester interface {
	Suggest(name string) []string
}

// Options configure a Parser.
type Options struct {
	// Strict turns unknown keywords, stray tokens and malformed records of
	// slash-terminated keywords into errors. Otherwise they are skipped with
	// a warning.
	Strict bool

	// InitialSection is the section active before the first section header.
	// Empty disables section checks until a header is seen.
	InitialSection string

	SizeResolver SizeResolver

	// Opener resolves INCLUDE targets. Nil makes INCLUDE an error.
	Opener Opener

	MaxIncludeDepth int
}
