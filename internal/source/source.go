// Package source opens deck files for the parser, transparently
// decompressing gzip and zstd archives.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/specialistvlad/deckgo/internal/ctxlog"
)

// Open opens a deck file. Files ending in .gz or .zst are decompressed on the
// fly. Closing the result closes the underlying file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip %s: %w", path, err)
		}
		return &stacked{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd %s: %w", path, err)
		}
		return &stacked{Reader: zr, closers: []io.Closer{closerFunc(zr.Close), f}}, nil
	}
	return f, nil
}

// stacked closes a decompressor and the file beneath it.
type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// Files opens deck sources from the local file system. It satisfies
// parser.Opener. A name that does not exist is retried with the compressed
// suffixes, so INCLUDE 'grid.inc' also finds grid.inc.gz.
type Files struct{}

func (Files) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	logger := ctxlog.FromContext(ctx)

	rc, err := Open(name)
	if err == nil || !os.IsNotExist(err) {
		return rc, err
	}
	for _, ext := range []string{".gz", ".zst"} {
		if rc, zerr := Open(name + ext); zerr == nil {
			logger.Debug("Opened compressed deck source.", "name", name, "file", name+ext)
			return rc, nil
		}
	}
	return nil, err
}
