package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/fsutil"
	"github.com/specialistvlad/deckgo/internal/schema"
)

// Loader decodes keyword schemas from one manifest format.
type Loader interface {
	// Extensions lists the file suffixes the loader understands, dot included.
	Extensions() []string
	LoadFile(ctx context.Context, path string) ([]*schema.Keyword, error)
}

// Load registers every schema found in paths. A path may be a single file or
// a directory searched recursively for the loader's extensions.
func (r *Registry) Load(ctx context.Context, loader Loader, paths ...string) error {
	logger := ctxlog.FromContext(ctx)

	for _, root := range paths {
		logger.Debug("Registry loading keyword schemas...", "path", root, "extensions", loader.Extensions())

		files, err := fsutil.FindFilesByExtension(root, loader.Extensions()...)
		if err != nil {
			logger.Error("Failed to walk schema path", "path", root, "error", err)
			return fmt.Errorf("find schema files in %s: %w", root, err)
		}
		if len(files) == 0 {
			logger.Debug("No schema files for loader in path", "path", root, "extensions", loader.Extensions())
			continue
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			keywords, err := loader.LoadFile(ctx, file)
			if err != nil {
				return fmt.Errorf("load keyword schemas from %s: %w", file, err)
			}
			for _, kw := range keywords {
				if err := r.register(kw, file); err != nil {
					return err
				}
			}
			logger.Debug("Loaded keyword schemas from file", "file", file, "keywords", len(keywords))
		}
	}

	logger.Info("Registry loaded.", "keywords", r.Len())
	return nil
}
