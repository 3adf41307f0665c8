package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/deckgo/internal/ctxlog"
	"github.com/specialistvlad/deckgo/internal/hcldef"
	"github.com/specialistvlad/deckgo/internal/jsondef"
	"github.com/specialistvlad/deckgo/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	logger   *slog.Logger
	logClose io.Closer
	registry *registry.Registry
	config   *Config
}

// NewApp is the constructor for the main application. Log output goes to logW
// unless the config names a log file. Schemas are not loaded until
// LoadSchemas is called.
func NewApp(logW io.Writer, cfg *Config) *App {
	logger, closer := newLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, logW)
	logger.Debug("Logger configured successfully.")

	return &App{
		logger:   logger,
		logClose: closer,
		registry: registry.New(),
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Close releases the log file, if any.
func (a *App) Close() error {
	return a.logClose.Close()
}

// withLogger attaches the app logger to ctx.
func (a *App) withLogger(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// LoadSchemas reads every configured schema path with both the HCL and the
// JSON/YAML/Jsonnet loader, then validates the registry as a whole.
func (a *App) LoadSchemas(ctx context.Context) error {
	ctx = a.withLogger(ctx)
	a.logger.Debug("Loading keyword schemas...", "paths", a.config.SchemaPaths)

	jsonLoader, err := jsondef.NewLoader()
	if err != nil {
		return fmt.Errorf("failed to create definition loader: %w", err)
	}
	for _, loader := range []registry.Loader{hcldef.NewLoader(), jsonLoader} {
		if err := a.registry.Load(ctx, loader, a.config.SchemaPaths...); err != nil {
			return fmt.Errorf("failed to load schemas: %w", err)
		}
	}
	if a.registry.Len() == 0 {
		return fmt.Errorf("no keyword schemas found in %v", a.config.SchemaPaths)
	}

	if err := a.registry.Validate(ctx); err != nil {
		return err
	}
	a.logger.Debug("Registry validation passed.", "keywords", a.registry.Len())
	return nil
}
