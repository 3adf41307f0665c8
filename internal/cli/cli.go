package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/specialistvlad/deckgo/internal/app"
	"github.com/spf13/cobra"
)

// Exit codes.
const (
	CodeFailure = 1
	CodeUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: CodeUsage, Message: fmt.Sprintf(format, args...)}
}

func failure(err error) error {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &ExitError{Code: CodeFailure, Message: err.Error()}
}

// flags are the global options shared by every command.
type flags struct {
	schemas   []string
	strict    bool
	section   string
	logLevel  string
	logFormat string
	logFile   string
}

func (f *flags) config() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		SchemaPaths:    f.schemas,
		Strict:         f.strict,
		InitialSection: f.section,
		LogFormat:      f.logFormat,
		LogLevel:       f.logLevel,
		LogFile:        f.logFile,
	})
	if err != nil {
		return nil, usageError("%v", err)
	}
	return cfg, nil
}

// NewRootCommand builds the deckgo command tree. Command output goes to outW;
// logs and warnings go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "deckgo",
		Short: "Schema-driven parser for reservoir simulator input decks",
		Long: `deckgo reads keyword-based simulator input decks using keyword schemas
loaded from HCL, JSON, YAML or Jsonnet manifests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError("%v", err)
	})

	pf := root.PersistentFlags()
	pf.StringArrayVarP(&f.schemas, "schemas", "s", nil, "Schema file or directory (repeatable).")
	pf.BoolVar(&f.strict, "strict", true, "Fail on unknown keywords and malformed records instead of skipping them.")
	pf.StringVar(&f.section, "section", "", "Section active before the first section keyword.")
	pf.StringVar(&f.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&f.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logFile, "log-file", "", "Write logs to a rotated file instead of stderr.")

	root.AddCommand(
		newParseCommand(f),
		newCheckCommand(f),
		newFormatCommand(f),
		newExportCommand(f),
		newSchemasCommand(f),
	)
	return root
}

// Execute runs the command tree with args. Every error it returns is an
// *ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		// Cobra's own failures: unknown commands and argument counts.
		return usageError("%v", err)
	}
	return nil
}

// withApp loads schemas and hands a ready App to fn.
func withApp(cmd *cobra.Command, f *flags, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := f.config()
	if err != nil {
		return err
	}
	a := app.NewApp(cmd.ErrOrStderr(), cfg)
	defer a.Close()

	ctx := cmd.Context()
	if err := a.LoadSchemas(ctx); err != nil {
		return failure(err)
	}
	if err := fn(ctx, a); err != nil {
		return failure(err)
	}
	return nil
}

func deckArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError("%s requires exactly one deck file, got %d", cmd.Name(), len(args))
	}
	return nil
}
