package cli

import (
	"context"
	"fmt"

	"github.com/specialistvlad/deckgo/internal/app"
	"github.com/spf13/cobra"
)

func newParseCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse DECK",
		Short: "Parse a deck and print a keyword summary",
		Args:  deckArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app.App) error {
				d, err := a.Parse(ctx, args[0])
				if err != nil {
					return err
				}
				return a.Summarize(cmd.OutOrStdout(), d)
			})
		},
	}
}

func newCheckCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check DECK",
		Short: "Parse a deck and check its section order",
		Long:  "Parse a deck and check its section order. Exits non-zero when any warning is found.",
		Args:  deckArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app.App) error {
				d, err := a.Parse(ctx, args[0])
				if err != nil {
					return err
				}
				ws := append(d.Warnings(), a.Check(d)...)
				if err := app.WriteWarnings(cmd.OutOrStdout(), ws); err != nil {
					return err
				}
				if len(ws) > 0 {
					return fmt.Errorf("%s: %d warning(s)", args[0], len(ws))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d keywords\n", args[0], d.Len())
				return nil
			})
		},
	}
}

func newFormatCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "format DECK",
		Short: "Parse a deck and write it back in normalised form",
		Args:  deckArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(ctx context.Context, a *app.App) error {
				d, err := a.Parse(ctx, args[0])
				if err != nil {
					return err
				}
				return a.Format(cmd.OutOrStdout(), d)
			})
		},
	}
}

func newExportCommand(f *flags) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "export DECK",
		Short: "Parse a deck and store it in a SQLite database",
		Args:  deckArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return usageError("export requires --db")
			}
			return withApp(cmd, f, func(ctx context.Context, a *app.App) error {
				d, err := a.Parse(ctx, args[0])
				if err != nil {
					return err
				}
				if err := a.Export(ctx, d, dbPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d keywords to %s\n", d.Len(), dbPath)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database file to write.")
	return cmd
}

func newSchemasCommand(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List the loaded keyword schemas",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageError("schemas takes no arguments")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, f, func(_ context.Context, a *app.App) error {
				return a.ListSchemas(cmd.OutOrStdout())
			})
		},
	}
}
