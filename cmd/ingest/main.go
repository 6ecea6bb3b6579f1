// Command ingest is the CKPL registration ingest CLI.
//
// Usage:
//
//	ckpl-ingest check-duplicates [file.csv]
//	ckpl-ingest import [file.csv] --mode strict --dry-run
//	ckpl-ingest import [file.csv] --mode lenient --batch-size 50
//	ckpl-ingest positions audit
//	ckpl-ingest positions backfill --sport Football --style itemized --yes
//	ckpl-ingest positions interactive
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ckpl/auction-ingest/internal/backfill"
	"github.com/ckpl/auction-ingest/internal/config"
	"github.com/ckpl/auction-ingest/internal/reconcile"
	"github.com/ckpl/auction-ingest/internal/registration"
	"github.com/ckpl/auction-ingest/internal/store"
)

var (
	logLevel = new(slog.LevelVar)
	logger   = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
)

func main() {
	// Load .env.local, then .env, if present
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "ckpl-ingest",
		Short: "CKPL player registration ingest CLI",
	}

	root.AddCommand(checkDuplicatesCmd())
	root.AddCommand(importCmd())
	root.AddCommand(positionsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// csvPath returns the positional CSV argument or the configured default.
func csvPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultCSVPath()
}

// --------------------------------------------------------------------------
// check-duplicates command
// --------------------------------------------------------------------------

func checkDuplicatesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "check-duplicates [file.csv]",
		Short: "Report repeated (name, sport) registrations in a CSV export",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := csvPath(args)
			rows, err := registration.ReadFile(path)
			if err != nil {
				return err
			}
			report := registration.CheckDuplicates(rows)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			for _, line := range report.EmptyNames {
				logger.Warn("Row has no name", "line", line)
			}
			for _, d := range report.Duplicates {
				logger.Info("Duplicate registration", "line", d.Line, "name", d.Name, "sport", d.Sport, "first_line", d.FirstLine)
			}
			logger.Info("Duplicate check finished", "file", path, "summary", report.Summary())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

// --------------------------------------------------------------------------
// import command
// --------------------------------------------------------------------------

func importCmd() *cobra.Command {
	var (
		modeName      string
		dryRun        bool
		checkExisting bool
		batchSize     int
	)
	cmd := &cobra.Command{
		Use:   "import [file.csv]",
		Short: "Import registrations into the players table",
		Long: `Import registrations into the players table.

Modes:
  strict   any unknown sport or missing reference aborts before writing
  lenient  bad rows are skipped, missing sports are created and players
           already in the store are left alone`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := reconcile.ModeByName(modeName)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("check-existing") {
				mode.CheckExisting = checkExisting
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			path := csvPath(args)
			rows, err := registration.ReadFile(path)
			if err != nil {
				return err
			}
			logger.Info("Read registrations", "file", path, "rows", len(rows))

			return withStore(cfg, func(ctx context.Context, cfg *config.Config, st store.Store) error {
				mode.BatchSize = cfg.BatchSize
				if batchSize > 0 {
					mode.BatchSize = batchSize
				}

				start := time.Now()
				result, err := reconcile.Import(ctx, st, rows, mode, reconcile.Options{DryRun: dryRun}, logger)
				if err != nil {
					return fmt.Errorf("import aborted: %w", err)
				}
				for _, s := range result.Skipped {
					logger.Info("Skipped", "line", s.Line, "name", s.Name, "reason", s.Reason, "detail", s.Detail)
				}
				for _, e := range result.Errors {
					logger.Error("import error", "error", e)
				}
				logger.Info("Import finished",
					"mode", mode.Name, "dry_run", dryRun,
					"duration", time.Since(start).Round(time.Millisecond),
					"summary", result.Summary())
				return result.Err()
			})
		},
	}
	cmd.Flags().StringVar(&modeName, "mode", reconcile.Strict.Name, "Reconciliation preset: strict or lenient")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Prepare records without writing")
	cmd.Flags().BoolVar(&checkExisting, "check-existing", false, "Skip players already stored (default from mode)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Players per insert call (default IMPORT_BATCH_SIZE or 100)")
	return cmd
}

// --------------------------------------------------------------------------
// positions command
// --------------------------------------------------------------------------

func positionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Audit and backfill player positions",
	}
	cmd.AddCommand(positionsAuditCmd())
	cmd.AddCommand(positionsBackfillCmd())
	cmd.AddCommand(positionsInteractiveCmd())
	return cmd
}

func positionsAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Count players with and without a position for every sport",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				audits, err := backfill.Audit(ctx, st)
				if err != nil {
					return err
				}
				backfill.WriteAudit(cmd.OutOrStdout(), audits)
				return nil
			})
		},
	}
}

func positionsBackfillCmd() *cobra.Command {
	var (
		sport, position, styleName string
		yes                        bool
	)
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Set every player of a sport without a position to a default",
		RunE: func(cmd *cobra.Command, args []string) error {
			style, err := backfill.ParseStyle(styleName)
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !yes {
				prompt := backfill.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout())
				ok, err := backfill.Confirm(prompt, fmt.Sprintf("This will update all %s players without positions to %q. Continue?", sport, position))
				if err != nil {
					return fmt.Errorf("read confirmation: %w", err)
				}
				if !ok {
					logger.Info("Backfill cancelled")
					return nil
				}
			}

			return withStore(cfg, func(ctx context.Context, cfg *config.Config, st store.Store) error {
				b := &backfill.Bulk{
					Store:    st,
					Sport:    sport,
					Position: position,
					Style:    style,
					Out:      cmd.OutOrStdout(),
					Logger:   logger,
				}
				start := time.Now()
				result, err := b.Run(ctx)
				if err != nil {
					return err
				}
				for _, e := range result.Errors {
					logger.Error("backfill error", "error", e)
				}
				logger.Info("Backfill finished", "duration", time.Since(start).Round(time.Millisecond), "summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sport, "sport", backfill.DefaultSport, "Sport to backfill")
	cmd.Flags().StringVar(&position, "position", backfill.DefaultPosition, "Position to set")
	cmd.Flags().StringVar(&styleName, "style", backfill.StyleProgress.String(), "Report style: progress or itemized")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func positionsInteractiveCmd() *cobra.Command {
	var sport string
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Choose a position for each player without one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithStore(func(ctx context.Context, cfg *config.Config, st store.Store) error {
				it := &backfill.Interactive{
					Store:    st,
					Sport:    sport,
					Prompter: backfill.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
					Out:      cmd.OutOrStdout(),
					Logger:   logger,
				}
				result, err := it.Run(ctx)
				if err != nil {
					return err
				}
				logger.Info("Interactive backfill finished", "summary", result.Summary())
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sport, "sport", backfill.DefaultSport, "Sport to backfill")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// runWithStore handles config loading, store connection, and context
// cancellation.
func runWithStore(fn func(ctx context.Context, cfg *config.Config, st store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return withStore(cfg, fn)
}

// loadConfig reads the environment and applies LOG_LEVEL. Missing
// credentials fail here, before any file is read or prompt shown.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logger.Warn("Ignoring invalid LOG_LEVEL", "value", cfg.LogLevel)
	}
	return cfg, nil
}

// withStore opens the store for cfg and runs fn under a signal context.
func withStore(cfg *config.Config, fn func(ctx context.Context, cfg *config.Config, st store.Store) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	st, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect to store: %w", err)
	}
	defer st.Close()

	return fn(ctx, cfg, st)
}
