package reconcile

import (
	"context"
	"log/slog"

	"github.com/ckpl/auction-ingest/internal/registration"
	"github.com/ckpl/auction-ingest/internal/store"
)

// dryRunPreview is how many prepared records a dry run logs.
const dryRunPreview = 5

// Options are the per-run overrides on top of a Mode.
type Options struct {
	DryRun bool
}

// Import reconciles rows against the store's reference tables and writes the
// resulting players. It returns an error only for conditions that stop the
// run before writing (reference load failure, or an Abort policy firing);
// per-batch failures are reported in the Result.
func Import(ctx context.Context, s store.Store, rows []registration.Row, mode Mode, opts Options, logger *slog.Logger) (Result, error) {
	res := Result{Rows: len(rows)}

	refs, err := LoadReferences(ctx, s)
	if err != nil {
		return res, err
	}
	logger.Info("Loaded references", "mode", mode.Name)

	rc := &Reconciler{Mode: mode, Refs: refs, Store: s, DryRun: opts.DryRun, Logger: logger}
	plan, err := rc.Plan(ctx, rows)
	if err != nil {
		return res, err
	}
	res.Prepared = len(plan.Records)
	res.SportsCreated = plan.SportsCreated
	res.Skipped = append(res.Skipped, plan.Skipped...)
	res.Errors = append(res.Errors, plan.Errors...)
	logger.Info("Prepared players",
		"rows", plan.Rows, "prepared", len(plan.Records),
		"duplicates", len(plan.Duplicates), "skipped", len(plan.Skipped))

	if opts.DryRun {
		for i, r := range plan.Records {
			if i == dryRunPreview {
				logger.Info("Dry run: more records not shown", "remaining", len(plan.Records)-dryRunPreview)
				break
			}
			logger.Info("Dry run record",
				"line", r.Line, "name", r.Player.Name, "sport", r.SportName,
				"category", r.CategoryName, "position", deref(r.Player.Position))
		}
		return res, nil
	}

	w := &Writer{Store: s, BatchSize: mode.batchSize(), CheckExisting: mode.CheckExisting, Logger: logger}
	w.Write(ctx, plan.Records, &res)
	return res, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
