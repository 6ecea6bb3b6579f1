package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ckpl/auction-ingest/internal/registration"
	"github.com/ckpl/auction-ingest/internal/store"
)

// Record is a prepared insert plus the context needed to report on it.
type Record struct {
	Line         int
	SportName    string
	CategoryName string
	Player       store.NewPlayer
}

// Plan is the outcome of reconciling rows against the references, before
// anything is written.
type Plan struct {
	Rows          int
	Records       []Record
	Skipped       []Skipped
	Duplicates    []registration.Duplicate
	SportsCreated []string
	Errors        []string
}

// ErrSportCreateFailed marks a missing sport the store refused to create.
var ErrSportCreateFailed = errors.New("sport create failed")

// Reconciler turns registration rows into records under a Mode.
type Reconciler struct {
	Mode Mode
	Refs *References
	// Store is used only to create missing sports. Nil or DryRun leaves
	// missing sports uncreated; in dry-run they are listed as if created.
	Store  store.Store
	DryRun bool
	Logger *slog.Logger
}

// Plan reconciles rows in input order. Under an Abort policy the first
// offending row stops the run with its error; under Skip it is recorded in
// Plan.Skipped. A row claims its dedupe key only once it resolves, so a
// later duplicate never points at a row that was skipped.
func (rc *Reconciler) Plan(ctx context.Context, rows []registration.Row) (*Plan, error) {
	plan := &Plan{Rows: len(rows)}
	dedup := registration.NewDeduplicator()
	pending := make(map[string]bool)
	failed := make(map[string]error)

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := registration.Normalize(row)
		switch {
		case errors.Is(err, registration.ErrEmptyName):
			plan.skip(row.Line, "", ReasonEmptyName, "")
			continue
		case errors.Is(err, registration.ErrUnknownSport):
			if rc.Mode.UnknownSport == Abort {
				return nil, err
			}
			rc.Logger.Warn("Skipping row with unknown sport", "line", row.Line, "name", row.Name, "sport", row.Sport)
			plan.skip(row.Line, row.Name, ReasonUnknownSport, row.Sport)
			continue
		case err != nil:
			return nil, err
		}

		sportID, err := rc.sportID(ctx, n.Sport, plan, pending, failed)
		if err != nil && rc.Mode.MissingReference == Skip {
			switch {
			case errors.Is(err, ErrReferenceNotFound):
				plan.skip(n.Line, n.Name, ReasonMissingReference, err.Error())
				continue
			case errors.Is(err, ErrSportCreateFailed):
				plan.skip(n.Line, n.Name, ReasonSportCreateFailed, err.Error())
				continue
			}
		}
		if err != nil {
			return nil, fmt.Errorf("line %d (%s): %w", n.Line, n.Name, err)
		}

		category := n.Category
		categoryID, err := rc.Refs.CategoryID(category)
		if err != nil && rc.Mode.MissingReference == Skip && category != registration.CategoryOthers {
			category = registration.CategoryOthers
			categoryID, err = rc.Refs.CategoryID(category)
		}
		if err != nil {
			if rc.Mode.MissingReference == Skip {
				plan.skip(n.Line, n.Name, ReasonMissingReference, err.Error())
				continue
			}
			return nil, fmt.Errorf("line %d (%s): %w", n.Line, n.Name, err)
		}

		if !dedup.Observe(n.Line, n.Name, n.Sport) {
			continue
		}
		plan.Records = append(plan.Records, Record{
			Line:         n.Line,
			SportName:    n.Sport,
			CategoryName: category,
			Player:       rc.newPlayer(n, sportID, categoryID),
		})
	}

	plan.Duplicates = dedup.Duplicates()
	for _, d := range plan.Duplicates {
		plan.skip(d.Line, d.Name, ReasonDuplicate, fmt.Sprintf("first seen on row %d", d.FirstLine))
	}
	return plan, nil
}

// sportID resolves a sport, creating it when the mode allows. A failed
// creation is remembered in failed so later rows of that sport are not
// retried.
func (rc *Reconciler) sportID(ctx context.Context, name string, plan *Plan, pending map[string]bool, failed map[string]error) (int, error) {
	id, err := rc.Refs.SportID(name)
	if err == nil || !rc.Mode.CreateMissingSports {
		return id, err
	}
	if rc.DryRun || rc.Store == nil {
		if !pending[name] {
			pending[name] = true
			plan.SportsCreated = append(plan.SportsCreated, name)
			rc.Logger.Info("Would create sport", "sport", name)
		}
		return 0, nil
	}
	if cause, ok := failed[name]; ok {
		return 0, cause
	}
	id, created, err := rc.Refs.EnsureSport(ctx, rc.Store, name)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrSportCreateFailed, name, err)
		failed[name] = err
		plan.Errors = append(plan.Errors, err.Error())
		rc.Logger.Error("Failed to create sport", "sport", name, "error", err)
		return 0, err
	}
	if created {
		plan.SportsCreated = append(plan.SportsCreated, name)
		rc.Logger.Info("Created sport", "sport", name, "id", id)
	}
	return id, nil
}

func (rc *Reconciler) newPlayer(n registration.Normalized, sportID, categoryID int) store.NewPlayer {
	p := store.NewPlayer{
		Name:       n.Name,
		SportID:    sportID,
		CategoryID: categoryID,
		Position:   store.StringPtr(n.Position),
		Status:     store.StatusUnsold,
	}
	if rc.Mode.EmptyPhotoURL {
		empty := ""
		p.PhotoURL = &empty
	}
	return p
}

func (p *Plan) skip(line int, name, reason, detail string) {
	p.Skipped = append(p.Skipped, Skipped{Line: line, Name: name, Reason: reason, Detail: detail})
}
