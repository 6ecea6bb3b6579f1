package backfill

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ckpl/auction-ingest/internal/store"
)

// SportAudit is the position completeness of one sport.
type SportAudit struct {
	SportID         int      `json:"sport_id"`
	Sport           string   `json:"sport"`
	Total           int      `json:"total"`
	WithPosition    int      `json:"with_position"`
	WithoutPosition int      `json:"without_position"`
	Missing         []string `json:"missing"`
}

// auditConcurrency bounds the per-sport player reads in flight.
const auditConcurrency = 4

// Audit counts players with and without a position for every sport. Sports
// are read concurrently; the result keeps the store's sport order.
func Audit(ctx context.Context, s store.Store) ([]SportAudit, error) {
	sports, err := s.ListSports(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}

	audits := make([]SportAudit, len(sports))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(auditConcurrency)
	for i, sp := range sports {
		i, sp := i, sp
		g.Go(func() error {
			players, err := s.ListPlayers(gctx, sp.ID)
			if err != nil {
				return fmt.Errorf("list %s players: %w", sp.Name, err)
			}
			audits[i] = auditSport(sp, players)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return audits, nil
}

func auditSport(sp store.Sport, players []store.Player) SportAudit {
	a := SportAudit{SportID: sp.ID, Sport: sp.Name, Total: len(players), Missing: []string{}}
	for _, p := range players {
		if p.HasPosition() {
			a.WithPosition++
		} else {
			a.Missing = append(a.Missing, p.Name)
		}
	}
	a.WithoutPosition = a.Total - a.WithPosition
	return a
}

// WriteAudit prints audits as a plain-text report.
func WriteAudit(w io.Writer, audits []SportAudit) {
	rule := strings.Repeat("=", 60)
	for _, a := range audits {
		fmt.Fprintf(w, "\n%s\nSport: %s\n%s\n", rule, a.Sport, rule)
		fmt.Fprintf(w, "Total players: %d\nWith position: %d\nWithout position: %d\n",
			a.Total, a.WithPosition, a.WithoutPosition)
		if len(a.Missing) > 0 {
			fmt.Fprintln(w, "\nPlayers without position:")
			for _, name := range a.Missing {
				fmt.Fprintf(w, "  - %s\n", name)
			}
		}
	}
}
