// Package backfill fills in missing player positions for one sport, either
// with a fixed default or by asking an operator player by player, and audits
// position completeness across sports.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ckpl/auction-ingest/internal/store"
)

const (
	// DefaultSport is the sport backfills run against unless told otherwise.
	DefaultSport = "Football"
	// DefaultPosition is what the bulk backfill writes.
	DefaultPosition = "Player"
)

// FootballPositions is the numbered menu offered by the interactive backfill.
var FootballPositions = []string{
	"Goalkeeper (GK)",
	"Defender (DF)",
	"Midfielder (MF)",
	"Forward (FW)",
	"Striker (ST)",
	"Winger (WG)",
	"Central Midfielder (CM)",
	"Defensive Midfielder (DM)",
	"Attacking Midfielder (AM)",
}

// PositionsFor returns the numbered menu for a sport, or nil when the sport
// has none and the operator types each position.
func PositionsFor(sport string) []string {
	if strings.EqualFold(sport, DefaultSport) {
		return FootballPositions
	}
	return nil
}

// ErrSportNotFound is returned when the backfill sport has no row.
var ErrSportNotFound = errors.New("sport not found")

// Result tracks counts and errors from a backfill run.
type Result struct {
	Sport      string
	Candidates int
	Updated    int
	Skipped    int
	Failed     int
	Errors     []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the backfill.
func (r *Result) Summary() string {
	return fmt.Sprintf("sport=%s candidates=%d updated=%d skipped=%d failed=%d errors=%d",
		r.Sport, r.Candidates, r.Updated, r.Skipped, r.Failed, len(r.Errors))
}

// MissingPositions returns the sport and its players whose position is null
// or empty, in store order.
func MissingPositions(ctx context.Context, s store.Store, sportName string) (store.Sport, []store.Player, error) {
	sport, err := store.SportByName(ctx, s, sportName)
	if errors.Is(err, store.ErrNotFound) {
		return store.Sport{}, nil, fmt.Errorf("%w: %s", ErrSportNotFound, sportName)
	}
	if err != nil {
		return store.Sport{}, nil, fmt.Errorf("lookup sport %s: %w", sportName, err)
	}

	players, err := s.ListPlayers(ctx, sport.ID)
	if err != nil {
		return store.Sport{}, nil, fmt.Errorf("list %s players: %w", sportName, err)
	}
	var missing []store.Player
	for _, p := range players {
		if !p.HasPosition() {
			missing = append(missing, p)
		}
	}
	return sport, missing, nil
}
