package backfill

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ckpl/auction-ingest/internal/store"
)

// Style selects how a bulk backfill reports progress.
type Style int

const (
	// StyleProgress logs a running count every progressEvery updates.
	StyleProgress Style = iota
	// StyleItemized prints one line per player.
	StyleItemized
)

const progressEvery = 10

func (s Style) String() string {
	if s == StyleItemized {
		return "itemized"
	}
	return "progress"
}

// ParseStyle parses a --style flag value.
func ParseStyle(v string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "progress":
		return StyleProgress, nil
	case "itemized", "simple":
		return StyleItemized, nil
	default:
		return 0, fmt.Errorf("unknown style %q (want progress or itemized)", v)
	}
}

// Bulk sets every player of a sport without a position to one value.
type Bulk struct {
	Store    store.Store
	Sport    string
	Position string
	Style    Style
	// Out receives itemized lines; progress goes to Logger.
	Out    io.Writer
	Logger *slog.Logger
}

// Run updates each candidate with its own call. A failed update is counted
// and the run moves on; players that already have a position are never
// touched.
func (b *Bulk) Run(ctx context.Context) (Result, error) {
	res := Result{Sport: b.sportName()}
	position := b.Position
	if position == "" {
		position = DefaultPosition
	}

	_, players, err := MissingPositions(ctx, b.Store, res.Sport)
	if err != nil {
		return res, err
	}
	res.Candidates = len(players)
	if len(players) == 0 {
		b.Logger.Info("No players without positions", "sport", res.Sport)
		return res, nil
	}
	b.Logger.Info("Updating players without positions", "sport", res.Sport, "count", len(players), "position", position)

	out := b.Out
	if out == nil {
		out = io.Discard
	}
	total := len(players)
	for _, p := range players {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		err := b.Store.UpdatePlayerPosition(ctx, p.ID, position)
		if err != nil {
			res.Failed++
			res.AddErrorf("update %s (%d): %v", p.Name, p.ID, err)
		} else {
			res.Updated++
		}

		switch b.Style {
		case StyleItemized:
			if err != nil {
				fmt.Fprintf(out, "[%d/%d] ✗ %s: %v\n", res.Updated, total, p.Name, err)
			} else {
				fmt.Fprintf(out, "[%d/%d] ✓ %s\n", res.Updated, total, p.Name)
			}
		default:
			if err != nil {
				b.Logger.Error("Update failed", "player", p.Name, "id", p.ID, "error", err)
			} else if res.Updated%progressEvery == 0 {
				b.Logger.Info("Progress", "updated", res.Updated, "total", total)
			}
		}
	}
	return res, nil
}

func (b *Bulk) sportName() string {
	if b.Sport == "" {
		return DefaultSport
	}
	return b.Sport
}
