// Package store is the access layer for the auction's sports, categories and
// players tables. A Store is opened once per run, passed explicitly to the
// code that needs it, and closed when the run ends.
//
// Three backends exist: Postgres (direct pgx pool), REST (the hosted
// PostgREST endpoint) and Memory (tests).
package store

import (
	"context"
	"errors"
)

// StatusUnsold is the status every freshly imported player starts with.
const StatusUnsold = "unsold"

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// Sport is a row of the sports reference table.
type Sport struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	MinTeams          int    `json:"min_teams"`
	MinPlayersPerTeam int    `json:"min_players_per_team"`
}

// Category is a row of the categories reference table.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Player is a persisted row of the players table.
type Player struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	SportID    int     `json:"sport_id"`
	CategoryID *int    `json:"category_id"`
	PhotoURL   *string `json:"photo_url"`
	Position   *string `json:"position"`
	Status     string  `json:"status"`
}

// HasPosition reports whether the player has a non-empty position.
func (p Player) HasPosition() bool {
	return p.Position != nil && *p.Position != ""
}

// NewPlayer is an insert payload for the players table.
type NewPlayer struct {
	Name       string  `json:"name"`
	SportID    int     `json:"sport_id"`
	CategoryID int     `json:"category_id"`
	PhotoURL   *string `json:"photo_url"`
	Position   *string `json:"position"`
	Status     string  `json:"status"`
}

// Store is the query interface the ingest tools need: select-with-filter,
// single or batch insert, and update-with-filter.
type Store interface {
	ListSports(ctx context.Context) ([]Sport, error)
	ListCategories(ctx context.Context) ([]Category, error)
	CreateSport(ctx context.Context, s Sport) (Sport, error)

	// FindPlayer returns ErrNotFound when no player has this exact name in
	// the sport.
	FindPlayer(ctx context.Context, name string, sportID int) (Player, error)
	// InsertPlayers writes one batch in a single call. A batch either lands
	// or fails as a whole; nothing spans calls.
	InsertPlayers(ctx context.Context, players []NewPlayer) (int, error)
	ListPlayers(ctx context.Context, sportID int) ([]Player, error)
	UpdatePlayerPosition(ctx context.Context, playerID int, position string) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error
	Close()
}

// SportByName returns the sport with the given name from the store.
func SportByName(ctx context.Context, s Store, name string) (Sport, error) {
	sports, err := s.ListSports(ctx)
	if err != nil {
		return Sport{}, err
	}
	for _, sp := range sports {
		if sp.Name == name {
			return sp, nil
		}
	}
	return Sport{}, ErrNotFound
}

// StringPtr returns nil for the empty string, else a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
