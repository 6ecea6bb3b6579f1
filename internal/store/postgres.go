package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ckpl/auction-ingest/internal/config"
	"github.com/ckpl/auction-ingest/internal/db"
)

// Postgres is a Store backed by a direct pgx connection pool. Statements are
// the prepared ones registered by db.New.
type Postgres struct {
	pool *db.Pool
}

// OpenPostgres connects to cfg.DatabaseURL.
func OpenPostgres(ctx context.Context, cfg *config.Config) (*Postgres, error) {
	pool, err := db.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.HealthCheck(ctx)
}

func (p *Postgres) ListSports(ctx context.Context) ([]Sport, error) {
	rows, err := p.pool.Query(ctx, "list_sports")
	if err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	defer rows.Close()

	var sports []Sport
	for rows.Next() {
		var s Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.MinTeams, &s.MinPlayersPerTeam); err != nil {
			return nil, fmt.Errorf("scan sport: %w", err)
		}
		sports = append(sports, s)
	}
	return sports, rows.Err()
}

func (p *Postgres) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := p.pool.Query(ctx, "list_categories")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (p *Postgres) CreateSport(ctx context.Context, s Sport) (Sport, error) {
	err := p.pool.QueryRow(ctx, "create_sport", s.Name, s.MinTeams, s.MinPlayersPerTeam).Scan(&s.ID)
	if err != nil {
		return Sport{}, fmt.Errorf("create sport %q: %w", s.Name, err)
	}
	return s, nil
}

func (p *Postgres) FindPlayer(ctx context.Context, name string, sportID int) (Player, error) {
	var pl Player
	err := p.pool.QueryRow(ctx, "find_player", name, sportID).Scan(
		&pl.ID, &pl.Name, &pl.SportID, &pl.CategoryID, &pl.PhotoURL, &pl.Position, &pl.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Player{}, ErrNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("find player %q: %w", name, err)
	}
	return pl, nil
}

// InsertPlayers copies the batch in with a single COPY, which commits or
// fails as a unit.
func (p *Postgres) InsertPlayers(ctx context.Context, players []NewPlayer) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}
	n, err := p.pool.CopyFrom(ctx,
		pgx.Identifier{config.PlayersTable},
		[]string{"name", "sport_id", "category_id", "photo_url", "position", "status"},
		pgx.CopyFromSlice(len(players), func(i int) ([]any, error) {
			np := players[i]
			return []any{np.Name, np.SportID, np.CategoryID, np.PhotoURL, np.Position, np.Status}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy players: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) ListPlayers(ctx context.Context, sportID int) ([]Player, error) {
	rows, err := p.pool.Query(ctx, "list_players_by_sport", sportID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var pl Player
		if err := rows.Scan(&pl.ID, &pl.Name, &pl.SportID, &pl.CategoryID, &pl.PhotoURL, &pl.Position, &pl.Status); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, pl)
	}
	return players, rows.Err()
}

func (p *Postgres) UpdatePlayerPosition(ctx context.Context, playerID int, position string) error {
	tag, err := p.pool.Exec(ctx, "update_player_position", playerID, position)
	if err != nil {
		return fmt.Errorf("update player %d: %w", playerID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update player %d: %w", playerID, ErrNotFound)
	}
	return nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
