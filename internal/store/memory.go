package store

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Store. It backs tests and supports injected
// failures for exercising best-effort paths.
type Memory struct {
	mu         sync.Mutex
	sports     []Sport
	categories []Category
	players    []Player
	nextID     int

	// InsertHook, when set, is called before each InsertPlayers call with the
	// 1-based call number. A non-nil return fails that call.
	InsertHook func(call int, batch []NewPlayer) error
	// UpdateHook, when set, can fail individual position updates.
	UpdateHook func(playerID int, position string) error

	insertCalls int
}

// NewMemory creates a Memory store pre-seeded with reference rows.
func NewMemory(sports []Sport, categories []Category) *Memory {
	m := &Memory{nextID: 1}
	m.sports = append(m.sports, sports...)
	m.categories = append(m.categories, categories...)
	for _, s := range sports {
		if s.ID >= m.nextID {
			m.nextID = s.ID + 1
		}
	}
	return m
}

// DefaultCategories is the seeded category table of the auction schema.
func DefaultCategories() []Category {
	return []Category{
		{ID: 1, Name: "National"},
		{ID: 2, Name: "State"},
		{ID: 3, Name: "District"},
		{ID: 4, Name: "School"},
		{ID: 5, Name: "Others"},
	}
}

func (m *Memory) ListSports(ctx context.Context) ([]Sport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Sport(nil), m.sports...), nil
}

func (m *Memory) ListCategories(ctx context.Context) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Category(nil), m.categories...), nil
}

func (m *Memory) CreateSport(ctx context.Context, s Sport) (Sport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sports {
		if existing.Name == s.Name {
			return Sport{}, fmt.Errorf("sport %q already exists", s.Name)
		}
	}
	s.ID = m.nextID
	m.nextID++
	m.sports = append(m.sports, s)
	return s, nil
}

func (m *Memory) FindPlayer(ctx context.Context, name string, sportID int) (Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.Name == name && p.SportID == sportID {
			return p, nil
		}
	}
	return Player{}, ErrNotFound
}

func (m *Memory) InsertPlayers(ctx context.Context, players []NewPlayer) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	if m.InsertHook != nil {
		if err := m.InsertHook(m.insertCalls, players); err != nil {
			return 0, err
		}
	}
	for _, np := range players {
		catID := np.CategoryID
		m.players = append(m.players, Player{
			ID:         m.nextID,
			Name:       np.Name,
			SportID:    np.SportID,
			CategoryID: &catID,
			PhotoURL:   np.PhotoURL,
			Position:   np.Position,
			Status:     np.Status,
		})
		m.nextID++
	}
	return len(players), nil
}

func (m *Memory) ListPlayers(ctx context.Context, sportID int) ([]Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Player
	for _, p := range m.players {
		if p.SportID == sportID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) UpdatePlayerPosition(ctx context.Context, playerID int, position string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateHook != nil {
		if err := m.UpdateHook(playerID, position); err != nil {
			return err
		}
	}
	for i := range m.players {
		if m.players[i].ID == playerID {
			pos := position
			m.players[i].Position = &pos
			return nil
		}
	}
	return fmt.Errorf("player %d: %w", playerID, ErrNotFound)
}

// AddPlayer seeds a persisted player and returns its id.
func (m *Memory) AddPlayer(p Player) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID
	m.nextID++
	m.players = append(m.players, p)
	return p.ID
}

// Players returns a snapshot of every stored player.
func (m *Memory) Players() []Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Player(nil), m.players...)
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() {}
