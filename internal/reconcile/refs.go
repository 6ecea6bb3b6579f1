package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ckpl/auction-ingest/internal/config"
	"github.com/ckpl/auction-ingest/internal/store"
)

// ErrReferenceNotFound is returned when a sport or category name has no row
// in its reference table.
var ErrReferenceNotFound = errors.New("reference not found")

// References is the in-memory copy of the sports and categories tables,
// fetched once per run.
type References struct {
	sports     map[string]store.Sport
	categories map[string]int
}

// NewReferences indexes reference rows by trimmed name.
func NewReferences(sports []store.Sport, categories []store.Category) *References {
	r := &References{
		sports:     make(map[string]store.Sport, len(sports)),
		categories: make(map[string]int, len(categories)),
	}
	for _, s := range sports {
		r.sports[strings.TrimSpace(s.Name)] = s
	}
	for _, c := range categories {
		r.categories[strings.TrimSpace(c.Name)] = c.ID
	}
	return r
}

// LoadReferences fetches both reference tables from the store.
func LoadReferences(ctx context.Context, s store.Store) (*References, error) {
	sports, err := s.ListSports(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sports: %w", err)
	}
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return NewReferences(sports, cats), nil
}

// SportID returns the id of the named sport.
func (r *References) SportID(name string) (int, error) {
	if s, ok := r.sports[name]; ok {
		return s.ID, nil
	}
	return 0, fmt.Errorf("%w: sport %q", ErrReferenceNotFound, name)
}

// CategoryID returns the id of the named category.
func (r *References) CategoryID(name string) (int, error) {
	if id, ok := r.categories[name]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: category %q", ErrReferenceNotFound, name)
}

// Resolve maps a normalised sport and category pair to foreign-key ids.
func (r *References) Resolve(sport, category string) (sportID, categoryID int, err error) {
	if sportID, err = r.SportID(sport); err != nil {
		return 0, 0, err
	}
	if categoryID, err = r.CategoryID(category); err != nil {
		return 0, 0, err
	}
	return sportID, categoryID, nil
}

// EnsureSport returns the id of the named sport, creating it with its
// registry defaults when absent. Created sports are added to r.
func (r *References) EnsureSport(ctx context.Context, s store.Store, name string) (id int, created bool, err error) {
	if id, err := r.SportID(name); err == nil {
		return id, false, nil
	}
	defaults := config.SportDefaults(name)
	sp, err := s.CreateSport(ctx, store.Sport{
		Name:              name,
		MinTeams:          defaults.MinTeams,
		MinPlayersPerTeam: defaults.MinPlayersPerTeam,
	})
	if err != nil {
		return 0, false, err
	}
	r.sports[name] = sp
	return sp.ID, true, nil
}
