package registration

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrEmptyName marks a row whose Name is blank after trimming.
	ErrEmptyName = errors.New("empty name")
	// ErrUnknownSport marks a sport outside the supported set.
	ErrUnknownSport = errors.New("unknown sport")
)

// Canonical sport names as stored in the sports table.
const (
	SportFootball   = "Football"
	SportBasketball = "Basketball"
)

var sportNames = map[string]string{
	"football":   SportFootball,
	"basketball": SportBasketball,
}

// ResolveSport maps free sport text to its canonical name, ignoring case and
// surrounding whitespace.
func ResolveSport(raw string) (string, error) {
	if name, ok := sportNames[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSport, raw)
}

var folder = cases.Lower(language.Und)

// FoldName returns the case-insensitive form of a player name used for
// duplicate keys.
func FoldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// Normalized is a row that passed validation: a non-empty name and a
// supported sport.
type Normalized struct {
	Line        int
	Name        string
	Sport       string
	Achievement string
	Category    string
	Position    string
}

// Normalize validates a row. It returns ErrEmptyName or ErrUnknownSport
// (wrapped with the row's line) for rows that cannot proceed; what happens
// to those rows is the caller's decision.
func Normalize(r Row) (Normalized, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Normalized{}, fmt.Errorf("line %d: %w", r.Line, ErrEmptyName)
	}
	sport, err := ResolveSport(r.Sport)
	if err != nil {
		return Normalized{}, fmt.Errorf("line %d (%s): %w", r.Line, name, err)
	}
	achievement := strings.TrimSpace(r.Achievement)
	return Normalized{
		Line:        r.Line,
		Name:        name,
		Sport:       sport,
		Achievement: achievement,
		Category:    ResolveCategory(achievement),
		Position:    strings.TrimSpace(r.Position),
	}, nil
}
