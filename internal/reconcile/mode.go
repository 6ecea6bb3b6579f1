// Package reconcile turns parsed registration rows into player records and
// writes them to the store: reference resolution, de-duplication, the
// strict/lenient presets and the batch writer.
package reconcile

import (
	"fmt"
	"strings"
)

// DefaultBatchSize is the number of players sent per insert call.
const DefaultBatchSize = 100

// Policy says what happens to a row that fails a check.
type Policy int

const (
	// Abort stops the whole run with an error.
	Abort Policy = iota
	// Skip drops the row, logs the reason and carries on.
	Skip
)

func (p Policy) String() string {
	if p == Skip {
		return "skip"
	}
	return "abort"
}

// Mode is the full set of knobs that differ between the import presets.
type Mode struct {
	Name string
	// UnknownSport applies to sport text outside the supported set.
	UnknownSport Policy
	// MissingReference applies when a resolved sport or category has no
	// row in the reference tables.
	MissingReference Policy
	// CreateMissingSports creates absent sports with their registry
	// defaults instead of treating them as missing references.
	CreateMissingSports bool
	// CheckExisting skips records already stored under the same name and
	// sport, which makes repeated runs on one CSV insert nothing new.
	CheckExisting bool
	BatchSize     int
	// EmptyPhotoURL stores "" instead of NULL for photo_url.
	EmptyPhotoURL bool
}

// Strict is the bulk importer preset: any unknown sport or unresolvable
// reference aborts the run before anything is written.
var Strict = Mode{
	Name:             "strict",
	UnknownSport:     Abort,
	MissingReference: Abort,
	BatchSize:        DefaultBatchSize,
	EmptyPhotoURL:    true,
}

// Lenient is the uploader preset: bad rows are skipped and reported, sports
// are created on demand and existing players are left alone.
var Lenient = Mode{
	Name:                "lenient",
	UnknownSport:        Skip,
	MissingReference:    Skip,
	CreateMissingSports: true,
	CheckExisting:       true,
	BatchSize:           DefaultBatchSize,
}

// ModeByName returns the preset called name.
func ModeByName(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "strict", "import":
		return Strict, nil
	case "lenient", "upload":
		return Lenient, nil
	default:
		return Mode{}, fmt.Errorf("unknown mode %q (want strict or lenient)", name)
	}
}

func (m Mode) batchSize() int {
	if m.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return m.BatchSize
}
