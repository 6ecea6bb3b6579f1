package reconcile

import (
	"errors"
	"fmt"
)

// ErrWriteFailure marks a batch insert or existence lookup the store
// rejected. The run continues past it.
var ErrWriteFailure = errors.New("write failure")

// Skip reasons reported per record.
const (
	ReasonEmptyName         = "empty name"
	ReasonUnknownSport      = "unknown sport"
	ReasonMissingReference  = "missing reference"
	ReasonSportCreateFailed = "sport create failed"
	ReasonDuplicate         = "duplicate"
	ReasonAlreadyExists     = "already exists"
)

// Skipped is a row that did not become an insert, with the reason.
type Skipped struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (s Skipped) String() string {
	if s.Detail != "" {
		return fmt.Sprintf("Row %d: %s skipped (%s: %s)", s.Line, s.Name, s.Reason, s.Detail)
	}
	return fmt.Sprintf("Row %d: %s skipped (%s)", s.Line, s.Name, s.Reason)
}

// BatchResult is the outcome of one insert call.
type BatchResult struct {
	Index    int    `json:"index"`
	Size     int    `json:"size"`
	Inserted int    `json:"inserted"`
	Err      string `json:"error,omitempty"`
}

// Result tracks counts and errors from an import run.
type Result struct {
	Rows          int           `json:"rows"`
	Prepared      int           `json:"prepared"`
	Inserted      int           `json:"inserted"`
	Failed        int           `json:"failed"`
	SportsCreated []string      `json:"sports_created"`
	Skipped       []Skipped     `json:"skipped"`
	Batches       []BatchResult `json:"batches"`
	Errors        []string      `json:"errors"`
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// SkippedFor counts skipped rows with the given reason.
func (r *Result) SkippedFor(reason string) int {
	n := 0
	for _, s := range r.Skipped {
		if s.Reason == reason {
			n++
		}
	}
	return n
}

// Err returns ErrWriteFailure wrapped with the failed count, or nil when
// every attempted write landed.
func (r *Result) Err() error {
	if r.Failed == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d records not inserted", ErrWriteFailure, r.Failed)
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"rows=%d prepared=%d inserted=%d failed=%d skipped=%d duplicates=%d already_exists=%d sports_created=%d errors=%d",
		r.Rows, r.Prepared, r.Inserted, r.Failed,
		len(r.Skipped), r.SkippedFor(ReasonDuplicate), r.SkippedFor(ReasonAlreadyExists),
		len(r.SportsCreated), len(r.Errors),
	)
}
