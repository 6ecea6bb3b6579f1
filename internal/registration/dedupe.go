package registration

import (
	"fmt"
	"strings"
)

// Key identifies one registration: the folded player name and the sport.
type Key struct {
	Name  string
	Sport string
}

// Duplicate is a row dropped because an earlier row had the same key.
type Duplicate struct {
	Line      int    `json:"line"`
	Name      string `json:"name"`
	Sport     string `json:"sport"`
	FirstLine int    `json:"first_line"`
}

func (d Duplicate) String() string {
	return fmt.Sprintf("Row %d: %s (%s) duplicate of row %d", d.Line, d.Name, d.Sport, d.FirstLine)
}

// Deduplicator remembers the first line each key was seen on. Membership is
// a map lookup and every report is built in row order, so the kept/dropped
// split only depends on the order rows arrive in.
type Deduplicator struct {
	first map[Key]int
	dups  []Duplicate
}

// NewDeduplicator returns an empty Deduplicator for one run.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{first: make(map[Key]int)}
}

// Observe records a row. It returns true if the row is the first with its
// key and should be kept; otherwise the row is recorded as a Duplicate.
func (d *Deduplicator) Observe(line int, name, sport string) bool {
	key := Key{Name: FoldName(name), Sport: sport}
	if first, seen := d.first[key]; seen {
		d.dups = append(d.dups, Duplicate{Line: line, Name: name, Sport: sport, FirstLine: first})
		return false
	}
	d.first[key] = line
	return true
}

// Unique returns the number of distinct keys observed.
func (d *Deduplicator) Unique() int {
	return len(d.first)
}

// Duplicates returns the dropped rows in the order they were observed.
func (d *Deduplicator) Duplicates() []Duplicate {
	return append([]Duplicate(nil), d.dups...)
}

// DuplicateReport is the outcome of checking a CSV for repeated
// registrations without touching the store.
type DuplicateReport struct {
	TotalRows  int         `json:"total_rows"`
	Unique     int         `json:"unique_players"`
	EmptyNames []int       `json:"empty_name_rows"`
	Duplicates []Duplicate `json:"duplicates"`
}

// Summary returns a human-readable summary of the report.
func (r *DuplicateReport) Summary() string {
	return fmt.Sprintf("rows=%d unique=%d duplicates=%d empty_names=%d",
		r.TotalRows, r.Unique, len(r.Duplicates), len(r.EmptyNames))
}

// CheckDuplicates scans rows for repeated (name, sport) registrations. The
// sport is keyed on its raw lower-cased text so unknown sports are still
// compared; rows with an empty name are listed separately and not keyed.
func CheckDuplicates(rows []Row) DuplicateReport {
	d := NewDeduplicator()
	report := DuplicateReport{TotalRows: len(rows)}
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			report.EmptyNames = append(report.EmptyNames, r.Line)
			continue
		}
		d.Observe(r.Line, name, strings.ToLower(strings.TrimSpace(r.Sport)))
	}
	report.Unique = d.Unique()
	report.Duplicates = d.Duplicates()
	return report
}
