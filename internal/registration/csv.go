// Package registration parses the registration form's CSV export into typed
// rows and holds the row-level rules: sport and category resolution, name
// normalisation and duplicate detection.
package registration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// Column headers of the form export.
const (
	ColName           = "Name"
	ColSport          = "Sport"
	ColPosition       = "Position"
	ColAchievement    = "Achievement"
	ColRegisterNumber = "Register Number"
	ColClassSection   = "Class and Section"
	ColEmail          = "Email Id"
	ColContact        = "Contact Number"
	ColUniversityTeam = "Are you part of University Sports Team? (Specify)"
)

var requiredColumns = []string{ColName, ColSport}

var (
	// ErrFileNotFound is returned when the CSV path does not exist.
	ErrFileNotFound = errors.New("csv file not found")
	// ErrMissingColumn is returned when a required header is absent.
	ErrMissingColumn = errors.New("missing required column")
)

// Row is one data row of the export. Line is the 1-based line number in the
// file; the header is line 1 so the first data row is line 2.
type Row struct {
	Line           int
	Name           string
	Sport          string
	Achievement    string
	Position       string
	RegisterNumber string
	ClassSection   string
	Email          string
	Contact        string
	UniversityTeam string
}

// ReadFile opens path and parses it with Parse.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	rows, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

// Parse reads the whole CSV into memory. The header row is required and
// must contain Name and Sport; every other column is optional. Header names
// are compared after trimming, so "Achievement " matches Achievement.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := indexHeader(header)
	for _, req := range requiredColumns {
		if len(cols[req]) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, req)
		}
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, Row{
			Line:           line,
			Name:           cols.get(rec, ColName),
			Sport:          cols.get(rec, ColSport),
			Achievement:    cols.get(rec, ColAchievement),
			Position:       cols.get(rec, ColPosition),
			RegisterNumber: cols.get(rec, ColRegisterNumber),
			ClassSection:   cols.get(rec, ColClassSection),
			Email:          cols.get(rec, ColEmail),
			Contact:        cols.get(rec, ColContact),
			UniversityTeam: cols.get(rec, ColUniversityTeam),
		})
	}
	return rows, nil
}

// columns maps a trimmed header name to every position it occurs at.
type columns map[string][]int

func indexHeader(header []string) columns {
	cols := make(columns, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		cols[h] = append(cols[h], i)
	}
	return cols
}

// get returns the first non-empty trimmed value among the columns named
// name. Short records yield "".
func (c columns) get(rec []string, name string) string {
	for _, i := range c[name] {
		if i < len(rec) {
			if v := strings.TrimSpace(rec[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
