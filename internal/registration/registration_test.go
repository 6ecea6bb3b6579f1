package registration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = "\ufeffTimestamp,Name,Register Number,Class and Section,Email Id,Contact Number,Sport,Position,Achievement ,Are you part of University Sports Team? (Specify)\n" +
	"1/1/2025,  Alice ,21BCE01,II CSE A,alice@x.edu,999,Football,Goalkeeper (GK),National Gold Medalist,No\n" +
	"1/1/2025,alice,21BCE01,II CSE A,alice@x.edu,999,football,,State,No\n" +
	"1/1/2025,Bob,21BCE02,II CSE B,bob@x.edu,998,Basketball,,,Yes\n" +
	"1/1/2025,,21BCE03,,,,Football,,,\n" +
	"1/1/2025,Carl,21BCE04\n"

func TestParse_TypedRows(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}

	first := rows[0]
	if first.Line != 2 {
		t.Errorf("first data row line = %d, want 2", first.Line)
	}
	if first.Name != "Alice" {
		t.Errorf("Name = %q, want trimmed", first.Name)
	}
	if first.Achievement != "National Gold Medalist" {
		t.Errorf("Achievement with trailing-space header = %q", first.Achievement)
	}
	if first.RegisterNumber != "21BCE01" || first.ClassSection != "II CSE A" || first.Email != "alice@x.edu" {
		t.Errorf("optional columns = %+v", first)
	}
	if first.UniversityTeam != "No" {
		t.Errorf("UniversityTeam = %q", first.UniversityTeam)
	}

	short := rows[4]
	if short.Line != 6 || short.Name != "Carl" || short.Sport != "" {
		t.Errorf("short row = %+v", short)
	}
}

func TestParse_MissingRequiredColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("Name,Position\nAlice,GK\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "Sport") {
		t.Errorf("err should name the column: %v", err)
	}

	_, err = Parse(strings.NewReader(""))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("empty input err = %v", err)
	}
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reg.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o600); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(rows) != 5 {
		t.Errorf("len(rows) = %d", len(rows))
	}
}

func TestResolveSport(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"FOOTBALL", "Football", false},
		{" football ", "Football", false},
		{"Basketball", "Basketball", false},
		{"cricket", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveSport(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownSport) {
				t.Errorf("ResolveSport(%q) err = %v, want ErrUnknownSport", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ResolveSport(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"School Level Champion", "School"},
		{"", "Others"},
		{"National Gold Medalist", "National"},
		{"Intramural", "Others"},
		{"  NIL ", "Others"},
		{"none", "Others"},
		{"University", "Others"},
		{"State level runner-up", "State"},
		{"district", "District"},
		{"Inter-schools meet", "School"},
		{"National and State", "National"},
	}
	for _, tt := range tests {
		if got := ResolveCategory(tt.in); got != tt.want {
			t.Errorf("ResolveCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	n, err := Normalize(Row{Line: 4, Name: "  Dana ", Sport: "BASKETBALL", Achievement: " district finals ", Position: " Guard "})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n.Name != "Dana" || n.Sport != "Basketball" || n.Category != "District" || n.Position != "Guard" || n.Line != 4 {
		t.Errorf("Normalize = %+v", n)
	}

	if _, err := Normalize(Row{Line: 5, Name: "  ", Sport: "Football"}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("blank name err = %v", err)
	}
	_, err = Normalize(Row{Line: 6, Name: "Eve", Sport: "Cricket"})
	if !errors.Is(err, ErrUnknownSport) {
		t.Errorf("unknown sport err = %v", err)
	}
	if !strings.Contains(err.Error(), "line 6") {
		t.Errorf("err should carry the line: %v", err)
	}
}

func TestDeduplicator_FirstOccurrenceWins(t *testing.T) {
	d := NewDeduplicator()
	rows := []struct {
		line        int
		name, sport string
		keep        bool
	}{
		{2, "Alice", "Football", true},
		{3, "alice", "Football", false},
		{4, "Bob", "Basketball", true},
		{5, "Alice", "Basketball", true},
		{6, "ALICE", "Football", false},
	}
	for _, r := range rows {
		if got := d.Observe(r.line, r.name, r.sport); got != r.keep {
			t.Errorf("Observe(%d %s %s) = %v, want %v", r.line, r.name, r.sport, got, r.keep)
		}
	}
	if d.Unique() != 3 {
		t.Errorf("Unique() = %d, want 3", d.Unique())
	}
	dups := d.Duplicates()
	if len(dups) != 2 || dups[0].Line != 3 || dups[0].FirstLine != 2 || dups[1].Line != 6 || dups[1].FirstLine != 2 {
		t.Errorf("Duplicates() = %+v", dups)
	}
}

func TestCheckDuplicates(t *testing.T) {
	rows := []Row{
		{Line: 2, Name: "Alice", Sport: "Football"},
		{Line: 3, Name: "alice", Sport: "football"},
		{Line: 4, Name: "Bob", Sport: "Basketball"},
		{Line: 5, Name: "", Sport: "Football"},
	}
	report := CheckDuplicates(rows)
	if report.TotalRows != 4 || report.Unique != 2 {
		t.Errorf("report = %+v", report)
	}
	if len(report.Duplicates) != 1 || report.Duplicates[0].Line != 3 || report.Duplicates[0].FirstLine != 2 {
		t.Errorf("duplicates = %+v", report.Duplicates)
	}
	if len(report.EmptyNames) != 1 || report.EmptyNames[0] != 5 {
		t.Errorf("empty names = %v", report.EmptyNames)
	}
	if got := report.Summary(); got != "rows=4 unique=2 duplicates=1 empty_names=1" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestCheckDuplicates_SizeEqualsDistinctKeys(t *testing.T) {
	names := []string{"a", "B", "b", "c", "A", "", "d", "C"}
	sports := []string{"Football", "Football", "football", "Basketball", "FOOTBALL", "Football", "Basketball", "basketball"}
	var rows []Row
	distinct := map[[2]string]bool{}
	for i := range names {
		rows = append(rows, Row{Line: i + 2, Name: names[i], Sport: sports[i]})
		if names[i] != "" {
			distinct[[2]string{strings.ToLower(names[i]), strings.ToLower(sports[i])}] = true
		}
	}
	for run := 0; run < 3; run++ {
		report := CheckDuplicates(rows)
		if report.Unique != len(distinct) {
			t.Fatalf("Unique = %d, want %d", report.Unique, len(distinct))
		}
		if got := report.Duplicates[0].Line; got != 4 {
			t.Fatalf("run %d: first duplicate line = %d, want 4", run, got)
		}
	}
}
