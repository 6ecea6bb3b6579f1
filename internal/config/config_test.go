package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func clearStoreEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "SUPABASE_URL", "VITE_SUPABASE_URL",
		"SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_KEY", "VITE_SUPABASE_ANON_KEY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingCredentials(t *testing.T) {
	clearStoreEnv(t)
	_, err := Load()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Load() err = %v, want ErrMissingCredentials", err)
	}

	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	if _, err := Load(); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("URL without key: err = %v, want ErrMissingCredentials", err)
	}
}

func TestLoad_FallbackVariables(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("VITE_SUPABASE_URL", "https://vite.example")
	t.Setenv("VITE_SUPABASE_ANON_KEY", "anon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StoreURL != "https://vite.example" || cfg.StoreKey != "anon" {
		t.Errorf("got url=%q key=%q", cfg.StoreURL, cfg.StoreKey)
	}
	if cfg.UsesPostgres() {
		t.Error("UsesPostgres() = true without DATABASE_URL")
	}

	t.Setenv("SUPABASE_URL", "https://primary.example")
	t.Setenv("SUPABASE_KEY", "plain")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.StoreURL != "https://primary.example" {
		t.Errorf("StoreURL = %q, want primary", cfg.StoreURL)
	}
	if cfg.StoreKey != "service" {
		t.Errorf("StoreKey = %q, want service role key to win", cfg.StoreKey)
	}
}

func TestLoad_DatabaseURLIsEnough(t *testing.T) {
	clearStoreEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/ckpl")
	t.Setenv("IMPORT_BATCH_SIZE", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.UsesPostgres() {
		t.Error("UsesPostgres() = false with DATABASE_URL set")
	}
	if cfg.BatchSize != 25 {
		t.Errorf("BatchSize = %d, want 25", cfg.BatchSize)
	}
}

func TestSportDefaults(t *testing.T) {
	tests := []struct {
		name         string
		teams, perTm int
	}{
		{"Basketball", 4, 8},
		{"Football", 8, 11},
		{"Volleyball", 4, 8},
	}
	for _, tt := range tests {
		got := SportDefaults(tt.name)
		if got.Name != tt.name || got.MinTeams != tt.teams || got.MinPlayersPerTeam != tt.perTm {
			t.Errorf("SportDefaults(%q) = %+v", tt.name, got)
		}
	}
}

func TestDefaultCSVPath(t *testing.T) {
	t.Setenv("CKPL_CSV_PATH", "/data/reg.csv")
	if got := DefaultCSVPath(); got != "/data/reg.csv" {
		t.Errorf("DefaultCSVPath() = %q with CKPL_CSV_PATH set", got)
	}

	t.Setenv("CKPL_CSV_PATH", "")
	t.Setenv("HOME", "/home/ckpl")
	want := filepath.Join("/home/ckpl", "Downloads", DefaultCSVName)
	if got := DefaultCSVPath(); got != want {
		t.Errorf("DefaultCSVPath() = %q, want %q", got, want)
	}
}
