// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrMissingCredentials is returned when neither a database URL nor a store
// URL + key pair is configured.
var ErrMissingCredentials = errors.New("missing store credentials")

// --------------------------------------------------------------------------
// Sport registry: creation defaults for sports that are missing from the
// store. Keys are the canonical sport names used in the sports table.
// --------------------------------------------------------------------------

type SportConfig struct {
	Name              string
	MinTeams          int
	MinPlayersPerTeam int
}

var SportRegistry = map[string]SportConfig{
	"Basketball": {Name: "Basketball", MinTeams: 4, MinPlayersPerTeam: 8},
	"Football":   {Name: "Football", MinTeams: 8, MinPlayersPerTeam: 11},
}

// FallbackSport holds the defaults used for a sport not in SportRegistry.
var FallbackSport = SportConfig{MinTeams: 4, MinPlayersPerTeam: 8}

// SportDefaults returns the creation defaults for a sport name.
func SportDefaults(name string) SportConfig {
	if sc, ok := SportRegistry[name]; ok {
		return sc
	}
	sc := FallbackSport
	sc.Name = name
	return sc
}

// --------------------------------------------------------------------------
// Table names: single source of truth, matches the auction schema
// --------------------------------------------------------------------------

const (
	SportsTable     = "sports"
	CategoriesTable = "categories"
	PlayersTable    = "players"
)

// DefaultCSVName is the file name the registration form exports to.
const DefaultCSVName = "CKPL Registration Form (Responses) - Form Responses 1 (1).csv"

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Store: either a direct Postgres URL, or the hosted REST endpoint + key.
	DatabaseURL    string
	StoreURL       string
	StoreKey       string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// REST store pacing
	StoreRequestsPerMinute int

	// Import
	BatchSize  int
	DefaultCSV string

	// API server
	APIHost  string
	APIPort  int
	LogLevel string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// It fails with ErrMissingCredentials when no store can be reached.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    envOr("DATABASE_URL", ""),
		StoreURL:       envOr("SUPABASE_URL", envOr("VITE_SUPABASE_URL", "")),
		StoreKey:       envOr("SUPABASE_SERVICE_ROLE_KEY", envOr("SUPABASE_KEY", envOr("VITE_SUPABASE_ANON_KEY", ""))),
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 1),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		StoreRequestsPerMinute: envInt("STORE_REQUESTS_PER_MINUTE", 600),

		BatchSize:  envInt("IMPORT_BATCH_SIZE", 100),
		DefaultCSV: DefaultCSVPath(),

		APIHost:  envOr("API_HOST", "0.0.0.0"),
		APIPort:  envInt("API_PORT", envInt("PORT", 8000)),
		LogLevel: envOr("LOG_LEVEL", "info"),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:8080",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL != "" {
		return nil
	}
	if c.StoreURL == "" || c.StoreKey == "" {
		return fmt.Errorf("%w: set DATABASE_URL, or SUPABASE_URL (VITE_SUPABASE_URL) and SUPABASE_SERVICE_ROLE_KEY (SUPABASE_KEY, VITE_SUPABASE_ANON_KEY)", ErrMissingCredentials)
	}
	return nil
}

// UsesPostgres reports whether the store should be reached over a direct
// Postgres connection rather than the REST endpoint.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// DefaultCSVPath returns CKPL_CSV_PATH, or the form export's name in the
// user's Downloads directory.
func DefaultCSVPath() string {
	if v := os.Getenv("CKPL_CSV_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultCSVName
	}
	return filepath.Join(home, "Downloads", DefaultCSVName)
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
