package main

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ckpl/auction-ingest/internal/config"
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

func TestImport_MissingCredentialsBeforeReadingCSV(t *testing.T) {
	clearStoreEnv(t)
	cmd := importCmd()
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.csv")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestBackfill_MissingCredentialsBeforePrompt(t *testing.T) {
	clearStoreEnv(t)
	var out bytes.Buffer
	cmd := positionsBackfillCmd()
	cmd.SetArgs([]string{})
	cmd.SetIn(strings.NewReader("yes\n"))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
	if strings.Contains(out.String(), "Continue?") {
		t.Errorf("confirmation shown before config check: %q", out.String())
	}
}
