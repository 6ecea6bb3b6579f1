package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestREST(t *testing.T, h http.HandlerFunc) *REST {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	// High rate so the limiter never slows the test down.
	return NewREST(srv.URL+"/", "secret", 60000, nil)
}

func TestREST_ListSportsSendsAuthHeaders(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/sports" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("apikey") != "secret" || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("auth headers: apikey=%q authorization=%q", r.Header.Get("apikey"), r.Header.Get("Authorization"))
		}
		if got := r.URL.Query().Get("select"); got != "id,name,min_teams,min_players_per_team" {
			t.Errorf("select = %q", got)
		}
		w.Write([]byte(`[{"id":1,"name":"Football","min_teams":8,"min_players_per_team":11}]`))
	})

	sports, err := c.ListSports(context.Background())
	if err != nil {
		t.Fatalf("ListSports: %v", err)
	}
	if len(sports) != 1 || sports[0].Name != "Football" || sports[0].MinPlayersPerTeam != 11 {
		t.Errorf("sports = %+v", sports)
	}
}

func TestREST_FindPlayerFilters(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("name") != "eq.Alice" || q.Get("sport_id") != "eq.2" || q.Get("limit") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if q.Get("name") == "eq.Alice" {
			w.Write([]byte(`[]`))
		}
	})

	_, err := c.FindPlayer(context.Background(), "Alice", 2)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindPlayer err = %v, want ErrNotFound", err)
	}
}

func TestREST_InsertPlayersPostsBatch(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("Prefer = %q", r.Header.Get("Prefer"))
		}
		body, _ := io.ReadAll(r.Body)
		var got []map[string]any
		if err := json.Unmarshal(body, &got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("batch size = %d", len(got))
		}
		if got[0]["position"] != nil || got[0]["status"] != "unsold" {
			t.Errorf("first row = %v", got[0])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`[{"id":10},{"id":11}]`))
	})

	n, err := c.InsertPlayers(context.Background(), []NewPlayer{
		{Name: "Alice", SportID: 1, CategoryID: 5, Status: StatusUnsold},
		{Name: "Bob", SportID: 1, CategoryID: 5, Status: StatusUnsold, Position: StringPtr("Forward (FW)")},
	})
	if err != nil {
		t.Fatalf("InsertPlayers: %v", err)
	}
	if n != 2 {
		t.Errorf("inserted = %d, want 2", n)
	}
}

func TestREST_ErrorStatusIsReported(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		w.Write([]byte(strings.Repeat("x", 500)))
	})

	_, err := c.InsertPlayers(context.Background(), []NewPlayer{{Name: "A"}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "413") || !strings.HasSuffix(err.Error(), "...") {
		t.Errorf("err = %v", err)
	}
}

func TestREST_UpdatePositionNoRows(t *testing.T) {
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Query().Get("id") != "eq.7" {
			t.Errorf("%s %s", r.Method, r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	})

	err := c.UpdatePlayerPosition(context.Background(), 7, "Player")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestREST_Ping(t *testing.T) {
	up := true
	c := newTestREST(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/sports" || r.URL.Query().Get("limit") != "1" {
			t.Errorf("ping request = %s", r.URL.String())
		}
		if !up {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"id":1}]`))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	up = false
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping against a failing endpoint should error")
	}
}
