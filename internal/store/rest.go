package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ckpl/auction-ingest/internal/config"
)

// REST is a Store that talks to the hosted PostgREST endpoint
// (<base>/rest/v1/<table>). Every request is paced by a token bucket so a
// large import does not trip the host's rate limits.
type REST struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewREST creates a REST store client with rate limiting.
func NewREST(baseURL, apiKey string, requestsPerMinute int, logger *slog.Logger) *REST {
	if logger == nil {
		logger = slog.Default()
	}
	if requestsPerMinute <= 0 {
		requestsPerMinute = 600
	}
	rps := float64(requestsPerMinute) / 60.0
	return &REST{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     logger,
	}
}

// OpenREST builds a REST store from configuration.
func OpenREST(cfg *config.Config, logger *slog.Logger) *REST {
	return NewREST(cfg.StoreURL, cfg.StoreKey, cfg.StoreRequestsPerMinute, logger)
}

// do performs a rate-limited request against a table and decodes the JSON
// response into out (if out is non-nil).
func (c *REST) do(ctx context.Context, method, table string, params url.Values, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + "/" + table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned %d: %s", method, table, resp.StatusCode, truncate(data, 200))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *REST) ListSports(ctx context.Context) ([]Sport, error) {
	var sports []Sport
	params := url.Values{
		"select": {"id,name,min_teams,min_players_per_team"},
		"order":  {"id"},
	}
	if err := c.do(ctx, http.MethodGet, config.SportsTable, params, nil, &sports); err != nil {
		return nil, fmt.Errorf("list sports: %w", err)
	}
	return sports, nil
}

func (c *REST) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	params := url.Values{"select": {"id,name"}, "order": {"id"}}
	if err := c.do(ctx, http.MethodGet, config.CategoriesTable, params, nil, &cats); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (c *REST) CreateSport(ctx context.Context, s Sport) (Sport, error) {
	body := map[string]any{
		"name":                 s.Name,
		"min_teams":            s.MinTeams,
		"min_players_per_team": s.MinPlayersPerTeam,
	}
	var created []Sport
	if err := c.do(ctx, http.MethodPost, config.SportsTable, nil, body, &created); err != nil {
		return Sport{}, fmt.Errorf("create sport %q: %w", s.Name, err)
	}
	if len(created) == 0 {
		return Sport{}, fmt.Errorf("create sport %q: empty response", s.Name)
	}
	return created[0], nil
}

const playerColumns = "id,name,sport_id,category_id,photo_url,position,status"

func (c *REST) FindPlayer(ctx context.Context, name string, sportID int) (Player, error) {
	var players []Player
	params := url.Values{
		"select":   {playerColumns},
		"name":     {"eq." + name},
		"sport_id": {"eq." + strconv.Itoa(sportID)},
		"limit":    {"1"},
	}
	if err := c.do(ctx, http.MethodGet, config.PlayersTable, params, nil, &players); err != nil {
		return Player{}, fmt.Errorf("find player %q: %w", name, err)
	}
	if len(players) == 0 {
		return Player{}, ErrNotFound
	}
	return players[0], nil
}

// InsertPlayers posts the batch as one JSON array; PostgREST inserts it in a
// single statement.
func (c *REST) InsertPlayers(ctx context.Context, players []NewPlayer) (int, error) {
	if len(players) == 0 {
		return 0, nil
	}
	var created []Player
	if err := c.do(ctx, http.MethodPost, config.PlayersTable, nil, players, &created); err != nil {
		return 0, fmt.Errorf("insert players: %w", err)
	}
	return len(created), nil
}

func (c *REST) ListPlayers(ctx context.Context, sportID int) ([]Player, error) {
	var players []Player
	params := url.Values{
		"select":   {playerColumns},
		"sport_id": {"eq." + strconv.Itoa(sportID)},
		"order":    {"id"},
	}
	if err := c.do(ctx, http.MethodGet, config.PlayersTable, params, nil, &players); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return players, nil
}

func (c *REST) UpdatePlayerPosition(ctx context.Context, playerID int, position string) error {
	var updated []Player
	params := url.Values{"id": {"eq." + strconv.Itoa(playerID)}}
	body := map[string]string{"position": position}
	if err := c.do(ctx, http.MethodPatch, config.PlayersTable, params, body, &updated); err != nil {
		return fmt.Errorf("update player %d: %w", playerID, err)
	}
	if len(updated) == 0 {
		return fmt.Errorf("update player %d: %w", playerID, ErrNotFound)
	}
	return nil
}

// Ping reads a single sport id.
func (c *REST) Ping(ctx context.Context) error {
	var ids []struct {
		ID int `json:"id"`
	}
	params := url.Values{"select": {"id"}, "limit": {"1"}}
	if err := c.do(ctx, http.MethodGet, config.SportsTable, params, nil, &ids); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases idle HTTP connections.
func (c *REST) Close() {
	c.httpClient.CloseIdleConnections()
}

// truncate returns a truncated string representation for error messages.
func truncate(b []byte, maxLen int) string {
	if len(b) <= maxLen {
		return string(b)
	}
	return string(b[:maxLen]) + "..."
}
