// Package handler provides the HTTP handlers of the report API. Every
// endpoint is read-only: reports are computed from the store or from an
// uploaded CSV and nothing is written back.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ckpl/auction-ingest/internal/api/respond"
	"github.com/ckpl/auction-ingest/internal/backfill"
	"github.com/ckpl/auction-ingest/internal/reconcile"
	"github.com/ckpl/auction-ingest/internal/registration"
	"github.com/ckpl/auction-ingest/internal/store"
)

// maxUploadBytes caps CSV request bodies.
const maxUploadBytes = 10 << 20

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(st store.Store, logger *slog.Logger) *Handler {
	return &Handler{store: st, logger: logger}
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "CKPL Ingest Report API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": []string{
			"GET /api/v1/positions/audit",
			"GET /api/v1/positions/missing",
			"POST /api/v1/registrations/duplicates",
			"POST /api/v1/registrations/preview",
		},
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies the store is reachable.
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("Store health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetPositionAudit returns position completeness for every sport.
func (h *Handler) GetPositionAudit(w http.ResponseWriter, r *http.Request) {
	audits, err := backfill.Audit(r.Context(), h.store)
	if err != nil {
		h.logger.Error("Position audit failed", "error", err)
		respond.WriteError(w, http.StatusBadGateway, "STORE_ERROR", "Failed to read players")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"sports": audits,
	})
}

// GetMissingPositions lists players of one sport without a position.
// The sport defaults to Football.
func (h *Handler) GetMissingPositions(w http.ResponseWriter, r *http.Request) {
	sportName := r.URL.Query().Get("sport")
	if sportName == "" {
		sportName = backfill.DefaultSport
	}
	sport, players, err := backfill.MissingPositions(r.Context(), h.store, sportName)
	if errors.Is(err, backfill.ErrSportNotFound) {
		respond.WriteError(w, http.StatusNotFound, "SPORT_NOT_FOUND", "Unknown sport: "+sportName)
		return
	}
	if err != nil {
		h.logger.Error("Missing positions lookup failed", "sport", sportName, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "STORE_ERROR", "Failed to read players")
		return
	}
	if players == nil {
		players = []store.Player{}
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"sport":   sport,
		"count":   len(players),
		"players": players,
	})
}

// PostDuplicates checks an uploaded registration CSV for repeated
// (name, sport) registrations.
func (h *Handler) PostDuplicates(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.readCSV(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, registration.CheckDuplicates(rows))
}

// PostPreview runs an import as a dry run against the uploaded CSV and
// returns what would be inserted and skipped. The mode query parameter picks
// the preset (default lenient).
func (h *Handler) PostPreview(w http.ResponseWriter, r *http.Request) {
	modeName := r.URL.Query().Get("mode")
	if modeName == "" {
		modeName = reconcile.Lenient.Name
	}
	mode, err := reconcile.ModeByName(modeName)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_MODE", err.Error())
		return
	}

	rows, ok := h.readCSV(w, r)
	if !ok {
		return
	}

	res, err := reconcile.Import(r.Context(), h.store, rows, mode, reconcile.Options{DryRun: true}, h.logger)
	switch {
	case errors.Is(err, registration.ErrUnknownSport), errors.Is(err, reconcile.ErrReferenceNotFound):
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "IMPORT_WOULD_ABORT",
			"The "+mode.Name+" import would stop on this file", err.Error())
		return
	case err != nil:
		h.logger.Error("Import preview failed", "error", err)
		respond.WriteError(w, http.StatusBadGateway, "STORE_ERROR", "Failed to load reference data")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"mode":    mode.Name,
		"summary": res.Summary(),
		"result":  res,
	})
}

func (h *Handler) readCSV(w http.ResponseWriter, r *http.Request) ([]registration.Row, bool) {
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	rows, err := registration.Parse(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.WriteError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "CSV exceeds upload limit")
			return nil, false
		}
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_CSV", "Could not parse registration CSV", err.Error())
		return nil, false
	}
	return rows, true
}
