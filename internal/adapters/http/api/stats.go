package api

import (
	"context"
	"net/http"

	"github.com/okian/mvpshare/internal/domain/types"
)

// StatsProvider exposes run-level results.
type StatsProvider interface {
	Summary(ctx context.Context) (types.Summary, error)
	Seasons(ctx context.Context) ([]types.Season, error)
}

// StatsHandler handles summary requests.
type StatsHandler struct {
	deps StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsProvider) *StatsHandler {
	return &StatsHandler{deps: deps}
}

// HandleSummary handles GET /summary requests.
func (h *StatsHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	s, err := h.deps.Summary(r.Context())
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleSeasons handles GET /seasons requests.
func (h *StatsHandler) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_seasons"
	seasons, err := h.deps.Seasons(r.Context())
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, seasons)
}
