package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/mvpshare/internal/adapters/repository"
	"github.com/okian/mvpshare/internal/domain/types"
)

// LeaderboardDependencies defines the interface for season ranking reads.
type LeaderboardDependencies interface {
	Season(ctx context.Context, year, n int, order repository.Order) (types.SeasonDetail, error)
}

// LeaderboardHandler handles season ranking requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetSeason handles GET /seasons/{year}?limit=N&order=actual|predicted.
// Without a limit every player of the season is listed.
func (h *LeaderboardHandler) HandleGetSeason(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_season"
	year, err := pathYear(r)
	if err != nil {
		writeStoreError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	n := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err = strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeStoreError(w, NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
	}

	order, err := repository.ParseOrder(r.URL.Query().Get("order"))
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}

	detail, err := h.deps.Season(r.Context(), year, n, order)
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func pathYear(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("year"))
}
