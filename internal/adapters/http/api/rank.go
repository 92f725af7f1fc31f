package api

import (
	"context"
	"net/http"
	"strings"
)

// RankDependencies defines the interface for single player reads.
type RankDependencies interface {
	Player(ctx context.Context, year int, name string) (Entry, error)
}

// RankHandler handles player rank requests.
type RankHandler struct {
	deps RankDependencies
}

// NewRankHandler creates a new rank handler.
func NewRankHandler(deps RankDependencies) *RankHandler {
	return &RankHandler{deps: deps}
}

// HandleGetPlayer handles GET /seasons/{year}/players/{player} requests.
// The player segment is path-unescaped by the mux.
func (h *RankHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	year, err := pathYear(r)
	if err != nil {
		writeStoreError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	player := r.PathValue("player")
	if strings.TrimSpace(player) == "" {
		writeStoreError(w, NewKind(op, ErrBadRequest))
		return
	}

	entry, err := h.deps.Player(r.Context(), year, player)
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
