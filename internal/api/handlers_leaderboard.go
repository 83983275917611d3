package api

import (
	"net/http"

	"github.com/Abtechguru/veritusblogs-engagement/internal/api/respond"
	"github.com/Abtechguru/veritusblogs-engagement/internal/api/validate"
	"github.com/Abtechguru/veritusblogs-engagement/internal/model"
	"github.com/Abtechguru/veritusblogs-engagement/internal/services"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardHandler serves ranked views from the snapshot cache.
type LeaderboardHandler struct {
	boards *services.LeaderboardService
}

func NewLeaderboardHandler(svc *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{boards: svc}
}

// GetLeaderboard GET /gamification/leaderboard?scope=weekly|alltime&limit=
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = string(model.ScopeWeekly)
	}
	if err := validate.Scope(scope); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	limit, err := validate.Limit(r.URL.Query().Get("limit"), defaultLeaderboardLimit, maxLeaderboardLimit)
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	var entries []model.LeaderboardEntry
	switch model.Scope(scope) {
	case model.ScopeWeekly:
		entries, err = h.boards.WeeklyTop(r.Context(), limit)
	case model.ScopeAllTime:
		entries, err = h.boards.AllTimeTop(r.Context(), limit)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, entries)
}
