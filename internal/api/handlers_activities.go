package api

import (
	"net/http"

	"github.com/Abtechguru/veritusblogs-engagement/internal/api/respond"
	"github.com/Abtechguru/veritusblogs-engagement/internal/api/validate"
	"github.com/Abtechguru/veritusblogs-engagement/internal/feed"
)

const defaultActivitiesLimit = 20

// ActivitiesHandler serves the recent-activity window straight from the
// in-memory feed; reads never touch the database.
type ActivitiesHandler struct {
	feed *feed.Feed
}

func NewActivitiesHandler(f *feed.Feed) *ActivitiesHandler {
	return &ActivitiesHandler{feed: f}
}

// GetActivities GET /gamification/activities?limit=
func (h *ActivitiesHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	limit, err := validate.Limit(r.URL.Query().Get("limit"), defaultActivitiesLimit, h.feed.Capacity())
	if err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, h.feed.Recent(limit))
}
