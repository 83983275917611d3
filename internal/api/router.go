// Package api wires the HTTP transport for the engagement service.
package api

import (
	"github.com/gorilla/mux"

	"github.com/Abtechguru/veritusblogs-engagement/internal/api/recovery"
	"github.com/Abtechguru/veritusblogs-engagement/internal/feed"
	"github.com/Abtechguru/veritusblogs-engagement/internal/health"
	"github.com/Abtechguru/veritusblogs-engagement/internal/services"
)

// Deps carries the wired components the router serves.
type Deps struct {
	Award       *services.AwardService
	Boards      *services.LeaderboardService
	Feed        *feed.Feed
	Service     *health.ServiceHealthChecker
	StoreHealth health.HealthChecker
}

// NewRouter creates the HTTP router with all engagement routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	awardHandler := NewAwardHandler(d.Award)
	boardHandler := NewLeaderboardHandler(d.Boards)
	activitiesHandler := NewActivitiesHandler(d.Feed)
	healthHandler := NewHealthHandler(d.Service, d.StoreHealth)

	// Health endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.HandleFunc("/api/health/db", healthHandler.CheckStoreHealth).Methods("GET")

	// Award endpoints
	router.HandleFunc("/gamification/activities:grant", awardHandler.Grant).Methods("POST")
	router.HandleFunc("/gamification/user-xp", awardHandler.GetUserXP).Methods("GET")

	// Leaderboard and feed endpoints
	router.HandleFunc("/gamification/leaderboard", boardHandler.GetLeaderboard).Methods("GET")
	router.HandleFunc("/gamification/activities", activitiesHandler.GetActivities).Methods("GET")

	// Account administration
	router.HandleFunc("/gamification/accounts/{userId}", awardHandler.PutAccount).Methods("PUT")
	router.HandleFunc("/gamification/accounts:rebuild", awardHandler.Rebuild).Methods("POST")

	return router
}
