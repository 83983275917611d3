package api

import (
	"net/http"
	"time"

	"github.com/Abtechguru/veritusblogs-engagement/internal/api/respond"
	"github.com/Abtechguru/veritusblogs-engagement/internal/health"
)

// HealthHandler exposes cached service and store health. Probing happens
// in background checkers; these endpoints never touch dependencies.
type HealthHandler struct {
	service *health.ServiceHealthChecker
	store   health.HealthChecker
}

func NewHealthHandler(service *health.ServiceHealthChecker, store health.HealthChecker) *HealthHandler {
	return &HealthHandler{service: service, store: store}
}

type healthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// CheckHealth GET /api/health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, h.service.IsHealthy())
}

// CheckStoreHealth GET /api/health/db
func (h *HealthHandler) CheckStoreHealth(w http.ResponseWriter, r *http.Request) {
	writeHealth(w, h.store.IsHealthy())
}

func writeHealth(w http.ResponseWriter, healthy bool) {
	status := http.StatusOK
	body := healthStatus{Status: "healthy", Timestamp: time.Now().UTC()}
	if !healthy {
		status = http.StatusServiceUnavailable
		body.Status = "unhealthy"
	}
	respond.WriteJSON(w, status, body)
}
