package handlers

import (
	"net/http"

	"github.com/quarryfs/quarry/pkg/catalog"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	store catalog.Store
}

// NewHealthHandler creates a health handler over the catalog store.
func NewHealthHandler(store catalog.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Liveness reports that the process is up. It never touches the store,
// so a wedged backend does not get the process restarted.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"service": "quarry",
	}))
}

// Readiness reports whether the catalog store can serve requests.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, unhealthyResponse(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, healthyResponse(map[string]string{
		"catalog": "ok",
	}))
}
