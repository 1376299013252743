package http

import (
	"net/http"

	"github.com/galionhq/nexus/internal/utils"
	"github.com/galionhq/nexus/models"
)

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	health := h.services.HealthService.Check(r.Context())

	// A degraded dependency set answers 503 so load balancers rotate the
	// instance out, but the body still names the failing checks.
	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	utils.WriteJSON(w, health, status)
}

func (h *Handler) getServerVersion(w http.ResponseWriter, r *http.Request) {
	version := h.services.AppInfoService.GetAppVersion(r.Context())

	utils.WriteJSON(w, models.VersionResponse{Version: version}, http.StatusOK)
}
