package handlers

import (
	"net/http"

	"github.com/ramonehamilton/duelscope/internal/api/response"
	"github.com/ramonehamilton/duelscope/internal/version"
)

// SystemHandler handles system-related API requests.
type SystemHandler struct {
	svc StatsService
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(svc StatsService) *SystemHandler {
	return &SystemHandler{svc: svc}
}

// Health reports that the server is up.
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]string{
		"status":  "healthy",
		"service": "duelscope",
		"version": version.GetVersion(),
	})
}

// GetMetrics returns scan, cache and refresh metrics.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.svc.GetMetrics())
}
