package handlers

import (
	"fmt"
	"net/http"

	"github.com/ramonehamilton/duelscope/internal/api/response"
)

// StatsHandler handles win-rate API requests.
type StatsHandler struct {
	svc StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats returns per-class win rates for the filtered records of a mode.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	in, err := filterInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.GetStats(r.Context(), r.URL.Query().Get("mode"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// GetMatchups returns the class-versus-class table for the filtered records.
func (h *StatsHandler) GetMatchups(w http.ResponseWriter, r *http.Request) {
	in, err := filterInput(r)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.GetMatchups(r.Context(), r.URL.Query().Get("mode"), in)
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, result)
}

// GetModes returns the configured modes and the default mode.
func (h *StatsHandler) GetModes(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, h.svc.GetModes())
}

// GetToday returns the cached statistics snapshot of a mode.
func (h *StatsHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	mode := h.svc.ResolveMode(r.URL.Query().Get("mode"))

	snap, ok := h.svc.GetToday(mode)
	if !ok {
		response.NotFound(w, fmt.Errorf("no current statistics for mode %q", mode))
		return
	}

	response.OK(w, snap)
}

// Refresh recomputes the cached statistics of a mode now.
func (h *StatsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Refresh(r.Context(), r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	response.OK(w, snap)
}
