package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/ramonehamilton/duelscope/internal/api/response"
	"github.com/ramonehamilton/duelscope/internal/charts"
)

// ChartHandler serves rendered chart pages.
type ChartHandler struct {
	svc StatsService
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(svc StatsService) *ChartHandler {
	return &ChartHandler{svc: svc}
}

// WinrateChart renders the win rates of the filtered records as a bar chart.
func (h *ChartHandler) WinrateChart(w http.ResponseWriter, r *http.Request) {
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

	config := charts.DefaultChartConfig()
	config.Title = fmt.Sprintf("%s win rates", h.svc.ModeLabel(result.Mode))
	config.Subtitle = fmt.Sprintf("%d matches", result.TotalMatches)

	var buf bytes.Buffer
	if err := charts.RenderWinrateBar(&buf, result.Stats, config); err != nil {
		response.InternalError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

// MatchupChart renders the class-versus-class table as a heatmap.
func (h *ChartHandler) MatchupChart(w http.ResponseWriter, r *http.Request) {
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

	config := charts.DefaultChartConfig()
	config.Title = fmt.Sprintf("%s matchups", h.svc.ModeLabel(result.Mode))
	config.Subtitle = fmt.Sprintf("%d matches", result.TotalMatches)

	var buf bytes.Buffer
	if err := charts.RenderMatchupHeatmap(&buf, result.Matchups, config); err != nil {
		response.InternalError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
