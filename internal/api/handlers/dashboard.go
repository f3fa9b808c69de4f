package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/ramonehamilton/duelscope/internal/api/response"
	"github.com/ramonehamilton/duelscope/internal/facade"
)

//go:embed templates/*.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// DashboardHandler renders the HTML dashboard.
type DashboardHandler struct {
	svc StatsService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(svc StatsService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

type dashboardView struct {
	*facade.DashboardData
	ChartURL    string
	MatchupsURL string
}

// Index renders the latest-file statistics of the requested or default mode.
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.GetDashboard(r.Context(), r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, err)
		return
	}

	q := url.Values{}
	q.Set("mode", data.Mode)
	q.Set("latest_only", "true")

	view := dashboardView{
		DashboardData: data,
		ChartURL:      "/charts/winrates?" + q.Encode(),
		MatchupsURL:   "/charts/matchups?" + q.Encode(),
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		response.InternalError(w, err)
		return
	}
	writeHTML(w, buf.Bytes())
}
