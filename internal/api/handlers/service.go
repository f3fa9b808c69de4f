package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ramonehamilton/duelscope/internal/api/response"
	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/facade"
	"github.com/ramonehamilton/duelscope/internal/metrics"
	"github.com/ramonehamilton/duelscope/internal/statscache"
)

// StatsService is the facade the handlers are served by.
// *facade.StatsFacade implements it.
type StatsService interface {
	ResolveMode(mode string) string
	ModeLabel(mode string) string
	GetStats(ctx context.Context, mode string, in battlelog.FilterInput) (*facade.StatsResult, error)
	GetMatchups(ctx context.Context, mode string, in battlelog.FilterInput) (*facade.MatchupsResult, error)
	GetModes() *facade.ModesResult
	GetToday(mode string) (statscache.Snapshot, bool)
	Refresh(ctx context.Context, mode string) (statscache.Snapshot, error)
	GetDashboard(ctx context.Context, mode string) (*facade.DashboardData, error)
	GetMetrics() metrics.Snapshot
}

// filterInput reads the shared filter query parameters.
func filterInput(r *http.Request) (battlelog.FilterInput, error) {
	q := r.URL.Query()
	in := battlelog.FilterInput{
		StartDate:   q.Get("start_date"),
		EndDate:     q.Get("end_date"),
		Level:       q.Get("level"),
		LastMatches: q.Get("last_matches"),
	}

	if v := strings.TrimSpace(q.Get("latest_only")); v != "" {
		latest, err := strconv.ParseBool(v)
		if err != nil {
			return in, fmt.Errorf("%w: latest_only %q", battlelog.ErrInvalidFilter, v)
		}
		in.LatestOnly = latest
	}

	return in, nil
}

// writeError maps service errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, battlelog.ErrInvalidDate),
		errors.Is(err, battlelog.ErrInvalidFilter),
		errors.Is(err, battlelog.ErrInvalidMode):
		response.BadRequest(w, err)
	case errors.Is(err, facade.ErrUnknownMode):
		response.NotFound(w, err)
	default:
		response.InternalError(w, err)
	}
}
