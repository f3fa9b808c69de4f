package facade

import (
	"context"
	"errors"
	"fmt"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/config"
	"github.com/ramonehamilton/duelscope/internal/metrics"
	"github.com/ramonehamilton/duelscope/internal/stats"
	"github.com/ramonehamilton/duelscope/internal/statscache"
)

// ErrUnknownMode is returned when an operation needs a configured mode.
var ErrUnknownMode = errors.New("unknown game mode")

// Services holds the shared components behind the facade.
type Services struct {
	Config    *config.Config
	Loader    *battlelog.Loader
	Cache     *statscache.Cache
	Refresher *statscache.Refresher
	Metrics   *metrics.ScanMetrics
}

// StatsFacade answers win-rate queries for the HTTP API, the dashboard and
// the CLI. Every query re-reads the battle logs.
type StatsFacade struct {
	services *Services
}

// NewStatsFacade creates a new StatsFacade.
func NewStatsFacade(services *Services) *StatsFacade {
	return &StatsFacade{services: services}
}

// StatsResult is the payload of a win-rate query.
type StatsResult struct {
	Mode         string               `json:"-"`
	Stats        []stats.WinrateEntry `json:"stats"`
	TotalMatches int                  `json:"total_matches"`
}

// MatchupsResult is the payload of a matchup query.
type MatchupsResult struct {
	Mode         string               `json:"-"`
	Classes      []string             `json:"classes"`
	Matchups     []stats.MatchupEntry `json:"matchups"`
	TotalMatches int                  `json:"total_matches"`
}

// ModesResult lists the configured modes.
type ModesResult struct {
	DefaultMode string              `json:"default_mode"`
	Modes       []config.ModeConfig `json:"modes"`
}

// DashboardData feeds the dashboard page.
type DashboardData struct {
	Mode         string
	ModeLabel    string
	DefaultMode  string
	Modes        []config.ModeConfig
	Stats        []stats.WinrateEntry
	TotalMatches int
	Snapshot     *statscache.Snapshot
}

// ResolveMode returns mode, or the default mode when empty.
func (f *StatsFacade) ResolveMode(mode string) string {
	if mode == "" {
		return f.services.Config.DefaultMode()
	}
	return mode
}

func (f *StatsFacade) load(ctx context.Context, mode string, in battlelog.FilterInput) (*battlelog.Dataset, error) {
	filter, err := battlelog.ParseFilter(in, f.services.Loader.Location())
	if err != nil {
		return nil, err
	}
	return f.services.Loader.Load(ctx, f.ResolveMode(mode), filter)
}

// GetStats computes per-class win rates for mode.
func (f *StatsFacade) GetStats(ctx context.Context, mode string, in battlelog.FilterInput) (*StatsResult, error) {
	ds, err := f.load(ctx, mode, in)
	if err != nil {
		return nil, err
	}

	return &StatsResult{
		Mode:         ds.Mode,
		Stats:        stats.Aggregate(ds.Records),
		TotalMatches: ds.Len(),
	}, nil
}

// GetMatchups computes the class-versus-class table for mode.
func (f *StatsFacade) GetMatchups(ctx context.Context, mode string, in battlelog.FilterInput) (*MatchupsResult, error) {
	ds, err := f.load(ctx, mode, in)
	if err != nil {
		return nil, err
	}

	entries := stats.Matchups(ds.Records)
	names := stats.ClassNames(entries)
	if names == nil {
		names = []string{}
	}

	return &MatchupsResult{
		Mode:         ds.Mode,
		Classes:      names,
		Matchups:     entries,
		TotalMatches: ds.Len(),
	}, nil
}

// GetModes returns the configured modes.
func (f *StatsFacade) GetModes() *ModesResult {
	return &ModesResult{
		DefaultMode: f.services.Config.DefaultMode(),
		Modes:       f.services.Config.Modes,
	}
}

// ModeLabel returns the display label of mode.
func (f *StatsFacade) ModeLabel(mode string) string {
	return f.services.Config.ModeLabel(mode)
}

// GetToday returns the cached statistics snapshot of mode, if fresh.
func (f *StatsFacade) GetToday(mode string) (statscache.Snapshot, bool) {
	return f.services.Cache.Get(f.ResolveMode(mode))
}

// Refresh runs "update statistics" for a configured mode now.
func (f *StatsFacade) Refresh(ctx context.Context, mode string) (statscache.Snapshot, error) {
	mode = f.ResolveMode(mode)
	if !f.configured(mode) {
		return statscache.Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	return f.services.Refresher.Update(ctx, mode)
}

// GetMetrics returns the scan and cache metrics.
func (f *StatsFacade) GetMetrics() metrics.Snapshot {
	return f.services.Metrics.Snapshot()
}

// GetDashboard returns the latest-file statistics of mode for the dashboard.
func (f *StatsFacade) GetDashboard(ctx context.Context, mode string) (*DashboardData, error) {
	result, err := f.GetStats(ctx, mode, battlelog.FilterInput{LatestOnly: true})
	if err != nil {
		return nil, err
	}

	data := &DashboardData{
		Mode:         result.Mode,
		ModeLabel:    f.ModeLabel(result.Mode),
		DefaultMode:  f.services.Config.DefaultMode(),
		Modes:        f.services.Config.Modes,
		Stats:        result.Stats,
		TotalMatches: result.TotalMatches,
	}
	if snap, ok := f.services.Cache.Get(result.Mode); ok {
		data.Snapshot = &snap
	}
	return data, nil
}

func (f *StatsFacade) configured(mode string) bool {
	for _, m := range f.services.Config.Modes {
		if m.Key == mode {
			return true
		}
	}
	return false
}
