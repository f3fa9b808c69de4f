package facade

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/classes"
	"github.com/ramonehamilton/duelscope/internal/config"
	"github.com/ramonehamilton/duelscope/internal/metrics"
	"github.com/ramonehamilton/duelscope/internal/statscache"
)

// ServicesOptions tunes NewServices. The zero value is fine for production.
type ServicesOptions struct {
	Logger   *slog.Logger
	Location *time.Location   // record time zone, default time.Local
	Now      func() time.Time // clock for the cache and refresher
}

// NewServices wires the loader, cache, refresher and metrics from config.
// The refresher is created but not started.
func NewServices(cfg *config.Config, opts ServicesOptions) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	schema, err := cfg.Schema()
	if err != nil {
		return nil, err
	}
	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		return nil, err
	}
	interval, err := cfg.GetRefreshInterval()
	if err != nil {
		return nil, err
	}

	scanMetrics := metrics.NewScanMetrics()
	resolver := classes.NewResolver(cfg.ClassEntries())

	loader, err := battlelog.NewLoader(battlelog.LoaderConfig{
		DataDir:  cfg.Data.Dir,
		Parser:   battlelog.NewParser(schema, resolver, opts.Location),
		Logger:   opts.Logger,
		Recorder: scanMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create loader: %w", err)
	}

	cache := statscache.NewCache(statscache.CacheConfig{
		TTL:      ttl,
		Now:      opts.Now,
		Recorder: scanMetrics,
	})

	refresher, err := statscache.NewRefresher(statscache.RefresherConfig{
		Loader:   loader,
		Cache:    cache,
		Logger:   opts.Logger,
		Modes:    cfg.ModeKeys(),
		Period:   cfg.Cache.Period,
		Interval: interval,
		Watch:    cfg.Cache.Watch,
		Now:      opts.Now,
		Recorder: scanMetrics,
	})
	if err != nil {
		return nil, fmt.Errorf("create refresher: %w", err)
	}

	opts.Logger.Debug("Services initialized",
		"dataDir", cfg.Data.Dir,
		"schema", schema,
		"modes", len(cfg.Modes),
		"classes", resolver.Len())

	return &Services{
		Config:    cfg,
		Loader:    loader,
		Cache:     cache,
		Refresher: refresher,
		Metrics:   scanMetrics,
	}, nil
}
