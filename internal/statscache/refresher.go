package statscache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/stats"
)

const defaultDebounce = 500 * time.Millisecond

// DatasetLoader loads filtered battle logs. *battlelog.Loader satisfies it.
type DatasetLoader interface {
	Load(ctx context.Context, mode string, filter battlelog.Filter) (*battlelog.Dataset, error)
	DataDir() string
	Location() *time.Location
}

// RefreshRecorder is told about every update run.
type RefreshRecorder interface {
	RecordRefresh(elapsed time.Duration, err error)
}

// RefresherConfig configures a Refresher.
type RefresherConfig struct {
	Loader DatasetLoader
	Cache  *Cache
	Logger *slog.Logger

	// Modes updated by UpdateAll and watched by Start.
	Modes []string

	// Period is stats.PeriodWeek (default) or stats.PeriodMonth.
	Period string

	// Interval between scheduled updates. Zero disables the ticker.
	Interval time.Duration

	// Watch enables file system notifications on the mode directories.
	Watch bool

	// Debounce delays an update after the last file event. Default: 500ms.
	Debounce time.Duration

	// Now is the clock deciding "today". Default: time.Now.
	Now func() time.Time

	// Recorder is optional.
	Recorder RefreshRecorder
}

// Refresher keeps the statistics cache current.
type Refresher struct {
	config RefresherConfig
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewRefresher creates a refresher. It does nothing until Update or Start.
func NewRefresher(config RefresherConfig) (*Refresher, error) {
	if config.Loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if _, _, err := stats.PeriodRangeFrom(config.Period, time.Now()); err != nil {
		return nil, err
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &Refresher{
		config: config,
		logger: config.Logger,
	}, nil
}

// Update recomputes today's and the current period's win rates for mode and
// stores them in the cache. Failures are logged and returned, never fatal.
func (r *Refresher) Update(ctx context.Context, mode string) (Snapshot, error) {
	start := time.Now()
	snap, err := r.build(ctx, mode)
	if r.config.Recorder != nil {
		r.config.Recorder.RecordRefresh(time.Since(start), err)
	}

	if err != nil {
		r.logger.Error("Statistics update failed", "mode", mode, "error", err)
		return Snapshot{}, err
	}

	r.config.Cache.Put(mode, snap)
	r.logger.Info("Statistics updated",
		"mode", mode,
		"todayMatches", snap.TodayMatches,
		"periodMatches", snap.PeriodMatches,
		"period", snap.PeriodRange)

	return snap, nil
}

func (r *Refresher) build(ctx context.Context, mode string) (Snapshot, error) {
	now := r.config.Now().In(r.config.Loader.Location())

	day := stats.DayRangeFrom(now)
	period, label, err := stats.PeriodRangeFrom(r.config.Period, now)
	if err != nil {
		return Snapshot{}, err
	}

	today, err := r.load(ctx, mode, day)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load today: %w", err)
	}
	current, err := r.load(ctx, mode, period)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load %s: %w", label, err)
	}

	return Snapshot{
		ID:            uuid.NewString(),
		Mode:          mode,
		Today:         stats.Aggregate(today.Records),
		TodayMatches:  today.Len(),
		TodayLabel:    day.FormatPeriod(),
		Period:        stats.Aggregate(current.Records),
		PeriodMatches: current.Len(),
		PeriodLabel:   label,
		PeriodRange:   period.FormatPeriod(),
		UpdatedAt:     r.config.Now(),
	}, nil
}

func (r *Refresher) load(ctx context.Context, mode string, tr stats.TimeRange) (*battlelog.Dataset, error) {
	from := tr.Start
	to := tr.LastSecond()
	return r.config.Loader.Load(ctx, mode, battlelog.Filter{Start: &from, End: &to})
}

// UpdateAll updates every configured mode and returns the joined errors.
func (r *Refresher) UpdateAll(ctx context.Context) error {
	var errs []error
	for _, mode := range r.config.Modes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := r.Update(ctx, mode); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", mode, err))
		}
	}
	return errors.Join(errs...)
}

// Start runs an initial UpdateAll and then keeps the cache current from the
// ticker and, when enabled, file system events. It returns once the
// background loop is running.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher already started")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.mu.Unlock()

	if err := r.UpdateAll(ctx); err != nil {
		r.logger.Warn("Initial statistics update incomplete", "error", err)
	}

	var watcher *fsnotify.Watcher
	if r.config.Watch {
		w, err := r.newWatcher()
		if err != nil {
			r.logger.Warn("File watching disabled", "error", err)
		} else {
			watcher = w
		}
	}

	r.wg.Add(1)
	go r.loop(ctx, watcher)

	r.logger.Info("Statistics refresher started",
		"modes", len(r.config.Modes),
		"interval", r.config.Interval,
		"watching", watcher != nil)

	return nil
}

// Stop stops the background loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	r.mu.Unlock()

	r.wg.Wait()
}

// newWatcher watches the data directory and every existing mode directory.
func (r *Refresher) newWatcher() (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	dataDir := r.config.Loader.DataDir()
	if err := watcher.Add(dataDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dataDir, err)
	}

	for _, mode := range r.config.Modes {
		r.watchMode(watcher, mode)
	}
	return watcher, nil
}

func (r *Refresher) watchMode(watcher *fsnotify.Watcher, mode string) {
	dir, err := battlelog.ModeDir(r.config.Loader.DataDir(), mode)
	if err != nil {
		return
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	if err := watcher.Add(dir); err != nil {
		r.logger.Warn("Failed to watch mode directory", "mode", mode, "error", err)
	}
}

func (r *Refresher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer r.wg.Done()

	var (
		events  <-chan fsnotify.Event
		errs    <-chan error
		tick    <-chan time.Time
		timer   *time.Timer
		pending <-chan time.Time
	)
	dirty := make(map[string]struct{})

	if watcher != nil {
		defer func() {
			if err := watcher.Close(); err != nil {
				r.logger.Warn("Failed to close file watcher", "error", err)
			}
		}()
		events = watcher.Events
		errs = watcher.Errors
	}
	if r.config.Interval > 0 {
		ticker := time.NewTicker(r.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-tick:
			if err := r.UpdateAll(ctx); err != nil {
				r.logger.Warn("Scheduled statistics update incomplete", "error", err)
			}
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			mode, ok := r.modeFor(watcher, event)
			if !ok {
				continue
			}
			dirty[mode] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(r.config.Debounce)
			} else {
				timer.Reset(r.config.Debounce)
			}
			pending = timer.C
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.logger.Warn("File watcher error", "error", err)
		case <-pending:
			pending = nil
			for _, mode := range sortedModes(dirty) {
				// Errors are already logged by Update.
				_, _ = r.Update(ctx, mode)
			}
			clear(dirty)
		}
	}
}

// modeFor maps a file event to the configured mode it affects. A newly
// created mode directory is added to the watcher.
func (r *Refresher) modeFor(watcher *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return "", false
	}

	dataDir := filepath.Clean(r.config.Loader.DataDir())
	parent := filepath.Dir(event.Name)

	if parent == dataDir {
		mode := filepath.Base(event.Name)
		if !r.configured(mode) {
			return "", false
		}
		if event.Has(fsnotify.Create) {
			r.watchMode(watcher, mode)
		}
		return mode, true
	}

	if filepath.Dir(parent) != dataDir || filepath.Ext(event.Name) != battlelog.LogExtension {
		return "", false
	}
	mode := filepath.Base(parent)
	return mode, r.configured(mode)
}

func (r *Refresher) configured(mode string) bool {
	for _, m := range r.config.Modes {
		if m == mode {
			return true
		}
	}
	return false
}

func sortedModes(set map[string]struct{}) []string {
	modes := make([]string, 0, len(set))
	for m := range set {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
