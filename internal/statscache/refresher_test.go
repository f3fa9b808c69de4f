package statscache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
	"github.com/ramonehamilton/duelscope/internal/classes"
	"github.com/ramonehamilton/duelscope/internal/stats"
)

// Wednesday.
var refNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type refreshCounter struct {
	runs, failures int
}

func (r *refreshCounter) RecordRefresh(_ time.Duration, err error) {
	r.runs++
	if err != nil {
		r.failures++
	}
}

// countingLoader counts Load calls.
type countingLoader struct {
	DatasetLoader

	mu    sync.Mutex
	calls int
}

func (c *countingLoader) Load(ctx context.Context, mode string, filter battlelog.Filter) (*battlelog.Dataset, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.DatasetLoader.Load(ctx, mode, filter)
}

func (c *countingLoader) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func battleLine(at time.Time, class1, class2 int, result int) string {
	return fmt.Sprintf("%d:ranked:1:%d:1:%d:1:%d", at.Unix(), class1, class2, result)
}

func writeBattleLog(t *testing.T, dataDir, mode, name string, lines ...string) {
	t.Helper()
	dir := filepath.Join(dataDir, mode)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestRefresher(t *testing.T, dataDir string, modify func(*RefresherConfig)) (*Refresher, *Cache) {
	t.Helper()

	resolver := classes.NewResolver([]classes.Entry{
		{Level: 1, ClassID: 1, Name: "Mage"},
		{Level: 1, ClassID: 2, Name: "Warrior"},
	})
	loader, err := battlelog.NewLoader(battlelog.LoaderConfig{
		DataDir: dataDir,
		Parser:  battlelog.NewParser(battlelog.SchemaStrict, resolver, time.UTC),
	})
	require.NoError(t, err)

	cache := NewCache(CacheConfig{TTL: time.Hour, Now: func() time.Time { return refNow }})
	config := RefresherConfig{
		Loader: loader,
		Cache:  cache,
		Modes:  []string{"ranked"},
		Now:    func() time.Time { return refNow },
	}
	if modify != nil {
		modify(&config)
	}

	r, err := NewRefresher(config)
	require.NoError(t, err)
	return r, cache
}

func TestNewRefresher_Validation(t *testing.T) {
	_, err := NewRefresher(RefresherConfig{Cache: NewCache(CacheConfig{})})
	assert.Error(t, err)

	_, err = NewRefresher(RefresherConfig{Loader: &battlelog.Loader{}})
	assert.Error(t, err)

	_, err = NewRefresher(RefresherConfig{
		Loader: &battlelog.Loader{},
		Cache:  NewCache(CacheConfig{}),
		Period: "fortnight",
	})
	assert.Error(t, err)
}

func TestRefresher_Update(t *testing.T) {
	dataDir := t.TempDir()
	monday := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	endOfToday := time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC)

	writeBattleLog(t, dataDir, "ranked", "log.txt",
		battleLine(refNow.Add(-2*time.Hour), 1, 2, 1),
		battleLine(monday, 1, 2, 2),
		battleLine(lastWeek, 1, 2, 2),
		battleLine(endOfToday, 2, 1, 1),
	)

	counter := &refreshCounter{}
	r, cache := newTestRefresher(t, dataDir, func(c *RefresherConfig) {
		c.Recorder = counter
	})

	snap, err := r.Update(context.Background(), "ranked")
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, 2, snap.TodayMatches)
	assert.Equal(t, 3, snap.PeriodMatches)
	assert.Equal(t, "This Week", snap.PeriodLabel)
	assert.Equal(t, "2024-01-08 to 2024-01-14", snap.PeriodRange)
	assert.Equal(t, "2024-01-10", snap.TodayLabel)
	assert.Equal(t, []stats.WinrateEntry{
		{ClassName: "Mage", Winrate: 50, Matches: 2},
		{ClassName: "Warrior", Winrate: 50, Matches: 2},
	}, snap.Today)

	cached, ok := cache.Get("ranked")
	require.True(t, ok)
	assert.Equal(t, snap.ID, cached.ID)
	assert.Equal(t, 1, counter.runs)
	assert.Zero(t, counter.failures)
}

func TestRefresher_UpdateMonth(t *testing.T) {
	dataDir := t.TempDir()
	writeBattleLog(t, dataDir, "ranked", "log.txt",
		battleLine(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), 1, 2, 1),
		battleLine(time.Date(2023, 12, 31, 9, 0, 0, 0, time.UTC), 1, 2, 1),
	)

	r, _ := newTestRefresher(t, dataDir, func(c *RefresherConfig) {
		c.Period = stats.PeriodMonth
	})

	snap, err := r.Update(context.Background(), "ranked")
	require.NoError(t, err)
	assert.Equal(t, "This Month", snap.PeriodLabel)
	assert.Equal(t, 1, snap.PeriodMatches)
	assert.Zero(t, snap.TodayMatches)
}

func TestRefresher_UpdateEmptyMode(t *testing.T) {
	r, cache := newTestRefresher(t, t.TempDir(), nil)

	snap, err := r.Update(context.Background(), "ranked")
	require.NoError(t, err)
	assert.Empty(t, snap.Today)
	assert.NotNil(t, snap.Today)

	_, ok := cache.Get("ranked")
	assert.True(t, ok)
}

func TestRefresher_UpdateInvalidMode(t *testing.T) {
	counter := &refreshCounter{}
	r, cache := newTestRefresher(t, t.TempDir(), func(c *RefresherConfig) {
		c.Recorder = counter
	})

	_, err := r.Update(context.Background(), "../etc")
	require.Error(t, err)
	assert.ErrorIs(t, err, battlelog.ErrInvalidMode)
	_, ok := cache.Get("../etc")
	assert.False(t, ok)
	assert.Equal(t, 1, counter.failures)
}

func TestRefresher_UpdateAll(t *testing.T) {
	dataDir := t.TempDir()
	writeBattleLog(t, dataDir, "ranked", "log.txt", battleLine(refNow, 1, 2, 1))

	r, cache := newTestRefresher(t, dataDir, func(c *RefresherConfig) {
		c.Modes = []string{"ranked", "unranked"}
	})

	require.NoError(t, r.UpdateAll(context.Background()))
	for _, mode := range []string{"ranked", "unranked"} {
		_, ok := cache.Get(mode)
		assert.True(t, ok, mode)
	}
}

func TestRefresher_StartStop(t *testing.T) {
	dataDir := t.TempDir()
	writeBattleLog(t, dataDir, "ranked", "log.txt", battleLine(refNow, 1, 2, 1))

	r, cache := newTestRefresher(t, dataDir, nil)

	ctx := context.Background()
	require.NoError(t, r.Start(ctx))
	assert.Error(t, r.Start(ctx), "second start")

	snap, ok := cache.Get("ranked")
	require.True(t, ok, "initial update fills the cache")
	assert.Equal(t, 1, snap.TodayMatches)

	r.Stop()
	r.Stop()
}

func TestRefresher_Ticker(t *testing.T) {
	dataDir := t.TempDir()
	counter := &countingLoader{}
	r, _ := newTestRefresher(t, dataDir, func(c *RefresherConfig) {
		counter.DatasetLoader = c.Loader
		c.Loader = counter
		c.Interval = 10 * time.Millisecond
	})

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.Eventually(t, func() bool {
		return counter.Calls() >= 6
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRefresher_WatchUpdatesOnWrite(t *testing.T) {
	dataDir := t.TempDir()
	writeBattleLog(t, dataDir, "ranked", "log.txt", battleLine(refNow, 1, 2, 1))

	r, cache := newTestRefresher(t, dataDir, func(c *RefresherConfig) {
		c.Watch = true
		c.Debounce = 20 * time.Millisecond
	})

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	writeBattleLog(t, dataDir, "ranked", "log2.txt",
		battleLine(refNow, 1, 2, 1),
		battleLine(refNow, 1, 2, 2),
	)

	require.Eventually(t, func() bool {
		snap, ok := cache.Get("ranked")
		return ok && snap.TodayMatches == 3
	}, 5*time.Second, 20*time.Millisecond)
}

func TestRefresher_WatchNewModeDirectory(t *testing.T) {
	dataDir := t.TempDir()

	r, cache := newTestRefresher(t, dataDir, func(c *RefresherConfig) {
		c.Watch = true
		c.Debounce = 20 * time.Millisecond
	})

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "ranked"), 0o755))
	// Give the watcher a moment to pick up the new directory.
	time.Sleep(100 * time.Millisecond)
	writeBattleLog(t, dataDir, "ranked", "log.txt", battleLine(refNow, 1, 2, 1))

	require.Eventually(t, func() bool {
		snap, ok := cache.Get("ranked")
		return ok && snap.TodayMatches == 1
	}, 5*time.Second, 20*time.Millisecond)
}
