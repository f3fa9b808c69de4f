package statscache

import (
	"sync"
	"time"

	"github.com/ramonehamilton/duelscope/internal/stats"
)

// Snapshot is the result of one "update statistics" run for a mode.
type Snapshot struct {
	ID            string               `json:"id"`
	Mode          string               `json:"mode"`
	Today         []stats.WinrateEntry `json:"today"`
	TodayMatches  int                  `json:"today_matches"`
	TodayLabel    string               `json:"today_label"`
	Period        []stats.WinrateEntry `json:"period"`
	PeriodMatches int                  `json:"period_matches"`
	PeriodLabel   string               `json:"period_label"`
	PeriodRange   string               `json:"period_range"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// LookupRecorder is told about every cache hit and miss.
type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// CacheConfig configures a Cache.
type CacheConfig struct {
	// TTL is how long a snapshot is served after UpdatedAt. Zero means forever.
	TTL time.Duration

	// Now is the clock used for staleness. Default: time.Now.
	Now func() time.Time

	// Recorder is optional.
	Recorder LookupRecorder
}

// Cache holds the latest snapshot per mode. It is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]Snapshot
	ttl      time.Duration
	now      func() time.Time
	recorder LookupRecorder
}

// NewCache creates an empty cache.
func NewCache(config CacheConfig) *Cache {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Cache{
		entries:  make(map[string]Snapshot),
		ttl:      config.TTL,
		now:      config.Now,
		recorder: config.Recorder,
	}
}

// Put stores snap for mode, replacing any previous snapshot.
// A zero UpdatedAt is set to the cache clock.
func (c *Cache) Put(mode string, snap Snapshot) {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = c.now()
	}
	snap.Mode = mode

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[mode] = snap
}

// Get returns the snapshot for mode. ok is false when there is none or when
// it is older than the TTL.
func (c *Cache) Get(mode string) (snap Snapshot, ok bool) {
	c.mu.RLock()
	snap, ok = c.entries[mode]
	c.mu.RUnlock()

	if ok && c.stale(snap) {
		snap, ok = Snapshot{}, false
	}
	if c.recorder != nil {
		c.recorder.RecordCacheLookup(ok)
	}
	return snap, ok
}

func (c *Cache) stale(snap Snapshot) bool {
	return c.ttl > 0 && c.now().Sub(snap.UpdatedAt) > c.ttl
}
