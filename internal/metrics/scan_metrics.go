package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
)

// ScanMetrics tracks battle log scans, statistics cache lookups and
// refreshes. It satisfies battlelog.ScanRecorder.
type ScanMetrics struct {
	LoadLatency    *Histogram
	RefreshLatency *Histogram

	Scans         atomic.Uint64
	FilesScanned  atomic.Uint64
	FilesFailed   atomic.Uint64
	LinesSkipped  atomic.Uint64
	RecordsLoaded atomic.Uint64
	CacheHits     atomic.Uint64
	CacheMisses   atomic.Uint64
	Refreshes     atomic.Uint64
	RefreshErrors atomic.Uint64

	mu        sync.RWMutex
	startTime time.Time
	lastScan  time.Time
}

// NewScanMetrics creates a metrics collector.
func NewScanMetrics() *ScanMetrics {
	return &ScanMetrics{
		LoadLatency:    NewHistogram(defaultHistogramSize),
		RefreshLatency: NewHistogram(defaultHistogramSize),
		startTime:      time.Now(),
	}
}

// RecordScan records one completed loader pass.
func (m *ScanMetrics) RecordScan(elapsed time.Duration, ds *battlelog.Dataset) {
	m.LoadLatency.Record(elapsed)
	m.Scans.Add(1)

	if ds != nil {
		m.FilesScanned.Add(uint64(len(ds.Files)))
		m.FilesFailed.Add(uint64(len(ds.FailedFiles())))
		m.LinesSkipped.Add(uint64(ds.SkippedLines()))
		m.RecordsLoaded.Add(uint64(ds.Len()))
	}

	m.mu.Lock()
	m.lastScan = time.Now()
	m.mu.Unlock()
}

// RecordRefresh records one statistics refresh and whether it failed.
func (m *ScanMetrics) RecordRefresh(elapsed time.Duration, err error) {
	m.RefreshLatency.Record(elapsed)
	m.Refreshes.Add(1)
	if err != nil {
		m.RefreshErrors.Add(1)
	}
}

// RecordCacheLookup counts a cache hit or miss.
func (m *ScanMetrics) RecordCacheLookup(hit bool) {
	if hit {
		m.CacheHits.Add(1)
		return
	}
	m.CacheMisses.Add(1)
}

// Snapshot is a point-in-time view of the collected metrics.
type Snapshot struct {
	LoadLatency    LatencyStats `json:"load_latency"`
	RefreshLatency LatencyStats `json:"refresh_latency"`

	Scans         uint64  `json:"scans"`
	FilesScanned  uint64  `json:"files_scanned"`
	FilesFailed   uint64  `json:"files_failed"`
	LinesSkipped  uint64  `json:"lines_skipped"`
	RecordsLoaded uint64  `json:"records_loaded"`
	CacheHits     uint64  `json:"cache_hits"`
	CacheMisses   uint64  `json:"cache_misses"`
	CacheHitRate  float64 `json:"cache_hit_rate"` // percentage
	Refreshes     uint64  `json:"refreshes"`
	RefreshErrors uint64  `json:"refresh_errors"`

	LastScan *time.Time `json:"last_scan,omitempty"`
	Uptime   string     `json:"uptime"`
}

// Snapshot returns the current values.
func (m *ScanMetrics) Snapshot() Snapshot {
	hits := m.CacheHits.Load()
	misses := m.CacheMisses.Load()

	hitRate := 0.0
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses) * 100
	}

	m.mu.RLock()
	start := m.startTime
	last := m.lastScan
	m.mu.RUnlock()

	s := Snapshot{
		LoadLatency:    m.LoadLatency.Summary(),
		RefreshLatency: m.RefreshLatency.Summary(),
		Scans:          m.Scans.Load(),
		FilesScanned:   m.FilesScanned.Load(),
		FilesFailed:    m.FilesFailed.Load(),
		LinesSkipped:   m.LinesSkipped.Load(),
		RecordsLoaded:  m.RecordsLoaded.Load(),
		CacheHits:      hits,
		CacheMisses:    misses,
		CacheHitRate:   hitRate,
		Refreshes:      m.Refreshes.Load(),
		RefreshErrors:  m.RefreshErrors.Load(),
		Uptime:         time.Since(start).Round(time.Second).String(),
	}
	if !last.IsZero() {
		s.LastScan = &last
	}
	return s
}
