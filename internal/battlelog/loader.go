package battlelog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"
)

// ScanRecorder receives the outcome of each Load. It is satisfied by the
// scan metrics collector.
type ScanRecorder interface {
	RecordScan(elapsed time.Duration, ds *Dataset)
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// DataDir holds one sub-directory of log files per game mode.
	DataDir string

	// Parser turns lines into records. Required.
	Parser *Parser

	// Logger receives per-file failures. Default: slog.Default().
	Logger *slog.Logger

	// Recorder is optional.
	Recorder ScanRecorder
}

// Loader reads battle logs of a game mode into memory.
// Every call re-reads the files; nothing is cached between calls.
type Loader struct {
	dataDir  string
	parser   *Parser
	logger   *slog.Logger
	recorder ScanRecorder
}

// NewLoader creates a Loader.
func NewLoader(config LoaderConfig) (*Loader, error) {
	if config.Parser == nil {
		return nil, fmt.Errorf("parser is required")
	}
	if config.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Loader{
		dataDir:  config.DataDir,
		parser:   config.Parser,
		logger:   config.Logger,
		recorder: config.Recorder,
	}, nil
}

// DataDir returns the root data directory.
func (l *Loader) DataDir() string {
	return l.dataDir
}

// Location returns the time zone record dates are expressed in.
func (l *Loader) Location() *time.Location {
	return l.parser.Location()
}

// Load returns the records of mode that pass filter.
//
// A missing mode directory yields an empty dataset. A file that fails part
// way is recorded in Dataset.Files and the remaining files are still read.
// With LastMatches set, the newest N records across all files are returned.
func (l *Loader) Load(ctx context.Context, mode string, filter Filter) (*Dataset, error) {
	start := time.Now()
	ds := &Dataset{Mode: mode, Records: []MatchRecord{}}

	files, err := l.selectFiles(mode, filter.LatestOnly)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(l.dataDir, mode)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, result := ReadFile(filepath.Join(dir, name), l.parser, filter.Match)
		ds.Records = append(ds.Records, records...)
		ds.Files = append(ds.Files, result)

		if result.Err != nil {
			l.logger.Warn("Abandoned battle log file",
				"mode", mode,
				"file", name,
				"records", result.Records,
				"error", result.Err)
		}
	}

	if filter.LastMatches > 0 {
		ds.Records = newest(ds.Records, filter.LastMatches)
	}

	l.logger.Debug("Loaded battle logs",
		"mode", mode,
		"filtered", !filter.IsZero(),
		"files", len(ds.Files),
		"failed", len(ds.FailedFiles()),
		"records", len(ds.Records),
		"elapsed", time.Since(start))

	if l.recorder != nil {
		l.recorder.RecordScan(time.Since(start), ds)
	}

	return ds, nil
}

func (l *Loader) selectFiles(mode string, latestOnly bool) ([]string, error) {
	if !latestOnly {
		return ListFiles(l.dataDir, mode)
	}

	name, ok, err := LatestFile(l.dataDir, mode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return []string{name}, nil
}

// newest returns the n records with the greatest timestamps, newest first.
func newest(records []MatchRecord, n int) []MatchRecord {
	sorted := make([]MatchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
