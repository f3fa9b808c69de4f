package battlelog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogExtension is the suffix of battle log files inside a mode directory.
const LogExtension = ".txt"

// ErrInvalidMode is returned for mode names that would escape the data directory.
var ErrInvalidMode = errors.New("invalid game mode")

// ModeDir returns the directory holding the logs of a game mode.
func ModeDir(dataDir, mode string) (string, error) {
	if err := ValidateMode(mode); err != nil {
		return "", err
	}
	return filepath.Join(dataDir, mode), nil
}

// ValidateMode rejects empty names and names containing path elements.
func ValidateMode(mode string) error {
	if mode == "" || mode == "." || mode == ".." ||
		strings.ContainsAny(mode, `/\`) || strings.Contains(mode, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	return nil
}

// ListFiles returns the names of the log files of a mode, sorted by name.
// A missing directory yields an empty list and no error.
func ListFiles(dataDir, mode string) ([]string, error) {
	dir, err := ModeDir(dataDir, mode)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read mode directory: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), LogExtension) || !isRegular(dir, e) {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	return files, nil
}

// LatestFile returns the most recently modified log file of a mode.
// ok is false when the mode has no log files. Equal modification times
// resolve to the name that sorts first.
func LatestFile(dataDir, mode string) (name string, ok bool, err error) {
	files, err := ListFiles(dataDir, mode)
	if err != nil {
		return "", false, err
	}

	dir := filepath.Join(dataDir, mode)
	var latest time.Time
	for _, f := range files {
		info, statErr := os.Stat(filepath.Join(dir, f))
		if statErr != nil {
			// File vanished between listing and stat.
			continue
		}
		if !ok || info.ModTime().After(latest) {
			name, latest, ok = f, info.ModTime(), true
		}
	}

	return name, ok, nil
}

// isRegular reports whether e is a regular file, following symlinks.
func isRegular(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}
