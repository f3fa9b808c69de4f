package battlelog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidDate is returned when a date filter cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidFilter is returned for malformed level or last-matches values.
	ErrInvalidFilter = errors.New("invalid filter")
)

const dateOnlyLayout = "2006-01-02"

// dateTimeLayouts are tried before the date-only layout.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Filter restricts which records a Load returns.
// Zero values disable the corresponding restriction.
type Filter struct {
	Start       *time.Time
	End         *time.Time
	Level       *int
	LastMatches int
	LatestOnly  bool
}

// FilterInput holds the raw filter values as received from a caller.
type FilterInput struct {
	StartDate   string
	EndDate     string
	Level       string
	LastMatches string
	LatestOnly  bool
}

// ParseFilter validates raw filter values. Bad dates yield ErrInvalidDate and
// bad numbers ErrInvalidFilter; neither is ever silently ignored.
func ParseFilter(in FilterInput, loc *time.Location) (Filter, error) {
	f := Filter{LatestOnly: in.LatestOnly}

	if s := strings.TrimSpace(in.StartDate); s != "" {
		t, err := ParseDateBound(s, false, loc)
		if err != nil {
			return Filter{}, err
		}
		f.Start = &t
	}

	if s := strings.TrimSpace(in.EndDate); s != "" {
		t, err := ParseDateBound(s, true, loc)
		if err != nil {
			return Filter{}, err
		}
		f.End = &t
	}

	if s := strings.TrimSpace(in.Level); s != "" {
		level, err := strconv.Atoi(s)
		if err != nil {
			return Filter{}, fmt.Errorf("%w: level %q is not an integer", ErrInvalidFilter, s)
		}
		f.Level = &level
	}

	if s := strings.TrimSpace(in.LastMatches); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return Filter{}, fmt.Errorf("%w: last_matches %q must be a positive integer", ErrInvalidFilter, s)
		}
		f.LastMatches = n
	}

	return f, nil
}

// ParseDateBound parses a date or date-time in loc. For an end bound given as
// a bare date the result is 23:59:59 of that day so the whole day is included.
func ParseDateBound(s string, end bool, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	t, err := time.ParseInLocation(dateOnlyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if end {
		t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, loc)
	}
	return t, nil
}

// Match reports whether a record passes the date and level restrictions.
// Bounds are compared at whole-second precision and are inclusive.
func (f Filter) Match(r MatchRecord) bool {
	if f.Start != nil && r.Timestamp < f.Start.Unix() {
		return false
	}
	if f.End != nil && r.Timestamp > f.End.Unix() {
		return false
	}
	if f.Level != nil && r.Level != *f.Level {
		return false
	}
	return true
}

// IsZero reports whether the filter restricts nothing.
func (f Filter) IsZero() bool {
	return f.Start == nil && f.End == nil && f.Level == nil && f.LastMatches == 0 && !f.LatestOnly
}
