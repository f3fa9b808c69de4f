package stats

import (
	"fmt"
	"time"
)

// TimeRange represents a start and end time period. End is exclusive.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// startOfDay returns midnight of t's day in t's location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayRangeFrom returns the calendar day containing referenceTime.
func DayRangeFrom(referenceTime time.Time) TimeRange {
	start := startOfDay(referenceTime)
	return TimeRange{
		Start: start,
		End:   start.AddDate(0, 0, 1),
	}
}

// WeekRangeFrom calculates the start and end of a week with an offset from a reference time.
// offset = 0 means the week containing referenceTime, -1 means previous week, etc.
func WeekRangeFrom(referenceTime time.Time, offset int) TimeRange {
	weekday := int(referenceTime.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is 7 (ISO 8601)
	}
	currentWeekStart := startOfDay(referenceTime).AddDate(0, 0, -weekday+1)

	weekStart := currentWeekStart.AddDate(0, 0, offset*7)
	return TimeRange{
		Start: weekStart,
		End:   weekStart.AddDate(0, 0, 7),
	}
}

// MonthRangeFrom calculates the start and end of a month with an offset from a reference time.
// offset = 0 means the month containing referenceTime, -1 means previous month, etc.
func MonthRangeFrom(referenceTime time.Time, offset int) TimeRange {
	currentMonthStart := time.Date(referenceTime.Year(), referenceTime.Month(), 1, 0, 0, 0, 0, referenceTime.Location())

	monthStart := currentMonthStart.AddDate(0, offset, 0)
	return TimeRange{
		Start: monthStart,
		End:   monthStart.AddDate(0, 1, 0),
	}
}

// LastSecond returns the final whole second inside the range, suitable as an
// inclusive end bound for record filters.
func (tr TimeRange) LastSecond() time.Time {
	return tr.End.Add(-time.Second)
}

// FormatPeriod returns a human-readable description of the time period.
func (tr TimeRange) FormatPeriod() string {
	start := tr.Start.Format("2006-01-02")
	end := tr.End.AddDate(0, 0, -1).Format("2006-01-02") // End is exclusive, so subtract 1 day for display
	if start == end {
		return start
	}
	return fmt.Sprintf("%s to %s", start, end)
}

// Period names accepted by PeriodRangeFrom.
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// PeriodRangeFrom returns the current week or month containing referenceTime
// together with a display label.
func PeriodRangeFrom(period string, referenceTime time.Time) (TimeRange, string, error) {
	switch period {
	case "", PeriodWeek:
		return WeekRangeFrom(referenceTime, 0), "This Week", nil
	case PeriodMonth:
		return MonthRangeFrom(referenceTime, 0), "This Month", nil
	default:
		return TimeRange{}, "", fmt.Errorf("unknown statistics period %q", period)
	}
}
