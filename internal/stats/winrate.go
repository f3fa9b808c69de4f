package stats

import (
	"sort"
	"strconv"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
)

// ClassStat tallies the matches of one class.
type ClassStat struct {
	Wins  int
	Total int
}

// WinrateEntry is one row of the win-rate table.
type WinrateEntry struct {
	ClassName string  `json:"class_name"`
	Winrate   float64 `json:"winrate"`
	Matches   int     `json:"matches"`
}

// tally keeps class stats in order of first appearance.
type tally struct {
	order []string
	stats map[string]*ClassStat
}

func newTally() *tally {
	return &tally{stats: make(map[string]*ClassStat)}
}

func (t *tally) add(class string, won bool) {
	s, ok := t.stats[class]
	if !ok {
		s = &ClassStat{}
		t.stats[class] = s
		t.order = append(t.order, class)
	}
	s.Total++
	if won {
		s.Wins++
	}
}

// Aggregate computes per-class win rates from records.
//
// Both sides of every record count as a match for their class; a mirror
// matchup therefore counts twice for the same class. The result is sorted by
// descending win rate, ties keeping the order in which classes first appeared.
func Aggregate(records []battlelog.MatchRecord) []WinrateEntry {
	t := newTally()
	for _, r := range records {
		t.add(r.Class1, r.Result == battlelog.ResultClass1Won)
		t.add(r.Class2, r.Result == battlelog.ResultClass2Won)
	}

	entries := make([]WinrateEntry, 0, len(t.order))
	for _, class := range t.order {
		s := t.stats[class]
		if s.Total == 0 {
			continue
		}
		entries = append(entries, WinrateEntry{
			ClassName: class,
			Winrate:   Percent(s.Wins, s.Total),
			Matches:   s.Total,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Winrate > entries[j].Winrate
	})

	return entries
}

// Percent returns 100*wins/total rounded to two decimals, or 0 for no matches.
// Rounding is applied to the exact binary value with ties to even, so
// 1/32 gives 3.12 rather than 3.13.
func Percent(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(wins) / float64(total) * 100
	v, err := strconv.ParseFloat(strconv.FormatFloat(pct, 'f', 2, 64), 64)
	if err != nil {
		return pct
	}
	return v
}
