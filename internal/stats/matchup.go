package stats

import "github.com/ramonehamilton/duelscope/internal/battlelog"

// MatchupEntry is the record of one class against another, seen from Class1.
type MatchupEntry struct {
	Class1  string  `json:"class1"`
	Class2  string  `json:"class2"`
	Wins    int     `json:"wins"`
	Matches int     `json:"matches"`
	Winrate float64 `json:"winrate"`
}

type pairKey struct {
	row, col string
}

// Matchups builds the class-versus-class table. Every record contributes to
// (class1, class2) and to the mirrored (class2, class1) cell, so each row reads
// as "this class against that one". Rows and columns follow first appearance.
func Matchups(records []battlelog.MatchRecord) []MatchupEntry {
	var classes []string
	seen := make(map[string]bool)
	note := func(c string) {
		if !seen[c] {
			seen[c] = true
			classes = append(classes, c)
		}
	}

	cells := make(map[pairKey]*ClassStat)
	add := func(row, col string, won bool) {
		k := pairKey{row: row, col: col}
		s, ok := cells[k]
		if !ok {
			s = &ClassStat{}
			cells[k] = s
		}
		s.Total++
		if won {
			s.Wins++
		}
	}

	for _, r := range records {
		note(r.Class1)
		note(r.Class2)
		add(r.Class1, r.Class2, r.Result == battlelog.ResultClass1Won)
		add(r.Class2, r.Class1, r.Result == battlelog.ResultClass2Won)
	}

	entries := make([]MatchupEntry, 0, len(cells))
	for _, row := range classes {
		for _, col := range classes {
			s, ok := cells[pairKey{row: row, col: col}]
			if !ok {
				continue
			}
			entries = append(entries, MatchupEntry{
				Class1:  row,
				Class2:  col,
				Wins:    s.Wins,
				Matches: s.Total,
				Winrate: Percent(s.Wins, s.Total),
			})
		}
	}

	return entries
}

// ClassNames returns the distinct class names of the entries in first-seen order.
func ClassNames(entries []MatchupEntry) []string {
	var names []string
	seen := make(map[string]bool)
	for _, e := range entries {
		for _, c := range [...]string{e.Class1, e.Class2} {
			if !seen[c] {
				seen[c] = true
				names = append(names, c)
			}
		}
	}
	return names
}
