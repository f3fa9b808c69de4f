package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/ramonehamilton/duelscope/internal/facade"
	"github.com/ramonehamilton/duelscope/internal/stats"
)

const (
	formatTable    = "table"
	formatJSON     = "json"
	formatMarkdown = "markdown"
)

func validFormat(format string) bool {
	switch format {
	case formatTable, formatJSON, formatMarkdown:
		return true
	}
	return false
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeStats(w io.Writer, format, label string, result *facade.StatsResult) error {
	switch format {
	case formatJSON:
		return writeJSON(w, result)
	case formatMarkdown:
		var md strings.Builder
		md.WriteString(fmt.Sprintf("# %s Win Rates\n\n", label))
		md.WriteString(fmt.Sprintf("**Total matches**: %d\n\n", result.TotalMatches))
		md.WriteString("| Class | Win Rate | Matches |\n")
		md.WriteString("|-------|---------:|--------:|\n")
		for _, e := range result.Stats {
			md.WriteString(fmt.Sprintf("| %s | %.2f%% | %d |\n", escapeCell(e.ClassName), e.Winrate, e.Matches))
		}
		_, err := io.WriteString(w, md.String())
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t\t\t\n", label)
	fmt.Fprintf(tw, "CLASS\tWIN RATE\tMATCHES\t\n")
	for _, e := range result.Stats {
		fmt.Fprintf(tw, "%s\t%.2f%%\t%d\t\n", e.ClassName, e.Winrate, e.Matches)
	}
	fmt.Fprintf(tw, "TOTAL\t\t%d\t\n", result.TotalMatches)
	return tw.Flush()
}

func writeMatchups(w io.Writer, format, label string, result *facade.MatchupsResult) error {
	switch format {
	case formatJSON:
		return writeJSON(w, result)
	case formatMarkdown:
		var md strings.Builder
		md.WriteString(fmt.Sprintf("# %s Matchups\n\n", label))
		md.WriteString(fmt.Sprintf("**Total matches**: %d\n\n", result.TotalMatches))
		if len(result.Classes) == 0 {
			md.WriteString("No matches.\n")
		} else {
			md.WriteString("| |")
			for _, c := range result.Classes {
				md.WriteString(" " + escapeCell(c) + " |")
			}
			md.WriteString("\n|---|")
			md.WriteString(strings.Repeat("---:|", len(result.Classes)))
			md.WriteString("\n")
			grid := matchupGrid(result.Matchups)
			for _, row := range result.Classes {
				md.WriteString("| **" + escapeCell(row) + "** |")
				for _, col := range result.Classes {
					md.WriteString(" " + cell(grid, row, col) + " |")
				}
				md.WriteString("\n")
			}
		}
		_, err := io.WriteString(w, md.String())
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", label, strings.Join(result.Classes, "\t"))
	grid := matchupGrid(result.Matchups)
	for _, row := range result.Classes {
		cells := make([]string, 0, len(result.Classes))
		for _, col := range result.Classes {
			cells = append(cells, cell(grid, row, col))
		}
		fmt.Fprintf(tw, "%s\t%s\n", row, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func matchupGrid(entries []stats.MatchupEntry) map[[2]string]stats.MatchupEntry {
	grid := make(map[[2]string]stats.MatchupEntry, len(entries))
	for _, e := range entries {
		grid[[2]string{e.Class1, e.Class2}] = e
	}
	return grid
}

// cell renders "win% (n)" or "-" when the pair never met.
func cell(grid map[[2]string]stats.MatchupEntry, row, col string) string {
	e, ok := grid[[2]string{row, col}]
	if !ok || e.Matches == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%% (%d)", e.Winrate, e.Matches)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
