package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/ramonehamilton/duelscope/internal/stats"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string   // Chart title
	Subtitle string   // Chart subtitle
	Width    string   // Chart width (e.g., "900px")
	Height   string   // Chart height (e.g., "500px")
	Theme    string   // Chart theme
	Colors   []string // Custom colors; the first is used for bars
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "500px",
		Theme:  "light",
		Colors: []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#73C0DE"},
	}
}

func (c ChartConfig) globalOptions() []charts.GlobalOpts {
	options := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			Width:  c.Width,
			Height: c.Height,
			Theme:  c.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    c.Title,
			Subtitle: c.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	}
	if len(c.Colors) > 0 {
		options = append(options, charts.WithColorsOpts(opts.Colors{c.Colors[0]}))
	}
	return options
}

// RenderWinrateBar writes an HTML page with one bar per class, in the order
// the entries are given.
func RenderWinrateBar(w io.Writer, entries []stats.WinrateEntry, config ChartConfig) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(append(config.globalOptions(),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Win rate (%)",
			Min:  0,
			Max:  100,
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
	)...)

	labels := make([]string, len(entries))
	data := make([]opts.BarData, len(entries))
	for i, e := range entries {
		labels[i] = e.ClassName
		data[i] = opts.BarData{
			Name:  fmt.Sprintf("%s (%d matches)", e.ClassName, e.Matches),
			Value: e.Winrate,
		}
	}

	bar.SetXAxis(labels).
		AddSeries("Win Rate", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:     opts.Bool(true),
				Position: "top",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// RenderMatchupHeatmap writes an HTML page with a class-versus-class grid.
// Rows are the class the win rate belongs to.
func RenderMatchupHeatmap(w io.Writer, entries []stats.MatchupEntry, config ChartConfig) error {
	names := stats.ClassNames(entries)
	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(append(config.globalOptions(),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      names,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      names,
			SplitArea: &opts.SplitArea{Show: opts.Bool(true)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        100,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#EE6666", "#FAC858", "#91CC75"},
			},
		}),
	)...)

	data := make([]opts.HeatMapData, 0, len(entries))
	for _, e := range entries {
		data = append(data, opts.HeatMapData{
			Name:  fmt.Sprintf("%s vs %s (%d matches)", e.Class1, e.Class2, e.Matches),
			Value: [3]interface{}{index[e.Class2], index[e.Class1], e.Winrate},
		})
	}

	hm.SetXAxis(names).
		AddSeries("Win Rate", data,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
