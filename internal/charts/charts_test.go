package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/duelscope/internal/stats"
)

func TestRenderWinrateBar(t *testing.T) {
	config := DefaultChartConfig()
	config.Title = "Ranked win rates"

	var buf bytes.Buffer
	err := RenderWinrateBar(&buf, []stats.WinrateEntry{
		{ClassName: "Mage", Winrate: 66.67, Matches: 3},
		{ClassName: "Warrior", Winrate: 0, Matches: 1},
	}, config)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Ranked win rates")
	assert.Contains(t, html, "Mage")
	assert.Contains(t, html, "66.67")
}

func TestRenderWinrateBar_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderWinrateBar(&buf, nil, ChartConfig{}))
	assert.NotZero(t, buf.Len())
}

func TestRenderMatchupHeatmap(t *testing.T) {
	var buf bytes.Buffer
	err := RenderMatchupHeatmap(&buf, []stats.MatchupEntry{
		{Class1: "Mage", Class2: "Warrior", Wins: 1, Matches: 2, Winrate: 50},
		{Class1: "Warrior", Class2: "Mage", Wins: 1, Matches: 2, Winrate: 50},
	}, DefaultChartConfig())
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "heatmap")
	assert.Contains(t, html, "Warrior")
}
