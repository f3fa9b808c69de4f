package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ramonehamilton/duelscope/internal/battlelog"
)

func TestMatchups(t *testing.T) {
	records := []battlelog.MatchRecord{
		rec("Mage", "Warrior", 1),
		rec("Warrior", "Mage", 1),
		rec("Mage", "Warrior", 2),
		rec("Mage", "Mage", 2),
	}

	got := Matchups(records)

	want := []MatchupEntry{
		{Class1: "Mage", Class2: "Warrior", Wins: 1, Matches: 3, Winrate: 33.33},
		{Class1: "Mage", Class2: "Mage", Wins: 1, Matches: 2, Winrate: 50},
		{Class1: "Warrior", Class2: "Mage", Wins: 2, Matches: 3, Winrate: 66.67},
	}
	// Row order follows first appearance: Mage, then Warrior.
	assert.Equal(t, []MatchupEntry{want[1], want[0], want[2]}, got)
}

func TestMatchups_Empty(t *testing.T) {
	got := Matchups(nil)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClassNames(t *testing.T) {
	entries := Matchups([]battlelog.MatchRecord{
		rec("Rogue", "Mage", 1),
		rec("Priest", "Rogue", 2),
	})

	assert.Equal(t, []string{"Rogue", "Mage", "Priest"}, ClassNames(entries))
}
