package battlelog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/duelscope/internal/classes"
)

func testResolver() *classes.Resolver {
	return classes.NewResolver([]classes.Entry{
		{Level: 10, ClassID: 3, Name: "Mage"},
		{Level: 20, ClassID: 7, Name: "Warrior"},
	})
}

func TestParser_ParseLine_Scenario(t *testing.T) {
	p := NewParser(SchemaStrict, testResolver(), time.UTC)

	rec, ok := p.ParseLine("1700000000:ranked:5:3:10:7:20:1")
	require.True(t, ok)

	assert.Equal(t, int64(1700000000), rec.Timestamp)
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), rec.Date)
	assert.Equal(t, "ranked", rec.Mode)
	assert.Equal(t, 5, rec.Level)
	assert.Equal(t, "Mage", rec.Class1)
	assert.Equal(t, "Warrior", rec.Class2)
	assert.Equal(t, 1, rec.Result)
}

func TestParser_ParseLine(t *testing.T) {
	tests := []struct {
		name       string
		schema     Schema
		line       string
		wantOK     bool
		wantResult int
		wantClass1 string
	}{
		{name: "strict 8 fields", schema: SchemaStrict, line: "1700000000:ranked:5:3:10:7:20:2", wantOK: true, wantResult: 2, wantClass1: "Mage"},
		{name: "strict rejects 7 fields", schema: SchemaStrict, line: "1700000000:ranked:5:3:10:7:20", wantOK: false},
		{name: "lenient accepts 7 fields", schema: SchemaLenient, line: "1700000000:ranked:5:3:10:7:20", wantOK: true, wantResult: 1, wantClass1: "Mage"},
		{name: "lenient accepts 8 fields", schema: SchemaLenient, line: "1700000000:ranked:5:3:10:7:20:2", wantOK: true, wantResult: 2, wantClass1: "Mage"},
		{name: "lenient rejects 9 fields", schema: SchemaLenient, line: "1700000000:ranked:5:3:10:7:20:2:9", wantOK: false},
		{name: "empty line", schema: SchemaStrict, line: "", wantOK: false},
		{name: "whitespace only", schema: SchemaStrict, line: "  \t ", wantOK: false},
		{name: "surrounding whitespace trimmed", schema: SchemaStrict, line: "  1700000000:ranked:5:3:10:7:20:1\r\n", wantOK: true, wantResult: 1, wantClass1: "Mage"},
		{name: "non-integer timestamp", schema: SchemaStrict, line: "abc:ranked:5:3:10:7:20:1", wantOK: false},
		{name: "non-integer level", schema: SchemaStrict, line: "1700000000:ranked:x:3:10:7:20:1", wantOK: false},
		{name: "non-integer class id", schema: SchemaStrict, line: "1700000000:ranked:5:3.5:10:7:20:1", wantOK: false},
		{name: "non-integer result", schema: SchemaStrict, line: "1700000000:ranked:5:3:10:7:20:win", wantOK: false},
		{name: "unknown class resolves to placeholder", schema: SchemaStrict, line: "1700000000:ranked:5:42:10:7:20:1", wantOK: true, wantResult: 1, wantClass1: "Unknown42"},
		{name: "unusual result kept", schema: SchemaStrict, line: "1700000000:ranked:5:3:10:7:20:0", wantOK: true, wantResult: 0, wantClass1: "Mage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewParser(tt.schema, testResolver(), time.UTC)
			rec, ok := p.ParseLine(tt.line)

			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantResult, rec.Result)
			assert.Equal(t, tt.wantClass1, rec.Class1)
		})
	}
}

func TestParser_ParseLine_Deterministic(t *testing.T) {
	p := NewParser(SchemaStrict, testResolver(), time.UTC)
	line := "1737512753:casual:3:7:20:3:10:2"

	first, ok := p.ParseLine(line)
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		again, ok := p.ParseLine(line)
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestParser_ParseLine_NilResolver(t *testing.T) {
	p := NewParser("", nil, nil)

	rec, ok := p.ParseLine("1700000000:ranked:5:3:10:7:20:1")
	require.True(t, ok)

	assert.Equal(t, SchemaStrict, p.Schema())
	assert.Equal(t, "Unknown3", rec.Class1)
	assert.Equal(t, "Unknown7", rec.Class2)
	assert.Equal(t, time.Local, rec.Date.Location())
}

func TestParseSchema(t *testing.T) {
	tests := []struct {
		in      string
		want    Schema
		wantErr bool
	}{
		{in: "", want: SchemaStrict},
		{in: "strict", want: SchemaStrict},
		{in: " Lenient ", want: SchemaLenient},
		{in: "loose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSchema(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
