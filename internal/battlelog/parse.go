package battlelog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ramonehamilton/duelscope/internal/classes"
)

// Schema selects how many fields a log line must have.
type Schema string

const (
	// SchemaStrict requires all 8 fields including the explicit result.
	SchemaStrict Schema = "strict"
	// SchemaLenient also accepts 7-field lines and treats them as class1 wins.
	SchemaLenient Schema = "lenient"
)

const (
	fieldSeparator  = ":"
	strictFields    = 8
	lenientFields   = 7
	fieldTimestamp  = 0
	fieldMode       = 1
	fieldLevel      = 2
	fieldClass1ID   = 3
	fieldDeck1ID    = 4
	fieldClass2ID   = 5
	fieldDeck2ID    = 6
	fieldResult     = 7
	defaultedResult = ResultClass1Won
)

// ParseSchema converts a configuration value to a Schema.
// An empty string selects the strict schema.
func ParseSchema(s string) (Schema, error) {
	switch Schema(strings.ToLower(strings.TrimSpace(s))) {
	case "", SchemaStrict:
		return SchemaStrict, nil
	case SchemaLenient:
		return SchemaLenient, nil
	default:
		return "", fmt.Errorf("unknown log schema %q", s)
	}
}

// NameResolver turns a (level, class id) pair into a display name.
type NameResolver interface {
	Resolve(level, classID int) string
}

// Parser turns battle log lines into match records.
type Parser struct {
	schema   Schema
	resolver NameResolver
	loc      *time.Location
}

// NewParser creates a parser. A nil location means time.Local.
func NewParser(schema Schema, resolver NameResolver, loc *time.Location) *Parser {
	if schema == "" {
		schema = SchemaStrict
	}
	if loc == nil {
		loc = time.Local
	}
	return &Parser{schema: schema, resolver: resolver, loc: loc}
}

// Location returns the time zone record dates are expressed in.
func (p *Parser) Location() *time.Location {
	return p.loc
}

// Schema returns the schema the parser enforces.
func (p *Parser) Schema() Schema {
	return p.schema
}

// ParseLine parses one log line. The second return value is false when the
// line must be skipped: blank, wrong field count, or a non-integer field.
//
// Field layout: timestamp:mode:level:class1:deck1:class2:deck2[:result].
// Names are resolved as (deck, class) because that is how the table is keyed.
func (p *Parser) ParseLine(line string) (MatchRecord, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return MatchRecord{}, false
	}

	parts := strings.Split(line, fieldSeparator)
	if !p.acceptsFieldCount(len(parts)) {
		return MatchRecord{}, false
	}

	ints := [...]int{fieldLevel, fieldClass1ID, fieldDeck1ID, fieldClass2ID, fieldDeck2ID}
	var values [strictFields]int
	for _, idx := range ints {
		v, err := atoi(parts[idx])
		if err != nil {
			return MatchRecord{}, false
		}
		values[idx] = v
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(parts[fieldTimestamp]), 10, 64)
	if err != nil {
		return MatchRecord{}, false
	}

	result := defaultedResult
	if len(parts) == strictFields {
		result, err = atoi(parts[fieldResult])
		if err != nil {
			return MatchRecord{}, false
		}
	}

	return MatchRecord{
		Timestamp: ts,
		Date:      time.Unix(ts, 0).In(p.loc),
		Mode:      parts[fieldMode],
		Level:     values[fieldLevel],
		Class1:    p.resolve(values[fieldDeck1ID], values[fieldClass1ID]),
		Class2:    p.resolve(values[fieldDeck2ID], values[fieldClass2ID]),
		Result:    result,
	}, true
}

func (p *Parser) acceptsFieldCount(n int) bool {
	if n == strictFields {
		return true
	}
	return p.schema == SchemaLenient && n == lenientFields
}

func (p *Parser) resolve(level, classID int) string {
	if p.resolver == nil {
		return classes.Placeholder(classID)
	}
	return p.resolver.Resolve(level, classID)
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
