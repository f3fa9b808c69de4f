package battlelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// maxLineSize bounds a single log line. Longer lines fail the file.
const maxLineSize = 1024 * 1024

// ErrInvalidEncoding is returned when a log line is not valid UTF-8.
var ErrInvalidEncoding = errors.New("log line is not valid UTF-8")

// Reader reads match records from a single battle log file.
type Reader struct {
	file    *os.File
	scanner *bufio.Scanner
	parser  *Parser
	line    int
	skipped int
}

// NewReader opens the log file at path.
func NewReader(path string, parser *Parser) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	return &Reader{
		file:    file,
		scanner: scanner,
		parser:  parser,
	}, nil
}

// Close closes the underlying log file.
func (r *Reader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Next returns the next well-formed record. Malformed lines are skipped and
// counted. It returns io.EOF when the file is exhausted; any other error means
// the rest of the file cannot be read.
func (r *Reader) Next() (MatchRecord, error) {
	for r.scanner.Scan() {
		r.line++
		raw := r.scanner.Bytes()
		if !utf8.Valid(raw) {
			return MatchRecord{}, fmt.Errorf("line %d: %w", r.line, ErrInvalidEncoding)
		}

		rec, ok := r.parser.ParseLine(string(raw))
		if !ok {
			if len(raw) > 0 && !isBlank(raw) {
				r.skipped++
			}
			continue
		}
		return rec, nil
	}

	if err := r.scanner.Err(); err != nil {
		return MatchRecord{}, fmt.Errorf("scan log file after line %d: %w", r.line, err)
	}
	return MatchRecord{}, io.EOF
}

// Skipped returns the number of malformed, non-blank lines seen so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// ReadFile reads every record of the file at path and keeps those accepted by
// keep (all records when keep is nil). Records read before a failure are
// returned together with the failure in the FileResult.
func ReadFile(path string, parser *Parser, keep func(MatchRecord) bool) ([]MatchRecord, FileResult) {
	result := FileResult{Name: filepath.Base(path)}

	r, err := NewReader(path, parser)
	if err != nil {
		result.Err = err
		return nil, result
	}
	defer func() {
		_ = r.Close() //nolint:errcheck // read-only file
	}()

	var records []MatchRecord
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Err = err
			break
		}
		if keep != nil && !keep(rec) {
			continue
		}
		records = append(records, rec)
	}

	result.Records = len(records)
	result.Skipped = r.Skipped()
	return records, result
}

func isBlank(b []byte) bool {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n', '\v', '\f':
		default:
			return false
		}
	}
	return true
}
