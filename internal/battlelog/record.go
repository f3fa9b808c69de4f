package battlelog

import "time"

// Result values stored in the last log field.
const (
	ResultClass1Won = 1
	ResultClass2Won = 2
)

// MatchRecord is one parsed battle from a log line.
// Records are values and are never modified after parsing.
type MatchRecord struct {
	Timestamp int64     `json:"timestamp"`
	Date      time.Time `json:"date"`
	Mode      string    `json:"mode"`
	Level     int       `json:"level"`
	Class1    string    `json:"class1"`
	Class2    string    `json:"class2"`
	Result    int       `json:"result"`
}

// FileResult reports what happened while scanning a single log file.
type FileResult struct {
	Name    string `json:"name"`
	Records int    `json:"records"` // records that passed the filter
	Skipped int    `json:"skipped"` // malformed lines
	Err     error  `json:"-"`
}

// OK reports whether the file was read to the end.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Dataset is the result of one Load call.
type Dataset struct {
	Mode    string
	Records []MatchRecord
	Files   []FileResult
}

// FailedFiles returns the results of files that were abandoned part way.
func (d *Dataset) FailedFiles() []FileResult {
	var failed []FileResult
	for _, f := range d.Files {
		if !f.OK() {
			failed = append(failed, f)
		}
	}
	return failed
}

// SkippedLines returns the number of malformed lines across all files.
func (d *Dataset) SkippedLines() int {
	total := 0
	for _, f := range d.Files {
		total += f.Skipped
	}
	return total
}

// Len returns the number of records in the dataset.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}
