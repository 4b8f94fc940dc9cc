package tasks

import (
	"github.com/sobatea/chartsync/internal/catalog"
	"github.com/sobatea/chartsync/internal/chart"
)

// Status classifies the terminal outcome of one chart file.
type Status int

const (
	Added     Status = iota // Track appended to the playlist
	Duplicate               // Track already present, nothing appended
	Skipped                 // File produced no playlist change
)

func (s Status) String() string {
	switch s {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case Skipped:
		return "skipped"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler so exported reports carry the
// status name rather than its numeric value.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Skip reasons for outcomes that never reached the playlist.
const (
	ReasonParseFailed        = "parse failed"
	ReasonNoMatch            = "no catalog match"
	ReasonPlaylistUnresolved = "playlist resolution failed"
)

// Outcome is the terminal result of processing one chart file. Exactly one
// outcome exists per processed file.
type Outcome struct {
	Status   Status         `json:"status"`
	Metadata chart.Metadata `json:"metadata"`
	Track    *catalog.Track `json:"track,omitempty"`
	FilePath string         `json:"file_path"`
	Reason   string         `json:"reason,omitempty"`
}

// RunReport accumulates the outcomes of one pipeline run in three append-only
// lists. A report belongs to exactly one run and is never reused.
type RunReport struct {
	Added      []Outcome `json:"added"`
	Duplicates []Outcome `json:"duplicates"`
	Skipped    []Outcome `json:"skipped"`
}

// record appends the outcome to the list matching its status.
func (r *RunReport) record(outcome Outcome) {
	switch outcome.Status {
	case Added:
		r.Added = append(r.Added, outcome)
	case Duplicate:
		r.Duplicates = append(r.Duplicates, outcome)
	case Skipped:
		r.Skipped = append(r.Skipped, outcome)
	}
}

// Total returns the number of outcomes across all three lists.
func (r *RunReport) Total() int {
	return len(r.Added) + len(r.Duplicates) + len(r.Skipped)
}
