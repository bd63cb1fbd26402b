// Package snapshot runs command batches and merges their results into the
// snapshot document.
package snapshot

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modoterra/cursorboost/pkg/core"
)

// TimestampLayout is the batch header time format (UTC, microseconds).
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Batch is the outcome of running one command list, either host-wide or
// inside a single project directory.
type Batch struct {
	CapturedAt time.Time     `json:"captured_at"`
	Project    string        `json:"project,omitempty"`
	Results    []core.Result `json:"results"`

	// Skipped marks a project batch whose directory was missing. It renders
	// as nothing.
	Skipped bool `json:"skipped,omitempty"`
}

// Failures counts failed results.
func (b Batch) Failures() int {
	n := 0
	for _, r := range b.Results {
		if r.Failed {
			n++
		}
	}
	return n
}

// Render formats the batch as one text block: the timestamp line, the
// project header for scoped batches, then every result in order.
func (b Batch) Render() string {
	if b.Skipped {
		return ""
	}
	pieces := make([]string, 0, len(b.Results)+2)
	pieces = append(pieces, fmt.Sprintf("Timestamp: %sZ\n", b.CapturedAt.UTC().Format(TimestampLayout)))
	if b.Project != "" {
		pieces = append(pieces, fmt.Sprintf("\n### Project: %s ###\n", b.Project))
	}
	for _, r := range b.Results {
		pieces = append(pieces, r.Render())
	}
	return strings.Join(pieces, "\n")
}

// Snapshot is the system batch followed by the project batches of one cycle.
type Snapshot struct {
	ID      uuid.UUID `json:"id"`
	Batches []Batch   `json:"batches"`
}

// New creates a snapshot with a fresh ID.
func New(batches ...Batch) Snapshot {
	return Snapshot{ID: uuid.New(), Batches: batches}
}

// Add appends a batch.
func (s *Snapshot) Add(b Batch) {
	s.Batches = append(s.Batches, b)
}

// Render joins every non-empty batch rendering with a blank line.
func (s Snapshot) Render() string {
	parts := make([]string, 0, len(s.Batches))
	for _, b := range s.Batches {
		if text := b.Render(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}
