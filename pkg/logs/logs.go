// Package logs defines log sources for the derived artifact and renders
// their output.
package logs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Source kinds.
const (
	SourceDocker   = "docker"
	SourceJournald = "journald"
	SourceFile     = "file"
)

// Block is the recent log output of one container, unit or file. Err is set
// when that one source could not be read; the others are unaffected.
type Block struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     string `json:"id,omitempty"`
	Text   string `json:"text"`
	Err    error  `json:"-"`
}

// Collector gathers log blocks from one kind of source. A returned error
// means the source list itself was unavailable.
type Collector interface {
	Name() string
	Collect(ctx context.Context) ([]Block, error)
}

// ListError means a collector could not enumerate its sources at all. Text
// stands in for the collector's whole section.
type ListError struct {
	Text string
	Err  error
}

func (e *ListError) Error() string { return e.Text + ": " + e.Err.Error() }

func (e *ListError) Unwrap() error { return e.Err }

// Gather runs each collector in order and renders the combined section.
// Per-source failures are rendered inline; a collector that fails outright
// contributes its failure text.
func Gather(ctx context.Context, logger *slog.Logger, collectors ...Collector) string {
	if logger == nil {
		logger = slog.Default()
	}
	parts := make([]string, 0, len(collectors))
	for _, c := range collectors {
		blocks, err := c.Collect(ctx)
		if err != nil {
			logger.Warn("log collector failed", "collector", c.Name(), "err", err)
			var le *ListError
			if errors.As(err, &le) {
				parts = append(parts, le.Text)
			} else {
				parts = append(parts, fmt.Sprintf("Error collecting %s logs: %v", c.Name(), err))
			}
			continue
		}
		for _, b := range blocks {
			if b.Err != nil {
				logger.Warn("log source failed", "collector", c.Name(), "source", b.Name, "err", b.Err)
			}
		}
		if text := Render(blocks); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

// Render formats blocks in order, one labeled section each.
func Render(blocks []Block) string {
	parts := make([]string, 0, len(blocks)*2)
	for _, b := range blocks {
		if b.Err != nil {
			parts = append(parts, fmt.Sprintf("\nError getting logs for %s: %v\n", b.Name, b.Err))
			continue
		}
		parts = append(parts, header(b), b.Text)
	}
	return strings.Join(parts, "\n")
}

func header(b Block) string {
	switch b.Source {
	case SourceDocker:
		return fmt.Sprintf("\nDocker Logs for %s (%s):\n", b.Name, b.ID)
	case SourceJournald:
		return fmt.Sprintf("\nJournal for %s:\n", b.Name)
	default:
		return fmt.Sprintf("\nLog file %s:\n", b.Name)
	}
}
