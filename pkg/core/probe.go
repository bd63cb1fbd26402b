package core

import (
	"context"
	"errors"
)

// ErrProbeSkipped is returned by a probe that has nothing to report for the
// given directory. The aggregator drops the probe from the batch.
var ErrProbeSkipped = errors.New("probe skipped")

// Probe is a native, library-backed check that contributes a result to a
// batch after the shell commands have run.
type Probe interface {
	// Name returns the label used for the probe's result (e.g., "systemd units").
	Name() string

	// Probe collects the probe's text. dir is the project directory for
	// project-scoped batches and empty for the system batch.
	Probe(ctx context.Context, dir string) (string, error)
}
