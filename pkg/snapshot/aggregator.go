package snapshot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/modoterra/cursorboost/pkg/core"
	"github.com/modoterra/cursorboost/pkg/workspace"
)

// CommandRunner executes a single invocation. *runner.Runner satisfies it.
type CommandRunner interface {
	Run(ctx context.Context, inv core.Invocation, dir string) core.Result
}

// DirResolver maps a project identifier to its directory.
// *workspace.Resolver satisfies it.
type DirResolver interface {
	Resolve(project string) (string, error)
}

// Request describes one batch.
type Request struct {
	// Project scopes the batch to a project directory; empty means the
	// host-wide system batch.
	Project     string
	Invocations []core.Invocation
	Probes      []core.Probe
}

// Aggregator runs batches strictly sequentially.
type Aggregator struct {
	runner   CommandRunner
	resolver DirResolver
	now      func() time.Time
	logger   *slog.Logger
}

// NewAggregator creates an aggregator. resolver may be nil when only system
// batches are captured.
func NewAggregator(runner CommandRunner, resolver DirResolver, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{runner: runner, resolver: resolver, now: time.Now, logger: logger}
}

// SetClock replaces the capture clock.
func (a *Aggregator) SetClock(now func() time.Time) {
	a.now = now
}

// Capture runs the request and returns its batch. The batch carries one
// timestamp taken before the first command.
//
// A missing project directory returns a Skipped batch together with
// workspace.ErrProjectNotFound; an unset base path returns
// workspace.ErrBasePathUnset and no batch. In both cases nothing runs.
func (a *Aggregator) Capture(ctx context.Context, req Request) (Batch, error) {
	b := Batch{CapturedAt: a.now().UTC(), Project: req.Project}

	dir := ""
	if req.Project != "" {
		if a.resolver == nil {
			return Batch{}, workspace.ErrBasePathUnset
		}
		resolved, err := a.resolver.Resolve(req.Project)
		switch {
		case errors.Is(err, workspace.ErrProjectNotFound):
			b.Skipped = true
			return b, err
		case err != nil:
			return Batch{}, err
		}
		dir = resolved
	}

	a.logger.Debug("capturing batch", "project", req.Project, "commands", len(req.Invocations), "probes", len(req.Probes))

	for _, inv := range req.Invocations {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		b.Results = append(b.Results, a.runner.Run(ctx, inv, dir))
	}

	for _, p := range req.Probes {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		if res, ok := a.probe(ctx, p, dir); ok {
			b.Results = append(b.Results, res)
		}
	}

	return b, nil
}

func (a *Aggregator) probe(ctx context.Context, p core.Probe, dir string) (core.Result, bool) {
	start := time.Now()
	text, err := p.Probe(ctx, dir)
	res := core.Result{Label: p.Name(), Output: text, Duration: time.Since(start)}
	switch {
	case errors.Is(err, core.ErrProbeSkipped):
		return core.Result{}, false
	case err != nil:
		a.logger.Warn("probe failed", "probe", p.Name(), "dir", dir, "err", err)
		res.Failed = true
		res.ExitCode = -1
		res.Output = err.Error()
	}
	return res, true
}
