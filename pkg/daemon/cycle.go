package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/modoterra/cursorboost/pkg/artifact"
	"github.com/modoterra/cursorboost/pkg/core"
	"github.com/modoterra/cursorboost/pkg/logs"
	"github.com/modoterra/cursorboost/pkg/snapshot"
	"github.com/modoterra/cursorboost/pkg/summarize"
	"github.com/modoterra/cursorboost/pkg/workspace"
)

// Project outcomes within a cycle.
const (
	ProjectOK            = "ok"
	ProjectNotFound      = "not_found"
	ProjectBasePathUnset = "base_path_unset"
)

// ProjectStatus is the outcome of one project batch.
type ProjectStatus struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	Commands int    `json:"commands"`
	Failures int    `json:"failures"`
}

// Report summarizes one cycle.
type Report struct {
	ID              string          `json:"id"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
	Projects        []ProjectStatus `json:"projects"`
	Commands        int             `json:"commands"`
	Failures        int             `json:"failures"`
	SnapshotPath    string          `json:"snapshot_path"`
	SnapshotBytes   int             `json:"snapshot_bytes"`
	Summarized      bool            `json:"summarized"`
	ArtifactPath    string          `json:"artifact_path"`
	ArtifactWritten bool            `json:"artifact_written"`
	Warnings        []string        `json:"warnings,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// Duration returns how long the cycle took.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Components are the collaborators of a Pipeline.
type Components struct {
	Aggregator    *snapshot.Aggregator
	SystemBatch   []core.Invocation
	ProjectBatch  []core.Invocation
	SystemProbes  []core.Probe
	ProjectProbes []core.Probe

	// Projects enumerates project identifiers; called once per cycle.
	Projects func() ([]string, error)

	Summarizer  summarize.Summarizer
	DockerLogs  []logs.Collector
	ServiceLogs []logs.Collector

	SnapshotPath    string
	ArtifactPath    string
	DescriptionPath string
}

// Pipeline runs one snapshot cycle end to end.
type Pipeline struct {
	c      Components
	logger *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(c Components, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{c: c, logger: logger}
}

// RunCycle captures, persists and summarizes one snapshot. It never fails as
// a whole: problems are logged and recorded in the report.
func (p *Pipeline) RunCycle(ctx context.Context) (rep Report) {
	snap := snapshot.New()
	rep = Report{
		ID:           snap.ID.String(),
		StartedAt:    time.Now(),
		SnapshotPath: p.c.SnapshotPath,
		ArtifactPath: p.c.ArtifactPath,
	}
	defer func() { rep.FinishedAt = time.Now() }()

	logger := p.logger.With("cycle", rep.ID)
	logger.Info("cycle started")

	var projects []string
	var err error
	if p.c.Projects != nil {
		projects, err = p.c.Projects()
	}
	if err != nil {
		logger.Warn("project list unavailable", "err", err)
		rep.Warnings = append(rep.Warnings, err.Error())
	}
	if len(projects) == 0 {
		logger.Warn("no projects listed")
	}

	sys, err := p.c.Aggregator.Capture(ctx, snapshot.Request{
		Invocations: p.c.SystemBatch,
		Probes:      p.c.SystemProbes,
	})
	if err != nil {
		logger.Error("system batch aborted", "err", err)
		rep.Error = err.Error()
		return rep
	}
	snap.Add(sys)

	for _, name := range projects {
		st := ProjectStatus{Name: name, Status: ProjectOK}
		b, err := p.c.Aggregator.Capture(ctx, snapshot.Request{
			Project:     name,
			Invocations: p.c.ProjectBatch,
			Probes:      p.c.ProjectProbes,
		})
		switch {
		case errors.Is(err, workspace.ErrProjectNotFound):
			logger.Warn("project directory not found", "project", name, "err", err)
			st.Status = ProjectNotFound
		case errors.Is(err, workspace.ErrBasePathUnset):
			logger.Error("project skipped", "project", name, "err", err)
			st.Status = ProjectBasePathUnset
		case err != nil:
			logger.Error("project batch aborted", "project", name, "err", err)
			rep.Error = err.Error()
			return rep
		default:
			snap.Add(b)
			st.Commands = len(b.Results)
			st.Failures = b.Failures()
		}
		rep.Projects = append(rep.Projects, st)
	}

	rep.Commands = lo.SumBy(snap.Batches, func(b snapshot.Batch) int { return len(b.Results) })
	rep.Failures = lo.SumBy(snap.Batches, func(b snapshot.Batch) int { return b.Failures() })

	text := snap.Render()
	rep.SnapshotBytes = len(text)
	if err := artifact.WriteFile(p.c.SnapshotPath, []byte(text)); err != nil {
		logger.Error("snapshot not saved", "path", p.c.SnapshotPath, "err", err)
		rep.Warnings = append(rep.Warnings, err.Error())
	} else {
		logger.Info("snapshot saved", "path", p.c.SnapshotPath, "bytes", len(text), "failures", rep.Failures)
	}

	summarizer := p.c.Summarizer
	if summarizer == nil {
		summarizer = summarize.Unavailable{Err: summarize.ErrUnavailable}
	}
	summary, err := summarizer.Summarize(ctx, text)
	if err != nil {
		if errors.Is(err, summarize.ErrUnavailable) || errors.Is(err, summarize.ErrEmptyResponse) {
			logger.Warn("artifact skipped", "err", err)
		} else {
			logger.Error("summarization failed", "err", err)
		}
		rep.Warnings = append(rep.Warnings, err.Error())
		return rep
	}
	rep.Summarized = true

	desc, err := artifact.ReadDescription(p.c.DescriptionPath)
	if err != nil {
		logger.Warn("project description unavailable", "path", p.c.DescriptionPath, "err", err)
	}

	parts := artifact.Parts{
		Description: desc,
		Summary:     summary,
		DockerLogs:  logs.Gather(ctx, logger, p.c.DockerLogs...),
	}
	if len(p.c.ServiceLogs) > 0 {
		parts.ServiceLogs = logs.Gather(ctx, logger, p.c.ServiceLogs...)
	}

	if err := artifact.WriteFile(p.c.ArtifactPath, []byte(artifact.Compose(parts))); err != nil {
		logger.Error("artifact not saved", "path", p.c.ArtifactPath, "err", err)
		rep.Warnings = append(rep.Warnings, err.Error())
		return rep
	}
	rep.ArtifactWritten = true
	logger.Info("artifact saved", "path", p.c.ArtifactPath)
	return rep
}
