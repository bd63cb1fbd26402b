package daemon

import (
	"log/slog"
	"os"

	"github.com/modoterra/cursorboost/pkg/config"
	"github.com/modoterra/cursorboost/pkg/core"
	"github.com/modoterra/cursorboost/pkg/logs"
	"github.com/modoterra/cursorboost/pkg/projects"
	"github.com/modoterra/cursorboost/pkg/providers/docker"
	"github.com/modoterra/cursorboost/pkg/providers/logs/filetail"
	"github.com/modoterra/cursorboost/pkg/providers/logs/journald"
	"github.com/modoterra/cursorboost/pkg/providers/procfs"
	"github.com/modoterra/cursorboost/pkg/providers/systemd"
	"github.com/modoterra/cursorboost/pkg/runner"
	"github.com/modoterra/cursorboost/pkg/snapshot"
	"github.com/modoterra/cursorboost/pkg/summarize"
	"github.com/modoterra/cursorboost/pkg/workspace"
)

// FromConfig wires the production collaborators described by cfg.
func FromConfig(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	run := runner.New(cfg.CommandTimeout.Std(), logger.With("component", "runner"))
	agg := snapshot.NewAggregator(run, workspace.NewResolver(cfg.Projects.BasePath), logger)

	dock := docker.New(cfg.Docker.Runtime, cfg.Docker.IgnoreContainers, cfg.Docker.Tail, logger)

	var sysProbes []core.Probe
	if len(cfg.Probes.SystemdUnits) > 0 {
		sysProbes = append(sysProbes, systemd.New(cfg.Probes.SystemdUnits, logger))
	}
	if cfg.Probes.Processes {
		sysProbes = append(sysProbes, procfs.New(logger))
	}

	var projProbes []core.Probe
	if cfg.Probes.ComposeEnabled() {
		projProbes = append(projProbes, docker.NewComposeProbe(dock))
	}

	var serviceLogs []logs.Collector
	if len(cfg.Logs.Units) > 0 {
		serviceLogs = append(serviceLogs, journald.New(cfg.Logs.Units, cfg.Logs.Tail, logger))
	}
	if len(cfg.Logs.Files) > 0 {
		files := make([]string, len(cfg.Logs.Files))
		for i, f := range cfg.Logs.Files {
			files[i] = cfg.Path(f)
		}
		serviceLogs = append(serviceLogs, filetail.New(files, cfg.Logs.Tail, logger))
	}

	sum, err := summarize.New(cfg.LLM, os.Getenv)
	if err != nil {
		logger.Warn("summarizer unavailable", "provider", cfg.LLM.Provider, "err", err)
		sum = summarize.Unavailable{Err: err}
	}

	listPath := cfg.ProjectListPath()
	return NewPipeline(Components{
		Aggregator:    agg,
		SystemBatch:   cfg.SystemCommands(),
		ProjectBatch:  cfg.ProjectCommands(),
		SystemProbes:  sysProbes,
		ProjectProbes: projProbes,
		Projects:      func() ([]string, error) { return projects.Load(listPath) },
		Summarizer:    sum,
		DockerLogs:    []logs.Collector{dock},
		ServiceLogs:   serviceLogs,

		SnapshotPath:    cfg.SnapshotPath(),
		ArtifactPath:    cfg.ArtifactPath(),
		DescriptionPath: cfg.DescriptionPath(),
	}, logger)
}
