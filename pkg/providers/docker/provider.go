package docker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/moby/moby/api/types/container"
	"github.com/samber/lo"

	"github.com/modoterra/cursorboost/pkg/logs"
)

// ListFailure replaces the whole container log section when the runtime
// cannot list containers.
const ListFailure = "Error getting Docker container list"

// Status is the simplified state of a container.
type Status string

const (
	StatusRunning    Status = "running"
	StatusStopped    Status = "stopped"
	StatusRestarting Status = "restarting"
	StatusUnknown    Status = "unknown"
)

// Container is one row of the runtime's ps output.
type Container struct {
	ID    string                   `json:"id"`
	Name  string                   `json:"name"`
	State container.ContainerState `json:"state"`
}

// Status maps the raw runtime state.
func (c Container) Status() Status {
	return mapContainerState(c.State)
}

// ExecFunc runs the container runtime CLI and returns its combined output.
type ExecFunc func(ctx context.Context, name string, args ...string) (string, error)

// Provider reads container state and logs through the docker (or podman)
// CLI.
type Provider struct {
	runtime string
	ignore  []string
	tail    int
	exec    ExecFunc
	logger  *slog.Logger
}

// New creates a provider for the given runtime binary. Containers whose
// name is in ignore are left out of log collection.
func New(runtime string, ignore []string, tail int, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if runtime == "" {
		runtime = "docker"
	}
	return &Provider{
		runtime: runtime,
		ignore:  ignore,
		tail:    tail,
		exec:    runCLI,
		logger:  logger,
	}
}

// SetExec replaces the CLI runner.
func (p *Provider) SetExec(fn ExecFunc) {
	p.exec = fn
}

func (p *Provider) Name() string { return "docker" }

// List returns the live containers in runtime order.
func (p *Provider) List(ctx context.Context) ([]Container, error) {
	out, err := p.exec(ctx, p.runtime, "ps", "--format", "{{.ID}}\t{{.Names}}\t{{.State}}")
	if err != nil {
		return nil, fmt.Errorf("%s ps: %w", p.runtime, err)
	}

	var containers []Container
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(strings.TrimSpace(line), "\t")
		if len(fields) < 2 || fields[0] == "" {
			continue
		}
		c := Container{ID: fields[0], Name: fields[1], State: container.StateRunning}
		if len(fields) > 2 && fields[2] != "" {
			c.State = container.ContainerState(fields[2])
		}
		containers = append(containers, c)
	}
	return containers, nil
}

// Collect fetches the last lines of every non-ignored container. A failed
// list is a *logs.ListError carrying ListFailure; a failure on one container
// only marks that container's block.
func (p *Provider) Collect(ctx context.Context) ([]logs.Block, error) {
	containers, err := p.List(ctx)
	if err != nil {
		return nil, &logs.ListError{Text: ListFailure, Err: err}
	}

	visible := lo.Filter(containers, func(c Container, _ int) bool {
		skip := lo.Contains(p.ignore, c.Name)
		if skip {
			p.logger.Debug("skipping ignored container", "container", c.Name)
		}
		return !skip
	})

	blocks := make([]logs.Block, 0, len(visible))
	for _, c := range visible {
		b := logs.Block{Source: logs.SourceDocker, Name: c.Name, ID: c.ID}
		text, err := p.exec(ctx, p.runtime, "logs", "--tail", fmt.Sprint(p.tail), c.ID)
		if err != nil {
			b.Err = err
		} else {
			b.Text = text
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func mapContainerState(s container.ContainerState) Status {
	switch s {
	case container.StateRunning:
		return StatusRunning
	case container.StateRestarting:
		return StatusRestarting
	case container.StateExited, container.StateDead, container.StateCreated, container.StatePaused:
		return StatusStopped
	default:
		return StatusUnknown
	}
}

func runCLI(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(output), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
		}
		return string(output), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(output), nil
}
