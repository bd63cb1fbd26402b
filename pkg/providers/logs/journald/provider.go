package journald

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/modoterra/cursorboost/pkg/logs"
)

// ExecFunc runs journalctl and returns its combined output.
type ExecFunc func(ctx context.Context, name string, args ...string) (string, error)

// Provider reads the recent journal of systemd units.
type Provider struct {
	units  []string
	tail   int
	exec   ExecFunc
	logger *slog.Logger
}

// New creates a journald log provider for the given units.
func New(units []string, tail int, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{units: units, tail: tail, exec: runJournalctl, logger: logger}
}

// SetExec replaces the journalctl runner.
func (p *Provider) SetExec(fn ExecFunc) {
	p.exec = fn
}

func (p *Provider) Name() string { return "journald" }

// Collect returns one block per unit, in configured order.
func (p *Provider) Collect(ctx context.Context) ([]logs.Block, error) {
	blocks := make([]logs.Block, 0, len(p.units))
	for _, unit := range p.units {
		b := logs.Block{Source: logs.SourceJournald, Name: unit}
		out, err := p.exec(ctx, "journalctl", "-u", unit, "-n", strconv.Itoa(p.tail), "-o", "cat", "--no-pager")
		if err != nil {
			p.logger.Warn("journal read failed", "unit", unit, "err", err)
			b.Err = err
		} else {
			b.Text = out
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func runJournalctl(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return string(out), nil
}
