package systemd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/dbus"
	"github.com/dustin/go-humanize"
)

// Provider reports the state of configured systemd units over D-Bus.
type Provider struct {
	units  []string
	logger *slog.Logger
}

// New creates a unit status probe for the given unit names.
func New(units []string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{units: units, logger: logger}
}

func (p *Provider) Name() string { return "systemd units" }

// unitInfo is the subset of unit state the probe renders.
type unitInfo struct {
	Name        string
	ActiveState string
	SubState    string
	LoadState   string
	MainPID     uint32
	MemBytes    uint64
}

// Probe lists the configured units. dir is ignored; units are host-wide.
func (p *Provider) Probe(ctx context.Context, _ string) (string, error) {
	conn, err := dbus.NewWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("dbus connect: %w", err)
	}
	defer conn.Close()

	statuses, err := conn.ListUnitsByNamesContext(ctx, p.units)
	if err != nil {
		return "", fmt.Errorf("list units: %w", err)
	}

	infos := make([]unitInfo, 0, len(statuses))
	for _, u := range statuses {
		info := unitInfo{
			Name:        u.Name,
			ActiveState: u.ActiveState,
			SubState:    u.SubState,
			LoadState:   u.LoadState,
		}
		if u.ActiveState == "active" && strings.HasSuffix(u.Name, ".service") {
			props, err := conn.GetUnitTypePropertiesContext(ctx, u.Name, "Service")
			if err != nil {
				p.logger.Debug("unit properties unavailable", "unit", u.Name, "err", err)
			} else {
				if pid, ok := props["MainPID"].(uint32); ok {
					info.MainPID = pid
				}
				if mem, ok := props["MemoryCurrent"].(uint64); ok {
					info.MemBytes = mem
				}
			}
		}
		infos = append(infos, info)
	}
	return render(infos), nil
}

func render(units []unitInfo) string {
	var b strings.Builder
	for _, u := range units {
		fmt.Fprintf(&b, "%s: %s (%s/%s)", u.Name, mapStatus(u.ActiveState), u.ActiveState, u.SubState)
		if u.LoadState != "" && u.LoadState != "loaded" {
			fmt.Fprintf(&b, " load=%s", u.LoadState)
		}
		if u.MainPID > 0 {
			fmt.Fprintf(&b, " pid=%d", u.MainPID)
		}
		// MemoryCurrent is MaxUint64 when accounting is off.
		if u.MemBytes > 0 && u.MemBytes != ^uint64(0) {
			fmt.Fprintf(&b, " mem=%s", humanize.IBytes(u.MemBytes))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func mapStatus(active string) string {
	switch active {
	case "active":
		return "running"
	case "inactive", "deactivating":
		return "stopped"
	case "failed":
		return "failed"
	default:
		return "unknown"
	}
}
