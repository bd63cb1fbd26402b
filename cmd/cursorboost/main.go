package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/modoterra/cursorboost/internal/buildinfo"
	"github.com/modoterra/cursorboost/pkg/config"
	"github.com/modoterra/cursorboost/pkg/daemon"
	"github.com/modoterra/cursorboost/pkg/transport/uds"
	tuimodel "github.com/modoterra/cursorboost/pkg/tui/model"
)

var (
	configPath string
	socketPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cursorboost",
	Short:         "Keep an editor context file current with live environment snapshots",
	Long:          "cursorboost captures command output from the host and from each listed project, summarizes it with an LLM and writes the result as an editor context file.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to cursorboost.yaml")
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "daemon socket path (default from config)")

	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(triggerCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the config, reporting fallback reasons on stderr.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg, problems := config.Resolve(configPath)
	for _, p := range problems {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (using defaults)\n", p)
	}
	if socketPath != "" {
		cfg.Socket = socketPath
	}
	return cfg
}

func dialDaemon(cmd *cobra.Command) (*uds.Client, error) {
	sock := socketPath
	if sock == "" {
		sock = loadConfig(cmd).Socket
	}
	client, err := uds.Dial(sock)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to daemon at %s: %w", sock, err)
	}
	return client, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// --- Once ---

var (
	onceJSON    bool
	onceVerbose bool
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single cycle in-process and print its report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig(cmd)

		level := parseLevel(cfg.LogLevel)
		if onceVerbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rep := daemon.FromConfig(cfg, logger).RunCycle(ctx)
		if onceJSON {
			return writeJSON(cmd.OutOrStdout(), rep)
		}
		printReport(cmd.OutOrStdout(), &rep, time.Now())
		if rep.Error != "" {
			return fmt.Errorf("cycle aborted: %s", rep.Error)
		}
		return nil
	},
}

func init() {
	onceCmd.Flags().BoolVar(&onceJSON, "json", false, "output the report as JSON")
	onceCmd.Flags().BoolVarP(&onceVerbose, "verbose", "v", false, "debug logging")
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// --- Ping ---

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check if daemon is running",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := dialDaemon(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()

		var pong uds.PingResponse
		if err := client.Call(ctx, uds.MethodPing, nil, &pong); err != nil {
			return err
		}
		if pong.Pong {
			fmt.Fprintf(cmd.OutOrStdout(), "pong ✓ (%s)\n", pong.Version)
		}
		return nil
	},
}

// --- Status ---

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon state and the last cycle",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := dialDaemon(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()

		var st daemon.StatusResponse
		if err := client.Call(ctx, uds.MethodStatus, nil, &st); err != nil {
			return err
		}

		if statusJSON {
			return writeJSON(cmd.OutOrStdout(), st)
		}
		printStatus(cmd.OutOrStdout(), st, time.Now())
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func printStatus(w io.Writer, st daemon.StatusResponse, now time.Time) {
	fmt.Fprintf(w, "daemon:    %s\n", st.Version)
	switch {
	case st.Running:
		fmt.Fprintln(w, "state:     cycle running")
	case !st.NextRun.IsZero():
		fmt.Fprintf(w, "state:     idle, next cycle %s\n", humanize.RelTime(st.NextRun, now, "ago", "from now"))
	default:
		fmt.Fprintln(w, "state:     idle")
	}
	if st.Last == nil {
		fmt.Fprintln(w, "no cycle has finished yet")
		return
	}
	fmt.Fprintln(w)
	printReport(w, st.Last, now)
}

func printReport(w io.Writer, rep *daemon.Report, now time.Time) {
	fmt.Fprintf(w, "cycle:     %s\n", rep.ID)
	fmt.Fprintf(w, "started:   %s (took %s)\n",
		humanize.RelTime(rep.StartedAt, now, "ago", "from now"),
		rep.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "commands:  %d (%d failed)\n", rep.Commands, rep.Failures)
	fmt.Fprintf(w, "snapshot:  %s (%s)\n", rep.SnapshotPath, humanize.Bytes(uint64(rep.SnapshotBytes)))
	if rep.ArtifactWritten {
		fmt.Fprintf(w, "artifact:  %s\n", rep.ArtifactPath)
	} else {
		fmt.Fprintf(w, "artifact:  not written\n")
	}

	if len(rep.Projects) > 0 {
		fmt.Fprintf(w, "\n%-24s %-16s %-9s %s\n", "PROJECT", "STATUS", "COMMANDS", "FAILED")
		for _, p := range rep.Projects {
			fmt.Fprintf(w, "%-24s %-16s %-9d %d\n", p.Name, p.Status, p.Commands, p.Failures)
		}
	}
	if rep.Error != "" {
		fmt.Fprintf(w, "\nerror: %s\n", rep.Error)
	}
	for _, warn := range rep.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Trigger ---

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Ask the daemon to run a cycle now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := dialDaemon(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()

		var resp uds.TriggerResponse
		if err := client.Call(ctx, uds.MethodTrigger, nil, &resp); err != nil {
			return err
		}
		if resp.Queued {
			fmt.Fprintln(cmd.OutOrStdout(), "cycle requested ✓")
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "a cycle is already pending")
		}
		return nil
	},
}

// --- Watch ---

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the daemon's cycles",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !isTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("watch needs a terminal; use `cursorboost status` instead")
		}
		sock := loadConfig(cmd).Socket
		p := tea.NewProgram(tuimodel.New(sock), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String("cursorboost"))
	},
}
