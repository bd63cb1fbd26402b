package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	showRaw      bool
	showSnapshot bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Render the generated context file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := loadConfig(cmd)
		path := cfg.ArtifactPath()
		if showSnapshot {
			path = cfg.SnapshotPath()
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		out := cmd.OutOrStdout()
		if showRaw || showSnapshot || !isTerminal(out) {
			_, err := out.Write(data)
			return err
		}

		rendered, err := renderMarkdown(string(data), terminalWidth(out))
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print without markdown rendering")
	showCmd.Flags().BoolVar(&showSnapshot, "snapshot", false, "print the raw snapshot instead")
}

func renderMarkdown(md string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

func terminalWidth(w io.Writer) int {
	const fallback = 100
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return min(width, 120)
}
