package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/modoterra/cursorboost/pkg/daemon"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	runningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	activePaneStyle = paneStyle.
			BorderForeground(lipgloss.Color("205"))

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the TUI.
func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "loading..."
	}

	statusBarH := 2
	headerH := 1
	historyH := max(a.height/3, 5)
	mainH := a.height - historyH - headerH - statusBarH - 4
	listW := a.width*2/5 - 2
	detailW := a.width - listW - 4

	header := a.renderHeader()

	list := a.renderProjects(listW, mainH)
	listPane := a.paneBox(PaneProjects, " Projects ", list, listW, mainH)

	detail := renderReport(a.selectedReport(), a.now())
	detailPane := paneStyle.Width(detailW).Height(mainH).Render(titleStyle.Render(" Cycle ") + "\n" + detail)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	history := a.renderHistory(a.width-4, historyH)
	historyPane := a.paneBox(PaneHistory, " History ", history, a.width-4, historyH)

	return lipgloss.JoinVertical(lipgloss.Left, header, topRow, historyPane, a.renderStatusBar())
}

func (a App) paneBox(pane Pane, title, content string, w, h int) string {
	style := paneStyle
	if a.activePane == pane {
		style = activePaneStyle
	}
	return style.Width(w).Height(h).Render(
		titleStyle.Render(title) + "\n" + content,
	)
}

func (a App) renderHeader() string {
	var state string
	switch {
	case !a.connected:
		state = failedStyle.Render("disconnected")
	case a.status.Running:
		state = a.spinner.View() + " " + runningStyle.Render("cycle running")
	case !a.status.NextRun.IsZero():
		state = dimStyle.Render("next cycle " + humanize.Time(a.status.NextRun))
	default:
		state = dimStyle.Render("idle")
	}
	title := titleStyle.Render("cursorboost")
	if a.status.Version != "" {
		title += dimStyle.Render(" " + a.status.Version)
	}
	return title + "  " + state
}

func (a App) renderProjects(w, h int) string {
	rep := a.status.Last
	if rep == nil {
		return dimStyle.Render("waiting for the first cycle")
	}
	if len(rep.Projects) == 0 {
		return dimStyle.Render("no projects listed")
	}

	var b strings.Builder
	maxVisible := h - 2
	start := 0
	if a.activePane == PaneProjects && a.selectedIdx >= maxVisible {
		start = a.selectedIdx - maxVisible + 1
	}

	for i := start; i < len(rep.Projects) && i-start < maxVisible; i++ {
		p := rep.Projects[i]
		name := truncate(p.Name, w-12)
		line := fmt.Sprintf(" %s %-*s %s", projectIndicator(p), w-12, name, failureCount(p))

		if a.activePane == PaneProjects && i == a.selectedIdx {
			line = selectedStyle.Width(w).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func renderReport(rep *daemon.Report, now time.Time) string {
	if rep == nil {
		return dimStyle.Render("no cycle yet")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "ID:        %s\n", dimStyle.Render(rep.ID))
	fmt.Fprintf(&b, "Started:   %s\n", humanize.RelTime(rep.StartedAt, now, "ago", "from now"))
	fmt.Fprintf(&b, "Duration:  %s\n", rep.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Commands:  %d\n", rep.Commands)
	if rep.Failures > 0 {
		fmt.Fprintf(&b, "Failures:  %s\n", failedStyle.Render(fmt.Sprint(rep.Failures)))
	} else {
		fmt.Fprintf(&b, "Failures:  0\n")
	}
	fmt.Fprintf(&b, "Snapshot:  %s\n", humanize.Bytes(uint64(rep.SnapshotBytes)))
	if rep.ArtifactWritten {
		fmt.Fprintf(&b, "Artifact:  %s\n", runningStyle.Render("written"))
	} else {
		fmt.Fprintf(&b, "Artifact:  %s\n", skippedStyle.Render("not written"))
	}

	if rep.Error != "" {
		fmt.Fprintf(&b, "\n%s\n", failedStyle.Render(rep.Error))
	}
	for _, w := range rep.Warnings {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render("! "+w))
	}
	return b.String()
}

func (a App) renderHistory(w, h int) string {
	if len(a.history) == 0 {
		return dimStyle.Render("no cycles yet")
	}

	var b strings.Builder
	now := a.now()
	for i := 0; i < len(a.history) && i < h-1; i++ {
		rep := a.history[i]
		line := fmt.Sprintf(" %s %-10s %-14s %3d cmds %3d failed",
			cycleIndicator(rep),
			shortID(rep.ID),
			humanize.RelTime(rep.StartedAt, now, "ago", "from now"),
			rep.Commands,
			rep.Failures,
		)
		line = truncate(line, w)
		if a.activePane == PaneHistory && i == a.selectedIdx {
			line = selectedStyle.Width(w).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (a App) renderStatusBar() string {
	left := a.statusMsg
	right := "j/k:nav tab:pane r:run now c:reconnect q:quit"

	gap := a.width - lipgloss.Width(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return helpStyle.Render(left + strings.Repeat(" ", gap) + right)
}

func projectIndicator(p daemon.ProjectStatus) string {
	switch {
	case p.Status == daemon.ProjectNotFound:
		return skippedStyle.Render("○")
	case p.Status == daemon.ProjectBasePathUnset:
		return failedStyle.Render("✖")
	case p.Failures > 0:
		return warnStyle.Render("●")
	default:
		return runningStyle.Render("●")
	}
}

func failureCount(p daemon.ProjectStatus) string {
	switch p.Status {
	case daemon.ProjectOK:
		if p.Failures > 0 {
			return failedStyle.Render(fmt.Sprintf("%d/%d", p.Failures, p.Commands))
		}
		return dimStyle.Render(fmt.Sprintf("%d ok", p.Commands))
	case daemon.ProjectNotFound:
		return dimStyle.Render("missing")
	default:
		return failedStyle.Render("config")
	}
}

func cycleIndicator(rep daemon.Report) string {
	switch {
	case rep.Error != "":
		return failedStyle.Render("✖")
	case !rep.ArtifactWritten:
		return warnStyle.Render("◐")
	default:
		return runningStyle.Render("●")
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
