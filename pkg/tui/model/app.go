package model

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/modoterra/cursorboost/pkg/daemon"
	"github.com/modoterra/cursorboost/pkg/transport/uds"
)

// Pane identifies which TUI pane is focused.
type Pane int

const (
	PaneProjects Pane = iota
	PaneHistory
)

const maxHistory = 20

// App is the root Bubble Tea model of `cursorboost watch`.
type App struct {
	// Connection
	client     *uds.Client
	socketPath string
	connected  bool
	events     chan uds.Message

	// State
	status      daemon.StatusResponse
	history     []daemon.Report
	selectedIdx int

	// UI
	activePane Pane
	spinner    spinner.Model
	width      int
	height     int
	now        func() time.Time

	statusMsg string
}

// New creates a new TUI app model.
func New(socketPath string) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = runningStyle

	return App{
		socketPath: socketPath,
		events:     make(chan uds.Message, 8),
		activePane: PaneProjects,
		spinner:    sp,
		now:        time.Now,
	}
}

// Init connects to the daemon.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		connectCmd(a.socketPath, a.events),
		a.spinner.Tick,
		tea.SetWindowTitle("cursorboost"),
	)
}

// tickMsg triggers periodic refresh.
type tickMsg time.Time

// connectedMsg indicates successful daemon connection.
type connectedMsg struct{ client *uds.Client }

// statusRespMsg carries the daemon status.
type statusRespMsg daemon.StatusResponse

// cycleDoneMsg carries a report pushed by the daemon.
type cycleDoneMsg daemon.Report

// disconnectedMsg means the daemon went away.
type disconnectedMsg struct{}

// errorMsg carries an error to display.
type errorMsg struct{ err error }

// triggeredMsg carries the result of a trigger request.
type triggeredMsg struct{ queued bool }

func connectCmd(socketPath string, events chan<- uds.Message) tea.Cmd {
	return func() tea.Msg {
		client, err := uds.Dial(socketPath)
		if err != nil {
			return errorMsg{err}
		}
		client.OnEvent(func(m uds.Message) {
			select {
			case events <- m:
			default:
			}
		})
		return connectedMsg{client}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchStatusCmd(client *uds.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var st daemon.StatusResponse
		if err := client.Call(ctx, uds.MethodStatus, nil, &st); err != nil {
			return errorMsg{err}
		}
		return statusRespMsg(st)
	}
}

// waitEventCmd turns the next cycle.done event into a message.
func waitEventCmd(client *uds.Client, events <-chan uds.Message) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case m := <-events:
				if m.Method != uds.EventCycleDone {
					continue
				}
				var rep daemon.Report
				if err := m.UnmarshalData(&rep); err != nil {
					return errorMsg{err}
				}
				return cycleDoneMsg(rep)
			case <-client.Done():
				return disconnectedMsg{}
			}
		}
	}
}

func triggerCmd(client *uds.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		var resp uds.TriggerResponse
		if err := client.Call(ctx, uds.MethodTrigger, nil, &resp); err != nil {
			return errorMsg{err}
		}
		return triggeredMsg{queued: resp.Queued}
	}
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case connectedMsg:
		a.client = msg.client
		a.connected = true
		a.statusMsg = "connected"
		return a, tea.Batch(tickCmd(), fetchStatusCmd(a.client), waitEventCmd(a.client, a.events))

	case disconnectedMsg:
		a.connected = false
		a.client = nil
		a.statusMsg = "daemon disconnected"
		return a, nil

	case tickMsg:
		if a.client != nil {
			return a, tea.Batch(tickCmd(), fetchStatusCmd(a.client))
		}
		return a, nil

	case statusRespMsg:
		a.status = daemon.StatusResponse(msg)
		if a.status.Last != nil && len(a.history) == 0 {
			a.history = []daemon.Report{*a.status.Last}
		}
		a.clampSelection()
		return a, nil

	case cycleDoneMsg:
		a.record(daemon.Report(msg))
		a.statusMsg = "cycle " + shortID(msg.ID) + " finished"
		var cmds []tea.Cmd
		if a.client != nil {
			cmds = append(cmds, waitEventCmd(a.client, a.events), fetchStatusCmd(a.client))
		}
		return a, tea.Batch(cmds...)

	case triggeredMsg:
		if msg.queued {
			a.statusMsg = "cycle requested"
		} else {
			a.statusMsg = "cycle already pending"
		}
		return a, nil

	case errorMsg:
		a.statusMsg = "error: " + msg.err.Error()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) record(rep daemon.Report) {
	a.status.Last = &rep
	if len(a.history) > 0 && a.history[0].ID == rep.ID {
		a.history[0] = rep
	} else {
		a.history = append([]daemon.Report{rep}, a.history...)
	}
	if len(a.history) > maxHistory {
		a.history = a.history[:maxHistory]
	}
	a.clampSelection()
}

func (a *App) clampSelection() {
	n := a.rows()
	if a.selectedIdx >= n {
		a.selectedIdx = max(0, n-1)
	}
}

// rows is the number of selectable rows in the focused pane.
func (a App) rows() int {
	if a.activePane == PaneHistory {
		return len(a.history)
	}
	if a.status.Last == nil {
		return 0
	}
	return len(a.status.Last.Projects)
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if a.client != nil {
			a.client.Close()
		}
		return a, tea.Quit

	case "j", "down":
		if a.selectedIdx < a.rows()-1 {
			a.selectedIdx++
		}
	case "k", "up":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}

	case "tab":
		a.activePane = (a.activePane + 1) % 2
		a.selectedIdx = 0

	case "r":
		if a.client == nil {
			a.statusMsg = "not connected"
			return a, nil
		}
		return a, triggerCmd(a.client)

	case "c":
		if a.client == nil {
			a.statusMsg = "connecting..."
			return a, connectCmd(a.socketPath, a.events)
		}
	}

	return a, nil
}

// selectedReport is the report shown in the detail pane.
func (a App) selectedReport() *daemon.Report {
	if a.activePane == PaneHistory && a.selectedIdx < len(a.history) {
		return &a.history[a.selectedIdx]
	}
	return a.status.Last
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
