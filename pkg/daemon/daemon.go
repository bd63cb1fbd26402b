package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/modoterra/cursorboost/pkg/transport/uds"
)

// StatusResponse is the payload of a Status request.
type StatusResponse struct {
	Version string    `json:"version,omitempty"`
	Running bool      `json:"running"`
	NextRun time.Time `json:"next_run,omitempty"`
	Last    *Report   `json:"last,omitempty"`
}

// Daemon is the cursorboostd process: it serves the loop state over the
// socket and broadcasts every finished cycle.
type Daemon struct {
	server  *uds.Server
	loop    *Loop
	version string
	last    *Report
	mu      sync.RWMutex
	logger  *slog.Logger
}

// New creates a daemon serving loop on socketPath.
func New(socketPath string, loop *Loop, version string, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{
		server:  uds.NewServer(socketPath, logger),
		loop:    loop,
		version: version,
		logger:  logger,
	}
	loop.OnReport(d.record)
	d.registerHandlers()
	return d
}

// Serve runs the socket server and blocks until ctx is cancelled.
func (d *Daemon) Serve(ctx context.Context) error {
	return d.server.Start(ctx)
}

// Shutdown cleans up resources.
func (d *Daemon) Shutdown() {
	d.server.Shutdown()
}

// Server returns the underlying UDS server.
func (d *Daemon) Server() *uds.Server {
	return d.server
}

// Last returns the most recent cycle report, or nil before the first cycle.
func (d *Daemon) Last() *Report {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.last
}

func (d *Daemon) record(rep Report) {
	d.mu.Lock()
	d.last = &rep
	d.mu.Unlock()

	evt, err := uds.NewEvent(uds.EventCycleDone, rep)
	if err != nil {
		d.logger.Error("encode cycle event", "err", err)
		return
	}
	d.server.Broadcast(evt)
}

func (d *Daemon) registerHandlers() {
	d.server.Handle(uds.MethodPing, d.handlePing)
	d.server.Handle(uds.MethodStatus, d.handleStatus)
	d.server.Handle(uds.MethodTrigger, d.handleTrigger)
}

func (d *Daemon) handlePing(_ context.Context, _ uds.Message) (any, error) {
	return uds.PingResponse{Pong: true, Version: d.version}, nil
}

func (d *Daemon) handleStatus(_ context.Context, _ uds.Message) (any, error) {
	return StatusResponse{
		Version: d.version,
		Running: d.loop.Running(),
		NextRun: d.loop.Next(),
		Last:    d.Last(),
	}, nil
}

func (d *Daemon) handleTrigger(_ context.Context, _ uds.Message) (any, error) {
	queued := d.loop.Trigger()
	d.logger.Info("trigger requested", "queued", queued)
	return uds.TriggerResponse{Queued: queued}, nil
}
