// Package runner executes snapshot invocations and captures their combined
// output. A command failure never aborts the caller: every run produces a
// core.Result.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/modoterra/cursorboost/pkg/core"
)

// killGrace is how long a timed-out process group gets between SIGTERM and
// SIGKILL.
const killGrace = 2 * time.Second

// Runner runs invocations in a given working directory.
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a runner. A zero timeout leaves commands unbounded.
func New(timeout time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{timeout: timeout, logger: logger}
}

// Run executes inv with dir as its working directory (empty means the
// current one). stdout and stderr are merged. Non-zero exits, start
// failures and timeouts all yield a failed result.
func (r *Runner) Run(ctx context.Context, inv core.Invocation, dir string) core.Result {
	res := core.Result{Label: inv.Label()}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	out := &threadSafeBuffer{}
	start := time.Now()

	var (
		code int
		err  error
	)
	if inv.IsShell() {
		code, err = runShell(runCtx, inv.Shell, dir, out)
	} else {
		code, err = runProgram(runCtx, inv, dir, out)
	}
	res.Duration = time.Since(start)
	res.Output = out.String()
	res.ExitCode = code

	switch {
	case r.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		res.Failed = true
		res.Output = appendNote(res.Output, fmt.Sprintf("timed out after %s", r.timeout))
		r.logger.Warn("command timed out", "command", res.Label, "dir", dir, "timeout", r.timeout)
	case err != nil:
		res.Failed = true
		res.Output = appendNote(res.Output, err.Error())
		r.logger.Warn("command could not run", "command", res.Label, "dir", dir, "err", err)
	case code != 0:
		res.Failed = true
		r.logger.Debug("command failed", "command", res.Label, "dir", dir, "exit_code", code)
	default:
		r.logger.Debug("command ok", "command", res.Label, "dir", dir, "duration", res.Duration)
	}
	return res
}

// runShell interprets script in-process. The returned error is non-nil only
// when the script could not be run at all; a non-zero exit is reported
// through the code.
func runShell(ctx context.Context, script, dir string, out io.Writer) (int, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "")
	if err != nil {
		return -1, fmt.Errorf("parse: %w", err)
	}

	opts := []interp.RunnerOption{
		interp.StdIO(nil, out, out),
		interp.Env(expand.ListEnviron(os.Environ()...)),
	}
	if dir != "" {
		opts = append(opts, interp.Dir(dir))
	}
	sh, err := interp.New(opts...)
	if err != nil {
		return -1, fmt.Errorf("shell: %w", err)
	}

	err = sh.Run(ctx, prog)
	if status, ok := interp.IsExitStatus(err); ok {
		return int(status), nil
	}
	if err != nil {
		return -1, err
	}
	return 0, nil
}

// runProgram starts inv.Program in its own process group so a timeout can
// take down any children it spawned.
func runProgram(ctx context.Context, inv core.Invocation, dir string, out io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, inv.Program, inv.Args...)
	cmd.Dir = dir
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = killGrace

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil && cmd.Process != nil {
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func appendNote(output, note string) string {
	if output != "" && !strings.HasSuffix(output, "\n") {
		output += "\n"
	}
	return output + note
}

// threadSafeBuffer collects output from pipeline stages that may write
// concurrently.
type threadSafeBuffer struct {
	buffer bytes.Buffer
	mutex  sync.Mutex
}

func (b *threadSafeBuffer) Write(p []byte) (n int, err error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.Write(p)
}

func (b *threadSafeBuffer) String() string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buffer.String()
}
