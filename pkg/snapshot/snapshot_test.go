package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modoterra/cursorboost/pkg/core"
	"github.com/modoterra/cursorboost/pkg/workspace"
)

// fakeRunner returns canned outputs keyed by label and records calls.
type fakeRunner struct {
	outputs map[string]core.Result
	calls   []string
	dirs    []string
}

func (f *fakeRunner) Run(_ context.Context, inv core.Invocation, dir string) core.Result {
	f.calls = append(f.calls, inv.Label())
	f.dirs = append(f.dirs, dir)
	if r, ok := f.outputs[inv.Label()]; ok {
		r.Label = inv.Label()
		return r
	}
	return core.Result{Label: inv.Label(), Output: inv.Label() + " output\n"}
}

type fakeResolver map[string]string

func (f fakeResolver) Resolve(project string) (string, error) {
	if dir, ok := f[project]; ok {
		return dir, nil
	}
	return "", fmt.Errorf("%w: %s", workspace.ErrProjectNotFound, project)
}

type unsetResolver struct{}

func (unsetResolver) Resolve(string) (string, error) { return "", workspace.ErrBasePathUnset }

type fakeProbe struct {
	name string
	text string
	err  error
}

func (p fakeProbe) Name() string { return p.name }
func (p fakeProbe) Probe(context.Context, string) (string, error) {
	return p.text, p.err
}

var fixed = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

func newAggregator(r CommandRunner, res DirResolver) *Aggregator {
	a := NewAggregator(r, res, nil)
	a.SetClock(func() time.Time { return fixed })
	return a
}

func TestCaptureSystemBatchPreservesOrder(t *testing.T) {
	runner := &fakeRunner{}
	a := newAggregator(runner, nil)

	b, err := a.Capture(context.Background(), Request{
		Invocations: []core.Invocation{core.Program("uname", "-a"), core.Shell("df -h"), core.Program("docker", "ps")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"uname -a", "df -h", "docker ps"}, runner.calls)
	assert.Equal(t, []string{"", "", ""}, runner.dirs)

	want := "Timestamp: 2025-03-14T09:26:53.589793Z\n\n" +
		"uname -a:\nuname -a output\n\n\n" +
		"df -h:\ndf -h output\n\n\n" +
		"docker ps:\ndocker ps output\n\n"
	assert.Equal(t, want, b.Render())
	assert.Equal(t, 1, strings.Count(b.Render(), "Timestamp: "))
}

func TestCaptureFailedResultIsLabeled(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]core.Result{
		"false": {Output: "boom\n", Failed: true, ExitCode: 1},
	}}
	a := newAggregator(runner, nil)

	b, err := a.Capture(context.Background(), Request{
		Invocations: []core.Invocation{core.Program("false"), core.Program("true")},
	})
	require.NoError(t, err)

	text := b.Render()
	assert.Contains(t, text, "false (FAILED):\nboom\n")
	assert.Contains(t, text, "true:\ntrue output\n", "batch continues after a failure")
	assert.Equal(t, 1, b.Failures())
}

func TestCaptureProjectBatch(t *testing.T) {
	runner := &fakeRunner{}
	a := newAggregator(runner, fakeResolver{"api": "/work/api"})

	b, err := a.Capture(context.Background(), Request{
		Project:     "api",
		Invocations: []core.Invocation{core.Program("tree", "-d")},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/work/api"}, runner.dirs)
	assert.Equal(t, "Timestamp: 2025-03-14T09:26:53.589793Z\n\n\n### Project: api ###\n\ntree -d:\ntree -d output\n\n", b.Render())
}

func TestCaptureMissingProjectRunsNothing(t *testing.T) {
	runner := &fakeRunner{}
	a := newAggregator(runner, fakeResolver{})

	b, err := a.Capture(context.Background(), Request{
		Project:     "p",
		Invocations: []core.Invocation{core.Program("tree")},
	})
	assert.ErrorIs(t, err, workspace.ErrProjectNotFound)
	assert.True(t, b.Skipped)
	assert.Empty(t, b.Render())
	assert.Empty(t, runner.calls)
}

func TestCaptureBasePathUnset(t *testing.T) {
	runner := &fakeRunner{}
	a := newAggregator(runner, unsetResolver{})

	_, err := a.Capture(context.Background(), Request{
		Project:     "p",
		Invocations: []core.Invocation{core.Program("tree")},
	})
	assert.ErrorIs(t, err, workspace.ErrBasePathUnset)
	assert.Empty(t, runner.calls)
}

func TestCaptureProbesAfterCommands(t *testing.T) {
	runner := &fakeRunner{}
	a := newAggregator(runner, nil)

	b, err := a.Capture(context.Background(), Request{
		Invocations: []core.Invocation{core.Program("uname")},
		Probes: []core.Probe{
			fakeProbe{name: "systemd units", text: "nginx.service: active\n"},
			fakeProbe{name: "compose services", err: core.ErrProbeSkipped},
			fakeProbe{name: "processes", err: errors.New("no /proc")},
		},
	})
	require.NoError(t, err)

	require.Len(t, b.Results, 3)
	assert.Equal(t, "uname", b.Results[0].Label)
	assert.Equal(t, "systemd units", b.Results[1].Label)
	assert.False(t, b.Results[1].Failed)
	assert.Equal(t, "processes", b.Results[2].Label)
	assert.True(t, b.Results[2].Failed)
	assert.Equal(t, "no /proc", b.Results[2].Output)
}

func TestCaptureStopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	a := newAggregator(runner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Capture(ctx, Request{Invocations: []core.Invocation{core.Program("uname")}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runner.calls)
}

func TestSnapshotRenderJoinsBatches(t *testing.T) {
	sys := Batch{CapturedAt: fixed, Results: []core.Result{{Label: "uname", Output: "Linux\n"}}}
	proj := Batch{CapturedAt: fixed, Project: "api", Results: []core.Result{{Label: "tree", Output: ".\n"}}}
	missing := Batch{CapturedAt: fixed, Project: "gone", Skipped: true}

	s := New(sys, missing, proj)
	assert.Equal(t, sys.Render()+"\n\n"+proj.Render(), s.Render())
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", s.ID.String())
}

func TestSnapshotZeroProjectsEqualsSystemBatch(t *testing.T) {
	sys := Batch{CapturedAt: fixed, Results: []core.Result{{Label: "uname", Output: "Linux\n"}}}
	assert.Equal(t, sys.Render(), New(sys).Render())
}

func TestConsecutiveCapturesDifferOnlyInTimestamp(t *testing.T) {
	runner := &fakeRunner{}
	a := NewAggregator(runner, nil, nil)
	clock := fixed
	a.SetClock(func() time.Time { return clock })

	req := Request{Invocations: []core.Invocation{core.Program("uname"), core.Shell("df -h")}}
	first, err := a.Capture(context.Background(), req)
	require.NoError(t, err)

	clock = clock.Add(time.Minute)
	second, err := a.Capture(context.Background(), req)
	require.NoError(t, err)

	stripTimestamp := func(s string) string {
		_, rest, _ := strings.Cut(s, "\n")
		return rest
	}
	assert.NotEqual(t, first.Render(), second.Render())
	assert.Equal(t, stripTimestamp(first.Render()), stripTimestamp(second.Render()))
}
