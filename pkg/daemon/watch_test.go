package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListWatcherTriggersOnWrite(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "containers-list.md")
	require.NoError(t, os.WriteFile(list, []byte("- a\n"), 0o644))

	var calls atomic.Int32
	w := NewListWatcher(list, func() { calls.Add(1) }, quietLogger())
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// Keep writing until the watcher is registered and the debounce fires.
	require.Eventually(t, func() bool {
		os.WriteFile(list, []byte("- a\n- b\n"), 0o644)
		return calls.Load() > 0
	}, 3*time.Second, 100*time.Millisecond)
}

func TestListWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "containers-list.md")

	var calls atomic.Int32
	w := NewListWatcher(list, func() { calls.Add(1) }, quietLogger())
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644))
	time.Sleep(100 * time.Millisecond)

	cancel()
	<-done
	require.Zero(t, calls.Load())
}

func TestListWatcherMissingDir(t *testing.T) {
	w := NewListWatcher(filepath.Join(t.TempDir(), "nope", "list.md"), func() {}, quietLogger())
	require.NoError(t, w.Run(context.Background()))
}
