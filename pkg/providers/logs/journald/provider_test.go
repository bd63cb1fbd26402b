package journald

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCollect(t *testing.T) {
	var calls []string
	var logBuf bytes.Buffer
	p := New([]string{"nginx.service", "redis.service"}, 10, slog.New(slog.NewTextHandler(&logBuf, nil)))
	p.SetExec(func(_ context.Context, name string, args ...string) (string, error) {
		calls = append(calls, name+" "+strings.Join(args, " "))
		if args[1] == "redis.service" {
			return "", errors.New("exit status 1")
		}
		return "started\n", nil
	})

	blocks, err := p.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks: got %d", len(blocks))
	}
	if blocks[0].Text != "started\n" || blocks[0].Err != nil {
		t.Errorf("nginx block: %+v", blocks[0])
	}
	if blocks[1].Err == nil {
		t.Error("redis block should carry its error")
	}
	if calls[0] != "journalctl -u nginx.service -n 10 -o cat --no-pager" {
		t.Errorf("command: got %q", calls[0])
	}
	if !strings.Contains(logBuf.String(), "journal read failed") || !strings.Contains(logBuf.String(), "unit=redis.service") {
		t.Errorf("failure not logged: %q", logBuf.String())
	}
}
