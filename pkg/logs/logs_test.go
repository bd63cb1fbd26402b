package logs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDockerBlocks(t *testing.T) {
	blocks := []Block{
		{Source: SourceDocker, Name: "web", ID: "abc123", Text: "GET /\n"},
		{Source: SourceDocker, Name: "db", ID: "def456", Err: errors.New("exit status 1")},
		{Source: SourceDocker, Name: "cache", ID: "0a0a0a", Text: "ready\n"},
	}
	want := "\nDocker Logs for web (abc123):\n\nGET /\n\n" +
		"\nError getting logs for db: exit status 1\n\n" +
		"\nDocker Logs for cache (0a0a0a):\n\nready\n"
	assert.Equal(t, want, Render(blocks))
}

func TestRenderOtherSources(t *testing.T) {
	blocks := []Block{
		{Source: SourceJournald, Name: "nginx.service", Text: "started\n"},
		{Source: SourceFile, Name: "/var/log/app.log", Text: "line\n"},
	}
	got := Render(blocks)
	assert.Contains(t, got, "\nJournal for nginx.service:\n")
	assert.Contains(t, got, "\nLog file /var/log/app.log:\n")
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
}

type stubCollector struct {
	name   string
	blocks []Block
	err    error
}

func (s stubCollector) Name() string { return s.name }

func (s stubCollector) Collect(context.Context) ([]Block, error) { return s.blocks, s.err }

func TestGatherListFailureUsesBlanketText(t *testing.T) {
	c := stubCollector{name: "docker", err: &ListError{Text: "Error getting Docker container list", Err: errors.New("no daemon")}}
	assert.Equal(t, "Error getting Docker container list", Gather(context.Background(), nil, c))
}

func TestGatherCombinesCollectors(t *testing.T) {
	a := stubCollector{name: "journald", blocks: []Block{{Source: SourceJournald, Name: "nginx.service", Text: "up\n"}}}
	b := stubCollector{name: "file", err: errors.New("boom")}
	c := stubCollector{name: "empty"}

	got := Gather(context.Background(), nil, a, b, c)
	assert.Equal(t, "\nJournal for nginx.service:\n\nup\n\nError collecting file logs: boom", got)
}
