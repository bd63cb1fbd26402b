package docker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/moby/moby/api/types/container"

	"github.com/modoterra/cursorboost/pkg/core"
	"github.com/modoterra/cursorboost/pkg/logs"
)

// fakeCLI answers ps and logs calls from canned data.
type fakeCLI struct {
	ps      string
	psErr   error
	logs    map[string]string
	logErrs map[string]error
	calls   []string
}

func (f *fakeCLI) exec(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))
	switch args[0] {
	case "ps":
		return f.ps, f.psErr
	case "logs":
		id := args[len(args)-1]
		if err := f.logErrs[id]; err != nil {
			return "", err
		}
		return f.logs[id], nil
	}
	return "", errors.New("unexpected command")
}

func newProvider(cli *fakeCLI, ignore ...string) *Provider {
	p := New("docker", ignore, 25, nil)
	p.SetExec(cli.exec)
	return p
}

func TestList(t *testing.T) {
	cli := &fakeCLI{ps: "abc\tweb\trunning\ndef\tworker\trestarting\n\nghi\tlegacy\n"}
	got, err := newProvider(cli).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("containers: got %d, want 3", len(got))
	}
	if got[1].Name != "worker" || got[1].Status() != StatusRestarting {
		t.Errorf("worker: got %+v", got[1])
	}
	if got[2].State != container.StateRunning {
		t.Errorf("missing state should default to running, got %q", got[2].State)
	}
}

func TestCollect(t *testing.T) {
	cli := &fakeCLI{
		ps:      "abc\tweb\trunning\ndef\ttraefik\trunning\nghi\tdb\trunning\n",
		logs:    map[string]string{"abc": "GET /\n"},
		logErrs: map[string]error{"ghi": errors.New("exit status 1")},
	}
	blocks, err := newProvider(cli, "traefik").Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks: got %d, want 2 (traefik ignored)", len(blocks))
	}
	if blocks[0].Name != "web" || blocks[0].Text != "GET /\n" || blocks[0].Source != logs.SourceDocker {
		t.Errorf("web block: got %+v", blocks[0])
	}
	if blocks[1].Name != "db" || blocks[1].Err == nil {
		t.Errorf("db block should carry its error: %+v", blocks[1])
	}
	for _, c := range cli.calls {
		if strings.Contains(c, "def") {
			t.Errorf("ignored container was queried: %s", c)
		}
	}
	if cli.calls[1] != "docker logs --tail 25 abc" {
		t.Errorf("logs call: got %q", cli.calls[1])
	}
}

func TestCollectListFailure(t *testing.T) {
	cli := &fakeCLI{psErr: errors.New("cannot connect to the Docker daemon")}
	_, err := newProvider(cli).Collect(context.Background())

	var le *logs.ListError
	if !errors.As(err, &le) {
		t.Fatalf("expected *logs.ListError, got %v", err)
	}
	if le.Text != ListFailure {
		t.Errorf("text: got %q", le.Text)
	}
	if got := logs.Gather(context.Background(), nil, newProvider(cli)); got != ListFailure {
		t.Errorf("gathered section: got %q", got)
	}
}

func TestParseComposeFile(t *testing.T) {
	content := `
services:
  redis:
    image: redis:7
    ports:
      - "6379:6379"
  mailpit:
    image: axllent/mailpit
    container_name: mailpit
    ports:
      - "8025:8025"
      - "1025:1025"
  mysql:
    image: mysql:8
    ports:
      - "3306:3306"
`
	path := filepath.Join(t.TempDir(), "compose.yml")
	os.WriteFile(path, []byte(content), 0644)

	cf, err := ParseComposeFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if len(cf.Services) != 3 {
		t.Errorf("services: got %d, want 3", len(cf.Services))
	}

	if cf.Services["mailpit"].ContainerName != "mailpit" {
		t.Errorf("mailpit container_name: got %q", cf.Services["mailpit"].ContainerName)
	}

	names := cf.ServiceNames()
	if strings.Join(names, ",") != "mailpit,mysql,redis" {
		t.Errorf("service names: got %v", names)
	}
}

func TestParseComposeFileLongSyntax(t *testing.T) {
	content := `
services:
  web:
    image: nginx
    labels: ["traefik.enable=true"]
    ports:
      - "443:443"
      - target: 80
        published: 8080
      - target: 53
        published: "5353"
        host_ip: 127.0.0.1
        protocol: udp
      - target: 9000
`
	path := filepath.Join(t.TempDir(), "compose.yml")
	os.WriteFile(path, []byte(content), 0o644)

	cf, err := ParseComposeFile(path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got := strings.Join(cf.Services["web"].Ports, ",")
	want := "443:443,8080:80,127.0.0.1:5353:53/udp,9000"
	if got != want {
		t.Errorf("ports: got %q, want %q", got, want)
	}
}

func TestComposeProbeLongSyntaxIsNotAFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "api")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "compose.yaml"), []byte(`
services:
  app:
    image: api:dev
    labels:
      - "com.example.team=core"
    ports:
      - target: 80
        published: 8080
`), 0o644)

	out, err := NewComposeProbe(nil).Probe(context.Background(), dir)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	want := "compose.yaml (project api)\n" +
		"- app: image=api:dev container=api-app-1 status=unknown ports=8080:80\n"
	if out != want {
		t.Errorf("probe output:\n%s\nwant:\n%s", out, want)
	}
}

func TestContainerName(t *testing.T) {
	tests := []struct {
		project, service string
		svc              ComposeService
		want             string
	}{
		{"myapp", "mailpit", ComposeService{ContainerName: "mailpit"}, "mailpit"},
		{"myapp", "mysql", ComposeService{}, "myapp-mysql-1"},
		{"", "app", ComposeService{}, ""},
	}
	for _, tt := range tests {
		if got := ContainerName(tt.project, tt.service, tt.svc); got != tt.want {
			t.Errorf("ContainerName(%q, %q) = %q, want %q", tt.project, tt.service, got, tt.want)
		}
	}
}

func TestComposeProbe(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Shop")
	os.MkdirAll(dir, 0o755)
	os.WriteFile(filepath.Join(dir, "docker-compose.yml"), []byte(`
services:
  redis:
    image: redis:7
    ports: ["6379:6379"]
  mysql:
    image: mysql:8
`), 0o644)

	cli := &fakeCLI{ps: "abc\tshop-redis-1\trunning\n"}
	out, err := NewComposeProbe(newProvider(cli)).Probe(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}
	want := "docker-compose.yml (project shop)\n" +
		"- mysql: image=mysql:8 container=shop-mysql-1 status=stopped\n" +
		"- redis: image=redis:7 container=shop-redis-1 status=running ports=6379:6379\n"
	if out != want {
		t.Errorf("probe output:\n%s\nwant:\n%s", out, want)
	}
}

func TestComposeProbeSkipsWithoutComposeFile(t *testing.T) {
	_, err := NewComposeProbe(nil).Probe(context.Background(), t.TempDir())
	if !errors.Is(err, core.ErrProbeSkipped) {
		t.Errorf("expected ErrProbeSkipped, got %v", err)
	}
	_, err = NewComposeProbe(nil).Probe(context.Background(), "")
	if !errors.Is(err, core.ErrProbeSkipped) {
		t.Errorf("system batch: expected ErrProbeSkipped, got %v", err)
	}
}

func TestMapContainerState(t *testing.T) {
	tests := []struct {
		state container.ContainerState
		want  string
	}{
		{container.StateRunning, "running"},
		{container.StateExited, "stopped"},
		{container.StateDead, "stopped"},
		{container.StateRestarting, "restarting"},
		{container.StateCreated, "stopped"},
		{container.StatePaused, "stopped"},
		{container.ContainerState("bogus"), "unknown"},
	}
	for _, tt := range tests {
		got := mapContainerState(tt.state)
		if string(got) != tt.want {
			t.Errorf("mapContainerState(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
