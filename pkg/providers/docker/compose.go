package docker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/modoterra/cursorboost/pkg/core"
)

// ComposeFileNames are checked in order in a project directory.
var ComposeFileNames = []string{"compose.yml", "compose.yaml", "docker-compose.yml", "docker-compose.yaml"}

// ComposeFile represents a minimal Docker Compose file.
type ComposeFile struct {
	Name     string                    `yaml:"name"`
	Services map[string]ComposeService `yaml:"services"`
}

// ComposeService is a minimal service definition from a compose file.
type ComposeService struct {
	Image         string       `yaml:"image"`
	Ports         ComposePorts `yaml:"ports"`
	ContainerName string       `yaml:"container_name"`
}

// ComposePorts holds port mappings in short syntax ("8080:80/udp"). Entries
// written in long syntax are converted when decoding.
type ComposePorts []string

func (p *ComposePorts) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: ports must be a list", node.Line)
	}
	out := make(ComposePorts, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, item.Value)
		case yaml.MappingNode:
			out = append(out, longPort(item))
		default:
			return fmt.Errorf("line %d: unsupported port entry", item.Line)
		}
	}
	*p = out
	return nil
}

// longPort renders a long-syntax port mapping in short syntax.
func longPort(m *yaml.Node) string {
	fields := map[string]string{}
	for i := 0; i+1 < len(m.Content); i += 2 {
		fields[m.Content[i].Value] = m.Content[i+1].Value
	}
	s := fields["target"]
	if pub := fields["published"]; pub != "" {
		s = pub + ":" + s
		if ip := fields["host_ip"]; ip != "" {
			s = ip + ":" + s
		}
	}
	if proto := fields["protocol"]; proto != "" && proto != "tcp" {
		s += "/" + proto
	}
	return s
}

// ParseComposeFile reads a compose.yml and returns service definitions.
func ParseComposeFile(path string) (*ComposeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compose file: %w", err)
	}

	var cf ComposeFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse compose file: %w", err)
	}
	return &cf, nil
}

// FindComposeFile returns the first compose file in dir, or "".
func FindComposeFile(dir string) string {
	for _, name := range ComposeFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ServiceNames returns the service names in the compose file, sorted.
func (cf *ComposeFile) ServiceNames() []string {
	names := make([]string, 0, len(cf.Services))
	for name := range cf.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContainerName returns the container name compose gives the first replica
// of service: the explicit container_name, or "<project>-<service>-1".
func ContainerName(project, service string, svc ComposeService) string {
	if svc.ContainerName != "" {
		return svc.ContainerName
	}
	if project == "" {
		return ""
	}
	return fmt.Sprintf("%s-%s-1", project, service)
}

// ContainerLister lists live containers. *Provider satisfies it.
type ContainerLister interface {
	List(ctx context.Context) ([]Container, error)
}

// ComposeProbe reports the services of a project's compose file and the
// state of their containers.
type ComposeProbe struct {
	lister ContainerLister
}

// NewComposeProbe creates the probe. lister may be nil, in which case every
// service is reported with unknown status.
func NewComposeProbe(lister ContainerLister) *ComposeProbe {
	return &ComposeProbe{lister: lister}
}

func (p *ComposeProbe) Name() string { return "compose services" }

// Probe returns core.ErrProbeSkipped when dir has no compose file.
func (p *ComposeProbe) Probe(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		return "", core.ErrProbeSkipped
	}
	path := FindComposeFile(dir)
	if path == "" {
		return "", core.ErrProbeSkipped
	}
	cf, err := ParseComposeFile(path)
	if err != nil {
		return "", err
	}

	project := cf.Name
	if project == "" {
		project = strings.ToLower(filepath.Base(dir))
	}

	live := map[string]Status{}
	if p.lister != nil {
		if containers, err := p.lister.List(ctx); err == nil {
			for _, c := range containers {
				live[c.Name] = c.Status()
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (project %s)\n", filepath.Base(path), project)
	for _, name := range cf.ServiceNames() {
		svc := cf.Services[name]
		container := ContainerName(project, name, svc)
		status, ok := live[container]
		if !ok {
			status = StatusStopped
			if p.lister == nil {
				status = StatusUnknown
			}
		}
		fmt.Fprintf(&b, "- %s: image=%s container=%s status=%s", name, orNone(svc.Image), orNone(container), status)
		if len(svc.Ports) > 0 {
			fmt.Fprintf(&b, " ports=%s", strings.Join(svc.Ports, ","))
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
