package config

import (
	"time"

	"github.com/modoterra/cursorboost/pkg/core"
)

// Config represents a cursorboost.yaml configuration file.
// It is resolved once at startup and treated as immutable afterwards.
type Config struct {
	Version        int      `yaml:"version"         json:"version"`
	Tree           Tree     `yaml:"tree"            json:"tree"`
	System         System   `yaml:"system"          json:"system"`
	Projects       Projects `yaml:"projects"        json:"projects"`
	Docker         Docker   `yaml:"docker"          json:"docker"`
	Logs           Logs     `yaml:"logs"            json:"logs"`
	Probes         Probes   `yaml:"probes"          json:"probes"`
	LLM            LLM      `yaml:"llm"             json:"llm"`
	Output         Output   `yaml:"output"          json:"output"`
	Interval       Duration `yaml:"interval"        json:"interval"`
	CommandTimeout Duration `yaml:"command_timeout" json:"command_timeout"`
	Socket         string   `yaml:"socket"          json:"socket"`
	LogLevel       string   `yaml:"log_level"       json:"log_level"`

	// FilePath is the file the config was loaded from (empty for defaults).
	FilePath string `yaml:"-" json:"-"`
}

// Tree controls the directory-structure command run in every project.
type Tree struct {
	MaxDepth         int      `yaml:"max_depth"         json:"max_depth"`
	IgnorePatterns   []string `yaml:"ignore_patterns"   json:"ignore_patterns"`
	IgnoreExtensions []string `yaml:"ignore_extensions" json:"ignore_extensions"`
}

// System configures the unscoped, host-wide batch.
type System struct {
	DiskUsageThreshold int               `yaml:"disk_usage_threshold" json:"disk_usage_threshold"`
	Commands           []core.Invocation `yaml:"commands,omitempty"   json:"commands,omitempty"`
}

// Projects configures project enumeration and the per-project batch.
type Projects struct {
	BasePath string            `yaml:"base_path"          json:"base_path"`
	ListFile string            `yaml:"list_file"          json:"list_file"`
	Commands []core.Invocation `yaml:"commands,omitempty" json:"commands,omitempty"`
}

// Docker configures container log collection.
type Docker struct {
	Runtime          string   `yaml:"runtime"           json:"runtime"`
	IgnoreContainers []string `yaml:"ignore_containers" json:"ignore_containers"`
	Tail             int      `yaml:"tail"              json:"tail"`
}

// Logs lists additional log sources for the derived artifact.
type Logs struct {
	Units []string `yaml:"units,omitempty" json:"units,omitempty"` // journald
	Files []string `yaml:"files,omitempty" json:"files,omitempty"` // filetail
	Tail  int      `yaml:"tail"            json:"tail"`
}

// Probes toggles the native probes.
type Probes struct {
	SystemdUnits []string `yaml:"systemd_units,omitempty" json:"systemd_units,omitempty"`
	Processes    bool     `yaml:"processes"               json:"processes"`
	Compose      *bool    `yaml:"compose,omitempty"       json:"compose,omitempty"`
}

// ComposeEnabled reports whether the compose probe runs; it is on unless
// explicitly disabled.
func (p Probes) ComposeEnabled() bool {
	return p.Compose == nil || *p.Compose
}

// LLM configures the summarization backend.
type LLM struct {
	Provider    string   `yaml:"provider"    json:"provider"` // openai|gemini
	Model       string   `yaml:"model"       json:"model"`
	Temperature float32  `yaml:"temperature" json:"temperature"`
	BaseURL     string   `yaml:"base_url"    json:"base_url,omitempty"`
	APIKeyEnv   string   `yaml:"api_key_env" json:"api_key_env"`
	Timeout     Duration `yaml:"timeout"     json:"timeout"`
}

// Output names the persisted documents.
type Output struct {
	Snapshot    string `yaml:"snapshot"    json:"snapshot"`
	Artifact    string `yaml:"artifact"    json:"artifact"`
	Description string `yaml:"description" json:"description"`
}

// Duration is a time.Duration that reads and writes as "60s" in YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
