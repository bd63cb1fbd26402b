package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/modoterra/cursorboost/pkg/workspace"
)

// Load reads and parses a config file. It does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.FilePath = path
	return c, nil
}

// Parse decodes YAML into a Config. Optional sections absent from the file
// take their default values; required fields are left as found so Validate
// can reject them. An absent llm.temperature keeps its default; an explicit
// 0 is honoured.
func Parse(data []byte) (*Config, error) {
	c := Config{LLM: LLM{Temperature: DefaultLLMTemperature}}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	fillOptional(&c)
	return &c, nil
}

// Resolve loads the config at path and returns it ready for use. A missing,
// unparseable or invalid file yields the complete default configuration
// instead; the reasons are returned so the caller can log them. Environment
// overrides and path interpolation are applied in both cases.
func Resolve(path string) (*Config, []error) {
	var problems []error

	c, err := Load(path)
	if err == nil {
		if errs := Validate(c); len(errs) > 0 {
			problems = errs
			c = nil
		}
	} else {
		problems = []error{err}
	}

	if c == nil {
		c = Default()
		c.FilePath = path
	}

	applyEnvOverrides(c)
	interpolate(c)
	return c, problems
}

// Save writes the config as YAML, creating parent directories.
func Save(c *Config, path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Path resolves a configured file path: ${home} and ~ expand to the user
// home directory and relative paths are taken from the config file's
// directory.
func (c *Config) Path(p string) string {
	if p == "" {
		return ""
	}
	p = workspace.ExpandHome(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	dir := "."
	if c.FilePath != "" {
		dir = filepath.Dir(c.FilePath)
	}
	return filepath.Join(dir, p)
}

// SnapshotPath returns the resolved snapshot document path.
func (c *Config) SnapshotPath() string { return c.Path(c.Output.Snapshot) }

// ArtifactPath returns the resolved derived-artifact path.
func (c *Config) ArtifactPath() string { return c.Path(c.Output.Artifact) }

// DescriptionPath returns the resolved project-description path.
func (c *Config) DescriptionPath() string { return c.Path(c.Output.Description) }

// ProjectListPath returns the resolved project list path.
func (c *Config) ProjectListPath() string { return c.Path(c.Projects.ListFile) }

func fillOptional(c *Config) {
	d := Default()
	if c.Projects.ListFile == "" {
		c.Projects.ListFile = d.Projects.ListFile
	}
	if c.Docker.Runtime == "" {
		c.Docker.Runtime = d.Docker.Runtime
	}
	if c.Docker.Tail <= 0 {
		c.Docker.Tail = d.Docker.Tail
	}
	if c.Logs.Tail <= 0 {
		c.Logs.Tail = d.Logs.Tail
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = d.LLM.Provider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = modelFor(c.LLM.Provider)
	}
	if c.LLM.APIKeyEnv == "" {
		c.LLM.APIKeyEnv = apiKeyEnvFor(c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = d.LLM.Timeout
	}
	if c.Output.Snapshot == "" {
		c.Output.Snapshot = d.Output.Snapshot
	}
	if c.Output.Artifact == "" {
		c.Output.Artifact = d.Output.Artifact
	}
	if c.Output.Description == "" {
		c.Output.Description = d.Output.Description
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.CommandTimeout <= 0 {
		c.CommandTimeout = d.CommandTimeout
	}
	if c.Socket == "" {
		c.Socket = d.Socket
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

func modelFor(provider string) string {
	if provider == "gemini" {
		return "gemini-2.5-flash"
	}
	return DefaultLLMModel
}

func apiKeyEnvFor(provider string) string {
	if provider == "gemini" {
		return "GEMINI_API_KEY"
	}
	return DefaultAPIKeyEnv
}

// interpolate expands ${home} in every path-valued field and ${base} in
// log file paths.
func interpolate(c *Config) {
	c.Projects.BasePath = workspace.ExpandHome(c.Projects.BasePath)
	for i, f := range c.Logs.Files {
		f = strings.ReplaceAll(f, "${base}", c.Projects.BasePath)
		c.Logs.Files[i] = workspace.ExpandHome(f)
	}
}
