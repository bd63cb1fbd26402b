package config

import "fmt"

// Validate checks the config for structural correctness.
func Validate(c *Config) []error {
	var errs []error

	if c.Version != 1 {
		errs = append(errs, fmt.Errorf("version must be 1, got %d", c.Version))
	}

	if c.Tree.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("tree: max_depth is required and must be positive"))
	}

	if c.System.DiskUsageThreshold < 1 || c.System.DiskUsageThreshold > 100 {
		errs = append(errs, fmt.Errorf("system: disk_usage_threshold is required and must be within 1-100, got %d", c.System.DiskUsageThreshold))
	}

	for i, inv := range c.System.Commands {
		if err := inv.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("system: command %d: %w", i, err))
		}
	}
	for i, inv := range c.Projects.Commands {
		if err := inv.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("projects: command %d: %w", i, err))
		}
	}

	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("llm: provider must be openai or gemini; got %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm: temperature must be within 0-2, got %v", c.LLM.Temperature))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error; got %q", c.LogLevel))
	}

	for i, u := range c.Probes.SystemdUnits {
		if u == "" {
			errs = append(errs, fmt.Errorf("probes: systemd_units[%d] is empty", i))
		}
	}

	return errs
}
