package config

import (
	"os"
	"time"
)

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "CURSORBOOST_BASE_PATH",
		apply: func(c *Config, v string) {
			c.Projects.BasePath = v
		},
	},
	{
		envVar: "CURSORBOOST_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
	{
		envVar: "CURSORBOOST_INTERVAL",
		apply: func(c *Config, v string) {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				c.Interval = Duration(d)
			}
		},
	},
	{
		envVar: "CURSORBOOST_LLM_MODEL",
		apply: func(c *Config, v string) {
			c.LLM.Model = v
		},
	},
	{
		envVar: "CURSORBOOST_SOCKET",
		apply: func(c *Config, v string) {
			c.Socket = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(c *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(c, val)
		}
	}
}
