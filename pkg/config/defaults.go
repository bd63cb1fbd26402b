package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modoterra/cursorboost/pkg/core"
)

const (
	DefaultMaxDepth           = 3
	DefaultDiskUsageThreshold = 80
	DefaultBasePath           = "${home}/work"
	DefaultListFile           = "containers-list.md"
	DefaultDockerRuntime      = "docker"
	DefaultLogTail            = 25
	DefaultLLMProvider        = "openai"
	DefaultLLMModel           = "chatgpt-4o-latest"
	DefaultLLMTemperature     = 1
	DefaultAPIKeyEnv          = "OPENAI_API_KEY"
	DefaultLLMTimeout         = 2 * time.Minute
	DefaultSnapshotFile       = "snapshot.txt"
	DefaultArtifactFile       = "../.cursorrules"
	DefaultDescriptionFile    = "project-description.txt"
	DefaultInterval           = 60 * time.Second
	DefaultCommandTimeout     = 2 * time.Minute
	DefaultSocket             = "/tmp/cursorboost.sock"
	DefaultLogLevel           = "info"
	DefaultConfigPath         = ".cursorboost/cursorboost.yaml"
)

// Default returns a fully specified configuration. It is used as a whole
// whenever the config file is missing or fails validation.
func Default() *Config {
	return &Config{
		Version: 1,
		Tree: Tree{
			MaxDepth:         DefaultMaxDepth,
			IgnorePatterns:   []string{"venv", "__pycache__", "node_modules", "build", "public", "dist", ".git"},
			IgnoreExtensions: []string{"*.pyc", "*.pyo", "*.pyd", "*.so", "*.dll", "*.class"},
		},
		System: System{
			DiskUsageThreshold: DefaultDiskUsageThreshold,
		},
		Projects: Projects{
			BasePath: DefaultBasePath,
			ListFile: DefaultListFile,
		},
		Docker: Docker{
			Runtime: DefaultDockerRuntime,
			Tail:    DefaultLogTail,
		},
		Logs: Logs{
			Tail: DefaultLogTail,
		},
		LLM: DefaultLLM(),
		Output: Output{
			Snapshot:    DefaultSnapshotFile,
			Artifact:    DefaultArtifactFile,
			Description: DefaultDescriptionFile,
		},
		Interval:       Duration(DefaultInterval),
		CommandTimeout: Duration(DefaultCommandTimeout),
		Socket:         DefaultSocket,
		LogLevel:       DefaultLogLevel,
	}
}

// DefaultLLM returns the default summarization settings.
func DefaultLLM() LLM {
	return LLM{
		Provider:    DefaultLLMProvider,
		Model:       DefaultLLMModel,
		Temperature: DefaultLLMTemperature,
		APIKeyEnv:   DefaultAPIKeyEnv,
		Timeout:     Duration(DefaultLLMTimeout),
	}
}

// SystemCommands returns the configured system batch, or the built-in set
// derived from the tree and threshold settings.
func (c *Config) SystemCommands() []core.Invocation {
	if len(c.System.Commands) > 0 {
		return c.System.Commands
	}
	runtime := c.Docker.Runtime
	if runtime == "" {
		runtime = DefaultDockerRuntime
	}
	return []core.Invocation{
		// Operating system and runtimes
		core.Program("uname", "-a"),
		core.Program("python", "--version"),
		core.Program("pip", "list"),
		core.Program("python", "-c", "import sys; print(sys.path)"),

		// Containers
		core.Program(runtime, "ps"),

		// Resources
		core.Shell(fmt.Sprintf("df -h | awk '(NR==1) || ($5+0 >= %d)'", c.System.DiskUsageThreshold)),
		core.Shell(`vm_stat | awk '/Pages free:|Pages active:|Pages inactive:|Pages wired down:/ {print}'`),

		// Network
		core.Shell(`netstat -an | grep LISTEN | awk '{print $4}' | sort -u`),

		// Environment without credentials
		core.Shell(`printenv | grep -v 'KEY\|SECRET\|PASS\|TOKEN'`),
	}
}

// ProjectCommands returns the configured per-project batch, or the built-in
// directory-structure command.
func (c *Config) ProjectCommands() []core.Invocation {
	if len(c.Projects.Commands) > 0 {
		return c.Projects.Commands
	}
	return []core.Invocation{
		core.Program("tree", "-d", "-L", strconv.Itoa(c.Tree.MaxDepth), "-I", c.Tree.IgnoreGlob()),
	}
}

// IgnoreGlob joins ignore patterns and extensions into the pattern list
// understood by tree -I.
func (t Tree) IgnoreGlob() string {
	all := make([]string, 0, len(t.IgnorePatterns)+len(t.IgnoreExtensions))
	all = append(all, t.IgnorePatterns...)
	all = append(all, t.IgnoreExtensions...)
	return strings.Join(all, "|")
}
