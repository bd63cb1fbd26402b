package core

import (
	"fmt"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

// Invocation is a single command in a batch. Exactly one of Program or Shell
// is set: Program runs directly with Args, Shell is interpreted as a shell
// script (pipelines, redirections, globbing). Name optionally replaces the
// command string as the result label.
type Invocation struct {
	Name    string   `yaml:"name,omitempty"    json:"name,omitempty"`
	Program string   `yaml:"program,omitempty" json:"program,omitempty"`
	Args    []string `yaml:"args,omitempty"    json:"args,omitempty"`
	Shell   string   `yaml:"shell,omitempty"   json:"shell,omitempty"`
}

// Program constructs a direct program invocation.
func Program(name string, args ...string) Invocation {
	return Invocation{Program: name, Args: args}
}

// Shell constructs a shell script invocation.
func Shell(script string) Invocation {
	return Invocation{Shell: script}
}

// IsShell reports whether the invocation must go through the shell interpreter.
func (i Invocation) IsShell() bool {
	return i.Shell != ""
}

// Label returns the command string shown in snapshot output.
// Shell scripts are returned verbatim; program invocations are rendered
// with shell quoting so the label can be pasted back into a terminal.
func (i Invocation) Label() string {
	if i.Name != "" {
		return i.Name
	}
	if i.IsShell() {
		return i.Shell
	}
	parts := make([]string, 0, len(i.Args)+1)
	parts = append(parts, quoteWord(i.Program))
	for _, a := range i.Args {
		parts = append(parts, quoteWord(a))
	}
	return strings.Join(parts, " ")
}

// Validate checks that exactly one form is populated.
func (i Invocation) Validate() error {
	switch {
	case i.Shell != "" && i.Program != "":
		return fmt.Errorf("invocation %q: program and shell are mutually exclusive", i.Label())
	case i.Shell == "" && i.Program == "":
		return fmt.Errorf("invocation: program or shell is required")
	case i.Shell != "" && len(i.Args) > 0:
		return fmt.Errorf("invocation %q: args are only valid with program", i.Shell)
	}
	return nil
}

func quoteWord(s string) string {
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return q
}

// Result is the outcome of one invocation or probe.
type Result struct {
	Label    string        `json:"label"`
	Output   string        `json:"output"`
	Failed   bool          `json:"failed"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Render formats the result the way it appears in a snapshot batch.
func (r Result) Render() string {
	if r.Failed {
		return fmt.Sprintf("%s (FAILED):\n%s\n", r.Label, r.Output)
	}
	return fmt.Sprintf("%s:\n%s\n", r.Label, r.Output)
}
