package scaffold

import (
	"fmt"
	"strings"
)

// ConfigError reports inconsistent template metadata.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error { return e.Err }

// RenderError names the file whose rendering failed.
type RenderError struct {
	File string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.File, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// ForbiddenCommandError is returned for a command whose program is not an
// allowed package manager. Nothing has been spawned when it is returned.
type ForbiddenCommandError struct {
	Args []string
}

func (e *ForbiddenCommandError) Error() string {
	if len(e.Args) == 0 {
		return "forbidden command: empty command"
	}
	return fmt.Sprintf("forbidden command %q: only %s may be run", e.Args[0], strings.Join(allowedProgramNames(), ", "))
}

// CommandError reports a subprocess that failed or exited non-zero.
// ExitCode is -1 when the process could not be started.
type CommandError struct {
	Args     []string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.Join(e.Args, " ")
	if e.Err != nil {
		return fmt.Sprintf("command %q failed: %v", cmd, e.Err)
	}
	return fmt.Sprintf("command %q exited with code %d", cmd, e.ExitCode)
}

func (e *CommandError) Unwrap() error { return e.Err }
