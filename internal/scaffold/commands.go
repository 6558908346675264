package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// allowedPrograms are the package managers a template may invoke.
var allowedPrograms = map[string]bool{
	"npm":  true,
	"cnpm": true,
	"yarn": true,
	"pnpm": true,
}

func allowedProgramNames() []string {
	names := make([]string, 0, len(allowedPrograms))
	for name := range allowedPrograms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckCommand returns *ForbiddenCommandError unless argv names an allowed
// program by its bare name.
func CheckCommand(argv []string) error {
	if len(argv) == 0 {
		return &ForbiddenCommandError{}
	}
	prog := argv[0]
	if strings.ContainsAny(prog, `/\`) || !allowedPrograms[prog] {
		return &ForbiddenCommandError{Args: argv}
	}
	return nil
}

// Runner executes a command in dir.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) error
}

// ExecRunner runs commands as child processes. Nil streams default to the
// parent's standard streams. The process is killed when ctx is cancelled.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return &ForbiddenCommandError{}
	}
	bin, err := exec.LookPath(argv[0])
	if err != nil {
		return &CommandError{Args: argv, ExitCode: -1, Err: fmt.Errorf("%s not found on PATH: %w", argv[0], err)}
	}

	cmd := exec.CommandContext(ctx, bin, argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = r.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err = cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return &CommandError{Args: argv, ExitCode: exitErr.ExitCode(), Err: ctx.Err()}
		}
		return &CommandError{Args: argv, ExitCode: exitErr.ExitCode()}
	}
	return &CommandError{Args: argv, ExitCode: -1, Err: err}
}
