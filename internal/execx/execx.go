package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Command describes one external command invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args contains command arguments.
	Args []string
	// Dir is the working directory; empty means the caller's.
	Dir string
	// Env adds environment variables on top of the current process environment.
	Env map[string]string
}

// Result captures the outcome of a finished command.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the command exit code; 127 when the binary was not found.
	ExitCode int
}

// Output returns stdout and stderr joined for diagnostics.
func (r Result) Output() string {
	if len(r.Stderr) == 0 {
		return string(bytes.TrimSpace(r.Stdout))
	}
	if len(r.Stdout) == 0 {
		return string(bytes.TrimSpace(r.Stderr))
	}
	return string(bytes.TrimSpace(append(append(append([]byte{}, r.Stdout...), '\n'), r.Stderr...)))
}

// CommandRunner abstracts external command execution for runtime backends.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner executes commands on the local host via os/exec.
type ExecRunner struct{}

// Run executes cmd and returns captured output and exit code.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	command := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	command.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		command.Env = os.Environ()
		for key, value := range cmd.Env {
			command.Env = append(command.Env, fmt.Sprintf("%s=%s", key, value))
		}
	}

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	result := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, err
	}

	result.ExitCode = 1
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		result.ExitCode = 127
	}
	return result, err
}
