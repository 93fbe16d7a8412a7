package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"
)

// stopGrace is how long a server gets to exit after SIGTERM before it is
// killed.
const stopGrace = 5 * time.Second

// ExecServer adapts a tool server binary to the Server contract. The binary
// receives its working directory and port through the WORKSPACE_DIR and
// PORT environment variables.
type ExecServer struct {
	// Command is the server binary to launch.
	Command string
	// Args are optional extra arguments.
	Args []string
	// Env adds environment variables for the server process.
	Env map[string]string
	// Logger receives lifecycle output; may be nil.
	Logger *slog.Logger

	cmd  *exec.Cmd
	done chan error
}

// Start launches the server process bound to workdir and port.
func (s *ExecServer) Start(_ context.Context, workdir string, port int) error {
	if s.cmd != nil {
		return errors.New("server already started")
	}

	// Not CommandContext: the server outlives Start and is reaped by Stop.
	cmd := exec.Command(s.Command, s.Args...)
	cmd.Dir = workdir
	env := os.Environ()
	for key, value := range s.Env {
		env = append(env, key+"="+value)
	}
	// Workdir and port come last so configuration cannot shadow them.
	cmd.Env = append(env,
		"WORKSPACE_DIR="+workdir,
		"PORT="+strconv.Itoa(port),
	)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", s.Command, err)
	}
	s.cmd = cmd
	s.done = make(chan error, 1)
	go func() { s.done <- cmd.Wait() }()

	if s.Logger != nil {
		s.Logger.Info("server process launched", "command", s.Command, "pid", cmd.Process.Pid, "port", port)
	}
	return nil
}

// Stop sends SIGTERM and waits for the process to exit, killing it after a
// grace period. Safe to call if the server never started.
func (s *ExecServer) Stop(ctx context.Context) error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	defer func() { s.cmd = nil }()

	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone.
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-time.After(stopGrace):
	case <-ctx.Done():
	}

	if err := s.cmd.Process.Kill(); err != nil {
		return fmt.Errorf("kill %s: %w", s.Command, err)
	}
	<-s.done
	return nil
}
