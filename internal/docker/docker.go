// Package docker wraps the container engine CLI behind a small boundary:
// image lookup, detached run with auto-removal, port-mapping introspection,
// log retrieval, and stop.
package docker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/coder-mcp/runtimectl/internal/execx"
	"github.com/coder-mcp/runtimectl/internal/security"
)

// Mount maps a host path to a container path.
type Mount struct {
	// Host is the absolute host path.
	Host string
	// Container is the mount point inside the container.
	Container string
}

// RunSpec describes one detached container launch.
type RunSpec struct {
	// Name is the container name.
	Name string
	// Image is the image reference to run.
	Image string
	// InternalPort is the port the hosted server listens on inside the container.
	InternalPort int
	// HostPort publishes InternalPort on a fixed host port; zero publishes
	// all exposed ports on ephemeral host ports instead.
	HostPort int
	// Env adds environment variables inside the container.
	Env map[string]string
	// Mounts lists bind mounts in order.
	Mounts []Mount
	// ExtraPorts lists additional -p mappings verbatim.
	ExtraPorts []string
}

// Args renders the docker run argument list for the spec.
func (s RunSpec) Args() []string {
	args := []string{"run", "-d", "--name", s.Name, "--rm"}

	if s.HostPort > 0 {
		args = append(args, "-p", fmt.Sprintf("%d:%d", s.HostPort, s.InternalPort))
	} else {
		args = append(args, "-P")
	}

	keys := make([]string, 0, len(s.Env))
	for key := range s.Env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, "-e", fmt.Sprintf("%s=%s", key, s.Env[key]))
	}

	for _, mount := range s.Mounts {
		args = append(args, "-v", fmt.Sprintf("%s:%s", mount.Host, mount.Container))
	}
	for _, mapping := range s.ExtraPorts {
		args = append(args, "-p", mapping)
	}

	return append(args, s.Image)
}

// Engine executes container engine commands through a CommandRunner.
type Engine struct {
	runner execx.CommandRunner
	logger *slog.Logger
}

// New returns an Engine; a nil runner falls back to local execution.
func New(runner execx.CommandRunner, logger *slog.Logger) Engine {
	if runner == nil {
		runner = execx.ExecRunner{}
	}
	return Engine{runner: runner, logger: logger}
}

// ImageExists reports whether the named image is present locally.
func (e Engine) ImageExists(ctx context.Context, image string) bool {
	_, err := e.runner.Run(ctx, execx.Command{
		Name: "docker",
		Args: []string{"inspect", "--type=image", image},
	})
	return err == nil
}

// Run launches a detached container and returns its id. The error carries
// the engine's captured output on failure.
func (e Engine) Run(ctx context.Context, spec RunSpec) (string, error) {
	if e.logger != nil {
		e.logger.Debug("docker run",
			"name", spec.Name,
			"image", spec.Image,
			"env", security.RedactEnv(spec.Env),
		)
	}
	result, err := e.runner.Run(ctx, execx.Command{Name: "docker", Args: spec.Args()})
	if err != nil {
		return "", fmt.Errorf("docker run %s: %w: %s", spec.Image, err, result.Output())
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// Port resolves the host port published for internalPort on the container.
func (e Engine) Port(ctx context.Context, container string, internalPort int) (int, error) {
	result, err := e.runner.Run(ctx, execx.Command{
		Name: "docker",
		Args: []string{"port", container, strconv.Itoa(internalPort)},
	})
	if err != nil {
		return 0, fmt.Errorf("docker port %s: %w: %s", container, err, result.Output())
	}
	port, err := parsePortOutput(string(result.Stdout))
	if err != nil {
		return 0, fmt.Errorf("docker port %s: %w", container, err)
	}
	return port, nil
}

// Logs returns the container's captured output.
func (e Engine) Logs(ctx context.Context, container string) (string, error) {
	result, err := e.runner.Run(ctx, execx.Command{
		Name: "docker",
		Args: []string{"logs", container},
	})
	if err != nil {
		return "", fmt.Errorf("docker logs %s: %w", container, err)
	}
	return result.Output(), nil
}

// Stop issues a stop request for the container.
func (e Engine) Stop(ctx context.Context, container string) error {
	result, err := e.runner.Run(ctx, execx.Command{
		Name: "docker",
		Args: []string{"stop", container},
	})
	if err != nil {
		return fmt.Errorf("docker stop %s: %w: %s", container, err, result.Output())
	}
	return nil
}

// parsePortOutput picks the host port from "docker port" output such as
// "0.0.0.0:49483\n:::49483".
func parsePortOutput(output string) (int, error) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.LastIndex(line, ":")
		if idx < 0 {
			continue
		}
		port, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			continue
		}
		return port, nil
	}
	return 0, fmt.Errorf("no host port in output %q", strings.TrimSpace(output))
}
