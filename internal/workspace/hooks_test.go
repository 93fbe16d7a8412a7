package workspace

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/coder-mcp/runtimectl/internal/execx"
)

type hookRunner struct {
	calls   []execx.Command
	failAt  int
	failMsg string
}

func (r *hookRunner) Run(_ context.Context, cmd execx.Command) (execx.Result, error) {
	r.calls = append(r.calls, cmd)
	if r.failMsg != "" && len(r.calls)-1 == r.failAt {
		return execx.Result{Stderr: []byte(r.failMsg), ExitCode: 1}, errors.New("exit status 1")
	}
	return execx.Result{}, nil
}

func TestRunHooksSequential(t *testing.T) {
	runner := &hookRunner{}
	hooks := []Hook{
		{Command: "npm", Args: []string{"install"}},
		{Command: "make", Args: []string{"generate"}, Env: map[string]string{"CI": "1"}},
	}

	if err := RunHooks(context.Background(), runner, nil, "/tmp/ws", hooks); err != nil {
		t.Fatalf("hooks failed: %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(runner.calls))
	}
	if runner.calls[0].Name != "npm" || runner.calls[1].Name != "make" {
		t.Fatalf("order not preserved: %v", runner.calls)
	}
	for _, call := range runner.calls {
		if call.Dir != "/tmp/ws" {
			t.Fatalf("hook must run inside the workspace, got %q", call.Dir)
		}
	}
	if runner.calls[1].Env["CI"] != "1" {
		t.Fatal("hook env not forwarded")
	}
}

func TestRunHooksFailureAbortsWithOutput(t *testing.T) {
	runner := &hookRunner{failAt: 0, failMsg: "npm ERR! network"}
	hooks := []Hook{
		{Command: "npm", Args: []string{"install"}},
		{Command: "make"},
	}

	err := RunHooks(context.Background(), runner, nil, "/tmp/ws", hooks)
	if err == nil {
		t.Fatal("a failing hook must abort")
	}
	if !strings.Contains(err.Error(), "npm ERR! network") {
		t.Fatalf("hook output must surface in the error: %v", err)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("later hooks must not run, calls = %d", len(runner.calls))
	}
}

func TestRunHooksSkipsEmptyCommands(t *testing.T) {
	runner := &hookRunner{}
	hooks := []Hook{{Command: "  "}, {Command: "make"}}

	if err := RunHooks(context.Background(), runner, nil, "/tmp/ws", hooks); err != nil {
		t.Fatalf("hooks failed: %v", err)
	}
	if len(runner.calls) != 1 || runner.calls[0].Name != "make" {
		t.Fatalf("blank commands must be skipped: %v", runner.calls)
	}
}

func TestRunHooksAppliesTimeout(t *testing.T) {
	recorded := false
	runner := runnerFunc(func(ctx context.Context, cmd execx.Command) (execx.Result, error) {
		_, recorded = ctx.Deadline()
		return execx.Result{}, nil
	})

	hooks := []Hook{{Command: "make", Timeout: time.Minute}}
	if err := RunHooks(context.Background(), runner, nil, "/tmp/ws", hooks); err != nil {
		t.Fatalf("hooks failed: %v", err)
	}
	if !recorded {
		t.Fatal("a hook timeout must place a deadline on the context")
	}
}

type runnerFunc func(context.Context, execx.Command) (execx.Result, error)

func (f runnerFunc) Run(ctx context.Context, cmd execx.Command) (execx.Result, error) {
	return f(ctx, cmd)
}
