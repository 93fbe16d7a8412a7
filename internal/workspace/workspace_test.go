package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/coder-mcp/runtimectl/internal/execx"
)

// fakeRunner records git invocations and fails configured subcommands.
type fakeRunner struct {
	calls []execx.Command
	fail  map[string]string
}

func (r *fakeRunner) Run(_ context.Context, cmd execx.Command) (execx.Result, error) {
	r.calls = append(r.calls, cmd)
	if len(cmd.Args) > 0 {
		if msg, ok := r.fail[cmd.Args[0]]; ok {
			return execx.Result{Stderr: []byte(msg), ExitCode: 1}, errors.New(msg)
		}
	}
	return execx.Result{}, nil
}

func (r *fakeRunner) subcommands() []string {
	subs := make([]string, 0, len(r.calls))
	for _, call := range r.calls {
		if len(call.Args) > 0 {
			subs = append(subs, call.Args[0])
		}
	}
	return subs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// snapshot maps relative file paths to contents, ignoring directories.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := map[string]string{}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return files
}

func newTemplate(t *testing.T) string {
	t.Helper()
	template := t.TempDir()
	writeFile(t, filepath.Join(template, "main.go"), "package main\n")
	writeFile(t, filepath.Join(template, "docs", "readme.md"), "# readme\n")
	writeFile(t, filepath.Join(template, "docs", "guide.md"), "# guide\n")
	return template
}

func TestMaterializeCopyEqualsTemplatePlusInjections(t *testing.T) {
	template := newTemplate(t)

	extra := t.TempDir()
	writeFile(t, filepath.Join(extra, "config.yaml"), "backend: docker\n")

	runner := &fakeRunner{}
	ws := New(Spec{
		Template: template,
		Strategy: StrategyCopy,
		Injections: []Injection{
			{Source: filepath.Join(extra, "config.yaml"), Dest: "conf/config.yaml"},
		},
	}, runner, nil)

	dir, err := ws.Materialize(context.Background())
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	defer ws.Teardown()

	got := snapshot(t, dir)
	want := snapshot(t, template)
	want["conf/config.yaml"] = "backend: docker\n"

	if len(got) != len(want) {
		t.Fatalf("tree mismatch: got %v, want %v", got, want)
	}
	for rel, content := range want {
		if got[rel] != content {
			t.Errorf("file %s: got %q, want %q", rel, got[rel], content)
		}
	}
}

func TestMaterializeNormalizesPermissions(t *testing.T) {
	template := newTemplate(t)

	ws := New(Spec{Template: template, Strategy: StrategyCopy}, &fakeRunner{}, nil)
	dir, err := ws.Materialize(context.Background())
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	defer ws.Teardown()

	err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if perm := info.Mode().Perm(); perm != 0o777 {
			return fmt.Errorf("%s has mode %o, want 777", path, perm)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestMaterializeCloneFallsBackToCopy(t *testing.T) {
	template := newTemplate(t)

	runner := &fakeRunner{fail: map[string]string{"clone": "not a git repository"}}
	ws := New(Spec{Template: template, Strategy: StrategyClone}, runner, nil)

	dir, err := ws.Materialize(context.Background())
	if err != nil {
		t.Fatalf("materialize should fall back to copy: %v", err)
	}
	defer ws.Teardown()

	got := snapshot(t, dir)
	want := snapshot(t, template)
	if len(got) != len(want) {
		t.Fatalf("fallback copy mismatch: got %v, want %v", got, want)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git")); !os.IsNotExist(err) {
		t.Fatal("no partial clone artifacts may survive the fallback")
	}

	subs := runner.subcommands()
	if subs[0] != "clone" {
		t.Fatalf("clone should be attempted first: %v", subs)
	}
}

func TestInjectionOverwritesAndOrders(t *testing.T) {
	template := newTemplate(t)

	extra := t.TempDir()
	writeFile(t, filepath.Join(extra, "first.md"), "first\n")
	writeFile(t, filepath.Join(extra, "second.md"), "second\n")

	ws := New(Spec{
		Template: template,
		Strategy: StrategyCopy,
		Injections: []Injection{
			{Source: filepath.Join(extra, "first.md"), Dest: "docs/readme.md"},
			{Source: filepath.Join(extra, "second.md"), Dest: "docs/readme.md"},
		},
	}, &fakeRunner{}, nil)

	dir, err := ws.Materialize(context.Background())
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	defer ws.Teardown()

	data, err := os.ReadFile(filepath.Join(dir, "docs", "readme.md"))
	if err != nil {
		t.Fatalf("read injected file: %v", err)
	}
	if string(data) != "second\n" {
		t.Fatalf("later injection must win: got %q", data)
	}
}

func TestInjectionDirectoryReplacesFile(t *testing.T) {
	template := t.TempDir()
	writeFile(t, filepath.Join(template, "assets"), "i am a file\n")

	srcDir := t.TempDir()
	writeFile(t, filepath.Join(srcDir, "logo.svg"), "<svg/>\n")

	ws := New(Spec{
		Template:   template,
		Strategy:   StrategyCopy,
		Injections: []Injection{{Source: srcDir, Dest: "assets"}},
	}, &fakeRunner{}, nil)

	dir, err := ws.Materialize(context.Background())
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	defer ws.Teardown()

	info, err := os.Stat(filepath.Join(dir, "assets"))
	if err != nil || !info.IsDir() {
		t.Fatalf("injection should replace the file with a directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "assets", "logo.svg")); err != nil {
		t.Fatalf("directory contents missing: %v", err)
	}
}

func TestMaterializeIdempotentSpec(t *testing.T) {
	template := newTemplate(t)

	extra := t.TempDir()
	writeFile(t, filepath.Join(extra, "inject.txt"), "payload\n")
	spec := Spec{
		Template:   template,
		Strategy:   StrategyCopy,
		Injections: []Injection{{Source: filepath.Join(extra, "inject.txt"), Dest: "inject.txt"}},
	}

	first := New(spec, &fakeRunner{}, nil)
	second := New(spec, &fakeRunner{}, nil)

	dirA, err := first.Materialize(context.Background())
	if err != nil {
		t.Fatalf("first materialize: %v", err)
	}
	defer first.Teardown()
	dirB, err := second.Materialize(context.Background())
	if err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	defer second.Teardown()

	if dirA == dirB {
		t.Fatal("workspaces must be uniquely named")
	}

	got, want := snapshot(t, dirA), snapshot(t, dirB)
	if len(got) != len(want) {
		t.Fatalf("trees differ: %v vs %v", got, want)
	}
	for rel, content := range want {
		if got[rel] != content {
			t.Errorf("file %s differs between materializations", rel)
		}
	}
}

func TestGitBootstrapRunsForFreshWorkspace(t *testing.T) {
	runner := &fakeRunner{}
	ws := New(Spec{}, runner, nil)

	if _, err := ws.Materialize(context.Background()); err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	defer ws.Teardown()

	subs := runner.subcommands()
	want := []string{"init", "config", "config", "add", "commit"}
	if len(subs) != len(want) {
		t.Fatalf("unexpected git calls: %v", subs)
	}
	for idx, sub := range want {
		if subs[idx] != sub {
			t.Fatalf("git call %d: got %q, want %q (%v)", idx, subs[idx], sub, subs)
		}
	}
}

func TestGitBootstrapSkippedForRepositoryTemplate(t *testing.T) {
	template := newTemplate(t)
	if err := os.MkdirAll(filepath.Join(template, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	runner := &fakeRunner{}
	ws := New(Spec{Template: template, Strategy: StrategyCopy}, runner, nil)
	if _, err := ws.Materialize(context.Background()); err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	defer ws.Teardown()

	for _, sub := range runner.subcommands() {
		if sub == "init" {
			t.Fatal("init must not run when the template carries .git")
		}
	}
}

func TestGitInitFailureIsFatal(t *testing.T) {
	runner := &fakeRunner{fail: map[string]string{"init": "git not installed"}}
	ws := New(Spec{}, runner, nil)

	_, err := ws.Materialize(context.Background())
	if !errors.Is(err, ErrSetupFailed) {
		t.Fatalf("init failure must abort materialization: %v", err)
	}
	ws.Teardown()
}

func TestGitIdentityAndCommitFailuresTolerated(t *testing.T) {
	runner := &fakeRunner{fail: map[string]string{"config": "no config", "commit": "nothing to commit"}}
	ws := New(Spec{}, runner, nil)

	if _, err := ws.Materialize(context.Background()); err != nil {
		t.Fatalf("identity and commit are best-effort: %v", err)
	}
	ws.Teardown()
}

func TestTeardownRemovesDirectoryAndIsIdempotent(t *testing.T) {
	ws := New(Spec{}, &fakeRunner{}, nil)
	dir, err := ws.Materialize(context.Background())
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}

	ws.Teardown()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("teardown should remove %s", dir)
	}
	if ws.Dir() != "" {
		t.Fatal("Dir should be empty after teardown")
	}

	// Second teardown is a no-op.
	ws.Teardown()
}
