package runtime

import (
	"slices"
	"testing"
	"time"
)

func TestReadOnlyFilterExactSet(t *testing.T) {
	filter := ReadOnlyFilter()

	want := []string{ToolViewFile, ToolListDirectory, ToolSearchFilenames, ToolSearchContent}
	if !slices.Equal(filter.Allowed, want) {
		t.Fatalf("read-only allow-list = %v, want %v", filter.Allowed, want)
	}

	for _, tool := range []string{ToolBash, ToolCreateFile, ToolStrReplace, ToolInsertLines, ToolDeleteFile, ToolUndoEdit} {
		if filter.Allows(tool) {
			t.Errorf("mutating tool %q must be excluded", tool)
		}
	}
	for _, tool := range want {
		if !filter.Allows(tool) {
			t.Errorf("read tool %q must be included", tool)
		}
	}

	// Mutating the returned filter must not leak into later calls.
	filter.Allowed[0] = ToolBash
	if ReadOnlyFilter().Allows(ToolBash) {
		t.Fatal("read-only filter must be independent per call")
	}
}

func TestToolFilterAllows(t *testing.T) {
	tests := []struct {
		name   string
		filter ToolFilter
		tool   string
		want   bool
	}{
		{"empty filter allows everything", ToolFilter{}, ToolBash, true},
		{"allow-list admits member", ToolFilter{Allowed: []string{ToolBash}}, ToolBash, true},
		{"allow-list rejects non-member", ToolFilter{Allowed: []string{ToolBash}}, ToolViewFile, false},
		{"block-list rejects member", ToolFilter{Blocked: []string{ToolBash}}, ToolBash, false},
		{"block wins over allow", ToolFilter{Allowed: []string{ToolBash}, Blocked: []string{ToolBash}}, ToolBash, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.filter.Allows(test.tool); got != test.want {
				t.Fatalf("Allows(%q) = %v, want %v", test.tool, got, test.want)
			}
		})
	}
}

func TestToolFilterApplyPreservesOrder(t *testing.T) {
	filter := ToolFilter{Blocked: []string{ToolBash, ToolDeleteFile}}
	names := []string{ToolBash, ToolViewFile, ToolDeleteFile, ToolListDirectory}

	got := filter.Apply(names)
	want := []string{ToolViewFile, ToolListDirectory}
	if !slices.Equal(got, want) {
		t.Fatalf("Apply = %v, want %v", got, want)
	}
}

func TestToolFilterIsZero(t *testing.T) {
	if !(ToolFilter{}).IsZero() {
		t.Fatal("empty filter must be zero")
	}
	if (ToolFilter{Blocked: []string{ToolBash}}).IsZero() {
		t.Fatal("filter with a block-list is not zero")
	}
}

func TestEndpointURL(t *testing.T) {
	endpoint := newEndpoint("test", "http://localhost:3000", PathMCP, ToolFilter{}, 0, 0)
	if endpoint.URL() != "http://localhost:3000/mcp" {
		t.Fatalf("url = %q", endpoint.URL())
	}
	if endpoint.ConnectTimeout != DefaultConnectTimeout || endpoint.SessionTimeout != DefaultSessionTimeout {
		t.Fatal("zero timeouts must fall back to the defaults")
	}

	endpoint = newEndpoint("test", "http://localhost:3000", PathMCP, ToolFilter{}, 5*time.Second, time.Minute)
	if endpoint.ConnectTimeout != 5*time.Second || endpoint.SessionTimeout != time.Minute {
		t.Fatalf("configured timeouts dropped: %v / %v", endpoint.ConnectTimeout, endpoint.SessionTimeout)
	}
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateUninitialized: "uninitialized",
		StateProvisioning:  "provisioning",
		StateHealthy:       "healthy",
		StateStopping:      "stopping",
		StateTerminated:    "terminated",
		State(99):          "unknown",
	}
	for state, want := range states {
		if state.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", state, state.String(), want)
		}
	}
}
