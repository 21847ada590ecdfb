package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/V4T54L/causeway/internal/transform"
	"github.com/google/go-cmp/cmp"
)

const testLog = `client send GET /a
client {"client":1}
server recv GET /a
server {"client":1,"server":1}
server lookup
server {"client":1,"server":2}
server reply 200
server {"client":1,"server":3}
client recv 200
client {"client":2,"server":3}
`

// tracedLog holds executions with two, one and three hosts.
const tracedLog = `== one
client send GET /a
client {"client":1}
server recv GET /a
server {"client":1,"server":1}
== two
client send GET /b
client {"client":1}
== three
client send GET /a
client {"client":1}
cache hit
cache {"cache":1}
server recv GET /a
server {"client":1,"server":1}
`

const tracedDelimiter = `^== (?P<trace>\w+)$`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderCmd(t *testing.T) {
	logPath := writeFile(t, "run.log", testLog)

	t.Run("JSON", func(t *testing.T) {
		out, err := run(t, "", "render", logPath, "-o", "json", "-q", "lookup")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var r transform.Rendering
		if err := json.Unmarshal([]byte(out), &r); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if diff := cmp.Diff([]string{"client", "server"}, r.Graph.Hosts); diff != "" {
			t.Errorf("hosts mismatch (-want +got):\n%s", diff)
		}
		if len(r.Motifs) != 1 {
			t.Errorf("expected 1 motif, got %d", len(r.Motifs))
		}
	})

	t.Run("View file with flag override", func(t *testing.T) {
		view := writeFile(t, "view.yaml", "hidden_hosts: [client]\nquery: reply\ncollapse_threshold: 4\n")
		out, err := run(t, "", "render", logPath, "-o", "json", "--view", view, "-q", "recv")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var r transform.Rendering
		if err := json.Unmarshal([]byte(out), &r); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if diff := cmp.Diff([]string{"client"}, r.HiddenHosts); diff != "" {
			t.Errorf("hidden hosts mismatch (-want +got):\n%s", diff)
		}
		if len(r.Motifs) != 1 || r.Graph.Nodes[r.Motifs[0][0]].Name != "server recv GET /a" {
			t.Errorf("expected the flag query to win, got motifs %v", r.Motifs)
		}
	})

	t.Run("Text from stdin", func(t *testing.T) {
		out, err := run(t, testLog, "render", "-")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"client", "server", "client send GET /a", "server:3"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("HTML", func(t *testing.T) {
		out, err := run(t, "", "render", logPath, "-o", "html", "--collapse", "3")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "<!DOCTYPE html>") || !strings.Contains(out, "server lookup") {
			t.Errorf("expected an HTML page, got:\n%s", out)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
		}{
			{"Unknown format", []string{"render", logPath, "-o", "svg"}},
			{"Bad query", []string{"render", logPath, "-q", "a = (b"}},
			{"Missing log", []string{"render", filepath.Join(t.TempDir(), "nope.log")}},
			{"Unknown view field", []string{"render", logPath, "--view", writeFile(t, "bad.yaml", "hide: [a]\n")}},
			{"Bad field pattern", []string{"render", logPath, "--field-pattern", "(no groups)"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := run(t, "", tt.args...); err == nil {
					t.Fatal("expected an error, got nil")
				}
			})
		}
	})
}

func TestHostsCmd(t *testing.T) {
	out, err := run(t, testLog, "hosts", "-")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 hosts, got %q", out)
	}
	if !strings.Contains(lines[0], "client") || !strings.Contains(lines[0], "2 events") || !strings.Contains(lines[0], "1 sent") {
		t.Errorf("unexpected client line %q", lines[0])
	}
	if !strings.Contains(lines[1], "server") || !strings.Contains(lines[1], "3 events") || !strings.Contains(lines[1], "1 received") {
		t.Errorf("unexpected server line %q", lines[1])
	}
}

func TestSearchCmd(t *testing.T) {
	out, err := run(t, testLog, "--field-pattern", `(?P<verb>GET|POST) (?P<path>\S+)`, "search", "-", `path = "/a"`)
	if err == nil {
		t.Fatal("expected an unbound field error for events without a path")
	}

	out, err = run(t, testLog, "search", "-", "recv")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("expected 2 matches, got %d:\n%s", got, out)
	}
	if !strings.Contains(out, "server recv GET /a") || !strings.Contains(out, "client recv 200") {
		t.Errorf("unexpected matches:\n%s", out)
	}
}

func TestMotifsCmd(t *testing.T) {
	t.Run("Request response", func(t *testing.T) {
		out, err := run(t, testLog, "motifs", "-", "--finder", "request-response", "--max-responder-events", "3")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "motif 1/1") {
			t.Errorf("expected one motif, got:\n%s", out)
		}
		for _, want := range []string{"client send GET /a", "server reply 200", "client recv 200"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in the motif, got:\n%s", want, out)
			}
		}
	})

	t.Run("Query ordered top down", func(t *testing.T) {
		out, err := run(t, testLog, "motifs", "-", "-q", "recv")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		first := strings.Index(out, "server recv GET /a")
		second := strings.Index(out, "client recv 200")
		if first < 0 || second < 0 || first > second {
			t.Errorf("expected the server receive before the client receive, got:\n%s", out)
		}
	})

	t.Run("No finder", func(t *testing.T) {
		if _, err := run(t, testLog, "motifs", "-"); err == nil {
			t.Fatal("expected an error, got nil")
		}
	})
}

func TestLoadViewFile(t *testing.T) {
	path := writeFile(t, "view.yaml", `
hidden_hosts: [proxy]
highlight_hosts: [client]
finder:
  type: broadcast
  min_broadcast_gather: 2
  max_in_between: 1
collapse_threshold: 3
execution: two
diff_against: [one]
`)
	req, err := loadViewFile(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if diff := cmp.Diff([]string{"proxy"}, req.HiddenHosts); diff != "" {
		t.Errorf("hidden hosts mismatch (-want +got):\n%s", diff)
	}
	if req.Finder == nil || req.Finder.Type != "broadcast" || req.Finder.MinBroadcastGather != 2 {
		t.Errorf("unexpected finder %+v", req.Finder)
	}
	if req.CollapseThreshold != 3 {
		t.Errorf("expected threshold 3, got %d", req.CollapseThreshold)
	}
	if req.Execution != "two" || !cmp.Equal([]string{"one"}, req.DiffAgainst) {
		t.Errorf("unexpected execution %q diffed against %v", req.Execution, req.DiffAgainst)
	}

	empty, err := loadViewFile(writeFile(t, "empty.yaml", ""))
	if err != nil {
		t.Fatalf("expected an empty file to be accepted, got %v", err)
	}
	if empty.Query != "" || empty.Finder != nil {
		t.Errorf("expected an empty request, got %+v", empty)
	}
}

func TestExecutionFlags(t *testing.T) {
	t.Run("Render with diff", func(t *testing.T) {
		out, err := run(t, tracedLog, "--delimiter", tracedDelimiter, "-e", "two", "render", "-", "-o", "json", "--diff", "one")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var r transform.Rendering
		if err := json.Unmarshal([]byte(out), &r); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if diff := cmp.Diff([]string{"client"}, r.Graph.Hosts); diff != "" {
			t.Errorf("hosts mismatch (-want +got):\n%s", diff)
		}
		want := []transform.Diff{{Against: "one", UniqueHosts: []string{}, CommonHosts: []string{"client"}, UniqueEvents: 1}}
		if diff := cmp.Diff(want, r.Diffs); diff != "" {
			t.Errorf("diffs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Text marks unique hosts", func(t *testing.T) {
		out, err := run(t, tracedLog, "--delimiter", tracedDelimiter, "-e", "three", "render", "-", "--diff", "one")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"(unique)", "diff one:", "unique hosts [cache]"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected output to contain %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("Hosts of the selected execution", func(t *testing.T) {
		out, err := run(t, tracedLog, "--delimiter", tracedDelimiter, "--execution", "three", "hosts", "-")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := strings.Count(out, "\n"); got != 3 {
			t.Errorf("expected 3 hosts, got %d:\n%s", got, out)
		}
	})

	t.Run("Search defaults to the first execution", func(t *testing.T) {
		out, err := run(t, tracedLog, "--delimiter", tracedDelimiter, "search", "-", "send")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "GET /a") || strings.Contains(out, "GET /b") {
			t.Errorf("expected only the first execution, got:\n%s", out)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		tests := []struct {
			name string
			args []string
		}{
			{"Unknown execution", []string{"--delimiter", tracedDelimiter, "-e", "four", "hosts", "-"}},
			{"Unknown diff", []string{"--delimiter", tracedDelimiter, "render", "-", "--diff", "four"}},
			{"Bad delimiter", []string{"--delimiter", "(", "hosts", "-"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := run(t, tracedLog, tt.args...); err == nil {
					t.Fatal("expected an error, got nil")
				}
			})
		}
	})
}

func TestClusterCmd(t *testing.T) {
	out, err := run(t, tracedLog, "--delimiter", tracedDelimiter, "cluster", "-")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{"2 or fewer hosts", "two", "one", "More than 2 hosts", "three"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), out)
	}
	for i, w := range want {
		if !strings.Contains(lines[i], w) {
			t.Errorf("expected line %d to contain %q, got %q", i, w, lines[i])
		}
	}

	if _, err := run(t, tracedLog, "--delimiter", tracedDelimiter, "cluster", "-", "--metric", "latency"); err == nil {
		t.Error("expected an unknown metric error, got nil")
	}
}
