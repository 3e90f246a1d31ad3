package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elpatron68/focustasks/internal/app"
	"github.com/elpatron68/focustasks/internal/tasks"
)

// run executes the CLI against a file-backed config in dir.
func run(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); err != nil {
		body := "storage:\n  backend: file\n  dir: '" + filepath.ToSlash(filepath.Join(dir, "slots")) + "'\n"
		if err := os.WriteFile(cfgPath, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath, "--user", "tester"}, args...))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v (output %s)", args, err, out.String())
	}
	return out.String()
}

func TestCLI_AddToggleRemove(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "add", "write", "<docs>")
	run(t, dir, "add", "ship")

	out := run(t, dir, "ls")
	if !strings.Contains(out, "  1 [ ] write <docs>") || !strings.Contains(out, "  2 [ ] ship") {
		t.Fatalf("unexpected ls output:\n%s", out)
	}

	out = run(t, dir, "toggle", "2")
	if !strings.Contains(out, "Active: 1 · Done: 1 · Done %: 50.0%") {
		t.Fatalf("unexpected toggle output:\n%s", out)
	}

	out = run(t, dir, "ls", "--json")
	var resp struct {
		Tasks   []tasks.Task  `json:"tasks"`
		Summary tasks.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("ls --json: %v\n%s", err, out)
	}
	if len(resp.Tasks) != 2 || !resp.Tasks[1].Done || resp.Tasks[0].Title != "write &lt;docs&gt;" {
		t.Fatalf("unexpected json: %+v", resp)
	}

	out = run(t, dir, "rm", resp.Tasks[0].ID)
	if !strings.HasPrefix(out, "removed ") {
		t.Fatalf("unexpected rm output: %s", out)
	}
	if out := run(t, dir, "summary"); strings.TrimSpace(out) != "Active: 0 · Done: 1 · Done %: 100.0%" {
		t.Fatalf("unexpected summary %q", out)
	}
}

func TestCLI_AlongsideRunningServer(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "ls")

	srv, err := app.Open(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()
	store := srv.Stores.For("tester")
	if _, err := store.Add(tasks.Task{ID: "web1", Title: "from web"}); err != nil {
		t.Fatal(err)
	}

	run(t, dir, "add", "from cli")

	list, err := store.Toggle("web1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[1].Title != "from cli" {
		t.Fatalf("server write dropped the cli task: %+v", list)
	}
	if out := run(t, dir, "ls"); !strings.Contains(out, "[x] from web") || !strings.Contains(out, "[ ] from cli") {
		t.Fatalf("unexpected ls output:\n%s", out)
	}
}

func TestCLI_UnknownRefIsNoop(t *testing.T) {
	dir := t.TempDir()
	run(t, dir, "add", "only")
	if out := run(t, dir, "toggle", "7"); !strings.Contains(out, "nothing changed") {
		t.Fatalf("expected no-op message, got %s", out)
	}
	if out := run(t, dir, "ls"); !strings.Contains(out, "[ ] only") {
		t.Fatalf("task should be untouched: %s", out)
	}
}

func TestCLI_AddRejectsBlankTitle(t *testing.T) {
	dir := t.TempDir()
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "add", "  "})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for blank title")
	}
}

func TestResolveRef(t *testing.T) {
	list := []tasks.Task{{ID: "a"}, {ID: "b"}}
	cases := []struct {
		ref   string
		id    string
		found bool
	}{
		{"1", "a", true},
		{"2", "b", true},
		{"3", "3", false},
		{"b", "b", true},
		{"zz", "zz", false},
	}
	for _, tc := range cases {
		id, found := resolveRef(list, tc.ref)
		if id != tc.id || found != tc.found {
			t.Fatalf("resolveRef(%q) = %q,%v want %q,%v", tc.ref, id, found, tc.id, tc.found)
		}
	}
}
