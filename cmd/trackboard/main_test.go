package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "trackboard/internal/platform/errors"
)

// run executes one CLI invocation against dir with the file store.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--dir", dir, "--store", "file"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestCLISessionWorkflow(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if out := mustRun(t, dir, "done", "dk pass"); out != "DK Pass: completed\n" {
		t.Fatalf("unexpected done output %q", out)
	}
	if out := mustRun(t, dir, "place", "DK", "Pass", "1"); out != "DK Pass: 1st (+15)\n" {
		t.Fatalf("unexpected place output %q", out)
	}
	if out := mustRun(t, dir, "session", "new", "Cup A"); out != "saved Cup A (15 pts)\n" {
		t.Fatalf("unexpected new output %q", out)
	}
	if out := mustRun(t, dir, "score"); !strings.Contains(out, "session: scratch\nscore: 0\n") {
		t.Fatalf("scratch work should be empty after saving, got %q", out)
	}

	mustRun(t, dir, "--session", "Cup A", "note", "DK Pass", "take the glider")
	if out := mustRun(t, dir, "score"); !strings.Contains(out, "session: scratch") {
		t.Fatalf("--session must not persist a selection, got %q", out)
	}
	if out := mustRun(t, dir, "session", "show", "Cup A"); !strings.Contains(out, "- **DK Pass**: take the glider") {
		t.Fatalf("note missing from markdown:\n%s", out)
	}

	exportDir := filepath.Join(dir, "exports")
	mustRun(t, dir, "session", "export", "Cup A", "--out", exportDir)
	path := filepath.Join(exportDir, "Cup_A_session.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("export missing: %v", err)
	}
	if out := mustRun(t, dir, "session", "import", path); out != "imported Cup A (1)\n" {
		t.Fatalf("unexpected import output %q", out)
	}

	list := mustRun(t, dir, "session", "list")
	if !strings.Contains(list, "Cup A\t15 pts") || !strings.Contains(list, "Cup A (1)\t15 pts") || !strings.Contains(list, "imported") {
		t.Fatalf("unexpected list:\n%s", list)
	}
	if out := mustRun(t, dir, "stats"); !strings.Contains(out, "- Sessions: 2\n") {
		t.Fatalf("unexpected stats:\n%s", out)
	}

	mustRun(t, dir, "session", "rename", "Cup A (1)", "Cup B")
	mustRun(t, dir, "session", "delete", "Cup B")
	if out := mustRun(t, dir, "session", "delete", "Cup B"); !strings.Contains(out, "no saved session named Cup B") {
		t.Fatalf("expected a notice for a missing session, got %q", out)
	}
}

func TestCLIRejectsBadInput(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := run(t, dir, "place", "Rainbow Road", "13"); !errors.Is(err, apperrors.ErrInvalidPlacement) {
		t.Fatalf("expected invalid placement, got %v", err)
	}
	if _, err := run(t, dir, "place", "Rainbow Road", "first"); err == nil {
		t.Fatalf("expected a parse error")
	}
	if _, err := run(t, dir, "star", "Nowhere Speedway"); !errors.Is(err, apperrors.ErrUnknownTrack) {
		t.Fatalf("expected unknown track, got %v", err)
	}
	if _, err := run(t, dir, "sort", "random"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid sort mode, got %v", err)
	}
	if _, err := run(t, dir, "--session", "missing", "score"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected unknown session, got %v", err)
	}
	if _, err := run(t, dir, "session", "export", "missing", "--format", "json"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCLITracksAndCodes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mustRun(t, dir, "done", "Rainbow Road")
	mustRun(t, dir, "done", "Crown City")
	mustRun(t, dir, "star", "Crown City")
	mustRun(t, dir, "sort", "starred")

	out := mustRun(t, dir, "tracks")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 30 || lines[0] != "[x] * Crown City" {
		t.Fatalf("unexpected tracks output:\n%s", out)
	}
	codes := strings.Fields(mustRun(t, dir, "codes"))
	if len(codes) != 2 {
		t.Fatalf("expected two codes in completion order, got %v", codes)
	}
}
