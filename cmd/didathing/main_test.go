package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dataDir string, args ...string) string {
	t.Helper()
	out, err := run(t, dataDir, args...)
	require.NoError(t, err, "didathing %v", args)
	return out
}

func TestTaskLifecycleThroughCLI(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "task", "add", "Water plants")
	assert.Contains(t, out, `added 1 "Water plants" kind=single phases=Done`)

	_, err := run(t, dir, "task", "add", "  water PLANTS ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out = mustRun(t, dir, "task", "add", "water plants", "--force")
	assert.Contains(t, out, "added 2")

	out = mustRun(t, dir, "task", "add", "Laundry", "--phase", "Washing", "--phase", "Drying:1", "--phase", "Folded")
	assert.Contains(t, out, "kind=cycle phases=Washing,Drying,Folded")

	out = mustRun(t, dir, "done", "3")
	assert.Contains(t, out, "task=3 phase=2")

	out = mustRun(t, dir, "task", "show", "3")
	assert.Contains(t, out, "phase: Drying since")
	assert.Contains(t, out, "next: Folded")
	assert.Contains(t, out, "2. Drying (1d)")
	assert.Contains(t, out, "1 -> 2")

	out = mustRun(t, dir, "history", "add", "1", "--at", "2026-03-10T08:00:00Z")
	assert.Contains(t, out, "task 1 is at phase 1")

	out = mustRun(t, dir, "task", "list", "--sort", "alpha")
	assert.Contains(t, out, "Laundry")
	assert.Contains(t, out, "Drying since")
	assert.Contains(t, out, "never done")

	_, err = run(t, dir, "task", "rename", "2", "Laundry")
	require.Error(t, err)

	out = mustRun(t, dir, "task", "delete", "2")
	assert.Contains(t, out, "deleted 2")
	out = mustRun(t, dir, "task", "delete", "2")
	assert.Contains(t, out, "deleted 2")

	out = mustRun(t, dir, "doctor")
	assert.Contains(t, out, "checked=2 drifted=0 repaired=false")
}

func TestTaskAddRejectsBadPhases(t *testing.T) {
	dir := t.TempDir()
	for _, bad := range []string{"Sprouting:abc", "Grown:-3", ":2"} {
		_, err := run(t, dir, "task", "add", "Seeds", "--phase", "Planted", "--phase", bad)
		require.Error(t, err, bad)
		assert.Contains(t, err.Error(), "invalid --phase")
	}
	assert.Contains(t, mustRun(t, dir, "task", "list"), "no tasks")

	out := mustRun(t, dir, "task", "add", "Seeds", "--phase", "Planted", "--phase", " Sprouting : 3 ")
	assert.Contains(t, out, "phases=Planted,Sprouting")
	assert.Contains(t, mustRun(t, dir, "task", "show", "1"), "2. Sprouting (3d)")
}

func TestHistoryDeleteRecomputes(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "task", "add", "Laundry", "--phase", "Washing", "--phase", "Drying")
	mustRun(t, dir, "done", "1")

	out := mustRun(t, dir, "history", "delete", "1")
	assert.Contains(t, out, "deleted [1]")
	assert.Contains(t, out, "task 1 is at phase 1")

	out = mustRun(t, dir, "history", "delete", "1")
	assert.Contains(t, out, "no history entry 1")

	_, err := run(t, dir, "history", "add", "1")
	require.Error(t, err)
	_, err = run(t, dir, "history", "add", "1", "--at", "2026-03-10", "--from", "1", "--to", "9")
	require.Error(t, err)
}

func TestExportWipeImportThroughCLI(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "task", "add", "Water plants")
	mustRun(t, dir, "task", "add", "Laundry", "--phase", "Washing", "--phase", "Drying", "--phase", "Folded")
	mustRun(t, dir, "done", "2")
	mustRun(t, dir, "prefs", "--sort", "alpha")

	exportPath := filepath.Join(t.TempDir(), "backup.yaml")
	out := mustRun(t, dir, "export", "--format", "yaml", "--out", exportPath)
	assert.Contains(t, out, "exported tasks=2 phases=4 transitions=1")

	_, err := run(t, dir, "wipe")
	require.Error(t, err)

	out = mustRun(t, dir, "wipe", "--yes")
	assert.Contains(t, out, "all data deleted")
	assert.Contains(t, mustRun(t, dir, "task", "list"), "no tasks")
	assert.Contains(t, mustRun(t, dir, "prefs"), "sort: recent")

	out = mustRun(t, dir, "import", exportPath)
	assert.Contains(t, out, "imported tasks=2 phases=4 transitions=1")
	assert.Contains(t, out, "sort preference set to alpha")
	assert.Contains(t, mustRun(t, dir, "prefs"), "sort: alpha")

	out = mustRun(t, dir, "task", "list", "--sort", "alpha")
	assert.Contains(t, out, "Drying since")
	assert.Contains(t, out, "Water plants")
}

func TestPrefsCommand(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "prefs")
	assert.Equal(t, "sort: recent\ntheme: system\n", out)

	out = mustRun(t, dir, "prefs", "--sort", "alpha", "--theme", "light")
	assert.Equal(t, "sort: alpha\ntheme: light\n", out)

	out = mustRun(t, dir, "prefs", "--theme", "system")
	assert.Equal(t, "sort: alpha\ntheme: system\n", out)

	_, err := run(t, dir, "prefs", "--sort", "sideways")
	require.Error(t, err)
}

func TestInvalidIDs(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "task", "show", "abc")
	require.Error(t, err)
	_, err = run(t, dir, "done", "0")
	require.Error(t, err)
	_, err = run(t, dir, "task", "show", "42")
	require.Error(t, err)
}
