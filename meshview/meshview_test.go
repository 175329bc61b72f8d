package meshview_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ehtycs/slutils/meshview"
)

// fakeViewer records viewer calls. Safe for concurrent use.
type fakeViewer struct {
	mu      sync.Mutex
	tags    []int
	removed []int
	merged  []string
	failOn  string
}

func (v *fakeViewer) ViewTags() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]int(nil), v.tags...)
}

func (v *fakeViewer) RemoveView(tag int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.removed = append(v.removed, tag)
}

func (v *fakeViewer) Merge(filename string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.failOn != "" && filepath.Base(filename) == v.failOn {
		return errors.New("merge failed")
	}
	v.merged = append(v.merged, filename)
	return nil
}

func (v *fakeViewer) mergedFiles() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.merged...)
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data"), 0o644))
	}
}

func TestLoadResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	// Created out of order on purpose; loads must be sorted.
	writeFiles(t, dir, "b.pos", "c.txt", "a.pos")

	before, err := os.Getwd()
	require.NoError(t, err)

	v := &fakeViewer{tags: []int{1, 2, 3}}
	require.NoError(t, meshview.LoadResults(v, dir, nil))

	assert.Equal(t, []int{1, 2, 3}, v.removed, "all pre-existing views removed")
	assert.Equal(t, []string{"a.pos", "b.pos"}, v.mergedFiles())

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after, "working directory restored")
}

func TestLoadResults_MergeError(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	writeFiles(t, dir, "a.pos", "b.pos")

	before, err := os.Getwd()
	require.NoError(t, err)

	v := &fakeViewer{failOn: "a.pos"}
	require.Error(t, meshview.LoadResults(v, dir, nil))

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after, "working directory restored after error")
}

func TestLoadResults_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")

	v := &fakeViewer{}
	require.NoError(t, meshview.LoadResults(v, dir, nil))

	assert.Empty(t, v.mergedFiles())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadResults_CustomFilter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	writeFiles(t, dir, "a.pos", "snapshot.msh")

	keepMsh := func(names []string) []string {
		var out []string
		for _, name := range names {
			if filepath.Ext(name) == ".msh" {
				out = append(out, name)
			}
		}
		return out
	}

	v := &fakeViewer{}
	require.NoError(t, meshview.LoadResults(v, dir, keepMsh))
	assert.Equal(t, []string{"snapshot.msh"}, v.mergedFiles())
}

func TestWorkdir(t *testing.T) {
	before, err := os.Getwd()
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "sub")
	wd, err := meshview.EnterWorkdir(dir)
	require.NoError(t, err)

	cur, err := os.Getwd()
	require.NoError(t, err)
	// Resolve symlinks; on some systems TempDir returns a symlinked path.
	wantDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(cur)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)

	require.NoError(t, wd.Restore())
	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	t.Run("ExistingDirectory", func(t *testing.T) {
		wd, err := meshview.EnterWorkdir(dir)
		require.NoError(t, err)
		require.NoError(t, wd.Restore())
	})
}

func TestWatchResults(t *testing.T) {
	dir := t.TempDir()
	v := &fakeViewer{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- meshview.WatchResults(ctx, v, dir, nil)
	}()

	// Give the watcher a moment to register before producing files.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "step1.pos"), []byte("data"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("data"), 0o644))

	require.Eventually(t, func() bool {
		return len(v.mergedFiles()) == 1
	}, 5*time.Second, 10*time.Millisecond)

	merged := v.mergedFiles()
	assert.Equal(t, "step1.pos", filepath.Base(merged[0]))
	assert.True(t, filepath.IsAbs(merged[0]), "watcher merges absolute paths")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
