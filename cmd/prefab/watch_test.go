package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchLoopDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.prefab")
	if err := os.WriteFile(path, []byte(`(module "annex")`), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := newScriptWatcher(path)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, w, path, 50*time.Millisecond, func() { changes <- struct{}{} })
	}()

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte(`(module "dwelling")`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-changes:
		t.Error("burst of writes reported more than once")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchLoop: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watchLoop did not stop on cancel")
	}
}

func TestNewScriptWatcherMissingDir(t *testing.T) {
	if _, err := newScriptWatcher(filepath.Join(t.TempDir(), "missing", "x.prefab")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}
