package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	postsDir := filepath.Join(dir, "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatalf("failed to create posts dir: %v", err)
	}
	t.Setenv("FLOG_DATABASE_PATH", filepath.Join(dir, "flog.db"))
	t.Setenv("FLOG_POSTS_DIR", postsDir)
	t.Setenv("FLOG_LOG_LEVEL", "error")
	return postsDir
}

func TestSyncCommand(t *testing.T) {
	postsDir := setupEnv(t)
	if err := os.WriteFile(filepath.Join(postsDir, "hello.md"), []byte("# Hello\n\nFirst post"), 0o644); err != nil {
		t.Fatalf("failed to write post: %v", err)
	}

	out, err := runCLI(t, "sync")
	if err != nil {
		t.Fatalf("sync failed: %v", err)
	}
	if want := "created: 1, updated: 0, deleted: 0"; !strings.Contains(out, want) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}

	out, err = runCLI(t, "sync")
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if want := "created: 0, updated: 0, deleted: 0"; !strings.Contains(out, want) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}
}

func TestSyncCommand_MissingDir(t *testing.T) {
	postsDir := setupEnv(t)
	if err := os.RemoveAll(postsDir); err != nil {
		t.Fatalf("failed to remove posts dir: %v", err)
	}

	out, err := runCLI(t, "sync")
	if err == nil {
		t.Fatal("expected error for missing posts dir")
	}
	if want := "created: 0, updated: 0, deleted: 0"; !strings.Contains(out, want) {
		t.Errorf("output = %q, want it to contain %q", out, want)
	}
}

func TestMigrateCommand(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.Contains(out, "schema version") || strings.Contains(out, "schema version 0 ") {
		t.Errorf("output = %q, want an applied schema version", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("FLOG_POSTS_SOURCE", "ftp")

	if _, err := runCLI(t, "sync"); err == nil {
		t.Error("expected error for unknown posts source")
	}
}
