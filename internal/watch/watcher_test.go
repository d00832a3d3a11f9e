package watch

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func startWatcher(t *testing.T, root string, calls *atomic.Int32) *Watcher {
	t.Helper()
	w, err := New(root, 50*time.Millisecond, func(string) { calls.Add(1) })
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebouncesBurst(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(root, "post.md"), []byte{byte('a' + i)}, 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	waitFor(t, func() bool { return calls.Load() >= 1 })
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("onChange calls = %d, want 1", got)
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	if err := os.WriteFile(filepath.Join(root, "image.png"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("onChange calls = %d, want 0", got)
	}
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	root := t.TempDir()
	var calls atomic.Int32
	startWatcher(t, root, &calls)

	sub := filepath.Join(root, "go")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}
	waitFor(t, func() bool { return calls.Load() >= 1 })
	before := calls.Load()

	// Give the loop a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "generics.md"), []byte("# G"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	waitFor(t, func() bool { return calls.Load() > before })
}

func TestWatcher_StartTwice(t *testing.T) {
	var calls atomic.Int32
	w := startWatcher(t, t.TempDir(), &calls)
	if err := w.Start(); err == nil {
		t.Error("second Start error = nil, want error")
	}
}

func TestRelevant(t *testing.T) {
	w := &Watcher{root: "/posts"}
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"markdown write", fsnotify.Event{Name: "/posts/a.md", Op: fsnotify.Write}, true},
		{"markdown remove", fsnotify.Event{Name: "/posts/go/a.md", Op: fsnotify.Remove}, true},
		{"directory rename", fsnotify.Event{Name: "/posts/go", Op: fsnotify.Rename}, true},
		{"chmod", fsnotify.Event{Name: "/posts/a.md", Op: fsnotify.Chmod}, false},
		{"image", fsnotify.Event{Name: "/posts/a.png", Op: fsnotify.Write}, false},
		{"hidden dir", fsnotify.Event{Name: "/posts/.git/HEAD", Op: fsnotify.Write}, false},
		{"editor swap", fsnotify.Event{Name: "/posts/.a.md.swp", Op: fsnotify.Create}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.relevant(tt.event); got != tt.want {
				t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}
