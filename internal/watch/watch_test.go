package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"waymark/internal/logging"
)

func TestRunInvokesCallbackAfterQuietPeriod(t *testing.T) {
	dir := t.TempDir()
	watcher := New([]string{dir}, 50*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx, func(context.Context) error {
			select {
			case fired <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "2024-07-02.md"), []byte("harbor"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("callback never fired")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Run exit: %v", err)
	}
}

func TestRunCoalescesBursts(t *testing.T) {
	dir := t.TempDir()
	watcher := New([]string{dir}, 150*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	count := make(chan struct{}, 16)
	go func() {
		_ = watcher.Run(ctx, func(context.Context) error {
			count <- struct{}{}
			return nil
		})
	}()

	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, "note.md")
		if err := os.WriteFile(path, []byte("edit"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-count:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild for burst")
	}
	select {
	case <-count:
		t.Error("burst must coalesce into one rebuild")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestIgnorableFiltersTempFiles(t *testing.T) {
	for _, path := range []string{
		"/data/compiled/.waymark-meta-123.tmp",
		"/data/authored/.iceland.yaml.swp",
		"/data/authored/iceland.yaml~",
	} {
		if !ignorable(path) {
			t.Errorf("%s should be ignored", path)
		}
	}
	if ignorable("/data/authored/iceland.yaml") {
		t.Error("authored files must not be ignored")
	}
}

func TestMissingRootIsSkipped(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "not-yet")
	watcher := New([]string{missing, dir}, 50*time.Millisecond, logging.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := watcher.Run(ctx, func(context.Context) error { return nil }); err != context.DeadlineExceeded {
		t.Fatalf("expected clean deadline exit, got %v", err)
	}
}
