package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherCoalescesWrites(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	hits := map[string]int{}
	w, err := New([]string{dir}, []string{"*.md"}, func(path string) {
		mu.Lock()
		hits[filepath.Base(path)]++
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Run(ctx)
		close(done)
	}()

	path := filepath.Join(dir, "tasks.md")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("- [ ] task"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	// A non-matching file must not fire.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if hits["tasks.md"] != 1 {
		t.Errorf("burst must coalesce to one call, got %d", hits["tasks.md"])
	}
	if hits["notes.txt"] != 0 {
		t.Errorf("non-markdown file fired %d times", hits["notes.txt"])
	}
}

func TestWatcherBadPattern(t *testing.T) {
	if _, err := New([]string{t.TempDir()}, []string{"["}, func(string) {}); err == nil {
		t.Error("want error for invalid glob")
	}
}
