// Package watch keeps vault files dedup-clean: it watches vault roots and
// re-runs the redundancy sweep on every markdown file another actor writes.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Handler is invoked with the path of a changed file after debouncing.
type Handler func(path string)

// Watcher recursively watches directories and fires the handler for writes
// matching the include patterns. Rapid write bursts to one file coalesce
// into a single handler call.
type Watcher struct {
	fs       *fsnotify.Watcher
	include  []glob.Glob
	handler  Handler
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New builds a watcher over roots. Patterns use glob syntax matched against
// the path relative to its root; an empty pattern list matches everything.
func New(roots, patterns []string, handler Handler) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fs,
		handler:  handler,
		debounce: 250 * time.Millisecond,
		timers:   map[string]*time.Timer{},
	}
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			fs.Close()
			return nil, err
		}
		w.include = append(w.include, g)
	}
	for _, root := range roots {
		if err := w.addRecursive(root); err != nil {
			fs.Close()
			return nil, err
		}
	}
	return w, nil
}

// Only directories can be watched; new subdirectories are added as they
// appear in the event stream.
func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if name := filepath.Base(path); name == ".git" || name == ".obsidian" {
				return filepath.SkipDir
			}
			return w.fs.Add(path)
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	if len(w.include) == 0 {
		return true
	}
	p := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, g := range w.include {
		if g.Match(p) || g.Match(base) {
			return true
		}
	}
	return false
}

// Run pumps events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if ev.Op.Has(fsnotify.Create) {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					_ = w.addRecursive(ev.Name)
					continue
				}
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				if w.matches(ev.Name) {
					w.schedule(ev.Name)
				}
			}
		case _, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			// Watch errors are not fatal to the sweep loop.
		}
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.handler(path)
	})
}
