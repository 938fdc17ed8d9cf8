// Package watcher reports debounced changes to a set of files: the
// declaration documents a tokenizer was compiled from and the source
// being scanned.
package watcher

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/lexkit/internal/log"
)

// Change lists the watched files touched during one debounce window.
type Change struct {
	Paths []string
}

// Watcher monitors files and sends one Change per burst of writes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debounce  time.Duration
	onChange  chan Change
	done      chan struct{}
	stopOnce  sync.Once

	mu    sync.Mutex
	files map[string]bool // absolute paths
	dirs  map[string]bool
}

// Config holds watcher configuration options.
type Config struct {
	Files       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(files ...string) Config {
	return Config{
		Files:       files,
		DebounceDur: 200 * time.Millisecond,
	}
}

// New creates a watcher for cfg.Files. Nothing is watched until Start.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		fsWatcher: fsw,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan Change, 1),
		done:      make(chan struct{}),
		files:     make(map[string]bool),
		dirs:      make(map[string]bool),
	}
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", f, err)
		}
		w.files[abs] = true
	}
	return w, nil
}

// Start begins watching the directories holding the files. Directories are
// watched rather than files so editors that replace files on save still
// trigger a change.
func (w *Watcher) Start() (<-chan Change, error) {
	w.mu.Lock()
	files := w.fileList()
	w.mu.Unlock()

	if err := w.watchDirs(files); err != nil {
		return nil, err
	}

	go w.loop()

	return w.onChange, nil
}

// SetFiles replaces the watched set, for example after an include list
// changed.
func (w *Watcher) SetFiles(files ...string) error {
	next := make(map[string]bool, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", f, err)
		}
		next[abs] = true
	}

	w.mu.Lock()
	w.files = next
	list := w.fileList()
	w.mu.Unlock()

	return w.watchDirs(list)
}

// Files returns the watched files in sorted order.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fileList()
}

func (w *Watcher) fileList() []string {
	out := make([]string, 0, len(w.files))
	for f := range w.files {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

func (w *Watcher) watchDirs(files []string) error {
	for _, f := range files {
		dir := filepath.Dir(f)

		w.mu.Lock()
		seen := w.dirs[dir]
		w.dirs[dir] = true
		w.mu.Unlock()
		if seen {
			continue
		}

		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
		log.Debug(log.CatWatcher, "watching directory", "dir", dir)
	}
	return nil
}

// Stop terminates the watcher and releases resources. It is safe to call
// more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]bool)
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			path, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending[path] = true

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if len(pending) == 0 {
				continue
			}
			change := Change{Paths: make([]string, 0, len(pending))}
			for p := range pending {
				change.Paths = append(change.Paths, p)
			}
			slices.Sort(change.Paths)
			clear(pending)

			log.Debug(log.CatWatcher, "files changed", "paths", change.Paths)
			// Non-blocking send - drop if channel full
			select {
			case w.onChange <- change:
			default:
				log.Warn(log.CatWatcher, "change dropped, receiver busy", "paths", change.Paths)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant reports whether event touches a watched file.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return abs, w.files[abs]
}
