// Package watch triggers syncs when Markdown files under a directory change.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher watches a directory tree and calls onChange once a burst of
// relevant events has been quiet for the debounce interval.
type Watcher struct {
	root     string
	debounce time.Duration
	onChange func(reason string)

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func New(root string, debounce time.Duration, onChange func(reason string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:     root,
		debounce: debounce,
		onChange: onChange,
		watcher:  watcher,
		done:     make(chan struct{}),
	}, nil
}

// Start watches root and every non-hidden directory below it.
// Directories created later are added as they appear.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("watcher already running")
	}
	if err := w.addTree(w.root); err != nil {
		return err
	}

	w.running = true
	w.wg.Add(1)
	go w.processEvents()

	log.Info().Str("root", w.root).Dur("debounce", w.debounce).Msg("Watching posts directory")
	return nil
}

// Stop blocks until the event loop has exited. A pending debounced change is dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	w.wg.Wait()
	return nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(w.root, event.Name) {
					if err := w.addTree(event.Name); err != nil {
						log.Warn().Err(err).Str("path", event.Name).Msg("Failed to watch new directory")
					}
				}
			}
			if !w.relevant(event) {
				continue
			}

			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Post file changed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			w.onChange("watch")

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("File watcher error")
		}
	}
}

// relevant reports whether event may change the set of posts: a Markdown
// file, or an extension-less path that may be a directory of them.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod || isHidden(w.root, event.Name) {
		return false
	}
	ext := filepath.Ext(event.Name)
	return ext == ".md" || ext == ""
}

// isHidden reports whether p, or any directory between root and p, is a dot-name.
func isHidden(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
