package loader

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animation"

	"github.com/fsnotify/fsnotify"
)

// ReloadEvent reports the outcome of reloading one changed clip file.
type ReloadEvent struct {
	// Path is the changed file.
	Path string
	// Clips are the freshly decoded clips; empty when Removed or Err is set.
	Clips []animation.AnimationClip
	// Removed is set when the file was deleted or renamed away and its clips were forgotten.
	Removed bool
	// Err is the decode error. The previously loaded clips stay cached.
	Err error
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long a file must stay quiet after its last change before it is reloaded.
//
// Parameters:
//   - d: the quiet period
//
// Returns:
//   - WatcherOption: a function that applies the debounce option to a watcher
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher reloads clip files through a Loader whenever they change on disk.
// Results are delivered on Events; watch errors on Errors. Both channels are closed by Close.
type Watcher struct {
	loader   Loader
	watcher  *fsnotify.Watcher
	debounce time.Duration

	Events chan ReloadEvent
	Errors chan error

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dirs for changes to supported clip files.
//
// Parameters:
//   - l: the loader whose cache is refreshed
//   - dirs: the directories to watch (not recursive)
//   - options: a variadic list of WatcherOption functions
//
// Returns:
//   - *Watcher: the running watcher
//   - error: error if a directory cannot be watched
func NewWatcher(l Loader, dirs []string, options ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := fw.Add(filepath.Clean(dir)); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	w := &Watcher{
		loader:   l,
		watcher:  fw,
		debounce: 100 * time.Millisecond,
		Events:   make(chan ReloadEvent, 16),
		Errors:   make(chan error, 1),
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string, 16),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, option := range options {
		option(w)
	}
	go w.run()
	return w, nil
}

// Close stops the watcher and closes Events and Errors.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done

		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.mu.Unlock()

		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if _, err := FormatForPath(event.Name); err != nil {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case path := <-w.ready:
			evt := w.reload(path)
			select {
			case w.Events <- evt:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		select {
		case w.ready <- path:
		case <-w.closeCh:
		}
	})
}

func (w *Watcher) reload(path string) ReloadEvent {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		names := w.loader.Forget(path)
		log.Printf("[Loader] %s removed, dropped clips %v", path, names)
		return ReloadEvent{Path: path, Removed: true}
	}

	clips, err := w.loader.Reload(path)
	if err != nil {
		log.Printf("[Loader] reload of %s failed, keeping previous clips: %v", path, err)
		return ReloadEvent{Path: path, Err: err}
	}
	log.Printf("[Loader] reloaded %d clips from %s", len(clips), path)
	return ReloadEvent{Path: path, Clips: clips}
}
