// Package watcher monitors a catalog source on disk and signals when it
// changes, so the browser can offer a reload. It prefers fsnotify and
// falls back to stat polling on filesystems where inotify is unreliable.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/canopy/pkg/debug"
)

// DefaultPollInterval is the stat interval when polling mode is active.
const DefaultPollInterval = 2 * time.Second

var (
	ErrSourceRemoved  = errors.New("watched source was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window for change bursts.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval for polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithOnError sets the callback invoked on watch errors.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll skips fsnotify entirely. The CANOPY_FORCE_POLL environment
// variable has the same effect.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one source path. The path may be a regular file (JSON
// fixture, SQLite database) or a directory; for files the parent directory
// is registered with fsnotify so atomic save-and-rename writes are seen.
type Watcher struct {
	path         string
	isDir        bool
	debounce     time.Duration
	pollInterval time.Duration
	onError      func(error)
	forcePoll    bool
	fsType       FilesystemType

	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	polling   bool
	lastMtime time.Time
	lastSize  int64

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// New creates a watcher for the given source path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		onError:      func(error) {},
		changeCh:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start begins watching. It decides between fsnotify and polling based on
// the filesystem under the path and the force-poll switches.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())

	info, err := os.Stat(w.path)
	switch {
	case err == nil:
		w.isDir = info.IsDir()
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	case os.IsPermission(err):
		return ErrPermission
	default:
		// Not there yet; polling or a Create event will pick it up.
		w.lastMtime = time.Time{}
		w.lastSize = 0
	}

	w.fsType = DetectFilesystemType(w.path)
	w.polling = w.forcePoll || envBool("CANOPY_FORCE_POLL") || isRemoteFilesystem(w.fsType)

	if !w.polling {
		if err := w.startFsnotify(); err != nil {
			debug.Log("watcher: fsnotify unavailable (%v), polling %s", err, w.path)
			w.polling = true
		}
	}
	if w.polling {
		go w.pollLoop()
	}

	w.started = true
	return nil
}

func (w *Watcher) startFsnotify() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watching the containing directory survives rename-over-save; a
	// directory source is watched directly.
	target := w.path
	if !w.isDir {
		target = filepath.Dir(w.path)
	}
	if err := fsw.Add(target); err != nil {
		fsw.Close()
		return err
	}
	w.fsWatcher = fsw
	go w.eventLoop(fsw.Events, fsw.Errors)
	return nil
}

// Stop shuts the watcher down. The change channel stays open so a reader
// blocked on Changed() is released by process exit, not by a racy close.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	w.cancel()
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}
	w.debouncer.Cancel()
	w.started = false
}

// Changed returns a channel that receives after each debounced change.
func (w *Watcher) Changed() <-chan struct{} { return w.changeCh }

// IsPolling reports whether the watcher runs in polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Path returns the watched path.
func (w *Watcher) Path() string { return w.path }

// FilesystemType returns the classification made at Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.fsType
}

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func (w *Watcher) eventLoop(events chan fsnotify.Event, errs chan error) {
	base := filepath.Base(w.path)
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			// For file sources only events on the file itself count; a
			// directory source reacts to anything inside it.
			if !w.isDir && filepath.Base(ev.Name) != base {
				continue
			}
			switch {
			case !w.isDir && ev.Op&fsnotify.Remove != 0:
				w.onError(ErrSourceRemoved)
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0:
				w.debouncer.Trigger(w.notify)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) pollLoop() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.pollOnce()
		}
	}
}

func (w *Watcher) pollOnce() {
	info, err := os.Stat(w.path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			w.mu.RLock()
			existed := !w.lastMtime.IsZero()
			w.mu.RUnlock()
			if existed {
				w.onError(ErrSourceRemoved)
			}
		case os.IsPermission(err):
			w.onError(ErrPermission)
		default:
			w.onError(err)
		}
		return
	}

	w.mu.Lock()
	changed := info.ModTime().After(w.lastMtime) || (!info.IsDir() && info.Size() != w.lastSize)
	if changed {
		w.lastMtime = info.ModTime()
		w.lastSize = info.Size()
	}
	w.mu.Unlock()

	if changed {
		w.debouncer.Trigger(w.notify)
	}
}

func (w *Watcher) notify() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()
	if !started {
		return
	}
	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
