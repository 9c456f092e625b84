// Package watcher notifies trackr when the dataset file on disk changes,
// so long-running commands can reload without a restart.
//
// Events from fsnotify (or, on network mounts, a stat poll) only mark the
// file as dirty. Once the debouncer settles, the file is fingerprinted and
// a change is reported only when its size or content hash moved. Saves
// that rewrite identical bytes, and bare touches, stay silent.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the stat interval in polling mode.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("dataset file was removed")
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// detectFilesystemTypeFunc is swapped in tests to simulate remote mounts.
var detectFilesystemTypeFunc = DetectFilesystemType

// Event describes the file after a settled change.
type Event struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Checksum uint64
	Polled   bool
}

// fingerprint identifies one version of the file.
type fingerprint struct {
	exists  bool
	size    int64
	modTime time.Time
	sum     uint64
}

func (f fingerprint) sameStat(o fingerprint) bool {
	return f.exists == o.exists && f.size == o.size && f.modTime.Equal(o.modTime)
}

func (f fingerprint) sameContent(o fingerprint) bool {
	return f.exists == o.exists && f.size == o.size && f.sum == o.sum
}

func statFile(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fingerprint{}, nil
		}
		if os.IsPermission(err) {
			return fingerprint{}, ErrPermission
		}
		return fingerprint{}, err
	}
	return fingerprint{exists: true, size: info.Size(), modTime: info.ModTime()}, nil
}

// hashFile stats and hashes path. A missing file yields the zero value.
func hashFile(path string) (fingerprint, error) {
	fp, err := statFile(path)
	if err != nil || !fp.exists {
		return fp, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fingerprint{}, nil
		}
		return fingerprint{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	h := fnv.New64a()
	if _, err := io.Copy(h, f); err != nil {
		return fingerprint{}, fmt.Errorf("read %s: %w", path, err)
	}
	fp.sum = h.Sum64()
	return fp, nil
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets how long the file must stay quiet before it is
// fingerprinted.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounceDuration = d }
}

// WithPollInterval sets the stat interval for polling mode. Non-positive
// values keep DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange sets a callback run for every reported change, before the
// event is sent on Changed. It runs on the debouncer goroutine and must
// not call Stop.
func WithOnChange(fn func(Event)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the callback for watch errors, ErrFileRemoved included.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// WithForcePoll selects polling mode even where fsnotify works.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher monitors one dataset file.
type Watcher struct {
	path             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func(Event)
	onError          func(error)
	forcePoll        bool

	mu        sync.Mutex
	fsType    FilesystemType
	polling   bool
	started   bool
	cancel    context.CancelFunc
	fsWatcher *fsnotify.Watcher
	last      fingerprint

	debouncer *Debouncer
	wg        sync.WaitGroup
	changeCh  chan Event
}

// New creates a watcher for path. Nothing is observed until Start.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         absPath,
		pollInterval: DefaultPollInterval,
		onChange:     func(Event) {},
		onError:      func(error) {},
		changeCh:     make(chan Event, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounceDuration)
	return w, nil
}

// Start records the current fingerprint and begins watching until ctx is
// done or Stop is called. A file that does not exist yet is reported as
// changed once it appears.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return ErrAlreadyStarted
	}

	fp, err := hashFile(w.path)
	if err != nil {
		return err
	}
	w.last = fp
	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.forcePoll || envBool("TRACKR_FORCE_POLL") || isRemoteFilesystem(w.fsType)

	if !w.polling {
		// The directory is watched so rename-over saves are seen.
		fsw, err := fsnotify.NewWatcher()
		switch {
		case err != nil:
			w.polling = true
		case fsw.Add(filepath.Dir(w.path)) != nil:
			fsw.Close()
			w.polling = true
		default:
			w.fsWatcher = fsw
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.started = true
	w.wg.Add(1)
	if w.polling {
		go w.poll(runCtx)
	} else {
		go w.listen(runCtx, w.fsWatcher)
	}
	return nil
}

// Stop ends watching and waits for the goroutines and any in-flight
// callback. It is safe to call more than once, and the watcher may be
// started again afterwards.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	fsw := w.fsWatcher
	w.fsWatcher = nil
	w.mu.Unlock()

	if fsw != nil {
		fsw.Close()
	}
	w.wg.Wait()
	w.debouncer.Cancel()
	w.debouncer.Wait()
}

// IsPolling reports whether the watcher fell back to stat polling.
func (w *Watcher) IsPolling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// IsStarted reports whether the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

// Changed delivers settled changes. It is buffered by one, keeps the
// oldest undelivered event and is never closed.
func (w *Watcher) Changed() <-chan Event { return w.changeCh }

// Path returns the absolute watched path.
func (w *Watcher) Path() string { return w.path }

// FilesystemType returns the classification made by Start.
func (w *Watcher) FilesystemType() FilesystemType {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsType
}

// PollInterval returns the stat interval used in polling mode.
func (w *Watcher) PollInterval() time.Duration { return w.pollInterval }

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func (w *Watcher) listen(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	target := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.debouncer.Trigger(func() { w.settle(false) })
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) poll(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fp, err := statFile(w.path)
			if err != nil {
				w.onError(err)
				continue
			}
			w.mu.Lock()
			dirty := !fp.sameStat(w.last)
			w.mu.Unlock()
			if dirty {
				w.debouncer.Trigger(func() { w.settle(true) })
			}
		}
	}
}

// settle fingerprints the quiet file and reports what moved.
func (w *Watcher) settle(polled bool) {
	if !w.IsStarted() {
		return
	}
	fp, err := hashFile(w.path)
	if err != nil {
		w.onError(err)
		return
	}

	w.mu.Lock()
	prev := w.last
	w.last = fp
	w.mu.Unlock()

	switch {
	case !fp.exists:
		if prev.exists {
			w.onError(ErrFileRemoved)
		}
		return
	case fp.sameContent(prev):
		return
	}

	ev := Event{Path: w.path, Size: fp.size, ModTime: fp.modTime, Checksum: fp.sum, Polled: polled}
	w.onChange(ev)
	select {
	case w.changeCh <- ev:
	default:
	}
}
