package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/watcher"
)

// Store holds the current dataset snapshot for concurrent readers. Reload
// swaps in a new snapshot only when loading succeeds, so readers always see
// the last good dataset.
type Store struct {
	path    string
	current atomic.Pointer[model.Dataset]
	loadMu  sync.Mutex
	loaded  atomic.Int64 // unix nanos of last successful load
	logger  *zap.Logger

	subMu sync.Mutex
	subs  []chan DatasetDiff
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for reload messages.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns an empty Store for path. Call Reload to load it.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenStore creates a Store and performs the initial load.
func OpenStore(path string, opts ...StoreOption) (*Store, error) {
	s := NewStore(path, opts...)
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore wraps an in-memory dataset. Reload on it fails with
// ErrNoDataset and leaves the snapshot in place.
func NewStaticStore(ds *model.Dataset) *Store {
	s := NewStore("")
	s.current.Store(ds)
	s.loaded.Store(time.Now().UnixNano())
	return s
}

// Path returns the dataset path.
func (s *Store) Path() string { return s.path }

// Snapshot returns the current dataset. It is nil before the first
// successful load. Callers must treat it as read-only.
func (s *Store) Snapshot() *model.Dataset {
	return s.current.Load()
}

// LoadedAt returns when the current snapshot was loaded.
func (s *Store) LoadedAt() time.Time {
	ns := s.loaded.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Reload reads the dataset from disk and swaps it in. On failure the
// previous snapshot stays current and the error is returned.
func (s *Store) Reload() (DatasetDiff, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	ds, err := Load(s.path)
	if err != nil {
		s.logger.Warn("dataset reload failed, keeping previous snapshot",
			zap.String("path", s.path), zap.Error(err))
		return DatasetDiff{}, fmt.Errorf("reload %s: %w", s.path, err)
	}

	prev := s.current.Swap(ds)
	s.loaded.Store(time.Now().UnixNano())

	diff := CompareDatasets(prev, ds, DefaultDiffOptions())
	s.logger.Info("dataset loaded",
		zap.String("path", s.path),
		zap.Int("records", ds.Len()),
		zap.Int("entities", len(ds.Entities())),
		zap.Bool("changed", diff.HasChanges()))
	if prev != nil && diff.HasChanges() {
		s.publish(diff)
	}
	return diff, nil
}

// Subscribe returns a channel that receives the diff of every reload that
// changed the dataset. Slow subscribers miss diffs rather than block
// reloads. The channel closes when ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan DatasetDiff {
	ch := make(chan DatasetDiff, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, c := range s.subs {
			if c == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

func (s *Store) publish(diff DatasetDiff) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- diff:
		default:
		}
	}
}

// Watch reloads the store whenever the dataset file changes, until ctx is
// done. It blocks and returns nil on cancellation.
func (s *Store) Watch(ctx context.Context, opts ...watcher.Option) error {
	if s.path == "" {
		return ErrNoDataset
	}
	opts = append([]watcher.Option{
		watcher.WithOnError(func(err error) {
			if errors.Is(err, watcher.ErrFileRemoved) {
				s.logger.Warn("dataset file removed, serving last snapshot", zap.String("path", s.path))
				return
			}
			s.logger.Warn("dataset watch error", zap.String("path", s.path), zap.Error(err))
		}),
	}, opts...)

	w, err := watcher.New(s.path, opts...)
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", s.path, err)
	}
	defer w.Stop()

	s.logger.Debug("watching dataset", zap.String("path", w.Path()), zap.Bool("polling", w.IsPolling()))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-w.Changed():
			s.logger.Debug("dataset changed on disk", zap.Int64("size", ev.Size), zap.Bool("polled", ev.Polled))
			// Errors are logged by Reload; the old snapshot stays.
			_, _ = s.Reload()
		}
	}
}
