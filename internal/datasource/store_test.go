package datasource

import (
	"bytes"
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/vanderheijden86/trackr/pkg/testutil"
	"github.com/vanderheijden86/trackr/pkg/watcher"
)

func TestStoreReloadKeepsLastGood(t *testing.T) {
	path := writeFixture(t, "database.csv", testutil.NewDefault().Dataset())

	s, err := OpenStore(path, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	first := s.Snapshot()
	require.NotNil(t, first)
	assert.False(t, s.LoadedAt().IsZero())

	require.NoError(t, os.WriteFile(path, []byte("garbage\n"), 0644))
	_, err = s.Reload()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadHeader)
	assert.Same(t, first, s.Snapshot(), "failed reload must keep the previous snapshot")
}

func TestOpenStoreMissingFile(t *testing.T) {
	_, err := OpenStore(t.TempDir() + "/missing.csv")
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestStaticStore(t *testing.T) {
	ds := testutil.NewDefault().Dataset()
	s := NewStaticStore(ds)
	assert.Same(t, ds, s.Snapshot())

	_, err := s.Reload()
	assert.ErrorIs(t, err, ErrNoDataset)
	assert.Same(t, ds, s.Snapshot())
	assert.ErrorIs(t, s.Watch(context.Background()), ErrNoDataset)
}

func TestStoreSubscribe(t *testing.T) {
	path := writeFixture(t, "database.csv", testutil.Flat(7, map[string][]float64{"A": {1}}))
	s, err := OpenStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testutil.Flat(7, map[string][]float64{"A": {1}, "B": {2}})))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	_, err = s.Reload()
	require.NoError(t, err)

	select {
	case diff := <-ch:
		assert.Equal(t, []string{"B"}, diff.AddedEntities)
	case <-time.After(time.Second):
		t.Fatal("no diff published")
	}

	cancel()
	for range ch {
	}
}

func TestStoreWatchReloadsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	path := writeFixture(t, "database.csv", testutil.Flat(7, map[string][]float64{"A": {1}}))
	s, err := OpenStore(path, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	updates := s.Subscribe(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.Watch(ctx,
			watcher.WithForcePoll(true),
			watcher.WithPollInterval(20*time.Millisecond),
			watcher.WithDebounceDuration(20*time.Millisecond),
		))
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	time.Sleep(60 * time.Millisecond)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testutil.Flat(7, map[string][]float64{"A": {1, 2}, "B": {3}})))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	select {
	case <-updates:
	case <-time.After(3 * time.Second):
		t.Fatal("store did not reload after the file changed")
	}
	assert.Equal(t, []string{"A", "B"}, s.Snapshot().Entities())
}
