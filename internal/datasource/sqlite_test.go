package datasource

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func TestSQLiteWriteAndRead(t *testing.T) {
	src := testutil.NewDefault().Dataset()
	src.Records[0].CI95Lower = math.NaN()
	path := filepath.Join(t.TempDir(), "estimates.db")

	w, err := NewSQLiteWriter(path)
	require.NoError(t, err)
	n, err := w.Write(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, src.Len(), n)

	// Rewriting replaces rather than appends.
	n, err = w.Write(context.Background(), src)
	require.NoError(t, err)
	require.Equal(t, src.Len(), n)
	require.NoError(t, w.Close())

	source, err := DetectSource(path)
	require.NoError(t, err)
	r, err := NewSQLiteReader(source)
	require.NoError(t, err)
	defer r.Close()

	count, err := r.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, src.Len(), count)

	ds, err := r.LoadDataset()
	require.NoError(t, err)
	require.Equal(t, src.Len(), ds.Len())
	assert.Equal(t, src.LastUpdated, ds.LastUpdated)

	var nanSeen bool
	for _, rec := range ds.Records {
		if math.IsNaN(rec.CI95Lower) {
			nanSeen = true
			assert.Equal(t, src.Records[0].EntityID, rec.EntityID)
		}
	}
	assert.True(t, nanSeen, "NULL should round-trip to NaN")
}

func TestSQLiteReaderRejectsCSVSource(t *testing.T) {
	_, err := NewSQLiteReader(DataSource{Type: SourceTypeCSV, Path: "x.csv"})
	assert.Error(t, err)
}

func TestSQLiteEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	w, err := NewSQLiteWriter(path)
	require.NoError(t, err)
	n, err := w.Write(context.Background(), &model.Dataset{})
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, w.Close())

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, ds.Len())
	assert.True(t, ds.LastUpdated.IsZero())
}
