package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/trackr/pkg/testutil"
)

func TestDetectSource(t *testing.T) {
	dir := t.TempDir()
	for _, tc := range []struct {
		name string
		want SourceType
	}{
		{"database.csv", SourceTypeCSV},
		{"DATA.CSV", SourceTypeCSV},
		{"estimates.db", SourceTypeSQLite},
		{"estimates.sqlite", SourceTypeSQLite},
		{"estimates.sqlite3", SourceTypeSQLite},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
			src, err := DetectSource(path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, src.Type)
			assert.True(t, filepath.IsAbs(src.Path))
			assert.Equal(t, int64(1), src.Size)
			assert.Contains(t, src.String(), string(tc.want))
		})
	}
}

func TestDetectSourceErrors(t *testing.T) {
	_, err := DetectSource("")
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = DetectSource(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, ErrNoDataset)

	bad := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(bad, []byte("{}"), 0644))
	_, err = DetectSource(bad)
	assert.ErrorIs(t, err, ErrUnknownSource)

	_, err = DetectSource(t.TempDir())
	assert.Error(t, err)
}

func TestLoadCSVAndSQLiteAgree(t *testing.T) {
	src := testutil.NewDefault().Dataset()
	csvPath := writeFixture(t, "database.csv", src)
	dbPath := filepath.Join(t.TempDir(), "estimates.db")

	n, err := ImportCSV(context.Background(), csvPath, dbPath, nil)
	require.NoError(t, err)
	assert.Equal(t, src.Len(), n)

	fromCSV, err := Load(csvPath)
	require.NoError(t, err)
	fromDB, err := Load(dbPath)
	require.NoError(t, err)

	assert.Equal(t, csvPath, fromCSV.Source)
	assert.Equal(t, dbPath, fromDB.Source)
	assert.ElementsMatch(t, fromCSV.Records, fromDB.Records)
	assert.Equal(t, fromCSV.LastUpdated, fromDB.LastUpdated)
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.csv")
	content := sampleCSV + "World,2020-04-01,7,1.2,1.3,1.1,1.4,1.0,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
