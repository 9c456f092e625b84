// Package datasource loads R estimate datasets for trackr. It detects the
// source kind from the path, parses CSV exports and SQLite databases into
// a model.Dataset, and keeps a hot-reloadable snapshot for long-running
// commands.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/trackr/pkg/debug"
	"github.com/vanderheijden86/trackr/pkg/metrics"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeCSV is a comma-separated estimates export (database.csv)
	SourceTypeCSV SourceType = "csv"
	// SourceTypeSQLite is a SQLite database holding an estimates table
	SourceTypeSQLite SourceType = "sqlite"
)

var (
	// ErrNoDataset is returned when no dataset path was configured or the
	// path does not exist.
	ErrNoDataset = errors.New("no dataset")
	// ErrUnknownSource is returned for paths whose extension is not recognized.
	ErrUnknownSource = errors.New("unknown dataset format")
)

// DataSource describes a dataset file on disk
type DataSource struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the absolute path to the source file
	Path string `json:"path"`
	// ModTime is the last modification time of the source
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
}

// String returns a human-readable description of the source
func (s DataSource) String() string {
	return fmt.Sprintf("%s (%s, mod=%s, %d bytes)",
		s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
}

// DetectSource stats path and classifies it by extension.
func DetectSource(path string) (DataSource, error) {
	if strings.TrimSpace(path) == "" {
		return DataSource{}, ErrNoDataset
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return DataSource{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return DataSource{}, fmt.Errorf("%w: %s", ErrNoDataset, abs)
		}
		return DataSource{}, fmt.Errorf("stat %s: %w", abs, err)
	}
	if info.IsDir() {
		return DataSource{}, fmt.Errorf("%s is a directory", abs)
	}

	src := DataSource{Path: abs, ModTime: info.ModTime(), Size: info.Size()}
	switch strings.ToLower(filepath.Ext(abs)) {
	case ".csv":
		src.Type = SourceTypeCSV
	case ".db", ".sqlite", ".sqlite3":
		src.Type = SourceTypeSQLite
	default:
		return DataSource{}, fmt.Errorf("%w: %s", ErrUnknownSource, abs)
	}
	return src, nil
}

// Load detects the source at path and reads it into a validated dataset.
func Load(path string) (*model.Dataset, error) {
	src, err := DetectSource(path)
	if err != nil {
		return nil, err
	}
	return LoadFromSource(src)
}

// LoadFromSource reads a dataset from a specific DataSource, dispatching to
// the appropriate reader based on source type.
func LoadFromSource(source DataSource) (*model.Dataset, error) {
	defer metrics.Timer(metrics.DatasetLoad)()
	start := time.Now()

	var (
		ds  *model.Dataset
		err error
	)
	switch source.Type {
	case SourceTypeCSV:
		ds, err = ReadCSVFile(source.Path, func(line int, err error) {
			debug.Log("csv %s:%d skipped: %v", source.Path, line, err)
		})
	case SourceTypeSQLite:
		var reader *SQLiteReader
		reader, err = NewSQLiteReader(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		defer reader.Close()
		ds, err = reader.LoadDataset()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source.Type)
	}
	if err != nil {
		return nil, err
	}

	ds.Source = source.Path
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", source.Path, err)
	}
	debug.LogTiming("dataset load "+string(source.Type), time.Since(start))
	return ds, nil
}
