package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/trackr/pkg/debug"
	"github.com/vanderheijden86/trackr/pkg/metrics"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// EstimatesTable is the table the SQLite reader and writer use.
const EstimatesTable = "estimates"

const createEstimates = `
CREATE TABLE IF NOT EXISTS estimates (
	entity          TEXT    NOT NULL,
	date            TEXT    NOT NULL,
	days_infectious INTEGER NOT NULL,
	r               REAL,
	ci_65_u         REAL,
	ci_65_l         REAL,
	ci_95_u         REAL,
	ci_95_l         REAL,
	last_updated    TEXT,
	PRIMARY KEY (entity, days_infectious, date)
);
CREATE INDEX IF NOT EXISTS idx_estimates_param ON estimates (days_infectious, entity);
`

// SQLiteReader provides read access to an estimates database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	// Open in read-only mode with various pragmas for read performance
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000&_journal_mode=WAL", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA cache_size = -64000",   // 64MB cache
		"PRAGMA mmap_size = 268435456", // 256MB mmap
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("sqlite %s: %s failed: %v", source.Path, pragma, err)
		}
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadDataset reads every row of the estimates table.
func (r *SQLiteReader) LoadDataset() (*model.Dataset, error) {
	defer metrics.Timer(metrics.SQLiteRead)()

	rows, err := r.db.Query(`
		SELECT entity, date, days_infectious, r, ci_65_u, ci_65_l, ci_95_u, ci_95_l, last_updated
		FROM estimates
		ORDER BY entity, days_infectious, date
	`)
	if err != nil {
		return nil, fmt.Errorf("query estimates: %w", err)
	}
	defer rows.Close()

	ds := &model.Dataset{}
	var lastUpdated, maxDate time.Time
	for rows.Next() {
		var rec model.Record
		var date string
		var value, c65u, c65l, c95u, c95l sql.NullFloat64
		var updated sql.NullString
		if err := rows.Scan(&rec.EntityID, &date, &rec.Parameter,
			&value, &c65u, &c65l, &c95u, &c95l, &updated); err != nil {
			return nil, fmt.Errorf("scan estimate: %w", err)
		}
		rec.Date, err = parseDate(date)
		if err != nil {
			debug.Log("sqlite %s: skipping %s: %v", r.path, rec.EntityID, err)
			continue
		}
		rec.Value = nullFloat(value)
		rec.CI65Upper = nullFloat(c65u)
		rec.CI65Lower = nullFloat(c65l)
		rec.CI95Upper = nullFloat(c95u)
		rec.CI95Lower = nullFloat(c95l)
		ds.Records = append(ds.Records, rec)

		if rec.Date.After(maxDate) {
			maxDate = rec.Date
		}
		if updated.Valid {
			if t, err := parseDate(updated.String); err == nil && t.After(lastUpdated) {
				lastUpdated = t
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating estimates: %w", err)
	}

	ds.LastUpdated = lastUpdated
	if ds.LastUpdated.IsZero() {
		ds.LastUpdated = maxDate
	}
	return ds, nil
}

// CountRecords returns the number of rows in the estimates table
func (r *SQLiteReader) CountRecords() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM estimates").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func nullFloat(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func nullable(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// SQLiteWriter writes datasets into an estimates database.
type SQLiteWriter struct {
	db   *sql.DB
	path string
}

// NewSQLiteWriter opens (creating if needed) the database at path and
// ensures the estimates table exists.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if _, err := db.Exec(createEstimates); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteWriter{db: db, path: path}, nil
}

// Close closes the database connection
func (w *SQLiteWriter) Close() error {
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// Write replaces the table contents with ds in one transaction and
// returns the number of rows written.
func (w *SQLiteWriter) Write(ctx context.Context, ds *model.Dataset) (int, error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM estimates"); err != nil {
		return 0, fmt.Errorf("clear estimates: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO estimates (entity, date, days_infectious, r, ci_65_u, ci_65_l, ci_95_u, ci_95_l, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var updated any
	if ds != nil && !ds.LastUpdated.IsZero() {
		updated = ds.LastUpdated.UTC().Format("2006-01-02 15:04:05")
	}
	n := 0
	for _, r := range recordsOf(ds) {
		if _, err := stmt.ExecContext(ctx,
			r.EntityID, r.Date.Format("2006-01-02"), r.Parameter,
			nullable(r.Value), nullable(r.CI65Upper), nullable(r.CI65Lower),
			nullable(r.CI95Upper), nullable(r.CI95Lower), updated,
		); err != nil {
			return n, fmt.Errorf("insert %s %s: %w", r.EntityID, r.Date.Format("2006-01-02"), err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// ImportCSV parses the CSV at csvPath and writes it into the database at
// dbPath.
func ImportCSV(ctx context.Context, csvPath, dbPath string, warn RowWarning) (int, error) {
	ds, err := ReadCSVFile(csvPath, warn)
	if err != nil {
		return 0, err
	}
	if err := ds.Validate(); err != nil {
		return 0, fmt.Errorf("invalid dataset %s: %w", csvPath, err)
	}
	w, err := NewSQLiteWriter(dbPath)
	if err != nil {
		return 0, err
	}
	defer w.Close()
	return w.Write(ctx, ds)
}
