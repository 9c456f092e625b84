//go:build ignore

// generate_testdata.go creates synthetic estimate files for benchmarking
// and manual testing.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/datasets/small.csv   (5 entities, 30 days)
//	testdata/datasets/medium.csv  (50 entities, 180 days)
//	testdata/datasets/large.csv   (200 entities, 365 days)
//	testdata/datasets/large.db    (same records as large.csv)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/testutil"
)

type datasetSpec struct {
	name     string
	entities int
	days     int
}

var datasets = []datasetSpec{
	{"small", 5, 30},
	{"medium", 50, 180},
	{"large", 200, 365},
}

func main() {
	outputDir := "testdata/datasets"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	var last string
	for _, spec := range datasets {
		fmt.Printf("Generating %s dataset (%d entities x %d days)...\n", spec.name, spec.entities, spec.days)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(spec.entities*1000 + spec.days) // reproducible per size
		cfg.Entities = testutil.EntityNames(spec.entities)
		cfg.Days = spec.days
		ds := testutil.New(cfg).Dataset()

		outputPath := filepath.Join(outputDir, spec.name+".csv")
		f, err := os.Create(outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		if err := datasource.WriteCSV(f, ds); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		if err := f.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close %s: %v\n", outputPath, err)
			os.Exit(1)
		}
		fmt.Printf("  Written %s (%d records)\n", outputPath, len(ds.Records))
		last = outputPath
	}

	dbPath := filepath.Join(outputDir, "large.db")
	_ = os.Remove(dbPath)
	n, err := datasource.ImportCSV(context.Background(), last, dbPath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to import %s: %v\n", last, err)
		os.Exit(1)
	}
	fmt.Printf("  Written %s (%d records)\n", dbPath, n)

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
