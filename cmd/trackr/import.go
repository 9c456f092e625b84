package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/config"
)

var (
	importCSV string
	importDB  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an estimates CSV into a SQLite database",
	Long: "Parses the CSV (skipping malformed rows with a warning) and writes " +
		"the records into the estimates table of a SQLite file, replacing " +
		"its previous contents.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := importDB
		if dbPath == "" {
			dbPath = config.DefaultDatabasePath()
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
		warn := func(line int, err error) {
			zap.L().Warn("skipping row", zap.Int("line", line), zap.Error(err))
		}
		n, err := datasource.ImportCSV(cmd.Context(), importCSV, dbPath, warn)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		zap.L().Info("import complete", zap.String("db", dbPath), zap.Int("records", n))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s\n", n, dbPath)
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSV, "csv", "", "estimates CSV to import")
	importCmd.Flags().StringVar(&importDB, "db", "", "target SQLite file (default "+config.DefaultDatabasePath()+")")
	_ = importCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(importCmd)
}
