package main

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/trackr/internal/datasource"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Describe R per days-infectious value",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		rows := datasource.Summarize(store.Snapshot())
		if summaryJSON {
			data, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}
		return writeSummaryTable(cmd.OutOrStdout(), rows)
	},
}

func writeSummaryTable(w io.Writer, rows []datasource.ParameterSummary) error {
	if _, err := fmt.Fprintf(w, "%4s %8s %7s %7s %7s %7s %7s %7s %7s\n",
		"Days", "Entities", "Count", "Missing", "Mean", "StdDev", "Min", "Median", "Max"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "%4d %8d %7d %7d %7.2f %7.2f %7.2f %7.2f %7.2f\n",
			r.Parameter, r.Entities, r.Count, r.Missing, r.Mean, r.StdDev, r.Min, r.Median, r.Max); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print JSON instead of a table")
	rootCmd.AddCommand(summaryCmd)
}
