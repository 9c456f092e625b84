package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/trackr/internal/datasource"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Print the selectable entities and days-infectious values",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(datasource.BuildCatalog(store.Snapshot()), "", "  ")
		if err != nil {
			return fmt.Errorf("encode options: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}
