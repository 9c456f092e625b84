package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/export"
)

var (
	specSelection selectionFlags
	specCopy      bool
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Print the chart description as JSON",
	Long: "Prints the layers, annotations and axes of the chart for the " +
		"selection. Missing values are written as null.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		ds := store.Snapshot()
		req, err := specSelection.request(cmd, datasource.BuildCatalog(ds))
		if err != nil {
			return err
		}
		data, err := export.MarshalSpec(chart.NewAssembler().Build(ds, req))
		if err != nil {
			return err
		}

		if specCopy {
			if err := clipboard.WriteAll(string(data)); err != nil {
				return fmt.Errorf("copy to clipboard: %w", err)
			}
			zap.L().Info("chart description copied to clipboard", zap.Int("bytes", len(data)))
			return nil
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	specSelection.register(specCmd)
	specCmd.Flags().BoolVar(&specCopy, "copy", false, "copy the JSON to the clipboard instead of printing it")
	rootCmd.AddCommand(specCmd)
}
