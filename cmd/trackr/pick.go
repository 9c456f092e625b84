package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/export"
	"github.com/vanderheijden86/trackr/pkg/ui"
)

var (
	pickSelection selectionFlags
	pickOutput    string
	pickExplore   bool
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose entities, days and bounds with an interactive form",
	Long: "Asks for the selection, then prints it as JSON, renders it to " +
		"--output or opens it in the explorer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		cat := datasource.BuildCatalog(store.Snapshot())
		initial, err := pickSelection.request(cmd, cat)
		if err != nil {
			return err
		}
		req, err := ui.NewPicker(cat, initial).Run()
		if err != nil {
			return err
		}

		switch {
		case pickExplore:
			return runTUIProgram(ui.NewExplorer(store, req, nil))
		case pickOutput != "":
			return export.SaveChart(export.ChartOptions{
				Path:   pickOutput,
				Title:  cfg.Render.Title,
				Width:  cfg.Render.Width,
				Height: cfg.Render.Height,
				Spec:   chart.NewAssembler().Build(store.Snapshot(), req),
			})
		}
		data, err := json.MarshalIndent(req, "", "  ")
		if err != nil {
			return fmt.Errorf("encode selection: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

func init() {
	pickSelection.register(pickCmd)
	pickCmd.Flags().StringVarP(&pickOutput, "output", "o", "", "render the chosen chart to this file")
	pickCmd.Flags().BoolVar(&pickExplore, "explore", false, "open the chosen chart in the explorer")
	pickCmd.MarkFlagsMutuallyExclusive("output", "explore")
	rootCmd.AddCommand(pickCmd)
}
