package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/export"
)

var (
	renderSelection selectionFlags
	renderOutputs   []string
	renderFormat    string
	renderWidth     int
	renderHeight    int
	renderTitle     string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the chart to SVG, PNG or JSON",
	Long: "Builds the chart for the selection and writes it to each --output. " +
		"The format follows the file extension unless --format is set. " +
		"Without --output the chart is written to stdout.",
	Example: "  trackr render -e Germany -e Italy -d 7 -o chart.svg -o chart.png",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		ds := store.Snapshot()
		req, err := renderSelection.request(cmd, datasource.BuildCatalog(ds))
		if err != nil {
			return err
		}
		spec := chart.NewAssembler().Build(ds, req)
		if spec.Notice != "" {
			zap.L().Warn(spec.Notice, zap.Int("days_infectious", req.Parameter))
		}

		base := export.ChartOptions{
			Format: renderFormat,
			Title:  renderTitle,
			Width:  renderWidth,
			Height: renderHeight,
			Spec:   spec,
		}
		if base.Format == "" && len(renderOutputs) == 0 {
			base.Format = cfg.Render.Format
		}
		if base.Title == "" {
			base.Title = cfg.Render.Title
		}
		if base.Width == 0 {
			base.Width = cfg.Render.Width
		}
		if base.Height == 0 {
			base.Height = cfg.Render.Height
		}

		if len(renderOutputs) == 0 {
			return export.Render(cmd.OutOrStdout(), base)
		}

		var g errgroup.Group
		for _, path := range renderOutputs {
			opts := base
			opts.Path = path
			g.Go(func() error {
				if err := export.SaveChart(opts); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				zap.L().Info("chart written", zap.String("path", path))
				return nil
			})
		}
		return g.Wait()
	},
}

func init() {
	renderSelection.register(renderCmd)
	f := renderCmd.Flags()
	f.StringArrayVarP(&renderOutputs, "output", "o", nil, "output file (repeatable)")
	f.StringVarP(&renderFormat, "format", "f", "", "svg, png or json (default from extension)")
	f.IntVar(&renderWidth, "width", 0, "image width in pixels")
	f.IntVar(&renderHeight, "height", 0, "image height in pixels")
	f.StringVar(&renderTitle, "title", "", "chart title")
	rootCmd.AddCommand(renderCmd)
}
