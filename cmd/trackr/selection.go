package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/model"
	"github.com/vanderheijden86/trackr/pkg/watcher"
)

// selectionFlags are the chart query flags shared by render, spec, pick
// and explore.
type selectionFlags struct {
	entities []string
	days     int
	bounds   []string
}

func (s *selectionFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringArrayVarP(&s.entities, "entity", "e", nil, "country or region to plot (repeatable, order sets colors)")
	f.IntVarP(&s.days, "days", "d", 0, "days infectious (default from config, then the dataset)")
	f.StringSliceVarP(&s.bounds, "bounds", "b", nil, "credible tiers to shade: q65, q95 (empty for none)")
}

// request resolves the flags against the config defaults and the dataset
// catalog, in that order.
func (s *selectionFlags) request(cmd *cobra.Command, cat datasource.Catalog) (chart.Request, error) {
	req := chart.Request{Selection: s.entities, Parameter: s.days}

	if len(req.Selection) == 0 {
		req.Selection = cfg.Defaults.Entities
	}
	if len(req.Selection) == 0 {
		req.Selection = cat.DefaultSelection
	}
	req.Selection = model.NormalizeSelection(req.Selection)

	if req.Parameter == 0 {
		req.Parameter = cfg.Defaults.DaysInfectious
	}
	if req.Parameter == 0 {
		req.Parameter = cat.DefaultParameter
	}

	var err error
	if cmd.Flags().Changed("bounds") {
		req.Bounds, err = model.ParseBounds(s.bounds)
	} else {
		req.Bounds, err = cfg.Defaults.ParsedBounds()
	}
	if err != nil {
		return chart.Request{}, fmt.Errorf("bounds: %w", err)
	}
	return req, nil
}

// openStore loads the configured dataset.
func openStore() (*datasource.Store, error) {
	if cfg.Dataset.Path == "" {
		return nil, fmt.Errorf("no dataset configured (use --dataset or dataset.path)")
	}
	store, err := datasource.OpenStore(cfg.Dataset.Path, datasource.WithLogger(zap.L()))
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return store, nil
}

func watchOptions() []watcher.Option {
	var opts []watcher.Option
	if cfg.Dataset.PollInterval > 0 {
		opts = append(opts, watcher.WithPollInterval(cfg.Dataset.PollInterval))
	}
	return opts
}
