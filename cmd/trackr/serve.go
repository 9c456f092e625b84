package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/server"
)

var (
	serveAddr    string
	serveNoWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chart API and image endpoints over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := openStore()
		if err != nil {
			return err
		}

		if cfg.Dataset.Watch && !serveNoWatch {
			go func() {
				if err := store.Watch(ctx, watchOptions()...); err != nil && !errors.Is(err, context.Canceled) {
					zap.L().Warn("dataset watch stopped", zap.Error(err))
				}
			}()
			go logReloads(ctx, store)
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		srv := server.New(store,
			server.WithLogger(zap.L()),
			server.WithOptions(server.Options{
				CORSOrigins:  cfg.Server.CORSOrigins,
				Width:        cfg.Render.Width,
				Height:       cfg.Render.Height,
				Title:        cfg.Render.Title,
				ReadTimeout:  cfg.Server.ReadTimeout,
				WriteTimeout: cfg.Server.WriteTimeout,
			}),
		)
		return srv.Run(ctx, addr)
	},
}

// logReloads reports each dataset reload until ctx is done.
func logReloads(ctx context.Context, store *datasource.Store) {
	for diff := range store.Subscribe(ctx) {
		if !diff.HasChanges() {
			continue
		}
		zap.L().Info("dataset reloaded",
			zap.Int("added_entities", len(diff.AddedEntities)),
			zap.Int("removed_entities", len(diff.RemovedEntities)),
			zap.Int("changed_values", len(diff.ChangedValues)),
		)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8050)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "do not reload the dataset when the file changes")
	rootCmd.AddCommand(serveCmd)
}
