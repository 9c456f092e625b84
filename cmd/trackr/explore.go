package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/ui"
)

// EnvAutoClose quits the explorer after the given number of milliseconds.
const EnvAutoClose = "TRACKR_TUI_AUTOCLOSE_MS"

var exploreSelection selectionFlags

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Browse the chart in the terminal",
	Long: "Opens an interactive view of the selection. Arrow keys step the " +
		"days-infectious value, 6 and 9 toggle the credible tiers. The view " +
		"follows changes to the dataset file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		req, err := exploreSelection.request(cmd, datasource.BuildCatalog(store.Snapshot()))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var updates <-chan datasource.DatasetDiff
		if cfg.Dataset.Watch {
			updates = store.Subscribe(ctx)
			go func() {
				if err := store.Watch(ctx, watchOptions()...); err != nil {
					zap.L().Debug("dataset watch stopped", zap.Error(err))
				}
			}()
		}
		return runTUIProgram(ui.NewExplorer(store, req, updates))
	},
}

// runTUIProgram runs m on the alternate screen. The first SIGINT/SIGTERM
// asks the program to quit; a second one, or five seconds without exit,
// kills it.
func runTUIProgram(m tea.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	if d := autoCloseAfter(); d > 0 {
		go func() {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-runDone:
				return
			case <-timer.C:
			}

			p.Quit()

			select {
			case <-runDone:
				return
			case <-time.After(2 * time.Second):
			}

			p.Kill()
		}()
	}

	_, err := p.Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}

func autoCloseAfter() time.Duration {
	v := os.Getenv(EnvAutoClose)
	if v == "" {
		return 0
	}
	ms, err := strconv.Atoi(v)
	if err != nil || ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func init() {
	exploreSelection.register(exploreCmd)
	rootCmd.AddCommand(exploreCmd)
}
