package main

import (
	// Sets CI before the first lipgloss render.
	_ "github.com/vanderheijden86/trackr/internal/ttyguard"

	"fmt"
	"os"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/pkg/config"
	"github.com/vanderheijden86/trackr/pkg/debug"
)

var (
	cfg config.Config

	configPath  string
	datasetPath string
	logLevel    string
	cpuProfile  string

	profileFile *os.File
)

var rootCmd = &cobra.Command{
	Use:   "trackr",
	Short: "Explore real-time estimates of the effective reproduction number",
	Long: "Loads daily R estimates per country, builds the interactive chart " +
		"(main lines, credible bands and decluttered end labels) and serves it " +
		"over HTTP, renders it to SVG/PNG/JSON or browses it in the terminal.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.ConfigPath()
		}
		c, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if datasetPath != "" {
			c.Dataset.Path = datasetPath
		}
		if logLevel != "" {
			c.Log.Level = logLevel
		}
		cfg = c

		if err := debug.Init(debug.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		if cpuProfile != "" {
			f, err := os.Create(cpuProfile)
			if err != nil {
				return fmt.Errorf("create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("start CPU profile: %w", err)
			}
			profileFile = f
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profileFile != nil {
			pprof.StopCPUProfile()
			_ = profileFile.Close()
			zap.L().Info("CPU profile written", zap.String("path", cpuProfile))
			profileFile = nil
		}
		debug.Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	pf.StringVar(&datasetPath, "dataset", "", "estimates file (.csv, .db or .sqlite); overrides dataset.path")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&cpuProfile, "cpu-profile", "", "write a CPU profile to this file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
