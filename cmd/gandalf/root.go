package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kolobosdimitrios/GANDALF/internal/config"
	"github.com/kolobosdimitrios/GANDALF/internal/verbose"
)

const (
	appName    = "gandalf"
	appVersion = "0.3.0"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Turn free-text task requests into structured task contracts",
		Long: `gandalf runs a staged clarification pipeline over a free-text task
request: lexical extraction, semantic framing, coverage audit, and
contract generation. Gaps become explicit questions instead of silent
guesses, and the output is a bounded task contract a downstream worker
can execute.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to config file (YAML)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "show stage progress")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newPlanCmd(opts))
	cmd.AddCommand(newListCmd(opts))

	return cmd
}

// loadConfig loads the config and installs the console logger. The
// verbose flag lowers the level to debug regardless of config.
func loadConfig(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	level := verbose.ParseLevel(cfg.Logging.Level)
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(verbose.NewHandler(os.Stderr, level))
	slog.SetDefault(logger)

	return cfg, logger, nil
}
