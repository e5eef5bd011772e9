package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harunnryd/chime/pkg/chime"
	"github.com/harunnryd/chime/pkg/logging"
)

var (
	version   = "dev"
	gitCommit string
)

var (
	flagConfig   string
	flagLogLevel string
	flagVerbose  bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chime",
		Short:         "Audible notifications for terminal coding agents",
		Version:       formatVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (overrides discovery)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Shorthand for --log-level debug")

	root.AddCommand(
		newNotifyCmd(),
		newSystemInfoCmd(),
		newModelsCmd(),
		newTestTTSCmd(),
		newConfigCmd(),
		newVoicepackCmd(),
	)
	return root
}

func formatVersion() string {
	if gitCommit != "" {
		return fmt.Sprintf("%s (git: %s)", version, gitCommit)
	}
	return version
}

// loadConfig applies the --config and --log-level flags and initializes
// logging before any command runs.
func loadConfig() (chime.Config, error) {
	cfg, err := chime.LoadConfig(flagConfig)
	if err != nil {
		return chime.Config{}, err
	}
	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagVerbose {
		level = "debug"
	}
	logging.InitLogger(logging.ParseLevel(level))
	return cfg, nil
}
