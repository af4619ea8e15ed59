package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"guts/internal"
	"guts/internal/config"
	"guts/internal/container"
	"guts/internal/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		err = classify(err)
		fmt.Fprintln(os.Stderr, err)
		if trace := os.Getenv("GUTS_TRACE_ERRORS"); trace != "" {
			fmt.Fprintln(os.Stderr, errors.StackTrace(err))
		}
		os.Exit(errors.ExitCode(err))
	}
}

// classify marks errors raised by cobra itself, such as unknown flags or a
// wrong argument count, as invalid input
func classify(err error) error {
	if err == nil || errors.IsAppError(err) {
		return err
	}
	return errors.WithCode(errors.CodeInvalidInput, err)
}

// rootOptions are the flags shared by every command
type rootOptions struct {
	configPath string
	logLevel   string
	pretty     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "guts",
		Short: "GUTS survival model: log-likelihood, survival probabilities and parameter sweeps",
		Long: `guts evaluates the General Unified Threshold model of Survival for an
experiment described in a YAML file.

Configuration is read from guts.yaml in the working directory (or --config),
a .env file and GUTS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Configuration file (default ./guts.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level: error|warn|info|debug|trace")
	rootCmd.PersistentFlags().BoolVar(&opts.pretty, "pretty", false, "Indent JSON output")

	rootCmd.AddCommand(
		newLoglikCmd(opts),
		newSurvivalCmd(opts),
		newSweepCmd(opts),
		newSchemaCmd(opts),
	)
	return rootCmd
}

// build loads configuration and wires the container, with the log level
// flag taking precedence over configuration
func (o *rootOptions) build() (*container.Container, error) {
	cfg, err := config.LoadFile(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	c, err := container.NewWithLogger(cfg, internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)))
	if err != nil {
		return nil, errors.Wrap(errors.InternalError(err.Error()), "failed to initialize")
	}
	return c, nil
}
