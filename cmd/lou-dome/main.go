package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chase3718/lou-dome/internal/config"
)

var version = "0.1.0"

// logger is the process-wide structured logger, replaced by initLogger once
// flags are parsed.
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault so
// the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "lou-dome",
	Short: "Drive an LED dome from MIDI controllers",
	Long: `lou-dome renders animations onto an LED dome and lets MIDI control
surfaces steer them: pads toggle palette colors, knobs set brightness and
speed, program changes pick the animation.

Without --config the built-in profile is used.

Examples:
  lou-dome run                          # built-in profile, preview on :8080
  lou-dome run -c show.yaml --debug     # custom profile, verbose logs
  lou-dome run --serial /dev/ttyUSB0    # also drive a strip controller
  lou-dome ports                        # list MIDI inputs and serial devices
  lou-dome bindings validate -c show.yaml`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "show profile (YAML)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug logging with source locations")

	rootCmd.AddCommand(runCmd, portsCmd, bindingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadProfile reads --config, or returns the built-in profile.
func loadProfile() (*config.Profile, error) {
	if flagConfig == "" {
		logger.Debug("config: using built-in profile")
		return config.Default(), nil
	}
	p, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	logger.Info("config: profile loaded", "path", flagConfig, "bindings", len(p.Bindings), "struts", len(p.Layout.Struts))
	return p, nil
}
