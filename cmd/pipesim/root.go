package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/pipegrid/config"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:           "pipesim",
	Short:         "simulate fluid moving through pipe networks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to the YAML configuration (built-in scenario when empty)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log.level")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "override log.format (json or console)")

	rootCmd.AddCommand(runCmd, initConfigCmd)
}

// loadConfig reads --config and applies the persistent flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		cfg.Log.Format = flagLogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config <path>",
	Short: "write the built-in scenario as a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Default().Save(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}
