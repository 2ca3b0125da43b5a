package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	flagTicks       int
	flagMetricsAddr string
	flagSeed        int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run the configured scenario",
	RunE:  run,
}

func init() {
	runCmd.Flags().IntVar(&flagTicks, "ticks", -1, "authoritative ticks to run, 0 until interrupted (default from config)")
	runCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "override fluid.seed")
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagTicks >= 0 {
		cfg.Simulation.Ticks = flagTicks
	}
	if flagMetricsAddr != "" {
		cfg.Metrics.Addr = flagMetricsAddr
	}
	if cmd.Flags().Changed("seed") {
		cfg.Fluid.Seed = flagSeed
	}

	log, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	sim, err := newSimulation(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sim.Run(ctx); err != nil {
		return err
	}
	sim.Summary(cmd.OutOrStdout())
	return nil
}
