package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pipegrid/config"
)

func fastConfig(ticks int) *config.Config {
	cfg := config.Default()
	cfg.Simulation.TickInterval = config.Duration(time.Millisecond)
	cfg.Simulation.ClientTickInterval = config.Duration(time.Millisecond)
	cfg.Simulation.Ticks = ticks
	cfg.Log.Level = "disabled"
	return cfg
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, config.LogConfig{Level: "INFO", Format: "json"})
	require.NoError(t, err)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"app":"pipesim"`)

	buf.Reset()
	log, err = newLogger(&buf, config.LogConfig{Level: "warn", Format: "console"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
	log.Warn().Msg("careful")
	assert.Contains(t, buf.String(), "careful")
	assert.NotContains(t, buf.String(), "{")

	_, err = newLogger(&buf, config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestSimulation_StopsAfterTickBudget(t *testing.T) {
	sim, err := newSimulation(fastConfig(5), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, sim.Run(ctx))
	require.NoError(t, ctx.Err(), "the budget ends the run, not the timeout")

	var out bytes.Buffer
	sim.Summary(&out)
	assert.Contains(t, out.String(), "ticks: 5\n")
	assert.Contains(t, out.String(), "[FluidNetwork] 5 transmitters, 1 acceptors.")
	assert.Contains(t, out.String(), "tank (5,0,0): 500/16000 mB")

	assert.Equal(t, 500.0, testutil.ToFloat64(sim.metrics.FluidIntake))
	assert.Equal(t, 500.0, testutil.ToFloat64(sim.metrics.FluidDelivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(sim.metrics.NetworksLive))
}

func TestSimulation_RunsUntilCancelled(t *testing.T) {
	sim, err := newSimulation(fastConfig(0), zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, sim.Run(ctx))
	assert.Positive(t, sim.world.Registry().Ticks())
}

func TestSimulation_RejectsBadScenario(t *testing.T) {
	cfg := fastConfig(1)
	cfg.Scenario.Layout = []string{"=x="}
	_, err := newSimulation(cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg = fastConfig(1)
	cfg.Scenario.Sources[0].X = 1
	cfg.Scenario.Sources[0].Z = 0
	_, err = newSimulation(cfg, zerolog.Nop())
	assert.Error(t, err, "a source cannot share a block with a pipe")
}

func TestCommands_InitConfigThenRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, fastConfig(0).Save(path))

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		flagConfig, flagTicks, flagLogLevel = "", -1, ""
	})

	rootCmd.SetArgs([]string{"run", "--config", path, "--ticks", "3", "--log-level", "error"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "ticks: 3\n")
	assert.Contains(t, out.String(), "tank (5,0,0): 300/16000 mB")

	out.Reset()
	written := filepath.Join(t.TempDir(), "default.yaml")
	rootCmd.SetArgs([]string{"init-config", written})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "wrote "+written)

	cfg, err := config.Load(written)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestCommands_RejectInvalidOverride(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		flagLogFormat = ""
	})

	rootCmd.SetArgs([]string{"run", "--log-format", "xml"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
