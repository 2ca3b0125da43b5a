package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pipegrid/config"
	"github.com/katalvlaran/pipegrid/fluid"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, fluid.DefaultConfig(), cfg.FluidSettings())
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.TickInterval.Duration())
	assert.Equal(t, 200, cfg.Simulation.Ticks)
	assert.NotEmpty(t, cfg.Scenario.Layout)
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
fluid:
  seed: 7
simulation:
  tick_interval: 10ms
  ticks: 0
scenario:
  layout:
    - "==T"
`))
	require.NoError(t, err)

	assert.Equal(t, int64(7), cfg.Fluid.Seed)
	assert.Equal(t, fluid.PipeUnitCapacity, cfg.Fluid.UnitCapacity)
	assert.Equal(t, 10*time.Millisecond, cfg.Simulation.TickInterval.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Simulation.ClientTickInterval.Duration())
	assert.Zero(t, cfg.Simulation.Ticks, "0 means run until interrupted")
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"==T"}, cfg.Scenario.Layout)
	assert.Empty(t, cfg.Scenario.Sources, "a custom layout brings its own sources")
	assert.Equal(t, 16000, cfg.Scenario.TankCapacity)
}

func TestParse_ZeroHoldTicksIsKept(t *testing.T) {
	cfg, err := config.Parse([]byte("fluid:\n  hold_ticks: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.FluidSettings().HoldTicks)
}

func TestParse_Sources(t *testing.T) {
	cfg, err := config.Parse([]byte(`
scenario:
  layout: ["=T"]
  sources:
    - {x: 0, y: 0, z: 1, fluid_id: 2, fluid_name: lava, rate: 40}
`))
	require.NoError(t, err)
	require.Len(t, cfg.Scenario.Sources, 1)
	s := cfg.Scenario.Sources[0]
	assert.Equal(t, fluid.Lava, s.Fluid())
	assert.Equal(t, 40, s.Rate)
	assert.Equal(t, 1, s.Z)
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := config.Parse([]byte("fluid: [unclosed"))
	assert.Error(t, err)

	_, err = config.Parse([]byte("simulation:\n  tick_interval: soon\n"))
	assert.ErrorContains(t, err, `duration "soon"`)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	hold := -1
	cfg := config.Default()
	cfg.Fluid.UnitCapacity = -1
	cfg.Fluid.HoldTicks = &hold
	cfg.Fluid.ScaleStep = 2
	cfg.Simulation.Ticks = -3
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Scenario.Sources[0].Rate = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalid)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 7)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pipegrid.yaml")
	cfg := config.Default()
	cfg.Simulation.TickInterval = config.Duration(20 * time.Millisecond)
	cfg.Metrics.Addr = ":9090"
	require.NoError(t, cfg.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tick_interval: 20ms")

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
