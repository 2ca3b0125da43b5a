// Package config loads and validates the YAML configuration of a pipegrid
// simulation run.
//
// A missing path yields Default(). Loaded files are completed with
// defaults for every zero field and then validated; Validate reports every
// problem at once.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/world"
)

// Sentinel errors for configuration problems.
var (
	// ErrInvalid wraps every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")
)

// Defaults.
const (
	DefaultTickInterval = 50 * time.Millisecond
	DefaultTicks        = 200
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "json"
)

// Default returns the configuration used when no file is given: a short
// pipe run between a source and a tank.
func Default() *Config {
	hold := fluid.DefaultConfig().HoldTicks
	return &Config{
		Fluid: FluidConfig{
			UnitCapacity: fluid.PipeUnitCapacity,
			HoldTicks:    &hold,
			ScaleStep:    fluid.DefaultConfig().ScaleStep,
		},
		Simulation: SimulationConfig{
			TickInterval:       Duration(DefaultTickInterval),
			ClientTickInterval: Duration(DefaultTickInterval),
			Ticks:              DefaultTicks,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Scenario: ScenarioConfig{
			Layout:       []string{"=====T"},
			TankCapacity: world.DefaultTankCapacity,
			Sources: []SourceConfig{
				{X: 0, Y: 0, Z: 1, FluidID: fluid.Water.ID, FluidName: fluid.Water.Name, Rate: 100},
			},
		},
	}
}

// Load reads path, or returns Default() when path is empty.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFromPath(path)
}

// LoadFromPath reads, completes and validates the file at path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes c to path as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	def := Default()
	if c.Fluid.UnitCapacity == 0 {
		c.Fluid.UnitCapacity = def.Fluid.UnitCapacity
	}
	if c.Fluid.HoldTicks == nil {
		c.Fluid.HoldTicks = def.Fluid.HoldTicks
	}
	if c.Fluid.ScaleStep == 0 {
		c.Fluid.ScaleStep = def.Fluid.ScaleStep
	}
	if c.Simulation.TickInterval == 0 {
		c.Simulation.TickInterval = def.Simulation.TickInterval
	}
	if c.Simulation.ClientTickInterval == 0 {
		c.Simulation.ClientTickInterval = def.Simulation.ClientTickInterval
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if len(c.Scenario.Layout) == 0 {
		c.Scenario.Layout = def.Scenario.Layout
		if c.Scenario.Sources == nil {
			c.Scenario.Sources = def.Scenario.Sources
		}
	}
	if c.Scenario.TankCapacity == 0 {
		c.Scenario.TankCapacity = def.Scenario.TankCapacity
	}
}

// Validate checks every field and returns all problems joined, each
// wrapping ErrInvalid.
func (c *Config) Validate() error {
	var result *multierror.Error
	bad := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Fluid.UnitCapacity < 0 {
		bad("fluid.unit_capacity must be positive, got %d", c.Fluid.UnitCapacity)
	}
	if c.Fluid.HoldTicks != nil && *c.Fluid.HoldTicks < 0 {
		bad("fluid.hold_ticks must not be negative, got %d", *c.Fluid.HoldTicks)
	}
	if c.Fluid.ScaleStep < 0 || c.Fluid.ScaleStep > 1 {
		bad("fluid.scale_step must be in (0, 1], got %g", c.Fluid.ScaleStep)
	}
	if c.Simulation.TickInterval < 0 {
		bad("simulation.tick_interval must be positive, got %s", c.Simulation.TickInterval.Duration())
	}
	if c.Simulation.ClientTickInterval < 0 {
		bad("simulation.client_tick_interval must be positive, got %s", c.Simulation.ClientTickInterval.Duration())
	}
	if c.Simulation.Ticks < 0 {
		bad("simulation.ticks must not be negative, got %d", c.Simulation.Ticks)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		bad("log.level %q is not a known level", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		bad("log.format %q must be json or console", c.Log.Format)
	}
	if c.Scenario.TankCapacity < 0 {
		bad("scenario.tank_capacity must not be negative, got %d", c.Scenario.TankCapacity)
	}
	for i, s := range c.Scenario.Sources {
		if s.Rate <= 0 {
			bad("scenario.sources[%d].rate must be positive, got %d", i, s.Rate)
		}
		if s.FluidID < 0 {
			bad("scenario.sources[%d].fluid_id must not be negative, got %d", i, s.FluidID)
		}
	}
	return result.ErrorOrNil()
}

// FluidSettings converts the fluid section to network tuning.
func (c *Config) FluidSettings() fluid.Config {
	cfg := fluid.Config{
		UnitCapacity: c.Fluid.UnitCapacity,
		HoldTicks:    fluid.DefaultConfig().HoldTicks,
		ScaleStep:    c.Fluid.ScaleStep,
	}
	if c.Fluid.HoldTicks != nil {
		cfg.HoldTicks = *c.Fluid.HoldTicks
	}
	return cfg
}
