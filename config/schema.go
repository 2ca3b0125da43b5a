package config

import (
	"fmt"
	"time"

	"github.com/katalvlaran/pipegrid/fluid"
)

// Config is the root configuration of a simulation run.
type Config struct {
	Fluid      FluidConfig      `yaml:"fluid"`
	Simulation SimulationConfig `yaml:"simulation"`
	Log        LogConfig        `yaml:"log"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Scenario   ScenarioConfig   `yaml:"scenario"`
}

// FluidConfig tunes every fluid network.
type FluidConfig struct {
	UnitCapacity int     `yaml:"unit_capacity"`
	HoldTicks    *int    `yaml:"hold_ticks,omitempty"` // nil selects the default
	ScaleStep    float32 `yaml:"scale_step"`
	Seed         int64   `yaml:"seed"` // 0 selects the fixed default seed
}

// SimulationConfig sets the loop cadence.
type SimulationConfig struct {
	TickInterval       Duration `yaml:"tick_interval"`
	ClientTickInterval Duration `yaml:"client_tick_interval"`
	Ticks              int      `yaml:"ticks"` // 0 runs until interrupted
}

// LogConfig selects the log level and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // empty disables the endpoint
}

// ScenarioConfig describes the world to build.
type ScenarioConfig struct {
	Layout       []string       `yaml:"layout"`
	TankCapacity int            `yaml:"tank_capacity"`
	Sources      []SourceConfig `yaml:"sources,omitempty"`
}

// SourceConfig places one fluid source.
type SourceConfig struct {
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Z         int    `yaml:"z"`
	FluidID   int    `yaml:"fluid_id"`
	FluidName string `yaml:"fluid_name,omitempty"`
	Rate      int    `yaml:"rate"` // mB offered per tick
}

// Fluid returns the source's fluid kind.
func (s SourceConfig) Fluid() fluid.Fluid { return fluid.Fluid{ID: s.FluidID, Name: s.FluidName} }

// Duration is a time.Duration written in YAML as a Go duration string
// such as "50ms".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes d in time.Duration.String form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
