// Package world defines positions, options and sentinel errors for the
// block grid.
package world

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/network"
)

// Sentinel errors for world edits and layout parsing.
var (
	// ErrOccupied indicates a block already sits at the position.
	ErrOccupied = errors.New("world: position occupied")
	// ErrNoBlock indicates the position is empty.
	ErrNoBlock = errors.New("world: no block at position")
	// ErrNotPipe indicates a pipe-only edit targeted another block.
	ErrNotPipe = errors.New("world: block is not a pipe")
	// ErrEmptyLayout indicates a layout without rows or columns.
	ErrEmptyLayout = errors.New("world: layout must have at least one row and one column")
	// ErrNonRectangular indicates layout rows of differing lengths.
	ErrNonRectangular = errors.New("world: all layout rows must have the same length")
	// ErrUnknownGlyph indicates a layout character outside the legend.
	ErrUnknownGlyph = errors.New("world: unknown layout glyph")
)

// DefaultTankCapacity is the capacity of tanks placed by FromLayout (mB).
const DefaultTankCapacity = 16000

// Pos is a block position.
type Pos struct {
	X, Y, Z int
}

// Offset returns the neighbouring position in direction d. An invalid
// direction returns p unchanged.
func (p Pos) Offset(d network.Direction) Pos {
	dx, dy, dz := d.Offset()
	return Pos{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

// Option configures a World.
type Option func(*World)

// WithLogger sets the world logger.
func WithLogger(log zerolog.Logger) Option {
	return func(w *World) { w.log = log.With().Str("component", "world").Logger() }
}

// WithFluidConfig sets the tuning of every network the world creates.
func WithFluidConfig(cfg fluid.Config) Option {
	return func(w *World) {
		if cfg.UnitCapacity > 0 {
			w.unit = cfg.UnitCapacity
		}
		w.fopts = append(w.fopts, fluid.WithConfig(cfg))
	}
}

// WithFluidOptions passes extra options to every network the world creates.
func WithFluidOptions(opts ...fluid.Option) Option {
	return func(w *World) { w.fopts = append(w.fopts, opts...) }
}

// WithTankCapacity sets the capacity of tanks placed by FromLayout.
// Non-positive values keep DefaultTankCapacity.
func WithTankCapacity(capacity int) Option {
	return func(w *World) {
		if capacity > 0 {
			w.tankCap = capacity
		}
	}
}
