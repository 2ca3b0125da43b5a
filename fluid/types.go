// Package fluid defines fluid kinds, stacks, tuning, sides and hooks.
package fluid

import (
	"fmt"

	"github.com/katalvlaran/pipegrid/network"
)

// PipeUnitCapacity is the default amount (mB) one pipe segment contributes
// to its network's capacity.
const PipeUnitCapacity = 1000

// NoFluid is the fluid ID carried by a TransferEvent without a reference fluid.
const NoFluid = -1

// Fluid identifies a fluid kind. Kinds compare by ID.
type Fluid struct {
	ID   int
	Name string
}

// Built-in kinds used by the CLI scenarios and tests.
var (
	Water = Fluid{ID: 1, Name: "water"}
	Lava  = Fluid{ID: 2, Name: "lava"}
)

// Is reports whether f and o are the same kind.
func (f Fluid) Is(o Fluid) bool { return f.ID == o.ID }

func (f Fluid) String() string {
	if f.Name == "" {
		return fmt.Sprintf("fluid#%d", f.ID)
	}
	return f.Name
}

// Stack is an amount of one fluid kind, in mB.
type Stack struct {
	Fluid  Fluid
	Amount int
}

// NewStack builds a stack of amount mB of f.
func NewStack(f Fluid, amount int) Stack { return Stack{Fluid: f, Amount: amount} }

// IsEmpty reports whether the stack carries nothing.
func (s Stack) IsEmpty() bool { return s.Amount <= 0 }

// SameKind reports whether s and o hold the same fluid.
func (s Stack) SameKind(o Stack) bool { return s.Fluid.Is(o.Fluid) }

// WithAmount returns a stack of the same kind with a different amount.
func (s Stack) WithAmount(amount int) Stack { return Stack{Fluid: s.Fluid, Amount: amount} }

func (s Stack) String() string { return fmt.Sprintf("%d mB of %s", s.Amount, s.Fluid) }

// Acceptor is the capability an external tank or machine exposes to a
// network. from is the side of the acceptor facing the network.
type Acceptor interface {
	// CanFill reports whether the acceptor takes f through side from right now.
	CanFill(from network.Direction, f Fluid) bool

	// Fill offers s through side from and returns how much was (or, when
	// commit is false, would be) taken.
	Fill(from network.Direction, s Stack, commit bool) int
}

// Side selects which half of the state machine a network runs.
type Side int

const (
	// Authoritative runs the simulation tick and arms the transfer indicator.
	Authoritative Side = iota
	// Presentation only interpolates the display scale.
	Presentation
)

func (s Side) String() string {
	if s == Presentation {
		return "presentation"
	}
	return "authoritative"
}

// Config holds the per-network tuning.
type Config struct {
	// UnitCapacity is the capacity contributed by each transmitter (mB).
	UnitCapacity int
	// HoldTicks is how many ticks the transfer indicator stays on after a send.
	HoldTicks int
	// ScaleStep is the per-client-tick change of the display scale.
	ScaleStep float32
}

// DefaultConfig returns UnitCapacity=1000, HoldTicks=2, ScaleStep=0.02.
func DefaultConfig() Config {
	return Config{
		UnitCapacity: PipeUnitCapacity,
		HoldTicks:    2,
		ScaleStep:    0.02,
	}
}

// Recorder receives fluid movement events; see package metrics.
type Recorder interface {
	// Intake is called when Emit commits fluid into a network.
	Intake(amount int)
	// Delivered is called when TickEmit commits fluid into acceptors.
	Delivered(amount int)
	// Discarded is called when fluid is dropped by a merge kind conflict
	// or a capacity shrink.
	Discarded(amount int)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Intake(int)    {}
func (NopRecorder) Delivered(int) {}
func (NopRecorder) Discarded(int) {}

var _ Recorder = NopRecorder{}
