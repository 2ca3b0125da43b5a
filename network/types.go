// Package network defines the boundary types, sentinel errors and hooks
// shared by every resource-specific network implementation.
package network

import (
	"errors"
	"time"
)

// Sentinel errors for network bookkeeping.
var (
	// ErrAbsorbed indicates a network that was already merged away or split
	// took part in another topology operation. It signals corrupted
	// bookkeeping and is raised by panic, never returned.
	ErrAbsorbed = errors.New("network: network already absorbed")

	// ErrInvalidInterval indicates a tick loop was started with interval <= 0.
	ErrInvalidInterval = errors.New("network: tick interval must be positive")
)

// ID identifies one network inside a Registry. The zero value means "no network".
type ID uint64

// NoNetwork is the ID carried by transmitters that belong to no network.
const NoNetwork ID = 0

// Host is the physical conduit segment a Transmitter wraps.
// Implementations live in the host layer (for example package world).
type Host interface {
	// Valid reports false once the segment was removed or destroyed.
	Valid() bool

	// Neighbors returns the immediate physical neighbours in a stable order.
	Neighbors() []Neighbor
}

// Neighbor is one physical neighbour of a Host.
// Dir points from the host toward Node.
type Neighbor struct {
	Dir  Direction
	Node any
}

// Conduit is implemented by neighbour nodes that are themselves transmitters.
// Conduits are never acceptors.
type Conduit interface {
	Transmitter() *Transmitter
}

// Network is the resource-agnostic view of a live network, used by the
// Registry and by transmitter introspection.
type Network interface {
	ID() ID
	Size() int
	AcceptorSize() int
	Capacity() int
	NeededInfo() string
	FlowInfo() string
	StoredInfo() string

	// Tick runs one authoritative simulation step.
	Tick()

	// ClientTick runs one presentation step. It must not mutate
	// authoritative state.
	ClientTick()
}

// Recorder receives bookkeeping events. Implementations must be safe for
// concurrent use; see package metrics for the Prometheus implementation.
type Recorder interface {
	NetworkRegistered()
	NetworkDeregistered()
	Refreshed()
	Merged(inputs int)
	Split(parts int)
	Ticked(networks int, elapsed time.Duration)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) NetworkRegistered()        {}
func (NopRecorder) NetworkDeregistered()      {}
func (NopRecorder) Refreshed()                {}
func (NopRecorder) Merged(int)                {}
func (NopRecorder) Split(int)                 {}
func (NopRecorder) Ticked(int, time.Duration) {}

var _ Recorder = NopRecorder{}
