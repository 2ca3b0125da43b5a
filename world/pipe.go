package world

import (
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/network"
)

// Pipe is one conduit segment. It is the Host of its Transmitter.
type Pipe struct {
	w       *World
	pos     Pos
	t       *network.Transmitter
	removed atomic.Bool
}

var (
	_ network.Host    = (*Pipe)(nil)
	_ network.Conduit = (*Pipe)(nil)
)

// Pos returns the pipe position.
func (p *Pipe) Pos() Pos { return p.pos }

// Valid reports false once the pipe was removed.
func (p *Pipe) Valid() bool { return !p.removed.Load() }

// Neighbors returns the blocks around the pipe in Directions order.
func (p *Pipe) Neighbors() []network.Neighbor { return p.w.adjacent(p.pos) }

// Transmitter returns the pipe's network handle.
func (p *Pipe) Transmitter() *network.Transmitter { return p.t }

// Network returns the live fluid network the pipe belongs to.
func (p *Pipe) Network() (*fluid.Network, bool) {
	n, ok := p.t.Network()
	if !ok {
		return nil, false
	}
	fn, ok := n.(*fluid.Network)
	return fn, ok
}

// Source is a block that feeds a fixed stack into its adjacent networks
// once per tick.
type Source struct {
	mu    sync.Mutex
	pos   Pos
	stack fluid.Stack
}

// Pos returns the source position.
func (s *Source) Pos() Pos { return s.pos }

// Stack returns the stack offered each tick.
func (s *Source) Stack() fluid.Stack {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack
}

// SetStack changes the stack offered each tick.
func (s *Source) SetStack(st fluid.Stack) {
	s.mu.Lock()
	s.stack = st
	s.mu.Unlock()
}
