package fluid_test

import (
	"sync"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/network"
)

// pipe is a Host + Conduit for tests; neighbours are wired by hand.
type pipe struct {
	valid     bool
	neighbors []network.Neighbor
	t         *network.Transmitter
}

func (p *pipe) Valid() bool                       { return p.valid }
func (p *pipe) Neighbors() []network.Neighbor     { return p.neighbors }
func (p *pipe) Transmitter() *network.Transmitter { return p.t }
func (p *pipe) attach(d network.Direction, v any) { p.neighbors = append(p.neighbors, network.Neighbor{Dir: d, Node: v}) }

func newPipe(reg *network.Registry) *pipe {
	p := &pipe{valid: true}
	p.t = network.NewTransmitter(p, reg, fluid.PipeUnitCapacity)
	return p
}

// chain builds n pipes connected West -> East.
func chain(reg *network.Registry, n int) []*pipe {
	ps := make([]*pipe, n)
	for i := range ps {
		ps[i] = newPipe(reg)
		if i > 0 {
			ps[i-1].attach(network.East, ps[i])
			ps[i].attach(network.West, ps[i-1])
		}
	}
	return ps
}

func members(ps []*pipe) []*network.Transmitter {
	out := make([]*network.Transmitter, len(ps))
	for i, p := range ps {
		out[i] = p.t
	}
	return out
}

// build creates a registered network over ps and refreshes it.
func build(reg *network.Registry, ps []*pipe, opts ...fluid.Option) *fluid.Network {
	n := fluid.New(reg, opts...)
	n.AddTransmitters(members(ps)...)
	n.Refresh()
	return n
}

// withTank builds a one-pipe network with a large tank to the east.
func withTank(reg *network.Registry, opts ...fluid.Option) (*fluid.Network, *fluid.Tank) {
	ps := chain(reg, 1)
	tank := fluid.NewTank(16000)
	ps[0].attach(network.East, tank)
	return build(reg, ps, opts...), tank
}

// transferring returns a network that just sent f and ramped its display
// scale for steps client ticks.
func transferring(reg *network.Registry, f fluid.Fluid, steps int) *fluid.Network {
	n, _ := withTank(reg)
	n.Emit(fluid.NewStack(f, 100), true)
	n.Tick()
	for i := 0; i < steps; i++ {
		n.ClientTick()
	}
	return n
}

// probe is an acceptor that records the side it was filled through and
// takes whatever it is offered.
type probe struct {
	mu     sync.Mutex
	refuse bool
	over   int // extra amount reported on top of the offer
	sides  []network.Direction
	got    int
}

func (p *probe) CanFill(network.Direction, fluid.Fluid) bool { return !p.refuse }

func (p *probe) Fill(from network.Direction, s fluid.Stack, commit bool) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if commit {
		p.sides = append(p.sides, from)
		p.got += s.Amount
	}
	return s.Amount + p.over
}

// counter is a fluid.Recorder that counts amounts.
type counter struct {
	mu        sync.Mutex
	intake    int
	delivered int
	discarded int
}

func (c *counter) Intake(a int)    { c.add(&c.intake, a) }
func (c *counter) Delivered(a int) { c.add(&c.delivered, a) }
func (c *counter) Discarded(a int) { c.add(&c.discarded, a) }

func (c *counter) add(field *int, a int) {
	c.mu.Lock()
	*field += a
	c.mu.Unlock()
}

// events collects transfer events.
type events struct {
	mu  sync.Mutex
	got []fluid.TransferEvent
}

func (e *events) observe(ev fluid.TransferEvent) {
	e.mu.Lock()
	e.got = append(e.got, ev)
	e.mu.Unlock()
}

func (e *events) list() []fluid.TransferEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]fluid.TransferEvent(nil), e.got...)
}

// absorbedPanic runs fn and returns the recovered error, nil if fn did not
// panic with an error.
func absorbedPanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err, _ = r.(error)
		}
	}()
	fn()
	return nil
}
