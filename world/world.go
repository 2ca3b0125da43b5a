// File: world.go
// Role: the block map and the topology edits that keep networks in sync.
package world

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/network"
)

// World is a sparse block grid bound to one network registry.
type World struct {
	topo sync.Mutex // serializes topology edits

	mu      sync.RWMutex // guards blocks, sources
	blocks  map[Pos]any  // *Pipe, *fluid.Tank or *Source
	sources []*Source    // placement order

	reg     *network.Registry
	dist    *fluid.Distributor
	fopts   []fluid.Option
	unit    int
	tankCap int
	log     zerolog.Logger
}

// New creates an empty world whose networks register with reg.
func New(reg *network.Registry, opts ...Option) *World {
	w := &World{
		blocks:  make(map[Pos]any),
		reg:     reg,
		dist:    fluid.NewDistributor(),
		unit:    fluid.PipeUnitCapacity,
		tankCap: DefaultTankCapacity,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.fopts = append([]fluid.Option{fluid.WithLogger(w.log)}, w.fopts...)
	w.fopts = append(w.fopts, fluid.WithDistributor(w.dist))
	return w
}

// Registry returns the registry the world's networks live in.
func (w *World) Registry() *network.Registry { return w.reg }

// Subscribe registers fn for transfer events of every network in the world.
func (w *World) Subscribe(fn fluid.Observer) { w.dist.AddObserver(fn) }

// Events is the distributor shared by the world's networks.
func (w *World) Events() *fluid.Distributor { return w.dist }

// Block returns whatever sits at p.
func (w *World) Block(p Pos) (any, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	b, ok := w.blocks[p]
	return b, ok
}

// Pipe returns the pipe at p.
func (w *World) Pipe(p Pos) (*Pipe, bool) {
	b, _ := w.Block(p)
	pipe, ok := b.(*Pipe)
	return pipe, ok
}

// Tank returns the tank at p.
func (w *World) Tank(p Pos) (*fluid.Tank, bool) {
	b, _ := w.Block(p)
	t, ok := b.(*fluid.Tank)
	return t, ok
}

// Len returns the number of blocks.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.blocks)
}

// Networks returns the live fluid networks in ID order.
func (w *World) Networks() []*fluid.Network {
	all := w.reg.Networks()
	out := make([]*fluid.Network, 0, len(all))
	for _, n := range all {
		if fn, ok := n.(*fluid.Network); ok {
			out = append(out, fn)
		}
	}
	return out
}

func (w *World) put(p Pos, b any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, taken := w.blocks[p]; taken {
		return fmt.Errorf("%w: %s", ErrOccupied, p)
	}
	w.blocks[p] = b
	if s, ok := b.(*Source); ok {
		w.sources = append(w.sources, s)
	}
	return nil
}

// adjacent returns the blocks around p in Directions order.
func (w *World) adjacent(p Pos) []network.Neighbor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []network.Neighbor
	for _, d := range network.Directions {
		if b, ok := w.blocks[p.Offset(d)]; ok {
			out = append(out, network.Neighbor{Dir: d, Node: b})
		}
	}
	return out
}

// adjacentNetworks returns the distinct live networks of the pipes around p,
// in Directions order, and the orphaned pipe transmitters found there.
func (w *World) adjacentNetworks(p Pos) (nets []*fluid.Network, orphans []*network.Transmitter) {
	for _, nb := range w.adjacent(p) {
		pipe, ok := nb.Node.(*Pipe)
		if !ok {
			continue
		}
		n, ok := pipe.Network()
		if !ok {
			orphans = append(orphans, pipe.t)
			continue
		}
		if !slices.Contains(nets, n) {
			nets = append(nets, n)
		}
	}
	return nets, orphans
}

// PlacePipe puts a pipe at p and attaches it to the surrounding networks.
//
// Implementation:
//   - No adjacent network: a fresh network is created for the pipe.
//   - One adjacent network: the pipe joins it.
//   - Several: they are merged, the first found in Directions order being the
//     receiver, and the pipe joins the result.
//
// Orphaned pipes around p are picked up along the way.
func (w *World) PlacePipe(p Pos) (*Pipe, error) {
	w.topo.Lock()
	defer w.topo.Unlock()

	pipe := &Pipe{w: w, pos: p}
	pipe.t = network.NewTransmitter(pipe, w.reg, w.unit)
	if err := w.put(p, pipe); err != nil {
		return nil, err
	}

	nets, orphans := w.adjacentNetworks(p)
	var n *fluid.Network
	switch len(nets) {
	case 0:
		n = fluid.New(w.reg, w.fopts...)
	case 1:
		n = nets[0]
	default:
		n = nets[0].Merge(nets[1:]...)
	}
	n.AddTransmitters(append(orphans, pipe.t)...)
	n.Refresh()
	n.SetNeedsUpdate()

	w.log.Debug().
		Stringer("pos", p).
		Uint64("network", uint64(n.ID())).
		Int("joined", len(nets)).
		Msg("pipe placed")
	return pipe, nil
}

// PlaceTank puts a tank of the given capacity at p.
func (w *World) PlaceTank(p Pos, capacity int) (*fluid.Tank, error) {
	w.topo.Lock()
	defer w.topo.Unlock()

	t := fluid.NewTank(capacity)
	if err := w.put(p, t); err != nil {
		return nil, err
	}
	w.refreshAround(p)
	return t, nil
}

// PlaceSource puts a source at p that feeds s into the adjacent networks
// every tick.
func (w *World) PlaceSource(p Pos, s fluid.Stack) (*Source, error) {
	w.topo.Lock()
	defer w.topo.Unlock()

	src := &Source{pos: p, stack: s}
	if err := w.put(p, src); err != nil {
		return nil, err
	}
	return src, nil
}

// Remove takes the block at p out of the world.
func (w *World) Remove(p Pos) error {
	w.topo.Lock()
	defer w.topo.Unlock()

	w.mu.Lock()
	b, ok := w.blocks[p]
	if !ok {
		w.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoBlock, p)
	}
	delete(w.blocks, p)
	if s, isSource := b.(*Source); isSource {
		w.dropSourceLocked(s)
	}
	w.mu.Unlock()

	switch b := b.(type) {
	case *Pipe:
		w.removePipe(b)
	case *fluid.Tank:
		w.refreshAround(p)
	}
	return nil
}

func (w *World) dropSourceLocked(s *Source) {
	for i, x := range w.sources {
		if x == s {
			w.sources = append(w.sources[:i], w.sources[i+1:]...)
			return
		}
	}
}

// removePipe retires the segment and reorganizes its former network. When
// the rest is still one component the network is refreshed in place;
// otherwise it is split along its components.
func (w *World) removePipe(pipe *Pipe) {
	n, ok := pipe.Network()
	pipe.removed.Store(true)
	pipe.t.SetNetwork(network.NoNetwork)
	pipe.t.SetOrphan(true)
	if !ok {
		return
	}

	comps := network.Components(n.Transmitters())
	switch len(comps) {
	case 0:
		n.Refresh()
		w.reg.Deregister(n.ID())
		w.log.Debug().Stringer("pos", pipe.pos).Uint64("network", uint64(n.ID())).Msg("network emptied")
	case 1:
		n.Refresh()
		n.SetNeedsUpdate()
	default:
		parts := n.Split(comps)
		w.log.Debug().Stringer("pos", pipe.pos).Uint64("network", uint64(n.ID())).Int("parts", len(parts)).Msg("network split")
	}
}

// refreshAround refreshes the networks of the pipes adjacent to p.
func (w *World) refreshAround(p Pos) {
	nets, _ := w.adjacentNetworks(p)
	for _, n := range nets {
		n.Refresh()
		n.SetNeedsUpdate()
	}
}

// SetActive switches the pipe at p in or out of active mode. Active pipes
// still carry fluid but do not discover acceptors.
func (w *World) SetActive(p Pos, active bool) error {
	w.topo.Lock()
	defer w.topo.Unlock()

	b, ok := w.Block(p)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoBlock, p)
	}
	pipe, ok := b.(*Pipe)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPipe, p)
	}
	pipe.t.SetActive(active)
	if n, ok := pipe.Network(); ok {
		n.Refresh()
		n.SetNeedsUpdate()
	}
	return nil
}

// Tick feeds every source, in placement order, then ticks all networks.
func (w *World) Tick() {
	w.mu.RLock()
	sources := append([]*Source(nil), w.sources...)
	w.mu.RUnlock()

	for _, s := range sources {
		w.feed(s)
	}
	w.reg.TickAll()
}

// feed pushes s's stack into each distinct adjacent network and returns the
// total taken.
func (w *World) feed(s *Source) int {
	nets, _ := w.adjacentNetworks(s.pos)
	taken := 0
	for _, n := range nets {
		taken += n.Emit(s.Stack(), true)
	}
	return taken
}

// Run calls Tick every interval until ctx is done.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	return w.reg.Run(ctx, interval, w.Tick)
}

// RunClient advances the display ramp of every network every interval until
// ctx is done.
func (w *World) RunClient(ctx context.Context, interval time.Duration) error {
	return w.reg.RunClient(ctx, interval)
}
