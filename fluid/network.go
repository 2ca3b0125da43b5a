// File: network.go
// Role: the fluid network: intake, outflow, tick state machine, display ramp.
//
// Invariants:
//   - 0 <= stored.Amount <= Capacity() whenever the network lock is released.
//   - stored == nil whenever the buffered amount reaches 0.
//   - stored holds a single kind; Emit refuses any other.
//
// Lock order: network lock, then visMu. ClientTick takes visMu only.
package fluid

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/pipegrid/network"
)

// Network is a connected set of pipes buffering one fluid kind.
type Network struct {
	*network.Base[Acceptor]
	s *settings

	// guarded by the embedded network lock
	stored        *Stack
	transferDelay int
	prevTransfer  bool

	didTransfer atomic.Bool

	visMu sync.Mutex // guards ref, scale
	ref   *Fluid
	scale float32
}

var _ network.Network = (*Network)(nil)

// New creates an empty fluid network and registers it with reg.
// Complexity: O(1).
func New(reg *network.Registry, opts ...Option) *Network {
	n := spawn(reg, newSettings(opts))
	reg.Register(n)
	return n
}

// spawn builds an unregistered network sharing settings s.
func spawn(reg *network.Registry, s *settings) *Network {
	return &Network{
		Base: network.NewBase[Acceptor](reg),
		s:    s,
	}
}

// Config returns the tuning in effect.
func (n *Network) Config() Config { return n.s.cfg }

// Side returns which half of the state machine the network runs.
func (n *Network) Side() Side { return n.s.side }

// Subscribe registers fn for this network lineage's transfer events.
func (n *Network) Subscribe(fn Observer) { n.s.dist.AddObserver(fn) }

// Distributor returns the event distributor shared by this lineage.
func (n *Network) Distributor() *Distributor { return n.s.dist }

// Capacity returns UnitCapacity × member count.
func (n *Network) Capacity() int {
	n.Lock()
	defer n.Unlock()
	return n.capacityLocked()
}

func (n *Network) capacityLocked() int { return n.s.cfg.UnitCapacity * n.SizeLocked() }

// Needed returns how much more fluid the network can buffer.
func (n *Network) Needed() int {
	n.Lock()
	defer n.Unlock()
	return n.neededLocked()
}

func (n *Network) neededLocked() int {
	have := 0
	if n.stored != nil {
		have = n.stored.Amount
	}
	return n.capacityLocked() - have
}

// Stored returns the buffered stack, false when empty.
func (n *Network) Stored() (Stack, bool) {
	n.Lock()
	defer n.Unlock()
	if n.stored == nil {
		return Stack{}, false
	}
	return *n.stored, true
}

// DidTransfer reports the transfer indicator as last written by the
// authoritative side. Safe to call from the presentation loop.
func (n *Network) DidTransfer() bool { return n.didTransfer.Load() }

// TransferDelay returns the remaining indicator hold, in ticks.
func (n *Network) TransferDelay() int {
	n.Lock()
	defer n.Unlock()
	return n.transferDelay
}

// Visual returns the display reference fluid, its scale in [0,1], and
// whether a reference is set.
func (n *Network) Visual() (ref Fluid, scale float32, ok bool) {
	n.visMu.Lock()
	defer n.visMu.Unlock()
	if n.ref == nil {
		return Fluid{}, n.scale, false
	}
	return *n.ref, n.scale, true
}

func (n *Network) visual() (*Fluid, float32) {
	n.visMu.Lock()
	defer n.visMu.Unlock()
	return n.ref, n.scale
}

func (n *Network) setVisual(ref *Fluid, scale float32) {
	n.visMu.Lock()
	n.ref, n.scale = ref, scale
	n.visMu.Unlock()
}

// Refresh re-validates members, rebuilds acceptors and trims the buffer if
// the capacity shrank.
func (n *Network) Refresh() {
	n.Lock()
	defer n.Unlock()
	n.RefreshLocked()
	n.clampLocked()
}

func (n *Network) clampLocked() {
	if n.stored == nil {
		return
	}
	excess := n.stored.Amount - n.capacityLocked()
	if excess <= 0 {
		return
	}
	n.stored.Amount -= excess
	n.s.rec.Discarded(excess)
	n.s.log.Warn().
		Uint64("network", uint64(n.ID())).
		Int("discarded", excess).
		Str("fluid", n.stored.Fluid.String()).
		Msg("capacity shrank below stored amount")
	if n.stored.Amount <= 0 {
		n.stored = nil
	}
}

// AcceptorsFor returns the acceptors that take s's kind right now, each
// asked through the side facing the network. The result is a snapshot.
func (n *Network) AcceptorsFor(s Stack) []Acceptor {
	n.Lock()
	defer n.Unlock()
	return n.acceptorsForLocked(s.Fluid)
}

func (n *Network) acceptorsForLocked(f Fluid) []Acceptor {
	return n.AcceptorsLocked(func(a Acceptor, from network.Direction) bool {
		return a.CanFill(from.Opposite(), f)
	})
}

// Emit offers s to the network buffer (the intake path) and returns the
// amount taken, or that would be taken when commit is false.
// Empty stacks, a kind different from the buffered one and a full network
// all yield 0.
// Complexity: O(1).
func (n *Network) Emit(s Stack, commit bool) int {
	if s.IsEmpty() {
		return 0
	}
	n.Lock()
	defer n.Unlock()
	if n.AbsorbedLocked() {
		return 0
	}
	if n.stored != nil && !n.stored.SameKind(s) {
		return 0
	}
	toUse := min(n.neededLocked(), s.Amount)
	if toUse <= 0 {
		return 0
	}
	if commit {
		if n.stored == nil {
			c := s.WithAmount(toUse)
			n.stored = &c
		} else {
			n.stored.Amount += toUse
		}
		n.s.rec.Intake(toUse)
	}
	return toUse
}

// TickEmit pushes s out to the acceptors willing to take its kind and
// returns the total they accepted. It does not touch the buffer; Tick
// subtracts what its own call sent.
//
// Implementation:
//   - Stage 1: snapshot the willing acceptors and shuffle them.
//   - Stage 2: split s.Amount with Shares; offer each share through the side
//     opposite to the discovery direction.
//   - Stage 3: on a committed authoritative send, remember the kind for display
//     and arm the transfer indicator for HoldTicks ticks.
//
// An acceptor reporting more than its share is capped at the share.
// Complexity: O(A) plus the acceptors' own cost.
func (n *Network) TickEmit(s Stack, commit bool) int {
	n.Lock()
	defer n.Unlock()
	if n.AbsorbedLocked() {
		return 0
	}
	return n.tickEmitLocked(s, commit)
}

func (n *Network) tickEmitLocked(s Stack, commit bool) int {
	if s.IsEmpty() {
		return 0
	}
	targets := n.acceptorsForLocked(s.Fluid)
	if len(targets) == 0 {
		return 0
	}
	n.s.shuffle(targets)

	sent := 0
	for i, share := range Shares(s.Amount, len(targets)) {
		if share == 0 {
			continue
		}
		a := targets[i]
		from, _ := n.DirectionLocked(a)
		got := a.Fill(from.Opposite(), s.WithAmount(share), commit)
		sent += max(0, min(got, share))
	}

	if commit && sent > 0 {
		n.s.rec.Delivered(sent)
		if n.s.side == Authoritative {
			kind := s.Fluid
			n.visMu.Lock()
			n.ref = &kind
			n.visMu.Unlock()
			n.didTransfer.Store(true)
			n.transferDelay = n.s.cfg.HoldTicks
		}
	}
	return sent
}

// Tick runs one authoritative step. Presentation networks ignore it.
//
// Implementation:
//   - Stage 1: count the indicator hold down; once it is spent the indicator
//     goes off.
//   - Stage 2: if the indicator flipped since the last tick, or the topology
//     changed, queue one TransferEvent.
//   - Stage 3: push the buffer out with TickEmit and subtract what was sent.
//   - Stage 4: publish the queued event after the lock is released.
func (n *Network) Tick() {
	if n.s.side != Authoritative {
		return
	}
	n.Lock()
	if n.AbsorbedLocked() {
		n.Unlock()
		return
	}

	if n.transferDelay == 0 {
		n.didTransfer.Store(false)
	} else {
		n.transferDelay--
	}

	did := n.didTransfer.Load()
	changed := n.TakeNeedsUpdateLocked()
	var ev *TransferEvent
	if did != n.prevTransfer || changed {
		ev = &TransferEvent{Network: n.ID(), FluidID: n.refID(), Transferring: did}
	}
	n.prevTransfer = did

	if n.stored != nil {
		n.stored.Amount -= n.tickEmitLocked(*n.stored, true)
		if n.stored.Amount <= 0 {
			n.stored = nil
		}
	}
	n.Unlock()

	if ev != nil {
		n.s.dist.Publish(*ev)
	}
}

func (n *Network) refID() int {
	n.visMu.Lock()
	defer n.visMu.Unlock()
	if n.ref == nil {
		return NoFluid
	}
	return n.ref.ID
}

// ClientTick moves the display scale one step toward the indicator:
// up by ScaleStep while transferring, down otherwise, clamped to [0,1].
// A scale within half a step of a bound snaps to it, so 1/ScaleStep ticks
// always cover the whole range. Reaching 0 clears the reference fluid.
func (n *Network) ClientTick() {
	did := n.didTransfer.Load()
	step := n.s.cfg.ScaleStep

	n.visMu.Lock()
	defer n.visMu.Unlock()
	switch {
	case did && n.scale < 1:
		n.scale = snapScale(n.scale+step, step)
	case !did && n.scale > 0:
		n.scale = snapScale(n.scale-step, step)
		if n.scale == 0 {
			n.ref = nil
		}
	}
}

// snapScale clamps v to [0,1], absorbing float32 drift of less than half a
// step at either end.
func snapScale(v, step float32) float32 {
	switch {
	case v >= 1-step/2:
		return 1
	case v <= step/2:
		return 0
	}
	return v
}

// NeededInfo describes the free capacity in buckets.
func (n *Network) NeededInfo() string {
	return "Fluid needed (any type): " + buckets(n.Needed()) + " buckets"
}

// buckets renders mB as buckets with the shortest exact decimal, keeping a
// trailing ".0" on whole values (16000 -> "16.0", 250 -> "0.25").
func buckets(mb int) string {
	s := strconv.FormatFloat(float64(float32(mb)/1000), 'f', -1, 32)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FlowInfo describes the buffered amount.
func (n *Network) FlowInfo() string {
	s, ok := n.Stored()
	if !ok {
		return "empty mB"
	}
	return fmt.Sprintf("%d mB", s.Amount)
}

// StoredInfo describes the buffered stack.
func (n *Network) StoredInfo() string {
	s, ok := n.Stored()
	if !ok {
		return "empty"
	}
	return s.String()
}

func (n *Network) String() string {
	return fmt.Sprintf("[FluidNetwork] %d transmitters, %d acceptors.", n.Size(), n.AcceptorSize())
}
