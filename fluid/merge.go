// File: merge.go
// Role: topology surgery on fluid networks: union and division.
//
// Both operations retire their inputs (Absorbed() == true) and hand back
// freshly registered networks. Retired networks ignore Tick and Emit, so a
// stale handle held by a caller degrades to a no-op instead of double
// counting fluid.
package fluid

import (
	"fmt"
	"slices"

	"github.com/katalvlaran/pipegrid/network"
)

// Merge unions n with others into one new network and returns it.
// nil and repeated inputs are ignored. Every input is retired.
//
// Implementation:
//   - Stage 1: lock every input in ID order; an input already retired panics
//     with network.ErrAbsorbed.
//   - Stage 2: pick the display reference. The receiver's is kept unless an
//     input holds a reference with a strictly larger scale.
//   - Stage 3: combine the buffers. The receiver's kind wins, otherwise the
//     first non-empty input's; stacks of any other kind are discarded.
//   - Stage 4: move the valid members across, release the locks, retire the
//     inputs from the registry, then refresh, clamp and register the result.
//
// Complexity: O(T log T + T·d) over all members.
func (n *Network) Merge(others ...*Network) *Network {
	inputs := []*Network{n}
	for _, o := range others {
		if o != nil && !slices.Contains(inputs, o) {
			inputs = append(inputs, o)
		}
	}
	bases := make([]*network.Base[Acceptor], len(inputs))
	for i, in := range inputs {
		bases[i] = in.Base
	}

	unlock := network.LockAll(bases...)
	for _, in := range inputs {
		if in.AbsorbedLocked() {
			unlock()
			panic(fmt.Errorf("%w: merge input %d", network.ErrAbsorbed, in.ID()))
		}
	}

	reg := n.Registry()
	merged := spawn(reg, n.s)

	ref, scale := n.visual()
	for _, in := range inputs[1:] {
		if r, sc := in.visual(); r != nil && sc > scale {
			ref, scale = r, sc
		}
	}
	merged.setVisual(copyFluid(ref), scale)

	var stored *Stack
	for _, in := range inputs {
		if in.stored == nil {
			continue
		}
		switch {
		case stored == nil:
			c := *in.stored
			stored = &c
		case stored.SameKind(*in.stored):
			stored.Amount += in.stored.Amount
		default:
			n.s.rec.Discarded(in.stored.Amount)
			n.s.log.Warn().
				Uint64("network", uint64(in.ID())).
				Str("kept", stored.Fluid.String()).
				Str("dropped", in.stored.String()).
				Msg("incompatible fluid discarded on merge")
		}
		in.stored = nil
	}
	merged.stored = stored

	for _, in := range inputs {
		in.TransferLocked(merged.Base)
	}
	unlock()

	for _, in := range inputs {
		reg.Deregister(in.ID())
	}
	merged.Refresh()
	merged.SetNeedsUpdate()
	reg.Register(merged)
	reg.Recorder().Merged(len(inputs))

	n.s.log.Debug().
		Uint64("network", uint64(merged.ID())).
		Int("inputs", len(inputs)).
		Int("transmitters", merged.Size()).
		Msg("networks merged")
	return merged
}

// Split retires n and builds one network per group. Only members of n are
// kept; a transmitter listed twice stays in its first group and groups left
// empty are skipped. Members that appear in no group become orphans.
//
// The buffer is divided in proportion to group size, the remainder handed
// out one unit at a time from the first group on. Every part inherits the
// display state and the indicator hold.
// Splitting a retired network panics with network.ErrAbsorbed.
//
// Complexity: O(T log T + T·d).
func (n *Network) Split(groups [][]*network.Transmitter) []*Network {
	n.Lock()
	if n.AbsorbedLocked() {
		n.Unlock()
		panic(fmt.Errorf("%w: split of %d", network.ErrAbsorbed, n.ID()))
	}
	members := n.MarkAbsorbedLocked()
	stored := n.stored
	n.stored = nil
	delay, prev := n.transferDelay, n.prevTransfer
	n.Unlock()

	left := make(map[*network.Transmitter]struct{}, len(members))
	for _, t := range members {
		left[t] = struct{}{}
	}
	var parts [][]*network.Transmitter
	for _, g := range groups {
		var part []*network.Transmitter
		for _, t := range g {
			if _, ok := left[t]; ok {
				delete(left, t)
				part = append(part, t)
			}
		}
		if len(part) > 0 {
			parts = append(parts, part)
		}
	}
	for _, t := range members {
		if _, ok := left[t]; ok {
			t.SetNetwork(network.NoNetwork)
			t.SetOrphan(true)
		}
	}

	sizes := make([]int, len(parts))
	for i, p := range parts {
		sizes[i] = len(p)
	}
	var amounts []int
	if stored != nil {
		amounts = proportional(stored.Amount, sizes)
		if len(parts) == 0 {
			n.s.rec.Discarded(stored.Amount)
		}
	}

	reg := n.Registry()
	ref, scale := n.visual()
	did := n.didTransfer.Load()
	out := make([]*Network, len(parts))
	for i, p := range parts {
		part := spawn(reg, n.s)
		part.AddTransmitters(p...)
		if amounts != nil && amounts[i] > 0 {
			c := stored.WithAmount(amounts[i])
			part.stored = &c
		}
		part.setVisual(copyFluid(ref), scale)
		part.didTransfer.Store(did)
		part.transferDelay, part.prevTransfer = delay, prev
		out[i] = part
	}

	reg.Deregister(n.ID())
	for _, part := range out {
		part.Refresh()
		part.SetNeedsUpdate()
		reg.Register(part)
	}
	reg.Recorder().Split(len(out))

	n.s.log.Debug().
		Uint64("network", uint64(n.ID())).
		Int("parts", len(out)).
		Int("orphaned", len(left)).
		Msg("network split")
	return out
}

// SplitComponents splits n along its current connected components.
func (n *Network) SplitComponents() []*Network {
	return n.Split(network.Components(n.Transmitters()))
}

func copyFluid(f *Fluid) *Fluid {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
