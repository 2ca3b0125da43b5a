// File: base.go
// Role: resource-agnostic network state shared by every concrete network.
//
// Locking:
//   - Base embeds sync.Mutex. Methods without a suffix lock it themselves;
//     methods ending in Locked require the caller to hold it.
//   - Acceptor capability calls made by embedding types run under this lock.
//     Acceptors are assumed synchronous and non-blocking.
//
// Determinism:
//   - Transmitters are walked in Serial order and acceptors are kept in
//     discovery order, so two refreshes over an unchanged topology produce
//     identical snapshots.
package network

import (
	"fmt"
	"slices"
	"sync"
)

// Base is the member/acceptor bookkeeping of one network over acceptor type A.
// A is usually an interface; a neighbour node becomes an acceptor when it
// holds a value of type A and is not a Conduit.
type Base[A comparable] struct {
	sync.Mutex

	id  ID
	reg *Registry

	transmitters map[*Transmitter]struct{}
	acceptors    []A             // discovery order
	directions   map[A]Direction // acceptor -> direction it was reached from
	needsUpdate  bool
	absorbed     bool
}

// NewBase allocates an empty network state with a fresh ID from reg.
// It does not register anything; the embedding type registers itself.
// Complexity: O(1).
func NewBase[A comparable](reg *Registry) *Base[A] {
	return &Base[A]{
		id:           reg.NewID(),
		reg:          reg,
		transmitters: make(map[*Transmitter]struct{}),
		directions:   make(map[A]Direction),
	}
}

// ID returns the network identity.
func (b *Base[A]) ID() ID { return b.id }

// Registry returns the registry the network allocates from.
func (b *Base[A]) Registry() *Registry { return b.reg }

// AddTransmitters adds members. Back-references are fixed by the next Refresh.
func (b *Base[A]) AddTransmitters(ts ...*Transmitter) {
	b.Lock()
	b.AddTransmittersLocked(ts...)
	b.Unlock()
}

// AddTransmittersLocked is AddTransmitters for callers holding the lock.
func (b *Base[A]) AddTransmittersLocked(ts ...*Transmitter) {
	for _, t := range ts {
		if t != nil {
			b.transmitters[t] = struct{}{}
		}
	}
}

// RemoveTransmitter drops t from the member set without touching t itself.
func (b *Base[A]) RemoveTransmitter(t *Transmitter) {
	b.Lock()
	delete(b.transmitters, t)
	b.Unlock()
}

// Contains reports whether t is a member.
func (b *Base[A]) Contains(t *Transmitter) bool {
	b.Lock()
	defer b.Unlock()
	_, ok := b.transmitters[t]
	return ok
}

// Transmitters returns a snapshot of the members in Serial order.
func (b *Base[A]) Transmitters() []*Transmitter {
	b.Lock()
	defer b.Unlock()
	return b.TransmittersLocked()
}

// TransmittersLocked is Transmitters for callers holding the lock.
// Complexity: O(T log T).
func (b *Base[A]) TransmittersLocked() []*Transmitter {
	out := make([]*Transmitter, 0, len(b.transmitters))
	for t := range b.transmitters {
		out = append(out, t)
	}
	slices.SortFunc(out, func(x, y *Transmitter) int {
		switch {
		case x.serial < y.serial:
			return -1
		case x.serial > y.serial:
			return 1
		}
		return 0
	})
	return out
}

// Size returns the number of member transmitters.
func (b *Base[A]) Size() int {
	b.Lock()
	defer b.Unlock()
	return len(b.transmitters)
}

// SizeLocked is Size for callers holding the lock.
func (b *Base[A]) SizeLocked() int { return len(b.transmitters) }

// AcceptorSize returns the number of acceptors known since the last Refresh.
func (b *Base[A]) AcceptorSize() int {
	b.Lock()
	defer b.Unlock()
	return len(b.acceptors)
}

// Acceptors returns a point-in-time copy of every known acceptor in discovery order.
func (b *Base[A]) Acceptors() []A {
	b.Lock()
	defer b.Unlock()
	return b.AcceptorsLocked(nil)
}

// AcceptorsLocked returns the acceptors for which keep reports true, in
// discovery order. keep receives the direction the acceptor was reached
// from; a nil keep selects every acceptor. The result is a copy.
func (b *Base[A]) AcceptorsLocked(keep func(a A, from Direction) bool) []A {
	out := make([]A, 0, len(b.acceptors))
	for _, a := range b.acceptors {
		d, ok := b.directions[a]
		if !ok {
			continue
		}
		if keep == nil || keep(a, d) {
			out = append(out, a)
		}
	}
	return out
}

// Direction returns the direction from which the network reached a.
func (b *Base[A]) Direction(a A) (Direction, bool) {
	b.Lock()
	defer b.Unlock()
	return b.DirectionLocked(a)
}

// DirectionLocked is Direction for callers holding the lock.
func (b *Base[A]) DirectionLocked(a A) (Direction, bool) {
	d, ok := b.directions[a]
	return d, ok
}

// Directions returns a copy of the acceptor direction map.
func (b *Base[A]) Directions() map[A]Direction {
	b.Lock()
	defer b.Unlock()
	out := make(map[A]Direction, len(b.directions))
	for a, d := range b.directions {
		out[a] = d
	}
	return out
}

// Refresh re-validates the member set and rebuilds the acceptor view.
func (b *Base[A]) Refresh() {
	b.Lock()
	b.RefreshLocked()
	b.Unlock()
}

// RefreshLocked is Refresh for callers holding the lock.
//
// Implementation:
//   - Stage 1: snapshot the members in Serial order.
//   - Stage 2: collect invalid members, then remove them; repoint every
//     valid member at this network and clear its orphan flag.
//   - Stage 3: rebuild acceptors from scratch. For every valid, non-active
//     member, each neighbour holding an A that is not a Conduit becomes an
//     acceptor, recorded with the direction it was reached from. When several
//     members reach the same acceptor the last one walked wins the direction;
//     the acceptor keeps its first discovery position.
//
// Complexity: O(T log T + T·d).
func (b *Base[A]) RefreshLocked() {
	snapshot := b.TransmittersLocked()

	valid := make([]*Transmitter, 0, len(snapshot))
	var invalid []*Transmitter
	for _, t := range snapshot {
		if !t.Valid() {
			invalid = append(invalid, t)
			continue
		}
		valid = append(valid, t)
	}
	for _, t := range invalid {
		delete(b.transmitters, t)
	}
	for _, t := range valid {
		t.SetNetwork(b.id)
		t.SetOrphan(false)
	}

	b.acceptors = b.acceptors[:0]
	clear(b.directions)
	for _, t := range valid {
		if t.Active() {
			continue
		}
		for _, nb := range t.host.Neighbors() {
			if nb.Node == nil {
				continue
			}
			if _, isConduit := nb.Node.(Conduit); isConduit {
				continue
			}
			a, ok := nb.Node.(A)
			if !ok {
				continue
			}
			if _, seen := b.directions[a]; !seen {
				b.acceptors = append(b.acceptors, a)
			}
			b.directions[a] = nb.Dir
		}
	}

	if b.reg != nil {
		b.reg.recorder().Refreshed()
	}
}

// SetNeedsUpdate flags that observers must be re-notified on the next tick.
func (b *Base[A]) SetNeedsUpdate() {
	b.Lock()
	b.needsUpdate = true
	b.Unlock()
}

// TakeNeedsUpdateLocked returns the flag and clears it.
func (b *Base[A]) TakeNeedsUpdateLocked() bool {
	v := b.needsUpdate
	b.needsUpdate = false
	return v
}

// Absorbed reports whether the network was merged away or split.
func (b *Base[A]) Absorbed() bool {
	b.Lock()
	defer b.Unlock()
	return b.absorbed
}

// AbsorbedLocked is Absorbed for callers holding the lock.
func (b *Base[A]) AbsorbedLocked() bool { return b.absorbed }

// MarkAbsorbedLocked retires the network: it empties the member and
// acceptor sets and returns the valid members it held, in Serial order.
// Retiring an already retired network panics with ErrAbsorbed.
func (b *Base[A]) MarkAbsorbedLocked() []*Transmitter {
	if b.absorbed {
		panic(fmt.Errorf("%w: network %d", ErrAbsorbed, b.id))
	}
	members := b.TransmittersLocked()
	valid := members[:0]
	for _, t := range members {
		if t.Valid() {
			valid = append(valid, t)
		}
	}
	b.absorbed = true
	clear(b.transmitters)
	b.acceptors = nil
	clear(b.directions)
	return valid
}

// TransferLocked retires b and moves its valid members into dst.
// The caller holds both locks (see LockAll). Invalid members are dropped.
// Complexity: O(T log T).
func (b *Base[A]) TransferLocked(dst *Base[A]) {
	if b == dst {
		panic(fmt.Errorf("%w: network %d merged into itself", ErrAbsorbed, b.id))
	}
	if dst.absorbed {
		panic(fmt.Errorf("%w: merge target %d", ErrAbsorbed, dst.id))
	}
	dst.AddTransmittersLocked(b.MarkAbsorbedLocked()...)
}

// LockAll acquires the lock of every distinct non-nil network in ascending
// ID order and returns the matching release function.
// Complexity: O(N log N).
func LockAll[A comparable](nets ...*Base[A]) (unlock func()) {
	ordered := make([]*Base[A], 0, len(nets))
	for _, n := range nets {
		if n != nil && !slices.Contains(ordered, n) {
			ordered = append(ordered, n)
		}
	}
	slices.SortFunc(ordered, func(x, y *Base[A]) int {
		switch {
		case x.id < y.id:
			return -1
		case x.id > y.id:
			return 1
		}
		return 0
	})
	for _, n := range ordered {
		n.Lock()
	}
	return func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].Unlock()
		}
	}
}
