// File: transmitter.go
// Role: graph node wrapping one conduit segment.
//
// Ownership:
//   - A Transmitter references its network by ID only. The Registry resolves
//     the ID, so a merge can repoint many transmitters without leaving
//     dangling references behind.
//   - SetNetwork and SetOrphan are pure setters. Bulk topology operations
//     update membership once and fix back-references in a single pass.
package network

import (
	"sync"
	"sync/atomic"
)

// noNetworkInfo is reported by the string queries of a transmitter without a network.
const noNetworkInfo = "No Network"

var transmitterSerial atomic.Uint64

// Transmitter is one conduit segment known to the network layer.
type Transmitter struct {
	host     Host
	reg      *Registry
	capacity int
	serial   uint64

	mu      sync.RWMutex // guards network, orphan, active
	network ID
	orphan  bool
	active  bool
}

// NewTransmitter wraps host. capacity is the segment's own capacity, reported
// by NetworkCapacity while the transmitter has no network. The transmitter
// starts orphaned.
// Complexity: O(1).
func NewTransmitter(host Host, reg *Registry, capacity int) *Transmitter {
	return &Transmitter{
		host:     host,
		reg:      reg,
		capacity: capacity,
		serial:   transmitterSerial.Add(1),
		orphan:   true,
	}
}

// Host returns the wrapped conduit segment.
func (t *Transmitter) Host() Host { return t.host }

// Serial is a process-unique creation number giving transmitters a stable order.
func (t *Transmitter) Serial() uint64 { return t.serial }

// Valid reports whether the underlying segment still exists.
func (t *Transmitter) Valid() bool {
	return t != nil && t.host != nil && t.host.Valid()
}

// NetworkID returns the raw back-reference, NoNetwork if unset.
func (t *Transmitter) NetworkID() ID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.network
}

// SetNetwork reassigns the back-reference. It does not touch any member set.
func (t *Transmitter) SetNetwork(id ID) {
	t.mu.Lock()
	t.network = id
	t.mu.Unlock()
}

// IsOrphan reports whether the transmitter has not yet joined a network.
func (t *Transmitter) IsOrphan() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.orphan
}

// SetOrphan sets the orphan flag.
func (t *Transmitter) SetOrphan(orphan bool) {
	t.mu.Lock()
	t.orphan = orphan
	t.mu.Unlock()
}

// Active reports whether the segment is in the transient mode that excludes
// it from acceptor discovery.
func (t *Transmitter) Active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// SetActive toggles acceptor-discovery exclusion. It takes effect on the
// owning network's next Refresh.
func (t *Transmitter) SetActive(active bool) {
	t.mu.Lock()
	t.active = active
	t.mu.Unlock()
}

// Network resolves the owning network through the registry.
// It reports false for orphans and for IDs no longer registered.
func (t *Transmitter) Network() (Network, bool) {
	t.mu.RLock()
	id, orphan := t.network, t.orphan
	t.mu.RUnlock()
	if orphan || id == NoNetwork || t.reg == nil {
		return nil, false
	}
	return t.reg.Lookup(id)
}

// HasNetwork reports whether Network would succeed.
func (t *Transmitter) HasNetwork() bool {
	_, ok := t.Network()
	return ok
}

// NetworkSize returns the member count of the owning network, 0 without one.
func (t *Transmitter) NetworkSize() int {
	if n, ok := t.Network(); ok {
		return n.Size()
	}
	return 0
}

// NetworkAcceptorSize returns the acceptor count of the owning network, 0 without one.
func (t *Transmitter) NetworkAcceptorSize() int {
	if n, ok := t.Network(); ok {
		return n.AcceptorSize()
	}
	return 0
}

// NetworkCapacity returns the owning network's capacity, or the segment's
// own capacity without one.
func (t *Transmitter) NetworkCapacity() int {
	if n, ok := t.Network(); ok {
		return n.Capacity()
	}
	return t.capacity
}

// NetworkNeeded describes how much the owning network still accepts.
func (t *Transmitter) NetworkNeeded() string {
	if n, ok := t.Network(); ok {
		return n.NeededInfo()
	}
	return noNetworkInfo
}

// NetworkFlow describes the owning network's current flow.
func (t *Transmitter) NetworkFlow() string {
	if n, ok := t.Network(); ok {
		return n.FlowInfo()
	}
	return noNetworkInfo
}

// NetworkBuffer describes the owning network's stored contents.
func (t *Transmitter) NetworkBuffer() string {
	if n, ok := t.Network(); ok {
		return n.StoredInfo()
	}
	return noNetworkInfo
}
