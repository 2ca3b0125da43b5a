// File: registry.go
// Role: process-wide lookup of live networks and the tick drivers.
//
// Concurrency:
//   - networks is guarded by mu. TickAll and ClientTickAll work on a sorted
//     snapshot taken under the read lock and tick outside it, so a network
//     may merge or split while a tick pass is in flight; retired networks
//     ignore the tick themselves.
package network

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// RegistryOption configures a Registry before use.
type RegistryOption func(*Registry)

// WithLogger sets the registry logger. Networks created against the
// registry may derive their own loggers from it.
func WithLogger(log zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = log.With().Str("component", "network.registry").Logger() }
}

// WithRecorder installs a bookkeeping hook. A nil recorder is ignored.
func WithRecorder(rec Recorder) RegistryOption {
	return func(r *Registry) {
		if rec != nil {
			r.rec = rec
		}
	}
}

// Registry maps network IDs to live networks. Only registered networks
// receive ticks.
type Registry struct {
	mu       sync.RWMutex
	networks map[ID]Network

	nextID atomic.Uint64
	ticks  atomic.Uint64

	log zerolog.Logger
	rec Recorder
}

// NewRegistry creates an empty registry.
// Complexity: O(1).
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		networks: make(map[ID]Network),
		log:      zerolog.Nop(),
		rec:      NopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewID allocates a fresh network ID. IDs grow monotonically, which gives
// LockAll its global order.
func (r *Registry) NewID() ID { return ID(r.nextID.Add(1)) }

// Logger returns the registry logger.
func (r *Registry) Logger() zerolog.Logger { return r.log }

// Recorder returns the installed bookkeeping hook, never nil.
func (r *Registry) Recorder() Recorder { return r.recorder() }

func (r *Registry) recorder() Recorder {
	if r == nil || r.rec == nil {
		return NopRecorder{}
	}
	return r.rec
}

// Register adds n to the live set. Registering an ID twice is a no-op.
func (r *Registry) Register(n Network) {
	r.mu.Lock()
	if _, ok := r.networks[n.ID()]; ok {
		r.mu.Unlock()
		return
	}
	r.networks[n.ID()] = n
	live := len(r.networks)
	r.mu.Unlock()

	r.rec.NetworkRegistered()
	r.log.Debug().Uint64("network", uint64(n.ID())).Int("live", live).Msg("network registered")
}

// Deregister removes id from the live set and reports whether it was present.
func (r *Registry) Deregister(id ID) bool {
	r.mu.Lock()
	_, ok := r.networks[id]
	delete(r.networks, id)
	live := len(r.networks)
	r.mu.Unlock()

	if ok {
		r.rec.NetworkDeregistered()
		r.log.Debug().Uint64("network", uint64(id)).Int("live", live).Msg("network deregistered")
	}
	return ok
}

// Lookup resolves id to its live network.
func (r *Registry) Lookup(id ID) (Network, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.networks[id]
	return n, ok
}

// Len returns the number of live networks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.networks)
}

// Networks returns the live networks sorted by ID.
// Complexity: O(N log N).
func (r *Registry) Networks() []Network {
	r.mu.RLock()
	out := make([]Network, 0, len(r.networks))
	for _, n := range r.networks {
		out = append(out, n)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(x, y Network) int {
		switch {
		case x.ID() < y.ID():
			return -1
		case x.ID() > y.ID():
			return 1
		}
		return 0
	})
	return out
}

// Ticks returns how many TickAll passes completed.
func (r *Registry) Ticks() uint64 { return r.ticks.Load() }

// TickAll runs one authoritative step on every live network, sequentially.
func (r *Registry) TickAll() {
	start := time.Now()
	nets := r.Networks()
	for _, n := range nets {
		n.Tick()
	}
	r.ticks.Add(1)
	r.rec.Ticked(len(nets), time.Since(start))
}

// ClientTickAll runs one presentation step on every live network.
func (r *Registry) ClientTickAll() {
	for _, n := range r.Networks() {
		n.ClientTick()
	}
}

// Run calls step once per interval until ctx is done. A nil step means
// TickAll. Run returns nil on cancellation.
func (r *Registry) Run(ctx context.Context, interval time.Duration, step func()) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}
	if step == nil {
		step = r.TickAll
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			step()
		}
	}
}

// RunClient drives ClientTickAll at its own cadence until ctx is done.
func (r *Registry) RunClient(ctx context.Context, interval time.Duration) error {
	return r.Run(ctx, interval, r.ClientTickAll)
}
