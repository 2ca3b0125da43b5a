// File: event.go
// Role: transfer-state notifications and their fan-out.
package fluid

import (
	"sync"

	"github.com/katalvlaran/pipegrid/network"
)

// TransferEvent is emitted at most once per authoritative tick per network,
// when the transferring flag flipped or the topology changed.
type TransferEvent struct {
	Network      network.ID
	FluidID      int // NoFluid without a reference fluid
	Transferring bool
}

// Observer consumes transfer events. It runs on the ticking goroutine and
// must not block.
type Observer func(TransferEvent)

// Distributor fans events out to observers and channels.
// No acknowledgement is expected; slow channels drop events.
type Distributor struct {
	lock      sync.RWMutex
	observers []Observer
	channels  []chan<- TransferEvent
}

// NewDistributor creates an empty distributor.
func NewDistributor() *Distributor {
	return &Distributor{}
}

// AddObserver registers fn. A nil fn is ignored.
func (d *Distributor) AddObserver(fn Observer) {
	if fn == nil {
		return
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.observers = append(d.observers, fn)
}

// AddChannel registers ch for non-blocking delivery.
func (d *Distributor) AddChannel(ch chan<- TransferEvent) {
	if ch == nil {
		return
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	d.channels = append(d.channels, ch)
}

// Publish delivers ev to every observer, then to every channel with room.
// It reports how many channel sends were dropped.
func (d *Distributor) Publish(ev TransferEvent) (dropped int) {
	d.lock.RLock()
	defer d.lock.RUnlock()
	for _, fn := range d.observers {
		fn(ev)
	}
	for _, ch := range d.channels {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	return dropped
}
