package fluid

import (
	"sync"

	"github.com/katalvlaran/pipegrid/network"
)

// Tank is a bounded container holding a single fluid kind. It accepts fluid
// from every side and is safe for concurrent use.
type Tank struct {
	mu       sync.Mutex
	capacity int
	stored   *Stack
}

var _ Acceptor = (*Tank)(nil)

// NewTank creates an empty tank; a negative capacity is treated as 0.
func NewTank(capacity int) *Tank {
	if capacity < 0 {
		capacity = 0
	}
	return &Tank{capacity: capacity}
}

// Capacity returns the tank size in mB.
func (t *Tank) Capacity() int { return t.capacity }

// Stored returns the contents, false when empty.
func (t *Tank) Stored() (Stack, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stored == nil {
		return Stack{}, false
	}
	return *t.stored, true
}

// Amount returns the stored amount in mB.
func (t *Tank) Amount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stored == nil {
		return 0
	}
	return t.stored.Amount
}

// CanFill reports whether f fits: the tank is empty or holds f, and has room.
func (t *Tank) CanFill(_ network.Direction, f Fluid) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stored == nil {
		return t.capacity > 0
	}
	return t.stored.Fluid.Is(f) && t.stored.Amount < t.capacity
}

// Fill takes as much of s as fits.
func (t *Tank) Fill(_ network.Direction, s Stack, commit bool) int {
	if s.IsEmpty() {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	have := 0
	if t.stored != nil {
		if !t.stored.Fluid.Is(s.Fluid) {
			return 0
		}
		have = t.stored.Amount
	}
	take := min(t.capacity-have, s.Amount)
	if take <= 0 {
		return 0
	}
	if commit {
		if t.stored == nil {
			c := s.WithAmount(take)
			t.stored = &c
		} else {
			t.stored.Amount += take
		}
	}
	return take
}

// Drain removes up to limit mB and returns what was (or would be) removed.
func (t *Tank) Drain(limit int, commit bool) Stack {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stored == nil || limit <= 0 {
		return Stack{}
	}
	out := t.stored.WithAmount(min(limit, t.stored.Amount))
	if commit {
		t.stored.Amount -= out.Amount
		if t.stored.Amount <= 0 {
			t.stored = nil
		}
	}
	return out
}
