// Package network maintains dynamically changing partitions of conduit
// segments ("transmitters") into connected-component networks, and the set
// of external acceptors each network can reach.
//
// What:
//
//   - Transmitter wraps one conduit segment (a Host) and records which
//     network currently owns it by ID, never by pointer.
//   - Base[A] is the resource-agnostic network state: member transmitters,
//     the acceptors discovered around them and the direction each acceptor
//     was reached from. Resource-specific networks embed it.
//   - Registry maps network IDs to live networks and drives ticks.
//   - Components discovers connected components among transmitters, which is
//     how a network that lost a segment is split.
//
// Consistency model:
//
//   - Acceptors are a function of the member set as of the last Refresh.
//     Between a topology change and the next Refresh the view may be stale.
//   - Refresh never merges or splits. Merging and splitting are triggered by
//     the host layer when it observes that an edge actually changed.
//
// Concurrency:
//
//   - Every Base embeds its own sync.Mutex. Merge-like operations that touch
//     several networks acquire them with LockAll, which orders by ID so that
//     two overlapping merges cannot deadlock.
//   - The Registry is guarded by a sync.RWMutex; TickAll ticks a snapshot.
//
// Complexity:
//
//   - Refresh:    O(T·d) for T transmitters with d neighbours each.
//   - Components: O(T·d).
//   - TickAll:    O(N) networks plus their own tick cost.
//
// Errors:
//
//   - ErrAbsorbed:        a network that was merged away or split is reused (fatal).
//   - ErrInvalidInterval: a tick loop was started with a non-positive interval.
package network
