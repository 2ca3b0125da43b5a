// Package fluid instantiates the dynamic network core for fluids: a network
// buffers one fluid kind, pushes it out to the tanks and machines around it
// each tick, and keeps a smoothed transfer indicator for display.
//
// What:
//
//   - Network embeds network.Base[Acceptor] and adds the stored stack,
//     capacity = UnitCapacity × transmitters, the intake path (Emit), the
//     outflow path (TickEmit), the authoritative tick state machine and the
//     presentation ramp (ClientTick).
//   - Shares splits an amount evenly across N acceptors; the remainder goes
//     one unit at a time to the first acceptors of a freshly shuffled order.
//   - Merge unions networks, Split breaks one network into components; both
//     carry the stored fluid and the display reference over.
//   - Distributor fans TransferEvent notifications out to observers.
//   - Tank is a bounded single-kind Acceptor.
//
// Refusals:
//
//   - Empty stacks, kind mismatches and full networks all yield 0. No
//     operation in this package returns an error; retired networks are
//     inert. Reusing a retired network for Merge or Split panics with
//     network.ErrAbsorbed.
//
// Concurrency:
//
//   - Authoritative state (stored, transfer delay) is guarded by the
//     embedded network lock. The transferring flag is atomic and the display
//     reference has its own small lock, so ClientTick never waits on a tick
//     and tolerates slightly stale values.
//
// Complexity:
//
//   - Emit:     O(1).
//   - TickEmit: O(A) for A acceptors plus their Fill cost.
//   - Merge:    O(total transmitters · d).
package fluid
