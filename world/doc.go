// Package world is the host layer for fluid networks: a sparse grid of
// blocks (pipes, tanks and sources) whose edits drive network joins,
// merges, splits and refreshes.
//
// What:
//
//   - PlacePipe joins the new segment to the adjacent network, creates a
//     fresh network when it touches none, and merges when it bridges several.
//   - Remove on a pipe refreshes its network, or splits it along the
//     remaining connected components when the removal cut it apart.
//   - Tanks and sources only refresh the networks around them.
//   - SetActive excludes a pipe from acceptor discovery without removing it.
//   - Tick feeds every source into its adjacent networks, then ticks the
//     registry. Run drives Tick on an interval.
//   - FromLayout builds a world from ASCII rows: '=' is a pipe, 'T' a tank,
//     '.' or ' ' is empty. Row index maps to Z, column to X, Y is 0.
//
// Concurrency:
//
//   - Topology edits are serialized by the world. Ticks may run concurrently
//     with edits; a network retired mid-tick ignores the tick.
//   - Lock order: network lock, then the block map lock. The world never calls
//     into a network while it holds the block map lock.
//
// Errors:
//
//   - ErrOccupied:       placing onto a filled position.
//   - ErrNoBlock:        editing an empty position.
//   - ErrNotPipe:        SetActive on a tank or source.
//   - ErrEmptyLayout:    FromLayout without rows or columns.
//   - ErrNonRectangular: rows of differing lengths.
//   - ErrUnknownGlyph:   a layout character outside the legend.
package world
