// File: direction.go
// Role: the six axis directions used to address physical neighbours.
package network

// Direction is one of the six axis-aligned directions, or Unknown.
type Direction int8

const (
	// Down is -Y.
	Down Direction = iota
	// Up is +Y.
	Up
	// North is -Z.
	North
	// South is +Z.
	South
	// West is -X.
	West
	// East is +X.
	East
	// Unknown is the zero-information direction; its opposite is itself.
	Unknown
)

// Directions lists the six valid directions in canonical order.
var Directions = [6]Direction{Down, Up, North, South, West, East}

var directionOffsets = [6][3]int{
	{0, -1, 0},
	{0, 1, 0},
	{0, 0, -1},
	{0, 0, 1},
	{-1, 0, 0},
	{1, 0, 0},
}

var directionNames = [7]string{"down", "up", "north", "south", "west", "east", "unknown"}

// Valid reports whether d is one of the six axis directions.
func (d Direction) Valid() bool { return d >= Down && d <= East }

// Opposite returns the direction pointing the other way along the same axis.
// Unknown maps to Unknown.
// Complexity: O(1).
func (d Direction) Opposite() Direction {
	if !d.Valid() {
		return Unknown
	}
	// Pairs are laid out as (0,1), (2,3), (4,5).
	return d ^ 1
}

// Offset returns the unit (dx, dy, dz) step for d; Unknown yields (0,0,0).
func (d Direction) Offset() (dx, dy, dz int) {
	if !d.Valid() {
		return 0, 0, 0
	}
	o := directionOffsets[d]
	return o[0], o[1], o[2]
}

// String returns the lower-case direction name.
func (d Direction) String() string {
	if !d.Valid() {
		return directionNames[Unknown]
	}
	return directionNames[d]
}
