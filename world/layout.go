package world

import (
	"fmt"

	"github.com/katalvlaran/pipegrid/network"
)

// Layout glyphs understood by FromLayout.
const (
	GlyphEmpty = '.'
	GlyphPipe  = '='
	GlyphTank  = 'T'
)

// FromLayout builds a world from ASCII rows at Y = 0: row i is Z = i and
// column j is X = j. Rows must be non-empty and of equal length. Tanks get
// the capacity set by WithTankCapacity.
//
// Complexity: O(W·H) placements, each with its own network cost.
func FromLayout(reg *network.Registry, rows []string, opts ...Option) (*World, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyLayout
	}
	width := len(rows[0])
	for z, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNonRectangular, z, len(row), width)
		}
		for x := 0; x < width; x++ {
			switch row[x] {
			case GlyphEmpty, ' ', GlyphPipe, GlyphTank:
			default:
				return nil, fmt.Errorf("%w: %q at %s", ErrUnknownGlyph, row[x], Pos{X: x, Z: z})
			}
		}
	}

	w := New(reg, opts...)
	for z, row := range rows {
		for x := 0; x < width; x++ {
			p := Pos{X: x, Z: z}
			var err error
			switch row[x] {
			case GlyphPipe:
				_, err = w.PlacePipe(p)
			case GlyphTank:
				_, err = w.PlaceTank(p, w.tankCap)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	w.log.Debug().Int("blocks", w.Len()).Int("networks", len(w.Networks())).Msg("layout loaded")
	return w, nil
}
