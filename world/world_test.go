// File: world/world_test.go
package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/pipegrid/fluid"
	"github.com/katalvlaran/pipegrid/network"
	"github.com/katalvlaran/pipegrid/world"
)

func at(x, z int) world.Pos { return world.Pos{X: x, Z: z} }

func mustLayout(t *testing.T, rows ...string) *world.World {
	t.Helper()
	w, err := world.FromLayout(network.NewRegistry(), rows)
	require.NoError(t, err)
	return w
}

func netOf(t *testing.T, w *world.World, p world.Pos) *fluid.Network {
	t.Helper()
	pipe, ok := w.Pipe(p)
	require.True(t, ok, "no pipe at %s", p)
	n, ok := pipe.Network()
	require.True(t, ok, "pipe at %s has no network", p)
	return n
}

func TestPos_Offset(t *testing.T) {
	p := world.Pos{X: 1, Y: 2, Z: 3}
	assert.Equal(t, world.Pos{X: 2, Y: 2, Z: 3}, p.Offset(network.East))
	assert.Equal(t, world.Pos{X: 1, Y: 1, Z: 3}, p.Offset(network.Down))
	assert.Equal(t, world.Pos{X: 1, Y: 2, Z: 2}, p.Offset(network.North))
	assert.Equal(t, p, p.Offset(network.Unknown))
	assert.Equal(t, "(1,2,3)", p.String())
}

// TestPlacePipe_JoinOrCreate checks that an isolated pipe gets its own
// network and an adjacent one joins it.
func TestPlacePipe_JoinOrCreate(t *testing.T) {
	reg := network.NewRegistry()
	w := world.New(reg)

	_, err := w.PlacePipe(at(0, 0))
	require.NoError(t, err)
	_, err = w.PlacePipe(at(1, 0))
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())
	assert.Equal(t, 2, netOf(t, w, at(0, 0)).Size())

	_, err = w.PlacePipe(at(5, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())
	assert.Len(t, w.Networks(), 2)
}

// TestPlacePipe_BridgeMerges joins two networks through a new middle pipe.
//
//	= . =   ->   = = =
func TestPlacePipe_BridgeMerges(t *testing.T) {
	w := mustLayout(t, "=.=")
	left, right := netOf(t, w, at(0, 0)), netOf(t, w, at(2, 0))
	require.NotEqual(t, left.ID(), right.ID())
	left.Emit(fluid.NewStack(fluid.Water, 600), true)
	right.Emit(fluid.NewStack(fluid.Water, 400), true)

	_, err := w.PlacePipe(at(1, 0))
	require.NoError(t, err)

	merged := netOf(t, w, at(1, 0))
	assert.Equal(t, 3, merged.Size())
	assert.Same(t, merged, netOf(t, w, at(0, 0)))
	assert.Same(t, merged, netOf(t, w, at(2, 0)))
	assert.True(t, left.Absorbed())
	assert.True(t, right.Absorbed())
	s, ok := merged.Stored()
	require.True(t, ok)
	assert.Equal(t, 1000, s.Amount)
	assert.Equal(t, 1, w.Registry().Len())
}

func TestPlace_Occupied(t *testing.T) {
	w := mustLayout(t, "=T")
	_, err := w.PlacePipe(at(0, 0))
	assert.ErrorIs(t, err, world.ErrOccupied)
	_, err = w.PlaceTank(at(1, 0), 10)
	assert.ErrorIs(t, err, world.ErrOccupied)
	_, err = w.PlaceSource(at(0, 0), fluid.NewStack(fluid.Water, 1))
	assert.ErrorIs(t, err, world.ErrOccupied)
}

// TestRemove_MiddleSplits cuts a line of five pipes in the middle.
func TestRemove_MiddleSplits(t *testing.T) {
	w := mustLayout(t, "=====")
	orig := netOf(t, w, at(0, 0))
	require.Equal(t, 5, orig.Size())
	require.Equal(t, 3000, orig.Emit(fluid.NewStack(fluid.Water, 3000), true))

	require.NoError(t, w.Remove(at(2, 0)))

	assert.True(t, orig.Absorbed())
	left, right := netOf(t, w, at(0, 0)), netOf(t, w, at(4, 0))
	assert.NotEqual(t, left.ID(), right.ID())
	assert.Same(t, left, netOf(t, w, at(1, 0)))
	assert.Equal(t, 2, left.Size())
	assert.Equal(t, 2, right.Size())
	assert.Equal(t, 2, w.Registry().Len())

	ls, _ := left.Stored()
	rs, _ := right.Stored()
	assert.Equal(t, 3000, ls.Amount+rs.Amount)
}

// TestRemove_EndRefreshesInPlace keeps the network when the rest stays connected.
func TestRemove_EndRefreshesInPlace(t *testing.T) {
	w := mustLayout(t, "===")
	n := netOf(t, w, at(0, 0))

	require.NoError(t, w.Remove(at(2, 0)))
	assert.False(t, n.Absorbed())
	assert.Equal(t, 2, n.Size())
	_, ok := w.Pipe(at(2, 0))
	assert.False(t, ok)
}

func TestRemove_LastPipeDeregisters(t *testing.T) {
	w := mustLayout(t, "=")
	require.NoError(t, w.Remove(at(0, 0)))
	assert.Zero(t, w.Registry().Len())
	assert.Zero(t, w.Len())
}

func TestRemove_NoBlock(t *testing.T) {
	w := world.New(network.NewRegistry())
	assert.ErrorIs(t, w.Remove(at(3, 3)), world.ErrNoBlock)
}

// TestTank_DiscoveryFollowsPlacement checks tanks appear and disappear from
// the acceptor view of the adjacent network.
func TestTank_DiscoveryFollowsPlacement(t *testing.T) {
	w := mustLayout(t, "=T")
	n := netOf(t, w, at(0, 0))
	require.Equal(t, 1, n.AcceptorSize())
	d, ok := n.Direction(mustTank(t, w, at(1, 0)))
	require.True(t, ok)
	assert.Equal(t, network.East, d)

	require.NoError(t, w.Remove(at(1, 0)))
	assert.Zero(t, n.AcceptorSize())

	_, err := w.PlaceTank(at(0, 1), 500)
	require.NoError(t, err)
	assert.Equal(t, 1, n.AcceptorSize())
}

func mustTank(t *testing.T, w *world.World, p world.Pos) fluid.Acceptor {
	t.Helper()
	tank, ok := w.Tank(p)
	require.True(t, ok)
	return tank
}

// TestSource_FeedsEachTick runs a source into a pipe that drains into a tank.
//
//	S
//	= = T
func TestSource_FeedsEachTick(t *testing.T) {
	w := mustLayout(t, "==T")
	src, err := w.PlaceSource(at(0, -1), fluid.NewStack(fluid.Water, 100))
	require.NoError(t, err)
	assert.Equal(t, at(0, -1), src.Pos())

	for i := 0; i < 3; i++ {
		w.Tick()
	}
	tank, _ := w.Tank(at(2, 0))
	assert.Equal(t, 300, tank.Amount())
	assert.EqualValues(t, 3, w.Registry().Ticks())

	src.SetStack(fluid.NewStack(fluid.Water, 50))
	w.Tick()
	assert.Equal(t, 350, tank.Amount())

	require.NoError(t, w.Remove(src.Pos()))
	w.Tick()
	assert.Equal(t, 350, tank.Amount())
}

// TestSource_RespectsKind checks a source of another kind cannot feed a
// network already holding fluid.
func TestSource_RespectsKind(t *testing.T) {
	w := mustLayout(t, "==")
	n := netOf(t, w, at(0, 0))
	n.Emit(fluid.NewStack(fluid.Water, 100), true)
	_, err := w.PlaceSource(at(0, 1), fluid.NewStack(fluid.Lava, 100))
	require.NoError(t, err)

	w.Tick()
	s, ok := n.Stored()
	require.True(t, ok)
	assert.Equal(t, fluid.NewStack(fluid.Water, 100), s)
}

func TestSetActive(t *testing.T) {
	w := mustLayout(t, "=T")
	n := netOf(t, w, at(0, 0))

	require.NoError(t, w.SetActive(at(0, 0), true))
	assert.Zero(t, n.AcceptorSize())
	require.NoError(t, w.SetActive(at(0, 0), false))
	assert.Equal(t, 1, n.AcceptorSize())

	assert.ErrorIs(t, w.SetActive(at(1, 0), true), world.ErrNotPipe)
	assert.ErrorIs(t, w.SetActive(at(9, 9), true), world.ErrNoBlock)
}

func TestFromLayout_Errors(t *testing.T) {
	reg := network.NewRegistry()
	cases := []struct {
		name string
		rows []string
		want error
	}{
		{"no rows", nil, world.ErrEmptyLayout},
		{"empty row", []string{""}, world.ErrEmptyLayout},
		{"ragged", []string{"==", "="}, world.ErrNonRectangular},
		{"glyph", []string{"=x"}, world.ErrUnknownGlyph},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := world.FromLayout(reg, tc.rows)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, reg.Len(), "failed layouts create no networks")
}

func TestFromLayout_Components(t *testing.T) {
	u := mustLayout(t,
		"=.=",
		"=.=",
		"===",
	)
	assert.Len(t, u.Networks(), 1)
	assert.Equal(t, 7, u.Networks()[0].Size())

	apart := mustLayout(t,
		"=.=",
		"=T=",
	)
	nets := apart.Networks()
	require.Len(t, nets, 2)
	for _, n := range nets {
		assert.Equal(t, 2, n.Size())
		assert.Equal(t, 1, n.AcceptorSize(), "both columns see the shared tank")
	}
}

func TestFromLayout_TankCapacity(t *testing.T) {
	w, err := world.FromLayout(network.NewRegistry(), []string{"T"}, world.WithTankCapacity(123))
	require.NoError(t, err)
	tank, ok := w.Tank(at(0, 0))
	require.True(t, ok)
	assert.Equal(t, 123, tank.Capacity())
}

// TestWorld_FluidConfig checks the unit capacity reaches new networks.
func TestWorld_FluidConfig(t *testing.T) {
	w, err := world.FromLayout(network.NewRegistry(), []string{"=="},
		world.WithFluidConfig(fluid.Config{UnitCapacity: 250, HoldTicks: 2, ScaleStep: 0.05}))
	require.NoError(t, err)
	n := netOf(t, w, at(0, 0))
	assert.Equal(t, 500, n.Capacity())
	pipe, _ := w.Pipe(at(0, 0))
	assert.Equal(t, 500, pipe.Transmitter().NetworkCapacity())
}

// TestSubscribe_SeesEveryNetwork verifies events from networks created at
// different times reach one observer.
func TestSubscribe_SeesEveryNetwork(t *testing.T) {
	w := mustLayout(t, "=.=")
	seen := map[network.ID]bool{}
	w.Subscribe(func(ev fluid.TransferEvent) { seen[ev.Network] = true })

	w.Tick()
	assert.Len(t, seen, 2)
}
