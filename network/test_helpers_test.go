package network_test

import (
	"fmt"

	"github.com/katalvlaran/pipegrid/network"
)

// acceptor is the acceptor capability used by the tests.
type acceptor interface {
	Name() string
}

// sink is a plain acceptor.
type sink struct{ name string }

func (s *sink) Name() string { return s.name }

// node is a Host + Conduit for tests; neighbours are wired by hand.
type node struct {
	valid     bool
	neighbors []network.Neighbor
	t         *network.Transmitter
}

func (n *node) Valid() bool                       { return n.valid }
func (n *node) Neighbors() []network.Neighbor     { return n.neighbors }
func (n *node) Transmitter() *network.Transmitter { return n.t }
func (n *node) attach(d network.Direction, v any) { n.neighbors = append(n.neighbors, network.Neighbor{Dir: d, Node: v}) }

// newNode creates a valid node wrapped by a transmitter of capacity 10.
func newNode(reg *network.Registry) *node {
	n := &node{valid: true}
	n.t = network.NewTransmitter(n, reg, 10)
	return n
}

// link connects a and b along d (a -> b) and its opposite.
func link(a, b *node, d network.Direction) {
	a.attach(d, b)
	b.attach(d.Opposite(), a)
}

// line builds n nodes connected West -> East.
func line(reg *network.Registry, n int) []*node {
	nodes := make([]*node, n)
	for i := range nodes {
		nodes[i] = newNode(reg)
		if i > 0 {
			link(nodes[i-1], nodes[i], network.East)
		}
	}
	return nodes
}

func transmitters(nodes []*node) []*network.Transmitter {
	out := make([]*network.Transmitter, len(nodes))
	for i, n := range nodes {
		out[i] = n.t
	}
	return out
}

// testNet is a minimal Network over acceptor.
type testNet struct {
	*network.Base[acceptor]
	ticks       int
	clientTicks int
}

func newTestNet(reg *network.Registry) *testNet {
	return &testNet{Base: network.NewBase[acceptor](reg)}
}

func (n *testNet) Capacity() int      { return 10 * n.Size() }
func (n *testNet) NeededInfo() string { return fmt.Sprintf("needed %d", n.Capacity()) }
func (n *testNet) FlowInfo() string   { return "flow" }
func (n *testNet) StoredInfo() string { return "stored" }
func (n *testNet) Tick()              { n.ticks++ }
func (n *testNet) ClientTick()        { n.clientTicks++ }

var _ network.Network = (*testNet)(nil)
