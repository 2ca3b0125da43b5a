// File: components.go
// Role: connected-component discovery over transmitters, used to split a
// network after one of its segments disappeared.
package network

// Components partitions the valid transmitters of ts into connected
// components. Two transmitters are connected when one lists the other as a
// Conduit neighbour. Only members of ts are walked, so the result describes
// the remainder of one network, not the whole world.
//
// Components appear in the order of their first member in ts; members of a
// component appear in BFS order.
//
// Time:   O(T·d), where d is the neighbour count per host.
// Memory: O(T) for the membership and visited sets.
func Components(ts []*Transmitter) [][]*Transmitter {
	member := make(map[*Transmitter]struct{}, len(ts))
	for _, t := range ts {
		if t.Valid() {
			member[t] = struct{}{}
		}
	}

	seen := make(map[*Transmitter]bool, len(member))
	var comps [][]*Transmitter
	for _, t0 := range ts {
		if _, ok := member[t0]; !ok || seen[t0] {
			continue
		}
		// BFS to collect component
		queue := []*Transmitter{t0}
		seen[t0] = true
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			for _, nb := range u.host.Neighbors() {
				c, ok := nb.Node.(Conduit)
				if !ok {
					continue
				}
				v := c.Transmitter()
				if v == nil || seen[v] {
					continue
				}
				if _, ok := member[v]; !ok {
					continue
				}
				seen[v] = true
				queue = append(queue, v)
			}
		}
		comps = append(comps, queue)
	}
	return comps
}
