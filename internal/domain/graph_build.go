package domain

import (
	"fmt"
	"sort"
)

type buildOptions struct {
	validateClocks bool
}

// BuildOption customizes NewGraphFromEvents.
type BuildOption func(*buildOptions)

// ValidateClocks makes construction reject logs whose per-host clocks do not
// start at 1 and increase by exactly 1, and verify afterwards that every
// vector timestamp agrees with the generated edges.
func ValidateClocks() BuildOption {
	return func(o *buildOptions) { o.validateClocks = true }
}

// NewGraphFromEvents builds the causality graph for events. Hosts appear in
// the order of their first event.
func NewGraphFromEvents(events []LogEvent, opts ...BuildOption) (*Graph, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	g := NewGraph()
	byHost := make(map[string][]LogEvent)
	var order []string
	for _, e := range events {
		if _, ok := byHost[e.Host]; !ok {
			order = append(order, e.Host)
		}
		byHost[e.Host] = append(byHost[e.Host], e)
	}

	hostNodes := make(map[string][]NodeID, len(order))
	for _, host := range order {
		evs := byHost[host]
		sort.SliceStable(evs, func(i, j int) bool {
			return evs[i].Timestamp.CompareToLocal(evs[j].Timestamp) < 0
		})

		g.AddHost(host)
		last, _ := g.Head(host)
		for i, e := range evs {
			if o.validateClocks && e.LocalTime() != i+1 {
				if i == 0 {
					return nil, eventError(e, "logical clock values for each host must start at 1, host %q starts at %d", host, e.LocalTime())
				}
				return nil, eventError(e, "clock values for a host must increase by 1, host %q goes from %d to %d", host, evs[i-1].LocalTime(), e.LocalTime())
			}
			if i > 0 && evs[i-1].LocalTime() == e.LocalTime() {
				return nil, eventError(e, "host %q has two events at local time %d", host, e.LocalTime())
			}
			id, err := g.InsertAfter(last, e)
			if err != nil {
				return nil, fmt.Errorf("splice event on line %d: %w", e.Line, err)
			}
			hostNodes[host] = append(hostNodes[host], id)
			last = id
		}
	}

	if err := linkHosts(g, order, hostNodes); err != nil {
		return nil, err
	}

	if o.validateClocks {
		if err := VerifyCausality(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

type candidate struct {
	id   NodeID
	host string
	ts   VectorTimestamp
}

// linkHosts walks every host with a running clock. Each remote component
// that advances names a candidate parent; candidates already implied by
// another candidate's clock are dropped before linking.
func linkHosts(g *Graph, order []string, hostNodes map[string][]NodeID) error {
	for _, host := range order {
		clock := make(map[string]int)
		for _, id := range hostNodes[host] {
			ev := g.nodes[id].events[0]
			vt := ev.Timestamp
			clock[host] = vt.OwnTime()

			remote := vt.Clock()
			hosts := make([]string, 0, len(remote))
			for h := range remote {
				hosts = append(hosts, h)
			}
			sort.Slice(hosts, func(i, j int) bool { return g.hostOrder[hosts[i]] < g.hostOrder[hosts[j]] })

			var cands []candidate
			for _, other := range hosts {
				t := remote[other]
				if other == host || clock[other] >= t {
					continue
				}
				clock[other] = t
				if !g.HasHost(other) {
					return eventError(ev, "vector clock contains an entry for an unrecognized host %q", other)
				}
				pid, ok := floorNode(g, hostNodes[other], t)
				if !ok {
					return eventError(ev, "vector clock contains an invalid clock value %d for host %q", t, other)
				}
				pe := g.nodes[pid].events[0]
				cands = append(cands, candidate{id: pid, host: other, ts: pe.Timestamp})
			}

			for i, c := range cands {
				dominated := false
				for j, d := range cands {
					if i != j && d.ts.Get(c.host) >= c.ts.OwnTime() {
						dominated = true
						break
					}
				}
				if !dominated {
					g.AddChild(c.id, id)
				}
			}
		}
	}
	return nil
}

// floorNode returns the latest node in ids with local time <= t. ids is in
// chain order. Times beyond the last node are rejected.
func floorNode(g *Graph, ids []NodeID, t int) (NodeID, bool) {
	if len(ids) == 0 || t > g.nodes[ids[len(ids)-1]].LocalTime() {
		return NoNode, false
	}
	i := sort.Search(len(ids), func(i int) bool { return g.nodes[ids[i]].LocalTime() > t })
	if i == 0 {
		return NoNode, false
	}
	return ids[i-1], true
}

// TopologicalSort orders interior nodes so that every node follows its
// predecessor in the chain and all of its cross-host parents.
func (g *Graph) TopologicalSort() ([]NodeID, error) {
	nodes := g.Nodes()
	inDegree := make(map[NodeID]int, len(nodes))
	var ready []NodeID
	for _, id := range nodes {
		n := g.nodes[id]
		d := len(n.parents)
		if !g.nodes[n.prev].head {
			d++
		}
		inDegree[id] = d
		if d == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]NodeID, 0, len(nodes))
	for len(ready) > 0 {
		cur := ready[len(ready)-1]
		ready = ready[:len(ready)-1]
		sorted = append(sorted, cur)

		next := g.Children(cur)
		if n := g.nodes[cur]; !g.nodes[n.next].tail {
			next = append(next, n.next)
		}
		for _, o := range next {
			inDegree[o]--
			if inDegree[o] == 0 {
				ready = append(ready, o)
			}
		}
	}
	if len(sorted) != len(nodes) {
		return nil, ErrCyclic
	}
	return sorted, nil
}

// VerifyCausality recomputes every node's vector clock from the graph's edges
// and checks it against the clock carried by the node's first event.
func VerifyCausality(g *Graph) error {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return &ConstructionError{Index: -1, Msg: "the log is intransitive: three events x, y and z exist such that x occurs before y, y before z and z before x", Err: err}
	}

	clocks := make(map[NodeID]map[string]int, len(sorted))
	for _, host := range g.hosts {
		t := 0
		for _, id := range g.HostNodes(host) {
			t++
			clocks[id] = map[string]int{host: t}
		}
	}

	for _, id := range sorted {
		n := g.nodes[id]
		ev := n.events[0]
		want := clocks[id]
		got := ev.Timestamp.Clock()
		if !sameClock(want, got) {
			return eventError(ev, "impermissible vector clock, expected %v", want)
		}

		next := g.Children(id)
		if !g.nodes[n.next].tail {
			next = append(next, n.next)
		}
		for _, c := range next {
			merged := clocks[c]
			for h, t := range want {
				if merged[h] < t {
					merged[h] = t
				}
			}
		}
	}
	return nil
}

func sameClock(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for h, t := range a {
		if b[h] != t {
			return false
		}
	}
	return true
}
