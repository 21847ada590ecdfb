package motif

import "github.com/V4T54L/causeway/internal/domain"

const (
	stateStart state = iota
	stateResponderChain
	stateEnd
)

// RequestResponseFinder finds a host sending a single message, the receiver
// replying after a bounded number of local events, and the reply arriving
// back on the sender within a bounded number of local events.
type RequestResponseFinder struct {
	maxLERequester int
	maxLEResponder int
}

// NewRequestResponseFinder bounds the events the requester may log between
// request and response, and the events the responder may log before replying.
func NewRequestResponseFinder(maxLERequester, maxLEResponder int) *RequestResponseFinder {
	return &RequestResponseFinder{maxLERequester: maxLERequester, maxLEResponder: maxLEResponder}
}

func (f *RequestResponseFinder) Find(g *domain.Graph) (*domain.MotifGroup, error) {
	group := domain.NewMotifGroup()
	seen := make(map[domain.NodeID]bool)

	t := newTraversal()
	t.on(stateStart, func(t *traversal, id domain.NodeID, _ int) {
		n := g.Node(id)
		if seen[id] || len(g.Children(id)) > 1 || n.HasParents() {
			return
		}
		t.pushAll(g.Children(id), stateResponderChain, 0)
	})
	t.on(stateResponderChain, func(t *traversal, id domain.NodeID, chain int) {
		n := g.Node(id)
		fail := seen[id] ||
			n.IsTail() ||
			len(g.Parents(id)) > 1 ||
			(n.HasParents() && chain != 0) ||
			len(g.Children(id)) > 1 ||
			chain > f.maxLEResponder
		if fail {
			return
		}
		if n.HasChildren() {
			t.pushAll(g.Children(id), stateEnd, 0)
			return
		}
		t.push(g.Next(id), stateResponderChain, chain+n.LogEventCount())
	})
	t.on(stateEnd, func(t *traversal, id domain.NodeID, _ int) {
		trail := t.trail()
		start := trail[len(trail)-1]
		n := g.Node(id)
		if seen[id] || n.HasChildren() || len(g.Parents(id)) > 1 || n.Host() != g.Node(start).Host() {
			return
		}

		dist := 0
		for cur := id; cur != start; cur = g.Prev(cur) {
			c := g.Node(cur)
			if c == nil || c.IsHead() {
				return
			}
			dist += c.LogEventCount()
		}
		if dist > f.maxLERequester {
			return
		}

		m := domain.NewMotif()
		m.AddTrail(trail)
		group.AddMotif(m)
		for _, tid := range trail {
			seen[tid] = true
		}
		t.end()
	})

	for _, id := range g.Nodes() {
		t.reset()
		t.push(id, stateStart, 0)
		t.run()
	}
	return group, nil
}
