package motif

import "github.com/V4T54L/causeway/internal/domain"

type state int

type visitFunc func(t *traversal, id domain.NodeID, data int)

type frame struct {
	id    domain.NodeID
	state state
	data  int
}

// traversal is a depth-first walk driven by per-state visit functions. Each
// stacked node carries the state it is visited in and an integer payload.
type traversal struct {
	visits  map[state]visitFunc
	stack   []frame
	parent  map[domain.NodeID]domain.NodeID
	current domain.NodeID
	ended   bool
}

func newTraversal() *traversal {
	t := &traversal{visits: make(map[state]visitFunc)}
	t.reset()
	return t
}

func (t *traversal) on(s state, fn visitFunc) { t.visits[s] = fn }

func (t *traversal) reset() {
	t.stack = t.stack[:0]
	t.parent = make(map[domain.NodeID]domain.NodeID)
	t.current = domain.NoNode
	t.ended = false
}

func (t *traversal) push(id domain.NodeID, s state, data int) {
	t.stack = append(t.stack, frame{id: id, state: s, data: data})
	t.parent[id] = t.current
}

func (t *traversal) pushAll(ids []domain.NodeID, s state, data int) {
	for _, id := range ids {
		t.push(id, s, data)
	}
}

func (t *traversal) end() { t.ended = true }

func (t *traversal) run() {
	for !t.ended && len(t.stack) > 0 {
		f := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.current = f.id
		if fn, ok := t.visits[f.state]; ok {
			fn(t, f.id, f.data)
		}
	}
}

// trail returns the path from the current node back to the node the walk
// started from.
func (t *traversal) trail() []domain.NodeID {
	var out []domain.NodeID
	for id := t.current; id != domain.NoNode; {
		out = append(out, id)
		p, ok := t.parent[id]
		if !ok {
			break
		}
		id = p
	}
	return out
}
