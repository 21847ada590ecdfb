package domain

import "fmt"

// Edge is an undirected pair of node handles as stored by a Motif.
type Edge struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
}

// EdgeID canonicalizes a pair so that (a, b) and (b, a) share an identity.
func EdgeID(a, b NodeID) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Motif is a set of nodes and edges located by a search.
type Motif struct {
	nodes     map[NodeID]bool
	nodeOrder []NodeID
	edges     map[string]Edge
	edgeOrder []string
}

// NewMotif returns an empty motif.
func NewMotif() *Motif {
	return &Motif{
		nodes: make(map[NodeID]bool),
		edges: make(map[string]Edge),
	}
}

func (m *Motif) AddNode(id NodeID) {
	if m.nodes[id] {
		return
	}
	m.nodes[id] = true
	m.nodeOrder = append(m.nodeOrder, id)
}

func (m *Motif) AddAllNodes(ids []NodeID) {
	for _, id := range ids {
		m.AddNode(id)
	}
}

// AddEdge records the edge between a and b. It does not add the endpoints.
func (m *Motif) AddEdge(a, b NodeID) {
	key := EdgeID(a, b)
	if _, ok := m.edges[key]; ok {
		return
	}
	m.edges[key] = Edge{From: a, To: b}
	m.edgeOrder = append(m.edgeOrder, key)
}

// AddTrail adds every node of trail and an edge between each consecutive pair.
func (m *Motif) AddTrail(trail []NodeID) {
	for i, id := range trail {
		m.AddNode(id)
		if i > 0 {
			m.AddEdge(trail[i-1], id)
		}
	}
}

// Merge adds every node and edge of other.
func (m *Motif) Merge(other *Motif) {
	for _, id := range other.nodeOrder {
		m.AddNode(id)
	}
	for _, key := range other.edgeOrder {
		e := other.edges[key]
		m.AddEdge(e.From, e.To)
	}
}

func (m *Motif) HasNode(id NodeID) bool { return m.nodes[id] }

func (m *Motif) HasEdge(a, b NodeID) bool {
	_, ok := m.edges[EdgeID(a, b)]
	return ok
}

// Nodes returns the motif's nodes in insertion order.
func (m *Motif) Nodes() []NodeID {
	out := make([]NodeID, len(m.nodeOrder))
	copy(out, m.nodeOrder)
	return out
}

// Edges returns the motif's edges in insertion order.
func (m *Motif) Edges() []Edge {
	out := make([]Edge, len(m.edgeOrder))
	for i, key := range m.edgeOrder {
		out[i] = m.edges[key]
	}
	return out
}

func (m *Motif) IsEmpty() bool {
	return len(m.nodeOrder) == 0 && len(m.edgeOrder) == 0
}

// MotifGroup is an ordered collection of motifs.
type MotifGroup struct {
	motifs []*Motif
}

func NewMotifGroup() *MotifGroup {
	return &MotifGroup{}
}

// AddMotif appends m. Nil and empty motifs are skipped.
func (g *MotifGroup) AddMotif(m *Motif) {
	if m == nil || m.IsEmpty() {
		return
	}
	g.motifs = append(g.motifs, m)
}

func (g *MotifGroup) Motifs() []*Motif {
	out := make([]*Motif, len(g.motifs))
	copy(out, g.motifs)
	return out
}

func (g *MotifGroup) Len() int { return len(g.motifs) }

// Nodes concatenates the nodes of every motif. Nodes shared by several motifs
// appear once per motif.
func (g *MotifGroup) Nodes() []NodeID {
	var out []NodeID
	for _, m := range g.motifs {
		out = append(out, m.nodeOrder...)
	}
	return out
}

// Edges concatenates the edges of every motif without deduplication.
func (g *MotifGroup) Edges() []Edge {
	var out []Edge
	for _, m := range g.motifs {
		out = append(out, m.Edges()...)
	}
	return out
}
