// Package transform reshapes a causality graph for presentation. A run
// clones the base graph into a View and applies an ordered list of
// Transformations to it.
package transform

import (
	"github.com/V4T54L/causeway/internal/domain"
)

const (
	DefaultRadius   = 5.0
	HighlightRadius = DefaultRadius * 1.2
	CollapsedRadius = 15.0
	DimOpacity      = 0.2
	MotifEdgeColor  = "#333"
)

// NodeStyle is the visual state of one node.
type NodeStyle struct {
	Opacity         float64 `json:"opacity"`
	Radius          float64 `json:"radius"`
	Highlighted     bool    `json:"highlighted,omitempty"`
	Label           string  `json:"label,omitempty"`
	HasHiddenParent bool    `json:"has_hidden_parent,omitempty"`
	HasHiddenChild  bool    `json:"has_hidden_child,omitempty"`
	Unique          bool    `json:"unique,omitempty"`
}

// EdgeStyle is the visual state of one edge. Dashed edges were derived while
// hiding a host.
type EdgeStyle struct {
	Opacity float64 `json:"opacity"`
	Color   string  `json:"color,omitempty"`
	Dashed  bool    `json:"dashed,omitempty"`
}

func defaultNodeStyle() *NodeStyle { return &NodeStyle{Opacity: 1, Radius: DefaultRadius} }

func defaultEdgeStyle() *EdgeStyle { return &EdgeStyle{Opacity: 1} }

// View is a working copy of a graph plus the visual state transformations
// have attached to it.
type View struct {
	graph       *domain.Graph
	nodes       map[domain.NodeID]*NodeStyle
	edges       map[string]*EdgeStyle
	hiddenHosts []string
	motifs      *domain.MotifGroup
	diffs       []Diff
}

// NewView wraps g. The view takes ownership of g.
func NewView(g *domain.Graph) *View {
	return &View{
		graph: g,
		nodes: make(map[domain.NodeID]*NodeStyle),
		edges: make(map[string]*EdgeStyle),
	}
}

func (v *View) Graph() *domain.Graph { return v.graph }

// NodeStyle returns the mutable style of id, creating the default on first
// use.
func (v *View) NodeStyle(id domain.NodeID) *NodeStyle {
	s, ok := v.nodes[id]
	if !ok {
		s = defaultNodeStyle()
		v.nodes[id] = s
	}
	return s
}

// EdgeStyle returns the mutable style of the edge between a and b.
func (v *View) EdgeStyle(a, b domain.NodeID) *EdgeStyle {
	key := domain.EdgeID(a, b)
	s, ok := v.edges[key]
	if !ok {
		s = defaultEdgeStyle()
		v.edges[key] = s
	}
	return s
}

// nodeStyleOf returns a copy of the style of id without recording a default.
func (v *View) nodeStyleOf(id domain.NodeID) NodeStyle {
	if s, ok := v.nodes[id]; ok {
		return *s
	}
	return *defaultNodeStyle()
}

func (v *View) edgeStyleOf(a, b domain.NodeID) EdgeStyle {
	if s, ok := v.edges[domain.EdgeID(a, b)]; ok {
		return *s
	}
	return *defaultEdgeStyle()
}

// AddHiddenEdgeToFamily marks the family of id before id disappears from the
// view: its children gain a hidden parent and its parents a hidden child.
func (v *View) AddHiddenEdgeToFamily(id domain.NodeID) {
	for _, c := range v.graph.Children(id) {
		v.NodeStyle(c).HasHiddenParent = true
	}
	for _, p := range v.graph.Parents(id) {
		v.NodeStyle(p).HasHiddenChild = true
	}
}

func (v *View) hideHost(host string) {
	for _, h := range v.hiddenHosts {
		if h == host {
			return
		}
	}
	v.hiddenHosts = append(v.hiddenHosts, host)
}

// HiddenHosts lists the hosts removed during the run, in the order they were
// hidden.
func (v *View) HiddenHosts() []string {
	out := make([]string, len(v.hiddenHosts))
	copy(out, v.hiddenHosts)
	return out
}

// Motifs returns the group found by the last motif highlight, or nil.
func (v *View) Motifs() *domain.MotifGroup { return v.motifs }

// Diffs returns the comparisons made during the run, in order.
func (v *View) Diffs() []Diff {
	out := make([]Diff, len(v.diffs))
	copy(out, v.diffs)
	return out
}

// VisibleNodes lists every node that is drawn, head sentinels included.
func (v *View) VisibleNodes() []domain.NodeID {
	var out []domain.NodeID
	for _, host := range v.graph.Hosts() {
		head, _ := v.graph.Head(host)
		out = append(out, head)
		out = append(out, v.graph.HostNodes(host)...)
	}
	return out
}

// VisibleEdges lists every drawn edge: the host chains from their head and
// the cross-host edges directed parent to child.
func (v *View) VisibleEdges() []domain.Edge {
	var out []domain.Edge
	for _, host := range v.graph.Hosts() {
		head, _ := v.graph.Head(host)
		prev := head
		for _, id := range v.graph.HostNodes(host) {
			out = append(out, domain.Edge{From: prev, To: id})
			prev = id
		}
	}
	for _, id := range v.graph.Nodes() {
		for _, c := range v.graph.Children(id) {
			out = append(out, domain.Edge{From: id, To: c})
		}
	}
	return out
}

// Rendering is the output of a pipeline run. Style slices are index aligned
// with Graph.Nodes and Graph.Links. Motifs hold literal node indices.
type Rendering struct {
	Graph       domain.Literal `json:"graph"`
	NodeStyles  []NodeStyle    `json:"node_styles"`
	LinkStyles  []EdgeStyle    `json:"link_styles"`
	HiddenHosts []string       `json:"hidden_hosts"`
	Motifs      [][]int        `json:"motifs"`
	Diffs       []Diff         `json:"diffs,omitempty"`
}

// Render flattens the view. It does not modify the view.
func (v *View) Render() Rendering {
	lit, order := v.graph.ToIndexedLiteral(v.hiddenHosts)
	r := Rendering{
		Graph:       lit,
		NodeStyles:  make([]NodeStyle, len(order)),
		LinkStyles:  make([]EdgeStyle, len(lit.Links)),
		HiddenHosts: v.HiddenHosts(),
		Motifs:      [][]int{},
	}
	if len(v.diffs) > 0 {
		r.Diffs = v.Diffs()
	}

	index := make(map[domain.NodeID]int, len(order))
	for i, id := range order {
		index[id] = i
		r.NodeStyles[i] = v.nodeStyleOf(id)
	}
	for i, l := range lit.Links {
		r.LinkStyles[i] = v.edgeStyleOf(order[l.Source], order[l.Target])
	}

	if v.motifs != nil {
		for _, m := range v.motifs.Motifs() {
			var idx []int
			for _, id := range m.Nodes() {
				if i, ok := index[id]; ok {
					idx = append(idx, i)
				}
			}
			r.Motifs = append(r.Motifs, idx)
		}
	}
	return r
}
