package motif

import (
	"fmt"
	"sort"

	"github.com/V4T54L/causeway/internal/domain"
)

// Navigator steps through the motifs of a group from the top of the graph
// down. A motif's position is the shallowest causal depth of its nodes.
type Navigator struct {
	motifs []*domain.Motif
	index  int
	wrap   bool
}

// NewNavigator orders group's motifs by their position in g.
func NewNavigator(g *domain.Graph, group *domain.MotifGroup) (*Navigator, error) {
	depth, err := depths(g)
	if err != nil {
		return nil, fmt.Errorf("order motifs: %w", err)
	}

	type entry struct {
		motif *domain.Motif
		top   int
	}
	entries := make([]entry, 0, group.Len())
	for _, m := range group.Motifs() {
		top := -1
		for _, id := range m.Nodes() {
			if d, ok := depth[id]; ok && (top < 0 || d < top) {
				top = d
			}
		}
		entries = append(entries, entry{motif: m, top: top})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].top < entries[j].top })

	nav := &Navigator{index: -1, wrap: true}
	for _, e := range entries {
		nav.motifs = append(nav.motifs, e.motif)
	}
	return nav, nil
}

// depths assigns every interior node the length of the longest causal chain
// leading to it.
func depths(g *domain.Graph) (map[domain.NodeID]int, error) {
	sorted, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}
	depth := make(map[domain.NodeID]int, len(sorted))
	for _, id := range sorted {
		d := 0
		if p := g.Prev(id); !g.Node(p).IsHead() {
			d = depth[p] + 1
		}
		for _, p := range g.Parents(id) {
			if depth[p]+1 > d {
				d = depth[p] + 1
			}
		}
		depth[id] = d
	}
	return depth, nil
}

// SetWrap controls whether stepping past either end wraps around. It is on by
// default.
func (n *Navigator) SetWrap(wrap bool) { n.wrap = wrap }

func (n *Navigator) Len() int { return len(n.motifs) }

// Next advances to the following motif. It reports false when the navigator
// has run off the end without wrapping.
func (n *Navigator) Next() (*domain.Motif, bool) {
	n.index++
	if n.index >= len(n.motifs) {
		if n.wrap {
			n.index = 0
		} else {
			n.index = len(n.motifs)
		}
	}
	return n.current()
}

// Prev steps back to the preceding motif.
func (n *Navigator) Prev() (*domain.Motif, bool) {
	n.index--
	if n.index < 0 {
		if n.wrap {
			n.index = len(n.motifs) - 1
		} else {
			n.index = -1
		}
	}
	return n.current()
}

func (n *Navigator) current() (*domain.Motif, bool) {
	if n.index < 0 || n.index >= len(n.motifs) {
		return nil, false
	}
	return n.motifs[n.index], true
}
