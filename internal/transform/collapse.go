package transform

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/V4T54L/causeway/internal/domain"
)

// DefaultCollapseThreshold is the shortest run of local events collapsed.
const DefaultCollapseThreshold = 2

var ErrInvalidThreshold = errors.New("collapse threshold must be greater than or equal to 2")

// CollapseSequentialNodesTransformation merges runs of consecutive nodes that
// exchange no messages into a single node. Exemptions are keyed by log event
// so they survive the node handles changing between runs.
type CollapseSequentialNodesTransformation struct {
	threshold int
	exempt    map[string]bool
}

func NewCollapseSequentialNodesTransformation() *CollapseSequentialNodesTransformation {
	return &CollapseSequentialNodesTransformation{
		threshold: DefaultCollapseThreshold,
		exempt:    make(map[string]bool),
	}
}

func (t *CollapseSequentialNodesTransformation) Threshold() int { return t.threshold }

func (t *CollapseSequentialNodesTransformation) SetThreshold(threshold int) error {
	if threshold < 2 {
		return fmt.Errorf("set threshold %d: %w", threshold, ErrInvalidThreshold)
	}
	t.threshold = threshold
	return nil
}

func eventKey(e domain.LogEvent) string {
	return e.Host + ":" + strconv.Itoa(e.LocalTime())
}

// Exempt keeps every event of id out of future collapses.
func (t *CollapseSequentialNodesTransformation) Exempt(g *domain.Graph, id domain.NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	for _, e := range n.LogEvents() {
		t.exempt[eventKey(e)] = true
	}
}

// Unexempt lifts the exemption of id. For a node without family it clears the
// whole run of family-less nodes around it.
func (t *CollapseSequentialNodesTransformation) Unexempt(g *domain.Graph, id domain.NodeID) {
	n := g.Node(id)
	if n == nil || n.IsHead() || n.IsTail() {
		return
	}
	if n.HasFamily() {
		t.clear(n)
		return
	}

	first := id
	for p := g.Prev(first); !g.Node(p).IsHead() && !g.Node(p).HasFamily(); p = g.Prev(p) {
		first = p
	}
	for cur := first; ; cur = g.Next(cur) {
		c := g.Node(cur)
		if c.IsTail() || c.HasFamily() {
			break
		}
		t.clear(c)
	}
}

func (t *CollapseSequentialNodesTransformation) clear(n *domain.Node) {
	for _, e := range n.LogEvents() {
		delete(t.exempt, eventKey(e))
	}
}

func (t *CollapseSequentialNodesTransformation) ToggleExemption(g *domain.Graph, id domain.NodeID) {
	n := g.Node(id)
	if n == nil {
		return
	}
	if t.IsExempt(n) {
		t.Unexempt(g, id)
		return
	}
	t.Exempt(g, id)
}

// IsExempt reports whether any event of n is exempt.
func (t *CollapseSequentialNodesTransformation) IsExempt(n *domain.Node) bool {
	for _, e := range n.LogEvents() {
		if t.exempt[eventKey(e)] {
			return true
		}
	}
	return false
}

// IsCollapsible reports whether id sits in a run of at least threshold
// family-less nodes.
func IsCollapsible(g *domain.Graph, id domain.NodeID, threshold int) bool {
	n := g.Node(id)
	if n == nil || n.HasFamily() || n.IsHead() || n.IsTail() {
		return false
	}
	count := 1
	for cur := g.Next(id); !g.Node(cur).IsTail() && !g.Node(cur).HasFamily(); cur = g.Next(cur) {
		count++
	}
	for cur := g.Prev(id); !g.Node(cur).IsHead() && !g.Node(cur).HasFamily(); cur = g.Prev(cur) {
		count++
	}
	return count >= threshold
}

func (t *CollapseSequentialNodesTransformation) Transform(v *View) error {
	g := v.Graph()
	for _, host := range g.Hosts() {
		head, _ := g.Head(host)
		run := 0
		for cur := g.Next(head); cur != domain.NoNode; cur = g.Next(cur) {
			n := g.Node(cur)
			if n.HasFamily() || n.IsTail() || t.IsExempt(n) {
				if run >= t.threshold {
					if err := t.collapse(v, cur, run); err != nil {
						return err
					}
				}
				run = -1
			}
			run++
		}
	}
	return nil
}

// collapse replaces the count nodes before anchor with one node.
func (t *CollapseSequentialNodesTransformation) collapse(v *View, anchor domain.NodeID, count int) error {
	g := v.Graph()
	ids := make([]domain.NodeID, count)
	cur := anchor
	for i := count - 1; i >= 0; i-- {
		cur = g.Prev(cur)
		ids[i] = cur
	}

	var events []domain.LogEvent
	var hiddenParent, hiddenChild bool
	for _, id := range ids {
		events = append(events, g.Node(id).LogEvents()...)
		s := v.NodeStyle(id)
		hiddenParent = hiddenParent || s.HasHiddenParent
		hiddenChild = hiddenChild || s.HasHiddenChild
		if err := g.Remove(id); err != nil {
			return err
		}
	}

	id, err := g.InsertBefore(anchor, events...)
	if err != nil {
		return err
	}
	s := v.NodeStyle(id)
	s.Radius = CollapsedRadius
	s.Label = strconv.Itoa(len(events))
	s.HasHiddenParent = hiddenParent
	s.HasHiddenChild = hiddenChild
	return nil
}
