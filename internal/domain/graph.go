package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// NodeID is a stable handle to a node in a Graph's arena.
type NodeID int

// NoNode is returned where a handle is absent, e.g. the successor of a tail.
const NoNode NodeID = -1

var (
	// ErrSentinel is returned when an operation is attempted on a head or
	// tail node that only makes sense for interior nodes.
	ErrSentinel = errors.New("operation not permitted on head or tail node")
	// ErrNodeNotFound is returned when a handle does not address a live node.
	ErrNodeNotFound = errors.New("node not found")
)

// Node is one position in a host's chain. Interior nodes carry one or more
// log events from the same host; head and tail sentinels carry none.
type Node struct {
	id       NodeID
	host     string
	events   []LogEvent
	head     bool
	tail     bool
	prev     NodeID
	next     NodeID
	parents  map[string]NodeID
	children map[string]NodeID
}

func (n *Node) ID() NodeID         { return n.id }
func (n *Node) Host() string       { return n.host }
func (n *Node) IsHead() bool       { return n.head }
func (n *Node) IsTail() bool       { return n.tail }
func (n *Node) LogEventCount() int { return len(n.events) }
func (n *Node) HasParents() bool   { return len(n.parents) > 0 }
func (n *Node) HasChildren() bool  { return len(n.children) > 0 }
func (n *Node) HasFamily() bool    { return n.HasParents() || n.HasChildren() }
func (n *Node) isSentinel() bool   { return n.head || n.tail }

// LogEvents returns a copy of the node's events.
func (n *Node) LogEvents() []LogEvent {
	out := make([]LogEvent, len(n.events))
	copy(out, n.events)
	return out
}

// FirstLogEvent returns the earliest event of an interior node.
func (n *Node) FirstLogEvent() (LogEvent, bool) {
	if len(n.events) == 0 {
		return LogEvent{}, false
	}
	return n.events[0], true
}

// LocalTime orders nodes within a host. Heads sort before every event and
// tails after.
func (n *Node) LocalTime() int {
	switch {
	case n.head:
		return 0
	case n.tail:
		return math.MaxInt
	case len(n.events) == 0:
		return 0
	default:
		return n.events[0].LocalTime()
	}
}

// Graph is the causality graph: one doubly linked chain per host, bracketed by
// head and tail sentinels, plus cross-host parent/child edges. Edges form a
// covering relation, so every node has at most one direct parent and one
// direct child per remote host.
//
// Graph is not safe for concurrent use. Callers that need to transform a
// shared base graph should work on a Clone.
type Graph struct {
	nodes     []*Node
	hosts     []string
	hostOrder map[string]int
	heads     map[string]NodeID
	tails     map[string]NodeID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		hostOrder: make(map[string]int),
		heads:     make(map[string]NodeID),
		tails:     make(map[string]NodeID),
	}
}

func (g *Graph) alloc(host string, events []LogEvent, head, tail bool) *Node {
	n := &Node{
		id:       NodeID(len(g.nodes)),
		host:     host,
		events:   events,
		head:     head,
		tail:     tail,
		prev:     NoNode,
		next:     NoNode,
		parents:  make(map[string]NodeID),
		children: make(map[string]NodeID),
	}
	g.nodes = append(g.nodes, n)
	return n
}

// Node resolves a handle. It returns nil for removed or unknown handles.
func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// AddHost creates the head and tail sentinels for host if it is not present.
func (g *Graph) AddHost(host string) {
	if _, ok := g.heads[host]; ok {
		return
	}
	head := g.alloc(host, nil, true, false)
	tail := g.alloc(host, nil, false, true)
	head.next = tail.id
	tail.prev = head.id
	g.heads[host] = head.id
	g.tails[host] = tail.id
	if _, seen := g.hostOrder[host]; !seen {
		g.hostOrder[host] = len(g.hostOrder)
	}
	g.hosts = append(g.hosts, host)
}

// HasHost reports whether host is part of the graph.
func (g *Graph) HasHost(host string) bool {
	_, ok := g.heads[host]
	return ok
}

// Hosts returns the hosts in the order they were added.
func (g *Graph) Hosts() []string {
	out := make([]string, len(g.hosts))
	copy(out, g.hosts)
	return out
}

// Head returns the head sentinel of host.
func (g *Graph) Head(host string) (NodeID, bool) {
	id, ok := g.heads[host]
	return id, ok
}

// Tail returns the tail sentinel of host.
func (g *Graph) Tail(host string) (NodeID, bool) {
	id, ok := g.tails[host]
	return id, ok
}

// Next returns the successor of id in its host chain, or NoNode.
func (g *Graph) Next(id NodeID) NodeID {
	if n := g.Node(id); n != nil {
		return n.next
	}
	return NoNode
}

// Prev returns the predecessor of id in its host chain, or NoNode.
func (g *Graph) Prev(id NodeID) NodeID {
	if n := g.Node(id); n != nil {
		return n.prev
	}
	return NoNode
}

// Insert splices a new node carrying events into its host chain, keeping the
// chain sorted by local time. The host is created when missing. All events
// must share a host, and the host may not already hold a node at the same
// local time.
func (g *Graph) Insert(events ...LogEvent) (NodeID, error) {
	if len(events) == 0 {
		return NoNode, errors.New("insert: node needs at least one log event")
	}
	host := events[0].Host
	for _, e := range events[1:] {
		if e.Host != host {
			return NoNode, fmt.Errorf("insert: events span hosts %q and %q", host, e.Host)
		}
	}
	g.AddHost(host)

	t := events[0].LocalTime()
	anchor := g.nodes[g.tails[host]].prev
	for {
		a := g.nodes[anchor]
		if a.head || a.LocalTime() < t {
			break
		}
		if a.LocalTime() == t {
			return NoNode, fmt.Errorf("insert: host %q already has a node at local time %d", host, t)
		}
		anchor = a.prev
	}
	return g.InsertAfter(anchor, events...)
}

// InsertAfter splices a new node carrying events directly after anchor
// without checking local-time order.
func (g *Graph) InsertAfter(anchor NodeID, events ...LogEvent) (NodeID, error) {
	a := g.Node(anchor)
	if a == nil {
		return NoNode, fmt.Errorf("insert after %d: %w", anchor, ErrNodeNotFound)
	}
	if a.tail {
		return NoNode, fmt.Errorf("insert after tail of %q: %w", a.host, ErrSentinel)
	}
	if len(events) == 0 {
		return NoNode, errors.New("insert after: node needs at least one log event")
	}
	for _, e := range events {
		if e.Host != a.host {
			return NoNode, fmt.Errorf("insert after: event host %q does not match %q", e.Host, a.host)
		}
	}
	evs := make([]LogEvent, len(events))
	copy(evs, events)

	n := g.alloc(a.host, evs, false, false)
	next := g.nodes[a.next]
	n.prev, n.next = a.id, next.id
	a.next = n.id
	next.prev = n.id
	return n.id, nil
}

// InsertBefore splices a new node carrying events directly before anchor.
func (g *Graph) InsertBefore(anchor NodeID, events ...LogEvent) (NodeID, error) {
	a := g.Node(anchor)
	if a == nil {
		return NoNode, fmt.Errorf("insert before %d: %w", anchor, ErrNodeNotFound)
	}
	if a.head {
		return NoNode, fmt.Errorf("insert before head of %q: %w", a.host, ErrSentinel)
	}
	return g.InsertAfter(a.prev, events...)
}

// Remove unlinks an interior node from its chain and drops all of its
// cross-host edges.
func (g *Graph) Remove(id NodeID) error {
	n := g.Node(id)
	if n == nil {
		return fmt.Errorf("remove %d: %w", id, ErrNodeNotFound)
	}
	if n.isSentinel() {
		return fmt.Errorf("remove %d: %w", id, ErrSentinel)
	}
	g.nodes[n.prev].next = n.next
	g.nodes[n.next].prev = n.prev
	g.detachFamily(n)
	g.nodes[id] = nil
	return nil
}

func (g *Graph) detachFamily(n *Node) {
	for _, p := range n.parents {
		delete(g.nodes[p].children, n.host)
	}
	for _, c := range n.children {
		delete(g.nodes[c].parents, n.host)
	}
	n.parents = make(map[string]NodeID)
	n.children = make(map[string]NodeID)
}

// RemoveHost drops host's chain, sentinels included, together with every edge
// touching it. Removing an absent host does nothing.
func (g *Graph) RemoveHost(host string) {
	head, ok := g.heads[host]
	if !ok {
		return
	}
	for id := head; id != NoNode; {
		n := g.nodes[id]
		next := n.next
		g.detachFamily(n)
		g.nodes[id] = nil
		id = next
	}
	delete(g.heads, host)
	delete(g.tails, host)
	for i, h := range g.hosts {
		if h == host {
			g.hosts = append(g.hosts[:i], g.hosts[i+1:]...)
			break
		}
	}
}

// AddChild links parent to child across hosts. Edges form a covering
// relation: an existing child of parent on child's host that is strictly
// later than child is detached, while one that is earlier or equal causes the
// new edge to be rejected. The same holds for an existing parent of child on
// parent's host, mirrored. It reports whether the edge was stored.
func (g *Graph) AddChild(parent, child NodeID) bool {
	p, c := g.Node(parent), g.Node(child)
	if p == nil || c == nil || p.host == c.host || p.isSentinel() || c.isSentinel() {
		return false
	}

	curChild, hasChild := p.children[c.host]
	if hasChild && g.nodes[curChild].LocalTime() <= c.LocalTime() {
		return false
	}
	curParent, hasParent := c.parents[p.host]
	if hasParent && g.nodes[curParent].LocalTime() >= p.LocalTime() {
		return false
	}

	if hasChild {
		g.unlink(parent, curChild)
	}
	if hasParent {
		g.unlink(curParent, child)
	}
	p.children[c.host] = child
	c.parents[p.host] = parent
	return true
}

// AddParent is AddChild with the arguments reversed.
func (g *Graph) AddParent(child, parent NodeID) bool {
	return g.AddChild(parent, child)
}

// RemoveChild drops the edge parent→child if it exists.
func (g *Graph) RemoveChild(parent, child NodeID) {
	p := g.Node(parent)
	c := g.Node(child)
	if p == nil || c == nil {
		return
	}
	if cur, ok := p.children[c.host]; ok && cur == child {
		g.unlink(parent, child)
	}
}

// RemoveParent drops the edge parent→child if it exists.
func (g *Graph) RemoveParent(child, parent NodeID) {
	g.RemoveChild(parent, child)
}

func (g *Graph) unlink(parent, child NodeID) {
	p, c := g.nodes[parent], g.nodes[child]
	delete(p.children, c.host)
	delete(c.parents, p.host)
}

// ChildOn returns the direct child of id on host.
func (g *Graph) ChildOn(id NodeID, host string) (NodeID, bool) {
	n := g.Node(id)
	if n == nil {
		return NoNode, false
	}
	c, ok := n.children[host]
	return c, ok
}

// ParentOn returns the direct parent of id on host.
func (g *Graph) ParentOn(id NodeID, host string) (NodeID, bool) {
	n := g.Node(id)
	if n == nil {
		return NoNode, false
	}
	p, ok := n.parents[host]
	return p, ok
}

// Parents returns the direct cross-host parents of id ordered by host.
func (g *Graph) Parents(id NodeID) []NodeID {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	return g.byHost(n.parents)
}

// Children returns the direct cross-host children of id ordered by host.
func (g *Graph) Children(id NodeID) []NodeID {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	return g.byHost(n.children)
}

// Family returns parents followed by children.
func (g *Graph) Family(id NodeID) []NodeID {
	return append(g.Parents(id), g.Children(id)...)
}

func (g *Graph) byHost(m map[string]NodeID) []NodeID {
	hosts := make([]string, 0, len(m))
	for h := range m {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool {
		return g.hostOrder[hosts[i]] < g.hostOrder[hosts[j]]
	})
	out := make([]NodeID, len(hosts))
	for i, h := range hosts {
		out[i] = m[h]
	}
	return out
}

// HostNodes returns the interior nodes of host in chain order.
func (g *Graph) HostNodes(host string) []NodeID {
	head, ok := g.heads[host]
	if !ok {
		return nil
	}
	var out []NodeID
	for id := g.nodes[head].next; !g.nodes[id].tail; id = g.nodes[id].next {
		out = append(out, id)
	}
	return out
}

// Nodes returns every interior node, host by host in host order.
func (g *Graph) Nodes() []NodeID {
	var out []NodeID
	for _, h := range g.hosts {
		out = append(out, g.HostNodes(h)...)
	}
	return out
}

// Clone returns a deep copy. Handles stay valid across the copy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:     make([]*Node, len(g.nodes)),
		hosts:     make([]string, len(g.hosts)),
		hostOrder: make(map[string]int, len(g.hostOrder)),
		heads:     make(map[string]NodeID, len(g.heads)),
		tails:     make(map[string]NodeID, len(g.tails)),
	}
	copy(c.hosts, g.hosts)
	for h, o := range g.hostOrder {
		c.hostOrder[h] = o
	}
	for h, id := range g.heads {
		c.heads[h] = id
	}
	for h, id := range g.tails {
		c.tails[h] = id
	}
	for i, n := range g.nodes {
		if n == nil {
			continue
		}
		cp := *n
		cp.events = make([]LogEvent, len(n.events))
		copy(cp.events, n.events)
		cp.parents = make(map[string]NodeID, len(n.parents))
		for h, id := range n.parents {
			cp.parents[h] = id
		}
		cp.children = make(map[string]NodeID, len(n.children))
		for h, id := range n.children {
			cp.children[h] = id
		}
		c.nodes[i] = &cp
	}
	return c
}
