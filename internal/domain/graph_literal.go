package domain

import "strings"

// LiteralNode is a node of the rendering literal. Start nodes stand in for a
// host's head sentinel.
type LiteralNode struct {
	Name      string `json:"name"`
	Group     string `json:"group"`
	Line      int    `json:"line"`
	StartNode bool   `json:"startNode,omitempty"`
}

// LiteralLink joins two LiteralNodes by index.
type LiteralLink struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Literal is the plain representation handed to renderers.
type Literal struct {
	Nodes []LiteralNode `json:"nodes"`
	Links []LiteralLink `json:"links"`
	Hosts []string      `json:"hosts"`
}

// ToLiteral flattens the graph. Nodes are indexed host by host in
// chronological order, each host led by its start node. Hidden hosts
// contribute no nodes, and links touching them are dropped.
func (g *Graph) ToLiteral(hiddenHosts []string) Literal {
	lit, _ := g.ToIndexedLiteral(hiddenHosts)
	return lit
}

// ToIndexedLiteral is ToLiteral that also returns, for every literal node
// index, the handle of the graph node it was built from.
func (g *Graph) ToIndexedLiteral(hiddenHosts []string) (Literal, []NodeID) {
	hidden := make(map[string]bool, len(hiddenHosts))
	for _, h := range hiddenHosts {
		hidden[h] = true
	}

	lit := Literal{
		Nodes: []LiteralNode{},
		Links: []LiteralLink{},
		Hosts: []string{},
	}
	index := make(map[NodeID]int)
	var order []NodeID
	for _, host := range g.hosts {
		if hidden[host] {
			continue
		}
		lit.Hosts = append(lit.Hosts, host)

		head := g.heads[host]
		index[head] = len(lit.Nodes)
		order = append(order, head)
		lit.Nodes = append(lit.Nodes, LiteralNode{Name: "Host: " + host, Group: host, StartNode: true})
		for _, id := range g.HostNodes(host) {
			n := g.nodes[id]
			index[id] = len(lit.Nodes)
			order = append(order, id)
			lit.Nodes = append(lit.Nodes, LiteralNode{Name: nodeName(n), Group: host, Line: n.events[0].Line})
		}
	}

	for _, host := range lit.Hosts {
		for id := g.heads[host]; ; {
			n := g.nodes[id]
			if g.nodes[n.next].tail {
				break
			}
			lit.Links = append(lit.Links, LiteralLink{Source: index[id], Target: index[n.next]})
			id = n.next
		}
		for _, id := range g.HostNodes(host) {
			for _, c := range g.Children(id) {
				if hidden[g.nodes[c].host] {
					continue
				}
				lit.Links = append(lit.Links, LiteralLink{Source: index[id], Target: index[c]})
			}
		}
	}
	return lit, order
}

func nodeName(n *Node) string {
	if len(n.events) == 1 {
		return n.events[0].Text
	}
	texts := make([]string, len(n.events))
	for i, e := range n.events {
		texts[i] = e.Text
	}
	return strings.Join(texts, "\n")
}
