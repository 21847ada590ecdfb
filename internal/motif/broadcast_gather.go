package motif

import "github.com/V4T54L/causeway/internal/domain"

// GreedyThreshold is the largest candidate run scored exactly. Longer runs
// fall back to a single greedy pass.
const GreedyThreshold = 300

// BroadcastGatherFinder finds a host sending to (broadcast) or receiving from
// (gather) many distinct hosts in quick succession.
type BroadcastGatherFinder struct {
	minBroadcastGather int
	maxInBetween       int
	broadcast          bool
	greedyThreshold    int
}

// NewBroadcastGatherFinder requires at least minBroadcastGather distinct
// remote hosts per motif and allows at most maxInBetween local events
// between consecutive sends or receives.
func NewBroadcastGatherFinder(minBroadcastGather, maxInBetween int, broadcast bool) *BroadcastGatherFinder {
	return &BroadcastGatherFinder{
		minBroadcastGather: minBroadcastGather,
		maxInBetween:       maxInBetween,
		broadcast:          broadcast,
		greedyThreshold:    GreedyThreshold,
	}
}

func (f *BroadcastGatherFinder) links(g *domain.Graph, id domain.NodeID) []domain.NodeID {
	if f.broadcast {
		return g.Children(id)
	}
	return g.Parents(id)
}

func (f *BroadcastGatherFinder) hasBadLink(n *domain.Node) bool {
	if f.broadcast {
		return n.HasParents()
	}
	return n.HasChildren()
}

func (f *BroadcastGatherFinder) hasGoodLink(n *domain.Node) bool {
	if f.broadcast {
		return n.HasChildren()
	}
	return n.HasParents()
}

func hasUnseenHost(g *domain.Graph, links []domain.NodeID, seen map[string]bool) bool {
	for _, l := range links {
		if !seen[g.Node(l).Host()] {
			return true
		}
	}
	return false
}

func (f *BroadcastGatherFinder) Find(g *domain.Graph) (*domain.MotifGroup, error) {
	group := domain.NewMotifGroup()
	for _, run := range f.disjoint(g) {
		if len(run) <= f.greedyThreshold {
			score := f.score(g, run)
			group.AddMotif(f.toMotif(g, f.bestGroups(run, score)))
			continue
		}
		for _, m := range f.greedy(g, run) {
			group.AddMotif(m)
		}
	}
	return group, nil
}

// disjoint splits every host chain into runs that could hold a pattern.
func (f *BroadcastGatherFinder) disjoint(g *domain.Graph) [][]domain.NodeID {
	var out [][]domain.NodeID
	for _, host := range g.Hosts() {
		head, _ := g.Head(host)
		var run []domain.NodeID
		inBetween := 0
		inPattern := false
		for id := g.Next(head); id != domain.NoNode; id = g.Next(id) {
			n := g.Node(id)
			if inBetween > f.maxInBetween || n.IsTail() || f.hasBadLink(n) {
				if inPattern && len(run) > 0 {
					out = append(out, run)
					run = nil
					inPattern = false
				}
			}
			if f.hasGoodLink(n) {
				if !inPattern {
					inPattern = true
					run = nil
				}
				inBetween = 1 - n.LogEventCount()
			}
			run = append(run, id)
			inBetween += n.LogEventCount()
		}
	}
	return out
}

// score[i][j] is the number of distinct remote hosts reached by the pattern
// spanning run[i..j], or 0 when no valid pattern ends at j.
func (f *BroadcastGatherFinder) score(g *domain.Graph, run []domain.NodeID) [][]int {
	score := make([][]int, len(run))
	for i := range run {
		score[i] = make([]int, len(run))
		count := 0
		inBetween := 0
		seen := make(map[string]bool)
		for j := i; j < len(run); j++ {
			n := g.Node(run[j])
			links := f.links(g, run[j])
			good := f.hasGoodLink(n)
			// a broadcast may start on a node that also receives
			allowBad := f.broadcast && j == i
			if inBetween > f.maxInBetween || (f.hasBadLink(n) && !allowBad) || (good && !hasUnseenHost(g, links, seen)) {
				break
			}
			if good {
				for _, l := range links {
					if h := g.Node(l).Host(); !seen[h] {
						seen[h] = true
						count++
					}
				}
				inBetween = 1 - n.LogEventCount()
				score[i][j] = count
			}
			inBetween += n.LogEventCount()
		}
	}
	return score
}

func (f *BroadcastGatherFinder) counts(s int) bool {
	return s > 0 && s >= f.minBroadcastGather
}

// bestGroups partitions run to maximize the total score of the qualifying
// patterns and returns each pattern's first and last node.
func (f *BroadcastGatherFinder) bestGroups(run []domain.NodeID, score [][]int) [][2]domain.NodeID {
	best := make([]int, len(run))
	parent := make([]int, len(run))
	for i := range run {
		top := -1
		for j := 0; j <= i; j++ {
			s := 0
			if f.counts(score[j][i]) {
				s += score[j][i]
			}
			if j > 0 {
				s += best[j-1]
			}
			if s > top {
				top = s
				parent[i] = j - 1
			}
		}
		best[i] = top
	}

	var groups [][2]domain.NodeID
	for loc := len(run) - 1; loc != -1; loc = parent[loc] {
		start := parent[loc] + 1
		if f.counts(score[start][loc]) {
			groups = append(groups, [2]domain.NodeID{run[start], run[loc]})
		}
	}
	return groups
}

func (f *BroadcastGatherFinder) toMotif(g *domain.Graph, groups [][2]domain.NodeID) *domain.Motif {
	m := domain.NewMotif()
	for _, span := range groups {
		end := g.Next(span[1])
		prev := domain.NoNode
		for cur := span[0]; cur != end; cur = g.Next(cur) {
			m.AddNode(cur)
			if prev != domain.NoNode {
				m.AddEdge(cur, prev)
			}
			for _, l := range f.links(g, cur) {
				m.AddEdge(cur, l)
				m.AddNode(l)
			}
			prev = cur
		}
	}
	return m
}

// greedy extends each pattern for as long as it stays valid. It returns one
// motif per qualifying pattern.
func (f *BroadcastGatherFinder) greedy(g *domain.Graph, run []domain.NodeID) []*domain.Motif {
	var out []*domain.Motif
	count := 0
	inBetween := 0
	inPattern := false
	cur := domain.NewMotif()
	var queued, nodes []domain.NodeID
	seen := make(map[string]bool)

	for k := 0; k <= len(run); k++ {
		last := k == len(run)
		id := domain.NoNode
		var links []domain.NodeID
		var bad, good bool
		events := 0
		if !last {
			id = run[k]
			n := g.Node(id)
			links = f.links(g, id)
			bad, good = f.hasBadLink(n), f.hasGoodLink(n)
			events = n.LogEventCount()
			queued = append(queued, id)
		}

		if inBetween > f.maxInBetween || last || bad || (good && !hasUnseenHost(g, links, seen)) {
			if inPattern && count >= f.minBroadcastGather {
				for i := 1; i < len(nodes); i++ {
					cur.AddEdge(nodes[i-1], nodes[i])
				}
				out = append(out, cur)
			}
			inPattern = false
		}

		if good && (f.broadcast || !bad) {
			if !inPattern {
				inPattern = true
				count = 0
				inBetween = 0
				cur = domain.NewMotif()
				queued = []domain.NodeID{id}
				seen = make(map[string]bool)
				nodes = nil
			}
			cur.AddAllNodes(links)
			for _, l := range links {
				cur.AddEdge(id, l)
				if h := g.Node(l).Host(); !seen[h] {
					seen[h] = true
					count++
				}
			}
			cur.AddAllNodes(queued)
			nodes = append(nodes, queued...)
			queued = nil
			inBetween = 1 - events
		}
		inBetween += events
	}
	return out
}
