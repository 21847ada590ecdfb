package usecase

import (
	"fmt"
	"sort"
)

// Cluster metrics.
const (
	ClusterByHostCount  = "host-count"
	ClusterByEventCount = "event-count"
)

// Cluster is a group of executions that scored alike under a metric.
type Cluster struct {
	Heading string   `json:"heading"`
	Labels  []string `json:"labels"`
}

// ClusterExecutions splits execs into at most two groups around the midpoint
// of metric's range. Labels within a group are ordered by score, then by log
// order.
func ClusterExecutions(execs []Execution, metric string) ([]Cluster, error) {
	var unit string
	var score func(Execution) int
	switch metric {
	case ClusterByHostCount:
		unit = "hosts"
		score = func(e Execution) int { return len(e.Graph.Hosts()) }
	case ClusterByEventCount:
		unit = "events"
		score = func(e Execution) int { return len(e.Graph.Nodes()) }
	default:
		return nil, fmt.Errorf("%w: unknown cluster metric %q", ErrInvalidViewRequest, metric)
	}
	if len(execs) == 0 {
		return nil, nil
	}

	type scored struct {
		label string
		n     int
	}
	all := make([]scored, len(execs))
	for i, e := range execs {
		all[i] = scored{label: e.Label, n: score(e)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].n < all[j].n })

	lo, hi := all[0].n, all[len(all)-1].n
	if lo == hi {
		c := Cluster{Heading: fmt.Sprintf("All executions have %d %s", lo, unit)}
		for _, s := range all {
			c.Labels = append(c.Labels, s.label)
		}
		return []Cluster{c}, nil
	}

	mid := lo + (hi-lo)/2
	low := Cluster{Heading: fmt.Sprintf("%d or fewer %s", mid, unit)}
	high := Cluster{Heading: fmt.Sprintf("More than %d %s", mid, unit)}
	for _, s := range all {
		if s.n <= mid {
			low.Labels = append(low.Labels, s.label)
		} else {
			high.Labels = append(high.Labels, s.label)
		}
	}
	return []Cluster{low, high}, nil
}
