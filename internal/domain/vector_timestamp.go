package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Ordering is the causal relation between two vector timestamps.
type Ordering int

const (
	// Unordered means neither timestamp carries evidence about the other.
	Unordered Ordering = 0
	// Before means the receiver happened before the argument.
	Before Ordering = -1
	// After means the argument happened before the receiver.
	After Ordering = 1
	// Concurrent means each timestamp saw something the other did not.
	Concurrent Ordering = 2
)

func (o Ordering) String() string {
	switch o {
	case Before:
		return "before"
	case After:
		return "after"
	case Concurrent:
		return "concurrent"
	default:
		return "unordered"
	}
}

// VectorTimestamp is a per-host logical clock owned by a single host.
type VectorTimestamp struct {
	host  string
	clock map[string]int
}

// NewVectorTimestamp copies clock, dropping the zero entries of other hosts.
// The owning host must have an entry, which is kept even when it is 0.
func NewVectorTimestamp(host string, clock map[string]int) (VectorTimestamp, error) {
	if _, ok := clock[host]; !ok {
		return VectorTimestamp{}, fmt.Errorf("vector timestamp for host %q: clock has no entry for its own host", host)
	}
	c := make(map[string]int, len(clock))
	for h, t := range clock {
		if t < 0 {
			return VectorTimestamp{}, fmt.Errorf("vector timestamp for host %q: clock entry for %q is negative", host, h)
		}
		if t > 0 || h == host {
			c[h] = t
		}
	}
	return VectorTimestamp{host: host, clock: c}, nil
}

// Host returns the owning host.
func (v VectorTimestamp) Host() string { return v.host }

// OwnTime returns the owning host's component, i.e. the local time.
func (v VectorTimestamp) OwnTime() int { return v.clock[v.host] }

// Get returns the component for host, or 0 when absent.
func (v VectorTimestamp) Get(host string) int { return v.clock[host] }

// Clock returns a copy of the clock.
func (v VectorTimestamp) Clock() map[string]int {
	out := make(map[string]int, len(v.clock))
	for h, t := range v.clock {
		out[h] = t
	}
	return out
}

// CompareTo reports how v is causally related to other. Only hosts present in
// both clocks count as evidence.
func (v VectorTimestamp) CompareTo(other VectorTimestamp) Ordering {
	thisFirst, otherFirst := false, false
	for h, t := range v.clock {
		ot, ok := other.clock[h]
		if !ok {
			continue
		}
		if t < ot {
			thisFirst = true
		} else if t > ot {
			otherFirst = true
		}
	}

	switch {
	case thisFirst && otherFirst:
		return Concurrent
	case thisFirst:
		return Before
	case otherFirst:
		return After
	default:
		return Unordered
	}
}

// CompareToLocal returns the difference of the local times when both
// timestamps belong to the same host. Timestamps of different hosts compare
// as 0.
func (v VectorTimestamp) CompareToLocal(other VectorTimestamp) int {
	if v.host != other.host {
		return 0
	}
	return v.OwnTime() - other.OwnTime()
}

// String renders the timestamp in the input format: host followed by the JSON
// clock.
func (v VectorTimestamp) String() string {
	hosts := make([]string, 0, len(v.clock))
	for h := range v.clock {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)

	var b strings.Builder
	b.WriteString(v.host)
	b.WriteString(" {")
	for i, h := range hosts {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(h)
		b.Write(key)
		fmt.Fprintf(&b, ": %d", v.clock[h])
	}
	b.WriteString("}")
	return b.String()
}
