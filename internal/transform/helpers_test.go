package transform

import (
	"testing"

	"github.com/V4T54L/causeway/internal/domain"
)

func event(t *testing.T, host string, clock map[string]int, text string) domain.LogEvent {
	t.Helper()
	vt, err := domain.NewVectorTimestamp(host, clock)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return domain.NewLogEvent(text, vt, 0, nil)
}

func build(t *testing.T, events ...domain.LogEvent) *domain.Graph {
	t.Helper()
	g, err := domain.NewGraphFromEvents(events)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return g
}

func nodeByText(t *testing.T, g *domain.Graph, text string) domain.NodeID {
	t.Helper()
	for _, id := range g.Nodes() {
		for _, ev := range g.Node(id).LogEvents() {
			if ev.Text == text {
				return id
			}
		}
	}
	t.Fatalf("no node with text %q", text)
	return domain.NoNode
}

// relay is a1 -> b1, b2 -> c1: b forwards a's message to c.
func relay(t *testing.T) *domain.Graph {
	return build(t,
		event(t, "a", map[string]int{"a": 1}, "a1"),
		event(t, "b", map[string]int{"a": 1, "b": 1}, "b1"),
		event(t, "b", map[string]int{"a": 1, "b": 2}, "b2"),
		event(t, "c", map[string]int{"a": 1, "b": 2, "c": 1}, "c1"),
	)
}

// chatty has three local events on a before a4 sends to b, plus an isolated
// host c.
func chatty(t *testing.T) *domain.Graph {
	return build(t,
		event(t, "a", map[string]int{"a": 1}, "a1"),
		event(t, "a", map[string]int{"a": 2}, "a2"),
		event(t, "a", map[string]int{"a": 3}, "a3"),
		event(t, "a", map[string]int{"a": 4}, "a4"),
		event(t, "b", map[string]int{"a": 4, "b": 1}, "b1"),
		event(t, "b", map[string]int{"a": 4, "b": 2}, "b2"),
		event(t, "c", map[string]int{"c": 1}, "c1"),
	)
}
