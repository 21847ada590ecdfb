package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewGraphFromEvents(t *testing.T) {
	t.Run("Two hosts", func(t *testing.T) {
		events := []LogEvent{
			event(t, "A", map[string]int{"A": 1}, "eventA"),
			event(t, "B", map[string]int{"B": 1, "A": 1}, "eventB"),
		}
		g, err := NewGraphFromEvents(events)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if diff := cmp.Diff([]string{"A", "B"}, g.Hosts()); diff != "" {
			t.Errorf("hosts mismatch (-want +got):\n%s", diff)
		}
		nodes := g.Nodes()
		if len(nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(nodes))
		}
		if got := g.Children(nodes[0]); len(got) != 1 || got[0] != nodes[1] {
			t.Errorf("expected eventA -> eventB, got %v", got)
		}
	})

	t.Run("Transitive parents are dropped", func(t *testing.T) {
		// A1 -> B1 -> C1, and C1 also knows about A1 through B.
		events := []LogEvent{
			event(t, "A", map[string]int{"A": 1}, "a1"),
			event(t, "B", map[string]int{"A": 1, "B": 1}, "b1"),
			event(t, "C", map[string]int{"A": 1, "B": 1, "C": 1}, "c1"),
		}
		g, err := NewGraphFromEvents(events, ValidateClocks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		c1 := g.HostNodes("C")[0]
		parents := g.Parents(c1)
		if len(parents) != 1 || g.Node(parents[0]).Host() != "B" {
			t.Errorf("expected single parent on B, got %v", parents)
		}
	})

	t.Run("Request and response", func(t *testing.T) {
		events := []LogEvent{
			event(t, "client", map[string]int{"client": 1}, "send request"),
			event(t, "server", map[string]int{"client": 1, "server": 1}, "receive request"),
			event(t, "server", map[string]int{"client": 1, "server": 2}, "send response"),
			event(t, "client", map[string]int{"client": 2, "server": 2}, "receive response"),
		}
		g, err := NewGraphFromEvents(events, ValidateClocks())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		client := g.HostNodes("client")
		server := g.HostNodes("server")
		if c, _ := g.ChildOn(client[0], "server"); c != server[0] {
			t.Error("expected request edge")
		}
		if c, _ := g.ChildOn(server[1], "client"); c != client[1] {
			t.Error("expected response edge")
		}
	})

	t.Run("Events out of order are sorted", func(t *testing.T) {
		events := []LogEvent{
			event(t, "A", map[string]int{"A": 2}, "second"),
			event(t, "A", map[string]int{"A": 1}, "first"),
		}
		g, err := NewGraphFromEvents(events)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		first, _ := g.Node(g.HostNodes("A")[0]).FirstLogEvent()
		if first.Text != "first" {
			t.Errorf("expected first, got %q", first.Text)
		}
	})
}

func TestNewGraphFromEvents_Errors(t *testing.T) {
	tests := []struct {
		name     string
		events   func(t *testing.T) []LogEvent
		validate bool
	}{
		{
			name: "Unknown host",
			events: func(t *testing.T) []LogEvent {
				return []LogEvent{event(t, "A", map[string]int{"A": 1, "Z": 1}, "a1")}
			},
		},
		{
			name: "Clock value beyond host",
			events: func(t *testing.T) []LogEvent {
				return []LogEvent{
					event(t, "A", map[string]int{"A": 1}, "a1"),
					event(t, "B", map[string]int{"A": 3, "B": 1}, "b1"),
				}
			},
		},
		{
			name: "Duplicate local time",
			events: func(t *testing.T) []LogEvent {
				return []LogEvent{
					event(t, "A", map[string]int{"A": 1}, "a1"),
					event(t, "A", map[string]int{"A": 1}, "again"),
				}
			},
		},
		{
			name:     "Does not start at 1",
			validate: true,
			events: func(t *testing.T) []LogEvent {
				return []LogEvent{event(t, "A", map[string]int{"A": 2}, "a2")}
			},
		},
		{
			name:     "Gap in clock",
			validate: true,
			events: func(t *testing.T) []LogEvent {
				return []LogEvent{
					event(t, "A", map[string]int{"A": 1}, "a1"),
					event(t, "A", map[string]int{"A": 3}, "a3"),
				}
			},
		},
		{
			name:     "Impermissible clock",
			validate: true,
			events: func(t *testing.T) []LogEvent {
				// c1 hears from b1 but forgets that b1 already knew a1.
				return []LogEvent{
					event(t, "A", map[string]int{"A": 1}, "a1"),
					event(t, "B", map[string]int{"B": 1, "A": 1}, "b1"),
					event(t, "C", map[string]int{"C": 1, "B": 1}, "c1"),
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []BuildOption
			if tt.validate {
				opts = append(opts, ValidateClocks())
			}
			_, err := NewGraphFromEvents(tt.events(t), opts...)
			if err == nil {
				t.Fatal("expected an error, got nil")
			}
			var ce *ConstructionError
			if !errors.As(err, &ce) {
				t.Errorf("expected a ConstructionError, got %T: %v", err, err)
			}
		})
	}
}
