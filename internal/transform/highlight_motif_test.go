package transform

import (
	"errors"
	"testing"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/motif"
)

type stubFinder struct {
	build func(g *domain.Graph) *domain.MotifGroup
	err   error
}

func (f stubFinder) Find(g *domain.Graph) (*domain.MotifGroup, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.build(g), nil
}

func TestHighlightMotifTransformation(t *testing.T) {
	g := relay(t)
	a1, b1, b2 := nodeByText(t, g, "a1"), nodeByText(t, g, "b1"), nodeByText(t, g, "b2")
	finder := stubFinder{build: func(*domain.Graph) *domain.MotifGroup {
		m := domain.NewMotif()
		m.AddTrail([]domain.NodeID{a1, b1})
		group := domain.NewMotifGroup()
		group.AddMotif(m)
		return group
	}}

	t.Run("With edges", func(t *testing.T) {
		v := NewView(g.Clone())
		if err := NewHighlightMotifTransformation(finder, false).Transform(v); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if s := v.NodeStyle(a1); s.Opacity != 1 || s.Radius != HighlightRadius {
			t.Errorf("expected a1 emphasized, got %+v", *s)
		}
		if s := v.NodeStyle(b2); s.Opacity != DimOpacity {
			t.Errorf("expected b2 dimmed, got %+v", *s)
		}
		head, _ := v.Graph().Head("a")
		if s := v.NodeStyle(head); s.Opacity != 1 {
			t.Errorf("expected head to keep full opacity, got %+v", *s)
		}
		if s := v.EdgeStyle(a1, b1); s.Opacity != 1 || s.Color != MotifEdgeColor {
			t.Errorf("expected the motif edge restored, got %+v", *s)
		}
		if s := v.EdgeStyle(b1, b2); s.Opacity != DimOpacity {
			t.Errorf("expected the chain edge dimmed, got %+v", *s)
		}
		if v.Motifs() == nil || v.Motifs().Len() != 1 {
			t.Error("expected the motif group stored on the view")
		}
	})

	t.Run("Ignore edges", func(t *testing.T) {
		v := NewView(g.Clone())
		if err := NewHighlightMotifTransformation(finder, true).Transform(v); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if s := v.EdgeStyle(a1, b1); s.Opacity != DimOpacity {
			t.Errorf("expected the motif edge to stay dimmed, got %+v", *s)
		}
	})
}

func TestHighlightMotifTransformation_TextQuery(t *testing.T) {
	g := relay(t)
	finder, err := motif.NewTextQueryFinder("b")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	v := NewView(g)
	if err := NewHighlightMotifTransformation(finder, false).Transform(v); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := v.Motifs().Len(); got != 2 {
		t.Errorf("expected 2 motifs, got %d", got)
	}
	if s := v.NodeStyle(nodeByText(t, g, "b2")); s.Opacity != 1 {
		t.Errorf("expected b2 emphasized, got %+v", *s)
	}
	if s := v.NodeStyle(nodeByText(t, g, "c1")); s.Opacity != DimOpacity {
		t.Errorf("expected c1 dimmed, got %+v", *s)
	}
}

func TestHighlightMotifTransformation_FinderError(t *testing.T) {
	boom := errors.New("boom")
	err := NewHighlightMotifTransformation(stubFinder{err: boom}, false).Transform(NewView(relay(t)))
	if !errors.Is(err, boom) {
		t.Errorf("expected the finder error, got %v", err)
	}
}
