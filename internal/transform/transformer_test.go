package transform

import (
	"errors"
	"testing"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/google/go-cmp/cmp"
)

func TestTransformer_LeavesBaseUntouched(t *testing.T) {
	base := chatty(t)
	before := len(base.Nodes())

	tf := NewTransformer()
	tf.HideHost("c")
	v, err := tf.Transform(base)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := len(base.Nodes()); got != before {
		t.Errorf("expected the base graph to keep %d nodes, got %d", before, got)
	}
	if !base.HasHost("c") {
		t.Error("expected the base graph to keep host c")
	}
	if v.Graph().HasHost("c") {
		t.Error("expected the view to drop host c")
	}
	// the default collapse ran after the explicit list
	if got := len(v.Graph().HostNodes("a")); got != 2 {
		t.Errorf("expected a collapsed run on a, got %d nodes", got)
	}
}

func TestTransformer_HideUnhide(t *testing.T) {
	tf := NewTransformer()
	tf.HideHost("b")
	tf.HideHost("b")
	if got := len(tf.Transformations()); got != 1 {
		t.Fatalf("expected 1 transformation, got %d", got)
	}
	if !tf.IsHidden("b") {
		t.Error("expected b hidden")
	}
	tf.UnhideHost("b")
	if tf.IsHidden("b") || len(tf.Transformations()) != 0 {
		t.Error("expected b visible again")
	}
}

func TestTransformer_MultipleHostHighlights(t *testing.T) {
	base := chatty(t)
	tf := NewTransformer()
	tf.HighlightHost("a")
	tf.HighlightHost("b")

	hs := tf.highlights()
	if len(hs) != 2 {
		t.Fatalf("expected 2 queued highlights, got %d", len(hs))
	}

	v, err := tf.Transform(base)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// the last highlight ran with both hosts
	head, _ := v.Graph().Head("a")
	if !v.NodeStyle(head).Highlighted {
		t.Error("expected the merged highlight to cover host a")
	}
	if diff := cmp.Diff([]string{"c"}, v.HiddenHosts()); diff != "" {
		t.Errorf("hidden hosts mismatch (-want +got):\n%s", diff)
	}

	// flags and host sets are restored afterwards
	if hs[0].ignored {
		t.Error("expected the first highlight to be active again")
	}
	if diff := cmp.Diff([]string{"b"}, hs[1].Hosts()); diff != "" {
		t.Errorf("last highlight hosts mismatch (-want +got):\n%s", diff)
	}

	tf.UnhighlightHost("a")
	if tf.IsHighlighted("a") || !tf.IsHighlighted("b") {
		t.Error("expected only b to stay highlighted")
	}
	if got := len(tf.Transformations()); got != 1 {
		t.Errorf("expected the emptied highlight to be dropped, got %d transformations", got)
	}
}

func TestTransformer_MotifError(t *testing.T) {
	boom := errors.New("boom")
	tf := NewTransformer()
	tf.HighlightMotif(stubFinder{err: boom}, false)
	if _, err := tf.Transform(relay(t)); !errors.Is(err, boom) {
		t.Errorf("expected the finder error, got %v", err)
	}
	tf.UnhighlightMotif()
	if _, err := tf.Transform(relay(t)); err != nil {
		t.Errorf("expected no error once the motif is cleared, got %v", err)
	}
}

func TestView_Render(t *testing.T) {
	base := relay(t)
	c1 := nodeByText(t, base, "c1")

	tf := NewTransformer()
	tf.HideHost("b")
	tf.HighlightMotif(stubFinder{build: func(*domain.Graph) *domain.MotifGroup {
		m := domain.NewMotif()
		m.AddNode(c1)
		group := domain.NewMotifGroup()
		group.AddMotif(m)
		return group
	}}, false)

	v, err := tf.Transform(base)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	r := v.Render()

	expectedLinks := []domain.LiteralLink{
		{Source: 0, Target: 1},
		{Source: 1, Target: 3},
		{Source: 2, Target: 3},
	}
	if diff := cmp.Diff(expectedLinks, r.Graph.Links); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
	if len(r.NodeStyles) != len(r.Graph.Nodes) || len(r.LinkStyles) != len(r.Graph.Links) {
		t.Fatal("expected style slices aligned with the literal")
	}
	if !r.LinkStyles[1].Dashed {
		t.Error("expected the derived link to be dashed")
	}
	if r.NodeStyles[1].Opacity != DimOpacity || r.NodeStyles[3].Opacity != 1 {
		t.Errorf("expected a1 dimmed and c1 emphasized, got %+v and %+v", r.NodeStyles[1], r.NodeStyles[3])
	}
	if diff := cmp.Diff([][]int{{3}}, r.Motifs); diff != "" {
		t.Errorf("motifs mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b"}, r.HiddenHosts); diff != "" {
		t.Errorf("hidden hosts mismatch (-want +got):\n%s", diff)
	}
}

func TestView_RenderIsReadOnly(t *testing.T) {
	v := NewView(relay(t))
	if err := NewHideHostTransformation("b").Transform(v); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	nodes, edges := len(v.nodes), len(v.edges)

	first := v.Render()
	if len(v.nodes) != nodes || len(v.edges) != edges {
		t.Errorf("expected render to leave styles alone, got %d/%d node and %d/%d edge styles",
			len(v.nodes), nodes, len(v.edges), edges)
	}
	for i, s := range first.NodeStyles {
		if s.Opacity != 1 {
			t.Errorf("node %d: expected default opacity, got %v", i, s.Opacity)
		}
	}
	if diff := cmp.Diff(first, v.Render()); diff != "" {
		t.Errorf("expected a second render to match (-first +second):\n%s", diff)
	}
}
