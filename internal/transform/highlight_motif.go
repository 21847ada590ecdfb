package transform

import "github.com/V4T54L/causeway/internal/motif"

// HighlightMotifTransformation dims the view and brings the motifs found by a
// finder back to full visibility.
type HighlightMotifTransformation struct {
	finder      motif.Finder
	ignoreEdges bool
}

// NewHighlightMotifTransformation leaves motif edges dimmed when ignoreEdges
// is set.
func NewHighlightMotifTransformation(finder motif.Finder, ignoreEdges bool) *HighlightMotifTransformation {
	return &HighlightMotifTransformation{finder: finder, ignoreEdges: ignoreEdges}
}

func (t *HighlightMotifTransformation) Finder() motif.Finder { return t.finder }

func (t *HighlightMotifTransformation) Transform(v *View) error {
	group, err := t.finder.Find(v.Graph())
	if err != nil {
		return err
	}

	g := v.Graph()
	for _, id := range v.VisibleNodes() {
		if !g.Node(id).IsHead() {
			v.NodeStyle(id).Opacity = DimOpacity
		}
	}
	for _, e := range v.VisibleEdges() {
		v.EdgeStyle(e.From, e.To).Opacity = DimOpacity
	}

	for _, id := range group.Nodes() {
		s := v.NodeStyle(id)
		s.Opacity = 1
		s.Radius = HighlightRadius
	}
	if !t.ignoreEdges {
		for _, e := range group.Edges() {
			s := v.EdgeStyle(e.From, e.To)
			s.Opacity = 1
			s.Color = MotifEdgeColor
		}
	}

	v.motifs = group
	return nil
}
