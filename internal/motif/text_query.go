package motif

import (
	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/query"
)

// TextQueryFinder reports every node holding an event that matches a query.
type TextQueryFinder struct {
	matcher *query.LogEventMatcher
}

// NewTextQueryFinder compiles q. Compile errors are returned unchanged so the
// caller can present them.
func NewTextQueryFinder(q string) (*TextQueryFinder, error) {
	m, err := query.NewLogEventMatcher(q)
	if err != nil {
		return nil, err
	}
	return &TextQueryFinder{matcher: m}, nil
}

// Query returns the source text of the compiled query.
func (f *TextQueryFinder) Query() string { return f.matcher.Query() }

// Find returns one single-node motif per matching node.
func (f *TextQueryFinder) Find(g *domain.Graph) (*domain.MotifGroup, error) {
	group := domain.NewMotifGroup()
	for _, id := range g.Nodes() {
		ok, err := f.matcher.MatchAny(g.Node(id).LogEvents())
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		m := domain.NewMotif()
		m.AddNode(id)
		group.AddMotif(m)
	}
	return group, nil
}
