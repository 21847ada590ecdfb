// Package motif locates recurring communication patterns in a causality
// graph.
package motif

import "github.com/V4T54L/causeway/internal/domain"

// Finder searches a graph for motifs. Implementations must not mutate the
// graph.
type Finder interface {
	Find(g *domain.Graph) (*domain.MotifGroup, error)
}
