package transform

import "github.com/V4T54L/causeway/internal/domain"

// HideHostTransformation removes a host from the view. Messages that passed
// through the host are kept as dashed edges joining their endpoints.
type HideHostTransformation struct {
	host string
}

func NewHideHostTransformation(host string) *HideHostTransformation {
	return &HideHostTransformation{host: host}
}

func (t *HideHostTransformation) Host() string { return t.host }

// Transform is a no-op when the host is absent.
func (t *HideHostTransformation) Transform(v *View) error {
	g := v.Graph()
	if !g.HasHost(t.host) {
		return nil
	}

	// Every parent seen so far on the hidden chain reaches every later child.
	// AddChild drops the pairs a host chain already implies.
	var parents []domain.NodeID
	for _, id := range g.HostNodes(t.host) {
		v.AddHiddenEdgeToFamily(id)
		parents = append(parents, g.Parents(id)...)
		for _, c := range g.Children(id) {
			for _, p := range parents {
				if g.Node(p).Host() == g.Node(c).Host() {
					continue
				}
				if g.AddChild(p, c) {
					v.EdgeStyle(p, c).Dashed = true
				}
			}
		}
	}

	g.RemoveHost(t.host)
	v.hideHost(t.host)
	return nil
}
