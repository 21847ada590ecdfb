package transform

import "github.com/V4T54L/causeway/internal/domain"

// Diff summarizes how a view differs from another execution.
type Diff struct {
	Against      string   `json:"against"`
	UniqueHosts  []string `json:"unique_hosts"`
	CommonHosts  []string `json:"common_hosts"`
	UniqueEvents int      `json:"unique_events"`
}

// ShowDiffTransformation marks what a view has that another execution lacks.
// A host the other execution never logged gets its start node marked. On
// shared hosts, nodes holding an event whose text the other execution never
// logged on that host are marked.
type ShowDiffTransformation struct {
	label string
	other *domain.Graph
}

// NewShowDiffTransformation compares against other, the untransformed graph
// of the execution called label. Hosts hidden in either view still count as
// present.
func NewShowDiffTransformation(label string, other *domain.Graph) *ShowDiffTransformation {
	return &ShowDiffTransformation{label: label, other: other}
}

func (t *ShowDiffTransformation) Label() string { return t.label }

func (t *ShowDiffTransformation) Transform(v *View) error {
	g := v.Graph()
	d := Diff{Against: t.label, UniqueHosts: []string{}, CommonHosts: []string{}}

	for _, host := range g.Hosts() {
		if !t.other.HasHost(host) {
			d.UniqueHosts = append(d.UniqueHosts, host)
			head, _ := g.Head(host)
			v.NodeStyle(head).Unique = true
			continue
		}
		d.CommonHosts = append(d.CommonHosts, host)

		seen := make(map[string]bool)
		for _, id := range t.other.HostNodes(host) {
			for _, ev := range t.other.Node(id).LogEvents() {
				seen[ev.Text] = true
			}
		}
		for _, id := range g.HostNodes(host) {
			for _, ev := range g.Node(id).LogEvents() {
				if !seen[ev.Text] {
					v.NodeStyle(id).Unique = true
					d.UniqueEvents++
					break
				}
			}
		}
	}

	// hidden hosts are not in g, but still shared or not
	for _, host := range v.HiddenHosts() {
		if t.other.HasHost(host) {
			d.CommonHosts = append(d.CommonHosts, host)
		} else {
			d.UniqueHosts = append(d.UniqueHosts, host)
		}
	}

	v.diffs = append(v.diffs, d)
	return nil
}
