package transform

import "sort"

// HighlightHostTransformation focuses the view on a set of hosts. Other hosts
// keep only the nodes that talk to a highlighted host, and a host that did
// not talk to every highlighted host is hidden altogether.
type HighlightHostTransformation struct {
	hosts       map[string]bool
	hiddenHosts []string
	ignored     bool
}

func NewHighlightHostTransformation(hosts ...string) *HighlightHostTransformation {
	t := &HighlightHostTransformation{hosts: make(map[string]bool)}
	for _, h := range hosts {
		t.AddHost(h)
	}
	return t
}

func (t *HighlightHostTransformation) AddHost(host string)    { t.hosts[host] = true }
func (t *HighlightHostTransformation) RemoveHost(host string) { delete(t.hosts, host) }

func (t *HighlightHostTransformation) ToggleHost(host string) {
	if t.hosts[host] {
		delete(t.hosts, host)
		return
	}
	t.hosts[host] = true
}

func (t *HighlightHostTransformation) IsHighlighted(host string) bool { return t.hosts[host] }

// Hosts returns the highlighted hosts in sorted order.
func (t *HighlightHostTransformation) Hosts() []string {
	out := make([]string, 0, len(t.hosts))
	for h := range t.hosts {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (t *HighlightHostTransformation) setHosts(hosts []string) {
	t.hosts = make(map[string]bool, len(hosts))
	for _, h := range hosts {
		t.hosts[h] = true
	}
}

// HiddenHosts lists the hosts hidden by the last run.
func (t *HighlightHostTransformation) HiddenHosts() []string {
	out := make([]string, len(t.hiddenHosts))
	copy(out, t.hiddenHosts)
	return out
}

func (t *HighlightHostTransformation) Transform(v *View) error {
	t.hiddenHosts = nil
	if t.ignored || len(t.hosts) == 0 {
		return nil
	}

	g := v.Graph()
	present := 0
	for h := range t.hosts {
		if head, ok := g.Head(h); ok {
			v.NodeStyle(head).Highlighted = true
			present++
		}
	}

	for _, host := range g.Hosts() {
		if t.hosts[host] {
			continue
		}
		communicated := make(map[string]bool)
		for _, id := range g.HostNodes(host) {
			keep := false
			for _, f := range g.Family(id) {
				if fh := g.Node(f).Host(); t.hosts[fh] {
					keep = true
					communicated[fh] = true
				}
			}
			if keep {
				continue
			}
			v.AddHiddenEdgeToFamily(id)
			if err := g.Remove(id); err != nil {
				return err
			}
		}

		if len(communicated) != present {
			if err := NewHideHostTransformation(host).Transform(v); err != nil {
				return err
			}
			t.hiddenHosts = append(t.hiddenHosts, host)
		}
	}
	return nil
}
