package transform

import (
	"fmt"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/motif"
)

// Transformer holds the pipeline applied to every run: the explicit
// transformations in the order they were added, then the defaults, then the
// execution diffs, then the motif highlight if one is set.
type Transformer struct {
	transformations []Transformation
	defaults        []Transformation
	collapse        *CollapseSequentialNodesTransformation
	diffs           []*ShowDiffTransformation
	highlightMotif  *HighlightMotifTransformation
}

func NewTransformer() *Transformer {
	c := NewCollapseSequentialNodesTransformation()
	return &Transformer{
		collapse: c,
		defaults: []Transformation{c},
	}
}

// Collapse exposes the default collapse transformation so callers can change
// its threshold and exemptions.
func (t *Transformer) Collapse() *CollapseSequentialNodesTransformation { return t.collapse }

func (t *Transformer) AddTransformation(tr Transformation) {
	t.transformations = append(t.transformations, tr)
}

// RemoveTransformation drops every occurrence of tr.
func (t *Transformer) RemoveTransformation(tr Transformation) {
	kept := t.transformations[:0]
	for _, cur := range t.transformations {
		if cur != tr {
			kept = append(kept, cur)
		}
	}
	t.transformations = kept
}

func (t *Transformer) Transformations() []Transformation {
	out := make([]Transformation, len(t.transformations))
	copy(out, t.transformations)
	return out
}

func (t *Transformer) hideHostFor(host string) *HideHostTransformation {
	for _, tr := range t.transformations {
		if h, ok := tr.(*HideHostTransformation); ok && h.Host() == host {
			return h
		}
	}
	return nil
}

// HideHost queues host for hiding. Hiding a host twice has no effect.
func (t *Transformer) HideHost(host string) {
	if t.hideHostFor(host) != nil {
		return
	}
	t.AddTransformation(NewHideHostTransformation(host))
}

func (t *Transformer) UnhideHost(host string) {
	for h := t.hideHostFor(host); h != nil; h = t.hideHostFor(host) {
		t.RemoveTransformation(h)
	}
}

func (t *Transformer) IsHidden(host string) bool { return t.hideHostFor(host) != nil }

func (t *Transformer) highlights() []*HighlightHostTransformation {
	var out []*HighlightHostTransformation
	for _, tr := range t.transformations {
		if h, ok := tr.(*HighlightHostTransformation); ok {
			out = append(out, h)
		}
	}
	return out
}

// HighlightHost queues a highlight of host at the current end of the
// pipeline.
func (t *Transformer) HighlightHost(host string) {
	if t.IsHighlighted(host) {
		return
	}
	t.AddTransformation(NewHighlightHostTransformation(host))
}

// UnhighlightHost removes host from every queued highlight and drops the
// highlights left empty.
func (t *Transformer) UnhighlightHost(host string) {
	for _, h := range t.highlights() {
		h.RemoveHost(host)
		if len(h.hosts) == 0 {
			t.RemoveTransformation(h)
		}
	}
}

func (t *Transformer) IsHighlighted(host string) bool {
	for _, h := range t.highlights() {
		if h.IsHighlighted(host) {
			return true
		}
	}
	return false
}

// ShowDiff marks what the view has that other, the graph of the execution
// called label, lacks. A label already shown is left as it is.
func (t *Transformer) ShowDiff(label string, other *domain.Graph) {
	if t.IsShowingDiff(label) {
		return
	}
	t.diffs = append(t.diffs, NewShowDiffTransformation(label, other))
}

func (t *Transformer) HideDiff(label string) {
	kept := t.diffs[:0]
	for _, d := range t.diffs {
		if d.Label() != label {
			kept = append(kept, d)
		}
	}
	t.diffs = kept
}

func (t *Transformer) IsShowingDiff(label string) bool {
	for _, d := range t.diffs {
		if d.Label() == label {
			return true
		}
	}
	return false
}

func (t *Transformer) HighlightMotif(finder motif.Finder, ignoreEdges bool) {
	t.highlightMotif = NewHighlightMotifTransformation(finder, ignoreEdges)
}

func (t *Transformer) UnhighlightMotif() { t.highlightMotif = nil }

// Transform runs the pipeline over a clone of base. base is never modified.
// When several host highlights are queued only the last one runs, carrying
// the hosts of all of them.
func (t *Transformer) Transform(base *domain.Graph) (*View, error) {
	v := NewView(base.Clone())

	if hs := t.highlights(); len(hs) > 1 {
		last := hs[len(hs)-1]
		saved := last.Hosts()
		for _, h := range hs[:len(hs)-1] {
			h.ignored = true
			for _, host := range h.Hosts() {
				last.AddHost(host)
			}
		}
		defer func() {
			for _, h := range hs[:len(hs)-1] {
				h.ignored = false
			}
			last.setHosts(saved)
		}()
	}

	for i, tr := range t.transformations {
		if err := tr.Transform(v); err != nil {
			return nil, fmt.Errorf("transformation %d: %w", i, err)
		}
	}
	for i, tr := range t.defaults {
		if err := tr.Transform(v); err != nil {
			return nil, fmt.Errorf("default transformation %d: %w", i, err)
		}
	}
	for _, d := range t.diffs {
		if err := d.Transform(v); err != nil {
			return nil, fmt.Errorf("diff against %q: %w", d.Label(), err)
		}
	}
	if t.highlightMotif != nil {
		if err := t.highlightMotif.Transform(v); err != nil {
			return nil, fmt.Errorf("highlight motif: %w", err)
		}
	}
	return v, nil
}
