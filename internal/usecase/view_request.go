package usecase

import (
	"errors"
	"fmt"

	"github.com/V4T54L/causeway/internal/motif"
	"github.com/V4T54L/causeway/internal/transform"
)

// ErrInvalidViewRequest wraps every ViewRequest validation failure.
var ErrInvalidViewRequest = errors.New("invalid view request")

const (
	FinderRequestResponse = "request-response"
	FinderBroadcast       = "broadcast"
	FinderGather          = "gather"
)

// FinderOptions selects a structural motif finder.
type FinderOptions struct {
	Type               string `json:"type" yaml:"type"`
	MaxLERequester     int    `json:"max_le_requester,omitempty" yaml:"max_le_requester"`
	MaxLEResponder     int    `json:"max_le_responder,omitempty" yaml:"max_le_responder"`
	MinBroadcastGather int    `json:"min_broadcast_gather,omitempty" yaml:"min_broadcast_gather"`
	MaxInBetween       int    `json:"max_in_between,omitempty" yaml:"max_in_between"`
}

// ViewRequest describes the transformations applied to an execution before
// it is rendered. Query and Finder are mutually exclusive.
type ViewRequest struct {
	HiddenHosts       []string       `json:"hidden_hosts,omitempty" yaml:"hidden_hosts"`
	HighlightHosts    []string       `json:"highlight_hosts,omitempty" yaml:"highlight_hosts"`
	Query             string         `json:"query,omitempty" yaml:"query"`
	Finder            *FinderOptions `json:"finder,omitempty" yaml:"finder"`
	IgnoreMotifEdges  bool           `json:"ignore_motif_edges,omitempty" yaml:"ignore_motif_edges"`
	CollapseThreshold int            `json:"collapse_threshold,omitempty" yaml:"collapse_threshold"`
	// Execution picks one execution of a multi-execution log; empty means
	// the first.
	Execution   string   `json:"execution,omitempty" yaml:"execution"`
	DiffAgainst []string `json:"diff_against,omitempty" yaml:"diff_against"`
}

func (r ViewRequest) Validate() error {
	if r.Query != "" && r.Finder != nil {
		return fmt.Errorf("%w: query and finder are mutually exclusive", ErrInvalidViewRequest)
	}
	if r.CollapseThreshold != 0 && r.CollapseThreshold < transform.DefaultCollapseThreshold {
		return fmt.Errorf("%w: collapse_threshold must be at least %d", ErrInvalidViewRequest, transform.DefaultCollapseThreshold)
	}
	for _, label := range r.DiffAgainst {
		if label == r.Execution {
			return fmt.Errorf("%w: execution %q cannot be diffed against itself", ErrInvalidViewRequest, label)
		}
	}
	if r.Finder != nil {
		switch r.Finder.Type {
		case FinderRequestResponse:
			if r.Finder.MaxLERequester < 0 || r.Finder.MaxLEResponder < 0 {
				return fmt.Errorf("%w: request-response limits must not be negative", ErrInvalidViewRequest)
			}
		case FinderBroadcast, FinderGather:
			if r.Finder.MinBroadcastGather < 1 || r.Finder.MaxInBetween < 0 {
				return fmt.Errorf("%w: %s needs min_broadcast_gather >= 1 and max_in_between >= 0", ErrInvalidViewRequest, r.Finder.Type)
			}
		default:
			return fmt.Errorf("%w: unknown finder %q", ErrInvalidViewRequest, r.Finder.Type)
		}
	}
	return nil
}

// MotifFinder returns nil when the request highlights no motifs. Query compile
// errors are returned as they are.
func (r ViewRequest) MotifFinder() (motif.Finder, error) {
	switch {
	case r.Query != "":
		return motif.NewTextQueryFinder(r.Query)
	case r.Finder == nil:
		return nil, nil
	case r.Finder.Type == FinderRequestResponse:
		return motif.NewRequestResponseFinder(r.Finder.MaxLERequester, r.Finder.MaxLEResponder), nil
	default:
		return motif.NewBroadcastGatherFinder(r.Finder.MinBroadcastGather, r.Finder.MaxInBetween, r.Finder.Type == FinderBroadcast), nil
	}
}

// Transformer validates the request and builds the pipeline it describes.
func (r ViewRequest) Transformer() (*transform.Transformer, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	t := transform.NewTransformer()
	for _, h := range r.HiddenHosts {
		t.HideHost(h)
	}
	for _, h := range r.HighlightHosts {
		t.HighlightHost(h)
	}
	if r.CollapseThreshold != 0 {
		if err := t.Collapse().SetThreshold(r.CollapseThreshold); err != nil {
			return nil, err
		}
	}

	f, err := r.MotifFinder()
	if err != nil {
		return nil, err
	}
	if f != nil {
		t.HighlightMotif(f, r.IgnoreMotifEdges)
	}
	return t, nil
}
