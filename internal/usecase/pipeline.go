package usecase

import (
	"fmt"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/logparser"
	"github.com/V4T54L/causeway/internal/transform"
)

// ErrUnknownExecution is returned when a view names an execution the log does
// not contain.
var ErrUnknownExecution = fmt.Errorf("%w: unknown execution", ErrInvalidViewRequest)

// Execution is one labeled execution of a log and its graph.
type Execution struct {
	Label  string
	Events []domain.LogEvent
	Graph  *domain.Graph
}

// Pipeline turns raw log lines into transformed views. It holds no state
// between calls.
type Pipeline struct {
	parser    *logparser.Parser
	buildOpts []domain.BuildOption
}

func NewPipeline(parser *logparser.Parser, validateClocks bool) *Pipeline {
	if parser == nil {
		parser = logparser.New()
	}
	p := &Pipeline{parser: parser}
	if validateClocks {
		p.buildOpts = append(p.buildOpts, domain.ValidateClocks())
	}
	return p
}

// Build parses lines and constructs their graph. Failures are
// *domain.ConstructionError.
func (p *Pipeline) Build(lines []string) ([]domain.LogEvent, *domain.Graph, error) {
	events, err := p.parser.Parse(lines)
	if err != nil {
		return nil, nil, err
	}
	g, err := domain.NewGraphFromEvents(events, p.buildOpts...)
	if err != nil {
		return nil, nil, err
	}
	return events, g, nil
}

// BuildExecutions splits lines into the executions the parser's delimiter
// separates and builds a graph for each.
func (p *Pipeline) BuildExecutions(lines []string) ([]Execution, error) {
	parsed, err := p.parser.ParseExecutions(lines)
	if err != nil {
		return nil, err
	}
	execs := make([]Execution, 0, len(parsed))
	for _, e := range parsed {
		g, err := domain.NewGraphFromEvents(e.Events, p.buildOpts...)
		if err != nil {
			return nil, err
		}
		execs = append(execs, Execution{Label: e.Label, Events: e.Events, Graph: g})
	}
	return execs, nil
}

// SelectExecution returns the execution called label. An empty label selects
// the first execution.
func SelectExecution(execs []Execution, label string) (Execution, error) {
	if label == "" && len(execs) > 0 {
		return execs[0], nil
	}
	for _, e := range execs {
		if e.Label == label {
			return e, nil
		}
	}
	return Execution{}, fmt.Errorf("%w %q", ErrUnknownExecution, label)
}

// View builds lines and runs the transformations req describes over the
// execution it selects.
func (p *Pipeline) View(lines []string, req ViewRequest) (*transform.View, error) {
	t, err := req.Transformer()
	if err != nil {
		return nil, err
	}
	execs, err := p.BuildExecutions(lines)
	if err != nil {
		return nil, err
	}
	exec, err := SelectExecution(execs, req.Execution)
	if err != nil {
		return nil, err
	}
	for _, label := range req.DiffAgainst {
		other, err := SelectExecution(execs, label)
		if err != nil {
			return nil, err
		}
		t.ShowDiff(label, other.Graph)
	}
	v, err := t.Transform(exec.Graph)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return v, nil
}
