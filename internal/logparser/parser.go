// Package logparser turns raw execution logs into log events. A log is a
// sequence of (text, timestamp) line pairs; a timestamp line holds the host
// id, whitespace, then a JSON object mapping host ids to clock values.
package logparser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/V4T54L/causeway/internal/domain"
)

var ErrNoNamedGroups = errors.New("field pattern has no named groups")

type Parser struct {
	fieldPattern *regexp.Regexp
	delimiter    *regexp.Regexp
}

// Execution is one labeled execution of a multi-execution log.
type Execution struct {
	Label  string
	Events []domain.LogEvent
}

type Option func(*Parser)

// WithFieldPattern extracts the named groups of re from each event's text as
// event fields.
func WithFieldPattern(re *regexp.Regexp) Option {
	return func(p *Parser) {
		p.fieldPattern = re
	}
}

// WithDelimiter makes ParseExecutions split the log on every line re matches.
// A named group "trace" in re labels the execution that follows the line.
func WithDelimiter(re *regexp.Regexp) Option {
	return func(p *Parser) {
		p.delimiter = re
	}
}

func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CompileDelimiter compiles a pattern for WithDelimiter. An empty pattern
// yields nil.
func CompileDelimiter(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile execution delimiter: %w", err)
	}
	return re, nil
}

// CompileFieldPattern compiles a pattern for WithFieldPattern. An empty
// pattern yields nil.
func CompileFieldPattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile field pattern: %w", err)
	}
	for _, name := range re.SubexpNames() {
		if name != "" {
			return re, nil
		}
	}
	return nil, ErrNoNamedGroups
}

// ParseString splits raw into lines and parses them.
func (p *Parser) ParseString(raw string) ([]domain.LogEvent, error) {
	return p.Parse(strings.Split(raw, "\n"))
}

// Parse reads alternating text and timestamp lines. Blank lines are skipped.
// Failures are *domain.ConstructionError values naming the pair index and the
// one-based line.
func (p *Parser) Parse(lines []string) ([]domain.LogEvent, error) {
	return p.parse(lines, 0)
}

type segment struct {
	label string
	line  int
	start int
	end   int
}

// ParseExecutions splits lines into executions on the delimiter and parses
// each one. Executions with no events are skipped, the first one is labeled
// "" and labels must be unique. Without a delimiter the whole log is a single
// execution labeled "".
func (p *Parser) ParseExecutions(lines []string) ([]Execution, error) {
	segs := []segment{{start: 0}}
	if p.delimiter != nil {
		trace := p.delimiter.SubexpIndex("trace")
		for i, l := range lines {
			m := p.delimiter.FindStringSubmatch(strings.TrimSpace(l))
			if m == nil {
				continue
			}
			segs[len(segs)-1].end = i
			label := ""
			if trace >= 0 {
				label = m[trace]
			}
			segs = append(segs, segment{label: label, line: i + 1, start: i + 1})
		}
	}
	segs[len(segs)-1].end = len(lines)

	var execs []Execution
	seen := make(map[string]bool)
	for _, seg := range segs {
		part := lines[seg.start:seg.end]
		if blank(part) {
			continue
		}
		if seen[seg.label] {
			return nil, &domain.ConstructionError{
				Index: -1,
				Line:  seg.line,
				Msg:   fmt.Sprintf("execution names must be unique, there are multiple executions called %q", seg.label),
			}
		}
		seen[seg.label] = true

		events, err := p.parse(part, seg.start)
		if err != nil {
			return nil, err
		}
		execs = append(execs, Execution{Label: seg.label, Events: events})
	}
	if len(execs) == 0 {
		return nil, &domain.ConstructionError{Index: 0, Msg: "the log needs at least one event and its vector timestamp"}
	}
	return execs, nil
}

func blank(lines []string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			return false
		}
	}
	return true
}

// parse reads one execution. offset is the number of input lines before
// lines[0] and shifts every reported line number.
func (p *Parser) parse(lines []string, offset int) ([]domain.LogEvent, error) {
	nonEmpty := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			nonEmpty++
		}
	}
	if nonEmpty < 2 {
		return nil, &domain.ConstructionError{Index: 0, Msg: "the log needs at least one event and its vector timestamp"}
	}

	var events []domain.LogEvent
	loc := 0
	skipBlank := func() {
		for loc < len(lines) && strings.TrimSpace(lines[loc]) == "" {
			loc++
		}
	}
	for pair := 0; ; pair++ {
		skipBlank()
		if loc >= len(lines) {
			break
		}
		textLine := loc
		text := strings.TrimSpace(lines[loc])
		loc++

		skipBlank()
		if loc >= len(lines) {
			return nil, &domain.ConstructionError{Index: pair, Line: offset + textLine + 1, Msg: "the last event in the log is missing a vector timestamp"}
		}
		ts, err := parseTimestamp(strings.TrimSpace(lines[loc]))
		if err != nil {
			return nil, &domain.ConstructionError{Index: pair, Line: offset + loc + 1, Msg: "invalid vector timestamp", Err: err}
		}
		loc++

		events = append(events, domain.NewLogEvent(text, ts, offset+textLine+1, p.fields(text)))
	}
	return events, nil
}

func parseTimestamp(s string) (domain.VectorTimestamp, error) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return domain.VectorTimestamp{}, fmt.Errorf("%q: expected a host followed by a clock", s)
	}
	host := s[:i]
	var clock map[string]int
	if err := json.Unmarshal([]byte(strings.TrimSpace(s[i:])), &clock); err != nil {
		return domain.VectorTimestamp{}, fmt.Errorf("%q: %w", s, err)
	}
	return domain.NewVectorTimestamp(host, clock)
}

func (p *Parser) fields(text string) map[string]string {
	if p.fieldPattern == nil {
		return nil
	}
	m := p.fieldPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	out := make(map[string]string)
	for i, name := range p.fieldPattern.SubexpNames() {
		if name != "" && m[i] != "" {
			out[name] = m[i]
		}
	}
	return out
}
