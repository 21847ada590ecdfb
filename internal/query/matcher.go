package query

import (
	"errors"
	"strings"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/pkg/exception"
)

// LogEventMatcher is a compiled query.
type LogEventMatcher struct {
	query       string
	interpreter *Interpreter
}

// NewLogEventMatcher compiles query. Lexer and parser failures are returned
// as *exception.Exception annotated with the query and a caret under the
// first character of the offending token.
func NewLogEventMatcher(query string) (*LogEventMatcher, error) {
	lex := NewLexer(query)
	ast, err := NewParser(lex).Parse()
	if err != nil {
		var ex *exception.Exception
		if errors.As(err, &ex) {
			ex.SetUserFriendly(true)
			ex.Append("\n", exception.Plain)
			ex.Append(query+"\n"+caret(lex.LastPos()), exception.Code)
		}
		return nil, err
	}
	return &LogEventMatcher{query: query, interpreter: NewInterpreter(ast)}, nil
}

func caret(col int) string {
	if col < 0 {
		col = 0
	}
	return strings.Repeat(" ", col) + "^"
}

// Query returns the source text the matcher was compiled from.
func (m *LogEventMatcher) Query() string { return m.query }

// Match evaluates the query against event. Evaluation failures carry the
// query text.
func (m *LogEventMatcher) Match(event domain.LogEvent) (bool, error) {
	ok, err := m.interpreter.Interpret(event)
	if err != nil {
		var ex *exception.Exception
		if errors.As(err, &ex) {
			ex.SetUserFriendly(true)
			ex.Append("\n", exception.Plain)
			ex.Append(m.query, exception.Code)
		}
		return false, err
	}
	return ok, nil
}

// MatchAny reports whether any event matches, stopping at the first match.
func (m *LogEventMatcher) MatchAny(events []domain.LogEvent) (bool, error) {
	for _, e := range events {
		ok, err := m.Match(e)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
