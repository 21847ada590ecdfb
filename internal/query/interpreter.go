package query

import (
	"regexp"
	"strings"

	"github.com/V4T54L/causeway/internal/domain"
	"github.com/V4T54L/causeway/internal/pkg/exception"
)

// EventField is the synthetic field bound to an event's raw text.
const EventField = "event"

type valueKind int

const (
	valueBool valueKind = iota
	valueString
	valueRegex
)

type value struct {
	kind valueKind
	b    bool
	s    string
	re   *regexp.Regexp
}

// Interpreter evaluates a compiled AST against log events.
type Interpreter struct {
	ast *Node
}

func NewInterpreter(ast *Node) *Interpreter {
	return &Interpreter{ast: ast}
}

// Interpret reports whether event satisfies the query. Both operands of a
// logical operator are always evaluated, so an unbound field is reported
// regardless of the other side.
func (in *Interpreter) Interpret(event domain.LogEvent) (bool, error) {
	env := make(map[string]string, len(event.Fields)+1)
	for k, v := range event.Fields {
		env[k] = v
	}
	env[EventField] = event.Text

	v, err := eval(in.ast, env)
	if err != nil {
		return false, err
	}
	if v.kind != valueBool {
		return false, exception.New("Query does not evaluate to a boolean.", false)
	}
	return v.b, nil
}

func eval(n *Node, env map[string]string) (value, error) {
	switch n.Kind {
	case KindIdentifier:
		s, ok := env[n.Text]
		if !ok {
			return value{}, exception.New("Unbound identifier: "+n.Text, false)
		}
		return value{kind: valueString, s: s}, nil
	case KindStringLiteral:
		return value{kind: valueString, s: n.Text}, nil
	case KindRegexLiteral:
		return value{kind: valueRegex, re: n.Regex}, nil
	case KindImplicitSearch:
		needle := strings.ToLower(n.Text)
		for _, v := range env {
			if strings.Contains(strings.ToLower(v), needle) {
				return value{kind: valueBool, b: true}, nil
			}
		}
		return value{kind: valueBool}, nil
	case KindBinaryOp:
		return evalBinary(n, env)
	default:
		return value{}, exception.New("Invalid AST node", false)
	}
}

func evalBinary(n *Node, env map[string]string) (value, error) {
	lhs, err := eval(n.LHS, env)
	if err != nil {
		return value{}, err
	}
	rhs, err := eval(n.RHS, env)
	if err != nil {
		return value{}, err
	}

	switch n.Op {
	case OpEquals, OpNotEquals:
		if lhs.kind != valueString {
			return value{}, exception.New("LHS must be a string.", false)
		}
		var match bool
		switch rhs.kind {
		case valueRegex:
			match = rhs.re.MatchString(lhs.s)
		case valueString:
			match = lhs.s == rhs.s
		default:
			return value{}, exception.New("RHS must be a regex or string.", false)
		}
		if n.Op == OpNotEquals {
			match = !match
		}
		return value{kind: valueBool, b: match}, nil
	case OpAnd, OpOr, OpXor:
		if lhs.kind != valueBool || rhs.kind != valueBool {
			return value{}, exception.New("Operands of "+n.Op.String()+" must be boolean.", false)
		}
		var b bool
		switch n.Op {
		case OpAnd:
			b = lhs.b && rhs.b
		case OpOr:
			b = lhs.b || rhs.b
		case OpXor:
			b = lhs.b != rhs.b
		}
		return value{kind: valueBool, b: b}, nil
	default:
		return value{}, exception.New("Invalid BinaryOp", false)
	}
}
