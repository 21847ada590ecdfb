package query

import (
	"fmt"
	"regexp"

	"github.com/V4T54L/causeway/internal/pkg/exception"
)

// Kind identifies the variant of an AST node.
type Kind int

const (
	KindBinaryOp Kind = iota
	KindIdentifier
	KindStringLiteral
	KindRegexLiteral
	KindImplicitSearch
)

// Op is the operator of a binary node.
type Op int

const (
	OpAnd Op = iota
	OpOr
	OpXor
	OpEquals
	OpNotEquals
)

func (o Op) String() string {
	switch o {
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpXor:
		return "XOR"
	case OpEquals:
		return "EQUALS"
	case OpNotEquals:
		return "NOT_EQUALS"
	default:
		return "UNKNOWN"
	}
}

// Node is an immutable AST node. Which fields are set depends on Kind: Op,
// LHS and RHS for binary operators; Text for every leaf; Regex for regex
// literals.
type Node struct {
	Kind  Kind
	Op    Op
	LHS   *Node
	RHS   *Node
	Text  string
	Regex *regexp.Regexp
}

func BinaryOp(op Op, lhs, rhs *Node) *Node {
	return &Node{Kind: KindBinaryOp, Op: op, LHS: lhs, RHS: rhs}
}

func Identifier(name string) *Node {
	return &Node{Kind: KindIdentifier, Text: name}
}

func StringLiteral(text string) *Node {
	return &Node{Kind: KindStringLiteral, Text: text}
}

// RegexLiteral compiles text eagerly so invalid patterns surface while the
// query is compiled rather than while it runs.
func RegexLiteral(text string) (*Node, error) {
	re, err := regexp.Compile(text)
	if err != nil {
		e := exception.New("The regular expression ", false)
		e.Append(text, exception.Code)
		e.Append(" is not valid.", exception.Plain)
		return nil, e
	}
	return &Node{Kind: KindRegexLiteral, Text: text, Regex: re}, nil
}

func ImplicitSearch(text string) *Node {
	return &Node{Kind: KindImplicitSearch, Text: text}
}

// String renders the node as an s-expression.
func (n *Node) String() string {
	switch n.Kind {
	case KindBinaryOp:
		return fmt.Sprintf("(%s %s %s)", n.Op, n.LHS, n.RHS)
	case KindIdentifier:
		return n.Text
	case KindStringLiteral:
		return fmt.Sprintf("%q", n.Text)
	case KindRegexLiteral:
		return "/" + n.Text + "/"
	case KindImplicitSearch:
		return fmt.Sprintf("(search %q)", n.Text)
	default:
		return "?"
	}
}
