// Package query implements the log event matching language: a tokenizer,
// a precedence-climbing parser that builds a small AST, and an interpreter
// that evaluates the AST against a log event's fields.
//
// Grammar, lowest precedence first:
//
//	expr     = xor { ("|" | "||") xor }
//	xor      = and { "^" and }
//	and      = contents { [ "&" | "&&" ] contents }
//	contents = "(" expr ")" | string | charseq [ ("=" | "!=") operand ]
//	operand  = "$" charseq | regex | string | charseq
package query

import "fmt"

// TokenType enumerates lexical symbols.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenDollar
	TokenExclamationEqual
	TokenEqual
	TokenLParen
	TokenRParen
	TokenPipe
	TokenAmp
	TokenCaret
	TokenCharSeq
	TokenRegexLiteral
	TokenStringLiteral
)

var symbolicTokens = map[string]TokenType{
	"$":  TokenDollar,
	"!=": TokenExclamationEqual,
	"=":  TokenEqual,
	"(":  TokenLParen,
	")":  TokenRParen,
	"|":  TokenPipe,
	"&":  TokenAmp,
	"^":  TokenCaret,
}

// String returns the name used in error messages.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "end of input"
	case TokenCharSeq:
		return "a sequence of characters"
	case TokenRegexLiteral:
		return "a regular expression"
	case TokenStringLiteral:
		return "a string literal"
	}
	for text, typ := range symbolicTokens {
		if typ == t {
			return fmt.Sprintf("%q", text)
		}
	}
	return "unknown token"
}

// Token is one lexeme. Pos is the rune offset of its first character.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}
