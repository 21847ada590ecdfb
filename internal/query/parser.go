package query

import (
	"strings"

	"github.com/V4T54L/causeway/internal/pkg/exception"
)

// Parser builds an AST from a Lexer. OR binds loosest, then XOR, then AND;
// adjacent operands without an operator are joined by AND.
type Parser struct {
	lex *Lexer
}

func NewParser(lex *Lexer) *Parser {
	return &Parser{lex: lex}
}

// Parse reads the whole input as a single expression.
func (p *Parser) Parse() (*Node, error) {
	ast, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	tok, err := p.lex.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != TokenEOF {
		return nil, exception.New("Expected: end of input", false)
	}
	return ast, nil
}

func (p *Parser) parseOr() (*Node, error) {
	lhs, err := p.parseXor()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.accept(TokenPipe)
		if err != nil {
			return nil, err
		}
		if !ok {
			return lhs, nil
		}
		if _, err := p.accept(TokenPipe); err != nil {
			return nil, err
		}
		rhs, err := p.parseXor()
		if err != nil {
			return nil, err
		}
		lhs = BinaryOp(OpOr, lhs, rhs)
	}
}

func (p *Parser) parseXor() (*Node, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		ok, err := p.accept(TokenCaret)
		if err != nil {
			return nil, err
		}
		if !ok {
			return lhs, nil
		}
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = BinaryOp(OpXor, lhs, rhs)
	}
}

func (p *Parser) parseAnd() (*Node, error) {
	lhs, err := p.parseContents()
	if err != nil {
		return nil, err
	}
	for {
		explicit, err := p.accept(TokenAmp)
		if err != nil {
			return nil, err
		}
		if explicit {
			if _, err := p.accept(TokenAmp); err != nil {
				return nil, err
			}
		} else {
			implicit, err := p.check(TokenLParen, TokenCharSeq, TokenStringLiteral)
			if err != nil {
				return nil, err
			}
			if !implicit {
				return lhs, nil
			}
		}
		rhs, err := p.parseContents()
		if err != nil {
			return nil, err
		}
		lhs = BinaryOp(OpAnd, lhs, rhs)
	}
}

func (p *Parser) parseContents() (*Node, error) {
	tok, err := p.require(TokenLParen, TokenCharSeq, TokenStringLiteral)
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case TokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.require(TokenRParen); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenStringLiteral:
		return ImplicitSearch(tok.Text), nil
	}

	op := OpEquals
	eq, err := p.accept(TokenEqual)
	if err != nil {
		return nil, err
	}
	if !eq {
		neq, err := p.accept(TokenExclamationEqual)
		if err != nil {
			return nil, err
		}
		if !neq {
			return ImplicitSearch(tok.Text), nil
		}
		op = OpNotEquals
	}

	rhs, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return BinaryOp(op, Identifier(tok.Text), rhs), nil
}

func (p *Parser) parseOperand() (*Node, error) {
	ref, err := p.accept(TokenDollar)
	if err != nil {
		return nil, err
	}
	if ref {
		tok, err := p.require(TokenCharSeq)
		if err != nil {
			return nil, err
		}
		return Identifier(tok.Text), nil
	}

	tok, err := p.require(TokenRegexLiteral, TokenCharSeq, TokenStringLiteral)
	if err != nil {
		return nil, err
	}
	if tok.Type == TokenRegexLiteral {
		return RegexLiteral(tok.Text)
	}
	return StringLiteral(tok.Text), nil
}

// check reports whether the next token has one of types without consuming it.
func (p *Parser) check(types ...TokenType) (bool, error) {
	tok, err := p.lex.Peek()
	if err != nil {
		return false, err
	}
	for _, t := range types {
		if tok.Type == t {
			return true, nil
		}
	}
	return false, nil
}

// accept consumes the next token if it has type t.
func (p *Parser) accept(t TokenType) (bool, error) {
	ok, err := p.check(t)
	if err != nil || !ok {
		return false, err
	}
	_, err = p.lex.Next()
	return true, err
}

// require consumes the next token, failing unless it has one of types.
func (p *Parser) require(types ...TokenType) (Token, error) {
	ok, err := p.check(types...)
	if err != nil {
		return Token{}, err
	}
	if !ok {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		return Token{}, exception.New("Expected: "+strings.Join(names, " or "), false)
	}
	return p.lex.Next()
}

// Parse compiles query into an AST.
func Parse(query string) (*Node, error) {
	return NewParser(NewLexer(query)).Parse()
}
