package query

import (
	"unicode"

	"github.com/V4T54L/causeway/internal/pkg/exception"
)

// Lexer scans tokens on demand. It remembers where the last scan started so
// that errors can point at a column of the query.
type Lexer struct {
	input  []rune
	pos    int
	last   int
	peeked *Token
}

func NewLexer(query string) *Lexer {
	return &Lexer{input: []rune(query)}
}

// Consumed returns the number of characters read so far, including those of
// a peeked token.
func (l *Lexer) Consumed() int {
	return l.pos
}

// LastPos returns the column where the most recently scanned token starts,
// or where the last failed scan started.
func (l *Lexer) LastPos() int {
	return l.last
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	if l.peeked == nil {
		tok, err := l.scan()
		if err != nil {
			return Token{}, err
		}
		l.peeked = &tok
	}
	return *l.peeked, nil
}

// Next consumes and returns the next token. At the end of the input it keeps
// returning TokenEOF.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.Peek()
	if err != nil {
		return Token{}, err
	}
	if tok.Type != TokenEOF {
		l.peeked = nil
	}
	return tok, nil
}

// All drains the lexer.
func (l *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) scan() (Token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	l.last = l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	start := l.pos
	c := l.input[l.pos]
	switch {
	case c == '/':
		return l.scanGroup('/', TokenRegexLiteral)
	case c == '"' || c == '\'':
		return l.scanGroup(c, TokenStringLiteral)
	}

	if l.pos+1 < len(l.input) {
		if typ, ok := symbolicTokens[string(l.input[l.pos:l.pos+2])]; ok {
			l.pos += 2
			return Token{Type: typ, Text: string(l.input[start:l.pos]), Pos: start}, nil
		}
	}
	if typ, ok := symbolicTokens[string(c)]; ok {
		l.pos++
		return Token{Type: typ, Text: string(c), Pos: start}, nil
	}

	if isWordChar(c) {
		for l.pos < len(l.input) && isWordChar(l.input[l.pos]) {
			l.pos++
		}
		return Token{Type: TokenCharSeq, Text: string(l.input[start:l.pos]), Pos: start}, nil
	}

	l.pos++
	return Token{}, exception.New("Invalid character: "+string(c), false)
}

// scanGroup reads a delimited literal. The delimiters are not part of the
// token text.
func (l *Lexer) scanGroup(delim rune, typ TokenType) (Token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) && l.input[l.pos] != delim {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return Token{}, exception.New("Expected: "+string(delim), false)
	}
	l.pos++
	return Token{Type: typ, Text: string(l.input[start+1 : l.pos-1]), Pos: start}, nil
}

func isWordChar(c rune) bool {
	return c == '_' || unicode.IsLetter(c) || unicode.IsDigit(c)
}
