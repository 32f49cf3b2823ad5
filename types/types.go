package types

import (
	"fmt"
)

type Position struct {
	Line     int
	Column   int
	Filename string
}

type Span struct {
	From Position
	To   Position
}

type TokenKind int

const (
	EOF TokenKind = iota

	// non-syntactic kinds, removed by the normalizer
	WHITESPACE
	COMMENT
	LINEBREAK

	EOS

	NUMBER
	IDENT

	LET
	IF
	ELSE
	LAMBDA
	TYPE
	ISA

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	BANG
	AMPERSAND
	PIPE
	EQUALEQUAL
	NOTEQUAL
	LESS
	LESSEQUAL
	GREATER
	GREATEREQUAL
	EQUALS

	PERIOD
	COMMA
	LBRACKET
	RBRACKET
	LPAREN
	RPAREN
	COLON
)

var kindNames = map[TokenKind]string{
	EOF:          "EOF",
	WHITESPACE:   "WHITESPACE",
	COMMENT:      "COMMENT",
	LINEBREAK:    "LINEBREAK",
	EOS:          "EOS",
	NUMBER:       "NUMBER",
	IDENT:        "IDENT",
	LET:          "LET",
	IF:           "IF",
	ELSE:         "ELSE",
	LAMBDA:       "LAMBDA",
	TYPE:         "TYPE",
	ISA:          "ISA",
	PLUS:         "PLUS",
	MINUS:        "MINUS",
	STAR:         "STAR",
	SLASH:        "SLASH",
	PERCENT:      "PERCENT",
	BANG:         "BANG",
	AMPERSAND:    "AMPERSAND",
	PIPE:         "PIPE",
	EQUALEQUAL:   "EQUALEQUAL",
	NOTEQUAL:     "NOTEQUAL",
	LESS:         "LESS",
	LESSEQUAL:    "LESSEQUAL",
	GREATER:      "GREATER",
	GREATEREQUAL: "GREATEREQUAL",
	EQUALS:       "EQUALS",
	PERIOD:       "PERIOD",
	COMMA:        "COMMA",
	LBRACKET:     "LBRACKET",
	RBRACKET:     "RBRACKET",
	LPAREN:       "LPAREN",
	RPAREN:       "RPAREN",
	COLON:        "COLON",
}

func (t TokenKind) String() string {
	if name, ok := kindNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(t))
}

// Keywords maps reserved words to their token kinds.
var Keywords = map[string]TokenKind{
	"let":    LET,
	"if":     IF,
	"else":   ELSE,
	"lambda": LAMBDA,
	"type":   TYPE,
	"isa":    ISA,
}

// Operators maps operator spellings to their token kinds. Lookup is greedy,
// so two-character spellings win over their one-character prefixes.
var Operators = map[string]TokenKind{
	"+":  PLUS,
	"-":  MINUS,
	"*":  STAR,
	"/":  SLASH,
	"%":  PERCENT,
	"!":  BANG,
	"&":  AMPERSAND,
	"|":  PIPE,
	"==": EQUALEQUAL,
	"<>": NOTEQUAL,
	"<":  LESS,
	"<=": LESSEQUAL,
	">":  GREATER,
	">=": GREATEREQUAL,
	"=":  EQUALS,
}

var Punctuation = map[rune]TokenKind{
	'.': PERIOD,
	',': COMMA,
	';': EOS,
	'{': LBRACKET,
	'}': RBRACKET,
	'(': LPAREN,
	')': RPAREN,
	':': COLON,
}

// Significant reports whether the parser ever sees tokens of this kind.
func (t TokenKind) Significant() bool {
	switch t {
	case WHITESPACE, COMMENT, LINEBREAK:
		return false
	}
	return true
}

func (p Position) String() string {
	if p.Filename == "" {
		p.Filename = "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%d:%d", s.From, s.To.Line, s.To.Column)
}

func SingleCharSpan(p Position) Span {
	return Span{p, p}
}

type Token struct {
	Kind     TokenKind
	Text     string
	Location Span
	// Depth is the parenthesis nesting at the token; the normalizer uses it
	// to decide whether a line break ends a statement.
	Depth int
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Kind, t.Text, t.Location.From)
}
