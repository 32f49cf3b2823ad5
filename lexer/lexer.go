package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "lexer")

// Lexer turns source lines into tokens. It keeps the parenthesis nesting
// and the block comment nesting across lines.
type Lexer struct {
	pos      types.Position
	line     []rune
	col      int
	depth    int
	comments int
	tokens   []types.Token
}

// strategy claims a run of characters of one class. accept looks at the
// current position without consuming anything; lex consumes the run and
// names the kind of token it produced.
type strategy struct {
	name   string
	accept func(l *Lexer) bool
	lex    func(l *Lexer) (types.TokenKind, error)
}

// strategies are tried in order; the first one accepting the next character
// wins the token.
var strategies = []strategy{
	{"whitespace", acceptWhitespace, lexWhitespace},
	{"comment", acceptComment, lexComment},
	{"number", acceptNumber, lexNumber},
	{"identifier", acceptIdent, lexIdent},
	{"punctuation", acceptPunctuation, lexPunctuation},
}

var blockComment = strategy{"block comment", func(*Lexer) bool { return true }, lexBlockComment}

func NewLexer(filename string) *Lexer {
	return &Lexer{
		pos: types.Position{Line: 0, Column: 0, Filename: filename},
	}
}

// Lex tokenizes the given lines. The result ends with an EOF token and still
// contains whitespace, comment and line break tokens; see Normalize.
func Lex(lines []string, filename string) ([]types.Token, error) {
	l := NewLexer(filename)
	for i, line := range lines {
		if err := l.LexLine(i+1, line); err != nil {
			return nil, tracerr.Wrap(err)
		}
	}
	if l.comments > 0 {
		return nil, tracerr.Wrap(errors.LexError{
			Message:  "end of input inside a block comment",
			Location: l.at(len(l.line)),
		})
	}

	l.tokens = append(l.tokens, types.Token{
		Kind:     types.EOF,
		Location: types.SingleCharSpan(l.at(len(l.line))),
	})
	plog.Debugf("lexed %d lines into %d tokens", len(lines), len(l.tokens))
	return l.tokens, nil
}

// LexLine appends the tokens of one source line, followed by a line break.
func (l *Lexer) LexLine(number int, line string) error {
	l.line = []rune(strings.TrimRight(line, "\n"))
	l.col = 0
	l.pos.Line = number

	for l.col < len(l.line) {
		start := l.col

		var s *strategy
		if l.comments > 0 {
			s = &blockComment
		} else {
			for i := range strategies {
				if strategies[i].accept(l) {
					s = &strategies[i]
					break
				}
			}
		}
		if s == nil {
			return errors.LexError{
				Message:  fmt.Sprintf("unexpected token %q", l.line[l.col]),
				Location: l.at(start),
			}
		}

		kind, err := s.lex(l)
		if err != nil {
			return err
		}
		if l.col == start {
			return errors.Internalf("%s strategy accepted %q but consumed nothing", s.name, l.line[start])
		}
		l.emit(kind, start)
	}

	// a break inside an open block comment belongs to the comment
	brk := types.LINEBREAK
	if l.comments > 0 {
		brk = types.COMMENT
	}
	l.tokens = append(l.tokens, types.Token{
		Kind:     brk,
		Text:     "\n",
		Location: types.SingleCharSpan(l.at(len(l.line))),
		Depth:    l.depth,
	})
	return nil
}

func (l *Lexer) at(col int) types.Position {
	p := l.pos
	p.Column = col + 1
	return p
}

func (l *Lexer) emit(kind types.TokenKind, start int) {
	tok := types.Token{
		Kind:     kind,
		Text:     string(l.line[start:l.col]),
		Location: types.Span{From: l.at(start), To: l.at(l.col - 1)},
		Depth:    l.depth,
	}
	switch kind {
	case types.LPAREN:
		l.depth++
	case types.RPAREN:
		if l.depth > 0 {
			l.depth--
		}
		tok.Depth = l.depth
	}
	l.tokens = append(l.tokens, tok)
}

func (l *Lexer) peek(n int) rune {
	if l.col+n >= len(l.line) {
		return 0
	}
	return l.line[l.col+n]
}

func (l *Lexer) has(prefix string) bool {
	for i, r := range []rune(prefix) {
		if l.peek(i) != r {
			return false
		}
	}
	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isOperatorChar(r rune) bool {
	return strings.ContainsRune("+-*/%!&|=<>", r)
}

func isIdentChar(r rune) bool {
	if r == 0 || unicode.IsSpace(r) || unicode.IsControl(r) || isOperatorChar(r) {
		return false
	}
	if _, ok := types.Punctuation[r]; ok {
		return false
	}
	return !strings.ContainsRune("#\"'`", r)
}

func acceptWhitespace(l *Lexer) bool {
	return unicode.IsSpace(l.peek(0))
}

func lexWhitespace(l *Lexer) (types.TokenKind, error) {
	for l.col < len(l.line) && unicode.IsSpace(l.line[l.col]) {
		l.col++
	}
	return types.WHITESPACE, nil
}

func acceptComment(l *Lexer) bool {
	return l.peek(0) == '#' || l.has("|#")
}

func lexComment(l *Lexer) (types.TokenKind, error) {
	switch {
	case l.has("|#"):
		return 0, errors.LexError{
			Message:  "block comment closed more times than it was opened",
			Location: l.at(l.col),
		}
	case l.has("#|"):
		return lexBlockComment(l)
	}
	l.col = len(l.line)
	return types.COMMENT, nil
}

func lexBlockComment(l *Lexer) (types.TokenKind, error) {
	for l.col < len(l.line) {
		switch {
		case l.has("#|"):
			l.comments++
			l.col += 2
		case l.has("|#"):
			l.comments--
			l.col += 2
			if l.comments == 0 {
				return types.COMMENT, nil
			}
		default:
			l.col++
		}
	}
	return types.COMMENT, nil
}

func acceptNumber(l *Lexer) bool {
	r := l.peek(0)
	return isDigit(r) || (r == '-' && isDigit(l.peek(1)))
}

func lexNumber(l *Lexer) (types.TokenKind, error) {
	if l.peek(0) == '-' {
		l.col++
	}
	seenPoint := false
	for l.col < len(l.line) {
		r := l.line[l.col]
		switch {
		case isDigit(r):
		case r == '.' && !seenPoint:
			seenPoint = true
		default:
			return types.NUMBER, nil
		}
		l.col++
	}
	return types.NUMBER, nil
}

func acceptIdent(l *Lexer) bool {
	r := l.peek(0)
	return isIdentChar(r) && !isDigit(r)
}

func lexIdent(l *Lexer) (types.TokenKind, error) {
	start := l.col
	for l.col < len(l.line) && isIdentChar(l.line[l.col]) {
		l.col++
	}
	if kind, ok := types.Keywords[string(l.line[start:l.col])]; ok {
		return kind, nil
	}
	return types.IDENT, nil
}

func acceptPunctuation(l *Lexer) bool {
	r := l.peek(0)
	if _, ok := types.Punctuation[r]; ok {
		return true
	}
	return isOperatorChar(r)
}

func lexPunctuation(l *Lexer) (types.TokenKind, error) {
	if kind, ok := types.Punctuation[l.peek(0)]; ok {
		l.col++
		return kind, nil
	}
	if kind, ok := types.Operators[string([]rune{l.peek(0), l.peek(1)})]; ok {
		l.col += 2
		return kind, nil
	}
	if kind, ok := types.Operators[string(l.peek(0))]; ok {
		l.col++
		return kind, nil
	}
	return 0, errors.LexError{
		Message:  fmt.Sprintf("unexpected token %q", l.peek(0)),
		Location: l.at(l.col),
	}
}
