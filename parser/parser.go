package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "parser")

// Parser works on a normalized token list. Every parse function is bounded
// by an end index and leaves pos one past the last token it consumed.
type Parser struct {
	tokens []types.Token
	pos    int
	a      *ast.Arena
}

func NewParser(tokens []types.Token) *Parser {
	return &Parser{tokens: tokens, a: ast.NewArena()}
}

// Parse parses normalized tokens as a program.
func Parse(tokens []types.Token) (*ast.Arena, error) {
	return NewParser(tokens).Parse()
}

// Parse parses the whole token list as the program's top-level block,
// which has no braces around it.
func (p *Parser) Parse() (a *ast.Arena, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if ok {
				a = nil
				err = tracerr.Wrap(rerr)
			} else {
				panic(r)
			}
		}
	}()

	end := len(p.tokens)
	if end > 0 && p.tokens[end-1].Kind == types.EOF {
		end--
	}

	p.a.Root = p.parseBlock(0, end, true)
	if p.pos != end {
		p.fail(p.tokens[0], "unexpected token after the program")
	}

	plog.Debugf("parsed %d tokens into %d nodes", len(p.tokens), len(p.a.Nodes))
	return p.a, nil
}

func (p *Parser) tok(i int) types.Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	if len(p.tokens) > 0 {
		last := p.tokens[len(p.tokens)-1]
		return types.Token{Kind: types.EOF, Location: types.SingleCharSpan(last.Location.To)}
	}
	return types.Token{Kind: types.EOF}
}

func (p *Parser) peek() types.Token {
	return p.tok(p.pos)
}

func (p *Parser) peekIs(end int, kinds ...types.TokenKind) bool {
	if p.pos >= end {
		return false
	}
	tok := p.peek()
	for _, kind := range kinds {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

func (p *Parser) failAt(got, context types.Token, msg string, expected ...types.TokenKind) {
	panic(errors.ParseError{
		Message:  msg,
		Got:      got,
		Expected: expected,
		Context:  context,
	})
}

func (p *Parser) fail(context types.Token, msg string, expected ...types.TokenKind) {
	p.failAt(p.peek(), context, msg, expected...)
}

func (p *Parser) expect(context types.Token, kinds ...types.TokenKind) types.Token {
	tok := p.peek()
	for _, kind := range kinds {
		if tok.Kind == kind {
			p.pos++
			return tok
		}
	}
	p.fail(context, "unexpected token", kinds...)
	return tok
}

// matching returns the index of the bracket closing the one at open.
func (p *Parser) matching(open, end int) int {
	var stack []types.TokenKind
	for i := open; i < end; i++ {
		switch kind := p.tokens[i].Kind; kind {
		case types.LPAREN:
			stack = append(stack, types.RPAREN)
		case types.LBRACKET:
			stack = append(stack, types.RBRACKET)
		case types.RPAREN, types.RBRACKET:
			want := stack[len(stack)-1]
			if kind != want {
				p.failAt(p.tokens[i], p.tokens[open], "mismatched closing bracket", want)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}

	want := types.RPAREN
	if len(stack) > 0 {
		want = stack[len(stack)-1]
	}
	p.failAt(p.tok(end), p.tokens[open], "missing closing bracket", want)
	return -1
}

// statementEnd returns the index of the token ending the statement that
// starts at pos: a separator, a comma or an unmatched closing bracket.
func (p *Parser) statementEnd(end int) int {
	depth := 0
	for i := p.pos; i < end; i++ {
		switch p.tokens[i].Kind {
		case types.LPAREN, types.LBRACKET:
			depth++
		case types.RPAREN, types.RBRACKET:
			if depth == 0 {
				return i
			}
			depth--
		case types.EOS, types.COMMA:
			if depth == 0 {
				return i
			}
		}
	}
	return end
}

// parseBlock parses statements up to end. Unless implied, the block starts
// with a brace at start and runs to the matching closing brace.
func (p *Parser) parseBlock(start, end int, implied bool) ast.NodeID {
	p.pos = start
	open := p.tok(start)
	inner := end
	if !implied {
		p.expect(open, types.LBRACKET)
		inner = p.matching(start, end)
	}

	id := p.a.New(ast.KindBlock, open)
	p.a.Node(id).Implied = implied

	results := 0
	for {
		for p.peekIs(inner, types.EOS) {
			p.pos++
		}
		if p.pos >= inner {
			break
		}

		first := p.peek()
		stmt := p.parseStatement(inner)
		if !p.a.IsBinding(stmt) {
			results++
			if results > 1 {
				p.failAt(first, open, "a block can only have one result expression")
			}
		}
		p.a.Append(id, stmt)

		if p.pos < inner && !p.peekIs(inner, types.EOS) {
			p.fail(open, "expected the end of the statement", types.EOS)
		}
	}

	if !implied {
		p.pos = inner + 1
	}
	return id
}

func (p *Parser) parseStatement(end int) ast.NodeID {
	switch p.peek().Kind {
	case types.LET:
		return p.parseAssignment(end)
	case types.TYPE:
		return p.parseTypeDefinition(end)
	}
	return p.parseValue(end)
}

func (p *Parser) parseAssignment(end int) ast.NodeID {
	let := p.expect(p.peek(), types.LET)
	name := p.expect(let, types.IDENT)

	id := p.a.New(ast.KindAssignment, let)
	p.a.Node(id).Name = name.Text

	var params []ast.NodeID
	if p.peekIs(end, types.LPAREN) {
		params = p.parseParams(end, let)
		p.a.Node(id).Function = true
	}

	p.expect(let, types.EQUALS)
	value := p.parseValue(end)

	p.a.Node(id).Children = append([]ast.NodeID{value}, params...)
	return id
}

// parseParams parses a parenthesized, comma separated parameter list.
func (p *Parser) parseParams(end int, context types.Token) []ast.NodeID {
	open := p.pos
	close := p.matching(open, end)
	p.pos = open + 1

	params := []ast.NodeID{}
	for p.pos < close {
		params = append(params, p.parseParameter(close))
		if p.pos == close {
			break
		}
		p.expect(context, types.COMMA, types.RPAREN)
	}

	p.pos = close + 1
	return params
}

// parseParameter parses a name with an optional annotation and an optional
// default, in either order.
func (p *Parser) parseParameter(end int) ast.NodeID {
	name := p.expect(p.peek(), types.IDENT)
	id := p.a.New(ast.KindParameter, name)
	p.a.Node(id).Name = name.Text

	seenType, seenDefault := false, false
	for p.pos < end {
		switch p.peek().Kind {
		case types.COLON:
			if seenType {
				p.fail(name, "parameter already has a type annotation")
			}
			p.pos++
			annotation := p.expect(name, types.IDENT)
			p.a.Node(id).Annotation = annotation.Text
			seenType = true
		case types.EQUALS:
			if seenDefault {
				p.fail(name, "parameter already has a default value")
			}
			p.pos++
			def := p.parseValue(end)
			p.a.Node(id).Children = []ast.NodeID{def}
			seenDefault = true
		default:
			return id
		}
	}
	return id
}

func (p *Parser) parseTypeDefinition(end int) ast.NodeID {
	kw := p.expect(p.peek(), types.TYPE)
	name := p.expect(kw, types.IDENT)

	id := p.a.New(ast.KindTypeDefinition, kw)
	p.a.Node(id).Name = name.Text

	if p.peekIs(end, types.LPAREN) {
		fields := p.parseParams(end, kw)
		p.a.Node(id).Children = fields
	}

	if p.peekIs(end, types.ISA) {
		p.pos++
		var parents []ast.NodeID
		if p.peekIs(end, types.LPAREN) {
			open := p.pos
			close := p.matching(open, end)
			p.pos = open + 1
			for p.pos < close {
				parents = append(parents, p.parseTypeName(kw))
				if p.pos == close {
					break
				}
				p.expect(kw, types.COMMA, types.RPAREN)
			}
			p.pos = close + 1
		} else {
			parents = append(parents, p.parseTypeName(kw))
		}
		p.a.Node(id).Parents = parents
	}

	return id
}

func (p *Parser) parseTypeName(context types.Token) ast.NodeID {
	tok := p.expect(context, types.IDENT)
	id := p.a.New(ast.KindReference, tok)
	p.a.Node(id).Name = tok.Text
	return id
}

func (p *Parser) parseIf(end int) ast.NodeID {
	kw := p.expect(p.peek(), types.IF)
	cond := p.parseValue(end)
	then := p.parseValue(end)

	els := ast.NoNode
	if p.peekIs(end, types.ELSE) {
		p.pos++
		if p.peekIs(end, types.LBRACKET) {
			els = p.parseBlock(p.pos, end, false)
		} else {
			stmtEnd := p.statementEnd(end)
			if stmtEnd == p.pos {
				p.fail(kw, "expected an else branch")
			}
			els = p.parseBlock(p.pos, stmtEnd, true)
		}
	}

	return p.a.New(ast.KindIf, kw, cond, then, els)
}

// parseGroup parses a parenthesized group: () is Void, a single unlabeled
// element is that element, anything else is an ArgumentList.
func (p *Parser) parseGroup(end int) ast.NodeID {
	open := p.pos
	openTok := p.peek()
	close := p.matching(open, end)
	p.pos = open + 1

	if p.pos == close {
		p.pos = close + 1
		return p.a.New(ast.KindVoid, openTok)
	}

	var elems []ast.NodeID
	var labels []string
	labeled := false
	commas := 0
	for {
		label := ""
		if p.peekIs(close, types.IDENT) && p.pos+1 < close && p.tok(p.pos+1).Kind == types.COLON {
			label = p.peek().Text
			labeled = true
			p.pos += 2
		}
		elems = append(elems, p.parseValue(close))
		labels = append(labels, label)

		if p.pos >= close {
			break
		}
		p.expect(openTok, types.COMMA, types.RPAREN)
		commas++
		if p.pos >= close {
			break
		}
	}
	p.pos = close + 1

	if len(elems) == 1 && !labeled && commas == 0 {
		return elems[0]
	}

	id := p.a.New(ast.KindArgumentList, openTok, elems...)
	if labeled {
		p.a.Node(id).Labels = labels
	}
	return id
}

func (p *Parser) parseLiteral(tok types.Token, text string) ast.NodeID {
	var value int64
	var err error
	if strings.Contains(text, ".") {
		var f float64
		f, err = strconv.ParseFloat(text, 64)
		if f < math.MinInt64 || f >= math.MaxInt64+1 {
			p.failAt(tok, tok, "number out of range")
		}
		value = int64(f)
	} else {
		value, err = strconv.ParseInt(text, 10, 64)
	}
	if err != nil {
		p.failAt(tok, tok, "number out of range")
	}

	id := p.a.New(ast.KindLiteral, tok)
	n := p.a.Node(id)
	n.Text = text
	n.Int = value
	return id
}

func adjacent(a, b types.Token) bool {
	return a.Location.To.Line == b.Location.From.Line && b.Location.From.Column == a.Location.To.Column+1
}

// parseSubexpression parses one operand-like element of a Value.
func (p *Parser) parseSubexpression(end int, context types.Token) ast.NodeID {
	tok := p.peek()
	switch tok.Kind {
	case types.NUMBER:
		p.pos++
		return p.parseLiteral(tok, tok.Text)
	case types.IDENT:
		p.pos++
		ref := p.a.New(ast.KindReference, tok)
		p.a.Node(ref).Name = tok.Text
		if p.peekIs(end, types.LPAREN) && adjacent(tok, p.peek()) {
			group := p.parseGroup(end)
			return p.a.New(ast.KindValue, tok, ref, group)
		}
		return ref
	case types.LPAREN:
		return p.parseGroup(end)
	case types.LBRACKET:
		return p.parseBlock(p.pos, end, false)
	case types.IF:
		return p.parseIf(end)
	case types.LAMBDA:
		p.fail(context, "lambda expressions are not supported")
	}

	p.fail(context, "expected an expression",
		types.NUMBER, types.IDENT, types.LPAREN, types.LBRACKET, types.IF, types.MINUS, types.BANG)
	return ast.NoNode
}
