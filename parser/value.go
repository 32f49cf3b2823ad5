package parser

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/types"
)

// terminators end a Value without being part of it.
func terminates(kind types.TokenKind) bool {
	switch kind {
	case types.EOS, types.EOF, types.RPAREN, types.RBRACKET, types.COMMA,
		types.COLON, types.ELSE, types.EQUALS:
		return true
	}
	return false
}

// parseValue collects juxtaposed subexpressions and reduces them by
// operator precedence. Collection stops at a terminator or when a complete
// subexpression would directly follow another complete one.
func (p *Parser) parseValue(end int) ast.NodeID {
	start := p.peek()

	var items []ast.NodeID
	for p.pos < end {
		tok := p.peek()
		if terminates(tok.Kind) {
			break
		}

		lastComplete := len(items) > 0 && !p.a.Pending(items[len(items)-1])

		if tok.Kind == types.NUMBER && strings.HasPrefix(tok.Text, "-") && lastComplete {
			// "a -1" subtracts; the lexer cannot tell it from a negative literal
			p.pos++
			items = append(items, p.newOperator(ast.KindBinaryOp, ast.OpSub, tok))
			items = append(items, p.parseLiteral(tok, tok.Text[1:]))
			continue
		}

		if tok.Kind == types.MINUS || tok.Kind == types.BANG {
			if !lastComplete {
				op, _ := ast.UnaryOperator(tok.Kind)
				p.pos++
				items = append(items, p.newOperator(ast.KindUnaryOp, op, tok))
				continue
			}
		}

		if op, ok := ast.BinaryOperator(tok.Kind); ok {
			p.pos++
			items = append(items, p.newOperator(ast.KindBinaryOp, op, tok))
			continue
		}

		if lastComplete {
			break
		}
		items = append(items, p.parseSubexpression(end, start))
	}

	if len(items) == 0 {
		p.fail(start, "expected an expression",
			types.NUMBER, types.IDENT, types.LPAREN, types.LBRACKET, types.IF, types.MINUS, types.BANG)
	}

	return p.reduce(items, start)
}

func (p *Parser) newOperator(kind ast.Kind, op ast.Operator, tok types.Token) ast.NodeID {
	var id ast.NodeID
	if kind == ast.KindUnaryOp {
		id = p.a.New(kind, tok, ast.NoNode)
	} else {
		id = p.a.New(kind, tok, ast.NoNode, ast.NoNode)
	}
	p.a.Node(id).Op = op
	return id
}

// reduce completes the pending operators in items, tightest precedence
// level first, and returns the single remaining subexpression.
func (p *Parser) reduce(items []ast.NodeID, context types.Token) ast.NodeID {
	levels := mapset.NewSet()
	for _, item := range items {
		if p.a.Pending(item) {
			levels.Add(p.a.Node(item).Op.Precedence())
		}
	}

	var sorted []int
	for _, level := range levels.ToSlice() {
		sorted = append(sorted, level.(int))
	}
	sort.Ints(sorted)

	for _, level := range sorted {
		for {
			i := p.nextCompletable(items, level)
			if i < 0 {
				break
			}
			items = p.complete(items, i)
		}

		for _, item := range items {
			if p.a.Pending(item) && p.a.Node(item).Op.Precedence() == level {
				p.failAt(p.a.Node(item).Token, context, "operator is missing an operand")
			}
		}
	}

	if len(items) == 1 {
		return items[0]
	}
	return p.a.New(ast.KindValue, context, items...)
}

// nextCompletable finds the leftmost operator of the level whose operand
// neighbours are themselves complete.
func (p *Parser) nextCompletable(items []ast.NodeID, level int) int {
	complete := func(i int) bool {
		return i >= 0 && i < len(items) && !p.a.Pending(items[i])
	}

	for i, item := range items {
		if !p.a.Pending(item) || p.a.Node(item).Op.Precedence() != level {
			continue
		}
		switch p.a.Kind(item) {
		case ast.KindUnaryOp:
			if complete(i + 1) {
				return i
			}
		case ast.KindBinaryOp:
			if complete(i-1) && complete(i+1) {
				return i
			}
		}
	}
	return -1
}

// complete makes items[i] absorb its neighbours and removes them from the
// list.
func (p *Parser) complete(items []ast.NodeID, i int) []ast.NodeID {
	op := items[i]
	if p.a.Kind(op) == ast.KindUnaryOp {
		p.a.Node(op).Children[0] = items[i+1]
		return append(items[:i+1], items[i+2:]...)
	}

	p.a.Node(op).Children[0] = items[i-1]
	p.a.Node(op).Children[1] = items[i+1]
	ret := append(items[:i-1:i-1], op)
	return append(ret, items[i+2:]...)
}
