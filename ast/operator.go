package ast

import (
	"fmt"

	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

type Operator int

const (
	OpNone Operator = iota

	OpNeg
	OpNot

	OpMul
	OpDiv
	OpRem

	OpAdd
	OpSub

	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpIsa

	OpEq
	OpNotEq

	OpAnd
	OpOr
)

var operatorSymbols = map[Operator]string{
	OpNeg:       "-",
	OpNot:       "!",
	OpMul:       "*",
	OpDiv:       "/",
	OpRem:       "%",
	OpAdd:       "+",
	OpSub:       "-",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpIsa:       "isa",
	OpEq:        "==",
	OpNotEq:     "<>",
	OpAnd:       "&",
	OpOr:        "|",
}

// Symbol is the source spelling of the operator.
func (o Operator) Symbol() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

func (o Operator) String() string {
	return o.Symbol()
}

// Precedence is the binding strength of the operator. Lower values bind
// tighter and are reduced first.
func (o Operator) Precedence() int {
	switch o {
	case OpNeg, OpNot:
		return 1
	case OpMul, OpDiv, OpRem:
		return 2
	case OpAdd, OpSub:
		return 3
	case OpLess, OpLessEq, OpGreater, OpGreaterEq, OpIsa:
		return 4
	case OpEq, OpNotEq:
		return 5
	case OpAnd:
		return 6
	case OpOr:
		return 7
	}
	return 0
}

func (o Operator) Unary() bool {
	return o == OpNeg || o == OpNot
}

// BinaryOperator maps an operator token to its infix operator.
func BinaryOperator(k types.TokenKind) (Operator, bool) {
	switch k {
	case types.STAR:
		return OpMul, true
	case types.SLASH:
		return OpDiv, true
	case types.PERCENT:
		return OpRem, true
	case types.PLUS:
		return OpAdd, true
	case types.MINUS:
		return OpSub, true
	case types.LESS:
		return OpLess, true
	case types.LESSEQUAL:
		return OpLessEq, true
	case types.GREATER:
		return OpGreater, true
	case types.GREATEREQUAL:
		return OpGreaterEq, true
	case types.ISA:
		return OpIsa, true
	case types.EQUALEQUAL:
		return OpEq, true
	case types.NOTEQUAL:
		return OpNotEq, true
	case types.AMPERSAND:
		return OpAnd, true
	case types.PIPE:
		return OpOr, true
	}
	return OpNone, false
}

// UnaryOperator maps an operator token to its prefix operator.
func UnaryOperator(k types.TokenKind) (Operator, bool) {
	switch k {
	case types.MINUS:
		return OpNeg, true
	case types.BANG:
		return OpNot, true
	}
	return OpNone, false
}

func truth(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Apply evaluates the operator over integers. Unary operators ignore l.
// ok is false for division or remainder by zero, which is left to run time.
func (o Operator) Apply(l, r int64) (result int64, ok bool) {
	switch o {
	case OpNeg:
		return -r, true
	case OpNot:
		return truth(r == 0), true
	case OpMul:
		return l * r, true
	case OpDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case OpRem:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case OpAdd:
		return l + r, true
	case OpSub:
		return l - r, true
	case OpLess:
		return truth(l < r), true
	case OpLessEq:
		return truth(l <= r), true
	case OpGreater:
		return truth(l > r), true
	case OpGreaterEq:
		return truth(l >= r), true
	case OpIsa:
		return 0, true
	case OpEq:
		return truth(l == r), true
	case OpNotEq:
		return truth(l != r), true
	case OpAnd:
		return truth(l != 0 && r != 0), true
	case OpOr:
		return truth(l != 0 || r != 0), true
	}
	panic(errors.Internalf("no folding rule for operator %s", o))
}
