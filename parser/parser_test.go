package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/alecthomas/repr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/lexer"
)

func parseLines(t *testing.T, lines ...string) *ast.Arena {
	t.Helper()
	tokens, err := lexer.Lex(lines, "test.let")
	require.NoError(t, err)
	a, err := Parse(lexer.Normalize(tokens))
	require.NoError(t, err)
	return a
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected string
	}{
		{"Precedence", []string{"1 + 2 * 3"}, "(1 + (2 * 3))"},
		{"Comparison chain", []string{"3 - 6 / 2 <> 1"}, "((3 - (6 / 2)) <> 1)"},
		{"Parentheses", []string{"2 * (3 - 5) >= 0"}, "((2 * (3 - 5)) >= 0)"},
		{"Left associative", []string{"a - b - c"}, "((a - b) - c)"},
		{"Negative literal", []string{"-2"}, "-2"},
		{"Nested negation", []string{"- - x"}, "(- (- x))"},
		{"Negation after operator", []string{"a * -b"}, "(a * (- b))"},
		{"Negative literal after operand", []string{"x -1"}, "(x - 1)"},
		{"No spaces", []string{"x-1"}, "(x - 1)"},
		{"Not binds tightest", []string{"!a == b"}, "((! a) == b)"},
		{"Logical operators", []string{"a isa T | b & c"}, "((a isa T) | (b & c))"},
		{"Bindings", []string{"let foo = 10", "foo"}, "let foo = 10\nfoo"},
		{"Function", []string{"let negate(num) = -num", "negate(-1)"}, "let negate(num) = (- num)\nnegate(-1)"},
		{"Call in expression", []string{"f(1) + 2"}, "(f(1) + 2)"},
		{"Labeled arguments", []string{"f(a: 1, b: 2)"}, "f(a: 1, b: 2)"},
		{"Tuple", []string{"(1, 2)"}, "(1, 2)"},
		{"Empty call", []string{"let f() = 1", "f()"}, "let f() = 1\nf()"},
		{"Block", []string{"{ let a = 1; a + 2 }"}, "{ let a = 1; (a + 2) }"},
		{"Multiline block", []string{"{", "  let a = 1", "", "  a + 2", "}"}, "{ let a = 1; (a + 2) }"},
		{"If else", []string{"if c 1 else 2"}, "if (c) (1) else { 2 }"},
		{"If without else", []string{"if (a < b) a"}, "(if ((a < b)) (a))"},
		{"Else if", []string{"if a 1 else if b 2 else 3"}, "if (a) (1) else { if (b) (2) else { 3 } }"},
		{"If as operand", []string{"1 + if c 2 else 3"}, "(1 + if (c) (2) else { 3 })"},
		{"Braced branches", []string{"if c {", "  1", "}", "else {", "  2", "}"}, "if (c) ({ 1 }) else { 2 }"},
		{"Parameters", []string{"let f(a: Int = 1, b = 2: Int, c) = a"}, "let f(a: Int = 1, b: Int = 2, c) = a"},
		{"Type definition", []string{"type Circle(radius: Int) isa (Shape, Thing)"}, "type Circle(radius: Int) isa (Shape, Thing)"},
		{"Bare type", []string{"type Shape"}, "type Shape"},
		{"Single supertype", []string{"type Square isa Shape"}, "type Square isa (Shape)"},
		{"Continued line", []string{"let x = (1 +", "2)", "x"}, "let x = (1 + 2)\nx"},
		{"Separators", []string{"let a = 1; ; a"}, "let a = 1\na"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := parseLines(t, tt.input...)
			assert.Equal(t, tt.expected, ast.Print(a, a.Root))
		})
	}
}

func TestParseCallCandidate(t *testing.T) {
	a := parseLines(t, "negate(-1)")
	block := a.Node(a.Root)
	require.Len(t, block.Children, 1)

	call := block.Children[0]
	require.Equal(t, ast.KindValue, a.Kind(call))
	require.Len(t, a.Children(call), 2)
	assert.Equal(t, ast.KindReference, a.Kind(a.Child(call, 0)))
	assert.Equal(t, ast.KindLiteral, a.Kind(a.Child(call, 1)))
	assert.EqualValues(t, -1, a.Node(a.Child(call, 1)).Int)
}

func TestParseLiterals(t *testing.T) {
	a := parseLines(t, "(3.75, -0.5, 42)")
	list := a.Children(a.Root)[0]
	require.Equal(t, ast.KindArgumentList, a.Kind(list))

	var values []int64
	for _, child := range a.Children(list) {
		values = append(values, a.Node(child).Int)
	}
	assert.Equal(t, []int64{3, 0, 42}, values)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		message string
	}{
		{"Juxtaposed values", []string{"1 2"}, "expected the end of the statement"},
		{"Call needs adjacency", []string{"f (1)"}, "expected the end of the statement"},
		{"Unclosed paren", []string{"(1 + 2"}, "missing closing bracket"},
		{"Mismatched bracket", []string{"(1 }"}, "mismatched closing bracket"},
		{"Two results", []string{"{ 1; 2 }"}, "only have one result"},
		{"Two top-level results", []string{"1", "2"}, "only have one result"},
		{"Missing right operand", []string{"1 +"}, "missing an operand"},
		{"Missing left operand", []string{"* 2"}, "missing an operand"},
		{"Lambda", []string{"lambda"}, "lambda expressions are not supported"},
		{"Missing binding name", []string{"let = 1"}, "unexpected token"},
		{"Missing else branch", []string{"if c 1 else"}, "expected an else branch"},
		{"Duplicate annotation", []string{"let f(a: Int: Int) = a"}, "already has a type annotation"},
		{"Chained assignment", []string{"let x = 1 = 2"}, "expected the end of the statement"},
		{"Empty value", []string{"let x ="}, "expected an expression"},
		{"Stray closing brace", []string{"1 }"}, "expected the end of the statement"},
		{"Huge integer", []string{"99999999999999999999"}, "number out of range"},
		{"Huge fraction", []string{"99999999999999999999.0"}, "number out of range"},
		{"Huge negative fraction", []string{"-99999999999999999999.5"}, "number out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := lexer.Lex(tt.input, "bad.let")
			require.NoError(t, err)

			a, err := Parse(lexer.Normalize(tokens))
			require.Error(t, err, "parsed into %s", repr.String(a))

			var perr errors.ParseError
			require.True(t, stderrors.As(err, &perr), "expected a ParseError, got %v", err)
			assert.Contains(t, perr.Message, tt.message)
		})
	}
}

// Printing a parsed program and parsing the output again gives the same tree.
func TestPrintRoundTrip(t *testing.T) {
	programs := [][]string{
		{"1 + 2 * 3 - -4"},
		{"let foo = 10", "foo"},
		{"let negate(num) = -num", "negate(-1)"},
		{"let f(a: Int = 1, b = 2: Int) = { let c = a * b; c % 3 }", "f(b: 4, a: 2) + f(1, 2)"},
		{"type Shape", "type Circle(r: Shape = 0) isa (Shape)", "let c = 3 isa Circle", "c"},
		{"if 1 < 2 & !0 { 1 } else if 0 2 else { 3 }"},
		{"let t = (1, 2, x: 3)", "let v = ()", "!(- - 5) <> 6"},
		{"x -1 >= y", "# comment", "#| block |#"},
		{"(if 1 2) + 3"},
		{"if 1 2 + 3"},
	}

	for _, program := range programs {
		t.Run(program[0], func(t *testing.T) {
			first := parseLines(t, program...)
			printed := ast.Print(first, first.Root)
			second := parseLines(t, strings.Split(printed, "\n")...)

			if diff := cmp.Diff(ast.Dump(first, first.Root), ast.Dump(second, second.Root)); diff != "" {
				t.Fatalf("round trip through %q changed the tree (-first +second):\n%s", printed, diff)
			}
		})
	}
}
