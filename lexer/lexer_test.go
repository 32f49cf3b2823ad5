package lexer

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

type kindText struct {
	Kind types.TokenKind
	Text string
}

func significant(t *testing.T, lines ...string) []kindText {
	t.Helper()
	tokens, err := Lex(lines, "test.let")
	require.NoError(t, err)

	var ret []kindText
	for _, tok := range Normalize(tokens) {
		ret = append(ret, kindText{tok.Kind, tok.Text})
	}
	return ret
}

func TestLexer(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []kindText
	}{
		{
			name:     "Empty",
			input:    nil,
			expected: []kindText{{types.EOF, ""}},
		},
		{
			name:  "Keywords and Identifiers",
			input: []string{"let if else lambda type isa foo? _bar x1"},
			expected: []kindText{
				{types.LET, "let"},
				{types.IF, "if"},
				{types.ELSE, "else"},
				{types.LAMBDA, "lambda"},
				{types.TYPE, "type"},
				{types.ISA, "isa"},
				{types.IDENT, "foo?"},
				{types.IDENT, "_bar"},
				{types.IDENT, "x1"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Operators",
			input: []string{"+ - * / % ! & | == <> < <= > >= ="},
			expected: []kindText{
				{types.PLUS, "+"},
				{types.MINUS, "-"},
				{types.STAR, "*"},
				{types.SLASH, "/"},
				{types.PERCENT, "%"},
				{types.BANG, "!"},
				{types.AMPERSAND, "&"},
				{types.PIPE, "|"},
				{types.EQUALEQUAL, "=="},
				{types.NOTEQUAL, "<>"},
				{types.LESS, "<"},
				{types.LESSEQUAL, "<="},
				{types.GREATER, ">"},
				{types.GREATEREQUAL, ">="},
				{types.EQUALS, "="},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Punctuation",
			input: []string{". , ; { } ( ) :"},
			expected: []kindText{
				{types.PERIOD, "."},
				{types.COMMA, ","},
				{types.EOS, ";"},
				{types.LBRACKET, "{"},
				{types.RBRACKET, "}"},
				{types.LPAREN, "("},
				{types.RPAREN, ")"},
				{types.COLON, ":"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Numbers",
			input: []string{"12 -2 3.25 -0.5 x-1"},
			expected: []kindText{
				{types.NUMBER, "12"},
				{types.NUMBER, "-2"},
				{types.NUMBER, "3.25"},
				{types.NUMBER, "-0.5"},
				{types.IDENT, "x"},
				{types.NUMBER, "-1"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Minus before an identifier is an operator",
			input: []string{"-num"},
			expected: []kindText{
				{types.MINUS, "-"},
				{types.IDENT, "num"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Second decimal point ends the number",
			input: []string{"1.2.3"},
			expected: []kindText{
				{types.NUMBER, "1.2"},
				{types.PERIOD, "."},
				{types.NUMBER, "3"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Comments",
			input: []string{"1 # trailing", "#| block #| nested |# still |# 2"},
			expected: []kindText{
				{types.NUMBER, "1"},
				{types.EOS, "\n"},
				{types.NUMBER, "2"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Block comment across lines",
			input: []string{"1 #| starts", "continues", "ends |# + 2"},
			expected: []kindText{
				{types.NUMBER, "1"},
				{types.PLUS, "+"},
				{types.NUMBER, "2"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Operator before a block comment",
			input: []string{"1 + #| c", "|# 2"},
			expected: []kindText{
				{types.NUMBER, "1"},
				{types.PLUS, "+"},
				{types.NUMBER, "2"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Blank lines collapse",
			input: []string{"a", "", "   ", "# only a comment", "b"},
			expected: []kindText{
				{types.IDENT, "a"},
				{types.EOS, "\n"},
				{types.IDENT, "b"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Line breaks inside parentheses",
			input: []string{"(1 +", "2)"},
			expected: []kindText{
				{types.LPAREN, "("},
				{types.NUMBER, "1"},
				{types.PLUS, "+"},
				{types.NUMBER, "2"},
				{types.RPAREN, ")"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
		{
			name:  "Line break before else",
			input: []string{"if c { 1 }", "else { 2 }"},
			expected: []kindText{
				{types.IF, "if"},
				{types.IDENT, "c"},
				{types.LBRACKET, "{"},
				{types.NUMBER, "1"},
				{types.RBRACKET, "}"},
				{types.ELSE, "else"},
				{types.LBRACKET, "{"},
				{types.NUMBER, "2"},
				{types.RBRACKET, "}"},
				{types.EOS, "\n"},
				{types.EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, significant(t, tt.input...))
		})
	}
}

func TestLexerPositions(t *testing.T) {
	tokens, err := Lex([]string{"let x = 1", "  x"}, "pos.let")
	require.NoError(t, err)
	tokens = Normalize(tokens)

	require.Equal(t, types.IDENT, tokens[5].Kind)
	assert.Equal(t, types.Position{Line: 2, Column: 3, Filename: "pos.let"}, tokens[5].Location.From)
	assert.Equal(t, types.Position{Line: 1, Column: 9, Filename: "pos.let"}, tokens[3].Location.From)
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  []string
		line   int
		column int
	}{
		{"Unexpected character", []string{"let s = \"hi\""}, 1, 9},
		{"Unterminated block comment", []string{"#| never", "closed"}, 2, 7},
		{"Unterminated nested block comment", []string{"#| #| |#"}, 1, 9},
		{"Closing unopened comment", []string{"1 |# 2"}, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.input, "bad.let")
			require.Error(t, err)

			var lexErr errors.LexError
			require.True(t, stderrors.As(err, &lexErr), "expected a LexError, got %v", err)
			assert.Equal(t, tt.line, lexErr.Location.Line)
			assert.Equal(t, tt.column, lexErr.Location.Column)
		})
	}
}
