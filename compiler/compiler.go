// Package compiler strings the stages together: lexing, normalizing,
// parsing, checking and code generation.
package compiler

import (
	"github.com/coreos/pkg/capnslog"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/check"
	"github.com/pontaoski/letgo/codegen"
	"github.com/pontaoski/letgo/eval"
	"github.com/pontaoski/letgo/lexer"
	"github.com/pontaoski/letgo/parser"
	"github.com/pontaoski/letgo/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "compiler")

type Options struct {
	// Filename is reported in error positions.
	Filename string
	Optimize bool
}

// Tokens lexes the source. Raw keeps whitespace, comments and line breaks;
// otherwise the normalized stream the parser sees is returned.
func Tokens(lines []string, opts Options, raw bool) ([]types.Token, error) {
	tokens, err := lexer.Lex(lines, opts.Filename)
	if err != nil {
		return nil, err
	}
	if raw {
		return tokens, nil
	}
	return lexer.Normalize(tokens), nil
}

// Parse returns the tree before resolution.
func Parse(lines []string, opts Options) (*ast.Arena, error) {
	tokens, err := Tokens(lines, opts, false)
	if err != nil {
		return nil, err
	}
	return parser.Parse(tokens)
}

// Frontend returns the checked tree, optimized when the options ask for it.
func Frontend(lines []string, opts Options) (*ast.Arena, error) {
	a, err := Parse(lines, opts)
	if err != nil {
		return nil, err
	}
	plog.Debugf("%s: %d nodes before checking", opts.Filename, a.Count())

	if err := check.Check(a, opts.Optimize); err != nil {
		return nil, err
	}
	plog.Debugf("%s: %d nodes after checking", opts.Filename, a.Count())
	return a, nil
}

// Compile turns source lines into the lines of an LLVM IR module whose
// entry function returns the program's value.
func Compile(lines []string, opts Options) ([]string, error) {
	a, err := Frontend(lines, opts)
	if err != nil {
		return nil, err
	}
	m, err := codegen.Generate(a)
	if err != nil {
		return nil, err
	}
	return codegen.Lines(m), nil
}

// Evaluate computes the program's value without generating code.
func Evaluate(lines []string, opts Options) (int64, error) {
	a, err := Frontend(lines, opts)
	if err != nil {
		return 0, err
	}
	return eval.Evaluate(a)
}
