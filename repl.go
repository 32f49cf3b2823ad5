package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/compiler"
	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

// session keeps the declarations entered so far. Each new entry is
// evaluated after all of them.
type session struct {
	opts     compiler.Options
	bindings []string
	pending  []string
}

// incomplete reports whether err only says the input stopped early, as an
// unclosed bracket does.
func incomplete(err error) bool {
	var perr errors.ParseError
	return stderrors.As(err, &perr) && perr.Got.Kind == types.EOF
}

// declarations returns the binding statements of entry as source lines
// and reports whether entry also has a result. An entry made only of
// bindings is kept as typed.
func (s *session) declarations(entry []string) (decls []string, result bool) {
	a, err := compiler.Parse(entry, s.opts)
	if err != nil {
		return nil, true
	}

	for _, stmt := range a.Children(a.Root) {
		if a.IsBinding(stmt) {
			decls = append(decls, ast.Print(a, stmt))
		} else {
			result = true
		}
	}
	if !result {
		return entry, false
	}
	return decls, true
}

// feed takes one input line. more is set while the entry is unfinished;
// show is set when result is worth printing.
func (s *session) feed(line string) (result int64, show, more bool, err error) {
	entry := append(s.pending, line)
	program := append(append([]string{}, s.bindings...), entry...)

	result, err = compiler.Evaluate(program, s.opts)
	if err != nil {
		if incomplete(err) {
			s.pending = entry
			return 0, false, true, nil
		}
		s.pending = nil
		return 0, false, false, err
	}

	s.pending = nil
	var decls []string
	decls, show = s.declarations(entry)
	s.bindings = append(s.bindings, decls...)
	return result, show, false, nil
}

func repl(out io.Writer, opts compiler.Options) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	s := &session{opts: opts}
	prompt := "let> "
	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(input) == "" && len(s.pending) == 0 {
			continue
		}
		line.AppendHistory(input)

		result, show, more, err := s.feed(input)
		switch {
		case err != nil:
			report(out, err)
		case show:
			fmt.Fprintln(out, result)
		}
		prompt = "let> "
		if more {
			prompt = "...> "
		}
	}
}
