package main

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/coreos/pkg/capnslog"
	"github.com/fatih/color"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/eval"
)

var (
	errorHeader = color.New(color.FgRed, color.Bold)
	stageHeader = color.New(color.Bold)
)

// stage names the compiler stage an error came from.
func stage(err error) string {
	var (
		lexErr      errors.LexError
		parseErr    errors.ParseError
		checkErr    errors.CheckError
		internalErr errors.InternalError
		runtimeErr  eval.RuntimeError
	)
	switch {
	case stderrors.As(err, &lexErr):
		return "lex error"
	case stderrors.As(err, &parseErr):
		return "parse error"
	case stderrors.As(err, &checkErr):
		return "check error"
	case stderrors.As(err, &internalErr):
		return "internal error"
	case stderrors.As(err, &runtimeErr):
		return "runtime error"
	}
	return "error"
}

// report prints err for a person. With debug logging on, the stack trace
// recorded by tracerr is shown with source excerpts.
func report(w io.Writer, err error) {
	if plog.LevelAt(capnslog.DEBUG) {
		tracerr.PrintSourceColor(err)
	}
	errorHeader.Fprint(w, "error")
	stageHeader.Fprintf(w, " (%s): ", stage(err))
	fmt.Fprintln(w, err.Error())
}
