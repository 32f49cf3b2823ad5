package errors

import (
	"fmt"
	"strings"

	"github.com/pontaoski/letgo/types"
)

// LexError reports a character no lexing strategy accepts, or a broken
// block comment.
type LexError struct {
	Message  string
	Location types.Position
}

func (e LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

// ParseError reports a token the grammar did not allow at its position.
// Context is the first token of the construct being parsed.
type ParseError struct {
	Message  string
	Got      types.Token
	Expected []types.TokenKind
	Context  types.Token
}

func (e ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Got.Location.From, e.Message)
	if e.Got.Kind == types.EOF {
		b.WriteString(", got end of input")
	} else {
		fmt.Fprintf(&b, ", got %s %q", e.Got.Kind, e.Got.Text)
	}
	if len(e.Expected) > 0 {
		fmt.Fprintf(&b, ", expected one of %s", e.Expected)
	}
	if e.Context.Text != "" {
		fmt.Fprintf(&b, " (in construct starting with %q at %s)", e.Context.Text, e.Context.Location.From)
	}
	return b.String()
}

// CheckError reports a name that cannot be bound: an undeclared reference,
// a duplicate declaration in one scope, or a call with the wrong arguments.
// Previous is set when two declaration sites are involved.
type CheckError struct {
	Name     string
	Message  string
	Site     types.Span
	Previous *types.Span
}

func (e CheckError) Error() string {
	if e.Previous != nil {
		return fmt.Sprintf("%s: %s '%s' (previously declared at %s)", e.Site.From, e.Message, e.Name, e.Previous.From)
	}
	return fmt.Sprintf("%s: %s '%s'", e.Site.From, e.Message, e.Name)
}

// InternalError reports a broken compiler invariant rather than a problem
// with the program being compiled.
type InternalError struct {
	Message string
}

func (e InternalError) Error() string {
	return "internal compiler error: " + e.Message
}

func Internalf(format string, args ...interface{}) InternalError {
	return InternalError{Message: fmt.Sprintf(format, args...)}
}
