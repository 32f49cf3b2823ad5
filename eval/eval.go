// Package eval interprets a resolved tree directly, with the integer
// semantics the generated code has. It backs the run and repl commands.
package eval

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "eval")

// RuntimeError reports a failure while evaluating a well-formed program.
type RuntimeError struct {
	Message  string
	Location types.Span
}

func (e RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Location.From, e.Message)
}

type evaluator struct {
	a     *ast.Arena
	env   map[ast.VarID]int64
	calls int
}

func (e *evaluator) eval(id ast.NodeID) int64 {
	return ast.Dispatch[int64](e.a, id, e)
}

func (e *evaluator) VisitValue(id ast.NodeID) int64 {
	panic(errors.Internalf("unresolved value %s reached the evaluator", ast.Print(e.a, id)))
}

func (e *evaluator) VisitLiteral(id ast.NodeID) int64 {
	return e.a.Node(id).Int
}

func (e *evaluator) VisitReference(id ast.NodeID) int64 {
	v := e.a.VariableOf(id)
	if v == nil {
		panic(errors.Internalf("unresolved reference %s", e.a.Node(id).Name))
	}
	if v.IsFunction() {
		return e.call(id, v)
	}
	value, ok := e.env[v.ID]
	if !ok {
		panic(errors.Internalf("%s read before it was bound", v.Name))
	}
	return value
}

func (e *evaluator) call(id ast.NodeID, fn *ast.Variable) int64 {
	args := e.a.Children(e.a.Args(id))
	values := make([]int64, len(args))
	for i, arg := range args {
		values[i] = e.eval(arg)
	}

	saved := map[ast.VarID]int64{}
	for i, param := range fn.Params {
		if old, ok := e.env[param]; ok {
			saved[param] = old
		}
		e.env[param] = values[i]
	}

	e.calls++
	result := e.eval(e.a.BoundValue(fn.Decl))

	for _, param := range fn.Params {
		if old, ok := saved[param]; ok {
			e.env[param] = old
		} else {
			delete(e.env, param)
		}
	}
	return result
}

func (e *evaluator) VisitUnaryOp(id ast.NodeID) int64 {
	n := e.a.Node(id)
	result, _ := n.Op.Apply(0, e.eval(e.a.Right(id)))
	return result
}

func (e *evaluator) VisitBinaryOp(id ast.NodeID) int64 {
	n := e.a.Node(id)
	if n.Op == ast.OpIsa {
		return 0
	}
	l := e.eval(e.a.Left(id))
	r := e.eval(e.a.Right(id))
	result, ok := n.Op.Apply(l, r)
	if !ok {
		panic(RuntimeError{Message: "division by zero", Location: n.Token.Location})
	}
	return result
}

func (e *evaluator) VisitBlock(id ast.NodeID) int64 {
	var result int64
	for _, stmt := range e.a.Children(id) {
		if e.a.IsBinding(stmt) {
			e.eval(stmt)
			continue
		}
		result = e.eval(stmt)
	}
	return result
}

func (e *evaluator) VisitAssignment(id ast.NodeID) int64 {
	v := e.a.VariableOf(id)
	if value := e.a.BoundValue(id); !v.IsFunction() && value != ast.NoNode {
		e.env[v.ID] = e.eval(value)
	}
	return 0
}

func (e *evaluator) VisitParameter(id ast.NodeID) int64 {
	panic(errors.Internalf("parameter %s evaluated as a value", e.a.Node(id).Name))
}

func (e *evaluator) VisitArgumentList(id ast.NodeID) int64 {
	panic(errors.Internalf("tuple %s evaluated as a value", ast.Print(e.a, id)))
}

func (e *evaluator) VisitIf(id ast.NodeID) int64 {
	if e.eval(e.a.Cond(id)) != 0 {
		return e.eval(e.a.Then(id))
	}
	if els := e.a.Else(id); els != ast.NoNode {
		return e.eval(els)
	}
	return 0
}

func (e *evaluator) VisitTypeDefinition(id ast.NodeID) int64 {
	return 0
}

func (e *evaluator) VisitVoid(id ast.NodeID) int64 {
	return 0
}

// Evaluate returns the value of a resolved program, optimized or not.
func Evaluate(a *ast.Arena) (result int64, err error) {
	defer func() {
		if r := recover(); r != nil {
			switch r := r.(type) {
			case RuntimeError:
				err = tracerr.Wrap(r)
			case errors.InternalError:
				err = tracerr.Wrap(r)
			default:
				panic(r)
			}
		}
	}()

	if a.Root == ast.NoNode {
		return 0, nil
	}
	e := &evaluator{a: a, env: map[ast.VarID]int64{}}
	result = e.eval(a.Root)
	plog.Debugf("evaluated with %d calls", e.calls)
	return result, nil
}
