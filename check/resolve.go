package check

import (
	"fmt"

	"github.com/coreos/pkg/capnslog"
	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

var plog = capnslog.NewPackageLogger("github.com/pontaoski/letgo", "check")

type resolver struct {
	a      *ast.Arena
	names  []map[string]*ast.Variable
	blocks []ast.NodeID
}

func (r *resolver) pushScope() {
	r.names = append(r.names, make(map[string]*ast.Variable))
}

func (r *resolver) popScope() {
	r.names = r.names[:len(r.names)-1]
}

func (r *resolver) top() map[string]*ast.Variable {
	return r.names[len(r.names)-1]
}

func (r *resolver) lookup(name string) *ast.Variable {
	for i := len(r.names) - 1; i >= 0; i-- {
		if v, ok := r.names[i][name]; ok {
			return v
		}
	}
	return nil
}

func (r *resolver) fail(id ast.NodeID, name, format string, args ...interface{}) {
	panic(errors.CheckError{
		Name:    name,
		Message: fmt.Sprintf(format, args...),
		Site:    siteOf(r.a, id),
	})
}

// declare adds v to the innermost scope. A name may be declared once per
// scope; declaring it again in a nested scope shadows the outer one.
func (r *resolver) declare(v *ast.Variable) {
	if prev, ok := r.top()[v.Name]; ok {
		previous := siteOf(r.a, prev.Decl)
		panic(errors.CheckError{
			Name:     v.Name,
			Message:  "duplicate declaration of",
			Site:     siteOf(r.a, v.Decl),
			Previous: &previous,
		})
	}
	if outer := r.lookup(v.Name); outer != nil {
		v.Overrides = outer.ID
		outer.OverriddenBy = append(outer.OverriddenBy, v.ID)
	}
	if len(r.blocks) > 0 {
		v.Owner = r.blocks[len(r.blocks)-1]
	}
	r.top()[v.Name] = v
}

func (r *resolver) bind(ref ast.NodeID, v *ast.Variable) {
	v.AddRef(ref)
	r.a.Node(ref).Var = v.ID
}

// resolveType finds the type an annotation names.
func (r *resolver) resolveType(id ast.NodeID, name string) *ast.Type {
	v := r.lookup(name)
	if v == nil {
		if name == ast.Int.Name {
			return ast.Int
		}
		r.fail(id, name, "undeclared type")
	}
	if v.Kind != ast.VarType {
		r.fail(id, name, "not a type:")
	}
	return v.Type
}

// resolveTypeReference binds a Reference that must name a type, as the right
// operand of isa or a supertype does.
func (r *resolver) resolveTypeReference(id ast.NodeID) *ast.Type {
	n := r.a.Node(id)
	if n.Kind != ast.KindReference {
		r.fail(id, ast.Print(r.a, id), "expected a type name, got")
	}
	v := r.lookup(n.Name)
	if v == nil && n.Name == ast.Int.Name {
		return ast.Int
	}
	if v == nil {
		r.fail(id, n.Name, "undeclared type")
	}
	if v.Kind != ast.VarType {
		r.fail(id, n.Name, "not a type:")
	}
	r.bind(id, v)
	return v.Type
}

func (r *resolver) visit(id ast.NodeID) ast.NodeID {
	if id == ast.NoNode {
		return id
	}
	return ast.Dispatch[ast.NodeID](r.a, id, r)
}

func (r *resolver) visitChildren(id ast.NodeID) {
	children := r.a.Children(id)
	for i := range children {
		children[i] = r.visit(children[i])
	}
}

func (r *resolver) VisitValue(id ast.NodeID) ast.NodeID {
	children := r.a.Children(id)
	if len(children) == 2 && r.a.Kind(children[0]) == ast.KindReference {
		return r.call(children[0], children[1])
	}
	panic(errors.Internalf("unreduced value %s survived parsing", ast.Print(r.a, id)))
}

// call binds a call candidate: the reference must name a function and the
// group must supply exactly one argument per parameter. A lone value is
// wrapped into a one-element argument list. Labeled arguments are moved to
// their parameter's position.
func (r *resolver) call(ref, group ast.NodeID) ast.NodeID {
	n := r.a.Node(ref)
	v := r.lookup(n.Name)
	if v == nil {
		r.fail(ref, n.Name, "undeclared name")
	}
	if v.Kind == ast.VarType {
		r.fail(ref, n.Name, "type used as a value:")
	}
	if !v.IsFunction() {
		r.fail(ref, n.Name, "arguments given to non-function")
	}

	var elems []ast.NodeID
	var labels []string
	list := group
	switch r.a.Kind(group) {
	case ast.KindVoid:
		list = r.a.New(ast.KindArgumentList, r.a.Node(group).Token)
	case ast.KindArgumentList:
		g := r.a.Node(group)
		elems, labels = g.Children, g.Labels
	default:
		elems = []ast.NodeID{group}
		list = r.a.New(ast.KindArgumentList, r.a.Node(group).Token)
	}

	if len(elems) != len(v.Params) {
		r.fail(ref, n.Name, "expected %d arguments, got %d, in call to", len(v.Params), len(elems))
	}

	ordered := make([]ast.NodeID, len(v.Params))
	for i := range ordered {
		ordered[i] = ast.NoNode
	}
	sawLabel := false
	for i, elem := range elems {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		slot := i
		if label == "" {
			if sawLabel {
				r.fail(elem, n.Name, "positional argument after labeled ones in call to")
			}
		} else {
			sawLabel = true
			slot = -1
			for j, param := range v.Params {
				if r.a.Variable(param).Name == label {
					slot = j
				}
			}
			if slot < 0 {
				r.fail(elem, label, "no parameter of '%s' is named", n.Name)
			}
			if ordered[slot] != ast.NoNode {
				r.fail(elem, label, "argument given twice:")
			}
		}
		ordered[slot] = r.visit(elem)
	}

	l := r.a.Node(list)
	l.Children = ordered
	l.Labels = nil
	n.Children = []ast.NodeID{list}
	r.bind(ref, v)
	return ref
}

func (r *resolver) VisitLiteral(id ast.NodeID) ast.NodeID {
	return id
}

func (r *resolver) VisitReference(id ast.NodeID) ast.NodeID {
	n := r.a.Node(id)
	v := r.lookup(n.Name)
	if v == nil {
		r.fail(id, n.Name, "undeclared name")
	}
	switch {
	case v.Kind == ast.VarType:
		r.fail(id, n.Name, "type used as a value:")
	case v.IsFunction():
		r.fail(id, n.Name, "expected %d arguments, got none, for function", len(v.Params))
	}
	r.bind(id, v)
	return id
}

func (r *resolver) VisitUnaryOp(id ast.NodeID) ast.NodeID {
	r.visitChildren(id)
	return id
}

func (r *resolver) VisitBinaryOp(id ast.NodeID) ast.NodeID {
	children := r.a.Children(id)
	children[0] = r.visit(children[0])
	if r.a.Node(id).Op == ast.OpIsa {
		r.resolveTypeReference(children[1])
	} else {
		children[1] = r.visit(children[1])
	}
	return id
}

func (r *resolver) VisitBlock(id ast.NodeID) ast.NodeID {
	r.pushScope()
	r.blocks = append(r.blocks, id)
	r.visitChildren(id)
	r.blocks = r.blocks[:len(r.blocks)-1]
	r.popScope()
	return id
}

// VisitAssignment checks the bound value before declaring the name, so a
// binding never sees itself.
func (r *resolver) VisitAssignment(id ast.NodeID) ast.NodeID {
	n := r.a.Node(id)

	var v *ast.Variable
	if n.Function {
		r.pushScope()
		params := []ast.VarID{}
		var inputs []*ast.Type
		for i, param := range r.a.Params(id) {
			n.Children[i+1] = r.visit(param)
			pv := r.a.VariableOf(param)
			params = append(params, pv.ID)
			inputs = append(inputs, pv.Type)
		}
		n.Children[0] = r.visit(n.Children[0])
		r.popScope()

		v = r.a.NewVariable(ast.VarBinding, n.Name, id)
		v.Params = params
		v.Type = ast.Function(ast.Int, inputs...)
	} else {
		n.Children[0] = r.visit(n.Children[0])
		v = r.a.NewVariable(ast.VarBinding, n.Name, id)
		v.Type = ast.Int
	}

	v.Value = n.Children[0]
	r.declare(v)
	return id
}

func (r *resolver) VisitParameter(id ast.NodeID) ast.NodeID {
	n := r.a.Node(id)
	r.visitChildren(id)

	v := r.a.NewVariable(ast.VarParameter, n.Name, id)
	v.Type = ast.Int
	if n.Annotation != "" {
		v.Type = r.resolveType(id, n.Annotation)
	}
	r.declare(v)
	return id
}

func (r *resolver) VisitArgumentList(id ast.NodeID) ast.NodeID {
	r.fail(id, ast.Print(r.a, id), "tuple used as a value:")
	return id
}

func (r *resolver) VisitIf(id ast.NodeID) ast.NodeID {
	r.visitChildren(id)
	return id
}

func (r *resolver) VisitTypeDefinition(id ast.NodeID) ast.NodeID {
	n := r.a.Node(id)

	var parents []*ast.Type
	for _, parent := range n.Parents {
		parents = append(parents, r.resolveTypeReference(parent))
	}

	r.pushScope()
	r.visitChildren(id)
	r.popScope()

	v := r.a.NewVariable(ast.VarType, n.Name, id)
	v.Type = ast.Nominal(n.Name, parents...)
	r.declare(v)
	return id
}

func (r *resolver) VisitVoid(id ast.NodeID) ast.NodeID {
	return id
}

// Resolve binds every name in the tree to its declaration. Call candidates
// become References carrying an ArgumentList ordered by parameter.
func Resolve(a *ast.Arena) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case errors.CheckError:
				err = tracerr.Wrap(e)
			case errors.InternalError:
				err = tracerr.Wrap(e)
			default:
				panic(r)
			}
		}
	}()

	r := &resolver{a: a}
	a.Root = r.visit(a.Root)
	plog.Debugf("resolved %d declarations", len(a.Vars))
	return nil
}

func siteOf(a *ast.Arena, id ast.NodeID) types.Span {
	return a.Node(id).Token.Location
}
