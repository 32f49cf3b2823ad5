package check

import (
	"strconv"

	"github.com/ztrue/tracerr"

	"github.com/pontaoski/letgo/ast"
	"github.com/pontaoski/letgo/errors"
	"github.com/pontaoski/letgo/types"
)

// optimizer rewrites a resolved tree. Each visit returns the node that
// should take the visited node's slot in its parent.
type optimizer struct {
	a       *ast.Arena
	changed bool

	folded, inlined, pruned, removed int
}

func (o *optimizer) visit(id ast.NodeID) ast.NodeID {
	if id == ast.NoNode {
		return id
	}
	return ast.Dispatch[ast.NodeID](o.a, id, o)
}

func (o *optimizer) visitChildren(id ast.NodeID) {
	children := o.a.Children(id)
	for i := range children {
		children[i] = o.visit(children[i])
	}
}

func (o *optimizer) literal(tok types.Token, v int64) ast.NodeID {
	id := o.a.New(ast.KindLiteral, tok)
	n := o.a.Node(id)
	n.Int = v
	n.Text = strconv.FormatInt(v, 10)
	return id
}

func (o *optimizer) isLiteral(id ast.NodeID) bool {
	return id != ast.NoNode && o.a.Kind(id) == ast.KindLiteral
}

// discard unregisters a subtree that is leaving the tree: its references
// stop counting and its declarations are deleted.
func (o *optimizer) discard(id ast.NodeID) {
	o.a.Walk(id, func(n ast.NodeID) bool {
		node := o.a.Node(n)
		v := o.a.Variable(node.Var)
		if v == nil {
			return true
		}
		if node.Kind == ast.KindReference {
			v.RemoveRef(n)
		} else {
			v.Deleted = true
		}
		return true
	})
}

func (o *optimizer) VisitValue(id ast.NodeID) ast.NodeID {
	panic(errors.Internalf("unresolved value %s reached the optimizer", ast.Print(o.a, id)))
}

func (o *optimizer) VisitLiteral(id ast.NodeID) ast.NodeID {
	return id
}

// VisitReference inlines a binding used exactly once. The bound value moves
// into the reference's slot and leaves the Assignment empty; the next block
// sweep deletes the Assignment.
func (o *optimizer) VisitReference(id ast.NodeID) ast.NodeID {
	if args := o.a.Args(id); args != ast.NoNode {
		o.a.Node(id).Children[0] = o.visit(args)
		return id
	}

	v := o.a.VariableOf(id)
	if v.Kind != ast.VarBinding || v.IsFunction() || len(v.Refs) != 1 || v.Value == ast.NoNode {
		return id
	}

	value := o.a.Detach(v.Decl, 0)
	v.Value = ast.NoNode
	v.RemoveRef(id)
	o.changed = true
	o.inlined++
	plog.Tracef("inlining %s", v.Name)
	return value
}

func (o *optimizer) VisitUnaryOp(id ast.NodeID) ast.NodeID {
	o.visitChildren(id)

	n := o.a.Node(id)
	right := o.a.Right(id)
	if !o.isLiteral(right) {
		return id
	}
	result, ok := n.Op.Apply(0, o.a.Node(right).Int)
	if !ok {
		return id
	}
	o.changed = true
	o.folded++
	return o.literal(n.Token, result)
}

func (o *optimizer) VisitBinaryOp(id ast.NodeID) ast.NodeID {
	n := o.a.Node(id)
	if n.Op == ast.OpIsa {
		// subtyping is undecided, so every isa test is false
		o.discard(id)
		o.changed = true
		o.folded++
		return o.literal(n.Token, 0)
	}

	o.visitChildren(id)

	left, right := o.a.Left(id), o.a.Right(id)
	if !o.isLiteral(left) || !o.isLiteral(right) {
		return id
	}
	result, ok := n.Op.Apply(o.a.Node(left).Int, o.a.Node(right).Int)
	if !ok {
		return id
	}
	o.changed = true
	o.folded++
	return o.literal(n.Token, result)
}

// VisitBlock removes dead bindings and collapses the block when it no longer
// needs a scope of its own.
func (o *optimizer) VisitBlock(id ast.NodeID) ast.NodeID {
	o.visitChildren(id)

	// later statements are the only users of earlier ones, so one backward
	// sweep also catches bindings that die with the ones after them
	for i := len(o.a.Children(id)) - 1; i >= 0; i-- {
		stmt := o.a.Child(id, i)
		if !o.a.IsBinding(stmt) {
			continue
		}
		v := o.a.VariableOf(stmt)
		if v == nil || len(v.Refs) > 0 {
			continue
		}
		o.a.Splice(id, i)
		o.discard(stmt)
		o.changed = true
		o.removed++
		plog.Tracef("removing dead binding %s", v.Name)
	}

	children := o.a.Children(id)
	switch {
	case len(children) == 0:
		o.changed = true
		return o.a.New(ast.KindVoid, o.a.Node(id).Token)
	case len(children) == 1 && !o.a.IsBinding(children[0]):
		o.changed = true
		return children[0]
	}
	return id
}

func (o *optimizer) VisitAssignment(id ast.NodeID) ast.NodeID {
	o.visitChildren(id)
	if v := o.a.VariableOf(id); v != nil {
		v.Value = o.a.BoundValue(id)
	}
	return id
}

func (o *optimizer) VisitParameter(id ast.NodeID) ast.NodeID {
	o.visitChildren(id)
	return id
}

func (o *optimizer) VisitArgumentList(id ast.NodeID) ast.NodeID {
	o.visitChildren(id)
	return id
}

// VisitIf prunes the branch a constant condition never takes. Only the
// taken branch is optimized further.
func (o *optimizer) VisitIf(id ast.NodeID) ast.NodeID {
	n := o.a.Node(id)
	n.Children[0] = o.visit(n.Children[0])

	cond := o.a.Cond(id)
	if !o.isLiteral(cond) {
		n.Children[1] = o.visit(n.Children[1])
		n.Children[2] = o.visit(n.Children[2])
		return id
	}

	taken, dropped := o.a.Then(id), o.a.Else(id)
	if o.a.Node(cond).Int == 0 {
		taken, dropped = dropped, taken
	}
	o.discard(dropped)
	o.changed = true
	o.pruned++

	if taken == ast.NoNode {
		return o.a.New(ast.KindVoid, n.Token)
	}
	return o.visit(taken)
}

func (o *optimizer) VisitTypeDefinition(id ast.NodeID) ast.NodeID {
	o.visitChildren(id)
	return id
}

func (o *optimizer) VisitVoid(id ast.NodeID) ast.NodeID {
	return id
}

// Optimize rewrites a resolved tree until no rule applies, then makes one
// final full pass over the settled tree.
func Optimize(a *ast.Arena) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(errors.InternalError); ok {
				err = tracerr.Wrap(e)
				return
			}
			panic(r)
		}
	}()

	o := &optimizer{a: a}
	rounds := 0
	for {
		rounds++
		o.changed = false
		a.Root = o.visit(a.Root)
		if !o.changed {
			break
		}
	}
	a.Root = o.visit(a.Root)

	plog.Debugf("optimized in %d rounds: %d folded, %d inlined, %d branches pruned, %d bindings removed",
		rounds, o.folded, o.inlined, o.pruned, o.removed)
	return nil
}

// Check resolves the tree and, when optimize is set, optimizes it.
func Check(a *ast.Arena, optimize bool) error {
	if err := Resolve(a); err != nil {
		return err
	}
	if !optimize {
		return nil
	}
	return Optimize(a)
}
