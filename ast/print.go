package ast

import (
	"strings"
)

// Print renders the tree rooted at id as source text. Operators are fully
// parenthesized, so lexing and parsing the output gives back the same tree.
func Print(a *Arena, id NodeID) string {
	if id == NoNode {
		return ""
	}
	return Dispatch[string](a, id, printer{a})
}

type printer struct {
	a *Arena
}

func (p printer) print(id NodeID) string {
	return Print(p.a, id)
}

func (p printer) group(id NodeID) string {
	switch p.a.Kind(id) {
	case KindArgumentList, KindVoid:
		return p.print(id)
	}
	return "(" + p.print(id) + ")"
}

func (p printer) braced(id NodeID) string {
	if p.a.Kind(id) == KindBlock {
		return p.block(id, false)
	}
	return "{ " + p.print(id) + " }"
}

func (p printer) block(id NodeID, implied bool) string {
	var stmts []string
	for _, stmt := range p.a.Children(id) {
		stmts = append(stmts, p.print(stmt))
	}
	if implied {
		return strings.Join(stmts, "\n")
	}
	if len(stmts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(stmts, "; ") + " }"
}

func (p printer) VisitValue(id NodeID) string {
	children := p.a.Children(id)
	if len(children) == 2 && p.a.Kind(children[0]) == KindReference {
		return p.print(children[0]) + p.group(children[1])
	}
	var parts []string
	for _, child := range children {
		parts = append(parts, p.print(child))
	}
	return strings.Join(parts, " ")
}

func (p printer) VisitLiteral(id NodeID) string {
	return p.a.Node(id).Text
}

func (p printer) VisitReference(id NodeID) string {
	name := p.a.Node(id).Name
	if args := p.a.Args(id); args != NoNode {
		return name + p.group(args)
	}
	return name
}

func (p printer) VisitUnaryOp(id NodeID) string {
	return "(" + p.a.Node(id).Op.Symbol() + " " + p.print(p.a.Right(id)) + ")"
}

func (p printer) VisitBinaryOp(id NodeID) string {
	return "(" + p.print(p.a.Left(id)) + " " + p.a.Node(id).Op.Symbol() + " " + p.print(p.a.Right(id)) + ")"
}

func (p printer) VisitBlock(id NodeID) string {
	return p.block(id, id == p.a.Root && p.a.Node(id).Implied)
}

func (p printer) params(ids []NodeID) string {
	var params []string
	for _, param := range ids {
		params = append(params, p.print(param))
	}
	return "(" + strings.Join(params, ", ") + ")"
}

func (p printer) VisitAssignment(id NodeID) string {
	n := p.a.Node(id)
	var b strings.Builder
	b.WriteString("let ")
	b.WriteString(n.Name)
	if n.Function {
		b.WriteString(p.params(p.a.Params(id)))
	}
	b.WriteString(" = ")
	b.WriteString(p.print(p.a.BoundValue(id)))
	return b.String()
}

func (p printer) VisitParameter(id NodeID) string {
	n := p.a.Node(id)
	s := n.Name
	if n.Annotation != "" {
		s += ": " + n.Annotation
	}
	if def := p.a.Default(id); def != NoNode {
		s += " = " + p.print(def)
	}
	return s
}

func (p printer) VisitArgumentList(id NodeID) string {
	var elems []string
	for i, elem := range p.a.Children(id) {
		if label := p.a.Label(id, i); label != "" {
			elems = append(elems, label+": "+p.print(elem))
		} else {
			elems = append(elems, p.print(elem))
		}
	}
	if len(elems) == 1 && p.a.Label(id, 0) == "" {
		// "(x)" would read back as a parenthesized value
		return "(" + elems[0] + ",)"
	}
	return "(" + strings.Join(elems, ", ") + ")"
}

func (p printer) VisitIf(id NodeID) string {
	s := "if (" + p.print(p.a.Cond(id)) + ") (" + p.print(p.a.Then(id)) + ")"
	els := p.a.Else(id)
	if els == NoNode {
		// an operator after "if (c) (t)" would join the then branch
		return "(" + s + ")"
	}
	return s + " else " + p.braced(els)
}

func (p printer) VisitTypeDefinition(id NodeID) string {
	n := p.a.Node(id)
	s := "type " + n.Name
	if fields := n.Children; len(fields) > 0 {
		s += p.params(fields)
	}
	if len(n.Parents) > 0 {
		s += " isa " + p.params(n.Parents)
	}
	return s
}

func (p printer) VisitVoid(id NodeID) string {
	return "()"
}
