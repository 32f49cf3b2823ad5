package ast

// VarID addresses a Variable in an Arena.
type VarID int

const NoVar VarID = -1

type VarKind int

const (
	VarBinding VarKind = iota
	VarParameter
	VarType
)

// Variable is a declared name: a let binding, a function parameter or a
// type. The resolver creates one per declaration and records every
// Reference bound to it.
type Variable struct {
	ID   VarID
	Kind VarKind
	Name string

	// Value is the bound expression; NoNode for parameters and types.
	Value NodeID
	Decl  NodeID
	// Owner is the Block whose statement list holds Decl.
	Owner NodeID

	Refs   []NodeID
	Params []VarID

	Type *Type

	// Overrides links a declaration to the outer one it shadows.
	Overrides    VarID
	OverriddenBy []VarID

	Deleted bool
}

func (a *Arena) NewVariable(kind VarKind, name string, decl NodeID) *Variable {
	v := &Variable{
		ID:        VarID(len(a.Vars)),
		Kind:      kind,
		Name:      name,
		Value:     NoNode,
		Decl:      decl,
		Owner:     NoNode,
		Overrides: NoVar,
	}
	a.Vars = append(a.Vars, v)
	a.Nodes[decl].Var = v.ID
	return v
}

func (a *Arena) Variable(id VarID) *Variable {
	if id == NoVar {
		return nil
	}
	return a.Vars[id]
}

// VariableOf returns the variable a node declares or refers to.
func (a *Arena) VariableOf(id NodeID) *Variable {
	return a.Variable(a.Nodes[id].Var)
}

// IsFunction reports whether the binding was declared with a parameter list.
func (v *Variable) IsFunction() bool {
	return v.Params != nil
}

func (v *Variable) AddRef(id NodeID) {
	v.Refs = append(v.Refs, id)
}

func (v *Variable) RemoveRef(id NodeID) {
	for i, ref := range v.Refs {
		if ref == id {
			v.Refs = append(v.Refs[:i:i], v.Refs[i+1:]...)
			return
		}
	}
}

// Live returns the variables that have not been eliminated.
func (a *Arena) Live() []*Variable {
	var ret []*Variable
	for _, v := range a.Vars {
		if !v.Deleted {
			ret = append(ret, v)
		}
	}
	return ret
}
