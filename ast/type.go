package ast

import (
	"strings"
)

// Type is either nominal (Name and Parents) or functional (Output and
// Inputs). Nominal types compare by name, functional types by structure.
type Type struct {
	Name    string
	Parents []*Type

	Output *Type
	Inputs []*Type
}

// Int is the type of every runtime value.
var Int = Nominal("Int")

func Nominal(name string, parents ...*Type) *Type {
	return &Type{Name: name, Parents: parents}
}

func Function(output *Type, inputs ...*Type) *Type {
	return &Type{Output: output, Inputs: inputs}
}

func (t *Type) Functional() bool {
	return t.Output != nil
}

func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Functional() != o.Functional() {
		return false
	}
	if !t.Functional() {
		return t.Name == o.Name
	}
	if !t.Output.Equal(o.Output) || len(t.Inputs) != len(o.Inputs) {
		return false
	}
	for i := range t.Inputs {
		if !t.Inputs[i].Equal(o.Inputs[i]) {
			return false
		}
	}
	return true
}

// IsA reports whether t is a subtype of o. Subtyping is not decided yet,
// so the answer is always false.
func (t *Type) IsA(o *Type) bool {
	return false
}

func (t *Type) String() string {
	if t == nil {
		return "<untyped>"
	}
	if !t.Functional() {
		return t.Name
	}
	var inputs []string
	for _, in := range t.Inputs {
		inputs = append(inputs, in.String())
	}
	return "(" + strings.Join(inputs, ", ") + ") -> " + t.Output.String()
}
