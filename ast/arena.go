package ast

//go:generate sh -c "cd ../tool && go run . ../ast/nodes.adt ../ast/kinds_gen.go ast"

import (
	"github.com/pontaoski/letgo/types"
)

// NodeID addresses a node in an Arena.
type NodeID int

// NoNode marks an empty slot: a missing operand, an absent else branch or
// a parameter without a default.
const NoNode NodeID = -1

// Node is one tree node. Children holds the node's subtrees, laid out per
// kind:
//
//	Value          subexpressions
//	Reference      [] or [ArgumentList] once the resolver attaches a call
//	UnaryOp        [right]
//	BinaryOp       [left, right]
//	Block          statements
//	Assignment     [value, parameters...]
//	Parameter      [] or [default]
//	ArgumentList   elements, labeled through Labels
//	If             [condition, then, else]
//	TypeDefinition fields (Parameter nodes); supertypes live in Parents
//
// Operands an operator has not absorbed yet are NoNode.
type Node struct {
	Kind  Kind
	Token types.Token

	Name string
	Text string
	Int  int64
	Op   Operator

	Children []NodeID
	Labels   []string
	Parents  []NodeID

	Annotation string
	Function   bool
	Implied    bool

	Var VarID
}

// Arena owns every node and variable of one compilation. Rewrites never
// follow pointers between nodes: they edit a parent's child list. A *Node
// stays valid while the arena grows.
type Arena struct {
	Nodes []*Node
	Vars  []*Variable
	Root  NodeID
}

func NewArena() *Arena {
	return &Arena{Root: NoNode}
}

func (a *Arena) New(kind Kind, tok types.Token, children ...NodeID) NodeID {
	a.Nodes = append(a.Nodes, &Node{
		Kind:     kind,
		Token:    tok,
		Children: children,
		Var:      NoVar,
	})
	return NodeID(len(a.Nodes) - 1)
}

func (a *Arena) Node(id NodeID) *Node {
	return a.Nodes[id]
}

func (a *Arena) Kind(id NodeID) Kind {
	return a.Nodes[id].Kind
}

func (a *Arena) Children(id NodeID) []NodeID {
	return a.Nodes[id].Children
}

// Child returns the i-th child, or NoNode if the slot does not exist.
func (a *Arena) Child(id NodeID, i int) NodeID {
	children := a.Nodes[id].Children
	if i < 0 || i >= len(children) {
		return NoNode
	}
	return children[i]
}

func (a *Arena) Append(parent, child NodeID) {
	a.Nodes[parent].Children = append(a.Nodes[parent].Children, child)
}

// At returns the node held in slot i of parent. NoNode as the parent means
// the root slot.
func (a *Arena) At(parent NodeID, i int) NodeID {
	if parent == NoNode {
		return a.Root
	}
	return a.Child(parent, i)
}

// Set stores child into slot i of parent, or into the root slot.
func (a *Arena) Set(parent NodeID, i int, child NodeID) {
	if parent == NoNode {
		a.Root = child
		return
	}
	a.Nodes[parent].Children[i] = child
}

// Detach empties slot i of parent and returns what it held.
func (a *Arena) Detach(parent NodeID, i int) NodeID {
	id := a.At(parent, i)
	a.Set(parent, i, NoNode)
	return id
}

// Splice removes slot i from parent's child list, shifting later children
// down, and returns the removed node.
func (a *Arena) Splice(parent NodeID, i int) NodeID {
	n := a.Nodes[parent]
	id := n.Children[i]
	n.Children = append(n.Children[:i:i], n.Children[i+1:]...)
	if len(n.Labels) > i {
		n.Labels = append(n.Labels[:i:i], n.Labels[i+1:]...)
	}
	return id
}

// Walk visits id and its subtrees in pre-order, including supertype
// references. Returning false from fn skips the node's subtrees.
func (a *Arena) Walk(id NodeID, fn func(NodeID) bool) {
	if id == NoNode {
		return
	}
	if !fn(id) {
		return
	}
	for _, child := range a.Nodes[id].Children {
		a.Walk(child, fn)
	}
	for _, parent := range a.Nodes[id].Parents {
		a.Walk(parent, fn)
	}
}

// Pending reports whether id is an operator still waiting for an operand.
func (a *Arena) Pending(id NodeID) bool {
	switch a.Kind(id) {
	case KindUnaryOp, KindBinaryOp:
		for _, child := range a.Nodes[id].Children {
			if child == NoNode {
				return true
			}
		}
	}
	return false
}

// IsBinding reports whether a statement declares a name rather than
// producing the block's result.
func (a *Arena) IsBinding(id NodeID) bool {
	switch a.Kind(id) {
	case KindAssignment, KindTypeDefinition:
		return true
	}
	return false
}

func (a *Arena) Left(id NodeID) NodeID {
	return a.Child(id, 0)
}

// Right returns the right operand of a unary or binary operator.
func (a *Arena) Right(id NodeID) NodeID {
	if a.Kind(id) == KindUnaryOp {
		return a.Child(id, 0)
	}
	return a.Child(id, 1)
}

func (a *Arena) Cond(id NodeID) NodeID {
	return a.Child(id, 0)
}

func (a *Arena) Then(id NodeID) NodeID {
	return a.Child(id, 1)
}

func (a *Arena) Else(id NodeID) NodeID {
	return a.Child(id, 2)
}

// BoundValue returns the value of an Assignment.
func (a *Arena) BoundValue(id NodeID) NodeID {
	return a.Child(id, 0)
}

// Params returns the parameter nodes of an Assignment.
func (a *Arena) Params(id NodeID) []NodeID {
	children := a.Nodes[id].Children
	if len(children) < 2 {
		return nil
	}
	return children[1:]
}

// Default returns the default value of a Parameter.
func (a *Arena) Default(id NodeID) NodeID {
	return a.Child(id, 0)
}

// Args returns the argument list a resolved call carries.
func (a *Arena) Args(id NodeID) NodeID {
	return a.Child(id, 0)
}

func (a *Arena) Label(id NodeID, i int) string {
	labels := a.Nodes[id].Labels
	if i >= len(labels) {
		return ""
	}
	return labels[i]
}

// Count returns the number of nodes reachable from the root.
func (a *Arena) Count() int {
	n := 0
	a.Walk(a.Root, func(NodeID) bool {
		n++
		return true
	})
	return n
}
