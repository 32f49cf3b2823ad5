package ast

// Shape is a position-free copy of a subtree, for comparing trees and for
// dumping them with repr.
type Shape struct {
	Kind       string
	Name       string   `json:",omitempty"`
	Text       string   `json:",omitempty"`
	Op         string   `json:",omitempty"`
	Annotation string   `json:",omitempty"`
	Function   bool     `json:",omitempty"`
	Labels     []string `json:",omitempty"`
	Children   []*Shape `json:",omitempty"`
	Parents    []*Shape `json:",omitempty"`
}

// Dump returns the Shape of the subtree rooted at id; empty slots become nil.
func Dump(a *Arena, id NodeID) *Shape {
	if id == NoNode {
		return nil
	}
	n := a.Node(id)
	s := &Shape{
		Kind:       n.Kind.String(),
		Name:       n.Name,
		Text:       n.Text,
		Annotation: n.Annotation,
		Function:   n.Function,
	}
	if n.Op != OpNone {
		s.Op = n.Op.Symbol()
	}
	for i := range n.Children {
		s.Labels = append(s.Labels, a.Label(id, i))
	}
	if len(n.Labels) == 0 {
		s.Labels = nil
	}
	for _, child := range n.Children {
		s.Children = append(s.Children, Dump(a, child))
	}
	for _, parent := range n.Parents {
		s.Parents = append(s.Parents, Dump(a, parent))
	}
	return s
}
