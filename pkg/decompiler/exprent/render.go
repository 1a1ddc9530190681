package exprent

import (
	"fmt"
	"strings"
)

type detreeType = func(s *strings.Builder, tree Node)

func prefix(s *strings.Builder, name string, nodes []Node, f detreeType) {
	s.WriteString(name)
	s.WriteString("(")
	for i, a := range nodes {
		f(s, a)
		if i+1 != len(nodes) {
			s.WriteString(", ")
		}
	}
	s.WriteString(")")
}

func infix(s *strings.Builder, name string, left, right Node, f detreeType) {
	s.WriteString("(")
	f(s, left)
	s.WriteString(fmt.Sprintf(" %s ", name))
	f(s, right)
	s.WriteString(")")
}

// Render returns a debug rendering of the tree, e.g. "(1 + 2)".
// It is meant for logs and tests, not for source emission.
func Render(tree Node) string {
	s := &strings.Builder{}
	detree(s, tree)
	return s.String()
}

// RenderAll renders every node of the list.
func RenderAll(nodes Nodes) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Render(n))
	}
	return out
}

func detree(s *strings.Builder, tree Node) {
	switch n := tree.(type) {
	case nil:
		s.WriteString("<nil>")
	case *ConstNode:
		s.WriteString(fmt.Sprintf("%d", n.Value))
	case *StringNode:
		s.WriteString(fmt.Sprintf("%q", n.Value))
	case *NullNode:
		s.WriteString("null")
	case *VarNode:
		s.WriteString(fmt.Sprintf("var%d", n.Index))
	case *BinaryNode:
		if n.Operator.Prefix() {
			prefix(s, n.Operator.String(), []Node{n.Left, n.Right}, detree)
			return
		}
		infix(s, n.Operator.String(), n.Left, n.Right, detree)
	case *UnaryNode:
		s.WriteString(n.Operator.String())
		detree(s, n.Operand)
	case *AssignmentNode:
		detree(s, n.Target)
		s.WriteString(" = ")
		detree(s, n.Value)
	case *InvocationNode:
		if n.Instance != nil {
			detree(s, n.Instance)
		} else {
			s.WriteString(n.Owner)
		}
		s.WriteString(".")
		prefix(s, n.Name, n.Arguments, detree)
	case *IfNode:
		s.WriteString("if ")
		detree(s, n.Condition)
		s.WriteString(fmt.Sprintf(" goto %d", n.Target))
	case *ExitNode:
		switch n.Kind {
		case ExitThrow:
			s.WriteString("throw ")
			detree(s, n.Value)
		default:
			s.WriteString("return")
			if n.Value != nil {
				s.WriteString(" ")
				detree(s, n.Value)
			}
		}
	case *FieldNode:
		if n.Instance != nil {
			detree(s, n.Instance)
		} else {
			s.WriteString(n.Owner)
		}
		s.WriteString(".")
		s.WriteString(n.Name)
	case *ArrayNode:
		detree(s, n.Array)
		s.WriteString("[")
		detree(s, n.Index)
		s.WriteString("]")
	default:
		panic(fmt.Sprintf("unknown type %T", n))
	}
}
