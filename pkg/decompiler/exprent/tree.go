package exprent

// Node is an element of a reconstructed expression tree.
// Clone returns a deep copy; the copy shares no mutable state with the original.
type Node interface {
	node()
	Clone() Node
}

type ConstNode struct {
	Value int64
}

func (*ConstNode) node() {}

func (a *ConstNode) Clone() Node {
	return &ConstNode{Value: a.Value}
}

func NewConstNode(v int64) *ConstNode {
	return &ConstNode{Value: v}
}

type StringNode struct {
	Value string
}

func (*StringNode) node() {}

func (a *StringNode) Clone() Node {
	return &StringNode{Value: a.Value}
}

func NewStringNode(v string) *StringNode {
	return &StringNode{Value: v}
}

type NullNode struct{}

func (*NullNode) node() {}

func (*NullNode) Clone() Node {
	return &NullNode{}
}

func NewNullNode() *NullNode {
	return &NullNode{}
}

// VarNode references a local variable slot.
type VarNode struct {
	Index int
}

func (*VarNode) node() {}

func (a *VarNode) Clone() Node {
	return &VarNode{Index: a.Index}
}

func NewVarNode(index int) *VarNode {
	return &VarNode{Index: index}
}

type BinaryNode struct {
	Operator Operator
	Left     Node
	Right    Node
}

func (*BinaryNode) node() {}

func (a *BinaryNode) Clone() Node {
	return &BinaryNode{
		Operator: a.Operator,
		Left:     clone(a.Left),
		Right:    clone(a.Right),
	}
}

func NewBinaryNode(op Operator, left, right Node) *BinaryNode {
	return &BinaryNode{Operator: op, Left: left, Right: right}
}

type UnaryNode struct {
	Operator Operator
	Operand  Node
}

func (*UnaryNode) node() {}

func (a *UnaryNode) Clone() Node {
	return &UnaryNode{Operator: a.Operator, Operand: clone(a.Operand)}
}

func NewUnaryNode(op Operator, operand Node) *UnaryNode {
	return &UnaryNode{Operator: op, Operand: operand}
}

// AssignmentNode stores Value into Target, which is a variable, field or array element.
type AssignmentNode struct {
	Target Node
	Value  Node
}

func (*AssignmentNode) node() {}

func (a *AssignmentNode) Clone() Node {
	return &AssignmentNode{Target: clone(a.Target), Value: clone(a.Value)}
}

func NewAssignmentNode(target, value Node) *AssignmentNode {
	return &AssignmentNode{Target: target, Value: value}
}

// InvocationNode is a method call. Instance is nil for static calls.
type InvocationNode struct {
	Owner      string
	Name       string
	Descriptor string
	Instance   Node
	Arguments  Nodes
	Void       bool
}

func (*InvocationNode) node() {}

func (a *InvocationNode) Clone() Node {
	return &InvocationNode{
		Owner:      a.Owner,
		Name:       a.Name,
		Descriptor: a.Descriptor,
		Instance:   clone(a.Instance),
		Arguments:  a.Arguments.Clone(),
		Void:       a.Void,
	}
}

func NewInvocationNode(owner, name, descriptor string, instance Node, arguments Nodes, void bool) *InvocationNode {
	return &InvocationNode{
		Owner:      owner,
		Name:       name,
		Descriptor: descriptor,
		Instance:   instance,
		Arguments:  arguments,
		Void:       void,
	}
}

// IfNode is a conditional jump to the block Target.
type IfNode struct {
	Condition Node
	Target    int
}

func (*IfNode) node() {}

func (a *IfNode) Clone() Node {
	return &IfNode{Condition: clone(a.Condition), Target: a.Target}
}

func NewIfNode(condition Node, target int) *IfNode {
	return &IfNode{Condition: condition, Target: target}
}

type ExitKind byte

const (
	ExitReturn ExitKind = iota
	ExitThrow
)

// ExitNode leaves the method. Value is nil for a void return.
type ExitNode struct {
	Kind  ExitKind
	Value Node
}

func (*ExitNode) node() {}

func (a *ExitNode) Clone() Node {
	return &ExitNode{Kind: a.Kind, Value: clone(a.Value)}
}

func NewExitNode(kind ExitKind, value Node) *ExitNode {
	return &ExitNode{Kind: kind, Value: value}
}

// FieldNode accesses a field. Instance is nil for static fields.
type FieldNode struct {
	Owner    string
	Name     string
	Instance Node
}

func (*FieldNode) node() {}

func (a *FieldNode) Clone() Node {
	return &FieldNode{Owner: a.Owner, Name: a.Name, Instance: clone(a.Instance)}
}

func NewFieldNode(owner, name string, instance Node) *FieldNode {
	return &FieldNode{Owner: owner, Name: name, Instance: instance}
}

type ArrayNode struct {
	Array Node
	Index Node
}

func (*ArrayNode) node() {}

func (a *ArrayNode) Clone() Node {
	return &ArrayNode{Array: clone(a.Array), Index: clone(a.Index)}
}

func NewArrayNode(array, index Node) *ArrayNode {
	return &ArrayNode{Array: array, Index: index}
}

func clone(n Node) Node {
	if n == nil {
		return n
	}
	return n.Clone()
}

// Clone is the nil-safe form of Node.Clone, suitable as a stack cloner.
func Clone(n Node) Node {
	return clone(n)
}

// IsLeaf reports whether n is a value that was pushed as is rather than
// composed from operands.
func IsLeaf(n Node) bool {
	switch n.(type) {
	case *ConstNode, *StringNode, *NullNode, *VarNode:
		return true
	default:
		return false
	}
}

type Nodes []Node

func (a Nodes) Clone() Nodes {
	if a == nil {
		return nil
	}
	return a.Map(clone)
}

func (a Nodes) Map(f func(Node) Node) Nodes {
	out := make(Nodes, 0, len(a))
	for _, v := range a {
		out = append(out, f(v))
	}
	return out
}
