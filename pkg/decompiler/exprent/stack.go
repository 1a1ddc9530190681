package exprent

import "github.com/wavesplatform/godecompiler/pkg/decompiler/stack"

// Stack is an operand stack of expression nodes.
type Stack = stack.ListStack[Node]

// NewStack returns an operand stack that removes popped nodes and deep-copies
// every node on Duplicate, so stacks handed to different branches never alias.
func NewStack() *Stack {
	return stack.NewCloning[Node](clone)
}

// NewScratchStack returns a working stack whose Pop only retreats the pointer,
// so speculatively popped nodes can be restored with SetPointer.
// Duplicate shares the nodes.
func NewScratchStack() *Stack {
	return stack.NewRetreating[Node]()
}
