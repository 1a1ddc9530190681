package simulation

import (
	"github.com/wavesplatform/godecompiler/pkg/decompiler/exprent"
)

// Block is a basic block: a straight-line run of instructions with its
// regular successors and exception handlers, both given as block ids.
type Block struct {
	ID           int           `json:"id"`
	Instructions []Instruction `json:"instructions"`
	Successors   []int         `json:"successors,omitempty"`
	Handlers     []int         `json:"handlers,omitempty"`
}

// BlockResult is the outcome of simulating one block: the statements it
// completed, in bytecode order, and the operand stack left at its exit.
type BlockResult struct {
	exprents exprent.Nodes
	stack    *exprent.Stack
}

// NewBlockResult wraps an entry stack. A nil stack is replaced by an empty one.
func NewBlockResult(entry *exprent.Stack) *BlockResult {
	if entry == nil {
		entry = exprent.NewStack()
	}
	return &BlockResult{stack: entry}
}

func (r *BlockResult) Exprents() exprent.Nodes {
	return r.exprents
}

func (r *BlockResult) Stack() *exprent.Stack {
	return r.stack
}

func (r *BlockResult) append(n exprent.Node) {
	r.exprents = append(r.exprents, n)
}

// Duplicate returns an independent result. The statement list is copied and
// the residual stack is deep-copied, so successors may rewrite operand trees
// without affecting each other.
func (r *BlockResult) Duplicate() *BlockResult {
	list := make(exprent.Nodes, len(r.exprents))
	copy(list, r.exprents)
	st := exprent.NewStack()
	for _, n := range r.stack.Items() {
		st.Push(exprent.Clone(n))
	}
	return &BlockResult{exprents: list, stack: st}
}
