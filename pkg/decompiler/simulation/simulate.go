package simulation

import (
	"github.com/pkg/errors"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/exprent"
	"github.com/wavesplatform/godecompiler/pkg/errs"
)

var ErrUnknownOpcode = errors.New("unknown opcode")

// Simulate runs the instructions of one block against entry and returns the
// completed statements with the residual stack. The entry stack is consumed;
// pass a duplicate if the caller still needs it. A nil entry means an empty stack.
//
// Value producers push a node; operand consumers pop their operands, the
// deepest one being the first operand, and push the composed node.
// Instructions without a result (stores, jumps, void calls, exits) append
// their node to the statement list directly.
func Simulate(instructions []Instruction, entry *exprent.Stack) (*BlockResult, error) {
	r := NewBlockResult(entry)
	for _, ins := range instructions {
		if err := r.step(ins); err != nil {
			return nil, errs.Extendf(err, "%s at offset %d", ins.Op, ins.Offset)
		}
	}
	return r, nil
}

func (r *BlockResult) step(ins Instruction) error {
	st := r.stack
	switch ins.Op {
	case OpNop, OpGoto:
		return nil
	case OpConst:
		st.Push(exprent.NewConstNode(ins.Value))
	case OpLdc:
		st.Push(exprent.NewStringNode(ins.Text))
	case OpNull:
		st.Push(exprent.NewNullNode())
	case OpLoad:
		st.Push(exprent.NewVarNode(int(ins.Value)))
	case OpStore:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		r.append(exprent.NewAssignmentNode(exprent.NewVarNode(int(ins.Value)), v))
	case OpAdd, OpSub, OpMul, OpDiv, OpRem, OpAnd, OpOr, OpXor, OpShl, OpShr, OpUshr, OpCmp:
		ops, err := st.PopN(2)
		if err != nil {
			return err
		}
		st.Push(exprent.NewBinaryNode(binaryOperators[ins.Op], ops[0], ops[1]))
	case OpNeg:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		st.Push(exprent.NewUnaryNode(exprent.OpNeg, v))
	case OpIfEQ, OpIfNE, OpIfLT, OpIfGE, OpIfGT, OpIfLE:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		cond := exprent.NewBinaryNode(conditions[ins.Op], v, exprent.NewConstNode(0))
		r.append(exprent.NewIfNode(cond, int(ins.Value)))
	case OpIfCmpEQ, OpIfCmpNE, OpIfCmpLT, OpIfCmpGE, OpIfCmpGT, OpIfCmpLE:
		ops, err := st.PopN(2)
		if err != nil {
			return err
		}
		cond := exprent.NewBinaryNode(conditions[ins.Op], ops[0], ops[1])
		r.append(exprent.NewIfNode(cond, int(ins.Value)))
	case OpInvoke:
		return r.invoke(ins)
	case OpGetField:
		var instance exprent.Node
		if !ins.Static {
			v, err := st.Pop()
			if err != nil {
				return err
			}
			instance = v
		}
		st.Push(exprent.NewFieldNode(ins.Owner, ins.Name, instance))
	case OpPutField:
		n := 2
		if ins.Static {
			n = 1
		}
		ops, err := st.PopN(n)
		if err != nil {
			return err
		}
		var instance exprent.Node
		if !ins.Static {
			instance = ops[0]
		}
		field := exprent.NewFieldNode(ins.Owner, ins.Name, instance)
		r.append(exprent.NewAssignmentNode(field, ops[n-1]))
	case OpArrayLoad:
		ops, err := st.PopN(2)
		if err != nil {
			return err
		}
		st.Push(exprent.NewArrayNode(ops[0], ops[1]))
	case OpArrayStore:
		ops, err := st.PopN(3)
		if err != nil {
			return err
		}
		r.append(exprent.NewAssignmentNode(exprent.NewArrayNode(ops[0], ops[1]), ops[2]))
	case OpReturn:
		var v exprent.Node
		if !ins.Void {
			p, err := st.Pop()
			if err != nil {
				return err
			}
			v = p
		}
		r.append(exprent.NewExitNode(exprent.ExitReturn, v))
	case OpThrow:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		r.append(exprent.NewExitNode(exprent.ExitThrow, v))
	case OpPop:
		v, err := st.Pop()
		if err != nil {
			return err
		}
		// A discarded call result still has to be executed.
		if _, ok := v.(*exprent.InvocationNode); ok {
			r.append(v)
		}
	case OpDup:
		v, err := st.Peek(0)
		if err != nil {
			return err
		}
		st.Push(exprent.Clone(v))
	case OpSwap:
		ops, err := st.PopN(2)
		if err != nil {
			return err
		}
		st.Push(ops[1])
		st.Push(ops[0])
	case OpStatementEnd:
		return r.flush()
	default:
		return errors.Wrapf(ErrUnknownOpcode, "opcode %d", byte(ins.Op))
	}
	return nil
}

func (r *BlockResult) invoke(ins Instruction) error {
	if ins.Argc < 0 {
		return errors.Errorf("negative argument count %d", ins.Argc)
	}
	n := ins.Argc
	if !ins.Static {
		n++
	}
	ops, err := r.stack.PopN(n)
	if err != nil {
		return err
	}
	var instance exprent.Node
	args := exprent.Nodes(ops)
	if !ins.Static {
		instance = ops[0]
		args = args[1:]
	}
	call := exprent.NewInvocationNode(ins.Owner, ins.Name, ins.Descriptor, instance, args, ins.Void)
	if ins.Void {
		r.append(call)
		return nil
	}
	r.stack.Push(call)
	return nil
}

// flush moves the topmost composed node from the stack to the statement
// list. Plain values below and above it stay where they are. A stack
// holding only plain values is left untouched.
func (r *BlockResult) flush() error {
	for i := r.stack.Size() - 1; i >= 0; i-- {
		n, err := r.stack.Get(i)
		if err != nil {
			return err
		}
		if exprent.IsLeaf(n) {
			continue
		}
		if _, err := r.stack.Remove(i); err != nil {
			return err
		}
		r.append(n)
		return nil
	}
	return nil
}
