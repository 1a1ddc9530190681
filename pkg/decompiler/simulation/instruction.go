package simulation

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/wavesplatform/godecompiler/pkg/decompiler/exprent"
)

type Opcode byte

const (
	OpNop Opcode = iota
	OpConst
	OpLdc
	OpNull
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUshr
	OpNeg
	OpCmp
	OpIfEQ
	OpIfNE
	OpIfLT
	OpIfGE
	OpIfGT
	OpIfLE
	OpIfCmpEQ
	OpIfCmpNE
	OpIfCmpLT
	OpIfCmpGE
	OpIfCmpGT
	OpIfCmpLE
	OpGoto
	OpInvoke
	OpGetField
	OpPutField
	OpArrayLoad
	OpArrayStore
	OpReturn
	OpThrow
	OpPop
	OpDup
	OpSwap
	OpStatementEnd
	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpNop:          "nop",
	OpConst:        "const",
	OpLdc:          "ldc",
	OpNull:         "null",
	OpLoad:         "load",
	OpStore:        "store",
	OpAdd:          "add",
	OpSub:          "sub",
	OpMul:          "mul",
	OpDiv:          "div",
	OpRem:          "rem",
	OpAnd:          "and",
	OpOr:           "or",
	OpXor:          "xor",
	OpShl:          "shl",
	OpShr:          "shr",
	OpUshr:         "ushr",
	OpNeg:          "neg",
	OpCmp:          "cmp",
	OpIfEQ:         "ifeq",
	OpIfNE:         "ifne",
	OpIfLT:         "iflt",
	OpIfGE:         "ifge",
	OpIfGT:         "ifgt",
	OpIfLE:         "ifle",
	OpIfCmpEQ:      "ifcmpeq",
	OpIfCmpNE:      "ifcmpne",
	OpIfCmpLT:      "ifcmplt",
	OpIfCmpGE:      "ifcmpge",
	OpIfCmpGT:      "ifcmpgt",
	OpIfCmpLE:      "ifcmple",
	OpGoto:         "goto",
	OpInvoke:       "invoke",
	OpGetField:     "getfield",
	OpPutField:     "putfield",
	OpArrayLoad:    "arrayload",
	OpArrayStore:   "arraystore",
	OpReturn:       "return",
	OpThrow:        "throw",
	OpPop:          "pop",
	OpDup:          "dup",
	OpSwap:         "swap",
	OpStatementEnd: "statementend",
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for i, n := range opcodeNames {
		m[n] = Opcode(i)
	}
	return m
}()

var binaryOperators = map[Opcode]exprent.Operator{
	OpAdd:  exprent.OpAdd,
	OpSub:  exprent.OpSub,
	OpMul:  exprent.OpMul,
	OpDiv:  exprent.OpDiv,
	OpRem:  exprent.OpRem,
	OpAnd:  exprent.OpAnd,
	OpOr:   exprent.OpOr,
	OpXor:  exprent.OpXor,
	OpShl:  exprent.OpShl,
	OpShr:  exprent.OpShr,
	OpUshr: exprent.OpUshr,
	OpCmp:  exprent.OpCmp,
}

var conditions = map[Opcode]exprent.Operator{
	OpIfEQ:    exprent.OpEQ,
	OpIfNE:    exprent.OpNE,
	OpIfLT:    exprent.OpLT,
	OpIfGE:    exprent.OpGE,
	OpIfGT:    exprent.OpGT,
	OpIfLE:    exprent.OpLE,
	OpIfCmpEQ: exprent.OpEQ,
	OpIfCmpNE: exprent.OpNE,
	OpIfCmpLT: exprent.OpLT,
	OpIfCmpGE: exprent.OpGE,
	OpIfCmpGT: exprent.OpGT,
	OpIfCmpLE: exprent.OpLE,
}

func (o Opcode) String() string {
	if o < opcodeCount {
		return opcodeNames[o]
	}
	return fmt.Sprintf("opcode(%d)", byte(o))
}

func (o Opcode) MarshalText() ([]byte, error) {
	if o >= opcodeCount {
		return nil, errors.Errorf("unknown opcode %d", byte(o))
	}
	return []byte(opcodeNames[o]), nil
}

func (o *Opcode) UnmarshalText(text []byte) error {
	op, err := ParseOpcode(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// ParseOpcode returns the opcode for a mnemonic such as "add" or "ifcmplt".
func ParseOpcode(name string) (Opcode, error) {
	op, ok := opcodeByName[name]
	if !ok {
		return 0, errors.Wrapf(ErrUnknownOpcode, "mnemonic %q", name)
	}
	return op, nil
}

// IsBranch reports whether the instruction may transfer control to another block.
func (o Opcode) IsBranch() bool {
	_, cond := conditions[o]
	return cond || o == OpGoto
}

// Instruction is one decoded stack-machine instruction.
// Operand fields are used depending on Op:
//   - const: Value
//   - ldc: Text
//   - load, store: Value is the local slot
//   - if*, goto: Value is the target block id
//   - invoke: Owner, Name, Descriptor, Argc, Void, Static
//   - getfield, putfield: Owner, Name, Static
//   - return: Void
type Instruction struct {
	Op         Opcode `json:"op"`
	Offset     int    `json:"offset"`
	Value      int64  `json:"value,omitempty"`
	Text       string `json:"text,omitempty"`
	Owner      string `json:"owner,omitempty"`
	Name       string `json:"name,omitempty"`
	Descriptor string `json:"descriptor,omitempty"`
	Argc       int    `json:"argc,omitempty"`
	Void       bool   `json:"void,omitempty"`
	Static     bool   `json:"static,omitempty"`
}

func (i Instruction) String() string {
	return fmt.Sprintf("%d: %s", i.Offset, i.Op)
}
