package exprent

type Operator byte

const (
	OpAdd Operator = iota
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
	OpCmp
	OpEQ
	OpNE
	OpLT
	OpGE
	OpGT
	OpLE
	OpNeg
)

var operatorSymbols = map[Operator]string{
	OpAdd:  "+",
	OpSub:  "-",
	OpMul:  "*",
	OpDiv:  "/",
	OpRem:  "%",
	OpAnd:  "&",
	OpOr:   "|",
	OpXor:  "^",
	OpShl:  "<<",
	OpShr:  ">>",
	OpUshr: ">>>",
	OpCmp:  "cmp",
	OpEQ:   "==",
	OpNE:   "!=",
	OpLT:   "<",
	OpGE:   ">=",
	OpGT:   ">",
	OpLE:   "<=",
	OpNeg:  "-",
}

func (o Operator) String() string {
	if s, ok := operatorSymbols[o]; ok {
		return s
	}
	return "?"
}

// Prefix reports whether the operator is rendered as a function call.
func (o Operator) Prefix() bool {
	return o == OpCmp
}

// Negate returns the inverse comparison. Non-comparison operators are returned unchanged.
func (o Operator) Negate() Operator {
	switch o {
	case OpEQ:
		return OpNE
	case OpNE:
		return OpEQ
	case OpLT:
		return OpGE
	case OpGE:
		return OpLT
	case OpGT:
		return OpLE
	case OpLE:
		return OpGT
	default:
		return o
	}
}
