package ir

import "fmt"

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpNotEq BinaryOp = iota
	OpEq
	OpGt
	OpLt
	OpGe
	OpLe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpSar
)

func (op BinaryOp) String() string {
	switch op {
	case OpNotEq:
		return "ne"
	case OpEq:
		return "eq"
	case OpGt:
		return "gt"
	case OpLt:
		return "lt"
	case OpGe:
		return "ge"
	case OpLe:
		return "le"
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpXor:
		return "xor"
	case OpShl:
		return "shl"
	case OpShr:
		return "shr"
	case OpSar:
		return "sar"
	default:
		return fmt.Sprintf("BinaryOp(%d)", op)
	}
}

// IsComparison reports whether the operator yields a 0/1 result.
func (op BinaryOp) IsComparison() bool {
	switch op {
	case OpNotEq, OpEq, OpGt, OpLt, OpGe, OpLe:
		return true
	default:
		return false
	}
}
