package ir

import (
	"fmt"

	"crest/internal/types"
)

// ValueKind enumerates instruction and constant kinds.
type ValueKind uint8

const (
	// KindInteger represents an integer literal constant.
	KindInteger ValueKind = iota
	// KindZeroInit represents a zero-initializer constant.
	KindZeroInit
	// KindUndef represents an undefined constant.
	KindUndef
	// KindAggregate represents an aggregate constant.
	KindAggregate
	// KindFuncArgRef represents a reference to a function argument.
	KindFuncArgRef
	// KindBlockArgRef represents a reference to a basic block parameter.
	KindBlockArgRef
	// KindAlloc represents a local memory allocation.
	KindAlloc
	// KindGlobalAlloc represents a global memory allocation.
	KindGlobalAlloc
	// KindLoad represents a memory load.
	KindLoad
	// KindStore represents a memory store.
	KindStore
	// KindGetPtr represents pointer arithmetic on a pointer base.
	KindGetPtr
	// KindGetElemPtr represents element pointer calculation on an array base.
	KindGetElemPtr
	// KindBinary represents a binary operation.
	KindBinary
	// KindBranch represents a conditional branch.
	KindBranch
	// KindJump represents an unconditional jump.
	KindJump
	// KindCall represents a function call.
	KindCall
	// KindReturn represents a function return.
	KindReturn
)

func (k ValueKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindZeroInit:
		return "zeroinit"
	case KindUndef:
		return "undef"
	case KindAggregate:
		return "aggregate"
	case KindFuncArgRef:
		return "func_arg_ref"
	case KindBlockArgRef:
		return "block_arg_ref"
	case KindAlloc:
		return "alloc"
	case KindGlobalAlloc:
		return "global_alloc"
	case KindLoad:
		return "load"
	case KindStore:
		return "store"
	case KindGetPtr:
		return "getptr"
	case KindGetElemPtr:
		return "getelemptr"
	case KindBinary:
		return "binary"
	case KindBranch:
		return "br"
	case KindJump:
		return "jump"
	case KindCall:
		return "call"
	case KindReturn:
		return "ret"
	default:
		return fmt.Sprintf("ValueKind(%d)", k)
	}
}

// ValueData is the payload of one instruction or constant.
type ValueData struct {
	Type types.TypeID
	// Name is the display name including its sigil (@stable or %temp),
	// empty for unnamed values.
	Name string
	Kind ValueKind

	Integer     IntegerVal
	Aggregate   AggregateVal
	FuncArgRef  FuncArgRefVal
	BlockArgRef BlockArgRefVal
	GlobalAlloc GlobalAllocVal
	Load        LoadVal
	Store       StoreVal
	GetPtr      GetPtrVal
	GetElemPtr  GetElemPtrVal
	Binary      BinaryVal
	Branch      BranchVal
	Jump        JumpVal
	Call        CallVal
	Return      ReturnVal

	// UsedBy is the set of values that hold this one as an operand.
	// Maintained exclusively by the arenas.
	UsedBy map[Value]struct{}
}

// IntegerVal represents an integer literal constant.
type IntegerVal struct {
	Value int32
}

// AggregateVal represents an aggregate constant.
type AggregateVal struct {
	Elems []Value
}

// FuncArgRefVal represents a reference to a function argument.
type FuncArgRefVal struct {
	Index int
}

// BlockArgRefVal represents a reference to a basic block parameter.
type BlockArgRefVal struct {
	Index int
}

// GlobalAllocVal represents a global allocation with its initializer.
type GlobalAllocVal struct {
	Init Value
}

// LoadVal represents a memory load.
type LoadVal struct {
	Src Value
}

// StoreVal represents a memory store.
type StoreVal struct {
	Value Value
	Dest  Value
}

// GetPtrVal represents pointer arithmetic on a pointer base.
type GetPtrVal struct {
	Src   Value
	Index Value
}

// GetElemPtrVal represents element pointer calculation on an array base.
type GetElemPtrVal struct {
	Src   Value
	Index Value
}

// BinaryVal represents a binary operation.
type BinaryVal struct {
	Op  BinaryOp
	LHS Value
	RHS Value
}

// BranchVal represents a conditional branch with optional block arguments.
type BranchVal struct {
	Cond      Value
	TrueBB    BasicBlock
	FalseBB   BasicBlock
	TrueArgs  []Value
	FalseArgs []Value
}

// JumpVal represents an unconditional jump with optional block arguments.
type JumpVal struct {
	Target BasicBlock
	Args   []Value
}

// CallVal represents a function call.
type CallVal struct {
	Callee Function
	Args   []Value
}

// ReturnVal represents a function return; Value is NoValue for a bare ret.
type ReturnVal struct {
	Value Value
}

// Operands returns every value handle this payload references, in a fixed
// per-kind order.
func (d *ValueData) Operands() []Value {
	switch d.Kind {
	case KindAggregate:
		return append([]Value(nil), d.Aggregate.Elems...)
	case KindGlobalAlloc:
		return []Value{d.GlobalAlloc.Init}
	case KindLoad:
		return []Value{d.Load.Src}
	case KindStore:
		return []Value{d.Store.Value, d.Store.Dest}
	case KindGetPtr:
		return []Value{d.GetPtr.Src, d.GetPtr.Index}
	case KindGetElemPtr:
		return []Value{d.GetElemPtr.Src, d.GetElemPtr.Index}
	case KindBinary:
		return []Value{d.Binary.LHS, d.Binary.RHS}
	case KindBranch:
		ops := []Value{d.Branch.Cond}
		ops = append(ops, d.Branch.TrueArgs...)
		ops = append(ops, d.Branch.FalseArgs...)
		return ops
	case KindJump:
		return append([]Value(nil), d.Jump.Args...)
	case KindCall:
		return append([]Value(nil), d.Call.Args...)
	case KindReturn:
		if d.Return.Value.IsValid() {
			return []Value{d.Return.Value}
		}
		return nil
	default:
		return nil
	}
}

// BlockTargets returns the basic blocks this payload jumps or branches to.
func (d *ValueData) BlockTargets() []BasicBlock {
	switch d.Kind {
	case KindBranch:
		return []BasicBlock{d.Branch.TrueBB, d.Branch.FalseBB}
	case KindJump:
		return []BasicBlock{d.Jump.Target}
	default:
		return nil
	}
}

// IsTerminator reports whether the value ends control flow in a block.
func (d *ValueData) IsTerminator() bool {
	switch d.Kind {
	case KindBranch, KindJump, KindReturn:
		return true
	default:
		return false
	}
}

// IsConst reports whether the value is a compile-time constant. Constants
// are materialized inline at use sites rather than printed as instructions.
func (d *ValueData) IsConst() bool {
	switch d.Kind {
	case KindInteger, KindZeroInit, KindUndef, KindAggregate:
		return true
	default:
		return false
	}
}
