package ir

import (
	"fmt"

	"crest/internal/types"
)

// LocalBuilder constructs values inside one function's DFG. Every
// terminal call computes the result type from its operands, allocates
// the handle and payload, registers the new value as a user of each
// operand, and returns the handle. It never touches the Layout.
//
// All checks run before the handle is allocated; a failed call leaves
// the graph unchanged.
type LocalBuilder struct {
	g       *DataFlowGraph
	replace Value // when valid, the terminal call swaps this value's payload
}

// Integer builds an i32 literal constant.
func (b *LocalBuilder) Integer(v int32) (Value, error) {
	return b.commit(&ValueData{
		Type:    b.g.tys.Builtins().Int32,
		Kind:    KindInteger,
		Integer: IntegerVal{Value: v},
	})
}

// ZeroInit builds a zero-initializer constant of the given type.
func (b *LocalBuilder) ZeroInit(ty types.TypeID) (Value, error) {
	if _, ok := b.g.tys.Lookup(ty); !ok {
		return NoValue, fmt.Errorf("%w: zeroinit of invalid type", ErrTypeMismatch)
	}
	return b.commit(&ValueData{Type: ty, Kind: KindZeroInit})
}

// Undef builds an undefined constant of the given type.
func (b *LocalBuilder) Undef(ty types.TypeID) (Value, error) {
	if _, ok := b.g.tys.Lookup(ty); !ok {
		return NoValue, fmt.Errorf("%w: undef of invalid type", ErrTypeMismatch)
	}
	return b.commit(&ValueData{Type: ty, Kind: KindUndef})
}

// Aggregate builds an aggregate constant; all elements must be constants
// of one type.
func (b *LocalBuilder) Aggregate(elems []Value) (Value, error) {
	elemTys := make([]types.TypeID, len(elems))
	for i, e := range elems {
		d, err := b.operand(e)
		if err != nil {
			return NoValue, err
		}
		if !d.IsConst() {
			return NoValue, fmt.Errorf("%w: aggregate element %d is not a constant", ErrTypeMismatch, e)
		}
		elemTys[i] = d.Type
	}
	ty, err := aggregateResult(b.g.tys, elemTys)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:      ty,
		Kind:      KindAggregate,
		Aggregate: AggregateVal{Elems: append([]Value(nil), elems...)},
	})
}

// FuncArgRef builds a reference to the function argument at index.
func (b *LocalBuilder) FuncArgRef(index int, ty types.TypeID) (Value, error) {
	if index < 0 {
		return NoValue, fmt.Errorf("%w: negative argument index", ErrTypeMismatch)
	}
	return b.commit(&ValueData{
		Type:       ty,
		Kind:       KindFuncArgRef,
		FuncArgRef: FuncArgRefVal{Index: index},
	})
}

// BlockArgRef builds a reference to the block parameter at index.
func (b *LocalBuilder) BlockArgRef(index int, ty types.TypeID) (Value, error) {
	if index < 0 {
		return NoValue, fmt.Errorf("%w: negative parameter index", ErrTypeMismatch)
	}
	return b.commit(&ValueData{
		Type:        ty,
		Kind:        KindBlockArgRef,
		BlockArgRef: BlockArgRefVal{Index: index},
	})
}

// Alloc builds a stack allocation; the result type is a pointer to ty.
func (b *LocalBuilder) Alloc(ty types.TypeID) (Value, error) {
	res, err := allocResult(b.g.tys, ty)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{Type: res, Kind: KindAlloc})
}

// Load builds a load through the pointer src.
func (b *LocalBuilder) Load(src Value) (Value, error) {
	sd, err := b.operand(src)
	if err != nil {
		return NoValue, err
	}
	res, err := loadResult(b.g.tys, sd.Type)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{Type: res, Kind: KindLoad, Load: LoadVal{Src: src}})
}

// Store builds a store of val through the pointer dest; the result type
// is unit.
func (b *LocalBuilder) Store(val, dest Value) (Value, error) {
	vd, err := b.operand(val)
	if err != nil {
		return NoValue, err
	}
	dd, err := b.operand(dest)
	if err != nil {
		return NoValue, err
	}
	if err := storeCheck(b.g.tys, vd.Type, dd.Type); err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:  b.g.tys.Builtins().Unit,
		Kind:  KindStore,
		Store: StoreVal{Value: val, Dest: dest},
	})
}

// GetPtr builds pointer arithmetic on src.
func (b *LocalBuilder) GetPtr(src, index Value) (Value, error) {
	sd, err := b.operand(src)
	if err != nil {
		return NoValue, err
	}
	id, err := b.operand(index)
	if err != nil {
		return NoValue, err
	}
	res, err := getPtrResult(b.g.tys, sd.Type, id.Type)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:   res,
		Kind:   KindGetPtr,
		GetPtr: GetPtrVal{Src: src, Index: index},
	})
}

// GetElemPtr builds an element pointer into the array src points to.
func (b *LocalBuilder) GetElemPtr(src, index Value) (Value, error) {
	sd, err := b.operand(src)
	if err != nil {
		return NoValue, err
	}
	id, err := b.operand(index)
	if err != nil {
		return NoValue, err
	}
	res, err := getElemPtrResult(b.g.tys, sd.Type, id.Type)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:       res,
		Kind:       KindGetElemPtr,
		GetElemPtr: GetElemPtrVal{Src: src, Index: index},
	})
}

// Binary builds a binary operation; operand types must match.
func (b *LocalBuilder) Binary(op BinaryOp, lhs, rhs Value) (Value, error) {
	ld, err := b.operand(lhs)
	if err != nil {
		return NoValue, err
	}
	rd, err := b.operand(rhs)
	if err != nil {
		return NoValue, err
	}
	res, err := binaryResult(b.g.tys, op, ld.Type, rd.Type)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:   res,
		Kind:   KindBinary,
		Binary: BinaryVal{Op: op, LHS: lhs, RHS: rhs},
	})
}

// Branch builds a conditional branch to two argument-less blocks.
func (b *LocalBuilder) Branch(cond Value, trueBB, falseBB BasicBlock) (Value, error) {
	return b.BranchWithArgs(cond, trueBB, falseBB, nil, nil)
}

// BranchWithArgs builds a conditional branch supplying block arguments.
// Argument count and types must match each target's parameter list.
func (b *LocalBuilder) BranchWithArgs(cond Value, trueBB, falseBB BasicBlock, trueArgs, falseArgs []Value) (Value, error) {
	cd, err := b.operand(cond)
	if err != nil {
		return NoValue, err
	}
	if err := requireInt32(b.g.tys, cd.Type, "branch condition"); err != nil {
		return NoValue, err
	}
	if err := b.checkTarget(trueBB, trueArgs); err != nil {
		return NoValue, err
	}
	if err := b.checkTarget(falseBB, falseArgs); err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type: b.g.tys.Builtins().Unit,
		Kind: KindBranch,
		Branch: BranchVal{
			Cond:      cond,
			TrueBB:    trueBB,
			FalseBB:   falseBB,
			TrueArgs:  append([]Value(nil), trueArgs...),
			FalseArgs: append([]Value(nil), falseArgs...),
		},
	})
}

// Jump builds an unconditional jump to an argument-less block.
func (b *LocalBuilder) Jump(target BasicBlock) (Value, error) {
	return b.JumpWithArgs(target, nil)
}

// JumpWithArgs builds an unconditional jump supplying block arguments.
func (b *LocalBuilder) JumpWithArgs(target BasicBlock, args []Value) (Value, error) {
	if err := b.checkTarget(target, args); err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type: b.g.tys.Builtins().Unit,
		Kind: KindJump,
		Jump: JumpVal{Target: target, Args: append([]Value(nil), args...)},
	})
}

// Call builds a call. The callee resolves only against the program's
// function table; argument types must match the callee's parameters.
func (b *LocalBuilder) Call(callee Function, args []Value) (Value, error) {
	fd, ok := b.g.prog.FuncData(callee)
	if !ok {
		return NoValue, fmt.Errorf("%w: callee %d", ErrNotFound, callee)
	}
	if len(args) != len(fd.ParamTypes()) {
		return NoValue, fmt.Errorf("%w: call to %s with %d args, want %d",
			ErrArgMismatch, fd.Name(), len(args), len(fd.ParamTypes()))
	}
	for i, a := range args {
		ad, err := b.operand(a)
		if err != nil {
			return NoValue, err
		}
		if ad.Type != fd.ParamTypes()[i] {
			return NoValue, fmt.Errorf("%w: call to %s arg %d is %s, want %s",
				ErrArgMismatch, fd.Name(), i,
				b.g.tys.Format(ad.Type), b.g.tys.Format(fd.ParamTypes()[i]))
		}
	}
	return b.commit(&ValueData{
		Type: fd.RetType(),
		Kind: KindCall,
		Call: CallVal{Callee: callee, Args: append([]Value(nil), args...)},
	})
}

// Ret builds a return. Pass NoValue for a bare ret in a unit function.
func (b *LocalBuilder) Ret(v Value) (Value, error) {
	unit := b.g.tys.Builtins().Unit
	if v.IsValid() {
		vd, err := b.operand(v)
		if err != nil {
			return NoValue, err
		}
		if vd.Type != b.g.ret {
			return NoValue, fmt.Errorf("%w: ret %s from function returning %s",
				ErrTypeMismatch, b.g.tys.Format(vd.Type), b.g.tys.Format(b.g.ret))
		}
	} else if b.g.ret != unit {
		return NoValue, fmt.Errorf("%w: bare ret from function returning %s",
			ErrTypeMismatch, b.g.tys.Format(b.g.ret))
	}
	return b.commit(&ValueData{
		Type:   unit,
		Kind:   KindReturn,
		Return: ReturnVal{Value: v},
	})
}

// Raw stores a caller-assembled payload after checking its operands and
// scope. GlobalAlloc is rejected at function scope.
func (b *LocalBuilder) Raw(d ValueData) (Value, error) {
	if d.Kind == KindGlobalAlloc {
		return NoValue, fmt.Errorf("%w: global_alloc inside a function", ErrWrongScope)
	}
	for _, op := range d.Operands() {
		if _, err := b.operand(op); err != nil {
			return NoValue, err
		}
	}
	switch d.Kind {
	case KindBranch:
		if err := b.checkTarget(d.Branch.TrueBB, d.Branch.TrueArgs); err != nil {
			return NoValue, err
		}
		if err := b.checkTarget(d.Branch.FalseBB, d.Branch.FalseArgs); err != nil {
			return NoValue, err
		}
	case KindJump:
		if err := b.checkTarget(d.Jump.Target, d.Jump.Args); err != nil {
			return NoValue, err
		}
	}
	d.UsedBy = nil
	return b.commit(&d)
}

// operand resolves an operand handle: a local of this function or any
// global. Locals of other functions do not resolve here and are
// rejected.
func (b *LocalBuilder) operand(v Value) (*ValueData, error) {
	if v.IsGlobal() {
		d, ok := b.g.globals.get(v)
		if !ok {
			return nil, fmt.Errorf("%w: global value %d", ErrNotFound, v)
		}
		return d, nil
	}
	d, ok := b.g.values[v]
	if !ok {
		return nil, fmt.Errorf("%w: value %d", ErrForeignValue, v)
	}
	return d, nil
}

// checkTarget validates a jump/branch target and its argument list
// against the target block's declared parameters.
func (b *LocalBuilder) checkTarget(bb BasicBlock, args []Value) error {
	bd, ok := b.g.bbs[bb]
	if !ok {
		return fmt.Errorf("%w: basic block %d", ErrNotFound, bb)
	}
	if len(args) != len(bd.Params) {
		return fmt.Errorf("%w: block %s takes %d args, got %d",
			ErrArgMismatch, bd.Name, len(bd.Params), len(args))
	}
	for i, a := range args {
		ad, err := b.operand(a)
		if err != nil {
			return err
		}
		want := b.g.values[bd.Params[i]].Type
		if ad.Type != want {
			return fmt.Errorf("%w: block %s arg %d is %s, want %s",
				ErrArgMismatch, bd.Name, i, b.g.tys.Format(ad.Type), b.g.tys.Format(want))
		}
	}
	return nil
}

func (b *LocalBuilder) commit(d *ValueData) (Value, error) {
	if b.replace.IsValid() {
		if b.replace.IsGlobal() {
			return NoValue, fmt.Errorf("%w: cannot replace global value %d", ErrWrongScope, b.replace)
		}
		old, ok := b.g.values[b.replace]
		if !ok {
			return NoValue, fmt.Errorf("%w: value %d", ErrNotFound, b.replace)
		}
		b.g.deregisterUses(b.replace, old)
		d.Name = old.Name
		d.UsedBy = old.UsedBy
		b.g.values[b.replace] = d
		b.g.registerUses(b.replace, d)
		return b.replace, nil
	}
	v := b.g.alloc.newValue(false)
	d.UsedBy = make(map[Value]struct{})
	b.g.values[v] = d
	b.g.registerUses(v, d)
	return v, nil
}

// BlockBuilder constructs basic blocks in one function's DFG.
type BlockBuilder struct {
	g *DataFlowGraph
}

// BasicBlock allocates a parameter-less block. The name is optional.
func (b *BlockBuilder) BasicBlock(name string) (BasicBlock, error) {
	return b.BasicBlockWithParams(name, nil)
}

// BasicBlockWithParams allocates a block with declared parameters; each
// parameter becomes a BlockArgRef value predecessors must supply an
// argument for.
func (b *BlockBuilder) BasicBlockWithParams(name string, params []Param) (BasicBlock, error) {
	resolved, err := b.g.names.assign(name)
	if err != nil {
		return NoBB, err
	}
	paramVals := make([]Value, len(params))
	for i, pr := range params {
		pname, nerr := b.g.names.assign(pr.Name)
		if nerr != nil {
			b.g.names.release(resolved)
			for _, pv := range paramVals[:i] {
				b.g.names.release(b.g.values[pv].Name)
				delete(b.g.values, pv)
			}
			return NoBB, nerr
		}
		v := b.g.alloc.newValue(false)
		b.g.values[v] = &ValueData{
			Type:        pr.Type,
			Name:        pname,
			Kind:        KindBlockArgRef,
			BlockArgRef: BlockArgRefVal{Index: i},
			UsedBy:      make(map[Value]struct{}),
		}
		paramVals[i] = v
	}
	bb := b.g.alloc.newBB()
	b.g.bbs[bb] = &BasicBlockData{
		Name:   resolved,
		Params: paramVals,
		UsedBy: make(map[Value]struct{}),
	}
	return bb, nil
}
