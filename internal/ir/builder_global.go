package ir

import (
	"fmt"

	"crest/internal/types"
)

// GlobalBuilder constructs values in the program's global pool. Only
// the kinds legal at global scope are available: Integer, ZeroInit,
// Undef, Aggregate and GlobalAlloc. Everything with control flow or
// function-local semantics is rejected before a handle is allocated.
type GlobalBuilder struct {
	p *Program
}

// Integer builds a global i32 literal constant.
func (b *GlobalBuilder) Integer(v int32) (Value, error) {
	return b.commit(&ValueData{
		Type:    b.p.tys.Builtins().Int32,
		Kind:    KindInteger,
		Integer: IntegerVal{Value: v},
	})
}

// ZeroInit builds a global zero-initializer constant.
func (b *GlobalBuilder) ZeroInit(ty types.TypeID) (Value, error) {
	if _, ok := b.p.tys.Lookup(ty); !ok {
		return NoValue, fmt.Errorf("%w: zeroinit of invalid type", ErrTypeMismatch)
	}
	return b.commit(&ValueData{Type: ty, Kind: KindZeroInit})
}

// Undef builds a global undefined constant.
func (b *GlobalBuilder) Undef(ty types.TypeID) (Value, error) {
	if _, ok := b.p.tys.Lookup(ty); !ok {
		return NoValue, fmt.Errorf("%w: undef of invalid type", ErrTypeMismatch)
	}
	return b.commit(&ValueData{Type: ty, Kind: KindUndef})
}

// Aggregate builds a global aggregate constant from global constants.
func (b *GlobalBuilder) Aggregate(elems []Value) (Value, error) {
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
	ty, err := aggregateResult(b.p.tys, elemTys)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:      ty,
		Kind:      KindAggregate,
		Aggregate: AggregateVal{Elems: append([]Value(nil), elems...)},
	})
}

// GlobalAlloc builds a global allocation initialized with the global
// constant init; the result type is a pointer to init's type.
func (b *GlobalBuilder) GlobalAlloc(init Value) (Value, error) {
	d, err := b.operand(init)
	if err != nil {
		return NoValue, err
	}
	if !d.IsConst() {
		return NoValue, fmt.Errorf("%w: global alloc initializer %d is not a constant", ErrTypeMismatch, init)
	}
	res, err := allocResult(b.p.tys, d.Type)
	if err != nil {
		return NoValue, err
	}
	return b.commit(&ValueData{
		Type:        res,
		Kind:        KindGlobalAlloc,
		GlobalAlloc: GlobalAllocVal{Init: init},
	})
}

// Raw stores a caller-assembled payload after checking that its kind is
// legal at global scope and its operands are globals.
func (b *GlobalBuilder) Raw(d ValueData) (Value, error) {
	switch d.Kind {
	case KindInteger, KindZeroInit, KindUndef, KindAggregate, KindGlobalAlloc:
	default:
		return NoValue, fmt.Errorf("%w: %s at global scope", ErrWrongScope, d.Kind)
	}
	for _, op := range d.Operands() {
		if _, err := b.operand(op); err != nil {
			return NoValue, err
		}
	}
	d.UsedBy = nil
	return b.commit(&d)
}

// operand resolves a global operand; locals are never legal here.
func (b *GlobalBuilder) operand(v Value) (*ValueData, error) {
	if !v.IsGlobal() {
		return nil, fmt.Errorf("%w: local value %d at global scope", ErrWrongScope, v)
	}
	d, ok := b.p.pool.get(v)
	if !ok {
		return nil, fmt.Errorf("%w: global value %d", ErrNotFound, v)
	}
	return d, nil
}

func (b *GlobalBuilder) commit(d *ValueData) (Value, error) {
	v := b.p.alloc.newValue(true)
	d.UsedBy = make(map[Value]struct{})
	b.p.pool.put(v, d)
	for _, op := range d.Operands() {
		b.p.pool.addUse(op, v)
	}
	return v, nil
}
