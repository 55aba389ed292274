package ir

import (
	"crest/internal/types"
)

// Handle-independent structural comparison: two programs (or functions)
// are equal when traversing them in declaration/layout order yields the
// same kinds, names, types, operand structure and order, regardless of
// the numeric handles involved.

// ProgramsEqual reports whether a and b are structurally equal.
func ProgramsEqual(a, b *Program) bool {
	ra := a.BorrowGlobals()
	defer ra()
	rb := b.BorrowGlobals()
	defer rb()

	if len(a.pool.order) != len(b.pool.order) || len(a.order) != len(b.order) {
		return false
	}
	gm := make(map[Value]Value, len(a.pool.order))
	for i, ga := range a.pool.order {
		gb := b.pool.order[i]
		if !globalsEqual(a, b, ga, gb, gm) {
			return false
		}
		gm[ga] = gb
	}
	for i, fa := range a.order {
		if !funcsEqual(a, b, a.funcs[fa], b.funcs[b.order[i]], gm) {
			return false
		}
	}
	return true
}

// FuncsEqual reports whether two functions are structurally equal,
// assuming any shared globals were created in the same order.
func FuncsEqual(ap, bp *Program, af, bf Function) bool {
	ad, aok := ap.FuncData(af)
	bd, bok := bp.FuncData(bf)
	if !aok || !bok {
		return false
	}
	ra := ap.BorrowGlobals()
	defer ra()
	rb := bp.BorrowGlobals()
	defer rb()

	gm := make(map[Value]Value)
	for i, ga := range ap.pool.order {
		if i >= len(bp.pool.order) {
			break
		}
		gm[ga] = bp.pool.order[i]
	}
	return funcsEqual(ap, bp, ad, bd, gm)
}

func globalsEqual(ap, bp *Program, ga, gb Value, gm map[Value]Value) bool {
	da := ap.pool.values[ga]
	db := bp.pool.values[gb]
	if da.Kind != db.Kind || da.Name != db.Name {
		return false
	}
	if !typesEqual(ap.tys, da.Type, bp.tys, db.Type) {
		return false
	}
	opsA, opsB := da.Operands(), db.Operands()
	if len(opsA) != len(opsB) {
		return false
	}
	for i, oa := range opsA {
		if gm[oa] != opsB[i] {
			return false
		}
	}
	return da.Kind != KindInteger || da.Integer.Value == db.Integer.Value
}

type funcCmp struct {
	ap, bp *Program
	ad, bd *FunctionData
	gm     map[Value]Value
	vm     map[Value]Value
	bm     map[BasicBlock]BasicBlock
}

func funcsEqual(ap, bp *Program, ad, bd *FunctionData, gm map[Value]Value) bool {
	c := &funcCmp{
		ap: ap, bp: bp, ad: ad, bd: bd, gm: gm,
		vm: make(map[Value]Value),
		bm: make(map[BasicBlock]BasicBlock),
	}
	if ad.name != bd.name || ad.IsDecl() != bd.IsDecl() {
		return false
	}
	if !typesEqual(ap.tys, ad.ret, bp.tys, bd.ret) || len(ad.paramTypes) != len(bd.paramTypes) {
		return false
	}
	for i, t := range ad.paramTypes {
		if !typesEqual(ap.tys, t, bp.tys, bd.paramTypes[i]) {
			return false
		}
	}
	if len(ad.params) != len(bd.params) {
		return false
	}
	for i, pa := range ad.params {
		if !c.bind(pa, bd.params[i]) {
			return false
		}
	}

	bbsA, bbsB := ad.layout.BBs(), bd.layout.BBs()
	if len(bbsA) != len(bbsB) {
		return false
	}
	// Bind block and parameter identities first so forward jumps compare.
	for i, ba := range bbsA {
		bb := bbsB[i]
		bdA, bdB := ad.dfg.MustBBData(ba), bd.dfg.MustBBData(bb)
		if bdA.Name != bdB.Name || len(bdA.Params) != len(bdB.Params) {
			return false
		}
		c.bm[ba] = bb
		for j, pa := range bdA.Params {
			if !c.bind(pa, bdB.Params[j]) {
				return false
			}
		}
	}
	for i, ba := range bbsA {
		instsA := ad.layout.Insts(ba)
		instsB := bd.layout.Insts(bbsB[i])
		if len(instsA) != len(instsB) {
			return false
		}
		for j, va := range instsA {
			if !c.instEqual(va, instsB[j]) {
				return false
			}
			if !c.bind(va, instsB[j]) {
				return false
			}
		}
	}
	return true
}

func (c *funcCmp) bind(va, vb Value) bool {
	if prev, ok := c.vm[va]; ok {
		return prev == vb
	}
	c.vm[va] = vb
	return true
}

func (c *funcCmp) instEqual(va, vb Value) bool {
	da := c.ad.dfg.MustValueData(va)
	db := c.bd.dfg.MustValueData(vb)
	if da.Kind != db.Kind || da.Name != db.Name {
		return false
	}
	if !typesEqual(c.ap.tys, da.Type, c.bp.tys, db.Type) {
		return false
	}
	if da.Kind == KindBinary && da.Binary.Op != db.Binary.Op {
		return false
	}
	if da.Kind == KindCall {
		fa := c.ap.MustFuncData(da.Call.Callee)
		fb := c.bp.MustFuncData(db.Call.Callee)
		if fa.Name() != fb.Name() {
			return false
		}
	}
	opsA, opsB := da.Operands(), db.Operands()
	if len(opsA) != len(opsB) {
		return false
	}
	for i, oa := range opsA {
		if !c.operandEqual(oa, opsB[i]) {
			return false
		}
	}
	tgtA, tgtB := da.BlockTargets(), db.BlockTargets()
	if len(tgtA) != len(tgtB) {
		return false
	}
	for i, ta := range tgtA {
		if c.bm[ta] != tgtB[i] {
			return false
		}
	}
	// A valued and a bare return differ even with equal operand lists.
	if da.Kind == KindReturn && da.Return.Value.IsValid() != db.Return.Value.IsValid() {
		return false
	}
	return true
}

// operandEqual compares one operand position: mapped handles must
// correspond, unplaced constants compare structurally.
func (c *funcCmp) operandEqual(oa, ob Value) bool {
	if oa.IsGlobal() != ob.IsGlobal() {
		return false
	}
	if oa.IsGlobal() {
		return c.gm[oa] == ob
	}
	if mapped, ok := c.vm[oa]; ok {
		return mapped == ob
	}
	da := c.ad.dfg.MustValueData(oa)
	db, ok := c.bd.dfg.ValueData(ob)
	if !ok {
		return false
	}
	if !da.IsConst() || !db.IsConst() {
		return false
	}
	if da.Kind != db.Kind || !typesEqual(c.ap.tys, da.Type, c.bp.tys, db.Type) {
		return false
	}
	switch da.Kind {
	case KindInteger:
		return da.Integer.Value == db.Integer.Value
	case KindAggregate:
		if len(da.Aggregate.Elems) != len(db.Aggregate.Elems) {
			return false
		}
		for i, ea := range da.Aggregate.Elems {
			if !c.operandEqual(ea, db.Aggregate.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// typesEqual compares two types structurally across interners.
func typesEqual(atys *types.Interner, a types.TypeID, btys *types.Interner, b types.TypeID) bool {
	ta, aok := atys.Lookup(a)
	tb, bok := btys.Lookup(b)
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	if ta.Kind != tb.Kind || ta.Count != tb.Count {
		return false
	}
	switch ta.Kind {
	case types.KindPointer, types.KindArray:
		return typesEqual(atys, ta.Elem, btys, tb.Elem)
	case types.KindFn:
		fa, _ := atys.FnInfo(a)
		fb, _ := btys.FnInfo(b)
		if fa == nil || fb == nil || len(fa.Params) != len(fb.Params) {
			return false
		}
		for i, pa := range fa.Params {
			if !typesEqual(atys, pa, btys, fb.Params[i]) {
				return false
			}
		}
		return typesEqual(atys, fa.Result, btys, fb.Result)
	default:
		return true
	}
}
