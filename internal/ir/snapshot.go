package ir

import (
	"fmt"
	"io"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"crest/internal/types"
)

// Current schema version - increment when the snapshot format changes.
const snapshotSchema uint16 = 1

// A snapshot flattens a program into dense index-based records. Decoding
// rebuilds everything through the public builders, so a snapshot that
// survived transport still re-validates every structural rule on load.
type snapshot struct {
	Schema  uint16
	Types   []snapType
	Globals []snapValue
	Funcs   []snapFunc
}

type snapType struct {
	Kind     uint8
	Elem     uint32
	Count    uint32
	FnParams []uint32
	FnResult uint32
}

type snapValue struct {
	ID     uint32
	Kind   uint8
	Type   uint32
	Name   string
	Int    int32
	Index  int32
	Op     uint8
	Cond   uint32
	Callee uint32
	HasVal bool
	NTrue  int32
	Ops    []uint32
	BBs    []uint32
}

type snapBB struct {
	ID         uint32
	Name       string
	ParamIDs   []uint32
	ParamNames []string
	ParamTypes []uint32
}

type snapLayoutBB struct {
	ID    uint32
	Insts []uint32
}

type snapFunc struct {
	ID         uint32
	Name       string
	Ret        uint32
	Decl       bool
	ParamIDs   []uint32
	ParamNames []string
	ParamTypes []uint32
	BBs        []snapBB
	Values     []snapValue
	Layout     []snapLayoutBB
}

// EncodeSnapshot writes a versioned msgpack snapshot of p.
func EncodeSnapshot(w io.Writer, p *Program) error {
	e := &encoder{p: p, tindex: make(map[types.TypeID]uint32)}
	s := snapshot{Schema: snapshotSchema}

	release := p.BorrowGlobals()
	for _, g := range p.pool.order {
		s.Globals = append(s.Globals, e.value(g, p.pool.values[g]))
	}
	release()

	for _, f := range p.Funcs() {
		s.Funcs = append(s.Funcs, e.function(f, p.funcs[f]))
	}
	s.Types = e.types
	return msgpack.NewEncoder(w).Encode(&s)
}

type encoder struct {
	p      *Program
	types  []snapType
	tindex map[types.TypeID]uint32
}

// typeIndex interns a TypeID into the snapshot's type table; children
// are appended before parents so decoding replays in order.
func (e *encoder) typeIndex(id types.TypeID) uint32 {
	if idx, ok := e.tindex[id]; ok {
		return idx
	}
	tt := e.p.tys.MustLookup(id)
	rec := snapType{Kind: uint8(tt.Kind), Count: tt.Count}
	switch tt.Kind {
	case types.KindPointer, types.KindArray:
		rec.Elem = e.typeIndex(tt.Elem)
	case types.KindFn:
		info, _ := e.p.tys.FnInfo(id)
		for _, pt := range info.Params {
			rec.FnParams = append(rec.FnParams, e.typeIndex(pt))
		}
		rec.FnResult = e.typeIndex(info.Result)
	}
	e.types = append(e.types, rec)
	idx := uint32(len(e.types) - 1)
	e.tindex[id] = idx
	return idx
}

func (e *encoder) value(v Value, d *ValueData) snapValue {
	rec := snapValue{
		ID:   uint32(v),
		Kind: uint8(d.Kind),
		Type: e.typeIndex(d.Type),
		Name: d.Name,
	}
	switch d.Kind {
	case KindInteger:
		rec.Int = d.Integer.Value
	case KindAggregate:
		rec.Ops = handles(d.Aggregate.Elems)
	case KindFuncArgRef:
		rec.Index = int32(d.FuncArgRef.Index)
	case KindBlockArgRef:
		rec.Index = int32(d.BlockArgRef.Index)
	case KindGlobalAlloc:
		rec.Ops = []uint32{uint32(d.GlobalAlloc.Init)}
	case KindLoad:
		rec.Ops = []uint32{uint32(d.Load.Src)}
	case KindStore:
		rec.Ops = []uint32{uint32(d.Store.Value), uint32(d.Store.Dest)}
	case KindGetPtr:
		rec.Ops = []uint32{uint32(d.GetPtr.Src), uint32(d.GetPtr.Index)}
	case KindGetElemPtr:
		rec.Ops = []uint32{uint32(d.GetElemPtr.Src), uint32(d.GetElemPtr.Index)}
	case KindBinary:
		rec.Op = uint8(d.Binary.Op)
		rec.Ops = []uint32{uint32(d.Binary.LHS), uint32(d.Binary.RHS)}
	case KindBranch:
		rec.Cond = uint32(d.Branch.Cond)
		rec.BBs = []uint32{uint32(d.Branch.TrueBB), uint32(d.Branch.FalseBB)}
		rec.NTrue = int32(len(d.Branch.TrueArgs))
		rec.Ops = append(handles(d.Branch.TrueArgs), handles(d.Branch.FalseArgs)...)
	case KindJump:
		rec.BBs = []uint32{uint32(d.Jump.Target)}
		rec.Ops = handles(d.Jump.Args)
	case KindCall:
		rec.Callee = uint32(d.Call.Callee)
		rec.Ops = handles(d.Call.Args)
	case KindReturn:
		if d.Return.Value.IsValid() {
			rec.HasVal = true
			rec.Ops = []uint32{uint32(d.Return.Value)}
		}
	}
	return rec
}

func (e *encoder) function(f Function, fd *FunctionData) snapFunc {
	rec := snapFunc{
		ID:   uint32(f),
		Name: fd.name,
		Ret:  e.typeIndex(fd.ret),
		Decl: fd.IsDecl(),
	}
	for _, pt := range fd.paramTypes {
		rec.ParamTypes = append(rec.ParamTypes, e.typeIndex(pt))
	}
	skip := make(map[Value]struct{})
	for _, pv := range fd.params {
		rec.ParamIDs = append(rec.ParamIDs, uint32(pv))
		rec.ParamNames = append(rec.ParamNames, fd.dfg.MustValueData(pv).Name)
		skip[pv] = struct{}{}
	}

	bbs := make([]BasicBlock, 0, len(fd.dfg.bbs))
	for bb := range fd.dfg.bbs {
		bbs = append(bbs, bb)
	}
	slices.Sort(bbs)
	for _, bb := range bbs {
		bd := fd.dfg.bbs[bb]
		br := snapBB{ID: uint32(bb), Name: bd.Name}
		for _, pv := range bd.Params {
			pd := fd.dfg.MustValueData(pv)
			br.ParamIDs = append(br.ParamIDs, uint32(pv))
			br.ParamNames = append(br.ParamNames, pd.Name)
			br.ParamTypes = append(br.ParamTypes, e.typeIndex(pd.Type))
			skip[pv] = struct{}{}
		}
		rec.BBs = append(rec.BBs, br)
	}

	// Remaining values in dependency order: decoding replays through the
	// builders, so every local operand must be rebuilt before its user.
	// Handle order alone is not enough — an in-place replacement can give
	// an older instruction operands allocated later — so walk operands
	// first, breaking ties by handle for determinism.
	vals := make([]Value, 0, len(fd.dfg.values))
	for v := range fd.dfg.values {
		if _, skipped := skip[v]; !skipped {
			vals = append(vals, v)
		}
	}
	slices.Sort(vals)
	visited := make(map[Value]struct{}, len(vals))
	var emit func(v Value)
	emit = func(v Value) {
		if _, done := visited[v]; done {
			return
		}
		if _, skipped := skip[v]; skipped {
			return
		}
		d, ok := fd.dfg.values[v]
		if !ok {
			return
		}
		visited[v] = struct{}{}
		for _, op := range d.Operands() {
			if !op.IsGlobal() {
				emit(op)
			}
		}
		rec.Values = append(rec.Values, e.value(v, d))
	}
	for _, v := range vals {
		emit(v)
	}

	for _, bb := range fd.layout.BBs() {
		rec.Layout = append(rec.Layout, snapLayoutBB{
			ID:    uint32(bb),
			Insts: handles(fd.layout.Insts(bb)),
		})
	}
	return rec
}

func handles(vs []Value) []uint32 {
	if len(vs) == 0 {
		return nil
	}
	out := make([]uint32, len(vs))
	for i, v := range vs {
		out[i] = uint32(v)
	}
	return out
}

// DecodeSnapshot reads a snapshot and rebuilds the program through the
// public builders.
func DecodeSnapshot(r io.Reader) (*Program, error) {
	var s snapshot
	if err := msgpack.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Schema != snapshotSchema {
		return nil, fmt.Errorf("decode snapshot: schema %d, want %d", s.Schema, snapshotSchema)
	}
	d := &decoder{
		p:    NewProgram(),
		vmap: make(map[Value]Value),
		fmap: make(map[Function]Function),
	}
	if err := d.types(s.Types); err != nil {
		return nil, err
	}
	for _, gr := range s.Globals {
		if err := d.global(gr); err != nil {
			return nil, err
		}
	}
	for _, fr := range s.Funcs {
		if err := d.declareFunc(fr); err != nil {
			return nil, err
		}
	}
	for _, fr := range s.Funcs {
		if err := d.fillFunc(fr); err != nil {
			return nil, err
		}
	}
	return d.p, nil
}

type decoder struct {
	p    *Program
	tmap []types.TypeID
	vmap map[Value]Value
	fmap map[Function]Function
}

func (d *decoder) types(recs []snapType) error {
	tys := d.p.tys
	bt := tys.Builtins()
	d.tmap = make([]types.TypeID, len(recs))
	for i, tr := range recs {
		switch types.Kind(tr.Kind) {
		case types.KindInvalid:
			d.tmap[i] = types.NoTypeID
		case types.KindUnit:
			d.tmap[i] = bt.Unit
		case types.KindInt32:
			d.tmap[i] = bt.Int32
		case types.KindPointer:
			d.tmap[i] = tys.Pointer(d.tmap[tr.Elem])
		case types.KindArray:
			d.tmap[i] = tys.Array(d.tmap[tr.Elem], tr.Count)
		case types.KindFn:
			params := make([]types.TypeID, len(tr.FnParams))
			for j, pi := range tr.FnParams {
				params[j] = d.tmap[pi]
			}
			d.tmap[i] = tys.RegisterFn(params, d.tmap[tr.FnResult])
		default:
			return fmt.Errorf("decode snapshot: unknown type kind %d", tr.Kind)
		}
	}
	return nil
}

func (d *decoder) global(rec snapValue) error {
	b := d.p.NewValue()
	var v Value
	var err error
	switch ValueKind(rec.Kind) {
	case KindInteger:
		v, err = b.Integer(rec.Int)
	case KindZeroInit:
		v, err = b.ZeroInit(d.tmap[rec.Type])
	case KindUndef:
		v, err = b.Undef(d.tmap[rec.Type])
	case KindAggregate:
		v, err = b.Aggregate(d.mapped(rec.Ops))
	case KindGlobalAlloc:
		v, err = b.GlobalAlloc(d.vmap[Value(rec.Ops[0])])
	default:
		return fmt.Errorf("decode snapshot: %s at global scope", ValueKind(rec.Kind))
	}
	if err != nil {
		return fmt.Errorf("decode global %d: %w", rec.ID, err)
	}
	if rec.Name != "" {
		if err := d.p.SetValueName(v, rec.Name); err != nil {
			return fmt.Errorf("decode global %d: %w", rec.ID, err)
		}
	}
	d.vmap[Value(rec.ID)] = v
	return nil
}

func (d *decoder) declareFunc(rec snapFunc) error {
	ret := d.tmap[rec.Ret]
	paramTypes := make([]types.TypeID, len(rec.ParamTypes))
	for i, ti := range rec.ParamTypes {
		paramTypes[i] = d.tmap[ti]
	}
	if rec.Decl {
		f, err := d.p.NewDecl(rec.Name, paramTypes, ret)
		if err != nil {
			return fmt.Errorf("decode decl %s: %w", rec.Name, err)
		}
		d.fmap[Function(rec.ID)] = f
		return nil
	}
	params := make([]Param, len(paramTypes))
	for i, pt := range paramTypes {
		params[i] = Param{Name: rec.ParamNames[i], Type: pt}
	}
	f, err := d.p.NewFunc(rec.Name, params, ret)
	if err != nil {
		return fmt.Errorf("decode func %s: %w", rec.Name, err)
	}
	d.fmap[Function(rec.ID)] = f
	for i, oldID := range rec.ParamIDs {
		d.vmap[Value(oldID)] = d.p.MustFuncData(f).Params()[i]
	}
	return nil
}

func (d *decoder) fillFunc(rec snapFunc) error {
	fd := d.p.MustFuncData(d.fmap[Function(rec.ID)])
	dfg := fd.DFG()

	bmap := make(map[BasicBlock]BasicBlock, len(rec.BBs))
	for _, br := range rec.BBs {
		params := make([]Param, len(br.ParamIDs))
		for i := range br.ParamIDs {
			params[i] = Param{Name: br.ParamNames[i], Type: d.tmap[br.ParamTypes[i]]}
		}
		bb, err := dfg.NewBB().BasicBlockWithParams(br.Name, params)
		if err != nil {
			return fmt.Errorf("decode %s bb %d: %w", rec.Name, br.ID, err)
		}
		bmap[BasicBlock(br.ID)] = bb
		bd := dfg.MustBBData(bb)
		for i, oldID := range br.ParamIDs {
			d.vmap[Value(oldID)] = bd.Params[i]
		}
	}

	for _, vr := range rec.Values {
		v, err := d.localValue(dfg, bmap, vr)
		if err != nil {
			return fmt.Errorf("decode %s value %d: %w", rec.Name, vr.ID, err)
		}
		if vr.Name != "" {
			if err := dfg.SetValueName(v, vr.Name); err != nil {
				return fmt.Errorf("decode %s value %d: %w", rec.Name, vr.ID, err)
			}
		}
		d.vmap[Value(vr.ID)] = v
	}

	lay := fd.Layout()
	for _, lr := range rec.Layout {
		bb := bmap[BasicBlock(lr.ID)]
		if err := lay.PushBBBack(bb); err != nil {
			return fmt.Errorf("decode %s layout: %w", rec.Name, err)
		}
		for _, old := range lr.Insts {
			if err := lay.PushInstBack(bb, d.vmap[Value(old)]); err != nil {
				return fmt.Errorf("decode %s layout: %w", rec.Name, err)
			}
		}
	}
	return nil
}

func (d *decoder) localValue(dfg *DataFlowGraph, bmap map[BasicBlock]BasicBlock, vr snapValue) (Value, error) {
	b := dfg.NewValue()
	ops := func() []Value { return d.mapped(vr.Ops) }
	switch ValueKind(vr.Kind) {
	case KindInteger:
		return b.Integer(vr.Int)
	case KindZeroInit:
		return b.ZeroInit(d.tmap[vr.Type])
	case KindUndef:
		return b.Undef(d.tmap[vr.Type])
	case KindAggregate:
		return b.Aggregate(ops())
	case KindFuncArgRef:
		return b.FuncArgRef(int(vr.Index), d.tmap[vr.Type])
	case KindBlockArgRef:
		return b.BlockArgRef(int(vr.Index), d.tmap[vr.Type])
	case KindAlloc:
		return b.Alloc(d.pointee(vr.Type))
	case KindLoad:
		o := ops()
		return b.Load(o[0])
	case KindStore:
		o := ops()
		return b.Store(o[0], o[1])
	case KindGetPtr:
		o := ops()
		return b.GetPtr(o[0], o[1])
	case KindGetElemPtr:
		o := ops()
		return b.GetElemPtr(o[0], o[1])
	case KindBinary:
		o := ops()
		return b.Binary(BinaryOp(vr.Op), o[0], o[1])
	case KindBranch:
		o := ops()
		return b.BranchWithArgs(d.vmap[Value(vr.Cond)],
			bmap[BasicBlock(vr.BBs[0])], bmap[BasicBlock(vr.BBs[1])],
			o[:vr.NTrue], o[vr.NTrue:])
	case KindJump:
		return b.JumpWithArgs(bmap[BasicBlock(vr.BBs[0])], ops())
	case KindCall:
		return b.Call(d.fmap[Function(vr.Callee)], ops())
	case KindReturn:
		if vr.HasVal {
			return b.Ret(d.vmap[Value(vr.Ops[0])])
		}
		return b.Ret(NoValue)
	default:
		return NoValue, fmt.Errorf("unknown value kind %d", vr.Kind)
	}
}

func (d *decoder) mapped(old []uint32) []Value {
	if len(old) == 0 {
		return nil
	}
	out := make([]Value, len(old))
	for i, o := range old {
		out[i] = d.vmap[Value(o)]
	}
	return out
}

// pointee resolves the allocated type from an alloc's pointer type.
func (d *decoder) pointee(typeIdx uint32) types.TypeID {
	id := d.tmap[typeIdx]
	return d.p.tys.MustLookup(id).Elem
}
