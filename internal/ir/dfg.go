package ir

import (
	"fmt"

	"crest/internal/types"
)

// DataFlowGraph is the per-function arena owning all local values and
// basic blocks, and keeping def/use edges consistent. Order of blocks and
// instructions lives in the function's Layout, never here.
type DataFlowGraph struct {
	values map[Value]*ValueData
	bbs    map[BasicBlock]*BasicBlockData

	globals *globalPool
	alloc   *idAlloc
	tys     *types.Interner
	names   *nameScope

	prog *Program
	ret  types.TypeID
}

// NewValue returns a builder for a fresh local value.
func (g *DataFlowGraph) NewValue() *LocalBuilder {
	return &LocalBuilder{g: g}
}

// NewBB returns a builder for a fresh basic block.
func (g *DataFlowGraph) NewBB() *BlockBuilder {
	return &BlockBuilder{g: g}
}

// ReplaceValueWith returns a builder whose terminal call swaps v's
// payload in place, preserving v's identity and name so every user of v
// stays valid. The old operand edges are deregistered and the new ones
// registered in one step.
func (g *DataFlowGraph) ReplaceValueWith(v Value) *LocalBuilder {
	return &LocalBuilder{g: g, replace: v}
}

// ValueData resolves a value handle, local or global.
func (g *DataFlowGraph) ValueData(v Value) (*ValueData, bool) {
	if v.IsGlobal() {
		return g.globals.get(v)
	}
	d, ok := g.values[v]
	return d, ok
}

// MustValueData panics when v does not resolve.
func (g *DataFlowGraph) MustValueData(v Value) *ValueData {
	d, ok := g.ValueData(v)
	if !ok {
		panic(fmt.Sprintf("ir: unknown value %d", v))
	}
	return d
}

// BBData resolves a basic block handle.
func (g *DataFlowGraph) BBData(bb BasicBlock) (*BasicBlockData, bool) {
	d, ok := g.bbs[bb]
	return d, ok
}

// MustBBData panics when bb does not resolve.
func (g *DataFlowGraph) MustBBData(bb BasicBlock) *BasicBlockData {
	d, ok := g.bbs[bb]
	if !ok {
		panic(fmt.Sprintf("ir: unknown basic block %d", bb))
	}
	return d
}

// Values iterates the function's local values in unspecified order.
func (g *DataFlowGraph) Values() map[Value]*ValueData {
	return g.values
}

// BBs iterates the function's basic blocks in unspecified order.
func (g *DataFlowGraph) BBs() map[BasicBlock]*BasicBlockData {
	return g.bbs
}

// RemoveValue erases a local value. It fails with ErrInUse while the
// value is still an operand of another value; on failure the graph is
// unchanged. The caller must have detached the value from the Layout.
func (g *DataFlowGraph) RemoveValue(v Value) error {
	if v.IsGlobal() {
		return fmt.Errorf("%w: value %d is global", ErrWrongScope, v)
	}
	d, ok := g.values[v]
	if !ok {
		return fmt.Errorf("%w: value %d", ErrNotFound, v)
	}
	if len(d.UsedBy) > 0 {
		return fmt.Errorf("%w: value %d has %d users", ErrInUse, v, len(d.UsedBy))
	}
	g.deregisterUses(v, d)
	g.names.release(d.Name)
	delete(g.values, v)
	return nil
}

// RemoveBB erases a basic block. It fails with ErrInUse while any
// branch/jump still targets the block or any of its parameters is still
// used; on failure the graph is unchanged.
func (g *DataFlowGraph) RemoveBB(bb BasicBlock) error {
	d, ok := g.bbs[bb]
	if !ok {
		return fmt.Errorf("%w: basic block %d", ErrNotFound, bb)
	}
	if len(d.UsedBy) > 0 {
		return fmt.Errorf("%w: basic block %d has %d users", ErrInUse, bb, len(d.UsedBy))
	}
	for _, p := range d.Params {
		if pd, pok := g.values[p]; pok && len(pd.UsedBy) > 0 {
			return fmt.Errorf("%w: basic block %d parameter %d is used", ErrInUse, bb, p)
		}
	}
	for _, p := range d.Params {
		if pd, pok := g.values[p]; pok {
			g.names.release(pd.Name)
			delete(g.values, p)
		}
	}
	g.names.release(d.Name)
	delete(g.bbs, bb)
	return nil
}

// SetValueName renames a local value, re-validating uniqueness in the
// function's scope. A colliding temporary name is renumbered.
func (g *DataFlowGraph) SetValueName(v Value, name string) error {
	d, ok := g.values[v]
	if !ok {
		return fmt.Errorf("%w: value %d", ErrNotFound, v)
	}
	resolved, err := g.names.assign(name)
	if err != nil {
		return err
	}
	g.names.release(d.Name)
	d.Name = resolved
	return nil
}

// SetBBName renames a basic block under the same rules as SetValueName.
func (g *DataFlowGraph) SetBBName(bb BasicBlock, name string) error {
	d, ok := g.bbs[bb]
	if !ok {
		return fmt.Errorf("%w: basic block %d", ErrNotFound, bb)
	}
	resolved, err := g.names.assign(name)
	if err != nil {
		return err
	}
	g.names.release(d.Name)
	d.Name = resolved
	return nil
}

// registerUses records user in the used_by set of every operand and
// block target of d.
func (g *DataFlowGraph) registerUses(user Value, d *ValueData) {
	for _, op := range d.Operands() {
		if op.IsGlobal() {
			g.globals.addUse(op, user)
			continue
		}
		g.values[op].UsedBy[user] = struct{}{}
	}
	for _, bb := range d.BlockTargets() {
		g.bbs[bb].UsedBy[user] = struct{}{}
	}
}

// deregisterUses removes user from the used_by sets d's operands and
// block targets hold.
func (g *DataFlowGraph) deregisterUses(user Value, d *ValueData) {
	for _, op := range d.Operands() {
		if op.IsGlobal() {
			g.globals.dropUse(op, user)
			continue
		}
		if od, ok := g.values[op]; ok {
			delete(od.UsedBy, user)
		}
	}
	for _, bb := range d.BlockTargets() {
		if bd, ok := g.bbs[bb]; ok {
			delete(bd.UsedBy, user)
		}
	}
}
