package ir

import (
	"fmt"
	"slices"

	"crest/internal/types"
)

// Program is the top-level arena: it owns every function and every
// global value, and the orders they were declared in. Destroying the
// program releases everything transitively.
type Program struct {
	tys   *types.Interner
	alloc idAlloc
	pool  *globalPool

	funcs map[Function]*FunctionData
	order []Function
	names *nameScope
}

// NewProgram creates an empty program with a seeded type interner.
func NewProgram() *Program {
	return &Program{
		tys:   types.NewInterner(),
		pool:  newGlobalPool(),
		funcs: make(map[Function]*FunctionData),
		names: newNameScope(),
	}
}

// Types returns the program's type interner.
func (p *Program) Types() *types.Interner { return p.tys }

// NewFunc registers a function definition and returns its handle. Param
// values of kind FuncArgRef are allocated in the function's DFG.
func (p *Program) NewFunc(name string, params []Param, ret types.TypeID) (Function, error) {
	paramTypes := make([]types.TypeID, len(params))
	for i, pr := range params {
		paramTypes[i] = pr.Type
	}
	fd, err := p.newFuncData(name, paramTypes, ret)
	if err != nil {
		return NoFunc, err
	}
	fd.params = make([]Value, len(params))
	for i, pr := range params {
		resolved, nerr := fd.dfg.names.assign(pr.Name)
		if nerr != nil {
			p.names.release(fd.name)
			return NoFunc, nerr
		}
		v := p.alloc.newValue(false)
		fd.dfg.values[v] = &ValueData{
			Type:       pr.Type,
			Name:       resolved,
			Kind:       KindFuncArgRef,
			FuncArgRef: FuncArgRefVal{Index: i},
			UsedBy:     make(map[Value]struct{}),
		}
		fd.params[i] = v
	}
	return p.register(fd), nil
}

// NewDecl registers a function declaration: type-only parameters, empty
// layout, no body values.
func (p *Program) NewDecl(name string, paramTypes []types.TypeID, ret types.TypeID) (Function, error) {
	fd, err := p.newFuncData(name, slices.Clone(paramTypes), ret)
	if err != nil {
		return NoFunc, err
	}
	return p.register(fd), nil
}

func (p *Program) newFuncData(name string, paramTypes []types.TypeID, ret types.TypeID) (*FunctionData, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	resolved, err := p.names.assign(name)
	if err != nil {
		return nil, err
	}
	fd := &FunctionData{
		name:       resolved,
		ty:         p.tys.RegisterFn(paramTypes, ret),
		ret:        ret,
		paramTypes: paramTypes,
		layout:     newLayout(),
	}
	fd.dfg = &DataFlowGraph{
		values:  make(map[Value]*ValueData),
		bbs:     make(map[BasicBlock]*BasicBlockData),
		globals: p.pool,
		alloc:   &p.alloc,
		tys:     p.tys,
		names:   newNameScope(),
		prog:    p,
		ret:     ret,
	}
	return fd, nil
}

func (p *Program) register(fd *FunctionData) Function {
	f := p.alloc.newFunc()
	p.funcs[f] = fd
	p.order = append(p.order, f)
	return f
}

// RemoveFunc erases a function. It fails with ErrInUse while any call
// instruction in another function still targets f; calls inside f
// itself (recursion) do not keep it alive.
func (p *Program) RemoveFunc(f Function) error {
	fd, ok := p.funcs[f]
	if !ok {
		return fmt.Errorf("%w: function %d", ErrNotFound, f)
	}
	for other, od := range p.funcs {
		if other == f {
			continue
		}
		for v, d := range od.dfg.values {
			if d.Kind == KindCall && d.Call.Callee == f {
				return fmt.Errorf("%w: function %s is called by value %d in %s",
					ErrInUse, fd.name, v, od.name)
			}
		}
	}
	// The dying DFG may hold the last uses of global values; drop them so
	// the globals' used_by sets stay the exact inverse of operand
	// appearance.
	for v, d := range fd.dfg.values {
		fd.dfg.deregisterUses(v, d)
	}
	p.names.release(fd.name)
	delete(p.funcs, f)
	for i, g := range p.order {
		if g == f {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return nil
}

// FuncData resolves a function handle.
func (p *Program) FuncData(f Function) (*FunctionData, bool) {
	fd, ok := p.funcs[f]
	return fd, ok
}

// MustFuncData panics when f does not resolve.
func (p *Program) MustFuncData(f Function) *FunctionData {
	fd, ok := p.funcs[f]
	if !ok {
		panic(fmt.Sprintf("ir: unknown function %d", f))
	}
	return fd
}

// Funcs returns function handles in declaration order.
func (p *Program) Funcs() []Function {
	return slices.Clone(p.order)
}

// FuncByName resolves a function by symbol name. Call targets resolve
// only here, never against any function-local namespace.
func (p *Program) FuncByName(name string) (Function, bool) {
	for _, f := range p.order {
		if p.funcs[f].name == name {
			return f, true
		}
	}
	return NoFunc, false
}

// NewValue returns a builder restricted to the value kinds legal at
// global scope.
func (p *Program) NewValue() *GlobalBuilder {
	return &GlobalBuilder{p: p}
}

// ValueData resolves a global value handle.
func (p *Program) ValueData(v Value) (*ValueData, bool) {
	if !v.IsGlobal() {
		return nil, false
	}
	return p.pool.get(v)
}

// MustValueData panics when v does not resolve to a global value.
func (p *Program) MustValueData(v Value) *ValueData {
	d, ok := p.ValueData(v)
	if !ok {
		panic(fmt.Sprintf("ir: unknown global value %d", v))
	}
	return d
}

// Globals returns global value handles in creation order.
func (p *Program) Globals() []Value {
	release := p.pool.cell.borrow()
	defer release()
	return slices.Clone(p.pool.order)
}

// RemoveValue erases a global value. It fails with ErrInUse while
// anything still references it.
func (p *Program) RemoveValue(v Value) error {
	if !v.IsGlobal() {
		return fmt.Errorf("%w: value %d is not global", ErrWrongScope, v)
	}
	d, ok := p.pool.get(v)
	if !ok {
		return fmt.Errorf("%w: value %d", ErrNotFound, v)
	}
	if len(d.UsedBy) > 0 {
		return fmt.Errorf("%w: value %d has %d users", ErrInUse, v, len(d.UsedBy))
	}
	for _, op := range d.Operands() {
		p.pool.dropUse(op, v)
	}
	p.names.release(d.Name)
	p.pool.remove(v)
	return nil
}

// SetValueName renames a global value, re-validating uniqueness in the
// global scope.
func (p *Program) SetValueName(v Value, name string) error {
	d, ok := p.ValueData(v)
	if !ok {
		return fmt.Errorf("%w: global value %d", ErrNotFound, v)
	}
	resolved, err := p.names.assign(name)
	if err != nil {
		return err
	}
	p.names.release(d.Name)
	d.Name = resolved
	return nil
}

// SetFuncName renames a function under the same rules as SetValueName.
func (p *Program) SetFuncName(f Function, name string) error {
	fd, ok := p.funcs[f]
	if !ok {
		return fmt.Errorf("%w: function %d", ErrNotFound, f)
	}
	if err := checkName(name); err != nil {
		return err
	}
	resolved, err := p.names.assign(name)
	if err != nil {
		return err
	}
	p.names.release(fd.name)
	fd.name = resolved
	return nil
}

// BorrowGlobals takes a shared borrow over the global pool for a bulk
// read traversal. The returned release func must be called; taking it
// while a writer is active panics.
func (p *Program) BorrowGlobals() func() {
	return p.pool.cell.borrow()
}

// BorrowGlobalsMut takes the exclusive borrow over the global pool.
func (p *Program) BorrowGlobalsMut() func() {
	return p.pool.cell.borrowMut()
}
