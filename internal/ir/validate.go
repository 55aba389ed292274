package ir

import (
	"errors"
	"fmt"
)

// Validate checks program-wide structural invariants.
// Returns an error joining every violation found.
func Validate(p *Program) error {
	if p == nil {
		return nil
	}
	var errs []error
	if err := validateGlobals(p); err != nil {
		errs = append(errs, err)
	}
	for _, f := range p.Funcs() {
		fd := p.funcs[f]
		if err := validateFunc(p, fd); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", fd.name, err))
		}
	}
	return errors.Join(errs...)
}

func validateGlobals(p *Program) error {
	release := p.BorrowGlobals()
	defer release()

	var errs []error
	for v, d := range p.pool.values {
		switch d.Kind {
		case KindInteger, KindZeroInit, KindUndef, KindAggregate, KindGlobalAlloc:
		default:
			errs = append(errs, fmt.Errorf("global %d: %s is not a global kind", v, d.Kind))
		}
		for _, op := range d.Operands() {
			if !op.IsGlobal() {
				errs = append(errs, fmt.Errorf("global %d: local operand %d", v, op))
				continue
			}
			od, ok := p.pool.values[op]
			if !ok {
				errs = append(errs, fmt.Errorf("global %d: dangling operand %d", v, op))
				continue
			}
			if _, recorded := od.UsedBy[v]; !recorded {
				errs = append(errs, fmt.Errorf("global %d: missing from used_by of operand %d", v, op))
			}
		}
	}
	return errors.Join(errs...)
}

func validateFunc(p *Program, fd *FunctionData) error {
	if fd.IsDecl() {
		return nil
	}
	var errs []error
	if err := validateBlocks(fd); err != nil {
		errs = append(errs, err)
	}
	if err := validateUses(p, fd); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateBlocks checks every placed block exists in the DFG, ends with
// exactly one terminator, and that its terminator targets are placed
// blocks of the same function with matching argument lists.
func validateBlocks(fd *FunctionData) error {
	var errs []error
	lay := fd.layout
	dfg := fd.dfg

	for _, bb := range lay.BBs() {
		bd, ok := dfg.BBData(bb)
		if !ok {
			errs = append(errs, fmt.Errorf("bb%d: placed but not in dfg", bb))
			continue
		}
		insts := lay.Insts(bb)
		if len(insts) == 0 {
			errs = append(errs, fmt.Errorf("%s: unterminated block", blockLabel(bb, bd)))
			continue
		}
		for i, inst := range insts {
			d, vok := dfg.ValueData(inst)
			if !vok {
				errs = append(errs, fmt.Errorf("%s: placed value %d not in dfg", blockLabel(bb, bd), inst))
				continue
			}
			if d.IsTerminator() && i != len(insts)-1 {
				errs = append(errs, fmt.Errorf("%s: terminator %s is not the last instruction", blockLabel(bb, bd), d.Kind))
			}
			for _, target := range d.BlockTargets() {
				if !lay.bbs.Contains(target) {
					errs = append(errs, fmt.Errorf("%s: target bb%d is not placed", blockLabel(bb, bd), target))
				}
			}
			if err := validateTargetArgs(dfg, d); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", blockLabel(bb, bd), err))
			}
		}
		last, _ := lay.LastInst(bb)
		if d, vok := dfg.ValueData(last); vok && !d.IsTerminator() {
			errs = append(errs, fmt.Errorf("%s: unterminated block", blockLabel(bb, bd)))
		}
	}
	return errors.Join(errs...)
}

func validateTargetArgs(dfg *DataFlowGraph, d *ValueData) error {
	check := func(bb BasicBlock, args []Value) error {
		bd, ok := dfg.BBData(bb)
		if !ok {
			return fmt.Errorf("target bb%d not in dfg", bb)
		}
		if len(args) != len(bd.Params) {
			return fmt.Errorf("target %s takes %d args, got %d", blockLabel(bb, bd), len(bd.Params), len(args))
		}
		for i, a := range args {
			ad, aok := dfg.ValueData(a)
			if !aok {
				return fmt.Errorf("dangling block argument %d", a)
			}
			want := dfg.MustValueData(bd.Params[i]).Type
			if ad.Type != want {
				return fmt.Errorf("target %s arg %d type mismatch", blockLabel(bb, bd), i)
			}
		}
		return nil
	}
	switch d.Kind {
	case KindBranch:
		if err := check(d.Branch.TrueBB, d.Branch.TrueArgs); err != nil {
			return err
		}
		return check(d.Branch.FalseBB, d.Branch.FalseArgs)
	case KindJump:
		return check(d.Jump.Target, d.Jump.Args)
	default:
		return nil
	}
}

// validateUses checks that used_by is exactly the inverse of operand
// appearance, that operands resolve in the proper arena, and that call
// targets exist in the program's function table.
func validateUses(p *Program, fd *FunctionData) error {
	var errs []error
	dfg := fd.dfg

	expected := make(map[Value]map[Value]struct{})
	expectedBB := make(map[BasicBlock]map[Value]struct{})
	for v, d := range dfg.values {
		for _, op := range d.Operands() {
			if op.IsGlobal() {
				if _, ok := p.pool.get(op); !ok {
					errs = append(errs, fmt.Errorf("value %d: dangling global operand %d", v, op))
				}
				continue
			}
			if _, ok := dfg.values[op]; !ok {
				errs = append(errs, fmt.Errorf("value %d: dangling operand %d", v, op))
				continue
			}
			if expected[op] == nil {
				expected[op] = make(map[Value]struct{})
			}
			expected[op][v] = struct{}{}
		}
		for _, bb := range d.BlockTargets() {
			if expectedBB[bb] == nil {
				expectedBB[bb] = make(map[Value]struct{})
			}
			expectedBB[bb][v] = struct{}{}
		}
		if d.Kind == KindCall {
			if _, ok := p.funcs[d.Call.Callee]; !ok {
				errs = append(errs, fmt.Errorf("value %d: dangling callee %d", v, d.Call.Callee))
			}
		}
	}
	for v, d := range dfg.values {
		if !useSetsEqual(d.UsedBy, expected[v]) {
			errs = append(errs, fmt.Errorf("value %d: used_by out of sync with operands", v))
		}
	}
	for bb, bd := range dfg.bbs {
		if !useSetsEqual(bd.UsedBy, expectedBB[bb]) {
			errs = append(errs, fmt.Errorf("bb%d: used_by out of sync with terminators", bb))
		}
	}
	return errors.Join(errs...)
}

func useSetsEqual(got, want map[Value]struct{}) bool {
	if len(got) != len(want) {
		return false
	}
	for v := range got {
		if _, ok := want[v]; !ok {
			return false
		}
	}
	return true
}

func blockLabel(bb BasicBlock, bd *BasicBlockData) string {
	if bd.Name != "" {
		return bd.Name
	}
	return fmt.Sprintf("bb%d", bb)
}
