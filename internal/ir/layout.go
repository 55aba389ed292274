package ir

import (
	"fmt"

	"crest/internal/keylist"
)

// Layout records order and nothing else: which blocks a function holds
// and in what sequence, and which instructions each block holds and in
// what sequence. It stores handles only; payloads stay in the DFG.
type Layout struct {
	bbs    *keylist.List[BasicBlock]
	insts  map[BasicBlock]*keylist.List[Value]
	parent map[Value]BasicBlock
}

func newLayout() *Layout {
	return &Layout{
		bbs:    keylist.New[BasicBlock](),
		insts:  make(map[BasicBlock]*keylist.List[Value]),
		parent: make(map[Value]BasicBlock),
	}
}

// EntryBB returns the first block in order; ok is false for a
// declaration (empty layout).
func (l *Layout) EntryBB() (BasicBlock, bool) {
	return l.bbs.Front()
}

// ParentBB returns the block currently containing inst, or false if the
// instruction is constructed but not placed.
func (l *Layout) ParentBB(inst Value) (BasicBlock, bool) {
	bb, ok := l.parent[inst]
	return bb, ok
}

// BBs returns the blocks in layout order.
func (l *Layout) BBs() []BasicBlock {
	return l.bbs.Keys()
}

// Insts returns the instructions of bb in layout order.
func (l *Layout) Insts(bb BasicBlock) []Value {
	il, ok := l.insts[bb]
	if !ok {
		return nil
	}
	return il.Keys()
}

// LastInst returns the last instruction of bb.
func (l *Layout) LastInst(bb BasicBlock) (Value, bool) {
	il, ok := l.insts[bb]
	if !ok {
		return NoValue, false
	}
	return il.Back()
}

// PushBBBack appends bb at the end of the block order.
func (l *Layout) PushBBBack(bb BasicBlock) error {
	if err := l.bbs.PushBack(bb); err != nil {
		return fmt.Errorf("push bb %d: %w", bb, err)
	}
	l.insts[bb] = keylist.New[Value]()
	return nil
}

// PushBBFront prepends bb at the beginning of the block order.
func (l *Layout) PushBBFront(bb BasicBlock) error {
	if err := l.bbs.PushFront(bb); err != nil {
		return fmt.Errorf("push bb %d: %w", bb, err)
	}
	l.insts[bb] = keylist.New[Value]()
	return nil
}

// InsertBBBefore places bb immediately before ref in the block order.
func (l *Layout) InsertBBBefore(bb, ref BasicBlock) error {
	if err := l.bbs.InsertBefore(bb, ref); err != nil {
		return fmt.Errorf("insert bb %d before %d: %w", bb, ref, err)
	}
	l.insts[bb] = keylist.New[Value]()
	return nil
}

// InsertBBAfter places bb immediately after ref in the block order.
func (l *Layout) InsertBBAfter(bb, ref BasicBlock) error {
	if err := l.bbs.InsertAfter(bb, ref); err != nil {
		return fmt.Errorf("insert bb %d after %d: %w", bb, ref, err)
	}
	l.insts[bb] = keylist.New[Value]()
	return nil
}

// RemoveBB detaches bb and all its instructions from the ordering. The
// DFG payloads are untouched; erase them separately.
func (l *Layout) RemoveBB(bb BasicBlock) error {
	if err := l.bbs.Remove(bb); err != nil {
		return fmt.Errorf("remove bb %d: %w", bb, err)
	}
	if il, ok := l.insts[bb]; ok {
		for _, v := range il.Keys() {
			delete(l.parent, v)
		}
	}
	delete(l.insts, bb)
	return nil
}

// PushInstBack appends inst at the end of bb's instruction order.
func (l *Layout) PushInstBack(bb BasicBlock, inst Value) error {
	il, err := l.instList(bb, inst)
	if err != nil {
		return err
	}
	if err := il.PushBack(inst); err != nil {
		return fmt.Errorf("push inst %d: %w", inst, err)
	}
	l.parent[inst] = bb
	return nil
}

// PushInstFront prepends inst at the beginning of bb's instruction order.
func (l *Layout) PushInstFront(bb BasicBlock, inst Value) error {
	il, err := l.instList(bb, inst)
	if err != nil {
		return err
	}
	if err := il.PushFront(inst); err != nil {
		return fmt.Errorf("push inst %d: %w", inst, err)
	}
	l.parent[inst] = bb
	return nil
}

// InsertInstBefore places inst immediately before ref, in ref's block.
func (l *Layout) InsertInstBefore(inst, ref Value) error {
	bb, ok := l.parent[ref]
	if !ok {
		return fmt.Errorf("%w: instruction %d is not placed", ErrNotFound, ref)
	}
	il, err := l.instList(bb, inst)
	if err != nil {
		return err
	}
	if err := il.InsertBefore(inst, ref); err != nil {
		return fmt.Errorf("insert inst %d before %d: %w", inst, ref, err)
	}
	l.parent[inst] = bb
	return nil
}

// InsertInstAfter places inst immediately after ref, in ref's block.
func (l *Layout) InsertInstAfter(inst, ref Value) error {
	bb, ok := l.parent[ref]
	if !ok {
		return fmt.Errorf("%w: instruction %d is not placed", ErrNotFound, ref)
	}
	il, err := l.instList(bb, inst)
	if err != nil {
		return err
	}
	if err := il.InsertAfter(inst, ref); err != nil {
		return fmt.Errorf("insert inst %d after %d: %w", inst, ref, err)
	}
	l.parent[inst] = bb
	return nil
}

// RemoveInst detaches inst from its block's ordering.
func (l *Layout) RemoveInst(inst Value) error {
	bb, ok := l.parent[inst]
	if !ok {
		return fmt.Errorf("%w: instruction %d is not placed", ErrNotFound, inst)
	}
	if err := l.insts[bb].Remove(inst); err != nil {
		return fmt.Errorf("remove inst %d: %w", inst, err)
	}
	delete(l.parent, inst)
	return nil
}

func (l *Layout) instList(bb BasicBlock, inst Value) (*keylist.List[Value], error) {
	if _, placed := l.parent[inst]; placed {
		return nil, fmt.Errorf("%w: instruction %d", ErrInLayout, inst)
	}
	il, ok := l.insts[bb]
	if !ok {
		return nil, fmt.Errorf("%w: basic block %d is not placed", ErrNotFound, bb)
	}
	return il, nil
}
