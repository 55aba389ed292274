package ir

import "fmt"

// Cursor drives layout insertion for one function the way a code
// generation pass does: instructions append to a current block, and a
// terminator closes that block and opens a fresh anonymous block for any
// trailing (unreachable) source code. Finalize then makes the
// one-terminator-per-block invariant universal by routing every open
// block through a shared end block with a synthesized default return.
type Cursor struct {
	fn   *FunctionData
	cur  BasicBlock
	dead bool
}

// NewCursor creates a cursor over fn with no current block.
func NewCursor(fn *FunctionData) *Cursor {
	return &Cursor{fn: fn}
}

// Block allocates a named block, appends it to the layout and makes it
// current.
func (c *Cursor) Block(name string) (BasicBlock, error) {
	return c.BlockWithParams(name, nil)
}

// BlockWithParams is Block with declared block parameters.
func (c *Cursor) BlockWithParams(name string, params []Param) (BasicBlock, error) {
	bb, err := c.fn.dfg.NewBB().BasicBlockWithParams(name, params)
	if err != nil {
		return NoBB, err
	}
	if err := c.fn.layout.PushBBBack(bb); err != nil {
		return NoBB, err
	}
	c.cur = bb
	c.dead = false
	return bb, nil
}

// At moves the cursor to an already placed block.
func (c *Cursor) At(bb BasicBlock) error {
	if !c.fn.layout.bbs.Contains(bb) {
		return fmt.Errorf("%w: basic block %d is not placed", ErrNotFound, bb)
	}
	c.cur = bb
	c.dead = false
	return nil
}

// Current returns the block the cursor points at.
func (c *Cursor) Current() BasicBlock { return c.cur }

// Unreachable reports whether the current block was opened only to hold
// code trailing a terminator. A front end consults this to drop dead
// terminators instead of stacking return after return.
func (c *Cursor) Unreachable() bool { return c.dead }

// Insert appends v to the current block. Inserting a terminator closes
// the block: a fresh anonymous block is opened and made current, so the
// terminator stays the last instruction of its block.
func (c *Cursor) Insert(v Value) error {
	if !c.cur.IsValid() {
		return fmt.Errorf("%w: cursor has no current block", ErrNotFound)
	}
	d, ok := c.fn.dfg.ValueData(v)
	if !ok || v.IsGlobal() {
		return fmt.Errorf("%w: value %d is not a local of this function", ErrNotFound, v)
	}
	if err := c.fn.layout.PushInstBack(c.cur, v); err != nil {
		return err
	}
	if d.IsTerminator() {
		bb, err := c.fn.dfg.NewBB().BasicBlock("")
		if err != nil {
			return err
		}
		if err := c.fn.layout.PushBBBack(bb); err != nil {
			return err
		}
		c.cur = bb
		c.dead = true
	}
	return nil
}

// Finalize gives every open block a terminator: each one jumps to a
// shared end block, and the end block returns the zero value of the
// function's return type. A function whose blocks are all terminated is
// left untouched, as is a declaration.
func (c *Cursor) Finalize() error {
	lay := c.fn.layout
	dfg := c.fn.dfg

	var open []BasicBlock
	for _, bb := range lay.BBs() {
		last, ok := lay.LastInst(bb)
		if !ok || !dfg.MustValueData(last).IsTerminator() {
			open = append(open, bb)
		}
	}
	if len(open) == 0 {
		return nil
	}

	end, err := dfg.NewBB().BasicBlock("%end")
	if err != nil {
		return err
	}
	if err := lay.PushBBBack(end); err != nil {
		return err
	}
	for _, bb := range open {
		j, jerr := dfg.NewValue().Jump(end)
		if jerr != nil {
			return jerr
		}
		if err := lay.PushInstBack(bb, j); err != nil {
			return err
		}
	}

	ret, err := c.defaultReturn()
	if err != nil {
		return err
	}
	if err := lay.PushInstBack(end, ret); err != nil {
		return err
	}
	c.cur = end
	c.dead = false
	return nil
}

func (c *Cursor) defaultReturn() (Value, error) {
	dfg := c.fn.dfg
	bt := dfg.tys.Builtins()
	switch c.fn.ret {
	case bt.Unit:
		return dfg.NewValue().Ret(NoValue)
	case bt.Int32:
		zero, err := dfg.NewValue().Integer(0)
		if err != nil {
			return NoValue, err
		}
		return dfg.NewValue().Ret(zero)
	default:
		zero, err := dfg.NewValue().ZeroInit(c.fn.ret)
		if err != nil {
			return NoValue, err
		}
		return dfg.NewValue().Ret(zero)
	}
}
