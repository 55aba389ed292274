package ir

import "sync/atomic"

// borrowCell is a runtime-checked shared/exclusive access guard over the
// program's global pool: any number of readers or exactly one writer.
// Violations are programmer errors (reentrant aliasing in the driving
// front end) and panic instead of blocking or corrupting state.
type borrowCell struct {
	// >0: reader count, -1: writer, 0: free.
	state atomic.Int32
}

// borrow takes shared access, returning a release func.
func (c *borrowCell) borrow() func() {
	for {
		n := c.state.Load()
		if n < 0 {
			panic("ir: global pool already mutably borrowed")
		}
		if c.state.CompareAndSwap(n, n+1) {
			break
		}
	}
	return func() { c.state.Add(-1) }
}

// borrowMut takes exclusive access, returning a release func.
func (c *borrowCell) borrowMut() func() {
	if !c.state.CompareAndSwap(0, -1) {
		panic("ir: global pool already borrowed")
	}
	return func() { c.state.Store(0) }
}
