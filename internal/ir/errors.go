package ir

import "errors"

var (
	// ErrInUse indicates an entity cannot be removed while something
	// still references it.
	ErrInUse = errors.New("ir: still in use")
	// ErrNotFound indicates a handle does not resolve in the relevant arena.
	ErrNotFound = errors.New("ir: not found")
	// ErrForeignValue indicates an operand handle belongs to a different
	// function's data flow graph.
	ErrForeignValue = errors.New("ir: operand from another function")
	// ErrWrongScope indicates a value kind was requested at a scope where
	// it is not legal (e.g. Alloc at global scope).
	ErrWrongScope = errors.New("ir: value kind not legal at this scope")
	// ErrNameTaken indicates a stable symbol name collides within its scope.
	ErrNameTaken = errors.New("ir: name already taken")
	// ErrBadName indicates a symbol name without a @ or % sigil.
	ErrBadName = errors.New("ir: name must start with @ or %")
	// ErrTypeMismatch indicates operand types violate an instruction's
	// typing rule.
	ErrTypeMismatch = errors.New("ir: type mismatch")
	// ErrArgMismatch indicates jump/branch arguments disagree with the
	// target block's parameter list.
	ErrArgMismatch = errors.New("ir: block argument mismatch")
	// ErrInLayout indicates an entity is still placed in a layout.
	ErrInLayout = errors.New("ir: still placed in layout")
)
