package ir

import (
	"fmt"

	"fortio.org/safecast"

	"crest/internal/types"
)

// Result-type inference shared by the local and global builders. Every
// rule rejects before any handle is allocated.

func binaryResult(tys *types.Interner, op BinaryOp, lhs, rhs types.TypeID) (types.TypeID, error) {
	if lhs != rhs {
		return types.NoTypeID, fmt.Errorf("%w: %s operands %s vs %s",
			ErrTypeMismatch, op, tys.Format(lhs), tys.Format(rhs))
	}
	if tys.MustLookup(lhs).Kind != types.KindInt32 {
		return types.NoTypeID, fmt.Errorf("%w: %s requires i32 operands, got %s",
			ErrTypeMismatch, op, tys.Format(lhs))
	}
	// Comparison results are 0/1 in i32; arithmetic keeps the operand type.
	return lhs, nil
}

func loadResult(tys *types.Interner, src types.TypeID) (types.TypeID, error) {
	tt := tys.MustLookup(src)
	if tt.Kind != types.KindPointer {
		return types.NoTypeID, fmt.Errorf("%w: load from non-pointer %s",
			ErrTypeMismatch, tys.Format(src))
	}
	return tt.Elem, nil
}

func storeCheck(tys *types.Interner, val, dest types.TypeID) error {
	tt := tys.MustLookup(dest)
	if tt.Kind != types.KindPointer {
		return fmt.Errorf("%w: store to non-pointer %s", ErrTypeMismatch, tys.Format(dest))
	}
	if tt.Elem != val {
		return fmt.Errorf("%w: store %s into *%s",
			ErrTypeMismatch, tys.Format(val), tys.Format(tt.Elem))
	}
	return nil
}

func getPtrResult(tys *types.Interner, src, index types.TypeID) (types.TypeID, error) {
	tt := tys.MustLookup(src)
	if tt.Kind != types.KindPointer {
		return types.NoTypeID, fmt.Errorf("%w: getptr on non-pointer %s",
			ErrTypeMismatch, tys.Format(src))
	}
	if err := requireInt32(tys, index, "getptr index"); err != nil {
		return types.NoTypeID, err
	}
	return src, nil
}

func getElemPtrResult(tys *types.Interner, src, index types.TypeID) (types.TypeID, error) {
	tt := tys.MustLookup(src)
	if tt.Kind != types.KindPointer {
		return types.NoTypeID, fmt.Errorf("%w: getelemptr on non-pointer %s",
			ErrTypeMismatch, tys.Format(src))
	}
	elem := tys.MustLookup(tt.Elem)
	if elem.Kind != types.KindArray {
		return types.NoTypeID, fmt.Errorf("%w: getelemptr base %s is not a pointer to array",
			ErrTypeMismatch, tys.Format(src))
	}
	if err := requireInt32(tys, index, "getelemptr index"); err != nil {
		return types.NoTypeID, err
	}
	return tys.Pointer(elem.Elem), nil
}

func aggregateResult(tys *types.Interner, elems []types.TypeID) (types.TypeID, error) {
	if len(elems) == 0 {
		return types.NoTypeID, fmt.Errorf("%w: empty aggregate", ErrTypeMismatch)
	}
	first := elems[0]
	for _, e := range elems[1:] {
		if e != first {
			return types.NoTypeID, fmt.Errorf("%w: aggregate elements %s vs %s",
				ErrTypeMismatch, tys.Format(first), tys.Format(e))
		}
	}
	count, err := safeCount(len(elems))
	if err != nil {
		return types.NoTypeID, err
	}
	return tys.Array(first, count), nil
}

func safeCount(n int) (uint32, error) {
	c, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, fmt.Errorf("element count overflow: %w", err)
	}
	return c, nil
}

func requireInt32(tys *types.Interner, id types.TypeID, what string) error {
	if tys.MustLookup(id).Kind != types.KindInt32 {
		return fmt.Errorf("%w: %s must be i32, got %s", ErrTypeMismatch, what, tys.Format(id))
	}
	return nil
}

func allocResult(tys *types.Interner, ty types.TypeID) (types.TypeID, error) {
	tt, ok := tys.Lookup(ty)
	if !ok || tt.Kind == types.KindUnit {
		return types.NoTypeID, fmt.Errorf("%w: cannot allocate %s", ErrTypeMismatch, tys.Format(ty))
	}
	return tys.Pointer(ty), nil
}
