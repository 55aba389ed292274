package types

import (
	"fmt"
	"strings"
)

// Format renders a TypeID in the textual IR syntax: unit, i32, *T,
// [T, n], (T1, T2): R.
func (in *Interner) Format(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "invalid"
	}
	switch tt.Kind {
	case KindUnit:
		return "unit"
	case KindInt32:
		return "i32"
	case KindPointer:
		return "*" + in.Format(tt.Elem)
	case KindArray:
		return fmt.Sprintf("[%s, %d]", in.Format(tt.Elem), tt.Count)
	case KindFn:
		info, ok := in.FnInfo(id)
		if !ok {
			return "invalid"
		}
		var sb strings.Builder
		sb.WriteByte('(')
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(in.Format(p))
		}
		sb.WriteByte(')')
		if res, resOK := in.Lookup(info.Result); resOK && res.Kind != KindUnit {
			sb.WriteString(": ")
			sb.WriteString(in.Format(info.Result))
		}
		return sb.String()
	default:
		return tt.Kind.String()
	}
}
