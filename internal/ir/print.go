package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"crest/internal/types"
)

// Dump writes the textual IR for a whole program: one line per global
// allocation, then every function in declaration order. Constants are
// materialized inline at their use sites, so a global integer used by a
// local store prints as its literal value.
func Dump(w io.Writer, p *Program) error {
	release := p.BorrowGlobals()
	defer release()

	pr := &printer{w: w, p: p, tys: p.tys}
	first := true
	for _, g := range p.pool.order {
		d := p.pool.values[g]
		if d.Kind != KindGlobalAlloc {
			continue
		}
		pointee := p.tys.MustLookup(d.Type).Elem
		pr.printf("global %s = alloc %s, %s\n",
			pr.globalName(g, d), p.tys.Format(pointee), pr.constText(d.GlobalAlloc.Init))
		first = false
	}
	for _, f := range p.Funcs() {
		if !first {
			pr.printf("\n")
		}
		first = false
		pr.dumpFunc(p.funcs[f])
	}
	return pr.err
}

// DumpFunc writes the textual IR for a single function.
func DumpFunc(w io.Writer, p *Program, f Function) error {
	fd, ok := p.FuncData(f)
	if !ok {
		return fmt.Errorf("%w: function %d", ErrNotFound, f)
	}
	release := p.BorrowGlobals()
	defer release()
	pr := &printer{w: w, p: p, tys: p.tys}
	pr.dumpFunc(fd)
	return pr.err
}

type printer struct {
	w   io.Writer
	p   *Program
	tys *types.Interner
	err error

	fn      *FunctionData
	names   map[Value]string
	bbNames map[BasicBlock]string
	next    int
}

func (pr *printer) printf(format string, args ...any) {
	if pr.err != nil {
		return
	}
	_, pr.err = fmt.Fprintf(pr.w, format, args...)
}

func (pr *printer) dumpFunc(fd *FunctionData) {
	pr.fn = fd
	pr.names = make(map[Value]string)
	pr.bbNames = make(map[BasicBlock]string)
	pr.next = 0

	if fd.IsDecl() {
		sig := make([]string, len(fd.paramTypes))
		for i, t := range fd.paramTypes {
			sig[i] = pr.tys.Format(t)
		}
		pr.printf("decl %s(%s)%s\n", fd.name, strings.Join(sig, ", "), pr.retSuffix(fd.ret))
		return
	}

	// Names are assigned in definition order: parameters first, then each
	// block label, its parameters and its instruction results, so forward
	// references (a jump to a later block) do not steal earlier numbers.
	for _, v := range fd.params {
		pr.localName(v)
	}
	for _, bb := range fd.layout.BBs() {
		pr.blockName(bb)
		for _, bp := range fd.dfg.MustBBData(bb).Params {
			pr.localName(bp)
		}
		for _, inst := range fd.layout.Insts(bb) {
			if pr.tys.MustLookup(fd.dfg.MustValueData(inst).Type).Kind != types.KindUnit {
				pr.localName(inst)
			}
		}
	}

	params := make([]string, len(fd.params))
	for i, v := range fd.params {
		params[i] = fmt.Sprintf("%s: %s", pr.localName(v), pr.tys.Format(fd.paramTypes[i]))
	}
	pr.printf("fun %s(%s)%s {\n", fd.name, strings.Join(params, ", "), pr.retSuffix(fd.ret))
	for _, bb := range fd.layout.BBs() {
		pr.dumpBlock(bb)
	}
	pr.printf("}\n")
}

func (pr *printer) retSuffix(ret types.TypeID) string {
	if pr.tys.MustLookup(ret).Kind == types.KindUnit {
		return ""
	}
	return ": " + pr.tys.Format(ret)
}

func (pr *printer) dumpBlock(bb BasicBlock) {
	bd := pr.fn.dfg.MustBBData(bb)
	label := pr.blockName(bb)
	if len(bd.Params) > 0 {
		ps := make([]string, len(bd.Params))
		for i, v := range bd.Params {
			ps[i] = fmt.Sprintf("%s: %s", pr.localName(v), pr.tys.Format(pr.fn.dfg.MustValueData(v).Type))
		}
		pr.printf("%s(%s):\n", label, strings.Join(ps, ", "))
	} else {
		pr.printf("%s:\n", label)
	}
	for _, inst := range pr.fn.layout.Insts(bb) {
		pr.dumpInst(inst)
	}
}

func (pr *printer) dumpInst(v Value) {
	d := pr.fn.dfg.MustValueData(v)
	text := pr.instText(d)
	if pr.tys.MustLookup(d.Type).Kind == types.KindUnit {
		pr.printf("  %s\n", text)
		return
	}
	pr.printf("  %s = %s\n", pr.localName(v), text)
}

func (pr *printer) instText(d *ValueData) string {
	switch d.Kind {
	case KindAlloc:
		return "alloc " + pr.tys.Format(pr.tys.MustLookup(d.Type).Elem)
	case KindLoad:
		return "load " + pr.operand(d.Load.Src)
	case KindStore:
		return fmt.Sprintf("store %s, %s", pr.operand(d.Store.Value), pr.operand(d.Store.Dest))
	case KindGetPtr:
		return fmt.Sprintf("getptr %s, %s", pr.operand(d.GetPtr.Src), pr.operand(d.GetPtr.Index))
	case KindGetElemPtr:
		return fmt.Sprintf("getelemptr %s, %s", pr.operand(d.GetElemPtr.Src), pr.operand(d.GetElemPtr.Index))
	case KindBinary:
		return fmt.Sprintf("%s %s, %s", d.Binary.Op, pr.operand(d.Binary.LHS), pr.operand(d.Binary.RHS))
	case KindBranch:
		return fmt.Sprintf("br %s, %s, %s",
			pr.operand(d.Branch.Cond),
			pr.target(d.Branch.TrueBB, d.Branch.TrueArgs),
			pr.target(d.Branch.FalseBB, d.Branch.FalseArgs))
	case KindJump:
		return "jump " + pr.target(d.Jump.Target, d.Jump.Args)
	case KindCall:
		args := make([]string, len(d.Call.Args))
		for i, a := range d.Call.Args {
			args[i] = pr.operand(a)
		}
		return fmt.Sprintf("call %s(%s)", pr.p.MustFuncData(d.Call.Callee).Name(), strings.Join(args, ", "))
	case KindReturn:
		if d.Return.Value.IsValid() {
			return "ret " + pr.operand(d.Return.Value)
		}
		return "ret"
	default:
		// Constants and argument references are not normally placed as
		// instructions; render them anyway rather than failing.
		return pr.constData(d)
	}
}

func (pr *printer) target(bb BasicBlock, args []Value) string {
	if len(args) == 0 {
		return pr.blockName(bb)
	}
	as := make([]string, len(args))
	for i, a := range args {
		as[i] = pr.operand(a)
	}
	return fmt.Sprintf("%s(%s)", pr.blockName(bb), strings.Join(as, ", "))
}

// operand renders a value as it appears inside an instruction: constants
// inline as literals, everything else by name.
func (pr *printer) operand(v Value) string {
	var d *ValueData
	if v.IsGlobal() {
		d = pr.p.pool.values[v]
	} else {
		d = pr.fn.dfg.MustValueData(v)
	}
	if d.IsConst() {
		return pr.constData(d)
	}
	if v.IsGlobal() {
		return pr.globalName(v, d)
	}
	return pr.localName(v)
}

func (pr *printer) constText(v Value) string {
	if v.IsGlobal() {
		return pr.constData(pr.p.pool.values[v])
	}
	return pr.constData(pr.fn.dfg.MustValueData(v))
}

func (pr *printer) constData(d *ValueData) string {
	switch d.Kind {
	case KindInteger:
		return strconv.FormatInt(int64(d.Integer.Value), 10)
	case KindZeroInit:
		return "zeroinit"
	case KindUndef:
		return "undef"
	case KindAggregate:
		elems := make([]string, len(d.Aggregate.Elems))
		for i, e := range d.Aggregate.Elems {
			elems[i] = pr.constText(e)
		}
		return "{" + strings.Join(elems, ", ") + "}"
	default:
		return d.Kind.String()
	}
}

func (pr *printer) localName(v Value) string {
	if n, ok := pr.names[v]; ok {
		return n
	}
	d := pr.fn.dfg.MustValueData(v)
	n := d.Name
	if n == "" {
		n = "%" + strconv.Itoa(pr.next)
		pr.next++
	}
	pr.names[v] = n
	return n
}

func (pr *printer) blockName(bb BasicBlock) string {
	if n, ok := pr.bbNames[bb]; ok {
		return n
	}
	n := pr.fn.dfg.MustBBData(bb).Name
	if n == "" {
		n = "%" + strconv.Itoa(pr.next)
		pr.next++
	}
	pr.bbNames[bb] = n
	return n
}

func (pr *printer) globalName(v Value, d *ValueData) string {
	if d.Name != "" {
		return d.Name
	}
	return "%g" + strconv.Itoa(int(v&^globalBit))
}
