package ir

import "fmt"

// idAlloc hands out program-wide unique handles. Handles start at 1 so
// the zero value of each handle type stays a sentinel.
type idAlloc struct {
	nextValue uint32
	nextBB    uint32
	nextFunc  uint32
}

func (a *idAlloc) newValue(global bool) Value {
	a.nextValue++
	v := Value(a.nextValue)
	if v&globalBit != 0 {
		panic("ir: value handle space exhausted")
	}
	if global {
		v |= globalBit
	}
	return v
}

func (a *idAlloc) newBB() BasicBlock {
	a.nextBB++
	return BasicBlock(a.nextBB)
}

func (a *idAlloc) newFunc() Function {
	a.nextFunc++
	return Function(a.nextFunc)
}

// globalPool owns the program's global values. All access goes through
// the borrow cell.
type globalPool struct {
	cell   borrowCell
	values map[Value]*ValueData
	order  []Value
}

func newGlobalPool() *globalPool {
	return &globalPool{values: make(map[Value]*ValueData)}
}

func (p *globalPool) get(v Value) (*ValueData, bool) {
	release := p.cell.borrow()
	defer release()
	d, ok := p.values[v]
	return d, ok
}

func (p *globalPool) put(v Value, d *ValueData) {
	release := p.cell.borrowMut()
	defer release()
	p.values[v] = d
	p.order = append(p.order, v)
}

func (p *globalPool) addUse(v, user Value) {
	release := p.cell.borrowMut()
	defer release()
	d, ok := p.values[v]
	if !ok {
		panic(fmt.Sprintf("ir: unknown global value %d", v))
	}
	d.UsedBy[user] = struct{}{}
}

func (p *globalPool) dropUse(v, user Value) {
	release := p.cell.borrowMut()
	defer release()
	if d, ok := p.values[v]; ok {
		delete(d.UsedBy, user)
	}
}

func (p *globalPool) remove(v Value) {
	release := p.cell.borrowMut()
	defer release()
	delete(p.values, v)
	for i, g := range p.order {
		if g == v {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}
