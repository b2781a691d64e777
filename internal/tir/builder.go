package tir

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundVar is returned when an expression uses a variable that no
	// enclosing loop or block defines.
	ErrUnboundVar = errors.New("tir: unbound variable")
	// ErrAxisKinds is returned when AxisRemap kinds do not match its vars.
	ErrAxisKinds = errors.New("tir: invalid axis kinds")
	// ErrGridShape is returned when Grid names and extents differ in length
	// or an extent is not positive.
	ErrGridShape = errors.New("tir: invalid grid")
)

// FuncBuilder assembles the body of a PrimFunc. It is only valid inside the
// callback passed to IRModule.DefineFunc.
type FuncBuilder struct {
	fn      *PrimFunc
	frames  [][]Stmt
	extents map[*Var]int
}

// DefineFunc builds a function from params and body, verifies it and adds it
// to the module.
func (m *IRModule) DefineFunc(name string, params []*Buffer, body func(f *FuncBuilder) error) (*PrimFunc, error) {
	fb := &FuncBuilder{
		fn:      &PrimFunc{Name: name, Params: params, Attrs: map[string]any{}},
		extents: make(map[*Var]int),
	}
	fb.push()
	if err := body(fb); err != nil {
		return nil, fmt.Errorf("define %s: %w", name, err)
	}
	fb.fn.Body = seq(fb.pop())
	if err := VerifyFunc(fb.fn); err != nil {
		return nil, err
	}
	if err := m.Add(fb.fn); err != nil {
		return nil, err
	}
	return fb.fn, nil
}

// FuncAttr merges attrs into the function attributes.
func (f *FuncBuilder) FuncAttr(attrs map[string]any) {
	for k, v := range attrs {
		f.fn.Attrs[k] = v
	}
}

// Grid emits a perfect serial loop nest, one loop per (name, extent) pair,
// outermost first, and calls body with the loop variables.
func (f *FuncBuilder) Grid(names []string, extents []int, body func(vars []*Var) error) error {
	if len(names) == 0 || len(names) != len(extents) {
		return fmt.Errorf("%w: %d names for %d extents", ErrGridShape, len(names), len(extents))
	}
	vars := make([]*Var, len(names))
	for i, n := range names {
		if extents[i] <= 0 {
			return fmt.Errorf("%w: extent %d of %s", ErrGridShape, extents[i], n)
		}
		vars[i] = &Var{Name: n, DType: Int32}
		f.extents[vars[i]] = extents[i]
	}
	defer func() {
		for _, v := range vars {
			delete(f.extents, v)
		}
	}()

	f.push()
	if err := body(vars); err != nil {
		return err
	}
	inner := seq(f.pop())
	for i := len(vars) - 1; i >= 0; i-- {
		inner = &For{Var: vars[i], Min: 0, Extent: extents[i], Kind: Serial, Body: inner}
	}
	f.emit(inner)
	return nil
}

// Block emits a named block.
func (f *FuncBuilder) Block(name string, body func(b *BlockBuilder) error) error {
	bb := &BlockBuilder{f: f}
	f.push()
	if err := body(bb); err != nil {
		return fmt.Errorf("block %q: %w", name, err)
	}
	f.emit(&Block{Name: name, Iters: bb.iters, Body: seq(f.pop())})
	return nil
}

// Store emits buf[indices...] = value.
func (f *FuncBuilder) Store(buf *Buffer, value Expr, indices ...Expr) {
	f.emit(&BufferStore{Buffer: buf, Value: value, Indices: indices})
}

func (f *FuncBuilder) push() { f.frames = append(f.frames, nil) }

func (f *FuncBuilder) pop() []Stmt {
	top := f.frames[len(f.frames)-1]
	f.frames = f.frames[:len(f.frames)-1]
	return top
}

func (f *FuncBuilder) emit(s Stmt) {
	f.frames[len(f.frames)-1] = append(f.frames[len(f.frames)-1], s)
}

func seq(stmts []Stmt) Stmt {
	switch len(stmts) {
	case 0:
		return nil
	case 1:
		return stmts[0]
	}
	return &SeqStmt{Seq: stmts}
}

// BlockBuilder declares the axes of a block and emits its body.
type BlockBuilder struct {
	f     *FuncBuilder
	iters []*IterVar
}

// AxisRemap declares one block axis per loop variable, in order. kinds holds
// one character per variable: 'S' for spatial, 'R' for reduction. Each axis
// is named "v" + the loop variable name and spans the loop's extent.
func (b *BlockBuilder) AxisRemap(kinds string, loopVars ...*Var) ([]*Var, error) {
	if len(kinds) != len(loopVars) {
		return nil, fmt.Errorf("%w: %q for %d vars", ErrAxisKinds, kinds, len(loopVars))
	}
	out := make([]*Var, len(loopVars))
	for i, lv := range loopVars {
		kind := IterKind(kinds[i : i+1])
		if kind != Spatial && kind != Reduction {
			return nil, fmt.Errorf("%w: %q", ErrAxisKinds, kind)
		}
		ext, ok := b.f.extents[lv]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnboundVar, lv.Name)
		}
		v := &Var{Name: "v" + lv.Name, DType: Int32}
		b.iters = append(b.iters, &IterVar{Var: v, Dom: Range{Min: 0, Extent: ext}, Kind: kind, Binding: lv})
		out[i] = v
	}
	return out, nil
}

// Store emits buf[indices...] = value inside the block.
func (b *BlockBuilder) Store(buf *Buffer, value Expr, indices ...Expr) {
	b.f.Store(buf, value, indices...)
}
