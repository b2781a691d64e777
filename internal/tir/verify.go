package tir

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownBuffer = errors.New("tir: buffer is not a parameter")
	ErrIndexArity    = errors.New("tir: index count does not match buffer rank")
	ErrIndexRange    = errors.New("tir: constant index out of range")
	ErrTypeMismatch  = errors.New("tir: type mismatch")
	ErrEmptyBody     = errors.New("tir: function has no body")
)

// Verify checks every function in the module.
func Verify(m *IRModule) error {
	for _, name := range m.FuncNames() {
		if err := VerifyFunc(m.Funcs[name]); err != nil {
			return fmt.Errorf("%s: %w", m.Name, err)
		}
	}
	return nil
}

// VerifyFunc checks that every buffer access targets a parameter with the
// right rank, every variable is bound by an enclosing loop or block, constant
// indices are in range and stored values match the buffer element type.
func VerifyFunc(fn *PrimFunc) error {
	if fn.Body == nil {
		return fmt.Errorf("%s: %w", fn.Name, ErrEmptyBody)
	}
	v := &verifier{params: make(map[*Buffer]bool), scope: make(map[*Var]bool)}
	for _, p := range fn.Params {
		v.params[p] = true
	}
	if err := v.stmt(fn.Body); err != nil {
		return fmt.Errorf("%s: %w", fn.Name, err)
	}
	return nil
}

type verifier struct {
	params map[*Buffer]bool
	scope  map[*Var]bool
}

func (v *verifier) stmt(s Stmt) error {
	switch s := s.(type) {
	case nil:
	case *SeqStmt:
		for _, c := range s.Seq {
			if err := v.stmt(c); err != nil {
				return err
			}
		}
	case *For:
		defer v.bind(s.Var)()
		return v.stmt(s.Body)
	case *Block:
		for _, it := range s.Iters {
			if err := v.expr(it.Binding); err != nil {
				return fmt.Errorf("block %q axis %s: %w", s.Name, it.Var.Name, err)
			}
		}
		vars := make([]*Var, len(s.Iters))
		for i, it := range s.Iters {
			vars[i] = it.Var
		}
		defer v.bind(vars...)()
		if err := v.stmt(s.Body); err != nil {
			return fmt.Errorf("block %q: %w", s.Name, err)
		}
	case *BufferStore:
		if err := v.access(s.Buffer, s.Indices); err != nil {
			return err
		}
		if err := v.expr(s.Value); err != nil {
			return err
		}
		if s.Value.Type() != s.Buffer.DType {
			return fmt.Errorf("%w: store %s into %s", ErrTypeMismatch, s.Value.Type(), s.Buffer.Name)
		}
	default:
		return fmt.Errorf("tir: unknown statement %T", s)
	}
	return nil
}

// bind puts vars in scope and returns a func restoring the previous scope, so
// an inner loop reusing an outer loop's Var leaves the outer binding intact.
func (v *verifier) bind(vars ...*Var) func() {
	prev := make([]bool, len(vars))
	for i, x := range vars {
		prev[i] = v.scope[x]
		v.scope[x] = true
	}
	return func() {
		for i := len(vars) - 1; i >= 0; i-- {
			if prev[i] {
				v.scope[vars[i]] = true
			} else {
				delete(v.scope, vars[i])
			}
		}
	}
}

func (v *verifier) expr(e Expr) error {
	switch e := e.(type) {
	case *IntImm:
	case *Var:
		if !v.scope[e] {
			return fmt.Errorf("%w: %s", ErrUnboundVar, e.Name)
		}
	case *BufferLoad:
		return v.access(e.Buffer, e.Indices)
	case *AddExpr:
		if err := v.expr(e.A); err != nil {
			return err
		}
		if err := v.expr(e.B); err != nil {
			return err
		}
		if e.A.Type() != e.B.Type() {
			return fmt.Errorf("%w: %s + %s", ErrTypeMismatch, e.A.Type(), e.B.Type())
		}
	default:
		return fmt.Errorf("tir: unknown expression %T", e)
	}
	return nil
}

func (v *verifier) access(b *Buffer, indices []Expr) error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrUnknownBuffer)
	}
	if !v.params[b] {
		return fmt.Errorf("%w: %s", ErrUnknownBuffer, b.Name)
	}
	if len(indices) != len(b.Shape) {
		return fmt.Errorf("%w: %s has rank %d, got %d indices", ErrIndexArity, b.Name, len(b.Shape), len(indices))
	}
	for i, idx := range indices {
		if err := v.expr(idx); err != nil {
			return err
		}
		if idx.Type() != Int32 {
			return fmt.Errorf("%w: index %d of %s is %s", ErrTypeMismatch, i, b.Name, idx.Type())
		}
		if c, ok := idx.(*IntImm); ok && (c.Value < 0 || c.Value >= int64(b.Shape[i])) {
			return fmt.Errorf("%w: %s[%d] with extent %d", ErrIndexRange, b.Name, c.Value, b.Shape[i])
		}
	}
	return nil
}
