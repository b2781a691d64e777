package tir

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArg       = errors.New("tir: missing argument")
	ErrArgSize          = errors.New("tir: argument size does not match buffer shape")
	ErrUnsupportedDType = errors.New("tir: unsupported element type")
	ErrOutOfBounds      = errors.New("tir: buffer access out of bounds")
)

// Run evaluates fn over float32 argument slices keyed by parameter name.
// Stores write through to the caller's slices. The function is verified
// first; Run never mutates the IR.
func Run(fn *PrimFunc, args map[string][]float32) error {
	if err := VerifyFunc(fn); err != nil {
		return err
	}
	mem := make(map[*Buffer][]float32, len(fn.Params))
	for _, p := range fn.Params {
		if p.DType != Float32 {
			return fmt.Errorf("%w: %s is %s", ErrUnsupportedDType, p.Name, p.DType)
		}
		a, ok := args[p.Name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingArg, p.Name)
		}
		if len(a) != p.Size() {
			return fmt.Errorf("%w: %s wants %d elements, got %d", ErrArgSize, p.Name, p.Size(), len(a))
		}
		mem[p] = a
	}
	in := &interp{mem: mem, env: make(map[*Var]int64)}
	return in.stmt(fn.Body)
}

type interp struct {
	mem map[*Buffer][]float32
	env map[*Var]int64
}

func (in *interp) stmt(s Stmt) error {
	switch s := s.(type) {
	case nil:
	case *SeqStmt:
		for _, c := range s.Seq {
			if err := in.stmt(c); err != nil {
				return err
			}
		}
	case *For:
		defer delete(in.env, s.Var)
		for i := s.Min; i < s.Min+s.Extent; i++ {
			in.env[s.Var] = int64(i)
			if err := in.stmt(s.Body); err != nil {
				return err
			}
		}
	case *Block:
		for _, it := range s.Iters {
			v, err := in.index(it.Binding)
			if err != nil {
				return err
			}
			if v < int64(it.Dom.Min) || v >= int64(it.Dom.Min+it.Dom.Extent) {
				return fmt.Errorf("%w: axis %s=%d outside [%d, %d)", ErrOutOfBounds, it.Var.Name, v, it.Dom.Min, it.Dom.Min+it.Dom.Extent)
			}
			in.env[it.Var] = v
		}
		defer func() {
			for _, it := range s.Iters {
				delete(in.env, it.Var)
			}
		}()
		return in.stmt(s.Body)
	case *BufferStore:
		off, err := in.offset(s.Buffer, s.Indices)
		if err != nil {
			return err
		}
		val, err := in.value(s.Value)
		if err != nil {
			return err
		}
		in.mem[s.Buffer][off] = val
	default:
		return fmt.Errorf("tir: unknown statement %T", s)
	}
	return nil
}

func (in *interp) index(e Expr) (int64, error) {
	switch e := e.(type) {
	case *IntImm:
		return e.Value, nil
	case *Var:
		v, ok := in.env[e]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnboundVar, e.Name)
		}
		return v, nil
	case *AddExpr:
		a, err := in.index(e.A)
		if err != nil {
			return 0, err
		}
		b, err := in.index(e.B)
		if err != nil {
			return 0, err
		}
		return a + b, nil
	default:
		return 0, fmt.Errorf("%w: %T used as index", ErrTypeMismatch, e)
	}
}

func (in *interp) value(e Expr) (float32, error) {
	switch e := e.(type) {
	case *BufferLoad:
		off, err := in.offset(e.Buffer, e.Indices)
		if err != nil {
			return 0, err
		}
		return in.mem[e.Buffer][off], nil
	case *AddExpr:
		a, err := in.value(e.A)
		if err != nil {
			return 0, err
		}
		b, err := in.value(e.B)
		if err != nil {
			return 0, err
		}
		return a + b, nil
	default:
		i, err := in.index(e)
		return float32(i), err
	}
}

// offset computes the row-major element offset.
func (in *interp) offset(b *Buffer, indices []Expr) (int, error) {
	off := 0
	for i, e := range indices {
		v, err := in.index(e)
		if err != nil {
			return 0, err
		}
		if v < 0 || v >= int64(b.Shape[i]) {
			return 0, fmt.Errorf("%w: %s[%d] with extent %d", ErrOutOfBounds, b.Name, v, b.Shape[i])
		}
		off = off*b.Shape[i] + int(v)
	}
	return off, nil
}
