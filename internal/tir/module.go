package tir

import (
	"errors"
	"fmt"
	"sort"
)

// Well-known function attribute keys.
const (
	AttrGlobalSymbol = "global_symbol"
	AttrNoAlias      = "tir.noalias"
)

// ErrDuplicateFunc is returned when a module already holds a function of the
// same name.
var ErrDuplicateFunc = errors.New("tir: duplicate function")

// PrimFunc is a primitive function over buffer parameters.
type PrimFunc struct {
	Name   string
	Params []*Buffer
	Attrs  map[string]any
	Body   Stmt
}

// Param returns the parameter with the given name.
func (f *PrimFunc) Param(name string) (*Buffer, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// IRModule is a named collection of functions.
type IRModule struct {
	Name  string
	Funcs map[string]*PrimFunc
}

// NewModule creates an empty module.
func NewModule(name string) *IRModule {
	return &IRModule{Name: name, Funcs: make(map[string]*PrimFunc)}
}

// Func looks up a function by name.
func (m *IRModule) Func(name string) (*PrimFunc, bool) {
	f, ok := m.Funcs[name]
	return f, ok
}

// FuncNames returns function names in sorted order.
func (m *IRModule) FuncNames() []string {
	names := make([]string, 0, len(m.Funcs))
	for n := range m.Funcs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Add registers fn in the module.
func (m *IRModule) Add(fn *PrimFunc) error {
	if _, exists := m.Funcs[fn.Name]; exists {
		return fmt.Errorf("%w: %s.%s", ErrDuplicateFunc, m.Name, fn.Name)
	}
	m.Funcs[fn.Name] = fn
	return nil
}
