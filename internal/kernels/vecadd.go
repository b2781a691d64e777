// Package kernels holds the tensor IR modules shipped with mlcprobe.
package kernels

import (
	"fmt"

	"github.com/rs/zerolog"

	"mlcprobe/internal/tir"
)

const (
	// VecAddModule is the module name under which the vector-add kernel is declared.
	VecAddModule = "MyModuleVecAdd"
	// VecAddLen is the fixed length of every vector-add buffer.
	VecAddLen = 1024
)

// VecAdd builds a module with one function, main(A, B, C), computing
// C[i] = A[i] + B[i] over float32 buffers of length VecAddLen.
func VecAdd() (*tir.IRModule, error) {
	mod := tir.NewModule(VecAddModule)
	a := tir.NewBuffer("A", tir.Float32, VecAddLen)
	b := tir.NewBuffer("B", tir.Float32, VecAddLen)
	c := tir.NewBuffer("C", tir.Float32, VecAddLen)

	_, err := mod.DefineFunc("main", []*tir.Buffer{a, b, c}, func(f *tir.FuncBuilder) error {
		f.FuncAttr(map[string]any{tir.AttrGlobalSymbol: "main", tir.AttrNoAlias: true})
		return f.Grid([]string{"i"}, []int{VecAddLen}, func(loop []*tir.Var) error {
			return f.Block("C", func(blk *tir.BlockBuilder) error {
				axes, err := blk.AxisRemap("S", loop[0])
				if err != nil {
					return err
				}
				vi := axes[0]
				blk.Store(c, tir.Add(a.At(vi), b.At(vi)), vi)
				return nil
			})
		})
	})
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", VecAddModule, err)
	}
	return mod, nil
}

// DemoOptions controls Demo.
type DemoOptions struct {
	// Declarations is how many times the module is declared. Values above one
	// replay a repeated declaration: each later one shadows the earlier.
	Declarations int
}

// Demo declares the vector-add module into reg and returns the definition
// that is bound when it finishes. The module is never lowered or run here.
func Demo(reg *tir.Registry, opts DemoOptions, log zerolog.Logger) (*tir.IRModule, error) {
	n := opts.Declarations
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		mod, err := VecAdd()
		if err != nil {
			return nil, err
		}
		reg.Define(mod)
		log.Debug().Int("declaration", i+1).Str("module", mod.Name).Msg("declared")
	}
	mod, _ := reg.Lookup(VecAddModule)
	return mod, nil
}
