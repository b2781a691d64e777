package kernels

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlcprobe/internal/tir"
)

func TestVecAdd_Signature(t *testing.T) {
	mod, err := VecAdd()
	require.NoError(t, err)
	require.Equal(t, []string{"main"}, mod.FuncNames())

	fn, _ := mod.Func("main")
	require.Len(t, fn.Params, 3)
	for i, name := range []string{"A", "B", "C"} {
		p := fn.Params[i]
		assert.Equal(t, name, p.Name)
		assert.Equal(t, []int{VecAddLen}, p.Shape)
		assert.Equal(t, tir.Float32, p.DType)
	}
	assert.Equal(t, "main", fn.Attrs[tir.AttrGlobalSymbol])
	assert.Equal(t, true, fn.Attrs[tir.AttrNoAlias])
}

func TestVecAdd_Body(t *testing.T) {
	mod, err := VecAdd()
	require.NoError(t, err)
	fn, _ := mod.Func("main")

	loop, ok := fn.Body.(*tir.For)
	require.True(t, ok, "body is %T", fn.Body)
	assert.Equal(t, VecAddLen, loop.Extent)
	assert.Equal(t, tir.Serial, loop.Kind)

	blk, ok := loop.Body.(*tir.Block)
	require.True(t, ok, "loop body is %T", loop.Body)
	assert.Equal(t, "C", blk.Name)
	require.Len(t, blk.Iters, 1)
	assert.Equal(t, tir.Spatial, blk.Iters[0].Kind)
	assert.Equal(t, "vi", blk.Iters[0].Var.Name)
	assert.Same(t, loop.Var, blk.Iters[0].Binding)
}

func TestVecAdd_DeterministicStructure(t *testing.T) {
	m1, err := VecAdd()
	require.NoError(t, err)
	m2, err := VecAdd()
	require.NoError(t, err)
	if diff := cmp.Diff(m1, m2); diff != "" {
		t.Fatalf("independent builds differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, tir.Print(m1), tir.Print(m2))
}

func TestVecAdd_Computes(t *testing.T) {
	mod, err := VecAdd()
	require.NoError(t, err)
	fn, _ := mod.Func("main")

	a := make([]float32, VecAddLen)
	b := make([]float32, VecAddLen)
	c := make([]float32, VecAddLen)
	for i := range a {
		a[i] = float32(i)
		b[i] = float32(2 * i)
	}
	require.NoError(t, tir.Run(fn, map[string][]float32{"A": a, "B": b, "C": c}))
	for i := range c {
		if c[i] != float32(3*i) {
			t.Fatalf("C[%d]=%v want %v", i, c[i], 3*i)
		}
	}
}

func TestDemo_SingleDeclaration(t *testing.T) {
	var logs bytes.Buffer
	reg := tir.NewRegistry(zerolog.New(&logs))
	mod, err := Demo(reg, DemoOptions{}, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, mod)
	assert.Equal(t, 0, reg.Redefinitions(VecAddModule))
	assert.NotContains(t, logs.String(), "shadowed")
}

func TestDemo_RepeatedDeclarationShadows(t *testing.T) {
	var logs bytes.Buffer
	reg := tir.NewRegistry(zerolog.New(&logs))
	first, err := VecAdd()
	require.NoError(t, err)
	reg.Define(first)

	final, err := Demo(reg, DemoOptions{Declarations: 2}, zerolog.Nop())
	require.NoError(t, err)
	assert.NotSame(t, first, final)
	assert.Equal(t, 2, reg.Redefinitions(VecAddModule))
	assert.Contains(t, logs.String(), "identical module declared again")

	fn, ok := final.Func("main")
	require.True(t, ok)
	require.Len(t, fn.Params, 3)
	for _, p := range fn.Params {
		assert.Equal(t, []int{1024}, p.Shape)
		assert.Equal(t, tir.Float32, p.DType)
	}
}
