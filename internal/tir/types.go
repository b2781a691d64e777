package tir

import "fmt"

// DataType is the element type of a buffer or the type of an expression.
type DataType string

const (
	Float32 DataType = "float32"
	Int32   DataType = "int32"
)

// Buffer is a fixed-shape function parameter.
type Buffer struct {
	Name  string
	Shape []int
	DType DataType
}

// NewBuffer declares a buffer with the given element type and shape.
func NewBuffer(name string, dtype DataType, shape ...int) *Buffer {
	return &Buffer{Name: name, Shape: append([]int(nil), shape...), DType: dtype}
}

// Size is the number of elements.
func (b *Buffer) Size() int {
	n := 1
	for _, d := range b.Shape {
		n *= d
	}
	return n
}

// At indexes the buffer for reading.
func (b *Buffer) At(indices ...Expr) *BufferLoad {
	return &BufferLoad{Buffer: b, Indices: indices}
}

func (b *Buffer) String() string { return fmt.Sprintf("%s%v:%s", b.Name, b.Shape, b.DType) }

// Expr is a scalar expression.
type Expr interface {
	Type() DataType
	exprNode()
}

// Var is a scalar variable: a loop variable or a block axis.
type Var struct {
	Name  string
	DType DataType
}

func (v *Var) Type() DataType { return v.DType }
func (*Var) exprNode()        {}

// IntImm is an integer constant.
type IntImm struct {
	Value int64
}

func (*IntImm) Type() DataType { return Int32 }
func (*IntImm) exprNode()      {}

// Int returns an integer constant expression.
func Int(v int64) *IntImm { return &IntImm{Value: v} }

// BufferLoad reads one element.
type BufferLoad struct {
	Buffer  *Buffer
	Indices []Expr
}

func (l *BufferLoad) Type() DataType { return l.Buffer.DType }
func (*BufferLoad) exprNode()        {}

// AddExpr is the sum of two operands of the same type.
type AddExpr struct {
	A, B Expr
}

func (a *AddExpr) Type() DataType { return a.A.Type() }
func (*AddExpr) exprNode()        {}

// Add builds a + b.
func Add(a, b Expr) *AddExpr { return &AddExpr{A: a, B: b} }

// Stmt is a statement in a function body.
type Stmt interface {
	stmtNode()
}

// ForKind describes how a loop may be executed.
type ForKind string

const (
	Serial   ForKind = "serial"
	Parallel ForKind = "parallel"
)

// For iterates Var over [Min, Min+Extent).
type For struct {
	Var    *Var
	Min    int
	Extent int
	Kind   ForKind
	Body   Stmt
}

func (*For) stmtNode() {}

// IterKind is the role of a block axis.
type IterKind string

const (
	Spatial   IterKind = "S"
	Reduction IterKind = "R"
)

// Range is a half-open integer interval [Min, Min+Extent).
type Range struct {
	Min    int
	Extent int
}

// IterVar is a block axis bound to an expression over enclosing loop vars.
type IterVar struct {
	Var     *Var
	Dom     Range
	Kind    IterKind
	Binding Expr
}

// Block is a named unit of computation with its own iteration axes.
type Block struct {
	Name  string
	Iters []*IterVar
	Body  Stmt
}

func (*Block) stmtNode() {}

// BufferStore writes one element.
type BufferStore struct {
	Buffer  *Buffer
	Value   Expr
	Indices []Expr
}

func (*BufferStore) stmtNode() {}

// SeqStmt runs statements in order.
type SeqStmt struct {
	Seq []Stmt
}

func (*SeqStmt) stmtNode() {}
