package tir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Print renders the module as indented text. Output is deterministic:
// functions and attributes are emitted in sorted order.
func Print(m *IRModule) string {
	p := &printer{}
	p.line("module %s {", m.Name)
	p.depth++
	for _, name := range m.FuncNames() {
		p.fn(m.Funcs[name])
	}
	p.depth--
	p.line("}")
	return p.sb.String()
}

type printer struct {
	sb    strings.Builder
	depth int
}

func (p *printer) line(format string, args ...any) {
	p.sb.WriteString(strings.Repeat("  ", p.depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) fn(f *PrimFunc) {
	params := make([]string, len(f.Params))
	for i, b := range f.Params {
		dims := make([]string, len(b.Shape))
		for j, d := range b.Shape {
			dims[j] = strconv.Itoa(d)
		}
		params[i] = fmt.Sprintf("%s: buffer<%s>[%s]", b.Name, b.DType, strings.Join(dims, ", "))
	}
	p.line("func %s(%s) {", f.Name, strings.Join(params, ", "))
	p.depth++
	if len(f.Attrs) > 0 {
		keys := make([]string, 0, len(f.Attrs))
		for k := range f.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		kv := make([]string, len(keys))
		for i, k := range keys {
			kv[i] = fmt.Sprintf("%q: %s", k, attrValue(f.Attrs[k]))
		}
		p.line("attrs {%s}", strings.Join(kv, ", "))
	}
	if f.Body != nil {
		p.stmt(f.Body)
	}
	p.depth--
	p.line("}")
}

func attrValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	default:
		return fmt.Sprint(v)
	}
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case nil:
	case *SeqStmt:
		for _, c := range s.Seq {
			p.stmt(c)
		}
	case *For:
		p.line("for %s in range(%d, %d) %s {", s.Var.Name, s.Min, s.Min+s.Extent, s.Kind)
		p.depth++
		p.stmt(s.Body)
		p.depth--
		p.line("}")
	case *Block:
		p.line("block %q {", s.Name)
		p.depth++
		for _, it := range s.Iters {
			p.line("%s = axis.%s[%d, %d](%s)", it.Var.Name, it.Kind, it.Dom.Min, it.Dom.Min+it.Dom.Extent, exprString(it.Binding))
		}
		p.stmt(s.Body)
		p.depth--
		p.line("}")
	case *BufferStore:
		p.line("%s = %s", access(s.Buffer, s.Indices), exprString(s.Value))
	default:
		p.line("<%T>", s)
	}
}

func access(b *Buffer, indices []Expr) string {
	idx := make([]string, len(indices))
	for i, e := range indices {
		idx[i] = exprString(e)
	}
	return fmt.Sprintf("%s[%s]", b.Name, strings.Join(idx, ", "))
}

func exprString(e Expr) string {
	switch e := e.(type) {
	case *IntImm:
		return strconv.FormatInt(e.Value, 10)
	case *Var:
		return e.Name
	case *BufferLoad:
		return access(e.Buffer, e.Indices)
	case *AddExpr:
		return exprString(e.A) + " + " + exprString(e.B)
	default:
		return fmt.Sprintf("<%T>", e)
	}
}
