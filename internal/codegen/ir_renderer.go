package codegen

import (
	"fmt"
	"strings"

	"github.com/liva-lang/livac-sub000/internal/effects"
	"github.com/liva-lang/livac-sub000/internal/ir"
)

// handleKind tracks what a bound task handle must be joined with.
type handleKind int

const (
	handleNone handleKind = iota
	handleAsync
	handleThread
)

type scopeEntry struct {
	typ    ir.Type
	handle handleKind
}

// irRenderer walks the lowered program and writes target source. It keeps a
// scope stack of binding types so string interpolation can choose between
// Display and Debug placeholders, and so awaited handles join with the
// right primitive.
type irRenderer struct {
	b      builder
	facts  *effects.Facts
	scopes []map[string]scopeEntry

	fns     map[string]*ir.Function
	fields  map[string]map[string]ir.Type
	inFall  bool
	retUnit bool
}

func renderIR(prog *ir.Program, facts *effects.Facts) (string, error) {
	r := &irRenderer{
		facts:  facts,
		fns:    map[string]*ir.Function{},
		fields: map[string]map[string]ir.Type{},
	}
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ir.Function:
			r.fns[d.Name] = d
		case *ir.TypeDef:
			m := map[string]ir.Type{}
			for _, f := range d.Fields {
				m[f.Name] = f.Type
			}
			r.fields[d.Name] = m
		case *ir.ClassDef:
			m := map[string]ir.Type{}
			for _, f := range d.Fields {
				m[f.Name] = f.Type
			}
			r.fields[d.Name] = m
			for _, method := range d.Methods {
				r.fns[method.Name] = method
			}
		}
	}

	if facts != nil && facts.UsesParallel {
		r.b.line("use rayon::prelude::*;")
		r.b.line("")
	}

	for i, decl := range prog.Decls {
		if i > 0 {
			r.b.line("")
		}
		switch d := decl.(type) {
		case *ir.TypeDef:
			r.structDef(d.Name, visPrefix(d.Vis), d.Fields, "")
		case *ir.ClassDef:
			r.classDef(d)
		case *ir.Function:
			r.function(d, false)
		case *ir.Test:
			r.test(d)
		}
	}
	return r.b.String(), nil
}

func (r *irRenderer) structDef(name, vis string, fields []ir.Field, base string) {
	r.b.line("#[derive(Debug, Clone)]")
	r.b.linef("%sstruct %s {", vis, typeName(name))
	r.b.in()
	if base != "" {
		r.b.linef("pub base: %s,", typeName(base))
	}
	for _, f := range fields {
		r.b.linef("%s%s: %s,", visPrefix(f.Vis), SnakeCase(f.Name), rustType(f.Type))
	}
	r.b.out()
	r.b.line("}")
}

// classDef renders a class as a struct plus an impl block; the base class,
// when present, becomes a leading composed field.
func (r *irRenderer) classDef(d *ir.ClassDef) {
	r.structDef(d.Name, visPrefix(d.Vis), d.Fields, d.Base)
	if len(d.Methods) == 0 {
		return
	}
	r.b.line("")
	r.b.linef("impl %s {", typeName(d.Name))
	r.b.in()
	for i, m := range d.Methods {
		if i > 0 {
			r.b.line("")
		}
		r.function(m, true)
	}
	r.b.out()
	r.b.line("}")
}

func (r *irRenderer) function(fn *ir.Function, method bool) {
	isMain := fn.Name == "main" && !method
	async := fn.IsAsync || (isMain && r.facts != nil && r.facts.UsesAsync)
	if isMain && async {
		r.b.line("#[tokio::main]")
	}

	var sig strings.Builder
	if !isMain {
		sig.WriteString(visPrefix(fn.Vis))
	}
	if async {
		sig.WriteString("async ")
	}
	sig.WriteString("fn ")
	sig.WriteString(SnakeCase(fn.Name))
	sig.WriteByte('(')
	if method {
		sig.WriteString("&self")
	}
	r.pushScope()
	for i, p := range fn.Params {
		if i > 0 || method {
			sig.WriteString(", ")
		}
		sig.WriteString(SnakeCase(p.Name))
		sig.WriteString(": ")
		sig.WriteString(rustType(p.Type))
		r.bind(p.Name, p.Type, handleNone)
	}
	sig.WriteByte(')')

	ret := fn.Return
	switch {
	case fn.Fallible:
		inner := "()"
		if ret.Kind != ir.KindUnit {
			inner = rustType(ret)
		}
		sig.WriteString(" -> Result<" + inner + ", String>")
	case ret.Kind != ir.KindUnit:
		sig.WriteString(" -> " + rustType(ret))
	}
	sig.WriteString(" {")
	r.b.line(sig.String())

	r.inFall = fn.Fallible
	r.retUnit = ret.Kind == ir.KindUnit
	r.b.in()
	r.stmts(fn.Body)
	if fn.Fallible && r.retUnit && !endsWithReturn(fn.Body) {
		r.b.line("Ok(())")
	}
	r.b.out()
	r.b.line("}")
	r.popScope()
	r.inFall = false
}

func (r *irRenderer) test(t *ir.Test) {
	r.b.line("#[test]")
	r.b.linef("fn %s() {", testFnName(t.Name))
	r.pushScope()
	r.b.in()
	r.stmts(t.Body)
	r.b.out()
	r.b.line("}")
	r.popScope()
}

// testFnName turns a free-form test description into a function name.
func testFnName(desc string) string {
	var out strings.Builder
	for _, ch := range strings.ToLower(desc) {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			out.WriteRune(ch)
		default:
			if n := out.Len(); n > 0 && out.String()[n-1] != '_' {
				out.WriteByte('_')
			}
		}
	}
	name := strings.Trim(out.String(), "_")
	if name == "" {
		name = "case"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}

func endsWithReturn(stmts []ir.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[len(stmts)-1].(type) {
	case *ir.Return, *ir.FailReturn:
		return true
	}
	return false
}

func (r *irRenderer) stmts(list []ir.Stmt) {
	for _, s := range list {
		r.stmt(s)
	}
}

func (r *irRenderer) stmt(stmt ir.Stmt) {
	switch s := stmt.(type) {
	case *ir.Let:
		kw := "let mut"
		if s.Const {
			kw = "let"
		}
		typ := s.Type
		line := fmt.Sprintf("%s %s", kw, SnakeCase(s.Name))
		if !typ.IsInferred() {
			line += ": " + rustType(typ)
		}
		line += " = " + r.expr(s.Value) + ";"
		r.b.line(line)
		r.bind(s.Name, typ, handleForValue(s.Value))
	case *ir.Assign:
		r.b.linef("%s = %s;", r.expr(s.Target), r.expr(s.Value))
	case *ir.If:
		r.b.linef("if %s {", r.expr(s.Cond))
		r.blockBody(s.Then)
		if s.Else != nil {
			if nested, ok := elseIfChain(s.Else); ok {
				r.b.linef("} else if %s {", r.expr(nested.Cond))
				r.blockBody(nested.Then)
				if nested.Else != nil {
					r.elseTail(nested.Else)
				}
			} else {
				r.elseTail(s.Else)
			}
		}
		r.b.line("}")
	case *ir.While:
		r.b.linef("while %s {", r.expr(s.Cond))
		r.blockBody(s.Body)
		r.b.line("}")
	case *ir.For:
		if s.Parallel {
			r.parallelFor(s)
			return
		}
		r.b.linef("for %s in %s {", SnakeCase(s.Var), r.iterable(s.Iterable))
		r.pushScope()
		r.bind(s.Var, s.VarType, handleNone)
		r.b.in()
		r.stmts(s.Body)
		r.b.out()
		r.popScope()
		r.b.line("}")
	case *ir.Return:
		switch {
		case s.Value == nil && r.inFall:
			r.b.line("return Ok(());")
		case s.Value == nil:
			r.b.line("return;")
		case r.inFall:
			r.b.linef("return Ok(%s);", r.expr(s.Value))
		default:
			r.b.linef("return %s;", r.expr(s.Value))
		}
	case *ir.FailReturn:
		r.b.linef("return Err(%s);", r.errValue(s.Value))
	case *ir.ExprStmt:
		r.b.line(r.expr(s.Expr) + ";")
	case *ir.Break:
		r.b.line("break;")
	case *ir.Continue:
		r.b.line("continue;")
	}
}

func elseIfChain(els []ir.Stmt) (*ir.If, bool) {
	if len(els) == 1 {
		if nested, ok := els[0].(*ir.If); ok {
			return nested, true
		}
	}
	return nil, false
}

func (r *irRenderer) elseTail(els []ir.Stmt) {
	r.b.line("} else {")
	r.blockBody(els)
}

func (r *irRenderer) blockBody(body []ir.Stmt) {
	r.pushScope()
	r.b.in()
	r.stmts(body)
	r.b.out()
	r.popScope()
}

// parallelFor renders a data-parallel loop on the parallel iterator crate.
// The chunk option maps to a minimum split length, threads to a dedicated
// pool; ordering and scheduling hints have no iterator equivalent and are
// accepted but dropped.
func (r *irRenderer) parallelFor(s *ir.For) {
	var chunk, threads ir.Expr
	for _, opt := range s.Options {
		switch opt.Name {
		case "chunk":
			chunk = opt.Value
		case "threads":
			threads = opt.Value
		}
	}
	iter := r.expr(s.Iterable) + ".into_par_iter()"
	if chunk != nil {
		iter += ".with_min_len(" + r.expr(chunk) + ")"
	}
	if threads != nil {
		r.b.linef("rayon::ThreadPoolBuilder::new().num_threads(%s).build().unwrap().install(|| {", r.expr(threads))
		r.b.in()
	}
	r.b.linef("%s.for_each(|%s| {", iter, SnakeCase(s.Var))
	r.pushScope()
	r.bind(s.Var, s.VarType, handleNone)
	r.b.in()
	r.stmts(s.Body)
	r.b.out()
	r.popScope()
	r.b.line("});")
	if threads != nil {
		r.b.out()
		r.b.line("});")
	}
}

// iterable renders a for-loop source; ranges drop their grouping parens.
func (r *irRenderer) iterable(e ir.Expr) string {
	if rng, ok := e.(*ir.Range); ok {
		return r.expr(rng.Low) + ".." + r.expr(rng.High)
	}
	return r.expr(e)
}

// errValue converts a fail operand into the error payload string.
func (r *irRenderer) errValue(e ir.Expr) string {
	if r.exprType(e).Kind == ir.KindString {
		return r.expr(e)
	}
	return "format!(\"{:?}\", " + r.expr(e) + ")"
}

func handleForValue(e ir.Expr) handleKind {
	if tc, ok := e.(*ir.TaskCall); ok && !tc.Fire {
		if tc.Mode == ir.ModePar {
			return handleThread
		}
		return handleAsync
	}
	return handleNone
}
