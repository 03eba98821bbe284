package codegen

import (
	"fmt"
	"strings"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/effects"
	"github.com/liva-lang/livac-sub000/internal/ir"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// astRenderer is the whole-program fallback used when lowering left any
// Unsupported marker. It renders straight from the syntax tree with
// conservative defaults: untyped parameters and returns become the wide
// integer type, fail sites panic, and lambdas are refused outright because
// this path carries no type information to convert them with.
type astRenderer struct {
	b        builder
	facts    *effects.Facts
	asyncFns map[string]bool
	parLets  map[string]bool
	err      *Error
}

func renderAST(prog *ast.Program, facts *effects.Facts) (string, error) {
	r := &astRenderer{
		facts:    facts,
		asyncFns: map[string]bool{},
		parLets:  map[string]bool{},
	}
	for _, decl := range prog.Decls {
		if fn, ok := decl.(*ast.FnDecl); ok && fn.IsAsync {
			r.asyncFns[fn.Name.Name] = true
		}
		if cls, ok := decl.(*ast.ClassDecl); ok {
			for _, m := range cls.Methods {
				if m.IsAsync {
					r.asyncFns[m.Name.Name] = true
				}
			}
		}
	}

	if facts != nil && facts.UsesParallel {
		r.b.line("use rayon::prelude::*;")
		r.b.line("")
	}

	first := true
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.ImportDecl, *ast.ExternDecl:
			continue
		default:
			if !first {
				r.b.line("")
			}
			first = false
			r.decl(d)
		}
		if r.err != nil {
			return "", r.err
		}
	}
	if r.err != nil {
		return "", r.err
	}
	return r.b.String(), nil
}

func (r *astRenderer) fail(code diag.Code, node ast.Node, format string, args ...any) string {
	if r.err == nil {
		r.err = &Error{Code: code, Message: fmt.Sprintf(format, args...), Span: node.Span()}
	}
	return "()"
}

func (r *astRenderer) decl(decl ast.Decl) {
	switch d := decl.(type) {
	case *ast.TypeDecl:
		r.fieldsStruct(d.Name.Name, visPrefix(d.Name.Vis), d.Fields, "")
	case *ast.ClassDecl:
		base := ""
		if d.Base != nil {
			base = d.Base.Name
		}
		r.fieldsStruct(d.Name.Name, visPrefix(d.Name.Vis), d.Fields, base)
		if len(d.Methods) > 0 {
			r.b.line("")
			r.b.linef("impl %s {", typeName(d.Name.Name))
			r.b.in()
			for i, m := range d.Methods {
				if i > 0 {
					r.b.line("")
				}
				r.fn(m, true)
			}
			r.b.out()
			r.b.line("}")
		}
	case *ast.FnDecl:
		r.fn(d, false)
	case *ast.TestDecl:
		r.b.line("#[test]")
		r.b.linef("fn %s() {", testFnName(d.Name))
		r.b.in()
		r.block(d.Body)
		r.b.out()
		r.b.line("}")
	}
}

func (r *astRenderer) fieldsStruct(name, vis string, fields []*ast.FieldDef, base string) {
	r.b.line("#[derive(Debug, Clone)]")
	r.b.linef("%sstruct %s {", vis, typeName(name))
	r.b.in()
	if base != "" {
		r.b.linef("pub base: %s,", typeName(base))
	}
	for _, f := range fields {
		r.b.linef("%s%s: %s,", visPrefix(f.Name.Vis), SnakeCase(f.Name.Name), r.typ(f.Type))
	}
	r.b.out()
	r.b.line("}")
}

// typ maps a type annotation through the shared type model; a missing
// annotation falls back to the conservative wide integer.
func (r *astRenderer) typ(t ast.TypeExpr) string {
	if t == nil {
		return "i64"
	}
	return rustType(ir.FromSpelling(typeSpelling(t)))
}

func typeSpelling(t ast.TypeExpr) string {
	switch typ := t.(type) {
	case *ast.NamedType:
		return typ.Name.Name
	case *ast.ArrayType:
		return typeSpelling(typ.Elem) + "[]"
	case *ast.OptionalType:
		return typeSpelling(typ.Elem) + "?"
	default:
		return ""
	}
}

func (r *astRenderer) fn(d *ast.FnDecl, method bool) {
	isMain := d.Name.Name == "main" && !method
	async := d.IsAsync || (isMain && r.facts != nil && r.facts.UsesAsync)
	if isMain && async {
		r.b.line("#[tokio::main]")
	}

	var sig strings.Builder
	if !isMain {
		sig.WriteString(visPrefix(d.Name.Vis))
	}
	if async {
		sig.WriteString("async ")
	}
	sig.WriteString("fn ")
	sig.WriteString(SnakeCase(d.Name.Name))
	sig.WriteByte('(')
	if method {
		sig.WriteString("&self")
	}
	for i, p := range d.Params {
		if i > 0 || method {
			sig.WriteString(", ")
		}
		sig.WriteString(SnakeCase(p.Name.Name))
		sig.WriteString(": ")
		sig.WriteString(r.typ(p.Type))
	}
	sig.WriteByte(')')
	if ret := r.returnType(d); ret != "" {
		sig.WriteString(" -> " + ret)
	}
	sig.WriteString(" {")
	r.b.line(sig.String())

	r.b.in()
	if d.ExprBody != nil {
		r.b.line(r.expr(d.ExprBody))
	} else if d.Body != nil {
		r.block(d.Body)
	}
	r.b.out()
	r.b.line("}")
}

// returnType resolves the declared return type, defaulting to the wide
// integer whenever any return carries a value and the declaration is
// silent.
func (r *astRenderer) returnType(d *ast.FnDecl) string {
	if d.ReturnType != nil {
		t := ir.FromSpelling(typeSpelling(d.ReturnType))
		if t.Kind == ir.KindUnit {
			return ""
		}
		return rustType(t)
	}
	if d.ExprBody != nil {
		return "i64"
	}
	returns := false
	if d.Body != nil {
		ast.Inspect(d.Body, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.ReturnStmt:
				if node.Value != nil {
					returns = true
				}
			case *ast.LambdaExpr:
				return false
			}
			return !returns
		})
	}
	if returns {
		return "i64"
	}
	return ""
}

func (r *astRenderer) block(b *ast.BlockStmt) {
	for _, s := range b.Stmts {
		r.stmt(s)
	}
}

func (r *astRenderer) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		kw := "let mut"
		if s.Const {
			kw = "let"
		}
		line := fmt.Sprintf("%s %s", kw, SnakeCase(s.Name.Name))
		if s.Type != nil {
			line += ": " + r.typ(s.Type)
		}
		line += " = " + r.expr(s.Value) + ";"
		r.b.line(line)
		if call, ok := s.Value.(*ast.CallExpr); ok && call.Policy == ast.PolicyTaskPar {
			r.parLets[s.Name.Name] = true
		}
	case *ast.IfStmt:
		r.b.linef("if %s {", r.expr(s.Cond))
		r.b.in()
		r.block(s.Then)
		r.b.out()
		r.elseChain(s.Else)
		r.b.line("}")
	case *ast.WhileStmt:
		r.b.linef("while %s {", r.expr(s.Cond))
		r.b.in()
		r.block(s.Body)
		r.b.out()
		r.b.line("}")
	case *ast.ForStmt:
		r.forStmt(s)
	case *ast.ReturnStmt:
		if s.Value == nil {
			r.b.line("return;")
		} else {
			r.b.linef("return %s;", r.expr(s.Value))
		}
	case *ast.FailStmt:
		r.b.linef("panic!(\"{}\", %s);", r.expr(s.Value))
	case *ast.BreakStmt:
		r.b.line("break;")
	case *ast.ContinueStmt:
		r.b.line("continue;")
	case *ast.ExprStmt:
		if assign, ok := s.Expr.(*ast.AssignExpr); ok {
			r.b.linef("%s = %s;", r.expr(assign.Target), r.expr(assign.Value))
			return
		}
		r.b.line(r.expr(s.Expr) + ";")
	case *ast.BlockStmt:
		r.b.line("{")
		r.b.in()
		r.block(s)
		r.b.out()
		r.b.line("}")
	default:
		r.fail(diag.CodeGenUnsupportedNode, stmt, "cannot generate code for this statement")
	}
}

func (r *astRenderer) elseChain(els ast.Stmt) {
	switch e := els.(type) {
	case nil:
	case *ast.IfStmt:
		r.b.linef("} else if %s {", r.expr(e.Cond))
		r.b.in()
		r.block(e.Then)
		r.b.out()
		r.elseChain(e.Else)
	case *ast.BlockStmt:
		r.b.line("} else {")
		r.b.in()
		r.block(e)
		r.b.out()
	}
}

func (r *astRenderer) forStmt(s *ast.ForStmt) {
	if s.Policy != nil {
		var chunk, threads ast.Expr
		for _, opt := range s.Policy.Options {
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
		r.b.linef("%s.for_each(|%s| {", iter, SnakeCase(s.Var.Name))
		r.b.in()
		r.block(s.Body)
		r.b.out()
		r.b.line("});")
		if threads != nil {
			r.b.out()
			r.b.line("});")
		}
		return
	}
	iter := r.expr(s.Iterable)
	if rng, ok := s.Iterable.(*ast.RangeExpr); ok {
		iter = r.expr(rng.Low) + ".." + r.expr(rng.High)
	}
	r.b.linef("for %s in %s {", SnakeCase(s.Var.Name), iter)
	r.b.in()
	r.block(s.Body)
	r.b.out()
	r.b.line("}")
}

func (r *astRenderer) expr(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return SnakeCase(e.Name)
	case *ast.IntegerLit:
		return e.Text
	case *ast.FloatLit:
		return e.Text
	case *ast.StringLit:
		return quoteRustString(e.Value) + ".to_string()"
	case *ast.CharLit:
		return quoteRustChar(e.Value)
	case *ast.BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *ast.NullLit:
		return "None"
	case *ast.TemplateLit:
		return r.template(e)
	case *ast.PrefixExpr:
		return opText(e.Op) + r.atom(e.Expr)
	case *ast.InfixExpr:
		if opText(e.Op) == "+" && (isStringy(e.Left) || isStringy(e.Right)) {
			return fmt.Sprintf("format!(\"{}{}\", %s, %s)", r.expr(e.Left), r.expr(e.Right))
		}
		return r.atom(e.Left) + " " + opText(e.Op) + " " + r.atom(e.Right)
	case *ast.TernaryExpr:
		return fmt.Sprintf("if %s { %s } else { %s }", r.expr(e.Cond), r.expr(e.Then), r.expr(e.Else))
	case *ast.RangeExpr:
		return "(" + r.expr(e.Low) + ".." + r.expr(e.High) + ")"
	case *ast.CallExpr:
		return r.call(e)
	case *ast.AwaitExpr:
		return r.await(e)
	case *ast.MemberExpr:
		return r.atom(e.Target) + "." + SnakeCase(e.Field.Name)
	case *ast.IndexExpr:
		if lit, ok := e.Index.(*ast.IntegerLit); ok {
			return r.atom(e.Target) + "[" + lit.Text + "]"
		}
		return r.atom(e.Target) + "[" + r.atom(e.Index) + " as usize]"
	case *ast.LambdaExpr:
		return r.fail(diag.CodeGenUnsupportedLambda, e, "anonymous functions cannot be generated on this path")
	case *ast.ArrayLit:
		parts := make([]string, len(e.Elems))
		for i, elem := range e.Elems {
			parts[i] = r.expr(elem)
		}
		return "vec![" + strings.Join(parts, ", ") + "]"
	case *ast.ObjectLit:
		var b strings.Builder
		b.WriteString("serde_json::json!({")
		for i, f := range e.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(quoteRustString(f.Name.Name))
			b.WriteString(": ")
			b.WriteString(r.expr(f.Value))
		}
		b.WriteString(" })")
		return b.String()
	case *ast.StructLit:
		var b strings.Builder
		b.WriteString(typeName(e.Name.Name))
		b.WriteString(" {")
		for i, f := range e.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(SnakeCase(f.Name.Name))
			b.WriteString(": ")
			b.WriteString(r.expr(f.Value))
		}
		b.WriteString(" }")
		return b.String()
	case *ast.AssignExpr:
		target := r.expr(e.Target)
		return "{ " + target + " = " + r.expr(e.Value) + "; " + target + " }"
	default:
		return r.fail(diag.CodeGenUnsupportedNode, expr, "cannot generate code for this expression")
	}
}

func (r *astRenderer) atom(e ast.Expr) string {
	switch e.(type) {
	case *ast.InfixExpr, *ast.TernaryExpr, *ast.PrefixExpr, *ast.RangeExpr:
		return "(" + r.expr(e) + ")"
	}
	return r.expr(e)
}

func (r *astRenderer) template(t *ast.TemplateLit) string {
	var fmtStr strings.Builder
	var args []string
	for _, seg := range t.Segments {
		if seg.Expr == nil {
			fmtStr.WriteString(escapeFormatText(seg.Text))
			continue
		}
		switch seg.Expr.(type) {
		case *ast.ArrayLit, *ast.ObjectLit, *ast.StructLit:
			fmtStr.WriteString("{:?}")
		default:
			fmtStr.WriteString("{}")
		}
		args = append(args, r.expr(seg.Expr))
	}
	out := "format!(\"" + fmtStr.String() + "\""
	for _, a := range args {
		out += ", " + a
	}
	return out + ")"
}

func (r *astRenderer) call(e *ast.CallExpr) string {
	callee, named := e.Callee.(*ast.Ident)
	switch e.Policy {
	case ast.PolicyNormal:
		if named {
			switch callee.Name {
			case "println", "print":
				return r.printCall(callee.Name, e.Args)
			case "len", "count", "size":
				if len(e.Args) == 1 {
					return r.atom(e.Args[0]) + ".len() as i64"
				}
			case "push":
				if len(e.Args) == 2 {
					return r.atom(e.Args[0]) + ".push(" + r.expr(e.Args[1]) + ")"
				}
			case "str":
				if len(e.Args) == 1 {
					return r.atom(e.Args[0]) + ".to_string()"
				}
			}
			out := SnakeCase(callee.Name) + r.args(e.Args)
			if r.asyncFns[callee.Name] {
				out += ".await"
			}
			return out
		}
		return r.atom(e.Callee) + r.args(e.Args)
	case ast.PolicyAsync:
		if named && r.asyncFns[callee.Name] {
			return fmt.Sprintf("tokio::spawn(%s%s).await.unwrap()", SnakeCase(callee.Name), r.args(e.Args))
		}
		return fmt.Sprintf("tokio::task::spawn_blocking(move || %s%s).await.unwrap()", r.atom(e.Callee), r.args(e.Args))
	case ast.PolicyPar:
		return fmt.Sprintf("std::thread::spawn(move || %s%s).join().unwrap()", r.atom(e.Callee), r.args(e.Args))
	default:
		inner := r.atom(e.Callee) + r.args(e.Args)
		if e.Policy == ast.PolicyTaskPar || e.Policy == ast.PolicyFirePar {
			return fmt.Sprintf("std::thread::spawn(move || %s)", inner)
		}
		if named && r.asyncFns[callee.Name] {
			inner += ".await"
		}
		return fmt.Sprintf("tokio::spawn(async move { %s })", inner)
	}
}

func (r *astRenderer) args(list []ast.Expr) string {
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = r.expr(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (r *astRenderer) printCall(name string, args []ast.Expr) string {
	macro := name + "!"
	if len(args) == 0 {
		return macro + "()"
	}
	var fmtStr strings.Builder
	var rendered []string
	for i, a := range args {
		if i > 0 {
			fmtStr.WriteString(" ")
		}
		switch a.(type) {
		case *ast.ArrayLit, *ast.ObjectLit, *ast.StructLit:
			fmtStr.WriteString("{:?}")
		default:
			fmtStr.WriteString("{}")
		}
		rendered = append(rendered, r.expr(a))
	}
	return macro + "(\"" + fmtStr.String() + "\", " + strings.Join(rendered, ", ") + ")"
}

func (r *astRenderer) await(e *ast.AwaitExpr) string {
	if id, ok := e.Expr.(*ast.Ident); ok {
		if r.parLets[id.Name] {
			return SnakeCase(id.Name) + ".join().unwrap()"
		}
		return SnakeCase(id.Name) + ".await.unwrap()"
	}
	return r.atom(e.Expr) + ".await"
}

func isStringy(e ast.Expr) bool {
	switch v := e.(type) {
	case *ast.StringLit, *ast.TemplateLit:
		return true
	case *ast.InfixExpr:
		return opText(v.Op) == "+" && (isStringy(v.Left) || isStringy(v.Right))
	}
	return false
}

func opText(k lexer.Kind) string { return string(k) }
