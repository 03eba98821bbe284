package codegen

import (
	"fmt"
	"strings"

	"github.com/liva-lang/livac-sub000/internal/ir"
)

func (r *irRenderer) pushScope() {
	r.scopes = append(r.scopes, map[string]scopeEntry{})
}

func (r *irRenderer) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *irRenderer) bind(name string, typ ir.Type, h handleKind) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name] = scopeEntry{typ: typ, handle: h}
}

func (r *irRenderer) lookup(name string) (scopeEntry, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if e, ok := r.scopes[i][name]; ok {
			return e, true
		}
	}
	return scopeEntry{}, false
}

func (r *irRenderer) expr(expr ir.Expr) string {
	switch e := expr.(type) {
	case *ir.Ident:
		return SnakeCase(e.Name)
	case *ir.IntLit:
		return e.Text
	case *ir.FloatLit:
		return e.Text
	case *ir.StrLit:
		return quoteRustString(e.Value) + ".to_string()"
	case *ir.CharLit:
		return quoteRustChar(e.Value)
	case *ir.BoolLit:
		if e.Value {
			return "true"
		}
		return "false"
	case *ir.NullLit:
		return "None"
	case *ir.Template:
		return r.template(e)
	case *ir.Unary:
		return e.Op + r.atom(e.X)
	case *ir.Binary:
		return r.binary(e)
	case *ir.Ternary:
		return fmt.Sprintf("if %s { %s } else { %s }", r.expr(e.Cond), r.expr(e.Then), r.expr(e.Else))
	case *ir.Range:
		return "(" + r.expr(e.Low) + ".." + r.expr(e.High) + ")"
	case *ir.Call:
		return r.call(e)
	case *ir.AsyncCall:
		return r.asyncCall(e.Call)
	case *ir.ParCall:
		return fmt.Sprintf("std::thread::spawn(move || %s).join().unwrap()", r.closureCall(e.Call))
	case *ir.TaskCall:
		return r.taskCall(e)
	case *ir.Await:
		return r.await(e)
	case *ir.Member:
		return r.atom(e.Target) + "." + SnakeCase(e.Field)
	case *ir.Index:
		return r.atom(e.Target) + "[" + r.index(e.Idx) + "]"
	case *ir.Lambda:
		return r.lambda(e)
	case *ir.ArrayLit:
		parts := make([]string, len(e.Elems))
		for i, elem := range e.Elems {
			parts[i] = r.expr(elem)
		}
		return "vec![" + strings.Join(parts, ", ") + "]"
	case *ir.ObjectLit:
		var b strings.Builder
		b.WriteString("serde_json::json!({")
		for i, f := range e.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(quoteRustString(f.Name))
			b.WriteString(": ")
			b.WriteString(r.expr(f.Value))
		}
		b.WriteString(" })")
		return b.String()
	case *ir.StructLit:
		var b strings.Builder
		b.WriteString(typeName(e.Name))
		b.WriteString(" {")
		for i, f := range e.Fields {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(SnakeCase(f.Name))
			b.WriteString(": ")
			b.WriteString(r.expr(f.Value))
		}
		b.WriteString(" }")
		return b.String()
	default:
		return "()"
	}
}

// atom parenthesizes compound operands so precedence survives rendering.
func (r *irRenderer) atom(e ir.Expr) string {
	switch e.(type) {
	case *ir.Binary, *ir.Ternary, *ir.Unary, *ir.Range:
		return "(" + r.expr(e) + ")"
	}
	return r.expr(e)
}

// index renders an index operand, coercing the integer model to usize.
func (r *irRenderer) index(e ir.Expr) string {
	if lit, ok := e.(*ir.IntLit); ok {
		return lit.Text
	}
	return r.atom(e) + " as usize"
}

func (r *irRenderer) binary(e *ir.Binary) string {
	if e.Op == "+" {
		lt, rt := r.exprType(e.L), r.exprType(e.R)
		if lt.Kind == ir.KindString || rt.Kind == ir.KindString {
			return fmt.Sprintf("format!(\"{}{}\", %s, %s)", r.expr(e.L), r.expr(e.R))
		}
	}
	return r.atom(e.L) + " " + e.Op + " " + r.atom(e.R)
}

// template renders an interpolated string as a format! call, choosing the
// Debug placeholder for values without a display form.
func (r *irRenderer) template(t *ir.Template) string {
	var fmtStr strings.Builder
	var args []string
	for _, seg := range t.Segments {
		if seg.Expr == nil {
			fmtStr.WriteString(escapeFormatText(seg.Text))
			continue
		}
		if r.needsDebug(seg.Expr) {
			fmtStr.WriteString("{:?}")
		} else {
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

func (r *irRenderer) needsDebug(e ir.Expr) bool {
	t := r.exprType(e)
	return t.IsCollection() || t.Kind == ir.KindOptional
}

func (r *irRenderer) call(e *ir.Call) string {
	if id, ok := e.Callee.(*ir.Ident); ok {
		if out, ok := r.builtin(id.Name, e.Args); ok {
			return out
		}
		out := SnakeCase(id.Name) + r.argList(e.Args)
		if fn, ok := r.fns[id.Name]; ok && fn.IsAsync {
			out += ".await"
		}
		if fn, ok := r.fns[id.Name]; ok && fn.Fallible {
			// ? only works inside a Result-returning fn; plain callers
			// surface the failure at the call site instead.
			if r.inFall {
				out += "?"
			} else {
				out += ".unwrap()"
			}
		}
		return out
	}
	return r.atom(e.Callee) + r.argList(e.Args)
}

func (r *irRenderer) argList(args []ir.Expr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = r.expr(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// builtin maps the language's ambient helpers to target idioms.
func (r *irRenderer) builtin(name string, args []ir.Expr) (string, bool) {
	switch name {
	case "println", "print":
		macro := name + "!"
		if len(args) == 0 {
			return macro + "()", true
		}
		var fmtStr strings.Builder
		var rendered []string
		for i, a := range args {
			if i > 0 {
				fmtStr.WriteString(" ")
			}
			if r.needsDebug(a) {
				fmtStr.WriteString("{:?}")
			} else {
				fmtStr.WriteString("{}")
			}
			rendered = append(rendered, r.expr(a))
		}
		return macro + "(\"" + fmtStr.String() + "\", " + strings.Join(rendered, ", ") + ")", true
	case "len", "count", "size":
		if len(args) == 1 {
			return r.atom(args[0]) + ".len() as i32", true
		}
	case "push":
		if len(args) == 2 {
			return r.atom(args[0]) + ".push(" + r.expr(args[1]) + ")", true
		}
	case "str":
		if len(args) == 1 {
			return r.atom(args[0]) + ".to_string()", true
		}
	}
	return "", false
}

func (r *irRenderer) asyncCall(c *ir.Call) string {
	if id, ok := c.Callee.(*ir.Ident); ok {
		if fn, ok := r.fns[id.Name]; ok && fn.IsAsync {
			return fmt.Sprintf("tokio::spawn(%s%s).await.unwrap()", SnakeCase(id.Name), r.argList(c.Args))
		}
	}
	return fmt.Sprintf("tokio::task::spawn_blocking(move || %s).await.unwrap()", r.closureCall(c))
}

// closureCall renders a call destined for a closure body, where the
// enclosing function's Result type is out of reach for ?.
func (r *irRenderer) closureCall(c *ir.Call) string {
	prev := r.inFall
	r.inFall = false
	out := r.call(c)
	r.inFall = prev
	return out
}

func (r *irRenderer) taskCall(e *ir.TaskCall) string {
	inner := SnakeCase(e.Callee) + r.argList(e.Args)
	if fn, ok := r.fns[e.Callee]; ok && fn.IsAsync {
		inner += ".await"
	}
	if e.Mode == ir.ModePar {
		return fmt.Sprintf("std::thread::spawn(move || %s)", SnakeCase(e.Callee)+r.argList(e.Args))
	}
	return fmt.Sprintf("tokio::spawn(async move { %s })", inner)
}

// await joins a handle with the primitive that produced it: thread handles
// join, async handles await, and anything else is treated as a future.
func (r *irRenderer) await(e *ir.Await) string {
	if id, ok := e.X.(*ir.Ident); ok {
		if entry, found := r.lookup(id.Name); found {
			switch entry.handle {
			case handleThread:
				return SnakeCase(id.Name) + ".join().unwrap()"
			case handleAsync:
				return SnakeCase(id.Name) + ".await.unwrap()"
			}
		}
	}
	if tc, ok := e.X.(*ir.TaskCall); ok {
		if tc.Mode == ir.ModePar {
			return r.taskCall(tc) + ".join().unwrap()"
		}
		return r.taskCall(tc) + ".await.unwrap()"
	}
	return r.atom(e.X) + ".await"
}

func (r *irRenderer) lambda(e *ir.Lambda) string {
	var b strings.Builder
	b.WriteByte('|')
	for i, p := range e.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(SnakeCase(p.Name))
		if !p.Type.IsInferred() {
			b.WriteString(": ")
			b.WriteString(rustType(p.Type))
		}
	}
	b.WriteByte('|')
	b.WriteByte(' ')
	r.pushScope()
	prevFall := r.inFall
	r.inFall = false
	for _, p := range e.Params {
		r.bind(p.Name, p.Type, handleNone)
	}
	if len(e.Body) == 1 {
		if ret, ok := e.Body[0].(*ir.Return); ok && ret.Value != nil {
			b.WriteString(r.expr(ret.Value))
			r.inFall = prevFall
			r.popScope()
			return b.String()
		}
	}
	b.WriteString("{ ")
	b.WriteString(r.inlineStmts(e.Body))
	b.WriteString(" }")
	r.inFall = prevFall
	r.popScope()
	return b.String()
}

// inlineStmts renders a statement list on one line for closure bodies.
func (r *irRenderer) inlineStmts(stmts []ir.Stmt) string {
	var parts []string
	for _, s := range stmts {
		parts = append(parts, r.inlineStmt(s))
	}
	return strings.Join(parts, " ")
}

func (r *irRenderer) inlineStmt(stmt ir.Stmt) string {
	switch s := stmt.(type) {
	case *ir.Let:
		kw := "let mut"
		if s.Const {
			kw = "let"
		}
		r.bind(s.Name, s.Type, handleForValue(s.Value))
		return fmt.Sprintf("%s %s = %s;", kw, SnakeCase(s.Name), r.expr(s.Value))
	case *ir.Assign:
		return r.expr(s.Target) + " = " + r.expr(s.Value) + ";"
	case *ir.Return:
		if s.Value == nil {
			return "return;"
		}
		return "return " + r.expr(s.Value) + ";"
	case *ir.If:
		out := "if " + r.expr(s.Cond) + " { " + r.inlineStmts(s.Then) + " }"
		if s.Else != nil {
			out += " else { " + r.inlineStmts(s.Else) + " }"
		}
		return out
	case *ir.ExprStmt:
		return r.expr(s.Expr) + ";"
	case *ir.Break:
		return "break;"
	case *ir.Continue:
		return "continue;"
	default:
		return ""
	}
}

// exprType mirrors lowering's local inference over IR shapes so the
// renderer can pick placeholders and string-aware operators.
func (r *irRenderer) exprType(e ir.Expr) ir.Type {
	switch v := e.(type) {
	case *ir.Ident:
		if entry, ok := r.lookup(v.Name); ok {
			return entry.typ
		}
	case *ir.IntLit:
		return ir.Int
	case *ir.FloatLit:
		return ir.Float
	case *ir.StrLit, *ir.Template:
		return ir.String
	case *ir.CharLit:
		return ir.Char
	case *ir.BoolLit:
		return ir.Bool
	case *ir.NullLit:
		return ir.OptionalOf(ir.Inferred)
	case *ir.Unary:
		if v.Op == "!" {
			return ir.Bool
		}
		return r.exprType(v.X)
	case *ir.Binary:
		switch v.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return ir.Bool
		}
		lt, rt := r.exprType(v.L), r.exprType(v.R)
		if v.Op == "+" && (lt.Kind == ir.KindString || rt.Kind == ir.KindString) {
			return ir.String
		}
		if lt.Kind == ir.KindFloat || rt.Kind == ir.KindFloat {
			return ir.Float
		}
		return ir.Int
	case *ir.Ternary:
		t := r.exprType(v.Then)
		if t.Equal(r.exprType(v.Else)) {
			return t
		}
	case *ir.Range:
		return ir.ArrayOf(ir.Int)
	case *ir.Call:
		if id, ok := v.Callee.(*ir.Ident); ok {
			if fn, ok := r.fns[id.Name]; ok {
				return fn.Return
			}
			switch id.Name {
			case "len", "count", "size":
				return ir.Int
			case "str":
				return ir.String
			}
		}
	case *ir.AsyncCall:
		return r.exprType(v.Call)
	case *ir.ParCall:
		return r.exprType(v.Call)
	case *ir.Await:
		if id, ok := v.X.(*ir.Ident); ok {
			if entry, found := r.lookup(id.Name); found && entry.handle != handleNone {
				return entry.typ
			}
		}
		return r.exprType(v.X)
	case *ir.Member:
		if t := r.exprType(v.Target); t.Kind == ir.KindNamed {
			if fields, ok := r.fields[t.Name]; ok {
				if ft, ok := fields[v.Field]; ok {
					return ft
				}
			}
		}
	case *ir.Index:
		if t := r.exprType(v.Target); t.Kind == ir.KindArray {
			return *t.Elem
		}
	case *ir.ArrayLit:
		return ir.ArrayOf(v.Elem)
	case *ir.StructLit:
		return ir.Named(v.Name)
	}
	return ir.Inferred
}
