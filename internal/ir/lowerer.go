package ir

import (
	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/sema"
)

// Lower converts the analyzed AST into the IR, running local type
// inference for untyped parameters and returns and rewriting fail sites
// into explicit early returns. Lowering never fails: constructs it cannot
// express become Unsupported markers, and one marker anywhere flips
// Program.Incomplete so the generator renders the whole program from the
// AST instead.
func Lower(prog *ast.Program, analysis *sema.Result) *Program {
	l := &lowerer{analysis: analysis}
	out := &Program{}
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.ImportDecl, *ast.ExternDecl:
			// Imports and extern dependencies carry no code; the effect
			// collector already routed them to the manifest.
		case *ast.TypeDecl:
			out.Decls = append(out.Decls, l.lowerTypeDecl(d))
		case *ast.ClassDecl:
			out.Decls = append(out.Decls, l.lowerClassDecl(d))
		case *ast.FnDecl:
			out.Decls = append(out.Decls, l.lowerFn(d))
		case *ast.TestDecl:
			out.Decls = append(out.Decls, &Test{
				Name: d.Name,
				Body: l.lowerBlock(d.Body, map[string]Type{}),
			})
		}
	}
	out.Incomplete = l.incomplete
	return out
}

type lowerer struct {
	analysis   *sema.Result
	incomplete bool
}

func (l *lowerer) unsupported(origin ast.Node) *Unsupported {
	l.incomplete = true
	return &Unsupported{Origin: origin}
}

func (l *lowerer) lowerTypeDecl(d *ast.TypeDecl) *TypeDef {
	def := &TypeDef{Name: d.Name.Name, Vis: d.Name.Vis}
	for _, f := range d.Fields {
		def.Fields = append(def.Fields, Field{
			Name: f.Name.Name,
			Vis:  f.Name.Vis,
			Type: FromSpelling(spelling(f.Type)),
		})
	}
	return def
}

func (l *lowerer) lowerClassDecl(d *ast.ClassDecl) *ClassDef {
	def := &ClassDef{Name: d.Name.Name, Vis: d.Name.Vis}
	if d.Base != nil {
		def.Base = d.Base.Name
	}
	for _, f := range d.Fields {
		def.Fields = append(def.Fields, Field{
			Name: f.Name.Name,
			Vis:  f.Name.Vis,
			Type: FromSpelling(spelling(f.Type)),
		})
	}
	for _, m := range d.Methods {
		def.Methods = append(def.Methods, l.lowerFn(m))
	}
	return def
}

func (l *lowerer) lowerFn(d *ast.FnDecl) *Function {
	fn := &Function{
		Name:    d.Name.Name,
		Vis:     d.Name.Vis,
		IsAsync: d.IsAsync,
	}

	env := make(map[string]Type)
	for _, p := range d.Params {
		typ := FromSpelling(spelling(p.Type))
		if typ.IsInferred() {
			typ = l.inferParamType(d, p.Name.Name)
		}
		var def Expr
		if p.Default != nil {
			def = l.lowerExpr(p.Default, env)
		}
		fn.Params = append(fn.Params, Param{Name: p.Name.Name, Type: typ, Default: def})
		env[p.Name.Name] = typ
	}

	fn.Fallible = containsFail(d)

	if d.ReturnType != nil {
		fn.Return = FromSpelling(spelling(d.ReturnType))
	} else if d.ExprBody != nil {
		fn.Return = l.inferExpr(d.ExprBody, env)
	} else if d.Body != nil {
		if t := l.inferBlockReturn(d.Body.Stmts, cloneEnv(env)); t != nil {
			fn.Return = *t
		} else {
			fn.Return = Unit
		}
	} else {
		fn.Return = Unit
	}

	if d.ExprBody != nil {
		fn.Body = []Stmt{&Return{Value: l.lowerExpr(d.ExprBody, env)}}
	} else if d.Body != nil {
		fn.Body = l.lowerBlock(d.Body, env)
	}
	return fn
}

// inferParamType applies the parameter heuristics: an untyped parameter
// iterated by a for loop, or passed to a length-like builtin, is treated as
// an array of a generic value type.
func (l *lowerer) inferParamType(fn *ast.FnDecl, param string) Type {
	arrayLike := false
	visit := func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.ForStmt:
			if id, ok := node.Iterable.(*ast.Ident); ok && id.Name == param {
				arrayLike = true
				return false
			}
		case *ast.CallExpr:
			callee, ok := node.Callee.(*ast.Ident)
			if ok && isLengthLike(callee.Name) {
				for _, arg := range node.Args {
					if id, ok := arg.(*ast.Ident); ok && id.Name == param {
						arrayLike = true
						return false
					}
				}
			}
		}
		return true
	}
	if fn.ExprBody != nil {
		ast.Inspect(fn.ExprBody, visit)
	}
	if fn.Body != nil {
		ast.Inspect(fn.Body, visit)
	}
	if arrayLike {
		return ArrayOf(Inferred)
	}
	return Inferred
}

func isLengthLike(name string) bool {
	switch name {
	case "len", "count", "size":
		return true
	}
	return false
}

func containsFail(fn *ast.FnDecl) bool {
	failing := false
	visit := func(n ast.Node) bool {
		switch n.(type) {
		case *ast.FailStmt:
			failing = true
			return false
		case *ast.LambdaExpr:
			// a fail inside a lambda belongs to the lambda, not the fn
			return false
		}
		return !failing
	}
	if fn.ExprBody != nil {
		ast.Inspect(fn.ExprBody, visit)
	}
	if fn.Body != nil {
		ast.Inspect(fn.Body, visit)
	}
	return failing
}

func spelling(t ast.TypeExpr) string {
	switch typ := t.(type) {
	case nil:
		return ""
	case *ast.NamedType:
		return typ.Name.Name
	case *ast.ArrayType:
		return spelling(typ.Elem) + "[]"
	case *ast.OptionalType:
		return spelling(typ.Elem) + "?"
	default:
		return ""
	}
}

func cloneEnv(env map[string]Type) map[string]Type {
	out := make(map[string]Type, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}
