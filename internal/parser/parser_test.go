package parser

import (
	"errors"
	"testing"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
)

func parseOne(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func parseErrCode(t *testing.T, src string) diag.Code {
	t.Helper()
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected parse error for %q", src)
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *parser.Error, got %T", err)
	}
	return perr.Code
}

func TestParse_OneLinerFunction(t *testing.T) {
	prog := parseOne(t, `add(a: number, b: number): number = a + b`)
	if len(prog.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(prog.Decls))
	}
	fn, ok := prog.Decls[0].(*ast.FnDecl)
	if !ok {
		t.Fatalf("expected *ast.FnDecl, got %T", prog.Decls[0])
	}
	if fn.Name.Name != "add" {
		t.Errorf("name = %q, want add", fn.Name.Name)
	}
	if len(fn.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(fn.Params))
	}
	if fn.ExprBody == nil || fn.Body != nil {
		t.Error("expected expression body only")
	}
	if fn.ReturnType == nil {
		t.Error("expected declared return type")
	}
	if _, ok := fn.ExprBody.(*ast.InfixExpr); !ok {
		t.Errorf("body = %T, want *ast.InfixExpr", fn.ExprBody)
	}
}

func TestParse_BlockFunctionAndAsync(t *testing.T) {
	prog := parseOne(t, `
async fetch(url: string) {
    return url
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	if !fn.DeclaredAsync || !fn.IsAsync {
		t.Error("expected declared async function")
	}
	if fn.Body == nil {
		t.Fatal("expected block body")
	}
}

func TestParse_Precedence(t *testing.T) {
	prog := parseOne(t, `f() = 1 + 2 * 3 == 7 && true`)
	fn := prog.Decls[0].(*ast.FnDecl)
	and, ok := fn.ExprBody.(*ast.InfixExpr)
	if !ok || string(and.Op) != "&&" {
		t.Fatalf("top operator should be &&, got %T", fn.ExprBody)
	}
	eq, ok := and.Left.(*ast.InfixExpr)
	if !ok || string(eq.Op) != "==" {
		t.Fatalf("left of && should be ==, got %T", and.Left)
	}
	add, ok := eq.Left.(*ast.InfixExpr)
	if !ok || string(add.Op) != "+" {
		t.Fatalf("left of == should be +, got %T", eq.Left)
	}
	mul, ok := add.Right.(*ast.InfixExpr)
	if !ok || string(mul.Op) != "*" {
		t.Fatalf("right of + should be *, got %T", add.Right)
	}
}

func TestParse_TernaryAndRange(t *testing.T) {
	prog := parseOne(t, `f(x) = x > 0 ? 1 : 2`)
	fn := prog.Decls[0].(*ast.FnDecl)
	if _, ok := fn.ExprBody.(*ast.TernaryExpr); !ok {
		t.Errorf("expected ternary, got %T", fn.ExprBody)
	}

	prog = parseOne(t, `g() = 0..10`)
	fn = prog.Decls[0].(*ast.FnDecl)
	if _, ok := fn.ExprBody.(*ast.RangeExpr); !ok {
		t.Errorf("expected range, got %T", fn.ExprBody)
	}
}

func TestParse_ExecutionPolicies(t *testing.T) {
	cases := []struct {
		src    string
		policy ast.ExecPolicy
	}{
		{`main() { let a = f() }`, ast.PolicyNormal},
		{`main() { let a = async f() }`, ast.PolicyAsync},
		{`main() { let a = par f() }`, ast.PolicyPar},
		{`main() { let a = task async f() }`, ast.PolicyTaskAsync},
		{`main() { let a = task par f() }`, ast.PolicyTaskPar},
		{`main() { fire async f() }`, ast.PolicyFireAsync},
		{`main() { fire par f() }`, ast.PolicyFirePar},
	}
	for _, tc := range cases {
		prog := parseOne(t, tc.src)
		fn := prog.Decls[0].(*ast.FnDecl)
		var call *ast.CallExpr
		ast.Inspect(fn.Body, func(n ast.Node) bool {
			if c, ok := n.(*ast.CallExpr); ok {
				call = c
				return false
			}
			return true
		})
		if call == nil {
			t.Fatalf("%q: no call found", tc.src)
		}
		if call.Policy != tc.policy {
			t.Errorf("%q: policy = %v, want %v", tc.src, call.Policy, tc.policy)
		}
	}
}

func TestParse_PolicyErrors(t *testing.T) {
	if code := parseErrCode(t, `main() { let a = task f() }`); code != diag.CodeParseBadPolicy {
		t.Errorf("bare task: code = %v", code)
	}
	if code := parseErrCode(t, `main() { let a = async par f() }`); code != diag.CodeParseBadPolicy {
		t.Errorf("stacked policies: code = %v", code)
	}
	if code := parseErrCode(t, `main() { let a = async x }`); code != diag.CodeParseBadPolicy {
		t.Errorf("policy on non-call: code = %v", code)
	}
}

func TestParse_Template(t *testing.T) {
	prog := parseOne(t, `f(price) = $"Total: {price}"`)
	fn := prog.Decls[0].(*ast.FnDecl)
	tmpl, ok := fn.ExprBody.(*ast.TemplateLit)
	if !ok {
		t.Fatalf("expected template, got %T", fn.ExprBody)
	}
	if len(tmpl.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(tmpl.Segments))
	}
	if tmpl.Segments[0].Text != "Total: " {
		t.Errorf("literal segment = %q", tmpl.Segments[0].Text)
	}
	if id, ok := tmpl.Segments[1].Expr.(*ast.Ident); !ok || id.Name != "price" {
		t.Errorf("interpolation = %#v", tmpl.Segments[1].Expr)
	}
}

func TestParse_TemplateBraceEscapes(t *testing.T) {
	prog := parseOne(t, `f() = $"{{literal}} {1 + 2}"`)
	fn := prog.Decls[0].(*ast.FnDecl)
	tmpl := fn.ExprBody.(*ast.TemplateLit)
	if tmpl.Segments[0].Text != "{literal} " {
		t.Errorf("escaped braces: %q", tmpl.Segments[0].Text)
	}
	if _, ok := tmpl.Segments[1].Expr.(*ast.InfixExpr); !ok {
		t.Errorf("expected expression segment, got %#v", tmpl.Segments[1])
	}
}

func TestParse_TemplateQuoteFallback(t *testing.T) {
	// single quotes inside an interpolation parse after quote normalization
	prog := parseOne(t, `f(m) = $"{get(m, 'key')}"`)
	fn := prog.Decls[0].(*ast.FnDecl)
	tmpl := fn.ExprBody.(*ast.TemplateLit)
	call, ok := tmpl.Segments[0].Expr.(*ast.CallExpr)
	if !ok {
		t.Fatalf("expected call after quote normalization, got %#v", tmpl.Segments[0])
	}
	if len(call.Args) != 2 {
		t.Errorf("expected 2 args, got %d", len(call.Args))
	}
	if s, ok := call.Args[1].(*ast.StringLit); !ok || s.Value != "key" {
		t.Errorf("arg = %#v", call.Args[1])
	}
}

func TestParse_TemplateErrors(t *testing.T) {
	if code := parseErrCode(t, `f() = $"{}"`); code != diag.CodeParseBadTemplate {
		t.Errorf("empty interpolation: code = %v", code)
	}
	if code := parseErrCode(t, `f() = $"open {x"`); code != diag.CodeParseBadTemplate {
		t.Errorf("unbalanced open: code = %v", code)
	}
	if code := parseErrCode(t, `f() = $"close } here"`); code != diag.CodeParseBadTemplate {
		t.Errorf("unbalanced close: code = %v", code)
	}
}

func TestParse_Lambdas(t *testing.T) {
	prog := parseOne(t, `f() = apply(x => x * 2)`)
	fn := prog.Decls[0].(*ast.FnDecl)
	call := fn.ExprBody.(*ast.CallExpr)
	lam, ok := call.Args[0].(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected lambda arg, got %T", call.Args[0])
	}
	if len(lam.Params) != 1 || lam.Params[0].Name.Name != "x" {
		t.Errorf("lambda params wrong: %#v", lam.Params)
	}

	prog = parseOne(t, `f() = apply(x: number => x * 2)`)
	fn = prog.Decls[0].(*ast.FnDecl)
	call = fn.ExprBody.(*ast.CallExpr)
	lam, ok = call.Args[0].(*ast.LambdaExpr)
	if !ok {
		t.Fatalf("expected annotated bare lambda arg, got %T", call.Args[0])
	}
	if len(lam.Params) != 1 || lam.Params[0].Name.Name != "x" {
		t.Fatalf("lambda params wrong: %#v", lam.Params)
	}
	if lam.Params[0].Type == nil {
		t.Error("expected the annotation on the parameter")
	}
	if lam.ReturnType != nil {
		t.Error("bare form has no return-type position")
	}

	prog = parseOne(t, `f() = apply((a: number, b: number): number => a + b)`)
	fn = prog.Decls[0].(*ast.FnDecl)
	call = fn.ExprBody.(*ast.CallExpr)
	lam = call.Args[0].(*ast.LambdaExpr)
	if len(lam.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(lam.Params))
	}
	if lam.ReturnType == nil {
		t.Error("expected declared lambda return type")
	}
}

func TestParse_ParenExprIsNotLambda(t *testing.T) {
	prog := parseOne(t, `f(a, b) = (a + b) * 2`)
	fn := prog.Decls[0].(*ast.FnDecl)
	mul, ok := fn.ExprBody.(*ast.InfixExpr)
	if !ok || string(mul.Op) != "*" {
		t.Fatalf("expected *, got %T", fn.ExprBody)
	}
}

func TestParse_StructLitOnlyAfterCapitalized(t *testing.T) {
	prog := parseOne(t, `f() = User { name: "ada" }`)
	fn := prog.Decls[0].(*ast.FnDecl)
	if _, ok := fn.ExprBody.(*ast.StructLit); !ok {
		t.Errorf("expected struct literal, got %T", fn.ExprBody)
	}

	// lowercase identifier before a brace must not start a struct literal
	prog = parseOne(t, `main() { while running { step() } }`)
	fn = prog.Decls[0].(*ast.FnDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.WhileStmt); !ok {
		t.Errorf("expected while statement, got %T", fn.Body.Stmts[0])
	}
}

func TestParse_TypeAndClassDecls(t *testing.T) {
	prog := parseOne(t, `
type User {
    name: string
    age: number
}

class Admin : User {
    level: number
    promote() {
        return level
    }
}
`)
	td, ok := prog.Decls[0].(*ast.TypeDecl)
	if !ok {
		t.Fatalf("expected type decl, got %T", prog.Decls[0])
	}
	if len(td.Fields) != 2 {
		t.Errorf("expected 2 fields, got %d", len(td.Fields))
	}
	cd, ok := prog.Decls[1].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("expected class decl, got %T", prog.Decls[1])
	}
	if cd.Base == nil || cd.Base.Name != "User" {
		t.Errorf("base = %#v", cd.Base)
	}
	if len(cd.Fields) != 1 || len(cd.Methods) != 1 {
		t.Errorf("fields/methods = %d/%d", len(cd.Fields), len(cd.Methods))
	}
}

func TestParse_ImportsAndExterns(t *testing.T) {
	prog := parseOne(t, `
import * from "util"
import * from "util"
extern "serde_json" as json
`)
	if len(prog.Decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(prog.Decls))
	}
	imp := prog.Decls[0].(*ast.ImportDecl)
	if imp.Path != "util" {
		t.Errorf("path = %q", imp.Path)
	}
	ext := prog.Decls[2].(*ast.ExternDecl)
	if ext.Name != "serde_json" || ext.Alias == nil || ext.Alias.Name != "json" {
		t.Errorf("extern = %#v", ext)
	}
}

func TestParse_ForPolicy(t *testing.T) {
	prog := parseOne(t, `
main() {
    for x in xs par(ordered, chunk = 64) {
        use(x)
    }
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	loop := fn.Body.Stmts[0].(*ast.ForStmt)
	if loop.Policy == nil {
		t.Fatal("expected loop policy")
	}
	if len(loop.Policy.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(loop.Policy.Options))
	}
	if loop.Policy.Options[0].Name != "ordered" || loop.Policy.Options[0].Value != nil {
		t.Errorf("option 0 = %#v", loop.Policy.Options[0])
	}
	if loop.Policy.Options[1].Name != "chunk" || loop.Policy.Options[1].Value == nil {
		t.Errorf("option 1 = %#v", loop.Policy.Options[1])
	}
}

func TestParse_UnknownLoopOption(t *testing.T) {
	if code := parseErrCode(t, `main() { for x in xs par(bogus) { } }`); code != diag.CodeParseUnexpectedToken {
		t.Errorf("unknown option: code = %v", code)
	}
}

func TestParse_Statements(t *testing.T) {
	prog := parseOne(t, `
main() {
    let x = 1
    const y: number = 2
    x = x + y
    if x > y {
        return x
    } else if x == y {
        return y
    } else {
        fail "nope"
    }
}
`)
	fn := prog.Decls[0].(*ast.FnDecl)
	stmts := fn.Body.Stmts
	if len(stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(stmts))
	}
	let := stmts[0].(*ast.LetStmt)
	if let.Const || let.Type != nil {
		t.Errorf("let = %#v", let)
	}
	cst := stmts[1].(*ast.LetStmt)
	if !cst.Const || cst.Type == nil {
		t.Errorf("const = %#v", cst)
	}
	es, ok := stmts[2].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("expected expr stmt, got %T", stmts[2])
	}
	if _, ok := es.Expr.(*ast.AssignExpr); !ok {
		t.Errorf("expected assignment, got %T", es.Expr)
	}
	ifs := stmts[3].(*ast.IfStmt)
	chained, ok := ifs.Else.(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected else-if chain, got %T", ifs.Else)
	}
	blk, ok := chained.Else.(*ast.BlockStmt)
	if !ok {
		t.Fatalf("expected final else block, got %T", chained.Else)
	}
	if _, ok := blk.Stmts[0].(*ast.FailStmt); !ok {
		t.Errorf("expected fail stmt, got %T", blk.Stmts[0])
	}
}

func TestParse_TestDecl(t *testing.T) {
	prog := parseOne(t, `
test "adds small numbers" {
    let r = add(1, 2)
}
`)
	td, ok := prog.Decls[0].(*ast.TestDecl)
	if !ok {
		t.Fatalf("expected test decl, got %T", prog.Decls[0])
	}
	if td.Name != "adds small numbers" {
		t.Errorf("name = %q", td.Name)
	}
}

func TestParse_UnexpectedToken(t *testing.T) {
	if code := parseErrCode(t, `type {`); code != diag.CodeParseUnexpectedToken {
		t.Errorf("code = %v", code)
	}
}
