package sema

import (
	"errors"
	"testing"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/parser"
)

func analyze(t *testing.T, src string) (*ast.Program, *Result) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	result, err := Analyze(prog)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return prog, result
}

func analyzeErrCode(t *testing.T, src string) diag.Code {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Analyze(prog)
	if err == nil {
		t.Fatalf("expected analysis error for %q", src)
	}
	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *sema.Error, got %T", err)
	}
	return serr.Code
}

func TestAnalyze_CollectsSignatures(t *testing.T) {
	_, result := analyze(t, `
add(a: number, b: number = 0): number = a + b
type User { name: string }
`)
	sig, ok := result.Functions["add"]
	if !ok {
		t.Fatal("add not collected")
	}
	if sig.Required() != 1 || sig.Total() != 2 {
		t.Errorf("arity = [%d, %d], want [1, 2]", sig.Required(), sig.Total())
	}
	if sig.Return != "number" {
		t.Errorf("return spelling = %q", sig.Return)
	}
	if !result.Types["User"] {
		t.Error("User not collected")
	}
}

// A function that calls an async function becomes async itself, and the
// marking propagates through chains of callers until nothing changes.
func TestAnalyze_AsyncFixpoint(t *testing.T) {
	prog, result := analyze(t, `
async fetch(url: string) {
    return url
}

load() {
    return fetch("a")
}

top() {
    return load()
}

pure(x: number): number = x + 1
`)
	for _, name := range []string{"fetch", "load", "top"} {
		if !result.AsyncFns[name] {
			t.Errorf("%s should be async", name)
		}
	}
	if result.AsyncFns["pure"] {
		t.Error("pure should not be async")
	}
	for _, decl := range prog.Decls {
		fn, ok := decl.(*ast.FnDecl)
		if !ok {
			continue
		}
		if want := result.AsyncFns[fn.Name.Name]; fn.IsAsync != want {
			t.Errorf("%s: IsAsync = %v, want %v", fn.Name.Name, fn.IsAsync, want)
		}
	}
}

func TestAnalyze_AsyncFromPolicy(t *testing.T) {
	_, result := analyze(t, `
work(x) = x

main() {
    let h = task async work(1)
    let r = await h
}
`)
	if !result.AsyncFns["main"] {
		t.Error("main should be async via task async call")
	}
	if result.AsyncFns["work"] {
		t.Error("work itself is not async")
	}
}

func TestAnalyze_AsyncPolicyMarksCaller(t *testing.T) {
	_, result := analyze(t, `
fetchUser() = 1

load() {
    let x = async fetchUser()
}
`)
	if !result.AsyncFns["load"] {
		t.Error("async-policy call must mark the enclosing fn async")
	}
	if result.AsyncFns["fetchUser"] {
		t.Error("the callee itself stays synchronous")
	}
}

func TestAnalyze_ParPolicyIsNotAsync(t *testing.T) {
	_, result := analyze(t, `
crunch(x) = x

main() {
    let r = par crunch(1)
}
`)
	if result.AsyncFns["main"] {
		t.Error("par policy must not mark the caller async")
	}
}

func TestAnalyze_DuplicateFunction(t *testing.T) {
	code := analyzeErrCode(t, `
f() = 1
f() = 2
`)
	if code != diag.CodeSemaRedeclaration {
		t.Errorf("code = %v", code)
	}
}

func TestAnalyze_DuplicateType(t *testing.T) {
	code := analyzeErrCode(t, `
type A { x: number }
class A { y: number }
`)
	if code != diag.CodeSemaRedeclaration {
		t.Errorf("code = %v", code)
	}
}

func TestAnalyze_RedeclarationInScope(t *testing.T) {
	code := analyzeErrCode(t, `
main() {
    let x = 1
    let x = 2
}
`)
	if code != diag.CodeSemaRedeclaration {
		t.Errorf("code = %v", code)
	}
}

func TestAnalyze_ShadowingInNestedBlockIsFine(t *testing.T) {
	analyze(t, `
main() {
    let x = 1
    if true {
        let x = 2
    }
}
`)
}

func TestAnalyze_UnknownBase(t *testing.T) {
	code := analyzeErrCode(t, `class Admin : Nope { level: number }`)
	if code != diag.CodeSemaUnknownBase {
		t.Errorf("code = %v", code)
	}
}

func TestAnalyze_KnownBase(t *testing.T) {
	analyze(t, `
type User { name: string }
class Admin : User { level: number }
`)
}

func TestAnalyze_Arity(t *testing.T) {
	code := analyzeErrCode(t, `
add(a: number, b: number = 0): number = a + b
main() {
    let r = add(1, 2, 3)
}
`)
	if code != diag.CodeSemaBadArity {
		t.Errorf("too many args: code = %v", code)
	}

	code = analyzeErrCode(t, `
add(a: number, b: number = 0): number = a + b
main() {
    let r = add()
}
`)
	if code != diag.CodeSemaBadArity {
		t.Errorf("too few args: code = %v", code)
	}

	// default makes the second argument optional
	analyze(t, `
add(a: number, b: number = 0): number = a + b
main() {
    let r = add(1)
}
`)
}

func TestAnalyze_UnknownCalleeTolerated(t *testing.T) {
	analyze(t, `
main() {
    let r = mystery(1, 2, 3)
}
`)
}

func TestAnalyze_BadAssignTarget(t *testing.T) {
	code := analyzeErrCode(t, `
main() {
    f() = 3
}
`)
	if code != diag.CodeSemaBadAssign {
		t.Errorf("code = %v", code)
	}
}

func TestAnalyze_MemberAndIndexAssignOk(t *testing.T) {
	analyze(t, `
main() {
    let u = User { name: "a" }
    u.name = "b"
    let xs = [1, 2]
    xs[0] = 3
}
`)
}

func TestAnalyze_ForLoopVarScope(t *testing.T) {
	analyze(t, `
main() {
    for x in 0..3 {
        let y = x
    }
    let x = 10
}
`)
}
