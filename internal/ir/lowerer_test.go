package ir

import (
	"testing"

	"github.com/liva-lang/livac-sub000/internal/parser"
	"github.com/liva-lang/livac-sub000/internal/sema"
)

func lower(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	analysis, err := sema.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return Lower(prog, analysis)
}

func fnNamed(t *testing.T, prog *Program, name string) *Function {
	t.Helper()
	for _, decl := range prog.Decls {
		if fn, ok := decl.(*Function); ok && fn.Name == name {
			return fn
		}
	}
	t.Fatalf("function %q not lowered", name)
	return nil
}

func TestLower_OneLinerNormalizesToReturn(t *testing.T) {
	prog := lower(t, `add(a: number, b: number): number = a + b`)
	if prog.Incomplete {
		t.Fatal("program should lower completely")
	}
	fn := fnNamed(t, prog, "add")
	if len(fn.Body) != 1 {
		t.Fatalf("expected 1 stmt, got %d", len(fn.Body))
	}
	ret, ok := fn.Body[0].(*Return)
	if !ok {
		t.Fatalf("expected return, got %T", fn.Body[0])
	}
	if _, ok := ret.Value.(*Binary); !ok {
		t.Errorf("expected binary value, got %T", ret.Value)
	}
	if !fn.Return.Equal(Int) {
		t.Errorf("return type = %v, want int", fn.Return)
	}
	if fn.Fallible {
		t.Error("no fail sites, must not be fallible")
	}
}

func TestLower_FailMakesFallible(t *testing.T) {
	prog := lower(t, `
divide(a: number, b: number): number {
    if b == 0 {
        fail "division by zero"
    }
    return a / b
}
`)
	fn := fnNamed(t, prog, "divide")
	if !fn.Fallible {
		t.Fatal("function with fail site must be fallible")
	}
	iff := fn.Body[0].(*If)
	if _, ok := iff.Then[0].(*FailReturn); !ok {
		t.Errorf("expected fail return, got %T", iff.Then[0])
	}
}

func TestLower_FailWithInferredReturnIsFallibleUnit(t *testing.T) {
	prog := lower(t, `
reject(input: string) {
    fail "bad input"
}
`)
	fn := fnNamed(t, prog, "reject")
	if !fn.Fallible {
		t.Fatal("function with a fail site must be fallible")
	}
	if !fn.Return.Equal(Unit) {
		t.Errorf("return type = %v, want unit", fn.Return)
	}
}

func TestLower_FailInsideLambdaDoesNotLeak(t *testing.T) {
	prog := lower(t, `
outer() {
    let f = (x) => {
        fail "inner"
    }
    return 1
}
`)
	fn := fnNamed(t, prog, "outer")
	if fn.Fallible {
		t.Error("fail inside a lambda must not mark the enclosing fn fallible")
	}
}

func TestLower_PolicyShapes(t *testing.T) {
	prog := lower(t, `
work(x) = x

main() {
    let a = work(1)
    let b = async work(2)
    let c = par work(3)
    let d = task async work(4)
    let e = task par work(5)
    fire async work(6)
    fire par work(7)
}
`)
	fn := fnNamed(t, prog, "main")

	value := func(i int) Expr {
		switch s := fn.Body[i].(type) {
		case *Let:
			return s.Value
		case *ExprStmt:
			return s.Expr
		}
		t.Fatalf("stmt %d has no value", i)
		return nil
	}

	if _, ok := value(0).(*Call); !ok {
		t.Errorf("normal call shape = %T", value(0))
	}
	if _, ok := value(1).(*AsyncCall); !ok {
		t.Errorf("async call shape = %T", value(1))
	}
	if _, ok := value(2).(*ParCall); !ok {
		t.Errorf("par call shape = %T", value(2))
	}
	d, ok := value(3).(*TaskCall)
	if !ok || d.Mode != ModeAsync || d.Fire {
		t.Errorf("task async shape = %#v", value(3))
	}
	e, ok := value(4).(*TaskCall)
	if !ok || e.Mode != ModePar || e.Fire {
		t.Errorf("task par shape = %#v", value(4))
	}
	f, ok := value(5).(*TaskCall)
	if !ok || f.Mode != ModeAsync || !f.Fire {
		t.Errorf("fire async shape = %#v", value(5))
	}
	g, ok := value(6).(*TaskCall)
	if !ok || g.Mode != ModePar || !g.Fire {
		t.Errorf("fire par shape = %#v", value(6))
	}
	if prog.Incomplete {
		t.Error("policy lowering must not mark the program incomplete")
	}
}

func TestLower_TaskOnMemberCallIsUnsupported(t *testing.T) {
	prog := lower(t, `
main() {
    let h = task async obj.method()
}
`)
	if !prog.Incomplete {
		t.Error("task call through a member must mark the program incomplete")
	}
}

func TestLower_LetInference(t *testing.T) {
	prog := lower(t, `
main() {
    let i = 1
    let f = 2.5
    let s = "hi"
    let b = true
    let mixed = 1 + 2.0
    let concat = "a" + "b"
    let cmp = 1 < 2
    let r = 0..10
}
`)
	fn := fnNamed(t, prog, "main")
	want := []Type{Int, Float, String, Bool, Float, String, Bool, ArrayOf(Int)}
	for i, typ := range want {
		let := fn.Body[i].(*Let)
		if !let.Type.Equal(typ) {
			t.Errorf("let %d: type = %v, want %v", i, let.Type, typ)
		}
	}
}

func TestLower_ReturnInference(t *testing.T) {
	prog := lower(t, `
pick(flag) {
    if flag {
        return 1
    } else {
        return 2
    }
}

disagree(flag) {
    if flag {
        return 1
    } else {
        return "two"
    }
}

silent() {
    let x = 1
}
`)
	if got := fnNamed(t, prog, "pick").Return; !got.Equal(Int) {
		t.Errorf("pick return = %v, want int", got)
	}
	if got := fnNamed(t, prog, "disagree").Return; !got.IsInferred() {
		t.Errorf("disagree return = %v, want inferred", got)
	}
	if got := fnNamed(t, prog, "silent").Return; !got.Equal(Unit) {
		t.Errorf("silent return = %v, want unit", got)
	}
}

func TestLower_CallReturnInference(t *testing.T) {
	prog := lower(t, `
size(): number = 3

main() {
    let n = size()
}
`)
	fn := fnNamed(t, prog, "main")
	let := fn.Body[0].(*Let)
	if !let.Type.Equal(Int) {
		t.Errorf("call result type = %v, want int", let.Type)
	}
}

func TestLower_ParamHeuristics(t *testing.T) {
	prog := lower(t, `
total(xs) {
    let n = len(xs)
    return n
}

each(items) {
    for item in items {
        use(item)
    }
}

opaque(x) = x
`)
	arrayInferred := ArrayOf(Inferred)
	if got := fnNamed(t, prog, "total").Params[0].Type; !got.Equal(arrayInferred) {
		t.Errorf("len-arg param = %v, want inferred array", got)
	}
	if got := fnNamed(t, prog, "each").Params[0].Type; !got.Equal(arrayInferred) {
		t.Errorf("iterated param = %v, want inferred array", got)
	}
	if got := fnNamed(t, prog, "opaque").Params[0].Type; !got.IsInferred() {
		t.Errorf("opaque param = %v, want inferred", got)
	}
}

func TestLower_ForLoopVarTypes(t *testing.T) {
	prog := lower(t, `
main() {
    for i in 0..3 {
    }
    let xs = [1, 2, 3]
    for x in xs {
    }
    let s = "abc"
    for c in s {
    }
}
`)
	fn := fnNamed(t, prog, "main")
	if got := fn.Body[0].(*For).VarType; !got.Equal(Int) {
		t.Errorf("range var = %v, want int", got)
	}
	if got := fn.Body[2].(*For).VarType; !got.Equal(Int) {
		t.Errorf("array var = %v, want int", got)
	}
	if got := fn.Body[4].(*For).VarType; !got.Equal(Char) {
		t.Errorf("string var = %v, want char", got)
	}
}

func TestLower_ParallelLoopOptions(t *testing.T) {
	prog := lower(t, `
main() {
    for x in xs par(ordered, chunk = 64) {
        use(x)
    }
}
`)
	fn := fnNamed(t, prog, "main")
	loop := fn.Body[0].(*For)
	if !loop.Parallel {
		t.Fatal("loop should be parallel")
	}
	if len(loop.Options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(loop.Options))
	}
	if loop.Options[0].Name != "ordered" || loop.Options[0].Value != nil {
		t.Errorf("option 0 = %#v", loop.Options[0])
	}
	if loop.Options[1].Name != "chunk" || loop.Options[1].Value == nil {
		t.Errorf("option 1 = %#v", loop.Options[1])
	}
}

func TestLower_TypeAndClassDecls(t *testing.T) {
	prog := lower(t, `
type User {
    name: string
    age: number
}

class Admin : User {
    level: number
    rank(): number = level
}
`)
	td := prog.Decls[0].(*TypeDef)
	if td.Name != "User" || len(td.Fields) != 2 {
		t.Errorf("typedef = %#v", td)
	}
	if !td.Fields[1].Type.Equal(Int) {
		t.Errorf("age field = %v", td.Fields[1].Type)
	}
	cd := prog.Decls[1].(*ClassDef)
	if cd.Base != "User" || len(cd.Methods) != 1 {
		t.Errorf("classdef = %#v", cd)
	}
}

func TestLower_FromSpelling(t *testing.T) {
	cases := []struct {
		in   string
		want Type
	}{
		{"number", Int},
		{"float", Float},
		{"string", String},
		{"bool", Bool},
		{"void", Unit},
		{"number[]", ArrayOf(Int)},
		{"string?", OptionalOf(String)},
		{"number[][]", ArrayOf(ArrayOf(Int))},
		{"User", Named("User")},
		{"", Inferred},
	}
	for _, tc := range cases {
		if got := FromSpelling(tc.in); !got.Equal(tc.want) {
			t.Errorf("FromSpelling(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
