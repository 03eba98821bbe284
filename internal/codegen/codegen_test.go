package codegen

import (
	"strings"
	"testing"

	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/effects"
	"github.com/liva-lang/livac-sub000/internal/ir"
	"github.com/liva-lang/livac-sub000/internal/parser"
	"github.com/liva-lang/livac-sub000/internal/sema"
)

func generate(t *testing.T, src string) *Output {
	t.Helper()
	out, err := tryGenerate(src)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return out
}

func tryGenerate(src string) (*Output, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	analysis, err := sema.Analyze(prog)
	if err != nil {
		return nil, err
	}
	facts := effects.Collect(prog, analysis)
	lowered := ir.Lower(prog, analysis)
	return Generate(prog, lowered, facts, Options{PackageName: "app"})
}

func wantContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("output missing %q\n---\n%s", needle, haystack)
	}
}

func wantAbsent(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("output must not contain %q\n---\n%s", needle, haystack)
	}
}

func TestGenerate_TypedAddition(t *testing.T) {
	out := generate(t, `add(a: number, b: number): number = a + b`)
	wantContains(t, out.Rust, "pub fn add(a: i32, b: i32) -> i32 {")
	wantContains(t, out.Rust, "return a + b;")
}

func TestGenerate_SnakeCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"fetchUser", "fetch_user"},
		{"fetch_user", "fetch_user"},
		{"HTMLParser", "htmlparser"},
		{"userID2Name", "user_id2_name"},
		{"_hidden", "hidden"},
		{"__private", "private"},
		{"already_snake_case", "already_snake_case"},
	}
	for _, tc := range cases {
		if got := SnakeCase(tc.in); got != tc.want {
			t.Errorf("SnakeCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := SnakeCase(SnakeCase(tc.in)); again != tc.want {
			t.Errorf("SnakeCase not idempotent on %q: %q", tc.in, again)
		}
	}
}

func TestGenerate_Visibility(t *testing.T) {
	out := generate(t, `
shown() = 1
_shared() = 2
__hidden() = 3
`)
	wantContains(t, out.Rust, "pub fn shown()")
	wantContains(t, out.Rust, "pub(crate) fn shared()")
	wantContains(t, out.Rust, "\nfn hidden()")
	wantAbsent(t, out.Rust, "pub fn hidden")
}

func TestGenerate_FloatRoundTrip(t *testing.T) {
	out := generate(t, `main() { let pi = 3.14 }`)
	wantContains(t, out.Rust, "3.14")
	wantAbsent(t, out.Rust, "3.140000")
}

func TestGenerate_TemplateDisplayAndDebug(t *testing.T) {
	out := generate(t, `
main() {
    let price = 4
    let tags = [1, 2]
    let msg = $"Total: {price} tags: {tags}"
}
`)
	wantContains(t, out.Rust, `format!("Total: {} tags: {:?}", price, tags)`)
}

func TestGenerate_TemplateBraceEscapes(t *testing.T) {
	out := generate(t, `main() { let s = $"{{n}} is {1}" }`)
	wantContains(t, out.Rust, `format!("{{n}} is {}", 1)`)
}

func TestGenerate_StringConcat(t *testing.T) {
	out := generate(t, `
main() {
    let name = "ada"
    let greeting = "hi " + name
}
`)
	wantContains(t, out.Rust, `format!("{}{}", "hi ".to_string(), name)`)
}

func TestGenerate_FallibleFunction(t *testing.T) {
	out := generate(t, `
divide(a: number, b: number): number {
    if b == 0 {
        fail "division by zero"
    }
    return a / b
}
`)
	wantContains(t, out.Rust, "pub fn divide(a: i32, b: i32) -> Result<i32, String> {")
	wantContains(t, out.Rust, `return Err("division by zero".to_string());`)
	wantContains(t, out.Rust, "return Ok(a / b);")
}

func TestGenerate_FallibleUnitFunction(t *testing.T) {
	out := generate(t, `
reject(input: string) {
    if input == "" {
        fail "bad input"
    }
}
`)
	wantContains(t, out.Rust, "pub fn reject(input: String) -> Result<(), String> {")
	wantContains(t, out.Rust, `return Err("bad input".to_string());`)
	wantContains(t, out.Rust, "Ok(())")
}

func TestGenerate_FallibleCallPropagates(t *testing.T) {
	out := generate(t, `
risky(): number {
    fail "nope"
}

outer(): number {
    let x = risky()
    fail "also"
}
`)
	wantContains(t, out.Rust, "risky()?")
}

func TestGenerate_FallibleCallFromPlainCallerUnwraps(t *testing.T) {
	out := generate(t, `
risky(a: number): number {
    if a == 0 {
        fail "zero"
    }
    return a
}

main() {
    let x = risky(1)
    println(x)
}
`)
	wantContains(t, out.Rust, "fn main() {")
	wantContains(t, out.Rust, "let mut x: i32 = risky(1).unwrap();")
	wantAbsent(t, out.Rust, "risky(1)?")
}

func TestGenerate_FallibleCallInClosureUnwraps(t *testing.T) {
	// inside a spawned closure the enclosing Result type is out of reach,
	// even when the caller itself is fallible
	out := generate(t, `
risky(a: number): number {
    fail "no"
}

outer(): number {
    let x = par risky(1)
    fail "also"
}
`)
	wantContains(t, out.Rust, "std::thread::spawn(move || risky(1).unwrap()).join().unwrap()")
}

func TestGenerate_AsyncMain(t *testing.T) {
	out := generate(t, `
async fetch(url: string): string {
    return url
}

main() {
    let r = fetch("a")
}
`)
	wantContains(t, out.Rust, "#[tokio::main]")
	wantContains(t, out.Rust, "async fn main() {")
	wantContains(t, out.Rust, "pub async fn fetch(url: String) -> String {")
	wantContains(t, out.Rust, `fetch("a".to_string()).await`)
}

func TestGenerate_SyncProgramHasNoRuntime(t *testing.T) {
	out := generate(t, `main() { let x = 1 }`)
	wantAbsent(t, out.Rust, "tokio")
	wantAbsent(t, out.Rust, "rayon")
	wantAbsent(t, out.Manifest, "tokio")
	wantAbsent(t, out.Manifest, "rayon")
	wantContains(t, out.Manifest, `serde_json = "1"`)
}

func TestGenerate_TaskAndAwait(t *testing.T) {
	out := generate(t, `
work(x: number): number = x

main() {
    let h = task async work(1)
    let r = await h
    let p = task par work(2)
    let q = await p
}
`)
	wantContains(t, out.Rust, "tokio::spawn(async move { work(1) })")
	wantContains(t, out.Rust, "h.await.unwrap()")
	wantContains(t, out.Rust, "std::thread::spawn(move || work(2))")
	wantContains(t, out.Rust, "p.join().unwrap()")
}

func TestGenerate_ParallelLoop(t *testing.T) {
	out := generate(t, `
main() {
    let xs = [1, 2, 3]
    for x in xs par(chunk = 2) {
        println(x)
    }
}
`)
	wantContains(t, out.Rust, "use rayon::prelude::*;")
	wantContains(t, out.Rust, "xs.into_par_iter().with_min_len(2).for_each(|x| {")
	wantContains(t, out.Manifest, `rayon = "1"`)
}

func TestGenerate_SequentialLoops(t *testing.T) {
	out := generate(t, `
main() {
    for i in 0..3 {
        println(i)
    }
}
`)
	wantContains(t, out.Rust, "for i in 0..3 {")
	wantContains(t, out.Rust, `println!("{}", i)`)
	wantAbsent(t, out.Rust, "rayon")
}

func TestGenerate_Builtins(t *testing.T) {
	out := generate(t, `
main() {
    let xs = [1, 2]
    let n = len(xs)
    push(xs, 3)
    println("done")
}
`)
	wantContains(t, out.Rust, "xs.len() as i32")
	wantContains(t, out.Rust, "xs.push(3)")
	wantContains(t, out.Rust, `println!("{}", "done".to_string())`)
}

func TestGenerate_StructAndClass(t *testing.T) {
	out := generate(t, `
type User {
    name: string
    _age: number
}

class Admin : User {
    level: number
    rank(): number = 1
}

main() {
    let u = User { name: "ada", _age: 3 }
}
`)
	wantContains(t, out.Rust, "#[derive(Debug, Clone)]")
	wantContains(t, out.Rust, "pub struct User {")
	wantContains(t, out.Rust, "pub name: String,")
	wantContains(t, out.Rust, "pub(crate) age: i32,")
	wantContains(t, out.Rust, "pub struct Admin {")
	wantContains(t, out.Rust, "pub base: User,")
	wantContains(t, out.Rust, "impl Admin {")
	wantContains(t, out.Rust, "pub fn rank(&self) -> i32 {")
	wantContains(t, out.Rust, `User { name: "ada".to_string(), age: 3 }`)
}

func TestGenerate_TestDecl(t *testing.T) {
	out := generate(t, `
add(a: number, b: number): number = a + b

test "adds small numbers" {
    let r = add(1, 2)
}
`)
	wantContains(t, out.Rust, "#[test]")
	wantContains(t, out.Rust, "fn adds_small_numbers() {")
}

func TestGenerate_ObjectLiteral(t *testing.T) {
	out := generate(t, `main() { let o = { name: "x", age: 3 } }`)
	wantContains(t, out.Rust, `serde_json::json!({ "name": "x".to_string(), "age": 3 })`)
}

func TestGenerate_ManifestExterns(t *testing.T) {
	out := generate(t, `
extern "regex"
extern "serde_json" as json

main() {
}
`)
	wantContains(t, out.Manifest, `regex = "*"`)
	wantContains(t, out.Manifest, `[package]`)
	wantContains(t, out.Manifest, `name = "app"`)
	wantContains(t, out.Manifest, `edition = "2021"`)
}

func TestGenerate_FallbackOnUnsupported(t *testing.T) {
	// a task policy through a member call forces whole-program AST rendering
	out := generate(t, `
add(a: number, b: number): number = a + b

main() {
    let h = task async obj.run()
}
`)
	// conservative defaults from the fallback path, never mixed with the
	// typed renderer
	wantContains(t, out.Rust, "pub fn add(a: i32, b: i32) -> i32 {")
	wantAbsent(t, out.Rust, "i64)") // typed params stay typed even on fallback
}

func TestGenerate_FallbackUntypedDefaults(t *testing.T) {
	prog, err := parser.Parse(`
plus(a, b) = a + b

main() {
    let h = task async obj.run()
}
`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	analysis, err := sema.Analyze(prog)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	facts := effects.Collect(prog, analysis)
	lowered := ir.Lower(prog, analysis)
	if !lowered.Incomplete {
		t.Fatal("expected incomplete lowering")
	}
	out, err := Generate(prog, lowered, facts, Options{PackageName: "app"})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	wantContains(t, out.Rust, "pub fn plus(a: i64, b: i64) -> i64 {")
}

func TestGenerate_FallbackLambdaIsHardError(t *testing.T) {
	_, err := tryGenerate(`
apply(f) = f(1)

main() {
    let h = task async obj.run()
    let r = apply(x => x * 2)
}
`)
	if err == nil {
		t.Fatal("expected hard error for lambda on the fallback path")
	}
	cerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *codegen.Error, got %T", err)
	}
	if cerr.Code != diag.CodeGenUnsupportedLambda {
		t.Errorf("code = %v", cerr.Code)
	}
}

func TestGenerate_FallbackFailPanics(t *testing.T) {
	out := generate(t, `
boom() {
    fail "no"
}

main() {
    let h = task async obj.run()
}
`)
	wantContains(t, out.Rust, `panic!("{}",`)
	wantAbsent(t, out.Rust, "Result<")
}

func TestGenerate_RustTypes(t *testing.T) {
	cases := []struct {
		in   ir.Type
		want string
	}{
		{ir.Int, "i32"},
		{ir.Float, "f64"},
		{ir.Bool, "bool"},
		{ir.String, "String"},
		{ir.Bytes, "Vec<u8>"},
		{ir.Char, "char"},
		{ir.Unit, "()"},
		{ir.Inferred, "i64"},
		{ir.ArrayOf(ir.Int), "Vec<i32>"},
		{ir.ArrayOf(ir.Inferred), "Vec<serde_json::Value>"},
		{ir.OptionalOf(ir.String), "Option<String>"},
		{ir.Named("User"), "User"},
	}
	for _, tc := range cases {
		if got := rustType(tc.in); got != tc.want {
			t.Errorf("rustType(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
