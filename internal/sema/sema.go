// Package sema validates a parsed program and infers its asynchrony
// effects. Analysis runs three ordered passes: declaration collection,
// fixpoint async inference, and a scope-checked validation walk. The only
// AST mutation anywhere in the pipeline happens here: FnDecl.IsAsync flags
// are patched monotonically (false to true) until a fixed point.
package sema

import (
	"fmt"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// Error is a fatal semantic error; the first failure aborts analysis with
// no partial result.
type Error struct {
	Code    diag.Code
	Message string
	Help    string
	Span    lexer.Span
}

func (e *Error) Error() string { return e.Message }

// ToDiagnostic converts the error into the shared diagnostic structure.
func (e *Error) ToDiagnostic(filename string, table *diag.LineTable) diag.Diagnostic {
	span := diag.Span{Filename: filename, Start: e.Span.Start, End: e.Span.End}
	var srcLine string
	if table != nil {
		span, srcLine = table.Resolve(span)
	}
	return diag.New(diag.StageSemantic, e.Code, "semantic error", e.Message, span).
		WithHelp(e.Help).
		WithSourceLine(srcLine)
}

// ParamSig describes one parameter of a collected signature.
type ParamSig struct {
	Name       string
	Type       string // declared type spelling, "" when untyped
	HasDefault bool
}

// Signature is the collected shape of a function or method declaration.
type Signature struct {
	Name          string
	Params        []ParamSig
	Return        string // declared return type spelling, "" when inferred
	DeclaredAsync bool
}

// Required returns the number of parameters without defaults.
func (s *Signature) Required() int {
	n := 0
	for _, p := range s.Params {
		if !p.HasDefault {
			n++
		}
	}
	return n
}

// Total returns the full parameter count.
func (s *Signature) Total() int { return len(s.Params) }

// Result holds everything later stages need from analysis.
type Result struct {
	Functions map[string]*Signature
	Types     map[string]bool // collected data-type and class names
	AsyncFns  map[string]bool // declared or inferred asynchronous functions
}

// Analyze validates the program and runs effect inference. The program's
// FnDecl.IsAsync flags reflect the inference outcome on return; the public
// contract is "apply until no change, return".
func Analyze(prog *ast.Program) (*Result, error) {
	a := &analyzer{
		result: &Result{
			Functions: make(map[string]*Signature),
			Types:     make(map[string]bool),
			AsyncFns:  make(map[string]bool),
		},
	}
	if err := a.collect(prog); err != nil {
		return nil, err
	}
	a.inferAsync(prog)
	if err := a.validate(prog); err != nil {
		return nil, err
	}
	return a.result, nil
}

type analyzer struct {
	result *Result
}

// collect records every declaration's signature and the explicitly
// asynchronous functions. Duplicate wildcard imports of the same source are
// accepted by design; duplicate function or type names are not.
func (a *analyzer) collect(prog *ast.Program) error {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FnDecl:
			if _, exists := a.result.Functions[d.Name.Name]; exists {
				return &Error{
					Code:    diag.CodeSemaRedeclaration,
					Message: fmt.Sprintf("function %q is declared more than once", d.Name.Name),
					Span:    d.Name.Span(),
				}
			}
			a.collectFn(d)
		case *ast.TypeDecl:
			if a.result.Types[d.Name.Name] {
				return &Error{
					Code:    diag.CodeSemaRedeclaration,
					Message: fmt.Sprintf("type %q is declared more than once", d.Name.Name),
					Span:    d.Name.Span(),
				}
			}
			a.result.Types[d.Name.Name] = true
		case *ast.ClassDecl:
			if a.result.Types[d.Name.Name] {
				return &Error{
					Code:    diag.CodeSemaRedeclaration,
					Message: fmt.Sprintf("class %q is declared more than once", d.Name.Name),
					Span:    d.Name.Span(),
				}
			}
			a.result.Types[d.Name.Name] = true
			for _, m := range d.Methods {
				a.collectFn(m)
			}
		}
	}
	return nil
}

func (a *analyzer) collectFn(d *ast.FnDecl) {
	sig := &Signature{
		Name:          d.Name.Name,
		Return:        typeSpelling(d.ReturnType),
		DeclaredAsync: d.DeclaredAsync,
	}
	for _, p := range d.Params {
		sig.Params = append(sig.Params, ParamSig{
			Name:       p.Name.Name,
			Type:       typeSpelling(p.Type),
			HasDefault: p.Default != nil,
		})
	}
	a.result.Functions[d.Name.Name] = sig
	if d.DeclaredAsync {
		a.result.AsyncFns[d.Name.Name] = true
	}
}

func typeSpelling(t ast.TypeExpr) string {
	switch typ := t.(type) {
	case nil:
		return ""
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

// inferAsync repeatedly scans all declarations, marking a function async
// when its body contains an async-flavored call or a call to a function
// already known to be async. Marking is monotonic, so each flag flips at
// most once and the loop terminates.
func (a *analyzer) inferAsync(prog *ast.Program) {
	fns := allFunctions(prog)
	for {
		changed := false
		for _, fn := range fns {
			if fn.IsAsync {
				continue
			}
			if a.bodyRequiresAsync(fn) {
				fn.IsAsync = true
				a.result.AsyncFns[fn.Name.Name] = true
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}

func (a *analyzer) bodyRequiresAsync(fn *ast.FnDecl) bool {
	async := false
	visit := func(n ast.Node) bool {
		if async {
			return false
		}
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		if call.Policy.IsAsyncFlavored() {
			async = true
			return false
		}
		if callee, ok := call.Callee.(*ast.Ident); ok && a.result.AsyncFns[callee.Name] {
			async = true
			return false
		}
		return true
	}
	if fn.ExprBody != nil {
		ast.Inspect(fn.ExprBody, visit)
	}
	if fn.Body != nil {
		ast.Inspect(fn.Body, visit)
	}
	return async
}

func allFunctions(prog *ast.Program) []*ast.FnDecl {
	var fns []*ast.FnDecl
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.FnDecl:
			fns = append(fns, d)
		case *ast.ClassDecl:
			fns = append(fns, d.Methods...)
		}
	}
	return fns
}
