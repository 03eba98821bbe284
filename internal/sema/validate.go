package sema

import (
	"fmt"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
)

// validate runs the final pass over the program with a fresh scope stack.
// Checks: class bases name previously collected types, redeclaration within
// a scope, assignment-target kinds, and call arity within [required, total]
// given declared defaults. Unknown named types are permitted: the language
// is gradually typed and has no forward-declaration requirement.
func (a *analyzer) validate(prog *ast.Program) error {
	for _, decl := range prog.Decls {
		switch d := decl.(type) {
		case *ast.ClassDecl:
			if d.Base != nil && !a.result.Types[d.Base.Name] {
				return &Error{
					Code:    diag.CodeSemaUnknownBase,
					Message: fmt.Sprintf("class %q extends unknown type %q", d.Name.Name, d.Base.Name),
					Help:    "a base class must be declared as a type or class in the same program",
					Span:    d.Base.Span(),
				}
			}
			for _, m := range d.Methods {
				if err := a.validateFn(m); err != nil {
					return err
				}
			}
		case *ast.FnDecl:
			if err := a.validateFn(d); err != nil {
				return err
			}
		case *ast.TestDecl:
			scopes := newScopeStack()
			scopes.push()
			if err := a.validateBlock(d.Body, scopes); err != nil {
				return err
			}
			scopes.pop()
		}
	}
	return nil
}

func (a *analyzer) validateFn(fn *ast.FnDecl) error {
	scopes := newScopeStack()
	scopes.push()
	for _, p := range fn.Params {
		if !scopes.declare(p.Name.Name, typeSpelling(p.Type)) {
			return &Error{
				Code:    diag.CodeSemaRedeclaration,
				Message: fmt.Sprintf("parameter %q is declared more than once", p.Name.Name),
				Span:    p.Name.Span(),
			}
		}
	}
	var err error
	if fn.ExprBody != nil {
		err = a.validateExpr(fn.ExprBody, scopes)
	} else if fn.Body != nil {
		err = a.validateBlock(fn.Body, scopes)
	}
	scopes.pop()
	return err
}

func (a *analyzer) validateBlock(block *ast.BlockStmt, scopes *scopeStack) error {
	scopes.push()
	defer scopes.pop()
	for _, stmt := range block.Stmts {
		if err := a.validateStmt(stmt, scopes); err != nil {
			return err
		}
	}
	return nil
}

func (a *analyzer) validateStmt(stmt ast.Stmt, scopes *scopeStack) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		if err := a.validateExpr(s.Value, scopes); err != nil {
			return err
		}
		if !scopes.declare(s.Name.Name, typeSpelling(s.Type)) {
			return &Error{
				Code:    diag.CodeSemaRedeclaration,
				Message: fmt.Sprintf("%q is already declared in this scope", s.Name.Name),
				Help:    "shadowing requires a new block scope",
				Span:    s.Name.Span(),
			}
		}
		return nil
	case *ast.IfStmt:
		if err := a.validateExpr(s.Cond, scopes); err != nil {
			return err
		}
		if err := a.validateBlock(s.Then, scopes); err != nil {
			return err
		}
		if s.Else != nil {
			return a.validateStmt(s.Else, scopes)
		}
		return nil
	case *ast.WhileStmt:
		if err := a.validateExpr(s.Cond, scopes); err != nil {
			return err
		}
		return a.validateBlock(s.Body, scopes)
	case *ast.ForStmt:
		if err := a.validateExpr(s.Iterable, scopes); err != nil {
			return err
		}
		scopes.push()
		scopes.declare(s.Var.Name, "")
		err := a.validateBlock(s.Body, scopes)
		scopes.pop()
		return err
	case *ast.ReturnStmt:
		if s.Value != nil {
			return a.validateExpr(s.Value, scopes)
		}
		return nil
	case *ast.FailStmt:
		return a.validateExpr(s.Value, scopes)
	case *ast.ExprStmt:
		return a.validateExpr(s.Expr, scopes)
	case *ast.BlockStmt:
		return a.validateBlock(s, scopes)
	default:
		return nil
	}
}

func (a *analyzer) validateExpr(expr ast.Expr, scopes *scopeStack) error {
	switch e := expr.(type) {
	case *ast.AssignExpr:
		switch e.Target.(type) {
		case *ast.Ident, *ast.MemberExpr, *ast.IndexExpr:
			// valid target kinds
		default:
			return &Error{
				Code:    diag.CodeSemaBadAssign,
				Message: "invalid assignment target",
				Help:    "only identifiers, member accesses, and index expressions can be assigned to",
				Span:    e.Target.Span(),
			}
		}
		if err := a.validateExpr(e.Target, scopes); err != nil {
			return err
		}
		return a.validateExpr(e.Value, scopes)
	case *ast.CallExpr:
		if err := a.checkArity(e); err != nil {
			return err
		}
		if err := a.validateExpr(e.Callee, scopes); err != nil {
			return err
		}
		for _, arg := range e.Args {
			if err := a.validateExpr(arg, scopes); err != nil {
				return err
			}
		}
		return nil
	case *ast.LambdaExpr:
		scopes.push()
		defer scopes.pop()
		for _, p := range e.Params {
			if !scopes.declare(p.Name.Name, typeSpelling(p.Type)) {
				return &Error{
					Code:    diag.CodeSemaRedeclaration,
					Message: fmt.Sprintf("parameter %q is declared more than once", p.Name.Name),
					Span:    p.Name.Span(),
				}
			}
		}
		if e.ExprBody != nil {
			return a.validateExpr(e.ExprBody, scopes)
		}
		if e.Body != nil {
			return a.validateBlock(e.Body, scopes)
		}
		return nil
	case *ast.PrefixExpr:
		return a.validateExpr(e.Expr, scopes)
	case *ast.InfixExpr:
		if err := a.validateExpr(e.Left, scopes); err != nil {
			return err
		}
		return a.validateExpr(e.Right, scopes)
	case *ast.TernaryExpr:
		if err := a.validateExpr(e.Cond, scopes); err != nil {
			return err
		}
		if err := a.validateExpr(e.Then, scopes); err != nil {
			return err
		}
		return a.validateExpr(e.Else, scopes)
	case *ast.RangeExpr:
		if err := a.validateExpr(e.Low, scopes); err != nil {
			return err
		}
		return a.validateExpr(e.High, scopes)
	case *ast.AwaitExpr:
		return a.validateExpr(e.Expr, scopes)
	case *ast.MemberExpr:
		return a.validateExpr(e.Target, scopes)
	case *ast.IndexExpr:
		if err := a.validateExpr(e.Target, scopes); err != nil {
			return err
		}
		return a.validateExpr(e.Index, scopes)
	case *ast.TemplateLit:
		for _, seg := range e.Segments {
			if seg.Expr != nil {
				if err := a.validateExpr(seg.Expr, scopes); err != nil {
					return err
				}
			}
		}
		return nil
	case *ast.ArrayLit:
		for _, elem := range e.Elems {
			if err := a.validateExpr(elem, scopes); err != nil {
				return err
			}
		}
		return nil
	case *ast.ObjectLit:
		for _, field := range e.Fields {
			if err := a.validateExpr(field.Value, scopes); err != nil {
				return err
			}
		}
		return nil
	case *ast.StructLit:
		for _, field := range e.Fields {
			if err := a.validateExpr(field.Value, scopes); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

// checkArity enforces [required, total] argument counts for calls to
// collected functions. Calls through arbitrary expressions or to unknown
// names are left alone: gradual typing tolerates them.
func (a *analyzer) checkArity(call *ast.CallExpr) error {
	callee, ok := call.Callee.(*ast.Ident)
	if !ok {
		return nil
	}
	sig, ok := a.result.Functions[callee.Name]
	if !ok {
		return nil
	}
	n := len(call.Args)
	if n < sig.Required() || n > sig.Total() {
		return &Error{
			Code: diag.CodeSemaBadArity,
			Message: fmt.Sprintf("%s expects between %d and %d arguments, got %d",
				sig.Name, sig.Required(), sig.Total(), n),
			Span: call.Span(),
		}
	}
	return nil
}
