package ir

import "github.com/liva-lang/livac-sub000/internal/ast"

// unify returns the common type of two inferences when they agree, and the
// Inferred placeholder otherwise. Inference never errors.
func unify(a, b Type) Type {
	if a.Equal(b) {
		return a
	}
	return Inferred
}

// inferExpr computes the local type of an expression against the current
// name environment. The rules mirror the generator's numeric model:
// comparisons and logic yield bool; + yields string if either operand is a
// string, otherwise numeric promotion applies; other arithmetic is float if
// either operand is float, integer otherwise; a range is an integer array.
func (l *lowerer) inferExpr(expr ast.Expr, env map[string]Type) Type {
	switch e := expr.(type) {
	case *ast.Ident:
		if t, ok := env[e.Name]; ok {
			return t
		}
		return Inferred
	case *ast.IntegerLit:
		return Int
	case *ast.FloatLit:
		return Float
	case *ast.StringLit, *ast.TemplateLit:
		return String
	case *ast.CharLit:
		return Char
	case *ast.BoolLit:
		return Bool
	case *ast.NullLit:
		return OptionalOf(Inferred)
	case *ast.PrefixExpr:
		if string(e.Op) == "!" {
			return Bool
		}
		return l.inferExpr(e.Expr, env)
	case *ast.InfixExpr:
		return l.inferBinary(e, env)
	case *ast.TernaryExpr:
		return unify(l.inferExpr(e.Then, env), l.inferExpr(e.Else, env))
	case *ast.RangeExpr:
		return ArrayOf(Int)
	case *ast.CallExpr:
		return l.inferCall(e)
	case *ast.AwaitExpr:
		return l.inferExpr(e.Expr, env)
	case *ast.IndexExpr:
		if t := l.inferExpr(e.Target, env); t.Kind == KindArray {
			return *t.Elem
		}
		return Inferred
	case *ast.ArrayLit:
		if len(e.Elems) == 0 {
			return ArrayOf(Inferred)
		}
		unified := l.inferExpr(e.Elems[0], env)
		for _, elem := range e.Elems[1:] {
			unified = unify(unified, l.inferExpr(elem, env))
		}
		return ArrayOf(unified)
	case *ast.StructLit:
		return Named(e.Name.Name)
	default:
		return Inferred
	}
}

func (l *lowerer) inferBinary(e *ast.InfixExpr, env map[string]Type) Type {
	switch string(e.Op) {
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return Bool
	}
	left := l.inferExpr(e.Left, env)
	right := l.inferExpr(e.Right, env)
	if string(e.Op) == "+" && (left.Kind == KindString || right.Kind == KindString) {
		return String
	}
	if left.Kind == KindFloat || right.Kind == KindFloat {
		return Float
	}
	return Int
}

func (l *lowerer) inferCall(e *ast.CallExpr) Type {
	callee, ok := e.Callee.(*ast.Ident)
	if !ok || l.analysis == nil {
		return Inferred
	}
	if sig, ok := l.analysis.Functions[callee.Name]; ok && sig.Return != "" {
		return FromSpelling(sig.Return)
	}
	return Inferred
}

// inferBlockReturn finds the type of the first reachable return in a
// statement list, recursing through if/else and unifying only when both
// branches agree. Let bindings refine the environment for later inference.
// A nil result means no return was found.
func (l *lowerer) inferBlockReturn(stmts []ast.Stmt, env map[string]Type) *Type {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.LetStmt:
			typ := FromSpelling(spelling(s.Type))
			if typ.IsInferred() {
				typ = l.inferExpr(s.Value, env)
			}
			env[s.Name.Name] = typ
		case *ast.ReturnStmt:
			t := Unit
			if s.Value != nil {
				t = l.inferExpr(s.Value, env)
			}
			return &t
		case *ast.IfStmt:
			thenT := l.inferBlockReturn(s.Then.Stmts, cloneEnv(env))
			var elseT *Type
			switch els := s.Else.(type) {
			case *ast.BlockStmt:
				elseT = l.inferBlockReturn(els.Stmts, cloneEnv(env))
			case *ast.IfStmt:
				elseT = l.inferBlockReturn([]ast.Stmt{els}, cloneEnv(env))
			}
			switch {
			case thenT != nil && elseT != nil:
				t := unify(*thenT, *elseT)
				return &t
			case thenT != nil:
				return thenT
			case elseT != nil:
				return elseT
			}
		}
	}
	return nil
}
