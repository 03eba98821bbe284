package ir

import "github.com/liva-lang/livac-sub000/internal/ast"

func (l *lowerer) lowerBlock(block *ast.BlockStmt, env map[string]Type) []Stmt {
	scoped := cloneEnv(env)
	var out []Stmt
	for _, stmt := range block.Stmts {
		out = append(out, l.lowerStmt(stmt, scoped))
	}
	return out
}

func (l *lowerer) lowerStmt(stmt ast.Stmt, env map[string]Type) Stmt {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		typ := FromSpelling(spelling(s.Type))
		value := l.lowerExpr(s.Value, env)
		if typ.IsInferred() {
			typ = l.inferExpr(s.Value, env)
		}
		env[s.Name.Name] = typ
		return &Let{Name: s.Name.Name, Const: s.Const, Type: typ, Value: value}
	case *ast.IfStmt:
		out := &If{
			Cond: l.lowerExpr(s.Cond, env),
			Then: l.lowerBlock(s.Then, env),
		}
		switch els := s.Else.(type) {
		case nil:
		case *ast.BlockStmt:
			out.Else = l.lowerBlock(els, env)
		default:
			out.Else = []Stmt{l.lowerStmt(els, cloneEnv(env))}
		}
		return out
	case *ast.WhileStmt:
		return &While{
			Cond: l.lowerExpr(s.Cond, env),
			Body: l.lowerBlock(s.Body, env),
		}
	case *ast.ForStmt:
		varType := Inferred
		switch t := l.inferExpr(s.Iterable, env); t.Kind {
		case KindArray:
			varType = *t.Elem
		case KindString:
			varType = Char
		}
		if _, isRange := s.Iterable.(*ast.RangeExpr); isRange {
			varType = Int
		}
		loopEnv := cloneEnv(env)
		loopEnv[s.Var.Name] = varType
		out := &For{
			Var:      s.Var.Name,
			VarType:  varType,
			Iterable: l.lowerExpr(s.Iterable, env),
			Body:     l.lowerBlock(s.Body, loopEnv),
		}
		if s.Policy != nil {
			out.Parallel = true
			for _, opt := range s.Policy.Options {
				lowered := LoopOption{Name: opt.Name}
				if opt.Value != nil {
					lowered.Value = l.lowerExpr(opt.Value, env)
				}
				out.Options = append(out.Options, lowered)
			}
		}
		return out
	case *ast.ReturnStmt:
		if s.Value == nil {
			return &Return{}
		}
		return &Return{Value: l.lowerExpr(s.Value, env)}
	case *ast.FailStmt:
		return &FailReturn{Value: l.lowerExpr(s.Value, env)}
	case *ast.BreakStmt:
		return &Break{}
	case *ast.ContinueStmt:
		return &Continue{}
	case *ast.ExprStmt:
		if assign, ok := s.Expr.(*ast.AssignExpr); ok {
			return &Assign{
				Target: l.lowerExpr(assign.Target, env),
				Value:  l.lowerExpr(assign.Value, env),
			}
		}
		return &ExprStmt{Expr: l.lowerExpr(s.Expr, env)}
	case *ast.BlockStmt:
		// bare nested blocks fold into an if-true body shape the renderers
		// do not need; mark them unsupported instead of guessing
		return l.unsupported(s)
	default:
		return l.unsupported(s)
	}
}
