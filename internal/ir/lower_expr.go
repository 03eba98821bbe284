package ir

import "github.com/liva-lang/livac-sub000/internal/ast"

func (l *lowerer) lowerExpr(expr ast.Expr, env map[string]Type) Expr {
	switch e := expr.(type) {
	case *ast.Ident:
		return &Ident{Name: e.Name}
	case *ast.IntegerLit:
		return &IntLit{Text: e.Text}
	case *ast.FloatLit:
		return &FloatLit{Text: e.Text}
	case *ast.StringLit:
		return &StrLit{Value: e.Value}
	case *ast.CharLit:
		return &CharLit{Value: e.Value}
	case *ast.BoolLit:
		return &BoolLit{Value: e.Value}
	case *ast.NullLit:
		return &NullLit{}
	case *ast.TemplateLit:
		out := &Template{}
		for _, seg := range e.Segments {
			if seg.Expr != nil {
				out.Segments = append(out.Segments, TemplateSegment{Expr: l.lowerExpr(seg.Expr, env)})
			} else {
				out.Segments = append(out.Segments, TemplateSegment{Text: seg.Text})
			}
		}
		return out
	case *ast.PrefixExpr:
		return &Unary{Op: string(e.Op), X: l.lowerExpr(e.Expr, env)}
	case *ast.InfixExpr:
		return &Binary{
			Op: string(e.Op),
			L:  l.lowerExpr(e.Left, env),
			R:  l.lowerExpr(e.Right, env),
		}
	case *ast.TernaryExpr:
		return &Ternary{
			Cond: l.lowerExpr(e.Cond, env),
			Then: l.lowerExpr(e.Then, env),
			Else: l.lowerExpr(e.Else, env),
		}
	case *ast.RangeExpr:
		return &Range{Low: l.lowerExpr(e.Low, env), High: l.lowerExpr(e.High, env)}
	case *ast.AssignExpr:
		// assignments in expression position are rare; statement lowering
		// peels the common case off first
		return l.unsupported(e)
	case *ast.CallExpr:
		return l.lowerCall(e, env)
	case *ast.AwaitExpr:
		return &Await{X: l.lowerExpr(e.Expr, env)}
	case *ast.MemberExpr:
		return &Member{Target: l.lowerExpr(e.Target, env), Field: e.Field.Name}
	case *ast.IndexExpr:
		return &Index{Target: l.lowerExpr(e.Target, env), Idx: l.lowerExpr(e.Index, env)}
	case *ast.LambdaExpr:
		return l.lowerLambda(e, env)
	case *ast.ArrayLit:
		out := &ArrayLit{Elem: Inferred}
		for _, elem := range e.Elems {
			out.Elems = append(out.Elems, l.lowerExpr(elem, env))
		}
		if len(e.Elems) > 0 {
			unified := l.inferExpr(e.Elems[0], env)
			for _, elem := range e.Elems[1:] {
				unified = unify(unified, l.inferExpr(elem, env))
			}
			out.Elem = unified
		}
		return out
	case *ast.ObjectLit:
		out := &ObjectLit{}
		for _, f := range e.Fields {
			out.Fields = append(out.Fields, ObjectField{Name: f.Name.Name, Value: l.lowerExpr(f.Value, env)})
		}
		return out
	case *ast.StructLit:
		out := &StructLit{Name: e.Name.Name}
		for _, f := range e.Fields {
			out.Fields = append(out.Fields, ObjectField{Name: f.Name.Name, Value: l.lowerExpr(f.Value, env)})
		}
		return out
	default:
		return l.unsupported(e)
	}
}

// lowerCall normalizes the seven execution policies into the IR's four
// concurrency shapes. Task and fire variants need a bare-identifier callee;
// anything fancier is a lowering limitation, not a grammar one.
func (l *lowerer) lowerCall(e *ast.CallExpr, env map[string]Type) Expr {
	call := &Call{Callee: l.lowerExpr(e.Callee, env)}
	for _, arg := range e.Args {
		call.Args = append(call.Args, l.lowerExpr(arg, env))
	}
	switch e.Policy {
	case ast.PolicyNormal:
		return call
	case ast.PolicyAsync:
		return &AsyncCall{Call: call}
	case ast.PolicyPar:
		return &ParCall{Call: call}
	default:
		callee, ok := e.Callee.(*ast.Ident)
		if !ok {
			return l.unsupported(e)
		}
		tc := &TaskCall{Callee: callee.Name, Args: call.Args}
		switch e.Policy {
		case ast.PolicyTaskAsync:
			tc.Mode = ModeAsync
		case ast.PolicyTaskPar:
			tc.Mode = ModePar
		case ast.PolicyFireAsync:
			tc.Mode, tc.Fire = ModeAsync, true
		case ast.PolicyFirePar:
			tc.Mode, tc.Fire = ModePar, true
		}
		return tc
	}
}

func (l *lowerer) lowerLambda(e *ast.LambdaExpr, env map[string]Type) Expr {
	lam := &Lambda{}
	inner := cloneEnv(env)
	for _, p := range e.Params {
		typ := FromSpelling(spelling(p.Type))
		lam.Params = append(lam.Params, Param{Name: p.Name.Name, Type: typ})
		inner[p.Name.Name] = typ
	}
	if e.ExprBody != nil {
		lam.Body = []Stmt{&Return{Value: l.lowerExpr(e.ExprBody, inner)}}
	} else if e.Body != nil {
		lam.Body = l.lowerBlock(e.Body, inner)
	}
	return lam
}
