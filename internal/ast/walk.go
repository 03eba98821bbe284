package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f
// for each node. If f returns false the children of that node are skipped.
// Nil children are never visited.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, d := range n.Decls {
			Inspect(d, f)
		}
	case *ImportDecl, *ExternDecl:
		// leaves
	case *TypeDecl:
		for _, field := range n.Fields {
			Inspect(field, f)
		}
	case *ClassDecl:
		for _, field := range n.Fields {
			Inspect(field, f)
		}
		for _, m := range n.Methods {
			Inspect(m, f)
		}
	case *FieldDef:
		inspectType(n.Type, f)
	case *FnDecl:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		inspectType(n.ReturnType, f)
		inspectExpr(n.ExprBody, f)
		inspectBlock(n.Body, f)
	case *Param:
		inspectType(n.Type, f)
		inspectExpr(n.Default, f)
	case *TestDecl:
		inspectBlock(n.Body, f)

	case *BlockStmt:
		for _, s := range n.Stmts {
			Inspect(s, f)
		}
	case *LetStmt:
		inspectType(n.Type, f)
		inspectExpr(n.Value, f)
	case *IfStmt:
		Inspect(n.Cond, f)
		inspectBlock(n.Then, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStmt:
		Inspect(n.Cond, f)
		inspectBlock(n.Body, f)
	case *ForStmt:
		Inspect(n.Iterable, f)
		if n.Policy != nil {
			for _, opt := range n.Policy.Options {
				inspectExpr(opt.Value, f)
			}
		}
		inspectBlock(n.Body, f)
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *FailStmt:
		Inspect(n.Value, f)
	case *ExprStmt:
		Inspect(n.Expr, f)
	case *BreakStmt, *ContinueStmt:
		// leaves

	case *PrefixExpr:
		Inspect(n.Expr, f)
	case *InfixExpr:
		Inspect(n.Left, f)
		Inspect(n.Right, f)
	case *TernaryExpr:
		Inspect(n.Cond, f)
		Inspect(n.Then, f)
		Inspect(n.Else, f)
	case *RangeExpr:
		Inspect(n.Low, f)
		Inspect(n.High, f)
	case *AssignExpr:
		Inspect(n.Target, f)
		Inspect(n.Value, f)
	case *CallExpr:
		Inspect(n.Callee, f)
		for _, a := range n.Args {
			Inspect(a, f)
		}
	case *AwaitExpr:
		Inspect(n.Expr, f)
	case *MemberExpr:
		Inspect(n.Target, f)
		Inspect(n.Field, f)
	case *IndexExpr:
		Inspect(n.Target, f)
		Inspect(n.Index, f)
	case *LambdaExpr:
		for _, p := range n.Params {
			Inspect(p, f)
		}
		inspectType(n.ReturnType, f)
		inspectExpr(n.ExprBody, f)
		inspectBlock(n.Body, f)
	case *TemplateLit:
		for _, seg := range n.Segments {
			inspectExpr(seg.Expr, f)
		}
	case *ArrayLit:
		for _, e := range n.Elems {
			Inspect(e, f)
		}
	case *ObjectLit:
		for _, field := range n.Fields {
			Inspect(field.Value, f)
		}
	case *StructLit:
		for _, field := range n.Fields {
			Inspect(field.Value, f)
		}
	case *NamedType:
		Inspect(n.Name, f)
	case *ArrayType:
		inspectType(n.Elem, f)
	case *OptionalType:
		inspectType(n.Elem, f)
	}
}

func inspectExpr(e Expr, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectBlock(b *BlockStmt, f func(Node) bool) {
	if b != nil {
		Inspect(b, f)
	}
}

func inspectType(t TypeExpr, f func(Node) bool) {
	if t != nil {
		Inspect(t, f)
	}
}
