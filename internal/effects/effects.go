// Package effects gathers program-wide cross-cutting facts from the
// analyzed AST in a single linear walk. The generator consumes them to
// decide whether to emit shared runtime scaffolding at all; nothing here is
// tracked per function.
package effects

import (
	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/sema"
)

// Extern is one externally-declared dependency with its optional alias.
type Extern struct {
	Name  string
	Alias string
}

// Facts are the collected program-wide effect facts.
type Facts struct {
	Externs      []Extern
	UsesAsync    bool // any async-flavored call site, await, or call to an inferred-async fn
	UsesParallel bool // any par-flavored call site or data-parallel loop policy
}

// Collect walks the program once and accumulates effect facts. The sema
// result supplies the set of inferred-async functions so indirect async
// usage counts too.
func Collect(prog *ast.Program, analysis *sema.Result) *Facts {
	facts := &Facts{}
	ast.Inspect(prog, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.ExternDecl:
			ext := Extern{Name: node.Name}
			if node.Alias != nil {
				ext.Alias = node.Alias.Name
			}
			facts.Externs = append(facts.Externs, ext)
		case *ast.CallExpr:
			if node.Policy.IsAsyncFlavored() {
				facts.UsesAsync = true
			}
			if node.Policy.IsParFlavored() {
				facts.UsesParallel = true
			}
			if callee, ok := node.Callee.(*ast.Ident); ok && analysis != nil && analysis.AsyncFns[callee.Name] {
				facts.UsesAsync = true
			}
		case *ast.AwaitExpr:
			facts.UsesAsync = true
		case *ast.ForStmt:
			if node.Policy != nil {
				facts.UsesParallel = true
			}
		case *ast.FnDecl:
			if node.IsAsync {
				facts.UsesAsync = true
			}
		}
		return true
	})
	return facts
}
