// Package ir defines the simplified intermediate representation between the
// analyzed AST and generated target text. The IR is a second tree,
// structurally parallel to the AST, with concurrency calls normalized to
// four explicit shapes and types resolved to a closed enum. It is built
// once and read-only afterwards.
package ir

import (
	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// Program is a lowered compilation unit. Incomplete is set when any
// Unsupported marker exists anywhere beneath it; the generator then falls
// back to AST-based rendering for the whole program, never mixing paths.
type Program struct {
	Decls      []Decl
	Incomplete bool
}

// Decl is a lowered top-level item.
type Decl interface{ declNode() }

// Stmt is a lowered statement.
type Stmt interface{ stmtNode() }

// Expr is a lowered expression.
type Expr interface{ exprNode() }

// Field is one field of a lowered type or class.
type Field struct {
	Name string
	Vis  lexer.Visibility
	Type Type
}

// TypeDef is a lowered data-type declaration.
type TypeDef struct {
	Name   string
	Vis    lexer.Visibility
	Fields []Field
}

func (*TypeDef) declNode() {}

// ClassDef is a lowered class declaration.
type ClassDef struct {
	Name    string
	Vis     lexer.Visibility
	Base    string // "" when the class has no base
	Fields  []Field
	Methods []*Function
}

func (*ClassDef) declNode() {}

// Param is one lowered function parameter.
type Param struct {
	Name    string
	Type    Type
	Default Expr // nil when the parameter has no default
}

// Function is a lowered function or method. Return reflects the declared or
// inferred type; Fallible marks it wrapped in the target's result shape
// because the body contains at least one fail site.
type Function struct {
	Name     string
	Vis      lexer.Visibility
	Params   []Param
	Return   Type
	Fallible bool
	IsAsync  bool
	Body     []Stmt
}

func (*Function) declNode() {}

// Test is a lowered test declaration.
type Test struct {
	Name string
	Body []Stmt
}

func (*Test) declNode() {}

// Let is a lowered binding. Type is always populated: the declared type
// when present, otherwise the locally inferred one (possibly Inferred).
type Let struct {
	Name  string
	Const bool
	Type  Type
	Value Expr
}

func (*Let) stmtNode() {}

// Assign is a lowered assignment.
type Assign struct {
	Target Expr
	Value  Expr
}

func (*Assign) stmtNode() {}

// If is a lowered conditional; an else-if chain nests another If as the
// sole statement of Else.
type If struct {
	Cond Expr
	Then []Stmt
	Else []Stmt // nil when absent
}

func (*If) stmtNode() {}

// While is a lowered while loop.
type While struct {
	Cond Expr
	Body []Stmt
}

func (*While) stmtNode() {}

// LoopOption is one verbatim data-parallel sub-option.
type LoopOption struct {
	Name  string
	Value Expr // nil for bare flags like ordered
}

// For is a lowered for-in loop. Options is nil for sequential loops.
type For struct {
	Var      string
	VarType  Type
	Iterable Expr
	Parallel bool
	Options  []LoopOption
	Body     []Stmt
}

func (*For) stmtNode() {}

// Return is a lowered return statement.
type Return struct {
	Value Expr // nil for bare returns
}

func (*Return) stmtNode() {}

// FailReturn constructs the error value and returns early. Only valid
// inside fallible functions.
type FailReturn struct {
	Value Expr
}

func (*FailReturn) stmtNode() {}

// ExprStmt is an expression in statement position.
type ExprStmt struct {
	Expr Expr
}

func (*ExprStmt) stmtNode() {}

// Break is a lowered break.
type Break struct{}

func (*Break) stmtNode() {}

// Continue is a lowered continue.
type Continue struct{}

func (*Continue) stmtNode() {}

// Ident references a binding.
type Ident struct {
	Name string
}

func (*Ident) exprNode() {}

// IntLit is an integer literal.
type IntLit struct {
	Text string
}

func (*IntLit) exprNode() {}

// FloatLit is a decimal literal; the text always carries a fractional part
// so rendered floats round-trip.
type FloatLit struct {
	Text string
}

func (*FloatLit) exprNode() {}

// StrLit is a string literal with escapes decoded.
type StrLit struct {
	Value string
}

func (*StrLit) exprNode() {}

// CharLit is a character literal.
type CharLit struct {
	Value rune
}

func (*CharLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
}

func (*BoolLit) exprNode() {}

// NullLit is the null literal.
type NullLit struct{}

func (*NullLit) exprNode() {}

// TemplateSegment is either literal text or an interpolated expression.
type TemplateSegment struct {
	Text string
	Expr Expr
}

// Template is an interpolated string.
type Template struct {
	Segments []TemplateSegment
}

func (*Template) exprNode() {}

// Unary is a prefix operation.
type Unary struct {
	Op string
	X  Expr
}

func (*Unary) exprNode() {}

// Binary is an infix operation.
type Binary struct {
	Op   string
	L, R Expr
}

func (*Binary) exprNode() {}

// Ternary is a conditional expression.
type Ternary struct {
	Cond, Then, Else Expr
}

func (*Ternary) exprNode() {}

// Range is low..high, exclusive of high.
type Range struct {
	Low, High Expr
}

func (*Range) exprNode() {}

// Call is a plain synchronous call.
type Call struct {
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode() {}

// AsyncCall is an inline spawn-and-await of a call.
type AsyncCall struct {
	Call *Call
}

func (*AsyncCall) exprNode() {}

// ParCall is an inline spawn-and-join of a call on an OS thread.
type ParCall struct {
	Call *Call
}

func (*ParCall) exprNode() {}

// TaskMode selects the scheduling tier of a task or fire call.
type TaskMode int

const (
	ModeAsync TaskMode = iota
	ModePar
)

// TaskCall spawns a named function and yields its handle; Fire variants
// discard the handle by design. Lowering requires a bare-identifier callee
// here, a lowering limitation rather than a grammar one.
type TaskCall struct {
	Callee string
	Args   []Expr
	Mode   TaskMode
	Fire   bool
}

func (*TaskCall) exprNode() {}

// Await awaits a previously obtained handle.
type Await struct {
	X Expr
}

func (*Await) exprNode() {}

// Member is target.field.
type Member struct {
	Target Expr
	Field  string
}

func (*Member) exprNode() {}

// Index is target[index].
type Index struct {
	Target Expr
	Idx    Expr
}

func (*Index) exprNode() {}

// Lambda is a lowered anonymous function.
type Lambda struct {
	Params []Param
	Body   []Stmt // one-liner bodies normalize to a single Return
}

func (*Lambda) exprNode() {}

// ArrayLit is a lowered array literal.
type ArrayLit struct {
	Elems []Expr
	Elem  Type // unified element type, possibly Inferred
}

func (*ArrayLit) exprNode() {}

// ObjectField is one entry of an object or struct literal.
type ObjectField struct {
	Name  string
	Value Expr
}

// ObjectLit is an untyped object literal; it renders as a dynamic value.
type ObjectLit struct {
	Fields []ObjectField
}

func (*ObjectLit) exprNode() {}

// StructLit constructs a named type.
type StructLit struct {
	Name   string
	Fields []ObjectField
}

func (*StructLit) exprNode() {}

// Unsupported marks a construct lowering could not express. Its presence
// anywhere forces whole-program fallback to AST-based generation.
type Unsupported struct {
	Origin ast.Node
}

func (*Unsupported) exprNode() {}
func (*Unsupported) stmtNode() {}
