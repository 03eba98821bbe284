package ast

import "github.com/liva-lang/livac-sub000/internal/lexer"

// Node represents any AST node with an associated source span.
type Node interface {
	Span() lexer.Span
}

// Expr represents an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt represents a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Decl represents a top-level item.
type Decl interface {
	Node
	declNode()
}

// TypeExpr represents a type annotation expression.
type TypeExpr interface {
	Node
	typeNode()
}

// Program is a parsed compilation unit: an ordered sequence of top-level
// items.
type Program struct {
	Decls []Decl
	span  lexer.Span
}

// Span returns the span covering the entire program.
func (p *Program) Span() lexer.Span { return p.span }

// NewProgram constructs a program node with the provided span.
func NewProgram(decls []Decl, span lexer.Span) *Program {
	return &Program{Decls: decls, span: span}
}

// ExecPolicy is the concurrency mode attached to a call. Exactly one policy
// is fixed per call at parse time.
type ExecPolicy int

const (
	PolicyNormal ExecPolicy = iota
	PolicyAsync
	PolicyPar
	PolicyTaskAsync
	PolicyTaskPar
	PolicyFireAsync
	PolicyFirePar
)

// String returns the surface spelling of the policy.
func (p ExecPolicy) String() string {
	switch p {
	case PolicyAsync:
		return "async"
	case PolicyPar:
		return "par"
	case PolicyTaskAsync:
		return "task async"
	case PolicyTaskPar:
		return "task par"
	case PolicyFireAsync:
		return "fire async"
	case PolicyFirePar:
		return "fire par"
	default:
		return "normal"
	}
}

// IsAsyncFlavored reports whether the policy implies cooperative scheduling.
func (p ExecPolicy) IsAsyncFlavored() bool {
	return p == PolicyAsync || p == PolicyTaskAsync || p == PolicyFireAsync
}

// IsParFlavored reports whether the policy implies OS-thread parallelism.
func (p ExecPolicy) IsParFlavored() bool {
	return p == PolicyPar || p == PolicyTaskPar || p == PolicyFirePar
}

// ImportDecl represents a wildcard import: import * from "path".
type ImportDecl struct {
	Path string
	span lexer.Span
}

// Span returns the declaration span.
func (d *ImportDecl) Span() lexer.Span { return d.span }

func (*ImportDecl) declNode() {}

// NewImportDecl constructs an import declaration node.
func NewImportDecl(path string, span lexer.Span) *ImportDecl {
	return &ImportDecl{Path: path, span: span}
}

// ExternDecl declares an external host-language dependency, with an
// optional alias: extern "name" as alias.
type ExternDecl struct {
	Name  string
	Alias *Ident
	span  lexer.Span
}

// Span returns the declaration span.
func (d *ExternDecl) Span() lexer.Span { return d.span }

func (*ExternDecl) declNode() {}

// NewExternDecl constructs an extern declaration node.
func NewExternDecl(name string, alias *Ident, span lexer.Span) *ExternDecl {
	return &ExternDecl{Name: name, Alias: alias, span: span}
}

// FieldDef is a field inside a data-type or class declaration.
type FieldDef struct {
	Name *Ident
	Type TypeExpr
	span lexer.Span
}

// Span returns the field span.
func (f *FieldDef) Span() lexer.Span { return f.span }

// NewFieldDef constructs a field definition node.
func NewFieldDef(name *Ident, typ TypeExpr, span lexer.Span) *FieldDef {
	return &FieldDef{Name: name, Type: typ, span: span}
}

// TypeDecl represents a data-type declaration.
type TypeDecl struct {
	Name   *Ident
	Fields []*FieldDef
	span   lexer.Span
}

// Span returns the declaration span.
func (d *TypeDecl) Span() lexer.Span { return d.span }

func (*TypeDecl) declNode() {}

// NewTypeDecl constructs a data-type declaration node.
func NewTypeDecl(name *Ident, fields []*FieldDef, span lexer.Span) *TypeDecl {
	return &TypeDecl{Name: name, Fields: fields, span: span}
}

// ClassDecl represents a class declaration with a single optional base.
type ClassDecl struct {
	Name    *Ident
	Base    *Ident // nil when the class has no base
	Fields  []*FieldDef
	Methods []*FnDecl
	span    lexer.Span
}

// Span returns the declaration span.
func (d *ClassDecl) Span() lexer.Span { return d.span }

func (*ClassDecl) declNode() {}

// NewClassDecl constructs a class declaration node.
func NewClassDecl(name, base *Ident, fields []*FieldDef, methods []*FnDecl, span lexer.Span) *ClassDecl {
	return &ClassDecl{Name: name, Base: base, Fields: fields, Methods: methods, span: span}
}

// Param represents a function parameter with an optional declared type and
// an optional default value.
type Param struct {
	Name    *Ident
	Type    TypeExpr // nil when untyped
	Default Expr     // nil when the parameter has no default
	span    lexer.Span
}

// Span returns the parameter span.
func (p *Param) Span() lexer.Span { return p.span }

// NewParam constructs a parameter node.
func NewParam(name *Ident, typ TypeExpr, def Expr, span lexer.Span) *Param {
	return &Param{Name: name, Type: typ, Default: def, span: span}
}

// FnDecl represents a function declaration. One-liner (ExprBody) and block
// (Body) forms are mutually exclusive; exactly one is non-nil.
//
// IsAsync is the one field patched after construction: semantic analysis
// flips it (false to true only) while running effect inference to a
// fixpoint. Everything else is immutable once parsed.
type FnDecl struct {
	Name          *Ident
	Params        []*Param
	ReturnType    TypeExpr // nil when the return type is inferred
	ExprBody      Expr     // one-liner form: = expr or => expr
	Body          *BlockStmt
	DeclaredAsync bool // spelled async in source
	IsAsync       bool // declared or inferred through the call graph
	span          lexer.Span
}

// Span returns the declaration span.
func (d *FnDecl) Span() lexer.Span { return d.span }

func (*FnDecl) declNode() {}

// NewFnDecl constructs a function declaration node.
func NewFnDecl(name *Ident, params []*Param, ret TypeExpr, exprBody Expr, body *BlockStmt, declaredAsync bool, span lexer.Span) *FnDecl {
	return &FnDecl{
		Name:          name,
		Params:        params,
		ReturnType:    ret,
		ExprBody:      exprBody,
		Body:          body,
		DeclaredAsync: declaredAsync,
		IsAsync:       declaredAsync,
		span:          span,
	}
}

// TestDecl represents a test declaration: test "name" { ... }.
type TestDecl struct {
	Name string
	Body *BlockStmt
	span lexer.Span
}

// Span returns the declaration span.
func (d *TestDecl) Span() lexer.Span { return d.span }

func (*TestDecl) declNode() {}

// NewTestDecl constructs a test declaration node.
func NewTestDecl(name string, body *BlockStmt, span lexer.Span) *TestDecl {
	return &TestDecl{Name: name, Body: body, span: span}
}

// NamedType represents a named type reference.
type NamedType struct {
	Name *Ident
	span lexer.Span
}

// Span returns the type span.
func (t *NamedType) Span() lexer.Span { return t.span }

func (*NamedType) typeNode() {}

// NewNamedType constructs a named type node.
func NewNamedType(name *Ident, span lexer.Span) *NamedType {
	return &NamedType{Name: name, span: span}
}

// ArrayType represents an array type: T[].
type ArrayType struct {
	Elem TypeExpr
	span lexer.Span
}

// Span returns the type span.
func (t *ArrayType) Span() lexer.Span { return t.span }

func (*ArrayType) typeNode() {}

// NewArrayType constructs an array type node.
func NewArrayType(elem TypeExpr, span lexer.Span) *ArrayType {
	return &ArrayType{Elem: elem, span: span}
}

// OptionalType represents an optional type: T?.
type OptionalType struct {
	Elem TypeExpr
	span lexer.Span
}

// Span returns the type span.
func (t *OptionalType) Span() lexer.Span { return t.span }

func (*OptionalType) typeNode() {}

// NewOptionalType constructs an optional type node.
func NewOptionalType(elem TypeExpr, span lexer.Span) *OptionalType {
	return &OptionalType{Elem: elem, span: span}
}
