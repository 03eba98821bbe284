package ast

import "github.com/liva-lang/livac-sub000/internal/lexer"

// BlockStmt represents a brace-delimited statement list.
type BlockStmt struct {
	Stmts []Stmt
	span  lexer.Span
}

// Span returns the block span.
func (b *BlockStmt) Span() lexer.Span { return b.span }

func (*BlockStmt) stmtNode() {}

// NewBlockStmt constructs a block node.
func NewBlockStmt(stmts []Stmt, span lexer.Span) *BlockStmt {
	return &BlockStmt{Stmts: stmts, span: span}
}

// LetStmt represents a let or const binding.
type LetStmt struct {
	Const bool
	Name  *Ident
	Type  TypeExpr // nil when the binding type is inferred
	Value Expr
	span  lexer.Span
}

// Span returns the statement span.
func (s *LetStmt) Span() lexer.Span { return s.span }

func (*LetStmt) stmtNode() {}

// NewLetStmt constructs a binding statement node.
func NewLetStmt(isConst bool, name *Ident, typ TypeExpr, value Expr, span lexer.Span) *LetStmt {
	return &LetStmt{Const: isConst, Name: name, Type: typ, Value: value, span: span}
}

// IfStmt represents a conditional. Else is nil, a *BlockStmt, or another
// *IfStmt for else-if chains.
type IfStmt struct {
	Cond Expr
	Then *BlockStmt
	Else Stmt
	span lexer.Span
}

// Span returns the statement span.
func (s *IfStmt) Span() lexer.Span { return s.span }

func (*IfStmt) stmtNode() {}

// NewIfStmt constructs a conditional statement node.
func NewIfStmt(cond Expr, then *BlockStmt, els Stmt, span lexer.Span) *IfStmt {
	return &IfStmt{Cond: cond, Then: then, Else: els, span: span}
}

// WhileStmt represents a while loop.
type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	span lexer.Span
}

// Span returns the statement span.
func (s *WhileStmt) Span() lexer.Span { return s.span }

func (*WhileStmt) stmtNode() {}

// NewWhileStmt constructs a while statement node.
func NewWhileStmt(cond Expr, body *BlockStmt, span lexer.Span) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body, span: span}
}

// LoopOption is one sub-option of a data-parallel loop policy, for example
// chunk = 64 or the bare flag ordered. Value is nil for bare flags.
type LoopOption struct {
	Name  string
	Value Expr
	span  lexer.Span
}

// Span returns the option span.
func (o *LoopOption) Span() lexer.Span { return o.span }

// NewLoopOption constructs a loop policy option.
func NewLoopOption(name string, value Expr, span lexer.Span) *LoopOption {
	return &LoopOption{Name: name, Value: value, span: span}
}

// LoopPolicy is the optional data-parallel policy attached to a for loop:
// for x in xs par(ordered, chunk = 64) { ... }. The compiler forwards the
// declared options to the target runtime verbatim; it never schedules.
type LoopPolicy struct {
	Options []*LoopOption
	span    lexer.Span
}

// Span returns the policy span.
func (p *LoopPolicy) Span() lexer.Span { return p.span }

// NewLoopPolicy constructs a loop policy node.
func NewLoopPolicy(options []*LoopOption, span lexer.Span) *LoopPolicy {
	return &LoopPolicy{Options: options, span: span}
}

// ForStmt represents a for-in loop with an optional parallel policy.
type ForStmt struct {
	Var      *Ident
	Iterable Expr
	Policy   *LoopPolicy // nil for sequential loops
	Body     *BlockStmt
	span     lexer.Span
}

// Span returns the statement span.
func (s *ForStmt) Span() lexer.Span { return s.span }

func (*ForStmt) stmtNode() {}

// NewForStmt constructs a for statement node.
func NewForStmt(v *Ident, iterable Expr, policy *LoopPolicy, body *BlockStmt, span lexer.Span) *ForStmt {
	return &ForStmt{Var: v, Iterable: iterable, Policy: policy, Body: body, span: span}
}

// ReturnStmt represents a return statement with an optional value.
type ReturnStmt struct {
	Value Expr
	span  lexer.Span
}

// Span returns the statement span.
func (s *ReturnStmt) Span() lexer.Span { return s.span }

func (*ReturnStmt) stmtNode() {}

// NewReturnStmt constructs a return statement node.
func NewReturnStmt(value Expr, span lexer.Span) *ReturnStmt {
	return &ReturnStmt{Value: value, span: span}
}

// FailStmt represents a fail statement carrying an error value.
type FailStmt struct {
	Value Expr
	span  lexer.Span
}

// Span returns the statement span.
func (s *FailStmt) Span() lexer.Span { return s.span }

func (*FailStmt) stmtNode() {}

// NewFailStmt constructs a fail statement node.
func NewFailStmt(value Expr, span lexer.Span) *FailStmt {
	return &FailStmt{Value: value, span: span}
}

// BreakStmt represents a break statement.
type BreakStmt struct {
	span lexer.Span
}

// Span returns the statement span.
func (s *BreakStmt) Span() lexer.Span { return s.span }

func (*BreakStmt) stmtNode() {}

// NewBreakStmt constructs a break statement node.
func NewBreakStmt(span lexer.Span) *BreakStmt { return &BreakStmt{span: span} }

// ContinueStmt represents a continue statement.
type ContinueStmt struct {
	span lexer.Span
}

// Span returns the statement span.
func (s *ContinueStmt) Span() lexer.Span { return s.span }

func (*ContinueStmt) stmtNode() {}

// NewContinueStmt constructs a continue statement node.
func NewContinueStmt(span lexer.Span) *ContinueStmt { return &ContinueStmt{span: span} }

// ExprStmt represents an expression used in statement position.
type ExprStmt struct {
	Expr Expr
	span lexer.Span
}

// Span returns the statement span.
func (s *ExprStmt) Span() lexer.Span { return s.span }

func (*ExprStmt) stmtNode() {}

// NewExprStmt constructs an expression statement node.
func NewExprStmt(expr Expr, span lexer.Span) *ExprStmt {
	return &ExprStmt{Expr: expr, span: span}
}
