package ast

import "github.com/liva-lang/livac-sub000/internal/lexer"

// Ident represents an identifier with its lex-time visibility class.
type Ident struct {
	Name string
	Vis  lexer.Visibility
	span lexer.Span
}

// Span returns the identifier span.
func (i *Ident) Span() lexer.Span { return i.span }

func (*Ident) exprNode() {}

// NewIdent constructs an identifier node.
func NewIdent(name string, vis lexer.Visibility, span lexer.Span) *Ident {
	return &Ident{Name: name, Vis: vis, span: span}
}

// IntegerLit represents an integer literal. Text has digit separators
// already stripped.
type IntegerLit struct {
	Text string
	span lexer.Span
}

// Span returns the literal span.
func (l *IntegerLit) Span() lexer.Span { return l.span }

func (*IntegerLit) exprNode() {}

// NewIntegerLit constructs an integer literal node.
func NewIntegerLit(text string, span lexer.Span) *IntegerLit {
	return &IntegerLit{Text: text, span: span}
}

// FloatLit represents a decimal literal. The text always carries a
// fractional part.
type FloatLit struct {
	Text string
	span lexer.Span
}

// Span returns the literal span.
func (l *FloatLit) Span() lexer.Span { return l.span }

func (*FloatLit) exprNode() {}

// NewFloatLit constructs a float literal node.
func NewFloatLit(text string, span lexer.Span) *FloatLit {
	return &FloatLit{Text: text, span: span}
}

// StringLit represents a plain string literal with escapes decoded.
type StringLit struct {
	Value string
	span  lexer.Span
}

// Span returns the literal span.
func (l *StringLit) Span() lexer.Span { return l.span }

func (*StringLit) exprNode() {}

// NewStringLit constructs a string literal node.
func NewStringLit(value string, span lexer.Span) *StringLit {
	return &StringLit{Value: value, span: span}
}

// CharLit represents a character literal.
type CharLit struct {
	Value rune
	span  lexer.Span
}

// Span returns the literal span.
func (l *CharLit) Span() lexer.Span { return l.span }

func (*CharLit) exprNode() {}

// NewCharLit constructs a character literal node.
func NewCharLit(value rune, span lexer.Span) *CharLit {
	return &CharLit{Value: value, span: span}
}

// BoolLit represents true or false.
type BoolLit struct {
	Value bool
	span  lexer.Span
}

// Span returns the literal span.
func (l *BoolLit) Span() lexer.Span { return l.span }

func (*BoolLit) exprNode() {}

// NewBoolLit constructs a boolean literal node.
func NewBoolLit(value bool, span lexer.Span) *BoolLit {
	return &BoolLit{Value: value, span: span}
}

// NullLit represents the null literal.
type NullLit struct {
	span lexer.Span
}

// Span returns the literal span.
func (l *NullLit) Span() lexer.Span { return l.span }

func (*NullLit) exprNode() {}

// NewNullLit constructs a null literal node.
func NewNullLit(span lexer.Span) *NullLit { return &NullLit{span: span} }

// TemplateSegment is one piece of an interpolated string: either literal
// text or an embedded expression, never both.
type TemplateSegment struct {
	Text string
	Expr Expr
}

// TemplateLit represents an interpolated string: $"Total: {price}".
type TemplateLit struct {
	Segments []TemplateSegment
	span     lexer.Span
}

// Span returns the literal span.
func (l *TemplateLit) Span() lexer.Span { return l.span }

func (*TemplateLit) exprNode() {}

// NewTemplateLit constructs a template literal node.
func NewTemplateLit(segments []TemplateSegment, span lexer.Span) *TemplateLit {
	return &TemplateLit{Segments: segments, span: span}
}

// PrefixExpr represents a unary prefix expression.
type PrefixExpr struct {
	Op   lexer.Kind
	Expr Expr
	span lexer.Span
}

// Span returns the expression span.
func (e *PrefixExpr) Span() lexer.Span { return e.span }

func (*PrefixExpr) exprNode() {}

// NewPrefixExpr constructs a prefix expression node.
func NewPrefixExpr(op lexer.Kind, expr Expr, span lexer.Span) *PrefixExpr {
	return &PrefixExpr{Op: op, Expr: expr, span: span}
}

// InfixExpr represents an infix binary expression.
type InfixExpr struct {
	Op    lexer.Kind
	Left  Expr
	Right Expr
	span  lexer.Span
}

// Span returns the expression span.
func (e *InfixExpr) Span() lexer.Span { return e.span }

func (*InfixExpr) exprNode() {}

// NewInfixExpr constructs a binary expression node.
func NewInfixExpr(op lexer.Kind, left, right Expr, span lexer.Span) *InfixExpr {
	return &InfixExpr{Op: op, Left: left, Right: right, span: span}
}

// TernaryExpr represents cond ? then : else.
type TernaryExpr struct {
	Cond Expr
	Then Expr
	Else Expr
	span lexer.Span
}

// Span returns the expression span.
func (e *TernaryExpr) Span() lexer.Span { return e.span }

func (*TernaryExpr) exprNode() {}

// NewTernaryExpr constructs a ternary expression node.
func NewTernaryExpr(cond, then, els Expr, span lexer.Span) *TernaryExpr {
	return &TernaryExpr{Cond: cond, Then: then, Else: els, span: span}
}

// RangeExpr represents low..high, exclusive of high.
type RangeExpr struct {
	Low  Expr
	High Expr
	span lexer.Span
}

// Span returns the expression span.
func (e *RangeExpr) Span() lexer.Span { return e.span }

func (*RangeExpr) exprNode() {}

// NewRangeExpr constructs a range expression node.
func NewRangeExpr(low, high Expr, span lexer.Span) *RangeExpr {
	return &RangeExpr{Low: low, High: high, span: span}
}

// AssignExpr represents target = value. Valid targets are identifier,
// member, and index expressions; semantic analysis enforces that.
type AssignExpr struct {
	Target Expr
	Value  Expr
	span   lexer.Span
}

// Span returns the expression span.
func (e *AssignExpr) Span() lexer.Span { return e.span }

func (*AssignExpr) exprNode() {}

// NewAssignExpr constructs an assignment expression node.
func NewAssignExpr(target, value Expr, span lexer.Span) *AssignExpr {
	return &AssignExpr{Target: target, Value: value, span: span}
}

// CallExpr represents a function call carrying exactly one execution
// policy, fixed at parse time.
type CallExpr struct {
	Callee Expr
	Args   []Expr
	Policy ExecPolicy
	span   lexer.Span
}

// Span returns the expression span.
func (e *CallExpr) Span() lexer.Span { return e.span }

func (*CallExpr) exprNode() {}

// NewCallExpr constructs a call expression node.
func NewCallExpr(callee Expr, args []Expr, policy ExecPolicy, span lexer.Span) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, Policy: policy, span: span}
}

// AwaitExpr represents await handle.
type AwaitExpr struct {
	Expr Expr
	span lexer.Span
}

// Span returns the expression span.
func (e *AwaitExpr) Span() lexer.Span { return e.span }

func (*AwaitExpr) exprNode() {}

// NewAwaitExpr constructs an await expression node.
func NewAwaitExpr(expr Expr, span lexer.Span) *AwaitExpr {
	return &AwaitExpr{Expr: expr, span: span}
}

// MemberExpr represents target.field.
type MemberExpr struct {
	Target Expr
	Field  *Ident
	span   lexer.Span
}

// Span returns the expression span.
func (e *MemberExpr) Span() lexer.Span { return e.span }

func (*MemberExpr) exprNode() {}

// NewMemberExpr constructs a member access node.
func NewMemberExpr(target Expr, field *Ident, span lexer.Span) *MemberExpr {
	return &MemberExpr{Target: target, Field: field, span: span}
}

// IndexExpr represents target[index].
type IndexExpr struct {
	Target Expr
	Index  Expr
	span   lexer.Span
}

// Span returns the expression span.
func (e *IndexExpr) Span() lexer.Span { return e.span }

func (*IndexExpr) exprNode() {}

// NewIndexExpr constructs an index expression node.
func NewIndexExpr(target, index Expr, span lexer.Span) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, span: span}
}

// LambdaExpr represents an anonymous function. Like FnDecl, the one-liner
// and block bodies are mutually exclusive.
type LambdaExpr struct {
	Params     []*Param
	ReturnType TypeExpr
	ExprBody   Expr
	Body       *BlockStmt
	span       lexer.Span
}

// Span returns the expression span.
func (e *LambdaExpr) Span() lexer.Span { return e.span }

func (*LambdaExpr) exprNode() {}

// NewLambdaExpr constructs a lambda expression node.
func NewLambdaExpr(params []*Param, ret TypeExpr, exprBody Expr, body *BlockStmt, span lexer.Span) *LambdaExpr {
	return &LambdaExpr{Params: params, ReturnType: ret, ExprBody: exprBody, Body: body, span: span}
}

// ArrayLit represents [a, b, c].
type ArrayLit struct {
	Elems []Expr
	span  lexer.Span
}

// Span returns the literal span.
func (l *ArrayLit) Span() lexer.Span { return l.span }

func (*ArrayLit) exprNode() {}

// NewArrayLit constructs an array literal node.
func NewArrayLit(elems []Expr, span lexer.Span) *ArrayLit {
	return &ArrayLit{Elems: elems, span: span}
}

// ObjectField is one name: value entry of an object or struct literal.
type ObjectField struct {
	Name  *Ident
	Value Expr
	span  lexer.Span
}

// Span returns the field span.
func (f *ObjectField) Span() lexer.Span { return f.span }

// NewObjectField constructs an object field node.
func NewObjectField(name *Ident, value Expr, span lexer.Span) *ObjectField {
	return &ObjectField{Name: name, Value: value, span: span}
}

// ObjectLit represents an untyped object literal: { name: "x", age: 3 }.
type ObjectLit struct {
	Fields []*ObjectField
	span   lexer.Span
}

// Span returns the literal span.
func (l *ObjectLit) Span() lexer.Span { return l.span }

func (*ObjectLit) exprNode() {}

// NewObjectLit constructs an object literal node.
func NewObjectLit(fields []*ObjectField, span lexer.Span) *ObjectLit {
	return &ObjectLit{Fields: fields, span: span}
}

// StructLit represents Name { field: value }. Only recognized after a
// capitalized identifier.
type StructLit struct {
	Name   *Ident
	Fields []*ObjectField
	span   lexer.Span
}

// Span returns the literal span.
func (l *StructLit) Span() lexer.Span { return l.span }

func (*StructLit) exprNode() {}

// NewStructLit constructs a struct literal node.
func NewStructLit(name *Ident, fields []*ObjectField, span lexer.Span) *StructLit {
	return &StructLit{Name: name, Fields: fields, span: span}
}
