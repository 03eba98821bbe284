package diag

import "fmt"

// Stage identifies which compiler phase produced the diagnostic.
type Stage string

const (
	StageLexer    Stage = "lexer"
	StageParser   Stage = "parser"
	StageSemantic Stage = "semantic"
	StageCodegen  Stage = "codegen"
	StageIO       Stage = "io"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Lexer errors
	CodeLexIllegalRune        Code = "LEX_ILLEGAL_RUNE"
	CodeLexUnterminatedString Code = "LEX_UNTERMINATED_STRING"
	CodeLexUnterminatedBlock  Code = "LEX_UNTERMINATED_BLOCK_COMMENT"
	CodeLexMalformedNumber    Code = "LEX_MALFORMED_NUMBER"

	// Parser errors
	CodeParseUnexpectedToken Code = "PARSE_UNEXPECTED_TOKEN"
	CodeParseBadPolicy       Code = "PARSE_BAD_EXEC_POLICY"
	CodeParseBadTemplate     Code = "PARSE_BAD_TEMPLATE"
	CodeParseBadAssignTarget Code = "PARSE_BAD_ASSIGN_TARGET"

	// Semantic errors
	CodeSemaRedeclaration Code = "SEMA_REDECLARATION"
	CodeSemaUnknownBase   Code = "SEMA_UNKNOWN_BASE"
	CodeSemaBadArity      Code = "SEMA_BAD_ARITY"
	CodeSemaBadAssign     Code = "SEMA_BAD_ASSIGN_TARGET"
	CodeSemaBadTypeRef    Code = "SEMA_BAD_TYPE_REFERENCE"

	// Codegen errors
	CodeGenUnsupportedLambda Code = "CODEGEN_UNSUPPORTED_LAMBDA"
	CodeGenUnsupportedNode   Code = "CODEGEN_UNSUPPORTED_NODE"

	// Boundary I/O errors
	CodeIORead  Code = "IO_READ"
	CodeIOWrite Code = "IO_WRITE"
)

// Span represents a half-open byte range in source code.
type Span struct {
	Filename string
	Line     int // 1-based
	Column   int // 1-based
	Start    int // byte offset, inclusive
	End      int // byte offset, exclusive
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid reports whether the span carries usable location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is a compiler diagnostic surfaced to end-users and editor tooling.
type Diagnostic struct {
	Stage      Stage
	Severity   Severity
	Code       Code
	Title      string
	Message    string
	Span       Span
	Help       string
	SourceLine string // the offending source line, when the producer has it
}

// Error implements the error interface so a Diagnostic can flow through
// ordinary error returns between stages.
func (d Diagnostic) Error() string {
	if d.Span.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Span, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// New constructs an error-severity diagnostic.
func New(stage Stage, code Code, title, message string, span Span) Diagnostic {
	return Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Title:    title,
		Message:  message,
		Span:     span,
	}
}

// WithHelp returns a copy of the diagnostic with help text attached.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// WithSourceLine returns a copy of the diagnostic carrying the offending line.
func (d Diagnostic) WithSourceLine(line string) Diagnostic {
	d.SourceLine = line
	return d
}
