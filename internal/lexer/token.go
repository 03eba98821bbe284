package lexer

// Kind classifies a lexical token.
type Kind string

// Span is a half-open byte range into the original source. It is the only
// link a token keeps to its source position; diagnostics resolve it to
// line/column through diag.LineTable.
type Span struct {
	Start int // inclusive
	End   int // exclusive
}

// Visibility is derived from identifier spelling at lex time: a single
// leading underscore means protected, a double leading underscore means
// private. The convention drives default visibility in generated code.
type Visibility int

const (
	VisPublic Visibility = iota
	VisProtected
	VisPrivate
)

// Token is one classified lexical token. Immutable once produced.
type Token struct {
	Kind  Kind
	Raw   string     // exact source slice
	Value string     // decoded value (strings/templates/numbers), Raw otherwise
	Vis   Visibility // only meaningful for IDENT
	Span  Span
}

// Token kinds.
const (
	EOF Kind = "EOF"

	IDENT    Kind = "IDENT"
	INT      Kind = "INT"
	FLOAT    Kind = "FLOAT"
	STRING   Kind = "STRING"
	TEMPLATE Kind = "TEMPLATE" // $"..." interpolated string
	CHAR     Kind = "CHAR"

	ASSIGN   Kind = "="
	ARROW    Kind = "=>"
	PLUS     Kind = "+"
	MINUS    Kind = "-"
	STAR     Kind = "*"
	SLASH    Kind = "/"
	PERCENT  Kind = "%"
	BANG     Kind = "!"
	QUESTION Kind = "?"
	DOTDOT   Kind = ".."

	EQ     Kind = "=="
	NOT_EQ Kind = "!="
	LT     Kind = "<"
	LE     Kind = "<="
	GT     Kind = ">"
	GE     Kind = ">="
	AND    Kind = "&&"
	OR     Kind = "||"

	COMMA     Kind = ","
	SEMICOLON Kind = ";"
	COLON     Kind = ":"
	DOT       Kind = "."

	LPAREN   Kind = "("
	RPAREN   Kind = ")"
	LBRACE   Kind = "{"
	RBRACE   Kind = "}"
	LBRACKET Kind = "["
	RBRACKET Kind = "]"

	IMPORT   Kind = "IMPORT"
	FROM     Kind = "FROM"
	EXTERN   Kind = "EXTERN"
	AS       Kind = "AS"
	TYPE     Kind = "TYPE"
	CLASS    Kind = "CLASS"
	TEST     Kind = "TEST"
	LET      Kind = "LET"
	CONST    Kind = "CONST"
	ASYNC    Kind = "ASYNC"
	PAR      Kind = "PAR"
	TASK     Kind = "TASK"
	FIRE     Kind = "FIRE"
	AWAIT    Kind = "AWAIT"
	IF       Kind = "IF"
	ELSE     Kind = "ELSE"
	WHILE    Kind = "WHILE"
	FOR      Kind = "FOR"
	IN       Kind = "IN"
	RETURN   Kind = "RETURN"
	FAIL     Kind = "FAIL"
	BREAK    Kind = "BREAK"
	CONTINUE Kind = "CONTINUE"
	TRUE     Kind = "TRUE"
	FALSE    Kind = "FALSE"
	NULL     Kind = "NULL"
)

var keywords = map[string]Kind{
	"import":   IMPORT,
	"from":     FROM,
	"extern":   EXTERN,
	"as":       AS,
	"type":     TYPE,
	"class":    CLASS,
	"test":     TEST,
	"let":      LET,
	"const":    CONST,
	"async":    ASYNC,
	"par":      PAR,
	"task":     TASK,
	"fire":     FIRE,
	"await":    AWAIT,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"return":   RETURN,
	"fail":     FAIL,
	"break":    BREAK,
	"continue": CONTINUE,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// LookupIdent maps an identifier spelling to its keyword kind, or IDENT.
func LookupIdent(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// ClassifyVisibility derives visibility from leading underscores.
func ClassifyVisibility(name string) Visibility {
	switch {
	case len(name) >= 2 && name[0] == '_' && name[1] == '_':
		return VisPrivate
	case len(name) >= 1 && name[0] == '_':
		return VisProtected
	default:
		return VisPublic
	}
}

// IsPolicyKeyword reports whether the kind can open an execution-policy
// modifier on a call.
func IsPolicyKeyword(k Kind) bool {
	switch k {
	case ASYNC, PAR, TASK, FIRE:
		return true
	}
	return false
}
