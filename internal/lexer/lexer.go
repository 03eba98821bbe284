package lexer

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/liva-lang/livac-sub000/internal/diag"
)

// Error is a fatal lexical error. Tokenization has no recovery: the first
// invalid span aborts the whole scan.
type Error struct {
	Code    diag.Code
	Message string
	Span    Span
}

func (e *Error) Error() string { return e.Message }

// ToDiagnostic converts the error into the shared diagnostic structure,
// resolving line/column through the provided table.
func (e *Error) ToDiagnostic(filename string, table *diag.LineTable) diag.Diagnostic {
	span := diag.Span{Filename: filename, Start: e.Span.Start, End: e.Span.End}
	var srcLine string
	if table != nil {
		span, srcLine = table.Resolve(span)
	}
	return diag.New(diag.StageLexer, e.Code, "lexical error", e.Message, span).
		WithSourceLine(srcLine)
}

// Lexer scans UTF-8 source into tokens with byte spans. Whitespace and both
// comment styles are consumed and never emitted.
type Lexer struct {
	src string
	pos int  // byte offset of ch
	ch  rune // current rune, 0 at EOF
	w   int  // byte width of ch
}

// New creates a lexer over the given source text.
func New(src string) *Lexer {
	l := &Lexer{src: src, pos: -1}
	l.read()
	return l
}

// Tokenize scans the entire input and returns the ordered token sequence
// ending with an EOF token, or the first fatal lexical error.
func Tokenize(src string) ([]Token, *Error) {
	l := New(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks, nil
		}
	}
}

// read advances to the next rune. pos always points at the first byte of ch.
func (l *Lexer) read() {
	l.pos += l.w
	if l.pos < 0 {
		l.pos = 0
	}
	if l.pos >= len(l.src) {
		l.ch = 0
		l.w = 0
		l.pos = len(l.src)
		return
	}
	l.ch, l.w = utf8.DecodeRuneInString(l.src[l.pos:])
}

// peek returns the rune after ch without advancing.
func (l *Lexer) peek() rune {
	next := l.pos + l.w
	if next >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[next:])
	return r
}

func (l *Lexer) skipTrivia() *Error {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.read()
		case l.ch == '/' && l.peek() == '/':
			for l.ch != '\n' && l.ch != 0 {
				l.read()
			}
		case l.ch == '/' && l.peek() == '*':
			start := l.pos
			l.read()
			l.read()
			depth := 1
			for depth > 0 {
				if l.ch == 0 {
					return &Error{
						Code:    diag.CodeLexUnterminatedBlock,
						Message: "unterminated block comment",
						Span:    Span{Start: start, End: l.pos},
					}
				}
				if l.ch == '/' && l.peek() == '*' {
					l.read()
					l.read()
					depth++
				} else if l.ch == '*' && l.peek() == '/' {
					l.read()
					l.read()
					depth--
				} else {
					l.read()
				}
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) make(kind Kind, start int, raw, value string) Token {
	return Token{Kind: kind, Raw: raw, Value: value, Span: Span{Start: start, End: l.pos}}
}

func (l *Lexer) single(kind Kind) Token {
	start := l.pos
	raw := string(l.ch)
	l.read()
	return l.make(kind, start, raw, raw)
}

// pair emits a two-rune token when the next rune matches, else the one-rune
// fallback kind.
func (l *Lexer) pair(next rune, twoKind, oneKind Kind) Token {
	start := l.pos
	first := l.ch
	if l.peek() == next {
		l.read()
		raw := string(first) + string(l.ch)
		l.read()
		return l.make(twoKind, start, raw, raw)
	}
	raw := string(first)
	l.read()
	return l.make(oneKind, start, raw, raw)
}

// Next returns the next token, or a fatal lexical error.
func (l *Lexer) Next() (Token, *Error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	switch l.ch {
	case 0:
		return l.make(EOF, l.pos, "", ""), nil
	case '=':
		start := l.pos
		switch l.peek() {
		case '=':
			l.read()
			l.read()
			return l.make(EQ, start, "==", "=="), nil
		case '>':
			l.read()
			l.read()
			return l.make(ARROW, start, "=>", "=>"), nil
		}
		l.read()
		return l.make(ASSIGN, start, "=", "="), nil
	case '+':
		return l.single(PLUS), nil
	case '-':
		return l.single(MINUS), nil
	case '*':
		return l.single(STAR), nil
	case '/':
		return l.single(SLASH), nil
	case '%':
		return l.single(PERCENT), nil
	case '!':
		return l.pair('=', NOT_EQ, BANG), nil
	case '<':
		return l.pair('=', LE, LT), nil
	case '>':
		return l.pair('=', GE, GT), nil
	case '&':
		if l.peek() == '&' {
			return l.pair('&', AND, AND), nil
		}
		return l.illegal()
	case '|':
		if l.peek() == '|' {
			return l.pair('|', OR, OR), nil
		}
		return l.illegal()
	case '?':
		return l.single(QUESTION), nil
	case ':':
		return l.single(COLON), nil
	case ';':
		return l.single(SEMICOLON), nil
	case ',':
		return l.single(COMMA), nil
	case '.':
		if l.peek() == '.' {
			return l.pair('.', DOTDOT, DOT), nil
		}
		return l.single(DOT), nil
	case '(':
		return l.single(LPAREN), nil
	case ')':
		return l.single(RPAREN), nil
	case '{':
		return l.single(LBRACE), nil
	case '}':
		return l.single(RBRACE), nil
	case '[':
		return l.single(LBRACKET), nil
	case ']':
		return l.single(RBRACKET), nil
	case '"':
		return l.readString()
	case '\'':
		return l.readChar()
	case '$':
		if l.peek() == '"' {
			return l.readTemplate()
		}
		return l.illegal()
	default:
		if isLetter(l.ch) {
			start := l.pos
			name := l.readIdentifier()
			kind := LookupIdent(name)
			tok := l.make(kind, start, name, name)
			if kind == IDENT {
				tok.Vis = ClassifyVisibility(name)
			}
			return tok, nil
		}
		if isDigit(l.ch) {
			return l.readNumber(), nil
		}
		return l.illegal()
	}
}

func (l *Lexer) illegal() (Token, *Error) {
	start := l.pos
	raw := string(l.ch)
	l.read()
	return Token{}, &Error{
		Code:    diag.CodeLexIllegalRune,
		Message: "illegal character " + strconv.Quote(raw),
		Span:    Span{Start: start, End: l.pos},
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.read()
	}
	return l.src[start:l.pos]
}

// readNumber scans an integer or decimal literal. Underscore digit
// separators are allowed and stripped from Value. A decimal point only
// counts when a digit follows, so ranges like 0..10 stay two INT tokens and
// decimals always carry a fractional part.
func (l *Lexer) readNumber() Token {
	start := l.pos
	kind := INT
	for isDigit(l.ch) || l.ch == '_' {
		l.read()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		kind = FLOAT
		l.read()
		for isDigit(l.ch) || l.ch == '_' {
			l.read()
		}
	}
	raw := l.src[start:l.pos]
	return l.make(kind, start, raw, strings.ReplaceAll(raw, "_", ""))
}

func (l *Lexer) readString() (Token, *Error) {
	start := l.pos
	raw, value, err := l.scanQuoted(start)
	if err != nil {
		return Token{}, err
	}
	return l.make(STRING, start, raw, value), nil
}

// readTemplate scans a $"..." template as one opaque token. Value holds the
// raw inner text between the quotes, escapes intact; the parser's template
// sub-parser does its own splitting and decoding.
func (l *Lexer) readTemplate() (Token, *Error) {
	start := l.pos
	l.read() // consume '$'
	raw, _, err := l.scanQuoted(start)
	if err != nil {
		return Token{}, err
	}
	full := "$" + raw
	inner := raw[1 : len(raw)-1]
	return l.make(TEMPLATE, start, full, inner), nil
}

// scanQuoted reads a double-quoted literal starting at the current '"'.
// Returns the raw slice including quotes and the decoded value.
func (l *Lexer) scanQuoted(errStart int) (raw, value string, err *Error) {
	openPos := l.pos
	l.read() // consume opening quote
	var decoded strings.Builder
	for {
		switch l.ch {
		case 0, '\n', '\r':
			return "", "", &Error{
				Code:    diag.CodeLexUnterminatedString,
				Message: "unterminated string literal",
				Span:    Span{Start: errStart, End: l.pos},
			}
		case '"':
			l.read()
			return l.src[openPos:l.pos], decoded.String(), nil
		case '\\':
			l.read()
			switch l.ch {
			case 'n':
				decoded.WriteByte('\n')
			case 't':
				decoded.WriteByte('\t')
			case 'r':
				decoded.WriteByte('\r')
			case '\\':
				decoded.WriteByte('\\')
			case '"':
				decoded.WriteByte('"')
			case 0:
				continue
			default:
				decoded.WriteByte('\\')
				decoded.WriteRune(l.ch)
			}
			l.read()
		default:
			decoded.WriteRune(l.ch)
			l.read()
		}
	}
}

func (l *Lexer) readChar() (Token, *Error) {
	start := l.pos
	l.read() // consume opening quote
	var value rune
	switch l.ch {
	case 0, '\n':
		return Token{}, &Error{
			Code:    diag.CodeLexUnterminatedString,
			Message: "unterminated character literal",
			Span:    Span{Start: start, End: l.pos},
		}
	case '\\':
		l.read()
		switch l.ch {
		case 'n':
			value = '\n'
		case 't':
			value = '\t'
		case 'r':
			value = '\r'
		case '\\':
			value = '\\'
		case '\'':
			value = '\''
		default:
			value = l.ch
		}
		l.read()
	default:
		value = l.ch
		l.read()
	}
	if l.ch != '\'' {
		return Token{}, &Error{
			Code:    diag.CodeLexUnterminatedString,
			Message: "unterminated character literal",
			Span:    Span{Start: start, End: l.pos},
		}
	}
	l.read()
	raw := l.src[start:l.pos]
	return l.make(CHAR, start, raw, string(value)), nil
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	// Numeric literals are restricted to ASCII digits.
	return ch >= '0' && ch <= '9'
}
