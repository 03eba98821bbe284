package parser

import (
	"strings"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// parseTemplate re-parses an opaque TEMPLATE token into literal and
// interpolation segments. The token value is the raw text between the
// quotes with escapes intact. Splitting happens on unescaped braces; {{ and
// }} are literal-escapes. Each interpolation is re-tokenized and parsed as
// a full expression.
//
// When an interpolation fails to parse, one retry normalizes single quotes
// to double quotes before giving up and keeping the text as a literal
// segment. This is a deliberate leniency for sloppy sources, not a
// correctness guarantee.
func (p *Parser) parseTemplate(tok lexer.Token) (ast.Expr, error) {
	inner := tok.Value
	var segments []ast.TemplateSegment
	var literal strings.Builder

	flush := func() {
		if literal.Len() > 0 {
			segments = append(segments, ast.TemplateSegment{Text: decodeEscapes(literal.String())})
			literal.Reset()
		}
	}

	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '{':
			if i+1 < len(inner) && inner[i+1] == '{' {
				literal.WriteByte('{')
				i++
				continue
			}
			end, ok := findInterpolationEnd(inner, i+1)
			if !ok {
				return nil, p.errorf(diag.CodeParseBadTemplate, tok.Span,
					"unbalanced interpolation in string template")
			}
			text := inner[i+1 : end]
			if strings.TrimSpace(text) == "" {
				return nil, p.errorf(diag.CodeParseBadTemplate, tok.Span,
					"empty interpolation in string template")
			}
			flush()
			expr, err := parseInterpolation(text)
			if err != nil {
				// Lenient fallback: retry with quotes normalized, then
				// degrade to literal text.
				expr, err = parseInterpolation(normalizeQuotes(text))
				if err != nil {
					segments = append(segments, ast.TemplateSegment{Text: text})
					i = end
					continue
				}
			}
			segments = append(segments, ast.TemplateSegment{Expr: expr})
			i = end
		case '}':
			if i+1 < len(inner) && inner[i+1] == '}' {
				literal.WriteByte('}')
				i++
				continue
			}
			return nil, p.errorf(diag.CodeParseBadTemplate, tok.Span,
				"unbalanced } in string template")
		default:
			literal.WriteByte(inner[i])
		}
	}
	flush()
	return ast.NewTemplateLit(segments, tok.Span), nil
}

// findInterpolationEnd locates the closing brace matching the one just
// before start, tracking nested braces inside the interpolation.
func findInterpolationEnd(s string, start int) (int, bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// parseInterpolation tokenizes and parses the inner text of one
// interpolation as a complete expression.
func parseInterpolation(text string) (ast.Expr, error) {
	toks, lerr := lexer.Tokenize(text)
	if lerr != nil {
		return nil, lerr
	}
	sub := New(toks)
	expr, err := sub.parseExpr()
	if err != nil {
		return nil, err
	}
	if !sub.at(lexer.EOF) {
		return nil, sub.errorf(diag.CodeParseBadTemplate, sub.cur().Span,
			"trailing tokens in interpolation")
	}
	return expr, nil
}

func normalizeQuotes(text string) string {
	return strings.ReplaceAll(text, "'", "\"")
}

// decodeEscapes decodes the escape sequences the lexer left intact in the
// template's raw inner text.
func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			out.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case '"':
			out.WriteByte('"')
		case '\\':
			out.WriteByte('\\')
		default:
			out.WriteByte('\\')
			out.WriteByte(s[i])
		}
	}
	return out.String()
}
