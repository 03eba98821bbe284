package codegen

import (
	"strings"
	"unicode"

	"github.com/liva-lang/livac-sub000/internal/ir"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// SnakeCase normalizes an identifier to the target naming convention: a
// separator is inserted before each uppercase rune that follows a lowercase
// one, then everything is lowered. Leading underscores are visibility
// markers in the source language and are stripped from the emitted name.
// The transform is idempotent.
func SnakeCase(name string) string {
	name = strings.TrimLeft(name, "_")
	var out strings.Builder
	prevLower := false
	for _, r := range name {
		if unicode.IsUpper(r) {
			if prevLower {
				out.WriteByte('_')
			}
			out.WriteRune(unicode.ToLower(r))
			prevLower = false
			continue
		}
		out.WriteRune(r)
		prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
	}
	return out.String()
}

// typeName keeps user-declared type names as-is, minus visibility markers.
func typeName(name string) string {
	return strings.TrimLeft(name, "_")
}

// visPrefix maps source visibility to the target's visibility keyword.
// Plain names are public, protected names are crate-visible, private names
// get no keyword.
func visPrefix(v lexer.Visibility) string {
	switch v {
	case lexer.VisProtected:
		return "pub(crate) "
	case lexer.VisPrivate:
		return ""
	default:
		return "pub "
	}
}

// rustType maps an IR type to target syntax. The inference placeholder
// renders as the conservative fixed-width integer; an array of unresolved
// elements falls back to the dynamic value type.
func rustType(t ir.Type) string {
	switch t.Kind {
	case ir.KindUnit:
		return "()"
	case ir.KindInt:
		return "i32"
	case ir.KindFloat:
		return "f64"
	case ir.KindBool:
		return "bool"
	case ir.KindString:
		return "String"
	case ir.KindBytes:
		return "Vec<u8>"
	case ir.KindChar:
		return "char"
	case ir.KindArray:
		if t.Elem.IsInferred() {
			return "Vec<serde_json::Value>"
		}
		return "Vec<" + rustType(*t.Elem) + ">"
	case ir.KindOptional:
		return "Option<" + rustType(*t.Elem) + ">"
	case ir.KindNamed:
		return typeName(t.Name)
	default:
		return "i64"
	}
}

// escapeFormatText escapes literal text for use inside a format! string.
func escapeFormatText(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	s = strings.ReplaceAll(s, "}", "}}")
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// quoteRustChar renders a Rust character literal.
func quoteRustChar(r rune) string {
	switch r {
	case '\\':
		return `'\\'`
	case '\'':
		return `'\''`
	case '\n':
		return `'\n'`
	case '\t':
		return `'\t'`
	case '\r':
		return `'\r'`
	}
	return "'" + string(r) + "'"
}

// quoteRustString renders a Rust string literal.
func quoteRustString(s string) string {
	var out strings.Builder
	out.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			out.WriteString("\\\\")
		case '"':
			out.WriteString("\\\"")
		case '\n':
			out.WriteString("\\n")
		case '\t':
			out.WriteString("\\t")
		case '\r':
			out.WriteString("\\r")
		default:
			out.WriteRune(r)
		}
	}
	out.WriteByte('"')
	return out.String()
}
