package diag

import (
	"strings"
	"testing"
)

func TestLineTable_Position(t *testing.T) {
	src := "ab\ncde\n\nfg"
	table := NewLineTable(src)

	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{2, 1, 3},  // the newline itself
		{3, 2, 1},  // first byte of "cde"
		{5, 2, 3},
		{7, 3, 1},  // the empty line
		{8, 4, 1},
		{9, 4, 2},
		{99, 4, 3}, // past the end clamps to the final position
		{-1, 1, 1},
	}
	for i, tt := range tests {
		line, col := table.Position(tt.offset)
		if line != tt.line || col != tt.column {
			t.Errorf("tests[%d] - offset %d: expected %d:%d, got %d:%d",
				i, tt.offset, tt.line, tt.column, line, col)
		}
	}
}

func TestLineTable_Line(t *testing.T) {
	table := NewLineTable("first\r\nsecond\nthird")

	tests := []struct {
		line int
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{0, ""},
		{4, ""},
	}
	for i, tt := range tests {
		if got := table.Line(tt.line); got != tt.want {
			t.Errorf("tests[%d] - line %d: expected=%q, got=%q", i, tt.line, tt.want, got)
		}
	}
}

func TestLineTable_Resolve(t *testing.T) {
	table := NewLineTable("let x = 1\nlet y = @\n")
	span, srcLine := table.Resolve(Span{Filename: "a.liva", Start: 18, End: 19})
	if span.Line != 2 || span.Column != 9 {
		t.Errorf("expected 2:9, got %d:%d", span.Line, span.Column)
	}
	if srcLine != "let y = @" {
		t.Errorf("source line = %q", srcLine)
	}
}

func TestDiagnostic_Error(t *testing.T) {
	d := New(StageParser, CodeParseUnexpectedToken, "parse error", "unexpected token",
		Span{Filename: "a.liva", Line: 3, Column: 7})
	want := "a.liva:3:7: PARSE_UNEXPECTED_TOKEN: unexpected token"
	if d.Error() != want {
		t.Errorf("expected=%q, got=%q", want, d.Error())
	}

	bare := New(StageIO, CodeIORead, "cannot read source", "no such file", Span{})
	if got := bare.Error(); got != "IO_READ: no such file" {
		t.Errorf("spanless error = %q", got)
	}
}

func TestDiagnostic_ToJSON(t *testing.T) {
	d := New(StageSemantic, CodeSemaBadArity, "semantic error", "expected 2 arguments, got 3",
		Span{Filename: "a.liva", Line: 4, Column: 13}).
		WithHelp("remove the extra argument").
		WithSourceLine("    let r = add(1, 2, 3)")

	out, err := d.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	for _, want := range []string{
		`"location":{"file":"a.liva","line":4,"column":13,"source_line":"    let r = add(1, 2, 3)"}`,
		`"code":"SEMA_BAD_ARITY"`,
		`"title":"semantic error"`,
		`"message":"expected 2 arguments, got 3"`,
		`"help":"remove the extra argument"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("json missing %q:\n%s", want, out)
		}
	}
}

func TestDiagnostic_ToJSONWithoutSpan(t *testing.T) {
	d := New(StageIO, CodeIOWrite, "cannot write output", "permission denied", Span{})
	out, err := d.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if strings.Contains(out, "location") {
		t.Errorf("spanless diagnostic must omit the location block:\n%s", out)
	}
}

func TestFormatter_Plain(t *testing.T) {
	var buf strings.Builder
	f := NewFormatter(&buf, false)
	f.Format(New(StageLexer, CodeLexIllegalRune, "lexical error", "illegal character '@'",
		Span{Filename: "a.liva", Line: 2, Column: 9, Start: 18, End: 19}).
		WithSourceLine("let y = @").
		WithHelp("remove the character"))

	out := buf.String()
	for _, want := range []string{
		"error[LEX_ILLEGAL_RUNE]: illegal character '@'",
		"--> a.liva:2:9",
		"2 | let y = @",
		"^",
		"help: remove the character",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatter_NoSnippetWithoutSourceLine(t *testing.T) {
	var buf strings.Builder
	NewFormatter(&buf, false).Format(New(StageParser, CodeParseUnexpectedToken,
		"parse error", "unexpected token", Span{Filename: "a.liva", Line: 1, Column: 1}))

	out := buf.String()
	if strings.Contains(out, "|") {
		t.Errorf("no gutter expected without a source line:\n%s", out)
	}
	if !strings.Contains(out, "--> a.liva:1:1") {
		t.Errorf("location pointer missing:\n%s", out)
	}
}
