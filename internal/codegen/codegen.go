// Package codegen linearizes a validated program into target source text
// plus a dependency manifest. Two renderers share that contract: the IR
// renderer is preferred, and the AST renderer takes over for the whole
// program whenever lowering produced an Unsupported marker anywhere. The
// two paths never mix.
package codegen

import (
	"fmt"

	"github.com/liva-lang/livac-sub000/internal/ast"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/effects"
	"github.com/liva-lang/livac-sub000/internal/ir"
	"github.com/liva-lang/livac-sub000/internal/lexer"
)

// Options configures generation.
type Options struct {
	PackageName string
	Version     string
}

// Output is the generated target source and manifest, returned in memory;
// persisting them is the caller's responsibility.
type Output struct {
	Rust     string
	Manifest string
}

// Error is a fatal code-generation error.
type Error struct {
	Code    diag.Code
	Message string
	Span    lexer.Span
}

func (e *Error) Error() string { return e.Message }

// ToDiagnostic converts the error into the shared diagnostic structure.
func (e *Error) ToDiagnostic(filename string, table *diag.LineTable) diag.Diagnostic {
	span := diag.Span{Filename: filename, Start: e.Span.Start, End: e.Span.End}
	var srcLine string
	if table != nil {
		span, srcLine = table.Resolve(span)
	}
	return diag.New(diag.StageCodegen, e.Code, "code generation error", e.Message, span).
		WithSourceLine(srcLine)
}

// Generate renders the program. The renderer is chosen once, by inspecting
// IR completeness; effect facts decide which runtime scaffolding and
// manifest dependencies are emitted.
func Generate(prog *ast.Program, lowered *ir.Program, facts *effects.Facts, opts Options) (*Output, error) {
	if opts.PackageName == "" {
		opts.PackageName = "app"
	}
	if opts.Version == "" {
		opts.Version = "0.1.0"
	}

	var rust string
	var err error
	if lowered != nil && !lowered.Incomplete {
		rust, err = renderIR(lowered, facts)
	} else {
		rust, err = renderAST(prog, facts)
	}
	if err != nil {
		return nil, err
	}

	return &Output{
		Rust:     rust,
		Manifest: renderManifest(facts, opts),
	}, nil
}

// renderManifest synthesizes the dependency manifest: the async runtime and
// parallel executor only when effect facts demand them, the structured
// dynamic-value dependency always (untyped object and array literals fall
// back to it), and every externally-declared dependency.
func renderManifest(facts *effects.Facts, opts Options) string {
	var b builder
	b.line("[package]")
	b.linef("name = %q", opts.PackageName)
	b.linef("version = %q", opts.Version)
	b.line(`edition = "2021"`)
	b.line("")
	b.line("[dependencies]")
	seen := map[string]bool{"serde_json": true}
	b.line(`serde_json = "1"`)
	if facts != nil && facts.UsesAsync {
		seen["tokio"] = true
		b.line(`tokio = { version = "1", features = ["full"] }`)
	}
	if facts != nil && facts.UsesParallel {
		seen["rayon"] = true
		b.line(`rayon = "1"`)
	}
	if facts != nil {
		for _, ext := range facts.Externs {
			name := SnakeCase(ext.Name)
			if seen[name] {
				continue
			}
			seen[name] = true
			b.linef("%s = \"*\"", name)
		}
	}
	return b.String()
}

// builder is a small indented text writer shared by both renderers.
type builder struct {
	buf    []byte
	indent int
}

func (b *builder) in()  { b.indent++ }
func (b *builder) out() { b.indent-- }

func (b *builder) line(s string) {
	if s != "" {
		for i := 0; i < b.indent; i++ {
			b.buf = append(b.buf, "    "...)
		}
		b.buf = append(b.buf, s...)
	}
	b.buf = append(b.buf, '\n')
}

func (b *builder) linef(format string, args ...any) {
	b.line(fmt.Sprintf(format, args...))
}

func (b *builder) String() string { return string(b.buf) }
