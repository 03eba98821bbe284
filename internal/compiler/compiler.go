// Package compiler drives the full translation pipeline: tokenize, parse,
// analyze, collect effects, lower, and generate. Stages run strictly in
// order, single-threaded, and the first error aborts the run; no stage
// aggregates or recovers.
package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/liva-lang/livac-sub000/internal/codegen"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/effects"
	"github.com/liva-lang/livac-sub000/internal/ir"
	"github.com/liva-lang/livac-sub000/internal/lexer"
	"github.com/liva-lang/livac-sub000/internal/parser"
	"github.com/liva-lang/livac-sub000/internal/sema"
)

// Options configures a compilation run.
type Options struct {
	Filename    string // used in diagnostics; defaults to <input>
	PackageName string
	Version     string
}

// Result is a successful compilation: the generated source, the manifest,
// and the facts the generator acted on.
type Result struct {
	Rust     string
	Manifest string
	Facts    *effects.Facts
	Fallback bool // true when the AST renderer produced the output
}

// Compile translates one source unit. The returned error, when non-nil, is
// always a diag.Diagnostic.
func Compile(source string, opts Options) (*Result, error) {
	if opts.Filename == "" {
		opts.Filename = "<input>"
	}
	table := diag.NewLineTable(source)

	toks, lexErr := lexer.Tokenize(source)
	if lexErr != nil {
		return nil, lexErr.ToDiagnostic(opts.Filename, table)
	}

	prog, err := parser.New(toks).ParseProgram()
	if err != nil {
		return nil, toDiagnostic(err, opts.Filename, table)
	}

	analysis, err := sema.Analyze(prog)
	if err != nil {
		return nil, toDiagnostic(err, opts.Filename, table)
	}

	facts := effects.Collect(prog, analysis)
	lowered := ir.Lower(prog, analysis)

	out, err := codegen.Generate(prog, lowered, facts, codegen.Options{
		PackageName: opts.PackageName,
		Version:     opts.Version,
	})
	if err != nil {
		return nil, toDiagnostic(err, opts.Filename, table)
	}

	return &Result{
		Rust:     out.Rust,
		Manifest: out.Manifest,
		Facts:    facts,
		Fallback: lowered.Incomplete,
	}, nil
}

// CompileFile reads, compiles, and writes a compilation unit. The generated
// source lands in outDir as main.rs next to the manifest.
func CompileFile(path, outDir string, opts Options) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.StageIO, diag.CodeIORead, "cannot read source",
			err.Error(), diag.Span{Filename: path})
	}
	if opts.Filename == "" {
		opts.Filename = path
	}
	if opts.PackageName == "" {
		opts.PackageName = packageNameFromPath(path)
	}

	result, cerr := Compile(string(src), opts)
	if cerr != nil {
		return nil, cerr
	}

	if outDir != "" {
		srcDir := filepath.Join(outDir, "src")
		if err := os.MkdirAll(srcDir, 0o755); err != nil {
			return nil, writeErr(srcDir, err)
		}
		if err := os.WriteFile(filepath.Join(srcDir, "main.rs"), []byte(result.Rust), 0o644); err != nil {
			return nil, writeErr(srcDir, err)
		}
		if err := os.WriteFile(filepath.Join(outDir, "Cargo.toml"), []byte(result.Manifest), 0o644); err != nil {
			return nil, writeErr(outDir, err)
		}
	}
	return result, nil
}

func writeErr(path string, err error) diag.Diagnostic {
	return diag.New(diag.StageIO, diag.CodeIOWrite, "cannot write output",
		err.Error(), diag.Span{Filename: path})
}

// packageNameFromPath derives a manifest package name from the source file.
func packageNameFromPath(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = codegen.SnakeCase(name)
	if name == "" {
		return "app"
	}
	return name
}

// toDiagnostic normalizes a stage error into the shared diagnostic shape.
func toDiagnostic(err error, filename string, table *diag.LineTable) error {
	type convertible interface {
		ToDiagnostic(filename string, table *diag.LineTable) diag.Diagnostic
	}
	var c convertible
	if errors.As(err, &c) {
		return c.ToDiagnostic(filename, table)
	}
	var d diag.Diagnostic
	if errors.As(err, &d) {
		return d
	}
	return diag.New(diag.StageCodegen, diag.CodeGenUnsupportedNode, "internal error",
		fmt.Sprintf("unexpected failure: %v", err), diag.Span{Filename: filename})
}
