package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/liva-lang/livac-sub000/internal/compiler"
	"github.com/liva-lang/livac-sub000/internal/config"
	"github.com/liva-lang/livac-sub000/internal/diag"
	"github.com/liva-lang/livac-sub000/internal/watcher"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: livac <command> [options]\n")
		fmt.Fprintf(os.Stderr, "\nCommands:\n")
		fmt.Fprintf(os.Stderr, "  build <file>    Compile a Liva source file\n")
		fmt.Fprintf(os.Stderr, "  check <file>    Parse and analyze without generating output\n")
		fmt.Fprintf(os.Stderr, "  watch <file>    Rebuild on change\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "build":
		runBuild(args)
	case "check":
		runCheck(args)
	case "watch":
		runWatch(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

type buildFlags struct {
	out     string
	cfgPath string
	pkg     string
	json    bool
	run     bool
}

func parseBuildFlags(name string, args []string) (*buildFlags, []string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	bf := &buildFlags{}
	fs.StringVar(&bf.out, "out", "", "output directory (default from liva.toml)")
	fs.StringVar(&bf.cfgPath, "config", "", "path to liva.toml")
	fs.StringVar(&bf.pkg, "package", "", "generated package name")
	fs.BoolVar(&bf.json, "json", false, "emit diagnostics as JSON")
	fs.BoolVar(&bf.run, "run", false, "run the generated program with cargo")
	fs.Parse(args)
	return bf, fs.Args()
}

func runBuild(args []string) {
	bf, rest := parseBuildFlags("build", args)
	if len(rest) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: livac build [options] <file>\n")
		os.Exit(1)
	}
	path := rest[0]

	cfg := loadConfig(bf)
	result, err := buildOnce(path, cfg, bf)
	if err != nil {
		reportError(err, bf.json || cfg.Build.JSON, cfg.Build.Color)
		os.Exit(1)
	}
	if bf.run {
		runCargo(outDir(cfg, bf))
	}
	_ = result
}

func runCheck(args []string) {
	bf, rest := parseBuildFlags("check", args)
	if len(rest) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: livac check [options] <file>\n")
		os.Exit(1)
	}
	path := rest[0]

	cfg := loadConfig(bf)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "livac: %v\n", err)
		os.Exit(1)
	}
	_, cerr := compiler.Compile(string(src), compiler.Options{Filename: path})
	if cerr != nil {
		reportError(cerr, bf.json || cfg.Build.JSON, cfg.Build.Color)
		os.Exit(1)
	}
	fmt.Printf("%s: ok\n", path)
}

func runWatch(args []string) {
	bf, rest := parseBuildFlags("watch", args)
	if len(rest) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: livac watch [options] <file>\n")
		os.Exit(1)
	}
	path := rest[0]
	cfg := loadConfig(bf)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	rebuild := func(changed []string) {
		slog.Info("rebuilding", "trigger", changed)
		if _, err := buildOnce(path, cfg, bf); err != nil {
			reportError(err, bf.json || cfg.Build.JSON, cfg.Build.Color)
			return
		}
		slog.Info("build ok", "file", path)
	}

	w, err := watcher.New(cfg.Watch.Patterns, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, rebuild)
	if err != nil {
		fmt.Fprintf(os.Stderr, "livac: %v\n", err)
		os.Exit(1)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := w.Watch(ctx, []string{filepath.Dir(path)}); err != nil {
		fmt.Fprintf(os.Stderr, "livac: %v\n", err)
		os.Exit(1)
	}

	rebuild([]string{path})
	slog.Info("watching", "dir", filepath.Dir(path), "patterns", cfg.Watch.Patterns)
	<-ctx.Done()
}

func loadConfig(bf *buildFlags) *config.Config {
	cfg, err := config.Load(bf.cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "livac: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func outDir(cfg *config.Config, bf *buildFlags) string {
	if bf.out != "" {
		return bf.out
	}
	return cfg.Build.Out
}

func buildOnce(path string, cfg *config.Config, bf *buildFlags) (*compiler.Result, error) {
	pkg := bf.pkg
	if pkg == "" {
		pkg = cfg.Package.Name
	}
	return compiler.CompileFile(path, outDir(cfg, bf), compiler.Options{
		PackageName: pkg,
		Version:     cfg.Package.Version,
	})
}

func reportError(err error, asJSON, color bool) {
	var d diag.Diagnostic
	if !errors.As(err, &d) {
		fmt.Fprintf(os.Stderr, "livac: %v\n", err)
		return
	}
	if asJSON {
		if out, jerr := d.ToJSON(); jerr == nil {
			fmt.Fprintln(os.Stderr, out)
			return
		}
	}
	diag.NewFormatter(os.Stderr, color).Format(d)
}

func runCargo(dir string) {
	cmd := exec.Command("cargo", "run", "--quiet")
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "livac: cargo: %v\n", err)
		os.Exit(1)
	}
}
