// Package driver wires the compiler's stages (strpool through
// internal/emit) into the single end-to-end pipeline spec.md §6 calls the
// "compiler driver": read one source file, parse, analyze, build IR,
// optimize, and write the two output artifacts.
package driver

import (
	"fmt"
	"os"

	"github.com/kindahl/es2c/internal/ast"
	"github.com/kindahl/es2c/internal/diag"
	"github.com/kindahl/es2c/internal/emit"
	"github.com/kindahl/es2c/internal/ir"
	"github.com/kindahl/es2c/internal/irbuild"
	"github.com/kindahl/es2c/internal/optimize"
	"github.com/kindahl/es2c/internal/parser"
	"github.com/kindahl/es2c/internal/sema"
	"github.com/kindahl/es2c/internal/token"
)

// DefaultOutputBase is the output base path used when the caller does not
// set one, matching the CLI's own `-o` default (spec §6).
const DefaultOutputBase = "a.cc"

// Result records what CompileFile produced, for a caller that wants to
// report or inspect the artifacts without re-reading them from disk
// (internal/conformance does exactly this).
type Result struct {
	SourcePath string
	OutputPath string // target source, written to OutputBase
	IRPath     string // textual IR dump, written to OutputBase + ".ir"
	Source     string
	IR         string
}

// Compile runs src (attributed to path for diagnostics) through the full
// pipeline and returns the two output artifacts in memory, writing
// nothing to disk. pkg/es2c's in-process API and internal/conformance's
// test runner both want the pipeline without the file-writing side
// effect CompileFile adds.
func Compile(path string, src []byte) (*Result, error) {
	prog, err := parser.Parse(path, src)
	if err != nil {
		return nil, err
	}

	info := sema.Analyze(prog)

	m, err := buildModule(path, src, prog, info)
	if err != nil {
		return nil, err
	}

	optimize.Run(m)

	irText := emit.Print(m)
	out := emit.EmitSource(m)

	return &Result{
		SourcePath: path,
		Source:     out.Header + out.Source,
		IR:         irText,
	}, nil
}

// CompileFile reads path, runs it through Compile, and writes outputBase
// and outputBase+".ir". No output is written if any phase fails: spec §7
// allows a driver to write partial output at its own discretion, and this
// one chooses not to, so a failed compile never leaves a stale or
// half-written artifact behind.
func CompileFile(path, outputBase string) (*Result, error) {
	if outputBase == "" {
		outputBase = DefaultOutputBase
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	result, err := Compile(path, src)
	if err != nil {
		return nil, err
	}

	outPath := outputBase
	irPath := outputBase + ".ir"
	if err := os.WriteFile(outPath, []byte(result.Source), 0o644); err != nil {
		return nil, fmt.Errorf("%s: %w", outPath, err)
	}
	if err := os.WriteFile(irPath, []byte(result.IR), 0o644); err != nil {
		return nil, fmt.Errorf("%s: %w", irPath, err)
	}

	result.OutputPath = outPath
	result.IRPath = irPath
	return result, nil
}

// buildModule runs internal/irbuild, turning a builder assertion panic
// (spec §7's Internal category: "builder assertions / unknown label") into
// a regular *diag.Error instead of crashing the whole driver over one bad
// input file.
func buildModule(path string, src []byte, prog *ast.Program, info *sema.Info) (m *ir.Module, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = diag.New(path, string(src), token.Position{}, "internal: %v", r)
		}
	}()
	return irbuild.Build(prog, info), nil
}
