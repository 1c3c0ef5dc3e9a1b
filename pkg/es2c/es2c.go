// Package es2c is the public embeddable API: compile ECMAScript 5.1
// source to its C target without going through the CLI (cmd/es2c), for a
// host program that wants to drive the compiler in-process.
package es2c

import "github.com/kindahl/es2c/internal/driver"

// Compiler is the embeddable entry point. It holds no state of its own;
// New exists so callers have a value to extend if per-instance options
// (e.g. default output paths) are added later, matching the `New()
// (*Engine, error)` shape the teacher's own embeddable package exposes.
type Compiler struct{}

// New constructs a Compiler. It cannot currently fail, but returns an
// error to keep the signature stable if construction grows a fallible
// step.
func New() (*Compiler, error) {
	return &Compiler{}, nil
}

// Artifacts is the pair of outputs a successful compile produces: the
// target source the emitted code would otherwise be written to disk as,
// and the textual IR dump.
type Artifacts struct {
	Source string
	IR     string
}

// CompileSource compiles src (attributed to name for diagnostics) in
// memory, performing no file I/O. Use this to embed the compiler in a
// host process that wants to hold the output in memory rather than read
// it back off disk.
func (c *Compiler) CompileSource(name string, src []byte) (*Artifacts, error) {
	result, err := driver.Compile(name, src)
	if err != nil {
		return nil, err
	}
	return &Artifacts{Source: result.Source, IR: result.IR}, nil
}

// CompileFile compiles the file at path and writes outputBase (target
// source) and outputBase+".ir" (IR dump), mirroring the CLI's own
// `compile` subcommand (spec §6). An empty outputBase uses
// driver.DefaultOutputBase.
func (c *Compiler) CompileFile(path, outputBase string) (*Artifacts, error) {
	result, err := driver.CompileFile(path, outputBase)
	if err != nil {
		return nil, err
	}
	return &Artifacts{Source: result.Source, IR: result.IR}, nil
}
