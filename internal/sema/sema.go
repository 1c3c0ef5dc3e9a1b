// Package sema implements the variable-analysis pass (spec §4.5): a single
// pre-order walk over the AST that classifies every binding's storage
// class and flags eval-tainted scopes, so internal/irbuild knows how to
// allocate and reference each identifier.
package sema

import "github.com/kindahl/es2c/internal/ast"

// StorageClass is where a binding ultimately lives at runtime.
type StorageClass int

const (
	// Unallocated is the initial class before any reference resolves it.
	Unallocated StorageClass = iota
	// Local is a stack slot in the function's value area.
	Local
	// LocalExtra is a heap-bound extra slot, used when a binding is
	// captured by an inner function or needs pointer-stable storage (an
	// arguments-object parameter).
	LocalExtra
	// Context is a reified binding in an environment record.
	Context
)

func (s StorageClass) String() string {
	switch s {
	case Unallocated:
		return "unallocated"
	case Local:
		return "local"
	case LocalExtra:
		return "local-extra"
	case Context:
		return "context"
	default:
		return "invalid"
	}
}

// BindingKind distinguishes what introduced a Binding.
type BindingKind int

const (
	ParamBinding BindingKind = iota
	DeclBinding
	CalleeNameBinding
)

// Binding is one analyzed identifier within a Function: its declaration
// shape and its resolved storage class (spec §3 "Analyzed variable").
type Binding struct {
	Name       string
	Kind       BindingKind
	DeclKind   ast.DeclKind // meaningful when Kind == DeclBinding
	ParamIndex int          // meaningful when Kind == ParamBinding
	Storage    StorageClass
}

// Function is the analyzed record for one FunctionLiteral (spec §3
// "Analyzed function"): its binding set, in declaration order, the set of
// referenced outer scopes (hop distances captured by this function), and
// whether any enclosed "eval" call taints it.
type Function struct {
	Node   *ast.FunctionLiteral
	Parent *Function

	order    []string
	bindings map[string]*Binding

	EvalTainted      bool
	ReferencedScopes map[int]bool
	Children         []*Function
}

func newFunction(node *ast.FunctionLiteral, parent *Function) *Function {
	return &Function{
		Node:             node,
		Parent:           parent,
		bindings:         make(map[string]*Binding),
		ReferencedScopes: make(map[int]bool),
	}
}

// Binding looks up a binding by name in f's own scope (no outer-scope
// fallback; resolution across scopes is the analyzer's job).
func (f *Function) Binding(name string) (*Binding, bool) {
	b, ok := f.bindings[name]
	return b, ok
}

// Bindings returns f's bindings in declaration order.
func (f *Function) Bindings() []*Binding {
	out := make([]*Binding, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.bindings[name])
	}
	return out
}

func (f *Function) define(b *Binding) {
	if _, exists := f.bindings[b.Name]; exists {
		return
	}
	f.bindings[b.Name] = b
	f.order = append(f.order, b.Name)
}

// Info is the result of a full Analyze pass: every FunctionLiteral's
// analyzed Function record, keyed by AST identity.
type Info struct {
	Functions map[*ast.FunctionLiteral]*Function
	Program   *Function
}

type frameKind int

const (
	frameObject frameKind = iota
	frameDeclarative
)

// frame is one entry of the lexical-environment stack the walk maintains;
// an object frame with fn == nil is a bare "with" environment (spec §4.5
// "Frame kind ∈ {object (global or with), declarative (function)}" — here
// the program's own frame is modeled as declarative like any function,
// since §4.5's closing rule promotes its leftover unallocated bindings to
// context explicitly rather than by forcing every access through an
// object frame).
type frame struct {
	kind frameKind
	fn   *Function
}

type analyzer struct {
	info       *Info
	stack      []frame
	catchNames []string // active catch-clause identifiers, innermost last
}

// Analyze runs the variable-analysis pass over prog and returns the
// analyzed-function table.
func Analyze(prog *ast.Program) *Info {
	a := &analyzer{info: &Info{Functions: make(map[*ast.FunctionLiteral]*Function)}}
	root := a.analyzeFunction(prog.Body, nil)
	a.info.Program = root

	for _, fn := range a.info.Functions {
		if fn.EvalTainted {
			for _, b := range fn.bindings {
				b.Storage = Context
			}
		}
	}
	for _, b := range root.bindings {
		if b.Storage == Unallocated {
			b.Storage = Context
		}
	}
	return a.info
}
