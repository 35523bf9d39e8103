// Package llc is an embeddable C-like scripting language. A Program
// carries the host's registered values, functions and types; Compile
// parses source against them and Run executes the root scope. Afterwards
// the host reads variables back and calls script functions and methods
// through Get proxies.
package llc

import (
	"fmt"
	"reflect"

	"github.com/wicstas/llc/parser"
	"github.com/wicstas/llc/runtime"
	"github.com/wicstas/llc/token"
)

// Program is the host facade over one script.
type Program struct {
	file    string
	source  string
	reg     *runtime.Registry
	root    *runtime.Scope
	bindErr error
}

// NewProgram returns an empty program with the primitive types
// registered.
func NewProgram() *Program {
	reg := runtime.NewRegistry()
	root := runtime.NewScope(nil)
	for _, name := range reg.Names() {
		info, ok := reg.Lookup(name)
		check(ok, "registered name resolves")
		err := root.DeclareType(name, info.Exemplar())
		check(err == nil, "primitive type declares once")
	}
	return &Program{reg: reg, root: root}
}

func check(cond bool, predicate string) {
	if !cond {
		panic(fmt.Sprintf("internal error: check %q failed", predicate))
	}
}

// Registry exposes the program's type registry.
func (p *Program) Registry() *runtime.Registry { return p.reg }

func (p *Program) fail(err error) error {
	if err != nil && p.bindErr == nil {
		p.bindErr = err
	}
	return err
}

// Bind registers a named variable seeded with value. Passing a pointer
// to a registered type binds a reference view: script mutations are
// visible through the pointer.
func (p *Program) Bind(name string, value any) error {
	obj, err := p.reg.Wrap(value)
	if err != nil {
		return p.fail(fmt.Errorf("bind %q: %w", name, err))
	}
	if err := p.root.BindVariable(name, obj); err != nil {
		return p.fail(err)
	}
	return nil
}

// BindFunction registers a free host function under name.
func (p *Program) BindFunction(name string, fn any) error {
	f, err := runtime.NewHostFunction(p.reg, fn)
	if err != nil {
		return p.fail(fmt.Errorf("bind %q: %w", name, err))
	}
	if err := p.root.DeclareFunction(name, f); err != nil {
		return p.fail(err)
	}
	return nil
}

// TypeHandle fluently binds the members of a registered host type.
type TypeHandle[T any] struct {
	p    *Program
	info *runtime.TypeInfo
}

// BindType registers the host type T under a script-visible name and
// returns a handle for binding its fields, methods and constructors.
func BindType[T any](p *Program, name string) *TypeHandle[T] {
	var zero T
	info, err := p.reg.Register(name, reflect.TypeOf(zero))
	if err != nil {
		p.fail(err)
		return &TypeHandle[T]{p: p}
	}
	if err := p.root.DeclareType(name, info.Exemplar()); err != nil {
		p.fail(err)
		return &TypeHandle[T]{p: p}
	}
	return &TypeHandle[T]{p: p, info: info}
}

// Field binds the Go struct field goName as the script member name.
func (h *TypeHandle[T]) Field(name, goName string) *TypeHandle[T] {
	if h.info != nil {
		if err := h.info.AddField(name, goName); err != nil {
			h.p.fail(err)
		}
	}
	return h
}

// Method binds the Go method goName as the script method name. Value and
// pointer receivers both bind.
func (h *TypeHandle[T]) Method(name, goName string) *TypeHandle[T] {
	if h.info != nil {
		if err := h.info.AddMethod(name, goName); err != nil {
			h.p.fail(err)
		}
	}
	return h
}

// Ctor registers a constructor: a func(...) T. Construction picks the
// first registered constructor whose arity and coercions match.
func (h *TypeHandle[T]) Ctor(fn any) *TypeHandle[T] {
	if h.info != nil {
		if err := h.info.AddCtor(fn); err != nil {
			h.p.fail(err)
		}
	}
	return h
}

// Compile lexes and parses source into the program's root scope. Earlier
// binding errors surface here if they were ignored.
func (p *Program) Compile(source string) error {
	return p.CompileNamed("", source)
}

// CompileNamed is Compile with a file name for locations.
func (p *Program) CompileNamed(file, source string) error {
	if p.bindErr != nil {
		return p.bindErr
	}
	p.file = file
	p.source = source
	return parser.Parse(file, source, p.reg, p.root)
}

// Run executes the root scope. A top-level return is swallowed; other
// errors propagate.
func (p *Program) Run() error {
	if p.bindErr != nil {
		return p.bindErr
	}
	return p.root.ExecuteRoot()
}

// Eval parses one more chunk of source into the root scope and runs only
// the statements it added, returning the rendering of the last
// expression's value. The REPL is built on it.
func (p *Program) Eval(chunk string) (string, bool, error) {
	if p.bindErr != nil {
		return "", false, p.bindErr
	}
	p.source = chunk
	mark := p.root.StatementCount()
	if err := parser.Parse(p.file, chunk, p.reg, p.root); err != nil {
		return "", false, err
	}
	v, has, err := p.root.ExecuteFrom(mark)
	if err != nil {
		return "", false, err
	}
	if !has {
		return "", false, nil
	}
	return v.String(), true, nil
}

// RenderError formats an error against the compiled source, underlining
// the located span when the error carries one.
func (p *Program) RenderError(err error) string {
	if lerr, ok := err.(*token.Error); ok {
		return lerr.Render(p.source)
	}
	return err.Error()
}

// Get returns a proxy for a named variable or function in the root
// scope.
func (p *Program) Get(name string) *Proxy {
	if v, ok := p.root.FindVariable(name); ok {
		return &Proxy{p: p, obj: v, hasObj: true, name: name}
	}
	if fn, ok := p.root.FindFunction(name); ok {
		return &Proxy{p: p, fn: fn, name: name}
	}
	return &Proxy{p: p, name: name, err: fmt.Errorf("cannot find %q", name)}
}
