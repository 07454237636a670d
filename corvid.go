// Package corvid is the host-facing façade over the language: it owns a
// virtual machine, a global symbol table, the set of loaded programs, and
// the last error raised by any of them, mirroring the single Context object
// an embedder is expected to create once per thread and drive for its
// lifetime.
package corvid

import (
	"fmt"
	"io"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/compiler"
	"github.com/mbassey/corvid/lang/machine"
	"github.com/mbassey/corvid/lang/parser"
	"github.com/mbassey/corvid/lang/value"
)

// Context is not safe for concurrent use: per spec, it is single-threaded
// and owned by one goroutine for its lifetime. Native functions may call
// back into it (CallFunction), but nothing re-enters it from another
// goroutine.
type Context struct {
	vm       *machine.Machine
	globals  *globalTable
	programs []*bytecode.Program
	lastErr  *Error
}

// New creates an empty Context: no globals registered, no programs loaded.
func New() *Context {
	g := newGlobalTable()
	return &Context{vm: machine.New(g), globals: g}
}

// Close releases every value the Context's global table holds. After
// Close, the Context must not be used again.
func (c *Context) Close() {
	c.globals.release()
}

// LastError returns the structured error from the most recent failing
// operation, or nil if the last operation succeeded.
func (c *Context) LastError() *Error {
	return c.lastErr
}

// StackTrace returns the call-stack snapshot attached to the last error,
// innermost frame first, or nil if the last error carries none (syntax and
// semantic errors never do; only runtime errors do).
func (c *Context) StackTrace() []string {
	if c.lastErr == nil {
		return nil
	}
	return c.lastErr.Stack
}

func (c *Context) fail(err *Error) error {
	c.lastErr = err
	return err
}

func (c *Context) succeed() {
	c.lastErr = nil
}

// toplevel wraps a freshly compiled program's header into the callable
// top-level function Value spec.md's "load source into a top-level
// function" operation describes, and records the program so it outlives
// the Value's Program reference.
func (c *Context) toplevel(prog *bytecode.Program) value.Value {
	c.programs = append(c.programs, prog)
	// The top-level Header's fourth word counts symbol table entries, not
	// a symtab index (only a nested FUNCTION header's fourth word is an
	// index, used for stack-trace name lookup) — the top-level function's
	// own SymtabIdx is unused, since DisplayName falls back to "<main>".
	return value.NewScriptFunction("", prog, 0, len(prog.Code),
		int(prog.Header.Argc), int(prog.Header.Nregs), 0, true, nil)
}

// LoadSource parses and compiles src, returning the resulting top-level
// function without invoking it. name labels the source for diagnostics
// (e.g. the originating file path).
func (c *Context) LoadSource(name string, src []byte) (value.Value, error) {
	chunk, err := parser.New(name, src).Parse()
	if err != nil {
		return value.Nil, c.fail(wrapSyntax(err))
	}
	prog, err := compiler.Compile(chunk)
	if err != nil {
		return value.Nil, c.fail(wrapSemantic(err))
	}
	c.succeed()
	return c.toplevel(prog), nil
}

// LoadBinary reads a program previously written by bytecode.EncodeProgram
// (the `.spo` on-disk format) and wraps it into a top-level function,
// without invoking it.
func (c *Context) LoadBinary(r io.Reader) (value.Value, error) {
	prog, err := bytecode.DecodeProgram(r)
	if err != nil {
		return value.Nil, c.fail(wrapGeneric(err))
	}
	c.succeed()
	return c.toplevel(prog), nil
}

// CompileExpression synthesizes a `return <expr>;` chunk around expr,
// compiles it, and returns the resulting top-level function, so a host can
// evaluate a bare expression (as a REPL does) without writing a full
// statement-level chunk.
func (c *Context) CompileExpression(expr string) (value.Value, error) {
	src := []byte(fmt.Sprintf("return %s;", expr))
	return c.LoadSource("<expression>", src)
}

// CallFunction invokes fn (as returned by LoadSource/LoadBinary/
// CompileExpression/RegisterNative, or any function value obtained from
// the language itself) with args, returning its result.
func (c *Context) CallFunction(fn value.Value, args []value.Value) (value.Value, error) {
	result, err := c.vm.Call(fn, args)
	if err != nil {
		return value.Nil, c.fail(wrapRuntime(err))
	}
	c.succeed()
	return result, nil
}

// RegisterNative installs fn as a global under name, callable from loaded
// source via ordinary call syntax.
func (c *Context) RegisterNative(name string, fn func(args []value.Value) (value.Value, error)) {
	c.globals.Store(name, value.NewNativeFunction(name, fn))
}

// SetGlobal stores v as the global named name, independent of
// RegisterNative, so a host can seed plain data (not just callables) into
// the global table a loaded program's LDSYM/GLBVAL instructions resolve
// against.
func (c *Context) SetGlobal(name string, v value.Value) {
	c.globals.Store(name, v)
}

// Global reads the current value of the global named name.
func (c *Context) Global(name string) (value.Value, bool) {
	return c.globals.Lookup(name)
}
