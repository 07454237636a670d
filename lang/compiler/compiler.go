// Package compiler lowers a parsed chunk into the register-based bytecode
// executed by the virtual machine: instruction selection, register
// allocation, block-scoped locals, closure upvalue capture, control-flow
// lowering, and the local symbol table (string constants, global stubs,
// nested function definitions).
package compiler

import (
	"fmt"

	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/token"
)

// Error reports a semantic error detected during compilation, with the
// source position at which it was found.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// abort unwinds compilation on the first semantic error, mirroring the
// parser's "stop at first error" policy.
type abort struct{ err *Error }

// pcomp holds state shared by every function compiled out of one chunk.
// Nested function literals splice their bodies inline into the single flat
// instruction stream at the point of their enclosing FUNCTION instruction,
// so the stream and the local symbol table are both program-wide, not
// per-function.
type pcomp struct {
	code   []bytecode.Word
	symtab []*bytecode.SymbolEntry

	strconsts map[string]uint16
	symstubs  map[string]uint16
	constDecl map[string]bool // global names declared with `const`, for duplicate detection
}

func newPcomp() *pcomp {
	return &pcomp{
		strconsts: make(map[string]uint16),
		symstubs:  make(map[string]uint16),
		constDecl: make(map[string]bool),
	}
}

func (p *pcomp) emit(w bytecode.Word) int {
	p.code = append(p.code, w)
	return len(p.code) - 1
}

func (p *pcomp) pc() int { return len(p.code) }

// internString returns the symbol table index of a STRCONST entry for s,
// creating and interning it on first use.
func (p *pcomp) internString(s string) uint16 {
	if idx, ok := p.strconsts[s]; ok {
		return idx
	}
	idx := uint16(len(p.symtab))
	p.symtab = append(p.symtab, bytecode.NewStrconst(s))
	p.strconsts[s] = idx
	return idx
}

// internSymstub returns the symbol table index of a SYMSTUB entry naming a
// global, creating and interning it on first use.
func (p *pcomp) internSymstub(name string) uint16 {
	if idx, ok := p.symstubs[name]; ok {
		return idx
	}
	idx := uint16(len(p.symtab))
	p.symtab = append(p.symtab, bytecode.NewSymstub(name))
	p.symstubs[name] = idx
	return idx
}

// addFuncdef appends a FUNCDEF entry for a nested function and returns its
// symbol table index. The offset is filled in once the function's body has
// been compiled and its start address is known.
func (p *pcomp) addFuncdef(name string) uint16 {
	idx := uint16(len(p.symtab))
	p.symtab = append(p.symtab, bytecode.NewFuncdef(name, 0))
	return idx
}

// Compile lowers chunk into a top-level Program. chunk's statements become
// the program's executable section; every string constant, global
// reference, and named function literal it contains becomes an entry in
// the program's local symbol table.
func Compile(chunk *ast.Chunk) (prog *bytecode.Program, err error) {
	p := newPcomp()
	fc := newFcomp(p, nil, "", true)

	defer func() {
		if r := recover(); r != nil {
			ab, ok := r.(abort)
			if !ok {
				panic(r)
			}
			prog, err = nil, ab.err
		}
	}()

	fc.compileFuncBody(chunk.Block)

	return &bytecode.Program{
		Header: bytecode.Header{
			BodyLen: uint32(len(p.code)),
			Argc:    0,
			Nregs:   uint32(fc.maxReg),
			Sym:     uint32(len(p.symtab)),
		},
		Code:   p.code,
		Symtab: p.symtab,
	}, nil
}
