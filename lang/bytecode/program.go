package bytecode

import "github.com/mbassey/corvid/lang/value"

// Header is the fixed-size 4-word preamble of a compiled function. The
// fourth field's meaning depends on context: for the top-level program
// header it is the total number of local symbol table entries; for a
// nested function's header (the 4 words following its FUNCTION
// instruction) it is that function's own symbol-table index, used for
// name lookup in stack traces.
type Header struct {
	BodyLen uint32
	Argc    uint32
	Nregs   uint32
	Sym     uint32
}

// Program is a compiled top-level function: its header, the full
// executable word stream (including any nested function bodies emitted
// inline after their FUNCTION instruction), and the local symbol table.
type Program struct {
	Header Header
	Code   []Word
	Symtab []*SymbolEntry
}

// Words satisfies value.Program, so a *FunctionObject can reference a
// Program without lang/value importing lang/bytecode.
func (p *Program) Words() []Word { return p.Code }

var _ value.Program = (*Program)(nil)
