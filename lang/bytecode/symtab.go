package bytecode

import "github.com/mbassey/corvid/lang/value"

// SymbolEntry is one entry of a program's local symbol table: a string
// constant, a global symbol stub awaiting resolution, or a named nested
// function definition.
//
// SYMSTUB entries carry mutable state: the VM resolves a stub to a value
// on its first LDSYM and rewrites the entry in place, per the global
// resolution protocol. Subsequent loads read the cached value directly.
type SymbolEntry struct {
	Kind SymKind
	Name string

	// FUNCDEF only: word offset of the nested function's FUNCTION
	// instruction within the owning Program's Code.
	Offset uint32

	// STRCONST: the materialized string value, set once when the program
	// is loaded. SYMSTUB: the resolved global value, set by the VM on
	// first use; resolved reports whether that has happened yet.
	value    value.Value
	resolved bool
}

// NewStrconst returns a materialized STRCONST entry.
func NewStrconst(name string) *SymbolEntry {
	return &SymbolEntry{Kind: STRCONST, Name: name, value: value.NewString(name), resolved: true}
}

// NewSymstub returns an unresolved SYMSTUB entry for a global name.
func NewSymstub(name string) *SymbolEntry {
	return &SymbolEntry{Kind: SYMSTUB, Name: name}
}

// NewFuncdef returns a FUNCDEF entry naming a nested function at offset.
func NewFuncdef(name string, offset uint32) *SymbolEntry {
	return &SymbolEntry{Kind: FUNCDEF, Name: name, Offset: offset}
}

// Resolved reports whether a SYMSTUB entry has been resolved to a global
// value. Always true for STRCONST entries; false for FUNCDEF entries,
// which carry no value.
func (e *SymbolEntry) Resolved() bool { return e.resolved }

// Value returns the entry's resolved value. The caller must check
// Resolved() first for a SYMSTUB entry.
func (e *SymbolEntry) Value() value.Value { return e.value }

// Resolve stores v as a SYMSTUB entry's resolved global value. Idempotent:
// calling it again is harmless, matching the spec's "subsequent loads hit
// the resolved slot" behavior.
func (e *SymbolEntry) Resolve(v value.Value) {
	e.value = v
	e.resolved = true
}
