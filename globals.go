package corvid

import "github.com/mbassey/corvid/lang/value"

// globalTable is the name-to-value table a Context resolves LDSYM/GLBVAL
// against. Plain map, not a value.Hashmap: keys here are always Go strings
// known at lookup time, never arbitrary runtime Values, so there is no
// hashing-by-content concern to delegate to the language's own hashmap
// object.
type globalTable struct {
	vars map[string]value.Value
}

func newGlobalTable() *globalTable {
	return &globalTable{vars: make(map[string]value.Value)}
}

// Lookup implements machine.Globals. The returned value is borrowed: the
// caller (the VM's LDSYM resolution path) retains it before caching or
// installing it into a register.
func (g *globalTable) Lookup(name string) (value.Value, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// Store implements machine.Globals: v is retained into the table (the
// caller keeps its own reference) and any previous occupant is released.
func (g *globalTable) Store(name string, v value.Value) {
	old, had := g.vars[name]
	g.vars[name] = value.Retain(v)
	if had {
		value.Release(old)
	}
}

// release drops every value the table holds, for use when a Context is
// discarded.
func (g *globalTable) release() {
	for _, v := range g.vars {
		value.Release(v)
	}
	g.vars = nil
}
