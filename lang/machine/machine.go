// Package machine implements the register virtual machine: a call-frame
// stack executing a *bytecode.Program against reference-counted Values,
// resolving globals through a host-supplied symbol table and materializing
// closures over captured upvalues.
package machine

import (
	"fmt"
	"math"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/value"
)

// Globals is the host-supplied global symbol table a Machine resolves
// LDSYM/GLBVAL against. The root corvid package implements this; the
// interface lives here instead so lang/machine does not import the
// package that embeds it (which in turn owns a *Machine).
type Globals interface {
	// Lookup returns the value bound to name, or ok=false if unbound.
	Lookup(name string) (value.Value, bool)

	// Store binds name to v, retaining v and releasing any previous
	// occupant, the same ownership contract as HashmapObject.Set.
	Store(name string, v value.Value)
}

// Machine executes compiled programs. It holds no state beyond the
// currently active call-frame stack: programs, globals, and native
// functions are owned by the caller (the root corvid package's Context).
type Machine struct {
	Globals Globals

	frames []*frame
}

// New returns a Machine resolving globals through g.
func New(g Globals) *Machine {
	return &Machine{Globals: g}
}

// frame is one call's worth of execution state: the function being run,
// its owning program (for code and the local symbol table), a private
// register file, the raw call-time argument list, and the current
// program counter.
//
// args is kept independent of regs: NTHARG/LDARGC must see the original
// call-time arguments even past a function's declared parameter count,
// and reassigning a named parameter local must not perturb #N access to
// the value the caller actually passed.
type frame struct {
	fn   *value.FunctionObject
	prog *bytecode.Program
	regs []value.Value
	args []value.Value
	pc   int
}

// storeReg installs an already-owned value into register i, releasing
// whatever it previously held. Use this for freshly constructed or
// freshly transferred values (a new string, a new container, an
// arithmetic result, a value returned from Call) that are not also held
// by anything else.
func (fr *frame) storeReg(i uint8, v value.Value) {
	old := fr.regs[i]
	fr.regs[i] = v
	value.Release(old)
}

// retainAndStore installs a copy of v, still referenced elsewhere (a
// shared symbol table entry, a container element, another register,
// an upvalue slot), into register i.
func (fr *frame) retainAndStore(i uint8, v value.Value) {
	fr.storeReg(i, value.Retain(v))
}

// Call invokes fn with args, which the callee borrows: Call retains
// whatever it keeps and never mutates or releases the caller's copies.
// Script functions push a frame and run the interpreter loop; native
// functions bypass frame allocation entirely, per the call protocol.
func (m *Machine) Call(fn value.Value, args []value.Value) (value.Value, error) {
	fo, ok := value.AsFunction(fn)
	if !ok {
		return value.Nil, m.runtimeErrorf("cannot call non-function value of type %s", fn.Type())
	}

	if fo.IsNative() {
		result, err := fo.Native(args)
		if err != nil {
			return value.Nil, fmt.Errorf("native function %q: %w", fo.DisplayName(), err)
		}
		return result, nil
	}

	prog, ok := fo.Program.(*bytecode.Program)
	if !ok {
		return value.Nil, m.runtimeErrorf("script function %q has no executable program", fo.DisplayName())
	}

	fr := &frame{
		fn:   fo,
		prog: prog,
		regs: make([]value.Value, fo.Nregs),
		args: make([]value.Value, len(args)),
		pc:   fo.Offset,
	}
	for i, a := range args {
		fr.args[i] = value.Retain(a)
	}
	for i := 0; i < fo.Argc && i < len(args); i++ {
		fr.regs[i] = value.Retain(args[i])
	}

	m.frames = append(m.frames, fr)
	result, err := m.run(fr)
	m.frames = m.frames[:len(m.frames)-1]

	for _, v := range fr.regs {
		value.Release(v)
	}
	for _, v := range fr.args {
		value.Release(v)
	}

	if err != nil {
		return value.Nil, err
	}
	return result, nil
}

// run executes fr's body until RET, returning the retained result value
// that the caller takes ownership of.
func (m *Machine) run(fr *frame) (value.Value, error) {
	code := fr.prog.Code
	for {
		word := code[fr.pc]
		op, a, b, c := bytecode.DecodeInst(word)
		next := fr.pc + 1

		switch op {
		case bytecode.NOP:
			// no-op

		case bytecode.RET:
			return value.Retain(fr.regs[a]), nil

		case bytecode.JMP:
			off := int32(code[fr.pc+1])
			next = fr.pc + 2 + int(off)

		case bytecode.JZE:
			off := int32(code[fr.pc+1])
			next = fr.pc + 2
			if !fr.regs[a].Truth() {
				next = fr.pc + 2 + int(off)
			}

		case bytecode.JNZ:
			off := int32(code[fr.pc+1])
			next = fr.pc + 2
			if fr.regs[a].Truth() {
				next = fr.pc + 2 + int(off)
			}

		case bytecode.MOV:
			fr.retainAndStore(a, fr.regs[b])

		case bytecode.LDCONST:
			lo, hi := code[fr.pc+1], code[fr.pc+2]
			bits := uint64(lo) | uint64(hi)<<32
			var v value.Value
			switch b {
			case 0:
				v = value.Int(int64(bits))
			case 1:
				v = value.Float(math.Float64frombits(bits))
			case 2:
				v = value.Nil
			case 3:
				v = value.Bool(bits != 0)
			default:
				return value.Nil, m.runtimeErrorf("illegal LDCONST subtype %d", b)
			}
			fr.storeReg(a, v)
			next = fr.pc + 3

		case bytecode.LDSYM:
			_, symIdx := bytecode.DecodeLdsym(word)
			v, err := m.resolveSym(fr.prog, symIdx)
			if err != nil {
				return value.Nil, err
			}
			fr.retainAndStore(a, v)

		case bytecode.GLBVAL:
			nameLen := int(b)
			words := wordsForBytes(nameLen)
			name := decodeName(code[fr.pc+1:fr.pc+1+words], nameLen)
			m.Globals.Store(name, fr.regs[a])
			m.syncSymstub(fr.prog, name, fr.regs[a])
			next = fr.pc + 1 + words

		case bytecode.LDARGC:
			fr.storeReg(a, value.Int(int64(len(fr.args))))

		case bytecode.NTHARG:
			if int(b) < len(fr.args) {
				fr.retainAndStore(a, fr.args[b])
			} else {
				fr.storeReg(a, value.Nil)
			}

		case bytecode.ADD, bytecode.SUB, bytecode.MUL, bytecode.DIV, bytecode.MOD, bytecode.AND, bytecode.OR, bytecode.XOR, bytecode.SHL, bytecode.SHR:
			v, err := m.binaryArith(op, fr.regs[b], fr.regs[c])
			if err != nil {
				return value.Nil, err
			}
			fr.storeReg(a, v)

		case bytecode.NEG:
			v, err := m.negate(fr.regs[b])
			if err != nil {
				return value.Nil, err
			}
			fr.storeReg(a, v)

		case bytecode.INC, bytecode.DEC:
			v, err := m.incdec(op, fr.regs[a])
			if err != nil {
				return value.Nil, err
			}
			fr.storeReg(a, v)

		case bytecode.BITNOT:
			n, ok := asInt(fr.regs[b])
			if !ok {
				return value.Nil, m.runtimeErrorf("bitnot: operand must be an integer, got %s", fr.regs[b].Type())
			}
			fr.storeReg(a, value.Int(^n))

		case bytecode.LOGNOT:
			fr.storeReg(a, value.Bool(!fr.regs[b].Truth()))

		case bytecode.EQ, bytecode.NE:
			eq, err := value.Equal(fr.regs[b], fr.regs[c])
			if err != nil {
				return value.Nil, m.wrapErr(err)
			}
			if op == bytecode.NE {
				eq = !eq
			}
			fr.storeReg(a, value.Bool(eq))

		case bytecode.LT, bytecode.LE, bytecode.GT, bytecode.GE:
			n, err := value.Compare(fr.regs[b], fr.regs[c])
			if err != nil {
				return value.Nil, m.wrapErr(err)
			}
			var result bool
			switch op {
			case bytecode.LT:
				result = n < 0
			case bytecode.LE:
				result = n <= 0
			case bytecode.GT:
				result = n > 0
			case bytecode.GE:
				result = n >= 0
			}
			fr.storeReg(a, value.Bool(result))

		case bytecode.CONCAT:
			sb, ok1 := value.AsString(fr.regs[b])
			sc, ok2 := value.AsString(fr.regs[c])
			if !ok1 || !ok2 {
				return value.Nil, m.runtimeErrorf("concat: operands must be strings, got %s and %s",
					fr.regs[b].Type(), fr.regs[c].Type())
			}
			fr.storeReg(a, value.NewString(sb.Value()+sc.Value()))

		case bytecode.SIZEOF:
			n, err := sizeOf(fr.regs[b])
			if err != nil {
				return value.Nil, m.wrapErr(err)
			}
			fr.storeReg(a, value.Int(int64(n)))

		case bytecode.TYPEOF:
			fr.storeReg(a, value.NewString(fr.regs[b].Type()))

		case bytecode.NEWARR:
			switch bytecode.NewarrKind(b) {
			case bytecode.NewarrArray:
				fr.storeReg(a, value.NewArray(nil))
			case bytecode.NewarrHashmap:
				fr.storeReg(a, value.NewHashmap(0))
			default:
				return value.Nil, m.runtimeErrorf("illegal NEWARR kind %d", b)
			}

		case bytecode.ARRGET:
			v, err := m.arrGet(fr.regs[b], fr.regs[c])
			if err != nil {
				return value.Nil, err
			}
			fr.retainAndStore(a, v)

		case bytecode.ARRSET:
			if err := m.arrSet(fr.regs[a], fr.regs[b], fr.regs[c]); err != nil {
				return value.Nil, err
			}

		case bytecode.FUNCTION:
			hdr := code[fr.pc+1 : fr.pc+5]
			bodyLen, argc, nregs, symIdx := int(hdr[0]), int(hdr[1]), int(hdr[2]), int(hdr[3])
			bodyStart := fr.pc + 5
			name := ""
			if symIdx < len(fr.prog.Symtab) {
				name = fr.prog.Symtab[symIdx].Name
			}
			fn := value.NewScriptFunction(name, fr.prog, bodyStart, bodyLen, argc, nregs, symIdx, false, nil)
			fr.storeReg(a, fn)
			next = bodyStart + bodyLen

		case bytecode.CLOSURE:
			fo, ok := value.AsFunction(fr.regs[a])
			if !ok {
				return value.Nil, m.runtimeErrorf("CLOSURE: register %d does not hold a function", a)
			}
			n := int(b)
			upvals := make([]*value.Upvalue, n)
			for i := 0; i < n; i++ {
				kind, idx := bytecode.DecodeUpval(code[fr.pc+1+i])
				var captured value.Value
				switch kind {
				case bytecode.UpvalLocal:
					captured = fr.regs[idx]
				case bytecode.UpvalOuter:
					captured = fr.fn.Upvalues[idx].V
				default:
					return value.Nil, m.runtimeErrorf("illegal upvalue kind %d", kind)
				}
				upvals[i] = &value.Upvalue{V: value.Retain(captured)}
			}
			fo.Upvalues = upvals
			next = fr.pc + 1 + n

		case bytecode.LDUPVAL:
			fr.retainAndStore(a, fr.fn.Upvalues[b].V)

		case bytecode.CALL:
			argc := int(c)
			words := wordsForBytes(argc)
			argRegs := bytecode.UnpackRegs(code[fr.pc+1:fr.pc+1+words], argc)
			args := make([]value.Value, argc)
			for i, r := range argRegs {
				args[i] = fr.regs[r]
			}
			result, err := m.Call(fr.regs[b], args)
			if err != nil {
				return value.Nil, err
			}
			fr.storeReg(a, result)
			next = fr.pc + 1 + words

		default:
			return value.Nil, m.runtimeErrorf("illegal opcode %s at pc=%d", op, fr.pc)
		}

		fr.pc = next
	}
}

// wordsForBytes mirrors bytecode's unexported helper of the same name:
// the number of words needed to hold n bytes, rounded up.
func wordsForBytes(n int) int { return (n + 3) / 4 }

func decodeName(words []bytecode.Word, n int) string {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	if n > len(buf) {
		n = len(buf)
	}
	name := buf[:n]
	for i, ch := range name {
		if ch == 0 {
			return string(name[:i])
		}
	}
	return string(name)
}

// resolveSym returns the value named by a program's symtab[symIdx],
// resolving an unresolved SYMSTUB against the machine's globals and
// rewriting the entry in place so later loads are O(1).
func (m *Machine) resolveSym(prog *bytecode.Program, symIdx uint16) (value.Value, error) {
	entry := prog.Symtab[symIdx]
	if entry.Resolved() {
		return entry.Value(), nil
	}
	v, ok := m.Globals.Lookup(entry.Name)
	if !ok {
		return value.Nil, m.runtimeErrorf("global symbol not found: %s", entry.Name)
	}
	entry.Resolve(value.Retain(v))
	return entry.Value(), nil
}

// syncSymstub refreshes prog's own cached SYMSTUB entry for name, if one has
// already been resolved, so that a GLBVAL write is visible to a later LDSYM
// of the same global within the same program instead of reading the value
// cached at the stub's first resolution.
func (m *Machine) syncSymstub(prog *bytecode.Program, name string, v value.Value) {
	for _, entry := range prog.Symtab {
		if entry.Kind == bytecode.SYMSTUB && entry.Name == name && entry.Resolved() {
			old := entry.Value()
			entry.Resolve(value.Retain(v))
			value.Release(old)
			return
		}
	}
}
