package compiler

import (
	"fmt"

	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/token"
)

// upvalDesc is one entry of a function's captured-upvalue list, in the same
// shape as the CLOSURE instruction's descriptor words.
type upvalDesc struct {
	kind  bytecode.UpvalKind
	index uint8
}

// loopCtx accumulates the JMP instructions emitted by break and continue
// inside one enclosing loop, patched once the loop's continue and end
// addresses are known.
type loopCtx struct {
	breaks    []int
	continues []int
}

// scope is one block's worth of locals: names mapped to the registers that
// hold them, and the register high-water mark to restore when the block
// exits.
type scope struct {
	vars map[string]uint8
	base int
}

// fcomp is the per-function compiler state: register allocation, block
// scopes, loop patch lists and upvalue capture, all relative to the single
// shared instruction stream and symbol table held by p.
type fcomp struct {
	p      *pcomp
	parent *fcomp

	name     string
	topLevel bool

	nextReg int
	maxReg  int

	scopes []*scope
	loops  []*loopCtx

	upvals   []upvalDesc
	upvalIdx map[string]int
}

func newFcomp(p *pcomp, parent *fcomp, name string, topLevel bool) *fcomp {
	fc := &fcomp{p: p, parent: parent, name: name, topLevel: topLevel}
	fc.pushScope()
	return fc
}

func (fc *fcomp) errorf(pos token.Pos, format string, args ...any) {
	panic(abort{&Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}})
}

// --- registers ---

func (fc *fcomp) mark() int { return fc.nextReg }

func (fc *fcomp) alloc() uint8 {
	if fc.nextReg >= 256 {
		fc.errorf(token.NoPos, "function %q needs more than 256 live registers", fc.displayName())
	}
	r := fc.nextReg
	fc.nextReg++
	if fc.nextReg > fc.maxReg {
		fc.maxReg = fc.nextReg
	}
	return uint8(r)
}

func (fc *fcomp) freeTo(mark int) { fc.nextReg = mark }

func (fc *fcomp) displayName() string {
	if fc.name != "" {
		return fc.name
	}
	if fc.topLevel {
		return "<main>"
	}
	return "<lambda>"
}

// --- scopes and locals ---

func (fc *fcomp) pushScope() { fc.scopes = append(fc.scopes, &scope{vars: map[string]uint8{}, base: fc.nextReg}) }

func (fc *fcomp) popScope() {
	s := fc.scopes[len(fc.scopes)-1]
	fc.scopes = fc.scopes[:len(fc.scopes)-1]
	fc.freeTo(s.base)
}

func (fc *fcomp) declareLocal(name string) uint8 {
	r := fc.alloc()
	fc.scopes[len(fc.scopes)-1].vars[name] = r
	return r
}

func (fc *fcomp) resolveLocal(name string) (uint8, bool) {
	for i := len(fc.scopes) - 1; i >= 0; i-- {
		if r, ok := fc.scopes[i].vars[name]; ok {
			return r, true
		}
	}
	return 0, false
}

// resolveUpval looks up name as a variable captured from an enclosing
// function, adding capture descriptors along the chain as needed. It
// returns false if name is not a local of any enclosing function (in which
// case it must be a global: globals need no capture, they are visible by
// name from any nesting depth).
func (fc *fcomp) resolveUpval(name string) (int, bool) {
	if fc.parent == nil {
		return 0, false
	}
	if idx, ok := fc.upvalIdx[name]; ok {
		return idx, true
	}
	if r, ok := fc.parent.resolveLocal(name); ok {
		return fc.addUpval(name, upvalDesc{kind: bytecode.UpvalLocal, index: r}), true
	}
	if idx, ok := fc.parent.resolveUpval(name); ok {
		return fc.addUpval(name, upvalDesc{kind: bytecode.UpvalOuter, index: uint8(idx)}), true
	}
	return 0, false
}

func (fc *fcomp) addUpval(name string, d upvalDesc) int {
	if fc.upvalIdx == nil {
		fc.upvalIdx = make(map[string]int)
	}
	idx := len(fc.upvals)
	fc.upvals = append(fc.upvals, d)
	fc.upvalIdx[name] = idx
	return idx
}

// --- loops ---

func (fc *fcomp) pushLoop() *loopCtx {
	lc := &loopCtx{}
	fc.loops = append(fc.loops, lc)
	return lc
}

func (fc *fcomp) popLoop() { fc.loops = fc.loops[:len(fc.loops)-1] }

func (fc *fcomp) curLoop() *loopCtx {
	if len(fc.loops) == 0 {
		return nil
	}
	return fc.loops[len(fc.loops)-1]
}

func (fc *fcomp) closeLoop(lc *loopCtx, continueTarget, breakTarget int) {
	for _, j := range lc.continues {
		fc.patchJumpTo(j, continueTarget)
	}
	for _, j := range lc.breaks {
		fc.patchJumpTo(j, breakTarget)
	}
}

// --- emission ---

func (fc *fcomp) emit(w bytecode.Word) int { return fc.p.emit(w) }

func (fc *fcomp) pc() int { return fc.p.pc() }

// emitJump emits a conditional or unconditional jump instruction with a
// placeholder offset, returning the instruction's word index for later
// patching.
func (fc *fcomp) emitJump(op bytecode.Opcode, cond uint8) int {
	pc := fc.pc()
	fc.emit(bytecode.MakeInst(op, cond, 0, 0))
	fc.emit(0)
	return pc
}

// emitJumpTo emits a jump whose target is already known, patching it
// immediately (used for loop back-edges).
func (fc *fcomp) emitJumpTo(op bytecode.Opcode, cond uint8, target int) {
	pc := fc.emitJump(op, cond)
	fc.patchJumpTo(pc, target)
}

// patchJumpTo rewrites the jump instruction at pc to target target, as a
// signed word offset counted from the instruction following the jump's two
// words.
func (fc *fcomp) patchJumpTo(pc, target int) {
	offset := int32(target - (pc + 2))
	fc.p.code[pc+1] = bytecode.Word(uint32(offset))
}

func (fc *fcomp) patchJumpHere(pc int) { fc.patchJumpTo(pc, fc.pc()) }

// emitReturn emits RET r.
func (fc *fcomp) emitReturn(r uint8) { fc.emit(bytecode.MakeInst(bytecode.RET, r, 0, 0)) }

// emitReturnNil compiles an implicit `return nil;` falling off the end of a
// function body.
func (fc *fcomp) emitReturnNil() {
	r := fc.alloc()
	instr, payload := bytecode.MakeLdconstNil(r)
	fc.emit(instr)
	fc.emit(payload[0])
	fc.emit(payload[1])
	fc.emitReturn(r)
}

// emitGlbval emits GLBVAL src, name.
func (fc *fcomp) emitGlbval(src uint8, name string) {
	nameWords := bytecode.EncodeName(name)
	fc.emit(bytecode.MakeInst(bytecode.GLBVAL, src, uint8(len(name)+1), 0))
	for _, w := range nameWords {
		fc.emit(w)
	}
}

// internStringReg loads the interned string constant s into a fresh
// register via LDSYM against a STRCONST symbol table entry.
func (fc *fcomp) internStringReg(s string) uint8 {
	idx := fc.p.internString(s)
	dst := fc.alloc()
	fc.emit(bytecode.MakeLdsym(dst, idx))
	return dst
}

// compileFuncBody compiles block as a function's own top-level statement
// sequence (no extra scope push beyond the one newFcomp already set up for
// parameters), appending an implicit `return nil;` if control can fall off
// the end.
func (fc *fcomp) compileFuncBody(block *ast.Block) {
	for _, s := range block.Stmts {
		fc.compileStmt(s)
	}
	if len(block.Stmts) == 0 || !ast.BlockEnding(block.Stmts[len(block.Stmts)-1]) {
		fc.emitReturnNil()
	}
}

// compileBlock compiles a nested, brace-delimited block in its own scope.
func (fc *fcomp) compileBlock(block *ast.Block) {
	fc.pushScope()
	for _, s := range block.Stmts {
		fc.compileStmt(s)
	}
	fc.popScope()
}
