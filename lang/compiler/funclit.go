package compiler

import (
	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/bytecode"
)

// compileFuncLit lowers a function literal into a freshly allocated
// register.
func (fc *fcomp) compileFuncLit(n *ast.FuncLit) uint8 {
	dst := fc.alloc()
	fc.compileFuncLitInto(n, dst)
	return dst
}

// compileFuncLitInto lowers a function literal directly into dst, an
// already-allocated register (typically a named local). This matters for
// self-recursive closures: FUNCTION writes a bare function object into dst
// and CLOSURE then attaches dst's own upvalue vector to that same object in
// place, so a LOCAL capture of dst (as happens when the function refers to
// its own enclosing variable) ends up pointing at the fully-formed closure
// rather than a stale pre-assignment value. Compiling through a temporary
// register and copying into dst afterward would capture too early and
// break that self-reference.
func (fc *fcomp) compileFuncLitInto(n *ast.FuncLit, dst uint8) {
	if len(n.Params) > 255 {
		fc.errorf(n.Pos, "function %q takes more than 255 parameters", n.Name)
	}

	funcdefIdx := fc.p.addFuncdef(n.Name)

	instrPC := fc.pc()
	fc.emit(bytecode.MakeInst(bytecode.FUNCTION, dst, 0, 0))
	hdrPC := fc.pc()
	fc.emit(0) // body length, patched below
	fc.emit(uint32(len(n.Params)))
	fc.emit(0) // register count, patched below
	fc.emit(uint32(funcdefIdx))

	fc.p.symtab[funcdefIdx].Offset = uint32(instrPC)

	child := newFcomp(fc.p, fc, n.Name, false)
	for _, param := range n.Params {
		child.declareLocal(param)
	}
	bodyStart := fc.pc()
	child.compileFuncBody(n.Body)
	bodyLen := fc.pc() - bodyStart

	fc.p.code[hdrPC] = bytecode.Word(bodyLen)
	fc.p.code[hdrPC+2] = bytecode.Word(child.maxReg)

	if len(child.upvals) > 0 {
		if len(child.upvals) > 255 {
			fc.errorf(n.Pos, "function %q captures more than 255 variables", n.Name)
		}
		fc.emit(bytecode.MakeInst(bytecode.CLOSURE, dst, uint8(len(child.upvals)), 0))
		for _, uv := range child.upvals {
			fc.emit(bytecode.MakeUpval(uv.kind, uv.index))
		}
	}
}
