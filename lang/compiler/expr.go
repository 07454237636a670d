package compiler

import (
	"math"

	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/token"
)

// compileExpr compiles e and returns the register holding its result. The
// returned register is never freed by compileExpr itself; callers collapse
// temporaries back to a saved mark once they've consumed the value,
// following the "allocate for the sub-expression, free on the way up"
// discipline.
func (fc *fcomp) compileExpr(e ast.Expr) uint8 {
	switch n := e.(type) {
	case *ast.IntLit:
		dst := fc.alloc()
		instr, payload := bytecode.MakeLdconstInt(dst, n.Value)
		fc.emit(instr)
		fc.emit(payload[0])
		fc.emit(payload[1])
		return dst

	case *ast.FloatLit:
		dst := fc.alloc()
		instr, payload := bytecode.MakeLdconstFloat(dst, math.Float64bits(n.Value))
		fc.emit(instr)
		fc.emit(payload[0])
		fc.emit(payload[1])
		return dst

	case *ast.BoolLit:
		dst := fc.alloc()
		instr, payload := bytecode.MakeLdconstBool(dst, n.Value)
		fc.emit(instr)
		fc.emit(payload[0])
		fc.emit(payload[1])
		return dst

	case *ast.NilLit:
		dst := fc.alloc()
		instr, payload := bytecode.MakeLdconstNil(dst)
		fc.emit(instr)
		fc.emit(payload[0])
		fc.emit(payload[1])
		return dst

	case *ast.StringLit:
		return fc.internStringReg(n.Value)

	case *ast.ArgRefExpr:
		dst := fc.alloc()
		if n.N < 0 || n.N > 255 {
			fc.errorf(n.Pos, "argument reference #%d out of range", n.N)
		}
		fc.emit(bytecode.MakeInst(bytecode.NTHARG, dst, uint8(n.N), 0))
		return dst

	case *ast.Ident:
		return fc.compileIdent(n)

	case *ast.ParenExpr:
		return fc.compileExpr(n.X)

	case *ast.BinaryExpr:
		return fc.compileBinary(n)

	case *ast.UnaryExpr:
		return fc.compileUnary(n)

	case *ast.IncDecExpr:
		return fc.compileIncDec(n)

	case *ast.TernaryExpr:
		return fc.compileTernary(n)

	case *ast.AssignExpr:
		return fc.compileAssign(n)

	case *ast.SizeofExpr:
		mark := fc.mark()
		xr := fc.compileExpr(n.X)
		fc.freeTo(mark)
		dst := fc.alloc()
		fc.emit(bytecode.MakeInst(bytecode.SIZEOF, dst, xr, 0))
		return dst

	case *ast.TypeofExpr:
		mark := fc.mark()
		xr := fc.compileExpr(n.X)
		fc.freeTo(mark)
		dst := fc.alloc()
		fc.emit(bytecode.MakeInst(bytecode.TYPEOF, dst, xr, 0))
		return dst

	case *ast.CallExpr:
		return fc.compileCall(n)

	case *ast.IndexExpr:
		mark := fc.mark()
		xr := fc.compileExpr(n.X)
		kr := fc.compileExpr(n.Index)
		fc.freeTo(mark)
		dst := fc.alloc()
		fc.emit(bytecode.MakeInst(bytecode.ARRGET, dst, xr, kr))
		return dst

	case *ast.SelectorExpr:
		mark := fc.mark()
		xr := fc.compileExpr(n.X)
		kr := fc.internStringReg(n.Sel)
		fc.freeTo(mark)
		dst := fc.alloc()
		fc.emit(bytecode.MakeInst(bytecode.ARRGET, dst, xr, kr))
		return dst

	case *ast.FuncLit:
		return fc.compileFuncLit(n)

	case *ast.ArrayLit:
		return fc.compileArrayLit(n)

	case *ast.HashmapLit:
		return fc.compileHashmapLit(n)

	default:
		start, _ := e.Span()
		fc.errorf(start, "unsupported expression %T", e)
		return fc.alloc()
	}
}

// compileExprInto compiles e and ensures the result ends up in dst,
// emitting a MOV only if compileExpr landed it somewhere else. Any
// scratch registers used along the way are freed.
func (fc *fcomp) compileExprInto(e ast.Expr, dst uint8) {
	if fl, ok := e.(*ast.FuncLit); ok {
		// Compile directly into dst rather than through a temporary: a
		// self-recursive closure captures dst as a LOCAL upvalue, and that
		// capture must see the final register, not an intermediate one.
		fc.compileFuncLitInto(fl, dst)
		return
	}
	mark := fc.mark()
	r := fc.compileExpr(e)
	if r != dst {
		fc.emit(bytecode.MakeInst(bytecode.MOV, dst, r, 0))
	}
	fc.freeTo(mark)
}

func (fc *fcomp) compileIdent(n *ast.Ident) uint8 {
	if r, ok := fc.resolveLocal(n.Name); ok {
		return r
	}
	if idx, ok := fc.resolveUpval(n.Name); ok {
		dst := fc.alloc()
		fc.emit(bytecode.MakeInst(bytecode.LDUPVAL, dst, uint8(idx), 0))
		return dst
	}
	symIdx := fc.p.internSymstub(n.Name)
	dst := fc.alloc()
	fc.emit(bytecode.MakeLdsym(dst, symIdx))
	return dst
}

var binOpcode = map[token.Token]bytecode.Opcode{
	token.PLUS:    bytecode.ADD,
	token.MINUS:   bytecode.SUB,
	token.STAR:    bytecode.MUL,
	token.SLASH:   bytecode.DIV,
	token.PERCENT: bytecode.MOD,
	token.AMP:     bytecode.AND,
	token.PIPE:    bytecode.OR,
	token.CARET:   bytecode.XOR,
	token.SHL:     bytecode.SHL,
	token.SHR:     bytecode.SHR,
	token.EQL:     bytecode.EQ,
	token.NEQ:     bytecode.NE,
	token.LT:      bytecode.LT,
	token.LE:      bytecode.LE,
	token.GT:      bytecode.GT,
	token.GE:      bytecode.GE,
	token.DOTDOT:  bytecode.CONCAT,
}

func (fc *fcomp) compileBinary(n *ast.BinaryExpr) uint8 {
	switch n.Op {
	case token.AMPAMP:
		return fc.compileShortCircuit(n, bytecode.JZE)
	case token.PIPEPIPE:
		return fc.compileShortCircuit(n, bytecode.JNZ)
	}

	op, ok := binOpcode[n.Op]
	if !ok {
		fc.errorf(n.OpPos, "unsupported binary operator %#v", n.Op)
	}

	mark := fc.mark()
	lr := fc.compileExpr(n.X)
	rr := fc.compileExpr(n.Y)
	fc.freeTo(mark)
	dst := fc.alloc()
	fc.emit(bytecode.MakeInst(op, dst, lr, rr))
	return dst
}

// compileShortCircuit lowers && and ||: evaluate X into a register; if skipOn
// (JZE for &&, JNZ for ||) fires, the result is X's value and Y is never
// evaluated; otherwise Y is evaluated into the same register.
func (fc *fcomp) compileShortCircuit(n *ast.BinaryExpr, skipOn bytecode.Opcode) uint8 {
	mark := fc.mark()
	xr := fc.compileExpr(n.X)
	fc.freeTo(mark)
	dst := fc.alloc()
	if dst != xr {
		fc.emit(bytecode.MakeInst(bytecode.MOV, dst, xr, 0))
	}
	skip := fc.emitJump(skipOn, dst)
	fc.compileExprInto(n.Y, dst)
	fc.patchJumpHere(skip)
	return dst
}

func (fc *fcomp) compileUnary(n *ast.UnaryExpr) uint8 {
	var op bytecode.Opcode
	switch n.Op {
	case token.MINUS:
		op = bytecode.NEG
	case token.BANG:
		op = bytecode.LOGNOT
	case token.TILDE:
		op = bytecode.BITNOT
	case token.PLUS:
		return fc.compileExpr(n.X) // unary plus is a no-op
	default:
		fc.errorf(n.OpPos, "unsupported unary operator %#v", n.Op)
	}
	mark := fc.mark()
	xr := fc.compileExpr(n.X)
	fc.freeTo(mark)
	dst := fc.alloc()
	fc.emit(bytecode.MakeInst(op, dst, xr, 0))
	return dst
}

func (fc *fcomp) compileIncDec(n *ast.IncDecExpr) uint8 {
	op := bytecode.INC
	if n.Op == token.DEC {
		op = bytecode.DEC
	}

	if id, ok := n.X.(*ast.Ident); ok {
		if r, ok2 := fc.resolveLocal(id.Name); ok2 {
			if n.Prefix {
				fc.emit(bytecode.MakeInst(op, r, 0, 0))
				return r
			}
			old := fc.alloc()
			fc.emit(bytecode.MakeInst(bytecode.MOV, old, r, 0))
			fc.emit(bytecode.MakeInst(op, r, 0, 0))
			return old
		}
	}

	place := fc.resolvePlace(n.X)
	cur := fc.alloc()
	place.load(cur)
	if n.Prefix {
		fc.emit(bytecode.MakeInst(op, cur, 0, 0))
		place.store(cur)
		return cur
	}
	updated := fc.alloc()
	fc.emit(bytecode.MakeInst(bytecode.MOV, updated, cur, 0))
	fc.emit(bytecode.MakeInst(op, updated, 0, 0))
	place.store(updated)
	return cur
}

func (fc *fcomp) compileTernary(n *ast.TernaryExpr) uint8 {
	mark := fc.mark()
	cr := fc.compileExpr(n.Cond)
	fc.freeTo(mark)

	dst := fc.alloc()
	jze := fc.emitJump(bytecode.JZE, cr)
	fc.compileExprInto(n.Then, dst)
	jend := fc.emitJump(bytecode.JMP, 0)
	fc.patchJumpHere(jze)
	fc.compileExprInto(n.Else, dst)
	fc.patchJumpHere(jend)
	return dst
}

func (fc *fcomp) compileCall(n *ast.CallExpr) uint8 {
	mark := fc.mark()
	fnr := fc.compileExpr(n.Fn)
	if len(n.Args) > 255 {
		fc.errorf(n.Lparen, "too many arguments (%d)", len(n.Args))
	}
	argRegs := make([]uint8, len(n.Args))
	for i, a := range n.Args {
		argRegs[i] = fc.compileExpr(a)
	}
	fc.freeTo(mark)
	dst := fc.alloc()
	fc.emit(bytecode.MakeInst(bytecode.CALL, dst, fnr, uint8(len(n.Args))))
	for _, w := range bytecode.PackRegs(argRegs) {
		fc.emit(w)
	}
	return dst
}

func (fc *fcomp) compileArrayLit(n *ast.ArrayLit) uint8 {
	dst := fc.alloc()
	fc.emit(bytecode.MakeInst(bytecode.NEWARR, dst, uint8(bytecode.NewarrArray), 0))
	for i, elem := range n.Elems {
		mark := fc.mark()
		idxReg := fc.alloc()
		instr, payload := bytecode.MakeLdconstInt(idxReg, int64(i))
		fc.emit(instr)
		fc.emit(payload[0])
		fc.emit(payload[1])
		vr := fc.compileExpr(elem)
		fc.emit(bytecode.MakeInst(bytecode.ARRSET, dst, idxReg, vr))
		fc.freeTo(mark)
	}
	return dst
}

func (fc *fcomp) compileHashmapLit(n *ast.HashmapLit) uint8 {
	dst := fc.alloc()
	fc.emit(bytecode.MakeInst(bytecode.NEWARR, dst, uint8(bytecode.NewarrHashmap), 0))
	for _, entry := range n.Entries {
		mark := fc.mark()
		kr := fc.compileExpr(entry.Key)
		vr := fc.compileExpr(entry.Value)
		fc.emit(bytecode.MakeInst(bytecode.ARRSET, dst, kr, vr))
		fc.freeTo(mark)
	}
	return dst
}
