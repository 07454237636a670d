package compiler

import (
	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/token"
)

// place is an assignable location: a local register, a global name, or a
// container slot (array/hashmap element or `.name` member). load copies
// the current value into dst; store writes src's value into the place.
type place struct {
	load  func(dst uint8)
	store func(src uint8)
}

var noopPlace = place{load: func(uint8) {}, store: func(uint8) {}}

// resolvePlace computes the assignable location named by e. For a
// container element it evaluates the addressing sub-expressions (the
// container and the key/selector name) exactly once, up front, so a
// compound assignment such as `a[f()] += 1` calls f() a single time.
func (fc *fcomp) resolvePlace(e ast.Expr) place {
	switch n := e.(type) {
	case *ast.Ident:
		if r, ok := fc.resolveLocal(n.Name); ok {
			return place{
				load:  func(dst uint8) { mov(fc, dst, r) },
				store: func(src uint8) { mov(fc, r, src) },
			}
		}
		if _, ok := fc.resolveUpval(n.Name); ok {
			fc.errorf(n.NamePos, "cannot assign to %q: captured by value from an enclosing function", n.Name)
			return noopPlace
		}
		name := n.Name
		return place{
			load: func(dst uint8) {
				fc.emit(bytecode.MakeLdsym(dst, fc.p.internSymstub(name)))
			},
			store: func(src uint8) { fc.emitGlbval(src, name) },
		}

	case *ast.IndexExpr:
		xr := fc.compileExpr(n.X)
		kr := fc.compileExpr(n.Index)
		return place{
			load:  func(dst uint8) { fc.emit(bytecode.MakeInst(bytecode.ARRGET, dst, xr, kr)) },
			store: func(src uint8) { fc.emit(bytecode.MakeInst(bytecode.ARRSET, xr, kr, src)) },
		}

	case *ast.SelectorExpr:
		xr := fc.compileExpr(n.X)
		kr := fc.internStringReg(n.Sel)
		return place{
			load:  func(dst uint8) { fc.emit(bytecode.MakeInst(bytecode.ARRGET, dst, xr, kr)) },
			store: func(src uint8) { fc.emit(bytecode.MakeInst(bytecode.ARRSET, xr, kr, src)) },
		}

	default:
		start, _ := e.Span()
		fc.errorf(start, "invalid assignment target %T", e)
		return noopPlace
	}
}

func mov(fc *fcomp, dst, src uint8) {
	if dst != src {
		fc.emit(bytecode.MakeInst(bytecode.MOV, dst, src, 0))
	}
}

// compileAssign lowers `lhs = rhs` and the compound `lhs op= rhs` forms.
// The assignment expression's value is the value stored.
func (fc *fcomp) compileAssign(n *ast.AssignExpr) uint8 {
	if id, ok := n.Left.(*ast.Ident); ok {
		if lr, ok2 := fc.resolveLocal(id.Name); ok2 {
			if n.Op == token.ASSIGN {
				fc.compileExprInto(n.Right, lr)
				return lr
			}
			op := binOpcode[n.Op.BinaryOp()]
			mark := fc.mark()
			rhs := fc.compileExpr(n.Right)
			fc.emit(bytecode.MakeInst(op, lr, lr, rhs))
			fc.freeTo(mark)
			return lr
		}
	}

	p := fc.resolvePlace(n.Left)
	if n.Op == token.ASSIGN {
		r := fc.compileExpr(n.Right)
		p.store(r)
		return r
	}

	op := binOpcode[n.Op.BinaryOp()]
	cur := fc.alloc()
	p.load(cur)
	rhs := fc.compileExpr(n.Right)
	fc.emit(bytecode.MakeInst(op, cur, cur, rhs))
	p.store(cur)
	return cur
}
