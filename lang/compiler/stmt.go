package compiler

import (
	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/bytecode"
)

func (fc *fcomp) compileStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VarDecl:
		fc.compileVarDecl(n)
	case *ast.ConstDecl:
		fc.compileConstDecl(n)
	case *ast.IfStmt:
		fc.compileIf(n)
	case *ast.WhileStmt:
		fc.compileWhile(n)
	case *ast.DoWhileStmt:
		fc.compileDoWhile(n)
	case *ast.ForStmt:
		fc.compileFor(n)
	case *ast.BreakStmt:
		fc.compileBreak(n)
	case *ast.ContinueStmt:
		fc.compileContinue(n)
	case *ast.ReturnStmt:
		fc.compileReturn(n)
	case *ast.ExprStmt:
		mark := fc.mark()
		fc.compileExpr(n.X)
		fc.freeTo(mark)
	case *ast.BlockStmt:
		fc.compileBlock(n.Block)
	case *ast.EmptyStmt:
		// nothing to emit
	default:
		start, _ := s.Span()
		fc.errorf(start, "unsupported statement %T", s)
	}
}

func (fc *fcomp) compileVarDecl(n *ast.VarDecl) {
	r := fc.declareLocal(n.Name)
	if n.Init != nil {
		fc.compileExprInto(n.Init, r)
		return
	}
	instr, payload := bytecode.MakeLdconstNil(r)
	fc.emit(instr)
	fc.emit(payload[0])
	fc.emit(payload[1])
}

func (fc *fcomp) compileConstDecl(n *ast.ConstDecl) {
	if fc.p.constDecl[n.Name] {
		fc.errorf(n.Pos, "duplicate constant declaration %q", n.Name)
	}
	fc.p.constDecl[n.Name] = true

	mark := fc.mark()
	r := fc.compileExpr(n.Value)
	fc.emitGlbval(r, n.Name)
	fc.freeTo(mark)
}

func (fc *fcomp) compileIf(n *ast.IfStmt) {
	mark := fc.mark()
	cr := fc.compileExpr(n.Cond)
	fc.freeTo(mark)
	jze := fc.emitJump(bytecode.JZE, cr)
	fc.compileBlock(n.Then)
	if n.Else != nil {
		jend := fc.emitJump(bytecode.JMP, 0)
		fc.patchJumpHere(jze)
		fc.compileStmt(n.Else)
		fc.patchJumpHere(jend)
		return
	}
	fc.patchJumpHere(jze)
}

func (fc *fcomp) compileWhile(n *ast.WhileStmt) {
	condPC := fc.pc()
	mark := fc.mark()
	cr := fc.compileExpr(n.Cond)
	fc.freeTo(mark)
	jze := fc.emitJump(bytecode.JZE, cr)

	lc := fc.pushLoop()
	fc.compileBlock(n.Body)
	fc.emitJumpTo(bytecode.JMP, 0, condPC)
	endPC := fc.pc()
	fc.patchJumpHere(jze)
	fc.closeLoop(lc, condPC, endPC)
	fc.popLoop()
}

func (fc *fcomp) compileDoWhile(n *ast.DoWhileStmt) {
	bodyPC := fc.pc()
	lc := fc.pushLoop()
	fc.compileBlock(n.Body)

	condPC := fc.pc()
	mark := fc.mark()
	cr := fc.compileExpr(n.Cond)
	fc.freeTo(mark)
	jnz := fc.emitJump(bytecode.JNZ, cr)
	fc.patchJumpTo(jnz, bodyPC)
	endPC := fc.pc()

	fc.closeLoop(lc, condPC, endPC)
	fc.popLoop()
}

func (fc *fcomp) compileFor(n *ast.ForStmt) {
	fc.pushScope()
	defer fc.popScope()

	if n.Init != nil {
		fc.compileStmt(n.Init)
	}

	condPC := fc.pc()
	var jze int
	haveCond := n.Cond != nil
	if haveCond {
		mark := fc.mark()
		cr := fc.compileExpr(n.Cond)
		fc.freeTo(mark)
		jze = fc.emitJump(bytecode.JZE, cr)
	}

	lc := fc.pushLoop()
	fc.compileBlock(n.Body)

	postPC := fc.pc()
	if n.Post != nil {
		fc.compileStmt(n.Post)
	}
	fc.emitJumpTo(bytecode.JMP, 0, condPC)
	endPC := fc.pc()
	if haveCond {
		fc.patchJumpHere(jze)
	}
	fc.closeLoop(lc, postPC, endPC)
	fc.popLoop()
}

func (fc *fcomp) compileBreak(n *ast.BreakStmt) {
	lc := fc.curLoop()
	if lc == nil {
		fc.errorf(n.Pos, "break outside loop")
		return
	}
	j := fc.emitJump(bytecode.JMP, 0)
	lc.breaks = append(lc.breaks, j)
}

func (fc *fcomp) compileContinue(n *ast.ContinueStmt) {
	lc := fc.curLoop()
	if lc == nil {
		fc.errorf(n.Pos, "continue outside loop")
		return
	}
	j := fc.emitJump(bytecode.JMP, 0)
	lc.continues = append(lc.continues, j)
}

func (fc *fcomp) compileReturn(n *ast.ReturnStmt) {
	if n.Value == nil {
		r := fc.alloc()
		instr, payload := bytecode.MakeLdconstNil(r)
		fc.emit(instr)
		fc.emit(payload[0])
		fc.emit(payload[1])
		fc.emitReturn(r)
		return
	}
	mark := fc.mark()
	r := fc.compileExpr(n.Value)
	fc.emitReturn(r)
	fc.freeTo(mark)
}
