package parser

import (
	"strconv"

	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/token"
)

// Precedence climbing over the standard C-like table, augmented with `..`
// concatenation (right-associative, binds looser than additive but tighter
// than shift) and the `?:` ternary below assignment.

func (p *Parser) parseExpression() ast.Expr { return p.parseAssignment() }

func (p *Parser) parseAssignment() ast.Expr {
	left := p.parseTernary()
	if p.tok.IsAssignOp() {
		op := p.tok
		opPos := p.pos()
		p.advance()
		if !isAssignable(left) {
			p.errorf(opPos, "invalid assignment target")
		}
		right := p.parseAssignment()
		return &ast.AssignExpr{Left: left, OpPos: opPos, Op: op, Right: right}
	}
	return left
}

func isAssignable(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Ident, *ast.IndexExpr, *ast.SelectorExpr:
		return true
	default:
		return false
	}
}

func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseLogicalOr()
	if p.tok == token.QUESTION {
		qpos := p.pos()
		p.advance()
		then := p.parseAssignment()
		cpos := p.expect(token.COLON).Pos
		els := p.parseTernary()
		return &ast.TernaryExpr{Cond: cond, QPos: qpos, CPos: cpos, Then: then, Else: els}
	}
	return cond
}

func (p *Parser) parseLogicalOr() ast.Expr {
	x := p.parseLogicalAnd()
	for p.tok == token.PIPEPIPE {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseLogicalAnd()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseLogicalAnd() ast.Expr {
	x := p.parseBitOr()
	for p.tok == token.AMPAMP {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseBitOr()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseBitOr() ast.Expr {
	x := p.parseBitXor()
	for p.tok == token.PIPE {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseBitXor()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseBitXor() ast.Expr {
	x := p.parseBitAnd()
	for p.tok == token.CARET {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseBitAnd()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseBitAnd() ast.Expr {
	x := p.parseEquality()
	for p.tok == token.AMP {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseEquality()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseEquality() ast.Expr {
	x := p.parseRelational()
	for p.tok == token.EQL || p.tok == token.NEQ {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseRelational()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseRelational() ast.Expr {
	x := p.parseShift()
	for p.tok == token.LT || p.tok == token.LE || p.tok == token.GT || p.tok == token.GE {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseShift()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

// parseConcat handles `..`, right-associative.
func (p *Parser) parseConcat() ast.Expr {
	x := p.parseAdditive()
	if p.tok == token.DOTDOT {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseConcat()
		return &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseShift() ast.Expr {
	x := p.parseConcat()
	for p.tok == token.SHL || p.tok == token.SHR {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseConcat()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseAdditive() ast.Expr {
	x := p.parseMultiplicative()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseMultiplicative()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseMultiplicative() ast.Expr {
	x := p.parseUnary()
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.PERCENT {
		op, pos := p.tok, p.pos()
		p.advance()
		y := p.parseUnary()
		x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
	}
	return x
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.tok {
	case token.PLUS, token.MINUS, token.BANG, token.TILDE:
		op, pos := p.tok, p.pos()
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: x}
	case token.INC, token.DEC:
		op, pos := p.tok, p.pos()
		p.advance()
		x := p.parseUnary()
		if !isAssignable(x) {
			p.errorf(pos, "invalid operand for %#v", op)
		}
		return &ast.IncDecExpr{OpPos: pos, Op: op, X: x, Prefix: true}
	case token.SIZEOF:
		pos := p.pos()
		p.advance()
		x := p.parseUnary()
		return &ast.SizeofExpr{Pos: pos, X: x}
	case token.TYPEOF:
		pos := p.pos()
		p.advance()
		x := p.parseUnary()
		return &ast.TypeofExpr{Pos: pos, X: x}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.tok {
		case token.LPAREN:
			lparen := p.pos()
			p.advance()
			var args []ast.Expr
			for p.tok != token.RPAREN {
				args = append(args, p.parseAssignment())
				if !p.accept(token.COMMA) {
					break
				}
			}
			rparen := p.expect(token.RPAREN).Pos
			x = &ast.CallExpr{Fn: x, Lparen: lparen, Rparen: rparen, Args: args}
		case token.LBRACK:
			lbrack := p.pos()
			p.advance()
			idx := p.parseExpression()
			rbrack := p.expect(token.RBRACK).Pos
			x = &ast.IndexExpr{X: x, Lbrack: lbrack, Index: idx, Rbrack: rbrack}
		case token.DOT:
			dot := p.pos()
			p.advance()
			sel := p.expect(token.IDENT).Raw
			x = &ast.SelectorExpr{X: x, Dot: dot, Sel: sel}
		case token.INC, token.DEC:
			if !isAssignable(x) {
				return x
			}
			op, pos := p.tok, p.pos()
			p.advance()
			x = &ast.IncDecExpr{OpPos: pos, Op: op, X: x, Prefix: false}
		default:
			return x
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.IDENT:
		v := p.val
		p.advance()
		return &ast.Ident{NamePos: v.Pos, Name: v.Raw}
	case token.INT:
		v := p.val
		p.advance()
		return &ast.IntLit{ValuePos: v.Pos, Value: v.Int}
	case token.FLOAT:
		v := p.val
		p.advance()
		return &ast.FloatLit{ValuePos: v.Pos, Value: v.Float}
	case token.STRING:
		v := p.val
		p.advance()
		return &ast.StringLit{ValuePos: v.Pos, Value: v.String}
	case token.TRUE:
		pos := p.pos()
		p.advance()
		return &ast.BoolLit{ValuePos: pos, Value: true}
	case token.FALSE:
		pos := p.pos()
		p.advance()
		return &ast.BoolLit{ValuePos: pos, Value: false}
	case token.NIL:
		pos := p.pos()
		p.advance()
		return &ast.NilLit{ValuePos: pos}
	case token.HASH:
		pos := p.pos()
		p.advance()
		v := p.expect(token.INT)
		n, err := strconv.Atoi(v.Raw)
		if err != nil {
			p.errorf(pos, "invalid positional argument reference: %s", err)
		}
		return &ast.ArgRefExpr{Pos: pos, N: n}
	case token.LPAREN:
		lparen := p.pos()
		p.advance()
		x := p.parseExpression()
		rparen := p.expect(token.RPAREN).Pos
		return &ast.ParenExpr{Lparen: lparen, Rparen: rparen, X: x}
	case token.FN:
		return p.parseFuncLit()
	case token.LBRACK:
		return p.parseArrayLit()
	case token.LBRACE:
		return p.parseHashmapLit()
	}
	p.errorf(p.pos(), "unexpected %#v", p.tok)
	panic("unreachable")
}

func (p *Parser) parseFuncLit() ast.Expr {
	pos := p.expect(token.FN).Pos
	p.expect(token.LPAREN)
	var params []string
	for p.tok != token.RPAREN {
		params = append(params, p.expect(token.IDENT).Raw)
		if !p.accept(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.FuncLit{Pos: pos, Params: params, Body: body}
}

func (p *Parser) parseArrayLit() ast.Expr {
	lbrack := p.expect(token.LBRACK).Pos
	var elems []ast.Expr
	for p.tok != token.RBRACK {
		elems = append(elems, p.parseAssignment())
		if !p.accept(token.COMMA) {
			break
		}
	}
	rbrack := p.expect(token.RBRACK).Pos
	return &ast.ArrayLit{Lbrack: lbrack, Rbrack: rbrack, Elems: elems}
}

func (p *Parser) parseHashmapLit() ast.Expr {
	lbrace := p.expect(token.LBRACE).Pos
	var entries []ast.HashmapEntry
	for p.tok != token.RBRACE {
		var key ast.Expr
		if p.tok == token.IDENT && p.peekIsColon() {
			v := p.val
			p.advance()
			key = &ast.StringLit{ValuePos: v.Pos, Value: v.Raw}
		} else {
			key = p.parseAssignment()
		}
		p.expect(token.COLON)
		val := p.parseAssignment()
		entries = append(entries, ast.HashmapEntry{Key: key, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	rbrace := p.expect(token.RBRACE).Pos
	return &ast.HashmapLit{Lbrace: lbrace, Rbrace: rbrace, Entries: entries}
}

func (p *Parser) peekIsColon() bool { return p.ntok == token.COLON }
