package parser

import (
	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/token"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.SEMI:
		pos := p.pos()
		p.advance()
		return &ast.EmptyStmt{Pos: pos}
	case token.LBRACE:
		return &ast.BlockStmt{Block: p.parseBlock()}
	case token.VAR:
		return p.parseVarDecl()
	case token.CONST:
		return p.parseConstDecl()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDoWhile()
	case token.FOR:
		return p.parseFor()
	case token.BREAK:
		pos := p.pos()
		p.advance()
		p.accept(token.SEMI)
		return &ast.BreakStmt{Pos: pos}
	case token.CONTINUE:
		pos := p.pos()
		p.advance()
		p.accept(token.SEMI)
		return &ast.ContinueStmt{Pos: pos}
	case token.RETURN:
		return p.parseReturn()
	}
	x := p.parseExpression()
	p.accept(token.SEMI)
	return &ast.ExprStmt{X: x}
}

func (p *Parser) parseVarDecl() ast.Stmt {
	pos := p.expect(token.VAR).Pos
	name := p.expect(token.IDENT).Raw
	var init ast.Expr
	if p.accept(token.ASSIGN) {
		init = p.parseExpression()
		if fl, ok := init.(*ast.FuncLit); ok && fl.Name == "" {
			fl.Name = name
		}
	}
	p.accept(token.SEMI)
	return &ast.VarDecl{Pos: pos, Name: name, Init: init}
}

func (p *Parser) parseConstDecl() ast.Stmt {
	pos := p.expect(token.CONST).Pos
	name := p.expect(token.IDENT).Raw
	p.expect(token.ASSIGN)
	val := p.parseExpression()
	if fl, ok := val.(*ast.FuncLit); ok && fl.Name == "" {
		fl.Name = name
	}
	p.accept(token.SEMI)
	return &ast.ConstDecl{Pos: pos, Name: name, Value: val}
}

func (p *Parser) parseIf() ast.Stmt {
	pos := p.expect(token.IF).Pos
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	then := p.parseBlock()
	var els ast.Stmt
	if p.accept(token.ELSE) {
		if p.tok == token.IF {
			els = p.parseIf()
		} else {
			els = &ast.BlockStmt{Block: p.parseBlock()}
		}
	}
	return &ast.IfStmt{Pos: pos, Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseWhile() ast.Stmt {
	pos := p.expect(token.WHILE).Pos
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.WhileStmt{Pos: pos, Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() ast.Stmt {
	pos := p.expect(token.DO).Pos
	body := p.parseBlock()
	p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpression()
	p.expect(token.RPAREN)
	end := p.pos()
	p.accept(token.SEMI)
	return &ast.DoWhileStmt{Pos: pos, Body: body, Cond: cond, End: end}
}

func (p *Parser) parseFor() ast.Stmt {
	pos := p.expect(token.FOR).Pos
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.tok != token.SEMI {
		if p.tok == token.VAR {
			init = p.parseVarDecl()
		} else {
			x := p.parseExpression()
			init = &ast.ExprStmt{X: x}
			p.expect(token.SEMI)
		}
	} else {
		p.expect(token.SEMI)
	}

	var cond ast.Expr
	if p.tok != token.SEMI {
		cond = p.parseExpression()
	}
	p.expect(token.SEMI)

	var post ast.Stmt
	if p.tok != token.RPAREN {
		post = &ast.ExprStmt{X: p.parseExpression()}
	}
	p.expect(token.RPAREN)

	body := p.parseBlock()
	return &ast.ForStmt{Pos: pos, Init: init, Cond: cond, Post: post, Body: body}
}

func (p *Parser) parseReturn() ast.Stmt {
	pos := p.expect(token.RETURN).Pos
	var val ast.Expr
	if p.tok != token.SEMI && p.tok != token.RBRACE {
		val = p.parseExpression()
	}
	p.accept(token.SEMI)
	return &ast.ReturnStmt{Pos: pos, Value: val}
}
