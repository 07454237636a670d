// Package parser implements a hand-written recursive-descent parser that
// turns a token stream into an *ast.Chunk.
package parser

import (
	"fmt"

	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/lexer"
	"github.com/mbassey/corvid/lang/token"
)

// Error reports a syntax error with its source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// abort is used internally to unwind the recursive descent on the first
// syntax error, matching the "parsing stops on first error" policy.
type abort struct{ err *Error }

// Parser consumes a token stream and builds an AST. On syntax error, parsing
// stops and Parse returns a nil *ast.Chunk; the error is available from
// Err.
type Parser struct {
	lex  *lexer.Lexer
	name string

	tok  token.Token
	val  token.Value
	ntok token.Token
	nval token.Value

	err *Error
}

// New creates a Parser over src. name is used only to label the resulting
// Chunk.
func New(name string, src []byte) *Parser {
	p := &Parser{lex: lexer.New(src), name: name}
	p.ntok, p.nval = p.lex.Scan()
	p.advance()
	return p
}

// Err returns the syntax error encountered during Parse, if any.
func (p *Parser) Err() error {
	if p.err == nil {
		return nil
	}
	return p.err
}

func (p *Parser) advance() {
	p.tok, p.val = p.ntok, p.nval
	p.ntok, p.nval = p.lex.Scan()
}

func (p *Parser) pos() token.Pos { return p.val.Pos }

func (p *Parser) errorf(pos token.Pos, format string, args ...any) {
	e := &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	panic(abort{e})
}

func (p *Parser) expect(tok token.Token) token.Value {
	if p.tok != tok {
		p.errorf(p.pos(), "expected %#v, found %#v", tok, p.tok)
	}
	v := p.val
	p.advance()
	return v
}

func (p *Parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.advance()
		return true
	}
	return false
}

// Parse parses the whole source as a top-level Chunk.
func (p *Parser) Parse() (chunk *ast.Chunk, err error) {
	defer func() {
		if r := recover(); r != nil {
			ab, ok := r.(abort)
			if !ok {
				panic(r)
			}
			p.err = ab.err
			chunk, err = nil, ab.err
		}
	}()

	block := p.parseStmtsUntil(token.EOF)
	if errs := p.lex.Errors(); len(errs) > 0 {
		p.err = &Error{Pos: errs[0].Pos, Msg: errs[0].Msg}
		return nil, p.err
	}
	eof := p.pos()
	return &ast.Chunk{Name: p.name, Block: block, EOF: eof}, nil
}

func (p *Parser) parseBlock() *ast.Block {
	lbrace := p.expect(token.LBRACE).Pos
	b := p.parseStmtsUntil(token.RBRACE)
	b.Lbrace = lbrace
	b.Rbrace = p.expect(token.RBRACE).Pos
	return b
}

func (p *Parser) parseStmtsUntil(end token.Token) *ast.Block {
	b := &ast.Block{Lbrace: p.pos()}
	for p.tok != end && p.tok != token.EOF {
		b.Stmts = append(b.Stmts, p.parseStmt())
	}
	b.Rbrace = p.pos()
	return b
}
