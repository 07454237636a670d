// Package ast defines the abstract syntax tree produced by the parser.
// Unlike a generic two-child tree, every construct gets its own record type
// with typed fields, so each kind of node carries exactly the children it
// needs.
package ast

import "github.com/mbassey/corvid/lang/token"

// Node is implemented by every AST node.
type Node interface {
	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)
}

// Stmt is implemented by statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Chunk is the root node of a parsed source file: a sequence of statements.
type Chunk struct {
	Name  string // source name, may be empty
	Block *Block
	EOF   token.Pos
}

func (n *Chunk) Span() (start, end token.Pos) {
	if n.Block != nil {
		return n.Block.Span()
	}
	return n.EOF, n.EOF
}

// Block is a brace-delimited sequence of statements.
type Block struct {
	Lbrace, Rbrace token.Pos
	Stmts          []Stmt
}

func (n *Block) Span() (start, end token.Pos) { return n.Lbrace, n.Rbrace }
