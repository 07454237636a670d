package ast

import "github.com/mbassey/corvid/lang/token"

type (
	// Ident is a bare identifier reference, either a local or a global.
	Ident struct {
		NamePos token.Pos
		Name    string
	}

	// IntLit is an integer literal.
	IntLit struct {
		ValuePos token.Pos
		Value    int64
	}

	// FloatLit is a floating point literal.
	FloatLit struct {
		ValuePos token.Pos
		Value    float64
	}

	// StringLit is a string literal, already unescaped.
	StringLit struct {
		ValuePos token.Pos
		Value    string
	}

	// BoolLit is `true` or `false`.
	BoolLit struct {
		ValuePos token.Pos
		Value    bool
	}

	// NilLit is `nil`.
	NilLit struct{ ValuePos token.Pos }

	// ArgRefExpr is `#N`, the Nth positional argument of a top-level script.
	ArgRefExpr struct {
		Pos token.Pos
		N   int
	}

	// ParenExpr is a parenthesized expression, kept to preserve explicit
	// grouping and its source positions. The compiler compiles it as X, and
	// it is not an assignment target.
	ParenExpr struct {
		Lparen, Rparen token.Pos
		X              Expr
	}

	// BinaryExpr is `x op y` for arithmetic, comparison, logical, bitwise and
	// the `..` concatenation operator.
	BinaryExpr struct {
		X     Expr
		OpPos token.Pos
		Op    token.Token
		Y     Expr
	}

	// UnaryExpr is a prefix operator applied to X: -x, +x, !x, ~x.
	UnaryExpr struct {
		OpPos token.Pos
		Op    token.Token
		X     Expr
	}

	// IncDecExpr is `++x`, `x++`, `--x` or `x--`. X must be an assignable
	// expression (Ident, IndexExpr or SelectorExpr).
	IncDecExpr struct {
		OpPos  token.Pos
		Op     token.Token // INC or DEC
		X      Expr
		Prefix bool
	}

	// TernaryExpr is `cond ? then : else`.
	TernaryExpr struct {
		Cond       Expr
		QPos, CPos token.Pos
		Then, Else Expr
	}

	// AssignExpr is `lhs = rhs` or a compound assignment `lhs op= rhs`. Op is
	// ASSIGN for a plain assignment, or the compound token otherwise.
	AssignExpr struct {
		Left  Expr
		OpPos token.Pos
		Op    token.Token
		Right Expr
	}

	// SizeofExpr is `sizeof x`.
	SizeofExpr struct {
		Pos token.Pos
		X   Expr
	}

	// TypeofExpr is `typeof x`.
	TypeofExpr struct {
		Pos token.Pos
		X   Expr
	}

	// CallExpr is `fn(args...)`.
	CallExpr struct {
		Fn             Expr
		Lparen, Rparen token.Pos
		Args           []Expr
	}

	// IndexExpr is `x[index]`.
	IndexExpr struct {
		X              Expr
		Lbrack, Rbrack token.Pos
		Index          Expr
	}

	// SelectorExpr is `x.sel`.
	SelectorExpr struct {
		X   Expr
		Dot token.Pos
		Sel string
	}

	// FuncLit is `fn (params...) { body }`. Name is filled in by the parser
	// when the literal is the direct initializer of a var/const declaration,
	// purely to improve stack traces; it has no semantic effect.
	FuncLit struct {
		Pos    token.Pos
		Name   string
		Params []string
		Body   *Block
	}

	// ArrayLit is `[e1, e2, ...]`.
	ArrayLit struct {
		Lbrack, Rbrack token.Pos
		Elems          []Expr
	}

	// HashmapEntry is one `key: value` pair of a hashmap literal.
	HashmapEntry struct {
		Key, Value Expr
	}

	// HashmapLit is `{k1: v1, k2: v2, ...}`.
	HashmapLit struct {
		Lbrace, Rbrace token.Pos
		Entries        []HashmapEntry
	}
)

func (n *Ident) Span() (token.Pos, token.Pos)      { return n.NamePos, n.NamePos }
func (n *IntLit) Span() (token.Pos, token.Pos)     { return n.ValuePos, n.ValuePos }
func (n *FloatLit) Span() (token.Pos, token.Pos)   { return n.ValuePos, n.ValuePos }
func (n *StringLit) Span() (token.Pos, token.Pos)  { return n.ValuePos, n.ValuePos }
func (n *BoolLit) Span() (token.Pos, token.Pos)    { return n.ValuePos, n.ValuePos }
func (n *NilLit) Span() (token.Pos, token.Pos)     { return n.ValuePos, n.ValuePos }
func (n *ArgRefExpr) Span() (token.Pos, token.Pos) { return n.Pos, n.Pos }
func (n *ParenExpr) Span() (token.Pos, token.Pos)  { return n.Lparen, n.Rparen }
func (n *BinaryExpr) Span() (token.Pos, token.Pos) {
	s, _ := n.X.Span()
	_, e := n.Y.Span()
	return s, e
}
func (n *UnaryExpr) Span() (token.Pos, token.Pos) { _, e := n.X.Span(); return n.OpPos, e }
func (n *IncDecExpr) Span() (token.Pos, token.Pos) {
	if n.Prefix {
		_, e := n.X.Span()
		return n.OpPos, e
	}
	s, _ := n.X.Span()
	return s, n.OpPos
}
func (n *TernaryExpr) Span() (token.Pos, token.Pos) {
	s, _ := n.Cond.Span()
	_, e := n.Else.Span()
	return s, e
}
func (n *AssignExpr) Span() (token.Pos, token.Pos) {
	s, _ := n.Left.Span()
	_, e := n.Right.Span()
	return s, e
}
func (n *SizeofExpr) Span() (token.Pos, token.Pos) { _, e := n.X.Span(); return n.Pos, e }
func (n *TypeofExpr) Span() (token.Pos, token.Pos) { _, e := n.X.Span(); return n.Pos, e }
func (n *CallExpr) Span() (token.Pos, token.Pos)   { s, _ := n.Fn.Span(); return s, n.Rparen }
func (n *IndexExpr) Span() (token.Pos, token.Pos)  { s, _ := n.X.Span(); return s, n.Rbrack }
func (n *SelectorExpr) Span() (token.Pos, token.Pos) {
	s, _ := n.X.Span()
	return s, n.Dot
}
func (n *FuncLit) Span() (token.Pos, token.Pos)    { return n.Pos, n.Body.Rbrace }
func (n *ArrayLit) Span() (token.Pos, token.Pos)   { return n.Lbrack, n.Rbrack }
func (n *HashmapLit) Span() (token.Pos, token.Pos) { return n.Lbrace, n.Rbrace }

func (*Ident) exprNode()        {}
func (*IntLit) exprNode()       {}
func (*FloatLit) exprNode()     {}
func (*StringLit) exprNode()    {}
func (*BoolLit) exprNode()      {}
func (*NilLit) exprNode()       {}
func (*ArgRefExpr) exprNode()   {}
func (*ParenExpr) exprNode()    {}
func (*BinaryExpr) exprNode()   {}
func (*UnaryExpr) exprNode()    {}
func (*IncDecExpr) exprNode()   {}
func (*TernaryExpr) exprNode()  {}
func (*AssignExpr) exprNode()   {}
func (*SizeofExpr) exprNode()   {}
func (*TypeofExpr) exprNode()   {}
func (*CallExpr) exprNode()     {}
func (*IndexExpr) exprNode()    {}
func (*SelectorExpr) exprNode() {}
func (*FuncLit) exprNode()      {}
func (*ArrayLit) exprNode()     {}
func (*HashmapLit) exprNode()   {}
