package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented dump of the tree rooted at n to w, one node per
// line, in the style of go/ast.Fprint: each line shows the node's Go type
// name and its scalar fields, indented by nesting depth.
func Fprint(w io.Writer, n Node) {
	p := &printer{w: w}
	p.print(n, 0)
}

type printer struct {
	w io.Writer
}

func (p *printer) line(depth int, format string, args ...any) {
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat(".  ", depth), fmt.Sprintf(format, args...))
}

func (p *printer) print(n Node, depth int) {
	switch n := n.(type) {
	case nil:
		p.line(depth, "nil")
	case *Chunk:
		p.line(depth, "Chunk %q", n.Name)
		p.print(n.Block, depth+1)
	case *Block:
		p.line(depth, "Block")
		for _, s := range n.Stmts {
			p.print(s, depth+1)
		}
	case *VarDecl:
		p.line(depth, "VarDecl %s", n.Name)
		if n.Init != nil {
			p.print(n.Init, depth+1)
		}
	case *ConstDecl:
		p.line(depth, "ConstDecl %s", n.Name)
		p.print(n.Value, depth+1)
	case *IfStmt:
		p.line(depth, "IfStmt")
		p.print(n.Cond, depth+1)
		p.print(n.Then, depth+1)
		if n.Else != nil {
			p.print(n.Else, depth+1)
		}
	case *WhileStmt:
		p.line(depth, "WhileStmt")
		p.print(n.Cond, depth+1)
		p.print(n.Body, depth+1)
	case *DoWhileStmt:
		p.line(depth, "DoWhileStmt")
		p.print(n.Body, depth+1)
		p.print(n.Cond, depth+1)
	case *ForStmt:
		p.line(depth, "ForStmt")
		p.print(n.Init, depth+1)
		if n.Cond != nil {
			p.print(n.Cond, depth+1)
		}
		p.print(n.Post, depth+1)
		p.print(n.Body, depth+1)
	case *BreakStmt:
		p.line(depth, "BreakStmt")
	case *ContinueStmt:
		p.line(depth, "ContinueStmt")
	case *ReturnStmt:
		p.line(depth, "ReturnStmt")
		if n.Value != nil {
			p.print(n.Value, depth+1)
		}
	case *ExprStmt:
		p.line(depth, "ExprStmt")
		p.print(n.X, depth+1)
	case *EmptyStmt:
		p.line(depth, "EmptyStmt")
	case *Ident:
		p.line(depth, "Ident %s", n.Name)
	case *IntLit:
		p.line(depth, "IntLit %d", n.Value)
	case *FloatLit:
		p.line(depth, "FloatLit %g", n.Value)
	case *StringLit:
		p.line(depth, "StringLit %q", n.Value)
	case *BoolLit:
		p.line(depth, "BoolLit %t", n.Value)
	case *NilLit:
		p.line(depth, "NilLit")
	case *ArgRefExpr:
		p.line(depth, "ArgRefExpr #%d", n.N)
	case *ParenExpr:
		p.line(depth, "ParenExpr")
		p.print(n.X, depth+1)
	case *BinaryExpr:
		p.line(depth, "BinaryExpr %s", n.Op)
		p.print(n.X, depth+1)
		p.print(n.Y, depth+1)
	case *UnaryExpr:
		p.line(depth, "UnaryExpr %s", n.Op)
		p.print(n.X, depth+1)
	case *IncDecExpr:
		p.line(depth, "IncDecExpr %s prefix=%t", n.Op, n.Prefix)
		p.print(n.X, depth+1)
	case *TernaryExpr:
		p.line(depth, "TernaryExpr")
		p.print(n.Cond, depth+1)
		p.print(n.Then, depth+1)
		p.print(n.Else, depth+1)
	case *AssignExpr:
		p.line(depth, "AssignExpr %s", n.Op)
		p.print(n.Left, depth+1)
		p.print(n.Right, depth+1)
	case *SizeofExpr:
		p.line(depth, "SizeofExpr")
		p.print(n.X, depth+1)
	case *TypeofExpr:
		p.line(depth, "TypeofExpr")
		p.print(n.X, depth+1)
	case *CallExpr:
		p.line(depth, "CallExpr")
		p.print(n.Fn, depth+1)
		for _, a := range n.Args {
			p.print(a, depth+1)
		}
	case *IndexExpr:
		p.line(depth, "IndexExpr")
		p.print(n.X, depth+1)
		p.print(n.Index, depth+1)
	case *SelectorExpr:
		p.line(depth, "SelectorExpr .%s", n.Sel)
		p.print(n.X, depth+1)
	case *FuncLit:
		p.line(depth, "FuncLit %s(%s)", n.Name, strings.Join(n.Params, ", "))
		p.print(n.Body, depth+1)
	case *ArrayLit:
		p.line(depth, "ArrayLit")
		for _, e := range n.Elems {
			p.print(e, depth+1)
		}
	case *HashmapLit:
		p.line(depth, "HashmapLit")
		for _, e := range n.Entries {
			p.print(e.Key, depth+1)
			p.print(e.Value, depth+1)
		}
	default:
		p.line(depth, "%T", n)
	}
}
