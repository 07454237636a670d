package corvid

import (
	"fmt"

	"github.com/mbassey/corvid/lang/compiler"
	"github.com/mbassey/corvid/lang/lexer"
	"github.com/mbassey/corvid/lang/machine"
	"github.com/mbassey/corvid/lang/parser"
	"github.com/mbassey/corvid/lang/token"
)

// ErrorKind classifies where in the pipeline an error originated, per
// spec.md's closed set.
type ErrorKind int

const (
	Generic ErrorKind = iota
	Syntax
	Semantic
	Runtime
)

func (k ErrorKind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Syntax:
		return "syntax"
	case Semantic:
		return "semantic"
	case Runtime:
		return "runtime"
	default:
		return fmt.Sprintf("illegal error kind (%d)", int(k))
	}
}

// Error is the structured error a Context surfaces to the host: a kind, a
// one-line message, the source position where available, and (for runtime
// errors) a call-stack snapshot, innermost frame first.
type Error struct {
	Kind  ErrorKind
	Msg   string
	Pos   token.Pos
	Stack []string
}

func (e *Error) Error() string {
	if e.Pos.Unknown() {
		return e.Msg
	}
	line, col := e.Pos.LineCol()
	return fmt.Sprintf("%d:%d: %s", line, col, e.Msg)
}

// wrapSyntax turns a *lexer.Error or *parser.Error (the parser reports the
// first lexical error of a source that otherwise parses through its own
// *parser.Error) into a syntax Error, preserving the source position.
func wrapSyntax(err error) *Error {
	switch e := err.(type) {
	case *parser.Error:
		return &Error{Kind: Syntax, Msg: e.Msg, Pos: e.Pos}
	case *lexer.Error:
		return &Error{Kind: Syntax, Msg: e.Msg, Pos: e.Pos}
	default:
		return &Error{Kind: Syntax, Msg: err.Error()}
	}
}

// wrapSemantic turns a *compiler.Error into a semantic Error, preserving
// the source position.
func wrapSemantic(err error) *Error {
	if e, ok := err.(*compiler.Error); ok {
		return &Error{Kind: Semantic, Msg: e.Msg, Pos: e.Pos}
	}
	return &Error{Kind: Semantic, Msg: err.Error()}
}

// wrapRuntime turns a *machine.RuntimeError into a runtime Error, carrying
// its captured call-stack snapshot.
func wrapRuntime(err error) *Error {
	if rerr, ok := err.(*machine.RuntimeError); ok {
		return &Error{Kind: Runtime, Msg: rerr.Message, Stack: rerr.Stack}
	}
	return &Error{Kind: Runtime, Msg: err.Error()}
}

func wrapGeneric(err error) *Error {
	return &Error{Kind: Generic, Msg: err.Error()}
}
