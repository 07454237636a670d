package maincmd

import (
	"fmt"

	"github.com/mbassey/corvid/lang/ast"
	"github.com/mbassey/corvid/lang/parser"
	"github.com/mna/mainer"
)

// runDumpAst parses each source file in paths and prints its AST.
func runDumpAst(stdio mainer.Stdio, paths []string) error {
	for _, path := range paths {
		if err := dumpAstOne(stdio, path); err != nil {
			return err
		}
	}
	return nil
}

func dumpAstOne(stdio mainer.Stdio, path string) error {
	src, err := readSource(path)
	if err != nil {
		return printError(stdio, err)
	}
	chunk, err := parser.New(path, src).Parse()
	if err != nil {
		return printError(stdio, err)
	}
	fmt.Fprintf(stdio.Stdout, "; %s\n", path)
	ast.Fprint(stdio.Stdout, chunk)
	return nil
}
