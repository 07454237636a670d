package maincmd

import (
	"fmt"
	"os"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mna/mainer"
)

// runDisasm pretty-prints each .spo bytecode file in paths.
func runDisasm(stdio mainer.Stdio, paths []string) error {
	for _, path := range paths {
		if err := disasmOne(stdio, path); err != nil {
			return err
		}
	}
	return nil
}

func disasmOne(stdio mainer.Stdio, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return printError(stdio, fmt.Errorf("open %s: %w", path, err))
	}
	defer f.Close()

	prog, err := bytecode.DecodeProgram(f)
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", path, err))
	}

	fmt.Fprintf(stdio.Stdout, "; %s\n", path)
	fmt.Fprint(stdio.Stdout, bytecode.Disassemble(prog))
	return nil
}
