// Package maincmd implements the corvid command-line tool's flag parsing
// and command dispatch, kept separate from cmd/corvid/main.go so it can be
// exercised by tests without an os.Exit boundary.
package maincmd

import (
	"fmt"

	"github.com/mna/mainer"
)

const binName = "corvid"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>] [-- <arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>] [-- <arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and all-in-one tool for the %[1]s programming language.

With no command and no path, enter an interactive REPL. With a path and no
command flag, execute it as source and pass any remaining arguments to the
script.

At most one of the following may be given:
       --execute                 Treat each remaining argument as a source
                                  string and execute it directly.
       --compile                 Compile each source file argument to its
                                  companion .spo bytecode file.
       --disasm                  Disassemble each .spo bytecode file
                                  argument and print the result.
       --dump-ast                Parse each source file argument and print
                                  its abstract syntax tree.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --print-nil               In the REPL, print nil return values.
       --print-ret               Print the return value of each executed
                                  string or file.

More information on the %[1]s repository:
       https://github.com/mbassey/corvid
`, binName)
)

// Cmd holds the parsed command line. Exported fields are bound by
// mainer's flag parser via their `flag` tags.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Execute bool `flag:"execute"`
	Compile bool `flag:"compile"`
	Disasm  bool `flag:"disasm"`
	DumpAst bool `flag:"dump-ast"`

	PrintNil bool `flag:"print-nil"`
	PrintRet bool `flag:"print-ret"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

// Validate enforces the mutually-exclusive command flags and each
// command's minimum argument count.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	n := 0
	for _, set := range []bool{c.Execute, c.Compile, c.Disasm, c.DumpAst} {
		if set {
			n++
		}
	}
	if n > 1 {
		return fmt.Errorf("at most one of --execute, --compile, --disasm, --dump-ast may be given")
	}

	switch {
	case c.Execute:
		if len(c.args) == 0 {
			return fmt.Errorf("--execute: at least one source string must be provided")
		}
	case c.Compile, c.Disasm, c.DumpAst:
		if len(c.args) == 0 {
			return fmt.Errorf("at least one file must be provided")
		}
	}
	return nil
}

// Main is the CLI entry point, independent of os.Exit so it can be driven
// from tests.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	var err error
	switch {
	case c.Execute:
		err = runExecute(stdio, c.args, c.PrintRet)
	case c.Compile:
		err = runCompile(stdio, c.args)
	case c.Disasm:
		err = runDisasm(stdio, c.args)
	case c.DumpAst:
		err = runDumpAst(stdio, c.args)
	case len(c.args) > 0:
		err = runFile(stdio, c.args[0], c.args[1:], c.PrintRet)
	default:
		err = runREPL(stdio, c.PrintNil)
	}
	if err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// printError prints err to stderr, if non-nil, and returns it unchanged so
// callers can write `return printError(stdio, err)`.
func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}
