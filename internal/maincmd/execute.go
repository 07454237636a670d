package maincmd

import (
	"fmt"

	corvid "github.com/mbassey/corvid"
	"github.com/mbassey/corvid/lang/value"
	"github.com/mna/mainer"
)

// runExecute treats each of srcs as an inline source string and executes
// it in its own Context, printing the return value when printRet is set.
func runExecute(stdio mainer.Stdio, srcs []string, printRet bool) error {
	for _, src := range srcs {
		if err := executeOne(stdio, "<execute>", []byte(src), nil, printRet); err != nil {
			return err
		}
	}
	return nil
}

// runFile executes the source file at path, passing scriptArgs to it as
// the program's own command-line arguments.
func runFile(stdio mainer.Stdio, path string, scriptArgs []string, printRet bool) error {
	src, err := readSource(path)
	if err != nil {
		return printError(stdio, err)
	}
	return executeOne(stdio, path, src, scriptArgs, printRet)
}

func executeOne(stdio mainer.Stdio, name string, src []byte, scriptArgs []string, printRet bool) error {
	ctx := corvid.New()
	defer ctx.Close()

	fn, err := ctx.LoadSource(name, src)
	if err != nil {
		return printError(stdio, ctx.LastError())
	}

	args := make([]value.Value, len(scriptArgs))
	for i, a := range scriptArgs {
		args[i] = value.NewString(a)
	}
	defer func() {
		for _, a := range args {
			value.Release(a)
		}
	}()
	result, err := ctx.CallFunction(fn, args)
	if err != nil {
		printErr := printError(stdio, ctx.LastError())
		if trace := ctx.StackTrace(); len(trace) > 0 {
			for _, frame := range trace {
				fmt.Fprintf(stdio.Stderr, "\tat %s\n", frame)
			}
		}
		return printErr
	}
	defer value.Release(result)
	if printRet {
		fmt.Fprintln(stdio.Stdout, result.String())
	}
	return nil
}
