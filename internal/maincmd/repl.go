package maincmd

import (
	"bufio"
	"fmt"

	corvid "github.com/mbassey/corvid"
	"github.com/mbassey/corvid/lang/value"
	"github.com/mna/mainer"
)

const replPrompt = "> "

// runREPL reads one line at a time from stdin, compiles it as an
// expression, and prints its result, in a single Context shared across the
// whole session so globals assigned on one line are visible to the next.
func runREPL(stdio mainer.Stdio, printNil bool) error {
	ctx := corvid.New()
	defer ctx.Close()

	scanner := bufio.NewScanner(stdio.Stdin)
	fmt.Fprint(stdio.Stdout, replPrompt)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			fmt.Fprint(stdio.Stdout, replPrompt)
			continue
		}

		result, err := evalLine(ctx, line)
		if err != nil {
			printError(stdio, err)
		} else if !result.IsNil() || printNil {
			fmt.Fprintln(stdio.Stdout, result.String())
		}
		fmt.Fprint(stdio.Stdout, replPrompt)
	}
	fmt.Fprintln(stdio.Stdout)
	return scanner.Err()
}

// evalLine tries line as a bare expression first (the common REPL case),
// falling back to a full statement chunk when that fails to parse — so
// both `1 + 2` and `var x = 1;` work at the prompt.
func evalLine(ctx *corvid.Context, line string) (value.Value, error) {
	fn, err := ctx.CompileExpression(line)
	if err != nil {
		fn, err = ctx.LoadSource("<repl>", []byte(line))
		if err != nil {
			return value.Nil, ctx.LastError()
		}
	}
	result, err := ctx.CallFunction(fn, nil)
	if err != nil {
		return value.Nil, ctx.LastError()
	}
	return result, nil
}
