package maincmd

import (
	"fmt"
	"os"
	"strings"

	corvid "github.com/mbassey/corvid"
	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/value"
	"github.com/mna/mainer"
)

// runCompile compiles each source file in paths to its companion .spo
// bytecode file.
func runCompile(stdio mainer.Stdio, paths []string) error {
	for _, path := range paths {
		if err := compileOne(stdio, path); err != nil {
			return err
		}
	}
	return nil
}

func compileOne(stdio mainer.Stdio, path string) error {
	src, err := readSource(path)
	if err != nil {
		return printError(stdio, err)
	}

	ctx := corvid.New()
	defer ctx.Close()

	fn, err := ctx.LoadSource(path, src)
	if err != nil {
		return printError(stdio, ctx.LastError())
	}
	fo, ok := value.AsFunction(fn)
	if !ok {
		return printError(stdio, fmt.Errorf("%s: compiled result is not a function", path))
	}
	prog, ok := fo.Program.(*bytecode.Program)
	if !ok {
		return printError(stdio, fmt.Errorf("%s: compiled function carries no executable program", path))
	}

	out := outputPath(path)
	f, err := os.Create(out)
	if err != nil {
		return printError(stdio, fmt.Errorf("create %s: %w", out, err))
	}
	defer f.Close()

	if err := bytecode.EncodeProgram(f, prog); err != nil {
		return printError(stdio, fmt.Errorf("write %s: %w", out, err))
	}
	return nil
}

// outputPath derives the companion .spo path for a .spn source path,
// appending the suffix rather than replacing an unrecognized extension.
func outputPath(path string) string {
	if strings.HasSuffix(path, ".spn") {
		return strings.TrimSuffix(path, ".spn") + ".spo"
	}
	return path + ".spo"
}
