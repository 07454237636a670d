package compiler_test

import (
	"testing"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/compiler"
	"github.com/mbassey/corvid/lang/parser"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, src string) *bytecode.Program {
	t.Helper()
	chunk, err := parser.New("test", []byte(src)).Parse()
	require.NoError(t, err)
	prog, err := compiler.Compile(chunk)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}

func countOp(t *testing.T, p *bytecode.Program, op bytecode.Opcode) int {
	t.Helper()
	n := 0
	pc := 0
	for pc < len(p.Code) {
		w := p.Code[pc]
		decoded, a, b, c := bytecode.DecodeInst(w)
		if decoded == op {
			n++
		}
		pc += 1 + immediateWordsForTest(decoded, a, b, c)
	}
	return n
}

// immediateWordsForTest mirrors bytecode's unexported immediateWords so
// tests can walk the instruction stream without a disassembler dependency.
func immediateWordsForTest(op bytecode.Opcode, a, b, c uint8) int {
	switch op {
	case bytecode.CALL:
		return (int(c) + 3) / 4
	case bytecode.JMP, bytecode.JZE, bytecode.JNZ:
		return 1
	case bytecode.LDCONST:
		return 2
	case bytecode.FUNCTION:
		return 4
	case bytecode.GLBVAL:
		return (int(b) + 3) / 4
	case bytecode.CLOSURE:
		return int(b)
	default:
		return 0
	}
}

func TestCompileArithmeticExpression(t *testing.T) {
	prog := mustCompile(t, "return 1 + 2 * 3;")
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.MUL), 1)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.ADD), 1)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.RET), 1)
	require.Zero(t, prog.Header.Argc)
}

func TestCompileStringConcat(t *testing.T) {
	prog := mustCompile(t, `return "a" .. "b";`)
	require.Equal(t, 1, countOp(t, prog, bytecode.CONCAT))

	var strconsts int
	for _, e := range prog.Symtab {
		if e.Kind == bytecode.STRCONST {
			strconsts++
		}
	}
	require.Equal(t, 2, strconsts)
}

func TestCompileGlobalReadWrite(t *testing.T) {
	prog := mustCompile(t, "counter = 1; return counter;")
	require.Equal(t, 1, countOp(t, prog, bytecode.GLBVAL))
	require.Equal(t, 1, countOp(t, prog, bytecode.LDSYM))
}

func TestCompileConstDecl(t *testing.T) {
	prog := mustCompile(t, "const PI = 3; return PI;")
	require.Equal(t, 1, countOp(t, prog, bytecode.GLBVAL))
}

func TestDuplicateConstIsCompileError(t *testing.T) {
	chunk, err := parser.New("test", []byte("const X = 1; const X = 2;")).Parse()
	require.NoError(t, err)
	_, err = compiler.Compile(chunk)
	require.Error(t, err)
	var cerr *compiler.Error
	require.ErrorAs(t, err, &cerr)
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	chunk, err := parser.New("test", []byte("break;")).Parse()
	require.NoError(t, err)
	_, err = compiler.Compile(chunk)
	require.Error(t, err)
}

func TestCompileWhileLoop(t *testing.T) {
	prog := mustCompile(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		return sum;
	`)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JZE), 1)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JMP), 1)
}

func TestCompileForLoopWithBreakAndContinue(t *testing.T) {
	prog := mustCompile(t, `
		var total = 0;
		for (var i = 0; i < 10; i = i + 1) {
			if (i == 5) { break; }
			if (i == 2) { continue; }
			total = total + i;
		}
		return total;
	`)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JMP), 3)
}

func TestCompileClosureCapturesLocal(t *testing.T) {
	prog := mustCompile(t, `
		var x = 10;
		var f = fn () { return x; };
		return f();
	`)
	require.Equal(t, 1, countOp(t, prog, bytecode.FUNCTION))
	require.Equal(t, 1, countOp(t, prog, bytecode.CLOSURE))
	require.Equal(t, 1, countOp(t, prog, bytecode.CALL))
}

func TestCompileNonCapturingFunctionSkipsClosure(t *testing.T) {
	prog := mustCompile(t, `
		var f = fn (a, b) { return a + b; };
		return f(1, 2);
	`)
	require.Equal(t, 1, countOp(t, prog, bytecode.FUNCTION))
	require.Equal(t, 0, countOp(t, prog, bytecode.CLOSURE))
}

func TestCompileNestedClosureUsesOuterUpvalue(t *testing.T) {
	prog := mustCompile(t, `
		var make = fn (x) {
			return fn () {
				return fn () { return x; };
			};
		};
		return make(1)()();
	`)
	require.Equal(t, 3, countOp(t, prog, bytecode.FUNCTION))
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.CLOSURE), 2)
}

func TestCompileArrayAndHashmapLiterals(t *testing.T) {
	prog := mustCompile(t, `
		var a = [1, 2, 3];
		var m = {"k": 1};
		a[0] = a[1];
		return m.k;
	`)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.NEWARR), 2)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.ARRSET), 4)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.ARRGET), 2)
}

func TestCompileCompoundAssignment(t *testing.T) {
	prog := mustCompile(t, "var x = 1; x += 2; return x;")
	require.Equal(t, 1, countOp(t, prog, bytecode.ADD))
}

func TestCompileIncDecPrefixAndPostfix(t *testing.T) {
	prog := mustCompile(t, "var x = 1; x++; --x; return x;")
	require.Equal(t, 1, countOp(t, prog, bytecode.INC))
	require.Equal(t, 1, countOp(t, prog, bytecode.DEC))
}

func TestCompileTernary(t *testing.T) {
	prog := mustCompile(t, "var x = 1; return x > 0 ? 1 : -1;")
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JZE), 1)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JMP), 1)
}

func TestCompileShortCircuitOperators(t *testing.T) {
	prog := mustCompile(t, "var a = 1; var b = 0; return a && b || a;")
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JZE), 1)
	require.GreaterOrEqual(t, countOp(t, prog, bytecode.JNZ), 1)
}

func TestCompileArgRefEmitsNthArg(t *testing.T) {
	prog := mustCompile(t, "return #0;")
	require.Equal(t, 1, countOp(t, prog, bytecode.NTHARG))
}

func TestAssignToUpvalueIsCompileError(t *testing.T) {
	chunk, err := parser.New("test", []byte(`
		var make = fn () {
			var x = 1;
			return fn () { x = 2; return x; };
		};
		return make();
	`)).Parse()
	require.NoError(t, err)
	_, err = compiler.Compile(chunk)
	require.Error(t, err)
}

func TestRegisterCountReportedInHeader(t *testing.T) {
	prog := mustCompile(t, "var a = 1; var b = 2; var c = 3; return a + b + c;")
	require.Positive(t, prog.Header.Nregs)
}

func TestDisassembleCompiledProgramDoesNotPanic(t *testing.T) {
	prog := mustCompile(t, `
		var f = fn (n) {
			if (n <= 1) { return 1; }
			return n * f(n - 1);
		};
		return f(5);
	`)
	out := bytecode.Disassemble(prog)
	require.Contains(t, out, "function")
	require.Contains(t, out, "funcdef")
}
