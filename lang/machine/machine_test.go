package machine_test

import (
	"math"
	"testing"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/compiler"
	"github.com/mbassey/corvid/lang/machine"
	"github.com/mbassey/corvid/lang/parser"
	"github.com/mbassey/corvid/lang/value"
	"github.com/stretchr/testify/require"
)

// mapGlobals is a minimal machine.Globals backed by a map, following the
// same retain-on-store/release-previous contract as value.HashmapObject.Set.
type mapGlobals struct {
	vars map[string]value.Value
}

func newMapGlobals() *mapGlobals { return &mapGlobals{vars: map[string]value.Value{}} }

func (g *mapGlobals) Lookup(name string) (value.Value, bool) {
	v, ok := g.vars[name]
	return v, ok
}

func (g *mapGlobals) Store(name string, v value.Value) {
	old, had := g.vars[name]
	g.vars[name] = value.Retain(v)
	if had {
		value.Release(old)
	}
}

// toplevel wraps a compiled top-level program into the callable Value the
// VM expects, the way the root corvid package's program loader does.
func toplevel(prog *bytecode.Program) value.Value {
	return value.NewScriptFunction("", prog, 0, len(prog.Code), int(prog.Header.Argc), int(prog.Header.Nregs), 0, true, nil)
}

func run(t *testing.T, src string, args ...value.Value) (value.Value, error) {
	t.Helper()
	chunk, err := parser.New("test", []byte(src)).Parse()
	require.NoError(t, err)
	prog, err := compiler.Compile(chunk)
	require.NoError(t, err)

	m := machine.New(newMapGlobals())
	return m.Call(toplevel(prog), args)
}

func TestArithmeticPrecedence(t *testing.T) {
	v, err := run(t, "return 1 + 2 * 3;")
	require.NoError(t, err)
	require.Equal(t, int64(7), v.AsInt())
}

func TestStringConcatenation(t *testing.T) {
	v, err := run(t, `var s = "foo" .. "bar"; return s;`)
	require.NoError(t, err)
	s, ok := value.AsString(v)
	require.True(t, ok)
	require.Equal(t, "foobar", s.Value())
}

func TestCallClosure(t *testing.T) {
	v, err := run(t, `var f = fn (x) { return x * x; }; return f(5);`)
	require.NoError(t, err)
	require.Equal(t, int64(25), v.AsInt())
}

func TestHashmapLiteralIndexReadWrite(t *testing.T) {
	v, err := run(t, `var a = {}; a[0] = 10; a[1] = 20; return a[0] + a[1];`)
	require.NoError(t, err)
	require.Equal(t, int64(30), v.AsInt())
}

func TestArrayLiteralGrowthAndOutOfRangeRead(t *testing.T) {
	v, err := run(t, `
		var a = [1, 2, 3];
		a[5] = 6;
		return a[4];
	`)
	require.NoError(t, err)
	require.True(t, v.IsNil())
}

func TestIntegerDivisionByZeroRaisesRuntimeErrorWithStack(t *testing.T) {
	_, err := run(t, "return 1 / 0;")
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Message, "division by zero")
	require.NotEmpty(t, rerr.Stack)
}

func TestFloatDivisionByZeroProducesInf(t *testing.T) {
	v, err := run(t, "return 1.0 / 0.0;")
	require.NoError(t, err)
	require.True(t, v.IsFloat())
	require.True(t, v.AsFloat() > 0)
	require.True(t, math.IsInf(v.AsFloat(), 1))
}

func TestArithmeticPromotionRule(t *testing.T) {
	v, err := run(t, "return 1 + 2.5;")
	require.NoError(t, err)
	require.True(t, v.IsFloat())
	require.Equal(t, 3.5, v.AsFloat())
}

func TestClosureCapturesUpvalueByValueAtCreationTime(t *testing.T) {
	v, err := run(t, `
		var x = 10;
		var f = fn () { return x; };
		x = 20;
		return f();
	`)
	require.NoError(t, err)
	require.Equal(t, int64(10), v.AsInt())
}

func TestNestedClosureChainSharesCapturedValue(t *testing.T) {
	v, err := run(t, `
		var make = fn (x) {
			return fn () {
				return fn () { return x; };
			};
		};
		return make(7)()();
	`)
	require.NoError(t, err)
	require.Equal(t, int64(7), v.AsInt())
}

func TestSelfRecursiveClosure(t *testing.T) {
	v, err := run(t, `
		var f = fn (n) {
			if (n <= 1) { return 1; }
			return n * f(n - 1);
		};
		return f(5);
	`)
	require.NoError(t, err)
	require.Equal(t, int64(120), v.AsInt())
}

func TestGlobalAssignmentAndReadAcrossStatements(t *testing.T) {
	v, err := run(t, "counter = 1; counter = counter + 1; return counter;")
	require.NoError(t, err)
	require.Equal(t, int64(2), v.AsInt())
}

func TestUnresolvedGlobalIsRuntimeError(t *testing.T) {
	_, err := run(t, "return undefined_name;")
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Contains(t, rerr.Message, "global symbol not found")
}

func TestCallingNonFunctionIsRuntimeError(t *testing.T) {
	_, err := run(t, "var x = 1; return x();")
	require.Error(t, err)
}

func TestComparisonOperators(t *testing.T) {
	v, err := run(t, "return 1 < 2 && 2 <= 2 && 3 > 2 && 3 >= 3 && 1 == 1 && 1 != 2;")
	require.NoError(t, err)
	require.True(t, v.AsBool())
}

func TestSizeofAndTypeof(t *testing.T) {
	v, err := run(t, `return sizeof("hello") + sizeof([1, 2, 3]);`)
	require.NoError(t, err)
	require.Equal(t, int64(8), v.AsInt())

	tv, err := run(t, `return typeof(1);`)
	require.NoError(t, err)
	s, ok := value.AsString(tv)
	require.True(t, ok)
	require.Equal(t, "number", s.Value())
}

func TestArgRefReadsCallTimeArgument(t *testing.T) {
	v, err := run(t, `
		var f = fn (a, b) { return #0 + #1; };
		return f(3, 4);
	`)
	require.NoError(t, err)
	require.Equal(t, int64(7), v.AsInt())
}

func TestArgRefSurvivesParamReassignment(t *testing.T) {
	v, err := run(t, `
		var f = fn (a) {
			a = 99;
			return #0;
		};
		return f(3);
	`)
	require.NoError(t, err)
	require.Equal(t, int64(3), v.AsInt())
}

func TestRetainReleaseRoundTripLeavesRefcountUnchanged(t *testing.T) {
	s := value.NewString("hello")
	before := s.Heap().(interface{ Refs() int32 }).Refs()
	value.Release(value.Retain(s))
	after := s.Heap().(interface{ Refs() int32 }).Refs()
	require.Equal(t, before, after)
}
