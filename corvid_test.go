package corvid_test

import (
	"bytes"
	"testing"

	corvid "github.com/mbassey/corvid"
	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/value"
	"github.com/stretchr/testify/require"
)

func TestLoadSourceAndCallFunction(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	fn, err := ctx.LoadSource("inline", []byte("return 2 + 3;"))
	require.NoError(t, err)

	result, err := ctx.CallFunction(fn, nil)
	require.NoError(t, err)
	require.Equal(t, int64(5), result.AsInt())
	require.Nil(t, ctx.LastError())
}

func TestCompileExpression(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	fn, err := ctx.CompileExpression(`"a" .. "b"`)
	require.NoError(t, err)

	result, err := ctx.CallFunction(fn, nil)
	require.NoError(t, err)
	s, ok := value.AsString(result)
	require.True(t, ok)
	require.Equal(t, "ab", s.Value())
}

func TestSyntaxErrorReportsKindAndPosition(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	_, err := ctx.LoadSource("bad", []byte("return 1 + ;"))
	require.Error(t, err)

	cerr := ctx.LastError()
	require.NotNil(t, cerr)
	require.Equal(t, corvid.Syntax, cerr.Kind)
}

func TestAssignToFreeVariableFromClosureIsSemanticError(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	_, err := ctx.LoadSource("free-var-write", []byte(`
		var c = 0;
		var inc = fn () { c = c + 1; return c; };
		inc(); inc();
		return inc();
	`))
	require.Error(t, err)

	cerr := ctx.LastError()
	require.NotNil(t, cerr)
	require.Equal(t, corvid.Semantic, cerr.Kind)
}

func TestRuntimeErrorCapturesStackTrace(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	fn, err := ctx.LoadSource("boom", []byte(`
		var div = fn (a, b) { return a / b; };
		return div(1, 0);
	`))
	require.NoError(t, err)

	_, err = ctx.CallFunction(fn, nil)
	require.Error(t, err)

	cerr := ctx.LastError()
	require.NotNil(t, cerr)
	require.Equal(t, corvid.Runtime, cerr.Kind)
	require.NotEmpty(t, ctx.StackTrace())
}

func TestRegisterNativeIsCallableFromScript(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	ctx.RegisterNative("double", func(args []value.Value) (value.Value, error) {
		return value.Int(args[0].AsInt() * 2), nil
	})

	fn, err := ctx.LoadSource("uses-native", []byte("return double(21);"))
	require.NoError(t, err)

	result, err := ctx.CallFunction(fn, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), result.AsInt())
}

func TestSetGlobalSeedsDataVisibleToScript(t *testing.T) {
	ctx := corvid.New()
	defer ctx.Close()

	ctx.SetGlobal("answer", value.Int(42))

	fn, err := ctx.LoadSource("reads-global", []byte("return answer;"))
	require.NoError(t, err)

	result, err := ctx.CallFunction(fn, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), result.AsInt())
}

func TestLoadBinaryRoundTripsThroughEncodeProgram(t *testing.T) {
	src := corvid.New()
	defer src.Close()

	fn, err := src.LoadSource("for-encoding", []byte("return 41 + 1;"))
	require.NoError(t, err)
	fo, ok := value.AsFunction(fn)
	require.True(t, ok)
	prog, ok := fo.Program.(*bytecode.Program)
	require.True(t, ok)

	var buf bytes.Buffer
	require.NoError(t, bytecode.EncodeProgram(&buf, prog))

	dst := corvid.New()
	defer dst.Close()

	loaded, err := dst.LoadBinary(&buf)
	require.NoError(t, err)

	result, err := dst.CallFunction(loaded, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), result.AsInt())
}
