package bytecode_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	for op := bytecode.NOP; op <= bytecode.LDUPVAL; op++ {
		require.NotContains(t, op.String(), "illegal")
	}
}

func TestMakeDecodeInst(t *testing.T) {
	w := bytecode.MakeInst(bytecode.ADD, 1, 2, 3)
	op, a, b, c := bytecode.DecodeInst(w)
	require.Equal(t, bytecode.ADD, op)
	require.EqualValues(t, 1, a)
	require.EqualValues(t, 2, b)
	require.EqualValues(t, 3, c)
}

func TestMakeDecodeLong(t *testing.T) {
	w := bytecode.MakeLong(bytecode.Opcode(bytecode.STRCONST), 0x00abcdef)
	op, operand := bytecode.DecodeLong(w)
	require.Equal(t, bytecode.Opcode(bytecode.STRCONST), op)
	require.EqualValues(t, 0x00abcdef, operand)
}

func TestMakeDecodeLdsym(t *testing.T) {
	w := bytecode.MakeLdsym(7, 4000)
	dst, sym := bytecode.DecodeLdsym(w)
	require.EqualValues(t, 7, dst)
	require.EqualValues(t, 4000, sym)
}

func TestPackUnpackRegs(t *testing.T) {
	regs := []uint8{1, 2, 3, 4, 5}
	words := bytecode.PackRegs(regs)
	require.Len(t, words, 2) // ceil(5/4)
	got := bytecode.UnpackRegs(words, len(regs))
	require.Equal(t, regs, got)
}

func TestEncodeNamePadsToWordBoundary(t *testing.T) {
	words := bytecode.EncodeName("hi")
	require.Len(t, words, 1) // "hi\0" = 3 bytes, rounds up to 1 word
}

func TestLdconstFloatRoundTrips(t *testing.T) {
	instr, payload := bytecode.MakeLdconstFloat(0, math.Float64bits(3.5))
	op, a, b, _ := bytecode.DecodeInst(instr)
	require.Equal(t, bytecode.LDCONST, op)
	require.EqualValues(t, 0, a)
	require.EqualValues(t, 1, b)
	bits := uint64(payload[0]) | uint64(payload[1])<<32
	require.Equal(t, 3.5, math.Float64frombits(bits))
}

func TestEncodeDecodeProgramRoundTrip(t *testing.T) {
	instr, payload := bytecode.MakeLdconstInt(0, 42)
	code := []bytecode.Word{instr, payload[0], payload[1], bytecode.MakeInst(bytecode.RET, 0, 0, 0)}

	p := &bytecode.Program{
		Header: bytecode.Header{BodyLen: uint32(len(code)), Argc: 0, Nregs: 1, Sym: 2},
		Code:   code,
		Symtab: []*bytecode.SymbolEntry{
			bytecode.NewStrconst("hello"),
			bytecode.NewSymstub("print"),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, bytecode.EncodeProgram(&buf, p))

	got, err := bytecode.DecodeProgram(&buf)
	require.NoError(t, err)
	require.Equal(t, p.Header, got.Header)
	require.Equal(t, p.Code, got.Code)
	require.Len(t, got.Symtab, 2)

	require.Equal(t, bytecode.STRCONST, got.Symtab[0].Kind)
	require.Equal(t, "hello", got.Symtab[0].Name)
	require.True(t, got.Symtab[0].Resolved())

	require.Equal(t, bytecode.SYMSTUB, got.Symtab[1].Kind)
	require.Equal(t, "print", got.Symtab[1].Name)
	require.False(t, got.Symtab[1].Resolved())
}

func TestDisassembleDoesNotPanic(t *testing.T) {
	instr, payload := bytecode.MakeLdconstInt(0, 7)
	code := []bytecode.Word{instr, payload[0], payload[1], bytecode.MakeInst(bytecode.RET, 0, 0, 0)}
	p := &bytecode.Program{Header: bytecode.Header{BodyLen: uint32(len(code))}, Code: code}

	out := bytecode.Disassemble(p)
	require.Contains(t, out, "ldconst")
	require.Contains(t, out, "ret")
}
