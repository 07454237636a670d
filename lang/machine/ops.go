package machine

import (
	"fmt"
	"math"

	"github.com/mbassey/corvid/lang/bytecode"
	"github.com/mbassey/corvid/lang/value"
)

// asInt reports whether v is an integer number, returning its payload.
func asInt(v value.Value) (int64, bool) {
	if v.Tag() != value.TagNumber || v.IsFloat() {
		return 0, false
	}
	return v.AsInt(), true
}

// binaryArith implements ADD/SUB/MUL/DIV/MOD and the bitwise ops. The
// promotion rule is float contaminates: if either operand is a float,
// arithmetic ops produce a float result; the bitwise ops require both
// operands be integers regardless (the language has no bitwise-on-float
// operator to promote to).
func (m *Machine) binaryArith(op bytecode.Opcode, x, y value.Value) (value.Value, error) {
	switch op {
	case bytecode.AND, bytecode.OR, bytecode.XOR, bytecode.SHL, bytecode.SHR:
		xi, ok1 := asInt(x)
		yi, ok2 := asInt(y)
		if !ok1 || !ok2 {
			return value.Nil, m.runtimeErrorf("bitwise operator requires integer operands, got %s and %s", x.Type(), y.Type())
		}
		switch op {
		case bytecode.AND:
			return value.Int(xi & yi), nil
		case bytecode.OR:
			return value.Int(xi | yi), nil
		case bytecode.XOR:
			return value.Int(xi ^ yi), nil
		case bytecode.SHL:
			return value.Int(xi << uint64(yi)), nil
		case bytecode.SHR:
			return value.Int(xi >> uint64(yi)), nil
		}
	}

	if x.Tag() != value.TagNumber || y.Tag() != value.TagNumber {
		return value.Nil, m.runtimeErrorf("arithmetic operator requires number operands, got %s and %s", x.Type(), y.Type())
	}

	if x.IsFloat() || y.IsFloat() {
		xf, yf := x.AsFloat64(), y.AsFloat64()
		switch op {
		case bytecode.ADD:
			return value.Float(xf + yf), nil
		case bytecode.SUB:
			return value.Float(xf - yf), nil
		case bytecode.MUL:
			return value.Float(xf * yf), nil
		case bytecode.DIV:
			return value.Float(xf / yf), nil
		case bytecode.MOD:
			return value.Float(math.Mod(xf, yf)), nil
		}
	}

	xi, yi := x.AsInt(), y.AsInt()
	switch op {
	case bytecode.ADD:
		return value.Int(xi + yi), nil
	case bytecode.SUB:
		return value.Int(xi - yi), nil
	case bytecode.MUL:
		return value.Int(xi * yi), nil
	case bytecode.DIV:
		if yi == 0 {
			return value.Nil, m.runtimeErrorf("integer division by zero")
		}
		return value.Int(xi / yi), nil
	case bytecode.MOD:
		if yi == 0 {
			return value.Nil, m.runtimeErrorf("integer modulo by zero")
		}
		return value.Int(xi % yi), nil
	}
	return value.Nil, m.runtimeErrorf("illegal arithmetic opcode %s", op)
}

// negate implements unary NEG, preserving int/float.
func (m *Machine) negate(v value.Value) (value.Value, error) {
	if v.Tag() != value.TagNumber {
		return value.Nil, m.runtimeErrorf("cannot negate value of type %s", v.Type())
	}
	if v.IsFloat() {
		return value.Float(-v.AsFloat()), nil
	}
	return value.Int(-v.AsInt()), nil
}

// incdec implements the in-place INC/DEC opcodes, preserving int/float.
func (m *Machine) incdec(op bytecode.Opcode, v value.Value) (value.Value, error) {
	if v.Tag() != value.TagNumber {
		return value.Nil, m.runtimeErrorf("cannot increment/decrement value of type %s", v.Type())
	}
	delta := 1.0
	if op == bytecode.DEC {
		delta = -1.0
	}
	if v.IsFloat() {
		return value.Float(v.AsFloat() + delta), nil
	}
	return value.Int(v.AsInt() + int64(delta)), nil
}

// sizeOf implements SIZEOF: the element/byte count of strings, arrays,
// and hashmaps.
func sizeOf(v value.Value) (int, error) {
	switch v.Tag() {
	case value.TagString:
		s, _ := value.AsString(v)
		return s.Len(), nil
	case value.TagArray:
		a, _ := value.AsArray(v)
		return a.Len(), nil
	case value.TagHashmap:
		h, _ := value.AsHashmap(v)
		return h.Len(), nil
	default:
		return 0, fmt.Errorf("sizeof: unsupported type %s", v.Type())
	}
}

// arrGet implements ARRGET, dispatching on the container's actual tag
// rather than the NEWARR kind it was constructed with: arrays require an
// integer key and yield nil out of range; hashmaps accept any hashable
// key.
func (m *Machine) arrGet(container, key value.Value) (value.Value, error) {
	switch container.Tag() {
	case value.TagArray:
		arr, _ := value.AsArray(container)
		idx, ok := asInt(key)
		if !ok {
			return value.Nil, m.runtimeErrorf("array index must be an integer, got %s", key.Type())
		}
		if idx < 0 || idx >= int64(arr.Len()) {
			return value.Nil, nil
		}
		return arr.Get(int(idx)), nil
	case value.TagHashmap:
		m2, _ := value.AsHashmap(container)
		v, found, err := m2.Get(key)
		if err != nil {
			return value.Nil, m.wrapErr(err)
		}
		if !found {
			return value.Nil, nil
		}
		return v, nil
	default:
		return value.Nil, m.runtimeErrorf("cannot index value of type %s", container.Type())
	}
}

// arrSet implements ARRSET, the write-side counterpart of arrGet.
// Writes beyond an array's length grow it; a non-integer key against an
// array is a runtime error rather than a silent hashmap fallback, since
// arrays are dense-integer-only by the data model — a source program
// wanting arbitrary keys must construct a hashmap literal instead.
func (m *Machine) arrSet(container, key, val value.Value) error {
	switch container.Tag() {
	case value.TagArray:
		arr, _ := value.AsArray(container)
		idx, ok := asInt(key)
		if !ok {
			return m.runtimeErrorf("array index must be an integer, got %s", key.Type())
		}
		if idx < 0 {
			return m.runtimeErrorf("negative array index %d", idx)
		}
		arr.SetGrow(int(idx), val)
		return nil
	case value.TagHashmap:
		h, _ := value.AsHashmap(container)
		if err := h.Set(key, val); err != nil {
			return m.wrapErr(err)
		}
		return nil
	default:
		return m.runtimeErrorf("cannot index-assign value of type %s", container.Type())
	}
}
