// Package value implements the tagged-union runtime value representation
// and the reference-counted heap object model described by the language
// core: every Value is a 16-bit-tagged union (an 8-bit tag plus an 8-bit
// flag set) over a small payload, and every heap-allocated payload begins
// with a {class, refcount} header that Retain/Release operate on uniformly.
package value

import (
	"fmt"
	"math"
)

// Tag identifies the dynamic type of a Value, independent of its Flags.
type Tag uint8

const (
	TagNil Tag = iota
	TagBool
	TagNumber
	TagString
	TagArray
	TagHashmap
	TagFunction
	TagUserinfo
)

func (t Tag) String() string {
	switch t {
	case TagNil:
		return "nil"
	case TagBool:
		return "bool"
	case TagNumber:
		return "number"
	case TagString:
		return "string"
	case TagArray:
		return "array"
	case TagHashmap:
		return "hashmap"
	case TagFunction:
		return "function"
	case TagUserinfo:
		return "userinfo"
	default:
		return fmt.Sprintf("tag(%d)", uint8(t))
	}
}

// Flag is a bit in a Value's flag set. OBJECT marks a payload as a managed
// heap object pointer; FLOAT marks a TagNumber payload as a double rather
// than an integer.
type Flag uint8

const (
	FlagObject Flag = 1 << iota
	FlagFloat
)

// Heap is implemented by every reference-counted heap object
// (*StringObject, *ArrayObject, *HashmapObject, *FunctionObject,
// *UserinfoObject). It exposes the common {class, refcount} header.
type Heap interface {
	header() *Object
}

// Value is the tagged union manipulated by the compiler and the VM. The
// zero Value is Nil.
type Value struct {
	tag    Tag
	flags  Flag
	bits   uint64 // bool (0/1), int64 bits, or float64 bits
	obj    Heap   // non-nil iff flags&FlagObject != 0
	weak   uintptr
}

// Nil is the sole nil value.
var Nil = Value{tag: TagNil}

// True and False are the two bool values.
var (
	True  = Value{tag: TagBool, bits: 1}
	False = Value{tag: TagBool, bits: 0}
)

// Bool returns the canonical bool Value for b.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// Int returns an integer number Value.
func Int(n int64) Value { return Value{tag: TagNumber, bits: uint64(n)} }

// Float returns a floating point number Value.
func Float(f float64) Value { return Value{tag: TagNumber, flags: FlagFloat, bits: math.Float64bits(f)} }

// fromHeap wraps a freshly allocated heap object (refcount already 1) in a
// Value of the given tag.
func fromHeap(tag Tag, h Heap) Value {
	return Value{tag: tag, flags: FlagObject, obj: h}
}

// Tag reports the value's dynamic tag.
func (v Value) Tag() Tag { return v.tag }

// IsObject reports whether the value's payload is a managed heap object.
func (v Value) IsObject() bool { return v.flags&FlagObject != 0 }

// IsFloat reports whether a TagNumber value holds a float64.
func (v Value) IsFloat() bool { return v.flags&FlagFloat != 0 }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.tag == TagNil }

// AsBool returns the bool payload. The caller must check Tag() == TagBool.
func (v Value) AsBool() bool { return v.bits != 0 }

// AsInt returns the integer payload. The caller must check Tag() ==
// TagNumber && !IsFloat().
func (v Value) AsInt() int64 { return int64(v.bits) }

// AsFloat returns the float payload. The caller must check Tag() ==
// TagNumber && IsFloat().
func (v Value) AsFloat() float64 { return math.Float64frombits(v.bits) }

// AsFloat64 returns the numeric payload widened to float64 regardless of
// whether it is stored as int or float.
func (v Value) AsFloat64() float64 {
	if v.IsFloat() {
		return v.AsFloat()
	}
	return float64(v.AsInt())
}

// Heap returns the managed heap object payload, or nil if v is not an
// object.
func (v Value) Heap() Heap {
	if v.flags&FlagObject == 0 {
		return nil
	}
	return v.obj
}

// Type returns the short type name used by sizeof/typeof and error
// messages.
func (v Value) Type() string {
	switch {
	case v.tag == TagUserinfo && v.flags&FlagObject == 0:
		return "weak-userinfo"
	case v.tag == TagUserinfo:
		return "userinfo"
	default:
		return v.tag.String()
	}
}

// Truth reports the value's truthiness for conditional branches: nil,
// false, and the numeric zero values are falsy; everything else,
// including empty strings/arrays/hashmaps, is truthy.
func (v Value) Truth() bool {
	switch v.tag {
	case TagNil:
		return false
	case TagBool:
		return v.bits != 0
	case TagNumber:
		if v.IsFloat() {
			return v.AsFloat() != 0
		}
		return v.AsInt() != 0
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.tag {
	case TagNil:
		return "nil"
	case TagBool:
		return fmt.Sprintf("%t", v.AsBool())
	case TagNumber:
		if v.IsFloat() {
			return fmt.Sprintf("%g", v.AsFloat())
		}
		return fmt.Sprintf("%d", v.AsInt())
	case TagString:
		s, _ := AsString(v)
		return s.Value()
	case TagArray:
		return fmt.Sprintf("array(%p)", v.obj)
	case TagHashmap:
		return fmt.Sprintf("hashmap(%p)", v.obj)
	case TagFunction:
		f, _ := AsFunction(v)
		return fmt.Sprintf("function: %s", f.DisplayName())
	case TagUserinfo:
		if v.flags&FlagObject == 0 {
			return fmt.Sprintf("weak-userinfo(%#x)", v.weak)
		}
		return fmt.Sprintf("userinfo(%p)", v.obj)
	default:
		return "?"
	}
}
