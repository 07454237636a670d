package value

import (
	"fmt"
	"math"
	"unsafe"
)

// Class is a heap object's class descriptor: instance size is implicit in
// Go (each concrete object type is its own struct), but the rest of the
// contract spelled out by the spec is explicit here.
type Class struct {
	UID  Tag
	Name string

	// Equal reports whether a and b, both of this class, are equal beyond
	// pointer identity. May be nil, in which case only pointer identity
	// counts.
	Equal func(a, b Heap) bool

	// Compare orders a and b, both of this class. ok is false if the class
	// does not support ordering.
	Compare func(a, b Heap) (n int, ok bool)

	// Hash returns a content hash for o. ok is false if the class's values
	// are not hashable.
	Hash func(o Heap) (h uint64, ok bool)

	// Destroy releases any resources/retained values held by o. It must not
	// free o itself.
	Destroy func(o Heap)
}

// Object is the common header embedded at the start of every heap object.
type Object struct {
	class *Class
	refs  int32
}

func (o *Object) header() *Object { return o }

// Class returns the class descriptor of the underlying concrete object.
func (o *Object) Class() *Class { return o.class }

// Refs returns the current reference count, for diagnostics and tests.
func (o *Object) Refs() int32 { return o.refs }

func newObject(class *Class) Object { return Object{class: class, refs: 1} }

// Retain increments v's reference count if it is a heap object, and
// returns v unchanged otherwise.
func Retain(v Value) Value {
	if h := v.Heap(); h != nil {
		h.header().refs++
	}
	return v
}

// Release decrements v's reference count if it is a heap object, invoking
// the class destructor and reclaiming any retained children when it drops
// to zero. Children are released through an explicit worklist rather than
// by recursive calls, so releasing a long chain of nested arrays or
// hashmaps cannot overflow the Go call stack.
func Release(v Value) {
	h := v.Heap()
	if h == nil {
		return
	}
	pending := []Heap{h}
	for len(pending) > 0 {
		n := len(pending) - 1
		cur := pending[n]
		pending = pending[:n]

		hdr := cur.header()
		hdr.refs--
		if hdr.refs > 0 {
			continue
		}
		if hdr.refs < 0 {
			panic(fmt.Sprintf("%s: release of object with non-positive refcount", hdr.class.Name))
		}
		children := drainChildren(cur)
		if hdr.class.Destroy != nil {
			hdr.class.Destroy(cur)
		}
		pending = append(pending, children...)
	}
}

// childObjects is implemented by heap types that hold other heap objects,
// so Release can walk them without recursing.
type childObjects interface {
	children() []Heap
}

func drainChildren(h Heap) []Heap {
	if co, ok := h.(childObjects); ok {
		return co.children()
	}
	return nil
}

// Identical reports whether a and b are the same Go value: for objects,
// pointer identity; for everything else, bitwise value identity.
func Identical(a, b Value) bool {
	if a.tag != b.tag || a.flags != b.flags {
		return false
	}
	if a.IsObject() {
		return a.obj == b.obj
	}
	return a.bits == b.bits && a.weak == b.weak
}

// Equal implements the spec's object equality rule: values of different
// underlying types are never equal; two objects of the same class are
// equal if they are pointer-identical or the class's Equal predicate says
// so; everything else compares by value.
func Equal(a, b Value) (bool, error) {
	if a.tag != b.tag {
		return false, nil
	}
	switch a.tag {
	case TagNil:
		return true, nil
	case TagBool:
		return a.bits == b.bits, nil
	case TagNumber:
		if a.IsFloat() || b.IsFloat() {
			return a.AsFloat64() == b.AsFloat64(), nil
		}
		return a.AsInt() == b.AsInt(), nil
	case TagUserinfo:
		if a.IsObject() != b.IsObject() {
			return false, nil
		}
		if !a.IsObject() {
			return a.weak == b.weak, nil
		}
	}
	ha, hb := a.Heap(), b.Heap()
	if ha == nil || hb == nil {
		return false, fmt.Errorf("cannot compare %s values for equality", a.Type())
	}
	ca, cb := ha.header().class, hb.header().class
	if ca != cb {
		return false, nil
	}
	if ha == hb {
		return true, nil
	}
	if ca.Equal != nil {
		return ca.Equal(ha, hb), nil
	}
	return false, nil
}

// Compare orders a and b. It returns an error if the values are not
// comparable: the spec requires both operands be numbers, or both be
// objects of a common class that provides Compare.
func Compare(a, b Value) (int, error) {
	if a.tag == TagNumber && b.tag == TagNumber {
		if a.IsFloat() || b.IsFloat() {
			x, y := a.AsFloat64(), b.AsFloat64()
			switch {
			case x < y:
				return -1, nil
			case x > y:
				return 1, nil
			default:
				return 0, nil
			}
		}
		x, y := a.AsInt(), b.AsInt()
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	}

	ha, hb := a.Heap(), b.Heap()
	if ha == nil || hb == nil {
		return 0, fmt.Errorf("%s and %s are not comparable", a.Type(), b.Type())
	}
	ca, cb := ha.header().class, hb.header().class
	if ca != cb || ca.Compare == nil {
		return 0, fmt.Errorf("%s and %s are not comparable", a.Type(), b.Type())
	}
	n, ok := ca.Compare(ha, hb)
	if !ok {
		return 0, fmt.Errorf("%s values are not ordered", a.Type())
	}
	return n, nil
}

// Hash returns a content hash for v, suitable for use as a hashmap key. It
// fails for array and hashmap values, which the spec does not list among
// the hashable types. Function values, and userinfo objects whose class
// defines neither Hash nor Equal, hash by identity.
func Hash(v Value) (uint64, error) {
	switch v.tag {
	case TagNil:
		return 0xcbf29ce484222325, nil
	case TagBool:
		if v.AsBool() {
			return 0x9e3779b97f4a7c15, nil
		}
		return 0x9e3779b97f4a7c00, nil
	case TagNumber:
		// Always hash through the float64 representation: Equal treats an
		// int and a float of the same mathematical value as equal keys, so
		// their hashes must match too.
		return hashUint64(math.Float64bits(v.AsFloat64())), nil
	case TagUserinfo:
		if !v.IsObject() {
			return hashUint64(uint64(v.weak)), nil
		}
	}
	h := v.Heap()
	if h == nil {
		return 0, fmt.Errorf("%s value is not hashable", v.Type())
	}
	cls := h.header().class
	if cls.Hash == nil {
		if (v.tag == TagFunction || v.tag == TagUserinfo) && cls.Equal == nil {
			return hashUint64(uint64(uintptr(unsafe.Pointer(h.header())))), nil
		}
		return 0, fmt.Errorf("%s value is not hashable", v.Type())
	}
	hv, ok := cls.Hash(h)
	if !ok {
		return 0, fmt.Errorf("%s value is not hashable", v.Type())
	}
	return hv, nil
}

// hashUint64 is a 64-bit mixer (splitmix64 finalizer) used for small fixed
// payloads (numbers, pointers).
func hashUint64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
