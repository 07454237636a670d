package value

import "fmt"

// Upvalue is a value captured by a closure at its creation site. Captures
// are by value: the closure owns its own copy, retained independently of
// whatever register or upvalue slot it was copied from.
type Upvalue struct {
	V Value
}

// FunctionObject is either a script function (body lives in a Program's
// word stream) or a native function (body is a Go callable). The two
// variants share one object type because both flow through the same
// TagFunction call sites in the machine; Native is nil for a script
// function and non-nil for a native one.
type FunctionObject struct {
	Object

	Name string

	// Script variant.
	Program    Program
	Offset     int
	Length     int
	Argc       int
	Nregs      int
	SymtabIdx  int
	TopLevel   bool
	Upvalues   []*Upvalue

	// Native variant.
	Native func(args []Value) (Value, error)
}

// Program is the subset of *bytecode.Program a function object needs to
// reference, expressed as an interface so lang/value does not import
// lang/bytecode (which itself will want to reference function values for
// disassembly of FUNCDEF entries).
type Program interface {
	// Words returns the executable word stream a function body is a
	// sub-slice of.
	Words() []uint32
}

var functionClass = &Class{
	UID:  TagFunction,
	Name: "function",
	Destroy: func(h Heap) {
		f := h.(*FunctionObject)
		for _, uv := range f.Upvalues {
			Release(uv.V)
		}
		f.Upvalues = nil
	},
}

// NewScriptFunction wraps a compiled function body into a callable Value.
func NewScriptFunction(name string, prog Program, offset, length, argc, nregs, symtabIdx int, topLevel bool, upvalues []*Upvalue) Value {
	f := &FunctionObject{
		Object:    newObject(functionClass),
		Name:      name,
		Program:   prog,
		Offset:    offset,
		Length:    length,
		Argc:      argc,
		Nregs:     nregs,
		SymtabIdx: symtabIdx,
		TopLevel:  topLevel,
		Upvalues:  upvalues,
	}
	return fromHeap(TagFunction, f)
}

// NewNativeFunction wraps a host callable into a callable Value.
func NewNativeFunction(name string, fn func(args []Value) (Value, error)) Value {
	f := &FunctionObject{Object: newObject(functionClass), Name: name, Native: fn}
	return fromHeap(TagFunction, f)
}

// IsNative reports whether f is a native (host-provided) function.
func (f *FunctionObject) IsNative() bool { return f.Native != nil }

func (f *FunctionObject) children() []Heap {
	if len(f.Upvalues) == 0 {
		return nil
	}
	out := make([]Heap, 0, len(f.Upvalues))
	for _, uv := range f.Upvalues {
		if h := uv.V.Heap(); h != nil {
			out = append(out, h)
		}
	}
	return out
}

// AsFunction unwraps v's FunctionObject. ok is false if v is not a
// function.
func AsFunction(v Value) (*FunctionObject, bool) {
	if v.tag != TagFunction {
		return nil, false
	}
	f, ok := v.Heap().(*FunctionObject)
	return f, ok
}

// DisplayName returns the function's display name, falling back to the
// conventional anonymous-function/top-level names used in stack traces.
func (f *FunctionObject) DisplayName() string {
	switch {
	case f.Name != "":
		return f.Name
	case f.TopLevel:
		return "<main>"
	default:
		return "<lambda>"
	}
}

func (f *FunctionObject) String() string {
	return fmt.Sprintf("function: %s", f.DisplayName())
}
