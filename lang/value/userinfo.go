package value

import (
	"fmt"
	"unsafe"
)

// UserinfoObject is the strong-userinfo variant: an opaque host pointer
// that participates in reference counting via a host-supplied class
// descriptor. The weak variant carries no object at all — it is just a
// raw pointer stashed in Value.weak under TagUserinfo with FlagObject
// unset, so it never touches the heap or the retain/release machinery.
type UserinfoObject struct {
	Object

	Ptr  unsafe.Pointer
	Name string
}

// NewUserinfo wraps a host pointer in a strong-userinfo Value. class
// supplies the optional equality/hash/destroy behavior for this kind of
// userinfo; it may be nil, in which case only pointer identity applies.
func NewUserinfo(name string, ptr unsafe.Pointer, class *Class) Value {
	cls := class
	if cls == nil {
		cls = userinfoClass
	}
	u := &UserinfoObject{Object: newObject(cls), Ptr: ptr, Name: name}
	return fromHeap(TagUserinfo, u)
}

// NewWeakUserinfo wraps a host pointer in a weak-userinfo Value: it is not
// heap-managed and Retain/Release are no-ops on it.
func NewWeakUserinfo(ptr unsafe.Pointer) Value {
	return Value{tag: TagUserinfo, weak: uintptr(ptr)}
}

// WeakPointer returns the raw pointer carried by a weak-userinfo value.
// The caller must check Tag() == TagUserinfo && !IsObject().
func (v Value) WeakPointer() unsafe.Pointer { return unsafe.Pointer(v.weak) }

// AsUserinfo unwraps v's UserinfoObject. ok is false if v is not a
// strong-userinfo value.
func AsUserinfo(v Value) (*UserinfoObject, bool) {
	if v.tag != TagUserinfo || !v.IsObject() {
		return nil, false
	}
	u, ok := v.Heap().(*UserinfoObject)
	return u, ok
}

// userinfoClass is the default class descriptor for a strong-userinfo
// value created without a host-supplied class: identity equality only,
// no destructor (the host still owns the pointee).
var userinfoClass = &Class{
	UID:  TagUserinfo,
	Name: "userinfo",
}

func (u *UserinfoObject) String() string {
	if u.Name != "" {
		return fmt.Sprintf("userinfo(%s: %p)", u.Name, u.Ptr)
	}
	return fmt.Sprintf("userinfo(%p)", u.Ptr)
}
