package value

// StringObject is an immutable byte sequence. The content hash is computed
// lazily and cached, since most strings are hashed at most once (as a
// hashmap key) or never.
type StringObject struct {
	Object

	data   string
	hash   uint64
	hashed bool
}

var stringClass = &Class{
	UID:  TagString,
	Name: "string",
	Equal: func(a, b Heap) bool {
		return a.(*StringObject).data == b.(*StringObject).data
	},
	Compare: func(a, b Heap) (int, bool) {
		x, y := a.(*StringObject).data, b.(*StringObject).data
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	},
	Hash: func(h Heap) (uint64, bool) {
		s := h.(*StringObject)
		if !s.hashed {
			s.hash = hashBytes(s.data)
			s.hashed = true
		}
		return s.hash, true
	},
}

// NewString returns a string Value wrapping s.
func NewString(s string) Value {
	return fromHeap(TagString, &StringObject{Object: newObject(stringClass), data: s})
}

// AsString unwraps v's StringObject. ok is false if v is not a string.
func AsString(v Value) (*StringObject, bool) {
	if v.tag != TagString {
		return nil, false
	}
	s, ok := v.Heap().(*StringObject)
	return s, ok
}

// Value returns the Go string content.
func (s *StringObject) Value() string { return s.data }

// Len returns the byte length of the string.
func (s *StringObject) Len() int { return len(s.data) }

func (s *StringObject) String() string { return s.data }

// hashBytes is 64-bit FNV-1a. Its offset basis is also the fixed hash that
// Hash returns for nil; bool and number hashes use other constants.
func hashBytes(s string) uint64 {
	const (
		offset = 0xcbf29ce484222325
		prime  = 0x100000001b3
	)
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
