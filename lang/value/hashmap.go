package value

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// hashmapEntry is one key/value pair in a bucket. Buckets are short slices
// rather than single entries because the outer table is keyed by content
// hash, not by the key itself: distinct keys may collide.
type hashmapEntry struct {
	key Value
	val Value
}

// HashmapObject is an open-addressing table over any hashable Value,
// built on top of swiss.Map for its proven non-degrading lookup behavior
// after heavy deletion. swiss.Map alone only gives Go's built-in `==` for
// key comparison, which is pointer identity for heap objects and would
// treat two distinct but content-equal strings as different keys; we work
// around that by keying the outer table on the content hash (via
// value.Hash) and resolving collisions within a bucket using value.Equal.
type HashmapObject struct {
	Object

	buckets *swiss.Map[uint64, []hashmapEntry]
	n       int
}

var hashmapClass = &Class{
	UID:  TagHashmap,
	Name: "hashmap",
	Destroy: func(h Heap) {
		m := h.(*HashmapObject)
		m.buckets = nil
	},
}

// NewHashmap returns an empty hashmap with initial capacity for at least
// size entries.
func NewHashmap(size int) Value {
	m := &HashmapObject{
		Object:  newObject(hashmapClass),
		buckets: swiss.NewMap[uint64, []hashmapEntry](uint32(size)),
	}
	return fromHeap(TagHashmap, m)
}

// AsHashmap unwraps v's HashmapObject. ok is false if v is not a hashmap.
func AsHashmap(v Value) (*HashmapObject, bool) {
	if v.tag != TagHashmap {
		return nil, false
	}
	m, ok := v.Heap().(*HashmapObject)
	return m, ok
}

// Len returns the number of entries.
func (m *HashmapObject) Len() int { return m.n }

// Get looks up key. found is false if key is absent; err is non-nil if
// key is not hashable.
func (m *HashmapObject) Get(key Value) (v Value, found bool, err error) {
	h, err := Hash(key)
	if err != nil {
		return Nil, false, err
	}
	bucket, ok := m.buckets.Get(h)
	if !ok {
		return Nil, false, nil
	}
	for _, e := range bucket {
		eq, err := Equal(e.key, key)
		if err != nil {
			return Nil, false, err
		}
		if eq {
			return e.val, true, nil
		}
	}
	return Nil, false, nil
}

// Set inserts or overwrites key -> val, retaining both. The previous
// value, if any, is released.
func (m *HashmapObject) Set(key, val Value) error {
	h, err := Hash(key)
	if err != nil {
		return err
	}
	bucket, _ := m.buckets.Get(h)
	for i, e := range bucket {
		eq, err := Equal(e.key, key)
		if err != nil {
			return err
		}
		if eq {
			Release(bucket[i].val)
			bucket[i].val = Retain(val)
			m.buckets.Put(h, bucket)
			return nil
		}
	}
	bucket = append(bucket, hashmapEntry{key: Retain(key), val: Retain(val)})
	m.buckets.Put(h, bucket)
	m.n++
	return nil
}

// SetWeak inserts key -> val without retaining val: val must be a
// TagUserinfo value (weak or strong-but-externally-owned). This is the
// escape hatch for building structures with cycles that would otherwise
// never reach a zero refcount.
func (m *HashmapObject) SetWeak(key, val Value) error {
	if val.Tag() != TagUserinfo {
		return fmt.Errorf("SetWeak: value must be userinfo, got %s", val.Type())
	}
	h, err := Hash(key)
	if err != nil {
		return err
	}
	bucket, _ := m.buckets.Get(h)
	for i, e := range bucket {
		eq, err := Equal(e.key, key)
		if err != nil {
			return err
		}
		if eq {
			Release(bucket[i].val)
			bucket[i].val = val
			m.buckets.Put(h, bucket)
			return nil
		}
	}
	bucket = append(bucket, hashmapEntry{key: Retain(key), val: val})
	m.buckets.Put(h, bucket)
	m.n++
	return nil
}

// Delete removes key, releasing its stored key/value. found reports
// whether key was present.
func (m *HashmapObject) Delete(key Value) (found bool, err error) {
	h, err := Hash(key)
	if err != nil {
		return false, err
	}
	bucket, ok := m.buckets.Get(h)
	if !ok {
		return false, nil
	}
	for i, e := range bucket {
		eq, err := Equal(e.key, key)
		if err != nil {
			return false, err
		}
		if eq {
			Release(e.key)
			Release(e.val)
			bucket = append(bucket[:i], bucket[i+1:]...)
			if len(bucket) == 0 {
				m.buckets.Delete(h)
			} else {
				m.buckets.Put(h, bucket)
			}
			m.n--
			return true, nil
		}
	}
	return false, nil
}

// Iterate calls fn for every entry, in unspecified order, stopping early
// if fn returns false.
func (m *HashmapObject) Iterate(fn func(key, val Value) bool) {
	stop := false
	m.buckets.Iter(func(_ uint64, bucket []hashmapEntry) bool {
		for _, e := range bucket {
			if !fn(e.key, e.val) {
				stop = true
				return true
			}
		}
		return false
	})
	_ = stop
}

func (m *HashmapObject) children() []Heap {
	if m.n == 0 {
		return nil
	}
	out := make([]Heap, 0, m.n*2)
	m.buckets.Iter(func(_ uint64, bucket []hashmapEntry) bool {
		for _, e := range bucket {
			if h := e.key.Heap(); h != nil {
				out = append(out, h)
			}
			if h := e.val.Heap(); h != nil {
				out = append(out, h)
			}
		}
		return false
	})
	return out
}

func (m *HashmapObject) String() string { return fmt.Sprintf("hashmap(%d)", m.n) }
