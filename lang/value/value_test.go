package value_test

import (
	"testing"
	"unsafe"

	"github.com/mbassey/corvid/lang/value"
	"github.com/stretchr/testify/require"
)

func TestTagString(t *testing.T) {
	for tag := value.TagNil; tag <= value.TagUserinfo; tag++ {
		require.NotEmpty(t, tag.String())
	}
}

func TestTruth(t *testing.T) {
	cases := []struct {
		name string
		v    value.Value
		want bool
	}{
		{"nil", value.Nil, false},
		{"false", value.False, false},
		{"true", value.True, true},
		{"zero int", value.Int(0), false},
		{"nonzero int", value.Int(1), true},
		{"zero float", value.Float(0), false},
		{"nonzero float", value.Float(0.5), true},
		{"empty string", value.NewString(""), true},
		{"empty array", value.NewArray(nil), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, c.v.Truth())
		})
	}
}

func TestEqualNumberPromotion(t *testing.T) {
	eq, err := value.Equal(value.Int(1), value.Float(1.0))
	require.NoError(t, err)
	require.True(t, eq, "int 1 and float 1.0 must compare equal")

	eq, err = value.Equal(value.Int(1), value.Float(1.5))
	require.NoError(t, err)
	require.False(t, eq)
}

func TestHashNumberPromotionConsistentWithEqual(t *testing.T) {
	// A fundamental hashmap invariant: values that Equal treats as equal
	// must hash equal too.
	hi, err := value.Hash(value.Int(1))
	require.NoError(t, err)
	hf, err := value.Hash(value.Float(1.0))
	require.NoError(t, err)
	require.Equal(t, hi, hf)
}

func TestStringEqualityIsByContent(t *testing.T) {
	a := value.NewString("hello")
	b := value.NewString("hello")
	require.False(t, value.Identical(a, b), "distinct objects must not be Identical")

	eq, err := value.Equal(a, b)
	require.NoError(t, err)
	require.True(t, eq, "equal string content must compare equal despite distinct objects")

	ha, err := value.Hash(a)
	require.NoError(t, err)
	hb, err := value.Hash(b)
	require.NoError(t, err)
	require.Equal(t, ha, hb)
}

func TestArrayAndHashmapAreNotHashable(t *testing.T) {
	_, err := value.Hash(value.NewArray(nil))
	require.Error(t, err)

	_, err = value.Hash(value.NewHashmap(0))
	require.Error(t, err)
}

func TestCompareNumbers(t *testing.T) {
	n, err := value.Compare(value.Int(1), value.Int(2))
	require.NoError(t, err)
	require.Equal(t, -1, n)

	n, err = value.Compare(value.Float(2), value.Int(1))
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCompareIncomparable(t *testing.T) {
	_, err := value.Compare(value.NewArray(nil), value.NewArray(nil))
	require.Error(t, err)
}

func TestRetainReleaseString(t *testing.T) {
	s := value.NewString("owned")
	obj, ok := value.AsString(s)
	require.True(t, ok)
	require.EqualValues(t, 1, obj.Refs())

	value.Retain(s)
	require.EqualValues(t, 2, obj.Refs())

	value.Release(s)
	require.EqualValues(t, 1, obj.Refs())
}

func TestReleaseDestroysArrayChildren(t *testing.T) {
	inner := value.NewString("child")
	innerObj, _ := value.AsString(inner)

	outer := value.NewArray([]value.Value{inner})
	// NewArray retained inner; release our own local reference to it so
	// the array holds the only strong reference.
	value.Release(inner)
	require.EqualValues(t, 1, innerObj.Refs())

	value.Release(outer)
	require.EqualValues(t, 0, innerObj.Refs())
}

func TestHashmapSetGetDelete(t *testing.T) {
	m := value.NewHashmap(0)
	mo, _ := value.AsHashmap(m)

	require.NoError(t, mo.Set(value.NewString("a"), value.Int(10)))
	require.NoError(t, mo.Set(value.NewString("b"), value.Int(20)))
	require.Equal(t, 2, mo.Len())

	v, found, err := mo.Get(value.NewString("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(10), v.AsInt())

	ok, err := mo.Delete(value.NewString("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, mo.Len())

	_, found, err = mo.Get(value.NewString("a"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestHashmapContentEqualStringKeysCollide(t *testing.T) {
	m := value.NewHashmap(0)
	mo, _ := value.AsHashmap(m)

	require.NoError(t, mo.Set(value.NewString("key"), value.Int(1)))
	require.NoError(t, mo.Set(value.NewString("key"), value.Int(2)))
	require.Equal(t, 1, mo.Len(), "distinct string objects with the same content are the same key")

	v, found, err := mo.Get(value.NewString("key"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(2), v.AsInt())
}

func TestFunctionDisplayNameFallback(t *testing.T) {
	anon := value.NewScriptFunction("", nil, 0, 0, 0, 0, 0, false, nil)
	f, ok := value.AsFunction(anon)
	require.True(t, ok)
	require.Equal(t, "<lambda>", f.DisplayName())

	top := value.NewScriptFunction("", nil, 0, 0, 0, 0, 0, true, nil)
	f, _ = value.AsFunction(top)
	require.Equal(t, "<main>", f.DisplayName())

	named := value.NewScriptFunction("greet", nil, 0, 0, 0, 0, 0, false, nil)
	f, _ = value.AsFunction(named)
	require.Equal(t, "greet", f.DisplayName())
}

func TestWeakUserinfoRoundTrip(t *testing.T) {
	var x int
	v := value.NewWeakUserinfo(unsafe.Pointer(&x))
	require.Equal(t, value.TagUserinfo, v.Tag())
	require.False(t, v.IsObject())
	require.Equal(t, "weak-userinfo", v.Type())
}
