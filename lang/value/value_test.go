package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoercions(t *testing.T) {
	s := NewStore()
	cases := []struct {
		desc    string
		v       Value
		wantInt int64
		wantReal float64
		wantStr string
		wantTrue bool
	}{
		{"integer", Int(7), 7, 7, "7", true},
		{"zero integer", Int(0), 0, 0, "0", false},
		{"real", Flt(2.5), 2, 2.5, "2.5", true},
		{"string number", Str("12"), 12, 12, "12", true},
		{"string garbage", Str("nope"), 0, 0, "nope", true},
		{"empty string", Str(""), 0, 0, "", false},
	}
	for _, c := range cases {
		t.Run(c.desc, func(t *testing.T) {
			assert.Equal(t, c.wantInt, s.AsInteger(c.v))
			assert.Equal(t, c.wantReal, s.AsReal(c.v))
			assert.Equal(t, c.wantStr, s.AsString(c.v))
			assert.Equal(t, c.wantTrue, s.IsTrue(c.v))
		})
	}
}

func TestPointerCoercionDereferences(t *testing.T) {
	s := NewStore()
	ref := s.Alloc(1)
	s.Set(ref, Int(42))
	p := Ptr(ref)
	assert.Equal(t, int64(42), s.AsInteger(p))
	assert.Equal(t, "42", s.AsString(p))
	assert.True(t, s.IsTrue(p))
}

func TestStoreAllocIsolatesArenas(t *testing.T) {
	s := NewStore()
	a := s.Alloc(2)
	b := s.Alloc(1)
	require.NotEqual(t, a.Arena, b.Arena)

	s.Set(a.Add(1), Str("x"))
	assert.Equal(t, Str("x"), s.Get(a.Add(1)))
	assert.Equal(t, Value{}, s.Get(b))
}

func TestStoreOutOfRangeIsPermissive(t *testing.T) {
	s := NewStore()
	ref := s.Alloc(1)
	bad := ref.Add(5)
	assert.Equal(t, Value{}, s.Get(bad))
	assert.NotPanics(t, func() { s.Set(bad, Int(1)) })
}

func TestEqualAcrossKindsIsFalse(t *testing.T) {
	assert.False(t, Int(1).Equal(Str("1")))
	assert.True(t, Int(1).Equal(Int(1)))
	assert.True(t, Str("a").Equal(Str("a")))
}

func TestRenderPointerResolution(t *testing.T) {
	ref := CellRef{Arena: 3, Offset: 1}
	out := Render(Ptr(ref), func(r CellRef) (string, bool) {
		if r == ref {
			return "global:x", true
		}
		return "", false
	})
	assert.Equal(t, "global:x", out)

	out = Render(Ptr(ref), nil)
	assert.Contains(t, out, "*")
}

func TestRenderStringIsQuoted(t *testing.T) {
	assert.Equal(t, "'hi'", Render(Str("hi"), nil))
}
