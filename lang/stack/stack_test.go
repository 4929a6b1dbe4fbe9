package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ldraconus/fifth/lang/value"
)

func freshStack(ints ...int64) *Stack {
	var s Stack
	for _, n := range ints {
		s.Push(value.Int(n))
	}
	return &s
}

func ints(items []value.Value) []int64 {
	out := make([]int64, len(items))
	for i, v := range items {
		out[i] = v.Integer()
	}
	return out
}

func TestPushPopOrder(t *testing.T) {
	s := freshStack(1, 2)
	assert.Equal(t, int64(2), s.Pop().Integer())
	assert.Equal(t, int64(1), s.Pop().Integer())
	assert.True(t, s.Empty())
}

func TestRotAndRRot(t *testing.T) {
	s := freshStack(1, 2, 3)
	s.Rot() // a b c -> b c a
	assert.Equal(t, []int64{2, 3, 1}, ints(s.Items()))

	s2 := freshStack(1, 2, 3)
	s2.RRot() // a b c -> c a b
	assert.Equal(t, []int64{3, 1, 2}, ints(s2.Items()))
}

func TestSwap(t *testing.T) {
	s := freshStack(1, 2)
	s.Swap()
	assert.Equal(t, []int64{2, 1}, ints(s.Items()))
}

func TestOverAndDup(t *testing.T) {
	s := freshStack(1, 2)
	s.Over()
	assert.Equal(t, []int64{1, 2, 1}, ints(s.Items()))

	s2 := freshStack(5)
	s2.Dup()
	assert.Equal(t, []int64{5, 5}, ints(s2.Items()))
}

func TestUnderflowIsNoOp(t *testing.T) {
	var s Stack
	assert.NotPanics(t, func() {
		s.Pop()
		s.Swap()
		s.Rot()
		s.RRot()
		s.Over()
		s.Dup()
	})
	assert.True(t, s.Empty())
}

func TestNth(t *testing.T) {
	s := freshStack(1, 2, 3)
	assert.Equal(t, int64(3), s.Nth(0).Integer())
	assert.Equal(t, int64(2), s.Nth(1).Integer())
	assert.Equal(t, int64(1), s.Nth(2).Integer())
}
