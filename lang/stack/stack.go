// Package stack implements the two LIFO value stacks the virtual machine
// operates on (the user stack and the system stack). Every operation is a
// defensive no-op when the stack does not hold enough items, per the
// permissive-evaluator policy: a builtin that needs N items is expected to
// check Size() itself, but the stack never panics on its own.
package stack

import "github.com/ldraconus/fifth/lang/value"

// Stack is a LIFO sequence of Values.
type Stack struct {
	items []value.Value
}

func (s *Stack) Size() int   { return len(s.items) }
func (s *Stack) Empty() bool { return len(s.items) == 0 }

func (s *Stack) Push(v value.Value) { s.items = append(s.items, v) }

// Pop removes and returns the top item. Popping an empty stack is undefined
// by the spec (callers must guard with Size()); it returns the zero Value
// rather than panicking.
func (s *Stack) Pop() value.Value {
	if len(s.items) == 0 {
		return value.Value{}
	}
	n := len(s.items) - 1
	v := s.items[n]
	s.items = s.items[:n]
	return v
}

func (s *Stack) Top() value.Value {
	if len(s.items) == 0 {
		return value.Value{}
	}
	return s.items[len(s.items)-1]
}

// Nth returns the item n deep (0 = top) without net effect on the stack.
func (s *Stack) Nth(n int) value.Value {
	if n < 0 || n >= len(s.items) {
		return value.Value{}
	}
	return s.items[len(s.items)-1-n]
}

func (s *Stack) Dup() {
	if s.Empty() {
		return
	}
	s.Push(s.Top())
}

func (s *Stack) Over() {
	if s.Size() < 2 {
		return
	}
	s.Push(s.Nth(1))
}

func (s *Stack) Swap() {
	if s.Size() < 2 {
		return
	}
	a := s.Pop()
	b := s.Pop()
	s.Push(a)
	s.Push(b)
}

// Rot implements a b c -> b c a.
func (s *Stack) Rot() {
	if s.Size() < 3 {
		return
	}
	a := s.Pop()
	b := s.Pop()
	c := s.Pop()
	s.Push(b)
	s.Push(a)
	s.Push(c)
}

// RRot implements a b c -> c a b.
func (s *Stack) RRot() {
	if s.Size() < 3 {
		return
	}
	a := s.Pop()
	b := s.Pop()
	c := s.Pop()
	s.Push(a)
	s.Push(c)
	s.Push(b)
}

// Items returns the stack contents bottom to top. The caller must not
// mutate the returned slice.
func (s *Stack) Items() []value.Value { return s.items }
