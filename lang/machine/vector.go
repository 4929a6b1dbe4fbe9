package machine

import "github.com/ldraconus/fifth/lang/value"

// Vector is the External behind the "vector" builtin: a growable sequence of
// Values, grounded on Fifth.h's Vector class. "+" appends its operand and
// yields the (mutated) vector back, matching External's send-then-push-left
// convention used throughout the arithmetic builtins.
type Vector struct {
	items []value.Value
}

func NewVector() *Vector { return &Vector{} }

func (v *Vector) Empty() bool { return len(v.items) == 0 }

func (v *Vector) Append(x value.Value) { v.items = append(v.items, x) }
func (v *Vector) Len() int             { return len(v.items) }
func (v *Vector) At(i int) value.Value {
	if i < 0 || i >= len(v.items) {
		return value.Value{}
	}
	return v.items[i]
}

// Send implements value.Externaler: "+" appends arg (or every element of
// another Vector) in place; anything else is a no-op, mirroring the base
// External::send default.
func (v *Vector) Send(_ value.Pusher, selector string, arg value.Value) {
	if selector != "+" {
		return
	}
	if other, ok := arg.External().(*Vector); ok {
		v.items = append(v.items, other.items...)
		return
	}
	v.items = append(v.items, arg)
}
