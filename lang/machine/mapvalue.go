package machine

import (
	"github.com/dolthub/swiss"

	"github.com/ldraconus/fifth/lang/value"
)

// Map is the External behind the "map" builtin: a key/value association,
// grounded on Fifth.h's Map class (size/empty/contains/erase/append) but
// backed by swiss.Map[value.Value, value.Value] rather than a hand-rolled
// scan, the same hash-table library the dictionary and VM globals already
// use. The original class is never wired to a Send dispatch of its own; "+"
// and "-" below are adapted for the VM's message-send hook the same way
// Vector's are, following the append-then-push-result convention used
// throughout the arithmetic builtins.
type Map struct {
	m *swiss.Map[value.Value, value.Value]
}

func NewMap() *Map { return &Map{m: swiss.NewMap[value.Value, value.Value](8)} }

func (m *Map) Empty() bool { return m.m.Count() == 0 }

func (m *Map) Put(k, v value.Value) { m.m.Put(k, v) }

func (m *Map) Get(k value.Value) (value.Value, bool) { return m.m.Get(k) }

func (m *Map) Erase(k value.Value) { m.m.Delete(k) }

func (m *Map) Size() int { return m.m.Count() }

// Send implements value.Externaler: "+" associates a {key, value} pair
// supplied as a 2-element Vector (matching the way "vector + x" appends);
// "-" erases the entry for a key. Anything else is a no-op.
func (m *Map) Send(_ value.Pusher, selector string, arg value.Value) {
	switch selector {
	case "+":
		if v, ok := arg.External().(*Vector); ok && v.Len() == 2 {
			m.Put(v.At(0), v.At(1))
		}
	case "-":
		m.Erase(arg)
	}
}
