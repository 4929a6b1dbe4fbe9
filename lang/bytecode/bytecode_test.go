package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldraconus/fifth/lang/value"
)

// fakeMachine is a minimal Machine for exercising Block.Exec in isolation,
// independent of the full VM.
type fakeMachine struct {
	user, sys []value.Value
	store     *value.Store
}

func newFakeMachine() *fakeMachine { return &fakeMachine{store: value.NewStore()} }

func (m *fakeMachine) Push(v value.Value) { m.user = append(m.user, v) }
func (m *fakeMachine) Pop() value.Value {
	if len(m.user) == 0 {
		return value.Value{}
	}
	n := len(m.user) - 1
	v := m.user[n]
	m.user = m.user[:n]
	return v
}
func (m *fakeMachine) Top() value.Value {
	if len(m.user) == 0 {
		return value.Value{}
	}
	return m.user[len(m.user)-1]
}
func (m *fakeMachine) Dup()                  { m.Push(m.Top()) }
func (m *fakeMachine) Swap()                 { a, b := m.Pop(), m.Pop(); m.Push(a); m.Push(b) }
func (m *fakeMachine) Rot()                  {}
func (m *fakeMachine) RRot()                 {}
func (m *fakeMachine) Over()                 {}
func (m *fakeMachine) Nth(int) value.Value   { return value.Value{} }
func (m *fakeMachine) Size() int             { return len(m.user) }
func (m *fakeMachine) Empty() bool           { return len(m.user) == 0 }
func (m *fakeMachine) SysPush(v value.Value) { m.sys = append(m.sys, v) }
func (m *fakeMachine) SysPop() value.Value {
	if len(m.sys) == 0 {
		return value.Value{}
	}
	n := len(m.sys) - 1
	v := m.sys[n]
	m.sys = m.sys[:n]
	return v
}
func (m *fakeMachine) SysTop() value.Value {
	if len(m.sys) == 0 {
		return value.Value{}
	}
	return m.sys[len(m.sys)-1]
}
func (m *fakeMachine) SysDup()          {}
func (m *fakeMachine) SysOver()         {}
func (m *fakeMachine) SysSize() int     { return len(m.sys) }
func (m *fakeMachine) Move()            { m.Push(m.SysPop()) }
func (m *fakeMachine) SysMove()         { m.SysPush(m.Pop()) }
func (m *fakeMachine) Store() *value.Store { return m.store }

func TestBlockPushAndReturn(t *testing.T) {
	b := NewBlock()
	b.Push(value.Int(1))
	b.Push(value.Int(2))
	b.Return()
	b.Push(value.Int(3)) // unreachable: after RETURN

	m := newFakeMachine()
	b.Exec(m)
	assert.Equal(t, []value.Value{value.Int(1), value.Int(2)}, m.user)
}

func TestBlockJumpSkipsForward(t *testing.T) {
	b := NewBlock()
	b.Jump(1) // skip the next PUSH
	b.Push(value.Int(99))
	b.Push(value.Int(1))

	m := newFakeMachine()
	b.Exec(m)
	assert.Equal(t, []value.Value{value.Int(1)}, m.user)
}

func TestBlockBranchConsumesCondition(t *testing.T) {
	b := NewBlock()
	b.Push(value.Int(1)) // truthy condition
	b.Branch(1)
	b.Push(value.Int(0)) // skipped when condition true
	b.Push(value.Int(7))

	m := newFakeMachine()
	b.Exec(m)
	assert.Equal(t, []value.Value{value.Int(7)}, m.user)
}

func TestBlockLocalsRoundTrip(t *testing.T) {
	b := NewBlock()
	ref := value.CellRef{Arena: 1, Offset: 0}
	b.DefineLocal("x", ref)
	name, ok := b.LocalName(ref)
	require.True(t, ok)
	assert.Equal(t, "x", name)

	_, ok = b.LocalName(value.CellRef{Arena: 9, Offset: 0})
	assert.False(t, ok)
}

func TestDictionaryDefineAndLookup(t *testing.T) {
	d := NewDictionary()
	blk := NewBlock()
	d.Define("square", blk)

	got, ok := d.Lookup("square")
	require.True(t, ok)
	assert.Same(t, blk, got)
	assert.True(t, d.Contains("square"))
	assert.False(t, d.Contains("nope"))
	assert.Equal(t, "square", d.NameOf(blk))
}

func TestDictionaryNamesAndCompiledNames(t *testing.T) {
	d := NewDictionary()
	blk := NewBlock()
	d.Define("square", blk)
	d.Define("dup", NewBuiltin(func(Machine) {}, 0))

	names := d.Names()
	assert.ElementsMatch(t, []string{"square", "dup"}, names)
	assert.Equal(t, []string{"square"}, d.CompiledNames())
}

func TestFlags(t *testing.T) {
	f := Immediate | CompileTimeOnly
	assert.True(t, f.IsImmediate())
	assert.True(t, f.IsCompileTimeOnly())
	assert.False(t, Flags(0).IsImmediate())
}

func TestOpcodeString(t *testing.T) {
	for op := NOP; op <= RETURN; op++ {
		assert.NotEmpty(t, op.String())
	}
}
