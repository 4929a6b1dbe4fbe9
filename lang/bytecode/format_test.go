package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ldraconus/fifth/lang/value"
)

type fakeResolver map[value.CellRef]string

func (r fakeResolver) GlobalName(ref value.CellRef) (string, bool) {
	name, ok := r[ref]
	return name, ok
}

func TestDisassembleRendersEveryOpcode(t *testing.T) {
	d := NewDictionary()
	callee := NewBuiltin(func(Machine) {}, 0)
	d.Define("dup", callee)

	global := value.CellRef{Arena: 2, Offset: 0}
	resolver := fakeResolver{global: "count"}

	b := NewBlock()
	b.Push(value.Int(1))
	b.Push(value.Ptr(global))
	b.SysPush(value.Str("x"))
	b.Call(callee)
	b.Branch(1)
	b.Jump(2)
	b.Pop()
	b.SysPop()
	b.emit(Instruction{Op: NOP})
	b.Return()

	lines := Disassemble(d, b, resolver)
	want := []string{
		"0,PUSH,1",
		"1,PUSH,global:count",
		"2,SYSPUSH,'x'",
		"3,CALL,dup",
		"4,BRANCH,1",
		"5,JUMP,2",
		"6,POP",
		"7,SYSPOP",
		"8,NOP",
		"9,RETURN",
	}
	assert.Equal(t, want, lines)
}

func TestDisassembleUnknownCallTarget(t *testing.T) {
	d := NewDictionary()
	b := NewBlock()
	b.Call(NewBuiltin(func(Machine) {}, 0)) // never registered in d

	lines := Disassemble(d, b, nil)
	assert.Equal(t, []string{"0,CALL,<unknown>"}, lines)
}

func TestDisassembleTargetBuiltin(t *testing.T) {
	d := NewDictionary()
	bi := NewBuiltin(func(Machine) {}, 0)
	d.Define("swap", bi)
	assert.Equal(t, []string{"swap,builtin"}, DisassembleTarget(d, "swap", bi, nil))
}
