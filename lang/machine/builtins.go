package machine

import (
	"fmt"

	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

// installBuiltins registers every native word a fresh VM starts with. The
// grouping mirrors the reference VM constructor: compiler/control-flow words
// first (all Immediate, most also CompileTimeOnly), then the plain stack and
// arithmetic words.
func installBuiltins(vm *VM) {
	d := vm.dict
	def := func(name string, fn bytecode.BuiltinFunc, flags bytecode.Flags) {
		d.Define(name, bytecode.NewBuiltin(fn, flags))
	}

	def("array", builtinArray, bytecode.Immediate)
	def("by", builtinBy, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("dbg", builtinDbg, bytecode.Immediate)
	def("def", builtinDef, bytecode.Immediate)
	def("do", builtinDo, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("done", builtinDone, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("else", builtinElse, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("endif", builtinEndIf, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("for", builtinFor, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("if", func(bytecode.Machine) {}, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("next", builtinNext, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("each", builtinEach, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("return", builtinReturn, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("then", builtinThen, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("while", builtinWhile, bytecode.Immediate|bytecode.CompileTimeOnly)
	def("var", builtinVar, bytecode.Immediate)
	def("(", builtinAlgebra, bytecode.Immediate)

	def("word", builtinWord, 0)

	def("dup", func(m bytecode.Machine) { m.Dup() }, 0)
	def("swap", func(m bytecode.Machine) { m.Swap() }, 0)
	def("rot", func(m bytecode.Machine) { m.Rot() }, 0)
	def("rrot", func(m bytecode.Machine) { m.RRot() }, 0)
	def("over", func(m bytecode.Machine) { m.Over() }, 0)
	def("pop", func(m bytecode.Machine) { m.Pop() }, 0)
	def("empty", func(m bytecode.Machine) { m.Push(value.Bool(m.Empty())) }, 0)
	def("size", func(m bytecode.Machine) { m.Push(value.Int(int64(m.Size()))) }, 0)
	def("nth", func(m bytecode.Machine) {
		n := m.Store().AsInteger(m.Pop())
		m.Push(m.Nth(int(n)))
	}, 0)
	def("move", func(m bytecode.Machine) { m.Move() }, 0)

	def("syspush", func(m bytecode.Machine) { m.SysPush(m.Pop()) }, 0)
	def("syspop", func(m bytecode.Machine) { m.SysPop() }, 0)
	def("sysdup", func(m bytecode.Machine) { m.SysDup() }, 0)
	def("sysover", func(m bytecode.Machine) { m.SysOver() }, 0)
	def("sysmove", func(m bytecode.Machine) { m.SysMove() }, 0)
	def("systop", func(m bytecode.Machine) { m.Push(m.SysTop()) }, 0)
	def("sysswap", func(m bytecode.Machine) {
		x := m.SysPop()
		y := m.Pop()
		m.SysPush(y)
		m.Push(x)
	}, 0)

	def("and", func(m bytecode.Machine) {
		r, l := m.Pop(), m.Pop()
		m.Push(value.Bool(m.Store().IsTrue(l) && m.Store().IsTrue(r)))
	}, 0)
	def("or", func(m bytecode.Machine) {
		r, l := m.Pop(), m.Pop()
		m.Push(value.Bool(m.Store().IsTrue(l) || m.Store().IsTrue(r)))
	}, 0)
	def("nand", func(m bytecode.Machine) {
		r, l := m.Pop(), m.Pop()
		m.Push(value.Bool(!(m.Store().IsTrue(l) && m.Store().IsTrue(r))))
	}, 0)
	def("nor", func(m bytecode.Machine) {
		r, l := m.Pop(), m.Pop()
		m.Push(value.Bool(!(m.Store().IsTrue(l) || m.Store().IsTrue(r))))
	}, 0)
	def("xor", func(m bytecode.Machine) {
		r, l := m.Pop(), m.Pop()
		lt, rt := m.Store().IsTrue(l), m.Store().IsTrue(r)
		m.Push(value.Bool((lt || rt) && !(lt && rt)))
	}, 0)

	def("print", builtinPrint, 0)
	def("ch", func(m bytecode.Machine) {
		vm := m.(*VM)
		fmt.Fprintf(vm.stdout, "%c", rune(vm.store.AsInteger(vm.Pop())))
	}, 0)

	def("vector", func(m bytecode.Machine) { m.Push(value.Ext(NewVector())) }, 0)
	def("map", func(m bytecode.Machine) { m.Push(value.Ext(NewMap())) }, 0)
	def("file", builtinFile, 0)
	def("readline", builtinReadLine, 0)
	def("close", builtinClose, 0)

	def("get", builtinGet, 0)
	def("<-", builtinStoreLeft, 0)
	def("->", builtinStoreRight, 0)

	def("=", builtinEqual, 0)
	def("!=", builtinNotEqual, 0)
	def("<>", builtinNotEqual, 0)
	def("<", builtinLess, 0)
	def("<=", builtinLessEqual, 0)
	def(">", builtinGreater, 0)
	def(">=", builtinGreaterEqual, 0)

	def("+", builtinAdd, 0)
	def("-", builtinSubtract, 0)
	def("*", builtinMultiply, 0)
	def("/", builtinDivide, 0)
	def("%", builtinModulo, 0)
	def("^", builtinPower, 0)

	def("len", builtinLen, 0)
	def("explode", builtinExplode, 0)
}
