package machine

import (
	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

// builtinVar implements "var NAME": declares a single-cell variable, local
// to the block being compiled or global at the top level (§4.4).
func builtinVar(m bytecode.Machine) {
	vm := m.(*VM)
	name, ok := vm.readAndPop()
	if !ok || name.Kind() != value.String {
		return
	}
	if vm.compiling {
		ref := vm.store.Alloc(1)
		vm.block.DefineLocal(name.Text(), ref)
		return
	}
	vm.DefineGlobal(name.Text(), 1)
}

// builtinArray implements "array NAME SIZE": declares a SIZE-cell array,
// local or global by the same rule as var.
func builtinArray(m bytecode.Machine) {
	vm := m.(*VM)
	name, ok := vm.readAndPop()
	if !ok || name.Kind() != value.String {
		return
	}
	size, ok := vm.readAndPop()
	if !ok || size.Kind() != value.Integer {
		return
	}
	n := int(size.Integer())
	if vm.compiling {
		ref := vm.store.Alloc(n)
		vm.block.DefineLocal(name.Text(), ref)
		return
	}
	vm.DefineGlobal(name.Text(), n)
}
