package machine

import (
	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

// Debug sets the debugger's current target to the named word and resets its
// PC to 0, returning the same disassembly "dbg" would print (or a single
// "<name>,builtin" line for a native word). An unknown name clears the
// target entirely.
func (vm *VM) Debug(name string) []string {
	vm.debugTarget = nil
	t, ok := vm.dict.Lookup(name)
	if !ok {
		return nil
	}
	vm.debugTarget = t
	vm.debugPC = 0
	return bytecode.DisassembleTarget(vm.dict, name, t, vm)
}

// StepOver executes exactly one instruction at the debugger's PC using the
// same dispatch as the plain executor, except RETURN pops the debugger's own
// saved-frame stack instead of unwinding a Go call.
func (vm *VM) StepOver() {
	block, ok := vm.debugTarget.(*bytecode.Block)
	if !ok || vm.debugPC < 0 || vm.debugPC >= block.Size() {
		return
	}
	instr := block.Get(vm.debugPC)
	switch instr.Op {
	case bytecode.NOP:
	case bytecode.PUSH:
		vm.Push(instr.Val)
	case bytecode.SYSPUSH:
		vm.SysPush(instr.Val)
	case bytecode.POP:
		vm.Pop()
	case bytecode.SYSPOP:
		vm.SysPop()
	case bytecode.CALL:
		if instr.Target != nil {
			instr.Target.Exec(vm)
		}
	case bytecode.JUMP:
		vm.debugPC += instr.By
	case bytecode.BRANCH:
		if vm.store.IsTrue(vm.Pop()) {
			vm.debugPC += instr.By
		}
	case bytecode.RETURN:
		if len(vm.frames) == 0 {
			vm.debugTarget = nil
			return
		}
		last := vm.frames[len(vm.frames)-1]
		vm.frames = vm.frames[:len(vm.frames)-1]
		vm.debugTarget = last.target
		vm.debugPC = last.pc
	}
	vm.debugPC++
}

// StepInto behaves like StepOver except that a CALL into a compiled block
// pushes (current target, PC) onto the saved-frame stack and descends into
// the callee with PC = 0, instead of running it to completion inline.
func (vm *VM) StepInto() {
	block, ok := vm.debugTarget.(*bytecode.Block)
	if !ok || vm.debugPC < 0 || vm.debugPC >= block.Size() {
		return
	}
	instr := block.Get(vm.debugPC)
	if instr.Op != bytecode.CALL {
		vm.StepOver()
		return
	}
	if callee, ok := instr.Target.(*bytecode.Block); ok {
		vm.frames = append(vm.frames, frame{target: vm.debugTarget, pc: vm.debugPC})
		vm.debugTarget = callee
		vm.debugPC = 0
		return
	}
	vm.StepOver()
}

// Run steps into instructions until the debugger target goes null (the
// outermost word returned) or the current (target, PC) matches a
// breakpoint.
func (vm *VM) Run() {
	for {
		vm.StepInto()
		if vm.debugTarget == nil {
			return
		}
		if vm.atBreakpoint() {
			return
		}
	}
}

func (vm *VM) atBreakpoint() bool {
	for _, bp := range vm.breakpoints {
		if bp.target == vm.debugTarget && bp.pc == vm.debugPC {
			return true
		}
	}
	return false
}

// BreakAt toggles a breakpoint at pc within the debugger's current target:
// adding the same (target, pc) pair twice removes it again.
func (vm *VM) BreakAt(at int) {
	for i, bp := range vm.breakpoints {
		if bp.target == vm.debugTarget && bp.pc == at {
			vm.breakpoints = append(vm.breakpoints[:i], vm.breakpoints[i+1:]...)
			return
		}
	}
	vm.breakpoints = append(vm.breakpoints, breakpoint{target: vm.debugTarget, pc: at})
}

func (vm *VM) resolveDebug(ref value.CellRef) (string, bool) {
	if block, ok := vm.debugTarget.(*bytecode.Block); ok {
		if name, ok := block.LocalName(ref); ok {
			return name, true
		}
	}
	return vm.GlobalName(ref)
}

func (vm *VM) renderStack(items []value.Value) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		out = append(out, value.Render(v, vm.resolveDebug))
	}
	return out
}

// User renders the user stack bottom to top, the way the debugger reports
// it to a host collaborator.
func (vm *VM) User() []string { return vm.renderStack(vm.user.Items()) }

// System renders the system stack bottom to top.
func (vm *VM) System() []string { return vm.renderStack(vm.sys.Items()) }

// GlobalVars lists every global as "name,rendered-value".
func (vm *VM) GlobalVars() []string {
	var lines []string
	vm.globals.Iter(func(name string, ref value.CellRef) bool {
		lines = append(lines, name+","+value.Render(vm.store.Get(ref), vm.resolveDebug))
		return false
	})
	return lines
}

// LocalVars lists the current debug target's locals as "name,rendered-value",
// or nil if the target isn't a compiled word.
func (vm *VM) LocalVars() []string {
	block, ok := vm.debugTarget.(*bytecode.Block)
	if !ok {
		return nil
	}
	var lines []string
	for name, ref := range block.Locals() {
		lines = append(lines, name+","+value.Render(vm.store.Get(ref), vm.resolveDebug))
	}
	return lines
}
