package machine

import (
	"fmt"

	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

// callName looks up name in the dictionary and emits a CALL to it into the
// block currently being compiled, returning the emitted instruction's
// location. Every structured-control builtin below uses this instead of
// hand-rolling opcodes for stack-shuffling words (move, sysmove, get, ...),
// exactly as the reference compiler does.
func callName(vm *VM, name string) int {
	t, _ := vm.dict.Lookup(name)
	return vm.block.Call(t)
}

// builtinDef implements "def NAME ... end" (§4.7): everything between NAME
// and the terminating "end" is compiled into a new Block instead of executed
// (a "return" emits RETURN without ending the definition), with immediate words running inline during
// compilation and everything else becoming a CALL, a literal PUSH, or a
// pointer PUSH for a known global/local name. An unterminated definition
// (input exhausted before "end") is discarded entirely.
func builtinDef(m bytecode.Machine) {
	vm := m.(*VM)
	vm.compiling = true
	defer func() { vm.compiling = false }()

	name, ok := vm.readAndPop()
	if !ok || name.Kind() != value.String {
		return
	}

	block := bytecode.NewBlock()
	save := vm.block
	vm.block = block

	aborted := false
defLoop:
	for {
		v, ok := vm.readWord()
		if !ok {
			aborted = true
			break
		}
		vm.user.Pop()

		if v.Kind() != value.String {
			block.Push(v)
			continue
		}

		word := v.Text()
		switch word {
		case "end":
			block.Return()
			break defLoop
		case "return":
			block.Return()
		default:
			if t, ok := vm.dict.Lookup(word); ok {
				if t.Flags().IsImmediate() {
					t.Exec(vm)
				} else {
					block.Call(t)
				}
			} else if ref, ok := vm.LookupGlobal(word); ok {
				block.Push(value.Ptr(ref))
			} else if ref, ok := block.Locals()[word]; ok {
				block.Push(value.Ptr(ref))
			} else {
				block.Push(v)
			}
		}
	}

	vm.block = save
	if !aborted {
		vm.dict.Define(name.Text(), block)
	}
}

// builtinThen implements the branch half of "if ... then [else ...] endif":
// the condition was left on the stack by whatever preceded "if" (a pure
// no-op placeholder), and "then" is where the actual test compiles in.
func builtinThen(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	vm.block.Branch(1)
	loc := vm.block.Jump(0)
	vm.SysPush(value.Int(int64(loc)))
}

// builtinElse closes the true-branch with an unconditional exit jump, patches
// "then"'s pending jump to land here, and leaves its own jump pending for
// "endif".
func builtinElse(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	loc := vm.block.Jump(0)
	prev := int(vm.store.AsInteger(vm.SysPop()))
	vm.block.Update(prev, loc-prev)
	vm.SysPush(value.Int(int64(loc)))
}

// builtinEndIf patches whichever jump ("then"'s or "else"'s) is still
// pending to land at the current address.
func builtinEndIf(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	loc := vm.block.Location()
	prev := int(vm.store.AsInteger(vm.SysPop()))
	vm.block.Update(prev, loc-prev)
}

// builtinWhile records the loop-head address for "done" to jump back to.
func builtinWhile(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	vm.SysPush(value.Int(int64(vm.block.Location())))
}

// builtinDo compiles the loop-test branch: true continues into the body,
// false falls through to the (as yet unpatched) exit jump.
func builtinDo(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	vm.block.Branch(1)
	loc := vm.block.Jump(0)
	vm.SysPush(value.Int(int64(loc)))
}

// builtinDone closes the loop: patches the exit jump to land just past the
// body and emits the unconditional jump back to the loop head.
func builtinDone(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	b := vm.block
	location := b.Location()
	jumpLoc := int(vm.store.AsInteger(vm.SysPop()))
	start := int(vm.store.AsInteger(vm.SysPop()))
	b.Update(jumpLoc, location-jumpLoc+1)
	b.Jump(start - location - 1)
}

// builtinFor implements "for NAME": allocates the loop variable as a local,
// seeds a default step of 1 onto the runtime system stack, and records the
// local's cell and a compile-time "still default" marker for "by" and
// "each" to consult.
func builtinFor(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	name, ok := vm.readAndPop()
	if !ok || name.Kind() != value.String {
		return
	}
	ref := vm.store.Alloc(1)
	vm.block.DefineLocal(name.Text(), ref)
	vm.SysPush(value.Ptr(ref))
	vm.block.SysPush(value.Int(1))
	vm.SysPush(value.Int(1))
}

// builtinBy implements "by N": discards the default step of 1 that "for"
// seeded onto the runtime system stack (the literal N that follows in the
// source compiles in normally as a PUSH) and flips the compile-time marker
// so "each" knows not to re-derive the default.
func builtinBy(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	vm.block.SysPop()
	vm.SysPop()
	vm.SysPush(value.Int(0))
}

// builtinEach implements "each": the runtime sequence that pops end and
// start, stores start into the loop variable, and compiles the loop-test
// (picking <= or >= by the step's sign) followed by the loop-exit
// BRANCH/JUMP pair.
func builtinEach(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	b := vm.block
	if vm.store.AsInteger(vm.SysPop()) == 1 {
		callName(vm, "move")
	}
	callName(vm, "sysmove")
	callName(vm, "sysmove")
	v := vm.SysTop()
	b.Push(v)
	callName(vm, "->")
	loc := callName(vm, "sysdup")
	vm.SysPush(value.Int(int64(loc)))
	callName(vm, "move")
	b.Push(v)
	callName(vm, "get")
	callName(vm, "sysover")
	callName(vm, "move")
	b.Push(value.Int(0))
	callName(vm, ">")
	b.Branch(2)
	callName(vm, "<=")
	b.Jump(1)
	callName(vm, ">=")
	b.Branch(1)
	loc2 := b.Jump(0)
	vm.SysPush(value.Int(int64(loc2)))
}

// builtinNext implements "next": advances the loop variable by the step,
// jumps back to the loop head, patches the exit jump, and discards the
// step/limit bookkeeping left on the runtime system stack.
func builtinNext(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	loc2 := int(vm.store.AsInteger(vm.SysPop()))
	loc := int(vm.store.AsInteger(vm.SysPop()))
	v := vm.SysPop()
	b := vm.block
	b.Push(v)
	callName(vm, "dup")
	callName(vm, "sysover")
	callName(vm, "get")
	callName(vm, "move")
	callName(vm, "+")
	callName(vm, "<-")
	loc3 := b.Location()
	b.Jump(loc - loc3 - 2)
	b.Update(loc2, loc3-loc2+1)
	callName(vm, "syspop")
	callName(vm, "syspop")
}

// builtinReturn implements "return" inside a def: emits RETURN without
// closing the block, so compilation continues after it.
func builtinReturn(m bytecode.Machine) {
	vm := m.(*VM)
	if !vm.compiling {
		return
	}
	vm.block.Return()
}

// builtinDbg implements "dbg NAME": prints the disassembly of a compiled
// word, "NAME,builtin" for a native one, or the value itself for anything
// that isn't a dictionary or global name. It is a no-op while compiling.
func builtinDbg(m bytecode.Machine) {
	vm := m.(*VM)
	v, ok := vm.readAndPop()
	if !ok || vm.compiling {
		return
	}
	if v.Kind() != value.String {
		fmt.Fprintln(vm.stdout, vm.store.AsString(v))
		return
	}
	name := v.Text()
	if t, ok := vm.dict.Lookup(name); ok {
		for _, line := range bytecode.DisassembleTarget(vm.dict, name, t, vm) {
			fmt.Fprintln(vm.stdout, line)
		}
		return
	}
	if ref, ok := vm.LookupGlobal(name); ok {
		fmt.Fprintln(vm.stdout, name+": "+vm.store.AsString(vm.store.Get(ref)))
		return
	}
	fmt.Fprintln(vm.stdout, vm.store.AsString(v))
}
