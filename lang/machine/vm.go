// Package machine implements the Fifth virtual machine: the top-level
// evaluator (Execute), the dictionary of builtin and user-defined words, the
// global variable table, and the debugger facade. The compiler itself has
// no separate pass or intermediate tree - it is simply the set of immediate
// builtins in compiler.go and infix.go, which emit directly into the
// currently open Block as the tokenizer hands them words.
package machine

import (
	"io"
	"os"

	"github.com/dolthub/swiss"

	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/stack"
	"github.com/ldraconus/fifth/lang/tokenizer"
	"github.com/ldraconus/fifth/lang/value"
)

// frame is a saved (block, pc) pair used by the debugger, which cannot rely
// on native recursion since it single-steps; the plain executor implements
// CALL through Go's own call stack instead.
type frame struct {
	target bytecode.Target
	pc     int
}

// breakpoint is a toggled (target, pc) pair; adding the same pair twice
// removes it again (§5 toggle semantics).
type breakpoint struct {
	target bytecode.Target
	pc     int
}

// VM is the whole of the Fifth core: stacks, dictionary, globals, the
// compiler's cursor, and the debugger's cursor and frame stack.
type VM struct {
	user stack.Stack
	sys  stack.Stack

	store *value.Store
	dict  *bytecode.Dictionary

	globals    *swiss.Map[string, value.CellRef]
	globalsRev *swiss.Map[value.CellRef, string]

	buffer    string
	compiling bool
	block     *bytecode.Block

	debugTarget bytecode.Target
	debugPC     int
	frames      []frame
	breakpoints []breakpoint

	stdout io.Writer
}

// New builds a VM with every core builtin word installed.
func New() *VM {
	vm := &VM{
		store:      value.NewStore(),
		dict:       bytecode.NewDictionary(),
		globals:    swiss.NewMap[string, value.CellRef](64),
		globalsRev: swiss.NewMap[value.CellRef, string](64),
		stdout:     os.Stdout,
	}
	installBuiltins(vm)
	return vm
}

// SetOutput redirects the output of "print", "ch" and "dbg".
func (vm *VM) SetOutput(w io.Writer) { vm.stdout = w }

// --- bytecode.Machine ---

func (vm *VM) Push(v value.Value)    { vm.user.Push(v) }
func (vm *VM) Pop() value.Value      { return vm.user.Pop() }
func (vm *VM) Top() value.Value      { return vm.user.Top() }
func (vm *VM) Dup()                  { vm.user.Dup() }
func (vm *VM) Swap()                 { vm.user.Swap() }
func (vm *VM) Rot()                  { vm.user.Rot() }
func (vm *VM) RRot()                 { vm.user.RRot() }
func (vm *VM) Over()                 { vm.user.Over() }
func (vm *VM) Nth(n int) value.Value { return vm.user.Nth(n) }
func (vm *VM) Size() int             { return vm.user.Size() }
func (vm *VM) Empty() bool           { return vm.user.Empty() }

func (vm *VM) SysPush(v value.Value) { vm.sys.Push(v) }
func (vm *VM) SysPop() value.Value   { return vm.sys.Pop() }
func (vm *VM) SysTop() value.Value   { return vm.sys.Top() }
func (vm *VM) SysDup()               { vm.sys.Dup() }
func (vm *VM) SysOver()              { vm.sys.Over() }
func (vm *VM) SysSize() int          { return vm.sys.Size() }

func (vm *VM) Move()    { vm.user.Push(vm.sys.Pop()) }
func (vm *VM) SysMove() { vm.sys.Push(vm.user.Pop()) }

func (vm *VM) Store() *value.Store { return vm.store }

// --- compiler-visible state ---

func (vm *VM) Dictionary() *bytecode.Dictionary { return vm.dict }
func (vm *VM) Compiling() bool                  { return vm.compiling }
func (vm *VM) Block() *bytecode.Block           { return vm.block }

// GlobalName implements bytecode.GlobalResolver.
func (vm *VM) GlobalName(ref value.CellRef) (string, bool) {
	return vm.globalsRev.Get(ref)
}

// DefineGlobal allocates a size-cell global variable and registers its
// reverse name for disassembly.
func (vm *VM) DefineGlobal(name string, size int) value.CellRef {
	ref := vm.store.Alloc(size)
	vm.globals.Put(name, ref)
	vm.globalsRev.Put(ref, name)
	return ref
}

func (vm *VM) LookupGlobal(name string) (value.CellRef, bool) {
	return vm.globals.Get(name)
}

// readWord runs the "word" dictionary entry and reports whether it left a
// new value on top of the user stack. It is used by every immediate builtin
// that needs to read the next lexeme out of band (var, array, def, dbg,
// for, the infix compiler).
func (vm *VM) readWord() (value.Value, bool) {
	before := vm.user.Size()
	if t, ok := vm.dict.Lookup("word"); ok {
		t.Exec(vm)
	}
	if vm.user.Size() == before {
		return value.Value{}, false
	}
	return vm.user.Top(), true
}

// readAndPop peeks the next token via readWord and immediately pops it,
// matching the "peek then pop" convention described in §4.6.
func (vm *VM) readAndPop() (value.Value, bool) {
	v, ok := vm.readWord()
	if !ok {
		return value.Value{}, false
	}
	vm.user.Pop()
	return v, true
}

func builtinWord(m bytecode.Machine) {
	vm := m.(*VM)
	if v, ok := tokenizer.Next(&vm.buffer); ok {
		vm.user.Push(v)
	}
}

// Execute installs s as the input buffer and evaluates it to completion
// (§4.6). As in the reference implementation, the return value is
// unconditionally true: there is no exception channel across the VM
// boundary, only the stacks are observable after the call.
func (vm *VM) Execute(s string) bool {
	vm.buffer = s
	for {
		v, ok := vm.readWord()
		if !ok {
			break
		}
		if v.Kind() != value.String {
			continue
		}
		name := v.Text()
		if target, ok := vm.dict.Lookup(name); ok {
			vm.user.Pop()
			if target.Flags().IsCompileTimeOnly() {
				continue
			}
			target.Exec(vm)
			continue
		}
		if ref, ok := vm.globals.Get(name); ok {
			vm.user.Pop()
			vm.user.Push(value.Ptr(ref))
		}
	}
	return true
}

// GetCompiled lists the names of user-defined (non-builtin) words.
func (vm *VM) GetCompiled() []string { return vm.dict.CompiledNames() }
