package machine

import (
	"strings"

	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

// precedenceTable is the fixed binding-power table of §4.9, lazily
// initialized on first use exactly as the reference implementation's static
// map.
var precedenceTable map[string]int

func initPrecedence() {
	precedenceTable = map[string]int{
		"and": 10, "or": 10, "nand": 10, "nor": 10, "xor": 10,
		"<=": 20, "<": 20, "=": 20, "!=": 20, "<>": 20, ">": 20, ">=": 20,
		"+": 30, "-": 30,
		"*": 40, "/": 40, "%": 40,
		"^": 50,
	}
}

// dummyRef is the placeholder pointer applyOperator leaves on the user
// stack in compiling mode after folding two operands into one CALL: the
// shunting-yard loop still expects exactly one value per reduction, but
// nothing was actually pushed at runtime, so this marks "don't re-emit me".
var dummyRef = value.CellRef{Arena: ^uint32(0), Offset: -1}

func hasHigherPrecedence(op1, op2 value.Value) bool {
	return precedenceTable[op1.Text()] > precedenceTable[op2.Text()]
}

// applyOperator reduces one pending operator: in compiling mode it emits
// both operands (a "get" call follows any operand that is a real pointer)
// and a CALL to the operator, then pushes the dummy placeholder; otherwise
// it runs the operator immediately against the live stacks.
func applyOperator(vm *VM, op value.Value) {
	name := op.Text()
	if !vm.compiling {
		if t, ok := vm.dict.Lookup(name); ok {
			t.Exec(vm)
		}
		return
	}

	right := vm.Pop()
	left := vm.Pop()
	b := vm.block

	emit := func(v value.Value) {
		if v.Kind() == value.Pointer && v.Pointer() == dummyRef {
			return
		}
		if v.Kind() == value.String {
			if t, ok := vm.dict.Lookup(v.Text()); ok {
				b.Call(t)
			}
			return
		}
		b.Push(v)
		if v.Kind() == value.Pointer {
			callName(vm, "get")
		}
	}
	emit(left)
	emit(right)
	if t, ok := vm.dict.Lookup(name); ok {
		b.Call(t)
	}
	vm.Push(value.Ptr(dummyRef))
}

// handleOperand resolves a bare name token inside an infix expression: a
// leading '*' means "dereference", otherwise the bare variable's cell
// pointer itself becomes the operand (for use with "->"/"<-" or later
// "get"). A name matching neither a global nor a local is pushed back as a
// literal string, unless it was prefixed with '*' (which silently produces
// nothing, matching the reference implementation).
func handleOperand(vm *VM, token string) {
	deref := strings.HasPrefix(token, "*")
	name := token
	if deref {
		name = token[1:]
	}

	ref, ok := vm.LookupGlobal(name)
	if !ok && vm.block != nil {
		ref, ok = vm.block.Locals()[name]
	}

	if !ok {
		if !deref {
			vm.Push(value.Str(token))
		}
		return
	}

	if deref {
		if vm.compiling {
			vm.Push(value.Ptr(ref))
		} else {
			vm.Push(vm.store.Get(ref))
		}
		return
	}
	vm.Push(value.Ptr(ref))
}

// builtinAlgebra implements the infix expression compiler "(" (§4.9):
// Dijkstra's shunting yard over a fixed precedence table, with a sentinel
// "[" marking the bottom of the operator stack so the matching ")" can be
// told apart from a nested literal "(".
func builtinAlgebra(m bytecode.Machine) {
	vm := m.(*VM)
	if precedenceTable == nil {
		initPrecedence()
	}
	vm.SysPush(value.Str("["))

tokenLoop:
	for {
		tok, ok := vm.readWord()
		if !ok {
			break
		}
		vm.Pop()

		switch tok.Kind() {
		case value.Integer, value.Real:
			vm.Push(tok)
		case value.String:
			op := tok.Text()
			switch {
			case op == "(":
				vm.SysPush(tok)
			case op == ")":
				systop := vm.SysTop()
				top := systop.Text()
				for top != "[" && top != "(" {
					applyOperator(vm, systop)
					vm.SysPop()
					systop = vm.SysTop()
					top = systop.Text()
				}
				if top == "[" {
					break tokenLoop
				}
				vm.SysPop()
			default:
				if _, isOp := precedenceTable[op]; isOp {
					systop := vm.SysTop()
					for systop.Text() != "[" && hasHigherPrecedence(systop, tok) {
						applyOperator(vm, systop)
						vm.SysPop()
						systop = vm.SysTop()
					}
					vm.SysPush(tok)
				} else {
					handleOperand(vm, op)
				}
			}
		default:
			vm.Push(tok)
		}
	}

	for vm.SysTop().Text() != "[" {
		applyOperator(vm, vm.SysPop())
	}
	vm.SysPop()
	if vm.compiling {
		vm.Pop()
	}
}
