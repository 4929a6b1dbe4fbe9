// Package bytecode defines the compiled-word model the Fifth compiler emits
// into and the executor runs: the opcode set, a flat Instruction sequence
// (Block), the Builtin/Block split of a dictionary Target, and the
// Dictionary that maps a word name to its Target.
//
// A Block is owned exclusively by the Dictionary entry that names it;
// dropping the dictionary drops the block and the locals (and their
// reverse-name index) it owns.
package bytecode

import (
	"github.com/dolthub/swiss"

	"github.com/ldraconus/fifth/lang/value"
)

// Opcode is one of the nine instructions the executor dispatches.
type Opcode uint8

const (
	NOP Opcode = iota
	PUSH
	SYSPUSH
	POP
	SYSPOP
	CALL
	JUMP
	BRANCH
	RETURN
)

func (op Opcode) String() string {
	switch op {
	case NOP:
		return "NOP"
	case PUSH:
		return "PUSH"
	case SYSPUSH:
		return "SYSPUSH"
	case POP:
		return "POP"
	case SYSPOP:
		return "SYSPOP"
	case CALL:
		return "CALL"
	case JUMP:
		return "JUMP"
	case BRANCH:
		return "BRANCH"
	case RETURN:
		return "RETURN"
	default:
		return "NOP"
	}
}

// Instruction is one step of a compiled word. Only the field relevant to Op
// is meaningful: Val for PUSH/SYSPUSH, Target for CALL, By for JUMP/BRANCH.
type Instruction struct {
	Op     Opcode
	Val    value.Value
	Target Target
	By     int
}

// Flags are the per-target compilation flags carried by both Builtin and
// Block.
type Flags uint8

const (
	// Immediate targets run during compilation instead of being compiled in.
	Immediate Flags = 1 << iota
	// CompileTimeOnly targets are only valid inside a def; executing one at
	// top level is silently skipped.
	CompileTimeOnly
)

func (f Flags) IsImmediate() bool       { return f&Immediate != 0 }
func (f Flags) IsCompileTimeOnly() bool { return f&CompileTimeOnly != 0 }

// Machine is the capability surface Target.Exec needs from the virtual
// machine: the two stacks and the cell store. It is declared here, at the
// bottom of the dependency graph, so that bytecode has no import-time
// knowledge of the concrete VM that will eventually implement it.
type Machine interface {
	Push(value.Value)
	Pop() value.Value
	Top() value.Value
	Dup()
	Swap()
	Rot()
	RRot()
	Over()
	Nth(n int) value.Value
	Size() int
	Empty() bool

	SysPush(value.Value)
	SysPop() value.Value
	SysTop() value.Value
	SysDup()
	SysOver()
	SysSize() int

	Move()
	SysMove()

	Store() *value.Store
}

// Target is anything the dictionary can name and the executor can run: a
// native Builtin or a compiled Block.
type Target interface {
	Exec(Machine)
	Flags() Flags
}

// BuiltinFunc is the native implementation of a builtin word.
type BuiltinFunc func(Machine)

// Builtin wraps a native function as a dictionary Target.
type Builtin struct {
	fn    BuiltinFunc
	flags Flags
}

func NewBuiltin(fn BuiltinFunc, flags Flags) *Builtin {
	return &Builtin{fn: fn, flags: flags}
}

func (b *Builtin) Exec(m Machine) { b.fn(m) }
func (b *Builtin) Flags() Flags   { return b.flags }

// Block is a compiled word: a flat instruction sequence plus the locals it
// owns and their reverse (cell -> name) index, used by the disassembler.
type Block struct {
	instructions []Instruction
	locals       map[string]value.CellRef
	reverse      map[value.CellRef]string
	flags        Flags
}

func NewBlock() *Block {
	return &Block{
		locals:  make(map[string]value.CellRef),
		reverse: make(map[value.CellRef]string),
	}
}

func (b *Block) Flags() Flags { return b.flags }
func (b *Block) SetFlags(f Flags) { b.flags = f }

func (b *Block) Locals() map[string]value.CellRef  { return b.locals }
func (b *Block) Reverse() map[value.CellRef]string { return b.reverse }

// DefineLocal registers name as owning ref, recording the reverse entry used
// by disassembly.
func (b *Block) DefineLocal(name string, ref value.CellRef) {
	b.locals[name] = ref
	b.reverse[ref] = name
}

// LocalName implements the local half of pointer-argument rendering.
func (b *Block) LocalName(ref value.CellRef) (string, bool) {
	name, ok := b.reverse[ref]
	return name, ok
}

func (b *Block) Size() int                    { return len(b.instructions) }
func (b *Block) Get(i int) Instruction         { return b.instructions[i] }
func (b *Block) Location() int                 { return len(b.instructions) - 1 }

func (b *Block) emit(i Instruction) int {
	b.instructions = append(b.instructions, i)
	return b.Location()
}

func (b *Block) Push(v value.Value) int      { return b.emit(Instruction{Op: PUSH, Val: v}) }
func (b *Block) SysPush(v value.Value) int   { return b.emit(Instruction{Op: SYSPUSH, Val: v}) }
func (b *Block) Pop() int                    { return b.emit(Instruction{Op: POP}) }
func (b *Block) SysPop() int                 { return b.emit(Instruction{Op: SYSPOP}) }
func (b *Block) Call(t Target) int           { return b.emit(Instruction{Op: CALL, Target: t}) }
func (b *Block) Jump(by int) int             { return b.emit(Instruction{Op: JUMP, By: by}) }
func (b *Block) Branch(by int) int           { return b.emit(Instruction{Op: BRANCH, By: by}) }
func (b *Block) Return() int                 { return b.emit(Instruction{Op: RETURN}) }

// Update patches the By displacement of the instruction at loc, used by the
// structured-control builtins to back-patch a previously emitted
// JUMP/BRANCH once its target address is known.
func (b *Block) Update(loc, by int) {
	if loc < 0 || loc >= len(b.instructions) {
		return
	}
	b.instructions[loc].By = by
}

// Exec runs the fetch-dispatch loop: PC is incremented after every
// instruction except RETURN, which returns immediately; JUMP/BRANCH add
// their displacement before that implicit increment.
func (b *Block) Exec(m Machine) {
	for pc := 0; pc < len(b.instructions); pc++ {
		instr := b.instructions[pc]
		switch instr.Op {
		case NOP:
		case PUSH:
			m.Push(instr.Val)
		case SYSPUSH:
			m.SysPush(instr.Val)
		case POP:
			m.Pop()
		case SYSPOP:
			m.SysPop()
		case CALL:
			if instr.Target != nil {
				instr.Target.Exec(m)
			}
		case JUMP:
			pc += instr.By
		case BRANCH:
			if m.Store().IsTrue(m.Pop()) {
				pc += instr.By
			}
		case RETURN:
			return
		}
	}
}

// Dictionary maps word names to their Target and keeps the reverse index
// (Target -> canonical name) needed for CALL disassembly.
type Dictionary struct {
	byName *swiss.Map[string, Target]
	names  *swiss.Map[Target, string]
}

func NewDictionary() *Dictionary {
	return &Dictionary{
		byName: swiss.NewMap[string, Target](128),
		names:  swiss.NewMap[Target, string](128),
	}
}

// Define registers t under name, overwriting any previous binding, and
// records the reverse name used for disassembly.
func (d *Dictionary) Define(name string, t Target) {
	d.byName.Put(name, t)
	d.names.Put(t, name)
}

func (d *Dictionary) Lookup(name string) (Target, bool) {
	return d.byName.Get(name)
}

func (d *Dictionary) Contains(name string) bool {
	_, ok := d.byName.Get(name)
	return ok
}

// NameOf returns the canonical name a target was defined under, or "" if
// unknown (e.g. an anonymous or stale target).
func (d *Dictionary) NameOf(t Target) string {
	name, _ := d.names.Get(t)
	return name
}

// Names returns every dictionary name.
func (d *Dictionary) Names() []string {
	names := make([]string, 0, d.byName.Count())
	d.byName.Iter(func(k string, _ Target) bool {
		names = append(names, k)
		return false
	})
	return names
}

// CompiledNames returns the names bound to a *Block, i.e. user-defined
// words, excluding native builtins.
func (d *Dictionary) CompiledNames() []string {
	var names []string
	d.byName.Iter(func(k string, t Target) bool {
		if _, ok := t.(*Block); ok {
			names = append(names, k)
		}
		return false
	})
	return names
}
