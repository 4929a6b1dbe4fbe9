package bytecode

import (
	"fmt"
	"strings"

	"github.com/ldraconus/fifth/lang/value"
)

// GlobalResolver supplies the global half of pointer-argument rendering; the
// local half is answered by the Block itself. The concrete VM implements
// this over its global variable table.
type GlobalResolver interface {
	GlobalName(value.CellRef) (string, bool)
}

// Disassemble renders block as the "<index>,<OPCODE>[,ARG]" lines described
// by the core's disassembly contract: PUSH/SYSPUSH arguments render through
// value.Render (local:/global:/*addr for pointers, 'text' for strings, ...),
// CALL renders the callee's dictionary name (or "<unknown>" if it has none),
// and JUMP/BRANCH render their raw displacement.
func Disassemble(dict *Dictionary, block *Block, g GlobalResolver) []string {
	resolve := func(ref value.CellRef) (string, bool) {
		if name, ok := block.LocalName(ref); ok {
			return "local:" + name, true
		}
		if g != nil {
			if name, ok := g.GlobalName(ref); ok {
				return "global:" + name, true
			}
		}
		return "", false
	}

	lines := make([]string, 0, block.Size())
	for i := 0; i < block.Size(); i++ {
		instr := block.Get(i)
		var b strings.Builder
		fmt.Fprintf(&b, "%d,%s", i, instr.Op)
		switch instr.Op {
		case PUSH, SYSPUSH:
			fmt.Fprintf(&b, ",%s", value.Render(instr.Val, resolve))
		case JUMP, BRANCH:
			fmt.Fprintf(&b, ",%d", instr.By)
		case CALL:
			name := "<unknown>"
			if instr.Target != nil {
				if n := dict.NameOf(instr.Target); n != "" {
					name = n
				}
			}
			fmt.Fprintf(&b, ",%s", name)
		}
		lines = append(lines, b.String())
	}
	return lines
}

// DisassembleTarget renders t the way "dbg" and the debugger's Debug(name)
// do: a block's instructions, or a single "<name>,builtin" line for a
// native word.
func DisassembleTarget(dict *Dictionary, name string, t Target, g GlobalResolver) []string {
	if block, ok := t.(*Block); ok {
		return Disassemble(dict, block, g)
	}
	return []string{name + ",builtin"}
}
