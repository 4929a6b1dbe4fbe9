package machine

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldraconus/fifth/internal/filetest"
)

var testUpdateDebuggerTests = flag.Bool("test.update-debugger-tests", false, "If set, replace expected debugger test results with actual results.")

// TestDisassembleGoldenFiles compiles every fixture under testdata/in and
// checks its "addone,"-style disassembly against the matching golden file
// under testdata/out, the same layout the reference scanner/parser/resolver
// tests use.
func TestDisassembleGoldenFiles(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".5th") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			vm := New()
			vm.Execute(string(src))

			name := strings.TrimSuffix(fi.Name(), filepath.Ext(fi.Name()))
			lines := vm.Debug(name)
			require.NotNil(t, lines)

			out := strings.Join(lines, "\n") + "\n"
			filetest.DiffOutput(t, fi, out, resultDir, testUpdateDebuggerTests)
		})
	}
}

// TestStepIntoEquivalenceWithDirectCall is the debugger-equivalence property:
// stepping through a compiled word via StepInto until the debug target goes
// nil must leave the VM in the same state as calling the word directly, for
// a word with no breakpoints.
func TestStepIntoEquivalenceWithDirectCall(t *testing.T) {
	const body = `def square dup * end`

	direct := New()
	direct.Execute(body)
	direct.Execute("6 square")

	stepped := New()
	stepped.Execute(body)
	stepped.Execute("6")
	stepped.Debug("square")
	for stepped.debugTarget != nil {
		stepped.StepInto()
	}

	assert.Equal(t, direct.User(), stepped.User())
	assert.Equal(t, 0, stepped.SysSize())
}

// TestStepOverDoesNotDescendIntoCallees confirms StepOver treats a CALL to a
// compiled word as a single step, unlike StepInto.
func TestStepOverDoesNotDescendIntoCallees(t *testing.T) {
	vm := New()
	vm.Execute(`def square dup * end  def wrap square end`)
	vm.Execute("6")
	vm.Debug("wrap")

	vm.StepOver() // CALL square runs to completion inline
	assert.Equal(t, 1, vm.debugPC)
	vm.StepOver() // RETURN

	assert.Nil(t, vm.debugTarget)
	assert.Equal(t, []string{"36"}, vm.User())
}

// TestBreakpointStopsRun confirms Run halts at a toggled breakpoint and a
// second Run resumes to completion.
func TestBreakpointStopsRun(t *testing.T) {
	vm := New()
	vm.Execute(`def square dup * end`)
	vm.Execute("6")
	vm.Debug("square")
	vm.BreakAt(1) // the CALL to *

	vm.Run()
	require.NotNil(t, vm.debugTarget)
	assert.Equal(t, 1, vm.debugPC)

	vm.BreakAt(1) // toggle it back off
	vm.Run()
	assert.Nil(t, vm.debugTarget)
	assert.Equal(t, []string{"36"}, vm.User())
}

func TestGlobalAndLocalVars(t *testing.T) {
	vm := New()
	vm.Execute("var total  total 5 <-")
	assert.Contains(t, vm.GlobalVars(), "total,5")

	vm.Execute(`def bump var n  n ->  n get 1 + end`)
	vm.Execute("3")
	vm.Debug("bump")
	require.Len(t, vm.LocalVars(), 1)
	assert.Contains(t, vm.LocalVars()[0], "n,")
}
