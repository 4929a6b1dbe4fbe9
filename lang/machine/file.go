package machine

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

// builtinFile implements "PATH MODE file": pops a mode string ("r", "w" or
// "a") and a path string and pushes the resulting File external.
func builtinFile(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	mode := m.Pop()
	path := m.Pop()
	if mode.Kind() != value.String || path.Kind() != value.String {
		m.Push(value.Ext(&File{}))
		return
	}
	m.Push(value.Ext(OpenFile(path.Text(), mode.Text())))
}

// builtinPrint implements "print": plain "value print" coerces value to a
// string and writes it to stdout, same as the reference. "external value
// print" instead sends "print" to the external (an External just below the
// top is the same "<target> <operand> <op>" convention arith.go's
// sendExternal uses for "+"/"-"/etc., including re-pushing the target so it
// stays on the stack for a subsequent print/close), so a file handle pushed
// by "file" routes the write to File.Send instead of stdout.
func builtinPrint(m bytecode.Machine) {
	vm := m.(*VM)
	if vm.Size() >= 2 && vm.Nth(1).Kind() == value.External {
		arg := vm.Pop()
		target := vm.Pop()
		sendExternal(vm, target, "print", arg)
		return
	}
	fmt.Fprint(vm.stdout, vm.store.AsString(vm.Pop()))
}

// builtinReadLine implements "file readline": pops a File external, pushes
// it back, then pushes the next line and a bool reporting whether one was
// available (false at eof or for anything that isn't a File).
func builtinReadLine(m bytecode.Machine) {
	if m.Empty() {
		return
	}
	v := m.Pop()
	f, ok := v.External().(*File)
	m.Push(v)
	if !ok {
		m.Push(value.Str(""))
		m.Push(value.Bool(false))
		return
	}
	line, got := f.ReadLine()
	m.Push(value.Str(line))
	m.Push(value.Bool(got))
}

// builtinClose implements "file close": pops a File external and closes it.
func builtinClose(m bytecode.Machine) {
	if m.Empty() {
		return
	}
	v := m.Pop()
	if f, ok := v.External().(*File); ok {
		f.Close()
	}
}

// File is the External behind the "file" builtin: a line-buffered handle
// to an OS file, grounded on original_source/cstdio.h's cstd::file wrapper
// (read/write/append modes, getString/putString, eof). A failed open
// yields a File whose Empty() is true rather than raising, per the
// permissive-evaluator policy.
type File struct {
	f   *os.File
	w   *bufio.Writer
	r   *bufio.Reader
	eof bool
}

// OpenFile opens path under mode ("r", "w" or "a"), returning a File that
// reports Empty() == true if the open failed.
func OpenFile(path, mode string) *File {
	var flag int
	switch mode {
	case "w":
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case "a":
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return &File{}
	}
	file := &File{f: f}
	if flag == os.O_RDONLY {
		file.r = bufio.NewReader(f)
	} else {
		file.w = bufio.NewWriter(f)
	}
	return file
}

func (f *File) Empty() bool { return f.f == nil || f.eof }

// Close flushes any pending writes and releases the underlying handle.
func (f *File) Close() {
	if f.w != nil {
		f.w.Flush()
	}
	if f.f != nil {
		f.f.Close()
	}
}

// ReadLine reads one line (without its trailing newline), reporting
// whether one was available.
func (f *File) ReadLine() (string, bool) {
	if f.r == nil {
		return "", false
	}
	line, err := f.r.ReadString('\n')
	if line == "" && err != nil {
		f.eof = true
		return "", false
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, true
}

// Send implements value.Externaler: "print" writes the coerced-to-string
// operand (followed by a newline); anything else is a no-op.
func (f *File) Send(_ value.Pusher, selector string, arg value.Value) {
	if selector != "print" || f.w == nil {
		return
	}
	f.w.WriteString(quickString(arg))
	f.w.WriteByte('\n')
	f.w.Flush()
}

// quickString is a Store-free echo of Store.AsString for Integer/Real/
// String, enough for File.Send's own formatting without threading a
// *value.Store through the Externaler interface.
func quickString(v value.Value) string {
	switch v.Kind() {
	case value.Integer:
		return strconv.FormatInt(v.Integer(), 10)
	case value.Real:
		return strconv.FormatFloat(v.Real(), 'f', -1, 64)
	case value.String:
		return v.Text()
	default:
		return ""
	}
}
