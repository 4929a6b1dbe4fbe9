package machine

import (
	"math"
	"strings"

	"github.com/ldraconus/fifth/lang/bytecode"
	"github.com/ldraconus/fifth/lang/value"
)

const half = 0.5

// builtinAdd implements §4.3 addition: same-kind operands add natively,
// mismatched kinds widen to real (rounded back to integer when the left
// operand was an integer), except String+X which concatenates asString(X),
// Pointer+Integer which performs pointer arithmetic, and External which
// dispatches to Send.
func builtinAdd(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	right, left := m.Pop(), m.Pop()
	s := m.Store()

	if left.Kind() != right.Kind() {
		switch left.Kind() {
		case value.Integer:
			m.Push(value.Int(int64(s.AsReal(left) + s.AsReal(right) + half)))
		case value.Real:
			m.Push(value.Flt(s.AsReal(left) + s.AsReal(right)))
		case value.String:
			m.Push(value.Str(left.Text() + s.AsString(right)))
		case value.External:
			sendExternal(m, left, "+", right)
		case value.Pointer:
			if right.Kind() > value.Real {
				m.Push(left)
			} else {
				m.Push(value.Ptr(left.Pointer().Add(s.AsInteger(right))))
			}
		}
		return
	}

	switch left.Kind() {
	case value.Integer:
		m.Push(value.Int(left.Integer() + right.Integer()))
	case value.Real:
		m.Push(value.Flt(left.Real() + right.Real()))
	case value.String:
		m.Push(value.Str(left.Text() + right.Text()))
	case value.External:
		sendExternal(m, left, "+", right)
	case value.Pointer:
		m.Push(left)
	}
}

func builtinSubtract(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	right, left := m.Pop(), m.Pop()
	s := m.Store()

	if left.Kind() != right.Kind() {
		switch left.Kind() {
		case value.Integer:
			m.Push(value.Int(int64(s.AsReal(left) - s.AsReal(right) + half)))
		case value.Real:
			m.Push(value.Flt(s.AsReal(left) - s.AsReal(right)))
		case value.External:
			sendExternal(m, left, "-", right)
		case value.Pointer:
			m.Push(left)
		case value.String:
			str := left.Text()
			switch right.Kind() {
			case value.Integer, value.Real:
				x := s.AsInteger(right)
				if x > int64(len(str)) {
					str = ""
				} else {
					str = str[:len(str)-int(x)]
				}
			}
			m.Push(value.Str(str))
		}
		return
	}

	switch left.Kind() {
	case value.Integer:
		m.Push(value.Int(left.Integer() - right.Integer()))
	case value.Real:
		m.Push(value.Flt(left.Real() - right.Real()))
	case value.External:
		sendExternal(m, left, "-", right)
	case value.Pointer:
		m.Push(left)
	case value.String:
		str, needle := left.Text(), right.Text()
		if p := strings.Index(str, needle); p >= 0 {
			str = str[:p] + str[p+len(needle):]
		}
		m.Push(value.Str(str))
	}
}

func builtinMultiply(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	right, left := m.Pop(), m.Pop()
	s := m.Store()

	if left.Kind() != right.Kind() {
		switch left.Kind() {
		case value.Integer:
			m.Push(value.Int(int64(s.AsReal(left)*s.AsReal(right) + half)))
		case value.Real:
			m.Push(value.Flt(s.AsReal(left) * s.AsReal(right)))
		case value.External:
			sendExternal(m, left, "*", right)
		case value.Pointer:
			m.Push(left)
		case value.String:
			switch right.Kind() {
			case value.Integer:
				m.Push(value.Str(strings.Repeat(left.Text(), int(right.Integer()))))
			case value.Real:
				r := right.Real()
				n := int(r)
				repeated := strings.Repeat(left.Text(), n)
				frac := int(float64(len(left.Text())) * (r - float64(n)))
				m.Push(value.Str(repeated + left.Text()[:frac]))
			default:
				m.Push(left)
			}
		}
		return
	}

	switch left.Kind() {
	case value.Integer:
		m.Push(value.Int(left.Integer() * right.Integer()))
	case value.Real:
		m.Push(value.Flt(left.Real() * right.Real()))
	case value.String:
		m.Push(left)
	case value.External:
		sendExternal(m, left, "*", right)
	case value.Pointer:
		m.Push(left)
	}
}

func builtinDivide(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	right, left := m.Pop(), m.Pop()
	s := m.Store()

	if left.Kind() != right.Kind() {
		switch left.Kind() {
		case value.Integer:
			m.Push(value.Int(int64(s.AsReal(left)/s.AsReal(right) + half)))
		case value.Real:
			m.Push(value.Flt(s.AsReal(left) / s.AsReal(right)))
		case value.External:
			sendExternal(m, left, "/", right)
		case value.Pointer:
			m.Push(left)
		case value.String:
			str := left.Text()
			switch right.Kind() {
			case value.Integer:
				x := int(right.Integer())
				var num int64
				for x > 0 && len(str) > x {
					m.Push(value.Str(str[:x]))
					num++
					str = str[x:]
				}
				m.Push(value.Str(str))
				num++
				m.Push(value.Int(num))
			case value.Real:
				x := right.Real()
				p := 0.0
				var num int64
				for float64(len(str))-p > x {
					part := str[int(p+half):int(p+x+half)]
					m.Push(value.Str(part))
					p += x
					num++
				}
				m.Push(value.Str(str[int(p+half):]))
				num++
				m.Push(value.Int(num))
			default:
				m.Push(left)
			}
		}
		return
	}

	switch left.Kind() {
	case value.Integer:
		if right.Integer() == 0 {
			m.Push(value.Int(0))
			return
		}
		m.Push(value.Int(left.Integer() / right.Integer()))
	case value.Real:
		m.Push(value.Flt(left.Real() / right.Real()))
	case value.External:
		sendExternal(m, left, "/", right)
	case value.Pointer:
		m.Push(left)
	case value.String:
		str, sep := left.Text(), right.Text()
		var num int64
		for {
			pos := strings.Index(str, sep)
			if pos < 0 {
				break
			}
			m.Push(value.Str(str[:pos]))
			str = str[pos+len(sep):]
			num++
		}
		m.Push(value.Str(str))
		num++
		m.Push(value.Int(num))
	}
}

func builtinModulo(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	right, left := m.Pop(), m.Pop()
	s := m.Store()

	if left.Kind() != right.Kind() {
		switch left.Kind() {
		case value.Integer:
		case value.Real:
			r := s.AsInteger(right)
			if r == 0 {
				m.Push(value.Int(-1))
			} else {
				n := s.AsInteger(left) % r
				if n < 0 {
					n = -n
				}
				m.Push(value.Int(n))
			}
		case value.External:
			sendExternal(m, left, "%", right)
		case value.Pointer, value.String:
			m.Push(left)
		}
		return
	}

	switch left.Kind() {
	case value.Integer, value.Real:
		r := s.AsInteger(right)
		if r == 0 {
			m.Push(value.Int(-1))
			return
		}
		m.Push(value.Int(s.AsInteger(left) % r))
	case value.External:
		sendExternal(m, left, "%", right)
	case value.Pointer, value.String:
		m.Push(left)
	}
}

func builtinPower(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	right, left := m.Pop(), m.Pop()
	if right.Kind() > value.Real || left.Kind() > value.Real {
		m.Push(left)
		return
	}
	s := m.Store()
	m.Push(value.Flt(math.Pow(s.AsReal(left), s.AsReal(right))))
}

func sendExternal(m bytecode.Machine, left value.Value, selector string, right value.Value) {
	if ext := left.External(); ext != nil {
		ext.Send(m, selector, right)
	}
	m.Push(left)
}

// compareKinds implements the mismatched-kind short circuit shared by every
// comparison builtin: differing kinds are always "not equal" and never
// ordered, so equal/notEqual flip a single bool and the four ordering
// builtins simply push false.
func compareKinds(m bytecode.Machine, wantEqual bool) (left, right value.Value, handled bool) {
	right, left = m.Pop(), m.Pop()
	if left.Kind() != right.Kind() {
		m.Push(value.Bool(!wantEqual))
		return left, right, true
	}
	return left, right, false
}

func builtinEqual(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	left, right, handled := compareKinds(m, true)
	if handled {
		return
	}
	m.Push(value.Bool(left.Equal(right)))
}

func builtinNotEqual(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	left, right, handled := compareKinds(m, false)
	if handled {
		return
	}
	m.Push(value.Bool(!left.Equal(right)))
}

func builtinLess(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	left, right, handled := compareKinds(m, true)
	if handled {
		return
	}
	if left.Kind() == value.External {
		sendExternal(m, left, "<", right)
		return
	}
	m.Push(value.Bool(left.Less(right)))
}

func builtinLessEqual(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	left, right, handled := compareKinds(m, true)
	if handled {
		return
	}
	if left.Kind() == value.External {
		sendExternal(m, left, "<=", right)
		return
	}
	m.Push(value.Bool(left.Less(right) || left.Equal(right)))
}

func builtinGreater(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	left, right, handled := compareKinds(m, true)
	if handled {
		return
	}
	if left.Kind() == value.External {
		sendExternal(m, left, ">", right)
		return
	}
	m.Push(value.Bool(!left.Less(right) && !left.Equal(right)))
}

func builtinGreaterEqual(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	left, right, handled := compareKinds(m, true)
	if handled {
		return
	}
	if left.Kind() == value.External {
		sendExternal(m, left, ">=", right)
		return
	}
	m.Push(value.Bool(!left.Less(right)))
}

func builtinLen(m bytecode.Machine) {
	if m.Size() < 1 {
		return
	}
	v := m.Pop()
	if v.Kind() != value.String {
		m.Push(value.Int(0))
		return
	}
	m.Push(value.Int(int64(len(v.Text()))))
}

func builtinExplode(m bytecode.Machine) {
	if m.Size() < 1 {
		return
	}
	v := m.Top()
	if v.Kind() != value.String {
		return
	}
	m.Pop()
	for _, r := range v.Text() {
		m.Push(value.Str(string(r)))
	}
	m.Push(value.Int(int64(len([]rune(v.Text())))))
}

func builtinGet(m bytecode.Machine) {
	if m.Empty() {
		return
	}
	v := m.Pop()
	if v.Kind() != value.Pointer {
		return
	}
	m.Push(m.Store().Get(v.Pointer()))
}

// builtinStoreLeft implements "<-": (var) (value) <-
func builtinStoreLeft(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	val := m.Pop()
	v := m.Pop()
	if v.Kind() != value.Pointer {
		return
	}
	m.Store().Set(v.Pointer(), val)
}

// builtinStoreRight implements "->": (value) (var) ->
func builtinStoreRight(m bytecode.Machine) {
	if m.Size() < 2 {
		return
	}
	v := m.Pop()
	val := m.Pop()
	if v.Kind() != value.Pointer {
		return
	}
	m.Store().Set(v.Pointer(), val)
}
