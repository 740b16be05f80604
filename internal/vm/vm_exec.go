package vm

import "github.com/ember-lang/ember/internal/diag"

// run executes instructions from ip=start, stopping when ip reaches end
// with the call stack back at its starting depth, or when an opcode fails.
// Internal invariant violations (stack underflow mid-execution, an
// undefined binding the checker should have ruled out, a malformed
// instruction) are raised via fail() and converted here, mirroring the
// teacher's step()-recover idiom: they are bugs in the generator or
// checker, not user-facing conditions, but still surface as an error
// rather than crashing the process.
func (m *VM) run(start, end int) (rerr *diag.Error) {
	defer func() {
		if r := recover(); r != nil {
			p, ok := r.(runtimePanic)
			if !ok {
				panic(r)
			}
			rerr = diag.New(m.lastLine, m.lastCol, p.format, p.args...)
		}
	}()

	ip := start
	baseFrameCount := len(m.frames)

	for {
		if len(m.frames) == baseFrameCount && ip >= end {
			return nil
		}
		if ip < 0 || ip >= len(m.program.Instructions) {
			fail(msgBadInstrPointer)
		}

		instr := m.program.Instructions[ip]
		next := ip + 1

		switch instr.Op {
		case OpIconst:
			m.push(Integer(instr.Int))
		case OpBconst:
			m.push(Boolean(instr.Bool))
		case OpFconst:
			m.push(m.makeClosure(instr))

		case OpAdd:
			a, b := m.popInt2()
			m.push(Integer(a + b))
		case OpSub:
			a, b := m.popInt2()
			m.push(Integer(a - b))
		case OpMul:
			a, b := m.popInt2()
			m.push(Integer(a * b))
		case OpDiv:
			a, b := m.popInt2()
			if b == 0 {
				fail(msgDivisionByZero)
			}
			m.push(Integer(a / b))
		case OpMod:
			a, b := m.popInt2()
			if b == 0 {
				fail(msgDivisionByZero)
			}
			m.push(Integer(a % b))

		case OpAnd:
			a, b := m.popBool2()
			m.push(Boolean(a && b))
		case OpOr:
			a, b := m.popBool2()
			m.push(Boolean(a || b))
		case OpNot:
			a := m.popBool()
			m.push(Boolean(!a))

		case OpEqual:
			a, b := m.pop2()
			m.push(Boolean(a.Equal(b)))
		case OpNotEqual:
			a, b := m.pop2()
			m.push(Boolean(!a.Equal(b)))
		case OpLess:
			a, b := m.popInt2()
			m.push(Boolean(a < b))
		case OpLessEqual:
			a, b := m.popInt2()
			m.push(Boolean(a <= b))
		case OpGreater:
			a, b := m.popInt2()
			m.push(Boolean(a > b))
		case OpGreaterEqual:
			a, b := m.popInt2()
			m.push(Boolean(a >= b))

		case OpDup:
			m.push(m.peek())
		case OpPop:
			m.pop()
		case OpRot:
			n := len(m.stack)
			if n < 3 {
				fail(msgStackUnderflow)
			}
			a, b, c := m.stack[n-3], m.stack[n-2], m.stack[n-1]
			m.stack[n-3], m.stack[n-2], m.stack[n-1] = c, a, b

		case OpArg:
			m.push(m.stack[m.frameBase()+instr.Offset])
		case OpGetEnv:
			m.push(m.getEnv(instr.Name))
		case OpSetEnv:
			m.env.SetValue(instr.Name, m.pop())

		case OpJz:
			if !m.pop().Bool {
				next = ip + instr.Offset
			}
		case OpJmp:
			next = ip + instr.Offset

		case OpSrcpos:
			m.lastLine, m.lastCol = instr.Line, instr.Col

		case OpCall:
			next = m.execCall(ip)
		case OpRet:
			next, _ = m.execRet(instr)
		case OpRecur:
			next = m.execRecur(instr)

		default:
			fail(msgInvalidOpcode, instr.Op)
		}

		ip = next
	}
}

func (m *VM) frameBase() int {
	if len(m.frames) == 0 {
		return 0
	}
	return m.frames[len(m.frames)-1].frameBase
}

func (m *VM) getEnv(name string) Value {
	if len(m.frames) > 0 {
		for _, uv := range m.frames[len(m.frames)-1].upvalues {
			if uv.Name == name {
				return uv.Value
			}
		}
	}
	if v, ok := m.env.GetValue(name); ok {
		return v
	}
	fail(msgUndefinedEnv, name)
	return Value{}
}

func (m *VM) makeClosure(instr Instruction) Value {
	base := m.frameBase()
	upvalues := make([]CapturedUpvalue, len(instr.Upvalues))
	for i, uv := range instr.Upvalues {
		var v Value
		if uv.Global {
			v = m.getEnv(uv.Name)
		} else {
			v = m.stack[base+uv.Offset]
		}
		upvalues[i] = CapturedUpvalue{Name: uv.Name, Type: uv.Type, Value: v}
	}
	return ClosureVal(&Closure{Entry: instr.Entry, Argc: instr.Argc, Upvalues: upvalues})
}

func (m *VM) execCall(ip int) int {
	callee := m.pop()
	if !callee.IsClosure() {
		fail(msgNotAClosure)
	}
	closure := callee.Closure
	if len(m.stack) < closure.Argc {
		fail(msgStackUnderflow)
	}
	frameBase := len(m.stack) - closure.Argc
	m.frames = append(m.frames, callFrame{
		returnIP:  ip + 1,
		entry:     closure.Entry,
		frameBase: frameBase,
		nArgs:     closure.Argc,
		upvalues:  closure.Upvalues,
	})
	return closure.Entry
}

func (m *VM) execRet(instr Instruction) (next int, done bool) {
	_ = instr // pop count is derivable from the frame; kept on the instruction for disassembly fidelity
	if len(m.frames) == 0 {
		fail(msgStackUnderflow)
	}
	result := m.pop()
	frame := m.frames[len(m.frames)-1]
	m.frames = m.frames[:len(m.frames)-1]

	m.stack = m.stack[:frame.frameBase]
	m.push(result)
	return frame.returnIP, true
}

func (m *VM) execRecur(instr Instruction) int {
	if len(m.frames) == 0 {
		fail(msgStackUnderflow)
	}
	frame := m.frames[len(m.frames)-1]
	argc := instr.Offset
	if len(m.stack) < argc {
		fail(msgStackUnderflow)
	}
	newArgs := make([]Value, argc)
	copy(newArgs, m.stack[len(m.stack)-argc:])
	m.stack = m.stack[:len(m.stack)-argc]
	copy(m.stack[frame.frameBase:], newArgs)
	m.stack = m.stack[:frame.frameBase+argc]
	return frame.entry
}

func (m *VM) push(v Value) {
	m.stack = append(m.stack, v)
}

func (m *VM) peek() Value {
	if len(m.stack) == 0 {
		fail(msgStackUnderflow)
	}
	return m.stack[len(m.stack)-1]
}

func (m *VM) pop() Value {
	if len(m.stack) == 0 {
		fail(msgStackUnderflow)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

// pop2 returns (a, b) where a was the most recently pushed value (the one
// the code generator calls "lhs") and b the one beneath it ("rhs"),
// matching the operand order in the code generator's binary-op comment.
func (m *VM) pop2() (Value, Value) {
	a := m.pop()
	b := m.pop()
	return a, b
}

func (m *VM) popInt2() (int64, int64) {
	a, b := m.pop2()
	return a.Int, b.Int
}

func (m *VM) popBool2() (bool, bool) {
	a, b := m.pop2()
	return a.Bool, b.Bool
}

func (m *VM) popBool() bool {
	return m.pop().Bool
}
