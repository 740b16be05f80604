package vm

import (
	"github.com/ember-lang/ember/internal/diag"
	"github.com/ember-lang/ember/internal/typedast"
	"github.com/ember-lang/ember/internal/typesystem"
)

// callFrame is one entry of the VM's call stack: the spot to resume the
// caller at, the closure's entry ip (where Recur jumps back to), the stack
// index where this activation's arguments begin, how many of them there
// are, and the closure's captured upvalues (consulted by GetEnv while this
// frame is active). Recur takes its argument count from its own
// instruction, not from nArgs.
type callFrame struct {
	returnIP  int
	entry     int
	frameBase int
	nArgs     int
	upvalues  []CapturedUpvalue
}

// VM is the stack-based virtual machine described by the data model: an
// operand stack, a call stack, an instruction pointer, and the process-
// lifetime Environment. A VM instance owns its instruction vector
// exclusively; successive Eval calls only ever append to it.
type VM struct {
	program *Program
	env     *Environment

	stack  []Value
	frames []callFrame

	lastLine int
	lastCol  int
}

// New constructs an empty VM, corresponding to the public new_vm() surface.
func New() *VM {
	return &VM{
		program: NewProgram(),
		env:     NewEnvironment(),
		stack:   make([]Value, 0, 256),
		frames:  make([]callFrame, 0, 32),
	}
}

// Env exposes the VM's persistent environment so the type checker can share
// its type map across successive top-level evaluations.
func (m *VM) Env() *Environment {
	return m.env
}

// Eval compiles a fully type-checked node and runs it to completion,
// appending its instructions to the VM's permanently growing vector and
// returning the projected result value. It implements the public
// eval(vm, ast) -> Result<Value, InterpreterError> surface (the checking
// step itself is the caller's responsibility, per §6: parse/typecheck are
// external to this call).
func (m *VM) Eval(node typedast.Node) (Value, *diag.Error) {
	top := NewProgram()
	Generate(m.program, top, node, map[string]int{})

	start := m.program.Len()
	m.program.Instructions = append(m.program.Instructions, top.Instructions...)
	end := m.program.Len()

	savedStackLen := len(m.stack)
	savedFrameLen := len(m.frames)

	if rerr := m.run(start, end); rerr != nil {
		m.stack = m.stack[:savedStackLen]
		m.frames = m.frames[:savedFrameLen]
		return Value{}, rerr
	}

	result, rerr := m.project(node.Type())
	if rerr != nil {
		m.stack = m.stack[:savedStackLen]
		return Value{}, rerr
	}
	return result, nil
}

// project reconstructs the top-level result from the operand stack
// following §4.6: a scalar type pops one value; a Tuple(T1..Tn) pops n
// values (last-element-first, given generation order) and reassembles them
// into a single Tuple value in original order.
func (m *VM) project(t typesystem.Type) (Value, *diag.Error) {
	if tup, ok := t.(typesystem.Tuple); ok {
		n := len(tup.Elements)
		if len(m.stack) < n {
			return Value{}, m.underflow()
		}
		elems := make([]Value, n)
		for i := n - 1; i >= 0; i-- {
			elems[i] = m.stack[len(m.stack)-1]
			m.stack = m.stack[:len(m.stack)-1]
		}
		return TupleVal(elems), nil
	}
	if len(m.stack) < 1 {
		return Value{}, m.underflow()
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *VM) underflow() *diag.Error {
	return diag.New(m.lastLine, m.lastCol, msgStackUnderflow)
}
