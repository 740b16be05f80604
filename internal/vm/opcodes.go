// Package vm implements the stack-based bytecode virtual machine: the code
// generator that lowers a typed AST into a flat instruction vector, and the
// machine that executes that vector against an operand stack, a call
// stack, and the persistent top-level environment.
package vm

// Opcode identifies a single VM instruction.
type Opcode uint8

const (
	OpIconst Opcode = iota // push an integer constant
	OpBconst               // push a boolean constant
	OpFconst               // push a closure constant

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	OpAnd
	OpOr
	OpNot
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual

	OpDup
	OpPop
	OpRot // cyclic rotate of the top three stack slots: [a, b, c] -> [c, a, b]

	OpArg    // push the value at frame_base + offset
	OpGetEnv // push a captured upvalue or a global binding
	OpSetEnv // pop and store into the global environment

	OpJz  // pop a boolean; jump by Offset (relative to this instruction) if false
	OpJmp // unconditional jump by Offset (relative to this instruction)

	OpCall  // pop a closure and dispatch into it
	OpRet   // return, dropping the Offset argument slots beneath the top-of-stack result
	OpRecur // tail-jump to the current function's entry, reusing its frame

	OpSrcpos // no-op that updates the VM's last-known source position
)
