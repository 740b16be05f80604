package vm

import "github.com/ember-lang/ember/internal/typesystem"

// Upvalue names one free variable a closure captures, together with its
// frozen-at-capture type. It is recorded on the Fconst instruction that
// builds the closure. A free variable is either a still-live argument of an
// enclosing function frame (Offset, Global false) or a binding from the
// global environment (Global true, Offset unused) — both are snapshotted at
// Fconst execution time so a later Let of the same name cannot retroactively
// change what an already-built closure sees.
type Upvalue struct {
	Name   string
	Offset int // offset in the *enclosing* frame at the moment of capture; meaningless when Global
	Global bool
	Type   typesystem.Type
}

// Instruction is one entry of the VM's flat instruction vector. Only the
// fields relevant to Op are meaningful; this mirrors a tagged union but as
// a flat struct, which keeps the code generator's emit helpers simple and
// keeps instruction indices stable once appended (the vector only grows).
type Instruction struct {
	Op Opcode

	Int  int64 // Iconst
	Bool bool  // Bconst

	Entry    int       // Fconst: ip of the closure's subroutine
	Argc     int       // Fconst: argument-frame width, used by Call to locate the frame
	Upvalues []Upvalue // Fconst

	Offset int // Jz/Jmp: relative jump offset; Arg: frame offset; Recur: argument count; Ret: pop count

	Name string // GetEnv/SetEnv

	Line int // Srcpos
	Col  int // Srcpos
}

// Program is the VM's instruction vector. It only ever grows: successive
// top-level Eval calls append to it, and earlier instruction indices stay
// valid, which is what lets closures captured in one Eval call be invoked
// in a later one.
type Program struct {
	Instructions []Instruction
}

func NewProgram() *Program {
	return &Program{Instructions: make([]Instruction, 0, 64)}
}

// Len returns the index the next appended instruction will occupy.
func (p *Program) Len() int {
	return len(p.Instructions)
}

func (p *Program) emit(in Instruction) int {
	p.Instructions = append(p.Instructions, in)
	return len(p.Instructions) - 1
}
