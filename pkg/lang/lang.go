// Package ember is the public embedding surface for the language core: a
// type checker, a bytecode code generator, and the stack-based virtual
// machine that executes the result. It mirrors the host-facing contract in
// the design notes: construct a VM once, then feed it one parsed
// expression at a time.
//
// Parsing is not part of this package. Callers build an internal/ast tree
// (re-exported here) themselves, typically from an external parser, and
// hand it to Eval.
package ember

import (
	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/checker"
	"github.com/ember-lang/ember/internal/diag"
	"github.com/ember-lang/ember/internal/vm"
)

// Re-export the AST package so callers never need to import the internal
// tree directly.
type (
	Expression     = ast.Expression
	Pos            = ast.Pos
	Integer        = ast.Integer
	Boolean        = ast.Boolean
	Identifier     = ast.Identifier
	UnaryOp        = ast.UnaryOp
	BinaryOp       = ast.BinaryOp
	Tuple          = ast.Tuple
	Branch         = ast.Branch
	If             = ast.If
	Function       = ast.Function
	Call           = ast.Call
	Let            = ast.Let
	Recur          = ast.Recur
	Program        = ast.Program
	UnaryOperator  = ast.UnaryOperator
	BinaryOperator = ast.BinaryOperator
)

const (
	OpNeg = ast.OpNeg
	OpNot = ast.OpNot

	OpAdd = ast.OpAdd
	OpSub = ast.OpSub
	OpMul = ast.OpMul
	OpDiv = ast.OpDiv
	OpMod = ast.OpMod
	OpAnd = ast.OpAnd
	OpOr  = ast.OpOr
	OpEq  = ast.OpEq
	OpNeq = ast.OpNeq
	OpLt  = ast.OpLt
	OpLe  = ast.OpLe
	OpGt  = ast.OpGt
	OpGe  = ast.OpGe
)

// VM is an opaque handle on the checker's type environment and the
// machine's runtime environment, both of which persist across successive
// Eval calls on the same instance.
type VM struct {
	machine *vm.VM
}

// NewVM constructs an empty VM, implementing the new_vm() surface.
func NewVM() *VM {
	return &VM{machine: vm.New()}
}

// InterpreterError is the host-facing error shape shared by type and
// runtime failures: a fixed-template message plus the source position it
// was attributed to.
type InterpreterError struct {
	Message string
	Line    int
	Col     int
}

func (e *InterpreterError) Error() string {
	return e.Message
}

// Eval type-checks and runs expr against v, implementing the
// eval(vm, ast) -> Result<Value, InterpreterError> surface. Type errors
// and runtime errors are both reported as *InterpreterError; the VM's
// state remains consistent after either (bindings committed before the
// failure persist, the failing expression's partial stack effects do not).
func Eval(v *VM, expr Expression) (Value, error) {
	typed, err := checker.Check(v.machine.Env(), expr)
	if err != nil {
		return Value{}, toInterpreterError(err)
	}

	result, rerr := v.machine.Eval(typed)
	if rerr != nil {
		return Value{}, toInterpreterError(rerr)
	}
	return fromRuntimeValue(result), nil
}

// toInterpreterError unwraps the *diag.Error both the checker and the VM
// produce. Both packages only ever construct this one concrete shape, so
// the type assertion is infallible in practice; the fallback keeps only the
// message of any other error, with no position.
func toInterpreterError(err error) *InterpreterError {
	if d, ok := err.(*diag.Error); ok {
		return &InterpreterError{Message: d.Message, Line: d.Line, Col: d.Col}
	}
	return &InterpreterError{Message: err.Error()}
}
