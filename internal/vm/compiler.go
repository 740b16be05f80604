package vm

import (
	"fmt"

	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/typedast"
	"github.com/ember-lang/ember/internal/typesystem"
)

// Generate lowers a fully type-checked node, appending instructions to buf.
// global is the VM's single persistent instruction vector: function bodies
// are always spliced there directly (so their entry ip is stable and
// meaningful VM-wide) regardless of which buffer the call site is building
// — buf is a separate top-level buffer that Eval appends to global once
// generation is done, a fresh buffer for a function body, or a fresh
// temporary buffer while an If branch's length is being measured.
//
// ids maps identifiers bound as arguments of the function currently being
// compiled to their offset within that activation frame; identifiers
// absent from ids are global bindings, compiled to GetEnv/SetEnv.
func Generate(global, buf *Program, node typedast.Node, ids map[string]int) {
	switch n := node.(type) {
	case *typedast.Integer:
		buf.emit(Instruction{Op: OpIconst, Int: n.Value})

	case *typedast.Boolean:
		buf.emit(Instruction{Op: OpBconst, Bool: n.Value})

	case *typedast.Identifier:
		if offset, ok := ids[n.Name]; ok {
			buf.emit(Instruction{Op: OpArg, Offset: offset})
		} else {
			buf.emit(Instruction{Op: OpGetEnv, Name: n.Name})
		}

	case *typedast.UnaryOp:
		generateUnary(global, buf, n, ids)

	case *typedast.BinaryOp:
		generateBinary(global, buf, n, ids)

	case *typedast.Tuple:
		for _, e := range n.Elements {
			Generate(global, buf, e, ids)
		}

	case *typedast.Let:
		Generate(global, buf, n.Value, ids)
		buf.emit(Instruction{Op: OpDup})
		buf.emit(Instruction{Op: OpSetEnv, Name: n.Name})

	case *typedast.If:
		generateIf(global, buf, n, ids)

	case *typedast.Function:
		generateFunction(global, buf, n, ids)

	case *typedast.Call:
		Generate(global, buf, n.Arg, ids)
		Generate(global, buf, n.Fn, ids)
		buf.emit(Instruction{Op: OpCall})

	case *typedast.Recur:
		generateRecur(global, buf, n, ids)

	case *typedast.Program:
		for i, e := range n.Expressions {
			Generate(global, buf, e, ids)
			if i != len(n.Expressions)-1 {
				buf.emit(Instruction{Op: OpPop})
			}
		}

	default:
		panic(fmt.Sprintf("vm: unreachable: unknown typed node %T", node))
	}
}

func generateUnary(global, buf *Program, n *typedast.UnaryOp, ids map[string]int) {
	Generate(global, buf, n.Operand, ids)
	switch n.Op {
	case ast.OpNeg:
		buf.emit(Instruction{Op: OpIconst, Int: 0})
		buf.emit(Instruction{Op: OpSub})
	case ast.OpNot:
		buf.emit(Instruction{Op: OpNot})
	default:
		panic(fmt.Sprintf("vm: unreachable: unknown unary operator %v", n.Op))
	}
}

func generateBinary(global, buf *Program, n *typedast.BinaryOp, ids map[string]int) {
	pos := n.Pos()
	buf.emit(Instruction{Op: OpSrcpos, Line: pos.Line, Col: pos.Col})

	// Operand order matches the VM's pop convention: the first value popped
	// (the one generated last, so it ends on top) plays the "lhs" role.
	Generate(global, buf, n.Rhs, ids)
	Generate(global, buf, n.Lhs, ids)

	switch n.Op {
	case ast.OpEq:
		if tup, ok := n.Rhs.Type().(typesystem.Tuple); ok {
			generateTupleEquality(buf, len(tup.Elements), false)
			return
		}
		buf.emit(Instruction{Op: OpEqual})
	case ast.OpNeq:
		if tup, ok := n.Rhs.Type().(typesystem.Tuple); ok {
			generateTupleEquality(buf, len(tup.Elements), true)
			return
		}
		buf.emit(Instruction{Op: OpNotEqual})
	default:
		buf.emit(Instruction{Op: binaryOpcode(n.Op)})
	}
}

// generateTupleEquality interleaves the two already-generated tuples (N
// elements of rhs, then N elements of lhs) via repeated Rot so each pair of
// corresponding elements meets the comparison opcode in turn, combining
// results with And for equality or Or for inequality.
func generateTupleEquality(buf *Program, arity int, negate bool) {
	elemOp, combinator := OpEqual, OpAnd
	if negate {
		elemOp, combinator = OpNotEqual, OpOr
	}
	buf.emit(Instruction{Op: elemOp})
	for i := 1; i < arity; i++ {
		buf.emit(Instruction{Op: OpRot})
		buf.emit(Instruction{Op: elemOp})
		buf.emit(Instruction{Op: combinator})
	}
}

func binaryOpcode(op ast.BinaryOperator) Opcode {
	switch op {
	case ast.OpAdd:
		return OpAdd
	case ast.OpSub:
		return OpSub
	case ast.OpMul:
		return OpMul
	case ast.OpDiv:
		return OpDiv
	case ast.OpMod:
		return OpMod
	case ast.OpAnd:
		return OpAnd
	case ast.OpOr:
		return OpOr
	case ast.OpLt:
		return OpLess
	case ast.OpLe:
		return OpLessEqual
	case ast.OpGt:
		return OpGreater
	case ast.OpGe:
		return OpGreaterEqual
	default:
		panic(fmt.Sprintf("vm: unreachable: unknown binary operator %v", op))
	}
}
