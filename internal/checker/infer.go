package checker

import (
	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/typesystem"
)

// fixedUnaryOperand returns the operand type an operator always demands.
func fixedUnaryOperand(op ast.UnaryOperator) typesystem.Type {
	if op == ast.OpNot {
		return typesystem.Boolean{}
	}
	return typesystem.Integer{}
}

// fixedBinaryOperand returns the operand type a binary operator always
// demands, or false for Equal/NotEqual, whose operand type depends on the
// other side.
func fixedBinaryOperand(op ast.BinaryOperator) (typesystem.Type, bool) {
	switch op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		return typesystem.Integer{}, true
	case ast.OpAnd, ast.OpOr:
		return typesystem.Boolean{}, true
	default: // OpEq, OpNeq
		return nil, false
	}
}

// typeFromEqualityOperand inspects the non-identifier side of an ==/~=
// comparison and returns the type it evidences, or Any when no useful
// evidence is available. It never returns nil: this function is only
// consulted once the other side has already matched the parameter name, so
// some verdict — even Any — is always produced.
func typeFromEqualityOperand(e ast.Expression) typesystem.Type {
	switch n := e.(type) {
	case *ast.Boolean:
		return typesystem.Boolean{}
	case *ast.Integer:
		return typesystem.Integer{}
	case *ast.UnaryOp:
		return fixedUnaryOperand(n.Op)
	case *ast.BinaryOp:
		if t, ok := fixedBinaryOperand(n.Op); ok {
			return t
		}
		return typesystem.Any{}
	default:
		return typesystem.Any{}
	}
}

// inferParam scans body for the first use site that constrains the type of
// parameter name, per the rules in the spec's parameter-inferer component.
// It returns (type, true) on success, or (nil, false) if body gives no
// evidence at all.
func inferParam(name string, body ast.Expression) (typesystem.Type, bool) {
	switch e := body.(type) {
	case *ast.Integer, *ast.Boolean:
		return nil, false

	case *ast.Identifier:
		return nil, false

	case *ast.UnaryOp:
		if id, ok := e.Operand.(*ast.Identifier); ok && id.Name == name {
			return fixedUnaryOperand(e.Op), true
		}
		return inferParam(name, e.Operand)

	case *ast.BinaryOp:
		if id, ok := e.Lhs.(*ast.Identifier); ok && id.Name == name {
			if t, ok := fixedBinaryOperand(e.Op); ok {
				return t, true
			}
			return typeFromEqualityOperand(e.Rhs), true
		}
		if id, ok := e.Rhs.(*ast.Identifier); ok && id.Name == name {
			if t, ok := fixedBinaryOperand(e.Op); ok {
				return t, true
			}
			return typeFromEqualityOperand(e.Lhs), true
		}
		if t, ok := inferParam(name, e.Lhs); ok {
			return t, true
		}
		return inferParam(name, e.Rhs)

	case *ast.Tuple:
		for _, elem := range e.Elements {
			if t, ok := inferParam(name, elem); ok {
				return t, true
			}
		}
		return nil, false

	case *ast.If:
		for _, b := range e.Branches {
			if t, ok := inferParam(name, b.Cond); ok {
				return t, true
			}
			if t, ok := inferParam(name, b.Body); ok {
				return t, true
			}
		}
		return inferParam(name, e.Else)

	case *ast.Function:
		return inferParam(name, e.Body)

	case *ast.Call:
		return nil, false

	case *ast.Let:
		return inferParam(name, e.Value)

	case *ast.Recur:
		return inferParam(name, e.Arg)

	case *ast.Program:
		for _, expr := range e.Expressions {
			if t, ok := inferParam(name, expr); ok {
				return t, true
			}
		}
		return nil, false

	default:
		return nil, false
	}
}
