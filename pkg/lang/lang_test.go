package ember

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func id(name string) *Identifier { return &Identifier{Name: name} }
func i(v int64) *Integer         { return &Integer{Value: v} }
func b(v bool) *Boolean          { return &Boolean{Value: v} }

func binOp(op BinaryOperator, lhs, rhs Expression) *BinaryOp {
	return &BinaryOp{Op: op, Lhs: lhs, Rhs: rhs}
}

func tuple(elems ...Expression) *Tuple        { return &Tuple{Elements: elems} }
func fnLit(param, body Expression) *Function  { return &Function{Param: param, Body: body} }
func callExpr(fn, arg Expression) *Call       { return &Call{Fn: fn, Arg: arg} }
func letExpr(name string, v Expression) *Let  { return &Let{Name: name, Value: v} }
func program(exprs ...Expression) *Program    { return &Program{Expressions: exprs} }

// Scenario 1: 1 + 2 * 5 => Integer(11).
func TestScenarioArithmeticPrecedence(t *testing.T) {
	v := NewVM()
	result, err := Eval(v, binOp(OpAdd, i(1), binOp(OpMul, i(2), i(5))))
	require.NoError(t, err)
	got, ok := result.AsInteger()
	require.True(t, ok)
	require.Equal(t, int64(11), got)
}

// Scenario 2: (fn (x, y) -> x + y end) (1, 2) => Integer(3).
func TestScenarioTupleParameterCall(t *testing.T) {
	v := NewVM()
	closure := fnLit(tuple(id("x"), id("y")), binOp(OpAdd, id("x"), id("y")))
	result, err := Eval(v, callExpr(closure, tuple(i(1), i(2))))
	require.NoError(t, err)
	got, _ := result.AsInteger()
	require.Equal(t, int64(3), got)
}

// Scenario 3: closures capture by value at creation time, not by name.
func TestScenarioClosureCapturesByValue(t *testing.T) {
	v := NewVM()
	expr := program(
		letExpr("t", i(1)),
		letExpr("f", fnLit(id("x"), binOp(OpAdd, id("x"), id("t")))),
		letExpr("t", i(2)),
		callExpr(id("f"), i(1)),
	)
	result, err := Eval(v, expr)
	require.NoError(t, err)
	got, _ := result.AsInteger()
	require.Equal(t, int64(2), got)
}

// Scenario 4: two-level closure, outer parameter captured as an upvalue.
func TestScenarioTwoLevelClosure(t *testing.T) {
	v := NewVM()
	inner := fnLit(id("x"), binOp(OpAdd, id("x"), id("t")))
	outer := fnLit(id("t"), inner)
	expr := program(
		letExpr("f", outer),
		callExpr(callExpr(id("f"), i(2)), i(1)),
	)
	result, err := Eval(v, expr)
	require.NoError(t, err)
	got, _ := result.AsInteger()
	require.Equal(t, int64(3), got)
}

// Scenario 5: tuple equality and inequality.
func TestScenarioTupleEquality(t *testing.T) {
	v := NewVM()
	eq, err := Eval(v, binOp(OpEq, tuple(i(1), i(1), i(1), i(1)), tuple(i(1), i(1), i(1), i(0))))
	require.NoError(t, err)
	eqVal, _ := eq.AsBoolean()
	require.False(t, eqVal)

	v2 := NewVM()
	neq, err := Eval(v2, binOp(OpNeq, tuple(i(1), i(1)), tuple(i(1), i(0))))
	require.NoError(t, err)
	neqVal, _ := neq.AsBoolean()
	require.True(t, neqVal)
}

// Scenario 6: Project Euler 1 via tail recursion, no call-stack growth.
func TestScenarioProjectEuler1ViaRecur(t *testing.T) {
	cond35 := binOp(OpOr,
		binOp(OpEq, binOp(OpMod, id("n"), i(3)), i(0)),
		binOp(OpEq, binOp(OpMod, id("n"), i(5)), i(0)))

	body := &If{
		Branches: []Branch{
			{Cond: binOp(OpEq, id("n"), i(1000)), Body: id("sum")},
			{Cond: cond35, Body: &Recur{Arg: tuple(binOp(OpAdd, id("n"), i(1)), binOp(OpAdd, id("sum"), id("n")))}},
		},
		Else: &Recur{Arg: tuple(binOp(OpAdd, id("n"), i(1)), id("sum"))},
	}
	main := fnLit(tuple(id("n"), id("sum")), body)

	v := NewVM()
	expr := program(
		letExpr("main", main),
		callExpr(id("main"), tuple(i(0), i(0))),
	)
	result, err := Eval(v, expr)
	require.NoError(t, err)
	got, _ := result.AsInteger()
	require.Equal(t, int64(233168), got)
}

// Scenario 7: 1 / 0 => runtime error "Division by zero."
func TestScenarioDivisionByZero(t *testing.T) {
	v := NewVM()
	_, err := Eval(v, binOp(OpDiv, i(1), i(0)))
	require.Error(t, err)
	require.Equal(t, "Division by zero.", err.Error())
}

// Scenario 8: 1 == true => type error.
func TestScenarioEqualityTypeMismatch(t *testing.T) {
	v := NewVM()
	_, err := Eval(v, binOp(OpEq, i(1), b(true)))
	require.Error(t, err)
	require.Equal(t, "Type error: type mismatch between integer and boolean.", err.Error())
}

// Scenario 9: if 1 then false else true end => type error.
func TestScenarioIfConditionMustBeBoolean(t *testing.T) {
	v := NewVM()
	expr := &If{Branches: []Branch{{Cond: i(1), Body: b(false)}}, Else: b(true)}
	_, err := Eval(v, expr)
	require.Error(t, err)
	require.Equal(t, "Type error: expected boolean.", err.Error())
}

// Scenario 10: fn 1 -> 5 end => type error.
func TestScenarioInvalidParameterShape(t *testing.T) {
	v := NewVM()
	_, err := Eval(v, fnLit(i(1), i(5)))
	require.Error(t, err)
	require.Equal(t, "Type error: function parameters should be identifier or tuple of identifiers.", err.Error())
}

func TestInterpreterErrorCarriesPosition(t *testing.T) {
	v := NewVM()
	expr := binOp(OpDiv, i(1), i(0))
	_, err := Eval(v, expr)
	require.Error(t, err)
	ierr, ok := err.(*InterpreterError)
	require.True(t, ok)
	require.Equal(t, 0, ierr.Line)
	require.Equal(t, 0, ierr.Col)
}
