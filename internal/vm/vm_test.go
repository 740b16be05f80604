package vm

import (
	"testing"

	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/checker"
)

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }
func integer(v int64) *ast.Integer      { return &ast.Integer{Value: v} }
func boolean(v bool) *ast.Boolean       { return &ast.Boolean{Value: v} }

func bin(op ast.BinaryOperator, lhs, rhs ast.Expression) *ast.BinaryOp {
	return &ast.BinaryOp{Op: op, Lhs: lhs, Rhs: rhs}
}

func tup(elems ...ast.Expression) *ast.Tuple { return &ast.Tuple{Elements: elems} }

func fn(param, body ast.Expression) *ast.Function { return &ast.Function{Param: param, Body: body} }
func call(f, a ast.Expression) *ast.Call           { return &ast.Call{Fn: f, Arg: a} }
func let(name string, v ast.Expression) *ast.Let   { return &ast.Let{Name: name, Value: v} }
func prog(exprs ...ast.Expression) *ast.Program    { return &ast.Program{Expressions: exprs} }

// runExpr type-checks and evaluates expr against a fresh machine, failing
// the test on either a type error or a runtime error.
func runExpr(t *testing.T, m *VM, expr ast.Expression) Value {
	t.Helper()
	typed, err := checker.Check(m.Env(), expr)
	if err != nil {
		t.Fatalf("type error: %v", err)
	}
	result, rerr := m.Eval(typed)
	if rerr != nil {
		t.Fatalf("runtime error: %v", rerr)
	}
	return result
}

func TestArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 5
	m := New()
	result := runExpr(t, m, bin(ast.OpAdd, integer(1), bin(ast.OpMul, integer(2), integer(5))))
	if result.Int != 11 {
		t.Errorf("got %s, want 11", result)
	}
}

func TestTupleParameterCallBindsInOrder(t *testing.T) {
	// (fn (x, y) -> x + y end) (1, 2)
	m := New()
	closure := fn(tup(ident("x"), ident("y")), bin(ast.OpAdd, ident("x"), ident("y")))
	result := runExpr(t, m, call(closure, tup(integer(1), integer(2))))
	if result.Int != 3 {
		t.Errorf("got %s, want 3", result)
	}
}

func TestClosureCapturesValueAtCreationTime(t *testing.T) {
	// let t := 1; let f := fn x -> x + t end; let t := 2; f 1;
	m := New()
	result := runExpr(t, m, prog(
		let("t", integer(1)),
		let("f", fn(ident("x"), bin(ast.OpAdd, ident("x"), ident("t")))),
		let("t", integer(2)),
		call(ident("f"), integer(1)),
	))
	if result.Int != 2 {
		t.Errorf("got %s, want 2 (closure must not see the rebound t)", result)
	}
}

func TestTwoLevelClosureCapturesOuterParameter(t *testing.T) {
	// let f := fn t -> fn x -> x + t end end; (f 2) 1;
	m := New()
	inner := fn(ident("x"), bin(ast.OpAdd, ident("x"), ident("t")))
	outer := fn(ident("t"), inner)
	result := runExpr(t, m, prog(
		let("f", outer),
		call(call(ident("f"), integer(2)), integer(1)),
	))
	if result.Int != 3 {
		t.Errorf("got %s, want 3", result)
	}
}

func TestTupleEquality(t *testing.T) {
	m := New()
	eq := runExpr(t, m, bin(ast.OpEq, tup(integer(1), integer(1), integer(1), integer(1)), tup(integer(1), integer(1), integer(1), integer(0))))
	if eq.Bool != false {
		t.Errorf("(1,1,1,1) == (1,1,1,0): got %s, want false", eq)
	}

	m2 := New()
	neq := runExpr(t, m2, bin(ast.OpNeq, tup(integer(1), integer(1)), tup(integer(1), integer(0))))
	if neq.Bool != true {
		t.Errorf("(1,1) ~= (1,0): got %s, want true", neq)
	}
}

func TestRecurDoesNotGrowCallStack(t *testing.T) {
	// let main := fn (n, sum) ->
	//   if n == 1000 then sum
	//   else if (n % 3 == 0) || (n % 5 == 0) then recur (n + 1, sum + n)
	//   else recur (n + 1, sum) end end end;
	// main(0, 0)
	cond35 := bin(ast.OpOr,
		bin(ast.OpEq, bin(ast.OpMod, ident("n"), integer(3)), integer(0)),
		bin(ast.OpEq, bin(ast.OpMod, ident("n"), integer(5)), integer(0)))

	body := &ast.If{
		Branches: []ast.Branch{
			{Cond: bin(ast.OpEq, ident("n"), integer(1000)), Body: ident("sum")},
			{Cond: cond35, Body: &ast.Recur{Arg: tup(bin(ast.OpAdd, ident("n"), integer(1)), bin(ast.OpAdd, ident("sum"), ident("n")))}},
		},
		Else: &ast.Recur{Arg: tup(bin(ast.OpAdd, ident("n"), integer(1)), ident("sum"))},
	}

	main := fn(tup(ident("n"), ident("sum")), body)

	m := New()
	result := runExpr(t, m, prog(
		let("main", main),
		call(ident("main"), tup(integer(0), integer(0))),
	))
	if result.Int != 233168 {
		t.Errorf("got %s, want 233168", result)
	}
	if len(m.frames) != 0 {
		t.Errorf("call stack not unwound after completion: %d frames remain", len(m.frames))
	}
}

func TestSuccessiveEvalCallsShareEnvironmentAndInstructions(t *testing.T) {
	m := New()
	runExpr(t, m, let("x", integer(10)))
	result := runExpr(t, m, bin(ast.OpAdd, ident("x"), integer(5)))
	if result.Int != 15 {
		t.Errorf("got %s, want 15 (environment should persist across Eval calls)", result)
	}
}
