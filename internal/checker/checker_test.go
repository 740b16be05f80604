package checker

import (
	"testing"

	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/typesystem"
	"github.com/ember-lang/ember/internal/vm"
)

func newEnv() *vm.Environment { return vm.NewEnvironment() }

func ident(name string) *ast.Identifier { return &ast.Identifier{Name: name} }
func integer(v int64) *ast.Integer      { return &ast.Integer{Value: v} }
func boolean(v bool) *ast.Boolean       { return &ast.Boolean{Value: v} }

func bin(op ast.BinaryOperator, lhs, rhs ast.Expression) *ast.BinaryOp {
	return &ast.BinaryOp{Op: op, Lhs: lhs, Rhs: rhs}
}

func un(op ast.UnaryOperator, operand ast.Expression) *ast.UnaryOp {
	return &ast.UnaryOp{Op: op, Operand: operand}
}

func fn(param, body ast.Expression) *ast.Function {
	return &ast.Function{Param: param, Body: body}
}

func call(f, a ast.Expression) *ast.Call { return &ast.Call{Fn: f, Arg: a} }

func TestCheckArithmeticInfersIntegerParam(t *testing.T) {
	env := newEnv()
	// fn x -> x + 1 end
	typed, err := Check(env, fn(ident("x"), bin(ast.OpAdd, ident("x"), integer(1))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, ok := typed.Type().(typesystem.Function)
	if !ok {
		t.Fatalf("expected Function type, got %s", typed.Type())
	}
	if !f.Param.Equal(typesystem.Integer{}) || !f.Return.Equal(typesystem.Integer{}) {
		t.Fatalf("expected integer -> integer, got %s", f)
	}
}

func TestCheckUnknownParameterShapeIsError(t *testing.T) {
	env := newEnv()
	// fn 1 -> 5 end
	_, err := Check(env, fn(integer(1), integer(5)))
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "Type error: function parameters should be identifier or tuple of identifiers."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestCheckEqualityTypeMismatch(t *testing.T) {
	env := newEnv()
	_, err := Check(env, bin(ast.OpEq, integer(1), boolean(true)))
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "Type error: type mismatch between integer and boolean."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestCheckIfConditionMustBeBoolean(t *testing.T) {
	env := newEnv()
	ifExpr := &ast.If{
		Branches: []ast.Branch{{Cond: integer(1), Body: boolean(false)}},
		Else:     boolean(true),
	}
	_, err := Check(env, ifExpr)
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "Type error: expected boolean."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestCheckLetBindsNameIntoEnvironment(t *testing.T) {
	env := newEnv()
	_, err := Check(env, &ast.Let{Name: "t", Value: integer(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	typ, ok := env.TypeOf("t")
	if !ok || !typ.Equal(typesystem.Integer{}) {
		t.Fatalf("expected t: integer in env, got %v ok=%v", typ, ok)
	}
}

func TestCheckCallArgumentTypeMismatch(t *testing.T) {
	env := newEnv()
	// let f := fn x -> x + 1 end; f true
	if _, err := Check(env, &ast.Let{Name: "f", Value: fn(ident("x"), bin(ast.OpAdd, ident("x"), integer(1)))}); err != nil {
		t.Fatalf("unexpected error binding f: %v", err)
	}
	_, err := Check(env, call(ident("f"), boolean(true)))
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "Type error: expected integer found boolean."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestCheckTupleParamInfersEachElement(t *testing.T) {
	env := newEnv()
	param := &ast.Tuple{Elements: []ast.Expression{ident("x"), ident("y")}}
	body := bin(ast.OpAdd, ident("x"), ident("y"))
	typed, err := Check(env, fn(param, body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := typed.Type().(typesystem.Function)
	want := typesystem.Tuple{Elements: []typesystem.Type{typesystem.Integer{}, typesystem.Integer{}}}
	if !f.Param.Equal(want) {
		t.Fatalf("param type = %s, want %s", f.Param, want)
	}
}

func TestCheckUninferableParameterIsError(t *testing.T) {
	env := newEnv()
	// fn x -> 5 end: x never used, no evidence
	_, err := Check(env, fn(ident("x"), integer(5)))
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "Unable to infer type of parameter x."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}

func TestCheckParameterOnlyUsedInsideCallArgumentIsUninferable(t *testing.T) {
	env := newEnv()
	// let f := fn x -> x + 1 end; fn x -> f(x + 1) end
	// x's only use site is the argument of a call, which gives no evidence
	// about x itself (only about f's parameter).
	if _, err := Check(env, &ast.Let{Name: "f", Value: fn(ident("x"), bin(ast.OpAdd, ident("x"), integer(1)))}); err != nil {
		t.Fatalf("unexpected error binding f: %v", err)
	}
	_, err := Check(env, fn(ident("x"), call(ident("f"), bin(ast.OpAdd, ident("x"), integer(1)))))
	if err == nil {
		t.Fatalf("expected an error")
	}
	want := "Unable to infer type of parameter x."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}
}
