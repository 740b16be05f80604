// Package checker implements the bidirectional-style type checker: it walks
// an untyped ast.Expression, assigns a concrete typesystem.Type to every
// node, and returns a typedast.Node or a located typesystem.Error.
//
// It also performs the local, single-pass parameter-type inference
// described in infer.go whenever a Function's parameter has no declared
// type (this language never declares one explicitly).
package checker

import (
	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/typedast"
	"github.com/ember-lang/ember/internal/typesystem"
)

// TypeEnv is the subset of the persistent environment the checker needs: a
// flat, mutable name -> Type map. internal/vm.Environment satisfies this
// interface structurally; the checker package never imports internal/vm.
type TypeEnv interface {
	TypeOf(name string) (typesystem.Type, bool)
	SetType(name string, t typesystem.Type)
}

// returnCtx threads the enclosing function's parameter type and (lazily
// discovered) return type down into nested expressions, so that Recur can
// validate its argument and be assigned a type without requiring the
// function's return type to be known in advance.
type returnCtx struct {
	paramType  typesystem.Type
	returnType typesystem.Type
}

// Check type-checks a single top-level expression against env, mutating env
// with any new Let bindings it introduces. It is the only exported entry
// point; ctx is always nil here since nothing above a Program can be inside
// a function body.
func Check(env TypeEnv, expr ast.Expression) (typedast.Node, error) {
	return check(env, expr, nil)
}

func check(env TypeEnv, expr ast.Expression, ctx *returnCtx) (typedast.Node, error) {
	switch e := expr.(type) {
	case *ast.Integer:
		return &typedast.Integer{PosVal: e.PosVal, Value: e.Value}, nil

	case *ast.Boolean:
		return &typedast.Boolean{PosVal: e.PosVal, Value: e.Value}, nil

	case *ast.Identifier:
		t, ok := env.TypeOf(e.Name)
		if !ok {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Undefined identifier: %s.", e.Name)
		}
		return &typedast.Identifier{PosVal: e.PosVal, Name: e.Name, Typ: t}, nil

	case *ast.UnaryOp:
		return checkUnary(env, e, ctx)

	case *ast.BinaryOp:
		return checkBinary(env, e, ctx)

	case *ast.Tuple:
		elems := make([]typedast.Node, len(e.Elements))
		for i, el := range e.Elements {
			typed, err := check(env, el, ctx)
			if err != nil {
				return nil, err
			}
			elems[i] = typed
		}
		return &typedast.Tuple{PosVal: e.PosVal, Elements: elems}, nil

	case *ast.If:
		return checkIf(env, e, ctx)

	case *ast.Function:
		return checkFunction(env, e)

	case *ast.Call:
		return checkCall(env, e, ctx)

	case *ast.Let:
		valueTyped, err := check(env, e.Value, ctx)
		if err != nil {
			return nil, err
		}
		t := valueTyped.Type()
		env.SetType(e.Name, t)
		return &typedast.Let{PosVal: e.PosVal, Name: e.Name, Value: valueTyped, Typ: t}, nil

	case *ast.Recur:
		return checkRecur(env, e, ctx)

	case *ast.Program:
		var last typedast.Node
		exprs := make([]typedast.Node, len(e.Expressions))
		for i, ex := range e.Expressions {
			typed, err := check(env, ex, ctx)
			if err != nil {
				return nil, err
			}
			exprs[i] = typed
			last = typed
		}
		return &typedast.Program{PosVal: e.PosVal, Expressions: exprs, Typ: last.Type()}, nil

	default:
		return nil, typesystem.NewError(expr.Pos().Line, expr.Pos().Col, "Type error: unrecognized expression.")
	}
}

func checkUnary(env TypeEnv, e *ast.UnaryOp, ctx *returnCtx) (typedast.Node, error) {
	operand, err := check(env, e.Operand, ctx)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case ast.OpNeg:
		if _, ok := operand.Type().(typesystem.Integer); !ok {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Type error: expected integer.")
		}
		return &typedast.UnaryOp{PosVal: e.PosVal, Op: e.Op, Operand: operand, Typ: typesystem.Integer{}}, nil
	case ast.OpNot:
		if _, ok := operand.Type().(typesystem.Boolean); !ok {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Type error: expected boolean.")
		}
		return &typedast.UnaryOp{PosVal: e.PosVal, Op: e.Op, Operand: operand, Typ: typesystem.Boolean{}}, nil
	}
	return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Type error: unrecognized unary operator.")
}

func checkBinary(env TypeEnv, e *ast.BinaryOp, ctx *returnCtx) (typedast.Node, error) {
	lhs, err := check(env, e.Lhs, ctx)
	if err != nil {
		return nil, err
	}
	rhs, err := check(env, e.Rhs, ctx)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod:
		if err := requireInteger(lhs.Type(), e.PosVal); err != nil {
			return nil, err
		}
		if err := requireInteger(rhs.Type(), e.PosVal); err != nil {
			return nil, err
		}
		return &typedast.BinaryOp{PosVal: e.PosVal, Op: e.Op, Lhs: lhs, Rhs: rhs, Typ: typesystem.Integer{}}, nil

	case ast.OpAnd, ast.OpOr:
		if err := requireBoolean(lhs.Type(), e.PosVal); err != nil {
			return nil, err
		}
		if err := requireBoolean(rhs.Type(), e.PosVal); err != nil {
			return nil, err
		}
		return &typedast.BinaryOp{PosVal: e.PosVal, Op: e.Op, Lhs: lhs, Rhs: rhs, Typ: typesystem.Boolean{}}, nil

	case ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe:
		if err := requireInteger(lhs.Type(), e.PosVal); err != nil {
			return nil, err
		}
		if err := requireInteger(rhs.Type(), e.PosVal); err != nil {
			return nil, err
		}
		return &typedast.BinaryOp{PosVal: e.PosVal, Op: e.Op, Lhs: lhs, Rhs: rhs, Typ: typesystem.Boolean{}}, nil

	case ast.OpEq, ast.OpNeq:
		if !lhs.Type().Equal(rhs.Type()) {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col,
				"Type error: type mismatch between %s and %s.", lhs.Type(), rhs.Type())
		}
		return &typedast.BinaryOp{PosVal: e.PosVal, Op: e.Op, Lhs: lhs, Rhs: rhs, Typ: typesystem.Boolean{}}, nil
	}

	return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Type error: unrecognized binary operator.")
}

func requireInteger(t typesystem.Type, pos ast.Pos) error {
	if _, ok := t.(typesystem.Integer); !ok {
		return typesystem.NewError(pos.Line, pos.Col, "Type error: expected integer.")
	}
	return nil
}

func requireBoolean(t typesystem.Type, pos ast.Pos) error {
	if _, ok := t.(typesystem.Boolean); !ok {
		return typesystem.NewError(pos.Line, pos.Col, "Type error: expected boolean.")
	}
	return nil
}

// isBareRecur reports whether expr is, itself, a Recur node — as opposed to
// an expression that merely contains one. Only a bare Recur body can be
// deferred while its sibling branches establish the enclosing function's
// return type.
func isBareRecur(expr ast.Expression) (*ast.Recur, bool) {
	r, ok := expr.(*ast.Recur)
	return r, ok
}

func checkIf(env TypeEnv, e *ast.If, ctx *returnCtx) (typedast.Node, error) {
	var resultType typesystem.Type
	var deferred []*typedast.Recur
	branches := make([]typedast.Branch, 0, len(e.Branches))

	checkBody := func(body ast.Expression) (typedast.Node, error) {
		if r, ok := isBareRecur(body); ok {
			typed, err := checkRecurArg(env, r, ctx)
			if err != nil {
				return nil, err
			}
			if ctx != nil && ctx.returnType != nil {
				typed.Typ = ctx.returnType
			} else {
				deferred = append(deferred, typed)
			}
			return typed, nil
		}
		typed, err := check(env, body, ctx)
		if err != nil {
			return nil, err
		}
		bt := typed.Type()
		if resultType == nil {
			resultType = bt
		} else if !resultType.Equal(bt) {
			return nil, typesystem.NewError(body.Pos().Line, body.Pos().Col,
				"Type mismatch: expected %s found %s.", resultType, bt)
		}
		return typed, nil
	}

	for _, b := range e.Branches {
		condTyped, err := check(env, b.Cond, ctx)
		if err != nil {
			return nil, err
		}
		if err := requireBoolean(condTyped.Type(), b.Cond.Pos()); err != nil {
			return nil, err
		}
		bodyTyped, err := checkBody(b.Body)
		if err != nil {
			return nil, err
		}
		branches = append(branches, typedast.Branch{Cond: condTyped, Body: bodyTyped})
	}

	elseTyped, err := checkBody(e.Else)
	if err != nil {
		return nil, err
	}

	if resultType == nil {
		if ctx != nil && ctx.returnType != nil {
			resultType = ctx.returnType
		} else {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col,
				"Type error: unable to infer return type of recursive function.")
		}
	}
	for _, d := range deferred {
		d.Typ = resultType
	}
	if ctx != nil && ctx.returnType == nil {
		ctx.returnType = resultType
	}

	return &typedast.If{PosVal: e.PosVal, Branches: branches, Else: elseTyped, Typ: resultType}, nil
}

// checkRecurArg validates a Recur's argument against the enclosing
// function's parameter type but leaves Typ nil for the caller to fill in
// once the enclosing return type is known.
func checkRecurArg(env TypeEnv, e *ast.Recur, ctx *returnCtx) (*typedast.Recur, error) {
	if ctx == nil {
		return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Type error: recur used outside of a function body.")
	}
	argTyped, err := check(env, e.Arg, ctx)
	if err != nil {
		return nil, err
	}
	if !argTyped.Type().Equal(ctx.paramType) {
		return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col,
			"Type error: expected %s found %s.", ctx.paramType, argTyped.Type())
	}
	return &typedast.Recur{PosVal: e.PosVal, Arg: argTyped}, nil
}

func checkRecur(env TypeEnv, e *ast.Recur, ctx *returnCtx) (typedast.Node, error) {
	typed, err := checkRecurArg(env, e, ctx)
	if err != nil {
		return nil, err
	}
	if ctx.returnType == nil {
		return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col,
			"Type error: unable to infer return type of recursive function.")
	}
	typed.Typ = ctx.returnType
	return typed, nil
}

func checkFunction(env TypeEnv, e *ast.Function) (typedast.Node, error) {
	names, isTuple, err := paramNames(e.Param)
	if err != nil {
		return nil, err
	}
	paramTypes := make([]typesystem.Type, len(names))
	for i, name := range names {
		t, ok := inferParam(name, e.Body)
		if !ok {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Unable to infer type of parameter %s.", name)
		}
		if _, isAny := t.(typesystem.Any); isAny {
			return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Unable to infer type of parameter %s.", name)
		}
		paramTypes[i] = t
	}

	var paramType typesystem.Type
	if !isTuple {
		paramType = paramTypes[0]
	} else {
		paramType = typesystem.Tuple{Elements: paramTypes}
	}

	// The parameter shadows any outer binding of the same name for the
	// duration of the body; the language has no lexical scoping otherwise,
	// so this mutates env.types and must be undone afterward.
	saved := make(map[string]typesystem.Type, len(names))
	hadSaved := make(map[string]bool, len(names))
	for i, name := range names {
		if old, ok := env.TypeOf(name); ok {
			saved[name] = old
			hadSaved[name] = true
		}
		env.SetType(name, paramTypes[i])
	}

	ctx := &returnCtx{paramType: paramType}
	bodyTyped, err := check(env, e.Body, ctx)

	for _, name := range names {
		if hadSaved[name] {
			env.SetType(name, saved[name])
		}
	}

	if err != nil {
		return nil, err
	}

	sig := typesystem.Function{Param: paramType, Return: bodyTyped.Type()}
	return &typedast.Function{
		PosVal:       e.PosVal,
		ParamNames:   names,
		ParamTypes:   paramTypes,
		IsTupleParam: isTuple,
		Body:         bodyTyped,
		Typ:          sig,
	}, nil
}

// paramNames validates the shape of a Function's parameter list: either a
// single Identifier, or a Tuple whose elements are all Identifier. The
// returned bool distinguishes the two: a one-element Tuple parameter
// reports the same names slice as a single Identifier parameter but must
// keep its tuple arity through code generation.
func paramNames(param ast.Expression) ([]string, bool, error) {
	switch p := param.(type) {
	case *ast.Identifier:
		return []string{p.Name}, false, nil
	case *ast.Tuple:
		names := make([]string, len(p.Elements))
		for i, el := range p.Elements {
			id, ok := el.(*ast.Identifier)
			if !ok {
				return nil, false, typesystem.NewError(param.Pos().Line, param.Pos().Col,
					"Type error: function parameters should be identifier or tuple of identifiers.")
			}
			names[i] = id.Name
		}
		return names, true, nil
	default:
		return nil, false, typesystem.NewError(param.Pos().Line, param.Pos().Col,
			"Type error: function parameters should be identifier or tuple of identifiers.")
	}
}

func checkCall(env TypeEnv, e *ast.Call, ctx *returnCtx) (typedast.Node, error) {
	fnTyped, err := check(env, e.Fn, ctx)
	if err != nil {
		return nil, err
	}
	argTyped, err := check(env, e.Arg, ctx)
	if err != nil {
		return nil, err
	}
	fnType, ok := fnTyped.Type().(typesystem.Function)
	if !ok {
		return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col, "Type error: expected function found %s.", fnTyped.Type())
	}
	if !argTyped.Type().Equal(fnType.Param) {
		return nil, typesystem.NewError(e.PosVal.Line, e.PosVal.Col,
			"Type error: expected %s found %s.", fnType.Param, argTyped.Type())
	}
	return &typedast.Call{PosVal: e.PosVal, Fn: fnTyped, Arg: argTyped, Typ: fnType.Return}, nil
}
