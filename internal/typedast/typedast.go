// Package typedast mirrors internal/ast but with every node annotated with
// its resolved typesystem.Type. It is produced by internal/checker and
// consumed by the code generator in internal/vm; nothing else builds or
// inspects it.
//
// type_of(node) is O(1) for every node except Tuple: the type is stored on
// the node itself rather than recomputed by walking children. A Tuple
// builds its type from its elements' types on each call.
package typedast

import (
	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/typesystem"
)

// Node is the common interface for every typed node.
type Node interface {
	Pos() ast.Pos
	Type() typesystem.Type
}

type Integer struct {
	PosVal Pos
	Value  int64
}

type Boolean struct {
	PosVal Pos
	Value  bool
}

// Identifier records the name and its checked type. Whether it refers to a
// function argument or a global binding is decided by the code generator,
// not recorded here.
type Identifier struct {
	PosVal Pos
	Name   string
	Typ    typesystem.Type
}

type UnaryOp struct {
	PosVal  Pos
	Op      ast.UnaryOperator
	Operand Node
	Typ     typesystem.Type
}

type BinaryOp struct {
	PosVal Pos
	Op     ast.BinaryOperator
	Lhs    Node
	Rhs    Node
	Typ    typesystem.Type
}

type Tuple struct {
	PosVal   Pos
	Elements []Node
}

type Branch struct {
	Cond Node
	Body Node
}

type If struct {
	PosVal   Pos
	Branches []Branch
	Else     Node
	Typ      typesystem.Type
}

// Function records its parameter name(s) in declaration order together with
// their inferred types, and its full Function(Param -> Return) signature.
type Function struct {
	PosVal     Pos
	ParamNames []string
	ParamTypes []typesystem.Type
	// IsTupleParam distinguishes a single-identifier parameter (fn x)
	// from a one-element tuple parameter (fn (x,)): the two parse to the
	// same ParamNames slice, but the tuple form's parameter type is a
	// one-element Tuple rather than the bare element type. The code
	// generator gives a tuple parameter of n names an argument frame of
	// width n with offsets 0..n-1; a single identifier gets width 1.
	IsTupleParam bool
	Body         Node
	Typ          typesystem.Function
}

type Call struct {
	PosVal Pos
	Fn     Node
	Arg    Node
	Typ    typesystem.Type
}

// Let records the declared binding type alongside the bound value.
type Let struct {
	PosVal Pos
	Name   string
	Value  Node
	Typ    typesystem.Type
}

// Recur's recorded type is always the enclosing function's return type,
// propagated through the checker's return-type context; recur itself never
// "yields" a value at its call site in the usual sense.
type Recur struct {
	PosVal Pos
	Arg    Node
	Typ    typesystem.Type
}

// Program records the type of its last expression.
type Program struct {
	PosVal      Pos
	Expressions []Node
	Typ         typesystem.Type
}

// Pos is a plain alias; kept distinct from ast.Pos only to avoid a second
// import at every call site while still round-tripping exactly.
type Pos = ast.Pos

func (n *Integer) Pos() Pos             { return n.PosVal }
func (n *Integer) Type() typesystem.Type { return typesystem.Integer{} }

func (n *Boolean) Pos() Pos             { return n.PosVal }
func (n *Boolean) Type() typesystem.Type { return typesystem.Boolean{} }

func (n *Identifier) Pos() Pos             { return n.PosVal }
func (n *Identifier) Type() typesystem.Type { return n.Typ }

func (n *UnaryOp) Pos() Pos             { return n.PosVal }
func (n *UnaryOp) Type() typesystem.Type { return n.Typ }

func (n *BinaryOp) Pos() Pos             { return n.PosVal }
func (n *BinaryOp) Type() typesystem.Type { return n.Typ }

func (n *Tuple) Pos() Pos { return n.PosVal }
func (n *Tuple) Type() typesystem.Type {
	elems := make([]typesystem.Type, len(n.Elements))
	for i, e := range n.Elements {
		elems[i] = e.Type()
	}
	return typesystem.Tuple{Elements: elems}
}

func (n *If) Pos() Pos             { return n.PosVal }
func (n *If) Type() typesystem.Type { return n.Typ }

func (n *Function) Pos() Pos             { return n.PosVal }
func (n *Function) Type() typesystem.Type { return n.Typ }

func (n *Call) Pos() Pos             { return n.PosVal }
func (n *Call) Type() typesystem.Type { return n.Typ }

func (n *Let) Pos() Pos             { return n.PosVal }
func (n *Let) Type() typesystem.Type { return n.Typ }

func (n *Recur) Pos() Pos             { return n.PosVal }
func (n *Recur) Type() typesystem.Type { return n.Typ }

func (n *Program) Pos() Pos             { return n.PosVal }
func (n *Program) Type() typesystem.Type { return n.Typ }
