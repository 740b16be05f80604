// Package typesystem defines the small set of types the checker assigns to
// expressions: Integer, Boolean, Tuple, Function, and the internal Any
// placeholder used only during parameter inference.
//
// Unlike a Hindley-Milner system there are no type variables and no
// unification; every fully checked node carries one of these concrete
// types, determined by structural equality.
package typesystem

import "strings"

// Type is implemented by every member of the type system.
type Type interface {
	String() string
	// Equal reports structural equality with other.
	Equal(other Type) bool
}

// Integer is the type of integer literals and arithmetic results.
type Integer struct{}

func (Integer) String() string    { return "integer" }
func (Integer) Equal(o Type) bool { _, ok := o.(Integer); return ok }

// Boolean is the type of boolean literals and logical/comparison results.
type Boolean struct{}

func (Boolean) String() string    { return "boolean" }
func (Boolean) Equal(o Type) bool { _, ok := o.(Boolean); return ok }

// Any is an internal placeholder produced only by parameter inference when
// an equality comparison gives no evidence for the operand's type. It must
// never survive onto a fully checked node; its presence past checking is a
// compiler bug (see Function in the checker package).
type Any struct{}

func (Any) String() string    { return "any" }
func (Any) Equal(o Type) bool { _, ok := o.(Any); return ok }

// Tuple is the type of a tuple value, one element type per position.
// Tuple order matters: Tuple(Integer, Boolean) != Tuple(Boolean, Integer).
type Tuple struct {
	Elements []Type
}

func (t Tuple) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (t Tuple) Equal(o Type) bool {
	other, ok := o.(Tuple)
	if !ok || len(other.Elements) != len(t.Elements) {
		return false
	}
	for i, e := range t.Elements {
		if !e.Equal(other.Elements[i]) {
			return false
		}
	}
	return true
}

// Function is the type of a closure: Param -> Return.
type Function struct {
	Param  Type
	Return Type
}

func (f Function) String() string {
	return f.Param.String() + " -> " + f.Return.String()
}

func (f Function) Equal(o Type) bool {
	other, ok := o.(Function)
	if !ok {
		return false
	}
	return f.Param.Equal(other.Param) && f.Return.Equal(other.Return)
}
