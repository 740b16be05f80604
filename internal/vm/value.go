package vm

import (
	"fmt"
	"strings"

	"github.com/ember-lang/ember/internal/typesystem"
)

// ValueKind identifies which field of a Value is meaningful.
type ValueKind uint8

const (
	KindInteger ValueKind = iota
	KindBoolean
	KindTuple
	KindClosure
)

// CapturedUpvalue is a closure's frozen snapshot of one free variable (an
// enclosing function's argument or a global binding): the name it was known
// by in the function body, the value captured at the moment the Fconst
// instruction ran, and the type recorded by the checker.
type CapturedUpvalue struct {
	Name  string
	Type  typesystem.Type
	Value Value
}

// Closure is a runtime function value: the ip of its subroutine's first
// instruction, the argument-frame width Call needs to locate where its
// arguments begin on the operand stack, and the upvalues it closed over at
// creation time.
type Closure struct {
	Entry    int
	Argc     int
	Upvalues []CapturedUpvalue
}

// Value is a stack-allocated tagged union holding one of the four runtime
// value shapes the language admits.
type Value struct {
	Kind    ValueKind
	Int     int64
	Bool    bool
	Tuple   []Value
	Closure *Closure
}

func Integer(i int64) Value { return Value{Kind: KindInteger, Int: i} }
func Boolean(b bool) Value  { return Value{Kind: KindBoolean, Bool: b} }
func TupleVal(elems []Value) Value {
	return Value{Kind: KindTuple, Tuple: elems}
}
func ClosureVal(c *Closure) Value { return Value{Kind: KindClosure, Closure: c} }

func (v Value) IsInteger() bool { return v.Kind == KindInteger }
func (v Value) IsBoolean() bool { return v.Kind == KindBoolean }
func (v Value) IsTuple() bool   { return v.Kind == KindTuple }
func (v Value) IsClosure() bool { return v.Kind == KindClosure }

// Equal implements the language's structural value equality, used by the
// Equal/NotEqual opcodes on scalar operands (tuple equality is synthesized
// by the code generator as a sequence of scalar Equal/And, per the
// generator's Rot-interleaving scheme).
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInteger:
		return v.Int == other.Int
	case KindBoolean:
		return v.Bool == other.Bool
	case KindTuple:
		if len(v.Tuple) != len(other.Tuple) {
			return false
		}
		for i := range v.Tuple {
			if !v.Tuple[i].Equal(other.Tuple[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String renders a Value for diagnostics and the public API's debug output.
func (v Value) String() string {
	switch v.Kind {
	case KindInteger:
		return fmt.Sprintf("%d", v.Int)
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case KindTuple:
		parts := make([]string, len(v.Tuple))
		for i, e := range v.Tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindClosure:
		return "<function>"
	default:
		return "<?>"
	}
}
