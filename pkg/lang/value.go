package ember

import (
	"fmt"
	"strings"

	"github.com/ember-lang/ember/internal/vm"
)

// ValueKind discriminates the host-facing Value union.
type ValueKind uint8

const (
	KindInteger ValueKind = iota
	KindBoolean
	KindTuple
	KindFunction
)

// Value is the host-facing projection of a runtime value. Functions are
// opaque here: a closure carries environment state that has no meaningful
// host representation and, per the data model, is not comparable.
type Value struct {
	kind  ValueKind
	i     int64
	b     bool
	tuple []Value
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsInteger() (int64, bool) {
	if v.kind != KindInteger {
		return 0, false
	}
	return v.i, true
}

func (v Value) AsBoolean() (bool, bool) {
	if v.kind != KindBoolean {
		return false, false
	}
	return v.b, true
}

func (v Value) AsTuple() ([]Value, bool) {
	if v.kind != KindTuple {
		return nil, false
	}
	return v.tuple, true
}

func (v Value) IsFunction() bool { return v.kind == KindFunction }

// Equal reports structural equality. Two function values are never equal,
// even to themselves, matching the "not directly comparable" rule.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.i == other.i
	case KindBoolean:
		return v.b == other.b
	case KindTuple:
		if len(v.tuple) != len(other.tuple) {
			return false
		}
		for i := range v.tuple {
			if !v.tuple[i].Equal(other.tuple[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindBoolean:
		return fmt.Sprintf("%t", v.b)
	case KindTuple:
		parts := make([]string, len(v.tuple))
		for i, e := range v.tuple {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "<function>"
	}
}

func fromRuntimeValue(rv vm.Value) Value {
	switch rv.Kind {
	case vm.KindInteger:
		return Value{kind: KindInteger, i: rv.Int}
	case vm.KindBoolean:
		return Value{kind: KindBoolean, b: rv.Bool}
	case vm.KindTuple:
		elems := make([]Value, len(rv.Tuple))
		for i, e := range rv.Tuple {
			elems[i] = fromRuntimeValue(e)
		}
		return Value{kind: KindTuple, tuple: elems}
	default:
		return Value{kind: KindFunction}
	}
}
