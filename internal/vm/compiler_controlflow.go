package vm

import (
	"github.com/ember-lang/ember/internal/typedast"
)

// generateIf lowers an If by generating each branch body into a temporary
// buffer so its length is known before emitting the guarding Jz, then
// patching the Jmp that closes each of its own branches to land past the
// else clause. Jmps belonging to an If nested inside a condition or body
// were already patched when that If was generated and are left alone.
func generateIf(global, buf *Program, n *typedast.If, ids map[string]int) {
	jumps := make([]int, 0, len(n.Branches))

	for _, branch := range n.Branches {
		Generate(global, buf, branch.Cond, ids)

		body := NewProgram()
		Generate(global, body, branch.Body, ids)

		buf.emit(Instruction{Op: OpJz, Offset: 2 + len(body.Instructions)})
		buf.Instructions = append(buf.Instructions, body.Instructions...)
		jumps = append(jumps, buf.emit(Instruction{Op: OpJmp})) // offset patched below
	}

	Generate(global, buf, n.Else, ids)

	end := buf.Len()
	for _, i := range jumps {
		buf.Instructions[i].Offset = end - i
	}
}

// generateFunction produces a closure constant. It assigns argument-frame
// offsets to the parameter(s), collects the body's upvalues (free
// identifiers, whether enclosing-frame arguments or global bindings, that
// the body reads directly rather than through a Let it introduces itself),
// compiles the body into a fresh subroutine spliced
// directly into the VM's shared instruction vector (so its entry ip is
// stable regardless of which local buffer the enclosing expression is
// building), and emits an Fconst referencing it into buf.
func generateFunction(global, buf *Program, n *typedast.Function, ids map[string]int) {
	localIds := make(map[string]int, len(ids)+len(n.ParamNames))
	for k, v := range ids {
		localIds[k] = v
	}

	var argc int
	if !n.IsTupleParam {
		localIds[n.ParamNames[0]] = 0
		argc = 1
	} else {
		for i, name := range n.ParamNames {
			localIds[name] = i
		}
		argc = len(n.ParamNames)
	}

	upvalues := findUpvalues(n.Body, n.ParamNames, ids)
	for _, uv := range upvalues {
		delete(localIds, uv.Name)
	}

	body := NewProgram()
	Generate(global, body, n.Body, localIds)
	body.emit(Instruction{Op: OpRet, Offset: argc})

	entry := global.Len()
	global.Instructions = append(global.Instructions, body.Instructions...)

	buf.emit(Instruction{Op: OpFconst, Entry: entry, Argc: argc, Upvalues: upvalues})
}

// findUpvalues computes the free variables of a function body: identifiers
// that are neither the function's own parameter(s) nor a name the body
// itself binds via a nested Let. Each one is recorded as an Upvalue that
// Fconst execution snapshots, whether it resolves to an enclosing function
// argument (Offset, per `ids`) or to the global environment (Global).
func findUpvalues(body typedast.Node, ownParams []string, ids map[string]int) []Upvalue {
	excluded := make(map[string]bool, len(ownParams))
	for _, p := range ownParams {
		excluded[p] = true
	}
	seen := map[string]bool{}
	var result []Upvalue
	scanUpvalues(body, ids, excluded, seen, &result)
	return result
}

// scanUpvalues walks the body carrying `ids` (outer-frame argument offsets)
// forward. `excluded` names a name that can never be captured here: the
// current function's own parameter(s), a nested function's own parameter(s)
// (tracked in a branch-local copy so it never leaks to siblings), or a name
// a Let within this body has already bound (mutated in place so it persists
// across the rest of this scan, never reinstated — Let in this language is
// global and non-block-scoped, so a later reference must read the live
// binding, not a value frozen before the Let ran). Every other Identifier is
// recorded once, either against the outer `ids` or, failing that, as a
// global-environment capture.
func scanUpvalues(node typedast.Node, ids map[string]int, excluded map[string]bool, seen map[string]bool, out *[]Upvalue) {
	switch n := node.(type) {
	case *typedast.Identifier:
		if excluded[n.Name] || seen[n.Name] {
			return
		}
		seen[n.Name] = true
		if offset, ok := ids[n.Name]; ok {
			*out = append(*out, Upvalue{Name: n.Name, Offset: offset, Type: n.Typ})
			return
		}
		*out = append(*out, Upvalue{Name: n.Name, Global: true, Type: n.Typ})
	case *typedast.UnaryOp:
		scanUpvalues(n.Operand, ids, excluded, seen, out)
	case *typedast.BinaryOp:
		scanUpvalues(n.Lhs, ids, excluded, seen, out)
		scanUpvalues(n.Rhs, ids, excluded, seen, out)
	case *typedast.Tuple:
		for _, e := range n.Elements {
			scanUpvalues(e, ids, excluded, seen, out)
		}
	case *typedast.If:
		for _, branch := range n.Branches {
			scanUpvalues(branch.Cond, ids, excluded, seen, out)
			scanUpvalues(branch.Body, ids, excluded, seen, out)
		}
		scanUpvalues(n.Else, ids, excluded, seen, out)
	case *typedast.Function:
		nested := make(map[string]bool, len(excluded)+len(n.ParamNames))
		for k := range excluded {
			nested[k] = true
		}
		for _, p := range n.ParamNames {
			nested[p] = true
		}
		scanUpvalues(n.Body, ids, nested, seen, out)
	case *typedast.Call:
		scanUpvalues(n.Fn, ids, excluded, seen, out)
		scanUpvalues(n.Arg, ids, excluded, seen, out)
	case *typedast.Let:
		shadowed := ids
		if _, ok := ids[n.Name]; ok {
			shadowed = make(map[string]int, len(ids)-1)
			for k, v := range ids {
				if k != n.Name {
					shadowed[k] = v
				}
			}
		}
		scanUpvalues(n.Value, shadowed, excluded, seen, out)
		excluded[n.Name] = true
	case *typedast.Recur:
		scanUpvalues(n.Arg, ids, excluded, seen, out)
	case *typedast.Program:
		for _, e := range n.Expressions {
			scanUpvalues(e, ids, excluded, seen, out)
		}
	}
}

// generateRecur compiles a tail self-call: generate the argument, then emit
// Recur with the tuple arity of that argument (1 for a scalar).
func generateRecur(global, buf *Program, n *typedast.Recur, ids map[string]int) {
	Generate(global, buf, n.Arg, ids)
	arity := 1
	if tup, ok := n.Arg.(*typedast.Tuple); ok {
		arity = len(tup.Elements)
	}
	buf.emit(Instruction{Op: OpRecur, Offset: arity})
}
