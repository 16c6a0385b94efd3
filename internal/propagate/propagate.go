// Package propagate implements copy propagation and architectural
// flag-call lowering (C6): propagateToThis rewrites a statement's uses
// with their single reaching definition's right-hand side, gated by a
// caller-supplied destination-count map; flag lowering recognizes
// SUBFLAGS/SUBFLAGSFL/LOGICALFLAGS/INCDECFLAGS calls and rewrites them
// into explicit comparisons.
package propagate

import (
	"decompir/internal/expr"
	"decompir/internal/stmt"
)

// Limits bounds propagateToThis's fixed-point iteration.
type Limits struct {
	MaxIterations int
}

// DefaultLimits returns the iteration cap named in the source (§9
// design notes treat it as a tuning knob, not a hard constant).
func DefaultLimits() Limits { return Limits{MaxIterations: 10} }

// ToThis runs propagateToThis over target: at most Limits.MaxIterations
// passes, each substituting every eligible used reference with its
// definition's right-hand side, until a pass makes no change; a final
// simplify runs once regardless. destCounts maps a use's printed form
// (e.g. "r0{10}") to how many places in the procedure use that exact
// reference — the depth gate in §4.5.
func ToThis(
	target stmt.Statement,
	lookup stmt.Lookup,
	isArrayType stmt.IsArrayType,
	destCounts map[string]int,
	propMaxDepth int,
	withCollectors bool,
	limits Limits,
) stmt.Statement {
	current := target
	for i := 0; i < limits.MaxIterations; i++ {
		next, changed := propagateOnce(current, lookup, isArrayType, destCounts, propMaxDepth, withCollectors)
		current = next
		if !changed {
			break
		}
	}
	return stmt.MapExprs(current, expr.Simplify)
}

func propagateOnce(
	st stmt.Statement,
	lookup stmt.Lookup,
	isArrayType stmt.IsArrayType,
	destCounts map[string]int,
	propMaxDepth int,
	withCollectors bool,
) (stmt.Statement, bool) {
	used := stmt.NewLocSet()
	stmt.AddUsedLocs(st, used, withCollectors, false)

	result := st
	changed := false
	for _, u := range used.Slice() {
		ref, ok := u.(*expr.Ref)
		if !ok {
			continue
		}
		if !stmt.CanPropagateToExp(ref, lookup, isArrayType) {
			continue
		}
		defStmt, _ := lookup(ref.Def)
		assign, ok := defStmt.(*stmt.Assign)
		if !ok {
			continue // CanPropagateToExp already excludes this, kept defensive
		}
		if hasBadMemOf(assign.Rhs) {
			continue
		}
		if !passesDepthGate(ref, assign, destCounts, propMaxDepth) {
			continue
		}
		result = stmt.SearchAndReplace(result, ref, expr.Clone(assign.Rhs))
		changed = true
	}
	return result, changed
}

// passesDepthGate implements §4.5's destination-count gate: flag
// definitions always propagate; a single-use location always
// propagates; anything else only propagates if its replacement stays
// under propMaxDepth.
func passesDepthGate(ref *expr.Ref, assign *stmt.Assign, destCounts map[string]int, propMaxDepth int) bool {
	if isFlagTerminal(assign.Lhs) {
		return true
	}
	if destCounts[ref.String()] <= 1 {
		return true
	}
	return assign.Rhs.ComplexityDepth() < propMaxDepth
}

func isFlagTerminal(e expr.Expr) bool {
	t, ok := e.(*expr.Terminal)
	if !ok {
		return false
	}
	switch t {
	case expr.CF, expr.ZF, expr.NF, expr.OF, expr.DF, expr.Flags, expr.FFlags:
		return true
	default:
		return false
	}
}

// hasBadMemOf reports whether e contains a memOf location that is not
// wrapped in a Ref — i.e. unsubscripted or unclassified memory, which
// propagation must not carry into a new context.
func hasBadMemOf(e expr.Expr) bool {
	switch v := e.(type) {
	case nil:
		return false
	case *expr.Ref:
		if loc, ok := v.Base.(*expr.Location); ok && loc.Kind == expr.MemOf {
			return hasBadMemOf(loc.Arg)
		}
		return hasBadMemOf(v.Base)
	case *expr.Location:
		if v.Kind == expr.MemOf {
			return true
		}
		return hasBadMemOf(v.Arg)
	case *expr.Unary:
		return hasBadMemOf(v.Arg)
	case *expr.Binary:
		return hasBadMemOf(v.Left) || hasBadMemOf(v.Right)
	case *expr.Ternary:
		return hasBadMemOf(v.A) || hasBadMemOf(v.B) || hasBadMemOf(v.C)
	case *expr.FlagCall:
		for _, a := range v.Args {
			if hasBadMemOf(a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
