package stmt

import "decompir/internal/expr"

// IsNullStatement reports whether s is a no-op assignment: either its
// rhs is the self-reference lhs{self} (a cycle through its own
// identity), or its lhs and rhs are structurally identical. Null
// statements must not participate in propagation (§4.2).
func IsNullStatement(s Statement) bool {
	a, ok := s.(*Assign)
	if !ok {
		return false
	}
	if ref, ok := a.Rhs.(*expr.Ref); ok && ref.Def == a.ID() && expr.Equals(ref.Base, a.Lhs) {
		return true
	}
	return expr.Equals(a.Lhs, a.Rhs)
}

// Lookup resolves a statement identity to the statement it names,
// within whatever scope the caller has chosen (typically a single
// procedure). It returns false for expr.Implicit or any id with no
// live statement.
type Lookup func(id expr.StmtID) (Statement, bool)

// IsArrayType reports whether e has been determined (by the pluggable
// type oracle, §6) to be array-typed.
type IsArrayType func(e expr.Expr) bool

// CanPropagateToExp reports whether e is a reference lhs{def} that is
// safe to substitute for its defining right-hand side: def must name a
// live, non-implicit, ordinary Assign (not a phi, call, or implicit
// assignment) that is not itself a null statement, and whose rhs is
// not array-typed.
func CanPropagateToExp(e expr.Expr, lookup Lookup, isArrayType IsArrayType) bool {
	ref, ok := e.(*expr.Ref)
	if !ok || ref.Def == expr.Implicit {
		return false
	}
	def, ok := lookup(ref.Def)
	if !ok {
		return false
	}
	a, ok := def.(*Assign)
	if !ok {
		return false
	}
	if !expr.Equals(ref.Base, a.Lhs) {
		return false
	}
	if IsNullStatement(a) {
		return false
	}
	if a.ArrayType || (isArrayType != nil && isArrayType(a.Rhs)) {
		return false
	}
	return true
}
