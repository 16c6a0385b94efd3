package propagate

import (
	"decompir/internal/expr"
	"decompir/internal/stmt"
)

// LowerFlagsToThis is propagateFlagsToThis (§4.5): for every flag
// reference %X{def} used in target whose definition is
// %flags/%fflags := flagCall(...), rewrite the reference to the
// flag-call's explicit-comparison equivalent. Unknown call names or
// unsupported (flag, call) pairs are left untouched — not an error.
func LowerFlagsToThis(target stmt.Statement, lookup stmt.Lookup) stmt.Statement {
	used := stmt.NewLocSet()
	stmt.AddUsedLocs(target, used, false, false)

	result := target
	for _, u := range used.Slice() {
		ref, ok := u.(*expr.Ref)
		if !ok {
			continue
		}
		flagTerm, ok := ref.Base.(*expr.Terminal)
		if !ok {
			continue
		}
		defStmt, ok := lookup(ref.Def)
		if !ok {
			continue
		}
		assign, ok := defStmt.(*stmt.Assign)
		if !ok {
			continue
		}
		lhsTerm, ok := assign.Lhs.(*expr.Terminal)
		if !ok || (lhsTerm.Name != "%flags" && lhsTerm.Name != "%fflags") {
			continue
		}
		call, ok := assign.Rhs.(*expr.FlagCall)
		if !ok {
			continue
		}
		replacement, ok := lowerFlagCall(call, flagTerm.Name)
		if !ok {
			continue
		}
		result = stmt.SearchAndReplace(result, ref, replacement)
	}
	return stmt.MapExprs(result, expr.Simplify)
}

// lowerFlagCall implements §4.5's flag-call lowering table.
func lowerFlagCall(call *expr.FlagCall, flagName string) (expr.Expr, bool) {
	arg := func(i int) expr.Expr {
		if i < len(call.Args) {
			return expr.Clone(call.Args[i])
		}
		return &expr.IntConst{Value: 0}
	}
	zero := func() expr.Expr { return &expr.IntConst{Value: 0} }
	cmp := func(op string, l, r expr.Expr) expr.Expr { return &expr.Binary{Op: op, Left: l, Right: r} }

	switch call.Name {
	case "SUBFLAGSFL":
		switch flagName {
		case "%CF":
			return cmp("<", arg(0), arg(1)), true
		case "%ZF":
			return cmp("=", arg(0), arg(1)), true
		}
	case "SUBFLAGS":
		switch flagName {
		case "%CF":
			return cmp("<u", arg(0), arg(1)), true
		case "%ZF":
			return cmp("=", arg(2), zero()), true
		case "%NF":
			return cmp("<", arg(2), zero()), true
		case "%OF":
			negPos := cmp("&&", cmp("&&", cmp("<", arg(0), zero()), cmp(">=", arg(1), zero())), cmp(">=", arg(2), zero()))
			posNeg := cmp("&&", cmp("&&", cmp(">=", arg(0), zero()), cmp("<", arg(1), zero())), cmp("<", arg(2), zero()))
			return cmp("||", negPos, posNeg), true
		}
	case "LOGICALFLAGS":
		switch flagName {
		case "%NF":
			return cmp("<", arg(0), zero()), true
		case "%ZF":
			return cmp("=", arg(0), zero()), true
		case "%CF", "%OF":
			return zero(), true
		}
	case "INCDECFLAGS":
		switch flagName {
		case "%OF":
			return zero(), true
		case "%ZF":
			return cmp("=", arg(0), zero()), true
		case "%NF":
			return cmp("<", arg(0), zero()), true
		}
	}
	return nil, false
}
