package stmt

import "decompir/internal/expr"

// GetDefinitions adds to set every location this statement defines.
// For a call, assumeABI selects between the call's declared Defines
// (callee-saved registers assumed preserved) and its conservative
// ABIDefines (no such assumption, every potentially-clobbered location
// counted) — see §4.3's Settings.AssumeABI.
func GetDefinitions(s Statement, set *LocSet, assumeABI bool) {
	switch v := s.(type) {
	case *Assign:
		set.Add(v.Lhs)
	case *PhiAssign:
		set.Add(v.Lhs)
	case *ImplicitAssign:
		set.Add(v.Lhs)
	case *BoolAssign:
		set.Add(v.Lhs)
	case *CallStatement:
		defines := v.Defines
		if !assumeABI && len(v.ABIDefines) > 0 {
			defines = v.ABIDefines
		}
		for _, d := range defines {
			set.Add(d)
		}
	}
}

// AddUsedLocs adds to set every location used (read) by this statement.
// When memOnly is set, only memory-class locations are collected (and
// still recursed through, to surface uses nested in an address
// expression). When withCollectors is set, a CallStatement's
// UseCollector contributes its members too.
func AddUsedLocs(s Statement, set *LocSet, withCollectors bool, memOnly bool) {
	switch v := s.(type) {
	case *Assign:
		collectUses(v.Rhs, set, memOnly)
		if loc, ok := v.Lhs.(*expr.Location); ok && loc.Kind == expr.MemOf {
			collectUses(loc.Arg, set, memOnly)
		}
	case *PhiAssign:
		for _, c := range v.Cases {
			collectUses(c.BaseExpr, set, memOnly)
		}
	case *BoolAssign:
		collectUses(v.Cond, set, memOnly)
	case *BranchStatement:
		collectUses(v.Cond, set, memOnly)
	case *CallStatement:
		for _, a := range v.Arguments {
			collectUses(a.Rhs, set, memOnly)
		}
		if withCollectors {
			for _, e := range v.UseCollector.Slice() {
				set.Add(e)
			}
		}
	case *ReturnStatement:
		for _, r := range v.Returns {
			collectUses(r, set, memOnly)
		}
	}
}

// collectUses walks e recursively, adding referenced locations to set.
// Register/temp/local/global/param tags are leaves (their Arg is a
// name or number, not itself a use); memOf's Arg is an address
// expression and is walked for nested uses. A subscripted terminal such
// as a flag reference %CF{1} is collected as a use as well.
func collectUses(e expr.Expr, set *LocSet, memOnly bool) {
	if e == nil {
		return
	}
	switch v := e.(type) {
	case *expr.Ref:
		if loc, ok := v.Base.(*expr.Location); ok {
			addUse(set, e, loc.Kind, memOnly)
			if loc.Kind == expr.MemOf {
				collectUses(loc.Arg, set, memOnly)
			}
			return
		}
		if _, ok := v.Base.(*expr.Terminal); ok {
			if !memOnly {
				set.Add(e)
			}
			return
		}
		collectUses(v.Base, set, memOnly)
	case *expr.Location:
		addUse(set, e, v.Kind, memOnly)
		if v.Kind == expr.MemOf {
			collectUses(v.Arg, set, memOnly)
		}
	case *expr.Unary:
		collectUses(v.Arg, set, memOnly)
	case *expr.Binary:
		collectUses(v.Left, set, memOnly)
		collectUses(v.Right, set, memOnly)
	case *expr.Ternary:
		collectUses(v.A, set, memOnly)
		collectUses(v.B, set, memOnly)
		collectUses(v.C, set, memOnly)
	case *expr.FlagCall:
		for _, a := range v.Args {
			collectUses(a, set, memOnly)
		}
	}
}

func addUse(set *LocSet, e expr.Expr, kind expr.LocationKind, memOnly bool) {
	if !memOnly || kind == expr.MemOf {
		set.Add(e)
	}
}
