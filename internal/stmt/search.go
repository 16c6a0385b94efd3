package stmt

import "decompir/internal/expr"

// Search collects, into result, every subexpression across s's
// operands that is structurally equal to pattern.
func Search(s Statement, pattern expr.Expr, result *[]expr.Expr) {
	for _, e := range operands(s) {
		expr.Search(e, pattern, result)
	}
}

// SearchAndReplace returns a copy of s with every subexpression
// structurally equal to pattern replaced by replacement.
func SearchAndReplace(s Statement, pattern, replacement expr.Expr) Statement {
	c := Clone(s)
	rewriteOperands(c, func(e expr.Expr) expr.Expr {
		return expr.SearchReplaceAll(e, pattern, replacement)
	})
	return c
}

// MapExprs returns a clone of s with every top-level expression
// operand replaced by f(operand). Used by propagation's post-pass
// simplify and by call bypassing's expression rewrite.
func MapExprs(s Statement, f func(expr.Expr) expr.Expr) Statement {
	c := Clone(s)
	rewriteOperands(c, f)
	return c
}

// operands returns every top-level expression operand of s (lhs, rhs,
// conditions, arguments, returns — anything Search/SearchAndReplace
// should reach into).
func operands(s Statement) []expr.Expr {
	switch v := s.(type) {
	case *Assign:
		return []expr.Expr{v.Lhs, v.Rhs}
	case *PhiAssign:
		out := []expr.Expr{v.Lhs}
		for _, c := range v.Cases {
			out = append(out, c.BaseExpr)
		}
		return out
	case *ImplicitAssign:
		return []expr.Expr{v.Lhs}
	case *BoolAssign:
		return []expr.Expr{v.Lhs, v.Cond}
	case *BranchStatement:
		return []expr.Expr{v.Cond}
	case *CallStatement:
		var out []expr.Expr
		for _, a := range v.Arguments {
			out = append(out, a.Lhs, a.Rhs)
		}
		out = append(out, v.Defines...)
		return out
	case *ReturnStatement:
		out := append([]expr.Expr{}, v.Modifieds...)
		return append(out, v.Returns...)
	default:
		return nil
	}
}

// rewriteOperands rewrites s's operands in place using f. s must be a
// freshly cloned statement not shared with anything else.
func rewriteOperands(s Statement, f func(expr.Expr) expr.Expr) {
	switch v := s.(type) {
	case *Assign:
		v.Lhs, v.Rhs = f(v.Lhs), f(v.Rhs)
	case *PhiAssign:
		v.Lhs = f(v.Lhs)
		for i := range v.Cases {
			v.Cases[i].BaseExpr = f(v.Cases[i].BaseExpr)
		}
	case *ImplicitAssign:
		v.Lhs = f(v.Lhs)
	case *BoolAssign:
		v.Lhs, v.Cond = f(v.Lhs), f(v.Cond)
	case *BranchStatement:
		v.Cond = f(v.Cond)
	case *CallStatement:
		for i := range v.Arguments {
			v.Arguments[i].Lhs = f(v.Arguments[i].Lhs)
			v.Arguments[i].Rhs = f(v.Arguments[i].Rhs)
		}
		for i := range v.Defines {
			v.Defines[i] = f(v.Defines[i])
		}
	case *ReturnStatement:
		for i := range v.Modifieds {
			v.Modifieds[i] = f(v.Modifieds[i])
		}
		for i := range v.Returns {
			v.Returns[i] = f(v.Returns[i])
		}
	}
}
