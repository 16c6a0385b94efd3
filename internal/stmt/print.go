package stmt

import (
	"fmt"
	"strings"
)

// Print renders a statement's body text: a 4-column right-aligned
// statement number followed by the kind-specific form. The owning
// RTL's address prefix ("0x%08x") is added by the caller (see
// internal/program's printer), since a bare statement does not know
// its address.
func Print(s Statement) string {
	return fmt.Sprintf("%4d %s", uint64(s.ID()), Body(s))
}

// Body renders only the kind-specific textual form, with no statement
// number prefix.
func Body(s Statement) string {
	switch v := s.(type) {
	case *Assign:
		ty := ""
		if v.Ty != "" {
			ty = v.Ty + " "
		}
		return fmt.Sprintf("%s%s := %s", ty, v.Lhs.String(), v.Rhs.String())
	case *PhiAssign:
		var cases []string
		for _, c := range v.Cases {
			cases = append(cases, fmt.Sprintf("frag%d->%s", c.PredFragID, c.BaseExpr.String()))
		}
		return fmt.Sprintf("%s := phi(%s)", v.Lhs.String(), strings.Join(cases, ", "))
	case *ImplicitAssign:
		return fmt.Sprintf("%s := -", v.Lhs.String())
	case *BoolAssign:
		return fmt.Sprintf("%s := (%s %s ? 1 : 0)", v.Lhs.String(), v.BranchType, v.Cond.String())
	case *GotoStatement:
		return fmt.Sprintf("GOTO frag%d", v.DestFragID)
	case *BranchStatement:
		return fmt.Sprintf("BRANCH frag%d, condition %s", v.DestFragID, v.Cond.String())
	case *CaseStatement:
		return fmt.Sprintf("CASE frag%d", v.DestFragID)
	case *CallStatement:
		var args []string
		for _, a := range v.Arguments {
			args = append(args, fmt.Sprintf("%s = %s", a.Lhs.String(), a.Rhs.String()))
		}
		return fmt.Sprintf("CALL %s(%s)", v.Callee, strings.Join(args, ", "))
	case *ReturnStatement:
		var rets []string
		for _, r := range v.Returns {
			rets = append(rets, r.String())
		}
		return fmt.Sprintf("RETURN %s", strings.Join(rets, ", "))
	default:
		panic("stmt: Body: unhandled variant")
	}
}
