package expr

import "decompir/internal/obslog"

// Simplify performs algebraic reduction to a canonical form. It is
// bottom-up and idempotent: Simplify(Simplify(e)) == Simplify(e) by
// structural equality.
func Simplify(e Expr) Expr {
	before := e.String()
	out := RewriteFunc(e, simplifyNode)
	if after := out.String(); after != before {
		obslog.Get().Debugw("expr: simplified", "before", before, "after", after)
	}
	return out
}

func simplifyNode(e Expr) Expr {
	switch n := e.(type) {
	case *Unary:
		return simplifyUnary(n)
	case *Binary:
		return simplifyBinary(n)
	case *Location:
		return simplifyLocation(n)
	default:
		return e
	}
}

func simplifyUnary(u *Unary) Expr {
	// (~~x) = x
	if u.Op == "~" {
		if inner, ok := u.Arg.(*Unary); ok && inner.Op == "~" {
			return inner.Arg
		}
	}
	// a[m[x]] = x
	if u.Op == "a" {
		if mem, ok := u.Arg.(*Location); ok && mem.Kind == MemOf {
			return mem.Arg
		}
	}
	return u
}

// simplifyLocation cancels m[a[x]]; simplifyUnary cancels a[m[x]].
func simplifyLocation(l *Location) Expr {
	if l.Kind == MemOf {
		if addrOf, ok := l.Arg.(*Unary); ok && addrOf.Op == "a" {
			return addrOf.Arg
		}
	}
	return l
}

// AddrOf constructs the "address of" unary operator used by the
// m[a[x]]/a[m[x]] cancellation identities.
func AddrOf(e Expr) Expr {
	if mem, ok := e.(*Location); ok && mem.Kind == MemOf {
		return mem.Arg
	}
	return &Unary{Op: "a", Arg: e}
}

func simplifyBinary(b *Binary) Expr {
	if folded, ok := foldConstBinary(b); ok {
		return folded
	}

	switch b.Op {
	case "&":
		if isZeroConst(b.Right) || isZeroConst(b.Left) {
			return &IntConst{Value: 0}
		}
	case "|":
		if isZeroConst(b.Right) {
			return b.Left
		}
		if isZeroConst(b.Left) {
			return b.Right
		}
	case "^":
		if Equals(b.Left, b.Right) {
			return &IntConst{Value: 0}
		}
		if isZeroConst(b.Right) {
			return b.Left
		}
	case "-":
		if Equals(b.Left, b.Right) {
			return &IntConst{Value: 0}
		}
	case "+":
		if isZeroConst(b.Right) {
			return b.Left
		}
		if isZeroConst(b.Left) {
			return b.Right
		}
		if folded, ok := foldNestedAddConst(b); ok {
			return folded
		}
	}

	if isCommutative(b.Op) {
		return canonicalizeCommutative(b)
	}
	return b
}

// foldNestedAddConst reassociates (x + c1) + c2 into x + (c1+c2), so
// chains of constant-offset arithmetic — common after bypassing calls
// proven to offset a register by a fixed amount — collapse to a
// single offset rather than staying nested.
func foldNestedAddConst(b *Binary) (Expr, bool) {
	rc, ok := b.Right.(*IntConst)
	if !ok {
		return nil, false
	}
	lb, ok := b.Left.(*Binary)
	if !ok || lb.Op != "+" {
		return nil, false
	}
	lc, ok := lb.Right.(*IntConst)
	if !ok {
		return nil, false
	}
	return &Binary{Op: "+", Left: lb.Left, Right: &IntConst{Value: lc.Value + rc.Value}}, true
}

func isZeroConst(e Expr) bool {
	ic, ok := e.(*IntConst)
	return ok && ic.Value == 0
}

func isCommutative(op string) bool {
	switch op {
	case "+", "|", "&", "^", "*":
		return true
	default:
		return false
	}
}

// canonicalizeCommutative orders a constant operand to the right, so
// equivalent expressions built in either operand order converge to the
// same tree under repeated simplification.
func canonicalizeCommutative(b *Binary) Expr {
	_, leftConst := b.Left.(*IntConst)
	_, rightConst := b.Right.(*IntConst)
	if leftConst && !rightConst {
		return &Binary{Op: b.Op, Left: b.Right, Right: b.Left}
	}
	return b
}

// foldConstBinary evaluates b when both operands are integer constants.
func foldConstBinary(b *Binary) (Expr, bool) {
	l, lok := b.Left.(*IntConst)
	r, rok := b.Right.(*IntConst)
	if !lok || !rok {
		return nil, false
	}
	switch b.Op {
	case "+":
		return &IntConst{Value: l.Value + r.Value}, true
	case "-":
		return &IntConst{Value: l.Value - r.Value}, true
	case "*":
		return &IntConst{Value: l.Value * r.Value}, true
	case "/":
		if r.Value == 0 {
			return nil, false
		}
		return &IntConst{Value: l.Value / r.Value}, true
	case "&":
		return &IntConst{Value: l.Value & r.Value}, true
	case "|":
		return &IntConst{Value: l.Value | r.Value}, true
	case "^":
		return &IntConst{Value: l.Value ^ r.Value}, true
	case "=":
		return boolConst(l.Value == r.Value), true
	case "~=":
		return boolConst(l.Value != r.Value), true
	case "<":
		return boolConst(l.Value < r.Value), true
	case "<=":
		return boolConst(l.Value <= r.Value), true
	case ">":
		return boolConst(l.Value > r.Value), true
	case ">=":
		return boolConst(l.Value >= r.Value), true
	case "<u":
		return boolConst(uint64(l.Value) < uint64(r.Value)), true
	case "<=u":
		return boolConst(uint64(l.Value) <= uint64(r.Value)), true
	case ">u":
		return boolConst(uint64(l.Value) > uint64(r.Value)), true
	case ">=u":
		return boolConst(uint64(l.Value) >= uint64(r.Value)), true
	default:
		return nil, false
	}
}

func boolConst(v bool) *IntConst {
	if v {
		return &IntConst{Value: 1}
	}
	return &IntConst{Value: 0}
}
