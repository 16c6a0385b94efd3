package expr

// Clone produces a deep copy of e, except that a Location's owning
// Proc handle is shared rather than duplicated (it is not tree data).
func Clone(e Expr) Expr {
	switch v := e.(type) {
	case nil:
		return nil
	case *IntConst:
		c := *v
		return &c
	case *FloatConst:
		c := *v
		return &c
	case *StrConst:
		c := *v
		return &c
	case *Terminal:
		c := *v
		return &c
	case *Unary:
		return &Unary{Op: v.Op, Arg: Clone(v.Arg)}
	case *Binary:
		return &Binary{Op: v.Op, Left: Clone(v.Left), Right: Clone(v.Right)}
	case *Ternary:
		return &Ternary{Op: v.Op, A: Clone(v.A), B: Clone(v.B), C: Clone(v.C)}
	case *FlagCall:
		args := make([]Expr, len(v.Args))
		for i, a := range v.Args {
			args[i] = Clone(a)
		}
		return &FlagCall{Name: v.Name, Args: args}
	case *Location:
		return &Location{Kind: v.Kind, Arg: Clone(v.Arg), Proc: v.Proc}
	case *Ref:
		return &Ref{Base: Clone(v.Base), Def: v.Def}
	default:
		panic("expr: Clone: unhandled variant")
	}
}

// Equals is deep structural equality. Binary/Ternary operand order is
// significant: no commutative reordering is performed here (that is
// Simplify's job, during canonicalization).
func Equals(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case *IntConst:
		bv, ok := b.(*IntConst)
		return ok && av.Value == bv.Value && av.Width == bv.Width
	case *FloatConst:
		bv, ok := b.(*FloatConst)
		return ok && av.Value == bv.Value
	case *StrConst:
		bv, ok := b.(*StrConst)
		return ok && av.Value == bv.Value
	case *Terminal:
		bv, ok := b.(*Terminal)
		return ok && av.Name == bv.Name
	case *Unary:
		bv, ok := b.(*Unary)
		return ok && av.Op == bv.Op && Equals(av.Arg, bv.Arg)
	case *Binary:
		bv, ok := b.(*Binary)
		return ok && av.Op == bv.Op && Equals(av.Left, bv.Left) && Equals(av.Right, bv.Right)
	case *Ternary:
		bv, ok := b.(*Ternary)
		return ok && av.Op == bv.Op && Equals(av.A, bv.A) && Equals(av.B, bv.B) && Equals(av.C, bv.C)
	case *FlagCall:
		bv, ok := b.(*FlagCall)
		if !ok || av.Name != bv.Name || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !Equals(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return true
	case *Location:
		bv, ok := b.(*Location)
		return ok && av.Kind == bv.Kind && Equals(av.Arg, bv.Arg)
	case *Ref:
		bv, ok := b.(*Ref)
		return ok && av.Def == bv.Def && Equals(av.Base, bv.Base)
	default:
		return false
	}
}
