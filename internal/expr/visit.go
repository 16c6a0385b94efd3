package expr

// Visitor is called on entry (Pre) and exit (Post) of every node visited
// by Visit. Pre's recurse return controls whether children are walked.
type Visitor interface {
	Pre(e Expr) (recurse bool)
	Post(e Expr)
}

// Visit performs a pre/post traversal of e using v.
func Visit(e Expr, v Visitor) {
	if e == nil {
		return
	}
	recurse := v.Pre(e)
	if recurse {
		switch n := e.(type) {
		case *Unary:
			Visit(n.Arg, v)
		case *Binary:
			Visit(n.Left, v)
			Visit(n.Right, v)
		case *Ternary:
			Visit(n.A, v)
			Visit(n.B, v)
			Visit(n.C, v)
		case *FlagCall:
			for _, a := range n.Args {
				Visit(a, v)
			}
		case *Location:
			Visit(n.Arg, v)
		case *Ref:
			Visit(n.Base, v)
		}
	}
	v.Post(e)
}

// Modifier rewrites nodes on entry (PreMod, which may substitute a whole
// subtree and suppress descent into it) and on exit (PostMod, applied to
// the node after its — possibly rewritten — children).
type Modifier interface {
	PreMod(e Expr) (out Expr, recurse bool)
	PostMod(e Expr) Expr
}

// Rewrite applies m to e and returns the rewritten tree.
func Rewrite(e Expr, m Modifier) Expr {
	if e == nil {
		return nil
	}
	cur, recurse := m.PreMod(e)
	if recurse {
		switch n := cur.(type) {
		case *Unary:
			cur = &Unary{Op: n.Op, Arg: Rewrite(n.Arg, m)}
		case *Binary:
			cur = &Binary{Op: n.Op, Left: Rewrite(n.Left, m), Right: Rewrite(n.Right, m)}
		case *Ternary:
			cur = &Ternary{Op: n.Op, A: Rewrite(n.A, m), B: Rewrite(n.B, m), C: Rewrite(n.C, m)}
		case *FlagCall:
			args := make([]Expr, len(n.Args))
			for i, a := range n.Args {
				args[i] = Rewrite(a, m)
			}
			cur = &FlagCall{Name: n.Name, Args: args}
		case *Location:
			cur = &Location{Kind: n.Kind, Arg: Rewrite(n.Arg, m), Proc: n.Proc}
		case *Ref:
			cur = &Ref{Base: Rewrite(n.Base, m), Def: n.Def}
		}
	}
	return m.PostMod(cur)
}

// funcModifier adapts a pair of plain functions to the Modifier
// interface, for callers that don't need the full pre/post split.
type funcModifier struct {
	pre  func(Expr) (Expr, bool)
	post func(Expr) Expr
}

func (f funcModifier) PreMod(e Expr) (Expr, bool) {
	if f.pre == nil {
		return e, true
	}
	return f.pre(e)
}

func (f funcModifier) PostMod(e Expr) Expr {
	if f.post == nil {
		return e
	}
	return f.post(e)
}

// RewriteFunc rewrites e using a single post-order function: post is
// applied bottom-up to every node, mirroring the common case of a
// modifier that only transforms on the way back up.
func RewriteFunc(e Expr, post func(Expr) Expr) Expr {
	return Rewrite(e, funcModifier{post: post})
}
