package ssa

import (
	"decompir/internal/expr"
	"decompir/internal/stmt"
)

// useRename rewrites every canRename-eligible Location reachable in e
// into a Ref subscripted with the current top of that location's
// stack (or the implicit sentinel if the stack is empty). An operand
// that is already a Ref keeps its own definition.
func (s *SSA) useRename(e expr.Expr) expr.Expr {
	if e == nil {
		return nil
	}
	return expr.RewriteFunc(e, func(node expr.Expr) expr.Expr {
		if r, ok := node.(*expr.Ref); ok {
			if inner, ok := r.Base.(*expr.Ref); ok {
				return &expr.Ref{Base: inner.Base, Def: r.Def}
			}
			return node
		}
		loc, ok := node.(*expr.Location)
		if !ok || !s.canRename(loc) {
			return node
		}
		def := expr.Implicit
		if stack := s.stacks[loc.String()]; len(stack) > 0 {
			def = stack[len(stack)-1]
		}
		return &expr.Ref{Base: expr.Clone(loc), Def: def}
	})
}

// renameStatement clones st and rewrites its used operands via
// useRename, leaving definition targets untouched (their address
// subexpression, for a memory lhs, is itself a use and is rewritten).
func (s *SSA) renameStatement(orig stmt.Statement) stmt.Statement {
	cloned := stmt.Clone(orig)
	switch v := cloned.(type) {
	case *stmt.Assign:
		if mem, ok := v.Lhs.(*expr.Location); ok && mem.Kind == expr.MemOf {
			mem.Arg = s.useRename(mem.Arg)
		}
		v.Rhs = s.useRename(v.Rhs)
	case *stmt.BoolAssign:
		v.Cond = s.useRename(v.Cond)
	case *stmt.BranchStatement:
		v.Cond = s.useRename(v.Cond)
	case *stmt.CallStatement:
		for i := range v.Arguments {
			v.Arguments[i].Rhs = s.useRename(v.Arguments[i].Rhs)
		}
		if v.UseCollector != nil {
			renamed := stmt.NewLocSet()
			for _, u := range v.UseCollector.Slice() {
				renamed.Add(s.useRename(u))
			}
			v.UseCollector = renamed
		}
	case *stmt.ReturnStatement:
		for i := range v.Modifieds {
			v.Modifieds[i] = s.useRename(v.Modifieds[i])
		}
		for i := range v.Returns {
			v.Returns[i] = s.useRename(v.Returns[i])
		}
	}
	return cloned
}

// pushDefs pushes st's own identity onto the stack of every
// canRename-eligible location it defines, and returns their keys so
// the caller can pop them again on the way out of the fragment.
func (s *SSA) pushDefs(st stmt.Statement) []string {
	set := stmt.NewLocSet()
	stmt.GetDefinitions(st, set, s.assumeABI)
	var pushed []string
	for _, loc := range set.Slice() {
		if !s.canRename(loc) {
			continue
		}
		key := loc.String()
		s.stacks[key] = append(s.stacks[key], st.ID())
		pushed = append(pushed, key)
	}
	return pushed
}

// renameFragment implements Cytron's renaming variant 2: depth-first
// over the dominator tree, maintaining one stack per renameable
// location.
func (s *SSA) renameFragment(n int, children [][]int) {
	f := s.Vertex[n]
	var pushedKeys []string

	for _, p := range f.Phis {
		key := p.Lhs.String()
		s.stacks[key] = append(s.stacks[key], p.ID())
		pushedKeys = append(pushedKeys, key)
	}

	for ri, rtl := range f.RTLs {
		renamed := make([]stmt.Statement, len(rtl.Statements))
		for si, st := range rtl.Statements {
			renamed[si] = s.renameStatement(st)
			pushedKeys = append(pushedKeys, s.pushDefs(st)...)
		}
		f.RTLs[ri].Statements = renamed
	}

	for _, succ := range f.Successors {
		for _, p := range succ.Phis {
			key := p.Lhs.String()
			def := expr.Implicit
			if stack := s.stacks[key]; len(stack) > 0 {
				def = stack[len(stack)-1]
			}
			p.Cases = append(p.Cases, stmt.PhiCase{
				PredFragID: f.Low,
				Def:        def,
				BaseExpr:   expr.Clone(s.DefStmts[key]),
			})
		}
	}

	for _, c := range children[n] {
		s.renameFragment(c, children)
	}

	for _, key := range pushedKeys {
		stack := s.stacks[key]
		s.stacks[key] = stack[:len(stack)-1]
	}
}
