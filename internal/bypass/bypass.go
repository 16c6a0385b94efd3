// Package bypass implements call bypassing (C7): rewriting a reference
// l{call} — where call is a CallStatement — into the callee's proven
// identity for l, localized to the call's reaching definitions. A
// ProvenTable holds those per-callee identities; BypassRef consults it
// for a single reference, and ToThis applies it across a statement's
// uses, chasing chains of bypassable calls to a fixed point.
package bypass

import (
	"decompir/internal/expr"
	"decompir/internal/obslog"
	"decompir/internal/stmt"
)

// Proven is one callee's proven postcondition for a location: after
// the call, Loc's value equals Build(pre), where pre is the reaching
// definition reference for Loc at the call site.
type Proven struct {
	Loc   expr.Expr
	Build func(pre expr.Expr) expr.Expr
}

// ProvenTable holds proven identities keyed by callee name. A callee
// may have more than one proven location (e.g. both the stack pointer
// and a return register).
type ProvenTable struct {
	byCallee map[string][]Proven
}

// NewProvenTable returns an empty table.
func NewProvenTable() *ProvenTable {
	return &ProvenTable{byCallee: make(map[string][]Proven)}
}

// Prove records that callee is proven to leave loc equal to
// build(pre-call reaching definition of loc).
func (t *ProvenTable) Prove(callee string, loc expr.Expr, build func(pre expr.Expr) expr.Expr) {
	t.byCallee[callee] = append(t.byCallee[callee], Proven{Loc: loc, Build: build})
}

func (t *ProvenTable) lookup(callee string, loc expr.Expr) (func(pre expr.Expr) expr.Expr, bool) {
	for _, p := range t.byCallee[callee] {
		if expr.Equals(p.Loc, loc) {
			return p.Build, true
		}
	}
	return nil, false
}

// BypassRef implements bypassRef (§4.6) for a single reference: if ref
// is defined by a call the table proves an identity for, it returns
// the identity localized to the call's reaching definition for ref's
// base location. Otherwise it returns ref unchanged.
func BypassRef(ref *expr.Ref, lookup stmt.Lookup, table *ProvenTable) (expr.Expr, bool) {
	if ref.Def == expr.Implicit {
		return ref, false
	}
	def, ok := lookup(ref.Def)
	if !ok {
		return ref, false
	}
	call, ok := def.(*stmt.CallStatement)
	if !ok {
		return ref, false
	}
	build, ok := table.lookup(call.Callee, ref.Base)
	if !ok {
		return ref, false
	}
	pre, ok := reachingRef(call, ref.Base)
	if !ok {
		return ref, false
	}
	return build(expr.Clone(pre)), true
}

// reachingRef finds call's DefCollector entry — the reaching
// definition reference into the call — for loc.
func reachingRef(call *stmt.CallStatement, loc expr.Expr) (expr.Expr, bool) {
	if call.DefCollector == nil {
		return nil, false
	}
	for _, e := range call.DefCollector.Slice() {
		ref, ok := e.(*expr.Ref)
		if !ok {
			continue
		}
		if expr.Equals(ref.Base, loc) {
			return ref, true
		}
	}
	return nil, false
}

// modifier is the "call bypasser" traversal: entering a reference
// delegates to BypassRef; a successful rewrite is chased recursively
// to fold chains of bypassable calls; leaving a location simplifies
// it.
type modifier struct {
	lookup  stmt.Lookup
	table   *ProvenTable
	changed bool
}

func (m *modifier) PreMod(e expr.Expr) (expr.Expr, bool) {
	ref, ok := e.(*expr.Ref)
	if !ok {
		return e, true
	}
	rewritten, ok := BypassRef(ref, m.lookup, m.table)
	if !ok {
		return e, true
	}
	m.changed = true
	return expr.Rewrite(rewritten, m), false
}

func (m *modifier) PostMod(e expr.Expr) expr.Expr {
	if loc, ok := e.(*expr.Location); ok {
		return expr.Simplify(loc)
	}
	return e
}

// ToThis runs call bypassing over target's used operands, leaving
// definition targets (the statement's own lhs) untouched, and
// simplifies once at the end.
func ToThis(target stmt.Statement, lookup stmt.Lookup, table *ProvenTable) stmt.Statement {
	m := &modifier{lookup: lookup, table: table}
	result := rewriteUses(target, m)
	if m.changed {
		obslog.Debugw("bypass: rewrote call-bounded reference", "statement", stmt.Body(target))
	}
	return stmt.MapExprs(result, expr.Simplify)
}

// rewriteUses clones st and rewrites its used operands through m,
// leaving definition targets untouched — the do-not-touch-the-lhs
// guard (§4.6).
func rewriteUses(st stmt.Statement, m *modifier) stmt.Statement {
	cloned := stmt.Clone(st)
	rewrite := func(e expr.Expr) expr.Expr { return expr.Rewrite(e, m) }
	switch v := cloned.(type) {
	case *stmt.Assign:
		if mem, ok := v.Lhs.(*expr.Location); ok && mem.Kind == expr.MemOf {
			mem.Arg = rewrite(mem.Arg)
		}
		v.Rhs = rewrite(v.Rhs)
	case *stmt.PhiAssign:
		for i := range v.Cases {
			v.Cases[i].BaseExpr = rewrite(v.Cases[i].BaseExpr)
		}
	case *stmt.BoolAssign:
		v.Cond = rewrite(v.Cond)
	case *stmt.BranchStatement:
		v.Cond = rewrite(v.Cond)
	case *stmt.CallStatement:
		for i := range v.Arguments {
			v.Arguments[i].Rhs = rewrite(v.Arguments[i].Rhs)
		}
	case *stmt.ReturnStatement:
		for i := range v.Modifieds {
			v.Modifieds[i] = rewrite(v.Modifieds[i])
		}
		for i := range v.Returns {
			v.Returns[i] = rewrite(v.Returns[i])
		}
	}
	return cloned
}
