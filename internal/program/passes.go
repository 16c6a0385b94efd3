package program

import (
	"decompir/internal/expr"
	"decompir/internal/frag"
	"decompir/internal/stmt"
)

// assignStatementIDs mints a fresh identity for every statement and
// phi in g that does not already have one — the statement-init pass
// (§5), run once per procedure before SSA construction so every phi
// Build later inserts gets an identity from the same counter.
func assignStatementIDs(g *frag.Graph, gen *IDGen) {
	for _, f := range g.Fragments() {
		for _, p := range f.Phis {
			if p.ID() == expr.Implicit {
				setStatementID(p, gen.Next())
			}
		}
		for ri := range f.RTLs {
			for _, st := range f.RTLs[ri].Statements {
				if st.ID() == expr.Implicit {
					setStatementID(st, gen.Next())
				}
			}
		}
	}
}

// setStatementID assigns id to s's embedded Base, statement kind by
// statement kind — the "tagged union, not virtual dispatch" idiom the
// rest of the core uses, since Statement.Base.Id has no setter of its
// own.
func setStatementID(s stmt.Statement, id expr.StmtID) {
	switch v := s.(type) {
	case *stmt.Assign:
		v.Id = id
	case *stmt.PhiAssign:
		v.Id = id
	case *stmt.ImplicitAssign:
		v.Id = id
	case *stmt.BoolAssign:
		v.Id = id
	case *stmt.GotoStatement:
		v.Id = id
	case *stmt.BranchStatement:
		v.Id = id
	case *stmt.CaseStatement:
		v.Id = id
	case *stmt.CallStatement:
		v.Id = id
	case *stmt.ReturnStatement:
		v.Id = id
	}
}

// buildLookup snapshots every statement (and phi) currently in g,
// keyed by identity, for propagation/bypass's reaching-definition
// lookups. Rebuilt once per outer fixed-point iteration in RunPasses.
func buildLookup(g *frag.Graph) stmt.Lookup {
	table := make(map[expr.StmtID]stmt.Statement)
	for _, f := range g.Fragments() {
		for _, st := range f.Statements() {
			table[st.ID()] = st
		}
	}
	return func(id expr.StmtID) (stmt.Statement, bool) {
		s, ok := table[id]
		return s, ok
	}
}

// computeDestCounts counts, across every statement in g, how many
// times each printed reference form is used — the destination-count
// map propagation's depth gate consults (§4.5).
func computeDestCounts(g *frag.Graph, withCollectors bool) map[string]int {
	counts := make(map[string]int)
	for _, f := range g.Fragments() {
		for _, st := range f.Statements() {
			used := stmt.NewLocSet()
			stmt.AddUsedLocs(st, used, withCollectors, false)
			for _, u := range used.Slice() {
				if ref, ok := u.(*expr.Ref); ok {
					counts[ref.String()]++
				}
			}
		}
	}
	return counts
}
