package ssa

import (
	"decompir/internal/expr"
	"decompir/internal/stmt"
)

// computeDefSites populates DefinedAt and DefSites, and augments both
// with defAllSites — the fragments holding a childless call, which
// §4.4 treats as defining every renameable variable.
func (s *SSA) computeDefSites() {
	for idx, f := range s.Vertex {
		for _, st := range f.Statements() {
			set := stmt.NewLocSet()
			stmt.GetDefinitions(st, set, s.assumeABI)
			for _, loc := range set.Slice() {
				if !s.canRename(loc) {
					continue
				}
				s.recordDef(idx, loc)
			}
			if call, ok := st.(*stmt.CallStatement); ok && !call.Analyzed() {
				s.defAllSites = append(s.defAllSites, idx)
			}
		}
	}

	for key := range s.DefStmts {
		for _, idx := range s.defAllSites {
			s.DefinedAt[idx][key] = true
			if !containsInt(s.DefSites[key], idx) {
				s.DefSites[key] = append(s.DefSites[key], idx)
			}
		}
	}
}

func (s *SSA) recordDef(idx int, loc expr.Expr) {
	key := loc.String()
	s.DefinedAt[idx][key] = true
	if _, ok := s.DefStmts[key]; !ok {
		s.DefStmts[key] = loc
	}
	if !containsInt(s.DefSites[key], idx) {
		s.DefSites[key] = append(s.DefSites[key], idx)
	}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// placePhis runs Cytron's iterative work-list algorithm: for every
// renameable variable, push its definition sites, then for every
// fragment popped insert a phi at each member of its dominance
// frontier that doesn't already have one, queuing newly-phi'd
// fragments that weren't already a definition site.
func (s *SSA) placePhis(newID func() expr.StmtID) {
	for key, sites := range s.DefSites {
		rep := s.DefStmts[key]
		worklist := append([]int(nil), sites...)
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]

			for _, y := range s.DF[n] {
				target := s.Vertex[y]
				if _, exists := target.PhiFor(key); exists {
					continue
				}
				phi := &stmt.PhiAssign{
					Base: stmt.Base{Id: newID(), Frag: target.Low, Proc: target.Proc},
					Lhs:  expr.Clone(rep),
				}
				target.AddPhi(phi)
				s.APhi[key] = append(s.APhi[key], y)
				if !s.DefinedAt[y][key] {
					worklist = append(worklist, y)
				}
			}
		}
	}
}
