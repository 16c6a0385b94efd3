package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decompir/internal/decoder"
	"decompir/internal/expr"
	"decompir/internal/frag"
	"decompir/internal/stmt"
)

func buildDiamond(t *testing.T) (*frag.Graph, *frag.Fragment, *frag.Fragment, *frag.Fragment, *frag.Fragment) {
	t.Helper()
	e := &frag.Fragment{Low: 0x1000}
	a := &frag.Fragment{Low: 0x2000}
	b := &frag.Fragment{Low: 0x3000}
	m := &frag.Fragment{Low: 0x4000}

	e.RTLs = append(e.RTLs, rtlOf(&stmt.Assign{Base: stmt.Base{Id: 1}, Lhs: expr.RegOfN(0), Rhs: &expr.IntConst{Value: 1}}))
	a.RTLs = append(a.RTLs, rtlOf(&stmt.Assign{Base: stmt.Base{Id: 2}, Lhs: expr.RegOfN(0), Rhs: &expr.IntConst{Value: 2}}))
	b.RTLs = append(b.RTLs, rtlOf(&stmt.Assign{Base: stmt.Base{Id: 3}, Lhs: expr.RegOfN(0), Rhs: &expr.IntConst{Value: 3}}))
	m.RTLs = append(m.RTLs, rtlOf(&stmt.Assign{Base: stmt.Base{Id: 4}, Lhs: expr.RegOfN(1), Rhs: expr.RegOfN(0)}))

	g := frag.New()
	g.Add(e)
	g.Add(a)
	g.Add(b)
	g.Add(m)
	g.AddEdge(e, a)
	g.AddEdge(e, b)
	g.AddEdge(a, m)
	g.AddEdge(b, m)
	g.SetEntry(e)
	return g, e, a, b, m
}

func newIDGen(start uint64) func() expr.StmtID {
	counter := start
	return func() expr.StmtID {
		counter++
		return expr.StmtID(counter)
	}
}

func TestDominatorsOnDiamond(t *testing.T) {
	g, e, a, b, m := buildDiamond(t)
	canRename := DefaultCanRename(RenameOptions{})
	s, err := Build(g, canRename, true, newIDGen(100))
	require.NoError(t, err)

	ei, ai, bi, mi := s.Index[e], s.Index[a], s.Index[b], s.Index[m]

	assert.Equal(t, ei, s.IDom[ai])
	assert.Equal(t, ei, s.IDom[bi])
	assert.Equal(t, ei, s.IDom[mi])

	// property 1: every non-entry fragment's idom chain reaches entry
	// and is never its own idom.
	for i := range s.Vertex {
		if i == 0 {
			continue
		}
		assert.NotEqual(t, i, s.IDom[i])
		cur := i
		for cur != 0 {
			cur = s.IDom[cur]
		}
	}

	// property 2: idom[v] dominates u for edge u->v.
	assert.True(t, s.dominates(s.IDom[mi], ai))
	assert.True(t, s.dominates(s.IDom[mi], bi))
}

func TestDominanceFrontierMatchesPhiPlacement(t *testing.T) {
	g, e, a, b, m := buildDiamond(t)
	canRename := DefaultCanRename(RenameOptions{})
	s, err := Build(g, canRename, true, newIDGen(100))
	require.NoError(t, err)
	_ = e

	ai, bi, mi := s.Index[a], s.Index[b], s.Index[m]
	assert.Contains(t, s.DF[ai], mi)
	assert.Contains(t, s.DF[bi], mi)

	phi, ok := m.PhiFor(expr.RegOfN(0).String())
	require.True(t, ok)
	require.Len(t, phi.Cases, 2)
}

func TestRenamingAnnotatesUsesAndPhiCases(t *testing.T) {
	g, _, a, b, m := buildDiamond(t)
	canRename := DefaultCanRename(RenameOptions{})
	s, err := Build(g, canRename, true, newIDGen(100))
	require.NoError(t, err)

	phi, ok := m.PhiFor(expr.RegOfN(0).String())
	require.True(t, ok)

	gotDefs := map[stmt.ID]bool{}
	for _, c := range phi.Cases {
		gotDefs[c.Def] = true
	}
	assert.True(t, gotDefs[2], "expected a's def (id 2) among phi cases")
	assert.True(t, gotDefs[3], "expected b's def (id 3) among phi cases")

	use := m.RTLs[0].Statements[0].(*stmt.Assign)
	ref, ok := use.Rhs.(*expr.Ref)
	require.True(t, ok, "use of r0 in merge block must be rewritten to a Ref")
	assert.Equal(t, phi.ID(), ref.Def)

	_ = a
	_ = b
}

func TestBuildFailsOnUnindexedPredecessor(t *testing.T) {
	g, _, _, _, m := buildDiamond(t)
	stray := &frag.Fragment{Low: 0x9999}
	m.Predecessors = append(m.Predecessors, stray)

	_, err := Build(g, DefaultCanRename(RenameOptions{}), true, newIDGen(100))
	require.Error(t, err)
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)
}

func rtlOf(statements ...stmt.Statement) decoder.RTL {
	return decoder.RTL{Statements: statements}
}
