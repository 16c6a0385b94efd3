package program

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decompir/internal/cfg"
	"decompir/internal/decoder"
	"decompir/internal/expr"
	"decompir/internal/frag"
	"decompir/internal/settings"
	"decompir/internal/stmt"
)

func singleFragmentProgram(t *testing.T, rtls ...decoder.RTL) (*Program, *Procedure) {
	t.Helper()
	f := &frag.Fragment{Low: 0x1000, RTLs: rtls}
	g := frag.New()
	g.Add(f)
	g.SetEntry(f)

	p := New(settings.New())
	p.Limits = Limits{MaxIterations: 5, PropMaxDepth: 5}
	proc := NewProcedure(1, "test_proc", g)
	return p, proc
}

// TestRunPassesChasesBypassThenPropagates is an end-to-end integration
// covering S5 (call bypassing) composed with copy propagation: the
// call's proven offset is folded in, and then the resulting reference
// to a constant definition is itself propagated and constant-folded.
func TestRunPassesChasesBypassThenPropagates(t *testing.T) {
	preCall := &stmt.Assign{Base: stmt.Base{Id: 1}, Lhs: expr.RegOfN(28), Rhs: &expr.IntConst{Value: 0x2000}}

	defCollector := stmt.NewLocSet()
	defCollector.Add(&expr.Ref{Base: expr.RegOfN(28), Def: 1})
	call := &stmt.CallStatement{Base: stmt.Base{Id: 2}, Callee: "proven_fn", DefCollector: defCollector}

	useOfCall := &stmt.Assign{
		Base: stmt.Base{Id: 3},
		Lhs:  expr.RegOfN(28),
		Rhs: &expr.Binary{
			Op:    "+",
			Left:  &expr.Ref{Base: expr.RegOfN(28), Def: 2},
			Right: &expr.IntConst{Value: 16},
		},
	}

	p, proc := singleFragmentProgram(t,
		decoder.RTL{Addr: 0x1000, Statements: []stmt.Statement{preCall}},
		decoder.RTL{Addr: 0x1004, Statements: []stmt.Statement{call}},
		decoder.RTL{Addr: 0x1008, Statements: []stmt.Statement{useOfCall}},
	)
	proc.Proven.Prove("proven_fn", expr.RegOfN(28), func(pre expr.Expr) expr.Expr {
		return &expr.Binary{Op: "+", Left: pre, Right: &expr.IntConst{Value: 4}}
	})

	diags := p.RunPasses(context.Background(), proc)
	assert.Empty(t, diags)

	f := proc.Graph.Fragments()[0]
	got := f.RTLs[2].Statements[0].(*stmt.Assign)
	want := &expr.IntConst{Value: 0x2014}
	assert.True(t, expr.Equals(want, got.Rhs), "got %s", got.Rhs.String())
}

// TestNullStatementsDoNotParticipate covers property 5: a null
// statement (lhs := lhs{self}) must never be propagated into a use,
// even after the pass pipeline reaches a fixed point.
func TestNullStatementsDoNotParticipate(t *testing.T) {
	null := &stmt.Assign{Base: stmt.Base{Id: 5}, Lhs: expr.RegOfN(1), Rhs: &expr.Ref{Base: expr.RegOfN(1), Def: 5}}
	use := &stmt.Assign{Base: stmt.Base{Id: 10}, Lhs: expr.RegOfN(2), Rhs: &expr.Ref{Base: expr.RegOfN(1), Def: 5}}

	p, proc := singleFragmentProgram(t,
		decoder.RTL{Addr: 0x1000, Statements: []stmt.Statement{null}},
		decoder.RTL{Addr: 0x1004, Statements: []stmt.Statement{use}},
	)

	diags := p.RunPasses(context.Background(), proc)
	assert.Empty(t, diags)

	f := proc.Graph.Fragments()[0]
	got := f.RTLs[1].Statements[0].(*stmt.Assign)
	ref, ok := got.Rhs.(*expr.Ref)
	require.True(t, ok, "a null statement's definition must not be inlined into its uses")
	assert.Equal(t, expr.StmtID(5), ref.Def)
}

func TestRunAllCollectsDiagnosticsAcrossProcedures(t *testing.T) {
	p, proc1 := singleFragmentProgram(t, decoder.RTL{Addr: 0x1000, Statements: []stmt.Statement{
		&stmt.Assign{Base: stmt.Base{Id: 1}, Lhs: expr.RegOfN(0), Rhs: &expr.IntConst{Value: 1}},
	}})
	proc2 := NewProcedure(2, "second_proc", func() *frag.Graph {
		f := &frag.Fragment{Low: 0x2000}
		f.RTLs = append(f.RTLs, decoder.RTL{Addr: 0x2000, Statements: []stmt.Statement{
			&stmt.Assign{Base: stmt.Base{Id: 1}, Lhs: expr.RegOfN(0), Rhs: &expr.IntConst{Value: 2}},
		}})
		g := frag.New()
		g.Add(f)
		g.SetEntry(f)
		return g
	}())
	p.AddProcedure(proc1)
	p.AddProcedure(proc2)

	require.NoError(t, p.RunAll(context.Background()))
	assert.Empty(t, p.Diagnostics)
}

func TestValidateCFGReportsIntegrityFailure(t *testing.T) {
	cg := cfgWithIncompleteBlock(t)
	diags := ValidateCFG("broken_proc", cg)
	require.Len(t, diags, 1)
	assert.Equal(t, "broken_proc", diags[0].Position.ProcName)
}

func TestPrintIncludesAddressAndStatementBody(t *testing.T) {
	_, proc := singleFragmentProgram(t, decoder.RTL{Addr: 0x1000, Statements: []stmt.Statement{
		&stmt.Assign{Base: stmt.Base{Id: 1}, Lhs: expr.RegOfN(0), Rhs: &expr.IntConst{Value: 1}},
	}})
	out := Print(proc)
	assert.Contains(t, out, "0x00001000")
	assert.Contains(t, out, "r0 := 0x1")
}

func cfgWithIncompleteBlock(t *testing.T) *cfg.Graph {
	t.Helper()
	g := cfg.New()
	g.CreateIncompleteBB(0x3000)
	return g
}
