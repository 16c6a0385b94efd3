package bypass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decompir/internal/expr"
	"decompir/internal/stmt"
)

func offsetProven(offset int64) func(pre expr.Expr) expr.Expr {
	return func(pre expr.Expr) expr.Expr {
		return &expr.Binary{Op: "+", Left: pre, Right: &expr.IntConst{Value: offset}}
	}
}

// TestCallBypassingOffsetChain covers S5.
func TestCallBypassingOffsetChain(t *testing.T) {
	defCollector := stmt.NewLocSet()
	defCollector.Add(&expr.Ref{Base: expr.RegOfN(28), Def: 15})

	call := &stmt.CallStatement{
		Base:         stmt.Base{Id: 17},
		Callee:       "proven_callee",
		DefCollector: defCollector,
	}
	target := &stmt.Assign{
		Base: stmt.Base{Id: 19},
		Lhs:  expr.RegOfN(28),
		Rhs: &expr.Binary{
			Op:    "+",
			Left:  &expr.Ref{Base: expr.RegOfN(28), Def: 17},
			Right: &expr.IntConst{Value: 16},
		},
	}
	lookup := func(id expr.StmtID) (stmt.Statement, bool) {
		if id == 17 {
			return call, true
		}
		return nil, false
	}

	table := NewProvenTable()
	table.Prove("proven_callee", expr.RegOfN(28), offsetProven(4))

	got := ToThis(target, lookup, table).(*stmt.Assign)
	want := &expr.Binary{Op: "+", Left: &expr.Ref{Base: expr.RegOfN(28), Def: 15}, Right: &expr.IntConst{Value: 20}}
	assert.True(t, expr.Equals(want, got.Rhs), "got %s", got.Rhs.String())

	// running bypass again must leave the result unchanged (idempotence).
	again := ToThis(got, lookup, table).(*stmt.Assign)
	assert.True(t, expr.Equals(got.Rhs, again.Rhs))
}

func TestBypassRefSkipsNonCallDefinitions(t *testing.T) {
	def := &stmt.Assign{Base: stmt.Base{Id: 5}, Lhs: expr.RegOfN(1), Rhs: &expr.IntConst{Value: 9}}
	ref := &expr.Ref{Base: expr.RegOfN(1), Def: 5}
	lookup := func(id expr.StmtID) (stmt.Statement, bool) {
		if id == 5 {
			return def, true
		}
		return nil, false
	}
	table := NewProvenTable()

	out, changed := BypassRef(ref, lookup, table)
	assert.False(t, changed)
	assert.Same(t, ref, out.(*expr.Ref))
}

func TestBypassRefSkipsUnprovenCallee(t *testing.T) {
	call := &stmt.CallStatement{Base: stmt.Base{Id: 17}, Callee: "unknown_fn", DefCollector: stmt.NewLocSet()}
	ref := &expr.Ref{Base: expr.RegOfN(28), Def: 17}
	lookup := func(id expr.StmtID) (stmt.Statement, bool) {
		if id == 17 {
			return call, true
		}
		return nil, false
	}
	table := NewProvenTable()
	table.Prove("proven_callee", expr.RegOfN(28), offsetProven(4))

	_, changed := BypassRef(ref, lookup, table)
	assert.False(t, changed)
}

func TestToThisLeavesLhsUntouched(t *testing.T) {
	defCollector := stmt.NewLocSet()
	defCollector.Add(&expr.Ref{Base: expr.RegOfN(28), Def: 15})
	call := &stmt.CallStatement{Base: stmt.Base{Id: 17}, Callee: "proven_callee", DefCollector: defCollector}
	// lhs itself is a plain location, not a reference, so there is
	// nothing to bypass there — this asserts it survives unchanged.
	target := &stmt.Assign{
		Base: stmt.Base{Id: 19},
		Lhs:  expr.RegOfN(28),
		Rhs:  &expr.Ref{Base: expr.RegOfN(28), Def: 17},
	}
	lookup := func(id expr.StmtID) (stmt.Statement, bool) {
		if id == 17 {
			return call, true
		}
		return nil, false
	}
	table := NewProvenTable()
	table.Prove("proven_callee", expr.RegOfN(28), offsetProven(4))

	got := ToThis(target, lookup, table).(*stmt.Assign)
	require.IsType(t, &expr.Location{}, got.Lhs)
	assert.Equal(t, "r28", got.Lhs.String())
}
