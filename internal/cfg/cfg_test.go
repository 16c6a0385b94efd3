package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"decompir/internal/decoder"
)

func insn(addr uint64, size int) decoder.Instruction {
	return decoder.Instruction{Addr: addr, Size: size}
}

func TestCreateBBNewBlock(t *testing.T) {
	g := New()
	b := g.CreateBB(Oneway, []decoder.Instruction{insn(0x1000, 4), insn(0x1004, 4)})
	require.NotNil(t, b)
	assert.Equal(t, uint64(0x1000), b.Low)
	assert.Equal(t, uint64(0x1008), b.High)
	assert.True(t, b.Complete)
}

func TestCreateBBCompletesIncomplete(t *testing.T) {
	g := New()
	placeholder := g.CreateIncompleteBB(0x2000)
	assert.False(t, placeholder.Complete)

	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x2000, 4)})
	require.NotNil(t, b)
	assert.Same(t, placeholder, b)
	assert.True(t, b.Complete)
}

func TestCreateBBRejectsDuplicateComplete(t *testing.T) {
	g := New()
	g.CreateBB(Ret, []decoder.Instruction{insn(0x1000, 4)})
	again := g.CreateBB(Ret, []decoder.Instruction{insn(0x1000, 4)})
	assert.Nil(t, again)
}

// TestCreateBBOverlapTruncates covers scenario S6: decoding a block
// that runs past the start of an already-discovered neighbor
// truncates the new block and wires it as a Fall predecessor.
func TestCreateBBOverlapTruncates(t *testing.T) {
	g := New()
	next := g.CreateBB(Ret, []decoder.Instruction{insn(0x1010, 4)})
	require.NotNil(t, next)

	overrun := g.CreateBB(Oneway, []decoder.Instruction{
		insn(0x1000, 4), insn(0x1004, 4), insn(0x1008, 4), insn(0x100c, 8), // runs to 0x1014, past 0x1010
	})
	require.NotNil(t, overrun)

	assert.Equal(t, uint64(0x1010), overrun.High)
	assert.Len(t, overrun.Instructions, 3)
	assert.Equal(t, Fall, overrun.Type)
	require.Len(t, overrun.Successors, 1)
	assert.Same(t, next, overrun.Successors[0])
	assert.Contains(t, next.Predecessors, overrun)
}

func TestAddEdgeUpgradesOnewayToTwoway(t *testing.T) {
	g := New()
	a := g.CreateBB(Oneway, []decoder.Instruction{insn(0x1000, 4)})
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x2000, 4)})
	c := g.CreateBB(Ret, []decoder.Instruction{insn(0x3000, 4)})

	g.AddEdge(a, b)
	assert.Equal(t, Oneway, a.Type)
	g.AddEdge(a, c)
	assert.Equal(t, Twoway, a.Type)
	assert.Contains(t, a.Successors, b)
	assert.Contains(t, a.Successors, c)
	assert.Contains(t, b.Predecessors, a)
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	g := New()
	a := g.CreateBB(Oneway, []decoder.Instruction{insn(0x1000, 4)})
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x2000, 4)})
	g.AddEdge(a, b)
	g.AddEdge(a, b)
	assert.Len(t, a.Successors, 1)
	assert.Len(t, b.Predecessors, 1)
}

// TestSplitBB covers testable property 8: splitting a block at an
// instruction boundary yields a head and tail whose instruction
// streams partition the original exactly, with the tail taking over
// the head's original successors and the head becoming a Fall block
// with one edge to the tail.
func TestSplitBB(t *testing.T) {
	g := New()
	succ := g.CreateBB(Ret, []decoder.Instruction{insn(0x3000, 4)})
	b := g.CreateBB(Twoway, []decoder.Instruction{
		insn(0x1000, 4), insn(0x1004, 4), insn(0x1008, 4),
	})
	g.AddEdge(b, succ)
	orig := append([]decoder.Instruction(nil), b.Instructions...)

	tail := g.SplitBB(b, 0x1004, nil)
	require.NotSame(t, b, tail)

	assert.Equal(t, orig[:1], b.Instructions)
	assert.Equal(t, orig[1:], tail.Instructions)
	assert.Equal(t, uint64(0x1004), b.High)
	assert.Equal(t, Fall, b.Type)
	require.Len(t, b.Successors, 1)
	assert.Same(t, tail, b.Successors[0])

	assert.Contains(t, tail.Successors, succ)
	assert.Contains(t, succ.Predecessors, tail)
	assert.NotContains(t, succ.Predecessors, b)
}

func TestSplitBBFailsInsideInstruction(t *testing.T) {
	g := New()
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x1000, 4), insn(0x1004, 4)})
	same := g.SplitBB(b, 0x1002, nil)
	assert.Same(t, b, same)
	assert.Len(t, b.Instructions, 2)
}

func TestSplitBBFailsAtOwnStart(t *testing.T) {
	g := New()
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x1000, 4), insn(0x1004, 4)})
	same := g.SplitBB(b, 0x1000, nil)
	assert.Same(t, b, same)
}

func TestEnsureBBExistsSplitsMidBlock(t *testing.T) {
	g := New()
	b := g.CreateBB(Oneway, []decoder.Instruction{
		insn(0x1000, 4), insn(0x1004, 4), insn(0x1008, 4),
	})
	currBB := b

	split, rewritten := g.EnsureBBExists(0x1004, currBB)
	assert.True(t, split)
	assert.NotSame(t, currBB, rewritten)
	assert.Equal(t, uint64(0x1004), rewritten.Low)
}

func TestEnsureBBExistsCreatesIncompleteForUnknownAddr(t *testing.T) {
	g := New()
	split, rewritten := g.EnsureBBExists(0x9000, nil)
	assert.False(t, split)
	assert.Nil(t, rewritten)
	b, ok := g.Block(0x9000)
	require.True(t, ok)
	assert.False(t, b.Complete)
}

func TestEnsureBBExistsNoopWhenAlreadyBoundary(t *testing.T) {
	g := New()
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x1000, 4)})
	split, rewritten := g.EnsureBBExists(0x1000, b)
	assert.False(t, split)
	assert.Same(t, b, rewritten)
}

func TestIsWellFormedDetectsIncompleteBlock(t *testing.T) {
	g := New()
	g.CreateIncompleteBB(0x4000)
	err := g.IsWellFormed()
	require.Error(t, err)
	var ie *IntegrityError
	assert.ErrorAs(t, err, &ie)
}

func TestIsWellFormedAcceptsMirroredEdges(t *testing.T) {
	g := New()
	a := g.CreateBB(Oneway, []decoder.Instruction{insn(0x1000, 4)})
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x2000, 4)})
	g.AddEdge(a, b)
	assert.NoError(t, g.IsWellFormed())
}

func TestIsWellFormedRejectsCrossProcedureEdge(t *testing.T) {
	g := New()
	a := g.CreateBB(Oneway, []decoder.Instruction{insn(0x1000, 4)})
	b := g.CreateBB(Ret, []decoder.Instruction{insn(0x2000, 4)})
	a.Proc = 1
	b.Proc = 2
	g.AddEdge(a, b)
	err := g.IsWellFormed()
	require.Error(t, err)
}
