// Package frag implements the per-procedure fragment graph (C4): an
// ordered set of fragments derived one-for-one from the low-level CFG
// (internal/cfg), each owning the RTLs — and hence the statements —
// that fall inside its address range, plus the phi-set operations the
// SSA engine (internal/ssa) builds on top.
package frag

import (
	"fmt"
	"sort"

	"decompir/internal/cfg"
	"decompir/internal/decoder"
	"decompir/internal/stmt"
)

// Fragment is a maximal straight-line region of statements ending in a
// control transfer — the SSA unit. Phis are kept separately from the
// ordinary RTL statements since they conceptually sit at the fragment
// head with no instruction address of their own.
type Fragment struct {
	Low  uint64
	Proc uint64

	Phis []*stmt.PhiAssign
	RTLs []decoder.RTL

	Successors   []*Fragment
	Predecessors []*Fragment
	IsEntry      bool
}

// Statements returns every statement owned by the fragment, phis
// first, in fragment order.
func (f *Fragment) Statements() []stmt.Statement {
	out := make([]stmt.Statement, 0, len(f.Phis)+len(f.RTLs))
	for _, p := range f.Phis {
		out = append(out, p)
	}
	for _, rtl := range f.RTLs {
		out = append(out, rtl.Statements...)
	}
	return out
}

// PhiFor returns the phi already placed for the renameable expression
// key (its canonical String form), if any.
func (f *Fragment) PhiFor(key string) (*stmt.PhiAssign, bool) {
	for _, p := range f.Phis {
		if p.Lhs.String() == key {
			return p, true
		}
	}
	return nil, false
}

// AddPhi appends a new phi to the fragment head. Callers are expected
// to have already checked PhiFor to avoid placing a duplicate.
func (f *Fragment) AddPhi(p *stmt.PhiAssign) {
	f.Phis = append(f.Phis, p)
}

// Graph is a procedure's fragment graph: an ordered set of fragments
// with an entry marker.
type Graph struct {
	fragments []*Fragment
	byLow     map[uint64]*Fragment
	entry     *Fragment
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{byLow: make(map[uint64]*Fragment)}
}

// Add appends f to the graph's fragment order.
func (g *Graph) Add(f *Fragment) {
	g.fragments = append(g.fragments, f)
	g.byLow[f.Low] = f
}

// SetEntry marks f as the procedure's entry fragment.
func (g *Graph) SetEntry(f *Fragment) {
	if g.entry != nil {
		g.entry.IsEntry = false
	}
	f.IsEntry = true
	g.entry = f
}

// Entry returns the procedure's entry fragment, or nil if none has
// been set.
func (g *Graph) Entry() *Fragment { return g.entry }

// Fragments returns the graph's fragments in insertion order.
func (g *Graph) Fragments() []*Fragment { return g.fragments }

// ByLow looks up the fragment starting at addr.
func (g *Graph) ByLow(addr uint64) (*Fragment, bool) {
	f, ok := g.byLow[addr]
	return f, ok
}

// AddEdge wires from -> to, mirroring both sides and skipping
// duplicates.
func (g *Graph) AddEdge(from, to *Fragment) {
	for _, s := range from.Successors {
		if s == to {
			return
		}
	}
	from.Successors = append(from.Successors, to)
	to.Predecessors = append(to.Predecessors, from)
}

// BuildFromBlocks derives one fragment per block of cg, preserving its
// edge structure exactly, and populates each fragment's RTLs by
// looking up every instruction's address in rtls — the lifted
// register-transfer lists the decoder produced while cg was being
// built. It fails if any instruction has no corresponding entry,
// which indicates the decoder and the CFG builder disagree about what
// was decoded.
func BuildFromBlocks(cg *cfg.Graph, entryAddr uint64, rtls map[uint64]decoder.RTL) (*Graph, error) {
	// cg.Blocks() ranges a map and is documented as unordered; walk
	// blocks by address so fragment order — and hence every statement
	// id assignStatementIDs later mints, and Print's fragment order —
	// is deterministic across runs, the way Boomerang's BB walk is
	// address-ordered.
	blocks := cg.Blocks()
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Low < blocks[j].Low })

	g := New()
	for _, b := range blocks {
		f := &Fragment{Low: b.Low, Proc: b.Proc}
		for _, insn := range b.Instructions {
			rtl, ok := rtls[insn.Addr]
			if !ok {
				return nil, fmt.Errorf("frag: no lifted RTL for instruction at 0x%x", insn.Addr)
			}
			f.RTLs = append(f.RTLs, rtl)
		}
		g.Add(f)
	}

	for _, b := range blocks {
		from, _ := g.ByLow(b.Low)
		for _, succ := range b.Successors {
			to, ok := g.ByLow(succ.Low)
			if !ok {
				return nil, fmt.Errorf("frag: successor of 0x%x not found in fragment graph", b.Low)
			}
			g.AddEdge(from, to)
		}
	}

	entry, ok := g.ByLow(entryAddr)
	if !ok {
		return nil, fmt.Errorf("frag: entry address 0x%x has no fragment", entryAddr)
	}
	g.SetEntry(entry)
	return g, nil
}
