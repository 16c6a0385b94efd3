// Package ssa implements the per-procedure SSA engine (C5): dense
// fragment indexing over a depth-first spanning tree, Lengauer–Tarjan
// dominators, dominance-frontier computation, Cytron iterative phi
// placement and variant-2 renaming.
package ssa

import (
	"fmt"

	"decompir/internal/expr"
	"decompir/internal/frag"
	"decompir/internal/obslog"
)

// IntegrityError reports a structural defect that prevents the SSA
// engine from proceeding — almost always a CFG invariant violated
// upstream.
type IntegrityError struct {
	Reason string
}

func (e *IntegrityError) Error() string { return "ssa: " + e.Reason }

// SSA holds one procedure's SSA construction state. Every slice below
// is indexed by dfnum, the dense pre-order index assigned during
// fragment numbering; Vertex is the inverse map from dfnum back to the
// fragment.
type SSA struct {
	Graph *frag.Graph

	Vertex []*frag.Fragment
	Index  map[*frag.Fragment]int

	Parent   []int
	DFNum    []int // DFNum[i] == i; kept for naming fidelity with the spec's arrays
	Semi     []int
	Ancestor []int
	Best     []int
	IDom     []int
	SameDom  []int
	Bucket   [][]int
	DF       [][]int

	DefinedAt []map[string]bool
	DefSites  map[string][]int
	APhi      map[string][]int
	DefStmts  map[string]expr.Expr

	defAllSites []int

	canRename func(expr.Expr) bool
	assumeABI bool
	stacks    map[string][]expr.StmtID
}

// RenameOptions configures the renameability predicate used by Build.
type RenameOptions struct {
	// RenameLocalsAndParams gates memOf(x) renaming where x matches a
	// local-or-parameter pattern; requires escape analysis to have run.
	RenameLocalsAndParams bool
	// IsLocalOrParam reports whether e addresses a local or parameter,
	// as determined by escape analysis. Required when
	// RenameLocalsAndParams is true; ignored otherwise.
	IsLocalOrParam func(e expr.Expr) bool
}

// DefaultCanRename builds the renameability predicate described in
// §4.4: registers, temporaries, flags and locals are always
// renameable; memOf is renameable only under escape analysis; %pc and
// unclassified memory never are.
func DefaultCanRename(opts RenameOptions) func(expr.Expr) bool {
	return func(e expr.Expr) bool {
		switch v := e.(type) {
		case *expr.Terminal:
			return v != expr.PC && v != expr.Nil
		case *expr.Location:
			switch v.Kind {
			case expr.RegOf, expr.TempOf, expr.LocalOf:
				return true
			case expr.MemOf:
				if !opts.RenameLocalsAndParams || opts.IsLocalOrParam == nil {
					return false
				}
				return opts.IsLocalOrParam(v.Arg)
			default:
				return false
			}
		default:
			return false
		}
	}
}

// Build runs the full C4+C5 pipeline over g: fragment numbering,
// dominators, dominance frontiers, phi placement and renaming. newID
// mints fresh statement identities for the phis it inserts.
func Build(g *frag.Graph, canRename func(expr.Expr) bool, assumeABI bool, newID func() expr.StmtID) (*SSA, error) {
	s := &SSA{
		Graph:     g,
		canRename: canRename,
		assumeABI: assumeABI,
		DefSites:  make(map[string][]int),
		APhi:      make(map[string][]int),
		DefStmts:  make(map[string]expr.Expr),
		stacks:    make(map[string][]expr.StmtID),
	}
	if err := s.numberFragments(); err != nil {
		return nil, err
	}
	if err := s.computeDominators(); err != nil {
		return nil, err
	}
	obslog.Debugw("ssa: dominators computed", "fragments", len(s.Vertex))
	s.computeDominanceFrontiers()
	s.computeDefSites()
	s.placePhis(newID)
	obslog.Debugw("ssa: phis placed", "variables", len(s.APhi))

	children := s.domTreeChildren()
	if len(s.Vertex) > 0 {
		s.renameFragment(0, children)
	}
	return s, nil
}

func (s *SSA) numberFragments() error {
	entry := s.Graph.Entry()
	if entry == nil {
		return &IntegrityError{Reason: "fragment graph has no entry"}
	}
	s.Index = make(map[*frag.Fragment]int)
	visited := make(map[*frag.Fragment]bool)

	var dfs func(f *frag.Fragment, parent int)
	dfs = func(f *frag.Fragment, parent int) {
		if visited[f] {
			return
		}
		visited[f] = true
		idx := len(s.Vertex)
		s.Vertex = append(s.Vertex, f)
		s.Index[f] = idx
		s.Parent = append(s.Parent, parent)
		for _, succ := range f.Successors {
			dfs(succ, idx)
		}
	}
	dfs(entry, -1)

	n := len(s.Vertex)
	s.DFNum = make([]int, n)
	s.Semi = make([]int, n)
	s.Ancestor = make([]int, n)
	s.Best = make([]int, n)
	s.IDom = make([]int, n)
	s.SameDom = make([]int, n)
	s.Bucket = make([][]int, n)
	s.DF = make([][]int, n)
	s.DefinedAt = make([]map[string]bool, n)
	for i := 0; i < n; i++ {
		s.DFNum[i] = i
		s.Semi[i] = i
		s.Ancestor[i] = -1
		s.Best[i] = i
		s.SameDom[i] = -1
		s.DefinedAt[i] = make(map[string]bool)
	}
	return nil
}

func (s *SSA) link(parent, child int) { s.Ancestor[child] = parent }

func (s *SSA) eval(v int) int {
	if s.Ancestor[v] == -1 {
		return v
	}
	s.compress(v)
	return s.Best[v]
}

func (s *SSA) compress(v int) {
	a := s.Ancestor[v]
	if s.Ancestor[a] == -1 {
		return
	}
	s.compress(a)
	if s.Semi[s.Best[a]] < s.Semi[s.Best[v]] {
		s.Best[v] = s.Best[a]
	}
	s.Ancestor[v] = s.Ancestor[a]
}

// computeDominators runs Lengauer–Tarjan over the DFS tree built by
// numberFragments, per §4.4.
func (s *SSA) computeDominators() error {
	n := len(s.Vertex)
	for i := n - 1; i >= 1; i-- {
		nFrag := s.Vertex[i]
		p := s.Parent[i]
		best := p
		for _, predFrag := range nFrag.Predecessors {
			v, ok := s.Index[predFrag]
			if !ok {
				return &IntegrityError{Reason: fmt.Sprintf("predecessor fragment at 0x%x is not indexed", predFrag.Low)}
			}
			var candidate int
			if v <= i {
				candidate = v
			} else {
				candidate = s.Semi[s.eval(v)]
			}
			if s.Semi[candidate] < s.Semi[best] {
				best = candidate
			}
		}
		s.Semi[i] = best
		s.Bucket[best] = append(s.Bucket[best], i)
		s.link(p, i)

		for _, v := range s.Bucket[p] {
			y := s.eval(v)
			if s.Semi[y] == s.Semi[v] {
				s.IDom[v] = p
			} else {
				s.SameDom[v] = y
			}
		}
		s.Bucket[p] = nil
	}

	for i := 1; i < n; i++ {
		if s.SameDom[i] != -1 {
			s.IDom[i] = s.IDom[s.SameDom[i]]
		}
	}
	if n > 0 {
		s.IDom[0] = 0
	}
	return nil
}

func (s *SSA) domTreeChildren() [][]int {
	n := len(s.Vertex)
	children := make([][]int, n)
	for i := 1; i < n; i++ {
		children[s.IDom[i]] = append(children[s.IDom[i]], i)
	}
	return children
}

// dominates reports whether n dominates w, walking the dominator tree
// upward from w.
func (s *SSA) dominates(n, w int) bool {
	cur := w
	for {
		if cur == n {
			return true
		}
		if cur == 0 {
			return false
		}
		cur = s.IDom[cur]
	}
}

// computeDominanceFrontiers implements §4.4's DF formula via a
// post-order walk of the dominator tree.
func (s *SSA) computeDominanceFrontiers() {
	children := s.domTreeChildren()
	visited := make([]bool, len(s.Vertex))

	var visit func(n int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, c := range children[n] {
			visit(c)
		}
		set := make(map[int]bool)
		for _, succFrag := range s.Vertex[n].Successors {
			y := s.Index[succFrag]
			if s.IDom[y] != n {
				set[y] = true
			}
		}
		for _, c := range children[n] {
			for _, w := range s.DF[c] {
				if !s.dominates(n, w) {
					set[w] = true
				}
			}
		}
		for y := range set {
			s.DF[n] = append(s.DF[n], y)
		}
	}
	if len(s.Vertex) > 0 {
		visit(0)
	}
}
