package program

import (
	"sync/atomic"

	"decompir/internal/expr"
)

// IDGen mints statement identities for an entire program: increment-
// only, never recycled, safe for concurrent use by the procedure
// worker pool (§5, §9's de-globalized counter).
type IDGen struct {
	counter atomic.Uint64
}

// NewIDGen returns a generator whose first Next() call returns 1 (0 is
// reserved as expr.Implicit).
func NewIDGen() *IDGen { return &IDGen{} }

// Next returns the next fresh statement identity.
func (g *IDGen) Next() expr.StmtID {
	return expr.StmtID(g.counter.Add(1))
}
