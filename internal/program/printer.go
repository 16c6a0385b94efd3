package program

import (
	"fmt"
	"strings"

	"decompir/internal/frag"
	"decompir/internal/stmt"
)

// addrColumnWidth is len("0x00000000") — phis have no address of
// their own and are printed with a blank column of this width so
// ordinary and phi statements line up (§6's fixture format).
const addrColumnWidth = 10

// PrintFragment renders every phi and RTL statement owned by f, one
// per line, each prefixed with its "0x%08x" instruction address (blank
// for phis).
func PrintFragment(f *frag.Fragment) string {
	var b strings.Builder
	for _, p := range f.Phis {
		fmt.Fprintf(&b, "%*s %s\n", addrColumnWidth, "", stmt.Print(p))
	}
	for _, rtl := range f.RTLs {
		for _, st := range rtl.Statements {
			fmt.Fprintf(&b, "0x%08x %s\n", rtl.Addr, stmt.Print(st))
		}
	}
	return b.String()
}

// Print renders every fragment of proc's graph, in fragment order.
func Print(proc *Procedure) string {
	var b strings.Builder
	for _, f := range proc.Graph.Fragments() {
		b.WriteString(PrintFragment(f))
	}
	return b.String()
}
