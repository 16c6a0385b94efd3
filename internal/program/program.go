// Package program is the top-level container and pass orchestrator
// (§5, §9): it owns the process-wide statement-identity counter,
// assembles procedures from a low-level CFG and lifted RTLs, and runs
// the fixed pass order — statement-init, dominators (folded into SSA
// construction together with call-define-update and block-var-rename),
// propagation, bypass, simplify — to a fixed point per procedure.
package program

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"decompir/internal/bypass"
	"decompir/internal/cfg"
	"decompir/internal/decoder"
	"decompir/internal/diag"
	"decompir/internal/expr"
	"decompir/internal/frag"
	"decompir/internal/obslog"
	"decompir/internal/propagate"
	"decompir/internal/settings"
	"decompir/internal/ssa"
	"decompir/internal/stmt"
)

// Limits bounds a procedure's propagation+bypass fixed-point loop and
// selects strict vs. tolerant handling of simplification-assertion
// violations (§7, design note (b)).
type Limits struct {
	// MaxIterations caps the outer propagation/bypass loop; a pass
	// that still changes something at the cap is reported, not
	// silently dropped.
	MaxIterations int
	// Strict panics on a simplification-assertion violation (debug
	// configuration) instead of tolerating and reporting it (release
	// configuration).
	Strict bool
	// PropMaxDepth is propagation's destination-count depth gate
	// (§4.5).
	PropMaxDepth int
}

// DefaultLimits returns the tuning defaults named in the source: ten
// iterations, a depth gate of five, non-strict.
func DefaultLimits() Limits {
	return Limits{MaxIterations: 10, Strict: false, PropMaxDepth: 5}
}

// Procedure is one procedure's fragment graph plus the per-procedure
// SSA state and proven-callee table bypassing consults.
type Procedure struct {
	ID     uint64
	Name   string
	Graph  *frag.Graph
	SSA    *ssa.SSA
	Proven *bypass.ProvenTable
}

// NewProcedure wraps an already-built fragment graph.
func NewProcedure(id uint64, name string, g *frag.Graph) *Procedure {
	return &Procedure{ID: id, Name: name, Graph: g, Proven: bypass.NewProvenTable()}
}

// ValidateCFG reports a low-level CFG's integrity as diagnostics,
// grounded on cfg.Graph.IsWellFormed.
func ValidateCFG(name string, cg *cfg.Graph) []diag.Diagnostic {
	if err := cg.IsWellFormed(); err != nil {
		return []diag.Diagnostic{{
			Level:   diag.Error,
			Code:    diag.ErrIncompleteBlock,
			Message: err.Error(),
			Position: &diag.Position{
				ProcName: name,
			},
		}}
	}
	return nil
}

// BuildProcedure validates cg, derives its fragment graph, and wraps
// it as a Procedure. Returns any CFG-integrity diagnostics alongside a
// hard error when the fragment graph itself could not be built (a
// decoder/CFG disagreement, §1's external-collaborator contract).
func BuildProcedure(id uint64, name string, cg *cfg.Graph, entryAddr uint64, rtls map[uint64]decoder.RTL) (*Procedure, []diag.Diagnostic, error) {
	diags := ValidateCFG(name, cg)
	g, err := frag.BuildFromBlocks(cg, entryAddr, rtls)
	if err != nil {
		return nil, diags, fmt.Errorf("program: build procedure %s: %w", name, err)
	}
	return NewProcedure(id, name, g), diags, nil
}

// Program is the top-level container: process-wide id counter,
// settings, and the procedures driven through RunPasses/RunAll.
type Program struct {
	Settings      *settings.Settings
	Limits        Limits
	RenameOptions ssa.RenameOptions
	TypeOracle    decoder.TypeOracle

	Procedures  []*Procedure
	Diagnostics []diag.Diagnostic

	idGen *IDGen
}

// New returns a Program with default limits and a fresh id generator.
// A nil settings value falls back to settings.New()'s defaults.
func New(s *settings.Settings) *Program {
	if s == nil {
		s = settings.New()
	}
	return &Program{Settings: s, Limits: DefaultLimits(), idGen: NewIDGen()}
}

// IDGen returns the program's statement-identity counter, shared by
// every procedure's SSA construction.
func (p *Program) IDGen() *IDGen { return p.idGen }

// AddProcedure registers proc with the program.
func (p *Program) AddProcedure(proc *Procedure) { p.Procedures = append(p.Procedures, proc) }

// RunAll runs RunPasses over every registered procedure. Procedures
// run concurrently (§5's one concurrency concession: parallelism
// across procedures, never within one) since they share no mutable
// state beyond the process-wide IDGen.
func (p *Program) RunAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	results := make([][]diag.Diagnostic, len(p.Procedures))
	for i, proc := range p.Procedures {
		i, proc := i, proc
		g.Go(func() error {
			results[i] = p.RunPasses(gctx, proc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, ds := range results {
		p.Diagnostics = append(p.Diagnostics, ds...)
	}
	return nil
}

// RunPasses executes the fixed pass order over proc: statement-init,
// then SSA construction (which folds together dominators,
// call-define-update, and block-var-rename per §4.4), then an outer
// propagation/bypass/simplify loop iterated to a fixed point or
// Limits.MaxIterations. A CFG/SSA integrity error aborts only this
// procedure; cancellation is checked between outer iterations (§5's
// coarse-grained cancellation).
func (p *Program) RunPasses(ctx context.Context, proc *Procedure) []diag.Diagnostic {
	var diags []diag.Diagnostic

	assignStatementIDs(proc.Graph, p.idGen)

	canRename := ssa.DefaultCanRename(p.RenameOptions)
	built, err := ssa.Build(proc.Graph, canRename, p.Settings.AssumeABI, p.idGen.Next)
	if err != nil {
		return append(diags, ssaErrorDiagnostic(proc.Name, err))
	}
	proc.SSA = built
	diags = append(diags, checkPhiAssertions(proc, p.Limits.Strict)...)

	limits := p.Limits
	if limits.MaxIterations <= 0 {
		limits = DefaultLimits()
	}

	for i := 0; i < limits.MaxIterations; i++ {
		if ctx != nil && ctx.Err() != nil {
			return diags
		}

		lookup := buildLookup(proc.Graph)
		destCounts := computeDestCounts(proc.Graph, true)
		changed := false

		for _, f := range proc.Graph.Fragments() {
			for ri := range f.RTLs {
				for si, st := range f.RTLs[ri].Statements {
					rewritten := propagate.ToThis(st, lookup, p.isArrayType, destCounts, limits.PropMaxDepth, true, propagate.DefaultLimits())
					rewritten = propagate.LowerFlagsToThis(rewritten, lookup)
					rewritten = bypass.ToThis(rewritten, lookup, proc.Proven)
					if stmt.Body(rewritten) != stmt.Body(st) {
						changed = true
						f.RTLs[ri].Statements[si] = rewritten
					}
				}
			}
		}

		obslog.Debugw("program: propagation iteration", "proc", proc.Name, "iteration", i, "changed", changed)
		if !changed {
			break
		}
		if i == limits.MaxIterations-1 {
			obslog.Warnw("program: propagation cap exceeded", "proc", proc.Name, "cap", limits.MaxIterations)
			diags = append(diags, diag.Diagnostic{
				Level:   diag.Warning,
				Code:    diag.WarnPropagationCapExceeded,
				Message: fmt.Sprintf("%s: %s", proc.Name, diag.Description(diag.WarnPropagationCapExceeded)),
			})
		}
	}

	return diags
}

// isArrayType adapts the program's optional TypeOracle to
// stmt.IsArrayType; absent an oracle, nothing is considered array-typed.
func (p *Program) isArrayType(e expr.Expr) bool {
	if p.TypeOracle == nil {
		return false
	}
	t, ok := p.TypeOracle.TypeOf(e)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(t.String()), "array")
}

// checkPhiAssertions implements §7's "phi must have ≥1 case"
// simplification assertion: a Strict program panics on violation, a
// non-strict one reports it as a diagnostic and continues.
func checkPhiAssertions(proc *Procedure, strict bool) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, f := range proc.Graph.Fragments() {
		for _, ph := range f.Phis {
			if len(ph.Cases) > 0 {
				continue
			}
			msg := fmt.Sprintf("%s: phi for %s in fragment 0x%x has no cases", proc.Name, ph.Lhs.String(), f.Low)
			if strict {
				panic("program: " + msg)
			}
			diags = append(diags, diag.Diagnostic{
				Level:    diag.Warning,
				Code:     diag.WarnPhiMissingCases,
				Message:  msg,
				Position: &diag.Position{ProcName: proc.Name, Address: f.Low},
			})
		}
	}
	return diags
}

// ssaErrorDiagnostic converts an SSA-construction failure (always a
// *ssa.IntegrityError) into a fatal-per-procedure diagnostic.
func ssaErrorDiagnostic(procName string, err error) diag.Diagnostic {
	code := diag.ErrUnreachableFragment
	if strings.Contains(err.Error(), "not indexed") {
		code = diag.ErrUnindexedPredecessor
	}
	return diag.Diagnostic{
		Level:    diag.Error,
		Code:     code,
		Message:  fmt.Sprintf("%s: %s", procName, err.Error()),
		Position: &diag.Position{ProcName: procName},
	}
}
