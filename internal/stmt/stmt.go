// Package stmt implements the statement algebra (C2): the IR statement
// kinds built over the expr algebra, with identity-based equality and
// ordering, and the shared predicates propagation relies on
// (IsNullStatement, CanPropagateToExp).
//
// Per-kind behavior (Clone, Print, Search, GetDefinitions, AddUsedLocs,
// Accept) is implemented as exhaustive type switches over the closed
// Statement set, not as per-type virtual methods: this mirrors the
// "tagged union, not virtual dispatch" idiom the rest of the core uses
// for expr.Expr.
package stmt

import "decompir/internal/expr"

// ID is a statement identity: unique and monotonically increasing
// within a program, minted by a process-wide counter owned by the
// top-level program container (see internal/program).
type ID = expr.StmtID

// Statement is the closed set of IR statement kinds. Equality and
// ordering are defined on ID, never on content.
type Statement interface {
	isStatement()
	ID() ID
	FragID() uint64
	ProcID() uint64
}

// Base carries the identity and ownership fields common to every kind.
type Base struct {
	Id     ID
	Frag   uint64
	Proc   uint64
}

func (b Base) ID() ID         { return b.Id }
func (b Base) FragID() uint64 { return b.Frag }
func (b Base) ProcID() uint64 { return b.Proc }

// Assign is an ordinary definition: lhs := rhs.
type Assign struct {
	Base
	Lhs, Rhs expr.Expr
	// Ty is the optional type annotation from the RTL template (e.g.
	// "*32*"); empty when untyped. ArrayType additionally records
	// whether the type oracle has identified Rhs as array-typed, which
	// gates CanPropagateToExp.
	Ty        string
	ArrayType bool
}

func (*Assign) isStatement() {}

// GetLeft and GetRight are the accessors named explicitly in §4.2.
func (a *Assign) GetLeft() expr.Expr  { return a.Lhs }
func (a *Assign) GetRight() expr.Expr { return a.Rhs }

// PhiCase is one predecessor-fragment arm of a PhiAssign.
type PhiCase struct {
	PredFragID uint64
	Def        ID
	BaseExpr   expr.Expr
}

// PhiAssign is `lhs := phi({predecessor-fragment -> defining statement})`.
type PhiAssign struct {
	Base
	Lhs   expr.Expr
	Cases []PhiCase
}

func (*PhiAssign) isStatement() {}

// ImplicitAssign models "value on entry": lhs := -.
type ImplicitAssign struct {
	Base
	Lhs expr.Expr
}

func (*ImplicitAssign) isStatement() {}

// BoolAssign is `lhs := (cond ? 1 : 0)`.
type BoolAssign struct {
	Base
	Lhs        expr.Expr
	BranchType string
	Cond       expr.Expr
	IsFloat    bool
}

func (*BoolAssign) isStatement() {}

// GotoStatement is an unconditional jump to another fragment.
type GotoStatement struct {
	Base
	DestFragID uint64
}

func (*GotoStatement) isStatement() {}

// BranchStatement is a conditional jump.
type BranchStatement struct {
	Base
	DestFragID uint64
	Cond       expr.Expr
}

func (*BranchStatement) isStatement() {}

// SwitchInfo describes an n-way dispatch table for a CaseStatement.
type SwitchInfo struct {
	Values  []int64
	Targets []uint64 // FragIDs, parallel to Values
}

// CaseStatement is an n-way dispatch.
type CaseStatement struct {
	Base
	DestFragID uint64
	Switch     *SwitchInfo
}

func (*CaseStatement) isStatement() {}

// ArgAssign binds a callee parameter slot (Lhs) to a caller-side actual
// argument expression (Rhs).
type ArgAssign struct {
	Lhs, Rhs expr.Expr
}

// CallStatement models a call: arguments passed in, locations defined
// by the call's effects, and the reaching/live collector sets dataflow
// fills in.
type CallStatement struct {
	Base
	DestFragID   uint64 // 0 when the callee is not a known fragment (external call)
	Callee       string
	Arguments    []ArgAssign
	Defines      []expr.Expr
	// ABIDefines is the conservative defines set used when the
	// settings facade's AssumeABI is false (§4.3, §6).
	ABIDefines   []expr.Expr
	Signature    string
	UseCollector *LocSet
	DefCollector *LocSet
	// CalleeReturn holds the id of the callee's return statement, a
	// non-owning cross-procedure reference that must be re-resolved
	// through the program's statement table rather than dereferenced
	// directly; nil when the callee is unknown or childless.
	CalleeReturn *ID
}

func (*CallStatement) isStatement() {}

// Analyzed reports whether the callee of this call has been analyzed:
// a call whose callee is unknown to the program is "childless" and, per
// §4.4, is assumed to define every renameable variable.
func (c *CallStatement) Analyzed() bool { return c.DestFragID != 0 }

// ReturnStatement ends a procedure.
type ReturnStatement struct {
	Base
	Modifieds []expr.Expr
	Returns   []expr.Expr
}

func (*ReturnStatement) isStatement() {}

// Less orders two statements by identity, as required by §3.
func Less(a, b Statement) bool { return a.ID() < b.ID() }

// Equal compares two statements by identity, as required by §3.
func Equal(a, b Statement) bool { return a.ID() == b.ID() }
