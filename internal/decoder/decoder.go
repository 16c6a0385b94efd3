// Package decoder defines the external collaborators the core consumes
// but does not implement (§1, §6): a machine-code decoder, an RTL
// dictionary, and a pluggable type oracle. Concrete ISA decoders,
// binary loaders and SSL-grammar readers live outside this module; this
// package only names the interfaces and ships a deterministic fake used
// throughout the test suite, grounded on the teacher's convention of a
// hand-built test context standing in for a real upstream phase
// (internal/semantic's NewContextRegistry/test_helpers.go in the
// retrieved corpus).
package decoder

import (
	"decompir/internal/expr"
	"decompir/internal/stmt"
)

// Instruction is a decoded machine instruction.
type Instruction struct {
	Addr          uint64
	Size          int
	ID            int
	Mnemonic      string
	OperandString string
	Operands      []string
	Template      string // uppercase, dots removed, as handed to the RTL dictionary
}

// RTL is a register-transfer list: the sequence of statements realizing
// one instruction, tagged with the instruction's address.
type RTL struct {
	Addr       uint64
	Statements []stmt.Statement
}

// ByteSource supplies raw bytes for disassembly.
type ByteSource interface {
	ReadByte(addr uint64) (byte, bool)
}

// Decoder disassembles and lifts machine instructions. A decoder
// reports failure by returning false; the core then stops exploring
// along that path and marks the block incomplete (§7).
type Decoder interface {
	Disassemble(pc uint64, src ByteSource) (Instruction, bool)
	Lift(insn Instruction) ([]RTL, bool)
}

// RTLDictionary maps a decoded instruction's template name to its RTL.
// A nonexistent template yields (RTL{}, false) — "instruction not
// implemented" (§6).
type RTLDictionary interface {
	Lookup(template string, addr uint64, operands []string) (RTL, bool)
}

// Type is the minimal surface the core needs from a type system it does
// not otherwise implement.
type Type interface {
	String() string
}

// TypeOracle answers "what is the current best type for this
// expression" queries; type analysis proper is out of scope (§1).
type TypeOracle interface {
	TypeOf(e expr.Expr) (Type, bool)
}
