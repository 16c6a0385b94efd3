package decoder

import "decompir/internal/expr"

// SimpleType is a minimal named Type for tests and the fake type
// oracle below.
type SimpleType string

func (t SimpleType) String() string { return string(t) }

// FakeByteSource is a ByteSource backed by an in-memory byte slice
// starting at Base.
type FakeByteSource struct {
	Base  uint64
	Bytes []byte
}

func (f *FakeByteSource) ReadByte(addr uint64) (byte, bool) {
	if addr < f.Base || addr-f.Base >= uint64(len(f.Bytes)) {
		return 0, false
	}
	return f.Bytes[addr-f.Base], true
}

// FakeDecoder is a deterministic, table-driven Decoder and
// RTLDictionary used throughout the test suite: a fixed map from
// address to the instruction/RTL a real decoder+template lookup would
// have produced.
type FakeDecoder struct {
	ByAddr map[uint64]Instruction
	RTLs   map[uint64]RTL
}

// NewFakeDecoder returns an empty FakeDecoder ready for Add calls.
func NewFakeDecoder() *FakeDecoder {
	return &FakeDecoder{ByAddr: make(map[uint64]Instruction), RTLs: make(map[uint64]RTL)}
}

// Add registers one instruction and its RTL at insn.Addr.
func (f *FakeDecoder) Add(insn Instruction, rtl RTL) *FakeDecoder {
	f.ByAddr[insn.Addr] = insn
	f.RTLs[insn.Addr] = rtl
	return f
}

func (f *FakeDecoder) Disassemble(pc uint64, _ ByteSource) (Instruction, bool) {
	insn, ok := f.ByAddr[pc]
	return insn, ok
}

func (f *FakeDecoder) Lift(insn Instruction) ([]RTL, bool) {
	rtl, ok := f.RTLs[insn.Addr]
	if !ok {
		return nil, false
	}
	return []RTL{rtl}, true
}

func (f *FakeDecoder) Lookup(template string, addr uint64, _ []string) (RTL, bool) {
	rtl, ok := f.RTLs[addr]
	if !ok || template == "" {
		return RTL{}, false
	}
	return rtl, true
}

// FakeTypeOracle answers TypeOf from a fixed, caller-populated table
// keyed by an expression's canonical printed form.
type FakeTypeOracle struct {
	byKey map[string]Type
}

func NewFakeTypeOracle() *FakeTypeOracle {
	return &FakeTypeOracle{byKey: make(map[string]Type)}
}

func (o *FakeTypeOracle) Set(e expr.Expr, t Type) { o.byKey[e.String()] = t }

func (o *FakeTypeOracle) TypeOf(e expr.Expr) (Type, bool) {
	t, ok := o.byKey[e.String()]
	return t, ok
}
