package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"decompir/internal/expr"
)

func TestFakeDecoderDisassembleMiss(t *testing.T) {
	d := NewFakeDecoder()
	_, ok := d.Disassemble(0x1000, &FakeByteSource{})
	assert.False(t, ok)
}

func TestFakeDecoderRoundTrip(t *testing.T) {
	d := NewFakeDecoder()
	insn := Instruction{Addr: 0x1000, Size: 4, Template: "ADD"}
	d.Add(insn, RTL{Addr: 0x1000})

	got, ok := d.Disassemble(0x1000, nil)
	assert.True(t, ok)
	assert.Equal(t, insn, got)

	rtls, ok := d.Lift(got)
	assert.True(t, ok)
	assert.Len(t, rtls, 1)

	_, ok = d.Lookup("ADD", 0x1000, nil)
	assert.True(t, ok)
	_, ok = d.Lookup("", 0x1000, nil)
	assert.False(t, ok, "empty template name means unimplemented instruction")
}

func TestFakeTypeOracle(t *testing.T) {
	o := NewFakeTypeOracle()
	r0 := expr.RegOfN(0)
	o.Set(r0, SimpleType("U32"))
	ty, ok := o.TypeOf(r0)
	assert.True(t, ok)
	assert.Equal(t, "U32", ty.String())
}
