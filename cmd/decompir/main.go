// SPDX-License-Identifier: Apache-2.0

// Command decompir drives the decoder → CFG → SSA → propagate → bypass
// → print pipeline over a fixture-backed procedure and prints the
// resulting fragments, the way a real build would drive it over a
// disassembled binary.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"decompir/internal/cfg"
	"decompir/internal/decoder"
	"decompir/internal/diag"
	"decompir/internal/expr"
	"decompir/internal/frag"
	"decompir/internal/program"
	"decompir/internal/settings"
	"decompir/internal/stmt"
)

func main() {
	var (
		sslFile    = pflag.String("ssl-file", "", "instruction-set signature library path")
		workingDir = pflag.String("working-dir", "", "base directory for resolving relative paths")
		dataDir    = pflag.String("data-dir", "", "directory holding proven-callee tables and signature fragments")
		debugDec   = pflag.Bool("debug-decoder", false, "trace per-instruction decoding")
		assumeABI  = pflag.Bool("assume-abi", true, "assume calls preserve callee-saved registers (use a call's declared defines, not its conservative ABI defines)")
		settingsIn = pflag.String("settings-file", "", "load settings from this YAML file instead of flags")
	)
	pflag.Parse()

	s, err := loadSettings(*settingsIn, *sslFile, *workingDir, *dataDir, *debugDec, *assumeABI)
	if err != nil {
		color.Red("decompir: %s", err)
		os.Exit(1)
	}

	proc, err := buildFixtureProcedure(s)
	if err != nil {
		color.Red("decompir: %s", err)
		os.Exit(1)
	}

	p := program.New(s)
	p.AddProcedure(proc)
	diags := p.RunPasses(context.Background(), proc)

	fmt.Print(program.Print(proc))

	if len(diags) > 0 {
		reporter := diag.NewReporter("decompir")
		fmt.Fprint(os.Stderr, reporter.FormatAll(diags))
	}

	for _, d := range diags {
		if d.Level == diag.Error {
			os.Exit(1)
		}
	}
	color.Green("decompir: analyzed procedure %q (%d fragment(s))", proc.Name, len(proc.Graph.Fragments()))
}

func loadSettings(path, sslFile, workingDir, dataDir string, debugDecoder, assumeABI bool) (*settings.Settings, error) {
	if path != "" {
		return settings.Load(path)
	}
	return settings.New(
		settings.WithSSLFileName(sslFile),
		settings.WithWorkingDirectory(workingDir),
		settings.WithDataDirectory(dataDir),
		settings.WithDebugDecoder(debugDecoder),
		settings.WithAssumeABI(assumeABI),
	), nil
}

// buildFixtureProcedure stands in for a real decode-and-disassemble
// walk: a tiny three-instruction procedure that loads a base address,
// calls a callee proven to offset one register by a fixed amount, and
// uses the result — enough to exercise every stage of the pipeline
// without a real ISA decoder wired in.
func buildFixtureProcedure(s *settings.Settings) (*program.Procedure, error) {
	dec := decoder.NewFakeDecoder()
	dec.Add(
		decoder.Instruction{Addr: 0x1000, Size: 4, Mnemonic: "li", Template: "LI"},
		decoder.RTL{Addr: 0x1000, Statements: []stmt.Statement{
			&stmt.Assign{Lhs: expr.RegOfN(28), Rhs: &expr.IntConst{Value: 0x2000}},
		}},
	)
	defCollector := stmt.NewLocSet()
	dec.Add(
		decoder.Instruction{Addr: 0x1004, Size: 4, Mnemonic: "call", Template: "CALL"},
		decoder.RTL{Addr: 0x1004, Statements: []stmt.Statement{
			&stmt.CallStatement{Callee: "proven_fn", DefCollector: defCollector},
		}},
	)
	dec.Add(
		decoder.Instruction{Addr: 0x1008, Size: 4, Mnemonic: "add", Template: "ADD"},
		decoder.RTL{Addr: 0x1008, Statements: []stmt.Statement{
			&stmt.Assign{
				Lhs: expr.RegOfN(28),
				// The call at 0x1004 is always the second statement
				// assignStatementIDs numbers (statement-init walks
				// fragments in address order), so its fresh id is
				// known ahead of time for this fixture.
				Rhs: &expr.Binary{
					Op:    "+",
					Left:  &expr.Ref{Base: expr.RegOfN(28), Def: 2},
					Right: &expr.IntConst{Value: 16},
				},
			},
		}},
	)

	if s.DebugDecoder {
		for addr := range dec.RTLs {
			fmt.Fprintf(os.Stderr, "decompir: decoded 0x%08x\n", addr)
		}
	}

	cg := cfg.New()
	instructions := make([]decoder.Instruction, 0, 3)
	for _, addr := range []uint64{0x1000, 0x1004, 0x1008} {
		insn, ok := dec.Disassemble(addr, nil)
		if !ok {
			return nil, fmt.Errorf("fixture: no instruction at 0x%x", addr)
		}
		instructions = append(instructions, insn)
	}
	cg.CreateBB(cfg.Ret, instructions)

	rtls := make(map[uint64]decoder.RTL, len(instructions))
	for _, insn := range instructions {
		lifted, ok := dec.Lift(insn)
		if !ok {
			return nil, fmt.Errorf("fixture: no RTL for instruction at 0x%x", insn.Addr)
		}
		rtls[insn.Addr] = lifted[0]
	}

	fragGraph, err := frag.BuildFromBlocks(cg, 0x1000, rtls)
	if err != nil {
		return nil, err
	}

	proc := program.NewProcedure(1, "fixture_proc", fragGraph)
	proc.Proven.Prove("proven_fn", expr.RegOfN(28), func(pre expr.Expr) expr.Expr {
		return &expr.Binary{Op: "+", Left: pre, Right: &expr.IntConst{Value: 4}}
	})

	defCollector.Add(&expr.Ref{Base: expr.RegOfN(28), Def: 1})
	return proc, nil
}
