// Package diag ports the teacher's error-reporting style (structured,
// code-tagged diagnostics rendered with color) to the decompiler
// domain: positions are instruction addresses rather than line/column,
// and sources are disassembled instructions rather than program text.
package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Level is a diagnostic's severity.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// Position locates a diagnostic at an instruction address within a
// procedure, when the producing pass has one to offer.
type Position struct {
	ProcName string
	Address  uint64
}

// Diagnostic is a single structured diagnostic, collected by
// program.Program.Diagnostics over the course of a run.
type Diagnostic struct {
	Level    Level
	Code     Code
	Message  string
	Position *Position // nil when the diagnostic has no single address
	Notes    []string
	HelpText string
}

// Reporter renders Diagnostics the way the teacher's ErrorReporter
// renders CompilerErrors: a bold level/code header, a "-->" location
// line, then notes and help text.
type Reporter struct {
	filename string
}

// NewReporter returns a Reporter labeling diagnostics as coming from
// filename (typically the binary or object file under analysis).
func NewReporter(filename string) *Reporter {
	return &Reporter{filename: filename}
}

// Format renders d as a multi-line string.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := r.levelColor(d.Level)
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, d.Message))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), d.Message))
	}

	if d.Position != nil {
		loc := d.Position.ProcName
		if loc == "" {
			loc = r.filename
		}
		out.WriteString(fmt.Sprintf("   %s %s:0x%08x\n", dim("-->"), loc, d.Position.Address))
	}

	for _, note := range d.Notes {
		noteColor := color.New(color.FgBlue).SprintFunc()
		out.WriteString(fmt.Sprintf("   %s %s %s\n", dim("│"), noteColor("note:"), note))
	}

	if d.HelpText != "" {
		helpColor := color.New(color.FgGreen).SprintFunc()
		out.WriteString(fmt.Sprintf("   %s %s %s\n", dim("│"), helpColor("help:"), d.HelpText))
	}

	return out.String()
}

func (r *Reporter) levelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

// FormatAll renders a sequence of diagnostics, in order.
func (r *Reporter) FormatAll(diags []Diagnostic) string {
	var out strings.Builder
	for _, d := range diags {
		out.WriteString(r.Format(d))
	}
	return out.String()
}
