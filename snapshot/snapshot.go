// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package snapshot captures the decoded model of a container in a canonical
// form, so two decodes can be compared for structural equality.
//
// Two snapshot representations are provided: a canonical CBOR encoding for
// exact comparison, and a line-oriented text listing for human-readable
// diffs.
package snapshot

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/gogpu/dxbc/bytecode"
	"github.com/gogpu/dxbc/container"
)

// cborEncMode encodes with canonical options so that equal models always
// produce equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Model is the part of a decoded container that survives a write: it leaves
// out the header hash and size and the skipped chunks.
type Model struct {
	Version      uint32                 `cbor:"version"`
	Extended     bool                   `cbor:"extended"`
	Input        container.Signature    `cbor:"input"`
	Output       container.Signature    `cbor:"output"`
	Instructions []bytecode.Instruction `cbor:"instructions"`
}

// New builds the model of c with its decoded instructions.
func New(c *container.Container, instrs []bytecode.Instruction) *Model {
	return &Model{
		Version:      c.Program.Version,
		Extended:     c.Program.Extended,
		Input:        c.Input,
		Output:       c.Output,
		Instructions: instrs,
	}
}

// Take returns the canonical CBOR encoding of the model of c.
func Take(c *container.Container, instrs []bytecode.Instruction) ([]byte, error) {
	data, err := cborEncMode.Marshal(New(c, instrs))
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal model: %w", err)
	}
	return data, nil
}

// Load decodes a snapshot produced by Take.
func Load(data []byte) (*Model, error) {
	var m Model
	if err := cbor.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal model: %w", err)
	}
	return &m, nil
}

// Equal reports whether two snapshots describe the same model.
func Equal(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// Text renders the model of c as a listing: program profile, both
// signatures, then the disassembly.
func Text(c *container.Container, instrs []bytecode.Instruction) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n", bytecode.ParseVersion(c.Program.Version))
	writeSignature(&sb, "input", c.Input)
	writeSignature(&sb, "output", c.Output)
	if err := bytecode.Disassemble(&sb, instrs); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeSignature(sb *strings.Builder, kind string, sig container.Signature) {
	fmt.Fprintf(sb, "// %s signature (%d elements)\n", kind, len(sig.Elements))
	for _, e := range sig.Elements {
		fmt.Fprintf(sb, "//   %s%d r%d mask 0x%x/0x%x %s %s stream %d\n",
			e.Name, e.SemanticIndex, e.Register, e.Mask, e.ReadWriteMask,
			e.ComponentType, e.SystemValue, e.Stream)
	}
}

// Diff produces a line-by-line report of the first difference between two
// listings, with surrounding context.
func Diff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	maxLines := max(len(expectedLines), len(actualLines))

	line := func(lines []string, i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	firstDiff := -1
	for i := 0; i < maxLines; i++ {
		if line(expectedLines, i) != line(actualLines, i) {
			firstDiff = i
			break
		}
	}
	if firstDiff < 0 {
		return "(no difference found)"
	}

	const contextLines = 3
	var sb strings.Builder
	fmt.Fprintf(&sb, "first difference at line %d:\n", firstDiff+1)
	fmt.Fprintf(&sb, "  expected lines: %d\n", len(expectedLines))
	fmt.Fprintf(&sb, "  actual lines:   %d\n\n", len(actualLines))

	start := max(0, firstDiff-contextLines)
	end := min(maxLines, firstDiff+contextLines+1)
	for i := start; i < end; i++ {
		e, a := line(expectedLines, i), line(actualLines, i)
		prefix := " "
		if e != a {
			prefix = "!"
		}
		fmt.Fprintf(&sb, "%s %4d expected: %s\n", prefix, i+1, truncate(e, 120))
		if e != a {
			fmt.Fprintf(&sb, "%s %4d actual:   %s\n", prefix, i+1, truncate(a, 120))
		}
	}
	return sb.String()
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
