// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import (
	"fmt"
	"io"
	"math"
	"strings"
)

const componentNames = "xyzw"

// Disassemble writes one line per instruction to w, indented by nesting depth.
func Disassemble(w io.Writer, instrs []Instruction) error {
	depth := 0
	for i := range instrs {
		in := &instrs[i]
		switch in.Opcode {
		case OpElse, OpEndif, OpEndloop, OpEndswitch, OpCase, OpDefault:
			depth = max(0, depth-1)
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), in.String()); err != nil {
			return err
		}
		switch in.Opcode {
		case OpIf, OpElse, OpLoop, OpSwitch, OpCase, OpDefault:
			depth++
		}
	}
	return nil
}

// String returns the instruction in assembler syntax.
func (in *Instruction) String() string {
	var sb strings.Builder
	sb.WriteString(in.mnemonic())

	switch in.Opcode {
	case OpCustomData:
		fmt.Fprintf(&sb, " { %d words }", len(in.CustomData))
		return sb.String()
	case OpDclGlobalFlags:
		sb.WriteByte(' ')
		sb.WriteString(in.GlobalFlags.String())
		return sb.String()
	case OpDclInputPS:
		sb.WriteByte(' ')
		sb.WriteString(in.Interpolation.String())
	case OpDclFunctionTable:
		if ft := in.FunctionTable; ft != nil {
			fmt.Fprintf(&sb, " ft%d = {", ft.ID)
			for i, b := range ft.Bodies {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "fb%d", b)
			}
			sb.WriteString("}")
		}
	}

	for i := range in.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(in.Operands[i].String())
	}

	switch in.Opcode {
	case OpDclConstantBuffer:
		if in.DynamicIndexed {
			sb.WriteString(", dynamicIndexed")
		} else {
			sb.WriteString(", immediateIndexed")
		}
	case OpDclSampler:
		switch {
		case in.Shadow:
			sb.WriteString(", mode_comparison")
		case in.Mono:
			sb.WriteString(", mode_mono")
		default:
			sb.WriteString(", mode_default")
		}
	}

	for i := 0; i < in.Opcode.NumValues(); i++ {
		if i == 0 && len(in.Operands) == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", in.Values[i])
	}

	if len(in.Trailing) > 0 {
		fmt.Fprintf(&sb, " // +%d words", len(in.Trailing))
	}
	return sb.String()
}

func (in *Instruction) mnemonic() string {
	name := in.Opcode.String()
	switch in.Opcode {
	case OpCustomData:
		if in.CustomDataClass == CustomDataImmConstantBuffer {
			return in.CustomDataClass.String()
		}
		return name + " " + in.CustomDataClass.String()
	case OpDclResource:
		name += "_" + in.ResourceDim.String()
		if in.SampleCount > 0 {
			name += fmt.Sprintf("(%d)", in.SampleCount)
		}
		return name
	case OpIf, OpBreakc, OpCallc, OpContinuec, OpRetc, OpDiscard:
		if in.TestNonZero {
			return name + "_nz"
		}
		return name + "_z"
	}
	if in.Saturate {
		name += "_sat"
	}
	for _, e := range in.Extensions {
		if e.Type == ExtensionSampleControls {
			name += fmt.Sprintf("_aoffimmi(%d,%d,%d)", e.SampleOffsets[0], e.SampleOffsets[1], e.SampleOffsets[2])
		}
	}
	return name
}

// String returns the names of the set flags separated by " | ".
func (f GlobalFlags) String() string {
	var names []string
	for _, n := range globalFlagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, " | ")
}

// String returns the operand in assembler syntax.
func (op *Operand) String() string {
	var sb strings.Builder

	switch op.Type {
	case OperandImm32:
		sb.WriteString("l(")
		for i := 0; i < op.Components(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatImm32(op.Imm32[i]))
		}
		sb.WriteString(")")
		return op.applyModifier(sb.String())
	case OperandImm64:
		sb.WriteString("d(")
		for i := 0; i < op.Components(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", math.Float64frombits(op.Imm64[i]))
		}
		sb.WriteString(")")
		return op.applyModifier(sb.String())
	}

	sb.WriteString(op.Type.String())
	for i := range op.Indices {
		idx := &op.Indices[i]
		if i == 0 && !idx.Mode.HasRegister() {
			fmt.Fprintf(&sb, "%d", idx.Value)
			continue
		}
		sb.WriteByte('[')
		sb.WriteString(idx.String())
		sb.WriteByte(']')
	}
	sb.WriteString(op.selection())
	return op.applyModifier(sb.String())
}

func (op *Operand) selection() string {
	if op.Components() < 4 {
		return ""
	}
	var sb strings.Builder
	switch op.Mode {
	case ModeMask:
		mask := op.WriteMask()
		if mask == 0 {
			return ""
		}
		sb.WriteByte('.')
		for i := 0; i < 4; i++ {
			if mask&(1<<i) != 0 {
				sb.WriteByte(componentNames[i])
			}
		}
	case ModeSwizzle:
		sb.WriteByte('.')
		for _, c := range op.Swizzle() {
			sb.WriteByte(componentNames[c])
		}
	case ModeScalar:
		sb.WriteByte('.')
		sb.WriteByte(componentNames[op.Select()])
	}
	return sb.String()
}

func (op *Operand) applyModifier(s string) string {
	switch op.Modifier {
	case ModifierNeg:
		return "-" + s
	case ModifierAbs:
		return "|" + s + "|"
	case ModifierAbsNeg:
		return "-|" + s + "|"
	}
	return s
}

// String returns the index in assembler syntax, without brackets.
func (idx *Index) String() string {
	if !idx.Mode.HasRegister() {
		return fmt.Sprintf("%d", idx.Value)
	}
	rel := "?"
	if idx.Rel != nil {
		rel = idx.Rel.String()
	}
	if idx.Mode == AddrReg {
		return rel
	}
	return fmt.Sprintf("%s + %d", rel, idx.Value)
}

// formatImm32 prints small integers as integers and everything else as float.
func formatImm32(v uint32) string {
	if v < 0x10000 || v >= 0xffff0000 {
		return fmt.Sprintf("%d", int32(v))
	}
	return fmt.Sprintf("%f", math.Float32frombits(v))
}
