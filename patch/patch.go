// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package patch rewrites the register assignment of a decoded program.
//
// Two rewrites are applied in a single pass over the instruction list:
//
//   - Texture registers are renumbered to match their paired sampler
//     register, both at the dcl_resource declaration and at every usage.
//   - All constant buffers are merged into cb0. The cb0 declaration grows to
//     the total component count, the other declarations are dropped, and
//     every cbN[i] usage becomes cb0[offset(N)+i].
//
// Patch never modifies its input.
package patch

import (
	"fmt"

	"github.com/gogpu/dxbc/bytecode"
	"github.com/gogpu/dxbc/wire"
)

// Result is the outcome of a Patch call.
type Result struct {
	// Instructions is the rewritten program, in the original order, without
	// the dropped declarations.
	Instructions []bytecode.Instruction

	// TexturesRemapped counts resource operands whose register changed.
	TexturesRemapped int

	// BuffersMerged counts constant buffer usages moved into cb0.
	BuffersMerged int

	// Dropped counts removed dcl_constantbuffer instructions.
	Dropped int
}

// Patch applies the texture remap and the constant buffer merge to instrs.
// The table must be the one Decode returned for the same instructions.
func Patch(instrs []bytecode.Instruction, table bytecode.CBufferTable, remap TextureRemap) (*Result, error) {
	res := &Result{Instructions: make([]bytecode.Instruction, 0, len(instrs))}

	for i := range instrs {
		in := instrs[i].Clone()
		keep := true

		for j := range in.Operands {
			op := &in.Operands[j]
			var err error
			switch op.Type {
			case bytecode.OperandResource:
				err = res.remapTexture(op, remap)
			case bytecode.OperandConstantBuffer:
				if in.Opcode == bytecode.OpDclConstantBuffer {
					keep, err = mergeDeclaration(op, table)
				} else {
					err = res.mergeUsage(op, table)
				}
			}
			if err != nil {
				return nil, fmt.Errorf("patch instruction %d (%s): %w", i, in.Opcode, err)
			}
			if !keep {
				break
			}
		}

		if !keep {
			res.Dropped++
			continue
		}
		res.Instructions = append(res.Instructions, in)
	}

	return res, nil
}

func (r *Result) remapTexture(op *bytecode.Operand, remap TextureRemap) error {
	idx := firstIndex(op)
	if idx == nil {
		return nil
	}
	switch idx.Mode {
	case bytecode.AddrImm32, bytecode.AddrRegImm32:
	default:
		return wire.Errorf(wire.ErrUnsupportedOperandAddressing, -1,
			"resource operand addressed with %s", idx.Mode)
	}
	to, ok := remap.Lookup(uint32(idx.Value))
	if !ok || uint64(to) == idx.Value {
		return nil
	}
	idx.Value = uint64(to)
	r.TexturesRemapped++
	return nil
}

// mergeDeclaration rewrites a dcl_constantbuffer operand. It reports false
// when the declaration must be dropped.
func mergeDeclaration(op *bytecode.Operand, table bytecode.CBufferTable) (bool, error) {
	if err := requireImmediateRegister(op); err != nil {
		return true, err
	}
	if len(op.Indices) < 2 {
		return true, wire.Errorf(wire.ErrMalformedInstruction, -1, "constant buffer declaration without a size")
	}
	if op.Indices[0].Value != 0 {
		return false, nil
	}
	size := &op.Indices[1]
	if !immediateOffset(size.Mode) {
		return true, wire.Errorf(wire.ErrUnsupportedOperandAddressing, -1,
			"constant buffer size addressed with %s", size.Mode)
	}
	size.Value = uint64(table.Total())
	return true, nil
}

func (r *Result) mergeUsage(op *bytecode.Operand, table bytecode.CBufferTable) error {
	if err := requireImmediateRegister(op); err != nil {
		return err
	}
	reg := op.Indices[0].Value
	if reg == 0 {
		return nil
	}
	if reg >= uint64(table.Len()) {
		return wire.Errorf(wire.ErrMalformedDeclarationOrder, -1, "usage of undeclared constant buffer cb%d", reg)
	}
	if len(op.Indices) < 2 {
		return wire.Errorf(wire.ErrUnsupportedOperandAddressing, -1, "cb%d used without an element index", reg)
	}

	elem := &op.Indices[1]
	if !immediateOffset(elem.Mode) {
		return wire.Errorf(wire.ErrUnsupportedOperandAddressing, -1,
			"cb%d element addressed with %s", reg, elem.Mode)
	}
	elem.Value += uint64(table.Offset(uint32(reg)))
	op.Indices[0].Value = 0
	r.BuffersMerged++
	return nil
}

func requireImmediateRegister(op *bytecode.Operand) error {
	idx := firstIndex(op)
	if idx == nil {
		return wire.Errorf(wire.ErrMalformedInstruction, -1, "constant buffer operand without a register")
	}
	if idx.Mode != bytecode.AddrImm32 {
		return wire.Errorf(wire.ErrUnsupportedOperandAddressing, -1,
			"constant buffer register addressed with %s", idx.Mode)
	}
	return nil
}

func immediateOffset(m bytecode.AddrMode) bool {
	return m == bytecode.AddrImm32 || m == bytecode.AddrRegImm32
}

func firstIndex(op *bytecode.Operand) *bytecode.Index {
	if len(op.Indices) == 0 {
		return nil
	}
	return &op.Indices[0]
}
