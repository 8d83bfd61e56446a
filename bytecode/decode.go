// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import (
	"fmt"

	"github.com/gogpu/dxbc/wire"
)

// Decode decodes a program token stream (the program chunk payload without
// its version and length words) into instructions. It also returns the
// constant buffer declarations found along the way, in declaration order.
//
// Decoding stops at the first error; no partial result is returned.
func Decode(tokens []byte) ([]Instruction, CBufferTable, error) {
	var table CBufferTable
	if len(tokens)%4 != 0 {
		return nil, table, wire.Errorf(wire.ErrMalformedInstruction, len(tokens)&^3,
			"token stream of %d bytes is not word aligned", len(tokens))
	}

	var instrs []Instruction
	for pos := 0; pos < len(tokens); {
		in, next, err := decodeInstruction(tokens, pos)
		if err != nil {
			return nil, CBufferTable{}, err
		}

		if in.Opcode == OpDclConstantBuffer {
			for i := range in.Operands {
				op := &in.Operands[i]
				if op.Type != OperandConstantBuffer {
					continue
				}
				if len(op.Indices) < 2 {
					return nil, CBufferTable{}, wire.Errorf(wire.ErrMalformedInstruction, pos,
						"constant buffer declaration with %d indices", len(op.Indices))
				}
				if err := table.Add(uint32(op.Indices[0].Value), uint32(op.Indices[1].Value)); err != nil {
					return nil, CBufferTable{}, fmt.Errorf("instruction at offset %d: %w", pos, err)
				}
			}
		}

		instrs = append(instrs, in)
		pos = next
	}

	return instrs, table, nil
}

// decodeInstruction decodes the instruction starting at byte offset start and
// returns it with the offset of the next instruction.
func decodeInstruction(tokens []byte, start int) (Instruction, int, error) {
	var in Instruction

	r := wire.NewReader(tokens)
	r.Seek(start)
	token, err := r.Uint32()
	if err != nil {
		return in, 0, err
	}

	in.Opcode = Opcode(token & opcodeMask)
	if !in.Opcode.Valid() {
		return in, 0, wire.Errorf(wire.ErrUnrecognizedOpcode, start,
			"opcode %d is outside the %d known opcodes", uint32(in.Opcode), uint32(OpcodeCount))
	}

	if in.Opcode == OpCustomData {
		return decodeCustomData(r, token, start)
	}

	length := int((token & lengthMask) >> lengthShift)
	if length == 0 {
		return in, 0, wire.Errorf(wire.ErrMalformedInstruction, start, "%s has zero length", in.Opcode)
	}
	end := start + length*4
	if end > len(tokens) {
		return in, 0, wire.Errorf(wire.ErrTruncatedBuffer, start,
			"%s of %d words runs past the end of the program", in.Opcode, length)
	}

	// Reads are bounded by the declared length; running out of words means the
	// operands disagree with it.
	r = wire.NewReader(tokens[:end])
	r.Seek(start + 4)
	overrun := func(err error) error {
		if wire.IsKind(err, wire.ErrTruncatedBuffer) {
			return wire.Errorf(wire.ErrMalformedInstruction, start,
				"%s decodes past its length of %d words", in.Opcode, length)
		}
		return err
	}

	in.decodeControls(token)

	for extended := token&extendedBit != 0; extended; {
		ext, err := r.Uint32()
		if err != nil {
			return in, 0, overrun(err)
		}
		extended = ext&extendedBit != 0
		in.Extensions = append(in.Extensions, decodeExtension(ext))
	}

	switch in.Opcode {
	case OpDclFunctionTable:
		ft, err := decodeFunctionTable(r)
		if err != nil {
			return in, 0, overrun(err)
		}
		in.FunctionTable = ft
	case OpDclInterface:
		return in, 0, wire.Errorf(wire.ErrUnsupportedFeature, start, "%s is not supported", in.Opcode)
	}

	if n := in.Opcode.NumOperands(); n > 0 {
		in.Operands = make([]Operand, n)
		for i := range in.Operands {
			if in.Operands[i], err = decodeOperand(r, 0); err != nil {
				return in, 0, overrun(err)
			}
		}
	}

	for i := 0; i < in.Opcode.NumValues(); i++ {
		if in.Values[i], err = r.Uint32(); err != nil {
			return in, 0, overrun(err)
		}
	}

	for r.Remaining() >= 4 {
		w, _ := r.Uint32()
		in.Trailing = append(in.Trailing, w)
	}

	return in, end, nil
}

func decodeCustomData(r *wire.Reader, token uint32, start int) (Instruction, int, error) {
	in := Instruction{
		Opcode:          OpCustomData,
		CustomDataClass: CustomDataClass((token & customClassMask) >> customClassShift),
	}

	length, err := r.Uint32()
	if err != nil {
		return in, 0, err
	}
	if length < 2 {
		return in, 0, wire.Errorf(wire.ErrMalformedInstruction, start, "customdata length %d is shorter than its header", length)
	}
	if uint64(length-2)*4 > uint64(r.Remaining()) {
		return in, 0, wire.Errorf(wire.ErrTruncatedBuffer, start,
			"customdata of %d words runs past the end of the program", length)
	}

	in.CustomData = make([]uint32, length-2)
	for i := range in.CustomData {
		in.CustomData[i], _ = r.Uint32()
	}
	return in, r.Pos(), nil
}

func decodeFunctionTable(r *wire.Reader) (*FunctionTable, error) {
	id, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if uint64(n)*4 > uint64(r.Remaining()) {
		return nil, wire.Errorf(wire.ErrTruncatedBuffer, r.Pos(), "function table of %d bodies", n)
	}
	ft := &FunctionTable{ID: id, Bodies: make([]uint32, n)}
	for i := range ft.Bodies {
		ft.Bodies[i], _ = r.Uint32()
	}
	return ft, nil
}
