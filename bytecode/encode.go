// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import (
	"fmt"

	"github.com/gogpu/dxbc/wire"
)

// Encode encodes instructions into a program token stream. Instruction
// lengths are recomputed from the encoded words.
func Encode(instrs []Instruction) ([]byte, error) {
	w := wire.NewWriter(len(instrs) * 16)
	for i := range instrs {
		if err := encodeInstruction(w, &instrs[i]); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, instrs[i].Opcode, err)
		}
	}
	return w.Bytes(), nil
}

func encodeInstruction(w *wire.Writer, in *Instruction) error {
	if !in.Opcode.Valid() {
		return wire.Errorf(wire.ErrUnrecognizedOpcode, -1, "opcode %d is outside the %d known opcodes",
			uint32(in.Opcode), uint32(OpcodeCount))
	}

	switch in.Opcode {
	case OpCustomData:
		token := uint32(in.Opcode)&opcodeMask | (uint32(in.CustomDataClass)<<customClassShift)&customClassMask
		w.Uint32(token)
		w.Uint32(uint32(len(in.CustomData) + 2))
		for _, v := range in.CustomData {
			w.Uint32(v)
		}
		return nil
	case OpDclInterface:
		return wire.Errorf(wire.ErrUnsupportedFeature, -1, "%s is not supported", in.Opcode)
	}

	start := w.Len()
	w.Uint32(0) // opcode token, patched once the length is known

	for i, e := range in.Extensions {
		w.Uint32(e.encode(i < len(in.Extensions)-1))
	}

	if in.Opcode == OpDclFunctionTable {
		ft := in.FunctionTable
		if ft == nil {
			ft = &FunctionTable{}
		}
		w.Uint32(ft.ID)
		w.Uint32(uint32(len(ft.Bodies)))
		for _, b := range ft.Bodies {
			w.Uint32(b)
		}
	}

	for i := range in.Operands {
		encodeOperand(w, &in.Operands[i])
	}
	for i := 0; i < in.Opcode.NumValues(); i++ {
		w.Uint32(in.Values[i])
	}
	for _, v := range in.Trailing {
		w.Uint32(v)
	}

	length := (w.Len() - start) / 4
	if length > MaxInstructionLength {
		return wire.Errorf(wire.ErrMalformedInstruction, start, "encoded length %d exceeds %d words", length, MaxInstructionLength)
	}

	token := uint32(in.Opcode)&opcodeMask | in.encodeControls() | uint32(length)<<lengthShift
	if len(in.Extensions) > 0 {
		token |= extendedBit
	}
	w.PutUint32At(start, token)
	return nil
}
