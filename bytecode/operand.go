// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "github.com/gogpu/dxbc/wire"

// Operand token layout.
const (
	operandNumMask       = 0x00000003
	operandModeMask      = 0x0000000c
	operandModeShift     = 2
	operandModeBitsMask  = 0x00000ff0
	operandModeBitsShift = 4
	operandTypeMask      = 0x000ff000
	operandTypeShift     = 12
	operandIndexDimMask  = 0x00300000
	operandIndexDimShift = 20
	operandExtendedBit   = 0x80000000

	// Extended operand token.
	operandExtTypeModifier  = 1
	operandModifierMask     = 0x00003fc0
	operandModifierShift    = 6
	maxOperandIndices       = 3
	operandAddrModeBits     = 3
	operandAddrModeBaseBit  = 22
	maxAddrMode             = AddrRegImm64
	operandFourComponents   = 2
	maxRelativeOperandDepth = 1
)

// Index is one addressing component of an operand.
type Index struct {
	Mode AddrMode

	// Value is the immediate part. 32-bit modes use the low word.
	Value uint64

	// Rel is the relative register of AddrReg, AddrRegImm32 and AddrRegImm64.
	Rel *Operand
}

// Operand is a decoded source or destination operand.
type Operand struct {
	Type OperandType

	// NumComponents is the raw 2-bit component count field: 0, 1, 4 (stored
	// as 2) or N (stored as 3).
	NumComponents uint8

	Mode     Mode
	ModeBits uint8

	// Extended is set when the operand carried an extension token.
	Extended bool

	// Modifier is decoded from the extension token.
	Modifier Modifier

	// Extension holds the extension token bits other than the modifier.
	Extension uint32

	Indices []Index

	// Immediate payload of l() and d() operands.
	Imm32 [4]uint32
	Imm64 [4]uint64
}

// Components returns the number of components the operand selects.
func (op *Operand) Components() int {
	if op.NumComponents == operandFourComponents {
		return 4
	}
	return int(op.NumComponents)
}

// Register returns the first index of the operand, which is the register
// number for most register files.
func (op *Operand) Register() (uint32, bool) {
	if len(op.Indices) == 0 {
		return 0, false
	}
	return uint32(op.Indices[0].Value), true
}

// WriteMask returns the component mask of a mask-mode operand.
func (op *Operand) WriteMask() uint8 {
	return op.ModeBits & modeBitMasks[ModeMask]
}

// Swizzle returns the four component selectors of a swizzle-mode operand.
func (op *Operand) Swizzle() [4]uint8 {
	var s [4]uint8
	for i := range s {
		s[i] = (op.ModeBits >> (2 * i)) & 3
	}
	return s
}

// Select returns the component of a scalar-mode operand.
func (op *Operand) Select() uint8 {
	return op.ModeBits & modeBitMasks[ModeScalar]
}

// Clone returns a deep copy of the operand.
func (op *Operand) Clone() Operand {
	out := *op
	if op.Indices != nil {
		out.Indices = make([]Index, len(op.Indices))
		for i, idx := range op.Indices {
			out.Indices[i] = idx
			if idx.Rel != nil {
				rel := idx.Rel.Clone()
				out.Indices[i].Rel = &rel
			}
		}
	}
	return out
}

func decodeOperand(r *wire.Reader, depth int) (Operand, error) {
	var op Operand
	start := r.Pos()
	token, err := r.Uint32()
	if err != nil {
		return op, err
	}

	op.NumComponents = uint8(token & operandNumMask)
	op.Mode = Mode((token & operandModeMask) >> operandModeShift)
	op.ModeBits = uint8((token & operandModeBitsMask) >> operandModeBitsShift)
	op.Type = OperandType((token & operandTypeMask) >> operandTypeShift)
	numIndices := int((token & operandIndexDimMask) >> operandIndexDimShift)

	var modes [maxOperandIndices]AddrMode
	for i := range modes {
		shift := operandAddrModeBaseBit + operandAddrModeBits*i
		modes[i] = AddrMode((token >> shift) & (1<<operandAddrModeBits - 1))
	}

	if token&operandExtendedBit != 0 {
		ext, err := r.Uint32()
		if err != nil {
			return op, err
		}
		if ext&operandExtendedBit != 0 {
			return op, wire.Errorf(wire.ErrUnsupportedFeature, r.Pos()-4, "chained operand extension tokens")
		}
		op.Extended = true
		op.Modifier = Modifier((ext & operandModifierMask) >> operandModifierShift)
		op.Extension = ext &^ operandModifierMask
	}

	switch op.Type {
	case OperandImm32:
		for i := 0; i < op.Components(); i++ {
			if op.Imm32[i], err = r.Uint32(); err != nil {
				return op, err
			}
		}
	case OperandImm64:
		for i := 0; i < op.Components(); i++ {
			if op.Imm64[i], err = r.Uint64(); err != nil {
				return op, err
			}
		}
	}

	if numIndices > 0 {
		op.Indices = make([]Index, numIndices)
	}
	for i := range op.Indices {
		idx := &op.Indices[i]
		idx.Mode = modes[i]
		if idx.Mode > maxAddrMode {
			return op, wire.Errorf(wire.ErrMalformedInstruction, start, "operand index %d has addressing mode %d", i, idx.Mode)
		}
		if idx.Mode.HasRegister() && depth >= maxRelativeOperandDepth {
			return op, wire.Errorf(wire.ErrUnsupportedOperandAddressing, start, "relative register nested inside a relative register")
		}

		switch idx.Mode {
		case AddrImm32, AddrRegImm32:
			v, err := r.Uint32()
			if err != nil {
				return op, err
			}
			idx.Value = uint64(v)
		case AddrImm64, AddrRegImm64:
			if idx.Value, err = r.Uint64(); err != nil {
				return op, err
			}
		}
		if idx.Mode.HasRegister() {
			rel, err := decodeOperand(r, depth+1)
			if err != nil {
				return op, err
			}
			idx.Rel = &rel
		}
	}

	return op, nil
}

func encodeOperand(w *wire.Writer, op *Operand) {
	extended := op.Extended || op.Modifier != ModifierNone

	token := uint32(op.NumComponents) & operandNumMask
	token |= (uint32(op.Mode) << operandModeShift) & operandModeMask
	token |= (uint32(op.ModeBits) << operandModeBitsShift) & operandModeBitsMask
	token |= (uint32(op.Type) << operandTypeShift) & operandTypeMask
	token |= (uint32(len(op.Indices)) << operandIndexDimShift) & operandIndexDimMask
	for i, idx := range op.Indices {
		if i == maxOperandIndices {
			break
		}
		token |= (uint32(idx.Mode) & (1<<operandAddrModeBits - 1)) << (operandAddrModeBaseBit + operandAddrModeBits*i)
	}
	if extended {
		token |= operandExtendedBit
	}
	w.Uint32(token)

	if extended {
		ext := op.Extension &^ operandModifierMask
		if !op.Extended {
			ext = operandExtTypeModifier
		}
		ext |= (uint32(op.Modifier) << operandModifierShift) & operandModifierMask
		w.Uint32(ext)
	}

	switch op.Type {
	case OperandImm32:
		for i := 0; i < op.Components(); i++ {
			w.Uint32(op.Imm32[i])
		}
	case OperandImm64:
		for i := 0; i < op.Components(); i++ {
			w.Uint64(op.Imm64[i])
		}
	}

	for i := range op.Indices {
		if i == maxOperandIndices {
			break
		}
		idx := &op.Indices[i]
		switch idx.Mode {
		case AddrImm32, AddrRegImm32:
			w.Uint32(uint32(idx.Value))
		case AddrImm64, AddrRegImm64:
			w.Uint64(idx.Value)
		}
		if idx.Mode.HasRegister() {
			if idx.Rel != nil {
				encodeOperand(w, idx.Rel)
			} else {
				encodeOperand(w, &Operand{})
			}
		}
	}
}
