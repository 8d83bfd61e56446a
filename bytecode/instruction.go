// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

// Opcode token layout.
const (
	opcodeMask       = 0x000007ff
	lengthMask       = 0x7f000000
	lengthShift      = 24
	extendedBit      = 0x80000000
	controlMask      = 0x00fff800 // opcode-specific bits between opcode and length
	customClassMask  = 0xfffff800
	customClassShift = 11

	// MaxInstructionLength is the largest length the 7-bit field can hold.
	MaxInstructionLength = lengthMask >> lengthShift
)

// GlobalFlags are the flags of a dcl_globalFlags instruction.
type GlobalFlags uint32

const (
	GlobalRefactoringAllowed        GlobalFlags = 0x00000800
	GlobalDoublePrecision           GlobalFlags = 0x00001000
	GlobalForceEarlyDepthStencil    GlobalFlags = 0x00002000
	GlobalEnableRawStructuredBuffer GlobalFlags = 0x00004000
	GlobalSkipOptimization          GlobalFlags = 0x00008000
	GlobalEnableMinimumPrecision    GlobalFlags = 0x00010000
	GlobalEnableDoubleExtensions    GlobalFlags = 0x00020000
	GlobalEnableShaderExtensions    GlobalFlags = 0x00040000

	globalFlagsMask GlobalFlags = 0x0007f800
)

var globalFlagNames = []struct {
	flag GlobalFlags
	name string
}{
	{GlobalRefactoringAllowed, "refactoringAllowed"},
	{GlobalDoublePrecision, "enableDoublePrecisionFloatOps"},
	{GlobalForceEarlyDepthStencil, "forceEarlyDepthStencil"},
	{GlobalEnableRawStructuredBuffer, "enableRawAndStructuredBuffers"},
	{GlobalSkipOptimization, "skipOptimization"},
	{GlobalEnableMinimumPrecision, "enableMinimumPrecision"},
	{GlobalEnableDoubleExtensions, "enable11_1DoubleExtensions"},
	{GlobalEnableShaderExtensions, "enable11_1ShaderExtensions"},
}

// SyncFlags are the flags of a sync instruction.
type SyncFlags uint32

const (
	SyncThreadsInGroup SyncFlags = 0x00000800
	SyncSharedMemory   SyncFlags = 0x00001000
	SyncUAVGroup       SyncFlags = 0x00002000
	SyncUAVGlobal      SyncFlags = 0x00004000

	syncFlagsMask SyncFlags = 0x00007800
)

// Extension is one extended opcode token.
type Extension struct {
	Type ExtensionType

	// SampleOffsets are the signed texel offsets of a sample controls token.
	SampleOffsets [3]int8

	// ResourceDim and Stride belong to a resource dimension token.
	ResourceDim ResourceDim
	Stride      uint16

	// ReturnTypes belong to a resource return type token.
	ReturnTypes [4]ReturnType

	// ExtraBits holds token bits without a decoded meaning.
	ExtraBits uint32
}

// Extension token layout.
const (
	extTypeMask = 0x0000003f

	sampleOffsetsMask = 0x001ffe00
	resourceDimMask   = 0x000007c0
	strideMask        = 0x007ff800
	returnTypesMask   = 0x003fffc0
)

func decodeExtension(token uint32) Extension {
	e := Extension{Type: ExtensionType(token & extTypeMask)}
	used := uint32(0)
	switch e.Type {
	case ExtensionSampleControls:
		for i := range e.SampleOffsets {
			v := int8((token >> (9 + 4*i)) & 0xf)
			e.SampleOffsets[i] = v << 4 >> 4
		}
		used = sampleOffsetsMask
	case ExtensionResourceDim:
		e.ResourceDim = ResourceDim((token & resourceDimMask) >> 6)
		e.Stride = uint16((token & strideMask) >> 11)
		used = resourceDimMask | strideMask
	case ExtensionResourceReturnType:
		for i := range e.ReturnTypes {
			e.ReturnTypes[i] = ReturnType((token >> (6 + 4*i)) & 0xf)
		}
		used = returnTypesMask
	}
	e.ExtraBits = token &^ (extendedBit | extTypeMask | used)
	return e
}

func (e Extension) encode(more bool) uint32 {
	token := uint32(e.Type)&extTypeMask | e.ExtraBits
	switch e.Type {
	case ExtensionSampleControls:
		for i, v := range e.SampleOffsets {
			token |= (uint32(uint8(v)) & 0xf) << (9 + 4*i)
		}
	case ExtensionResourceDim:
		token |= (uint32(e.ResourceDim) << 6) & resourceDimMask
		token |= (uint32(e.Stride) << 11) & strideMask
	case ExtensionResourceReturnType:
		for i, r := range e.ReturnTypes {
			token |= (uint32(r) & 0xf) << (6 + 4*i)
		}
	}
	if more {
		token |= extendedBit
	}
	return token
}

// FunctionTable is the body of a dcl_function_table instruction.
type FunctionTable struct {
	ID     uint32
	Bodies []uint32
}

// Instruction is one decoded instruction of a program chunk.
//
// Which flag fields are meaningful depends on the opcode: each declaration
// family packs its own flags into the opcode token, and every other opcode
// uses the ReturnType/Saturate/TestNonZero/PreciseMask layout.
type Instruction struct {
	Opcode Opcode

	// dcl_resource
	ResourceDim ResourceDim
	SampleCount uint8

	// dcl_input_ps
	Interpolation Interpolation

	// dcl_sampler
	Shadow bool
	Mono   bool

	// dcl_constantbuffer
	DynamicIndexed bool

	// dcl_globalFlags
	GlobalFlags GlobalFlags

	// sync
	SyncFlags SyncFlags

	// Default layout.
	ReturnType  ResInfoReturnType
	Saturate    bool
	TestNonZero bool
	PreciseMask uint8

	// ControlBits holds opcode token bits the family layout does not decode.
	ControlBits uint32

	Extensions []Extension
	Operands   []Operand

	// Values are the raw words that follow the operands; the opcode table
	// determines how many are used.
	Values [3]uint32

	// CustomDataClass and CustomData are set for customdata blocks.
	CustomDataClass CustomDataClass
	CustomData      []uint32

	// FunctionTable is set for dcl_function_table.
	FunctionTable *FunctionTable

	// Trailing holds words inside the instruction length that the opcode
	// table does not account for. They are re-emitted unchanged.
	Trailing []uint32
}

// Default layout bits.
const (
	returnTypeMask  = 0x00001800
	saturateBit     = 0x00002000
	testNonZeroBit  = 0x00040000
	preciseMaskBits = 0x00780000
)

// decodeControls splits the opcode-specific bits of token into flag fields.
func (in *Instruction) decodeControls(token uint32) {
	bits := token & controlMask
	used := uint32(0)
	switch in.Opcode {
	case OpDclConstantBuffer:
		in.DynamicIndexed = bits&0x800 != 0
		used = 0x800
	case OpDclGlobalFlags:
		in.GlobalFlags = GlobalFlags(bits) & globalFlagsMask
		used = uint32(globalFlagsMask)
	case OpDclInputPS:
		in.Interpolation = Interpolation((bits & 0xf800) >> 11)
		used = 0xf800
	case OpDclResource:
		in.ResourceDim = ResourceDim((bits & 0xf800) >> 11)
		in.SampleCount = uint8((bits & 0x7f0000) >> 16)
		used = 0x7ff800
	case OpDclSampler:
		in.Shadow = bits&0x800 != 0
		in.Mono = bits&0x1000 != 0
		used = 0x1800
	case OpSync:
		in.SyncFlags = SyncFlags(bits) & syncFlagsMask
		used = uint32(syncFlagsMask)
	default:
		in.ReturnType = ResInfoReturnType((bits & returnTypeMask) >> 11)
		in.Saturate = bits&saturateBit != 0
		in.TestNonZero = bits&testNonZeroBit != 0
		in.PreciseMask = uint8((bits & preciseMaskBits) >> 19)
		used = returnTypeMask | saturateBit | testNonZeroBit | preciseMaskBits
	}
	in.ControlBits = bits &^ used
}

// encodeControls packs the flag fields back into opcode token bits 11..23.
func (in *Instruction) encodeControls() uint32 {
	bits := in.ControlBits
	switch in.Opcode {
	case OpDclConstantBuffer:
		if in.DynamicIndexed {
			bits |= 0x800
		}
	case OpDclGlobalFlags:
		bits |= uint32(in.GlobalFlags & globalFlagsMask)
	case OpDclInputPS:
		bits |= (uint32(in.Interpolation) << 11) & 0xf800
	case OpDclResource:
		bits |= (uint32(in.ResourceDim) << 11) & 0xf800
		bits |= (uint32(in.SampleCount) << 16) & 0x7f0000
	case OpDclSampler:
		if in.Shadow {
			bits |= 0x800
		}
		if in.Mono {
			bits |= 0x1000
		}
	case OpSync:
		bits |= uint32(in.SyncFlags & syncFlagsMask)
	default:
		bits |= (uint32(in.ReturnType) << 11) & returnTypeMask
		if in.Saturate {
			bits |= saturateBit
		}
		if in.TestNonZero {
			bits |= testNonZeroBit
		}
		bits |= (uint32(in.PreciseMask) << 19) & preciseMaskBits
	}
	return bits & controlMask
}

// Clone returns a deep copy of the instruction.
func (in *Instruction) Clone() Instruction {
	out := *in
	if in.Extensions != nil {
		out.Extensions = append([]Extension(nil), in.Extensions...)
	}
	if in.Operands != nil {
		out.Operands = make([]Operand, len(in.Operands))
		for i, op := range in.Operands {
			out.Operands[i] = op.Clone()
		}
	}
	if in.CustomData != nil {
		out.CustomData = append([]uint32(nil), in.CustomData...)
	}
	if in.FunctionTable != nil {
		ft := *in.FunctionTable
		ft.Bodies = append([]uint32(nil), in.FunctionTable.Bodies...)
		out.FunctionTable = &ft
	}
	if in.Trailing != nil {
		out.Trailing = append([]uint32(nil), in.Trailing...)
	}
	return out
}
