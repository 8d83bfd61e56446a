// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "fmt"

// OperandType identifies the register file an operand refers to.
type OperandType uint8

const (
	OperandTemp OperandType = iota
	OperandInput
	OperandOutput
	OperandTempArray
	OperandImm32
	OperandImm64
	OperandSampler
	OperandResource
	OperandConstantBuffer
	OperandImmConstantBuffer
	OperandLabel
	OperandPrimitiveID
	OperandOutputDepth
	OperandNull
	OperandRasterizer
	OperandCoverageMask
	OperandStream
	OperandFunctionBody
	OperandFunctionTable
	OperandInterface
	OperandFunctionInput
	OperandFunctionOutput
	OperandOutputControlPointID
	OperandInputForkInstanceID
	OperandInputJoinInstanceID
	OperandInputControlPoint
	OperandOutputControlPoint
	OperandInputPatchConstant
	OperandInputDomainPoint
	OperandThisPointer
	OperandUnorderedAccessView
	OperandThreadGroupSharedMemory
	OperandInputThreadID
	OperandInputThreadGroupID
	OperandInputThreadIDInGroup
	OperandInputCoverageMask
	OperandInputThreadIDInGroupFlattened
	OperandInputGSInstanceID
	OperandOutputDepthGreaterEqual
	OperandOutputDepthLessEqual
	OperandCycleCounter
)

// Register prefixes as printed by the disassembler.
var operandTypePrefixes = [...]string{
	OperandTemp:                          "r",
	OperandInput:                         "v",
	OperandOutput:                        "o",
	OperandTempArray:                     "x",
	OperandImm32:                         "l",
	OperandImm64:                         "d",
	OperandSampler:                       "s",
	OperandResource:                      "t",
	OperandConstantBuffer:                "cb",
	OperandImmConstantBuffer:             "icb",
	OperandLabel:                         "label",
	OperandPrimitiveID:                   "vPrim",
	OperandOutputDepth:                   "oDepth",
	OperandNull:                          "null",
	OperandRasterizer:                    "rasterizer",
	OperandCoverageMask:                  "oMask",
	OperandStream:                        "m",
	OperandFunctionBody:                  "fb",
	OperandFunctionTable:                 "ft",
	OperandInterface:                     "fp",
	OperandFunctionInput:                 "fi",
	OperandFunctionOutput:                "fo",
	OperandOutputControlPointID:          "vOutputControlPointID",
	OperandInputForkInstanceID:           "vForkInstanceID",
	OperandInputJoinInstanceID:           "vJoinInstanceID",
	OperandInputControlPoint:             "vicp",
	OperandOutputControlPoint:            "vocp",
	OperandInputPatchConstant:            "vpc",
	OperandInputDomainPoint:              "vDomain",
	OperandThisPointer:                   "this",
	OperandUnorderedAccessView:           "u",
	OperandThreadGroupSharedMemory:       "g",
	OperandInputThreadID:                 "vThreadID",
	OperandInputThreadGroupID:            "vThreadGroupID",
	OperandInputThreadIDInGroup:          "vThreadIDInGroup",
	OperandInputCoverageMask:             "vCoverage",
	OperandInputThreadIDInGroupFlattened: "vThreadIDInGroupFlattened",
	OperandInputGSInstanceID:             "vGSInstanceID",
	OperandOutputDepthGreaterEqual:       "oDepthGE",
	OperandOutputDepthLessEqual:          "oDepthLE",
	OperandCycleCounter:                  "vCycleCounter",
}

// String returns the register prefix of the operand type.
func (t OperandType) String() string {
	if int(t) < len(operandTypePrefixes) {
		return operandTypePrefixes[t]
	}
	return fmt.Sprintf("operand(%d)", uint8(t))
}

// AddrMode is how one index of an operand is encoded.
type AddrMode uint8

const (
	// AddrImm32 is a 32-bit immediate index.
	AddrImm32 AddrMode = iota
	// AddrImm64 is a 64-bit immediate index.
	AddrImm64
	// AddrReg is an index taken from a register.
	AddrReg
	// AddrRegImm32 is a register plus a 32-bit immediate offset.
	AddrRegImm32
	// AddrRegImm64 is a register plus a 64-bit immediate offset.
	AddrRegImm64
)

// HasImmediate reports whether the index carries an immediate value.
func (m AddrMode) HasImmediate() bool {
	return m == AddrImm32 || m == AddrImm64 || m == AddrRegImm32 || m == AddrRegImm64
}

// HasRegister reports whether the index carries a relative register.
func (m AddrMode) HasRegister() bool {
	return m == AddrReg || m == AddrRegImm32 || m == AddrRegImm64
}

// Is64 reports whether the immediate part is 64 bits wide.
func (m AddrMode) Is64() bool {
	return m == AddrImm64 || m == AddrRegImm64
}

func (m AddrMode) String() string {
	switch m {
	case AddrImm32:
		return "imm32"
	case AddrImm64:
		return "imm64"
	case AddrReg:
		return "reg"
	case AddrRegImm32:
		return "reg+imm32"
	case AddrRegImm64:
		return "reg+imm64"
	default:
		return fmt.Sprintf("addr(%d)", uint8(m))
	}
}

// Mode is the component selection mode of an operand.
type Mode uint8

const (
	ModeMask Mode = iota
	ModeSwizzle
	ModeScalar
)

// modeBitMasks holds the valid mode bits per selection mode.
var modeBitMasks = [4]uint8{0x0f, 0xff, 0x03, 0x00}

// Modifier is the source modifier carried by an extended operand token.
type Modifier uint8

const (
	ModifierNone Modifier = iota
	ModifierNeg
	ModifierAbs
	ModifierAbsNeg
)

// ResourceDim is the dimension of a declared resource.
type ResourceDim uint8

const (
	ResourceDimUnknown ResourceDim = iota
	ResourceDimBuffer
	ResourceDimTexture1D
	ResourceDimTexture2D
	ResourceDimTexture2DMS
	ResourceDimTexture3D
	ResourceDimTextureCube
	ResourceDimTexture1DArray
	ResourceDimTexture2DArray
	ResourceDimTexture2DMSArray
	ResourceDimTextureCubeArray
	ResourceDimRawBuffer
	ResourceDimStructuredBuffer
)

var resourceDimNames = [...]string{
	"unknown", "buffer", "texture1d", "texture2d", "texture2dms", "texture3d",
	"texturecube", "texture1darray", "texture2darray", "texture2dmsarray",
	"texturecubearray", "raw_buffer", "structured_buffer",
}

func (d ResourceDim) String() string {
	if int(d) < len(resourceDimNames) {
		return resourceDimNames[d]
	}
	return fmt.Sprintf("dim(%d)", uint8(d))
}

// Interpolation is the interpolation mode of a pixel shader input.
type Interpolation uint8

const (
	InterpolationUnknown Interpolation = iota
	InterpolationConstant
	InterpolationLinear
	InterpolationLinearCentroid
	InterpolationLinearNoPerspective
	InterpolationLinearNoPerspectiveCentroid
	InterpolationLinearSample
	InterpolationLinearNoPerspectiveSample
)

var interpolationNames = [...]string{
	"undefined", "constant", "linear", "linear centroid", "linear noperspective",
	"linear noperspective centroid", "linear sample", "linear noperspective sample",
}

func (i Interpolation) String() string {
	if int(i) < len(interpolationNames) {
		return interpolationNames[i]
	}
	return fmt.Sprintf("interpolation(%d)", uint8(i))
}

// ReturnType is a resource return type of a dcl_resource value or a resource
// return type extension.
type ReturnType uint8

// Return types, numbered as fxc writes them.
const (
	ReturnTypeUnorm ReturnType = iota + 1
	ReturnTypeSnorm
	ReturnTypeSint
	ReturnTypeUint
	ReturnTypeFloat
	ReturnTypeMixed
	ReturnTypeDouble
	ReturnTypeContinued
	ReturnTypeUnused
)

var returnTypeNames = [...]string{
	"", "unorm", "snorm", "sint", "uint", "float", "mixed", "double", "continued", "unused",
}

func (r ReturnType) String() string {
	if r > 0 && int(r) < len(returnTypeNames) {
		return returnTypeNames[r]
	}
	return fmt.Sprintf("return_type(%d)", uint8(r))
}

// ResInfoReturnType is the return type encoded in a resinfo opcode token.
type ResInfoReturnType uint8

const (
	ResInfoFloat ResInfoReturnType = iota
	ResInfoRcpFloat
	ResInfoUint
)

// CustomDataClass classifies a customdata block.
type CustomDataClass uint32

const (
	CustomDataComment CustomDataClass = iota
	CustomDataDebugInfo
	CustomDataOpaque
	CustomDataImmConstantBuffer
	CustomDataShaderMessage
	CustomDataClipPlaneConstantMappingsForDX9
)

func (c CustomDataClass) String() string {
	switch c {
	case CustomDataComment:
		return "comment"
	case CustomDataDebugInfo:
		return "debuginfo"
	case CustomDataOpaque:
		return "opaque"
	case CustomDataImmConstantBuffer:
		return "dcl_immediateConstantBuffer"
	case CustomDataShaderMessage:
		return "shader_message"
	case CustomDataClipPlaneConstantMappingsForDX9:
		return "clip_plane_constant_mappings_for_dx9"
	default:
		return fmt.Sprintf("customdata(%d)", uint32(c))
	}
}

// ExtensionType is the kind of an extended instruction token.
type ExtensionType uint8

const (
	ExtensionEmpty ExtensionType = iota
	ExtensionSampleControls
	ExtensionResourceDim
	ExtensionResourceReturnType
)
