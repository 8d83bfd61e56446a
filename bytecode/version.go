// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "fmt"

// ProgramType is the shader stage a program chunk was compiled for.
type ProgramType uint16

// Program types as stored in the version token.
const (
	// ProgramPixel is a pixel shader.
	ProgramPixel ProgramType = iota

	// ProgramVertex is a vertex shader.
	ProgramVertex

	// ProgramGeometry is a geometry shader.
	ProgramGeometry

	// ProgramHull is a hull (tessellation control) shader. Shader Model 5 only.
	ProgramHull

	// ProgramDomain is a domain (tessellation evaluation) shader. Shader Model 5 only.
	ProgramDomain

	// ProgramCompute is a compute shader.
	ProgramCompute
)

// profilePrefix returns the profile prefix of the stage, such as "ps".
func (t ProgramType) profilePrefix() string {
	switch t {
	case ProgramPixel:
		return "ps"
	case ProgramVertex:
		return "vs"
	case ProgramGeometry:
		return "gs"
	case ProgramHull:
		return "hs"
	case ProgramDomain:
		return "ds"
	case ProgramCompute:
		return "cs"
	default:
		return fmt.Sprintf("stage%d", uint16(t))
	}
}

// String returns a human-readable stage name.
func (t ProgramType) String() string {
	switch t {
	case ProgramPixel:
		return "pixel"
	case ProgramVertex:
		return "vertex"
	case ProgramGeometry:
		return "geometry"
	case ProgramHull:
		return "hull"
	case ProgramDomain:
		return "domain"
	case ProgramCompute:
		return "compute"
	default:
		return fmt.Sprintf("ProgramType(%d)", uint16(t))
	}
}

// ProgramVersion is the decoded version token of a program chunk.
//
//	bits 16..31  program type
//	bits  4..7   major version
//	bits  0..3   minor version
type ProgramVersion struct {
	Type  ProgramType
	Major uint8
	Minor uint8
}

// ParseVersion decodes a program version token.
func ParseVersion(token uint32) ProgramVersion {
	return ProgramVersion{
		Type:  ProgramType(token >> 16),
		Major: uint8((token >> 4) & 0xf),
		Minor: uint8(token & 0xf),
	}
}

// Token encodes the version back into a version token.
func (v ProgramVersion) Token() uint32 {
	return uint32(v.Type)<<16 | uint32(v.Major&0xf)<<4 | uint32(v.Minor&0xf)
}

// String returns the shader profile for this version.
// Example: "ps_5_0", "vs_4_1"
func (v ProgramVersion) String() string {
	return v.Type.profilePrefix() + "_" + v.ProfileSuffix()
}

// ProfileSuffix returns the shader profile suffix for this version.
// Example: "5_0", "4_1"
func (v ProgramVersion) ProfileSuffix() string {
	return fmt.Sprintf("%d_%d", v.Major, v.Minor)
}

// UsesExtendedChunk reports whether this version is stored in a SHEX chunk.
// Shader Model 5 programs use SHEX; earlier models use SHDR.
func (v ProgramVersion) UsesExtendedChunk() bool {
	return v.Major >= 5
}

// SupportsTessellation returns true if hull and domain stages exist at this version.
// Tessellation was introduced in Shader Model 5.0.
func (v ProgramVersion) SupportsTessellation() bool {
	return v.Major >= 5
}
