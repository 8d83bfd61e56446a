// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"fmt"

	"github.com/gogpu/dxbc/wire"
)

const (
	signatureHeaderSize = 8
	elementSize         = 24

	// namePadding fills the name table up to a word boundary.
	namePadding = 0xab
)

// SystemValue is the D3D_NAME classification of a signature element.
type SystemValue uint32

// System values. Target and later start at 64.
const (
	SystemValueUndefined SystemValue = iota
	SystemValuePosition
	SystemValueClipDistance
	SystemValueCullDistance
	SystemValueRenderTargetArrayIndex
	SystemValueViewportArrayIndex
	SystemValueVertexID
	SystemValuePrimitiveID
	SystemValueInstanceID
	SystemValueIsFrontFace
	SystemValueSampleIndex
	SystemValueFinalQuadUEq0EdgeTessFactor
	SystemValueFinalQuadVEq0EdgeTessFactor
	SystemValueFinalQuadUEq1EdgeTessFactor
	SystemValueFinalQuadVEq1EdgeTessFactor
	SystemValueFinalQuadUInsideTessFactor
	SystemValueFinalQuadVInsideTessFactor
	SystemValueFinalTriUEq0EdgeTessFactor
	SystemValueFinalTriVEq0EdgeTessFactor
	SystemValueFinalTriWEq0EdgeTessFactor
	SystemValueFinalTriInsideTessFactor
	SystemValueFinalLineDetailTessFactor
	SystemValueFinalLineDensityTessFactor
)

const (
	SystemValueTarget SystemValue = 64 + iota
	SystemValueDepth
	SystemValueCoverage
	SystemValueDepthGreaterEqual
	SystemValueDepthLessEqual
	SystemValueStencilRef
	SystemValueInnerCoverage
)

var systemValueNames = map[SystemValue]string{
	SystemValueUndefined:                   "undefined",
	SystemValuePosition:                    "position",
	SystemValueClipDistance:                "clip_distance",
	SystemValueCullDistance:                "cull_distance",
	SystemValueRenderTargetArrayIndex:      "rendertarget_array_index",
	SystemValueViewportArrayIndex:          "viewport_array_index",
	SystemValueVertexID:                    "vertex_id",
	SystemValuePrimitiveID:                 "primitive_id",
	SystemValueInstanceID:                  "instance_id",
	SystemValueIsFrontFace:                 "is_front_face",
	SystemValueSampleIndex:                 "sample_index",
	SystemValueFinalQuadUEq0EdgeTessFactor: "finalQuadUeq0EdgeTessFactor",
	SystemValueFinalQuadVEq0EdgeTessFactor: "finalQuadVeq0EdgeTessFactor",
	SystemValueFinalQuadUEq1EdgeTessFactor: "finalQuadUeq1EdgeTessFactor",
	SystemValueFinalQuadVEq1EdgeTessFactor: "finalQuadVeq1EdgeTessFactor",
	SystemValueFinalQuadUInsideTessFactor:  "finalQuadUInsideTessFactor",
	SystemValueFinalQuadVInsideTessFactor:  "finalQuadVInsideTessFactor",
	SystemValueFinalTriUEq0EdgeTessFactor:  "finalTriUeq0EdgeTessFactor",
	SystemValueFinalTriVEq0EdgeTessFactor:  "finalTriVeq0EdgeTessFactor",
	SystemValueFinalTriWEq0EdgeTessFactor:  "finalTriWeq0EdgeTessFactor",
	SystemValueFinalTriInsideTessFactor:    "finalTriInsideTessFactor",
	SystemValueFinalLineDetailTessFactor:   "finalLineDetailTessFactor",
	SystemValueFinalLineDensityTessFactor:  "finalLineDensityTessFactor",
	SystemValueTarget:                      "target",
	SystemValueDepth:                       "depth",
	SystemValueCoverage:                    "coverage",
	SystemValueDepthGreaterEqual:           "depth_greater_equal",
	SystemValueDepthLessEqual:              "depth_less_equal",
	SystemValueStencilRef:                  "stencil_ref",
	SystemValueInnerCoverage:               "inner_coverage",
}

// String returns the disassembler name of the system value.
func (v SystemValue) String() string {
	if s, ok := systemValueNames[v]; ok {
		return s
	}
	return fmt.Sprintf("system_value(%d)", uint32(v))
}

// ComponentType is the scalar type of a signature element's components.
type ComponentType uint32

const (
	ComponentTypeUnknown ComponentType = iota
	ComponentTypeUint32
	ComponentTypeInt32
	ComponentTypeFloat32
)

// String returns the component type name.
func (t ComponentType) String() string {
	switch t {
	case ComponentTypeUnknown:
		return "unknown"
	case ComponentTypeUint32:
		return "uint"
	case ComponentTypeInt32:
		return "int"
	case ComponentTypeFloat32:
		return "float"
	default:
		return fmt.Sprintf("component_type(%d)", uint32(t))
	}
}

// Element describes one input or output variable of a shader stage.
type Element struct {
	Name          string
	SemanticIndex uint32
	SystemValue   SystemValue
	ComponentType ComponentType
	Register      uint32
	Mask          uint8
	ReadWriteMask uint8
	Stream        uint8
}

// Signature is the ordered element list of an ISGN or OSGN chunk.
type Signature struct {
	Key      uint32
	Elements []Element
}

// Legacy semantic names and the canonical names they are rewritten to.
var semanticAliases = map[string]string{
	"BLENDWEIGHTS": "BLENDWEIGHT",
}

// NormalizeSemantics renames legacy semantic aliases to their canonical form.
// It returns the number of elements renamed.
func (s *Signature) NormalizeSemantics() int {
	n := 0
	for i := range s.Elements {
		if canonical, ok := semanticAliases[s.Elements[i].Name]; ok {
			s.Elements[i].Name = canonical
			n++
		}
	}
	return n
}

// Lookup returns the first element with the given semantic name and index.
func (s *Signature) Lookup(name string, index uint32) (Element, bool) {
	for _, e := range s.Elements {
		if e.Name == name && e.SemanticIndex == index {
			return e, true
		}
	}
	return Element{}, false
}

// DecodeSignature decodes the signature payload starting at chunkStart in data.
// Element name offsets are relative to chunkStart.
func DecodeSignature(data []byte, chunkStart int) (Signature, error) {
	var sig Signature

	r := wire.NewReader(data)
	r.Seek(chunkStart)

	count, err := r.Uint32()
	if err != nil {
		return sig, fmt.Errorf("signature element count: %w", err)
	}
	if sig.Key, err = r.Uint32(); err != nil {
		return sig, fmt.Errorf("signature key: %w", err)
	}
	if uint64(count)*elementSize > uint64(r.Remaining()) {
		return sig, wire.Errorf(wire.ErrTruncatedBuffer, r.Pos(), "%d signature elements do not fit in %d bytes", count, r.Remaining())
	}

	sig.Elements = make([]Element, 0, count)
	names := wire.NewReader(data)
	for i := uint32(0); i < count; i++ {
		var e Element
		nameOffset, err := r.Uint32()
		if err != nil {
			return sig, err
		}
		names.Seek(chunkStart + int(nameOffset))
		if e.Name, err = names.CString(); err != nil {
			return sig, fmt.Errorf("signature element %d name: %w", i, err)
		}

		var words [4]uint32
		for j := range words {
			if words[j], err = r.Uint32(); err != nil {
				return sig, err
			}
		}
		e.SemanticIndex = words[0]
		e.SystemValue = SystemValue(words[1])
		e.ComponentType = ComponentType(words[2])
		e.Register = words[3]

		var bytes [4]uint8
		for j := range bytes {
			if bytes[j], err = r.Uint8(); err != nil {
				return sig, err
			}
		}
		e.Mask, e.ReadWriteMask, e.Stream = bytes[0], bytes[1], bytes[2]

		sig.Elements = append(sig.Elements, e)
	}

	return sig, nil
}

// EncodeSignature encodes a signature payload. Elements sharing a name share a
// single name-table entry; names follow the records in first-use order.
func EncodeSignature(sig Signature) []byte {
	w := wire.NewWriter(signatureHeaderSize + len(sig.Elements)*(elementSize+16))
	w.Uint32(uint32(len(sig.Elements)))
	w.Uint32(sig.Key)

	offsets := make(map[string]uint32, len(sig.Elements))
	unique := make([]string, 0, len(sig.Elements))
	next := uint32(signatureHeaderSize + len(sig.Elements)*elementSize)
	for _, e := range sig.Elements {
		off, ok := offsets[e.Name]
		if !ok {
			off = next
			offsets[e.Name] = off
			unique = append(unique, e.Name)
			next += uint32(len(e.Name) + 1)
		}
		w.Uint32(off)
		w.Uint32(e.SemanticIndex)
		w.Uint32(uint32(e.SystemValue))
		w.Uint32(uint32(e.ComponentType))
		w.Uint32(e.Register)
		w.Uint8(e.Mask)
		w.Uint8(e.ReadWriteMask)
		w.Uint8(e.Stream)
		w.Uint8(0)
	}

	n := 0
	for _, name := range unique {
		w.Write([]byte(name))
		w.Uint8(0)
		n += len(name) + 1
	}
	for ; n%4 != 0; n++ {
		w.Uint8(namePadding)
	}

	return w.Bytes()
}
