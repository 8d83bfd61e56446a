// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package container

import (
	"encoding/binary"
	"testing"

	"github.com/gogpu/dxbc/wire"
)

func TestEncodeSignature_Layout(t *testing.T) {
	sig := Signature{
		Key: 8,
		Elements: []Element{
			{Name: "TEXCOORD", Register: 0, Mask: 0x3},
			{Name: "TEXCOORD", SemanticIndex: 1, Register: 1, Mask: 0x3},
			{Name: "COLOR", Register: 2, Mask: 0xf},
		},
	}
	b := EncodeSignature(sig)

	if len(b)%4 != 0 {
		t.Fatalf("payload length %d is not word aligned", len(b))
	}
	if n := binary.LittleEndian.Uint32(b); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	names := uint32(signatureHeaderSize + 3*elementSize)
	off0 := binary.LittleEndian.Uint32(b[8:])
	off1 := binary.LittleEndian.Uint32(b[8+elementSize:])
	off2 := binary.LittleEndian.Uint32(b[8+2*elementSize:])
	if off0 != names || off1 != names {
		t.Errorf("shared name offsets = %d, %d, want %d", off0, off1, names)
	}
	if want := names + uint32(len("TEXCOORD")+1); off2 != want {
		t.Errorf("second name offset = %d, want %d", off2, want)
	}

	tail := b[names:]
	want := "TEXCOORD\x00COLOR\x00"
	if string(tail[:len(want)]) != want {
		t.Errorf("name table = %q", tail)
	}
	for _, p := range tail[len(want):] {
		if p != namePadding {
			t.Errorf("padding byte = 0x%02x, want 0x%02x", p, namePadding)
		}
	}
}

func TestSignature_RoundTrip(t *testing.T) {
	sig := Signature{
		Key: 8,
		Elements: []Element{
			{Name: "SV_Position", SystemValue: SystemValuePosition, ComponentType: ComponentTypeFloat32, Mask: 0xf, ReadWriteMask: 0x3},
			{Name: "BLENDINDICES", ComponentType: ComponentTypeUint32, Register: 1, Mask: 0xf, ReadWriteMask: 0xf, Stream: 1},
		},
	}
	b := EncodeSignature(sig)

	// Decode with the payload embedded at a non-zero offset.
	framed := append(make([]byte, 12), b...)
	got, err := DecodeSignature(framed, 12)
	if err != nil {
		t.Fatalf("DecodeSignature() error = %v", err)
	}
	if got.Key != sig.Key || len(got.Elements) != len(sig.Elements) {
		t.Fatalf("DecodeSignature() = %+v", got)
	}
	for i := range sig.Elements {
		if got.Elements[i] != sig.Elements[i] {
			t.Errorf("element %d = %+v, want %+v", i, got.Elements[i], sig.Elements[i])
		}
	}
}

func TestDecodeSignature_Errors(t *testing.T) {
	tooMany := wire.NewWriter(8)
	tooMany.Uint32(4)
	tooMany.Uint32(0)

	unterminated := EncodeSignature(Signature{Elements: []Element{{Name: "POSITION"}}})
	unterminated = unterminated[:len(unterminated)-4]

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{1, 0}},
		{"element count past end", tooMany.Bytes()},
		{"unterminated name", unterminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeSignature(tt.data, 0); !wire.IsKind(err, wire.ErrTruncatedBuffer) {
				t.Errorf("DecodeSignature() error = %v, want TruncatedBuffer", err)
			}
		})
	}
}

func TestSignature_NormalizeSemantics(t *testing.T) {
	sig := Signature{Elements: []Element{
		{Name: "POSITION"},
		{Name: "BLENDWEIGHTS"},
		{Name: "BLENDWEIGHTS", SemanticIndex: 1},
	}}
	if n := sig.NormalizeSemantics(); n != 2 {
		t.Errorf("NormalizeSemantics() = %d, want 2", n)
	}
	if _, ok := sig.Lookup("BLENDWEIGHT", 1); !ok {
		t.Error("BLENDWEIGHT1 not found after normalization")
	}
	if _, ok := sig.Lookup("BLENDWEIGHTS", 0); ok {
		t.Error("BLENDWEIGHTS still present after normalization")
	}
}

func TestSystemValue_String(t *testing.T) {
	tests := []struct {
		v    SystemValue
		want string
	}{
		{SystemValuePosition, "position"},
		{SystemValueTarget, "target"},
		{SystemValueInnerCoverage, "inner_coverage"},
		{SystemValue(40), "system_value(40)"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
