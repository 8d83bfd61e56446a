// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package snapshot

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/gogpu/dxbc/bytecode"
	"github.com/gogpu/dxbc/container"
)

func tokens(ws ...uint32) []byte {
	b := make([]byte, 0, 4*len(ws))
	for _, w := range ws {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

// sampleContainer is a ps_5_0 program that writes cb0[1] to o0.
func sampleContainer() *container.Container {
	return &container.Container{
		Input: container.Signature{Key: 8, Elements: []container.Element{
			{Name: "TEXCOORD", Register: 0, Mask: 0x3, ReadWriteMask: 0x3, ComponentType: container.ComponentTypeFloat32},
		}},
		Output: container.Signature{Key: 8, Elements: []container.Element{
			{Name: "SV_Target", Register: 0, Mask: 0xf, ComponentType: container.ComponentTypeFloat32, SystemValue: container.SystemValueTarget},
		}},
		Program: container.Program{
			Version:  0x00000050,
			Extended: true,
			Tokens: tokens(
				0x04000059, 0x00208e46, 0, 2,                // dcl_constantbuffer cb0[2]
				0x03000065, 0x001020f2, 0,                   // dcl_output o0.xyzw
				0x06000036, 0x001020f2, 0, 0x00208e46, 0, 1, // mov o0.xyzw, cb0[1].xyzw
				0x0100003e,                                  // ret
			),
		},
	}
}

func decode(t *testing.T, c *container.Container) []bytecode.Instruction {
	t.Helper()
	instrs, _, err := bytecode.Decode(c.Program.Tokens)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return instrs
}

func TestTake_Deterministic(t *testing.T) {
	c := sampleContainer()
	a, err := Take(c, decode(t, c))
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	b, err := Take(c, decode(t, c))
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if !Equal(a, b) {
		t.Error("two snapshots of the same container differ")
	}
}

func TestTake_SurvivesWrite(t *testing.T) {
	c := sampleContainer()
	before, err := Take(c, decode(t, c))
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}

	data, err := container.Write(c)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	back, err := container.Read(data)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	after, err := Take(back, decode(t, back))
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if !Equal(before, after) {
		t.Error("snapshot changed across Write and Read")
	}
}

func TestTake_DetectsChange(t *testing.T) {
	c := sampleContainer()
	instrs := decode(t, c)
	base, err := Take(c, instrs)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(c *container.Container, instrs []bytecode.Instruction)
	}{
		{"operand index", func(_ *container.Container, instrs []bytecode.Instruction) {
			instrs[2].Operands[1].Indices[1].Value = 0
		}},
		{"flag", func(_ *container.Container, instrs []bytecode.Instruction) {
			instrs[2].Saturate = true
		}},
		{"signature name", func(c *container.Container, _ []bytecode.Instruction) {
			c.Input.Elements = []container.Element{{Name: "COLOR"}}
		}},
		{"version", func(c *container.Container, _ []bytecode.Instruction) {
			c.Program.Version = 0x00000040
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := sampleContainer()
			instrs := decode(t, c)
			tt.mutate(c, instrs)
			got, err := Take(c, instrs)
			if err != nil {
				t.Fatalf("Take() error = %v", err)
			}
			if Equal(base, got) {
				t.Error("snapshot did not change")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	c := sampleContainer()
	data, err := Take(c, decode(t, c))
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	m, err := Load(data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.Version != 0x50 || !m.Extended || len(m.Instructions) != 4 {
		t.Fatalf("Load() = version 0x%x, extended %v, %d instructions", m.Version, m.Extended, len(m.Instructions))
	}
	if m.Instructions[2].Opcode != bytecode.OpMov || m.Instructions[2].Operands[1].Indices[1].Value != 1 {
		t.Errorf("mov = %+v", m.Instructions[2])
	}
	if m.Output.Elements[0].Name != "SV_Target" {
		t.Errorf("output = %+v", m.Output)
	}

	if _, err := Load([]byte{0xff}); err == nil {
		t.Error("Load(garbage) succeeded")
	}
}

func TestText(t *testing.T) {
	c := sampleContainer()
	got, err := Text(c, decode(t, c))
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}

	want := strings.Join([]string{
		"// ps_5_0",
		"// input signature (1 elements)",
		"//   TEXCOORD0 r0 mask 0x3/0x3 float undefined stream 0",
		"// output signature (1 elements)",
		"//   SV_Target0 r0 mask 0xf/0x0 float target stream 0",
		"dcl_constantbuffer cb0[2].xyzw, immediateIndexed",
		"dcl_output o0.xyzw",
		"mov o0.xyzw, cb0[1].xyzw",
		"ret",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Text() differs:\n%s", Diff(want, got))
	}
}

func TestDiff(t *testing.T) {
	if got := Diff("a\nb", "a\nb"); got != "(no difference found)" {
		t.Errorf("Diff(equal) = %q", got)
	}

	got := Diff("a\nb\nc", "a\nx\nc")
	for _, want := range []string{"first difference at line 2", "!    2 expected: b", "!    2 actual:   x", "     1 expected: a"} {
		if !strings.Contains(got, want) {
			t.Errorf("Diff() is missing %q:\n%s", want, got)
		}
	}

	if got := Diff("a", "a\nextra"); !strings.Contains(got, "line 2") {
		t.Errorf("Diff(longer) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("0123456789abc", 10); got != "0123456..." {
		t.Errorf("truncate(long) = %q", got)
	}
}
