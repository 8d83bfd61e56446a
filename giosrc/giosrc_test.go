// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package giosrc

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gioui.org/shader"
	"gioui.org/shader/gio"

	"github.com/gogpu/dxbc"
	"github.com/gogpu/dxbc/checksum"
	"github.com/gogpu/dxbc/container"
	"github.com/gogpu/dxbc/patch"
)

func blob(t *testing.T, input []container.Element, tokens ...uint32) string {
	t.Helper()
	var prog []byte
	for _, w := range tokens {
		prog = binary.LittleEndian.AppendUint32(prog, w)
	}
	data, err := container.Write(&container.Container{
		Input:   container.Signature{Key: 8, Elements: input},
		Program: container.Program{Version: 0x10040, Tokens: prog},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return string(data)
}

func vertexInputs() []container.Element {
	return []container.Element{
		{Name: "POSITION", Mask: 0x3, ComponentType: container.ComponentTypeFloat32},
		{Name: "TEXCOORD", SemanticIndex: 0, Register: 1, Mask: 0x3, ComponentType: container.ComponentTypeFloat32},
		{Name: "BLENDWEIGHTS", Register: 2, Mask: 0xf, ComponentType: container.ComponentTypeFloat32},
	}
}

func TestPatch(t *testing.T) {
	data := blob(t, vertexInputs(),
		0x04000059, 0x00208e46, 0, 2,                // dcl_constantbuffer cb0[2]
		0x04000059, 0x00208e46, 1, 1,                // dcl_constantbuffer cb1[1]
		0x06000036, 0x001000f2, 0, 0x00208e46, 1, 0, // mov r0.xyzw, cb1[0].xyzw
		0x0100003e,
	)
	src := shader.Sources{Name: "blit.vert", GLSL150: "#version 150", DXBC: data}

	got, err := Patch(src, nil)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if got.Name != src.Name || got.GLSL150 != src.GLSL150 {
		t.Error("Patch changed fields other than DXBC")
	}
	if got.DXBC == src.DXBC {
		t.Fatal("DXBC unchanged")
	}

	m, err := dxbc.Inspect([]byte(got.DXBC))
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if m.CBuffers.Len() != 1 || m.CBuffers.Total() != 3 {
		t.Errorf("cbuffers = %+v", m.CBuffers.Decls())
	}
	if v := m.Instructions[1].Operands[1].Indices[1].Value; v != 2 {
		t.Errorf("merged element index = %d, want 2", v)
	}
	if m.Version.String() != "vs_4_0" {
		t.Errorf("version = %s", m.Version)
	}
}

// gioSources returns Gio's reflection data for a shader together with the
// container fxc built for it. Gio only embeds DXBC on Windows.
func gioSources(t *testing.T, src shader.Sources, file string) shader.Sources {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", file))
	if err != nil {
		t.Fatal(err)
	}
	src.DXBC = string(data)
	return src
}

func TestPatch_GioShaders(t *testing.T) {
	tests := []struct {
		file string
		src  shader.Sources
	}{
		{"zblit.frag.0.dxbc", gio.Shader_blit_frag[0]},
		{"zblit.vert.0.dxbc", gio.Shader_blit_vert},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			src := gioSources(t, tt.src, tt.file)

			orig, err := dxbc.Inspect([]byte(src.DXBC), dxbc.WithDropLevel9(true))
			if err != nil {
				t.Fatalf("Inspect() error = %v", err)
			}
			if len(orig.Container.Skipped) == 0 || orig.Container.Skipped[0] != container.TagAon9 {
				t.Errorf("Skipped = %v, want Aon9 first", orig.Container.Skipped)
			}

			got, err := Patch(src, nil, dxbc.WithSelfCheck(true))
			if err != nil {
				t.Fatalf("Patch() error = %v", err)
			}
			if !checksum.Verify([]byte(got.DXBC)) {
				t.Error("patched container checksum does not verify")
			}
			m, err := dxbc.Inspect([]byte(got.DXBC))
			if err != nil {
				t.Fatalf("Inspect(patched) error = %v", err)
			}
			if len(m.Container.Skipped) != 0 {
				t.Errorf("patched container kept %v", m.Container.Skipped)
			}
			// A single constant buffer and no remap leave the program as fxc wrote it.
			if !bytes.Equal(m.Container.Program.Tokens, orig.Container.Program.Tokens) {
				t.Error("program tokens changed")
			}

			if err := CheckInputs(src); err != nil {
				t.Errorf("CheckInputs() error = %v", err)
			}
		})
	}
}

func TestPatch_KeepLevel9(t *testing.T) {
	src := gioSources(t, gio.Shader_blit_frag[0], "zblit.frag.0.dxbc")
	_, err := Patch(src, nil, dxbc.WithDropLevel9(false))
	if !dxbc.IsKind(err, dxbc.ErrUnsupportedFeature) {
		t.Errorf("Patch(WithDropLevel9(false)) error = %v, want UnsupportedFeature", err)
	}
}

func TestPatch_NoDXBC(t *testing.T) {
	src := shader.Sources{Name: "metal.only", MetalLib: "lib"}
	got, err := Patch(src, patch.TextureRemap{0: 1})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if got.MetalLib != "lib" || got.DXBC != "" {
		t.Errorf("Patch() = %+v", got)
	}
}

func TestPatch_Error(t *testing.T) {
	src := shader.Sources{Name: "broken.frag", DXBC: "not a container"}
	got, err := Patch(src, nil)
	if err == nil {
		t.Fatal("Patch() succeeded")
	}
	if !strings.Contains(err.Error(), "broken.frag") || !dxbc.IsKind(err, dxbc.ErrBadMagic) {
		t.Errorf("error = %v", err)
	}
	if got.DXBC != src.DXBC {
		t.Error("failed Patch modified the sources")
	}
}

func TestTextureRemap(t *testing.T) {
	src := shader.Sources{Textures: []shader.TextureBinding{
		{Name: "tex", Binding: 1},
		{Name: "cover", Binding: 0},
		{Name: "unassigned", Binding: 4},
	}}
	got := TextureRemap(src, map[string]uint32{"tex": 0, "cover": 1})
	if got.String() != "0:1,1:0" {
		t.Errorf("TextureRemap() = %s, want 0:1,1:0", got)
	}
}

func TestCheckInputs(t *testing.T) {
	data := blob(t, vertexInputs(), 0x0100003e)

	tests := []struct {
		name    string
		inputs  []shader.InputLocation
		missing string
	}{
		{"all present", []shader.InputLocation{
			{Name: "pos", Semantic: "POSITION"},
			{Name: "uv", Semantic: "TEXCOORD"},
		}, ""},
		{"case insensitive", []shader.InputLocation{{Semantic: "texcoord"}}, ""},
		{"normalized alias", []shader.InputLocation{{Semantic: "BLENDWEIGHT"}}, ""},
		{"wrong index", []shader.InputLocation{{Semantic: "TEXCOORD", SemanticIndex: 1}}, "TEXCOORD1"},
		{"missing", []shader.InputLocation{{Semantic: "COLOR"}, {Semantic: "NORMAL"}}, "COLOR0, NORMAL0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckInputs(shader.Sources{Name: "s", DXBC: data, Inputs: tt.inputs})
			if tt.missing == "" {
				if err != nil {
					t.Errorf("CheckInputs() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("CheckInputs() error = %v, want it to name %s", err, tt.missing)
			}
		})
	}
}

func TestCheckInputs_NoDXBC(t *testing.T) {
	if err := CheckInputs(shader.Sources{Inputs: []shader.InputLocation{{Semantic: "POSITION"}}}); err != nil {
		t.Errorf("CheckInputs() error = %v", err)
	}
}
