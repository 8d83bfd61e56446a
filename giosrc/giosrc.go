// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package giosrc patches the DXBC blob embedded in Gio shader sources.
//
// Gio builds its Direct3D shaders for feature level 9.1 and up, so every
// container carries an Aon9 chunk next to the SM4 program. Patch and
// CheckInputs drop that chunk; the patched shaders need feature level 10.
package giosrc

import (
	"fmt"
	"strings"

	"gioui.org/shader"

	"github.com/gogpu/dxbc"
	"github.com/gogpu/dxbc/container"
	"github.com/gogpu/dxbc/patch"
)

// Patch returns a copy of src whose DXBC container has been rewritten by
// dxbc.PatchContainer. Sources without a DXBC blob are returned unchanged.
// Level 9 bytecode is dropped unless opts contain WithDropLevel9(false).
func Patch(src shader.Sources, remap patch.TextureRemap, opts ...dxbc.Option) (shader.Sources, error) {
	if src.DXBC == "" {
		return src, nil
	}
	opts = append([]dxbc.Option{dxbc.WithDropLevel9(true)}, opts...)
	out, err := dxbc.PatchContainer([]byte(src.DXBC), remap, opts...)
	if err != nil {
		return src, fmt.Errorf("shader %s: %w", src.Name, err)
	}
	src.DXBC = string(out)
	return src, nil
}

// TextureRemap builds the remap table that moves every texture of src to
// the register of its binding, given the texture registers fxc assigned.
// Textures without an entry in assigned keep their register.
func TextureRemap(src shader.Sources, assigned map[string]uint32) patch.TextureRemap {
	remap := patch.TextureRemap{}
	for _, tex := range src.Textures {
		from, ok := assigned[tex.Name]
		if !ok || tex.Binding < 0 {
			continue
		}
		remap[from] = uint32(tex.Binding)
	}
	return remap
}

// CheckInputs verifies that every HLSL input of src appears in the input
// signature of its DXBC container.
func CheckInputs(src shader.Sources) error {
	if src.DXBC == "" || len(src.Inputs) == 0 {
		return nil
	}
	m, err := dxbc.Inspect([]byte(src.DXBC), dxbc.WithDropLevel9(true))
	if err != nil {
		return fmt.Errorf("shader %s: %w", src.Name, err)
	}
	sig := m.Container.Input
	sig.NormalizeSemantics()

	var missing []string
	for _, in := range src.Inputs {
		if !hasInput(sig.Elements, in.Semantic, uint32(in.SemanticIndex)) {
			missing = append(missing, fmt.Sprintf("%s%d", in.Semantic, in.SemanticIndex))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("shader %s: input signature lacks %s", src.Name, strings.Join(missing, ", "))
	}
	return nil
}

// hasInput matches semantic names ignoring case, as HLSL does.
func hasInput(elems []container.Element, name string, index uint32) bool {
	for _, e := range elems {
		if e.SemanticIndex == index && strings.EqualFold(e.Name, name) {
			return true
		}
	}
	return false
}
