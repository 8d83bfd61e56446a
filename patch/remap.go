// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package patch

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TextureRemap maps an original texture register (t#) to the sampler
// register (s#) it must match. Registers without an entry keep their number.
type TextureRemap map[uint32]uint32

// Parse parses a remap table in "texture:sampler" pairs separated by commas,
// for example "2:5,7:7". An empty string yields an empty table.
//
// A texture register may only appear once.
func Parse(s string) (TextureRemap, error) {
	remap := TextureRemap{}
	s = strings.TrimSpace(s)
	if s == "" {
		return remap, nil
	}
	for _, pair := range strings.Split(s, ",") {
		tex, smp, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return nil, fmt.Errorf("remap entry %q: want texture:sampler", pair)
		}
		t, err := parseRegister(tex, "t")
		if err != nil {
			return nil, fmt.Errorf("remap entry %q: %w", pair, err)
		}
		r, err := parseRegister(smp, "s")
		if err != nil {
			return nil, fmt.Errorf("remap entry %q: %w", pair, err)
		}
		if _, dup := remap[t]; dup {
			return nil, fmt.Errorf("remap entry %q: texture register t%d mapped twice", pair, t)
		}
		remap[t] = r
	}
	return remap, nil
}

// parseRegister accepts a decimal register number with an optional register
// prefix, so "t2" and "2" are the same texture register.
func parseRegister(s, prefix string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), prefix)
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid register %q", s)
	}
	return uint32(v), nil
}

// Lookup returns the sampler register paired with texture register t.
func (m TextureRemap) Lookup(t uint32) (uint32, bool) {
	s, ok := m[t]
	return s, ok
}

// String formats the table in the form accepted by Parse, ordered by texture
// register.
func (m TextureRemap) String() string {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%d:%d", k, m[k])
	}
	return sb.String()
}

// Set implements flag.Value. Repeated flags accumulate; a texture register
// may be mapped only once across all of them.
func (m *TextureRemap) Set(s string) error {
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	for k := range parsed {
		if _, dup := (*m)[k]; dup {
			return fmt.Errorf("remap %q: texture register t%d mapped twice", s, k)
		}
	}
	if *m == nil {
		*m = TextureRemap{}
	}
	for k, v := range parsed {
		(*m)[k] = v
	}
	return nil
}
