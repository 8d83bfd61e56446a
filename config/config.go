// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads dxbcpatch job files.
//
// A job file lists shader containers to patch together with their texture
// remap tables:
//
//	self-check = true
//	drop-level9 = true
//	jobs = 4
//
//	[log]
//	verbosity = 1
//
//	[[shader]]
//	input = "lit.ps.dxbc"
//	output = "lit.ps.patched.dxbc"
//	[shader.textures]
//	"2" = 5
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/dxbc/patch"
)

// Config is a parsed job file.
type Config struct {
	SelfCheck  bool     `toml:"self-check"`
	DropLevel9 bool     `toml:"drop-level9"`
	Jobs       int      `toml:"jobs"`
	Log        Log      `toml:"log"`
	Shaders    []Shader `toml:"shader"`

	// Dir is the directory containing the job file (set at load time).
	// Relative shader paths are resolved against it.
	Dir string `toml:"-"`
}

// Log configures commonlog output.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Shader is one container to patch.
type Shader struct {
	Input  string `toml:"input"`
	Output string `toml:"output"`

	// Textures maps texture registers, written as decimal strings, to sampler
	// registers.
	Textures map[string]uint32 `toml:"textures"`

	remap patch.TextureRemap
}

// Remap returns the validated texture remap table of the shader.
func (s *Shader) Remap() patch.TextureRemap {
	return s.remap
}

// Load parses and validates the job file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c, err := Parse(data, dir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse parses job file contents. Relative shader paths are resolved
// against dir.
func Parse(data []byte, dir string) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	c.Dir = dir

	// Defaults
	if c.Jobs <= 0 {
		c.Jobs = runtime.NumCPU()
	}

	outputs := make(map[string]int, len(c.Shaders))
	for i := range c.Shaders {
		s := &c.Shaders[i]
		if s.Input == "" {
			return nil, fmt.Errorf("shader %d: missing input", i)
		}
		if s.Output == "" {
			s.Output = DefaultOutput(s.Input)
		}
		s.Input = c.resolve(s.Input)
		s.Output = c.resolve(s.Output)
		if s.Input == s.Output {
			return nil, fmt.Errorf("shader %d: output would overwrite input %s", i, s.Input)
		}
		if prev, dup := outputs[s.Output]; dup {
			return nil, fmt.Errorf("shader %d: output %s already written by shader %d", i, s.Output, prev)
		}
		outputs[s.Output] = i

		if s.remap, err = parseTextures(s.Textures); err != nil {
			return nil, fmt.Errorf("shader %d (%s): %w", i, s.Input, err)
		}
	}

	return &c, nil
}

// DefaultOutput returns the output path used when a shader has none:
// "lit.ps.dxbc" becomes "lit.ps.patched.dxbc".
func DefaultOutput(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + ".patched" + ext
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}

func parseTextures(textures map[string]uint32) (patch.TextureRemap, error) {
	pairs := make([]string, 0, len(textures))
	for k, v := range textures {
		if strings.ContainsAny(k, ":,") {
			return nil, fmt.Errorf("invalid texture register %q", k)
		}
		pairs = append(pairs, fmt.Sprintf("%s:%d", k, v))
	}
	return patch.Parse(strings.Join(pairs, ","))
}
