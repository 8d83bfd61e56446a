// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package dxbc rewrites the register layout of compiled Direct3D shader
// containers.
//
// A DXBC container holds the input and output signatures and the SM4/SM5
// bytecode of one shader stage. PatchContainer decodes it, merges every
// constant buffer into cb0, renumbers texture registers to match their
// samplers, and writes a new container with a fresh checksum.
//
// Example usage:
//
//	remap, _ := patch.Parse("2:5,7:7")
//	out, err := dxbc.PatchContainer(data, remap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For tooling, Inspect returns the decoded container without patching it:
//
//	m, _ := dxbc.Inspect(data)
//	bytecode.Disassemble(os.Stdout, m.Instructions)
package dxbc

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/gogpu/dxbc/bytecode"
	"github.com/gogpu/dxbc/container"
	"github.com/gogpu/dxbc/patch"
	"github.com/gogpu/dxbc/snapshot"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("dxbc")

// Options configures PatchContainer.
type Options struct {
	// SelfCheck re-encodes the decoded, unpatched program, decodes it again
	// and requires the two models to be identical before patching.
	SelfCheck bool

	// DropLevel9 drops Aon9 chunks instead of failing on them. The patched
	// container then only runs on feature level 10 and above.
	DropLevel9 bool

	// Logger receives progress messages. Defaults to the "dxbc" logger.
	Logger commonlog.Logger
}

// Option modifies Options.
type Option func(*Options)

// WithSelfCheck enables or disables the encoder/decoder self-check.
func WithSelfCheck(enabled bool) Option {
	return func(o *Options) { o.SelfCheck = enabled }
}

// WithDropLevel9 enables or disables dropping feature level 9 bytecode.
func WithDropLevel9(enabled bool) Option {
	return func(o *Options) { o.DropLevel9 = enabled }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l commonlog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{Logger: log}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = log
	}
	return o
}

// Module is a decoded container.
type Module struct {
	Container    *container.Container
	Version      bytecode.ProgramVersion
	Instructions []bytecode.Instruction
	CBuffers     bytecode.CBufferTable
}

// Inspect decodes a container and its program without modifying it. Only
// DropLevel9 of the options is used.
func Inspect(data []byte, opts ...Option) (*Module, error) {
	var readOpts []container.ReadOption
	if buildOptions(opts).DropLevel9 {
		readOpts = append(readOpts, container.DropLevel9())
	}
	c, err := container.Read(data, readOpts...)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}
	version := bytecode.ParseVersion(c.Program.Version)
	if (version.Type == bytecode.ProgramHull || version.Type == bytecode.ProgramDomain) && !version.SupportsTessellation() {
		return nil, NewError(ErrMalformedContainer, fmt.Sprintf("%s program: %s shaders need shader model 5", version, version.Type))
	}
	instrs, table, err := bytecode.Decode(c.Program.Tokens)
	if err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return &Module{
		Container:    c,
		Version:      version,
		Instructions: instrs,
		CBuffers:     table,
	}, nil
}

// PatchContainer merges all constant buffers into cb0, applies the texture
// remap, and returns the rewritten container.
//
// The pipeline is:
//  1. Read the container and decode the program
//  2. Self-check the codec (if enabled)
//  3. Patch the instructions
//  4. Encode the program and normalize the input signature
//  5. Write the container and stamp its checksum
//
// The input is never modified. On error no output is returned.
func PatchContainer(data []byte, remap patch.TextureRemap, opts ...Option) ([]byte, error) {
	o := buildOptions(opts)

	m, err := Inspect(data, opts...)
	if err != nil {
		return nil, err
	}
	c := m.Container
	if m.Version.UsesExtendedChunk() != c.Program.Extended {
		o.Logger.Debugf("%s program stored in a %s chunk", m.Version, programTag(c.Program.Extended))
	}
	for _, tag := range c.Skipped {
		desc, _ := container.Describe(tag)
		o.Logger.Debugf("dropping %s chunk (%s)", tag, desc)
	}

	if o.SelfCheck {
		if err := selfCheck(c, m.Instructions); err != nil {
			return nil, err
		}
		o.Logger.Debugf("%s: self-check passed for %d instructions", m.Version, len(m.Instructions))
	}

	res, err := patch.Patch(m.Instructions, m.CBuffers, remap)
	if err != nil {
		return nil, err
	}
	tokens, err := bytecode.Encode(res.Instructions)
	if err != nil {
		return nil, fmt.Errorf("encode program: %w", err)
	}

	out := *c
	out.Program.Tokens = tokens
	out.Input.Elements = append([]container.Element(nil), c.Input.Elements...)
	if n := out.Input.NormalizeSemantics(); n > 0 {
		o.Logger.Debugf("renamed %d legacy input semantics", n)
	}

	written, err := container.Write(&out)
	if err != nil {
		return nil, fmt.Errorf("write container: %w", err)
	}

	o.Logger.Infof("%s: %d textures remapped, %d constant buffer usages merged into cb0 (%d components), %d declarations dropped",
		m.Version, res.TexturesRemapped, res.BuffersMerged, m.CBuffers.Total(), res.Dropped)
	return written, nil
}

func programTag(extended bool) string {
	if extended {
		return container.TagSHEX.String()
	}
	return container.TagSHDR.String()
}

// selfCheck writes the unpatched model, reads it back and compares the
// snapshots of both.
func selfCheck(c *container.Container, instrs []bytecode.Instruction) error {
	tokens, err := bytecode.Encode(instrs)
	if err != nil {
		return fmt.Errorf("self-check encode: %w", err)
	}
	rewritten := *c
	rewritten.Program.Tokens = tokens
	data, err := container.Write(&rewritten)
	if err != nil {
		return fmt.Errorf("self-check write: %w", err)
	}

	back, err := Inspect(data)
	if err != nil {
		return NewError(ErrSelfCheckMismatch, fmt.Sprintf("re-decoding failed: %v", err))
	}

	want, err := snapshot.Take(c, instrs)
	if err != nil {
		return err
	}
	got, err := snapshot.Take(back.Container, back.Instructions)
	if err != nil {
		return err
	}
	if snapshot.Equal(want, got) {
		return nil
	}

	before, _ := snapshot.Text(c, instrs)
	after, _ := snapshot.Text(back.Container, back.Instructions)
	if before == after {
		return NewError(ErrSelfCheckMismatch, "decoded model changed across encode in fields the listing does not show")
	}
	return NewError(ErrSelfCheckMismatch, "decoded model changed across encode:\n"+snapshot.Diff(before, after))
}
