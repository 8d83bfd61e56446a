// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package container reads and writes DXBC shader containers.
//
// A container is a 32-byte header (magic, checksum, version, total size,
// chunk count) followed by a table of chunk offsets and the chunks
// themselves. Each chunk is a FourCC tag, a payload size and the payload.
// This package understands the input signature (ISGN), output signature
// (OSGN, OSG1, OSG5) and program (SHDR, SHEX) chunks; a fixed set of
// metadata chunks is recognized and dropped, and any other tag is an error.
//
// Written containers always hold exactly three chunks in canonical order:
// ISGN, OSGN, then SHDR or SHEX.
package container

import (
	"fmt"

	"github.com/gogpu/dxbc/checksum"
	"github.com/gogpu/dxbc/wire"
)

// HeaderSize is the size of the fixed container header, before the chunk
// offset table.
const HeaderSize = 32

// Chunk and container tags.
var (
	TagDXBC = wire.MakeFourCC('D', 'X', 'B', 'C')

	TagISGN = wire.MakeFourCC('I', 'S', 'G', 'N')
	TagOSGN = wire.MakeFourCC('O', 'S', 'G', 'N')
	TagOSG1 = wire.MakeFourCC('O', 'S', 'G', '1')
	TagOSG5 = wire.MakeFourCC('O', 'S', 'G', '5')
	TagSHDR = wire.MakeFourCC('S', 'H', 'D', 'R')
	TagSHEX = wire.MakeFourCC('S', 'H', 'E', 'X')

	// TagAon9 holds DX9 bytecode for feature level 9.x profiles.
	TagAon9 = wire.MakeFourCC('A', 'o', 'n', '9')
)

// Tags that are recognized but not carried into the rewritten container.
var unusedTags = map[wire.FourCC]string{
	wire.MakeFourCC('I', 'F', 'C', 'E'): "interface",
	wire.MakeFourCC('R', 'D', 'E', 'F'): "resource definition",
	wire.MakeFourCC('S', 'D', 'G', 'B'): "debug info (old)",
	wire.MakeFourCC('S', 'P', 'D', 'B'): "debug info",
	wire.MakeFourCC('S', 'F', 'I', '0'): "feature info",
	wire.MakeFourCC('S', 'T', 'A', 'T'): "statistics",
	wire.MakeFourCC('P', 'C', 'S', 'G'): "patch constant signature",
	wire.MakeFourCC('P', 'S', 'O', '1'): "pipeline state object 1",
	wire.MakeFourCC('P', 'S', 'O', '2'): "pipeline state object 2",
	wire.MakeFourCC('X', 'N', 'A', 'P'): "xnap",
	wire.MakeFourCC('X', 'N', 'A', 'S'): "xnas",
}

// Describe returns a short description of a recognized unused chunk tag.
func Describe(tag wire.FourCC) (string, bool) {
	if tag == TagAon9 {
		return "feature level 9 bytecode", true
	}
	s, ok := unusedTags[tag]
	return s, ok
}

// Header is the fixed container header.
type Header struct {
	Magic      wire.FourCC
	Checksum   [16]byte
	Version    uint32
	Size       uint32
	ChunkCount uint32
}

// Program is the payload of a SHDR or SHEX chunk.
type Program struct {
	// Version is the raw program version token; see bytecode.ParseVersion.
	Version uint32

	// Tokens is the instruction stream, without the version and length words.
	Tokens []byte

	// Extended is true for SHEX (shader model 5) chunks.
	Extended bool
}

// Container is a decoded DXBC container.
type Container struct {
	Header  Header
	Input   Signature
	Output  Signature
	Program Program

	// Skipped lists recognized chunks that were read but are not written back.
	Skipped []wire.FourCC

	// Chunks lists every chunk in table order as found by Read. Write
	// ignores it.
	Chunks []Chunk
}

// Chunk locates one chunk of a read container.
type Chunk struct {
	Tag    wire.FourCC
	Offset uint32
	Size   uint32
}

// ReadOption modifies how Read treats optional chunks.
type ReadOption func(*readOptions)

type readOptions struct {
	dropLevel9 bool
}

// DropLevel9 makes Read skip Aon9 chunks instead of rejecting them. The
// feature level 9 bytecode they hold is not rewritten, so it would no longer
// match the patched program.
func DropLevel9() ReadOption {
	return func(o *readOptions) { o.dropLevel9 = true }
}

// Read decodes a container. Chunks may appear in any order.
func Read(data []byte, opts ...ReadOption) (*Container, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	r := wire.NewReader(data)
	c := &Container{}

	if err := readHeader(r, &c.Header); err != nil {
		return nil, err
	}

	tableEnd := uint64(HeaderSize) + uint64(c.Header.ChunkCount)*4
	if tableEnd > uint64(len(data)) {
		return nil, wire.Errorf(wire.ErrTruncatedBuffer, HeaderSize,
			"chunk table of %d entries does not fit in %d bytes", c.Header.ChunkCount, len(data))
	}

	var haveInput, haveOutput, haveProgram bool
	for i := 0; i < int(c.Header.ChunkCount); i++ {
		r.Seek(HeaderSize + i*4)
		offset, err := r.Uint32()
		if err != nil {
			return nil, err
		}

		r.Seek(int(offset))
		raw, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("chunk %d header: %w", i, err)
		}
		size, err := r.Uint32()
		if err != nil {
			return nil, fmt.Errorf("chunk %d header: %w", i, err)
		}
		start := r.Pos()
		if uint64(start)+uint64(size) > uint64(len(data)) {
			return nil, wire.Errorf(wire.ErrTruncatedBuffer, start, "chunk %q declares %d bytes, %d available", wire.FourCC(raw), size, len(data)-start)
		}
		payload := data[:start+int(size)]

		tag := wire.FourCC(raw)
		c.Chunks = append(c.Chunks, Chunk{Tag: tag, Offset: offset, Size: size})
		switch tag {
		case TagSHDR, TagSHEX:
			if haveProgram {
				return nil, wire.Errorf(wire.ErrMalformedContainer, int(offset), "second program chunk %q", tag)
			}
			haveProgram = true
			if c.Program, err = readProgram(payload, start); err != nil {
				return nil, fmt.Errorf("program chunk: %w", err)
			}
			c.Program.Extended = tag == TagSHEX

		case TagISGN:
			if haveInput {
				return nil, wire.Errorf(wire.ErrMalformedContainer, int(offset), "second input signature")
			}
			haveInput = true
			if c.Input, err = DecodeSignature(payload, start); err != nil {
				return nil, fmt.Errorf("input signature: %w", err)
			}

		case TagOSGN, TagOSG1, TagOSG5:
			if haveOutput {
				return nil, wire.Errorf(wire.ErrMalformedContainer, int(offset), "second output signature")
			}
			haveOutput = true
			if c.Output, err = DecodeSignature(payload, start); err != nil {
				return nil, fmt.Errorf("output signature: %w", err)
			}

		case TagAon9:
			if !o.dropLevel9 {
				return nil, wire.Errorf(wire.ErrUnsupportedFeature, int(offset), "feature level 9 bytecode is not supported")
			}
			c.Skipped = append(c.Skipped, tag)

		default:
			if _, ok := unusedTags[tag]; !ok {
				return nil, wire.Errorf(wire.ErrUnrecognizedChunkTag, int(offset), "unrecognized chunk %q (0x%08x)", tag, raw)
			}
			c.Skipped = append(c.Skipped, tag)
		}
	}

	if !haveProgram {
		return nil, wire.NewError(wire.ErrMalformedContainer, "container has no SHDR or SHEX chunk")
	}

	return c, nil
}

// readHeader checks the magic before reading the rest of the header.
func readHeader(r *wire.Reader, h *Header) error {
	magic, err := r.Uint32()
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	h.Magic = wire.FourCC(magic)
	if h.Magic != TagDXBC {
		return wire.Errorf(wire.ErrBadMagic, 0, "magic %q, want %q", h.Magic, TagDXBC)
	}
	hash, err := r.Bytes(16)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	copy(h.Checksum[:], hash)
	if h.Version, err = r.Uint32(); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if h.Size, err = r.Uint32(); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if h.ChunkCount, err = r.Uint32(); err != nil {
		return fmt.Errorf("header: %w", err)
	}
	return nil
}

func readProgram(data []byte, start int) (Program, error) {
	var p Program
	r := wire.NewReader(data)
	r.Seek(start)

	var err error
	if p.Version, err = r.Uint32(); err != nil {
		return p, err
	}
	words, err := r.Uint32()
	if err != nil {
		return p, err
	}
	if words < 2 {
		return p, wire.Errorf(wire.ErrMalformedContainer, start+4, "program length %d words is shorter than its header", words)
	}
	p.Tokens, err = r.Bytes(int(words-2) * 4)
	return p, err
}

// Write encodes c as a canonical three-chunk container and stamps its checksum.
func Write(c *Container) ([]byte, error) {
	if len(c.Program.Tokens)%4 != 0 {
		return nil, wire.Errorf(wire.ErrMalformedContainer, -1, "program token stream is %d bytes, not a multiple of 4", len(c.Program.Tokens))
	}

	const chunkCount = 3
	w := wire.NewWriter(HeaderSize + chunkCount*4 + len(c.Program.Tokens) + 256)

	w.Uint32(uint32(TagDXBC))
	w.Zeros(16) // checksum, stamped last
	w.Uint32(1)
	sizeOffset := w.Len()
	w.Uint32(0)
	w.Uint32(chunkCount)
	tableOffset := w.Len()
	w.Zeros(chunkCount * 4)

	programTag := TagSHDR
	if c.Program.Extended {
		programTag = TagSHEX
	}

	chunks := []struct {
		tag     wire.FourCC
		payload []byte
	}{
		{TagISGN, EncodeSignature(c.Input)},
		{TagOSGN, EncodeSignature(c.Output)},
		{programTag, encodeProgram(c.Program)},
	}

	for i, chunk := range chunks {
		start := w.Len()
		w.PutUint32At(tableOffset+i*4, uint32(start))
		w.Uint32(uint32(chunk.tag))
		w.Uint32(0)
		w.Write(chunk.payload)
		w.PutUint32At(start+4, uint32(w.Len()-start-8))
	}

	out := w.Bytes()
	w.PutUint32At(sizeOffset, uint32(len(out)))
	checksum.Stamp(out)
	return out, nil
}

func encodeProgram(p Program) []byte {
	w := wire.NewWriter(8 + len(p.Tokens))
	w.Uint32(p.Version)
	w.Uint32(uint32(len(p.Tokens)/4 + 2))
	w.Write(p.Tokens)
	return w.Bytes()
}
