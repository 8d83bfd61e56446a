// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package checksum computes the DXBC container checksum.
//
// The checksum is the MD5 compression function run over the container bytes
// following the first 20 header bytes (magic and the checksum field itself),
// finished with a DXBC-specific final block: the bit length goes in the first
// word and (2*size)|1 in the last, instead of the standard MD5 length suffix.
// The result is stored in header bytes 4..20 and is checked by the D3D runtime
// when a shader is created, so it must stay bit-compatible with it.
//
// The checksum is a format self-consistency check, not a security primitive.
package checksum

import (
	"encoding/binary"
	"math/bits"
)

// SkipBytes is the number of leading container bytes excluded from the sum.
const SkipBytes = 20

const (
	hashOffset = 4
	blockSize  = 64
)

var initial = [4]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

// Additive constants for the 64 steps.
var k = [64]uint32{
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee, 0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be, 0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa, 0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed, 0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c, 0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05, 0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039, 0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1, 0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

// Left rotation amounts, four per round.
var shifts = [4][4]int{
	{7, 12, 17, 22},
	{5, 9, 14, 20},
	{4, 11, 16, 23},
	{6, 10, 15, 21},
}

// Sum returns the checksum of a complete container. Bytes before SkipBytes
// are ignored; a container shorter than that sums as empty.
func Sum(container []byte) [4]uint32 {
	var data []byte
	if len(container) > SkipBytes {
		data = container[SkipBytes:]
	}
	return sum(data)
}

// Bytes returns the checksum in its on-disk little-endian byte order.
func Bytes(container []byte) [16]byte {
	h := Sum(container)
	var out [16]byte
	for i, v := range h {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
	return out
}

// Stamp computes the checksum of container and writes it into the header.
// Size and chunk offsets must be final before Stamp is called.
func Stamp(container []byte) {
	if len(container) < SkipBytes {
		return
	}
	h := Bytes(container)
	copy(container[hashOffset:SkipBytes], h[:])
}

// Verify reports whether the checksum stored in the header matches the content.
func Verify(container []byte) bool {
	if len(container) < SkipBytes {
		return false
	}
	h := Bytes(container)
	for i := range h {
		if container[hashOffset+i] != h[i] {
			return false
		}
	}
	return true
}

func sum(data []byte) [4]uint32 {
	h := initial
	size := uint32(len(data))

	full := len(data) / blockSize * blockSize
	for off := 0; off < full; off += blockSize {
		block(&h, data[off:off+blockSize])
	}

	rest := data[full:]
	var last [blockSize]byte
	if len(rest) >= 56 {
		copy(last[:], rest)
		last[len(rest)] = 0x80
		block(&h, last[:])
		last = [blockSize]byte{}
	} else {
		copy(last[4:], rest)
		last[4+len(rest)] = 0x80
	}
	binary.LittleEndian.PutUint32(last[0:], size*8)
	binary.LittleEndian.PutUint32(last[60:], size*2+1)
	block(&h, last[:])

	return h
}

func block(h *[4]uint32, p []byte) {
	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(p[i*4:])
	}

	a, b, c, d := h[0], h[1], h[2], h[3]
	for i := 0; i < 64; i++ {
		var f uint32
		var g int
		round := i / 16
		switch round {
		case 0:
			f = d ^ (b & (c ^ d))
			g = i
		case 1:
			f = c ^ (d & (b ^ c))
			g = (5*i + 1) % 16
		case 2:
			f = b ^ c ^ d
			g = (3*i + 5) % 16
		default:
			f = c ^ (b | ^d)
			g = (7 * i) % 16
		}
		f += a + k[i] + m[g]
		a, d, c = d, c, b
		b += bits.RotateLeft32(f, shifts[round][i%4])
	}

	h[0] += a
	h[1] += b
	h[2] += c
	h[3] += d
}
