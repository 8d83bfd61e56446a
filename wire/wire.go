// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wire provides the little-endian primitives shared by the DXBC
// container, signature and bytecode codecs.
//
// A Reader never panics on short input: every read past the end of the
// buffer returns an *Error of kind ErrTruncatedBuffer carrying the offset.
// A Writer is an append-only buffer that can patch previously written words,
// which the container writer needs for chunk sizes and the offset table.
package wire

import "encoding/binary"

// FourCC is a four character chunk or container tag stored little-endian.
type FourCC uint32

// MakeFourCC packs four ASCII bytes, first byte lowest.
func MakeFourCC(a, b, c, d byte) FourCC {
	return FourCC(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

// String returns the tag as text; non-printable bytes are shown as '?'.
func (f FourCC) String() string {
	b := [4]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)}
	for i, c := range b {
		if c < 0x20 || c > 0x7e {
			b[i] = '?'
		}
	}
	return string(b[:])
}

// Reader reads little-endian values from a byte slice.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total length of the underlying buffer.
func (r *Reader) Len() int { return len(r.data) }

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

// Seek moves the read offset. Seeking past the end is reported on the next read.
func (r *Reader) Seek(pos int) { r.pos = pos }

func (r *Reader) need(n int) error {
	if r.pos < 0 || n < 0 || r.pos+n > len(r.data) {
		return Errorf(ErrTruncatedBuffer, r.pos, "need %d bytes, %d available", n, max(0, len(r.data)-r.pos))
	}
	return nil
}

// Uint8 reads one byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// Uint32 reads a little-endian 32-bit word.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// Uint64 reads a little-endian 64-bit value.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// Bytes returns the next n bytes as a copy.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	copy(b, r.data[r.pos:r.pos+n])
	r.pos += n
	return b, nil
}

// CString reads a null-terminated string starting at the current offset.
func (r *Reader) CString() (string, error) {
	start := r.pos
	for i := start; i < len(r.data); i++ {
		if r.data[i] == 0 {
			r.pos = i + 1
			return string(r.data[start:i]), nil
		}
	}
	return "", Errorf(ErrTruncatedBuffer, start, "unterminated string")
}

// Writer accumulates little-endian values.
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *Writer) Len() int { return len(w.buf) }

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Uint8 appends one byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Uint32 appends a 32-bit word.
func (w *Writer) Uint32(v uint32) { w.buf = binary.LittleEndian.AppendUint32(w.buf, v) }

// Uint64 appends a 64-bit value.
func (w *Writer) Uint64(v uint64) { w.buf = binary.LittleEndian.AppendUint64(w.buf, v) }

// Write appends raw bytes.
func (w *Writer) Write(p []byte) { w.buf = append(w.buf, p...) }

// Zeros appends n zero bytes.
func (w *Writer) Zeros(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// PutUint32At overwrites a previously written word at offset.
func (w *Writer) PutUint32At(offset int, v uint32) {
	binary.LittleEndian.PutUint32(w.buf[offset:], v)
}
