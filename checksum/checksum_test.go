// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package checksum

import (
	"os"
	"testing"
)

func pattern(header, n int) []byte {
	b := make([]byte, header+n)
	for i := 0; i < n; i++ {
		b[header+i] = byte(i)
	}
	return b
}

func TestSum_Vectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want [4]uint32
	}{
		{
			name: "empty body",
			data: make([]byte, SkipBytes),
			want: [4]uint32{0xf6600d14, 0xbae275b7, 0xd4be4a4e, 0xa1e9b201},
		},
		{
			name: "one block plus tail",
			data: pattern(SkipBytes, 100),
			want: [4]uint32{0x4667e2af, 0xe154db15, 0x0d5fe64c, 0xf40435cf},
		},
		{
			name: "tail needs extra block",
			data: pattern(SkipBytes, 60),
			want: [4]uint32{0x68058ad9, 0x39046f1c, 0xab8d5aba, 0x5318fe5e},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sum(tt.data); got != tt.want {
				t.Errorf("Sum() = %08x, want %08x", got, tt.want)
			}
		})
	}
}

func TestSum_IgnoresHeader(t *testing.T) {
	a := pattern(SkipBytes, 100)
	b := pattern(SkipBytes, 100)
	for i := 0; i < SkipBytes; i++ {
		b[i] = 0xff
	}
	if Sum(a) != Sum(b) {
		t.Error("bytes before SkipBytes changed the sum")
	}
}

func TestSum_BitFlip(t *testing.T) {
	data := pattern(SkipBytes, 256)
	base := Sum(data)
	for _, off := range []int{SkipBytes, SkipBytes + 63, SkipBytes + 64, len(data) - 1} {
		flipped := append([]byte(nil), data...)
		flipped[off] ^= 0x01
		if Sum(flipped) == base {
			t.Errorf("flipping byte %d did not change the sum", off)
		}
	}
}

func TestStampVerify(t *testing.T) {
	data := pattern(SkipBytes, 128)
	if Verify(data) {
		t.Fatal("Verify() = true before stamping")
	}
	Stamp(data)
	if !Verify(data) {
		t.Fatal("Verify() = false after stamping")
	}

	want := Bytes(data)
	if got := data[hashOffset:SkipBytes]; string(got) != string(want[:]) {
		t.Errorf("stamped bytes = %x, want %x", got, want)
	}

	data[len(data)-1] ^= 0x80
	if Verify(data) {
		t.Error("Verify() = true after corrupting the body")
	}
}

func TestStamp_ShortInput(t *testing.T) {
	short := []byte{1, 2, 3}
	Stamp(short)
	if short[0] != 1 || short[1] != 2 || short[2] != 3 {
		t.Errorf("Stamp modified a short buffer: %v", short)
	}
	if Verify(short) {
		t.Error("Verify() = true for a short buffer")
	}
}

// zbackdrop.comp.0.dxbc is a cs_5_0 container built by fxc for Gio.
func TestVerify_CompilerOutput(t *testing.T) {
	data, err := os.ReadFile("../testdata/zbackdrop.comp.0.dxbc")
	if err != nil {
		t.Fatal(err)
	}
	if !Verify(data) {
		stored := data[hashOffset:SkipBytes]
		got := Bytes(data)
		t.Fatalf("Verify() = false: stored %x, computed %x", stored, got)
	}

	data[len(data)/2] ^= 0x01
	if Verify(data) {
		t.Error("Verify() accepted a modified container")
	}
}
