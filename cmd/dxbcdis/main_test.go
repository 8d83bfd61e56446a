// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/dxbc/container"
)

func words(ws ...uint32) []byte {
	b := make([]byte, 0, 4*len(ws))
	for _, w := range ws {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shader.dxbc")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleData(t *testing.T) []byte {
	t.Helper()
	data, err := container.Write(&container.Container{
		Input: container.Signature{Key: 8, Elements: []container.Element{
			{Name: "TEXCOORD", Mask: 0x3, ReadWriteMask: 0x3, ComponentType: container.ComponentTypeFloat32},
		}},
		Output: container.Signature{Key: 8, Elements: []container.Element{
			{Name: "SV_Target", Mask: 0xf, ComponentType: container.ComponentTypeFloat32, SystemValue: container.SystemValueTarget},
		}},
		Program: container.Program{Version: 0x50, Extended: true, Tokens: words(
			0x04000059, 0x00208e46, 0, 4, // dcl_constantbuffer cb0[4]
			0x04000059, 0x00208e46, 1, 6, // dcl_constantbuffer cb1[6]
			0x0100003e,                   // ret
		)},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return data
}

func runCommand(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Listing(t *testing.T) {
	path := writeFile(t, sampleData(t))

	code, out, stderr := runCommand(path)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr:\n%s", code, stderr)
	}

	for _, want := range []string{
		"// DXBC\n",
		" (ok)\n",
		"// Chunks: 3\n",
		"//   ISGN at 0x002c, ",
		"//   SHEX at ",
		"// constant buffers (10 components)\n",
		"//   cb0[4] at offset 0\n",
		"//   cb1[6] at offset 4\n",
		"// ps_5_0\n",
		"//   TEXCOORD0 r0 mask 0x3/0x3",
		"ret\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRun_Hash(t *testing.T) {
	data := sampleData(t)

	code, out, _ := runCommand("-hash", writeFile(t, data))
	if code != 0 || !strings.HasSuffix(out, " ok\n") {
		t.Errorf("valid container: code %d, output %q", code, out)
	}

	data[len(data)-1] ^= 0xff
	code, out, _ = runCommand("-hash", writeFile(t, data))
	if code != 1 || !strings.Contains(out, "MISMATCH") {
		t.Errorf("corrupted container: code %d, output %q", code, out)
	}

	code, _, _ = runCommand("-hash", writeFile(t, []byte("DXBC")))
	if code != 1 {
		t.Errorf("short file: code %d, want 1", code)
	}
}

func TestRun_Errors(t *testing.T) {
	code, _, stderr := runCommand()
	if code != 2 || !strings.Contains(stderr, "Usage: dxbcdis") {
		t.Errorf("no arguments: code %d, stderr %q", code, stderr)
	}

	code, _, stderr = runCommand(writeFile(t, make([]byte, 64)))
	if code != 1 || !strings.Contains(stderr, "Error (BadMagic)") {
		t.Errorf("bad magic: code %d, stderr %q", code, stderr)
	}

	code, _, _ = runCommand(filepath.Join(t.TempDir(), "missing.dxbc"))
	if code != 1 {
		t.Errorf("missing file: code %d, want 1", code)
	}
}
