// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// dxbcdis - DXBC container disassembler
// Prints the header, chunk table, signatures and SM4/SM5 assembly of a container.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gogpu/dxbc"
	"github.com/gogpu/dxbc/checksum"
	"github.com/gogpu/dxbc/container"
	"github.com/gogpu/dxbc/snapshot"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("dxbcdis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	hashOnly := fs.Bool("hash", false, "only verify the container checksum")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dxbcdis [-hash] <file.dxbc>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *hashOnly {
		return printHash(stdout, data)
	}

	m, err := dxbc.Inspect(data, dxbc.WithDropLevel9(true))
	if err != nil {
		if kind, ok := dxbc.KindOf(err); ok {
			fmt.Fprintf(stderr, "Error (%s): %v\n", kind, err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	printHeader(stdout, data, m.Container)
	printCBuffers(stdout, m)
	text, err := snapshot.Text(m.Container, m.Instructions)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprint(stdout, text)
	return 0
}

func printHash(w io.Writer, data []byte) int {
	if len(data) < checksum.SkipBytes {
		fmt.Fprintf(w, "checksum: file too small (%d bytes)\n", len(data))
		return 1
	}
	want := checksum.Bytes(data)
	stored := data[4:checksum.SkipBytes]
	if checksum.Verify(data) {
		fmt.Fprintf(w, "checksum: %s ok\n", hex.EncodeToString(stored))
		return 0
	}
	fmt.Fprintf(w, "checksum: %s MISMATCH, computed %s\n", hex.EncodeToString(stored), hex.EncodeToString(want[:]))
	return 1
}

func printHeader(w io.Writer, data []byte, c *container.Container) {
	h := c.Header
	status := "ok"
	if !checksum.Verify(data) {
		status = "MISMATCH"
	}
	fmt.Fprintf(w, "// DXBC\n")
	fmt.Fprintf(w, "// Checksum: %s (%s)\n", hex.EncodeToString(h.Checksum[:]), status)
	fmt.Fprintf(w, "// Version: %d\n", h.Version)
	fmt.Fprintf(w, "// Size: %d bytes\n", h.Size)
	fmt.Fprintf(w, "// Chunks: %d\n", h.ChunkCount)
	for _, ch := range c.Chunks {
		if desc, ok := container.Describe(ch.Tag); ok {
			fmt.Fprintf(w, "//   %s at 0x%04x, %d bytes (%s, not rewritten)\n", ch.Tag, ch.Offset, ch.Size, desc)
			continue
		}
		fmt.Fprintf(w, "//   %s at 0x%04x, %d bytes\n", ch.Tag, ch.Offset, ch.Size)
	}
	fmt.Fprintln(w)
}

func printCBuffers(w io.Writer, m *dxbc.Module) {
	if m.CBuffers.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "// constant buffers (%d components)\n", m.CBuffers.Total())
	for _, d := range m.CBuffers.Decls() {
		fmt.Fprintf(w, "//   cb%d[%d] at offset %d\n", d.Register, d.Components, m.CBuffers.Offset(d.Register))
	}
}
