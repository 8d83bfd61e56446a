// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package bytecode

import "github.com/gogpu/dxbc/wire"

// CBufferDecl is one dcl_constantbuffer declaration.
type CBufferDecl struct {
	Register   uint32
	Components uint32
}

// CBufferTable is the ordered list of constant buffer declarations of a
// program. Declarations must appear in ascending register order starting at 0,
// so the register of each declaration equals its position in the table.
type CBufferTable struct {
	decls []CBufferDecl
}

// Add appends a declaration. It fails with ErrMalformedDeclarationOrder when
// register is not the next register in sequence.
func (t *CBufferTable) Add(register, components uint32) error {
	if uint64(register) != uint64(len(t.decls)) {
		return wire.Errorf(wire.ErrMalformedDeclarationOrder, -1,
			"constant buffer cb%d declared at position %d", register, len(t.decls))
	}
	t.decls = append(t.decls, CBufferDecl{Register: register, Components: components})
	return nil
}

// Len returns the number of declarations.
func (t CBufferTable) Len() int { return len(t.decls) }

// Decls returns a copy of the declarations in order.
func (t CBufferTable) Decls() []CBufferDecl {
	return append([]CBufferDecl(nil), t.decls...)
}

// Components returns the declared component count of register.
func (t CBufferTable) Components(register uint32) (uint32, bool) {
	if uint64(register) >= uint64(len(t.decls)) {
		return 0, false
	}
	return t.decls[register].Components, true
}

// Offset returns the sum of the component counts of all buffers with a
// register lower than register.
func (t CBufferTable) Offset(register uint32) uint32 {
	var sum uint32
	for _, d := range t.decls {
		if d.Register < register {
			sum += d.Components
		}
	}
	return sum
}

// Total returns the sum of the component counts of all declared buffers.
func (t CBufferTable) Total() uint32 {
	var sum uint32
	for _, d := range t.decls {
		sum += d.Components
	}
	return sum
}
