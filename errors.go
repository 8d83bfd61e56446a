// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package dxbc

import "github.com/gogpu/dxbc/wire"

// ErrorKind categorizes decoding and rewriting errors.
type ErrorKind = wire.ErrorKind

// Error is a structural error found in a container.
type Error = wire.Error

// Error kinds.
const (
	ErrTruncatedBuffer              = wire.ErrTruncatedBuffer
	ErrBadMagic                     = wire.ErrBadMagic
	ErrMalformedContainer           = wire.ErrMalformedContainer
	ErrUnrecognizedChunkTag         = wire.ErrUnrecognizedChunkTag
	ErrUnrecognizedOpcode           = wire.ErrUnrecognizedOpcode
	ErrMalformedInstruction         = wire.ErrMalformedInstruction
	ErrUnsupportedOperandAddressing = wire.ErrUnsupportedOperandAddressing
	ErrMalformedDeclarationOrder    = wire.ErrMalformedDeclarationOrder
	ErrUnsupportedFeature           = wire.ErrUnsupportedFeature
	ErrSelfCheckMismatch            = wire.ErrSelfCheckMismatch
)

// NewError creates an error without offset information.
func NewError(kind ErrorKind, message string) *Error {
	return wire.NewError(kind, message)
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	return wire.IsKind(err, kind)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	return wire.KindOf(err)
}
