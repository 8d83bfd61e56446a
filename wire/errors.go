// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wire

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes container decoding and rewriting errors.
type ErrorKind uint8

const (
	// ErrTruncatedBuffer indicates a read past the end of the input.
	ErrTruncatedBuffer ErrorKind = iota

	// ErrBadMagic indicates the container does not start with "DXBC".
	ErrBadMagic

	// ErrMalformedContainer indicates an inconsistent header or chunk table.
	ErrMalformedContainer

	// ErrUnrecognizedChunkTag indicates a chunk tag outside the known set.
	ErrUnrecognizedChunkTag

	// ErrUnrecognizedOpcode indicates an opcode at or beyond the opcode table.
	ErrUnrecognizedOpcode

	// ErrMalformedInstruction indicates an instruction whose declared length
	// disagrees with its decoded contents.
	ErrMalformedInstruction

	// ErrUnsupportedOperandAddressing indicates an operand addressing mode
	// the rewriter cannot patch, such as indirect resource indexing.
	ErrUnsupportedOperandAddressing

	// ErrMalformedDeclarationOrder indicates constant buffers declared out of
	// ascending register order, or a usage of an undeclared buffer.
	ErrMalformedDeclarationOrder

	// ErrUnsupportedFeature indicates a valid construct this tool does not handle.
	ErrUnsupportedFeature

	// ErrSelfCheckMismatch indicates the encoder and decoder disagree.
	ErrSelfCheckMismatch
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrTruncatedBuffer:
		return "TruncatedBuffer"
	case ErrBadMagic:
		return "BadMagic"
	case ErrMalformedContainer:
		return "MalformedContainer"
	case ErrUnrecognizedChunkTag:
		return "UnrecognizedChunkTag"
	case ErrUnrecognizedOpcode:
		return "UnrecognizedOpcode"
	case ErrMalformedInstruction:
		return "MalformedInstruction"
	case ErrUnsupportedOperandAddressing:
		return "UnsupportedOperandAddressing"
	case ErrMalformedDeclarationOrder:
		return "MalformedDeclarationOrder"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	case ErrSelfCheckMismatch:
		return "SelfCheckMismatch"
	default:
		return "Unknown"
	}
}

// Error is a structural error found while decoding or rewriting a container.
type Error struct {
	// Kind categorizes the error.
	Kind ErrorKind

	// Offset is the byte offset the error refers to, or -1 when unknown.
	Offset int

	// Message provides details about the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("dxbc %s at offset %d: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("dxbc %s: %s", e.Kind, e.Message)
}

// NewError creates an error without offset information.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Offset: -1, Message: message}
}

// Errorf creates an error at the given offset with a formatted message.
func Errorf(kind ErrorKind, offset int, format string, args ...any) *Error {
	return &Error{Kind: kind, Offset: offset, Message: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err, or any error it wraps, is an *Error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
