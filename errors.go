// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package zenarc

import "go.e43.eu/zenarc/internal/errors"

// Sentinel errors. Every error returned by this package matches one of these
// with errors.Is; the structured types below carry the details.
var (
	ErrMalformedHeader     = errors.ErrMalformedHeader
	ErrTypeMismatch        = errors.ErrTypeMismatch
	ErrSizeMismatch        = errors.ErrSizeMismatch
	ErrHashIndexOutOfRange = errors.ErrHashIndexOutOfRange
	ErrHashMismatch        = errors.ErrHashMismatch
	ErrUnbalancedObject    = errors.ErrUnbalancedObject
	ErrUnexpectedEndOfData = errors.ErrUnexpectedEndOfData
	ErrNumberFormat        = errors.ErrNumberFormat
	ErrDepthExceeded       = errors.ErrDepthExceeded
	ErrExpectedObject      = errors.ErrExpectedObject
	ErrUnexpectedMarker    = errors.ErrUnexpectedMarker
	ErrInvalidValue        = errors.ErrInvalidValue
	ErrLengthExceedsMax    = errors.ErrLengthExceedsMax
	ErrNotPointer          = errors.ErrNotPointer
	ErrNilPointer          = errors.ErrNilPointer
)

type (
	HeaderError       = errors.HeaderError
	TypeMismatchError = errors.TypeMismatchError
	SizeMismatchError = errors.SizeMismatchError
	HashIndexError    = errors.HashIndexError
	HashMismatchError = errors.HashMismatchError
	UnbalancedError   = errors.UnbalancedError
	EndOfDataError    = errors.EndOfDataError
	MarkerError       = errors.MarkerError
	NumberFormatError = errors.NumberFormatError
	DepthError        = errors.DepthError
	LengthError       = errors.LengthError
	InvalidValueError = errors.InvalidValueError
	InvalidTypeError  = errors.InvalidTypeError
	InvalidTagError   = errors.InvalidTagError
	FieldError        = errors.FieldError
)
