// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package errors

import (
	"fmt"
	"reflect"
	"strings"

	"go.e43.eu/zenarc/internal/entry"
)

type xerror string

func (e xerror) Error() string {
	return string(e)
}

const (
	// Unknown format token, wrong magic, or a required header field is missing
	ErrMalformedHeader = xerror("zenarc: Malformed archive header")

	// The tag of an entry does not match the type requested by the caller
	ErrTypeMismatch = xerror("zenarc: Entry type mismatch")

	// The declared length of a raw entry differs from the requested length
	ErrSizeMismatch = xerror("zenarc: Entry size mismatch")

	// A BIN_SAFE key reference points past the end of the hash table
	ErrHashIndexOutOfRange = xerror("zenarc: Hash table index out of range")

	// Object begin and end markers are not balanced
	ErrUnbalancedObject = xerror("zenarc: Unbalanced object markers")

	// The stream ended in the middle of an entry
	ErrUnexpectedEndOfData = xerror("zenarc: Unexpected end of data")

	// An ASCII numeric value could not be parsed
	ErrNumberFormat = xerror("zenarc: Invalid number")

	// A redundant BIN_SAFE hash disagrees with the hash table
	ErrHashMismatch = xerror("zenarc: Hash mismatch")

	// Object nesting exceeded the configured limit
	ErrDepthExceeded = xerror("zenarc: Maximum object depth exceeded")

	// An object begin marker was required but not present
	ErrExpectedObject = xerror("zenarc: Expected object")

	// An object marker was found where an entry was expected
	ErrUnexpectedMarker = xerror("zenarc: Unexpected object marker")

	// Value cannot be represented in the target format
	ErrInvalidValue = xerror("zenarc: Invalid value for format")

	// Variable length value longer than the format permits
	ErrLengthExceedsMax = xerror("zenarc: Variable length value too long")

	// Unmarshal expected pointer parameter
	ErrNotPointer = xerror("zenarc: Expected pointer parameter")

	// Pointer was unexpectedly nil
	ErrNilPointer = xerror("zenarc: Unexpected nil pointer")
)

type HeaderError struct {
	Line   int
	Reason string
}

func (e HeaderError) Is(target error) bool {
	return target == ErrMalformedHeader
}

func (e HeaderError) Error() string {
	return fmt.Sprintf("%s (line %d: %s)", ErrMalformedHeader, e.Line, e.Reason)
}

type TypeMismatchError struct {
	Expected, Actual entry.Type
	Offset           int64
}

func (e TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s (at offset %d)", ErrTypeMismatch, e.Expected, e.Actual, e.Offset)
}

type SizeMismatchError struct {
	Expected, Actual int
	Offset           int64
}

func (e SizeMismatchError) Is(target error) bool {
	return target == ErrSizeMismatch
}

func (e SizeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d bytes, got %d (at offset %d)", ErrSizeMismatch, e.Expected, e.Actual, e.Offset)
}

type HashIndexError struct {
	Index, Len int
	Offset     int64
}

func (e HashIndexError) Is(target error) bool {
	return target == ErrHashIndexOutOfRange
}

func (e HashIndexError) Error() string {
	return fmt.Sprintf("%s (%d >= %d at offset %d)", ErrHashIndexOutOfRange, e.Index, e.Len, e.Offset)
}

type HashMismatchError struct {
	Key              string
	Expected, Actual uint32
	Offset           int64
}

func (e HashMismatchError) Is(target error) bool {
	return target == ErrHashMismatch
}

func (e HashMismatchError) Error() string {
	return fmt.Sprintf("%s for key %q: table has %08x, entry has %08x (at offset %d)", ErrHashMismatch, e.Key, e.Expected, e.Actual, e.Offset)
}

// UnbalancedError reports the objects left open, or as a negative Depth, the
// number of end markers which closed nothing
type UnbalancedError struct {
	Depth int
}

func (e UnbalancedError) Is(target error) bool {
	return target == ErrUnbalancedObject
}

func (e UnbalancedError) Error() string {
	if e.Depth < 0 {
		return fmt.Sprintf("%s (%d unmatched end markers)", ErrUnbalancedObject, -e.Depth)
	}
	return fmt.Sprintf("%s (%d still open)", ErrUnbalancedObject, e.Depth)
}

type EndOfDataError struct {
	Offset int64
}

func (e EndOfDataError) Is(target error) bool {
	return target == ErrUnexpectedEndOfData
}

func (e EndOfDataError) Error() string {
	return fmt.Sprintf("%s (at offset %d)", ErrUnexpectedEndOfData, e.Offset)
}

// MarkerError is returned when an entry read meets an object marker, either
// one a probe should have consumed or one too damaged to parse
type MarkerError struct {
	End    bool
	Offset int64
}

func (e MarkerError) Is(target error) bool {
	return target == ErrUnexpectedMarker
}

func (e MarkerError) Error() string {
	what := "begin"
	if e.End {
		what = "end"
	}
	return fmt.Sprintf("%s: object %s marker read as an entry (at offset %d)", ErrUnexpectedMarker, what, e.Offset)
}

type NumberFormatError struct {
	Text       string
	Type       entry.Type
	Offset     int64
	Underlying error
}

func (e NumberFormatError) Is(target error) bool {
	return target == ErrNumberFormat
}

func (e NumberFormatError) Unwrap() error {
	return e.Underlying
}

func (e NumberFormatError) Error() string {
	return fmt.Sprintf("%s: %q is not a valid %s (at offset %d)", ErrNumberFormat, e.Text, e.Type, e.Offset)
}

type DepthError struct {
	Limit int
}

func (e DepthError) Is(target error) bool {
	return target == ErrDepthExceeded
}

func (e DepthError) Error() string {
	return fmt.Sprintf("%s (limit %d)", ErrDepthExceeded, e.Limit)
}

type LengthError struct {
	Actual, Max uint64
}

func (err LengthError) Is(target error) bool {
	switch target {
	case ErrLengthExceedsMax, ErrInvalidValue:
		return err.Actual > err.Max
	default:
		return false
	}
}

func (err LengthError) Error() string {
	return fmt.Sprintf("%s (%d > %d)", ErrLengthExceedsMax, err.Actual, err.Max)
}

type InvalidValueError struct {
	Reason string
}

func (e InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}

func (e InvalidValueError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidValue, e.Reason)
}

type InvalidTypeError struct {
	T reflect.Type
}

func (e InvalidTypeError) Error() string {
	return fmt.Sprintf("zenarc: Type '%s' unsupported", e.T)
}

type InvalidTagError struct {
	T      reflect.Type
	Option string
}

func (e InvalidTagError) Error() string {
	return fmt.Sprintf("zenarc: Tag option '%s' invalid for type '%s'", e.Option, e.T)
}

type FieldError struct {
	Underlying error
	Path       string
}

func (err FieldError) Unwrap() error {
	return err.Underlying
}

func (err FieldError) Error() string {
	uerr := strings.TrimPrefix(err.Underlying.Error(), "zenarc: ")
	return fmt.Sprintf("zenarc: %s (at %s)", uerr, err.Path)
}

func WithFieldError(err error, parts ...string) error {
	if err == nil {
		return nil
	}

	if parts[0] == "" {
		parts[0] = "<anonymous>"
	}
	combined := strings.Join(parts, ".")

	switch err := err.(type) {
	case FieldError:
		err.Path = fmt.Sprintf("%s.%s", combined, err.Path)
		return err
	default:
		return FieldError{err, combined}
	}
}
