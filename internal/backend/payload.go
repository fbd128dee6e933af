// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"fmt"
	"math"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/entry"
	xerrors "go.e43.eu/zenarc/internal/errors"
)

// Reserved STRING values marking object boundaries in the binary formats. The
// leading NUL keeps them out of the way of any text a game would store.
const (
	beginSentinel = "\x00["
	endSentinel   = "\x00]"
)

// sentinelOf returns the object marker sentinel held by a decoded entry, if
// it holds one
func sentinelOf(t entry.Type, v interface{}) (string, bool) {
	if t != entry.String {
		return "", false
	}
	s, _ := v.(string)
	return s, s == beginSentinel || s == endSentinel
}

// lengthWidth is the size of the length prefix of variable length payloads
type lengthWidth int

const (
	// BINARY: 32-bit lengths
	wideLength lengthWidth = 4
	// BIN_SAFE: 16-bit lengths
	shortLength lengthWidth = 2
)

func (w lengthWidth) max() uint64 {
	if w == shortLength {
		return math.MaxUint16
	}
	return math.MaxUint32
}

func (w lengthWidth) put(s *cursor.Sink, n int) {
	if w == shortLength {
		s.PutU16(uint16(n))
	} else {
		s.PutU32(uint32(n))
	}
}

func (w lengthWidth) read(c *cursor.Cursor) (int, error) {
	if w == shortLength {
		n, err := c.ReadU16()
		return int(n), err
	}
	n, err := c.ReadU32()
	return int(n), err
}

// checkValue verifies that the dynamic type of e.Value matches e.Type
func checkValue(e zenarcinterfaces.Entry) error {
	var ok bool
	switch e.Type {
	case entry.String:
		_, ok = e.Value.(string)
	case entry.Integer:
		_, ok = e.Value.(int32)
	case entry.Float:
		_, ok = e.Value.(float32)
	case entry.Byte:
		_, ok = e.Value.(uint8)
	case entry.Word:
		_, ok = e.Value.(uint16)
	case entry.Bool:
		_, ok = e.Value.(bool)
	case entry.Vec3:
		_, ok = e.Value.(zenarcinterfaces.Vec3)
	case entry.Color:
		_, ok = e.Value.(zenarcinterfaces.Color)
	case entry.Raw:
		_, ok = e.Value.([]byte)
	case entry.RawFloat:
		_, ok = e.Value.([]float32)
	case entry.Enum, entry.Hash:
		_, ok = e.Value.(uint32)
	default:
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown entry type %s", e.Type)}
	}
	if !ok {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("%T is not a valid %s value", e.Value, e.Type)}
	}
	if s, isString := e.Value.(string); isString && (s == beginSentinel || s == endSentinel) {
		return xerrors.InvalidValueError{Reason: "string value is reserved for object markers"}
	}
	return nil
}

// payloadLen returns the encoded length of a variable length payload
func payloadLen(e zenarcinterfaces.Entry) int {
	switch v := e.Value.(type) {
	case string:
		return len(v)
	case []byte:
		return len(v)
	case []float32:
		return 4 * len(v)
	default:
		return 0
	}
}

// checkLength fails if the variable length payload of e does not fit in w
func checkLength(e zenarcinterfaces.Entry, w lengthWidth) error {
	if !e.Type.Variable() {
		return nil
	}
	if n := uint64(payloadLen(e)); n > w.max() {
		return xerrors.LengthError{Actual: n, Max: w.max()}
	}
	return nil
}

// putPayload writes the payload of e, which must already have passed
// checkValue and checkLength
func putPayload(s *cursor.Sink, e zenarcinterfaces.Entry, w lengthWidth) {
	switch v := e.Value.(type) {
	case string:
		w.put(s, len(v))
		s.PutString(v)
	case int32:
		s.PutI32(v)
	case float32:
		s.PutF32(v)
	case uint8:
		s.PutU8(v)
	case uint16:
		s.PutU16(v)
	case bool:
		if v {
			s.PutU32(1)
		} else {
			s.PutU32(0)
		}
	case zenarcinterfaces.Vec3:
		s.PutF32(v.X)
		s.PutF32(v.Y)
		s.PutF32(v.Z)
	case zenarcinterfaces.Color:
		// Stored BGRA
		s.PutU8(v.B)
		s.PutU8(v.G)
		s.PutU8(v.R)
		s.PutU8(v.A)
	case []byte:
		w.put(s, len(v))
		s.PutBytes(v)
	case []float32:
		w.put(s, 4*len(v))
		for _, f := range v {
			s.PutF32(f)
		}
	case uint32:
		s.PutU32(v)
	}
}

// readPayload reads the payload of an entry of type t. Any io.EOF returned has
// already been converted; the entry's tag has been consumed.
func readPayload(c *cursor.Cursor, t entry.Type, w lengthWidth) (interface{}, error) {
	v, err := readPayloadRaw(c, t, w)
	return v, c.MidEntry(err)
}

func readPayloadRaw(c *cursor.Cursor, t entry.Type, w lengthWidth) (interface{}, error) {
	switch t {
	case entry.String:
		n, err := w.read(c)
		if err != nil {
			return nil, err
		}
		return c.ReadString(n)
	case entry.Integer:
		return c.ReadI32()
	case entry.Float:
		return c.ReadF32()
	case entry.Byte:
		return c.ReadU8()
	case entry.Word:
		return c.ReadU16()
	case entry.Bool:
		v, err := c.ReadU32()
		return v != 0, err
	case entry.Vec3:
		var v zenarcinterfaces.Vec3
		var err error
		for _, f := range []*float32{&v.X, &v.Y, &v.Z} {
			if *f, err = c.ReadF32(); err != nil {
				return nil, err
			}
		}
		return v, nil
	case entry.Color:
		b, err := c.Read(4)
		if err != nil {
			return nil, err
		}
		return zenarcinterfaces.Color{R: b[2], G: b[1], B: b[0], A: b[3]}, nil
	case entry.Raw:
		n, err := w.read(c)
		if err != nil {
			return nil, err
		}
		b, err := c.Read(n)
		if err != nil {
			return nil, err
		}
		if b == nil {
			b = []byte{}
		}
		return b, nil
	case entry.RawFloat:
		n, err := w.read(c)
		if err != nil {
			return nil, err
		}
		if n%4 != 0 {
			return nil, xerrors.InvalidValueError{Reason: fmt.Sprintf("RAW_FLOAT length %d is not a multiple of 4", n)}
		}
		b, err := c.Read(n)
		if err != nil {
			return nil, err
		}
		return floatsFromBytes(b), nil
	case entry.Enum, entry.Hash:
		return c.ReadU32()
	default:
		return nil, xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown entry type %s", t)}
	}
}

// skipPayload consumes the payload of an entry of type t using the type table
// and, for variable length types, the length prefix
func skipPayload(c *cursor.Cursor, t entry.Type, w lengthWidth) error {
	if !t.Valid() {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown entry type %s", t)}
	}
	n := t.Size()
	if t.Variable() {
		var err error
		if n, err = w.read(c); err != nil {
			return c.MidEntry(err)
		}
	}
	return c.MidEntry(c.Skip(int64(n)))
}

func floatsFromBytes(b []byte) []float32 {
	fs := make([]float32, len(b)/4)
	for i := range fs {
		fs[i] = math.Float32frombits(uint32(b[4*i]) | uint32(b[4*i+1])<<8 | uint32(b[4*i+2])<<16 | uint32(b[4*i+3])<<24)
	}
	return fs
}

func floatsToBytes(fs []float32) []byte {
	b := make([]byte, 4*len(fs))
	for i, f := range fs {
		u := math.Float32bits(f)
		b[4*i] = byte(u)
		b[4*i+1] = byte(u >> 8)
		b[4*i+2] = byte(u >> 16)
		b[4*i+3] = byte(u >> 24)
	}
	return b
}
