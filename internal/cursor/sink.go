// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cursor

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

// Sink accumulates the body of an archive being written. The header cannot be
// produced until the final object count is known, so writers buffer the body
// here and emit it on Close.
type Sink struct {
	b bytes.Buffer

	// Small scratch buffer (avoids needing to ever allocate when writing primitives)
	scratch [8]byte
}

func (s *Sink) Len() int {
	return s.b.Len()
}

func (s *Sink) PutU8(v uint8) {
	s.b.WriteByte(v)
}

func (s *Sink) PutU16(v uint16) {
	binary.LittleEndian.PutUint16(s.scratch[0:2], v)
	s.b.Write(s.scratch[0:2])
}

func (s *Sink) PutU32(v uint32) {
	binary.LittleEndian.PutUint32(s.scratch[0:4], v)
	s.b.Write(s.scratch[0:4])
}

func (s *Sink) PutI32(v int32) {
	s.PutU32(uint32(v))
}

func (s *Sink) PutF32(v float32) {
	s.PutU32(math.Float32bits(v))
}

func (s *Sink) PutBytes(b []byte) {
	s.b.Write(b)
}

func (s *Sink) PutString(v string) {
	s.b.WriteString(v)
}

// WriteTo flushes the accumulated body to w
func (s *Sink) WriteTo(w io.Writer) (int64, error) {
	return s.b.WriteTo(w)
}

var _ io.WriterTo = &Sink{}
