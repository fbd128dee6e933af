// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package cursor adapts an io.ReadSeeker into the sequential, rewindable byte
// cursor the archive backends read from, and provides the Sink they write to.
//
// All multi-byte values are little endian.
package cursor

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"

	"go.e43.eu/zenarc/internal/errors"
)

// bufferSize is the amount read from the source at a time
const bufferSize = 4096

// Cursor reads from an underlying io.ReadSeeker through a buffer of its own.
// Positions reported by Tell are stream offsets of the next byte to be read, and
// Restore may rewind to any previously observed position: within the buffer
// this is free, and otherwise the source is seeked.
//
// The source's own position is always the end of the buffered data.
type Cursor struct {
	r io.ReadSeeker

	// Error establishing the source's starting offset
	err error

	buf  []byte // buffered data; buf[i:] is unread
	i    int
	base int64 // stream offset of buf[0]

	// Small scratch buffer (avoids needing to allocate when reading primitives)
	scratch [8]byte
}

func New(r io.ReadSeeker) *Cursor {
	base, err := r.Seek(0, io.SeekCurrent)
	return &Cursor{r: r, err: err, base: base}
}

// Tell returns the current offset
func (c *Cursor) Tell() (int64, error) {
	return c.base + int64(c.i), c.err
}

// Offset returns the current offset, or -1 if it cannot be determined. It is
// used to annotate errors
func (c *Cursor) Offset() int64 {
	pos, err := c.Tell()
	if err != nil {
		return -1
	}
	return pos
}

// Restore seeks back to an offset previously returned by Tell
func (c *Cursor) Restore(pos int64) error {
	if c.err != nil {
		return c.err
	}
	if pos >= c.base && pos <= c.base+int64(len(c.buf)) {
		c.i = int(pos - c.base)
		return nil
	}

	if _, err := c.r.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	c.base, c.buf, c.i = pos, c.buf[:0], 0
	return nil
}

// refill replaces the buffer, which must be fully consumed, with the next data
// from the source. io.EOF is returned once the source is exhausted.
func (c *Cursor) refill() error {
	if c.err != nil {
		return c.err
	}
	if c.buf == nil {
		c.buf = make([]byte, 0, bufferSize)
	}

	c.base += int64(len(c.buf))
	c.buf, c.i = c.buf[:cap(c.buf)], 0
	for tries := 0; tries < 100; tries++ {
		n, err := c.r.Read(c.buf)
		if n > 0 {
			c.buf = c.buf[:n]
			return nil
		}
		if err != nil {
			c.buf = c.buf[:0]
			return err
		}
	}
	c.buf = c.buf[:0]
	return io.ErrNoProgress
}

// copyOut reads up to len(p) bytes, stopping early only on error
func (c *Cursor) copyOut(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if c.i == len(c.buf) {
			if err := c.refill(); err != nil {
				return n, err
			}
		}
		k := copy(p[n:], c.buf[c.i:])
		c.i += k
		n += k
	}
	return n, nil
}

// endOfData classifies an error hit after reading read bytes of a value.
// io.EOF is returned only if nothing at all was read.
func (c *Cursor) endOfData(read int, err error) error {
	switch {
	case err == io.EOF && read == 0:
		return io.EOF
	case err == io.EOF:
		return errors.EndOfDataError{Offset: c.Offset()}
	}
	return err
}

// Skip advances the cursor by n bytes, failing if fewer than n remain
func (c *Cursor) Skip(n int64) error {
	var skipped int64
	for skipped < n {
		if c.i == len(c.buf) {
			if err := c.refill(); err != nil {
				return c.endOfData(int(skipped), err)
			}
		}
		k := int64(len(c.buf) - c.i)
		if k > n-skipped {
			k = n - skipped
		}
		c.i += int(k)
		skipped += k
	}
	return nil
}

// fill reads exactly len(buf) bytes. io.EOF is returned only if no bytes at
// all were available; a short read is reported as an EndOfDataError
func (c *Cursor) fill(buf []byte) error {
	n, err := c.copyOut(buf)
	if err != nil {
		return c.endOfData(n, err)
	}
	return nil
}

// largeRead is the size above which Read stops trusting the requested length
// and grows its buffer only as data actually arrives
const largeRead = 64 << 10

// Read reads exactly n bytes into a newly allocated buffer
func (c *Cursor) Read(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if n <= largeRead {
		buf := make([]byte, n)
		if err := c.fill(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	out := make([]byte, 0, largeRead)
	for len(out) < n {
		start := len(out)
		out = append(out, make([]byte, min(n-start, largeRead))...)
		k, err := c.copyOut(out[start:])
		if err != nil {
			return nil, c.endOfData(start+k, err)
		}
	}
	return out, nil
}

func (c *Cursor) ReadU8() (uint8, error) {
	err := c.fill(c.scratch[0:1])
	return c.scratch[0], err
}

func (c *Cursor) ReadU16() (uint16, error) {
	err := c.fill(c.scratch[0:2])
	return binary.LittleEndian.Uint16(c.scratch[0:2]), err
}

func (c *Cursor) ReadU32() (uint32, error) {
	err := c.fill(c.scratch[0:4])
	return binary.LittleEndian.Uint32(c.scratch[0:4]), err
}

func (c *Cursor) ReadI32() (int32, error) {
	u, err := c.ReadU32()
	return int32(u), err
}

func (c *Cursor) ReadF32() (float32, error) {
	u, err := c.ReadU32()
	return math.Float32frombits(u), err
}

// ReadString reads a string of exactly n bytes
func (c *Cursor) ReadString(n int) (string, error) {
	b, err := c.Read(n)
	return string(b), err
}

// ReadLine reads up to and including the next '\n' and returns the line
// without its terminator (a trailing '\r' is also removed). The final line of
// a stream need not be terminated. io.EOF is returned if the cursor is already
// at the end of the stream.
func (c *Cursor) ReadLine() (string, error) {
	var line []byte
	for {
		if c.i == len(c.buf) {
			if err := c.refill(); err != nil {
				if err == io.EOF && len(line) > 0 {
					return strings.TrimSuffix(string(line), "\r"), nil
				}
				return "", err
			}
		}

		rest := c.buf[c.i:]
		if j := bytes.IndexByte(rest, '\n'); j >= 0 {
			line = append(line, rest[:j]...)
			c.i += j + 1
			return strings.TrimSuffix(string(line), "\r"), nil
		}
		line = append(line, rest...)
		c.i = len(c.buf)
	}
}

// MidEntry converts an io.EOF encountered after the first byte of an entry
// into an EndOfDataError
func (c *Cursor) MidEntry(err error) error {
	if err == io.EOF {
		return errors.EndOfDataError{Offset: c.Offset()}
	}
	return err
}
