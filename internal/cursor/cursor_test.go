// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package cursor

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xerrors "go.e43.eu/zenarc/internal/errors"
)

// singleByteReader is a really annoying io.ReadSeeker which returns a single
// byte at a time
type singleByteReader struct {
	*bytes.Reader
}

func (r singleByteReader) Read(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	return r.Reader.Read(buf[0:1])
}

func readers(b []byte) map[string]func() io.ReadSeeker {
	return map[string]func() io.ReadSeeker{
		"bytes.Reader":     func() io.ReadSeeker { return bytes.NewReader(b) },
		"singleByteReader": func() io.ReadSeeker { return singleByteReader{bytes.NewReader(b)} },
	}
}

func TestPrimitives(t *testing.T) {
	t.Parallel()

	var s Sink
	s.PutU8(0xAB)
	s.PutU16(0xBEEF)
	s.PutU32(0xDEADBEEF)
	s.PutI32(-2)
	s.PutF32(float32(math.Pi))
	s.PutString("hi")
	s.PutBytes([]byte{1, 2})

	size := s.Len()
	var buf bytes.Buffer
	n, err := s.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(size), n)
	assert.Equal(t, []byte{
		0xAB,
		0xEF, 0xBE,
		0xEF, 0xBE, 0xAD, 0xDE,
		0xFE, 0xFF, 0xFF, 0xFF,
		0xDB, 0x0F, 0x49, 0x40,
		'h', 'i',
		1, 2,
	}, buf.Bytes())

	for name, mk := range readers(buf.Bytes()) {
		c := New(mk())

		u8, err := c.ReadU8()
		require.NoError(t, err, name)
		assert.Equal(t, uint8(0xAB), u8)

		u16, err := c.ReadU16()
		require.NoError(t, err)
		assert.Equal(t, uint16(0xBEEF), u16)

		u32, err := c.ReadU32()
		require.NoError(t, err)
		assert.Equal(t, uint32(0xDEADBEEF), u32)

		i32, err := c.ReadI32()
		require.NoError(t, err)
		assert.Equal(t, int32(-2), i32)

		f32, err := c.ReadF32()
		require.NoError(t, err)
		assert.Equal(t, math.Float32bits(float32(math.Pi)), math.Float32bits(f32))

		str, err := c.ReadString(2)
		require.NoError(t, err)
		assert.Equal(t, "hi", str)

		b, err := c.Read(2)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 2}, b)

		assert.Equal(t, int64(buf.Len()), c.Offset())

		_, err = c.ReadU8()
		assert.Equal(t, io.EOF, err, "clean end of stream is io.EOF")
	}
}

func TestShortRead(t *testing.T) {
	t.Parallel()

	for name, mk := range readers([]byte{1, 2}) {
		c := New(mk())
		_, err := c.ReadU32()
		assert.True(t, errors.Is(err, xerrors.ErrUnexpectedEndOfData), "%s: got %v", name, err)

		c = New(mk())
		_, err = c.Read(3)
		assert.True(t, errors.Is(err, xerrors.ErrUnexpectedEndOfData), "%s: got %v", name, err)

		c = New(mk())
		assert.True(t, errors.Is(c.Skip(3), xerrors.ErrUnexpectedEndOfData), name)

		c = New(mk())
		require.NoError(t, c.Skip(2))
		assert.Equal(t, io.EOF, c.Skip(1))
	}
}

func TestLargeReadDoesNotTrustLength(t *testing.T) {
	t.Parallel()

	c := New(bytes.NewReader(make([]byte, 100)))
	_, err := c.Read(math.MaxInt32)
	assert.True(t, errors.Is(err, xerrors.ErrUnexpectedEndOfData))

	c = New(bytes.NewReader(make([]byte, 3*largeRead)))
	b, err := c.Read(3 * largeRead)
	require.NoError(t, err)
	assert.Len(t, b, 3*largeRead)
}

func TestReadLine(t *testing.T) {
	t.Parallel()

	long := string(bytes.Repeat([]byte{'x'}, 300))
	input := []byte("first\r\nsecond\n\n" + long + "\nlast")

	for name, mk := range readers(input) {
		c := New(mk())
		for _, expected := range []string{"first", "second", "", long, "last"} {
			l, err := c.ReadLine()
			require.NoError(t, err, name)
			assert.Equal(t, expected, l, name)
		}
		_, err := c.ReadLine()
		assert.Equal(t, io.EOF, err, name)
	}

	// The cursor must be left just past the newline
	c := New(bytes.NewReader(input))
	_, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, int64(len("first\r\n")), c.Offset())
	u8, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8('s'), u8)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	c := New(bytes.NewReader([]byte{1, 2, 3, 4}))
	pos, err := c.Tell()
	require.NoError(t, err)

	_, err = c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Offset())

	require.NoError(t, c.Restore(pos))
	u32, err := c.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04030201), u32)
}

// countingReader counts the reads made of the source
type countingReader struct {
	*bytes.Reader
	reads int
}

func (r *countingReader) Read(buf []byte) (int, error) {
	r.reads++
	return r.Reader.Read(buf)
}

func TestBuffering(t *testing.T) {
	t.Parallel()

	src := &countingReader{Reader: bytes.NewReader(make([]byte, 1000))}
	c := New(src)
	for i := 0; i < 1000; i++ {
		_, err := c.ReadU8()
		require.NoError(t, err)

		// Rewinding within the buffer costs nothing
		if i%10 == 0 {
			pos, err := c.Tell()
			require.NoError(t, err)
			require.NoError(t, c.Restore(pos-1))
			_, err = c.ReadU8()
			require.NoError(t, err)
		}
	}
	assert.Equal(t, 1, src.reads)

	_, err := c.ReadU8()
	assert.Equal(t, io.EOF, err)
}

func TestRestoreOutsideBuffer(t *testing.T) {
	t.Parallel()

	input := make([]byte, 3*bufferSize)
	for i := range input {
		input[i] = byte(i % 251)
	}

	for name, mk := range readers(input) {
		c := New(mk())
		require.NoError(t, c.Skip(10))
		pos, err := c.Tell()
		require.NoError(t, err)

		require.NoError(t, c.Skip(2*bufferSize+5))
		far, err := c.Tell()
		require.NoError(t, err)
		assert.Equal(t, int64(2*bufferSize+15), far, name)

		require.NoError(t, c.Restore(pos))
		u8, err := c.ReadU8()
		require.NoError(t, err)
		assert.Equal(t, uint8(10), u8, name)

		require.NoError(t, c.Restore(far))
		u8, err = c.ReadU8()
		require.NoError(t, err)
		assert.Equal(t, uint8((2*bufferSize+15)%251), u8, name)

		b, err := c.Read(bufferSize - 16)
		require.NoError(t, err)
		assert.Equal(t, input[2*bufferSize+16:], b, name)

		_, err = c.ReadU8()
		assert.Equal(t, io.EOF, err, name)
	}
}

// Offsets are those of the source, which need not start at zero
func TestStartOffset(t *testing.T) {
	t.Parallel()

	src := bytes.NewReader([]byte{1, 2, 3, 4, 5})
	_, err := src.Seek(3, io.SeekStart)
	require.NoError(t, err)

	c := New(src)
	assert.Equal(t, int64(3), c.Offset())
	u8, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), u8)
	assert.Equal(t, int64(4), c.Offset())
}

func TestMidEntry(t *testing.T) {
	t.Parallel()

	c := New(bytes.NewReader(nil))
	assert.Nil(t, c.MidEntry(nil))
	assert.True(t, errors.Is(c.MidEntry(io.EOF), xerrors.ErrUnexpectedEndOfData))

	other := errors.New("other")
	assert.Equal(t, other, c.MidEntry(other))
}
