// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package zenarc

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var allFormats = []Format{FormatBinary, FormatBinSafe, FormatASCII}

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

// build writes an archive of format f, calling fn to write its contents
func build(t testing.TB, f Format, fn func(w Writer), opts ...Option) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, Header{Format: f}, opts...)
	require.NoError(t, err)
	fn(w)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// open opens b, once directly and once through a singleByteReader
func open(t testing.TB, b []byte, opts ...Option) []Reader {
	t.Helper()

	var readers []Reader
	for _, rs := range []io.ReadSeeker{bytes.NewReader(b), singleByteReader{bytes.NewReader(b)}} {
		r, err := Open(rs, opts...)
		require.NoError(t, err)
		readers = append(readers, r)
	}
	return readers
}

// asciiBody returns the text following the header of an ASCII archive
func asciiBody(t testing.TB, b []byte) string {
	t.Helper()

	s := string(b)
	i := strings.Index(s, "END\n\n")
	require.True(t, i >= 0, "no header trailer in %q", s)
	return s[i+len("END\n\n"):]
}
