// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/header"
)

var allFormats = []zenarcinterfaces.Format{
	zenarcinterfaces.FormatBinary,
	zenarcinterfaces.FormatBinSafe,
	zenarcinterfaces.FormatASCII,
}

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

// writeArchive builds an archive of format f, calling fn to write its body
func writeArchive(t *testing.T, f zenarcinterfaces.Format, cfg Config, fn func(w *Writer)) []byte {
	t.Helper()

	var buf bytes.Buffer
	w, err := NewWriter(&buf, zenarcinterfaces.Header{Format: f}, cfg)
	require.NoError(t, err)
	fn(w)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func openReader(t *testing.T, rs io.ReadSeeker, cfg Config) *Reader {
	t.Helper()

	c := cursor.New(rs)
	h, err := header.Read(c)
	require.NoError(t, err)
	r, err := NewReader(c, h, cfg)
	require.NoError(t, err)
	return r
}

func openArchive(t *testing.T, b []byte, cfg Config) *Reader {
	t.Helper()
	return openReader(t, bytes.NewReader(b), cfg)
}

// bodyOffset returns the offset of the first byte after the header of b
func bodyOffset(t *testing.T, b []byte) int64 {
	t.Helper()
	return openArchive(t, b, DefaultConfig()).cur.Offset()
}

func (r *Reader) offset() int64 {
	return r.cur.Offset()
}

// captureLogger returns a config logging at debug level into buf
func captureLogger(buf *bytes.Buffer) Config {
	cfg := DefaultConfig()
	cfg.Logger = slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return cfg
}
