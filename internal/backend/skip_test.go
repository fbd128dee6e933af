// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	xerrors "go.e43.eu/zenarc/internal/errors"
)

func writeTree(t *testing.T, w *Writer) {
	t.Helper()

	require.NoError(t, w.WriteObjectBegin("root", "zCWorld", 1))
	require.NoError(t, w.WriteInt("count", 2))
	for _, name := range []string{"first", "second"} {
		require.NoError(t, w.WriteObjectBegin(name, "zCVob", 2))
		require.NoError(t, w.WriteString("name", name))
		require.NoError(t, w.WriteObjectBegin("", "zCVisual", 0))
		require.NoError(t, w.WriteObjectEnd())
		require.NoError(t, w.WriteRaw("data", []byte{1, 2, 3, 4}))
		require.NoError(t, w.WriteObjectEnd())
	}
	require.NoError(t, w.WriteVec3("position", zenarcinterfaces.Vec3{X: 1, Y: 2, Z: 3}))
	require.NoError(t, w.WriteObjectEnd())

	require.NoError(t, w.WriteString("trailer", "done"))
}

// readTree reads one object subtree generically
func readTree(t *testing.T, r *Reader) {
	t.Helper()

	_, ok := r.ReadObjectBegin()
	require.True(t, ok)
	for r.Depth() > 0 {
		if _, ok := r.ReadObjectBegin(); ok {
			continue
		}
		if r.ReadObjectEnd() {
			continue
		}
		_, err := r.ReadEntry()
		require.NoError(t, err)
	}
}

func TestSkipObject(t *testing.T) {
	t.Parallel()

	for _, f := range allFormats {
		f := f
		t.Run(f.String(), func(t *testing.T) {
			t.Parallel()

			b := writeArchive(t, f, DefaultConfig(), func(w *Writer) { writeTree(t, w) })

			read := openArchive(t, b, DefaultConfig())
			readTree(t, read)

			skipped := openArchive(t, b, DefaultConfig())
			require.NoError(t, skipped.SkipObject(false))
			assert.Equal(t, read.offset(), skipped.offset())
			assert.Equal(t, 0, skipped.Depth())
			assert.Equal(t, read.HashTable(), skipped.HashTable())

			s, err := skipped.ReadString()
			require.NoError(t, err)
			assert.Equal(t, "done", s)

			// Nothing left to skip
			assert.Equal(t, xerrors.ErrExpectedObject, skipped.SkipObject(false))
			assert.Equal(t, xerrors.ErrExpectedObject, skipped.SkipObject(true))
		})
	}
}

func TestSkipCurrentObject(t *testing.T) {
	t.Parallel()

	for _, f := range allFormats {
		b := writeArchive(t, f, DefaultConfig(), func(w *Writer) { writeTree(t, w) })
		r := openArchive(t, b, DefaultConfig())

		_, ok := r.ReadObjectBegin()
		require.True(t, ok)
		i, err := r.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, int32(2), i)

		first, ok := r.ReadObjectBegin()
		require.True(t, ok)
		assert.Equal(t, "first", first.Name)
		assert.Equal(t, 2, r.Depth())

		// Discard the rest of "first"
		require.NoError(t, r.SkipObject(true), "%s", f)
		assert.Equal(t, 1, r.Depth())

		second, ok := r.ReadObjectBegin()
		require.True(t, ok)
		assert.Equal(t, "second", second.Name)
		assert.Equal(t, uint32(3), second.Index)

		// Discard "second" and the rest of root
		require.NoError(t, r.SkipObject(true))
		require.NoError(t, r.SkipObject(true))
		assert.Equal(t, 0, r.Depth())

		s, err := r.ReadString()
		require.NoError(t, err)
		assert.Equal(t, "done", s, "%s", f)
		require.NoError(t, r.Finish())
	}
}

func TestSkipExpectedObject(t *testing.T) {
	t.Parallel()

	for _, f := range allFormats {
		b := writeArchive(t, f, DefaultConfig(), func(w *Writer) {
			require.NoError(t, w.WriteInt("a", 1))
		})
		r := openArchive(t, b, DefaultConfig())
		start := r.offset()

		assert.Equal(t, xerrors.ErrExpectedObject, r.SkipObject(false), "%s", f)
		assert.Equal(t, xerrors.ErrExpectedObject, r.SkipObject(true), "%s", f)
		assert.Equal(t, start, r.offset())
	}
}

func TestSkipTruncated(t *testing.T) {
	t.Parallel()

	for _, f := range allFormats {
		b := writeArchive(t, f, DefaultConfig(), func(w *Writer) { writeTree(t, w) })

		// Cut the archive off within the final end marker
		r := openArchive(t, b, DefaultConfig())
		readTree(t, r)
		cut := r.offset() - 2

		r = openArchive(t, b[:cut], DefaultConfig())
		err := r.SkipObject(false)
		assert.True(t, errors.Is(err, xerrors.ErrUnexpectedEndOfData), "%s: %v", f, err)
	}
}

func writeNested(t *testing.T, w *Writer, levels int) {
	t.Helper()

	for i := 0; i < levels; i++ {
		require.NoError(t, w.WriteObjectBegin("", "zCNested", 0))
		require.NoError(t, w.WriteInt("level", int32(i)))
	}
	for i := 0; i < levels; i++ {
		require.NoError(t, w.WriteObjectEnd())
	}
}

func TestSkipDeepNesting(t *testing.T) {
	t.Parallel()

	const levels = 10000

	for _, f := range allFormats {
		cfg := DefaultConfig()
		cfg.Indent = false

		b := writeArchive(t, f, cfg, func(w *Writer) { writeNested(t, w, levels) })
		r := openArchive(t, b, cfg)
		require.NoError(t, r.SkipObject(false), "%s", f)
		assert.Equal(t, 0, r.Depth())
		require.NoError(t, r.Finish())

		_, err := r.ReadEntry()
		assert.Equal(t, io.EOF, err, "%s", f)
	}
}

func TestSkipMaxDepth(t *testing.T) {
	t.Parallel()

	unlimited := DefaultConfig()
	unlimited.MaxDepth = 0

	limited := DefaultConfig()
	limited.MaxDepth = 100

	for _, f := range allFormats {
		ok := writeArchive(t, f, unlimited, func(w *Writer) { writeNested(t, w, 100) })
		r := openArchive(t, ok, limited)
		require.NoError(t, r.SkipObject(false), "%s", f)

		deep := writeArchive(t, f, unlimited, func(w *Writer) { writeNested(t, w, 101) })
		r = openArchive(t, deep, limited)
		err := r.SkipObject(false)
		require.True(t, errors.Is(err, xerrors.ErrDepthExceeded), "%s: %v", f, err)
		assert.Equal(t, xerrors.DepthError{Limit: 100}, err)
	}
}

// MaxDepth bounds what SkipObject descends through on its own, not what a
// caller opens with ReadObjectBegin
func TestReaderDepthUnbounded(t *testing.T) {
	t.Parallel()

	unlimited := DefaultConfig()
	unlimited.MaxDepth = 0

	limited := DefaultConfig()
	limited.MaxDepth = 2

	for _, f := range allFormats {
		b := writeArchive(t, f, unlimited, func(w *Writer) { writeNested(t, w, 5) })

		r := openArchive(t, b, limited)
		for i := 0; i < 5; i++ {
			_, ok := r.ReadObjectBegin()
			require.True(t, ok, "%s level %d", f, i)
			_, err := r.ReadInt()
			require.NoError(t, err)
		}
		assert.Equal(t, 5, r.Depth())

		// Skipping the current object descends no further
		require.NoError(t, r.SkipObject(true), "%s", f)
		for i := 0; i < 4; i++ {
			require.True(t, r.ReadObjectEnd(), "%s", f)
		}
		require.NoError(t, r.Finish())

		r = openArchive(t, b, limited)
		assert.Equal(t, xerrors.DepthError{Limit: 2}, r.SkipObject(false), "%s", f)
	}
}
