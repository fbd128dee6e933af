// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	xerrors "go.e43.eu/zenarc/internal/errors"
	"go.e43.eu/zenarc/internal/header"
)

func TestKeyInterning(t *testing.T) {
	t.Parallel()

	var written []HashTableEntry
	b := writeArchive(t, zenarcinterfaces.FormatBinSafe, DefaultConfig(), func(w *Writer) {
		require.NoError(t, w.WriteObjectBegin("ITEM1", "oCItem", 0))
		require.NoError(t, w.WriteInt("amount", 5))
		require.NoError(t, w.WriteObjectEnd())
		require.NoError(t, w.WriteObjectBegin("ITEM2", "oCItem", 0))
		require.NoError(t, w.WriteInt("amount", 7))
		require.NoError(t, w.WriteObjectEnd())
		written = w.HashTable()
	})

	assert.Equal(t, 1, bytes.Count(b, []byte("amount")))
	assert.Equal(t, 1, bytes.Count(b, []byte("oCItem")))

	var keys []string
	for _, e := range written {
		assert.Equal(t, KeyHash(e.Key), e.Hash)
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"ITEM1", "oCItem", "amount", "", "ITEM2"}, keys)

	r := openArchive(t, b, DefaultConfig())
	for i, expected := range []int32{5, 7} {
		obj, ok := r.ReadObjectBegin()
		require.True(t, ok)
		assert.Equal(t, zenarcinterfaces.Object{Name: fmt.Sprintf("ITEM%d", i+1), Class: "oCItem", Index: uint32(i)}, obj)

		v, err := r.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, expected, v)
		require.True(t, r.ReadObjectEnd())
	}
	assert.Equal(t, written, r.HashTable())
}

func TestKeyHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint32(xxhash.Sum64String("amount")), KeyHash("amount"))
	assert.NotEqual(t, KeyHash("amount"), KeyHash("amounts"))
}

// repeatedKey writes an archive whose final bytes are a back-referenced entry:
// u16 ref, [u32 hash], u8 tag, i32 value
func repeatedKey(t *testing.T, version uint32) []byte {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BinSafeVersion = version
	return writeArchive(t, zenarcinterfaces.FormatBinSafe, cfg, func(w *Writer) {
		require.NoError(t, w.WriteInt("k", 1))
		require.NoError(t, w.WriteInt("k", 2))
	})
}

func TestBinSafeVersions(t *testing.T) {
	t.Parallel()

	v1 := repeatedKey(t, header.BinSafeV1)
	v2 := repeatedKey(t, header.BinSafeV2)
	assert.Equal(t, len(v2)-4, len(v1))

	for _, b := range [][]byte{v1, v2} {
		r := openArchive(t, b, DefaultConfig())
		for _, expected := range []int32{1, 2} {
			i, err := r.ReadInt()
			require.NoError(t, err)
			assert.Equal(t, expected, i)
		}
	}

	assert.Equal(t, uint32(header.BinSafeV1), openArchive(t, v1, DefaultConfig()).Header().BinSafeVersion)
	assert.Equal(t, uint32(header.BinSafeV2), openArchive(t, v2, DefaultConfig()).Header().BinSafeVersion)

	cfg := DefaultConfig()
	cfg.BinSafeVersion = 3
	_, err := NewWriter(&bytes.Buffer{}, zenarcinterfaces.Header{Format: zenarcinterfaces.FormatBinSafe}, cfg)
	assert.True(t, errors.Is(err, xerrors.ErrInvalidValue))
}

func TestHashCheckPolicy(t *testing.T) {
	t.Parallel()

	b := repeatedKey(t, header.BinSafeV2)
	b[len(b)-9] ^= 0xFF

	t.Run("ignore", func(t *testing.T) {
		t.Parallel()

		var log bytes.Buffer
		r := openArchive(t, b, captureLogger(&log))
		_, err := r.ReadInt()
		require.NoError(t, err)
		i, err := r.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, int32(2), i)
		assert.Equal(t, 0, log.Len())
	})

	t.Run("warn", func(t *testing.T) {
		t.Parallel()

		var log bytes.Buffer
		cfg := captureLogger(&log)
		cfg.HashCheck = HashCheckWarn
		r := openArchive(t, b, cfg)
		_, err := r.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, 0, log.Len())

		i, err := r.ReadInt()
		require.NoError(t, err)
		assert.Equal(t, int32(2), i)
		assert.Contains(t, log.String(), "hash mismatch")
		assert.Contains(t, log.String(), "key=k")
	})

	t.Run("strict", func(t *testing.T) {
		t.Parallel()

		cfg := DefaultConfig()
		cfg.HashCheck = HashCheckStrict
		r := openArchive(t, b, cfg)
		_, err := r.ReadInt()
		require.NoError(t, err)

		pos := r.offset()
		_, err = r.ReadInt()
		require.True(t, errors.Is(err, xerrors.ErrHashMismatch), "%v", err)

		var he xerrors.HashMismatchError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, "k", he.Key)
		assert.Equal(t, KeyHash("k"), he.Expected)
		assert.Equal(t, KeyHash("k")^0xFF, he.Actual)
		assert.Equal(t, pos, he.Offset)
	})
}

func TestHashCheckPolicyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ignore", HashCheckIgnore.String())
	assert.Equal(t, "warn", HashCheckWarn.String())
	assert.Equal(t, "strict", HashCheckStrict.String())
	assert.Equal(t, "unknown", HashCheckPolicy(9).String())
}

func TestHashIndexOutOfRange(t *testing.T) {
	t.Parallel()

	b := repeatedKey(t, header.BinSafeV2)
	b[len(b)-11] = 5

	r := openArchive(t, b, DefaultConfig())
	_, err := r.ReadInt()
	require.NoError(t, err)

	pos := r.offset()
	_, err = r.ReadInt()
	require.True(t, errors.Is(err, xerrors.ErrHashIndexOutOfRange), "%v", err)
	assert.Equal(t, xerrors.HashIndexError{Index: 5, Len: 1, Offset: pos}, err)
}

// Skipped entries still define their keys
func TestSkipDefinesKey(t *testing.T) {
	t.Parallel()

	b := repeatedKey(t, header.BinSafeV2)
	r := openArchive(t, b, DefaultConfig())

	require.NoError(t, r.SkipEntry())
	e, err := r.ReadEntry()
	require.NoError(t, err)
	assert.Equal(t, "k", e.Key)
	assert.Equal(t, int32(2), e.Value)
}

func TestBinSafeLengthLimit(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 1<<16)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, zenarcinterfaces.Header{Format: zenarcinterfaces.FormatBinSafe}, DefaultConfig())
	require.NoError(t, err)

	err = w.WriteString("s", long)
	assert.True(t, errors.Is(err, xerrors.ErrLengthExceedsMax))
	assert.True(t, errors.Is(err, xerrors.ErrInvalidValue))
	assert.True(t, errors.Is(w.WriteInt(long, 1), xerrors.ErrLengthExceedsMax))
	assert.True(t, errors.Is(w.WriteObjectBegin(long, "C", 0), xerrors.ErrLengthExceedsMax))
	assert.Len(t, w.HashTable(), 0)

	require.NoError(t, w.WriteString("s", long[1:]))
	require.NoError(t, w.Close())

	// BINARY has 32-bit lengths
	b := writeArchive(t, zenarcinterfaces.FormatBinary, DefaultConfig(), func(w *Writer) {
		require.NoError(t, w.WriteString("s", long))
	})
	s, err := openArchive(t, b, DefaultConfig()).ReadString()
	require.NoError(t, err)
	assert.Equal(t, long, s)
}
