// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package backend implements the three archive wire formats behind the
// shared Reader and Writer contracts.
//
// Each format supplies a decoder and an encoder which know only the wire
// layout. Reader and Writer own everything else: the object boundary stack,
// rollback of failed probes, type validation of typed reads, and skipping.
package backend

import (
	"fmt"
	"io"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/entry"
	xerrors "go.e43.eu/zenarc/internal/errors"
)

// decoder is implemented by each wire format
type decoder interface {
	// objectBegin parses an object header at the cursor, returning false if
	// the next unit is anything else. It need not restore the cursor.
	objectBegin() (zenarcinterfaces.Object, bool)

	// objectEnd parses an object end marker at the cursor, returning false if
	// the next unit is anything else. It need not restore the cursor.
	objectEnd() bool

	// entry reads one entry. Unless want is entry.Any, the entry's tag must
	// equal want. io.EOF is returned only if the stream ends before the
	// entry's first byte.
	entry(want entry.Type) (zenarcinterfaces.Entry, error)

	// skip consumes one entry without decoding its value. io.EOF is returned
	// only if the stream ends before the entry's first byte.
	skip() error

	// checkpoint and rollback save and restore any decoder state (beyond
	// the cursor position) that a probe may modify
	checkpoint() int
	rollback(int)
}

// Reader implements the archive reading contract on top of a format decoder
type Reader struct {
	cur   *cursor.Cursor
	hdr   zenarcinterfaces.Header
	cfg   Config
	stack objectStack
	dec   decoder

	// End markers consumed while no object was open
	unmatched int
}

var _ zenarcinterfaces.Reader = &Reader{}

// NewReader constructs the reader for the format named by hdr. The cursor must
// be positioned at the first byte after the header.
func NewReader(c *cursor.Cursor, hdr zenarcinterfaces.Header, cfg Config) (*Reader, error) {
	r := &Reader{cur: c, hdr: hdr, cfg: cfg}
	r.cfg.logger()

	switch hdr.Format {
	case zenarcinterfaces.FormatBinary:
		r.dec = &binaryDecoder{c: c}
	case zenarcinterfaces.FormatBinSafe:
		r.dec = newBinSafeDecoder(c, hdr.BinSafeVersion, &r.cfg)
	case zenarcinterfaces.FormatASCII:
		r.dec = &asciiDecoder{c: c}
	default:
		return nil, xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown format %d", hdr.Format)}
	}
	return r, nil
}

func (r *Reader) Header() zenarcinterfaces.Header {
	return r.hdr
}

func (r *Reader) IsSaveGame() bool {
	return r.hdr.Save
}

func (r *Reader) Depth() int {
	return r.stack.depth()
}

// HashTable returns a copy of the BIN_SAFE keys interned so far, or nil for
// other formats
func (r *Reader) HashTable() []HashTableEntry {
	if d, ok := r.dec.(*binSafeDecoder); ok {
		return d.table.snapshot()
	}
	return nil
}

// probe runs fn, restoring the cursor and decoder state if it reports failure
func (r *Reader) probe(fn func() bool) bool {
	pos, err := r.cur.Tell()
	if err != nil {
		return false
	}
	mark := r.dec.checkpoint()

	if fn() {
		return true
	}

	r.dec.rollback(mark)
	if err := r.cur.Restore(pos); err != nil {
		r.cfg.Logger.Error("failed to restore cursor after probe", "offset", pos, "error", err)
	}
	return false
}

func (r *Reader) ReadObjectBegin() (zenarcinterfaces.Object, bool) {
	var obj zenarcinterfaces.Object
	ok := r.probe(func() (ok bool) {
		obj, ok = r.dec.objectBegin()
		return ok
	})
	if !ok {
		return zenarcinterfaces.Object{}, false
	}

	if r.hdr.ObjectCount > 0 && obj.Index >= r.hdr.ObjectCount {
		r.cfg.Logger.Warn("object index beyond object count",
			"object", obj.Name, "class", obj.Class, "index", obj.Index, "count", r.hdr.ObjectCount)
	}
	r.stack.push(obj)
	return obj, true
}

// ReadObjectEnd consumes an end marker. One found with no object open is still
// consumed, and counted so that Finish reports the imbalance.
func (r *Reader) ReadObjectEnd() bool {
	if !r.probe(r.dec.objectEnd) {
		return false
	}
	if _, ok := r.stack.pop(); !ok {
		r.unmatched++
	}
	return true
}

// read reads one entry of type t for a typed read. Running out of data is an
// error here even at an entry boundary.
func (r *Reader) read(t entry.Type) (interface{}, int64, error) {
	pos := r.cur.Offset()
	e, err := r.dec.entry(t)
	if err == io.EOF {
		return nil, pos, xerrors.EndOfDataError{Offset: pos}
	}
	if err != nil {
		return nil, pos, err
	}
	return e.Value, pos, nil
}

func (r *Reader) ReadString() (string, error) {
	v, _, err := r.read(entry.String)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Reader) ReadInt() (int32, error) {
	v, _, err := r.read(entry.Integer)
	if err != nil {
		return 0, err
	}
	return v.(int32), nil
}

func (r *Reader) ReadFloat() (float32, error) {
	v, _, err := r.read(entry.Float)
	if err != nil {
		return 0, err
	}
	return v.(float32), nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	v, _, err := r.read(entry.Byte)
	if err != nil {
		return 0, err
	}
	return v.(uint8), nil
}

func (r *Reader) ReadWord() (uint16, error) {
	v, _, err := r.read(entry.Word)
	if err != nil {
		return 0, err
	}
	return v.(uint16), nil
}

func (r *Reader) ReadEnum() (uint32, error) {
	v, _, err := r.read(entry.Enum)
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

func (r *Reader) ReadHash() (uint32, error) {
	v, _, err := r.read(entry.Hash)
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, _, err := r.read(entry.Bool)
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (r *Reader) ReadColor() (zenarcinterfaces.Color, error) {
	v, _, err := r.read(entry.Color)
	if err != nil {
		return zenarcinterfaces.Color{}, err
	}
	return v.(zenarcinterfaces.Color), nil
}

func (r *Reader) ReadVec3() (zenarcinterfaces.Vec3, error) {
	v, _, err := r.read(entry.Vec3)
	if err != nil {
		return zenarcinterfaces.Vec3{}, err
	}
	return v.(zenarcinterfaces.Vec3), nil
}

func (r *Reader) ReadRaw(size int) ([]byte, error) {
	v, pos, err := r.read(entry.Raw)
	if err != nil {
		return nil, err
	}
	b := v.([]byte)
	if len(b) != size {
		return nil, xerrors.SizeMismatchError{Expected: size, Actual: len(b), Offset: pos}
	}
	return b, nil
}

func (r *Reader) ReadRawFloat() ([]float32, error) {
	v, _, err := r.read(entry.RawFloat)
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// readFloats reads a RAW_FLOAT entry holding at least n floats
func (r *Reader) readFloats(n int) ([]float32, error) {
	v, pos, err := r.read(entry.RawFloat)
	if err != nil {
		return nil, err
	}
	fs := v.([]float32)
	if len(fs) < n {
		return nil, xerrors.SizeMismatchError{Expected: 4 * n, Actual: 4 * len(fs), Offset: pos}
	}
	return fs, nil
}

func (r *Reader) ReadVec2() (zenarcinterfaces.Vec2, error) {
	fs, err := r.readFloats(2)
	if err != nil {
		return zenarcinterfaces.Vec2{}, err
	}
	return zenarcinterfaces.Vec2{X: fs[0], Y: fs[1]}, nil
}

func (r *Reader) ReadBBox() (zenarcinterfaces.AABB, error) {
	fs, err := r.readFloats(6)
	if err != nil {
		return zenarcinterfaces.AABB{}, err
	}
	return zenarcinterfaces.AABB{
		Min: zenarcinterfaces.Vec3{X: fs[0], Y: fs[1], Z: fs[2]},
		Max: zenarcinterfaces.Vec3{X: fs[3], Y: fs[4], Z: fs[5]},
	}, nil
}

func (r *Reader) ReadMat3x3() (zenarcinterfaces.Mat3x3, error) {
	var m zenarcinterfaces.Mat3x3
	b, err := r.ReadRaw(4 * len(m))
	if err != nil {
		return m, err
	}
	copy(m[:], floatsFromBytes(b))
	return m, nil
}

func (r *Reader) ReadEntry() (zenarcinterfaces.Entry, error) {
	return r.dec.entry(entry.Any)
}

func (r *Reader) SkipEntry() error {
	return r.dec.skip()
}

func (r *Reader) Finish() error {
	if d := r.stack.depth(); d != 0 {
		return xerrors.UnbalancedError{Depth: d}
	}
	if r.unmatched != 0 {
		return xerrors.UnbalancedError{Depth: -r.unmatched}
	}
	return nil
}
