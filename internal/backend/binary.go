// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"math"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/entry"
	xerrors "go.e43.eu/zenarc/internal/errors"
)

// The BINARY format is a plain sequence of tag prefixed payloads without keys.
//
// Objects are bracketed by STRING entries holding a sentinel value. The begin
// sentinel is followed by the object's fields, untagged:
//
//     u8 STRING, u32 2, "\x00["
//     u16 len, name
//     u16 len, class
//     u16 version
//     u32 index
//
// The end marker is the STRING entry "\x00]".

type binaryDecoder struct {
	c *cursor.Cursor
}

// sentinel reads a STRING entry and reports whether it holds want
func (d *binaryDecoder) sentinel(want string) bool {
	t, err := d.c.ReadU8()
	if err != nil || entry.Type(t) != entry.String {
		return false
	}
	n, err := d.c.ReadU32()
	if err != nil || int(n) != len(want) {
		return false
	}
	s, err := d.c.ReadString(len(want))
	return err == nil && s == want
}

func (d *binaryDecoder) shortString() (string, error) {
	n, err := d.c.ReadU16()
	if err != nil {
		return "", err
	}
	return d.c.ReadString(int(n))
}

// objectFields reads the untagged fields following a begin sentinel
func (d *binaryDecoder) objectFields(obj *zenarcinterfaces.Object) (err error) {
	if obj.Name, err = d.shortString(); err != nil {
		return err
	}
	if obj.Class, err = d.shortString(); err != nil {
		return err
	}
	if obj.Version, err = d.c.ReadU16(); err != nil {
		return err
	}
	obj.Index, err = d.c.ReadU32()
	return err
}

func (d *binaryDecoder) objectBegin() (obj zenarcinterfaces.Object, ok bool) {
	if !d.sentinel(beginSentinel) {
		return obj, false
	}
	return obj, d.objectFields(&obj) == nil
}

func (d *binaryDecoder) objectEnd() bool {
	return d.sentinel(endSentinel)
}

// marker fails if the entry just read is an object marker. The rest of a begin
// marker is parsed so that a damaged one reports why it is not an object.
func (d *binaryDecoder) marker(t entry.Type, v interface{}, pos int64) error {
	s, ok := sentinelOf(t, v)
	if !ok {
		return nil
	}
	if s == beginSentinel {
		var obj zenarcinterfaces.Object
		if err := d.objectFields(&obj); err != nil {
			return d.c.MidEntry(err)
		}
	}
	return xerrors.MarkerError{End: s == endSentinel, Offset: pos}
}

func (d *binaryDecoder) entry(want entry.Type) (zenarcinterfaces.Entry, error) {
	pos := d.c.Offset()
	b, err := d.c.ReadU8()
	if err != nil {
		return zenarcinterfaces.Entry{}, err
	}

	t := entry.Type(b)
	if !t.Valid() || (want != entry.Any && t != want) {
		return zenarcinterfaces.Entry{}, xerrors.TypeMismatchError{Expected: want, Actual: t, Offset: pos}
	}

	v, err := readPayload(d.c, t, wideLength)
	if err != nil {
		return zenarcinterfaces.Entry{}, err
	}
	if err := d.marker(t, v, pos); err != nil {
		return zenarcinterfaces.Entry{}, err
	}
	return zenarcinterfaces.Entry{Type: t, Value: v}, nil
}

// skip decodes strings in full, since they may be object markers
func (d *binaryDecoder) skip() error {
	pos := d.c.Offset()
	b, err := d.c.ReadU8()
	if err != nil {
		return err
	}

	t := entry.Type(b)
	if t != entry.String {
		return skipPayload(d.c, t, wideLength)
	}
	v, err := readPayload(d.c, t, wideLength)
	if err != nil {
		return err
	}
	return d.marker(t, v, pos)
}

func (d *binaryDecoder) checkpoint() int { return 0 }
func (d *binaryDecoder) rollback(int)    {}

type binaryEncoder struct {
	s *cursor.Sink
}

func putSentinel(s *cursor.Sink, w lengthWidth, sentinel string) {
	s.PutU8(uint8(entry.String))
	w.put(s, len(sentinel))
	s.PutString(sentinel)
}

func checkShortString(s string) error {
	if len(s) > math.MaxUint16 {
		return xerrors.LengthError{Actual: uint64(len(s)), Max: math.MaxUint16}
	}
	return nil
}

func (e *binaryEncoder) objectBegin(obj zenarcinterfaces.Object) error {
	if err := checkShortString(obj.Name); err != nil {
		return err
	}
	if err := checkShortString(obj.Class); err != nil {
		return err
	}

	putSentinel(e.s, wideLength, beginSentinel)
	e.s.PutU16(uint16(len(obj.Name)))
	e.s.PutString(obj.Name)
	e.s.PutU16(uint16(len(obj.Class)))
	e.s.PutString(obj.Class)
	e.s.PutU16(obj.Version)
	e.s.PutU32(obj.Index)
	return nil
}

func (e *binaryEncoder) objectEnd() error {
	putSentinel(e.s, wideLength, endSentinel)
	return nil
}

func (e *binaryEncoder) entry(ent zenarcinterfaces.Entry) error {
	if err := checkLength(ent, wideLength); err != nil {
		return err
	}
	e.s.PutU8(uint8(ent.Type))
	putPayload(e.s, ent, wideLength)
	return nil
}
