// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/entry"
	xerrors "go.e43.eu/zenarc/internal/errors"
	"go.e43.eu/zenarc/internal/header"
)

// The BIN_SAFE format prefixes every entry with an interned key:
//
//     u16 ref
//       ref == 0xFFFF: u16 len, key, u32 hash   (appended to the hash table)
//       otherwise:     [u32 hash]               (revision 2 and later only)
//     u8 tag
//     payload; variable length payloads have a u16 length prefix
//
// An object begin marker is a STRING entry keyed by the object name holding
// "\x00[", followed by a key reference for the class name, u16 version and
// u32 index. The end marker is a STRING entry with an empty key holding "\x00]".

type binSafeDecoder struct {
	c       *cursor.Cursor
	table   hashTable
	version uint32
	cfg     *Config

	// Offset of the last hash mismatch logged. A rejected object marker read
	// rewinds and resolves the same key reference again; each mismatch is
	// reported once.
	warnedAt int64
}

func newBinSafeDecoder(c *cursor.Cursor, version uint32, cfg *Config) *binSafeDecoder {
	return &binSafeDecoder{c: c, version: version, cfg: cfg, warnedAt: -1}
}

// key resolves the key reference at the cursor. io.EOF is passed through
// unchanged so callers can tell a clean end of stream.
func (d *binSafeDecoder) key() (string, error) {
	pos := d.c.Offset()
	ref, err := d.c.ReadU16()
	if err != nil {
		return "", err
	}

	if ref == newKeyRef {
		n, err := d.c.ReadU16()
		if err != nil {
			return "", d.c.MidEntry(err)
		}
		key, err := d.c.ReadString(int(n))
		if err != nil {
			return "", d.c.MidEntry(err)
		}
		hash, err := d.c.ReadU32()
		if err != nil {
			return "", d.c.MidEntry(err)
		}
		d.table.add(key, hash)
		return key, nil
	}

	e, ok := d.table.at(int(ref))
	if !ok {
		return "", xerrors.HashIndexError{Index: int(ref), Len: d.table.len(), Offset: pos}
	}
	if err := d.skipOptionalHash(e, pos); err != nil {
		return "", err
	}
	return e.Key, nil
}

// skipOptionalHash consumes the redundant hash stored after a back-reference
// by revision 2 archives, checking it according to the configured policy
func (d *binSafeDecoder) skipOptionalHash(e HashTableEntry, pos int64) error {
	if d.version < header.BinSafeV2 {
		return nil
	}
	hash, err := d.c.ReadU32()
	if err != nil {
		return d.c.MidEntry(err)
	}
	if hash == e.Hash {
		return nil
	}

	switch d.cfg.HashCheck {
	case HashCheckWarn:
		if pos > d.warnedAt {
			d.warnedAt = pos
			d.cfg.logger().Warn("hash mismatch for interned key",
				"key", e.Key, "expected", e.Hash, "actual", hash, "offset", pos)
		}
	case HashCheckStrict:
		return xerrors.HashMismatchError{Key: e.Key, Expected: e.Hash, Actual: hash, Offset: pos}
	}
	return nil
}

// entryHeader reads the key and tag of an entry
func (d *binSafeDecoder) entryHeader() (string, entry.Type, error) {
	key, err := d.key()
	if err != nil {
		return "", 0, err
	}
	t, err := d.c.ReadU8()
	if err != nil {
		return "", 0, d.c.MidEntry(err)
	}
	return key, entry.Type(t), nil
}

// sentinel reads a STRING entry and reports whether it holds want
func (d *binSafeDecoder) sentinel(want string) (string, bool) {
	key, t, err := d.entryHeader()
	if err != nil || t != entry.String {
		return "", false
	}
	n, err := d.c.ReadU16()
	if err != nil || int(n) != len(want) {
		return "", false
	}
	s, err := d.c.ReadString(len(want))
	return key, err == nil && s == want
}

// objectFields reads the class reference, version and index following a begin
// sentinel
func (d *binSafeDecoder) objectFields(obj *zenarcinterfaces.Object) (err error) {
	if obj.Class, err = d.key(); err != nil {
		return err
	}
	if obj.Version, err = d.c.ReadU16(); err != nil {
		return err
	}
	obj.Index, err = d.c.ReadU32()
	return err
}

func (d *binSafeDecoder) objectBegin() (obj zenarcinterfaces.Object, ok bool) {
	if obj.Name, ok = d.sentinel(beginSentinel); !ok {
		return obj, false
	}
	return obj, d.objectFields(&obj) == nil
}

func (d *binSafeDecoder) objectEnd() bool {
	_, ok := d.sentinel(endSentinel)
	return ok
}

// marker fails if the entry just read is an object marker. The rest of a begin
// marker is parsed so that a damaged one reports why it is not an object: a
// truncated header, or a class reference which does not resolve.
func (d *binSafeDecoder) marker(t entry.Type, v interface{}, pos int64) error {
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

func (d *binSafeDecoder) entry(want entry.Type) (zenarcinterfaces.Entry, error) {
	pos := d.c.Offset()
	key, t, err := d.entryHeader()
	if err != nil {
		return zenarcinterfaces.Entry{}, err
	}
	if !t.Valid() || (want != entry.Any && t != want) {
		return zenarcinterfaces.Entry{}, xerrors.TypeMismatchError{Expected: want, Actual: t, Offset: pos}
	}

	v, err := readPayload(d.c, t, shortLength)
	if err != nil {
		return zenarcinterfaces.Entry{}, err
	}
	if err := d.marker(t, v, pos); err != nil {
		return zenarcinterfaces.Entry{}, err
	}
	return zenarcinterfaces.Entry{Key: key, Type: t, Value: v}, nil
}

// skip still resolves the key, since a skipped entry may define one that
// later entries refer back to. Strings are decoded in full, since they may be
// object markers.
func (d *binSafeDecoder) skip() error {
	pos := d.c.Offset()
	_, t, err := d.entryHeader()
	if err != nil {
		return err
	}
	if t != entry.String {
		return skipPayload(d.c, t, shortLength)
	}
	v, err := readPayload(d.c, t, shortLength)
	if err != nil {
		return err
	}
	return d.marker(t, v, pos)
}

func (d *binSafeDecoder) checkpoint() int {
	return d.table.len()
}

func (d *binSafeDecoder) rollback(n int) {
	d.table.truncate(n)
}

type binSafeEncoder struct {
	s       *cursor.Sink
	table   *hashTable
	version uint32
}

func newBinSafeEncoder(s *cursor.Sink, version uint32) *binSafeEncoder {
	return &binSafeEncoder{s: s, table: newWriteTable(), version: version}
}

// checkKey fails if key cannot be referenced
func (e *binSafeEncoder) checkKey(key string) error {
	if _, ok := e.table.lookup(key); ok {
		return nil
	}
	if e.table.full() {
		return xerrors.LengthError{Actual: uint64(e.table.len()) + 1, Max: newKeyRef}
	}
	return checkShortString(key)
}

// putKey writes a reference to key, defining it first if it is new
func (e *binSafeEncoder) putKey(key string) {
	if i, ok := e.table.lookup(key); ok {
		e.s.PutU16(i)
		if e.version >= header.BinSafeV2 {
			ent, _ := e.table.at(int(i))
			e.s.PutU32(ent.Hash)
		}
		return
	}

	hash := KeyHash(key)
	e.table.add(key, hash)
	e.s.PutU16(newKeyRef)
	e.s.PutU16(uint16(len(key)))
	e.s.PutString(key)
	e.s.PutU32(hash)
}

func (e *binSafeEncoder) objectBegin(obj zenarcinterfaces.Object) error {
	if err := checkShortString(obj.Name); err != nil {
		return err
	}
	if err := checkShortString(obj.Class); err != nil {
		return err
	}
	if !e.table.fits(obj.Name, obj.Class) {
		return xerrors.LengthError{Actual: uint64(e.table.len()) + 2, Max: newKeyRef}
	}

	e.putKey(obj.Name)
	putSentinel(e.s, shortLength, beginSentinel)
	e.putKey(obj.Class)
	e.s.PutU16(obj.Version)
	e.s.PutU32(obj.Index)
	return nil
}

func (e *binSafeEncoder) objectEnd() error {
	if err := e.checkKey(""); err != nil {
		return err
	}
	e.putKey("")
	putSentinel(e.s, shortLength, endSentinel)
	return nil
}

func (e *binSafeEncoder) entry(ent zenarcinterfaces.Entry) error {
	if err := checkLength(ent, shortLength); err != nil {
		return err
	}
	if err := e.checkKey(ent.Key); err != nil {
		return err
	}

	e.putKey(ent.Key)
	e.s.PutU8(uint8(ent.Type))
	putPayload(e.s, ent, shortLength)
	return nil
}
