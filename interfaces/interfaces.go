// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package zenarcinterfaces defines the primary interfaces and data types of the
// archive codec
//
// (This package is primarily separated out in order to permit the implementation to
// be broken down into multiple packages)
package zenarcinterfaces

import "go.e43.eu/zenarc/internal/entry"

// Format identifies one of the three wire encodings of an archive
type Format int

const (
	FormatBinary  Format = 0
	FormatBinSafe Format = 1
	FormatASCII   Format = 2
)

func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "BINARY"
	case FormatBinSafe:
		return "BIN_SAFE"
	case FormatASCII:
		return "ASCII"
	default:
		return "UNKNOWN"
	}
}

// Header is the header of an archive. It is parsed once when an archive is
// opened and written once when it is closed.
type Header struct {
	Version int32

	// The archiver used to create the archive; either `zCArchiverGeneric`
	// or `zCArchiverBinSafe`
	Archiver string

	Format Format

	// Whether the archive contains a save-game
	Save bool

	User string
	Date string

	// Number of objects in the archive, as recorded in the format trailer
	ObjectCount uint32

	// Revision of the BIN_SAFE encoding; zero for other formats
	BinSafeVersion uint32
}

// Object is the header of one object stored in an archive
type Object struct {
	// The name under which the parent stores this object. May be empty
	Name string

	// The class name of the object, identifying its schema
	Class string

	// A schema revision hint
	Version uint16

	// Unique within an archive; assigned in write order
	Index uint32
}

// EntryType is the one byte type tag of an entry
type EntryType = entry.Type

const (
	EntryString   = entry.String
	EntryInteger  = entry.Integer
	EntryFloat    = entry.Float
	EntryByte     = entry.Byte
	EntryWord     = entry.Word
	EntryBool     = entry.Bool
	EntryVec3     = entry.Vec3
	EntryColor    = entry.Color
	EntryRaw      = entry.Raw
	EntryRawFloat = entry.RawFloat
	EntryEnum     = entry.Enum
	EntryHash     = entry.Hash
)

// Entry is a single typed value. The dynamic type of Value is fixed by Type:
//
//	     Type | Value
//	----------+-----------
//	   STRING | string
//	  INTEGER | int32
//	    FLOAT | float32
//	     BYTE | uint8
//	     WORD | uint16
//	     BOOL | bool
//	     VEC3 | Vec3
//	    COLOR | Color
//	      RAW | []byte
//	RAW_FLOAT | []float32
//	     ENUM | uint32
//	     HASH | uint32
//
// Binary archives do not store keys, so Key is always empty when read from one.
type Entry struct {
	Key   string
	Type  EntryType
	Value interface{}
}

type Vec2 struct {
	X, Y float32
}

type Vec3 struct {
	X, Y, Z float32
}

// Color is an RGBA color
type Color struct {
	R, G, B, A uint8
}

// AABB is an axis aligned bounding box
type AABB struct {
	Min, Max Vec3
}

// Mat3x3 is a 3x3 matrix in column major order
type Mat3x3 [9]float32

// interface Reader reads entries and objects from an open archive.
//
// A Reader owns its underlying stream for the duration of the session; seeking
// the stream externally invalidates the rollback guarantee of the probe methods.
// Readers are not safe for concurrent use.
type Reader interface {
	// Header returns the header of the archive
	Header() Header

	// IsSaveGame returns whether the archive represents a save-game
	IsSaveGame() bool

	// ReadObjectBegin tries to read the beginning of an object. If the next
	// unit is not an object header, the reader is left exactly as it was
	// before the call and false is returned.
	ReadObjectBegin() (Object, bool)

	// ReadObjectEnd tries to read the end of the innermost open object. If the
	// next unit is not an end marker, the reader is left exactly as it was
	// before the call and false is returned. An end marker with no object open
	// is consumed, and reported by Finish.
	ReadObjectEnd() bool

	ReadString() (string, error)
	ReadInt() (int32, error)
	ReadFloat() (float32, error)
	ReadUint8() (uint8, error)
	ReadWord() (uint16, error)
	ReadEnum() (uint32, error)
	ReadBool() (bool, error)
	ReadColor() (Color, error)
	ReadVec3() (Vec3, error)
	ReadHash() (uint32, error)

	// ReadVec2 reads the first two floats of a RAW_FLOAT entry
	ReadVec2() (Vec2, error)

	// ReadBBox reads two consecutive vec3's stored in a RAW_FLOAT entry
	ReadBBox() (AABB, error)

	// ReadMat3x3 reads 9 floats stored in a RAW entry
	ReadMat3x3() (Mat3x3, error)

	// ReadRaw reads a RAW entry, which must be exactly size bytes long
	ReadRaw(size int) ([]byte, error)

	ReadRawFloat() ([]float32, error)

	// ReadEntry reads the next entry, whatever its type. io.EOF is returned
	// at the end of the archive. An object marker is never returned as an
	// entry: it fails with ErrUnexpectedMarker, or with the reason it could
	// not be read as an object.
	ReadEntry() (Entry, error)

	// SkipEntry consumes the next entry without interpreting it. io.EOF is
	// returned at the end of the archive. Object markers fail as in ReadEntry.
	SkipEntry() error

	// SkipObject skips an object and all of its children. If skipCurrent is
	// false the next object is skipped, otherwise the remainder of the
	// innermost open object (including its end marker) is.
	SkipObject(skipCurrent bool) error

	// Depth returns the number of currently open objects
	Depth() int

	// Finish verifies that every object opened has been closed, and that no
	// end marker was read with nothing open
	Finish() error
}

// interface Writer writes entries and objects to a new archive. Nothing is
// written to the underlying stream until Close is called.
type Writer interface {
	// WriteObjectBegin opens a new object, assigning it the next index
	WriteObjectBegin(name, class string, version uint16) error
	WriteObjectEnd() error

	WriteString(key string, v string) error
	WriteInt(key string, v int32) error
	WriteFloat(key string, v float32) error
	WriteUint8(key string, v uint8) error
	WriteWord(key string, v uint16) error
	WriteEnum(key string, v uint32) error
	WriteBool(key string, v bool) error
	WriteColor(key string, v Color) error
	WriteVec3(key string, v Vec3) error
	WriteVec2(key string, v Vec2) error
	WriteBBox(key string, v AABB) error
	WriteMat3x3(key string, v Mat3x3) error
	WriteRaw(key string, v []byte) error
	WriteRawFloat(key string, v []float32) error
	WriteHash(key string, v uint32) error

	// WriteEntry writes a generic entry. The dynamic type of e.Value must
	// match e.Type
	WriteEntry(e Entry) error

	// Depth returns the number of currently open objects
	Depth() int

	// Close finalizes the archive: it fails if any object is still open,
	// otherwise writes the header followed by the body.
	Close() error
}

// interface Marshaler is the interface implemented by a type which knows how
// to write itself to and read itself from an archive object
type Marshaler interface {
	MarshalArchive(w Writer) error
	UnmarshalArchive(r Reader) error
}
