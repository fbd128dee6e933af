// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package zenarc implements reading and writing of ZenGin archives, the
// hierarchical, self-describing container format in which ZenGin games store
// worlds, save-games and other engine data.
//
// An archive consists of a text header followed by a tree of objects and
// typed entries. Three wire encodings exist:
//
//	   Format | Encoding
//	----------+-------------------------------------------------------------
//	    ASCII | One line per entry (`key=type:value`) or object marker
//	   BINARY | Tag prefixed little endian payloads; keys are not stored
//	 BIN_SAFE | Like BINARY, but every entry carries a key, interned in a
//	          | hash table so that each distinct key is stored only once
//
// The encoding is detected from the header by Open, after which every format
// is accessed through the same Reader interface. Writers buffer the archive
// body and emit the header, with its final object count, on Close.
//
// Objects are read by probing: ReadObjectBegin and ReadObjectEnd report
// whether the next unit is an object marker and, if it is not, leave the
// reader exactly where it was. Unknown objects, or the unread remainder of a
// known one, may be discarded with SkipObject:
//
//	obj, ok := r.ReadObjectBegin()
//	if ok && obj.Class != "oCItem" {
//	    err = r.SkipObject(true)
//	}
//
// The mapping of entry types to Go types is:
//
//	    Entry | Go
//	----------+---------------------------------
//	   STRING | string
//	  INTEGER | int32
//	    FLOAT | float32
//	     BYTE | uint8
//	     WORD | uint16
//	     BOOL | bool
//	     VEC3 | Vec3
//	    COLOR | Color
//	      RAW | []byte, [N]byte, Mat3x3
//	RAW_FLOAT | []float32, Vec2, AABB
//	     ENUM | uint32
//	     HASH | uint32 `zen:",hash"`
//
// Marshal and Unmarshal map structs onto objects using this table. Each
// exported field becomes one entry, in declaration order, keyed by the
// `zen:"..."` struct tag (or the field name). Fields which are themselves
// structs, or pointers to structs, become child objects whose class is the Go
// type name unless overridden:
//
//	type Item struct {
//	    Instance string  `zen:"itemInstance"`
//	    Amount   int32   `zen:"amount"`
//	    Visual   *Visual `zen:"visual,class=zCVisual,version=1"`
//	    scratch  int
//	}
//
// A nil pointer is stored as an object with an empty class. Types implementing
// Marshaler write their own object bodies.
package zenarc

import zenarcinterfaces "go.e43.eu/zenarc/interfaces"

// interface Reader reads the contents of an open archive; see
// zenarcinterfaces.Reader
type Reader = zenarcinterfaces.Reader

// interface Writer builds a new archive; see zenarcinterfaces.Writer
type Writer = zenarcinterfaces.Writer

// interface Marshaler is implemented by types which read and write their own
// object bodies
type Marshaler = zenarcinterfaces.Marshaler

type (
	Header    = zenarcinterfaces.Header
	Format    = zenarcinterfaces.Format
	Object    = zenarcinterfaces.Object
	Entry     = zenarcinterfaces.Entry
	EntryType = zenarcinterfaces.EntryType

	Vec2   = zenarcinterfaces.Vec2
	Vec3   = zenarcinterfaces.Vec3
	Color  = zenarcinterfaces.Color
	AABB   = zenarcinterfaces.AABB
	Mat3x3 = zenarcinterfaces.Mat3x3
)

const (
	FormatBinary  = zenarcinterfaces.FormatBinary
	FormatBinSafe = zenarcinterfaces.FormatBinSafe
	FormatASCII   = zenarcinterfaces.FormatASCII
)

const (
	EntryString   = zenarcinterfaces.EntryString
	EntryInteger  = zenarcinterfaces.EntryInteger
	EntryFloat    = zenarcinterfaces.EntryFloat
	EntryByte     = zenarcinterfaces.EntryByte
	EntryWord     = zenarcinterfaces.EntryWord
	EntryBool     = zenarcinterfaces.EntryBool
	EntryVec3     = zenarcinterfaces.EntryVec3
	EntryColor    = zenarcinterfaces.EntryColor
	EntryRaw      = zenarcinterfaces.EntryRaw
	EntryRawFloat = zenarcinterfaces.EntryRawFloat
	EntryEnum     = zenarcinterfaces.EntryEnum
	EntryHash     = zenarcinterfaces.EntryHash
)
