// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package entry holds the archive entry type table: the one byte tag which
// prefixes every value on the wire, and the fixed payload size implied by it.
package entry

import "fmt"

// Type is the one byte tag identifying the kind of an archive entry
type Type uint8

const (
	String   Type = 0x01
	Integer  Type = 0x02
	Float    Type = 0x03
	Byte     Type = 0x04
	Word     Type = 0x05
	Bool     Type = 0x06
	Vec3     Type = 0x07
	Color    Type = 0x08
	Raw      Type = 0x09
	RawFloat Type = 0x10
	Enum     Type = 0x11
	Hash     Type = 0x12

	// Any is never written; it is passed to decoders which accept every tag
	Any Type = 0x00
)

// info describes one slot of the type table. Unassigned tags have an empty name.
type info struct {
	name    string
	keyword string
	size    uint8
}

// table is indexed by tag. Variable length types have size zero.
var table = [...]info{
	0x00:     {},
	String:   {"STRING", "string", 0},
	Integer:  {"INTEGER", "int", 4},
	Float:    {"FLOAT", "float", 4},
	Byte:     {"BYTE", "byte", 1},
	Word:     {"WORD", "word", 2},
	Bool:     {"BOOL", "bool", 4},
	Vec3:     {"VEC3", "vec3", 12},
	Color:    {"COLOR", "color", 4},
	Raw:      {"RAW", "raw", 0},
	0x0A:     {},
	0x0B:     {},
	0x0C:     {},
	0x0D:     {},
	0x0E:     {},
	0x0F:     {},
	RawFloat: {"RAW_FLOAT", "rawFloat", 0},
	Enum:     {"ENUM", "enum", 4},
	Hash:     {"HASH", "hash", 4},
}

func (t Type) info() info {
	if int(t) < len(table) {
		return table[t]
	}
	return info{}
}

// Valid returns whether t is an assigned tag
func (t Type) Valid() bool {
	return t.info().name != ""
}

// Size returns the fixed payload size of t, or 0 for variable length types
func (t Type) Size() int {
	return int(t.info().size)
}

// Variable returns whether entries of type t carry an explicit length prefix
func (t Type) Variable() bool {
	return t == String || t == Raw || t == RawFloat
}

func (t Type) String() string {
	if n := t.info().name; n != "" {
		return n
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
}

// Keyword returns the spelling used for t by the ASCII format
func (t Type) Keyword() string {
	return t.info().keyword
}

// ParseKeyword maps an ASCII type keyword back to its tag
func ParseKeyword(s string) (Type, bool) {
	for i := range table {
		if table[i].keyword != "" && table[i].keyword == s {
			return Type(i), true
		}
	}
	return Any, false
}
