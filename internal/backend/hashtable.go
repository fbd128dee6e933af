// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// newKeyRef is the key reference which announces an inline key definition.
// It is also why the table can hold at most math.MaxUint16 keys.
const newKeyRef = math.MaxUint16

// HashTableEntry is one interned BIN_SAFE key
type HashTableEntry struct {
	Key  string
	Hash uint32
}

// hashTable is the append-only key store of a BIN_SAFE session. An index, once
// assigned, resolves to the same key until the session ends.
type hashTable struct {
	entries []HashTableEntry

	// Reverse lookup used when writing; nil on the read side
	index map[string]uint16
}

func newWriteTable() *hashTable {
	return &hashTable{index: make(map[string]uint16)}
}

func (t *hashTable) len() int {
	return len(t.entries)
}

func (t *hashTable) full() bool {
	return len(t.entries) >= newKeyRef
}

// fits reports whether every one of keys not yet interned can still be added
func (t *hashTable) fits(keys ...string) bool {
	n := 0
	for i, k := range keys {
		if _, ok := t.lookup(k); ok {
			continue
		}
		dup := false
		for _, prev := range keys[:i] {
			dup = dup || prev == k
		}
		if !dup {
			n++
		}
	}
	return len(t.entries)+n <= newKeyRef
}

func (t *hashTable) at(i int) (HashTableEntry, bool) {
	if i < 0 || i >= len(t.entries) {
		return HashTableEntry{}, false
	}
	return t.entries[i], true
}

func (t *hashTable) add(key string, hash uint32) uint16 {
	i := uint16(len(t.entries))
	t.entries = append(t.entries, HashTableEntry{Key: key, Hash: hash})
	if t.index != nil {
		t.index[key] = i
	}
	return i
}

func (t *hashTable) lookup(key string) (uint16, bool) {
	i, ok := t.index[key]
	return i, ok
}

// truncate drops every entry at index n or above. Readers use it to undo
// definitions consumed by a failed probe.
func (t *hashTable) truncate(n int) {
	if n >= len(t.entries) {
		return
	}
	if t.index != nil {
		for _, e := range t.entries[n:] {
			delete(t.index, e.Key)
		}
	}
	t.entries = t.entries[:n]
}

// snapshot returns a copy of the table contents
func (t *hashTable) snapshot() []HashTableEntry {
	return append([]HashTableEntry(nil), t.entries...)
}

// KeyHash is the hash stored alongside interned keys: the low 32 bits of the
// key's xxHash64
func KeyHash(key string) uint32 {
	return uint32(xxhash.Sum64String(key))
}
