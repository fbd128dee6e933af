// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package zenarc

import (
	"io"
	"log/slog"

	"go.e43.eu/zenarc/internal/backend"
	"go.e43.eu/zenarc/internal/coder"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/header"
)

// HashCheckPolicy controls what a BIN_SAFE reader does with the redundant key
// hashes stored by revision 2 archives when they disagree with the hash table
type HashCheckPolicy = backend.HashCheckPolicy

const (
	HashCheckIgnore = backend.HashCheckIgnore
	HashCheckWarn   = backend.HashCheckWarn
	HashCheckStrict = backend.HashCheckStrict
)

// DefaultMaxDepth is the default bound on object nesting
const DefaultMaxDepth = backend.DefaultMaxDepth

// BIN_SAFE revisions supported by writers
const (
	BinSafeV1 = header.BinSafeV1
	BinSafeV2 = header.BinSafeV2
)

// HashTableEntry is one interned BIN_SAFE key
type HashTableEntry = backend.HashTableEntry

// Option configures a Reader or Writer
type Option func(*backend.Config)

// WithLogger sets the logger which receives diagnostics, such as hash
// mismatches under HashCheckWarn. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *backend.Config) {
		c.Logger = l
	}
}

// WithHashCheck sets the BIN_SAFE hash check policy; the default is
// HashCheckIgnore
func WithHashCheck(p HashCheckPolicy) Option {
	return func(c *backend.Config) {
		c.HashCheck = p
	}
}

// WithMaxDepth bounds the object nesting accepted by SkipObject and
// WriteObjectBegin. Zero or a negative value removes the limit.
func WithMaxDepth(n int) Option {
	return func(c *backend.Config) {
		c.MaxDepth = n
	}
}

// WithBinSafeVersion selects the BIN_SAFE revision written: BinSafeV1 omits
// the hash after key back-references. The default is BinSafeV2.
func WithBinSafeVersion(v uint32) Option {
	return func(c *backend.Config) {
		c.BinSafeVersion = v
	}
}

// WithIndent sets whether ASCII writers indent nested objects with tabs
func WithIndent(indent bool) Option {
	return func(c *backend.Config) {
		c.Indent = indent
	}
}

func buildConfig(opts []Option) backend.Config {
	cfg := backend.DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// Open reads the header of the archive in r and returns a reader for its
// contents. r must not be used by anything else until reading is complete.
func Open(r io.ReadSeeker, opts ...Option) (Reader, error) {
	c := cursor.New(r)
	h, err := header.Read(c)
	if err != nil {
		return nil, err
	}
	return backend.NewReader(c, h, buildConfig(opts))
}

// NewWriter returns a writer for a new archive in the format named by h. The
// archive is written to w when the writer is closed; h.ObjectCount is filled
// in automatically.
func NewWriter(w io.Writer, h Header, opts ...Option) (Writer, error) {
	return backend.NewWriter(w, h, buildConfig(opts))
}

// HashTable returns the keys interned so far by a BIN_SAFE reader or writer
// obtained from this package, or nil for any other
func HashTable(rw interface{}) []HashTableEntry {
	switch v := rw.(type) {
	case *backend.Reader:
		return v.HashTable()
	case *backend.Writer:
		return v.HashTable()
	}
	return nil
}

// The default coder (used by Marshal and Unmarshal)
var DefaultCoder = coder.NewCoder()

// Marshal writes the struct v (or the value v points to) as an object named
// name
func Marshal(w Writer, name string, v interface{}) error {
	return DefaultCoder.Marshal(w, name, v)
}

// Unmarshal reads the next object into the struct pointed to by op. Content
// of the object not described by the struct is skipped.
func Unmarshal(r Reader, op interface{}) error {
	return DefaultCoder.Unmarshal(r, op)
}
