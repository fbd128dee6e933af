// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"go.e43.eu/zenarc"
)

type headerNode struct {
	Version        int32  `yaml:"version"`
	Archiver       string `yaml:"archiver"`
	Format         string `yaml:"format"`
	SaveGame       bool   `yaml:"saveGame"`
	Date           string `yaml:"date,omitempty"`
	User           string `yaml:"user,omitempty"`
	Objects        uint32 `yaml:"objects"`
	BinSafeVersion uint32 `yaml:"binSafeVersion,omitempty"`
}

type objectNode struct {
	Name     string        `yaml:"object"`
	Class    string        `yaml:"class"`
	Version  uint16        `yaml:"version"`
	Index    uint32        `yaml:"index"`
	Contents []interface{} `yaml:"contents,omitempty"`
}

type entryNode struct {
	Key   string      `yaml:"key,omitempty"`
	Type  string      `yaml:"type"`
	Value interface{} `yaml:"value"`
}

type hashNode struct {
	Index int    `yaml:"index"`
	Key   string `yaml:"key"`
	Hash  string `yaml:"hash"`
}

type document struct {
	Header    headerNode    `yaml:"header"`
	Contents  []interface{} `yaml:"contents"`
	HashTable []hashNode    `yaml:"hashTable,omitempty"`
}

// treeBuilder collects the contents of an archive into a document
type treeBuilder struct {
	root  []interface{}
	stack []*objectNode
}

func (b *treeBuilder) add(n interface{}) {
	if len(b.stack) == 0 {
		b.root = append(b.root, n)
		return
	}
	top := b.stack[len(b.stack)-1]
	top.Contents = append(top.Contents, n)
}

func (b *treeBuilder) ObjectBegin(obj zenarc.Object) error {
	n := &objectNode{Name: obj.Name, Class: obj.Class, Version: obj.Version, Index: obj.Index}
	b.add(n)
	b.stack = append(b.stack, n)
	return nil
}

func (b *treeBuilder) ObjectEnd() error {
	if len(b.stack) == 0 {
		return zenarc.ErrUnbalancedObject
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *treeBuilder) Entry(e zenarc.Entry) error {
	v := e.Value
	switch x := v.(type) {
	case []byte:
		v = hex.EncodeToString(x)
	case zenarc.Vec3:
		v = []float32{x.X, x.Y, x.Z}
	case zenarc.Color:
		v = []uint8{x.R, x.G, x.B, x.A}
	}
	b.add(&entryNode{Key: e.Key, Type: e.Type.Keyword(), Value: v})
	return nil
}

func runDump(args []string) error {
	var rf readerFlags
	var hashTable bool

	fs := pflag.NewFlagSet("dump", pflag.ContinueOnError)
	rf.add(fs)
	fs.BoolVar(&hashTable, "hash-table", false, "also print the BIN_SAFE key table")

	path, ok, err := parseArgs(fs, args)
	if !ok {
		return err
	}

	logger := rf.logger()
	opts, err := rf.options(logger)
	if err != nil {
		return err
	}

	r, closeFn, err := openArchive(path, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	logger.Debug("opened archive", "path", path, "format", r.Header().Format, "objects", r.Header().ObjectCount)

	doc, err := buildDocument(r, hashTable)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return writeDocument(os.Stdout, doc)
}

func buildDocument(r zenarc.Reader, withHashTable bool) (*document, error) {
	h := r.Header()
	doc := &document{
		Header: headerNode{
			Version:        h.Version,
			Archiver:       h.Archiver,
			Format:         h.Format.String(),
			SaveGame:       h.Save,
			Date:           h.Date,
			User:           h.User,
			Objects:        h.ObjectCount,
			BinSafeVersion: h.BinSafeVersion,
		},
	}

	var b treeBuilder
	if err := zenarc.Walk(r, &b); err != nil {
		return nil, err
	}
	doc.Contents = b.root

	if withHashTable {
		for i, e := range zenarc.HashTable(r) {
			doc.HashTable = append(doc.HashTable, hashNode{Index: i, Key: e.Key, Hash: fmt.Sprintf("%08x", e.Hash)})
		}
	}
	return doc, nil
}

func writeDocument(w io.Writer, doc *document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
