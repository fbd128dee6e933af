// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package header reads and writes the archive header: a short text prologue
// common to all formats, followed by a format specific trailer.
//
//	ZenGin Archive
//	ver 1
//	zCArchiverGeneric
//	ASCII
//	saveGame 0
//	date 1.1.2003 12:00:00
//	user someone
//	END
//	objects 12
//	END
//
// ASCII and BINARY archives end the header with the `objects` block shown
// above. BIN_SAFE archives instead follow the first END with two little endian
// 32-bit values: the BIN_SAFE revision and the object count.
package header

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	xerrors "go.e43.eu/zenarc/internal/errors"
)

const (
	Magic = "ZenGin Archive"

	// Version is the only header version understood
	Version = 1

	ArchiverGeneric = "zCArchiverGeneric"
	ArchiverBinSafe = "zCArchiverBinSafe"

	// Supported BIN_SAFE revisions. Revision 1 omits the redundant hash
	// which follows key back-references in revision 2.
	BinSafeV1 = 1
	BinSafeV2 = 2
)

var formatTokens = map[string]zenarcinterfaces.Format{
	"BINARY":   zenarcinterfaces.FormatBinary,
	"BIN_SAFE": zenarcinterfaces.FormatBinSafe,
	"ASCII":    zenarcinterfaces.FormatASCII,
}

// Token returns the prologue token for format f
func Token(f zenarcinterfaces.Format) string {
	return f.String()
}

// DefaultArchiver returns the archiver name conventionally used with format f
func DefaultArchiver(f zenarcinterfaces.Format) string {
	if f == zenarcinterfaces.FormatBinSafe {
		return ArchiverBinSafe
	}
	return ArchiverGeneric
}

// lineReader tracks line numbers for error reporting
type lineReader struct {
	c    *cursor.Cursor
	line int
}

func (lr *lineReader) next(what string) (string, error) {
	lr.line++
	l, err := lr.c.ReadLine()
	switch {
	case err == io.EOF:
		return "", lr.fail("missing %s", what)
	case err != nil:
		return "", err
	}
	return strings.TrimSpace(l), nil
}

func (lr *lineReader) fail(format string, args ...interface{}) error {
	return xerrors.HeaderError{Line: lr.line, Reason: fmt.Sprintf(format, args...)}
}

// field splits a `key value` line and checks the key
func (lr *lineReader) field(line, key string) (string, error) {
	k, v, _ := strings.Cut(line, " ")
	if k != key {
		return "", lr.fail("expected %q, got %q", key, line)
	}
	return strings.TrimSpace(v), nil
}

// Read parses the header of an archive from the start of c. On success the
// cursor is left at the first byte of the archive body.
func Read(c *cursor.Cursor) (zenarcinterfaces.Header, error) {
	var h zenarcinterfaces.Header
	lr := &lineReader{c: c}

	l, err := lr.next("magic")
	if err != nil {
		return h, err
	}
	if l != Magic {
		return h, lr.fail("bad magic %q", l)
	}

	if l, err = lr.next("version"); err != nil {
		return h, err
	}
	v, err := lr.field(l, "ver")
	if err != nil {
		return h, err
	}
	ver, err := strconv.ParseInt(v, 10, 32)
	if err != nil || ver < 0 {
		return h, lr.fail("invalid version %q", v)
	}
	if ver != Version {
		return h, lr.fail("unsupported version %d", ver)
	}
	h.Version = int32(ver)

	if h.Archiver, err = lr.next("archiver"); err != nil {
		return h, err
	}
	if h.Archiver == "" {
		return h, lr.fail("missing archiver")
	}

	if l, err = lr.next("format"); err != nil {
		return h, err
	}
	f, ok := formatTokens[l]
	if !ok {
		return h, lr.fail("unknown format %q", l)
	}
	h.Format = f

	if l, err = lr.next("saveGame"); err != nil {
		return h, err
	}
	if v, err = lr.field(l, "saveGame"); err != nil {
		return h, err
	}
	switch v {
	case "0":
		h.Save = false
	case "1":
		h.Save = true
	default:
		return h, lr.fail("invalid saveGame %q", v)
	}

	for {
		if l, err = lr.next("END"); err != nil {
			return h, err
		}
		if l == "END" {
			break
		}

		k, v, _ := strings.Cut(l, " ")
		switch k {
		case "date":
			h.Date = strings.TrimSpace(v)
		case "user":
			h.User = strings.TrimSpace(v)
		}
	}

	if h.Format == zenarcinterfaces.FormatBinSafe {
		return h, readBinSafeTrailer(c, lr, &h)
	}
	return h, readObjectsTrailer(c, lr, &h)
}

func readObjectsTrailer(c *cursor.Cursor, lr *lineReader, h *zenarcinterfaces.Header) error {
	l, err := lr.next("objects")
	if err != nil {
		return err
	}
	v, err := lr.field(l, "objects")
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return lr.fail("invalid object count %q", v)
	}
	h.ObjectCount = uint32(n)

	if l, err = lr.next("END"); err != nil {
		return err
	}
	if l != "END" {
		return lr.fail("expected END, got %q", l)
	}

	// Consume the optional blank line separating header from body
	pos, err := c.Tell()
	if err != nil {
		return err
	}
	if l, err := c.ReadLine(); err == nil && l == "" {
		return nil
	}
	return c.Restore(pos)
}

func readBinSafeTrailer(c *cursor.Cursor, lr *lineReader, h *zenarcinterfaces.Header) error {
	var err error
	if h.BinSafeVersion, err = c.ReadU32(); err != nil {
		return lr.fail("missing BIN_SAFE version")
	}
	if h.BinSafeVersion != BinSafeV1 && h.BinSafeVersion != BinSafeV2 {
		return lr.fail("unsupported BIN_SAFE version %d", h.BinSafeVersion)
	}
	if h.ObjectCount, err = c.ReadU32(); err != nil {
		return lr.fail("missing BIN_SAFE object count")
	}
	return nil
}

// Write emits the header h to w. An empty Archiver is replaced by the
// conventional archiver for the format, and a zero Version by Version.
func Write(w io.Writer, h zenarcinterfaces.Header) error {
	if _, ok := formatTokens[Token(h.Format)]; !ok {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown format %d", h.Format)}
	}
	if h.Archiver == "" {
		h.Archiver = DefaultArchiver(h.Format)
	}
	if h.Version == 0 {
		h.Version = Version
	}
	for _, s := range []string{h.Archiver, h.User, h.Date} {
		if strings.ContainsAny(s, "\r\n") {
			return xerrors.InvalidValueError{Reason: "header fields may not contain line breaks"}
		}
	}

	save := 0
	if h.Save {
		save = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nver %d\n%s\n%s\nsaveGame %d\n", Magic, h.Version, h.Archiver, Token(h.Format), save)
	if h.Date != "" {
		fmt.Fprintf(&b, "date %s\n", h.Date)
	}
	if h.User != "" {
		fmt.Fprintf(&b, "user %s\n", h.User)
	}
	b.WriteString("END\n")

	if h.Format != zenarcinterfaces.FormatBinSafe {
		fmt.Fprintf(&b, "objects %d\nEND\n\n", h.ObjectCount)
		_, err := io.WriteString(w, b.String())
		return err
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	version := h.BinSafeVersion
	if version == 0 {
		version = BinSafeV2
	}
	var trailer [8]byte
	binary.LittleEndian.PutUint32(trailer[0:4], version)
	binary.LittleEndian.PutUint32(trailer[4:8], h.ObjectCount)
	_, err := w.Write(trailer[:])
	return err
}
