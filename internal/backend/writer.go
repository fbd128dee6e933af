// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"fmt"
	"io"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/entry"
	xerrors "go.e43.eu/zenarc/internal/errors"
	"go.e43.eu/zenarc/internal/header"
)

// encoder is implemented by each wire format. Every method validates its
// input before emitting anything, so a failed call leaves the body untouched.
type encoder interface {
	objectBegin(obj zenarcinterfaces.Object) error
	objectEnd() error

	// entry writes e, which has already passed checkValue
	entry(e zenarcinterfaces.Entry) error
}

// Writer implements the archive writing contract on top of a format encoder
type Writer struct {
	w      io.Writer
	hdr    zenarcinterfaces.Header
	cfg    Config
	stack  objectStack
	enc    encoder
	body   cursor.Sink
	count  uint32
	closed bool
}

var _ zenarcinterfaces.Writer = &Writer{}

// NewWriter constructs a writer for the format named by hdr. Nothing is written
// to w until Close.
func NewWriter(w io.Writer, hdr zenarcinterfaces.Header, cfg Config) (*Writer, error) {
	wr := &Writer{w: w, hdr: hdr, cfg: cfg}
	wr.cfg.logger()

	switch hdr.Format {
	case zenarcinterfaces.FormatBinary:
		wr.enc = &binaryEncoder{s: &wr.body}
	case zenarcinterfaces.FormatBinSafe:
		if cfg.BinSafeVersion == 0 {
			cfg.BinSafeVersion = header.BinSafeV2
		}
		if cfg.BinSafeVersion != header.BinSafeV1 && cfg.BinSafeVersion != header.BinSafeV2 {
			return nil, xerrors.InvalidValueError{Reason: fmt.Sprintf("unsupported BIN_SAFE version %d", cfg.BinSafeVersion)}
		}
		wr.hdr.BinSafeVersion = cfg.BinSafeVersion
		wr.enc = newBinSafeEncoder(&wr.body, cfg.BinSafeVersion)
	case zenarcinterfaces.FormatASCII:
		wr.enc = &asciiEncoder{s: &wr.body, stack: &wr.stack, indent: cfg.Indent}
	default:
		return nil, xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown format %d", hdr.Format)}
	}
	return wr, nil
}

func (w *Writer) Depth() int {
	return w.stack.depth()
}

// HashTable returns a copy of the BIN_SAFE keys interned so far, or nil for
// other formats
func (w *Writer) HashTable() []HashTableEntry {
	if e, ok := w.enc.(*binSafeEncoder); ok {
		return e.table.snapshot()
	}
	return nil
}

func (w *Writer) checkOpen() error {
	if w.closed {
		return xerrors.InvalidValueError{Reason: "archive already closed"}
	}
	return nil
}

func (w *Writer) WriteObjectBegin(name, class string, version uint16) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if w.cfg.depthExceeded(w.stack.depth() + 1) {
		return xerrors.DepthError{Limit: w.cfg.MaxDepth}
	}

	obj := zenarcinterfaces.Object{Name: name, Class: class, Version: version, Index: w.count}
	if err := w.enc.objectBegin(obj); err != nil {
		return err
	}
	w.count++
	w.stack.push(obj)
	return nil
}

func (w *Writer) WriteObjectEnd() error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	obj, ok := w.stack.pop()
	if !ok {
		return xerrors.ErrUnbalancedObject
	}
	if err := w.enc.objectEnd(); err != nil {
		w.stack.push(obj)
		return err
	}
	return nil
}

func (w *Writer) WriteEntry(e zenarcinterfaces.Entry) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	if err := checkValue(e); err != nil {
		return err
	}
	return w.enc.entry(e)
}

func (w *Writer) write(key string, t entry.Type, v interface{}) error {
	return w.WriteEntry(zenarcinterfaces.Entry{Key: key, Type: t, Value: v})
}

func (w *Writer) WriteString(key string, v string) error {
	return w.write(key, entry.String, v)
}

func (w *Writer) WriteInt(key string, v int32) error {
	return w.write(key, entry.Integer, v)
}

func (w *Writer) WriteFloat(key string, v float32) error {
	return w.write(key, entry.Float, v)
}

func (w *Writer) WriteUint8(key string, v uint8) error {
	return w.write(key, entry.Byte, v)
}

func (w *Writer) WriteWord(key string, v uint16) error {
	return w.write(key, entry.Word, v)
}

func (w *Writer) WriteEnum(key string, v uint32) error {
	return w.write(key, entry.Enum, v)
}

func (w *Writer) WriteHash(key string, v uint32) error {
	return w.write(key, entry.Hash, v)
}

func (w *Writer) WriteBool(key string, v bool) error {
	return w.write(key, entry.Bool, v)
}

func (w *Writer) WriteColor(key string, v zenarcinterfaces.Color) error {
	return w.write(key, entry.Color, v)
}

func (w *Writer) WriteVec3(key string, v zenarcinterfaces.Vec3) error {
	return w.write(key, entry.Vec3, v)
}

func (w *Writer) WriteVec2(key string, v zenarcinterfaces.Vec2) error {
	return w.write(key, entry.RawFloat, []float32{v.X, v.Y})
}

func (w *Writer) WriteBBox(key string, v zenarcinterfaces.AABB) error {
	return w.write(key, entry.RawFloat, []float32{v.Min.X, v.Min.Y, v.Min.Z, v.Max.X, v.Max.Y, v.Max.Z})
}

func (w *Writer) WriteMat3x3(key string, v zenarcinterfaces.Mat3x3) error {
	return w.write(key, entry.Raw, floatsToBytes(v[:]))
}

func (w *Writer) WriteRaw(key string, v []byte) error {
	if v == nil {
		v = []byte{}
	}
	return w.write(key, entry.Raw, v)
}

func (w *Writer) WriteRawFloat(key string, v []float32) error {
	if v == nil {
		v = []float32{}
	}
	return w.write(key, entry.RawFloat, v)
}

// Close writes the header, with the final object count, followed by the body.
// It fails without writing anything if an object is still open.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	if d := w.stack.depth(); d != 0 {
		return xerrors.UnbalancedError{Depth: d}
	}
	w.closed = true

	w.hdr.ObjectCount = w.count
	if err := header.Write(w.w, w.hdr); err != nil {
		return err
	}
	_, err := w.body.WriteTo(w.w)
	return err
}
