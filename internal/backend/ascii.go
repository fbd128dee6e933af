// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/cursor"
	"go.e43.eu/zenarc/internal/entry"
	xerrors "go.e43.eu/zenarc/internal/errors"
)

// The ASCII format stores one unit per line:
//
//     [name class version index]
//         key=type:value
//     []
//
// An empty object name or class is written as "%". Indentation and blank
// lines carry no meaning.

const asciiEmptyName = "%"

type asciiDecoder struct {
	c *cursor.Cursor
}

// line returns the next non-blank line with its indentation removed, along
// with the offset at which it starts
func (d *asciiDecoder) line() (string, int64, error) {
	for {
		pos := d.c.Offset()
		l, err := d.c.ReadLine()
		if err != nil {
			return "", pos, err
		}
		if l = strings.TrimLeft(l, " \t"); l != "" {
			return l, pos, nil
		}
	}
}

func (d *asciiDecoder) objectBegin() (obj zenarcinterfaces.Object, ok bool) {
	l, _, err := d.line()
	if err != nil {
		return obj, false
	}
	l = strings.TrimSpace(l)
	if len(l) < 2 || l[0] != '[' || l[len(l)-1] != ']' {
		return obj, false
	}

	fields := strings.Fields(l[1 : len(l)-1])
	if len(fields) != 4 {
		return obj, false
	}
	version, err := strconv.ParseUint(fields[2], 10, 16)
	if err != nil {
		return obj, false
	}
	index, err := strconv.ParseUint(fields[3], 10, 32)
	if err != nil {
		return obj, false
	}

	obj.Name = unescapeName(fields[0])
	obj.Class = unescapeName(fields[1])
	obj.Version = uint16(version)
	obj.Index = uint32(index)
	return obj, true
}

func (d *asciiDecoder) objectEnd() bool {
	l, _, err := d.line()
	return err == nil && strings.TrimSpace(l) == "[]"
}

func (d *asciiDecoder) entry(want entry.Type) (zenarcinterfaces.Entry, error) {
	l, pos, err := d.line()
	if err != nil {
		return zenarcinterfaces.Entry{}, err
	}

	key, rest, ok := strings.Cut(l, "=")
	if !ok {
		return zenarcinterfaces.Entry{}, xerrors.InvalidValueError{Reason: fmt.Sprintf("malformed entry %q at offset %d", l, pos)}
	}
	keyword, text, ok := strings.Cut(rest, ":")
	if !ok {
		return zenarcinterfaces.Entry{}, xerrors.InvalidValueError{Reason: fmt.Sprintf("malformed entry %q at offset %d", l, pos)}
	}
	t, ok := entry.ParseKeyword(keyword)
	if !ok {
		return zenarcinterfaces.Entry{}, xerrors.InvalidValueError{Reason: fmt.Sprintf("unknown entry type %q at offset %d", keyword, pos)}
	}
	if want != entry.Any && t != want {
		return zenarcinterfaces.Entry{}, xerrors.TypeMismatchError{Expected: want, Actual: t, Offset: pos}
	}

	v, err := parseText(t, text, pos)
	if err != nil {
		return zenarcinterfaces.Entry{}, err
	}
	return zenarcinterfaces.Entry{Key: key, Type: t, Value: v}, nil
}

func (d *asciiDecoder) skip() error {
	_, _, err := d.line()
	return err
}

func (d *asciiDecoder) checkpoint() int { return 0 }
func (d *asciiDecoder) rollback(int)    {}

func unescapeName(s string) string {
	if s == asciiEmptyName {
		return ""
	}
	return s
}

func escapeName(s string) string {
	if s == "" {
		return asciiEmptyName
	}
	return s
}

func numberError(text string, t entry.Type, pos int64, err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		err = ne.Err
	}
	return xerrors.NumberFormatError{Text: text, Type: t, Offset: pos, Underlying: err}
}

// parseFields parses exactly n whitespace separated values with parse, or any
// number of them if n is negative
func parseFields(text string, n int, parse func(string) error) error {
	fields := strings.Fields(text)
	if n >= 0 && len(fields) != n {
		return strconv.ErrSyntax
	}
	for _, f := range fields {
		if err := parse(f); err != nil {
			return err
		}
	}
	return nil
}

func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	return float32(f), err
}

// parseText decodes the value part of an entry line
func parseText(t entry.Type, text string, pos int64) (interface{}, error) {
	var v interface{}
	var err error

	switch t {
	case entry.String:
		return text, nil
	case entry.Integer:
		var i int64
		i, err = strconv.ParseInt(text, 10, 32)
		v = int32(i)
	case entry.Float:
		v, err = parseFloat(text)
	case entry.Byte:
		var u uint64
		u, err = strconv.ParseUint(text, 10, 8)
		v = uint8(u)
	case entry.Word:
		var u uint64
		u, err = strconv.ParseUint(text, 10, 16)
		v = uint16(u)
	case entry.Enum, entry.Hash:
		var u uint64
		u, err = strconv.ParseUint(text, 10, 32)
		v = uint32(u)
	case entry.Bool:
		var u uint64
		u, err = strconv.ParseUint(text, 10, 8)
		v = u != 0
	case entry.Vec3:
		var fs []float32
		err = parseFields(text, 3, func(s string) error {
			f, err := parseFloat(s)
			fs = append(fs, f)
			return err
		})
		if err == nil {
			v = zenarcinterfaces.Vec3{X: fs[0], Y: fs[1], Z: fs[2]}
		}
	case entry.Color:
		var cs []uint8
		err = parseFields(text, 4, func(s string) error {
			c, err := strconv.ParseUint(s, 10, 8)
			cs = append(cs, uint8(c))
			return err
		})
		if err == nil {
			v = zenarcinterfaces.Color{R: cs[0], G: cs[1], B: cs[2], A: cs[3]}
		}
	case entry.Raw:
		var b []byte
		b, err = hex.DecodeString(strings.TrimSpace(text))
		if b == nil {
			b = []byte{}
		}
		v = b
	case entry.RawFloat:
		fs := []float32{}
		err = parseFields(text, -1, func(s string) error {
			f, err := parseFloat(s)
			fs = append(fs, f)
			return err
		})
		v = fs
	}

	if err != nil {
		return nil, numberError(text, t, pos, err)
	}
	return v, nil
}

// formatText encodes the value part of an entry line
func formatText(e zenarcinterfaces.Entry) string {
	f32 := func(f float32) string {
		return strconv.FormatFloat(float64(f), 'g', -1, 32)
	}

	switch v := e.Value.(type) {
	case string:
		return v
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case float32:
		return f32(v)
	case uint8:
		return strconv.FormatUint(uint64(v), 10)
	case uint16:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case zenarcinterfaces.Vec3:
		return f32(v.X) + " " + f32(v.Y) + " " + f32(v.Z)
	case zenarcinterfaces.Color:
		return fmt.Sprintf("%d %d %d %d", v.R, v.G, v.B, v.A)
	case []byte:
		return hex.EncodeToString(v)
	case []float32:
		parts := make([]string, len(v))
		for i, f := range v {
			parts[i] = f32(f)
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

type asciiEncoder struct {
	s      *cursor.Sink
	stack  *objectStack
	indent bool
}

func (e *asciiEncoder) prefix() {
	if e.indent {
		e.s.PutString(strings.Repeat("\t", e.stack.depth()))
	}
}

func checkName(what, s string) error {
	if strings.ContainsAny(s, " \t\r\n[]") {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("%s %q contains whitespace or brackets", what, s)}
	}
	if s == asciiEmptyName {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("%s %q is read back as empty", what, s)}
	}
	return nil
}

func (e *asciiEncoder) objectBegin(obj zenarcinterfaces.Object) error {
	if err := checkName("object name", obj.Name); err != nil {
		return err
	}
	if err := checkName("class name", obj.Class); err != nil {
		return err
	}

	e.prefix()
	e.s.PutString(fmt.Sprintf("[%s %s %d %d]\n", escapeName(obj.Name), escapeName(obj.Class), obj.Version, obj.Index))
	return nil
}

func (e *asciiEncoder) objectEnd() error {
	e.prefix()
	e.s.PutString("[]\n")
	return nil
}

func (e *asciiEncoder) entry(ent zenarcinterfaces.Entry) error {
	if strings.ContainsAny(ent.Key, "=\r\n") || strings.HasPrefix(ent.Key, "[") {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("key %q cannot be stored in ASCII", ent.Key)}
	}
	if s, ok := ent.Value.(string); ok && strings.ContainsAny(s, "\r\n") {
		return xerrors.InvalidValueError{Reason: "string values cannot contain line breaks in ASCII"}
	}
	if strings.TrimLeft(ent.Key, " \t") != ent.Key {
		return xerrors.InvalidValueError{Reason: fmt.Sprintf("key %q has leading whitespace", ent.Key)}
	}

	e.prefix()
	e.s.PutString(ent.Key)
	e.s.PutU8('=')
	e.s.PutString(ent.Type.Keyword())
	e.s.PutU8(':')
	e.s.PutString(formatText(ent))
	e.s.PutU8('\n')
	return nil
}
