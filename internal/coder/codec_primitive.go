// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"io"
	"reflect"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/entry"
	"go.e43.eu/zenarc/internal/errors"
)

type stringCodec struct{}
type intCodec struct{}
type floatCodec struct{}
type byteCodec struct{}
type wordCodec struct{}
type enumCodec struct{}
type hashCodec struct{}
type boolCodec struct{}

var (
	stringCodecI xCodec = stringCodec{}
	intCodecI    xCodec = intCodec{}
	floatCodecI  xCodec = floatCodec{}
	byteCodecI   xCodec = byteCodec{}
	wordCodecI   xCodec = wordCodec{}
	enumCodecI   xCodec = enumCodec{}
	hashCodecI   xCodec = hashCodec{}
	boolCodecI   xCodec = boolCodec{}
)

func (_ stringCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteString(key, v.String())
}

func (_ stringCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	s, err := r.ReadString()
	v.SetString(s)
	return err
}

func (_ intCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteInt(key, int32(v.Int()))
}

func (_ intCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	i, err := r.ReadInt()
	v.SetInt(int64(i))
	return err
}

func (_ floatCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteFloat(key, float32(v.Float()))
}

func (_ floatCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	f, err := r.ReadFloat()
	v.SetFloat(float64(f))
	return err
}

func (_ byteCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteUint8(key, uint8(v.Uint()))
}

func (_ byteCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	b, err := r.ReadUint8()
	v.SetUint(uint64(b))
	return err
}

func (_ wordCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteWord(key, uint16(v.Uint()))
}

func (_ wordCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	i, err := r.ReadWord()
	v.SetUint(uint64(i))
	return err
}

func (_ enumCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteEnum(key, uint32(v.Uint()))
}

func (_ enumCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	i, err := r.ReadEnum()
	v.SetUint(uint64(i))
	return err
}

func (_ hashCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteHash(key, uint32(v.Uint()))
}

func (_ hashCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	i, err := r.ReadHash()
	v.SetUint(uint64(i))
	return err
}

func (_ boolCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteBool(key, v.Bool())
}

func (_ boolCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	b, err := r.ReadBool()
	v.SetBool(b)
	return err
}

// Codecs for the geometric value types, matched by exact type
type vec2Codec struct{}
type vec3Codec struct{}
type colorCodec struct{}
type bboxCodec struct{}
type mat3x3Codec struct{}

var (
	vec2CodecI   xCodec = vec2Codec{}
	vec3CodecI   xCodec = vec3Codec{}
	colorCodecI  xCodec = colorCodec{}
	bboxCodecI   xCodec = bboxCodec{}
	mat3x3CodecI xCodec = mat3x3Codec{}
)

func (_ vec2Codec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteVec2(key, v.Interface().(zenarcinterfaces.Vec2))
}

func (_ vec2Codec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	x, err := r.ReadVec2()
	if err == nil {
		v.Set(reflect.ValueOf(x))
	}
	return err
}

func (_ vec3Codec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteVec3(key, v.Interface().(zenarcinterfaces.Vec3))
}

func (_ vec3Codec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	x, err := r.ReadVec3()
	if err == nil {
		v.Set(reflect.ValueOf(x))
	}
	return err
}

func (_ colorCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteColor(key, v.Interface().(zenarcinterfaces.Color))
}

func (_ colorCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	x, err := r.ReadColor()
	if err == nil {
		v.Set(reflect.ValueOf(x))
	}
	return err
}

func (_ bboxCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteBBox(key, v.Interface().(zenarcinterfaces.AABB))
}

func (_ bboxCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	x, err := r.ReadBBox()
	if err == nil {
		v.Set(reflect.ValueOf(x))
	}
	return err
}

func (_ mat3x3Codec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteMat3x3(key, v.Interface().(zenarcinterfaces.Mat3x3))
}

func (_ mat3x3Codec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	x, err := r.ReadMat3x3()
	if err == nil {
		v.Set(reflect.ValueOf(x))
	}
	return err
}

// rawCodec handles byte slices of any length
type rawCodec struct{}

var rawCodecI xCodec = rawCodec{}

func (_ rawCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteRaw(key, v.Bytes())
}

// Decode reads a generic entry, as ReadRaw requires the size up front
func (_ rawCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	e, err := r.ReadEntry()
	if err == io.EOF {
		return errors.ErrUnexpectedEndOfData
	} else if err != nil {
		return err
	}
	if e.Type != entry.Raw {
		return errors.TypeMismatchError{Expected: entry.Raw, Actual: e.Type, Offset: -1}
	}
	v.SetBytes(e.Value.([]byte))
	return nil
}

// rawArrayCodec handles byte arrays, which must be stored with their exact size
type rawArrayCodec struct {
	size int
}

func (c rawArrayCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	b := make([]byte, c.size)
	reflect.Copy(reflect.ValueOf(b), v)
	return w.WriteRaw(key, b)
}

func (c rawArrayCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	b, err := r.ReadRaw(c.size)
	if err != nil {
		return err
	}
	reflect.Copy(v, reflect.ValueOf(b))
	return nil
}

type rawFloatCodec struct{}

var rawFloatCodecI xCodec = rawFloatCodec{}

func (_ rawFloatCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return w.WriteRawFloat(key, v.Convert(floatsType).Interface().([]float32))
}

func (_ rawFloatCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	fs, err := r.ReadRawFloat()
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(fs).Convert(v.Type()))
	return nil
}
