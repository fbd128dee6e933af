// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"reflect"
	"sync"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/errors"
	"go.e43.eu/zenarc/internal/tags"
)

var (
	marshalerType = reflect.TypeOf((*zenarcinterfaces.Marshaler)(nil)).Elem()

	vec2Type   = reflect.TypeOf(zenarcinterfaces.Vec2{})
	vec3Type   = reflect.TypeOf(zenarcinterfaces.Vec3{})
	colorType  = reflect.TypeOf(zenarcinterfaces.Color{})
	aabbType   = reflect.TypeOf(zenarcinterfaces.AABB{})
	mat3x3Type = reflect.TypeOf(zenarcinterfaces.Mat3x3{})
	floatsType = reflect.TypeOf([]float32(nil))
)

// xCodec writes a Go value as one keyed unit of an archive (an entry or a
// child object) and reads it back
type xCodec interface {
	Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error
	Decode(r zenarcinterfaces.Reader, v reflect.Value) error
}

// bodyCodec writes the contents of an object, between its begin and end
// markers. v is always addressable.
type bodyCodec interface {
	encodeBody(w zenarcinterfaces.Writer, v reflect.Value) error
	decodeBody(r zenarcinterfaces.Reader, v reflect.Value) error
}

type xType struct {
	Type reflect.Type
	Opts tags.Options
}

// Coder maps Go values onto archive objects. Codecs are built on first use and
// cached; a Coder may be shared between goroutines, though the readers and
// writers it drives may not.
type Coder struct {
	knownCodecs sync.Map // map[xType]xCodec
	knownBodies sync.Map // map[reflect.Type]bodyCodec
}

func NewCoder() *Coder {
	return new(Coder)
}

func (cr *Coder) getCodec(t reflect.Type, opts tags.Options) xCodec {
	xt := xType{t, opts}
	if c, ok := cr.knownCodecs.Load(xt); ok {
		return c.(xCodec)
	}

	c, _ := cr.knownCodecs.LoadOrStore(xt, cr.buildCodec(t, opts))
	return c.(xCodec)
}

// getBody returns the body codec of an object type. Object types may refer to
// themselves through pointer fields, so a deferred codec stands in while the
// real one is under construction.
func (cr *Coder) getBody(t reflect.Type) bodyCodec {
	if b, ok := cr.knownBodies.Load(t); ok {
		return b.(bodyCodec)
	}

	db := newDeferredBody()
	if b, ok := cr.knownBodies.LoadOrStore(t, db); ok {
		return b.(bodyCodec)
	}

	real := cr.buildBody(t)
	cr.knownBodies.Store(t, real)
	db.resolve(real)
	return real
}

func (cr *Coder) buildBody(t reflect.Type) bodyCodec {
	switch {
	case reflect.PtrTo(t).Implements(marshalerType):
		return &marshalerCodecI
	case t.Kind() == reflect.Struct:
		return makeStructCodec(cr, t)
	default:
		return &errorCodec{errors.InvalidTypeError{T: t}}
	}
}

// isValueType reports whether t is stored as a single entry despite being a
// struct or array
func isValueType(t reflect.Type) bool {
	switch t {
	case vec2Type, vec3Type, colorType, aabbType, mat3x3Type:
		return true
	}
	return false
}

// isObjectType reports whether values of t are stored as child objects
func isObjectType(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr || isValueType(t) {
		return false
	}
	return t.Kind() == reflect.Struct || reflect.PtrTo(t).Implements(marshalerType)
}

func (cr *Coder) buildCodec(t reflect.Type, opts tags.Options) xCodec {
	if opts.Hash && t.Kind() != reflect.Uint32 {
		return &errorCodec{errors.InvalidTagError{T: t, Option: "hash"}}
	}

	objectTarget := isObjectType(t) || (t.Kind() == reflect.Ptr && isObjectType(t.Elem()))
	if opts.HasClass && !objectTarget {
		return &errorCodec{errors.InvalidTagError{T: t, Option: "class"}}
	}
	if opts.HasVersion && !objectTarget {
		return &errorCodec{errors.InvalidTagError{T: t, Option: "version"}}
	}

	switch t {
	case vec2Type:
		return vec2CodecI
	case vec3Type:
		return vec3CodecI
	case colorType:
		return colorCodecI
	case aabbType:
		return bboxCodecI
	case mat3x3Type:
		return mat3x3CodecI
	}

	if isObjectType(t) {
		return cr.makeObjectCodec(t, opts)
	}

	switch t.Kind() {
	case reflect.Ptr:
		if isObjectType(t.Elem()) {
			return &ptrCodec{elem: t.Elem(), obj: cr.makeObjectCodec(t.Elem(), opts)}
		}
	case reflect.String:
		return stringCodecI
	case reflect.Int32:
		return intCodecI
	case reflect.Float32:
		return floatCodecI
	case reflect.Uint8:
		return byteCodecI
	case reflect.Uint16:
		return wordCodecI
	case reflect.Uint32:
		if opts.Hash {
			return hashCodecI
		}
		return enumCodecI
	case reflect.Bool:
		return boolCodecI
	case reflect.Slice:
		switch t.Elem().Kind() {
		case reflect.Uint8:
			return rawCodecI
		case reflect.Float32:
			return rawFloatCodecI
		}
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return rawArrayCodec{size: t.Len()}
		}
	}
	return &errorCodec{errors.InvalidTypeError{T: t}}
}

// Marshal writes o, a struct, a pointer to one, or a Marshaler, as an object
// named name
func (cr *Coder) Marshal(w zenarcinterfaces.Writer, name string, o interface{}) error {
	v := reflect.ValueOf(o)
	switch {
	case !v.IsValid():
		return errors.ErrNilPointer
	case v.Kind() == reflect.Ptr:
		if v.IsNil() {
			return errors.ErrNilPointer
		}
		v = v.Elem()
	default:
		// Marshalers may have pointer receivers, so work on an addressable copy
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}

	if !isObjectType(v.Type()) {
		return errors.InvalidTypeError{T: v.Type()}
	}
	return cr.getCodec(v.Type(), tags.Options{}).Encode(w, name, v)
}

// Unmarshal reads the next object into the value pointed to by op
func (cr *Coder) Unmarshal(r zenarcinterfaces.Reader, op interface{}) error {
	v := reflect.ValueOf(op)
	if v.Kind() != reflect.Ptr {
		return errors.ErrNotPointer
	}
	if v.IsNil() {
		return errors.ErrNilPointer
	}

	v = v.Elem()
	if !isObjectType(v.Type()) {
		return errors.InvalidTypeError{T: v.Type()}
	}
	return cr.getCodec(v.Type(), tags.Options{}).Decode(r, v)
}
