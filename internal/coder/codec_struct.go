// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"fmt"
	"reflect"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
	"go.e43.eu/zenarc/internal/errors"
	"go.e43.eu/zenarc/internal/tags"
)

type field struct {
	index int
	key   string
	name  string
	codec xCodec
}

// structCodec writes each exported field of a struct as one entry or child
// object, in declaration order
type structCodec struct {
	name   string
	fields []field
}

func makeStructCodec(cr *Coder, t reflect.Type) bodyCodec {
	c := &structCodec{name: t.Name()}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}

		tag, err := tags.ParseStructTag(f)
		if err != nil {
			return &errorCodec{fmt.Errorf("Parsing tag of field '%s' of '%s': %v", f.Name, t, err)}
		}
		if tag.Skip {
			continue
		}

		c.fields = append(c.fields, field{
			index: i,
			key:   tag.Key,
			name:  f.Name,
			codec: cr.getCodec(f.Type, tag.Opts),
		})
	}
	return c
}

func (c *structCodec) encodeBody(w zenarcinterfaces.Writer, v reflect.Value) error {
	for _, f := range c.fields {
		if err := f.codec.Encode(w, f.key, v.Field(f.index)); err != nil {
			return errors.WithFieldError(err, c.name, f.name)
		}
	}
	return nil
}

func (c *structCodec) decodeBody(r zenarcinterfaces.Reader, v reflect.Value) error {
	for _, f := range c.fields {
		if err := f.codec.Decode(r, v.Field(f.index)); err != nil {
			return errors.WithFieldError(err, c.name, f.name)
		}
	}
	return nil
}

// objectCodec brackets a body with object markers
type objectCodec struct {
	body    bodyCodec
	class   string
	version uint16
}

func (cr *Coder) makeObjectCodec(t reflect.Type, opts tags.Options) *objectCodec {
	c := &objectCodec{
		body:    cr.getBody(t),
		class:   t.Name(),
		version: opts.Version,
	}
	if opts.HasClass {
		c.class = opts.Class
	}
	return c
}

func (c *objectCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	if err := w.WriteObjectBegin(key, c.class, c.version); err != nil {
		return err
	}
	if err := c.body.encodeBody(w, v); err != nil {
		return err
	}
	return w.WriteObjectEnd()
}

func (c *objectCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	if _, ok := r.ReadObjectBegin(); !ok {
		return errors.ErrExpectedObject
	}
	if err := c.body.decodeBody(r, v); err != nil {
		return err
	}
	return finishObject(r)
}

// finishObject consumes the end of the current object, skipping anything the
// body did not read
func finishObject(r zenarcinterfaces.Reader) error {
	if r.ReadObjectEnd() {
		return nil
	}
	return r.SkipObject(true)
}

// ptrCodec handles pointers to object types. A nil pointer is stored as an
// empty object with no class.
type ptrCodec struct {
	elem reflect.Type
	obj  *objectCodec
}

func (c *ptrCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	if !v.IsNil() {
		return c.obj.Encode(w, key, v.Elem())
	}

	if err := w.WriteObjectBegin(key, "", 0); err != nil {
		return err
	}
	return w.WriteObjectEnd()
}

func (c *ptrCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	obj, ok := r.ReadObjectBegin()
	if !ok {
		return errors.ErrExpectedObject
	}
	if obj.Class == "" && r.ReadObjectEnd() {
		v.Set(reflect.Zero(v.Type()))
		return nil
	}

	if v.IsNil() {
		v.Set(reflect.New(c.elem))
	}
	if err := c.obj.body.decodeBody(r, v.Elem()); err != nil {
		return err
	}
	return finishObject(r)
}
