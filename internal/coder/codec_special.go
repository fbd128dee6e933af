// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package coder

import (
	"reflect"
	"sync"
	"sync/atomic"

	zenarcinterfaces "go.e43.eu/zenarc/interfaces"
)

// codec embedding a fixed, memoised error (generally
// indicating that a type can't be marshalled)
type errorCodec struct {
	err error
}

var (
	_ xCodec    = &errorCodec{}
	_ bodyCodec = &errorCodec{}
)

func (c *errorCodec) Encode(w zenarcinterfaces.Writer, key string, v reflect.Value) error {
	return c.err
}

func (c *errorCodec) Decode(r zenarcinterfaces.Reader, v reflect.Value) error {
	return c.err
}

func (c *errorCodec) encodeBody(w zenarcinterfaces.Writer, v reflect.Value) error {
	return c.err
}

func (c *errorCodec) decodeBody(r zenarcinterfaces.Reader, v reflect.Value) error {
	return c.err
}

// placeholder body codec for types under construction, to handle cycles
type deferredBody struct {
	real atomic.Value // bodyCodec
	wg   sync.WaitGroup
}

var _ bodyCodec = &deferredBody{}

func newDeferredBody() *deferredBody {
	db := new(deferredBody)
	db.wg.Add(1)
	return db
}

func (db *deferredBody) get() bodyCodec {
	real := db.real.Load()
	if real == nil {
		db.wg.Wait()
		real = db.real.Load()
	}
	return real.(bodyCodec)
}

func (db *deferredBody) encodeBody(w zenarcinterfaces.Writer, v reflect.Value) error {
	return db.get().encodeBody(w, v)
}

func (db *deferredBody) decodeBody(r zenarcinterfaces.Reader, v reflect.Value) error {
	return db.get().decodeBody(r, v)
}

func (db *deferredBody) resolve(real bodyCodec) {
	db.real.Store(real)
	db.wg.Done()
}

// marshalerCodec handles types which know how to write their own object body
type marshalerCodec struct{}

var marshalerCodecI marshalerCodec

func (mc *marshalerCodec) encodeBody(w zenarcinterfaces.Writer, v reflect.Value) error {
	return v.Addr().Interface().(zenarcinterfaces.Marshaler).MarshalArchive(w)
}

func (mc *marshalerCodec) decodeBody(r zenarcinterfaces.Reader, v reflect.Value) error {
	return v.Addr().Interface().(zenarcinterfaces.Marshaler).UnmarshalArchive(r)
}
