// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package zenarc

import "io"

// Visitor receives the contents of an archive, in order, from Walk. Returning
// an error from any method stops the walk.
type Visitor interface {
	ObjectBegin(obj Object) error

	// ObjectEnd closes the most recently begun object which is still open
	ObjectEnd() error

	Entry(e Entry) error
}

// Walk reads everything remaining in r, reporting each object marker and
// entry to v. It succeeds once the end of the archive is reached with every
// object closed.
func Walk(r Reader, v Visitor) error {
	for {
		if obj, ok := r.ReadObjectBegin(); ok {
			if err := v.ObjectBegin(obj); err != nil {
				return err
			}
			continue
		}

		open := r.Depth()
		if r.ReadObjectEnd() {
			if open == 0 {
				// Finish reports the end marker which closed nothing
				return r.Finish()
			}
			if err := v.ObjectEnd(); err != nil {
				return err
			}
			continue
		}

		e, err := r.ReadEntry()
		if err == io.EOF {
			return r.Finish()
		} else if err != nil {
			return err
		}

		if err := v.Entry(e); err != nil {
			return err
		}
	}
}

type transcoder struct {
	w Writer
}

func (t transcoder) ObjectBegin(obj Object) error {
	return t.w.WriteObjectBegin(obj.Name, obj.Class, obj.Version)
}

func (t transcoder) ObjectEnd() error {
	return t.w.WriteObjectEnd()
}

func (t transcoder) Entry(e Entry) error {
	return t.w.WriteEntry(e)
}

// Transcode copies everything remaining in r to w, which may use a different
// format. Object indices are reassigned by w. Keys are lost when reading a
// BINARY archive, which does not store them. The caller is responsible for
// closing w.
func Transcode(r Reader, w Writer) error {
	return Walk(r, transcoder{w})
}
