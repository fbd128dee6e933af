// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"io"

	xerrors "go.e43.eu/zenarc/internal/errors"
)

// SkipObject consumes an object subtree without interpreting it.
//
// Nesting is tracked by the object stack rather than by recursion, so the
// only bound on the depth of the skipped subtree is Config.MaxDepth.
func (r *Reader) SkipObject(skipCurrent bool) error {
	if !skipCurrent {
		if _, ok := r.ReadObjectBegin(); !ok {
			return xerrors.ErrExpectedObject
		}
	} else if r.stack.depth() == 0 {
		return xerrors.ErrExpectedObject
	}

	target := r.stack.depth() - 1
	for r.stack.depth() > target {
		if _, ok := r.ReadObjectBegin(); ok {
			if r.cfg.depthExceeded(r.stack.depth() - target) {
				return xerrors.DepthError{Limit: r.cfg.MaxDepth}
			}
			continue
		}

		if r.ReadObjectEnd() {
			continue
		}

		if err := r.dec.skip(); err != nil {
			if err == io.EOF {
				return xerrors.EndOfDataError{Offset: r.cur.Offset()}
			}
			return err
		}
	}
	return nil
}
