// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"go.e43.eu/zenarc"
)

func runConvert(args []string) error {
	var rf readerFlags
	var to, out string
	var bsVersion uint32
	var noIndent bool

	fs := pflag.NewFlagSet("convert", pflag.ContinueOnError)
	rf.add(fs)
	fs.StringVar(&to, "to", "", "output format: ascii, binary or binsafe (required)")
	fs.StringVarP(&out, "output", "o", "-", "output file, or - for stdout")
	fs.Uint32Var(&bsVersion, "bs-version", zenarc.BinSafeV2, "BIN_SAFE revision to write (1 or 2)")
	fs.BoolVar(&noIndent, "no-indent", false, "don't indent nested ASCII objects")

	path, ok, err := parseArgs(fs, args)
	if !ok {
		return err
	}
	if to == "" {
		return fmt.Errorf("convert: --to is required")
	}
	format, err := parseFormat(to)
	if err != nil {
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

	var dst io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	bw := bufio.NewWriter(dst)
	opts = append(opts, zenarc.WithBinSafeVersion(bsVersion), zenarc.WithIndent(!noIndent))
	if err := convert(r, bw, format, opts); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	logger.Debug("converted archive", "path", path, "from", r.Header().Format, "to", format)
	return nil
}

// convert transcodes r into a new archive of the given format. The header's
// metadata is carried over; the archiver name is reset to the new format's.
func convert(r zenarc.Reader, w io.Writer, format zenarc.Format, opts []zenarc.Option) error {
	h := r.Header()
	h.Format = format
	h.Archiver = ""
	h.ObjectCount = 0
	h.BinSafeVersion = 0

	aw, err := zenarc.NewWriter(w, h, opts...)
	if err != nil {
		return err
	}
	if err := zenarc.Transcode(r, aw); err != nil {
		return err
	}
	return aw.Close()
}
