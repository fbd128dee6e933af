// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// zenarc inspects and converts ZenGin archives.
//
//	zenarc dump [flags] FILE
//	zenarc convert --to FORMAT [-o OUT] [flags] FILE
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"go.e43.eu/zenarc"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "dump":
		return runDump(args[1:])
	case "convert":
		return runConvert(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `zenarc inspects and converts ZenGin archives.

Usage:
  zenarc dump [flags] FILE              print the header and object tree as YAML
  zenarc convert --to FORMAT [flags] FILE
                                        rewrite an archive in another format

Run "zenarc COMMAND --help" for the flags of a command.
`)
}

// readerFlags are shared by every command which opens an archive
type readerFlags struct {
	maxDepth  int
	hashCheck string
	verbose   bool
}

func (f *readerFlags) add(fs *pflag.FlagSet) {
	fs.IntVar(&f.maxDepth, "max-depth", zenarc.DefaultMaxDepth, "maximum object nesting (0 for no limit)")
	fs.StringVar(&f.hashCheck, "hash-check", "ignore", "BIN_SAFE key hash check: ignore, warn or strict")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log debug output")
}

func (f *readerFlags) logger() *slog.Logger {
	level := slog.LevelWarn
	if f.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (f *readerFlags) options(logger *slog.Logger) ([]zenarc.Option, error) {
	policy, err := parseHashCheck(f.hashCheck)
	if err != nil {
		return nil, err
	}
	return []zenarc.Option{
		zenarc.WithLogger(logger),
		zenarc.WithMaxDepth(f.maxDepth),
		zenarc.WithHashCheck(policy),
	}, nil
}

func parseHashCheck(s string) (zenarc.HashCheckPolicy, error) {
	for _, p := range []zenarc.HashCheckPolicy{zenarc.HashCheckIgnore, zenarc.HashCheckWarn, zenarc.HashCheckStrict} {
		if strings.EqualFold(s, p.String()) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown hash check policy %q", s)
}

func parseFormat(s string) (zenarc.Format, error) {
	switch strings.ToLower(s) {
	case "ascii":
		return zenarc.FormatASCII, nil
	case "binary":
		return zenarc.FormatBinary, nil
	case "binsafe", "bin_safe":
		return zenarc.FormatBinSafe, nil
	}
	return 0, fmt.Errorf("unknown format %q (want ascii, binary or binsafe)", s)
}

// parseArgs parses args into fs, returning the single positional argument.
// The returned bool is false if help was requested.
func parseArgs(fs *pflag.FlagSet, args []string) (string, bool, error) {
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return "", false, nil
		}
		return "", false, err
	}

	rest := fs.Args()
	switch len(rest) {
	case 0:
		return "", false, fmt.Errorf("%s: no input file given", fs.Name())
	case 1:
		return rest[0], true, nil
	default:
		return "", false, fmt.Errorf("%s: unexpected argument %s", fs.Name(), rest[1])
	}
}

// openArchive opens path and reads its header
func openArchive(path string, opts []zenarc.Option) (zenarc.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	r, err := zenarc.Open(f, opts...)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, f.Close, nil
}
