// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package backend

import (
	"io"
	"log/slog"

	"go.e43.eu/zenarc/internal/header"
)

// HashCheckPolicy controls what a BIN_SAFE reader does when the redundant hash
// stored after a key back-reference disagrees with the hash table
type HashCheckPolicy int

const (
	// Don't compare the redundant hash at all
	HashCheckIgnore HashCheckPolicy = iota
	// Log a warning and continue
	HashCheckWarn
	// Fail the read with a HashMismatchError
	HashCheckStrict
)

func (p HashCheckPolicy) String() string {
	switch p {
	case HashCheckIgnore:
		return "ignore"
	case HashCheckWarn:
		return "warn"
	case HashCheckStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// DefaultMaxDepth bounds object nesting when skipping and writing
const DefaultMaxDepth = 1 << 16

// Config holds the settings shared by readers and writers
type Config struct {
	Logger    *slog.Logger
	HashCheck HashCheckPolicy

	// Maximum object nesting; zero or negative disables the limit
	MaxDepth int

	// BIN_SAFE revision emitted by writers
	BinSafeVersion uint32

	// Whether ASCII writers indent nested objects
	Indent bool
}

func DefaultConfig() Config {
	return Config{
		Logger:         discardLogger(),
		HashCheck:      HashCheckIgnore,
		MaxDepth:       DefaultMaxDepth,
		BinSafeVersion: header.BinSafeV2,
		Indent:         true,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		c.Logger = discardLogger()
	}
	return c.Logger
}

// depthExceeded returns whether depth is beyond the configured limit
func (c *Config) depthExceeded(depth int) bool {
	return c.MaxDepth > 0 && depth > c.MaxDepth
}
