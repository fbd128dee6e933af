// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

// Package tags parses the `zen:"..."` struct tag.
//
// A tag is a key optionally followed by comma separated options:
//
//	Amount   int32   `zen:"amount"`
//	Instance uint32  `zen:"instance,hash"`
//	Visual   *Visual `zen:"visual,class=zCVisual,version=2"`
//	Cache    []byte  `zen:"-"`
//
// An empty key defaults to the Go field name.
package tags

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const tagName = "zen"

// Options are the tag options which change how a field's type is encoded.
// Options is comparable, so that it may be used as part of a map key for
// codec resolution.
type Options struct {
	// Store a uint32 as HASH rather than ENUM
	Hash bool

	// Class name of a child object, overriding the Go type name
	HasClass bool
	Class    string

	// Version of a child object
	HasVersion bool
	Version    uint16
}

type FieldTag struct {
	Key  string
	Skip bool
	Opts Options
}

var errEmptyValue = errors.New("option requires a value")

// ParseStructTag parses the tag of f
func ParseStructTag(f reflect.StructField) (FieldTag, error) {
	s := f.Tag.Get(tagName)
	if s == "-" {
		return FieldTag{Skip: true}, nil
	}

	parts := strings.Split(s, ",")
	tag := FieldTag{Key: parts[0]}
	if tag.Key == "" {
		tag.Key = f.Name
	}

	for _, p := range parts[1:] {
		name, val, hasVal := strings.Cut(p, "=")
		switch name {
		case "enum", "hash":
			if hasVal {
				return tag, fmt.Errorf("%s: option takes no value", name)
			}
			tag.Opts.Hash = name == "hash"

		case "class":
			if val == "" {
				return tag, fmt.Errorf("%s: %w", name, errEmptyValue)
			}
			tag.Opts.HasClass = true
			tag.Opts.Class = val

		case "version":
			if val == "" {
				return tag, fmt.Errorf("%s: %w", name, errEmptyValue)
			}
			v, err := strconv.ParseUint(val, 10, 16)
			if err != nil {
				return tag, fmt.Errorf("%s: %w", name, err)
			}
			tag.Opts.HasVersion = true
			tag.Opts.Version = uint16(v)

		default:
			return tag, fmt.Errorf("unknown option '%s'", name)
		}
	}
	return tag, nil
}
