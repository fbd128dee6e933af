// Copyright 2020 Erin Shepherd
// SPDX-License-Identifier: ISC

package zenarc

import (
	"bytes"
	"io"
	"testing"
)

type benchWorld struct {
	Name   string
	First  benchVob
	Second benchVob
	Third  benchVob
	Fourth *benchVob
}

type benchVob struct {
	Name     string `zen:"vobName"`
	Position Vec3   `zen:"position"`
	Box      AABB   `zen:"bbox3DWS"`
	Rotation Mat3x3 `zen:"trafoRot"`
	Visual   *visual
	Show     bool `zen:"showVisual"`
}

func sampleWorld() *benchWorld {
	vob := func(i int) benchVob {
		return benchVob{
			Name:     "VOB",
			Position: Vec3{X: float32(i), Y: 1, Z: 2},
			Rotation: Mat3x3{1, 0, 0, 0, 1, 0, 0, 0, 1},
			Visual:   &visual{Name: "TREE.3DS"},
			Show:     true,
		}
	}
	fourth := vob(4)
	return &benchWorld{Name: "WORLD", First: vob(1), Second: vob(2), Third: vob(3), Fourth: &fourth}
}

func benchmarkFormats(b *testing.B, fn func(b *testing.B, f Format)) {
	for _, f := range allFormats {
		f := f
		b.Run(f.String(), func(b *testing.B) { fn(b, f) })
	}
}

func BenchmarkMarshal(b *testing.B) {
	world := sampleWorld()
	benchmarkFormats(b, func(b *testing.B, f Format) {
		for i := 0; i < b.N; i++ {
			w, err := NewWriter(io.Discard, Header{Format: f})
			if err != nil {
				b.Fatalf("NewWriter: %s", err)
			}
			if err := Marshal(w, "world", world); err != nil {
				b.Fatalf("Marshal: %s", err)
			}
			if err := w.Close(); err != nil {
				b.Fatalf("Close: %s", err)
			}
		}
	})
}

func BenchmarkUnmarshal(b *testing.B) {
	world := sampleWorld()
	benchmarkFormats(b, func(b *testing.B, f Format) {
		data := build(b, f, func(w Writer) {
			if err := Marshal(w, "world", world); err != nil {
				b.Fatalf("Marshal: %s", err)
			}
		})
		b.SetBytes(int64(len(data)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r, err := Open(bytes.NewReader(data))
			if err != nil {
				b.Fatalf("Open: %s", err)
			}
			var out benchWorld
			if err := Unmarshal(r, &out); err != nil {
				b.Fatalf("Unmarshal: %s", err)
			}
		}
	})
}

type nopVisitor struct{}

func (nopVisitor) ObjectBegin(Object) error { return nil }
func (nopVisitor) ObjectEnd() error         { return nil }
func (nopVisitor) Entry(Entry) error        { return nil }

func BenchmarkSkip(b *testing.B) {
	world := sampleWorld()
	benchmarkFormats(b, func(b *testing.B, f Format) {
		data := build(b, f, func(w Writer) {
			if err := Marshal(w, "world", world); err != nil {
				b.Fatalf("Marshal: %s", err)
			}
		})
		b.SetBytes(int64(len(data)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r, err := Open(bytes.NewReader(data))
			if err != nil {
				b.Fatalf("Open: %s", err)
			}
			if err := r.SkipObject(false); err != nil {
				b.Fatalf("SkipObject: %s", err)
			}
		}
	})
}

func BenchmarkWalk(b *testing.B) {
	world := sampleWorld()
	benchmarkFormats(b, func(b *testing.B, f Format) {
		data := build(b, f, func(w Writer) {
			if err := Marshal(w, "world", world); err != nil {
				b.Fatalf("Marshal: %s", err)
			}
		})
		b.SetBytes(int64(len(data)))
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r, err := Open(bytes.NewReader(data))
			if err != nil {
				b.Fatalf("Open: %s", err)
			}
			if err := Walk(r, nopVisitor{}); err != nil {
				b.Fatalf("Walk: %s", err)
			}
		}
	})
}
