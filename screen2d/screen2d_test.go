// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen2d

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/maruel/ansi256"
)

func TestDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 4, Y: 2, W: &out})
	if got := d.String(); got != "Screen2D{4x2}" {
		t.Errorf("String() = %q", got)
	}

	src := image.NewGray(image.Rect(0, 0, 4, 2))
	src.SetGray(1, 0, color.Gray{Y: 0xFF})
	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}

	black := ansi256.Default.Block(color.NRGBA{A: 0xFF})
	white := ansi256.Default.Block(color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	want := "\033[0m" + black + white + black + black + "\033[0m\n" +
		"\033[0m" + strings.Repeat(black, 4) + "\033[0m\n"
	if diff := cmp.Diff(out.String(), want); diff != "" {
		t.Errorf("Draw() difference (-got +want):\n%s", diff)
	}
}

func TestStep(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 128, Y: 296, Step: 4, W: &out})
	if err := d.Draw(d.Bounds(), image.White, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out.String(), "\n"); got != 74 {
		t.Errorf("rows = %d, want 74", got)
	}
}

func TestHalt(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{X: 1, Y: 1, W: &out})
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "\033[0m\n" {
		t.Errorf("Halt() wrote %q", got)
	}
}
