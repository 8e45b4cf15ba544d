// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wyldcard/devices/epd029"
	"github.com/wyldcard/devices/epd029/image2bit"
)

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func uniform(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.png", "a.JPG", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := listImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.JPG"), filepath.Join(dir, "b.png")}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("listImages() difference (-got +want):\n%s", diff)
	}
}

func TestPickImage(t *testing.T) {
	dir := t.TempDir()
	if _, err := pickImage(dir, ""); err != errNoImages {
		t.Errorf("pickImage() on an empty collection = %v", err)
	}
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	for _, p := range []string{a, b} {
		if err := os.WriteFile(p, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 20; i++ {
		got, err := pickImage(dir, "a.png")
		if err != nil {
			t.Fatal(err)
		}
		if got != b {
			t.Fatalf("pickImage() = %s, want the other picture", got)
		}
	}
}

func TestFitCard(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 640, 480),
		image.Rect(0, 0, 100, 1000),
		image.Rect(0, 0, 12, 30),
	} {
		got := fitCard(uniform(r.Dx(), r.Dy(), color.White)).Bounds()
		if got != image.Rect(0, 0, epd029.Width, epd029.Height) {
			t.Errorf("fitCard(%v) = %v", r, got)
		}
	}
}

func TestQuantize(t *testing.T) {
	for _, tc := range []struct {
		name string
		c    color.Color
		mode epd029.ColorMode
		want image2bit.Gray
	}{
		{"white gray", color.White, epd029.FourGray, image2bit.White},
		{"black gray", color.Black, epd029.FourGray, image2bit.Black},
		{"white mono", color.White, epd029.Monochrome, image2bit.White},
		{"black mono", color.Black, epd029.Monochrome, image2bit.Black},
		{"dark gray", color.Gray{Y: 0x55}, epd029.FourGray, image2bit.DarkGray},
	} {
		t.Run(tc.name, func(t *testing.T) {
			img := quantize(uniform(epd029.Width, epd029.Height, tc.c), tc.mode)
			if len(img.Pix) != epd029.FrameSize {
				t.Fatalf("frame is %d bytes", len(img.Pix))
			}
			for _, p := range []image.Point{{0, 0}, {64, 148}, {127, 295}} {
				if got := img.GrayAt(p.X, p.Y); got != tc.want {
					t.Errorf("GrayAt(%v) = %v, want %v", p, got, tc.want)
				}
			}
		})
	}
}

func TestMonochromeHasTwoLevels(t *testing.T) {
	img := quantize(uniform(epd029.Width, epd029.Height, color.Gray{Y: 0x80}), epd029.Monochrome)
	seen := map[image2bit.Gray]int{}
	for y := 0; y < epd029.Height; y++ {
		for x := 0; x < epd029.Width; x++ {
			seen[img.GrayAt(x, y)]++
		}
	}
	if seen[image2bit.DarkGray] != 0 || seen[image2bit.LightGray] != 0 {
		t.Errorf("monochrome frame has gray pixels: %v", seen)
	}
	if seen[image2bit.Black] == 0 || seen[image2bit.White] == 0 {
		t.Errorf("mid gray not dithered: %v", seen)
	}
}

func TestLoadPicture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "card.png")
	writePNG(t, path, uniform(300, 200, color.Black))
	img, err := loadPicture(path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, epd029.Width, epd029.Height) {
		t.Errorf("loadPicture() bounds = %v", img.Bounds())
	}
	if _, err := loadPicture(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("loadPicture() of a missing file succeeded")
	}
}
