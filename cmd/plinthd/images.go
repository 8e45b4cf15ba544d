// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"image"
	"image/draw"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MaxHalford/halfgone"
	"github.com/disintegration/imaging"
	"github.com/wyldcard/devices/epd029"
	"github.com/wyldcard/devices/epd029/image2bit"
)

var errNoImages = errors.New("no images in collection")

// listImages returns the pictures of dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif", ".bmp":
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// pickImage returns a random picture of dir, avoiding the one named skip
// when it has a choice.
func pickImage(dir, skip string) (string, error) {
	names, err := listImages(dir)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errNoImages
	}
	if len(names) > 1 {
		for i, n := range names {
			if filepath.Base(n) == skip {
				names = append(names[:i], names[i+1:]...)
				break
			}
		}
	}
	return names[rand.IntN(len(names))], nil
}

// fitCard scales and crops img to fill a card, keeping the center.
func fitCard(img image.Image) *image.NRGBA {
	if b := img.Bounds(); b.Dx() > b.Dy() {
		// Landscape pictures are turned to make the most of a portrait card.
		img = imaging.Rotate90(img)
	}
	return imaging.Fill(img, epd029.Width, epd029.Height, imaging.Center, imaging.Lanczos)
}

// quantize dithers img, already card sized, into a frame for mode.
func quantize(img image.Image, mode epd029.ColorMode) *image2bit.Image {
	r := image.Rect(0, 0, epd029.Width, epd029.Height)
	gray := image.NewGray(r)
	draw.Draw(gray, r, imaging.Grayscale(img), image.Point{}, draw.Src)

	dst := image2bit.New(r)
	if mode == epd029.Monochrome {
		draw.Draw(dst, r, halfgone.FloydSteinbergDitherer{}.Apply(gray), image.Point{}, draw.Src)
		return dst
	}
	draw.FloydSteinberg.Draw(dst, r, gray, image.Point{})
	return dst
}

// loadPicture decodes the picture at path and fits it to a card.
func loadPicture(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return fitCard(img), nil
}
