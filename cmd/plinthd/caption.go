// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/wyldcard/devices/epd029"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var goRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

func face(size float64) (font.Face, error) {
	f, err := goRegular()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// stamp draws text in a white band along the bottom of img.
func stamp(img image.Image, text string) (image.Image, error) {
	ff, err := face(14)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(ff)
	_, th := dc.MeasureString(text)
	w, h := float64(dc.Width()), float64(dc.Height())
	const pad = 4

	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, h-th-2*pad, w, th+2*pad)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(text, w/2, h-pad-th/2, 0.5, 0.5)
	return dc.Image(), nil
}

// textCard renders text centered on a white card, wrapped to its width.
func textCard(text string) (image.Image, error) {
	ff, err := face(20)
	if err != nil {
		return nil, err
	}
	dc := gg.NewContext(epd029.Width, epd029.Height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(ff)
	dc.SetRGB(0, 0, 0)
	w, h := float64(epd029.Width), float64(epd029.Height)
	dc.DrawStringWrapped(text, w/2, h/2, 0.5, 0.5, w-16, 1.4, gg.AlignCenter)
	dc.SetLineWidth(2)
	dc.DrawRoundedRectangle(4, 4, w-8, h-8, 8)
	dc.Stroke()
	return dc.Image(), nil
}
