// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package image2bit implements a 4 level gray image with 2 bits per pixel.
//
// Pixels are stored row by row, four to a byte, first pixel in the most
// significant bits. This is the frame layout epd029 panels consume.
package image2bit

import (
	"image"
	"image/color"
	"image/draw"
)

// Gray is a 2 bit gray level, 0 being black and 3 being white.
type Gray uint8

const (
	Black     Gray = 0
	DarkGray  Gray = 1
	LightGray Gray = 2
	White     Gray = 3
)

// RGBA implements color.Color. Levels are evenly spaced and always opaque.
func (g Gray) RGBA() (uint32, uint32, uint32, uint32) {
	y := uint32(g&3) * 0x5555
	return y, y, y, 0xFFFF
}

func (g Gray) String() string {
	switch g & 3 {
	case Black:
		return "Black"
	case DarkGray:
		return "DarkGray"
	case LightGray:
		return "LightGray"
	default:
		return "White"
	}
}

// GrayModel is the color Model for 2 bit gray.
var GrayModel = color.ModelFunc(convert)

// Image is a 2 bit gray image.
type Image struct {
	// Pix holds the image's pixels, row by row, 4 pixels per byte.
	Pix []byte
	// Stride is the number of bytes per row.
	Stride int
	// Rect is the image's bounds.
	Rect image.Rectangle
}

// New returns an initialized Image instance, all black.
func New(r image.Rectangle) *Image {
	stride := (r.Dx() + 3) / 4
	return &Image{
		Pix:    make([]byte, stride*r.Dy()),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel implements image.Image.
func (i *Image) ColorModel() color.Model {
	return GrayModel
}

// Bounds implements image.Image.
func (i *Image) Bounds() image.Rectangle {
	return i.Rect
}

// At implements image.Image.
func (i *Image) At(x, y int) color.Color {
	return i.GrayAt(x, y)
}

// GrayAt is the optimized version of At().
func (i *Image) GrayAt(x, y int) Gray {
	if !(image.Point{x, y}.In(i.Rect)) {
		return Black
	}
	offset, shift := i.PixOffset(x, y)
	return Gray(i.Pix[offset]>>shift) & 3
}

// Bytes returns the pixel buffer in the frame layout Dev.Display expects.
func (i *Image) Bytes() []byte {
	return i.Pix
}

// Opaque scans the entire image and reports whether it is fully opaque.
func (i *Image) Opaque() bool {
	return true
}

// Set implements draw.Image
func (i *Image) Set(x, y int, c color.Color) {
	i.SetGray(x, y, convertGray(c))
}

// SetGray is the optimized version of Set().
func (i *Image) SetGray(x, y int, g Gray) {
	if !(image.Point{x, y}.In(i.Rect)) {
		return
	}
	offset, shift := i.PixOffset(x, y)
	i.Pix[offset] = i.Pix[offset]&^(3<<shift) | byte(g&3)<<shift
}

// PixOffset returns the index of the byte holding the pixel at (x, y) and
// the shift of its two bits within that byte.
func (i *Image) PixOffset(x, y int) (int, uint) {
	dx := x - i.Rect.Min.X
	return (y-i.Rect.Min.Y)*i.Stride + dx/4, uint(6 - 2*(dx%4))
}

//

func convert(c color.Color) color.Color {
	return convertGray(c)
}

func convertGray(c color.Color) Gray {
	switch t := c.(type) {
	case Gray:
		return t & 3
	default:
		r, g, b, _ := c.RGBA()
		// Same luma weights as color.GrayModel, on 16 bits.
		y := (19595*r + 38470*g + 7471*b + 1<<15) >> 16
		return Gray((y*3 + 0x7FFF) / 0xFFFF)
	}
}

var _ draw.Image = &Image{}
