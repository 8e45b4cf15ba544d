// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package epd029

import (
	"math/bits"
)

const (
	// Width is the panel width in pixels.
	Width = 128
	// Height is the panel height in pixels.
	Height = 296
	// FrameSize is the length of a 2 bits per pixel frame.
	FrameSize = Width * Height / 4
	// PlaneSize is the length of each RAM plane.
	PlaneSize = Width * Height / 8
)

// PlaneOrder selects which half of each 2-bit pixel lands in the first RAM
// plane.
type PlaneOrder uint8

const (
	// HighFirst puts the most significant pixel bits in plane A.
	HighFirst PlaneOrder = iota
	// LowFirst puts the least significant pixel bits in plane A.
	LowFirst
)

// Encode splits a frame into the two RAM planes of the controller.
func Encode(frame []byte, order PlaneOrder) (a, b []byte, err error) {
	if len(frame) != FrameSize {
		return nil, nil, &FormatError{Got: len(frame), Want: FrameSize}
	}
	hi, lo := splitPlanes(frame)
	if order == LowFirst {
		return lo, hi, nil
	}
	return hi, lo, nil
}

// splitPlanes separates the high and low bit of every 2-bit pixel. Each pair
// of input bytes (8 pixels) yields one byte per plane, first pixel in the
// most significant bit.
func splitPlanes(buf []byte) (hi, lo []byte) {
	hi = make([]byte, len(buf)/2)
	lo = make([]byte, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		// Reversed, the first pixel's high bit is the least significant one.
		w := bits.Reverse16(uint16(buf[i])<<8 | uint16(buf[i+1]))
		var h, l byte
		for j := 0; j < 8; j++ {
			h = h<<1 | byte(w&1)
			w >>= 1
			l = l<<1 | byte(w&1)
			w >>= 1
		}
		hi[i/2] = h
		lo[i/2] = l
	}
	return hi, lo
}
