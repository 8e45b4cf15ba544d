// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/wyldcard/devices/epd029"
	"github.com/wyldcard/devices/epd029/image2bit"
	"github.com/wyldcard/devices/plinth"
	"periph.io/x/conn/v3/display"
)

// preview stands in for a plinth: frames go to a display.Drawer, usually a
// terminal, and card records stay in memory.
type preview struct {
	d       display.Drawer
	wells   int
	records map[int][]byte
}

func newPreview(d display.Drawer, wells int) *preview {
	return &preview{d: d, wells: wells, records: map[int][]byte{}}
}

func (p *preview) Wells() int {
	return p.wells
}

func (p *preview) Display(well int, frame []byte) error {
	if well < 0 || well >= p.wells {
		return fmt.Errorf("no well %d", well)
	}
	if len(frame) != epd029.FrameSize {
		return &epd029.FormatError{Got: len(frame), Want: epd029.FrameSize}
	}
	img := &image2bit.Image{
		Pix:    frame,
		Stride: epd029.Width / 4,
		Rect:   image.Rect(0, 0, epd029.Width, epd029.Height),
	}
	return p.d.Draw(p.d.Bounds(), img, image.Point{})
}

func (p *preview) LoadData(well int, v any) error {
	b, ok := p.records[well]
	if !ok {
		return plinth.ErrNoData
	}
	return json.Unmarshal(b, v)
}

func (p *preview) StoreData(well int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.records[well] = b
	return nil
}
