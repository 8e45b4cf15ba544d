// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package plinth

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/tca95xx"
)

// ExpanderKind is the I/O expander chip carrying the card lines.
type ExpanderKind string

const (
	// PCA9555 is a 16 pin expander, driven as a TCA9555.
	PCA9555 ExpanderKind = "PCA9555"
	// PCF8574 is an 8 pin quasi-bidirectional expander.
	PCF8574 ExpanderKind = "PCF8574"
)

// Expander is one expander chip on the board I²C bus.
type Expander struct {
	Kind ExpanderKind
	Addr uint16
}

// WellPins locates the lines of one card on the expanders.
type WellPins struct {
	Expander int
	Reset    int
	Busy     int
	CS       int
	MemCS    int
}

// Board describes a plinth hardware revision.
type Board struct {
	Name      string
	Expanders []Expander
	Wells     []WellPins
	// DC is the host GPIO shared by every well as e-paper data/command line.
	DC string
	// Switches holds the host GPIO names of switches a, b and c per well.
	Switches [][3]string
}

// Switch GPIOs are the same on every revision.
var switchPins = [][3]string{
	{"GPIO23", "GPIO5", "GPIO6"},
	{"GPIO21", "GPIO13", "GPIO12"},
	{"GPIO22", "GPIO16", "GPIO17"},
	{"GPIO18", "GPIO19", "GPIO20"},
}

// DevKitV1 has a single PCA9555 with four lines per well.
var DevKitV1 = Board{
	Name:      "devkit",
	Expanders: []Expander{{Kind: PCA9555, Addr: 0x20}},
	Wells: []WellPins{
		{Expander: 0, Reset: 0, Busy: 1, CS: 2, MemCS: 3},
		{Expander: 0, Reset: 4, Busy: 5, CS: 6, MemCS: 7},
		{Expander: 0, Reset: 8, Busy: 9, CS: 10, MemCS: 11},
		{Expander: 0, Reset: 12, Busy: 13, CS: 14, MemCS: 15},
	},
	DC:       "GPIO25",
	Switches: switchPins,
}

// Prototype has two PCF8574, two wells on each.
var Prototype = Board{
	Name: "prototype",
	Expanders: []Expander{
		{Kind: PCF8574, Addr: 0x20},
		{Kind: PCF8574, Addr: 0x21},
	},
	Wells: []WellPins{
		{Expander: 0, Reset: 0, Busy: 1, CS: 2, MemCS: 3},
		{Expander: 0, Reset: 4, Busy: 5, CS: 6, MemCS: 7},
		{Expander: 1, Reset: 0, Busy: 1, CS: 2, MemCS: 3},
		{Expander: 1, Reset: 4, Busy: 5, CS: 6, MemCS: 7},
	},
	DC:       "GPIO25",
	Switches: switchPins,
}

// BoardByName returns the board named "devkit" or "prototype".
func BoardByName(name string) (*Board, error) {
	switch name {
	case DevKitV1.Name:
		return &DevKitV1, nil
	case Prototype.Name:
		return &Prototype, nil
	}
	return nil, fmt.Errorf("plinth: unknown board %q", name)
}

// openExpanders returns the pins of every expander, in board order.
func (b *Board) openExpanders(bus i2c.Bus, log zerolog.Logger) ([][]gpio.PinIO, error) {
	out := make([][]gpio.PinIO, 0, len(b.Expanders))
	for _, e := range b.Expanders {
		switch e.Kind {
		case PCA9555:
			dev, err := tca95xx.New(bus, tca95xx.TCA9555, e.Addr)
			if err != nil {
				return nil, fmt.Errorf("plinth: %s at %#x: %w", e.Kind, e.Addr, err)
			}
			var pins []gpio.PinIO
			for _, port := range dev.Pins {
				for _, p := range port {
					pins = append(pins, p)
				}
			}
			out = append(out, pins)
		case PCF8574:
			dev, err := newPCF8574(bus, e.Addr, log)
			if err != nil {
				return nil, fmt.Errorf("plinth: %s at %#x: %w", e.Kind, e.Addr, err)
			}
			out = append(out, dev.pins)
		default:
			return nil, fmt.Errorf("plinth: unsupported expander %q", e.Kind)
		}
	}
	return out, nil
}

// resolve maps the board wells onto expander pins.
func (b *Board) resolve(expanders [][]gpio.PinIO, switches func(name string) gpio.PinIO) ([]Well, error) {
	if len(b.Switches) != len(b.Wells) {
		return nil, errors.New("plinth: switch table does not match wells")
	}
	wells := make([]Well, len(b.Wells))
	for i, wp := range b.Wells {
		if wp.Expander >= len(expanders) {
			return nil, fmt.Errorf("plinth: well %d: no expander %d", i, wp.Expander)
		}
		pins := expanders[wp.Expander]
		for _, n := range []int{wp.Reset, wp.Busy, wp.CS, wp.MemCS} {
			if n >= len(pins) {
				return nil, fmt.Errorf("plinth: well %d: expander %d has no pin %d", i, wp.Expander, n)
			}
		}
		wells[i] = Well{
			Reset: pins[wp.Reset],
			Busy:  pins[wp.Busy],
			CS:    pins[wp.CS],
			MemCS: pins[wp.MemCS],
		}
		for j, name := range b.Switches[i] {
			p := switches(name)
			if p == nil {
				return nil, fmt.Errorf("plinth: well %d: switch %s: no pin %s", i, Button(j), name)
			}
			wells[i].Switches[j] = p
		}
	}
	return wells, nil
}
